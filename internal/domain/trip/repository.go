package trip

import (
	"context"
	"time"
)

// Repository は便リポジトリのインターフェース
type Repository interface {
	// Create は新しい便を作成する
	Create(ctx context.Context, trip *Trip) error

	// GetByID はIDから便を取得する
	GetByID(ctx context.Context, id string) (*Trip, error)

	// Search は日付と路線から便を検索する
	// routeID が空の場合は日付のみで絞り込む
	Search(ctx context.Context, date time.Time, routeID string) ([]*Trip, error)

	// UpdateStatus は便の状態を更新する（楽観的ロック）
	UpdateStatus(ctx context.Context, trip *Trip) error
}
