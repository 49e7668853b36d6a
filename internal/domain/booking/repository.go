package booking

import (
	"context"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

// Repository は予約リポジトリのインターフェース
type Repository interface {
	// Create は新しい予約を作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, booking *Booking) error

	// GetByID はIDから予約を取得する
	GetByID(ctx context.Context, id string) (*Booking, error)

	// GetByHoldID は消費元の仮押さえIDから予約を取得する
	GetByHoldID(ctx context.Context, holdID string) (*Booking, error)

	// GetByOwnerID は購入者IDから予約一覧を取得する
	GetByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]*Booking, error)

	// Update は予約を更新する（トランザクション必須）
	Update(ctx context.Context, tx transaction.Tx, booking *Booking) error
}
