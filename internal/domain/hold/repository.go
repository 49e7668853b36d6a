package hold

import (
	"context"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

// Repository は仮押さえリポジトリのインターフェース
type Repository interface {
	// Create は新しい仮押さえを作成する（トランザクション必須）
	Create(ctx context.Context, tx transaction.Tx, hold *Hold) error

	// GetByID はIDから仮押さえを取得する
	GetByID(ctx context.Context, id string) (*Hold, error)

	// TransitionStatus は状態を条件付きで遷移させ、遷移できたかを返す
	// WHERE status = from の条件付きUPDATEにより、リーパー・明示解放・
	// 予約消費が競合しても勝者は1つだけになる（敗者は false を観測して no-op）
	TransitionStatus(ctx context.Context, tx transaction.Tx, id string, from, to Status) (bool, error)

	// ConsumeActive は期限内の active な仮押さえだけを consumed に遷移させ、
	// 遷移できたかを返す。期限は遷移と同時にDB時計で再検証されるため、
	// アプリ側の事前チェック後に期限を過ぎた仮押さえも消費されない
	ConsumeActive(ctx context.Context, tx transaction.Tx, id string) (bool, error)

	// GetExpiredActive は期限切れの active な仮押さえを取得する
	GetExpiredActive(ctx context.Context, limit int) ([]*Hold, error)
}
