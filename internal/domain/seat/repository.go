package seat

import (
	"context"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

// Repository は座席在庫リポジトリのインターフェース
// Reserve / Release / MarkBooked は同一便に対して直列に実行される前提で、
// 呼び出し側（アプリケーション層）が便単位の排他スコープを確保する
type Repository interface {
	// Create は新しい座席を作成する
	Create(ctx context.Context, seat *Seat) error

	// CreateBulk は複数の座席を一括作成する
	CreateBulk(ctx context.Context, seats []*Seat) error

	// GetByID はIDから座席を取得する
	GetByID(ctx context.Context, id string) (*Seat, error)

	// GetByTripID は便IDから座席一覧を取得する
	GetByTripID(ctx context.Context, tripID string) ([]*Seat, error)

	// Reserve は座席集合を仮押さえ状態に更新する（全件成功か全件不変か、トランザクション必須）
	// 1席でも free でなければ ErrSeatConflict を返し、どの座席も変化しない
	Reserve(ctx context.Context, tx transaction.Tx, tripID string, seatIDs []string, holdID string) error

	// MarkBooked は仮押さえ中の座席集合を予約確定に更新する（トランザクション必須）
	MarkBooked(ctx context.Context, tx transaction.Tx, seatIDs []string, bookingID string) error

	// Release は指定した仮押さえが専有する座席集合を空席に戻す（トランザクション必須）
	// hold_id を条件に含めるため、別の仮押さえが取り直した座席は巻き込まれない
	Release(ctx context.Context, tx transaction.Tx, holdID string, seatIDs []string) error

	// Block は free の座席集合を提供停止にする
	Block(ctx context.Context, tripID string, seatIDs []string) error

	// CountFreeByTripID は便の空席数を取得する
	CountFreeByTripID(ctx context.Context, tripID string) (int, error)
}
