package payment

import (
	"context"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

// Repository は決済リポジトリのインターフェース
type Repository interface {
	// Create は新しい決済レコードを挿入する（トランザクション必須）
	// (provider, transaction_id) が既に存在する場合は ErrDuplicateTransaction を返す
	Create(ctx context.Context, tx transaction.Tx, payment *Payment) error

	// GetByTransactionID はプロバイダーとトランザクションIDから決済レコードを取得する
	GetByTransactionID(ctx context.Context, provider, transactionID string) (*Payment, error)

	// GetByBookingID は予約IDから決済レコード一覧を取得する
	GetByBookingID(ctx context.Context, bookingID string) ([]*Payment, error)
}
