package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

type paymentRow struct {
	Provider      string    `db:"provider"`
	TransactionID string    `db:"transaction_id"`
	BookingID     string    `db:"booking_id"`
	Status        string    `db:"status"`
	Amount        int       `db:"amount"`
	RawPayload    []byte    `db:"raw_payload"`
	ProcessedAt   time.Time `db:"processed_at"`
	CreatedAt     time.Time `db:"created_at"`
}

func (r *paymentRow) toEntity() *payment.Payment {
	return &payment.Payment{
		Provider: r.Provider, TransactionID: r.TransactionID, BookingID: r.BookingID,
		Status: payment.Status(r.Status), Amount: r.Amount, RawPayload: r.RawPayload,
		ProcessedAt: r.ProcessedAt, CreatedAt: r.CreatedAt,
	}
}

type PaymentRepository struct{ db *sqlx.DB }

func NewPaymentRepository(db *sqlx.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Create は決済レコードを挿入する
// (provider, transaction_id) の一意制約違反は ErrDuplicateTransaction に写像する
// 再配送との競合はこの制約が最終的な砦になる
func (r *PaymentRepository) Create(ctx context.Context, tx transaction.Tx, p *payment.Payment) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO payments (provider, transaction_id, booking_id, status, amount, raw_payload, processed_at, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	if _, err := sqlxTx.ExecContext(ctx, query, p.Provider, p.TransactionID, p.BookingID, string(p.Status), p.Amount, p.RawPayload, p.ProcessedAt, p.CreatedAt); err != nil {
		if pgErr, ok := err.(*pq.Error); ok && pgErr.Code == "23505" {
			return payment.ErrDuplicateTransaction
		}
		return fmt.Errorf("決済レコード作成に失敗: %w", err)
	}
	return nil
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, provider, transactionID string) (*payment.Payment, error) {
	var row paymentRow
	query := `SELECT provider, transaction_id, booking_id, status, amount, raw_payload, processed_at, created_at FROM payments WHERE provider = $1 AND transaction_id = $2`
	if err := r.db.GetContext(ctx, &row, query, provider, transactionID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, payment.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("決済レコード取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *PaymentRepository) GetByBookingID(ctx context.Context, bookingID string) ([]*payment.Payment, error) {
	var rows []paymentRow
	query := `SELECT provider, transaction_id, booking_id, status, amount, raw_payload, processed_at, created_at FROM payments WHERE booking_id = $1 ORDER BY created_at`
	if err := r.db.SelectContext(ctx, &rows, query, bookingID); err != nil {
		return nil, fmt.Errorf("決済レコード一覧取得に失敗: %w", err)
	}
	result := make([]*payment.Payment, len(rows))
	for i := range rows {
		result[i] = rows[i].toEntity()
	}
	return result, nil
}

var _ payment.Repository = (*PaymentRepository)(nil)
