package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

type bookingRow struct {
	ID          string    `db:"id"`
	TripID      string    `db:"trip_id"`
	HoldID      string    `db:"hold_id"`
	OwnerID     string    `db:"owner_id"`
	Status      string    `db:"status"`
	TotalAmount int       `db:"total_amount"`
	PaymentID   *string   `db:"payment_id"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

const bookingColumns = `id, trip_id, hold_id, owner_id, status, total_amount, payment_id, created_at, updated_at`

type BookingRepository struct{ db *sqlx.DB }

func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

func (r *BookingRepository) Create(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO bookings (trip_id, hold_id, owner_id, status, total_amount, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, b.TripID, b.HoldID, b.OwnerID, string(b.Status), b.TotalAmount, b.CreatedAt, b.UpdatedAt).Scan(&b.ID); err != nil {
		return fmt.Errorf("予約作成に失敗: %w", err)
	}
	for i, seatID := range b.SeatIDs {
		if _, err := sqlxTx.ExecContext(ctx, `INSERT INTO booking_seats (booking_id, seat_id, position) VALUES ($1, $2, $3)`, b.ID, seatID, i); err != nil {
			return fmt.Errorf("予約座席関連付けに失敗: %w", err)
		}
	}
	return nil
}

func (r *BookingRepository) GetByID(ctx context.Context, id string) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.attachSeats(ctx, &row)
}

func (r *BookingRepository) GetByHoldID(ctx context.Context, holdID string) (*booking.Booking, error) {
	var row bookingRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+bookingColumns+` FROM bookings WHERE hold_id = $1`, holdID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, booking.ErrBookingNotFound
		}
		return nil, fmt.Errorf("予約取得に失敗: %w", err)
	}
	return r.attachSeats(ctx, &row)
}

func (r *BookingRepository) GetByOwnerID(ctx context.Context, ownerID string, limit, offset int) ([]*booking.Booking, error) {
	var rows []bookingRow
	query := `SELECT ` + bookingColumns + ` FROM bookings WHERE owner_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, limit, offset); err != nil {
		return nil, fmt.Errorf("予約一覧取得に失敗: %w", err)
	}
	result := make([]*booking.Booking, len(rows))
	for i := range rows {
		b, err := r.attachSeats(ctx, &rows[i])
		if err != nil {
			return nil, err
		}
		result[i] = b
	}
	return result, nil
}

func (r *BookingRepository) Update(ctx context.Context, tx transaction.Tx, b *booking.Booking) error {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE bookings SET status = $1, payment_id = $2, updated_at = $3 WHERE id = $4`
	result, err := sqlxTx.ExecContext(ctx, query, string(b.Status), b.PaymentID, b.UpdatedAt, b.ID)
	if err != nil {
		return fmt.Errorf("予約更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return booking.ErrBookingNotFound
	}
	return nil
}

func (r *BookingRepository) attachSeats(ctx context.Context, row *bookingRow) (*booking.Booking, error) {
	var seatIDs []string
	if err := r.db.SelectContext(ctx, &seatIDs, `SELECT seat_id FROM booking_seats WHERE booking_id = $1 ORDER BY position`, row.ID); err != nil {
		return nil, fmt.Errorf("予約座席ID取得に失敗: %w", err)
	}
	return &booking.Booking{
		ID: row.ID, TripID: row.TripID, HoldID: row.HoldID, OwnerID: row.OwnerID,
		SeatIDs: seatIDs, Status: booking.Status(row.Status),
		TotalAmount: row.TotalAmount, PaymentID: row.PaymentID,
		CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}, nil
}

var _ booking.Repository = (*BookingRepository)(nil)
