package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

type seatRow struct {
	ID         string    `db:"id"`
	TripID     string    `db:"trip_id"`
	SeatNumber string    `db:"seat_number"`
	Class      string    `db:"class"`
	Status     string    `db:"status"`
	Price      int       `db:"price"`
	HoldID     *string   `db:"hold_id"`
	BookingID  *string   `db:"booking_id"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
	Version    int       `db:"version"`
}

func (r *seatRow) toEntity() *seat.Seat {
	return &seat.Seat{
		ID: r.ID, TripID: r.TripID, SeatNumber: r.SeatNumber, Class: r.Class,
		Status: seat.Status(r.Status), Price: r.Price,
		HoldID: r.HoldID, BookingID: r.BookingID,
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

const seatColumns = `id, trip_id, seat_number, class, status, price, hold_id, booking_id, created_at, updated_at, version`

type SeatRepository struct{ db *sqlx.DB }

func NewSeatRepository(db *sqlx.DB) *SeatRepository { return &SeatRepository{db: db} }

func (r *SeatRepository) Create(ctx context.Context, s *seat.Seat) error {
	query := `INSERT INTO seats (trip_id, seat_number, class, status, price, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query, s.TripID, s.SeatNumber, s.Class, string(s.Status), s.Price, s.CreatedAt, s.UpdatedAt, s.Version).Scan(&s.ID)
}

func (r *SeatRepository) CreateBulk(ctx context.Context, seats []*seat.Seat) error {
	if len(seats) == 0 {
		return nil
	}

	// バッチサイズごとに分割してマルチバリューINSERTを実行
	const batchSize = 1000
	for i := 0; i < len(seats); i += batchSize {
		end := i + batchSize
		if end > len(seats) {
			end = len(seats)
		}
		if err := r.createBulkBatch(ctx, seats[i:end]); err != nil {
			return err
		}
	}
	return nil
}

func (r *SeatRepository) createBulkBatch(ctx context.Context, seats []*seat.Seat) error {
	query := `INSERT INTO seats (trip_id, seat_number, class, status, price, created_at, updated_at, version) VALUES `
	args := make([]interface{}, 0, len(seats)*8)
	placeholders := make([]string, 0, len(seats))

	for i, s := range seats {
		base := i * 8
		placeholders = append(placeholders, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		args = append(args, s.TripID, s.SeatNumber, s.Class, string(s.Status), s.Price, s.CreatedAt, s.UpdatedAt, s.Version)
	}

	query += strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("座席一括作成に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) GetByID(ctx context.Context, id string) (*seat.Seat, error) {
	var row seatRow
	if err := r.db.GetContext(ctx, &row, `SELECT `+seatColumns+` FROM seats WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, seat.ErrSeatNotFound
		}
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *SeatRepository) GetByTripID(ctx context.Context, tripID string) ([]*seat.Seat, error) {
	var rows []seatRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT `+seatColumns+` FROM seats WHERE trip_id = $1 ORDER BY seat_number`, tripID); err != nil {
		return nil, fmt.Errorf("座席一覧取得に失敗: %w", err)
	}
	seats := make([]*seat.Seat, len(rows))
	for i, row := range rows {
		seats[i] = row.toEntity()
	}
	return seats, nil
}

// Reserve は要求された座席集合を一括で仮押さえ状態にする
// 条件付きUPDATEの更新行数が要求数と一致しない場合は ErrSeatConflict を返す
// 呼び出し側がロールバックすることで全件不変（all-or-nothing）が保たれる
func (r *SeatRepository) Reserve(ctx context.Context, tx transaction.Tx, tripID string, seatIDs []string, holdID string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = 'held', hold_id = $1, updated_at = NOW(), version = version + 1 WHERE trip_id = $2 AND id = ANY($3) AND status = 'free'`
	result, err := sqlxTx.ExecContext(ctx, query, holdID, tripID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席仮押さえに失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatConflict
	}
	return nil
}

func (r *SeatRepository) MarkBooked(ctx context.Context, tx transaction.Tx, seatIDs []string, bookingID string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = 'booked', hold_id = NULL, booking_id = $1, updated_at = NOW(), version = version + 1 WHERE id = ANY($2) AND status = 'held'`
	result, err := sqlxTx.ExecContext(ctx, query, bookingID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席確定に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatNotHeld
	}
	return nil
}

// Release は仮押さえの終端化（解放・失効）と対になる座席解放
// hold_id で絞ることで、呼び出し側の取り違えでも他の仮押さえの座席は変化しない
func (r *SeatRepository) Release(ctx context.Context, tx transaction.Tx, holdID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE seats SET status = 'free', hold_id = NULL, updated_at = NOW(), version = version + 1 WHERE id = ANY($1) AND status = 'held' AND hold_id = $2`
	if _, err := sqlxTx.ExecContext(ctx, query, pq.Array(seatIDs), holdID); err != nil {
		return fmt.Errorf("座席解放に失敗: %w", err)
	}
	return nil
}

func (r *SeatRepository) Block(ctx context.Context, tripID string, seatIDs []string) error {
	if len(seatIDs) == 0 {
		return nil
	}
	query := `UPDATE seats SET status = 'blocked', updated_at = NOW(), version = version + 1 WHERE trip_id = $1 AND id = ANY($2) AND status = 'free'`
	result, err := r.db.ExecContext(ctx, query, tripID, pq.Array(seatIDs))
	if err != nil {
		return fmt.Errorf("座席提供停止に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if int(rows) != len(seatIDs) {
		return seat.ErrSeatConflict
	}
	return nil
}

func (r *SeatRepository) CountFreeByTripID(ctx context.Context, tripID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM seats WHERE trip_id = $1 AND status = 'free'`, tripID)
	return count, err
}

var _ seat.Repository = (*SeatRepository)(nil)
