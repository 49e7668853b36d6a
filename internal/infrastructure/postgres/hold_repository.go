package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
)

type holdRow struct {
	ID        string    `db:"id"`
	TripID    string    `db:"trip_id"`
	OwnerID   string    `db:"owner_id"`
	Status    string    `db:"status"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type HoldRepository struct{ db *sqlx.DB }

func NewHoldRepository(db *sqlx.DB) *HoldRepository { return &HoldRepository{db: db} }

func (r *HoldRepository) Create(ctx context.Context, tx transaction.Tx, h *hold.Hold) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO holds (trip_id, owner_id, status, expires_at, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, h.TripID, h.OwnerID, string(h.Status), h.ExpiresAt, h.CreatedAt, h.UpdatedAt).Scan(&h.ID); err != nil {
		return fmt.Errorf("仮押さえ作成に失敗: %w", err)
	}
	// 座席は要求された順序のまま関連付ける
	for i, seatID := range h.SeatIDs {
		if _, err := sqlxTx.ExecContext(ctx, `INSERT INTO hold_seats (hold_id, seat_id, position) VALUES ($1, $2, $3)`, h.ID, seatID, i); err != nil {
			return fmt.Errorf("仮押さえ座席関連付けに失敗: %w", err)
		}
	}
	return nil
}

func (r *HoldRepository) GetByID(ctx context.Context, id string) (*hold.Hold, error) {
	var row holdRow
	query := `SELECT id, trip_id, owner_id, status, expires_at, created_at, updated_at FROM holds WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, hold.ErrHoldNotFound
		}
		return nil, fmt.Errorf("仮押さえ取得に失敗: %w", err)
	}
	seatIDs, err := r.getSeatIDs(ctx, id)
	if err != nil {
		return nil, err
	}
	return r.toEntity(&row, seatIDs), nil
}

// TransitionStatus は status = from の行だけを to に更新し、更新できたかを返す
// 同じ仮押さえを複数の経路（リーパー・明示解放・予約消費）が奪い合っても
// 勝者は1つだけになる
func (r *HoldRepository) TransitionStatus(ctx context.Context, tx transaction.Tx, id string, from, to hold.Status) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE holds SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`
	result, err := sqlxTx.ExecContext(ctx, query, string(to), id, string(from))
	if err != nil {
		return false, fmt.Errorf("仮押さえ遷移に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

// ConsumeActive は予約消費専用の遷移
// expires_at を遷移条件に含めることで、期限直後の消費レースを排除する
func (r *HoldRepository) ConsumeActive(ctx context.Context, tx transaction.Tx, id string) (bool, error) {
	sqlxTx := UnwrapTx(tx)
	query := `UPDATE holds SET status = 'consumed', updated_at = NOW() WHERE id = $1 AND status = 'active' AND expires_at > NOW()`
	result, err := sqlxTx.ExecContext(ctx, query, id)
	if err != nil {
		return false, fmt.Errorf("仮押さえ消費に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows == 1, nil
}

func (r *HoldRepository) GetExpiredActive(ctx context.Context, limit int) ([]*hold.Hold, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []holdRow
	query := `SELECT id, trip_id, owner_id, status, expires_at, created_at, updated_at FROM holds WHERE status = 'active' AND expires_at < NOW() ORDER BY expires_at LIMIT $1`
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("期限切れ仮押さえ取得に失敗: %w", err)
	}
	result := make([]*hold.Hold, len(rows))
	for i, row := range rows {
		seatIDs, err := r.getSeatIDs(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		result[i] = r.toEntity(&row, seatIDs)
	}
	return result, nil
}

func (r *HoldRepository) getSeatIDs(ctx context.Context, holdID string) ([]string, error) {
	var seatIDs []string
	if err := r.db.SelectContext(ctx, &seatIDs, `SELECT seat_id FROM hold_seats WHERE hold_id = $1 ORDER BY position`, holdID); err != nil {
		return nil, fmt.Errorf("仮押さえ座席ID取得に失敗: %w", err)
	}
	return seatIDs, nil
}

func (r *HoldRepository) toEntity(row *holdRow, seatIDs []string) *hold.Hold {
	return &hold.Hold{
		ID: row.ID, TripID: row.TripID, OwnerID: row.OwnerID,
		SeatIDs: seatIDs, Status: hold.Status(row.Status),
		ExpiresAt: row.ExpiresAt, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt,
	}
}

var _ hold.Repository = (*HoldRepository)(nil)
