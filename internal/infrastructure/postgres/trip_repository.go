package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
)

type tripRow struct {
	ID        string    `db:"id"`
	RouteID   string    `db:"route_id"`
	VehicleID string    `db:"vehicle_id"`
	DepartAt  time.Time `db:"depart_at"`
	ArriveBy  time.Time `db:"arrive_by"`
	Status    string    `db:"status"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Version   int       `db:"version"`
}

func (r *tripRow) toEntity() *trip.Trip {
	return &trip.Trip{
		ID: r.ID, RouteID: r.RouteID, VehicleID: r.VehicleID,
		DepartAt: r.DepartAt, ArriveBy: r.ArriveBy,
		Status: trip.Status(r.Status),
		CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt, Version: r.Version,
	}
}

type TripRepository struct{ db *sqlx.DB }

func NewTripRepository(db *sqlx.DB) *TripRepository { return &TripRepository{db: db} }

func (r *TripRepository) Create(ctx context.Context, t *trip.Trip) error {
	query := `INSERT INTO trips (route_id, vehicle_id, depart_at, arrive_by, status, created_at, updated_at, version) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`
	return r.db.QueryRowContext(ctx, query, t.RouteID, t.VehicleID, t.DepartAt, t.ArriveBy, string(t.Status), t.CreatedAt, t.UpdatedAt, t.Version).Scan(&t.ID)
}

func (r *TripRepository) GetByID(ctx context.Context, id string) (*trip.Trip, error) {
	query := `SELECT id, route_id, vehicle_id, depart_at, arrive_by, status, created_at, updated_at, version FROM trips WHERE id = $1`
	var row tripRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, trip.ErrTripNotFound
		}
		return nil, fmt.Errorf("便取得に失敗: %w", err)
	}
	return row.toEntity(), nil
}

func (r *TripRepository) Search(ctx context.Context, date time.Time, routeID string) ([]*trip.Trip, error) {
	dayStart := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	query := `SELECT id, route_id, vehicle_id, depart_at, arrive_by, status, created_at, updated_at, version FROM trips WHERE depart_at >= $1 AND depart_at < $2`
	args := []interface{}{dayStart, dayEnd}
	if routeID != "" {
		query += ` AND route_id = $3`
		args = append(args, routeID)
	}
	query += ` ORDER BY depart_at`

	var rows []tripRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("便検索に失敗: %w", err)
	}
	trips := make([]*trip.Trip, len(rows))
	for i, row := range rows {
		trips[i] = row.toEntity()
	}
	return trips, nil
}

func (r *TripRepository) UpdateStatus(ctx context.Context, t *trip.Trip) error {
	query := `UPDATE trips SET status = $1, updated_at = $2, version = version + 1 WHERE id = $3 AND version = $4`
	result, err := r.db.ExecContext(ctx, query, string(t.Status), t.UpdatedAt, t.ID, t.Version)
	if err != nil {
		return fmt.Errorf("便更新に失敗: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return trip.ErrTripNotFound
	}
	t.Version++
	return nil
}

var _ trip.Repository = (*TripRepository)(nil)
