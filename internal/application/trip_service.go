package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
	redisinfra "github.com/sanosuguru/go-trip-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/logger"
)

const seatCacheTTL = 30 * time.Second

type TripService struct {
	tripRepo trip.Repository
	seatRepo seat.Repository
	cache    *redisinfra.SeatCache
}

func NewTripService(tr trip.Repository, sr seat.Repository, cache *redisinfra.SeatCache) *TripService {
	return &TripService{tripRepo: tr, seatRepo: sr, cache: cache}
}

type CreateTripInput struct {
	RouteID   string
	VehicleID string
	DepartAt  time.Time
	ArriveBy  time.Time
}

func (s *TripService) CreateTrip(ctx context.Context, input CreateTripInput) (*trip.Trip, error) {
	t := trip.NewTrip(input.RouteID, input.VehicleID, input.DepartAt, input.ArriveBy)
	if err := t.Validate(); err != nil {
		return nil, err
	}
	if err := s.tripRepo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("便作成に失敗しました: %w", err)
	}
	return t, nil
}

func (s *TripService) GetTrip(ctx context.Context, id string) (*trip.Trip, error) {
	return s.tripRepo.GetByID(ctx, id)
}

// TripSummary は検索結果の便と空席数のペア
type TripSummary struct {
	Trip      *trip.Trip
	FreeSeats int
}

// SearchTrips は日付と路線で便を検索し、空席数の概要を付けて返す
func (s *TripService) SearchTrips(ctx context.Context, date time.Time, routeID string) ([]TripSummary, error) {
	trips, err := s.tripRepo.Search(ctx, date, routeID)
	if err != nil {
		return nil, err
	}
	summaries := make([]TripSummary, len(trips))
	for i, t := range trips {
		count, err := s.CountFreeSeats(ctx, t.ID)
		if err != nil {
			return nil, err
		}
		summaries[i] = TripSummary{Trip: t, FreeSeats: count}
	}
	return summaries, nil
}

// GetTripSeats は便の座席一覧（座席ごとの状態付き）を取得する
func (s *TripService) GetTripSeats(ctx context.Context, tripID string) ([]*seat.Seat, error) {
	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return nil, err
	}
	return s.seatRepo.GetByTripID(ctx, tripID)
}

type CreateSeatsInput struct {
	TripID string
	Prefix string
	Count  int
	Class  string
	Price  int
}

// CreateSeats は便の座席レイアウトを一括作成する
func (s *TripService) CreateSeats(ctx context.Context, input CreateSeatsInput) ([]*seat.Seat, error) {
	if _, err := s.tripRepo.GetByID(ctx, input.TripID); err != nil {
		return nil, err
	}
	seats := make([]*seat.Seat, 0, input.Count)
	for i := 1; i <= input.Count; i++ {
		seatNumber := fmt.Sprintf("%s-%d", input.Prefix, i)
		se := seat.NewSeat(input.TripID, seatNumber, input.Class, input.Price)
		if err := se.Validate(); err != nil {
			return nil, err
		}
		seats = append(seats, se)
	}
	if err := s.seatRepo.CreateBulk(ctx, seats); err != nil {
		return nil, err
	}
	return seats, nil
}

// BlockSeats は free の座席を提供停止にする（運行管理者用）
func (s *TripService) BlockSeats(ctx context.Context, tripID string, seatIDs []string) error {
	if _, err := s.tripRepo.GetByID(ctx, tripID); err != nil {
		return err
	}
	if err := s.seatRepo.Block(ctx, tripID, seatIDs); err != nil {
		return err
	}
	s.InvalidateCache(ctx, tripID)
	return nil
}

// CountFreeSeats は便の空席数を取得する（キャッシュ併用）
func (s *TripService) CountFreeSeats(ctx context.Context, tripID string) (int, error) {
	// キャッシュから取得を試みる
	if s.cache != nil {
		count, err := s.cache.GetFreeCount(ctx, tripID)
		if err == nil {
			logger.Debug("キャッシュヒット", zap.String("trip_id", tripID), zap.Int("count", count))
			return count, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得エラー", zap.Error(err))
		}
	}

	// DBから取得
	count, err := s.seatRepo.CountFreeByTripID(ctx, tripID)
	if err != nil {
		return 0, err
	}

	// キャッシュに保存
	if s.cache != nil {
		if cacheErr := s.cache.SetFreeCount(ctx, tripID, count, seatCacheTTL); cacheErr != nil {
			logger.Warn("キャッシュ保存エラー", zap.Error(cacheErr))
		}
	}

	return count, nil
}

// InvalidateCache は便のキャッシュを無効化する
func (s *TripService) InvalidateCache(ctx context.Context, tripID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tripID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}
