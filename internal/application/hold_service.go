package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/trip"
	redisinfra "github.com/sanosuguru/go-trip-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/metrics"
)

// 便ロックの取得パラメータ
const (
	tripLockTTL        = 10 * time.Second
	tripLockMaxRetries = 3
	tripLockRetryDelay = 100 * time.Millisecond
)

type HoldService struct {
	txManager   transaction.Manager
	holdRepo    hold.Repository
	seatRepo    seat.Repository
	tripRepo    trip.Repository
	lockManager *redisinfra.LockManager
	cache       *redisinfra.SeatCache
	reaperBatch int
}

func NewHoldService(
	tm transaction.Manager,
	hr hold.Repository,
	sr seat.Repository,
	tr trip.Repository,
	lm *redisinfra.LockManager,
	cache *redisinfra.SeatCache,
	reaperBatch int,
) *HoldService {
	return &HoldService{
		txManager:   tm,
		holdRepo:    hr,
		seatRepo:    sr,
		tripRepo:    tr,
		lockManager: lm,
		cache:       cache,
		reaperBatch: reaperBatch,
	}
}

type CreateHoldInput struct {
	TripID  string
	SeatIDs []string
	OwnerID string
	TTL     time.Duration
}

// CreateHold は座席集合の仮押さえを作成する
// 確保は便単位の排他スコープの中でチェック＆セットとして実行され、
// 1席でも確保できなければどの座席も変化しない
func (s *HoldService) CreateHold(ctx context.Context, input CreateHoldInput) (*hold.Hold, error) {
	if len(input.SeatIDs) == 0 {
		return nil, hold.ErrSeatIDsRequired
	}
	seen := make(map[string]struct{}, len(input.SeatIDs))
	for _, id := range input.SeatIDs {
		if _, dup := seen[id]; dup {
			return nil, hold.ErrDuplicateSeatID
		}
		seen[id] = struct{}{}
	}
	if input.TTL < 0 {
		return nil, hold.ErrInvalidTTL
	}

	// 便確認
	t, err := s.tripRepo.GetByID(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	if !t.IsBookable() {
		return nil, trip.ErrTripNotBookable
	}

	// 便単位の排他スコープを取得
	// 座席単位のロックは部分確保とデッドロックを招くため取らない
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.TripLockKey(input.TripID), tripLockTTL, tripLockMaxRetries, tripLockRetryDelay)
		if err != nil {
			if errors.Is(err, redisinfra.ErrLockNotAcquired) {
				s.countHold("lock_failed")
				return nil, seat.ErrSeatConflict
			}
			return nil, fmt.Errorf("ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)
	}

	h := hold.NewHold(input.TripID, input.OwnerID, input.SeatIDs, input.TTL)
	if err := h.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.holdRepo.Create(ctx, tx, h); err != nil {
		return nil, err
	}
	if err := s.seatRepo.Reserve(ctx, tx, input.TripID, input.SeatIDs, h.ID); err != nil {
		if errors.Is(err, seat.ErrSeatConflict) {
			s.countHold("conflict")
		}
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, input.TripID)
	s.countHold("success")
	return h, nil
}

func (s *HoldService) GetHold(ctx context.Context, id string) (*hold.Hold, error) {
	return s.holdRepo.GetByID(ctx, id)
}

// ReleaseHold は仮押さえを明示的に解放する
// 既に終端状態の仮押さえに対しては何もしない（冪等）
func (s *HoldService) ReleaseHold(ctx context.Context, id string) error {
	h, err := s.holdRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if h.Status != hold.StatusActive {
		return nil
	}

	released, err := s.transitionAndRelease(ctx, h, hold.StatusReleased)
	if err != nil {
		return err
	}
	if released {
		s.invalidateCache(ctx, h.TripID)
	}
	return nil
}

// ExpireOverdueHolds は期限切れの active な仮押さえを回収する（リーパー用）
// 別経路（明示解放・予約消費）が先に遷移させた仮押さえはスキップされる
func (s *HoldService) ExpireOverdueHolds(ctx context.Context) (int, error) {
	overdue, err := s.holdRepo.GetExpiredActive(ctx, s.reaperBatch)
	if err != nil {
		return 0, err
	}

	count := 0
	for _, h := range overdue {
		expired, err := s.transitionAndRelease(ctx, h, hold.StatusExpired)
		if err != nil {
			logger.Error("仮押さえの期限切れ処理に失敗", zap.String("hold_id", h.ID), zap.Error(err))
			continue
		}
		if expired {
			s.invalidateCache(ctx, h.TripID)
			count++
		}
	}

	if m := metrics.Get(); m != nil && count > 0 {
		m.ExpiredHoldsTotal.Add(float64(count))
	}
	return count, nil
}

// transitionAndRelease は active からの遷移と座席解放を1トランザクションで行う
// 遷移に負けた場合（他経路が先に終端化）は何もせず false を返す
func (s *HoldService) transitionAndRelease(ctx context.Context, h *hold.Hold, to hold.Status) (bool, error) {
	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	won, err := s.holdRepo.TransitionStatus(ctx, tx, h.ID, hold.StatusActive, to)
	if err != nil {
		return false, err
	}
	if !won {
		return false, nil
	}
	if err := s.seatRepo.Release(ctx, tx, h.ID, h.SeatIDs); err != nil {
		return false, err
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("コミットに失敗: %w", err)
	}
	return true, nil
}

func (s *HoldService) invalidateCache(ctx context.Context, tripID string) {
	if s.cache != nil {
		if err := s.cache.Invalidate(ctx, tripID); err != nil {
			logger.Warn("キャッシュ無効化エラー", zap.Error(err))
		}
	}
}

func (s *HoldService) countHold(status string) {
	if m := metrics.Get(); m != nil {
		m.HoldsTotal.WithLabelValues(status).Inc()
	}
}
