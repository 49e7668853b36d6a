package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-trip-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/notifier"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/metrics"
)

type BookingService struct {
	txManager   transaction.Manager
	bookingRepo booking.Repository
	holdRepo    hold.Repository
	seatRepo    seat.Repository
	cache       *redisinfra.SeatCache
	hub         *notifier.Hub
}

func NewBookingService(
	tm transaction.Manager,
	br booking.Repository,
	hr hold.Repository,
	sr seat.Repository,
	cache *redisinfra.SeatCache,
	hub *notifier.Hub,
) *BookingService {
	return &BookingService{
		txManager:   tm,
		bookingRepo: br,
		holdRepo:    hr,
		seatRepo:    sr,
		cache:       cache,
		hub:         hub,
	}
}

type CreateBookingInput struct {
	HoldID  string
	OwnerID string
}

// CreateBooking は有効な仮押さえを確定予約へ変換する
// 期限はリーパーの実行状況に関わらずここで時計基準に再検証する
// 仮押さえの消費・座席の確定・予約の挿入は単一トランザクションで適用され、
// 途中のクラッシュで held のまま取り残される座席は生じない
func (s *BookingService) CreateBooking(ctx context.Context, input CreateBookingInput) (*booking.Booking, error) {
	h, err := s.holdRepo.GetByID(ctx, input.HoldID)
	if err != nil {
		s.countBooking("not_found")
		return nil, err
	}
	if h.Status != hold.StatusActive || h.IsExpired() {
		s.countBooking("expired")
		return nil, hold.ErrHoldExpired
	}

	ownerID := input.OwnerID
	if ownerID == "" {
		ownerID = h.OwnerID
	}

	totalAmount, err := s.totalAmount(ctx, h)
	if err != nil {
		return nil, err
	}

	b := booking.NewBooking(h.TripID, h.ID, ownerID, h.SeatIDs, totalAmount)
	if err := b.Validate(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	// 遷移に負けた場合は別経路（リーパー・明示解放）が先に終端化しているか、
	// 事前チェック後に期限を過ぎている
	won, err := s.holdRepo.ConsumeActive(ctx, tx, h.ID)
	if err != nil {
		return nil, err
	}
	if !won {
		s.countBooking("expired")
		return nil, hold.ErrHoldExpired
	}

	if err := s.bookingRepo.Create(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := s.seatRepo.MarkBooked(ctx, tx, h.SeatIDs, b.ID); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.invalidateCache(ctx, h.TripID)
	s.publish(b)
	s.countBooking("success")
	return b, nil
}

func (s *BookingService) GetBooking(ctx context.Context, id string) (*booking.Booking, error) {
	return s.bookingRepo.GetByID(ctx, id)
}

func (s *BookingService) GetOwnerBookings(ctx context.Context, ownerID string, limit, offset int) ([]*booking.Booking, error) {
	if limit <= 0 {
		limit = 20
	}
	return s.bookingRepo.GetByOwnerID(ctx, ownerID, limit, offset)
}

// RequestCancel は購入者によるキャンセル申請を受け付ける
func (s *BookingService) RequestCancel(ctx context.Context, id string) (*booking.Booking, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := b.RequestCancel(); err != nil {
		return nil, err
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	s.publish(b)
	return b, nil
}

// GetBookingStatus は予約の現在状態を返す（状態通知のポーリング側で使う）
func (s *BookingService) GetBookingStatus(ctx context.Context, id string) (string, time.Time, error) {
	b, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		return "", time.Time{}, err
	}
	return string(b.Status), b.UpdatedAt, nil
}

// totalAmount は仮押さえ対象座席の価格合計を計算する
func (s *BookingService) totalAmount(ctx context.Context, h *hold.Hold) (int, error) {
	seats, err := s.seatRepo.GetByTripID(ctx, h.TripID)
	if err != nil {
		return 0, err
	}
	prices := make(map[string]int, len(seats))
	for _, se := range seats {
		prices[se.ID] = se.Price
	}
	total := 0
	for _, id := range h.SeatIDs {
		price, ok := prices[id]
		if !ok {
			return 0, seat.ErrSeatNotFound
		}
		total += price
	}
	return total, nil
}

func (s *BookingService) publish(b *booking.Booking) {
	if s.hub != nil {
		s.hub.Publish(notifier.StatusUpdate{
			BookingID: b.ID,
			Status:    string(b.Status),
			UpdatedAt: b.UpdatedAt,
		})
	}
}

func (s *BookingService) invalidateCache(ctx context.Context, tripID string) {
	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, tripID)
	}
}

func (s *BookingService) countBooking(status string) {
	if m := metrics.Get(); m != nil {
		m.BookingsTotal.WithLabelValues(status).Inc()
	}
}
