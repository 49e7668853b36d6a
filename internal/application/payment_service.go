package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/booking"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/hold"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/payment"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/seat"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/domain/transaction"
	redisinfra "github.com/sanosuguru/go-trip-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/notifier"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/provider"
)

// 予約ロックの取得パラメータ
// Webhookはプロバイダーが再送してくれるため、取れなければ失敗させてよい
const (
	bookingLockTTL        = 10 * time.Second
	bookingLockMaxRetries = 5
	bookingLockRetryDelay = 100 * time.Millisecond
)

// PaymentService は決済プロバイダーからの非同期通知を予約へ突合する
// 同じトランザクションIDの再配送は何度届いても高々1回しか適用されない
type PaymentService struct {
	txManager   transaction.Manager
	paymentRepo payment.Repository
	bookingRepo booking.Repository
	holdRepo    hold.Repository
	seatRepo    seat.Repository
	registry    *provider.Registry
	lockManager *redisinfra.LockManager
	cache       *redisinfra.SeatCache
	hub         *notifier.Hub
}

func NewPaymentService(
	tm transaction.Manager,
	pr payment.Repository,
	br booking.Repository,
	hr hold.Repository,
	sr seat.Repository,
	registry *provider.Registry,
	lm *redisinfra.LockManager,
	cache *redisinfra.SeatCache,
	hub *notifier.Hub,
) *PaymentService {
	return &PaymentService{
		txManager:   tm,
		paymentRepo: pr,
		bookingRepo: br,
		holdRepo:    hr,
		seatRepo:    sr,
		registry:    registry,
		lockManager: lm,
		cache:       cache,
		hub:         hub,
	}
}

// HandleProviderEvent はプロバイダーのWebhookを認証・正規化し、冪等に適用する
// 認証失敗（provider.ErrInvalidSignature）では一切の処理を行わない
func (s *PaymentService) HandleProviderEvent(ctx context.Context, providerName string, payload []byte, signature string) error {
	p, ok := s.registry.Get(providerName)
	if !ok {
		return provider.ErrUnknownProvider
	}
	if err := p.Verify(payload, signature); err != nil {
		s.countWebhook(providerName, "auth_error")
		return err
	}
	ev, err := p.Parse(payload)
	if err != nil {
		s.countWebhook(providerName, "bad_payload")
		return err
	}
	return s.apply(ctx, providerName, ev, payload)
}

// apply は正規化済みイベントを適用する
// 決済レコードの挿入と予約・座席の遷移は同一トランザクションで行われ、
// 途中のクラッシュで「支払い済みの決済レコードだけが残る」状態は生じない
func (s *PaymentService) apply(ctx context.Context, providerName string, ev *provider.Event, payload []byte) error {
	// 冪等性チェック（挿入時の一意制約が最終的な砦）
	if _, err := s.paymentRepo.GetByTransactionID(ctx, providerName, ev.TransactionID); err == nil {
		s.countWebhook(providerName, "duplicate")
		return nil
	} else if !errors.Is(err, payment.ErrPaymentNotFound) {
		return err
	}

	b, err := s.resolveBooking(ctx, ev)
	if err != nil {
		return err
	}

	// 同じ予約への決済イベントの適用を直列化する
	if s.lockManager != nil {
		lock, err := s.lockManager.AcquireLockWithRetry(ctx, redisinfra.BookingLockKey(s.lockTarget(b, ev)), bookingLockTTL, bookingLockMaxRetries, bookingLockRetryDelay)
		if err != nil {
			return fmt.Errorf("予約ロック取得に失敗: %w", err)
		}
		defer lock.Release(ctx)

		// ロック取得までの間に先行イベントが状態を変えている可能性がある
		if b != nil {
			if b, err = s.bookingRepo.GetByID(ctx, b.ID); err != nil {
				return err
			}
		}
	}

	tx, err := s.txManager.Begin(ctx)
	if err != nil {
		return fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	var updates []notifier.StatusUpdate
	var invalidateTrip string

	switch ev.Outcome {
	case payment.OutcomePending:
		// 監査用に記録するのみで状態遷移は行わない

	case payment.OutcomeSucceeded:
		if b != nil {
			if b.Status == booking.StatusReserved {
				if err := b.MarkPaid(ev.TransactionID); err != nil {
					return err
				}
				if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
					return err
				}
				updates = append(updates, statusUpdate(b))
			}
			// reserved 以外は先着イベントの結果を保持し、記録のみ残す
		} else if ev.HoldID != "" {
			// まだ仮押さえ段階の座席集合を決済が直接確定するケース
			nb, tripID, err := s.consumeHoldAsPaid(ctx, tx, ev)
			if err != nil {
				return err
			}
			if nb != nil {
				b = nb
				invalidateTrip = tripID
				updates = append(updates, statusUpdate(nb))
			}
		}

	case payment.OutcomeFailed:
		if b != nil {
			if b.Status == booking.StatusReserved {
				if err := b.MarkPaymentFailed(ev.TransactionID); err != nil {
					return err
				}
				if err := s.bookingRepo.Update(ctx, tx, b); err != nil {
					return err
				}
				updates = append(updates, statusUpdate(b))
			}
		} else if ev.HoldID != "" {
			// 予約前の失敗通知: 仮押さえ中の座席を解放する
			tripID, err := s.releaseHeldSeats(ctx, tx, ev.HoldID)
			if err != nil {
				return err
			}
			invalidateTrip = tripID
		}
	}

	bookingID := ""
	if b != nil {
		bookingID = b.ID
	}
	pay := payment.NewPayment(providerName, ev.TransactionID, bookingID, ev.Amount, ev.Outcome, payload)
	if err := pay.Validate(); err != nil {
		return err
	}
	if err := s.paymentRepo.Create(ctx, tx, pay); err != nil {
		if errors.Is(err, payment.ErrDuplicateTransaction) {
			// 再配送との競合: 先行配送が適用済みなので成功として扱う
			s.countWebhook(providerName, "duplicate")
			return nil
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("コミットに失敗: %w", err)
	}

	if invalidateTrip != "" && s.cache != nil {
		_ = s.cache.Invalidate(ctx, invalidateTrip)
	}
	if s.hub != nil {
		for _, u := range updates {
			s.hub.Publish(u)
		}
	}
	s.countWebhook(providerName, string(ev.Outcome))
	return nil
}

// GetPayment はプロバイダーとトランザクションIDから決済レコードを取得する
func (s *PaymentService) GetPayment(ctx context.Context, providerName, transactionID string) (*payment.Payment, error) {
	return s.paymentRepo.GetByTransactionID(ctx, providerName, transactionID)
}

// resolveBooking はイベントの booking_id（なければ保持している hold_id）から予約を引く
func (s *PaymentService) resolveBooking(ctx context.Context, ev *provider.Event) (*booking.Booking, error) {
	if ev.BookingID != "" {
		b, err := s.bookingRepo.GetByID(ctx, ev.BookingID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, booking.ErrBookingNotFound) {
			return nil, err
		}
	}
	if ev.HoldID != "" {
		b, err := s.bookingRepo.GetByHoldID(ctx, ev.HoldID)
		if err == nil {
			return b, nil
		}
		if !errors.Is(err, booking.ErrBookingNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

func (s *PaymentService) lockTarget(b *booking.Booking, ev *provider.Event) string {
	if b != nil {
		return b.ID
	}
	if ev.HoldID != "" {
		return ev.HoldID
	}
	return ev.TransactionID
}

// consumeHoldAsPaid はまだ active な仮押さえを予約へ消費し、そのまま支払い済みにする
// 仮押さえが見つからない・有効でない場合は突合を諦めて記録のみ残す（nilを返す）
func (s *PaymentService) consumeHoldAsPaid(ctx context.Context, tx transaction.Tx, ev *provider.Event) (*booking.Booking, string, error) {
	h, err := s.holdRepo.GetByID(ctx, ev.HoldID)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			logger.Warn("決済成功通知の仮押さえが見つかりません", zap.String("hold_id", ev.HoldID))
			return nil, "", nil
		}
		return nil, "", err
	}
	if !h.IsActive() {
		logger.Warn("決済成功通知の仮押さえが有効ではありません",
			zap.String("hold_id", h.ID), zap.String("status", string(h.Status)))
		return nil, "", nil
	}
	if h.OwnerID == "" {
		logger.Warn("所有者のない仮押さえへの決済成功通知", zap.String("hold_id", h.ID))
		return nil, "", nil
	}

	won, err := s.holdRepo.ConsumeActive(ctx, tx, h.ID)
	if err != nil {
		return nil, "", err
	}
	if !won {
		return nil, "", nil
	}

	total, err := s.holdAmount(ctx, h)
	if err != nil {
		return nil, "", err
	}

	nb := booking.NewBooking(h.TripID, h.ID, h.OwnerID, h.SeatIDs, total)
	if err := nb.Validate(); err != nil {
		return nil, "", err
	}
	if err := s.bookingRepo.Create(ctx, tx, nb); err != nil {
		return nil, "", err
	}
	if err := s.seatRepo.MarkBooked(ctx, tx, h.SeatIDs, nb.ID); err != nil {
		return nil, "", err
	}
	if err := nb.MarkPaid(ev.TransactionID); err != nil {
		return nil, "", err
	}
	if err := s.bookingRepo.Update(ctx, tx, nb); err != nil {
		return nil, "", err
	}
	return nb, h.TripID, nil
}

// releaseHeldSeats は予約前に失敗した決済の仮押さえ座席を解放する
func (s *PaymentService) releaseHeldSeats(ctx context.Context, tx transaction.Tx, holdID string) (string, error) {
	h, err := s.holdRepo.GetByID(ctx, holdID)
	if err != nil {
		if errors.Is(err, hold.ErrHoldNotFound) {
			return "", nil
		}
		return "", err
	}
	if h.Status != hold.StatusActive {
		return "", nil
	}
	won, err := s.holdRepo.TransitionStatus(ctx, tx, h.ID, hold.StatusActive, hold.StatusReleased)
	if err != nil {
		return "", err
	}
	if !won {
		return "", nil
	}
	if err := s.seatRepo.Release(ctx, tx, h.ID, h.SeatIDs); err != nil {
		return "", err
	}
	return h.TripID, nil
}

// holdAmount は仮押さえ対象座席の価格合計を計算する
func (s *PaymentService) holdAmount(ctx context.Context, h *hold.Hold) (int, error) {
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
		total += prices[id]
	}
	return total, nil
}

func statusUpdate(b *booking.Booking) notifier.StatusUpdate {
	return notifier.StatusUpdate{
		BookingID: b.ID,
		Status:    string(b.Status),
		UpdatedAt: b.UpdatedAt,
	}
}

func (s *PaymentService) countWebhook(providerName, outcome string) {
	if m := metrics.Get(); m != nil {
		m.WebhookEventsTotal.WithLabelValues(providerName, outcome).Inc()
	}
}
