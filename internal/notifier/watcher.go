package notifier

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/logger"
)

// BookingStatusSource は予約状態の直接照会を表す（ポーリング側の情報源）
type BookingStatusSource interface {
	GetBookingStatus(ctx context.Context, bookingID string) (status string, updatedAt time.Time, err error)
}

// ポーリング間隔の既定値
const (
	DefaultPollInitial = 500 * time.Millisecond
	DefaultPollMax     = 15 * time.Second
)

// Watcher はプッシュ購読とバックオフ付きポーリングを束ねた状態監視
// どちらの経路の更新も購読者へ届き、届いた時点でバックオフは初期値に戻る
// 同一状態の連続通知は合流（coalesce）され重複配信されない
type Watcher struct {
	hub         *Hub
	source      BookingStatusSource
	pollInitial time.Duration
	pollMax     time.Duration
}

// WatcherOption はWatcherの設定オプション
type WatcherOption func(*Watcher)

// WithPollInterval はポーリングの初期間隔と上限を上書きする
func WithPollInterval(initial, max time.Duration) WatcherOption {
	return func(w *Watcher) {
		if initial > 0 {
			w.pollInitial = initial
		}
		if max > 0 {
			w.pollMax = max
		}
	}
}

// NewWatcher は新しいWatcherを作成する
func NewWatcher(hub *Hub, source BookingStatusSource, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		hub:         hub,
		source:      source,
		pollInitial: DefaultPollInitial,
		pollMax:     DefaultPollMax,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Watch は予約の状態ストリームを返す
// 現在の状態を最初に1回届け、以降はプッシュとポーリングの早い方が勝つ
// ctx のキャンセルで購読とタイマーは必ず解放される
func (w *Watcher) Watch(ctx context.Context, bookingID string) <-chan StatusUpdate {
	out := make(chan StatusUpdate, 8)

	go func() {
		defer close(out)

		sub := w.hub.Subscribe(ctx, bookingID)
		interval := w.pollInitial
		var lastStatus string

		deliver := func(u StatusUpdate) bool {
			if u.Status == lastStatus {
				return false
			}
			lastStatus = u.Status
			select {
			case out <- u:
			case <-ctx.Done():
			}
			return true
		}

		// 初回は直接照会して現在の状態を届ける
		if status, updatedAt, err := w.source.GetBookingStatus(ctx, bookingID); err == nil {
			deliver(StatusUpdate{BookingID: bookingID, Status: status, UpdatedAt: updatedAt})
		} else {
			logger.Warn("予約状態の初回取得に失敗", zap.String("booking_id", bookingID), zap.Error(err))
		}

		timer := time.NewTimer(interval)
		defer timer.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case u, ok := <-sub:
				if !ok {
					return
				}
				deliver(u)
				// プッシュが生きている間はバックオフを初期値へ戻す
				interval = w.pollInitial
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				timer.Reset(interval)

			case <-timer.C:
				status, updatedAt, err := w.source.GetBookingStatus(ctx, bookingID)
				switch {
				case err != nil:
					logger.Warn("予約状態のポーリングに失敗", zap.String("booking_id", bookingID), zap.Error(err))
					interval = w.nextInterval(interval)
				case deliver(StatusUpdate{BookingID: bookingID, Status: status, UpdatedAt: updatedAt}):
					// 変化を検知したらバックオフを初期値へ戻す
					interval = w.pollInitial
				default:
					interval = w.nextInterval(interval)
				}
				timer.Reset(interval)
			}
		}
	}()

	return out
}

// nextInterval は間隔を2倍にし、上限で頭打ちにする
func (w *Watcher) nextInterval(current time.Duration) time.Duration {
	next := current * 2
	if next > w.pollMax {
		return w.pollMax
	}
	return next
}
