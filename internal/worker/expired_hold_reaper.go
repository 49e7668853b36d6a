package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/logger"
)

// HoldExpirer は期限切れ仮押さえを失効させるインターフェース
type HoldExpirer interface {
	ExpireOverdueHolds(ctx context.Context) (int, error)
}

// ExpiredHoldReaper は期限切れ仮押さえを回収するワーカー
// 失効処理自体が冪等なため、二重起動しても座席が二重解放されることはない
type ExpiredHoldReaper struct {
	holdService HoldExpirer
	interval    time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
}

// NewExpiredHoldReaper は新しいリーパーを作成
func NewExpiredHoldReaper(hs HoldExpirer, interval time.Duration) *ExpiredHoldReaper {
	return &ExpiredHoldReaper{
		holdService: hs,
		interval:    interval,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}
}

// Start はリーパーを開始
func (r *ExpiredHoldReaper) Start(ctx context.Context) {
	logger.Info("期限切れ仮押さえリーパー開始",
		zap.Duration("interval", r.interval),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("期限切れ仮押さえリーパー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("期限切れ仮押さえリーパー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.reap(ctx)
		}
	}
}

// Stop はリーパーを停止
func (r *ExpiredHoldReaper) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// reap は期限切れ仮押さえを失効させる
func (r *ExpiredHoldReaper) reap(ctx context.Context) {
	log := logger.Get()
	log.Debug("期限切れ仮押さえの回収開始")

	count, err := r.holdService.ExpireOverdueHolds(ctx)
	if err != nil {
		log.Error("期限切れ仮押さえの回収失敗", zap.Error(err))
		return
	}

	if count > 0 {
		log.Info("期限切れ仮押さえを失効", zap.Int("count", count))
	} else {
		log.Debug("期限切れ仮押さえなし")
	}
}
