package notifier

import (
	"context"
	"sync"
	"time"
)

// StatusUpdate は予約状態の変化を表す
type StatusUpdate struct {
	BookingID string    `json:"booking_id"`
	Status    string    `json:"status"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Hub は予約IDごとの購読者へ状態変化を配信するプッシュチャネル
// 送信はノンブロッキングで、遅い購読者はスキップされる
// （ポーリング側のフォールバックが取りこぼしを補う）
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]chan StatusUpdate
}

// NewHub は新しいHubを作成する
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]chan StatusUpdate)}
}

// Subscribe は予約IDの状態変化チャネルを購読する
// ctx がキャンセルされると購読は解除されチャネルは閉じられる
func (h *Hub) Subscribe(ctx context.Context, bookingID string) <-chan StatusUpdate {
	ch := make(chan StatusUpdate, 8)

	h.mu.Lock()
	h.subs[bookingID] = append(h.subs[bookingID], ch)
	h.mu.Unlock()

	go func() {
		<-ctx.Done()
		h.remove(bookingID, ch)
	}()

	return ch
}

// Publish は状態変化を全購読者へ配信する
func (h *Hub) Publish(update StatusUpdate) {
	h.mu.RLock()
	subs := h.subs[update.BookingID]
	h.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- update:
		default:
			// バッファが一杯の購読者はスキップ
		}
	}
}

// SubscriberCount は予約IDの購読者数を返す
func (h *Hub) SubscriberCount(bookingID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[bookingID])
}

func (h *Hub) remove(bookingID string, target chan StatusUpdate) {
	h.mu.Lock()
	defer h.mu.Unlock()

	subs := h.subs[bookingID]
	for i, ch := range subs {
		if ch == target {
			h.subs[bookingID] = append(subs[:i], subs[i+1:]...)
			close(ch)
			break
		}
	}
	if len(h.subs[bookingID]) == 0 {
		delete(h.subs, bookingID)
	}
}
