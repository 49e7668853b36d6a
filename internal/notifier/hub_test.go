package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_PublishSubscribe(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "booking-1")
	assert.Equal(t, 1, hub.SubscriberCount("booking-1"))

	update := StatusUpdate{BookingID: "booking-1", Status: "paid", UpdatedAt: time.Now()}
	hub.Publish(update)

	select {
	case got := <-ch:
		assert.Equal(t, update, got)
	case <-time.After(time.Second):
		t.Fatal("状態変化が届きませんでした")
	}
}

func TestHub_PublishToOtherBooking(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := hub.Subscribe(ctx, "booking-1")

	// 別の予約への配信は届かない
	hub.Publish(StatusUpdate{BookingID: "booking-2", Status: "paid"})

	select {
	case got := <-ch:
		t.Fatalf("別予約の更新が届いてしまいました: %+v", got)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHub_MultipleSubscribers(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch1 := hub.Subscribe(ctx, "booking-1")
	ch2 := hub.Subscribe(ctx, "booking-1")
	assert.Equal(t, 2, hub.SubscriberCount("booking-1"))

	hub.Publish(StatusUpdate{BookingID: "booking-1", Status: "paid"})

	for _, ch := range []<-chan StatusUpdate{ch1, ch2} {
		select {
		case got := <-ch:
			assert.Equal(t, "paid", got.Status)
		case <-time.After(time.Second):
			t.Fatal("全購読者への配信が完了しませんでした")
		}
	}
}

func TestHub_UnsubscribeOnContextCancel(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())

	ch := hub.Subscribe(ctx, "booking-1")
	require.Equal(t, 1, hub.SubscriberCount("booking-1"))

	cancel()

	// 購読解除は非同期なので収束を待つ
	assert.Eventually(t, func() bool {
		return hub.SubscriberCount("booking-1") == 0
	}, time.Second, 10*time.Millisecond)

	// 解除後はチャネルが閉じられている
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_SlowSubscriberDoesNotBlock(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 誰も受信しない購読者のバッファを溢れさせる
	hub.Subscribe(ctx, "booking-1")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			hub.Publish(StatusUpdate{BookingID: "booking-1", Status: "paid"})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("遅い購読者に配信がブロックされました")
	}
}
