package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("キャッシュが見つかりません")

// SeatCache は便ごとの空席数キャッシュを管理する
// 座席状態を変更した操作は必ず Invalidate を呼ぶ
type SeatCache struct {
	client *redis.Client
}

// NewSeatCache は新しいSeatCacheインスタンスを作成する
func NewSeatCache(client *redis.Client) *SeatCache {
	return &SeatCache{client: client}
}

// GetFreeCount は便の空席数をキャッシュから取得する
func (c *SeatCache) GetFreeCount(ctx context.Context, tripID string) (int, error) {
	val, err := c.client.Get(ctx, c.freeCountKey(tripID)).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrCacheMiss
		}
		return 0, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	return val, nil
}

// SetFreeCount は便の空席数をキャッシュに保存する
func (c *SeatCache) SetFreeCount(ctx context.Context, tripID string, count int, ttl time.Duration) error {
	if err := c.client.Set(ctx, c.freeCountKey(tripID), count, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate は便のキャッシュを無効化する
func (c *SeatCache) Invalidate(ctx context.Context, tripID string) error {
	if err := c.client.Del(ctx, c.freeCountKey(tripID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *SeatCache) freeCountKey(tripID string) string {
	return fmt.Sprintf("seats:free:%s", tripID)
}
