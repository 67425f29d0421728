package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrCacheMiss = errors.New("キャッシュが見つかりません")
)

// SeatAvailability は空席スナップショットの座席1件分
type SeatAvailability struct {
	ID     string `json:"id"`
	Zone   string `json:"zone"`
	Number string `json:"number"`
	Status string `json:"status"`
	Price  int    `json:"price"`
}

// TierAvailability は空席スナップショットのティア1件分
type TierAvailability struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Remaining int    `json:"remaining"`
	Price     int    `json:"price"`
}

// AvailabilitySnapshot はセッションの空席状況の読み取り専用スナップショット
// 古い値が返ることは許容され、正しさは TryLock / Confirm 時にのみ保証される
type AvailabilitySnapshot struct {
	SessionID   string             `json:"session_id"`
	Seats       []SeatAvailability `json:"seats"`
	Tiers       []TierAvailability `json:"tiers"`
	GeneratedAt time.Time          `json:"generated_at"`
}

// AvailabilityCache は空席スナップショットのキャッシュを管理する
type AvailabilityCache struct {
	client *redis.Client
}

// NewAvailabilityCache は新しいAvailabilityCacheインスタンスを作成する
func NewAvailabilityCache(client *redis.Client) *AvailabilityCache {
	return &AvailabilityCache{client: client}
}

// Get はセッションのスナップショットをキャッシュから取得する
func (c *AvailabilityCache) Get(ctx context.Context, sessionID string) (*AvailabilitySnapshot, error) {
	key := c.snapshotKey(sessionID)
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("キャッシュ取得に失敗: %w", err)
	}
	var snapshot AvailabilitySnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("キャッシュのデコードに失敗: %w", err)
	}
	return &snapshot, nil
}

// Set はセッションのスナップショットをキャッシュに保存する
func (c *AvailabilityCache) Set(ctx context.Context, snapshot *AvailabilitySnapshot, ttl time.Duration) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("キャッシュのエンコードに失敗: %w", err)
	}
	if err := c.client.Set(ctx, c.snapshotKey(snapshot.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("キャッシュ保存に失敗: %w", err)
	}
	return nil
}

// Invalidate はセッションのキャッシュを無効化する
func (c *AvailabilityCache) Invalidate(ctx context.Context, sessionID string) error {
	if err := c.client.Del(ctx, c.snapshotKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("キャッシュ無効化に失敗: %w", err)
	}
	return nil
}

func (c *AvailabilityCache) snapshotKey(sessionID string) string {
	return fmt.Sprintf("availability:%s", sessionID)
}
