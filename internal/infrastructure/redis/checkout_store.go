package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
)

// CheckoutStore はチェックアウトセッションを Redis に保存する
// 状態の真実はサーバー側にあり、クライアントはここに保存された
// ステップを描画するだけ（クライアント側の状態に権威はない）
type CheckoutStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCheckoutStore は新しいCheckoutStoreを作成する
func NewCheckoutStore(client *redis.Client, ttl time.Duration) *CheckoutStore {
	return &CheckoutStore{client: client, ttl: ttl}
}

type checkoutRecord struct {
	ID            string    `json:"id"`
	SessionID     string    `json:"session_id"`
	UserID        string    `json:"user_id"`
	Step          string    `json:"step"`
	ReservationID *string   `json:"reservation_id,omitempty"`
	OrderID       *string   `json:"order_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Save はチェックアウトセッションを保存する（TTL付き）
func (s *CheckoutStore) Save(ctx context.Context, c *checkout.Checkout) error {
	record := checkoutRecord{
		ID: c.ID, SessionID: c.SessionID, UserID: c.UserID,
		Step: string(c.Step), ReservationID: c.ReservationID, OrderID: c.OrderID,
		CreatedAt: c.CreatedAt, UpdatedAt: c.UpdatedAt,
	}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("チェックアウトのエンコードに失敗: %w", err)
	}
	if err := s.client.Set(ctx, s.key(c.ID), data, s.ttl).Err(); err != nil {
		return fmt.Errorf("チェックアウト保存に失敗: %w", err)
	}
	return nil
}

// Get はIDからチェックアウトセッションを取得する
func (s *CheckoutStore) Get(ctx context.Context, id string) (*checkout.Checkout, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, checkout.ErrCheckoutNotFound
		}
		return nil, fmt.Errorf("チェックアウト取得に失敗: %w", err)
	}
	var record checkoutRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("チェックアウトのデコードに失敗: %w", err)
	}
	return &checkout.Checkout{
		ID: record.ID, SessionID: record.SessionID, UserID: record.UserID,
		Step: checkout.Step(record.Step), ReservationID: record.ReservationID, OrderID: record.OrderID,
		CreatedAt: record.CreatedAt, UpdatedAt: record.UpdatedAt,
	}, nil
}

// Delete はチェックアウトセッションを削除する
func (s *CheckoutStore) Delete(ctx context.Context, id string) error {
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("チェックアウト削除に失敗: %w", err)
	}
	return nil
}

func (s *CheckoutStore) key(id string) string {
	return fmt.Sprintf("checkout:%s", id)
}
