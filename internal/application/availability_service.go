package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	redisinfra "github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
)

// AvailabilityService はセッションの空席スナップショットを提供する
// スナップショットは参考情報であり、古い値が返ることは許容される
// 正しさはホールド作成・購入確定時の在庫操作でのみ保証される
type AvailabilityService struct {
	inventoryStore inventory.Store
	cache          *redisinfra.AvailabilityCache
	cacheTTL       time.Duration
}

func NewAvailabilityService(store inventory.Store, cache *redisinfra.AvailabilityCache, cacheTTL time.Duration) *AvailabilityService {
	if cacheTTL <= 0 {
		cacheTTL = 10 * time.Second
	}
	return &AvailabilityService{inventoryStore: store, cache: cache, cacheTTL: cacheTTL}
}

// GetAvailability はセッションの空席スナップショットを返す（キャッシュ優先）
func (s *AvailabilityService) GetAvailability(ctx context.Context, sessionID string) (*redisinfra.AvailabilitySnapshot, error) {
	if s.cache != nil {
		snapshot, err := s.cache.Get(ctx, sessionID)
		if err == nil {
			return snapshot, nil
		}
		if !errors.Is(err, redisinfra.ErrCacheMiss) {
			logger.Warn("キャッシュ取得に失敗", zap.String("session_id", sessionID), zap.Error(err))
		}
	}

	snapshot, err := s.buildSnapshot(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, snapshot, s.cacheTTL); err != nil {
			logger.Warn("キャッシュ保存に失敗", zap.String("session_id", sessionID), zap.Error(err))
		}
	}
	return snapshot, nil
}

// CountAvailable はセッションの空席数を返す（キャッシュなしの直接カウント）
func (s *AvailabilityService) CountAvailable(ctx context.Context, sessionID string) (int, error) {
	return s.inventoryStore.CountAvailableBySession(ctx, sessionID)
}

func (s *AvailabilityService) buildSnapshot(ctx context.Context, sessionID string) (*redisinfra.AvailabilitySnapshot, error) {
	seats, err := s.inventoryStore.GetSeatsBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("座席取得に失敗: %w", err)
	}
	tiers, err := s.inventoryStore.GetTiersBySession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("ティア取得に失敗: %w", err)
	}

	snapshot := &redisinfra.AvailabilitySnapshot{
		SessionID:   sessionID,
		Seats:       make([]redisinfra.SeatAvailability, len(seats)),
		Tiers:       make([]redisinfra.TierAvailability, len(tiers)),
		GeneratedAt: time.Now(),
	}
	for i, seat := range seats {
		snapshot.Seats[i] = redisinfra.SeatAvailability{
			ID:     seat.ID,
			Zone:   seat.Zone,
			Number: seat.SeatNumber,
			Status: string(seat.Status),
			Price:  seat.Price,
		}
	}
	for i, tier := range tiers {
		snapshot.Tiers[i] = redisinfra.TierAvailability{
			ID:        tier.ID,
			Name:      tier.Name,
			Remaining: tier.Remaining,
			Price:     tier.Price,
		}
	}
	return snapshot, nil
}
