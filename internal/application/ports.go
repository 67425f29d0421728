package application

import (
	"context"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/eventbus"
)

// CouponValidator は外部クーポンサービスへの問い合わせを抽象化する
// 無効なコードは pricing.ErrCouponInvalid を返す
type CouponValidator interface {
	Validate(ctx context.Context, code, sessionID string, subtotal int) (*pricing.Coupon, error)
}

// ChargeInput は決済ゲートウェイへの課金リクエスト
type ChargeInput struct {
	UserID    string
	Amount    int
	Reference string // reservation_id または checkout_id
}

// PaymentGateway は決済処理を抽象化する
// 実際の決済はこのエンジンの範囲外であり、成否だけを受け取る
type PaymentGateway interface {
	Charge(ctx context.Context, input ChargeInput) error
}

// EventPublisher は予約ライフサイクルイベントの発行を抽象化する
// 発行の失敗は業務処理を失敗させず、ログに記録するのみ
type EventPublisher interface {
	PublishHoldCreated(ctx context.Context, event eventbus.HoldCreated) error
	PublishHoldCancelled(ctx context.Context, event eventbus.HoldCancelled) error
	PublishHoldExpired(ctx context.Context, event eventbus.HoldExpired) error
	PublishPurchaseCompleted(ctx context.Context, event eventbus.PurchaseCompleted) error
}

// CacheInvalidator は空席スナップショットキャッシュの無効化を抽象化する
type CacheInvalidator interface {
	Invalidate(ctx context.Context, sessionID string) error
}
