package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/eventbus"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/metrics"
)

var (
	ErrInvalidPurchaseInput = errors.New("購入リクエストが不正です")
)

type PurchaseInput struct {
	SessionID      string
	UserID         string
	ReservationID  string              // 指定席: 既存ホールドを確定する
	TierQuantities []TierQuantityInput // GA: ホールドなしの直接購入
	ClientTotal    int
	CouponCode     string
	BuyerName      string
	BuyerEmail     string
}

type PurchaseResult struct {
	Order   *ticket.Order
	Tickets []*ticket.Ticket
	Quote   pricing.PriceQuote
}

// PurchaseStrategy は購入経路（指定席 / GA）を抽象化する
// どちらの実装も最終的に Order + Tickets を単一トランザクションで生成する
type PurchaseStrategy interface {
	Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error)
}

// PurchaseService は入力の形から購入経路を選択して実行する
type PurchaseService struct {
	seated PurchaseStrategy
	ga     PurchaseStrategy
}

func NewPurchaseService(seated, ga PurchaseStrategy) *PurchaseService {
	return &PurchaseService{seated: seated, ga: ga}
}

// Purchase は reservation_id があれば指定席経路、tier_quantities があればGA経路を実行する
func (s *PurchaseService) Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	switch {
	case input.ReservationID != "":
		return s.seated.Purchase(ctx, input)
	case len(input.TierQuantities) > 0:
		return s.ga.Purchase(ctx, input)
	default:
		return nil, ErrInvalidPurchaseInput
	}
}

// seatedPurchase はホールド済みの予約を確定する購入経路
type seatedPurchase struct {
	reservations *ReservationService
}

func NewSeatedPurchase(rs *ReservationService) PurchaseStrategy {
	return &seatedPurchase{reservations: rs}
}

func (p *seatedPurchase) Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	result, err := p.reservations.Confirm(ctx, ConfirmInput{
		ReservationID: input.ReservationID,
		ClientTotal:   input.ClientTotal,
		CouponCode:    input.CouponCode,
		BuyerName:     input.BuyerName,
		BuyerEmail:    input.BuyerEmail,
	})
	if err != nil {
		return nil, err
	}
	return &PurchaseResult{Order: result.Order, Tickets: result.Tickets, Quote: result.Quote}, nil
}

// generalAdmissionPurchase はGAティアのホールドなし直接購入
// 在庫の比較減算と注文作成を単一トランザクションで行うため、
// ホールド段階を挟まなくても売り越しは起きない
type generalAdmissionPurchase struct {
	txManager       transaction.Manager
	inventoryStore  inventory.Store
	sessionRepo     session.Repository
	ticketRepo      ticket.Repository
	couponValidator CouponValidator
	publisher       EventPublisher
	cache           CacheInvalidator
	metrics         *metrics.Metrics
	priceTolerance  int
}

type GeneralAdmissionOptions struct {
	CouponValidator CouponValidator
	Publisher       EventPublisher
	Cache           CacheInvalidator
	Metrics         *metrics.Metrics
	PriceTolerance  int
}

func NewGeneralAdmissionPurchase(
	txManager transaction.Manager,
	store inventory.Store,
	sessRepo session.Repository,
	tr ticket.Repository,
	opts GeneralAdmissionOptions,
) PurchaseStrategy {
	return &generalAdmissionPurchase{
		txManager:       txManager,
		inventoryStore:  store,
		sessionRepo:     sessRepo,
		ticketRepo:      tr,
		couponValidator: opts.CouponValidator,
		publisher:       opts.Publisher,
		cache:           opts.Cache,
		metrics:         opts.Metrics,
		priceTolerance:  opts.PriceTolerance,
	}
}

func (p *generalAdmissionPurchase) Purchase(ctx context.Context, input PurchaseInput) (*PurchaseResult, error) {
	if len(input.TierQuantities) == 0 {
		return nil, ErrInvalidPurchaseInput
	}

	sess, err := p.sessionRepo.GetByID(ctx, input.SessionID)
	if err != nil {
		return nil, fmt.Errorf("セッション取得に失敗: %w", err)
	}
	if !sess.IsSaleOpen(time.Now()) {
		return nil, session.ErrSaleClosed
	}

	// 価格の取得（在庫の確定的な減算はトランザクション内で行う）
	type tierUnit struct {
		tierID    string
		quantity  int
		unitPrice int
	}
	var tierUnits []tierUnit
	var units []pricing.Unit
	var subtotal int
	for _, tq := range input.TierQuantities {
		if tq.Quantity <= 0 {
			return nil, inventory.ErrInvalidQuantity
		}
		tier, err := p.inventoryStore.GetTierByID(ctx, tq.TierID)
		if err != nil {
			return nil, fmt.Errorf("ティア取得に失敗: %w", err)
		}
		tierUnits = append(tierUnits, tierUnit{tierID: tq.TierID, quantity: tq.Quantity, unitPrice: tier.Price})
		units = append(units, pricing.Unit{UnitPrice: tier.Price, Quantity: tq.Quantity, PerUnitFee: sess.PerUnitFee})
		subtotal += tier.Price * tq.Quantity
	}

	var coupon *pricing.Coupon
	var couponCode *string
	if input.CouponCode != "" {
		if p.couponValidator == nil {
			return nil, pricing.ErrCouponInvalid
		}
		coupon, err = p.couponValidator.Validate(ctx, input.CouponCode, input.SessionID, subtotal)
		if err != nil {
			return nil, err
		}
		couponCode = &input.CouponCode
	}

	quote := pricing.Quote(units, sess.FeeConfig(), coupon)
	if !quote.WithinTolerance(input.ClientTotal, p.priceTolerance) {
		p.countPurchase("price_mismatch")
		return nil, pricing.ErrPriceMismatch
	}

	// 比較減算と注文作成をアトミックに行う
	// remaining が足りなければ減算が失敗し、トランザクション全体が巻き戻る
	tx, err := p.txManager.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("トランザクション開始に失敗: %w", err)
	}
	defer tx.Rollback()

	for _, tu := range tierUnits {
		if err := p.inventoryStore.TakeTierCapacity(ctx, tx, tu.tierID, tu.quantity); err != nil {
			if errors.Is(err, inventory.ErrCapacityExceeded) {
				p.countPurchase("capacity_exceeded")
			}
			return nil, err
		}
	}

	order := ticket.NewOrder(nil, input.SessionID, input.UserID, input.BuyerName, input.BuyerEmail, quote.Subtotal, quote.Fees, quote.Discount, quote.Total, couponCode)
	var tickets []*ticket.Ticket
	for _, tu := range tierUnits {
		for i := 0; i < tu.quantity; i++ {
			tickets = append(tickets, ticket.NewTierTicket("", input.SessionID, tu.tierID, tu.unitPrice))
		}
	}
	if err := p.ticketRepo.CreateOrder(ctx, tx, order, tickets); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("コミットに失敗: %w", err)
	}

	p.countPurchase("success")
	if p.cache != nil {
		if err := p.cache.Invalidate(ctx, input.SessionID); err != nil {
			logger.Warn("キャッシュ無効化に失敗", zap.String("session_id", input.SessionID), zap.Error(err))
		}
	}
	if p.publisher != nil {
		if err := p.publisher.PublishPurchaseCompleted(ctx, eventbus.PurchaseCompleted{
			OrderID:     order.ID,
			SessionID:   input.SessionID,
			UserID:      input.UserID,
			TotalAmount: order.Total,
			TicketCount: len(tickets),
			OccurredAt:  time.Now(),
		}); err != nil {
			logger.Warn("イベント発行に失敗", zap.Error(err))
		}
	}
	return &PurchaseResult{Order: order, Tickets: tickets, Quote: quote}, nil
}

func (p *generalAdmissionPurchase) countPurchase(status string) {
	if p.metrics != nil {
		p.metrics.PurchasesTotal.WithLabelValues("general_admission", status).Inc()
	}
}
