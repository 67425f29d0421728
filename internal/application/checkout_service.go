package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
)

var (
	ErrPaymentFailed = errors.New("決済に失敗しました")
)

// CheckoutRepository はチェックアウトセッションの永続化を抽象化する
type CheckoutRepository interface {
	Save(ctx context.Context, c *checkout.Checkout) error
	Get(ctx context.Context, id string) (*checkout.Checkout, error)
	Delete(ctx context.Context, id string) error
}

// CheckoutService はチェックアウトの進行をサーバー側で管理する
// ステップの真実はここが保持し、クライアントは返された状態を描画するだけ
// 残り時間は予約の ExpiresAt から導出され、クライアント側のカウントダウンに権威はない
type CheckoutService struct {
	store        CheckoutRepository
	reservations *ReservationService
	gateway      PaymentGateway
}

func NewCheckoutService(store CheckoutRepository, rs *ReservationService, gateway PaymentGateway) *CheckoutService {
	return &CheckoutService{store: store, reservations: rs, gateway: gateway}
}

// Start は seats ステップの新しいチェックアウトを開始する
func (s *CheckoutService) Start(ctx context.Context, sessionID, userID string) (*checkout.Checkout, error) {
	c := checkout.New(uuid.New().String(), sessionID, userID)
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get はチェックアウトの現在の状態を返す
func (s *CheckoutService) Get(ctx context.Context, id string) (*checkout.Checkout, error) {
	return s.store.Get(ctx, id)
}

type SelectSeatsInput struct {
	SeatIDs        []string
	TierQuantities []TierQuantityInput
	IdempotencyKey string
}

type SelectSeatsResult struct {
	Checkout    *checkout.Checkout
	Reservation *reservation.Reservation
}

// SelectSeats は座席選択を確定してホールドを作成し、checkout ステップへ進める
// ホールド作成に失敗した場合（競合等）、チェックアウトは seats ステップに留まる
func (s *CheckoutService) SelectSeats(ctx context.Context, id string, input SelectSeatsInput) (*SelectSeatsResult, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Step != checkout.StepSeats {
		return nil, checkout.ErrInvalidTransition
	}

	res, err := s.reservations.CreateHold(ctx, CreateHoldInput{
		SessionID:      c.SessionID,
		UserID:         c.UserID,
		SeatIDs:        input.SeatIDs,
		TierQuantities: input.TierQuantities,
		IdempotencyKey: input.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}

	if err := c.AttachHold(res.ID); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return &SelectSeatsResult{Checkout: c, Reservation: res}, nil
}

// ProceedToPayment は購入者情報の入力を終えて payment ステップへ進める
func (s *CheckoutService) ProceedToPayment(ctx context.Context, id string) (*checkout.Checkout, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := c.ProceedToPayment(); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

type SubmitPaymentInput struct {
	ClientTotal int
	CouponCode  string
	BuyerName   string
	BuyerEmail  string
}

type SubmitPaymentResult struct {
	Checkout *checkout.Checkout
	Order    *ticket.Order
	Tickets  []*ticket.Ticket
}

// SubmitPayment は決済を実行してホールドを購入に確定する
// 決済失敗時は checkout ステップへ戻り、ホールドは期限内であれば生き続ける
func (s *CheckoutService) SubmitPayment(ctx context.Context, id string, input SubmitPaymentInput) (*SubmitPaymentResult, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.ReservationID == nil {
		return nil, checkout.ErrInvalidTransition
	}
	if err := c.BeginProcessing(); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}

	if err := s.gateway.Charge(ctx, ChargeInput{
		UserID:    c.UserID,
		Amount:    input.ClientTotal,
		Reference: *c.ReservationID,
	}); err != nil {
		// 決済失敗: checkout へ戻す（ホールドは維持される）
		s.failBack(ctx, c)
		return nil, fmt.Errorf("%w: %v", ErrPaymentFailed, err)
	}

	result, err := s.reservations.Confirm(ctx, ConfirmInput{
		ReservationID: *c.ReservationID,
		ClientTotal:   input.ClientTotal,
		CouponCode:    input.CouponCode,
		BuyerName:     input.BuyerName,
		BuyerEmail:    input.BuyerEmail,
	})
	if err != nil {
		s.failBack(ctx, c)
		return nil, err
	}

	if err := c.Complete(result.Order.ID); err != nil {
		return nil, err
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return &SubmitPaymentResult{Checkout: c, Order: result.Order, Tickets: result.Tickets}, nil
}

// Abandon はチェックアウトを中断してホールドを解放し、seats ステップへ戻す
func (s *CheckoutService) Abandon(ctx context.Context, id string) (*checkout.Checkout, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	reservationID := c.ReservationID
	if err := c.Abandon(); err != nil {
		return nil, err
	}
	if reservationID != nil {
		if _, err := s.reservations.Cancel(ctx, *reservationID); err != nil {
			if !errors.Is(err, reservation.ErrReservationNotFound) {
				return nil, err
			}
		}
	}
	if err := s.store.Save(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// failBack は processing から checkout へ戻して保存する
func (s *CheckoutService) failBack(ctx context.Context, c *checkout.Checkout) {
	if err := c.FailPayment(); err != nil {
		return
	}
	_ = s.store.Save(ctx, c)
}
