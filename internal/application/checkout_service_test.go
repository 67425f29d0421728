package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
)

type checkoutFixture struct {
	store   *MockCheckoutRepository
	txm     *MockTxManager
	tx      *MockTx
	rr      *MockReservationRepository
	inv     *MockInventoryStore
	sr      *MockSessionRepository
	tr      *MockTicketRepository
	gateway *MockPaymentGateway
	svc     *CheckoutService
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		store:   new(MockCheckoutRepository),
		txm:     new(MockTxManager),
		tx:      new(MockTx),
		rr:      new(MockReservationRepository),
		inv:     new(MockInventoryStore),
		sr:      new(MockSessionRepository),
		tr:      new(MockTicketRepository),
		gateway: new(MockPaymentGateway),
	}
	rs := NewReservationService(f.txm, f.rr, f.inv, f.sr, f.tr, nil, ReservationServiceOptions{})
	f.svc = NewCheckoutService(f.store, rs, f.gateway)
	return f
}

func checkoutAt(step checkout.Step, reservationID *string) *checkout.Checkout {
	now := time.Now()
	return &checkout.Checkout{
		ID:            "co-1",
		SessionID:     "session-1",
		UserID:        "user-1",
		Step:          step,
		ReservationID: reservationID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func TestCheckoutService_Start(t *testing.T) {
	ctx := context.Background()
	f := newCheckoutFixture()
	f.store.On("Save", ctx, mock.AnythingOfType("*checkout.Checkout")).Return(nil)

	c, err := f.svc.Start(ctx, "session-1", "user-1")

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, checkout.StepSeats, c.Step)
	assert.Nil(t, c.ReservationID)
}

func TestCheckoutService_SelectSeats(t *testing.T) {
	ctx := context.Background()

	t.Run("座席選択でホールドを作成してcheckoutステップへ進む", func(t *testing.T) {
		f := newCheckoutFixture()
		f.store.On("Get", ctx, "co-1").Return(checkoutAt(checkout.StepSeats, nil), nil)
		f.store.On("Save", ctx, mock.AnythingOfType("*checkout.Checkout")).Return(nil)
		f.rr.On("GetByIdempotencyKey", ctx, "key-1").Return(nil, reservation.ErrReservationNotFound)
		f.sr.On("GetByID", ctx, "session-1").Return(newOpenSession(), nil)
		f.inv.On("GetSeatsByIDs", ctx, []string{"seat-1"}).Return([]*inventory.Seat{newTestSeat("seat-1", 5000)}, nil)
		f.txm.On("Begin", ctx).Return(f.tx, nil)
		f.tx.On("Rollback").Return(nil)
		f.tx.On("Commit").Return(nil)
		f.rr.On("Create", ctx, f.tx, mock.AnythingOfType("*reservation.Reservation")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*reservation.Reservation).ID = "res-1"
			}).Return(nil)
		f.inv.On("HoldSeats", ctx, f.tx, []string{"seat-1"}, "res-1").Return(nil)

		result, err := f.svc.SelectSeats(ctx, "co-1", SelectSeatsInput{
			SeatIDs:        []string{"seat-1"},
			IdempotencyKey: "key-1",
		})

		require.NoError(t, err)
		assert.Equal(t, checkout.StepCheckout, result.Checkout.Step)
		require.NotNil(t, result.Checkout.ReservationID)
		assert.Equal(t, "res-1", *result.Checkout.ReservationID)
		assert.Equal(t, "res-1", result.Reservation.ID)
	})

	t.Run("seats以外のステップからはErrInvalidTransition", func(t *testing.T) {
		f := newCheckoutFixture()
		resID := "res-1"
		f.store.On("Get", ctx, "co-1").Return(checkoutAt(checkout.StepPayment, &resID), nil)

		_, err := f.svc.SelectSeats(ctx, "co-1", SelectSeatsInput{SeatIDs: []string{"seat-1"}})

		assert.ErrorIs(t, err, checkout.ErrInvalidTransition)
	})

	t.Run("ホールド作成に失敗した場合はseatsステップに留まる", func(t *testing.T) {
		f := newCheckoutFixture()
		c := checkoutAt(checkout.StepSeats, nil)
		f.store.On("Get", ctx, "co-1").Return(c, nil)
		f.rr.On("GetByIdempotencyKey", ctx, "key-1").Return(nil, reservation.ErrReservationNotFound)
		f.sr.On("GetByID", ctx, "session-1").Return(newOpenSession(), nil)
		held := newTestSeat("seat-1", 5000)
		held.Status = inventory.StatusHeld
		f.inv.On("GetSeatsByIDs", ctx, []string{"seat-1"}).Return([]*inventory.Seat{held}, nil)

		_, err := f.svc.SelectSeats(ctx, "co-1", SelectSeatsInput{
			SeatIDs:        []string{"seat-1"},
			IdempotencyKey: "key-1",
		})

		assert.ErrorIs(t, err, inventory.ErrSeatConflict)
		assert.Equal(t, checkout.StepSeats, c.Step)
		f.store.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func TestCheckoutService_SubmitPayment(t *testing.T) {
	ctx := context.Background()
	resID := "res-1"

	setupConfirmChain := func(f *checkoutFixture) {
		res := newActiveReservation("res-1", []string{"seat-1", "seat-2"})
		f.rr.On("GetByID", ctx, "res-1").Return(res, nil)
		f.sr.On("GetByID", ctx, "session-1").Return(newOpenSession(), nil)
		f.inv.On("GetSeatsByIDs", ctx, []string{"seat-1", "seat-2"}).Return([]*inventory.Seat{
			newTestSeat("seat-1", 5000),
			newTestSeat("seat-2", 5000),
		}, nil)
		f.txm.On("Begin", ctx).Return(f.tx, nil)
		f.tx.On("Rollback").Return(nil)
		f.tx.On("Commit").Return(nil)
		f.rr.On("TransitionStatus", ctx, f.tx, "res-1", reservation.StatusActive, reservation.StatusConfirmed).Return(true, nil)
		f.inv.On("MarkSeatsSold", ctx, f.tx, []string{"seat-1", "seat-2"}).Return(nil)
		f.tr.On("CreateOrder", ctx, f.tx, mock.AnythingOfType("*ticket.Order"), mock.AnythingOfType("[]*ticket.Ticket")).
			Run(func(args mock.Arguments) {
				args.Get(2).(*ticket.Order).ID = "order-1"
			}).Return(nil)
	}

	t.Run("決済成功でホールドを確定しconfirmationへ進む", func(t *testing.T) {
		f := newCheckoutFixture()
		f.store.On("Get", ctx, "co-1").Return(checkoutAt(checkout.StepPayment, &resID), nil)
		f.store.On("Save", ctx, mock.AnythingOfType("*checkout.Checkout")).Return(nil)
		f.gateway.On("Charge", ctx, ChargeInput{UserID: "user-1", Amount: 11000, Reference: "res-1"}).Return(nil)
		setupConfirmChain(f)

		result, err := f.svc.SubmitPayment(ctx, "co-1", SubmitPaymentInput{
			ClientTotal: 11000,
			BuyerName:   "山田太郎",
			BuyerEmail:  "taro@example.com",
		})

		require.NoError(t, err)
		assert.Equal(t, checkout.StepConfirmation, result.Checkout.Step)
		require.NotNil(t, result.Checkout.OrderID)
		assert.Equal(t, "order-1", *result.Checkout.OrderID)
		assert.Len(t, result.Tickets, 2)
	})

	t.Run("決済失敗時はcheckoutへ戻りホールドは維持される", func(t *testing.T) {
		f := newCheckoutFixture()
		c := checkoutAt(checkout.StepPayment, &resID)
		f.store.On("Get", ctx, "co-1").Return(c, nil)
		f.store.On("Save", ctx, mock.AnythingOfType("*checkout.Checkout")).Return(nil)
		f.gateway.On("Charge", ctx, mock.AnythingOfType("application.ChargeInput")).Return(errors.New("カードが拒否されました"))

		_, err := f.svc.SubmitPayment(ctx, "co-1", SubmitPaymentInput{ClientTotal: 11000})

		assert.ErrorIs(t, err, ErrPaymentFailed)
		assert.Equal(t, checkout.StepCheckout, c.Step)
		// ホールドには触れない: 期限内なら再試行できる
		require.NotNil(t, c.ReservationID)
		f.rr.AssertNotCalled(t, "TransitionStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("ホールド期限切れで確定に失敗した場合もcheckoutへ戻る", func(t *testing.T) {
		f := newCheckoutFixture()
		c := checkoutAt(checkout.StepPayment, &resID)
		f.store.On("Get", ctx, "co-1").Return(c, nil)
		f.store.On("Save", ctx, mock.AnythingOfType("*checkout.Checkout")).Return(nil)
		f.gateway.On("Charge", ctx, mock.AnythingOfType("application.ChargeInput")).Return(nil)
		expired := newActiveReservation("res-1", []string{"seat-1"})
		expired.ExpiresAt = time.Now().Add(-1 * time.Second)
		f.rr.On("GetByID", ctx, "res-1").Return(expired, nil)

		_, err := f.svc.SubmitPayment(ctx, "co-1", SubmitPaymentInput{ClientTotal: 11000})

		assert.ErrorIs(t, err, reservation.ErrReservationExpired)
		assert.Equal(t, checkout.StepCheckout, c.Step)
	})

	t.Run("ホールドのないチェックアウトはErrInvalidTransition", func(t *testing.T) {
		f := newCheckoutFixture()
		f.store.On("Get", ctx, "co-1").Return(checkoutAt(checkout.StepSeats, nil), nil)

		_, err := f.svc.SubmitPayment(ctx, "co-1", SubmitPaymentInput{ClientTotal: 11000})

		assert.ErrorIs(t, err, checkout.ErrInvalidTransition)
	})
}

func TestCheckoutService_Abandon(t *testing.T) {
	ctx := context.Background()
	resID := "res-1"

	t.Run("チェックアウトを中断するとホールドが解放されseatsへ戻る", func(t *testing.T) {
		f := newCheckoutFixture()
		c := checkoutAt(checkout.StepCheckout, &resID)
		f.store.On("Get", ctx, "co-1").Return(c, nil)
		f.store.On("Save", ctx, mock.AnythingOfType("*checkout.Checkout")).Return(nil)
		res := newActiveReservation("res-1", []string{"seat-1"})
		f.rr.On("GetByID", ctx, "res-1").Return(res, nil)
		f.txm.On("Begin", ctx).Return(f.tx, nil)
		f.tx.On("Rollback").Return(nil)
		f.tx.On("Commit").Return(nil)
		f.rr.On("TransitionStatus", ctx, f.tx, "res-1", reservation.StatusActive, reservation.StatusCancelled).Return(true, nil)
		f.inv.On("ReleaseSeats", ctx, f.tx, []string{"seat-1"}).Return(nil)

		result, err := f.svc.Abandon(ctx, "co-1")

		require.NoError(t, err)
		assert.Equal(t, checkout.StepSeats, result.Step)
		assert.Nil(t, result.ReservationID)
		f.inv.AssertCalled(t, "ReleaseSeats", ctx, f.tx, []string{"seat-1"})
	})

	t.Run("processing中は中断できない", func(t *testing.T) {
		f := newCheckoutFixture()
		f.store.On("Get", ctx, "co-1").Return(checkoutAt(checkout.StepProcessing, &resID), nil)

		_, err := f.svc.Abandon(ctx, "co-1")

		assert.ErrorIs(t, err, checkout.ErrInvalidTransition)
	})

	t.Run("存在しないチェックアウトはErrCheckoutNotFound", func(t *testing.T) {
		f := newCheckoutFixture()
		f.store.On("Get", ctx, "missing").Return(nil, checkout.ErrCheckoutNotFound)

		_, err := f.svc.Abandon(ctx, "missing")

		assert.ErrorIs(t, err, checkout.ErrCheckoutNotFound)
	})
}
