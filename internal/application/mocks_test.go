package application

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/eventbus"
)

// === Mock implementations ===

// MockTxManager implements transaction.Manager
type MockTxManager struct {
	mock.Mock
}

func (m *MockTxManager) Begin(ctx context.Context) (transaction.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(transaction.Tx), args.Error(1)
}

// MockTx implements transaction.Tx
type MockTx struct {
	mock.Mock
}

func (m *MockTx) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockTx) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

// MockReservationRepository implements reservation.Repository
type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) Create(ctx context.Context, tx transaction.Tx, r *reservation.Reservation) error {
	args := m.Called(ctx, tx, r)
	return args.Error(0)
}

func (m *MockReservationRepository) GetByID(ctx context.Context, id string) (*reservation.Reservation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByIdempotencyKey(ctx context.Context, key string) (*reservation.Reservation, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) GetByUserID(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, userID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

func (m *MockReservationRepository) TransitionStatus(ctx context.Context, tx transaction.Tx, id string, from, to reservation.Status) (bool, error) {
	args := m.Called(ctx, tx, id, from, to)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) GetExpiredActive(ctx context.Context, limit int) ([]*reservation.Reservation, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*reservation.Reservation), args.Error(1)
}

// MockInventoryStore implements inventory.Store
type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) CreateSeat(ctx context.Context, s *inventory.Seat) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockInventoryStore) CreateSeatsBulk(ctx context.Context, seats []*inventory.Seat) error {
	args := m.Called(ctx, seats)
	return args.Error(0)
}

func (m *MockInventoryStore) CreateTier(ctx context.Context, t *inventory.Tier) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockInventoryStore) GetSeatByID(ctx context.Context, id string) (*inventory.Seat, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Seat), args.Error(1)
}

func (m *MockInventoryStore) GetSeatsByIDs(ctx context.Context, ids []string) ([]*inventory.Seat, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Seat), args.Error(1)
}

func (m *MockInventoryStore) GetSeatsBySession(ctx context.Context, sessionID string) ([]*inventory.Seat, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Seat), args.Error(1)
}

func (m *MockInventoryStore) GetTierByID(ctx context.Context, id string) (*inventory.Tier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.Tier), args.Error(1)
}

func (m *MockInventoryStore) GetTiersBySession(ctx context.Context, sessionID string) ([]*inventory.Tier, error) {
	args := m.Called(ctx, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.Tier), args.Error(1)
}

func (m *MockInventoryStore) HoldSeats(ctx context.Context, tx transaction.Tx, seatIDs []string, reservationID string) error {
	args := m.Called(ctx, tx, seatIDs, reservationID)
	return args.Error(0)
}

func (m *MockInventoryStore) MarkSeatsSold(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	args := m.Called(ctx, tx, seatIDs)
	return args.Error(0)
}

func (m *MockInventoryStore) ReleaseSeats(ctx context.Context, tx transaction.Tx, seatIDs []string) error {
	args := m.Called(ctx, tx, seatIDs)
	return args.Error(0)
}

func (m *MockInventoryStore) TakeTierCapacity(ctx context.Context, tx transaction.Tx, tierID string, quantity int) error {
	args := m.Called(ctx, tx, tierID, quantity)
	return args.Error(0)
}

func (m *MockInventoryStore) RestoreTierCapacity(ctx context.Context, tx transaction.Tx, tierID string, quantity int) error {
	args := m.Called(ctx, tx, tierID, quantity)
	return args.Error(0)
}

func (m *MockInventoryStore) CountAvailableBySession(ctx context.Context, sessionID string) (int, error) {
	args := m.Called(ctx, sessionID)
	return args.Int(0), args.Error(1)
}

// MockSessionRepository implements session.Repository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, s *session.Session) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSessionRepository) GetByID(ctx context.Context, id string) (*session.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*session.Session), args.Error(1)
}

func (m *MockSessionRepository) List(ctx context.Context, limit, offset int) ([]*session.Session, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*session.Session), args.Error(1)
}

// MockTicketRepository implements ticket.Repository
type MockTicketRepository struct {
	mock.Mock
}

func (m *MockTicketRepository) CreateOrder(ctx context.Context, tx transaction.Tx, order *ticket.Order, tickets []*ticket.Ticket) error {
	args := m.Called(ctx, tx, order, tickets)
	return args.Error(0)
}

func (m *MockTicketRepository) GetOrderByID(ctx context.Context, id string) (*ticket.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ticket.Order), args.Error(1)
}

func (m *MockTicketRepository) GetTicketsByOrderID(ctx context.Context, orderID string) ([]*ticket.Ticket, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*ticket.Ticket), args.Error(1)
}

// MockCouponValidator implements CouponValidator
type MockCouponValidator struct {
	mock.Mock
}

func (m *MockCouponValidator) Validate(ctx context.Context, code, sessionID string, subtotal int) (*pricing.Coupon, error) {
	args := m.Called(ctx, code, sessionID, subtotal)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pricing.Coupon), args.Error(1)
}

// MockPaymentGateway implements PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, input ChargeInput) error {
	args := m.Called(ctx, input)
	return args.Error(0)
}

// MockEventPublisher implements EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) PublishHoldCreated(ctx context.Context, event eventbus.HoldCreated) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishHoldCancelled(ctx context.Context, event eventbus.HoldCancelled) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishHoldExpired(ctx context.Context, event eventbus.HoldExpired) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishPurchaseCompleted(ctx context.Context, event eventbus.PurchaseCompleted) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// MockCheckoutRepository implements CheckoutRepository
type MockCheckoutRepository struct {
	mock.Mock
}

func (m *MockCheckoutRepository) Save(ctx context.Context, c *checkout.Checkout) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCheckoutRepository) Get(ctx context.Context, id string) (*checkout.Checkout, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Checkout), args.Error(1)
}

func (m *MockCheckoutRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
