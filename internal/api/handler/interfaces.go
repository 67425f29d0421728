package handler

import (
	"context"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
	redisinfra "github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/redis"
)

// ReservationServiceInterface は予約サービスのインターフェース
type ReservationServiceInterface interface {
	CreateHold(ctx context.Context, input application.CreateHoldInput) (*reservation.Reservation, error)
	Cancel(ctx context.Context, id string) (*reservation.Reservation, error)
	GetReservation(ctx context.Context, id string) (*reservation.Reservation, error)
	GetUserReservations(ctx context.Context, userID string, limit, offset int) ([]*reservation.Reservation, error)
}

// PurchaseServiceInterface は購入サービスのインターフェース
type PurchaseServiceInterface interface {
	Purchase(ctx context.Context, input application.PurchaseInput) (*application.PurchaseResult, error)
}

// CheckoutServiceInterface はチェックアウトサービスのインターフェース
type CheckoutServiceInterface interface {
	Start(ctx context.Context, sessionID, userID string) (*checkout.Checkout, error)
	Get(ctx context.Context, id string) (*checkout.Checkout, error)
	SelectSeats(ctx context.Context, id string, input application.SelectSeatsInput) (*application.SelectSeatsResult, error)
	ProceedToPayment(ctx context.Context, id string) (*checkout.Checkout, error)
	SubmitPayment(ctx context.Context, id string, input application.SubmitPaymentInput) (*application.SubmitPaymentResult, error)
	Abandon(ctx context.Context, id string) (*checkout.Checkout, error)
}

// AvailabilityServiceInterface は空席情報サービスのインターフェース
type AvailabilityServiceInterface interface {
	GetAvailability(ctx context.Context, sessionID string) (*redisinfra.AvailabilitySnapshot, error)
	CountAvailable(ctx context.Context, sessionID string) (int, error)
}

// OrderServiceInterface は注文参照サービスのインターフェース
type OrderServiceInterface interface {
	GetOrder(ctx context.Context, id string) (*ticket.Order, []*ticket.Ticket, error)
}

// SessionServiceInterface はセッションサービスのインターフェース
type SessionServiceInterface interface {
	CreateSession(ctx context.Context, input application.CreateSessionInput) (*session.Session, error)
	GetSession(ctx context.Context, id string) (*session.Session, error)
	ListSessions(ctx context.Context, limit, offset int) ([]*session.Session, error)
	SeedSeats(ctx context.Context, input application.SeedSeatsInput) ([]*inventory.Seat, error)
	CreateTier(ctx context.Context, input application.CreateTierInput) (*inventory.Tier, error)
}
