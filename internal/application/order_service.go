package application

import (
	"context"
	"fmt"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
)

// OrderService は確定済み注文の参照を提供する
type OrderService struct {
	ticketRepo ticket.Repository
}

func NewOrderService(tr ticket.Repository) *OrderService {
	return &OrderService{ticketRepo: tr}
}

// GetOrder は注文と発行済みチケットを取得する
func (s *OrderService) GetOrder(ctx context.Context, id string) (*ticket.Order, []*ticket.Ticket, error) {
	order, err := s.ticketRepo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	tickets, err := s.ticketRepo.GetTicketsByOrderID(ctx, id)
	if err != nil {
		return nil, nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	return order, tickets, nil
}
