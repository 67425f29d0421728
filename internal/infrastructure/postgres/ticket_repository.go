package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/transaction"
)

type orderRow struct {
	ID            string    `db:"id"`
	ReservationID *string   `db:"reservation_id"`
	SessionID     string    `db:"session_id"`
	UserID        string    `db:"user_id"`
	BuyerName     string    `db:"buyer_name"`
	BuyerEmail    string    `db:"buyer_email"`
	Subtotal      int       `db:"subtotal"`
	Fees          int       `db:"fees"`
	Discount      int       `db:"discount"`
	Total         int       `db:"total"`
	CouponCode    *string   `db:"coupon_code"`
	CreatedAt     time.Time `db:"created_at"`
}

type ticketRow struct {
	ID        string    `db:"id"`
	OrderID   string    `db:"order_id"`
	SessionID string    `db:"session_id"`
	SeatID    *string   `db:"seat_id"`
	TierID    *string   `db:"tier_id"`
	Price     int       `db:"price"`
	Code      string    `db:"code"`
	CreatedAt time.Time `db:"created_at"`
}

// TicketRepository は注文・チケットの PostgreSQL 実装
type TicketRepository struct{ db *sqlx.DB }

func NewTicketRepository(db *sqlx.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// CreateOrder は注文とチケットを同一トランザクションで作成する
// 在庫の sold 遷移と同じトランザクションに含めることで、
// 「在庫は売れたがチケットがない」状態が観測されないことを保証する
func (r *TicketRepository) CreateOrder(ctx context.Context, tx transaction.Tx, order *ticket.Order, tickets []*ticket.Ticket) error {
	sqlxTx := UnwrapTx(tx)
	query := `INSERT INTO orders (reservation_id, session_id, user_id, buyer_name, buyer_email, subtotal, fees, discount, total, coupon_code, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := sqlxTx.QueryRowContext(ctx, query, order.ReservationID, order.SessionID, order.UserID, order.BuyerName, order.BuyerEmail, order.Subtotal, order.Fees, order.Discount, order.Total, order.CouponCode, order.CreatedAt).Scan(&order.ID); err != nil {
		return fmt.Errorf("注文作成に失敗: %w", err)
	}
	for _, tk := range tickets {
		tk.OrderID = order.ID
		if err := sqlxTx.QueryRowContext(ctx,
			`INSERT INTO tickets (order_id, session_id, seat_id, tier_id, price, code, created_at) VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`,
			tk.OrderID, tk.SessionID, tk.SeatID, tk.TierID, tk.Price, tk.Code, tk.CreatedAt).Scan(&tk.ID); err != nil {
			return fmt.Errorf("チケット作成に失敗: %w", err)
		}
	}
	return nil
}

func (r *TicketRepository) GetOrderByID(ctx context.Context, id string) (*ticket.Order, error) {
	var row orderRow
	if err := r.db.GetContext(ctx, &row, `SELECT id, reservation_id, session_id, user_id, buyer_name, buyer_email, subtotal, fees, discount, total, coupon_code, created_at FROM orders WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ticket.ErrOrderNotFound
		}
		return nil, fmt.Errorf("注文取得に失敗: %w", err)
	}
	return &ticket.Order{
		ID: row.ID, ReservationID: row.ReservationID, SessionID: row.SessionID,
		UserID: row.UserID, BuyerName: row.BuyerName, BuyerEmail: row.BuyerEmail,
		Subtotal: row.Subtotal, Fees: row.Fees, Discount: row.Discount, Total: row.Total,
		CouponCode: row.CouponCode, CreatedAt: row.CreatedAt,
	}, nil
}

func (r *TicketRepository) GetTicketsByOrderID(ctx context.Context, orderID string) ([]*ticket.Ticket, error) {
	var rows []ticketRow
	if err := r.db.SelectContext(ctx, &rows, `SELECT id, order_id, session_id, seat_id, tier_id, price, code, created_at FROM tickets WHERE order_id = $1 ORDER BY created_at`, orderID); err != nil {
		return nil, fmt.Errorf("チケット取得に失敗: %w", err)
	}
	tickets := make([]*ticket.Ticket, len(rows))
	for i, row := range rows {
		tickets[i] = &ticket.Ticket{
			ID: row.ID, OrderID: row.OrderID, SessionID: row.SessionID,
			SeatID: row.SeatID, TierID: row.TierID, Price: row.Price,
			Code: row.Code, CreatedAt: row.CreatedAt,
		}
	}
	return tickets, nil
}

var _ ticket.Repository = (*TicketRepository)(nil)
