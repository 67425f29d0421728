package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api"
)

type OrderHandler struct {
	service OrderServiceInterface
}

func NewOrderHandler(s OrderServiceInterface) *OrderHandler {
	return &OrderHandler{service: s}
}

type TicketResponse struct {
	ID     string  `json:"id"`
	SeatID *string `json:"seat_id,omitempty"`
	TierID *string `json:"tier_id,omitempty"`
	Price  int     `json:"price"`
	Code   string  `json:"code"`
}

type OrderDetailResponse struct {
	ID            string           `json:"id"`
	ReservationID *string          `json:"reservation_id,omitempty"`
	SessionID     string           `json:"session_id"`
	UserID        string           `json:"user_id"`
	BuyerName     string           `json:"buyer_name"`
	BuyerEmail    string           `json:"buyer_email"`
	Subtotal      int              `json:"subtotal"`
	Fees          int              `json:"fees"`
	Discount      int              `json:"discount"`
	Total         int              `json:"total"`
	CouponCode    *string          `json:"coupon_code,omitempty"`
	Tickets       []TicketResponse `json:"tickets"`
	CreatedAt     time.Time        `json:"created_at"`
}

// GetByID godoc
// @Summary 注文を取得
// @Description 確定済みの注文と発行済みチケットを取得します
// @Tags orders
// @Produce json
// @Param id path string true "注文ID"
// @Success 200 {object} OrderDetailResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /orders/{id} [get]
func (h *OrderHandler) GetByID(c echo.Context) error {
	order, tickets, err := h.service.GetOrder(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	ticketResp := make([]TicketResponse, len(tickets))
	for i, tk := range tickets {
		ticketResp[i] = TicketResponse{
			ID: tk.ID, SeatID: tk.SeatID, TierID: tk.TierID,
			Price: tk.Price, Code: tk.Code,
		}
	}
	return c.JSON(http.StatusOK, OrderDetailResponse{
		ID:            order.ID,
		ReservationID: order.ReservationID,
		SessionID:     order.SessionID,
		UserID:        order.UserID,
		BuyerName:     order.BuyerName,
		BuyerEmail:    order.BuyerEmail,
		Subtotal:      order.Subtotal,
		Fees:          order.Fees,
		Discount:      order.Discount,
		Total:         order.Total,
		CouponCode:    order.CouponCode,
		Tickets:       ticketResp,
		CreatedAt:     order.CreatedAt,
	})
}
