package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
)

type PurchaseHandler struct {
	service PurchaseServiceInterface
}

func NewPurchaseHandler(s PurchaseServiceInterface) *PurchaseHandler {
	return &PurchaseHandler{service: s}
}

type PurchaseRequest struct {
	// 指定席経路: 既存ホールドのID
	ReservationID string `json:"reservation_id,omitempty"`
	// GA経路: セッションIDとティア数量
	SessionID      string                `json:"session_id,omitempty"`
	TierQuantities []TierQuantityRequest `json:"tier_quantities,omitempty"`
	// クライアントが画面に表示した合計額（サーバーで再検証される）
	ClientTotal int    `json:"client_total" validate:"required,min=0"`
	CouponCode  string `json:"coupon_code,omitempty"`
	BuyerName   string `json:"buyer_name" validate:"required"`
	BuyerEmail  string `json:"buyer_email" validate:"required,email"`
}

type PurchaseResponse struct {
	OrderID     string   `json:"order_id"`
	TicketCodes []string `json:"ticket_codes"`
	Subtotal    int      `json:"subtotal"`
	Fees        int      `json:"fees"`
	Discount    int      `json:"discount"`
	Total       int      `json:"total"`
}

func toPurchaseResponse(result *application.PurchaseResult) PurchaseResponse {
	codes := make([]string, len(result.Tickets))
	for i, tk := range result.Tickets {
		codes[i] = tk.Code
	}
	return PurchaseResponse{
		OrderID:     result.Order.ID,
		TicketCodes: codes,
		Subtotal:    result.Quote.Subtotal,
		Fees:        result.Quote.Fees,
		Discount:    result.Quote.Discount,
		Total:       result.Quote.Total,
	}
}

// Create godoc
// @Summary 購入を確定
// @Description 指定席（reservation_id）またはGA（session_id + tier_quantities）の購入を確定します
// @Tags purchases
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body PurchaseRequest true "購入情報"
// @Success 201 {object} PurchaseResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "競合または残数不足"
// @Failure 410 {object} api.ErrorResponse "ホールド期限切れ"
// @Failure 422 {object} api.ErrorResponse "価格不一致"
// @Router /purchases [post]
func (h *PurchaseHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tiers := make([]application.TierQuantityInput, len(req.TierQuantities))
	for i, tq := range req.TierQuantities {
		tiers[i] = application.TierQuantityInput{TierID: tq.TierID, Quantity: tq.Quantity}
	}
	result, err := h.service.Purchase(c.Request().Context(), application.PurchaseInput{
		SessionID:      req.SessionID,
		UserID:         userID,
		ReservationID:  req.ReservationID,
		TierQuantities: tiers,
		ClientTotal:    req.ClientTotal,
		CouponCode:     req.CouponCode,
		BuyerName:      req.BuyerName,
		BuyerEmail:     req.BuyerEmail,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, toPurchaseResponse(result))
}
