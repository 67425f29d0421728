package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
)

type CheckoutHandler struct {
	service CheckoutServiceInterface
}

func NewCheckoutHandler(s CheckoutServiceInterface) *CheckoutHandler {
	return &CheckoutHandler{service: s}
}

type StartCheckoutRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

type CheckoutResponse struct {
	ID            string  `json:"id"`
	SessionID     string  `json:"session_id"`
	Step          string  `json:"step"`
	ReservationID *string `json:"reservation_id,omitempty"`
	OrderID       *string `json:"order_id,omitempty"`
	// ホールドの残り秒数。カウントダウン表示用で、サーバー側の期限が常に優先される
	HoldExpiresAt *time.Time `json:"hold_expires_at,omitempty"`
}

func toCheckoutResponse(c *checkout.Checkout) CheckoutResponse {
	return CheckoutResponse{
		ID:            c.ID,
		SessionID:     c.SessionID,
		Step:          string(c.Step),
		ReservationID: c.ReservationID,
		OrderID:       c.OrderID,
	}
}

// Start godoc
// @Summary チェックアウトを開始
// @Tags checkout
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body StartCheckoutRequest true "対象セッション"
// @Success 201 {object} CheckoutResponse
// @Router /checkout [post]
func (h *CheckoutHandler) Start(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req StartCheckoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	co, err := h.service.Start(c.Request().Context(), req.SessionID, userID)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, toCheckoutResponse(co))
}

// Get godoc
// @Summary チェックアウトの状態を取得
// @Tags checkout
// @Produce json
// @Param id path string true "チェックアウトID"
// @Success 200 {object} CheckoutResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /checkout/{id} [get]
func (h *CheckoutHandler) Get(c echo.Context) error {
	co, err := h.service.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(co))
}

type SelectSeatsRequest struct {
	SeatIDs        []string              `json:"seat_ids"`
	TierQuantities []TierQuantityRequest `json:"tier_quantities"`
	IdempotencyKey string                `json:"idempotency_key" validate:"required"`
}

type SelectSeatsResponse struct {
	Checkout    CheckoutResponse    `json:"checkout"`
	Reservation ReservationResponse `json:"reservation"`
}

// SelectSeats godoc
// @Summary 座席選択を確定してホールドを作成
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "チェックアウトID"
// @Param request body SelectSeatsRequest true "座席選択"
// @Success 200 {object} SelectSeatsResponse
// @Failure 409 {object} api.ErrorResponse "座席競合"
// @Router /checkout/{id}/seats [post]
func (h *CheckoutHandler) SelectSeats(c echo.Context) error {
	var req SelectSeatsRequest
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
	result, err := h.service.SelectSeats(c.Request().Context(), c.Param("id"), application.SelectSeatsInput{
		SeatIDs:        req.SeatIDs,
		TierQuantities: tiers,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return api.DomainError(err)
	}
	resp := SelectSeatsResponse{
		Checkout:    toCheckoutResponse(result.Checkout),
		Reservation: toReservationResponse(result.Reservation),
	}
	resp.Checkout.HoldExpiresAt = &result.Reservation.ExpiresAt
	return c.JSON(http.StatusOK, resp)
}

// ProceedToPayment godoc
// @Summary 決済ステップへ進む
// @Tags checkout
// @Produce json
// @Param id path string true "チェックアウトID"
// @Success 200 {object} CheckoutResponse
// @Failure 409 {object} api.ErrorResponse "不正なステップ遷移"
// @Router /checkout/{id}/payment [post]
func (h *CheckoutHandler) ProceedToPayment(c echo.Context) error {
	co, err := h.service.ProceedToPayment(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(co))
}

type SubmitPaymentRequest struct {
	ClientTotal int    `json:"client_total" validate:"required,min=0"`
	CouponCode  string `json:"coupon_code,omitempty"`
	BuyerName   string `json:"buyer_name" validate:"required"`
	BuyerEmail  string `json:"buyer_email" validate:"required,email"`
}

type SubmitPaymentResponse struct {
	Checkout CheckoutResponse `json:"checkout"`
	Purchase PurchaseResponse `json:"purchase"`
}

// SubmitPayment godoc
// @Summary 決済を実行して購入を確定
// @Tags checkout
// @Accept json
// @Produce json
// @Param id path string true "チェックアウトID"
// @Param request body SubmitPaymentRequest true "決済情報"
// @Success 200 {object} SubmitPaymentResponse
// @Failure 402 {object} api.ErrorResponse "決済失敗"
// @Failure 410 {object} api.ErrorResponse "ホールド期限切れ"
// @Failure 422 {object} api.ErrorResponse "価格不一致"
// @Router /checkout/{id}/pay [post]
func (h *CheckoutHandler) SubmitPayment(c echo.Context) error {
	var req SubmitPaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	result, err := h.service.SubmitPayment(c.Request().Context(), c.Param("id"), application.SubmitPaymentInput{
		ClientTotal: req.ClientTotal,
		CouponCode:  req.CouponCode,
		BuyerName:   req.BuyerName,
		BuyerEmail:  req.BuyerEmail,
	})
	if err != nil {
		return api.DomainError(err)
	}
	codes := make([]string, len(result.Tickets))
	for i, tk := range result.Tickets {
		codes[i] = tk.Code
	}
	return c.JSON(http.StatusOK, SubmitPaymentResponse{
		Checkout: toCheckoutResponse(result.Checkout),
		Purchase: PurchaseResponse{
			OrderID:     result.Order.ID,
			TicketCodes: codes,
			Subtotal:    result.Order.Subtotal,
			Fees:        result.Order.Fees,
			Discount:    result.Order.Discount,
			Total:       result.Order.Total,
		},
	})
}

// Cancel godoc
// @Summary チェックアウトを中断
// @Description ホールドを解放して座席選択へ戻します
// @Tags checkout
// @Produce json
// @Param id path string true "チェックアウトID"
// @Success 200 {object} CheckoutResponse
// @Failure 409 {object} api.ErrorResponse "processing中は中断できない"
// @Router /checkout/{id}/cancel [post]
func (h *CheckoutHandler) Cancel(c echo.Context) error {
	co, err := h.service.Abandon(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toCheckoutResponse(co))
}
