package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
)

type ReservationHandler struct {
	service ReservationServiceInterface
}

func NewReservationHandler(s ReservationServiceInterface) *ReservationHandler {
	return &ReservationHandler{service: s}
}

type TierQuantityRequest struct {
	TierID   string `json:"tier_id" validate:"required"`
	Quantity int    `json:"quantity" validate:"required,min=1"`
}

type CreateHoldRequest struct {
	SessionID      string                `json:"session_id" validate:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
	SeatIDs        []string              `json:"seat_ids" example:"seat-A1,seat-A2"`
	TierQuantities []TierQuantityRequest `json:"tier_quantities"`
	IdempotencyKey string                `json:"idempotency_key" validate:"required" example:"order-2026-001"`
}

type TierQuantityResponse struct {
	TierID    string `json:"tier_id"`
	Quantity  int    `json:"quantity"`
	UnitPrice int    `json:"unit_price"`
}

type ReservationResponse struct {
	ID               string                 `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	SessionID        string                 `json:"session_id"`
	UserID           string                 `json:"user_id" example:"user-123"`
	SeatIDs          []string               `json:"seat_ids,omitempty"`
	TierQuantities   []TierQuantityResponse `json:"tier_quantities,omitempty"`
	Status           string                 `json:"status" example:"active"`
	TotalAmount      int                    `json:"total_amount" example:"11000"`
	ExpiresAt        time.Time              `json:"expires_at"`
	ExpiresInSeconds int                    `json:"expires_in_seconds" example:"900"`
	ConfirmedAt      *time.Time             `json:"confirmed_at,omitempty"`
	CreatedAt        time.Time              `json:"created_at"`
}

func toReservationResponse(r *reservation.Reservation) ReservationResponse {
	tiers := make([]TierQuantityResponse, len(r.TierQuantities))
	for i, tq := range r.TierQuantities {
		tiers[i] = TierQuantityResponse{TierID: tq.TierID, Quantity: tq.Quantity, UnitPrice: tq.UnitPrice}
	}
	expiresIn := int(time.Until(r.ExpiresAt).Seconds())
	if expiresIn < 0 || r.Status != reservation.StatusActive {
		expiresIn = 0
	}
	return ReservationResponse{
		ID: r.ID, SessionID: r.SessionID, UserID: r.UserID,
		SeatIDs: r.SeatIDs, TierQuantities: tiers, Status: string(r.Status),
		TotalAmount: r.TotalAmount, ExpiresAt: r.ExpiresAt, ExpiresInSeconds: expiresIn,
		ConfirmedAt: r.ConfirmedAt, CreatedAt: r.CreatedAt,
	}
}

// Create godoc
// @Summary ホールドを作成
// @Description 座席・ティア数量を時限付きで仮押さえします（デフォルト15分間有効）
// @Tags reservations
// @Accept json
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param request body CreateHoldRequest true "ホールド情報"
// @Success 201 {object} ReservationResponse
// @Failure 400 {object} api.ErrorResponse
// @Failure 401 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "座席競合または残数不足"
// @Router /reservations [post]
func (h *ReservationHandler) Create(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	var req CreateHoldRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if len(req.SeatIDs) == 0 && len(req.TierQuantities) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "座席またはティア数量の指定は必須です")
	}
	tiers := make([]application.TierQuantityInput, len(req.TierQuantities))
	for i, tq := range req.TierQuantities {
		tiers[i] = application.TierQuantityInput{TierID: tq.TierID, Quantity: tq.Quantity}
	}
	r, err := h.service.CreateHold(c.Request().Context(), application.CreateHoldInput{
		SessionID:      req.SessionID,
		UserID:         userID,
		SeatIDs:        req.SeatIDs,
		TierQuantities: tiers,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, toReservationResponse(r))
}

// GetByID godoc
// @Summary ホールドを取得
// @Description 指定IDのホールドを取得します
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /reservations/{id} [get]
func (h *ReservationHandler) GetByID(c echo.Context) error {
	id := c.Param("id")
	r, err := h.service.GetReservation(c.Request().Context(), id)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}

// GetUserReservations godoc
// @Summary ユーザーのホールド一覧を取得
// @Description ログインユーザーのホールド一覧を取得します
// @Tags reservations
// @Produce json
// @Param X-User-ID header string true "ユーザーID"
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} ReservationResponse
// @Failure 401 {object} api.ErrorResponse
// @Router /reservations [get]
func (h *ReservationHandler) GetUserReservations(c echo.Context) error {
	userID := c.Request().Header.Get("X-User-ID")
	if userID == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "ユーザーIDが必要です")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	reservations, err := h.service.GetUserReservations(c.Request().Context(), userID, limit, offset)
	if err != nil {
		return api.DomainError(err)
	}
	resp := make([]ReservationResponse, len(reservations))
	for i, r := range reservations {
		resp[i] = toReservationResponse(r)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel godoc
// @Summary ホールドを取り消し
// @Description ホールドを取り消して在庫を解放します。既に解放済みの場合も成功を返します
// @Tags reservations
// @Produce json
// @Param id path string true "予約ID"
// @Success 200 {object} ReservationResponse
// @Failure 404 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse "確定済みのホールドは取り消せない"
// @Router /reservations/{id}/cancel [post]
func (h *ReservationHandler) Cancel(c echo.Context) error {
	id := c.Param("id")
	r, err := h.service.Cancel(c.Request().Context(), id)
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toReservationResponse(r))
}
