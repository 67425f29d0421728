package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
)

type SessionHandler struct {
	service      SessionServiceInterface
	availability AvailabilityServiceInterface
}

func NewSessionHandler(s SessionServiceInterface, a AvailabilityServiceInterface) *SessionHandler {
	return &SessionHandler{service: s, availability: a}
}

type CreateSessionRequest struct {
	Name            string    `json:"name" validate:"required"`
	Venue           string    `json:"venue"`
	StartAt         time.Time `json:"start_at" validate:"required"`
	EndAt           time.Time `json:"end_at" validate:"required"`
	SaleStartAt     time.Time `json:"sale_start_at" validate:"required"`
	SaleEndAt       time.Time `json:"sale_end_at" validate:"required"`
	ServiceFeeMode  string    `json:"service_fee_mode" validate:"required,oneof=percent fixed_per_unit"`
	ServiceFeeValue int       `json:"service_fee_value" validate:"min=0"`
	PerUnitFee      int       `json:"per_unit_fee" validate:"min=0"`
}

type SessionResponse struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Venue           string    `json:"venue"`
	StartAt         time.Time `json:"start_at"`
	EndAt           time.Time `json:"end_at"`
	SaleStartAt     time.Time `json:"sale_start_at"`
	SaleEndAt       time.Time `json:"sale_end_at"`
	ServiceFeeMode  string    `json:"service_fee_mode"`
	ServiceFeeValue int       `json:"service_fee_value"`
	PerUnitFee      int       `json:"per_unit_fee"`
	SaleOpen        bool      `json:"sale_open"`
	CreatedAt       time.Time `json:"created_at"`
}

func toSessionResponse(s *session.Session) SessionResponse {
	return SessionResponse{
		ID: s.ID, Name: s.Name, Venue: s.Venue,
		StartAt: s.StartAt, EndAt: s.EndAt,
		SaleStartAt: s.SaleStartAt, SaleEndAt: s.SaleEndAt,
		ServiceFeeMode: string(s.ServiceFeeMode), ServiceFeeValue: s.ServiceFeeValue,
		PerUnitFee: s.PerUnitFee,
		SaleOpen:   s.IsSaleOpen(time.Now()),
		CreatedAt:  s.CreatedAt,
	}
}

// Create godoc
// @Summary セッションを作成
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest true "セッション情報"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /sessions [post]
func (h *SessionHandler) Create(c echo.Context) error {
	var req CreateSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	sess, err := h.service.CreateSession(c.Request().Context(), application.CreateSessionInput{
		Name:            req.Name,
		Venue:           req.Venue,
		StartAt:         req.StartAt,
		EndAt:           req.EndAt,
		SaleStartAt:     req.SaleStartAt,
		SaleEndAt:       req.SaleEndAt,
		ServiceFeeMode:  req.ServiceFeeMode,
		ServiceFeeValue: req.ServiceFeeValue,
		PerUnitFee:      req.PerUnitFee,
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toSessionResponse(sess))
}

// GetByID godoc
// @Summary セッションを取得
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} SessionResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /sessions/{id} [get]
func (h *SessionHandler) GetByID(c echo.Context) error {
	sess, err := h.service.GetSession(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(sess))
}

// List godoc
// @Summary セッション一覧を取得
// @Tags sessions
// @Produce json
// @Param limit query int false "取得件数" default(20)
// @Param offset query int false "オフセット" default(0)
// @Success 200 {array} SessionResponse
// @Router /sessions [get]
func (h *SessionHandler) List(c echo.Context) error {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	sessions, err := h.service.ListSessions(c.Request().Context(), limit, offset)
	if err != nil {
		return api.DomainError(err)
	}
	resp := make([]SessionResponse, len(sessions))
	for i, s := range sessions {
		resp[i] = toSessionResponse(s)
	}
	return c.JSON(http.StatusOK, resp)
}

type SeedSeatsRequest struct {
	Zone  string `json:"zone" validate:"required"`
	Count int    `json:"count" validate:"required,min=1,max=10000"`
	Price int    `json:"price" validate:"min=0"`
}

// SeedSeats godoc
// @Summary 座席を一括作成
// @Description ゾーン内の座席を連番で一括作成します
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body SeedSeatsRequest true "座席情報"
// @Success 201 {object} map[string]int
// @Failure 400 {object} api.ErrorResponse
// @Router /sessions/{id}/seats [post]
func (h *SessionHandler) SeedSeats(c echo.Context) error {
	var req SeedSeatsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	seats, err := h.service.SeedSeats(c.Request().Context(), application.SeedSeatsInput{
		SessionID: c.Param("id"),
		Zone:      req.Zone,
		Count:     req.Count,
		Price:     req.Price,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"created": len(seats)})
}

type CreateTierRequest struct {
	Name     string `json:"name" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
	Price    int    `json:"price" validate:"min=0"`
}

type TierResponse struct {
	ID        string `json:"id"`
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Capacity  int    `json:"capacity"`
	Remaining int    `json:"remaining"`
	Price     int    `json:"price"`
}

// CreateTier godoc
// @Summary GAティアを作成
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "セッションID"
// @Param request body CreateTierRequest true "ティア情報"
// @Success 201 {object} TierResponse
// @Failure 400 {object} api.ErrorResponse
// @Router /sessions/{id}/tiers [post]
func (h *SessionHandler) CreateTier(c echo.Context) error {
	var req CreateTierRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	tier, err := h.service.CreateTier(c.Request().Context(), application.CreateTierInput{
		SessionID: c.Param("id"),
		Name:      req.Name,
		Capacity:  req.Capacity,
		Price:     req.Price,
	})
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusCreated, TierResponse{
		ID: tier.ID, SessionID: tier.SessionID, Name: tier.Name,
		Capacity: tier.Capacity, Remaining: tier.Remaining, Price: tier.Price,
	})
}

// CountAvailableSeats godoc
// @Summary 空席数を取得
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} map[string]int
// @Router /sessions/{id}/seats/available/count [get]
func (h *SessionHandler) CountAvailableSeats(c echo.Context) error {
	count, err := h.availability.CountAvailable(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, map[string]int{"available": count})
}

// GetAvailability godoc
// @Summary 空席スナップショットを取得
// @Description セッションの座席状態とティア残数のスナップショットを返します（短期キャッシュあり）
// @Tags sessions
// @Produce json
// @Param id path string true "セッションID"
// @Success 200 {object} redisinfra.AvailabilitySnapshot
// @Router /sessions/{id}/availability [get]
func (h *SessionHandler) GetAvailability(c echo.Context) error {
	snapshot, err := h.availability.GetAvailability(c.Request().Context(), c.Param("id"))
	if err != nil {
		return api.DomainError(err)
	}
	return c.JSON(http.StatusOK, snapshot)
}
