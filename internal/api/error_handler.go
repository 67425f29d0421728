package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/checkout"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/inventory"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/pricing"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/reservation"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/session"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/domain/ticket"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
)

// ErrorResponse はエラーレスポンスの統一フォーマット
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    int    `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

// domainStatus はドメインエラーをHTTPステータスへ対応付ける
// 競合（再選択で解決できる）は409、期限切れは410、価格不一致は422
var domainStatus = []struct {
	err    error
	status int
}{
	{inventory.ErrSeatConflict, http.StatusConflict},
	{inventory.ErrCapacityExceeded, http.StatusConflict},
	{reservation.ErrAlreadyConfirmed, http.StatusConflict},
	{checkout.ErrInvalidTransition, http.StatusConflict},
	{reservation.ErrIdempotencyKeyAlreadyExists, http.StatusConflict},
	{reservation.ErrReservationExpired, http.StatusGone},
	{reservation.ErrReservationReleased, http.StatusGone},
	{reservation.ErrReservationNotFound, http.StatusNotFound},
	{inventory.ErrSeatNotFound, http.StatusNotFound},
	{inventory.ErrTierNotFound, http.StatusNotFound},
	{session.ErrSessionNotFound, http.StatusNotFound},
	{checkout.ErrCheckoutNotFound, http.StatusNotFound},
	{ticket.ErrOrderNotFound, http.StatusNotFound},
	{pricing.ErrPriceMismatch, http.StatusUnprocessableEntity},
	{pricing.ErrCouponInvalid, http.StatusUnprocessableEntity},
	{session.ErrSaleClosed, http.StatusForbidden},
	{application.ErrPaymentFailed, http.StatusPaymentRequired},
	{application.ErrInvalidPurchaseInput, http.StatusBadRequest},
	{inventory.ErrInvalidQuantity, http.StatusBadRequest},
}

// DomainError はドメインエラーを対応するHTTPエラーに変換する
// 対応付けのないエラーは500として扱う
func DomainError(err error) *echo.HTTPError {
	for _, m := range domainStatus {
		if errors.Is(err, m.err) {
			return echo.NewHTTPError(m.status, m.err.Error())
		}
	}
	return echo.NewHTTPError(http.StatusInternalServerError, "内部サーバーエラー").SetInternal(err)
}

// CustomHTTPErrorHandler はカスタムエラーハンドラー
func CustomHTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var (
		code    = http.StatusInternalServerError
		message = "内部サーバーエラー"
	)

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			message = m
		} else {
			message = http.StatusText(code)
		}
	}

	// エラーログを出力（5xx エラーの場合）
	if code >= 500 {
		logger.Error("サーバーエラー",
			zap.Int("status", code),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
	}

	// JSONレスポンスを返す
	if err := c.JSON(code, ErrorResponse{
		Error: message,
		Code:  code,
	}); err != nil {
		logger.Error("エラーレスポンス送信失敗", zap.Error(err))
	}
}
