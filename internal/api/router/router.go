package router

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api/handler"
	custommw "github.com/sanosuguru/go-ticket-inventory-engine/internal/api/middleware"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/metrics"
)

// Handlers はルーティングに必要なハンドラーをまとめる
type Handlers struct {
	Health      *handler.HealthHandler
	Session     *handler.SessionHandler
	Reservation *handler.ReservationHandler
	Purchase    *handler.PurchaseHandler
	Order       *handler.OrderHandler
	Checkout    *handler.CheckoutHandler
}

// NewEcho はミドルウェア・バリデーター・ルートを設定したEchoを作成する
func NewEcho(h Handlers, m *metrics.Metrics, metricsToken string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler

	custommw.SetupMiddleware(e)
	if m != nil {
		e.Use(custommw.PrometheusMiddleware(m))
	}

	RegisterRoutes(e, h, metricsToken)
	return e
}

// RegisterRoutes はAPIルートを登録する
func RegisterRoutes(e *echo.Echo, h Handlers, metricsToken string) {
	v1 := e.Group("/api/v1")

	v1.GET("/health", h.Health.Check)

	// セッション・在庫
	v1.POST("/sessions", h.Session.Create)
	v1.GET("/sessions", h.Session.List)
	v1.GET("/sessions/:id", h.Session.GetByID)
	v1.POST("/sessions/:id/seats", h.Session.SeedSeats)
	v1.POST("/sessions/:id/tiers", h.Session.CreateTier)
	v1.GET("/sessions/:id/availability", h.Session.GetAvailability)
	v1.GET("/sessions/:id/seats/available/count", h.Session.CountAvailableSeats)

	// ホールド
	v1.POST("/reservations", h.Reservation.Create)
	v1.GET("/reservations", h.Reservation.GetUserReservations)
	v1.GET("/reservations/:id", h.Reservation.GetByID)
	v1.POST("/reservations/:id/cancel", h.Reservation.Cancel)
	v1.DELETE("/reservations/:id", h.Reservation.Cancel)

	// 購入
	v1.POST("/purchases", h.Purchase.Create)
	v1.GET("/orders/:id", h.Order.GetByID)

	// チェックアウト
	v1.POST("/checkout", h.Checkout.Start)
	v1.GET("/checkout/:id", h.Checkout.Get)
	v1.POST("/checkout/:id/seats", h.Checkout.SelectSeats)
	v1.POST("/checkout/:id/payment", h.Checkout.ProceedToPayment)
	v1.POST("/checkout/:id/pay", h.Checkout.SubmitPayment)
	v1.POST("/checkout/:id/cancel", h.Checkout.Cancel)

	// メトリクス（トークン保護）
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), custommw.MetricsTokenAuth(metricsToken))
}
