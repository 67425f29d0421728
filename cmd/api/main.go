package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api/router"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/api/handler"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/application"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/config"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/coupon"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/eventbus"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/payment"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-ticket-inventory-engine/internal/infrastructure/redis"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/logger"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/pkg/metrics"
	"github.com/sanosuguru/go-ticket-inventory-engine/internal/worker"
)

func main() {
	cfg := config.Load()

	log := logger.NewLogger(os.Getenv("APP_ENV"))
	logger.Set(log)
	defer logger.Sync()

	m := metrics.Init()

	// PostgreSQL接続とマイグレーション
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	defer redisClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisinfra.Ping(ctx, redisClient); err != nil {
		cancel()
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}
	cancel()

	// インフラストラクチャ層
	txManager := postgres.NewTxManager(db)
	reservationRepo := postgres.NewReservationRepository(db)
	inventoryStore := postgres.NewInventoryStore(db)
	sessionRepo := postgres.NewSessionRepository(db)
	ticketRepo := postgres.NewTicketRepository(db)

	lockManager := redisinfra.NewLockManager(redisClient)
	availabilityCache := redisinfra.NewAvailabilityCache(redisClient)
	checkoutStore := redisinfra.NewCheckoutStore(redisClient, cfg.Reservation.CheckoutTTL)

	publisher, err := eventbus.NewPublisher(redisClient, log)
	if err != nil {
		logger.Fatal("イベントパブリッシャーの初期化に失敗", zap.Error(err))
	}
	defer publisher.Close()

	couponClient := coupon.NewClient(cfg.Coupon.BaseURL, cfg.Coupon.Timeout)

	// アプリケーション層
	reservationService := application.NewReservationService(
		txManager, reservationRepo, inventoryStore, sessionRepo, ticketRepo, lockManager,
		application.ReservationServiceOptions{
			CouponValidator: couponClient,
			Publisher:       publisher,
			Cache:           availabilityCache,
			Metrics:         m,
			HoldTTL:         cfg.Reservation.TTL,
			PriceTolerance:  cfg.Reservation.PriceTolerance,
		},
	)
	purchaseService := application.NewPurchaseService(
		application.NewSeatedPurchase(reservationService),
		application.NewGeneralAdmissionPurchase(
			txManager, inventoryStore, sessionRepo, ticketRepo,
			application.GeneralAdmissionOptions{
				CouponValidator: couponClient,
				Publisher:       publisher,
				Cache:           availabilityCache,
				Metrics:         m,
				PriceTolerance:  cfg.Reservation.PriceTolerance,
			},
		),
	)
	checkoutService := application.NewCheckoutService(checkoutStore, reservationService, payment.NewSandboxGateway())
	availabilityService := application.NewAvailabilityService(inventoryStore, availabilityCache, cfg.Reservation.AvailabilityCacheTTL)
	sessionService := application.NewSessionService(sessionRepo, inventoryStore)
	orderService := application.NewOrderService(ticketRepo)

	// 期限切れホールドのリーパー
	reaper := worker.NewExpiryReaper(reservationService, cfg.Reservation.ReaperInterval, cfg.Reservation.ReaperBatchSize)

	// HTTPサーバー
	e := router.NewEcho(router.Handlers{
		Health:      handler.NewHealthHandler(),
		Session:     handler.NewSessionHandler(sessionService, availabilityService),
		Reservation: handler.NewReservationHandler(reservationService),
		Purchase:    handler.NewPurchaseHandler(purchaseService),
		Order:       handler.NewOrderHandler(orderService),
		Checkout:    handler.NewCheckoutHandler(checkoutService),
	}, m, cfg.Metrics.AuthToken)
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(rootCtx)

	g.Go(func() error {
		reaper.Start(gctx)
		return nil
	})

	g.Go(func() error {
		logger.Info("サーバーを起動", zap.String("port", cfg.Server.Port))
		if err := e.Start(":" + cfg.Server.Port); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("シャットダウンを開始")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		return e.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("サーバーが異常終了", zap.Error(err))
	}
	logger.Info("サーバーが正常にシャットダウンしました")
}
