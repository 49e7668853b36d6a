package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-trip-seat-reservation/internal/api"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/api/handler"
	apimiddleware "github.com/sanosuguru/go-trip-seat-reservation/internal/api/middleware"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/application"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/config"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/infrastructure/postgres"
	redisinfra "github.com/sanosuguru/go-trip-seat-reservation/internal/infrastructure/redis"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/notifier"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/logger"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/pkg/metrics"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/provider"
	"github.com/sanosuguru/go-trip-seat-reservation/internal/worker"
)

func main() {
	// .env があれば読み込む（なくてもエラーにしない）
	_ = godotenv.Load()

	cfg := config.Load()

	// ロガー初期化
	env := os.Getenv("APP_ENV")
	logger.Set(logger.NewLogger(env))
	defer logger.Sync()

	// メトリクス初期化
	m := metrics.Init()

	// DB接続
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベース接続に失敗", zap.Error(err))
	}
	defer db.Close()

	// マイグレーション実行
	migrationsPath := os.Getenv("MIGRATIONS_PATH")
	if migrationsPath == "" {
		migrationsPath = "migrations"
	}
	if err := postgres.RunMigrations(db.DB, migrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗", zap.Error(err))
	}

	// Redis接続
	redisClient := redisinfra.NewClient(&cfg.Redis)
	if err := redisinfra.Ping(context.Background(), redisClient); err != nil {
		logger.Fatal("Redis接続に失敗", zap.Error(err))
	}
	defer redisClient.Close()

	lockManager := redisinfra.NewLockManager(redisClient)
	seatCache := redisinfra.NewSeatCache(redisClient)

	// リポジトリ初期化
	tripRepo := postgres.NewTripRepository(db)
	seatRepo := postgres.NewSeatRepository(db)
	holdRepo := postgres.NewHoldRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	txManager := postgres.NewTxManager(db)

	// 決済プロバイダー登録
	registry := provider.NewRegistry(
		provider.NewFastpay(cfg.Webhook.FastpaySecret),
		provider.NewBankgate(cfg.Webhook.BankgateSecret),
	)

	// 状態通知
	hub := notifier.NewHub()

	// サービス初期化
	tripService := application.NewTripService(tripRepo, seatRepo, seatCache)
	holdService := application.NewHoldService(txManager, holdRepo, seatRepo, tripRepo, lockManager, seatCache, cfg.Hold.ReaperBatch)
	bookingService := application.NewBookingService(txManager, bookingRepo, holdRepo, seatRepo, seatCache, hub)
	paymentService := application.NewPaymentService(txManager, paymentRepo, bookingRepo, holdRepo, seatRepo, registry, lockManager, seatCache, hub)

	watcher := notifier.NewWatcher(hub, bookingService,
		notifier.WithPollInterval(cfg.Notifier.PollInitial, cfg.Notifier.PollMax))

	// 期限切れ仮押さえリーパー起動
	reaperCtx, reaperCancel := context.WithCancel(context.Background())
	defer reaperCancel()
	reaper := worker.NewExpiredHoldReaper(holdService, cfg.Hold.ReaperInterval)
	go reaper.Start(reaperCtx)

	// ハンドラー初期化
	tripHandler := handler.NewTripHandler(tripService)
	holdHandler := handler.NewHoldHandler(holdService)
	bookingHandler := handler.NewBookingHandler(bookingService)
	webhookHandler := handler.NewWebhookHandler(paymentService, registry)
	statusHandler := handler.NewStatusHandler(bookingService, watcher)
	healthHandler := handler.NewHealthHandler()

	// Echo セットアップ
	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	apimiddleware.SetupMiddleware(e)
	e.Use(apimiddleware.PrometheusMiddleware(m))

	e.GET("/health", healthHandler.Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()), apimiddleware.MetricsBasicAuth())

	v1 := e.Group("/api/v1")
	v1.POST("/trips", tripHandler.Create)
	v1.GET("/trips", tripHandler.Search)
	v1.GET("/trips/:id", tripHandler.GetByID)
	v1.GET("/trips/:id/seats", tripHandler.GetSeats)
	v1.POST("/trips/:id/seats", tripHandler.CreateSeats)
	v1.POST("/trips/:id/seats/block", tripHandler.BlockSeats)

	v1.POST("/holds", holdHandler.Create)
	v1.GET("/holds/:id", holdHandler.GetByID)
	v1.DELETE("/holds/:id", holdHandler.Release)

	v1.POST("/bookings", bookingHandler.Create)
	v1.GET("/bookings", bookingHandler.GetOwnerBookings)
	v1.GET("/bookings/:id", bookingHandler.GetByID)
	v1.POST("/bookings/:id/cancel", bookingHandler.RequestCancel)
	v1.GET("/bookings/:id/status/stream", statusHandler.Stream)

	v1.POST("/webhooks/payments/:provider", webhookHandler.Receive)

	// サーバー起動
	go func() {
		addr := ":" + cfg.Server.Port
		logger.Info("サーバー起動", zap.String("addr", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("サーバー起動エラー", zap.Error(err))
		}
	}()

	// シグナル待機
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("シャットダウン開始")

	// リーパーを先に止めてからHTTPを閉じる
	reaper.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("サーバーシャットダウンエラー", zap.Error(err))
	}

	logger.Info("シャットダウン完了")
}
