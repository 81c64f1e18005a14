package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	webAdapter "inventory-service/internal/adapters/web"
	"inventory-service/internal/app"
	"inventory-service/internal/config"
	"inventory-service/internal/core"
	"inventory-service/internal/db"
	"inventory-service/internal/notify"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	var sink core.NotificationSink = notify.NopSink{}
	if cfg.KafkaBroker != "" {
		kafkaSink := notify.NewKafkaSink(cfg.KafkaBroker, cfg.NotificationTopic, logger)
		defer func() { _ = kafkaSink.Close() }()
		sink = kafkaSink
		logger.Info("notification publisher enabled",
			zap.String("broker", cfg.KafkaBroker),
			zap.String("topic", cfg.NotificationTopic))
	}

	ledger := core.NewStockLedger(pool)
	alerts := core.NewNotificationService(pool)
	stock := core.NewStockService(pool, ledger, alerts, sink, logger)
	transfers := core.NewTransferService(pool, ledger, alerts, sink, logger)
	reservations := core.NewReservationService(pool, ledger, alerts, sink, logger)
	warehouses := core.NewWarehouseService(pool)

	svc := app.NewService(stock, transfers, reservations, warehouses, ledger, alerts, logger)

	go svc.StartStockMonitor(ctx, cfg.StockMonitorInterval)

	handler := webAdapter.NewHandler(svc, cfg.AllowedOrigins, cfg.AuthJWTSecret, logger)
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", zap.Error(err))
		}
	}()

	logger.Info("server starting", zap.String("port", cfg.ServerPort))
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server", zap.Error(err))
	}
	logger.Info("server stopped")
}
