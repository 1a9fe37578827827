package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wishlist/internal/admin"
	"wishlist/internal/config"
	"wishlist/internal/infrastructure/logger"
	"wishlist/internal/order"
	"wishlist/internal/server"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	zapLogger, err := logger.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer zapLogger.Sync()

	startCtx, startCancel := context.WithTimeout(context.Background(), 10*time.Second)
	orderModule, err := order.NewModule(startCtx, cfg, zapLogger)
	startCancel()
	if err != nil {
		zapLogger.Fatal("building order module", zap.Error(err))
	}

	adminCtrl := admin.NewController(admin.NewAuthenticator(cfg.Admin), zapLogger)

	router := server.NewRouter(orderModule.Controller, adminCtrl, zapLogger)

	srv := server.New(cfg.Server, router, zapLogger)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.Start(); err != nil {
			zapLogger.Fatal("server error", zap.Error(err))
		}
	}()

	<-quit
	zapLogger.Info("received shutdown signal")

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("server shutdown failed", zap.Error(err))
	}

	if err := orderModule.Close(ctx); err != nil {
		zapLogger.Error("releasing order resources", zap.Error(err))
	}

	zapLogger.Info("server stopped gracefully")
}
