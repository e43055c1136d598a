// cmd/api/main.go
// Gin RESTful API 入口

package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/api/routes"
	"contact-relay/internal/api/validation"
	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/services"
)

func main() {
	// 載入設定
	cfg := config.Load()
	appLogger := logger.New(cfg, "api")
	appLogger.Info("Starting Contact Relay API Server...", "env", cfg.Env)

	if err := validation.Setup(); err != nil {
		log.Fatalf("Failed to set up request validation: %v", err)
	}

	// 初始化郵件發送服務
	sender, err := services.SelectSender(cfg)
	if err != nil {
		log.Fatalf("Failed to select email provider: %v", err)
	}

	composer, err := services.NewContactComposer(cfg)
	if err != nil {
		log.Fatalf("Failed to load email templates: %v", err)
	}

	// 初始化 KeyDB (選用)
	var recorder services.DeliveryRecorder
	if cfg.KeyDBURL != "" {
		keydbService, err := services.NewKeyDBService(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to KeyDB: %v", err)
		}
		defer keydbService.Close()
		recorder = keydbService
	}

	mailer := services.NewContactMailer(cfg, sender, composer, recorder, appLogger)
	if status := mailer.Status(); !status.Ready {
		appLogger.Warn("email service is not fully configured, contact submissions will be rejected",
			"provider", status.Provider,
			"provider_configured", status.ProviderConfigured,
			"sender_configured", status.SenderConfigured,
			"receiver_configured", status.ReceiverConfigured,
		)
	}

	// 初始化背景派送
	dispatcher, err := newDispatcher(cfg, mailer, appLogger)
	if err != nil {
		log.Fatalf("Failed to initialize dispatcher: %v", err)
	}

	// 初始化 Gin
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	// 註冊路由
	handler := routes.NewHandler(router, &routes.Dependencies{
		Config:     cfg,
		Reporter:   mailer,
		Dispatcher: dispatcher,
		Logger:     appLogger,
	})

	// 建立 HTTP Server
	srv := &http.Server{
		Addr:    ":" + cfg.APIPort,
		Handler: handler,
	}

	// 優雅關機
	go func() {
		appLogger.Info("API Server listening", "port", cfg.APIPort, "provider", sender.Name(), "dispatch_mode", dispatcher.Mode())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", "error", err)
	}

	// 等待背景郵件送完
	if err := dispatcher.Close(ctx); err != nil {
		appLogger.Error("Dispatcher did not drain before shutdown", "error", err)
	}

	appLogger.Info("API Server stopped")
}

// newDispatcher 依 DISPATCH_MODE 建立背景派送器
func newDispatcher(cfg *config.Config, mailer *services.ContactMailer, appLogger *slog.Logger) (services.Dispatcher, error) {
	switch cfg.DispatchMode {
	case config.DispatchRabbitMQ:
		return services.NewQueueService(cfg, appLogger)
	case config.DispatchInProcess:
		return services.NewBackgroundDispatcher(mailer, cfg.DispatchWorkers, cfg.DispatchQueueSize, appLogger), nil
	default:
		return nil, fmt.Errorf("unknown dispatch mode %q", cfg.DispatchMode)
	}
}
