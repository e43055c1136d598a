// cmd/worker/main.go
// RabbitMQ Worker 入口 (DISPATCH_MODE=rabbitmq 時使用)

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/services"
	"contact-relay/internal/worker"
)

func main() {
	// 載入設定
	cfg := config.Load()
	appLogger := logger.New(cfg, "worker")
	appLogger.Info("Starting Contact Relay Worker...", "env", cfg.Env)

	// 初始化郵件發送服務
	sender, err := services.SelectSender(cfg)
	if err != nil {
		log.Fatalf("Failed to select email provider: %v", err)
	}
	if !sender.IsConfigured() {
		appLogger.Warn("email provider credentials not configured, deliveries will fail", "provider", sender.Name())
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

	// 初始化 Consumer
	consumer := worker.NewConsumer(cfg, mailer, appLogger)
	if err := consumer.Start(); err != nil {
		log.Fatalf("Failed to start worker: %v", err)
	}

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down worker...")
	consumer.GracefulShutdown(cfg.ShutdownTimeout)

	appLogger.Info("Worker stopped")
}
