// cmd/mailsink/main.go
// 本機開發用 SMTP 收信器入口
// 搭配 EMAIL_PROVIDER=smtp 使用，收到的郵件只寫入 log

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"contact-relay/internal/config"
	"contact-relay/internal/logger"
	"contact-relay/internal/smtp"
)

const inboxLimit = 100

func main() {
	// 載入設定
	cfg := config.Load()
	appLogger := logger.New(cfg, "mailsink")

	if cfg.IsProduction() {
		appLogger.Warn("mail sink is intended for local development only")
	}

	// 建立 SMTP 伺服器
	smtpServer := smtp.NewServer(cfg, smtp.NewInbox(inboxLimit), appLogger)

	// 啟動 SMTP 伺服器（非同步）
	go func() {
		if err := smtpServer.Start(); err != nil {
			log.Fatalf("SMTP 伺服器錯誤: %v", err)
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// 優雅關機
	if err := smtpServer.Shutdown(); err != nil {
		appLogger.Error("關閉 SMTP 伺服器時發生錯誤", "error", err)
	}

	appLogger.Info("SMTP 伺服器已停止")
}
