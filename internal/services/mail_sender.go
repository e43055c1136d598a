// internal/services/mail_sender.go
// 郵件發送服務共用介面

package services

import (
	"context"

	"contact-relay/internal/models"
)

// EmailSender 郵件發送服務介面
// 所有郵件發送服務（Brevo、SendGrid、Resend、SMTP）都需實作此介面
type EmailSender interface {
	// SendMail 發送郵件，成功時回傳服務提供者指派的訊息 ID
	SendMail(ctx context.Context, envelope *models.Envelope) (string, error)

	// Name 回傳服務名稱，用於 logging 與 health check
	Name() string

	// IsConfigured 檢查認證資訊是否已設定
	IsConfigured() bool
}
