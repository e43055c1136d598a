// internal/services/resend_service.go
// Resend 郵件發送服務

package services

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// ResendService Resend 郵件發送服務
// 實作 EmailSender interface
type ResendService struct {
	cfg    *config.Config
	client *resend.Client
}

// NewResendService 建立 Resend 服務
func NewResendService(cfg *config.Config) *ResendService {
	return &ResendService{
		cfg:    cfg,
		client: resend.NewClient(cfg.ResendAPIKey),
	}
}

// Name 回傳服務名稱
func (s *ResendService) Name() string {
	return "Resend"
}

// IsConfigured 檢查 Resend 是否已設定
func (s *ResendService) IsConfigured() bool {
	return s.cfg.ResendAPIKey != ""
}

// SendMail 發送郵件 (使用 Resend API)
func (s *ResendService) SendMail(ctx context.Context, envelope *models.Envelope) (string, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, buildResendRequest(envelope))
	if err != nil {
		return "", fmt.Errorf("%w: failed to send email via Resend: %v", ErrDelivery, err)
	}
	if sent == nil || sent.Id == "" {
		return "", fmt.Errorf("%w: missing email id", ErrMalformedResponse)
	}
	return sent.Id, nil
}

// buildResendRequest 建立 Resend 請求結構
func buildResendRequest(envelope *models.Envelope) *resend.SendEmailRequest {
	to := make([]string, len(envelope.To))
	for i, addr := range envelope.To {
		to[i] = addr.String()
	}

	return &resend.SendEmailRequest{
		From:    envelope.From.String(),
		To:      to,
		ReplyTo: envelope.ReplyTo.Email,
		Subject: envelope.Subject,
		Html:    envelope.HTMLBody,
		Text:    envelope.TextBody,
	}
}
