// internal/services/sendgrid_service.go
// SendGrid 郵件發送服務

package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

const sendGridSendEndpoint = "/v3/mail/send"

// SendGridService SendGrid 郵件發送服務
// 實作 EmailSender interface
type SendGridService struct {
	cfg *config.Config
}

// NewSendGridService 建立 SendGrid 服務
func NewSendGridService(cfg *config.Config) *SendGridService {
	return &SendGridService{cfg: cfg}
}

// Name 回傳服務名稱
func (s *SendGridService) Name() string {
	return "SendGrid"
}

// IsConfigured 檢查 SendGrid 是否已設定
func (s *SendGridService) IsConfigured() bool {
	return s.cfg.SendGridAPIKey != ""
}

// SendMail 發送郵件 (使用 SendGrid API)
func (s *SendGridService) SendMail(ctx context.Context, envelope *models.Envelope) (string, error) {
	message := buildSendGridMessage(envelope)

	request := sendgrid.GetRequest(s.cfg.SendGridAPIKey, sendGridSendEndpoint, s.cfg.SendGridAPIHost)
	request.Method = rest.Post
	request.Body = mail.GetRequestBody(message)

	response, err := rest.SendWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send email via SendGrid: %v", ErrDelivery, err)
	}

	// 檢查回應狀態 (2xx 表示成功)
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		return "", fmt.Errorf("%w: SendGrid API error (status %d): %s", ErrDelivery, response.StatusCode, response.Body)
	}

	// SendGrid 以 X-Message-Id 標頭回傳訊息 ID
	if ids := response.Headers["X-Message-Id"]; len(ids) > 0 && ids[0] != "" {
		return ids[0], nil
	}

	return "", fmt.Errorf("%w: missing X-Message-Id header", ErrMalformedResponse)
}

// buildSendGridMessage 建立 SendGrid 郵件
func buildSendGridMessage(envelope *models.Envelope) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail(envelope.From.Name, envelope.From.Email))
	message.SetReplyTo(mail.NewEmail(envelope.ReplyTo.Name, envelope.ReplyTo.Email))
	message.Subject = envelope.Subject

	// 建立個人化設定 (收件人)
	personalization := mail.NewPersonalization()
	for _, addr := range envelope.To {
		personalization.AddTos(mail.NewEmail(addr.Name, addr.Email))
	}
	message.AddPersonalizations(personalization)

	// 設定郵件內容 (SendGrid 要求順序: text/plain 必須在 text/html 之前)
	if envelope.TextBody != "" {
		message.AddContent(mail.NewContent("text/plain", envelope.TextBody))
	}
	if envelope.HTMLBody != "" {
		message.AddContent(mail.NewContent("text/html", envelope.HTMLBody))
	}

	return message
}
