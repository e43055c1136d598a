// internal/services/brevo_service.go
// Brevo 交易郵件服務 (HTTPS API)

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/sendgrid/rest"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

const brevoSendEndpoint = "/v3/smtp/email"

// BrevoService Brevo 郵件發送服務
// 實作 EmailSender interface
type BrevoService struct {
	cfg     *config.Config
	baseURL string
}

// NewBrevoService 建立 Brevo 服務
func NewBrevoService(cfg *config.Config) *BrevoService {
	return &BrevoService{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.BrevoAPIURL, "/"),
	}
}

// Name 回傳服務名稱
func (s *BrevoService) Name() string {
	return "Brevo Secure Channel"
}

// IsConfigured 檢查 Brevo 是否已設定
func (s *BrevoService) IsConfigured() bool {
	return s.cfg.BrevoAPIKey != ""
}

// brevoContact Brevo 聯絡人結構
type brevoContact struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email"`
}

// brevoEmailRequest Brevo 交易郵件請求結構
type brevoEmailRequest struct {
	Sender      brevoContact   `json:"sender"`
	To          []brevoContact `json:"to"`
	ReplyTo     brevoContact   `json:"replyTo"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent,omitempty"`
	TextContent string         `json:"textContent,omitempty"`
}

// brevoEmailResponse Brevo 成功回應
type brevoEmailResponse struct {
	MessageID string `json:"messageId"`
}

// brevoErrorResponse Brevo 錯誤回應
type brevoErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// SendMail 發送郵件 (使用 Brevo API)
func (s *BrevoService) SendMail(ctx context.Context, envelope *models.Envelope) (string, error) {
	body, err := json.Marshal(buildBrevoRequest(envelope))
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	request := rest.Request{
		Method:  rest.Post,
		BaseURL: s.baseURL + brevoSendEndpoint,
		Headers: map[string]string{
			"api-key":      s.cfg.BrevoAPIKey,
			"Content-Type": "application/json",
			"Accept":       "application/json",
		},
		Body: body,
	}

	response, err := rest.SendWithContext(ctx, request)
	if err != nil {
		return "", fmt.Errorf("%w: failed to send email via Brevo: %v", ErrDelivery, err)
	}

	// 檢查回應狀態 (2xx 表示成功)
	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		var errResp brevoErrorResponse
		if err := json.Unmarshal([]byte(response.Body), &errResp); err == nil && errResp.Message != "" {
			return "", fmt.Errorf("%w: Brevo API error (%s): %s", ErrDelivery, errResp.Code, errResp.Message)
		}
		return "", fmt.Errorf("%w: Brevo API error (status %d): %s", ErrDelivery, response.StatusCode, response.Body)
	}

	var result brevoEmailResponse
	if err := json.Unmarshal([]byte(response.Body), &result); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if result.MessageID == "" {
		return "", fmt.Errorf("%w: missing messageId", ErrMalformedResponse)
	}

	return result.MessageID, nil
}

// buildBrevoRequest 建立 Brevo 請求結構
func buildBrevoRequest(envelope *models.Envelope) *brevoEmailRequest {
	to := make([]brevoContact, len(envelope.To))
	for i, addr := range envelope.To {
		to[i] = brevoContact{Name: addr.Name, Email: addr.Email}
	}

	return &brevoEmailRequest{
		Sender:      brevoContact{Name: envelope.From.Name, Email: envelope.From.Email},
		To:          to,
		ReplyTo:     brevoContact{Name: envelope.ReplyTo.Name, Email: envelope.ReplyTo.Email},
		Subject:     envelope.Subject,
		HTMLContent: envelope.HTMLBody,
		TextContent: envelope.TextBody,
	}
}
