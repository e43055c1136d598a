// internal/services/contact_mailer.go
// 聯絡表單投遞服務 - 組裝郵件並交由選定的 EmailSender 發送

package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"contact-relay/internal/config"
	"contact-relay/internal/models"
)

// DeliveryRecorder 投遞結果記錄介面 (例如 KeyDB 狀態快取)
type DeliveryRecorder interface {
	RecordDelivery(ctx context.Context, result *models.DeliveryResult) error
}

// ContactMailer 聯絡表單投遞服務
// 每次投遞只嘗試一次，失敗只記錄不重試
type ContactMailer struct {
	cfg      *config.Config
	sender   EmailSender
	composer *ContactComposer
	recorder DeliveryRecorder
	logger   *slog.Logger
}

// NewContactMailer 建立投遞服務，recorder 可為 nil
func NewContactMailer(cfg *config.Config, sender EmailSender, composer *ContactComposer, recorder DeliveryRecorder, logger *slog.Logger) *ContactMailer {
	return &ContactMailer{
		cfg:      cfg,
		sender:   sender,
		composer: composer,
		recorder: recorder,
		logger:   logger.With("component", "contact_mailer"),
	}
}

// Status 由目前設定推導服務狀態，不做任何外部呼叫
func (m *ContactMailer) Status() models.ServiceStatus {
	return models.NewServiceStatus(
		m.sender.Name(),
		m.cfg.DispatchMode,
		m.sender.IsConfigured(),
		m.cfg.SenderAddress() != "",
		m.cfg.ReceiverEmail != "",
	)
}

// Deliver 投遞單一聯絡表單
func (m *ContactMailer) Deliver(ctx context.Context, job *models.ContactJob) models.DeliveryResult {
	result := models.DeliveryResult{
		ReferenceID: job.ReferenceID,
		Provider:    m.sender.Name(),
	}
	logger := m.logger.With("reference_id", job.ReferenceID, "provider", m.sender.Name())

	if !m.Status().Ready {
		m.finish(ctx, logger, &result, "", fmt.Errorf("%w: provider credentials, sender or receiver missing", ErrConfiguration))
		return result
	}

	envelope, err := m.composer.Compose(job)
	if err != nil {
		m.finish(ctx, logger, &result, "", err)
		return result
	}

	messageID, err := m.sender.SendMail(ctx, envelope)
	m.finish(ctx, logger, &result, messageID, err)
	return result
}

// finish 填入結果、寫 log 並記錄到狀態快取
func (m *ContactMailer) finish(ctx context.Context, logger *slog.Logger, result *models.DeliveryResult, messageID string, err error) {
	result.CompletedAt = time.Now().UTC()

	if err != nil {
		result.Status = models.DeliveryStatusFailed
		result.ErrorDetail = err.Error()
		logger.ErrorContext(ctx, "contact transmission failed", "error", err)
	} else {
		result.Status = models.DeliveryStatusSent
		result.Success = true
		result.ProviderMessageID = messageID
		logger.InfoContext(ctx, "contact transmission sent", "message_id", messageID)
	}

	if m.recorder == nil {
		return
	}
	if err := m.recorder.RecordDelivery(ctx, result); err != nil {
		logger.WarnContext(ctx, "failed to record delivery result", "error", err)
	}
}
