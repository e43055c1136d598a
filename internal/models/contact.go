// internal/models/contact.go
// 聯絡表單資料模型

package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// DeliveryStatus 郵件投遞狀態
type DeliveryStatus string

const (
	DeliveryStatusSent   DeliveryStatus = "sent"
	DeliveryStatusFailed DeliveryStatus = "failed"
)

// ContactSubmission 聯絡表單送出內容
// 僅存在於請求處理與背景發送期間，不會寫入資料庫
type ContactSubmission struct {
	Name    string `json:"name" binding:"required,notblank,max=100"`
	Email   string `json:"email" binding:"required,email,max=254"`
	Subject string `json:"subject" binding:"omitempty,max=200"`
	Message string `json:"message" binding:"required,notblank,max=5000"`
}

// Normalize 去除名稱、信箱、主旨前後空白 (訊息內容保留原樣)
func (s ContactSubmission) Normalize() ContactSubmission {
	s.Name = strings.TrimSpace(s.Name)
	s.Email = strings.TrimSpace(s.Email)
	s.Subject = strings.TrimSpace(s.Subject)
	return s
}

// ContactJob 背景發送工作 (亦為 RabbitMQ 訊息格式)
type ContactJob struct {
	ReferenceID string            `json:"reference_id"`
	Submission  ContactSubmission `json:"submission"`
	ReceivedAt  time.Time         `json:"received_at"`
}

// NewContactJob 建立背景發送工作
func NewContactJob(submission ContactSubmission, receivedAt time.Time) *ContactJob {
	return &ContactJob{
		ReferenceID: uuid.New().String(),
		Submission:  submission.Normalize(),
		ReceivedAt:  receivedAt.UTC(),
	}
}

// DeliveryResult 單次投遞結果
// 只用於 logging 與狀態快取，不會回傳給送出表單的使用者
type DeliveryResult struct {
	ReferenceID       string         `json:"reference_id"`
	Provider          string         `json:"provider"`
	Status            DeliveryStatus `json:"status"`
	Success           bool           `json:"success"`
	ProviderMessageID string         `json:"provider_message_id,omitempty"`
	ErrorDetail       string         `json:"error_detail,omitempty"`
	CompletedAt       time.Time      `json:"completed_at"`
}

// ServiceStatus 服務設定狀態 (health check 回應)
type ServiceStatus struct {
	Provider           string `json:"transmission_service"`
	ServiceStatus      string `json:"service_status"`
	ProviderConfigured bool   `json:"provider_configured"`
	SenderConfigured   bool   `json:"sender_channel_configured"`
	ReceiverConfigured bool   `json:"receiver_channel_configured"`
	Ready              bool   `json:"transmission_ready"`
	DispatchMode       string `json:"dispatch_mode"`
}

// NewServiceStatus 依三項設定推導服務狀態
func NewServiceStatus(provider, dispatchMode string, providerOK, senderOK, receiverOK bool) ServiceStatus {
	status := "OFFLINE"
	if providerOK {
		status = "OPERATIONAL"
	}
	return ServiceStatus{
		Provider:           provider,
		ServiceStatus:      status,
		ProviderConfigured: providerOK,
		SenderConfigured:   senderOK,
		ReceiverConfigured: receiverOK,
		Ready:              providerOK && senderOK && receiverOK,
		DispatchMode:       dispatchMode,
	}
}
