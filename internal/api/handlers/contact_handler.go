// internal/api/handlers/contact_handler.go
// 聯絡表單 API Handler

package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/api/validation"
	"contact-relay/internal/models"
	"contact-relay/internal/services"
)

const (
	submitAcceptedMessage = "Secure transmission initiated! Your message is being encrypted and delivered to command center."
	serviceOfflineMessage = "Secure transmission service is currently offline. Please try again later."
	serviceBusyMessage    = "Secure transmission service is busy. Please try again shortly."
)

// ContactHandler 聯絡表單 Handler
type ContactHandler struct {
	reporter   StatusReporter
	dispatcher services.Dispatcher
	logger     *slog.Logger
}

// NewContactHandler 建立 Contact Handler
func NewContactHandler(reporter StatusReporter, dispatcher services.Dispatcher, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{
		reporter:   reporter,
		dispatcher: dispatcher,
		logger:     logger.With("component", "contact_handler"),
	}
}

// Submit 接收聯絡表單並排入背景發送
// 回應不等待郵件發送結果
func (h *ContactHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	var req models.ContactSubmission
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "payload_too_large",
				"message": "request body is too large",
			})
			return
		}

		body := gin.H{
			"success": false,
			"error":   "validation_error",
			"message": validation.Message(err),
		}
		if fields := validation.FieldErrors(err); fields != nil {
			body["details"] = fields
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	// 認證資訊缺失時不排程，郵件不可能送達
	if status := h.reporter.Status(); !status.Ready {
		h.logger.ErrorContext(ctx, "contact submission rejected, email service not configured",
			"request_id", c.GetString("request_id"),
			"provider_configured", status.ProviderConfigured,
			"sender_configured", status.SenderConfigured,
			"receiver_configured", status.ReceiverConfigured,
		)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "configuration_error",
			"message": serviceOfflineMessage,
		})
		return
	}

	job := models.NewContactJob(req, time.Now())

	if err := h.dispatcher.Dispatch(ctx, job); err != nil {
		h.logger.ErrorContext(ctx, "failed to dispatch contact submission",
			"request_id", c.GetString("request_id"),
			"reference_id", job.ReferenceID,
			"error", err,
		)
		if errors.Is(err, services.ErrQueueFull) || errors.Is(err, services.ErrBrokerUnavailable) {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"success": false,
				"error":   "dispatch_unavailable",
				"message": serviceBusyMessage,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "dispatch_error",
			"message": serviceOfflineMessage,
		})
		return
	}

	h.logger.InfoContext(ctx, "contact submission accepted",
		"request_id", c.GetString("request_id"),
		"reference_id", job.ReferenceID,
		"dispatch_mode", h.dispatcher.Mode(),
	)

	c.JSON(http.StatusOK, gin.H{
		"message":      submitAcceptedMessage,
		"status":       "success",
		"reference_id": job.ReferenceID,
	})
}
