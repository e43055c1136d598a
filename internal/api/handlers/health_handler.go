// internal/api/handlers/health_handler.go
// 健康檢查 Handler

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/models"
)

// StatusReporter 由設定推導服務狀態
type StatusReporter interface {
	Status() models.ServiceStatus
}

// HealthHandler 健康檢查 Handler
type HealthHandler struct {
	reporter StatusReporter
}

// NewHealthHandler 建立 Health Handler
func NewHealthHandler(reporter StatusReporter) *HealthHandler {
	return &HealthHandler{reporter: reporter}
}

// Health 回報郵件服務設定狀態
// 只讀取設定，不呼叫任何外部服務
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, h.reporter.Status())
}

// Welcome 根路徑
func (h *HealthHandler) Welcome(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Welcome to the contact relay API!",
	})
}
