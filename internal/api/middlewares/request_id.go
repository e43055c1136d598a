// internal/api/middlewares/request_id.go
// Request ID 中介軟體

package middlewares

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// RequestIDHeader 請求追蹤標頭
const RequestIDHeader = "X-Request-ID"

// RequestID 沿用客戶端帶入的 X-Request-ID，沒有則產生一組
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.GetHeader(RequestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}

		c.Set("request_id", requestID)
		c.Header(RequestIDHeader, requestID)

		c.Next()
	}
}
