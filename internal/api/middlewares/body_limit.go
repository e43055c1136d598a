// internal/api/middlewares/body_limit.go
// 請求大小限制中介軟體

package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// DefaultBodyLimit 未設定 MAX_BODY_BYTES 時的請求大小上限
const DefaultBodyLimit int64 = 64 * 1024

// BodyLimit 限制請求 body 大小，超過時讀取 body 會回傳 *http.MaxBytesError
func BodyLimit(limit int64) gin.HandlerFunc {
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	return func(c *gin.Context) {
		if c.Request.ContentLength > limit {
			c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   "payload_too_large",
				"message": "request body is too large",
			})
			return
		}

		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}
