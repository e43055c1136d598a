// internal/api/routes/routes.go
// Gin 路由註冊

package routes

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"contact-relay/internal/api/handlers"
	"contact-relay/internal/api/middlewares"
	"contact-relay/internal/config"
	"contact-relay/internal/services"
)

// Dependencies 路由依賴
type Dependencies struct {
	Config     *config.Config
	Reporter   handlers.StatusReporter
	Dispatcher services.Dispatcher
	Logger     *slog.Logger
}

// RegisterRoutes 註冊所有路由
func RegisterRoutes(router *gin.Engine, deps *Dependencies) {
	// 初始化 Handlers
	healthHandler := handlers.NewHealthHandler(deps.Reporter)
	contactHandler := handlers.NewContactHandler(deps.Reporter, deps.Dispatcher, deps.Logger)

	router.Use(middlewares.RequestID())

	// 公開路由
	router.GET("/", healthHandler.Welcome)

	// API v1 路由群組
	v1 := router.Group("/api/v1")
	{
		v1.GET("/health", healthHandler.Health)
		v1.POST("/contact", middlewares.BodyLimit(deps.Config.MaxBodyBytes), contactHandler.Submit)
	}
}

// NewHandler 建立含 CORS 的完整 HTTP Handler
func NewHandler(router *gin.Engine, deps *Dependencies) http.Handler {
	RegisterRoutes(router, deps)
	return middlewares.CORS(deps.Config, router)
}
