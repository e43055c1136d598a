// internal/api/middlewares/cors.go
// CORS 設定 - 僅允許設定清單中的前端網域

package middlewares

import (
	"net/http"

	"github.com/rs/cors"

	"contact-relay/internal/config"
)

// CORS 以 rs/cors 包裝整個 router
func CORS(cfg *config.Config, next http.Handler) http.Handler {
	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSAllowedOrigins,
		AllowedMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
			http.MethodOptions,
		},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler(next)
}
