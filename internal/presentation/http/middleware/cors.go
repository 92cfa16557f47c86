package middleware

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewline-api/internal/config"
)

var (
	devOrigins = []string{"http://localhost:3000", "http://127.0.0.1:3000"}

	// Clients always need these to place orders and retry them safely.
	requiredHeaders = []string{"Authorization", "Content-Type", "Idempotency-Key", "X-Request-ID"}

	exposedHeaders = []string{"X-Request-ID", "X-Idempotency-Replayed", "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"}
)

// CORSMiddleware builds the CORS policy for browser clients of the order API.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	return cors.New(corsConfig(cfg))
}

func corsConfig(cfg *config.CORSConfig) cors.Config {
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = devOrigins
	}

	methods := cfg.AllowedMethods
	if len(methods) == 0 {
		methods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	}

	headers := slices.Clone(cfg.AllowedHeaders)
	for _, h := range requiredHeaders {
		if !slices.Contains(headers, h) {
			headers = append(headers, h)
		}
	}

	return cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     methods,
		AllowHeaders:     headers,
		ExposeHeaders:    exposedHeaders,
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
}
