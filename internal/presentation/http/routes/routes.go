package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/brewline-api/internal/config"
	"github.com/sangkips/brewline-api/internal/domain/enum"
	domainRepo "github.com/sangkips/brewline-api/internal/domain/repository"
	"github.com/sangkips/brewline-api/internal/presentation/http/handler"
	"github.com/sangkips/brewline-api/internal/presentation/http/middleware"
	"github.com/sangkips/brewline-api/pkg/utils"
	"github.com/sirupsen/logrus"
)

// Handlers holds all the HTTP handlers used for route registration.
type Handlers struct {
	Order    *handler.OrderHandler
	Payment  *handler.PaymentHandler
	Realtime *handler.RealtimeHandler
}

// Deps holds shared dependencies needed by the routes.
type Deps struct {
	JWTManager      *utils.JWTManager
	Cfg             *config.Config
	IdempotencyRepo domainRepo.IdempotencyRepository
	Log             logrus.FieldLogger
	// Health reports readiness of backing services; nil means always healthy.
	Health func() error
}

// Setup creates the Gin router and registers all routes.
func Setup(h *Handlers, deps *Deps) *gin.Engine {
	router := gin.New()

	// Global middleware
	router.Use(gin.Recovery())
	router.Use(middleware.LoggerMiddleware(deps.Log))
	router.Use(middleware.CORSMiddleware(&deps.Cfg.CORS))

	router.GET("/health", func(c *gin.Context) {
		if deps.Health != nil {
			if err := deps.Health(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status":  "unavailable",
					"service": deps.Cfg.App.Name,
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.Cfg.App.Name,
		})
	})

	limiterCfg := middleware.RateLimiterConfig{
		RequestsPerSecond: float64(deps.Cfg.RateLimit.Requests) / float64(deps.Cfg.RateLimit.Duration),
		BurstSize:         deps.Cfg.RateLimit.Requests,
		CleanupInterval:   5 * time.Minute,
		EntryTTL:          10 * time.Minute,
	}

	v1 := router.Group("/api/v1")
	{
		registerPaymentRoutes(v1, h, limiterCfg)
		registerOrderRoutes(v1, h, deps, limiterCfg)
		registerRealtimeRoutes(v1, h, deps)
	}

	return router
}

func registerPaymentRoutes(v1 *gin.RouterGroup, h *Handlers, limiterCfg middleware.RateLimiterConfig) {
	// Called by the gateway; authenticated by signature.
	payments := v1.Group("/payments")
	payments.Use(middleware.NewRateLimiter(limiterCfg, middleware.ByClientIP).Middleware())
	{
		payments.POST("/notifications", h.Payment.Notification)
	}
}

func registerOrderRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps, limiterCfg middleware.RateLimiterConfig) {
	orders := v1.Group("/orders")
	orders.Use(middleware.OptionalAuthMiddleware(deps.JWTManager))
	orders.Use(middleware.NewRateLimiter(limiterCfg, middleware.ByCustomer).Middleware())
	{
		orders.POST("", middleware.Idempotency(middleware.IdempotencyConfig{
			Repo: deps.IdempotencyRepo,
			Log:  deps.Log,
		}), h.Order.Create)

		authed := orders.Group("")
		authed.Use(middleware.AuthMiddleware(deps.JWTManager))
		authed.GET("", h.Order.List)
		authed.GET("/:id", h.Order.Get)
		authed.POST("/:id/cancel", h.Order.Cancel)
	}
}

func registerRealtimeRoutes(v1 *gin.RouterGroup, h *Handlers, deps *Deps) {
	ws := v1.Group("/ws")
	ws.Use(middleware.AuthMiddleware(deps.JWTManager))
	ws.Use(middleware.RequireRole(string(enum.CustomerRoleStaff)))
	{
		ws.GET("/orders", h.Realtime.Orders)
	}
}
