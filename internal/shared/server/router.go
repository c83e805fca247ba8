package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	googleauth "farewell-backend/internal/auth"
	"farewell-backend/internal/entitlements"
	"farewell-backend/internal/exports"
	"farewell-backend/internal/plans"
	"farewell-backend/internal/shared/config"
	"farewell-backend/internal/shared/metrics"
	"farewell-backend/internal/shared/server/middleware"
	"farewell-backend/internal/shared/server/respond"
	"farewell-backend/internal/users"
)

// RouterDeps carries the handlers the router wires up. Nil handlers are
// skipped so tests can build partial routers.
type RouterDeps struct {
	Config             config.Config
	PlanHandler        *plans.Handler
	ExportHandler      *exports.Handler
	EntitlementHandler *entitlements.Handler
	UserHandler        *users.Handler
	GoogleAuth         *googleauth.GoogleService
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"EXPORT": {Rate: 0.2, Burst: 2},
				"WRITE":  {Rate: 5, Burst: 10},
			},
			GroupFor: func(c *gin.Context) string {
				switch {
				case c.Request.Method == http.MethodPost && strings.HasPrefix(c.Request.URL.Path, "/api/v1/exports"):
					return "EXPORT"
				case c.Request.Method == http.MethodPost, c.Request.Method == http.MethodPut:
					return "WRITE"
				default:
					return ""
				}
			},
		}),
	)

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, gin.H{"ok": true})
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.UserHandler != nil {
		deps.UserHandler.RegisterRoutes(api)
	}
	if deps.PlanHandler != nil {
		deps.PlanHandler.RegisterRoutes(api)
	}
	if deps.ExportHandler != nil {
		deps.ExportHandler.RegisterRoutes(api)
	}
	if deps.EntitlementHandler != nil {
		deps.EntitlementHandler.RegisterRoutes(api)
		if cfg.Env == "dev" {
			dev := api.Group("/dev")
			deps.EntitlementHandler.RegisterDevRoutes(dev)
		}
	}

	return r
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
