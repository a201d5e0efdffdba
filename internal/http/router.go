package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/metrics"
	"github.com/guttosm/farepath-service/internal/middleware"
	"github.com/guttosm/farepath-service/internal/service"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RouterConfig holds router configuration options.
type RouterConfig struct {
	RateLimit   int
	RateWindow  time.Duration
	APIKeys     middleware.APIKeyConfig
	EnableAuth  bool
	CORSOrigins []string
	SwaggerUser string
	SwaggerPass string
	// RequestTimeout bounds POST /price. Zero leaves it to the search timeout.
	RequestTimeout time.Duration

	Pricing  service.PricingService
	Records  service.RecordService
	Profiles service.SearchProfileService
	// Tokens enables bearer authentication on the operator endpoints.
	Tokens service.TokenService

	clientLimiter *middleware.RateLimiter
}

// DefaultRouterConfig returns the default router configuration.
func DefaultRouterConfig() RouterConfig {
	return RouterConfig{
		RateLimit:  100,
		RateWindow: time.Minute,
		EnableAuth: false,
	}
}

// Router is the fare path service HTTP router.
type Router struct {
	*gin.Engine
	limiters []*middleware.RateLimiter
}

// Close stops the background work of the router's rate limiters.
func (r *Router) Close() {
	for _, l := range r.limiters {
		l.Stop()
	}
}

// NewRouter creates and configures the Gin router for the fare path service.
func NewRouter(healthHandler *HealthHandler, cfg RouterConfig) *Router {
	r := &Router{Engine: gin.New()}

	if cfg.RateLimit > 0 {
		cfg.clientLimiter = middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		r.limiters = append(r.limiters, cfg.clientLimiter)
	}

	r.configureGlobalMiddleware(&cfg)
	registerInfrastructureRoutes(r.Engine, healthHandler, &cfg)

	api := r.Group("/api/v1")
	for _, group := range routeGroups(&cfg) {
		group.RegisterRoutes(api, &cfg)
	}

	return r
}

func routeGroups(cfg *RouterConfig) []RouteGroup {
	var groups []RouteGroup
	if cfg.Pricing != nil {
		groups = append(groups, NewPricingRoutes(cfg.Pricing, cfg.Records))
	}
	if cfg.Profiles != nil {
		groups = append(groups, NewSearchProfileRoutes(cfg.Profiles, cfg.Pricing))
	}
	return groups
}

// configureGlobalMiddleware sets up middleware applied to all routes.
func (r *Router) configureGlobalMiddleware(cfg *RouterConfig) {
	r.Use(
		middleware.CORS(cfg.CORSOrigins),
		middleware.RequestID(),
		middleware.Recovery(),
		metrics.PrometheusMiddleware(),
		middleware.Compression(),
		middleware.RequestLogger(),
		middleware.ErrorHandler(),
	)

	// Global rate limiting
	if cfg.RateLimit > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		r.limiters = append(r.limiters, limiter)
		r.Use(limiter.RateLimit())
	}
}

// registerInfrastructureRoutes registers health, metrics, and documentation routes.
func registerInfrastructureRoutes(router *gin.Engine, healthHandler *HealthHandler, cfg *RouterConfig) {
	if healthHandler != nil {
		healthHandler.Register(router)
	}
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Swagger with optional basic auth
	if cfg.SwaggerUser != "" && cfg.SwaggerPass != "" {
		authorized := router.Group("/swagger", gin.BasicAuth(gin.Accounts{
			cfg.SwaggerUser: cfg.SwaggerPass,
		}))
		authorized.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	} else {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
}
