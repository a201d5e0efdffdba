package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/middleware"
)

// RouteGroup defines a group of routes that can be registered.
type RouteGroup interface {
	// RegisterRoutes registers routes to the given router group.
	RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig)
}

// operatorGroup returns a group for operator endpoints. When a token service is
// configured it requires a bearer token and rate limits per operator.
func operatorGroup(rg *gin.RouterGroup, cfg *RouterConfig) *gin.RouterGroup {
	group := rg.Group("")
	if cfg.Tokens == nil {
		return group
	}
	group.Use(middleware.JWTAuth(cfg.Tokens))
	if cfg.clientLimiter != nil {
		group.Use(cfg.clientLimiter.ClientRateLimit())
	}
	return group
}

// requireRole returns the role check for operator endpoints, or nothing when
// tokens are disabled.
func requireRole(cfg *RouterConfig, role string) []gin.HandlerFunc {
	if cfg.Tokens == nil {
		return nil
	}
	return []gin.HandlerFunc{middleware.RequireRole(role)}
}

func withRole(cfg *RouterConfig, role string, h gin.HandlerFunc) []gin.HandlerFunc {
	return append(requireRole(cfg, role), h)
}
