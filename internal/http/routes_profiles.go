package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/service"
)

// SearchProfileRoutes handles search profile route registration.
type SearchProfileRoutes struct {
	handler *SearchProfilesHandler
}

// NewSearchProfileRoutes creates a new SearchProfileRoutes instance.
func NewSearchProfileRoutes(profiles service.SearchProfileService, pricing service.PricingService) *SearchProfileRoutes {
	return &SearchProfileRoutes{handler: NewSearchProfilesHandler(profiles, pricing)}
}

// RegisterRoutes registers the search profile endpoints. Reads need the viewer
// role and writes the admin role when tokens are enabled.
func (r *SearchProfileRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	profiles := operatorGroup(rg, cfg).Group("/search-profiles")
	{
		profiles.GET("", withRole(cfg, dto.RoleViewer, r.handler.List)...)
		profiles.GET("/active", withRole(cfg, dto.RoleViewer, r.handler.GetActive)...)
		profiles.POST("", withRole(cfg, dto.RoleAdmin, r.handler.Create)...)
		profiles.PUT("/:id", withRole(cfg, dto.RoleAdmin, r.handler.Update)...)
	}
}
