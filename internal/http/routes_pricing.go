package http

import (
	"github.com/gin-gonic/gin"
	"github.com/guttosm/farepath-service/internal/domain/dto"
	"github.com/guttosm/farepath-service/internal/middleware"
	"github.com/guttosm/farepath-service/internal/service"
)

// PricingRoutes handles pricing route registration.
type PricingRoutes struct {
	handler *Handler
}

// NewPricingRoutes creates a new PricingRoutes instance.
func NewPricingRoutes(pricing service.PricingService, records service.RecordService) *PricingRoutes {
	return &PricingRoutes{handler: NewHandler(pricing, records)}
}

// RegisterRoutes registers POST /price for API clients and GET /pricing-records for operators.
func (r *PricingRoutes) RegisterRoutes(rg *gin.RouterGroup, cfg *RouterConfig) {
	price := rg.Group("")
	if cfg.EnableAuth {
		price.Use(middleware.APIKeyAuth(cfg.APIKeys))
	}
	if cfg.clientLimiter != nil {
		price.Use(cfg.clientLimiter.ClientRateLimit())
	}
	price.POST("/price", middleware.Timeout(cfg.RequestTimeout), r.handler.Price)

	operatorGroup(rg, cfg).GET("/pricing-records", withRole(cfg, dto.RoleViewer, r.handler.ListPricingRecords)...)
}

// GetHandler returns the underlying pricing handler.
func (r *PricingRoutes) GetHandler() *Handler {
	return r.handler
}
