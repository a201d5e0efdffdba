// Package app provides router configuration.
package app

import (
	"time"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/http"
	"github.com/guttosm/farepath-service/internal/middleware"
)

// RouterComponents holds router-related components.
type RouterComponents struct {
	HealthHandler *http.HealthHandler
	Config        http.RouterConfig
}

// InitializeRouter initializes the health handler and router configuration.
func InitializeRouter(services *ServiceComponents, dbComponents *DatabaseComponents, cfg config.Config) *RouterComponents {
	healthHandler := http.NewHealthHandler()

	if dbComponents != nil {
		if dbComponents.DB != nil {
			db := dbComponents.DB
			healthHandler.RegisterChecker("mongodb", http.CheckerFunc(db.HealthCheck))
		}
		if dbComponents.ProfilesCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_search_profiles", dbComponents.ProfilesCircuitBreaker)
		}
		if dbComponents.RecordsCircuitBreaker != nil {
			healthHandler.RegisterCircuitBreaker("mongodb_pricing_records", dbComponents.RecordsCircuitBreaker)
		}
	}

	routerCfg := http.RouterConfig{
		RateLimit:  cfg.Server.RateLimit,
		RateWindow: cfg.Server.RateWindow,
		EnableAuth: cfg.Auth.Enabled,
		APIKeys: middleware.APIKeyConfig{
			Keys:   cfg.Auth.APIKeys,
			Hashes: cfg.Auth.APIKeyHashes,
		},
		CORSOrigins:    cfg.Server.CORSOrigins,
		SwaggerUser:    cfg.Server.SwaggerUser,
		SwaggerPass:    cfg.Server.SwaggerPass,
		RequestTimeout: requestTimeout(cfg.Search),
		Pricing:        services.Pricing,
		Profiles:       services.Profiles,
		Tokens:         services.Tokens,
	}
	// A nil *RecordServiceImpl must not become a non-nil interface.
	if services.Records != nil {
		routerCfg.Records = services.Records
	}

	return &RouterComponents{
		HealthHandler: healthHandler,
		Config:        routerCfg,
	}
}

// requestTimeout is the search timeout plus a fifth, so a timed out search can
// still answer with its partial solutions.
func requestTimeout(cfg config.SearchConfig) time.Duration {
	if cfg.Timeout <= 0 {
		return 0
	}
	return cfg.Timeout + cfg.Timeout/5
}
