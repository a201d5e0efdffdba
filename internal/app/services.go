// Package app provides service initialization.
package app

import (
	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/logger"
	"github.com/guttosm/farepath-service/internal/pricing"
	"github.com/guttosm/farepath-service/internal/service"
)

// ServiceComponents holds service-related components.
type ServiceComponents struct {
	Pricing *service.PricingServiceImpl
	// Records and Profiles are nil without a database.
	Records  *service.RecordServiceImpl
	Profiles service.SearchProfileService
	// Tokens is nil unless auth is enabled with a JWT secret.
	Tokens service.TokenService
}

// InitializeServices initializes business logic services.
func InitializeServices(cfg config.Config, db *DatabaseComponents) *ServiceComponents {
	components := &ServiceComponents{}

	opts := []service.PricingOption{
		service.WithSearchDefaults(SearchDefaults(cfg.Search)),
		service.WithServiceLogger(logger.Logger()),
	}
	if cfg.Search.Timeout > 0 {
		opts = append(opts, service.WithSearchTimeout(cfg.Search.Timeout))
	}
	if cfg.Cache.Size > 0 {
		opts = append(opts, service.WithResultCache(cfg.Cache.Size, cfg.Cache.TTL))
	}

	if db != nil {
		components.Records = service.NewRecordService(db.RecordsRepo, service.DefaultRecordWriterConfig())
		components.Profiles = service.NewSearchProfileService(db.ProfilesRepo)
		opts = append(opts,
			service.WithRecords(components.Records),
			service.WithSearchProfiles(components.Profiles),
		)
	}

	if cfg.Auth.Enabled && cfg.Auth.JWTSecretKey != "" {
		components.Tokens = service.NewTokenService(service.NewTokenConfigFromAuthConfig(cfg.Auth))
	}

	components.Pricing = service.NewPricingService(opts...)
	return components
}

// SearchDefaults maps the search configuration onto the engine limits. Unset values
// keep the engine defaults.
func SearchDefaults(cfg config.SearchConfig) pricing.FactoriesConfig {
	d := pricing.DefaultFactoriesConfig()
	if cfg.MaxNbrCombMsgThreshold > 0 {
		d.MaxNbrCombMsgThreshold = cfg.MaxNbrCombMsgThreshold
	}
	if cfg.MultiPaxShortCktTimeout > 0 {
		d.MultiPaxShortCktTimeout = cfg.MultiPaxShortCktTimeout
	}
	if cfg.ShortCktTimeout > 0 {
		d.ShortCktTimeout = cfg.ShortCktTimeout
	}
	if cfg.ShortCktShutdownFPFsTime > 0 {
		d.ShortCktShutdownFPFsTime = cfg.ShortCktShutdownFPFsTime
	}
	if cfg.ShortCktKeepValidFPsTime > 0 {
		d.ShortCktKeepValidFPsTime = cfg.ShortCktKeepValidFPsTime
	}
	if cfg.ShortCktCombCount > 0 {
		d.ShortCktCombCount = cfg.ShortCktCombCount
	}
	if cfg.ShortCktStdDevMultiplier > 0 {
		d.ShortCktStdDevMultiplier = cfg.ShortCktStdDevMultiplier
	}
	if cfg.PlusUpPushBackMax > 0 {
		d.PlusUpPushBackMax = cfg.PlusUpPushBackMax
	}
	if cfg.PlusUpPushBackThreshold > 0 {
		d.PlusUpPushBackThreshold = cfg.PlusUpPushBackThreshold
	}
	if cfg.MaxSearchNextLevelFarePath != 0 {
		d.MaxSearchNextLevelFarePath = cfg.MaxSearchNextLevelFarePath
	}
	if cfg.AbortCheckInterval > 0 {
		d.AbortCheckInterval = cfg.AbortCheckInterval
	}
	if cfg.MaxFailedFarePaths > 0 {
		d.MaxFailedFarePaths = cfg.MaxFailedFarePaths
	}
	return d
}
