// Package app provides database initialization and setup.
package app

import (
	"context"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/circuitbreaker"
	"github.com/guttosm/farepath-service/internal/repository"
	"github.com/rs/zerolog/log"
)

// DatabaseComponents holds database-related components.
type DatabaseComponents struct {
	DB                     *repository.MongoDB
	ProfilesRepo           repository.SearchProfilesRepositoryInterface
	RecordsRepo            repository.PricingRecordsRepositoryInterface
	ProfilesCircuitBreaker *circuitbreaker.CircuitBreaker
	RecordsCircuitBreaker  *circuitbreaker.CircuitBreaker
}

// InitializeDatabase initializes the MongoDB connection and the repositories behind
// search profiles and pricing records.
// Returns nil if database is disabled or connection fails.
func InitializeDatabase(cfg config.DatabaseConfig) *DatabaseComponents {
	if !cfg.Enabled {
		return nil
	}

	opts := []repository.MongoOption{repository.WithRecordsTTL(cfg.RecordsTTL)}
	if cfg.MaxPoolSize > 0 {
		opts = append(opts, repository.WithPoolSize(0, uint64(cfg.MaxPoolSize)))
	}
	if cfg.ServerSelectionTimeout > 0 {
		opts = append(opts, repository.WithServerSelectionTimeout(cfg.ServerSelectionTimeout))
	}

	db, err := repository.NewMongoDB(context.Background(), cfg.URI, cfg.DatabaseName, opts...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to connect to MongoDB - continuing without database")
		return nil
	}

	log.Info().Str("database", cfg.DatabaseName).Msg("Connected to MongoDB")

	profilesCB := newCircuitBreaker(cfg, "mongodb-search-profiles")
	recordsCB := newCircuitBreaker(cfg, "mongodb-pricing-records")

	return &DatabaseComponents{
		DB: db,
		ProfilesRepo: repository.NewSearchProfilesRepositoryWithCircuitBreaker(
			repository.NewSearchProfilesRepository(db), profilesCB),
		RecordsRepo: repository.NewPricingRecordsRepositoryWithCircuitBreaker(
			repository.NewPricingRecordsRepository(db), recordsCB),
		ProfilesCircuitBreaker: profilesCB,
		RecordsCircuitBreaker:  recordsCB,
	}
}

func newCircuitBreaker(cfg config.DatabaseConfig, name string) *circuitbreaker.CircuitBreaker {
	cbCfg := circuitbreaker.DefaultConfig()
	cbCfg.Name = name
	if cfg.CircuitBreakerFailureThreshold > 0 {
		cbCfg.FailureThreshold = cfg.CircuitBreakerFailureThreshold
	}
	if cfg.CircuitBreakerSuccessThreshold > 0 {
		cbCfg.SuccessThreshold = cfg.CircuitBreakerSuccessThreshold
	}
	if cfg.CircuitBreakerTimeout > 0 {
		cbCfg.Timeout = cfg.CircuitBreakerTimeout
	}
	return circuitbreaker.New(cbCfg)
}
