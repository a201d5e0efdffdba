// Package app provides application initialization and dependency injection.
package app

import (
	"context"

	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/http"
	"github.com/rs/zerolog/log"
)

// App is the wired fare path service.
type App struct {
	Router   *http.Router
	Services *ServiceComponents
	db       *DatabaseComponents
}

// InitializeApp creates and wires all application dependencies.
// This is the main orchestration function that initializes all components.
func InitializeApp(cfg config.Config) *App {
	// Initialize logger first (needed by other components)
	InitializeLogger(cfg.Log)

	// Initialize database components (MongoDB repositories)
	dbComponents := InitializeDatabase(cfg.Database)

	// Initialize business services
	serviceComponents := InitializeServices(cfg, dbComponents)

	// Initialize router components (handlers and configuration)
	routerComponents := InitializeRouter(serviceComponents, dbComponents, cfg)

	return &App{
		Router:   http.NewRouter(routerComponents.HealthHandler, routerComponents.Config),
		Services: serviceComponents,
		db:       dbComponents,
	}
}

// Close stops background goroutines, flushes pending pricing records and closes the database.
func (a *App) Close(ctx context.Context) {
	a.Router.Close()
	a.Services.Pricing.Stop()
	if a.Services.Records != nil {
		a.Services.Records.Stop()
		stats := a.Services.Records.Stats()
		log.Info().
			Int64("written", stats.Written).
			Int64("dropped", stats.Dropped).
			Int64("errors", stats.Errors).
			Msg("Pricing record writers stopped")
	}
	if a.db != nil && a.db.DB != nil {
		if err := a.db.DB.Close(ctx); err != nil {
			log.Warn().Err(err).Msg("Failed to close MongoDB connection")
		}
	}
}
