// Package app provides logger initialization.
package app

import (
	"github.com/guttosm/farepath-service/config"
	"github.com/guttosm/farepath-service/internal/logger"
)

// ServiceName is stamped on every log entry.
const ServiceName = "farepath-service"

// InitializeLogger initializes the JSON logger.
func InitializeLogger(cfg config.LogConfig) {
	logger.Init(logger.Options{
		Level:   cfg.Level,
		Pretty:  cfg.Pretty,
		Service: ServiceName,
	})
}
