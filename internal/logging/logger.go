// Package logging constructs the application logger.
package logging

import (
	"go.uber.org/zap"
)

// New creates a production JSON logger. With debug enabled the level drops
// to debug so per-identity scan detail is visible.
func New(debug bool) *zap.Logger {
	config := zap.NewProductionConfig()
	if debug {
		config.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	config.InitialFields = map[string]interface{}{
		"service": "keysweep-aws",
	}

	logger, err := config.Build()
	if err != nil {
		// Fallback to development logger if production config fails
		logger, _ = zap.NewDevelopment()
	}
	return logger
}
