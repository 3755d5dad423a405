// Package logging provides the shared zap logger factory and log sanitizers.
package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// New builds the process logger for the given environment. Production gets
// JSON output at info level; everything else gets the console encoder at
// debug level.
func New(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)

	if env == "production" {
		logger, err = zap.NewProduction()
	} else {
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.With(zap.String("service", "storelens-engine")), nil
}
