// Package logging builds the process-wide zap logger.
package logging

import "go.uber.org/zap"

// Setup returns a JSON production logger, or a console development
// logger when env is "dev".  It falls back to a no-op logger if zap
// cannot be built.
func Setup(service, env string) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if env == "dev" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger.With(zap.String("service", service))
}
