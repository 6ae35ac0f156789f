package config

import "go.uber.org/zap"

// NewLogger builds a console logger for development and JSON everywhere else.
func NewLogger(config *ServerConfig) (*zap.Logger, error) {
	if config.Development() {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
