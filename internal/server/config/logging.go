package config

import (
	"noted/pkg/logger"
)

// LoggingConfig holds logger settings.
type LoggingConfig struct {
	Level string `yaml:"level" env:"NOTED_LOGGER_LEVEL" env-default:"info"`
	Mode  string `yaml:"mode" env:"NOTED_LOGGER_MODE" env-default:"development"`
}

// GetEnvironment maps the mode string to a logger environment.
func (l *LoggingConfig) GetEnvironment() logger.Environment {
	if l.Mode == "production" {
		return logger.Production
	}
	return logger.Development
}
