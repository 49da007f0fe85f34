package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Settings are process-level options read from the environment. Command
// line flags take precedence.
type Settings struct {
	DataDir     string `env:"BEAMHARD_DATA_DIR" envDefault:".beamhard"`
	LogLevel    string `env:"BEAMHARD_LOG_LEVEL" envDefault:"info"`
	Workers     int    `env:"BEAMHARD_WORKERS" envDefault:"0"`
	MetricsFile string `env:"BEAMHARD_METRICS_FILE"`
}

// LoadSettings parses Settings from the environment.
func LoadSettings() (Settings, error) {
	var s Settings
	if err := env.Parse(&s); err != nil {
		return Settings{}, fmt.Errorf("parse env: %w", err)
	}
	if s.Workers < 0 {
		return Settings{}, fmt.Errorf("parse env: BEAMHARD_WORKERS must be >= 0, got %d", s.Workers)
	}
	return s, nil
}
