package querypostgresql

import (
	"time"

	"desk-feedback-workers/internal/common/config"
)

type Config struct {
	Timeout         time.Duration
	RatingsInverted bool
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 30 * time.Second,
	}
}

// NewConfig applies the worker section and analytics settings of the app config.
func NewConfig(appCfg *config.Config) *Config {
	cfg := LoadConfig()
	if wc, ok := appCfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.RatingsInverted = appCfg.Analytics.RatingsInverted
	return cfg
}
