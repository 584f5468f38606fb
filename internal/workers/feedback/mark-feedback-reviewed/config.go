package markfeedbackreviewed

import (
	"time"

	"desk-feedback-workers/internal/common/config"
)

type Config struct {
	Timeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 15 * time.Second,
	}
}

func NewConfig(appCfg *config.Config) *Config {
	cfg := LoadConfig()
	if wc, ok := appCfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	return cfg
}
