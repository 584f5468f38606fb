package queryelasticsearch

import (
	"time"

	"desk-feedback-workers/internal/common/config"
)

type Config struct {
	Timeout      time.Duration
	DefaultIndex string
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      30 * time.Second,
		DefaultIndex: "feedback-analyses",
	}
}

func NewConfig(appCfg *config.Config) *Config {
	cfg := LoadConfig()
	if wc, ok := appCfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	if idx := appCfg.Database.Elasticsearch.Index; idx != "" {
		cfg.DefaultIndex = idx
	}
	return cfg
}
