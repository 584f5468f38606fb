package analyzefeedback

import (
	"fmt"
	"time"

	"desk-feedback-workers/internal/analytics"
	"desk-feedback-workers/internal/common/config"
)

const defaultPublishIndex = "feedback-analyses"

type Config struct {
	Timeout      time.Duration
	CacheTTL     time.Duration
	PublishIndex string
	Engine       analytics.Config
}

func LoadConfig() *Config {
	return &Config{
		Timeout:      60 * time.Second,
		PublishIndex: defaultPublishIndex,
		Engine:       analytics.DefaultConfig(),
	}
}

// NewConfig builds the worker config from the application config.
func NewConfig(appCfg *config.Config) *Config {
	cfg := LoadConfig()
	if wc, ok := appCfg.Workers[TaskType]; ok && wc.Timeout > 0 {
		cfg.Timeout = config.GetDuration(wc.Timeout)
	}
	cfg.CacheTTL = time.Duration(appCfg.Analytics.CacheTTL) * time.Second
	if appCfg.Database.Elasticsearch.Index != "" {
		cfg.PublishIndex = appCfg.Database.Elasticsearch.Index
	}
	cfg.Engine = EngineConfig(appCfg.Analytics)
	return cfg
}

// EngineConfig maps the analytics section onto the analyzer config. Zero
// values keep the analyzer defaults.
func EngineConfig(a config.AnalyticsConfig) analytics.Config {
	engine := analytics.DefaultConfig()
	if a.MinWordFreq != 0 {
		engine.MinWordFreq = a.MinWordFreq
	}
	if a.NumTopics != 0 {
		engine.NumTopics = a.NumTopics
	}
	if a.KeyPhraseCount != 0 {
		engine.KeyPhraseCount = a.KeyPhraseCount
	}
	if a.DetailLimit != 0 {
		engine.DetailLimit = a.DetailLimit
	}
	if a.HighlightLimit != 0 {
		engine.HighlightLimit = a.HighlightLimit
	}
	if a.SummaryStrategy != "" {
		engine.SummaryStrategy = a.SummaryStrategy
	}
	if a.SummaryMaxLength != 0 {
		engine.SummaryMaxLength = a.SummaryMaxLength
	}
	if len(a.CriticalTopics) > 0 {
		engine.CriticalTopics = a.CriticalTopics
	}
	if a.Workers != 0 {
		engine.Workers = a.Workers
	}
	return engine
}

func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive")
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return c.Engine.Validate()
}
