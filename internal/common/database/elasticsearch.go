// internal/common/database/elasticsearch.go
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"desk-feedback-workers/internal/common/config"

	"github.com/elastic/go-elasticsearch/v8"
)

// analysisIndexMapping keeps the nested result out of the inverted index;
// only the summary fields are searchable on the dashboard.
const analysisIndexMapping = `{
  "mappings": {
    "dynamic": false,
    "properties": {
      "analysisId":     {"type": "keyword"},
      "organizationId": {"type": "long"},
      "itemCount":      {"type": "integer"},
      "urgentCount":    {"type": "integer"},
      "analyzedAt":     {"type": "date"},
      "topTopics":      {"type": "keyword"},
      "insights":       {"type": "text"},
      "result":         {"type": "object", "enabled": false}
    }
  }
}`

// ElasticsearchClient wraps the client used to publish analysis results.
type ElasticsearchClient struct {
	Client *elasticsearch.Client
}

func NewElasticsearch(cfg config.ElasticsearchConfig) (*ElasticsearchClient, error) {
	esCfg := elasticsearch.Config{
		Addresses: cfg.Addresses,
	}

	if cfg.Username != "" {
		esCfg.Username = cfg.Username
		esCfg.Password = cfg.Password
	}

	es, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create elasticsearch client: %w", err)
	}

	return &ElasticsearchClient{Client: es}, nil
}

func (c *ElasticsearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(c.Client.Ping.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("elasticsearch ping error: %s", res.Status())
	}
	return nil
}

// EnsureIndex creates the analysis index with its mapping when it does not exist yet.
func (c *ElasticsearchClient) EnsureIndex(ctx context.Context, index string) error {
	res, err := c.Client.Indices.Exists([]string{index}, c.Client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("elasticsearch index check failed: %w", err)
	}
	res.Body.Close()

	if res.StatusCode == 200 {
		return nil
	}

	res, err = c.Client.Indices.Create(
		index,
		c.Client.Indices.Create.WithContext(ctx),
		c.Client.Indices.Create.WithBody(strings.NewReader(analysisIndexMapping)),
	)
	if err != nil {
		return fmt.Errorf("elasticsearch index create failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() && !strings.Contains(res.String(), "resource_already_exists_exception") {
		return fmt.Errorf("elasticsearch index create error: %s", res.Status())
	}
	return nil
}
