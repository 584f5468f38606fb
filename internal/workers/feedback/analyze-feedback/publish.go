package analyzefeedback

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"desk-feedback-workers/internal/analytics"
)

const topTopicCount = 3

// AnalysisDocument is the search index representation of one analysis run.
type AnalysisDocument struct {
	AnalysisID     string                 `json:"analysisId"`
	OrganizationID *int64                 `json:"organizationId,omitempty"`
	ItemCount      int                    `json:"itemCount"`
	UrgentCount    int                    `json:"urgentCount"`
	AnalyzedAt     time.Time              `json:"analyzedAt"`
	TopTopics      []string               `json:"topTopics"`
	Insights       []string               `json:"insights"`
	Result         *analytics.BatchResult `json:"result"`
}

func NewAnalysisDocument(analysisID string, organizationID *int64, result *analytics.BatchResult, at time.Time) *AnalysisDocument {
	topics := make([]string, 0, topTopicCount)
	for _, t := range result.Topics {
		if len(topics) == topTopicCount {
			break
		}
		topics = append(topics, t.Topic)
	}
	return &AnalysisDocument{
		AnalysisID:     analysisID,
		OrganizationID: organizationID,
		ItemCount:      result.TotalItems,
		UrgentCount:    result.UrgencyDistribution[analytics.BucketInsufficient],
		AnalyzedAt:     at.UTC(),
		TopTopics:      topics,
		Insights:       result.Insights,
		Result:         result,
	}
}

type Publisher interface {
	Publish(ctx context.Context, doc *AnalysisDocument) error
}

// ElasticsearchPublisher indexes analysis documents by analysis id.
type ElasticsearchPublisher struct {
	client *elasticsearch.Client
	index  string
}

func NewElasticsearchPublisher(client *elasticsearch.Client, index string) *ElasticsearchPublisher {
	return &ElasticsearchPublisher{client: client, index: index}
}

func (p *ElasticsearchPublisher) Publish(ctx context.Context, doc *AnalysisDocument) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	res, err := p.client.Index(
		p.index,
		bytes.NewReader(body),
		p.client.Index.WithContext(ctx),
		p.client.Index.WithDocumentID(doc.AnalysisID),
	)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("index request failed: %s", res.Status())
	}
	return nil
}
