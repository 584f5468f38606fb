package queries

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
)

// ErrIndexMissing reports a search against an index that does not exist yet.
var ErrIndexMissing = errors.New("index does not exist")

type QueryResult struct {
	Data      []map[string]interface{}
	TotalHits int64
	MaxScore  float64
	Took      int64
}

type searchResponse struct {
	Hits struct {
		Total struct {
			Value int64 `json:"value"`
		} `json:"total"`
		MaxScore *float64 `json:"max_score"`
		Hits     []struct {
			Source map[string]interface{} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func Execute(ctx context.Context, esClient *elasticsearch.Client, eq ElasticsearchQuery) (*QueryResult, error) {
	req, err := BuildQuery(eq)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	res, err := req.Do(ctx, esClient)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrIndexMissing, eq.Index)
	}
	if res.IsError() {
		return nil, fmt.Errorf("search query failed: %s", res.String())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, err
	}

	data := make([]map[string]interface{}, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		data = append(data, hit.Source)
	}

	result := &QueryResult{
		Data:      data,
		TotalHits: r.Hits.Total.Value,
		Took:      time.Since(start).Milliseconds(),
	}
	if r.Hits.MaxScore != nil {
		result.MaxScore = *r.Hits.MaxScore
	}
	return result, nil
}
