package queries

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

var (
	ErrUnknownQueryType = errors.New("unknown query type")
	ErrMissingIndex     = errors.New("index name is required")
	ErrMissingFilter    = errors.New("missing required filter")
)

const (
	QueryLatestAnalyses  = "latest_analyses"
	QueryAnalysesByTopic = "analyses_by_topic"
	QueryUrgentAnalyses  = "urgent_analyses"
	QueryInsightSearch   = "insight_search"

	defaultPageSize = 20
	maxPageSize     = 100
)

// ElasticsearchQuery describes a search over published feedback analyses.
type ElasticsearchQuery struct {
	Index          string
	QueryType      string
	OrganizationID int64
	Filters        map[string]interface{}
	From           int
	Size           int
}

// BuildQuery builds the search request for a query type. Every query is
// scoped to one organization when OrganizationID is set.
func BuildQuery(eq ElasticsearchQuery) (*esapi.SearchRequest, error) {
	if eq.Index == "" {
		return nil, ErrMissingIndex
	}

	var (
		body map[string]interface{}
		err  error
	)
	switch eq.QueryType {
	case QueryLatestAnalyses:
		body = buildLatestQuery(eq)
	case QueryAnalysesByTopic:
		body, err = buildTopicQuery(eq)
	case QueryUrgentAnalyses:
		body = buildUrgentQuery(eq)
	case QueryInsightSearch:
		body, err = buildInsightQuery(eq)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownQueryType, eq.QueryType)
	}
	if err != nil {
		return nil, err
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	from, size := pagination(eq.From, eq.Size)
	return &esapi.SearchRequest{
		Index: []string{eq.Index},
		Body:  bytes.NewReader(data),
		From:  &from,
		Size:  &size,
	}, nil
}

func pagination(from, size int) (int, int) {
	if from < 0 {
		from = 0
	}
	if size < 1 {
		size = defaultPageSize
	}
	if size > maxPageSize {
		size = maxPageSize
	}
	return from, size
}

func buildLatestQuery(eq ElasticsearchQuery) map[string]interface{} {
	return searchBody(baseFilters(eq), nil, newestFirst())
}

func buildTopicQuery(eq ElasticsearchQuery) (map[string]interface{}, error) {
	topic, ok := eq.Filters["topic"].(string)
	if !ok || topic == "" {
		return nil, fmt.Errorf("%w: topic", ErrMissingFilter)
	}
	filters := append(baseFilters(eq), map[string]interface{}{
		"term": map[string]interface{}{"topTopics": topic},
	})
	return searchBody(filters, nil, newestFirst()), nil
}

func buildUrgentQuery(eq ElasticsearchQuery) map[string]interface{} {
	minUrgent := 1.0
	if v, ok := number(eq.Filters["minUrgent"]); ok && v > 0 {
		minUrgent = v
	}
	filters := append(baseFilters(eq), map[string]interface{}{
		"range": map[string]interface{}{
			"urgentCount": map[string]interface{}{"gte": minUrgent},
		},
	})
	sort := []map[string]interface{}{
		{"urgentCount": "desc"},
		{"analyzedAt": "desc"},
	}
	return searchBody(filters, nil, sort)
}

func buildInsightQuery(eq ElasticsearchQuery) (map[string]interface{}, error) {
	keywords, ok := eq.Filters["keywords"].(string)
	if !ok || keywords == "" {
		return nil, fmt.Errorf("%w: keywords", ErrMissingFilter)
	}
	must := []interface{}{
		map[string]interface{}{
			"match": map[string]interface{}{"insights": keywords},
		},
	}
	return searchBody(baseFilters(eq), must, nil), nil
}

// baseFilters scopes a query to the organization and the optional
// analyzedAt window given as "from" and "to" filters.
func baseFilters(eq ElasticsearchQuery) []interface{} {
	filters := []interface{}{}
	if eq.OrganizationID > 0 {
		filters = append(filters, map[string]interface{}{
			"term": map[string]interface{}{"organizationId": eq.OrganizationID},
		})
	}

	window := map[string]interface{}{}
	if from, ok := eq.Filters["from"].(string); ok && from != "" {
		window["gte"] = from
	}
	if to, ok := eq.Filters["to"].(string); ok && to != "" {
		window["lte"] = to
	}
	if len(window) > 0 {
		filters = append(filters, map[string]interface{}{
			"range": map[string]interface{}{"analyzedAt": window},
		})
	}
	return filters
}

func searchBody(filters, must []interface{}, sort []map[string]interface{}) map[string]interface{} {
	if len(must) == 0 {
		must = []interface{}{map[string]interface{}{"match_all": map[string]interface{}{}}}
	}
	boolQuery := map[string]interface{}{"must": must}
	if len(filters) > 0 {
		boolQuery["filter"] = filters
	}

	body := map[string]interface{}{
		"query":   map[string]interface{}{"bool": boolQuery},
		"_source": map[string]interface{}{"excludes": []string{"result"}},
	}
	if len(sort) > 0 {
		body["sort"] = sort
	}
	return body
}

func newestFirst() []map[string]interface{} {
	return []map[string]interface{}{{"analyzedAt": "desc"}}
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
