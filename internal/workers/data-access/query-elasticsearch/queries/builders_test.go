package queries

import (
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeBody(t *testing.T, eq ElasticsearchQuery) (map[string]interface{}, int, int) {
	t.Helper()
	req, err := BuildQuery(eq)
	require.NoError(t, err)

	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &body))
	return body, *req.From, *req.Size
}

func boolQuery(body map[string]interface{}) map[string]interface{} {
	return body["query"].(map[string]interface{})["bool"].(map[string]interface{})
}

func TestBuildQuery_Latest(t *testing.T) {
	body, from, size := decodeBody(t, ElasticsearchQuery{
		Index:          "feedback-analyses",
		QueryType:      QueryLatestAnalyses,
		OrganizationID: 7,
	})

	assert.Equal(t, 0, from)
	assert.Equal(t, 20, size)
	assert.Equal(t, []interface{}{map[string]interface{}{"analyzedAt": "desc"}}, body["sort"])

	filters := boolQuery(body)["filter"].([]interface{})
	require.Len(t, filters, 1)
	assert.Equal(t, map[string]interface{}{"term": map[string]interface{}{"organizationId": float64(7)}}, filters[0])
}

func TestBuildQuery_DateWindow(t *testing.T) {
	body, _, _ := decodeBody(t, ElasticsearchQuery{
		Index:     "feedback-analyses",
		QueryType: QueryLatestAnalyses,
		Filters:   map[string]interface{}{"from": "2024-01-01T00:00:00Z", "to": "2024-02-01T00:00:00Z"},
	})

	filters := boolQuery(body)["filter"].([]interface{})
	require.Len(t, filters, 1)
	window := filters[0].(map[string]interface{})["range"].(map[string]interface{})["analyzedAt"].(map[string]interface{})
	assert.Equal(t, "2024-01-01T00:00:00Z", window["gte"])
	assert.Equal(t, "2024-02-01T00:00:00Z", window["lte"])
}

func TestBuildQuery_Urgent(t *testing.T) {
	body, _, _ := decodeBody(t, ElasticsearchQuery{
		Index:     "feedback-analyses",
		QueryType: QueryUrgentAnalyses,
	})

	filters := boolQuery(body)["filter"].([]interface{})
	require.Len(t, filters, 1)
	threshold := filters[0].(map[string]interface{})["range"].(map[string]interface{})["urgentCount"].(map[string]interface{})
	assert.Equal(t, float64(1), threshold["gte"])

	sort := body["sort"].([]interface{})
	require.Len(t, sort, 2)
	assert.Equal(t, map[string]interface{}{"urgentCount": "desc"}, sort[0])
}

func TestBuildQuery_InsightSearch(t *testing.T) {
	body, _, _ := decodeBody(t, ElasticsearchQuery{
		Index:     "feedback-analyses",
		QueryType: QueryInsightSearch,
		Filters:   map[string]interface{}{"keywords": "wifi traag"},
	})

	must := boolQuery(body)["must"].([]interface{})
	require.Len(t, must, 1)
	assert.Equal(t, map[string]interface{}{"match": map[string]interface{}{"insights": "wifi traag"}}, must[0])
	assert.NotContains(t, boolQuery(body), "filter")
	assert.NotContains(t, body, "sort")
}

func TestBuildQuery_Pagination(t *testing.T) {
	tests := []struct {
		name             string
		from, size       int
		wantFrom, wantSz int
	}{
		{"defaults", 0, 0, 0, 20},
		{"negative from", -5, 10, 0, 10},
		{"size capped", 10, 500, 10, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, from, size := decodeBody(t, ElasticsearchQuery{
				Index:     "feedback-analyses",
				QueryType: QueryLatestAnalyses,
				From:      tt.from,
				Size:      tt.size,
			})
			assert.Equal(t, tt.wantFrom, from)
			assert.Equal(t, tt.wantSz, size)
		})
	}
}

func TestBuildQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		query   ElasticsearchQuery
		wantErr error
	}{
		{"missing index", ElasticsearchQuery{QueryType: QueryLatestAnalyses}, ErrMissingIndex},
		{"unknown type", ElasticsearchQuery{Index: "x", QueryType: "desk_search"}, ErrUnknownQueryType},
		{"topic missing", ElasticsearchQuery{Index: "x", QueryType: QueryAnalysesByTopic}, ErrMissingFilter},
		{"keywords missing", ElasticsearchQuery{Index: "x", QueryType: QueryInsightSearch}, ErrMissingFilter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildQuery(tt.query)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
