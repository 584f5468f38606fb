package database

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"desk-feedback-workers/internal/common/config"
	"desk-feedback-workers/internal/common/errors"
)

func TestPostgresClient_Ping(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	client := &PostgresClient{DB: db}
	defer client.Close()

	mock.ExpectPing()
	assert.NoError(t, client.Ping(context.Background()))

	mock.ExpectPing().WillReturnError(stderrors.New("dial tcp 127.0.0.1:5432: connection refused"))
	err = client.Ping(context.Background())
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeDatabaseConnectionFailed, stdErr.Code)
	assert.True(t, stdErr.Retryable)
	assert.Contains(t, stdErr.Details, "connection refused")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisClient_Ping(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := NewRedis(config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	assert.NoError(t, client.Ping(context.Background()))

	mr.Close()
	assert.Error(t, client.Ping(context.Background()))
}

func TestNewRedis_RequiresAddress(t *testing.T) {
	_, err := NewRedis(config.RedisConfig{})
	assert.Error(t, err)
}

type fakeElasticsearch struct {
	mu       sync.Mutex
	exists   bool
	requests []string
	bodies   []string
}

func (f *fakeElasticsearch) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	body, _ := io.ReadAll(r.Body)
	f.requests = append(f.requests, r.Method+" "+r.URL.Path)
	f.bodies = append(f.bodies, string(body))

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodHead && r.URL.Path == "/":
		w.WriteHeader(http.StatusOK)
	case r.Method == http.MethodHead:
		if f.exists {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusNotFound)
		}
	case r.Method == http.MethodPut:
		f.exists = true
		_, _ = w.Write([]byte(`{"acknowledged":true}`))
	default:
		w.WriteHeader(http.StatusBadRequest)
	}
}

func newFakeElasticsearch(t *testing.T, fake *fakeElasticsearch) *ElasticsearchClient {
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)

	client, err := NewElasticsearch(config.ElasticsearchConfig{Addresses: []string{server.URL}})
	require.NoError(t, err)
	return client
}

func TestElasticsearchClient_Ping(t *testing.T) {
	client := newFakeElasticsearch(t, &fakeElasticsearch{})
	assert.NoError(t, client.Ping(context.Background()))
}

func TestElasticsearchClient_EnsureIndex(t *testing.T) {
	t.Run("creates missing index", func(t *testing.T) {
		fake := &fakeElasticsearch{}
		client := newFakeElasticsearch(t, fake)

		require.NoError(t, client.EnsureIndex(context.Background(), "feedback-analyses"))
		assert.Equal(t, []string{"HEAD /feedback-analyses", "PUT /feedback-analyses"}, fake.requests)
		assert.Contains(t, fake.bodies[1], `"organizationId"`)
	})

	t.Run("existing index untouched", func(t *testing.T) {
		fake := &fakeElasticsearch{exists: true}
		client := newFakeElasticsearch(t, fake)

		require.NoError(t, client.EnsureIndex(context.Background(), "feedback-analyses"))
		assert.Equal(t, []string{"HEAD /feedback-analyses"}, fake.requests)
	})
}
