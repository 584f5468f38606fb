// cmd/worker-manager/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"go.uber.org/zap"

	"desk-feedback-workers/internal/analytics"
	"desk-feedback-workers/internal/common/camunda"
	"desk-feedback-workers/internal/common/config"
	"desk-feedback-workers/internal/common/database"
	apperrors "desk-feedback-workers/internal/common/errors"
	"desk-feedback-workers/internal/common/logger"
	"desk-feedback-workers/internal/common/observability"

	qe "desk-feedback-workers/internal/workers/data-access/query-elasticsearch"
	qp "desk-feedback-workers/internal/workers/data-access/query-postgresql"
	"desk-feedback-workers/internal/workers/data-access/query-postgresql/queries"
	af "desk-feedback-workers/internal/workers/feedback/analyze-feedback"
	mfr "desk-feedback-workers/internal/workers/feedback/mark-feedback-reviewed"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name, log)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Zeebe ---
	var camundaClient *camunda.Client
	err = camunda.RetryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClientWithConfig(&camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      10 * time.Second,
			RequestTimeout:         config.GetDuration(cfg.Camunda.RequestTimeout),
		})
		return err
	}, 10, 2*time.Second, log, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	err = camunda.RetryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, log, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	checks := map[string]func(context.Context) error{
		"postgres": pg.Ping,
		"zeebe":    camundaClient.HealthCheck,
	}

	// --- Redis (analysis cache) ---
	var redisClient *database.RedisClient
	if cfg.Analytics.CacheTTL > 0 {
		err = camunda.RetryWithBackoff(func() error {
			var err error
			redisClient, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redisClient.Ping(ctx)
		}, 10, 2*time.Second, log, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redisClient.Close()
		checks["redis"] = redisClient.Ping
		zapLog.Info("Redis connected successfully")
	} else {
		zapLog.Info("analysis cache disabled")
	}

	// --- Elasticsearch (analysis publishing and search) ---
	var esClient *database.ElasticsearchClient
	if cfg.Database.Elasticsearch.Enabled {
		err = camunda.RetryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			if err := esClient.Ping(ctx); err != nil {
				return err
			}
			return esClient.EnsureIndex(ctx, cfg.Database.Elasticsearch.Index)
		}, 15, 2*time.Second, log, "Elasticsearch connection")
		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		checks["elasticsearch"] = esClient.Ping
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("analysis publishing disabled")
	}

	lexicon, err := loadLexicon(cfg.Analytics.LexiconPath)
	if err != nil {
		zapLog.Fatal("lexicon load failed", zap.Error(err))
	}

	// --- Workers ---
	var workers []worker.JobWorker
	register := func(taskType string, handle func(worker.JobClient, entities.Job)) {
		if w := camunda.StartWorker(zeebeClient, taskType, cfg.Workers[taskType], handle, log); w != nil {
			workers = append(workers, w)
		}
	}

	register(qp.TaskType, qp.NewHandler(qp.NewConfig(cfg), pg.DB, log).Handle)
	register(mfr.TaskType, mfr.NewHandler(mfr.NewConfig(cfg), pg.DB, log).Handle)

	analyzeDeps := af.Dependencies{
		Source:   queries.NewFeedbackRepository(pg.DB, cfg.Analytics.RatingsInverted),
		Lexicon:  lexicon,
		Recorder: obs,
		Logger:   log,
	}
	analyzeCfg := af.NewConfig(cfg)
	if redisClient != nil {
		analyzeDeps.Cache = af.NewCache(redisClient.Client, analyzeCfg.CacheTTL)
	}
	if esClient != nil {
		analyzeDeps.Publisher = af.NewElasticsearchPublisher(esClient.Client, analyzeCfg.PublishIndex)
		register(qe.TaskType, qe.NewHandler(qe.NewConfig(cfg), esClient.Client, log).Handle)
	}
	analyzeHandler, err := af.NewHandler(analyzeCfg, analyzeDeps)
	if err != nil {
		zapLog.Fatal("failed to create analyze-feedback handler", zap.Error(err))
	}
	register(af.TaskType, analyzeHandler.Handle)

	zapLog.Info("workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           newServeMux(checks),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
		w.AwaitClose()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping Health/Metrics server", zap.Error(err))
	}
	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// loadLexicon reads a custom lexicon file, or returns the embedded Dutch
// lexicon when no path is configured.
func loadLexicon(path string) (*analytics.Lexicon, error) {
	if path == "" {
		return analytics.DefaultLexicon(), nil
	}
	lex, err := analytics.LoadLexicon(path)
	if err != nil {
		return nil, apperrors.NewLexiconLoadFailedError(path, err)
	}
	return lex, nil
}
