// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Ayush1216/Frictionless/internal/common/aws"
	"github.com/Ayush1216/Frictionless/internal/common/camunda"
	"github.com/Ayush1216/Frictionless/internal/common/config"
	"github.com/Ayush1216/Frictionless/internal/common/database"
	"github.com/Ayush1216/Frictionless/internal/common/logger"
	"github.com/Ayush1216/Frictionless/internal/common/observability"
	"github.com/Ayush1216/Frictionless/internal/llm"
	"github.com/Ayush1216/Frictionless/internal/store"

	// Matching Workers (2)
	bmi "github.com/Ayush1216/Frictionless/internal/workers/matching/batch-match-investors"
	stf "github.com/Ayush1216/Frictionless/internal/workers/matching/score-thesis-fit"

	// Profile Workers (2)
	bip "github.com/Ayush1216/Frictionless/internal/workers/profile/build-investor-profile"
	bsp "github.com/Ayush1216/Frictionless/internal/workers/profile/build-startup-profile"

	// Communication Workers (1)
	smn "github.com/Ayush1216/Frictionless/internal/workers/communication/send-match-notification"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	zapLog := logger.New("info", "console")
	defer zapLog.Sync()

	// Wrap zap logger with our logger interface
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	cfg, err := config.Load()
	if err != nil {
		zapLog.Fatal("config load failed", zap.Error(err))
	}

	obs := observability.New("worker-manager")
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe Client with retry ---
	var camundaClient *camunda.Client
	err = retryWithBackoff(func() error {
		var err error
		camundaClient, err = camunda.NewClient(cfg.Camunda.BrokerAddress)
		if err != nil {
			return err
		}
		return camundaClient.HealthCheck(ctx)
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zeebeClient := camundaClient.GetClient()
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry (optional) ---
	var esClient *database.ElasticsearchClient
	if len(cfg.Database.Elasticsearch.Addresses) > 0 {
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

		if err != nil {
			zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
		}
		zapLog.Info("Elasticsearch connected successfully")
	} else {
		zapLog.Info("Elasticsearch not configured, batch matching will use PostgreSQL")
	}

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init LLM Router ---
	// A missing router is not fatal: profile workers fall back to heuristics
	// and reasoning falls back to the deterministic summary.
	router, err := llm.NewRouter(ctx, cfg.LLM, log)
	if err != nil {
		zapLog.Warn("LLM router unavailable, running heuristic-only", zap.Error(err))
		router = nil
	}

	// --- Init Stores ---
	investorStore := store.NewInvestorStore(pg.DB, log)
	cacheTTL := time.Duration(cfg.Matching.CacheTTLSeconds) * time.Second
	cache := store.NewCache(redis.Client, cacheTTL)
	var searchStore *store.SearchStore
	if esClient != nil {
		searchStore = store.NewSearchStore(esClient.Client, cfg.Database.Elasticsearch.InvestorIndex, log)
	}

	// --- Init Notification Clients (optional) ---
	var sesClient *aws.SESClient
	var snsClient *aws.SNSClient
	if cfg.Notifications.AWSRegion != "" {
		sesClient, err = aws.NewSESClient(ctx, cfg.Notifications.AWSRegion)
		if err != nil {
			zapLog.Warn("SES client unavailable, match notifications disabled", zap.Error(err))
		}
		if cfg.Notifications.SNSTopicARN != "" {
			snsClient, err = aws.NewSNSClient(ctx, cfg.Notifications.AWSRegion)
			if err != nil {
				zapLog.Warn("SNS client unavailable, match events disabled", zap.Error(err))
			}
		}
	}

	zapLog.Info("All external service clients initialized")

	// --- Register Workers ---

	// Build Startup Profile
	if name := "build-startup-profile"; workerCfg(cfg, name).Enabled {
		opts := bsp.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Logger:    log,
			Cache:     cache,
		}
		if router != nil {
			opts.Refiner = router
		}
		handler, err := bsp.NewHandler(opts)
		if err != nil {
			zapLog.Fatal("failed to create build-startup-profile handler", zap.Error(err))
		}
		startWorker(zeebeClient, bsp.TaskType, workerCfg(cfg, name), handler.Handle, zapLog)
	}

	// Build Investor Profile
	if name := "build-investor-profile"; workerCfg(cfg, name).Enabled {
		opts := bip.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Logger:    log,
			Cache:     cache,
		}
		if router != nil {
			opts.Refiner = router
		}
		handler, err := bip.NewHandler(opts)
		if err != nil {
			zapLog.Fatal("failed to create build-investor-profile handler", zap.Error(err))
		}
		startWorker(zeebeClient, bip.TaskType, workerCfg(cfg, name), handler.Handle, zapLog)
	}

	// Score Thesis Fit
	if name := "score-thesis-fit"; workerCfg(cfg, name).Enabled {
		opts := stf.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Logger:    log,
			Investors: investorStore,
		}
		if router != nil {
			opts.Refiner = router
		}
		handler, err := stf.NewHandler(opts)
		if err != nil {
			zapLog.Fatal("failed to create score-thesis-fit handler", zap.Error(err))
		}
		startWorker(zeebeClient, stf.TaskType, workerCfg(cfg, name), handler.Handle, zapLog)
	}

	// Batch Match Investors
	if name := "batch-match-investors"; workerCfg(cfg, name).Enabled {
		handler, err := bmi.NewHandler(bmi.HandlerOptions{
			AppConfig: cfg,
			Camunda:   camundaClient,
			Logger:    log,
			Investors: investorStore,
			Search:    searchStore,
			Cache:     cache,
		})
		if err != nil {
			zapLog.Fatal("failed to create batch-match-investors handler", zap.Error(err))
		}
		startWorker(zeebeClient, bmi.TaskType, workerCfg(cfg, name), handler.Handle, zapLog)
	}

	// Send Match Notification
	if name := "send-match-notification"; workerCfg(cfg, name).Enabled {
		if sesClient == nil {
			zapLog.Warn("send-match-notification enabled but SES is not configured, skipping")
		} else {
			opts := smn.HandlerOptions{
				AppConfig: cfg,
				Camunda:   camundaClient,
				Logger:    log,
				Email:     sesClient,
			}
			if snsClient != nil {
				opts.Publisher = snsClient
			}
			handler, err := smn.NewHandler(opts)
			if err != nil {
				zapLog.Fatal("failed to create send-match-notification handler", zap.Error(err))
			}
			startWorker(zeebeClient, smn.TaskType, workerCfg(cfg, name), handler.Handle, zapLog)
		}
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & Metrics Server ---
	go func() {
		http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "ready",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening on :8080")
		if err := http.ListenAndServe(":8080", nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	if err := camundaClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

// workerCfg returns the configured block for a worker, falling back to
// sane defaults so an unlisted worker still runs.
func workerCfg(cfg *config.Config, name string) config.WorkerConfig {
	if wc, ok := cfg.Workers[name]; ok {
		return wc
	}
	return config.WorkerConfig{
		Enabled:       true,
		MaxJobsActive: 5,
		Timeout:       120000,
		MaxRetries:    3,
	}
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
