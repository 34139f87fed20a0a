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

	"offr-workers/internal/catalog"
	"offr-workers/internal/common/aws"
	"offr-workers/internal/common/config"
	"offr-workers/internal/common/database"
	"offr-workers/internal/common/logger"
	"offr-workers/internal/common/observability"
	"offr-workers/internal/genai"
	"offr-workers/internal/offers/scoring"

	// Assessment workers
	ao "offr-workers/internal/workers/assessment/assess-offer"
	salt "offr-workers/internal/workers/assessment/suggest-alternatives"

	// Catalog workers
	gc "offr-workers/internal/workers/catalog/get-course"
	sc "offr-workers/internal/workers/catalog/search-courses"

	// Advice workers
	faq "offr-workers/internal/workers/advice/faq-assistant"
	psg "offr-workers/internal/workers/advice/profile-suggestions"
	psa "offr-workers/internal/workers/advice/ps-analysis"

	// Reporting workers
	sr "offr-workers/internal/workers/reporting/send-report"
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
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")

	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		// Test the connection with context
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		// Test the connection
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	if exists, err := esClient.IndexExists(ctx, "courses"); err != nil {
		zapLog.Warn("courses index check failed", zap.Error(err))
	} else if !exists {
		zapLog.Warn("courses index missing, search-courses will return empty results")
	}

	// --- Init Redis with retry ---
	var redisClient *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redisClient, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		// Test the connection with context
		return redisClient.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redisClient.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init SES (optional, reports degrade to disabled without it) ---
	var sesClient sr.SESService
	if cfg.Reports.Email.Enabled && cfg.Reports.AWS.Region != "" {
		client, err := aws.NewSESClient(ctx, cfg.Reports.AWS.Region)
		if err != nil {
			zapLog.Warn("SES init failed, report emails disabled", zap.Error(err))
		} else {
			sesClient = client
			zapLog.Info("SES client initialized", zap.String("region", cfg.Reports.AWS.Region))
		}
	}

	// --- Shared Services ---
	invoker := genai.New(genai.NewHTTPClient(cfg.GenAI), cfg.GenAI, log)
	store := catalog.NewStore(
		pg.DB,
		redisClient.Client,
		time.Duration(cfg.Database.Redis.CacheTTL)*time.Second,
		log,
	)
	engine := scoring.New(cfg.Scoring)

	zapLog.Info("All shared services initialized")

	// --- START: Register Workers ---

	// --- 1. Assessment Workers (2) ---
	if wcfg := cfg.Workers[ao.TaskType]; wcfg.Enabled {
		aoCfg := ao.LoadConfig()
		if wcfg.Timeout > 0 {
			aoCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := ao.NewHandler(aoCfg, store, invoker, engine, log)
		startWorker(zeebeClient, ao.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := cfg.Workers[salt.TaskType]; wcfg.Enabled {
		saltCfg := salt.LoadConfig()
		if wcfg.Timeout > 0 {
			saltCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := salt.NewHandler(saltCfg, store, log)
		startWorker(zeebeClient, salt.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 2. Catalog Workers (2) ---
	if wcfg := cfg.Workers[gc.TaskType]; wcfg.Enabled {
		gcCfg := gc.LoadConfig()
		if wcfg.Timeout > 0 {
			gcCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := gc.NewHandler(gcCfg, store, log)
		startWorker(zeebeClient, gc.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := cfg.Workers[sc.TaskType]; wcfg.Enabled {
		scCfg := sc.LoadConfig()
		if wcfg.Timeout > 0 {
			scCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := sc.NewHandler(scCfg, esClient.Client, log)
		startWorker(zeebeClient, sc.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 3. Advice Workers (3) ---
	if wcfg := cfg.Workers[psa.TaskType]; wcfg.Enabled {
		psaCfg := psa.LoadConfig()
		if wcfg.Timeout > 0 {
			psaCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := psa.NewHandler(psaCfg, invoker, log)
		startWorker(zeebeClient, psa.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := cfg.Workers[faq.TaskType]; wcfg.Enabled {
		faqCfg := faq.LoadConfig()
		if wcfg.Timeout > 0 {
			faqCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := faq.NewHandler(faqCfg, invoker, log)
		startWorker(zeebeClient, faq.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	if wcfg := cfg.Workers[psg.TaskType]; wcfg.Enabled {
		psgCfg := psg.LoadConfig()
		if wcfg.Timeout > 0 {
			psgCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := psg.NewHandler(psgCfg, invoker, log)
		startWorker(zeebeClient, psg.TaskType, wcfg, handler.Handle, obs, zapLog)
	}

	// --- 4. Reporting Workers (1) ---
	if wcfg := cfg.Workers[sr.TaskType]; wcfg.Enabled {
		srCfg := sr.LoadConfig(cfg.Reports)
		if wcfg.Timeout > 0 {
			srCfg.Timeout = time.Duration(wcfg.Timeout) * time.Millisecond
		}
		handler := sr.NewHandler(srCfg, sesClient, log)
		startWorker(zeebeClient, sr.TaskType, wcfg, handler.Handle, obs, zapLog)
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

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), obs *observability.Observability, log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	instrumented := func(jobClient worker.JobClient, job entities.Job) {
		start := time.Now()
		handlerFunc(jobClient, job)
		obs.RecordJob(context.Background(), taskType, time.Since(start))
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(instrumented).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
