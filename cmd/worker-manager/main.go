// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"screening-workers/internal/classifier"
	"screening-workers/internal/common/camunda"
	"screening-workers/internal/common/config"
	"screening-workers/internal/common/database"
	"screening-workers/internal/common/logger"
	"screening-workers/internal/common/observability"
	"screening-workers/internal/screening"

	sa "screening-workers/internal/workers/application/score-application"
	sab "screening-workers/internal/workers/application/score-application-batch"
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
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLog := logger.New("info", "console")
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...",
		zap.String("app", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
		zap.String("classifier", cfg.Classifier.Type),
	)

	obs := observability.New(cfg.App.Name, zapLog)
	defer obs.Shutdown()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- Zeebe ---
	zeebe, err := camunda.Connect(ctx, camunda.ConfigFrom(cfg.Camunda), zapLog)
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully", zap.String("gateway", cfg.Camunda.BrokerAddress))

	// --- Redis (optional, backs the prediction cache) ---
	var rdb *database.RedisClient
	if cfg.Redis.Address != "" {
		rdb, err = database.NewRedis(cfg.Redis)
		if err != nil {
			zapLog.Fatal("redis client failed", zap.Error(err))
		}
		err = retryWithBackoff(func() error {
			pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			defer cancel()
			return rdb.Ping(pingCtx)
		}, 5, time.Second, zapLog, "Redis connection")
		if err != nil {
			zapLog.Fatal("redis unreachable", zap.Error(err))
		}
		zapLog.Info("Redis connected", zap.String("address", cfg.Redis.Address))
	}

	// --- Classifier ---
	var redisClient *redis.Client
	if rdb != nil {
		redisClient = rdb.Client
	}
	model, err := classifier.NewFromConfig(cfg.Classifier, redisClient, log)
	if err != nil {
		zapLog.Fatal("classifier load failed", zap.Error(err))
	}
	adapter := classifier.NewAdapter(model, config.GetDuration(cfg.Classifier.Timeout), log)
	if !adapter.Available() {
		zapLog.Warn("No classifier configured; rows with category scores will be rejected as CLASSIFIER_UNAVAILABLE")
	}

	orchestrator := screening.New(adapter, screening.Options{MaxParallel: cfg.Scoring.MaxParallel}, log)

	// --- Workers ---
	var workers []*camunda.Worker

	if taskType := sa.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler, err := sa.NewHandler(sa.HandlerOptions{
			Config: sa.FromWorkerConfig(wcfg),
			Scorer: orchestrator,
			Logger: log,
		})
		if err != nil {
			zapLog.Fatal("failed to create score-application handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), taskType, wcfg, handler.Handle, obs, zapLog))
	}

	if taskType := sab.TaskType; config.IsWorkerEnabled(cfg, taskType) {
		wcfg := config.GetWorkerConfig(cfg, taskType)
		handler, err := sab.NewHandler(sab.HandlerOptions{
			Config:        sab.FromWorkerConfig(wcfg),
			Scorer:        orchestrator,
			Observability: obs,
			Logger:        log,
		})
		if err != nil {
			zapLog.Fatal("failed to create score-application-batch handler", zap.Error(err))
		}
		workers = append(workers, camunda.StartWorker(zeebe.Zeebe(), taskType, wcfg, handler.Handle, obs, zapLog))
	}
	zapLog.Info("Workers registered", zap.Int("count", len(workers)))

	// --- Health & Metrics Server ---
	srv := &http.Server{
		Addr:              cfg.Server.Address,
		Handler:           newHealthMux(zeebe, rdb, adapter),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		zapLog.Info("Health/Metrics server listening", zap.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	<-ctx.Done()
	zapLog.Info("Shutdown signal received, stopping workers...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Close()
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error stopping health server", zap.Error(err))
	}
	if err := adapter.Close(); err != nil {
		zapLog.Error("Error releasing classifier", zap.Error(err))
	}
	if rdb != nil {
		if err := rdb.Close(); err != nil {
			zapLog.Error("Error closing Redis client", zap.Error(err))
		}
	}
	if err := zeebe.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func newHealthMux(zeebe *camunda.Client, rdb *database.RedisClient, adapter *classifier.Adapter) *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, map[string]interface{}{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.HandleFunc("/ready", func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"zeebe": "ok", "redis": "disabled", "classifier": "disabled"}
		status := http.StatusOK

		if err := zeebe.HealthCheck(r.Context()); err != nil {
			checks["zeebe"] = err.Error()
			status = http.StatusServiceUnavailable
		}
		if rdb != nil {
			checks["redis"] = "ok"
			if err := rdb.Ping(r.Context()); err != nil {
				checks["redis"] = err.Error()
				status = http.StatusServiceUnavailable
			}
		}
		if adapter.Available() {
			checks["classifier"] = "ok"
		}

		state := "ready"
		if status != http.StatusOK {
			state = "not ready"
		}
		writeStatus(w, status, map[string]interface{}{
			"status": state,
			"checks": checks,
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func writeStatus(w http.ResponseWriter, status int, body map[string]interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
