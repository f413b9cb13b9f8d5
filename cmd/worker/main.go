package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/virlabs/viraat-assistant/internal/bootstrap"
	"github.com/virlabs/viraat-assistant/internal/config"
	"github.com/virlabs/viraat-assistant/internal/observability/logging"
	"github.com/virlabs/viraat-assistant/internal/observability/metrics"
)

const workerService = "viraat-worker"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger(workerService, cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(workerService)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: workerMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server error: %v", err)
		}
	}()

	interval := time.Duration(cfg.ScanInterval) * time.Second
	if interval <= 0 {
		interval = 30 * time.Second
	}

	slog.Info("worker_watching_sources", "path", cfg.SourcesPath, "interval", interval.String())
	watchSources(ctx, app, workerMetrics, interval)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = metricsServer.Shutdown(shutdownCtx)
}

// watchSources polls the knowledge base directory and publishes a reindex
// notification whenever its fingerprint changes. Serving processes do the
// actual reload; the worker only detects and announces.
func watchSources(ctx context.Context, app *bootstrap.App, workerMetrics *metrics.WorkerMetrics, interval time.Duration) {
	lastFingerprint := ""
	if fp, err := app.Loader.Fingerprint(); err == nil {
		lastFingerprint = fp
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		start := time.Now()
		fingerprint, err := app.Loader.Fingerprint()
		if err != nil {
			slog.Warn("fingerprint_failed", "error", err)
			workerMetrics.FinishScan(workerService, time.Since(start), 0, err)
			continue
		}
		if fingerprint == lastFingerprint {
			continue
		}

		chunks, err := app.Loader.Load(ctx)
		workerMetrics.FinishScan(workerService, time.Since(start), len(chunks), err)
		if err != nil {
			slog.Warn("corpus_scan_failed", "error", err)
			continue
		}
		lastFingerprint = fingerprint

		publishCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		err = app.Queue.PublishReindex(publishCtx, "sources changed")
		cancel()
		if err != nil {
			slog.Warn("reindex_publish_failed", "error", err)
			continue
		}
		workerMetrics.RecordReindexPublished(workerService)
		slog.Info("reindex_published", "chunks", len(chunks))
	}
}
