package main

import (
	"context"
	"log"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/net/netutil"

	httpadapter "github.com/virlabs/viraat-assistant/internal/adapters/http"
	"github.com/virlabs/viraat-assistant/internal/bootstrap"
	"github.com/virlabs/viraat-assistant/internal/config"
	"github.com/virlabs/viraat-assistant/internal/observability/logging"
	"github.com/virlabs/viraat-assistant/internal/observability/metrics"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("viraat-api", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	httpMetrics := metrics.NewHTTPServerMetrics("viraat-api")
	router := httpadapter.NewRouter(httpadapter.Deps{
		Chat:          app.ChatUC,
		Auth:          app.AuthUC,
		Conversations: app.ConvUC,
		Analytics:     app.Analytics,
		Corpus:        app.CorpusUC,
		Tokens:        app.Tokens,
		Metrics:       httpMetrics,
	}, httpadapter.Options{
		AllowGuestAccess: cfg.AllowGuestAccess,
		StreamChunkChars: cfg.StreamChunkChars,
		RateLimitRPS:     cfg.APIRateLimitRPS,
		RateLimitBurst:   cfg.APIRateLimitBurst,
		MaxConcurrent:    cfg.APIMaxConcurrent,
	})

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      router.Handler(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Rebuild the local index whenever the worker announces a corpus change.
	go func() {
		err := app.Queue.SubscribeReindex(ctx, func(handlerCtx context.Context, reason string) error {
			reloadCtx, cancel := context.WithTimeout(handlerCtx, 2*time.Minute)
			defer cancel()

			count, err := app.CorpusUC.Reload(reloadCtx)
			if err != nil {
				return err
			}
			slog.Info("corpus_reindexed", "reason", reason, "chunks", count)
			return nil
		})
		if err != nil && ctx.Err() == nil {
			slog.Error("reindex_subscribe_failed", "error", err)
		}
	}()

	go func() {
		listener, err := net.Listen("tcp", server.Addr)
		if err != nil {
			log.Fatalf("api listen error: %v", err)
		}
		if cfg.APIMaxConnections > 0 {
			listener = netutil.LimitListener(listener, cfg.APIMaxConnections)
		}
		slog.Info("api_listening", "port", cfg.APIPort)
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("api server error: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("api_shutdown_error", "error", err)
	}
}
