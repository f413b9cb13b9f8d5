package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/virlabs/viraat-assistant/internal/config"
	"github.com/virlabs/viraat-assistant/internal/core/ports"
	"github.com/virlabs/viraat-assistant/internal/core/usecase"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/auth"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/index/tfidf"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/ingest"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/lexicon"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/queue/nats"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/repository/postgres"
	"github.com/virlabs/viraat-assistant/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config

	Queue  ports.MessageQueue
	Loader *ingest.Loader
	Tokens ports.TokenIssuer

	ChatUC    ports.ChatService
	AuthUC    *usecase.AuthUseCase
	ConvUC    *usecase.ConversationUseCase
	CorpusUC  ports.CorpusAdmin
	Analytics ports.AnalyticsStore

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	users := postgres.NewUserRepository(db)
	conversations := postgres.NewConversationRepository(db)
	analytics := postgres.NewAnalyticsRepository(db)

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	lex := lexicon.Default()
	if cfg.LexiconPath != "" {
		loaded, err := lexicon.Load(cfg.LexiconPath)
		if err != nil {
			return nil, fmt.Errorf("load lexicon: %w", err)
		}
		lex = loaded
	}
	detector := lexicon.NewDetector(lex)

	index := tfidf.New()
	loader := ingest.New(cfg.SourcesPath, cfg.MinChunkChars)
	corpusUC := usecase.NewCorpusUseCase(loader, index)

	// Serving starts even when the knowledge base is missing; every query
	// then takes the no-context fallback path until a reindex succeeds.
	if count, err := corpusUC.Reload(ctx); err != nil {
		slog.Warn("initial_corpus_load_failed", "error", err)
	} else {
		slog.Info("corpus_loaded", "chunks", count)
	}

	expander := usecase.NewQueryExpander(lex.Synonyms)
	retriever := usecase.NewRetrieveUseCase(expander, index, cfg.RAGTopK, cfg.RAGMinSimilarity)
	synthesizer := usecase.NewSynthesizer(detector, nil)
	chatUC := usecase.NewChatUseCase(retriever, synthesizer, detector, conversations, analytics, cfg.HistoryMessages)

	hasher := auth.NewPasswordHasher()
	tokens := auth.NewTokenManager(cfg.JWTSecret, time.Duration(cfg.JWTExpiryMinutes)*time.Minute)
	authUC := usecase.NewAuthUseCase(users, hasher, tokens)
	convUC := usecase.NewConversationUseCase(conversations)

	return &App{
		Config: cfg,

		Queue:  queue,
		Loader: loader,
		Tokens: tokens,

		ChatUC:    chatUC,
		AuthUC:    authUC,
		ConvUC:    convUC,
		CorpusUC:  corpusUC,
		Analytics: analytics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
