// Command server runs the job application assistant HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"job-assistant/internal/adapter/ai/gemini"
	"job-assistant/internal/adapter/ai/openrouter"
	"job-assistant/internal/adapter/ai/stub"
	"job-assistant/internal/adapter/ai/tokencount"
	"job-assistant/internal/adapter/scraper"
	"job-assistant/internal/adapter/textextractor/tika"
	"job-assistant/internal/adapter/vault"
	"job-assistant/internal/app"
	"job-assistant/internal/config"
	"job-assistant/internal/domain"
	"job-assistant/internal/extract"
	"job-assistant/internal/match"
	"job-assistant/internal/observability"
	"job-assistant/internal/qa"
	"job-assistant/internal/session"
	"job-assistant/internal/usecase"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal", slog.Any("error", err))
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := observability.SetupLogger(cfg)
	slog.SetDefault(logger)
	observability.InitMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.OTLPEndpoint != "" {
		shutdownTracing, err := observability.SetupTracing(cfg)
		if err != nil {
			return fmt.Errorf("setup tracing: %w", err)
		}
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				slog.Warn("tracing shutdown", slog.Any("error", err))
			}
		}()
	}

	ai, err := buildAIClient(ctx, cfg)
	if err != nil {
		return err
	}

	counter := tokencount.NewCounter(cfg.TokenizerModel)
	extractor := extract.New(ai, counter, cfg.MaxPromptTokens)
	engine := match.NewEngine(ai)
	answerer := qa.NewAnswerer(ai)

	svc := usecase.NewAssistant(
		session.NewStore(),
		extractor,
		engine,
		answerer,
		scraper.New(cfg.ScrapeTimeout, cfg.ScrapeUserAgent, cfg.ScrapeMinBlockLen),
		tika.New(cfg.TikaURL, cfg.ChatTimeout),
		vault.New(cfg.PersonalResumePath),
		cfg.TaskTimeout,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      app.NewRouter(cfg, svc),
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening",
			slog.Int("port", cfg.Port),
			slog.String("env", cfg.AppEnv),
			slog.String("ai_provider", cfg.AIProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ServerShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildAIClient(ctx context.Context, cfg config.Config) (domain.AIClient, error) {
	switch cfg.AIProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY is required for the gemini provider")
		}
		return gemini.New(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	case "openrouter":
		if cfg.OpenRouterAPIKey == "" {
			return nil, fmt.Errorf("OPENROUTER_API_KEY is required for the openrouter provider")
		}
		c := openrouter.New(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, cfg.OpenRouterBaseURL, cfg.ChatTimeout)
		return c.WithAttribution(cfg.OpenRouterReferer, cfg.OpenRouterTitle), nil
	case "stub":
		return stub.New(), nil
	default:
		return nil, fmt.Errorf("unknown AI_PROVIDER %q", cfg.AIProvider)
	}
}
