// Command altavoz is the main entry point for the Altavoz scoring server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	anyllmlib "github.com/mozilla-ai/any-llm-go"

	"github.com/altavoz-ai/altavoz/internal/config"
	"github.com/altavoz-ai/altavoz/internal/feedback"
	"github.com/altavoz-ai/altavoz/internal/grading"
	"github.com/altavoz-ai/altavoz/internal/health"
	"github.com/altavoz-ai/altavoz/internal/observe"
	"github.com/altavoz-ai/altavoz/internal/scoring"
	"github.com/altavoz-ai/altavoz/internal/server"
	"github.com/altavoz-ai/altavoz/pkg/provider/llm"
	"github.com/altavoz-ai/altavoz/pkg/provider/llm/anyllm"
	llmopenai "github.com/altavoz-ai/altavoz/pkg/provider/llm/openai"
	"github.com/altavoz-ai/altavoz/pkg/provider/pos"
	"github.com/altavoz-ai/altavoz/pkg/provider/pos/prose"
	"github.com/altavoz-ai/altavoz/pkg/provider/stt"
	"github.com/altavoz-ai/altavoz/pkg/provider/stt/elevenlabs"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "altavoz: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "altavoz: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logger := newLogger(cfg.Server.LogLevel)
	slog.SetDefault(logger)

	slog.Info("altavoz starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "altavoz",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(flushCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	obs := observe.DefaultMetrics()

	// ── Engine resources ──────────────────────────────────────────────────────
	resCfg := scoring.ResourceConfig{
		ParametersPath:  cfg.Engine.ParametersPath,
		FillerWordsPath: cfg.Engine.FillerWordsPath,
	}
	if !cfg.Engine.DisablePOSTagger {
		resCfg.TaggerLoader = func(ctx context.Context) (pos.Tagger, error) {
			return prose.New(), nil
		}
	}
	resources := scoring.NewResources(resCfg)
	if err := resources.EnsureLoaded(ctx); err != nil {
		slog.Error("failed to load engine resources", "err", err)
		return 1
	}

	engine := scoring.NewEngine(resources, scoring.WithObserveMetrics(obs))

	// ── Providers ─────────────────────────────────────────────────────────────
	transcriber, err := buildTranscriber(cfg.Providers.STT)
	if err != nil {
		slog.Error("failed to create STT provider", "err", err)
		return 1
	}
	llmProvider, err := buildLLM(cfg.Providers.LLM)
	if err != nil {
		slog.Error("failed to create LLM provider", "err", err)
		return 1
	}

	// ── Storage ───────────────────────────────────────────────────────────────
	checkers := []health.Checker{health.ResourcesChecker(resources)}

	var store grading.Store
	var pool *pgxpool.Pool
	if dsn := cfg.Storage.PostgresDSN; dsn != "" {
		pool, err = pgxpool.New(ctx, dsn)
		if err != nil {
			slog.Error("failed to create postgres pool", "err", err)
			return 1
		}
		defer pool.Close()

		pg := grading.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database", "err", err)
			return 1
		}
		store = pg
		checkers = append(checkers, health.DatabaseChecker(pool))
		slog.Info("postgres store ready")
	} else {
		slog.Info("no postgres DSN configured — results are not persisted")
	}

	// ── Server ────────────────────────────────────────────────────────────────
	srvOpts := []server.Option{
		server.WithObserveMetrics(obs),
		server.WithMaxConcurrentScoring(cfg.Server.MaxConcurrentScoring),
		server.WithHealthCheckers(checkers...),
	}
	if transcriber != nil {
		srvOpts = append(srvOpts, server.WithTranscriber(transcriber))
	}
	if store != nil {
		srvOpts = append(srvOpts, server.WithStore(store))

		var gen *feedback.Generator
		if llmProvider != nil {
			genOpts := []feedback.Option{feedback.WithObserveMetrics(obs)}
			if cfg.Feedback.Timeout > 0 {
				genOpts = append(genOpts, feedback.WithTimeout(cfg.Feedback.Timeout))
			}
			gen = feedback.NewGenerator(llmProvider, genOpts...)
		}
		srvOpts = append(srvOpts, server.WithScorer(grading.NewScorer(store, resources, gen)))
	}

	srv := server.New(engine, resources, srvOpts...)

	printStartupSummary(cfg, store != nil)

	httpSrv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", httpSrv.Addr)
		if tls := cfg.Server.TLS; tls != nil {
			errCh <- httpSrv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			errCh <- httpSrv.ListenAndServe()
		}
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	slog.Info("shutdown signal received, stopping…")

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Provider wiring ───────────────────────────────────────────────────────────

// buildTranscriber constructs the STT provider named in entry. An empty name
// disables transcription; the /transcript endpoint then returns 503.
func buildTranscriber(entry config.ProviderEntry) (stt.Transcriber, error) {
	switch entry.Name {
	case "":
		return nil, nil
	case "elevenlabs":
		var opts []elevenlabs.Option
		if entry.Model != "" {
			opts = append(opts, elevenlabs.WithModel(entry.Model))
		}
		if entry.Language != "" {
			opts = append(opts, elevenlabs.WithLanguage(entry.Language))
		}
		if entry.BaseURL != "" {
			opts = append(opts, elevenlabs.WithBaseURL(entry.BaseURL))
		}
		return elevenlabs.New(entry.APIKey, opts...)
	default:
		return nil, fmt.Errorf("unknown STT provider %q", entry.Name)
	}
}

// buildLLM constructs the feedback LLM provider named in entry. An empty name
// disables generated feedback; the final-scores endpoint then falls back to
// empty feedback texts.
func buildLLM(entry config.ProviderEntry) (llm.Provider, error) {
	switch entry.Name {
	case "":
		return nil, nil
	case "openai":
		var opts []llmopenai.Option
		if entry.BaseURL != "" {
			opts = append(opts, llmopenai.WithBaseURL(entry.BaseURL))
		}
		return llmopenai.New(entry.APIKey, entry.Model, opts...)
	case "anthropic", "gemini", "ollama":
		var opts []anyllmlib.Option
		if entry.APIKey != "" {
			opts = append(opts, anyllmlib.WithAPIKey(entry.APIKey))
		}
		if entry.BaseURL != "" {
			opts = append(opts, anyllmlib.WithBaseURL(entry.BaseURL))
		}
		return anyllm.New(entry.Name, entry.Model, opts...)
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", entry.Name)
	}
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, hasStore bool) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║         Altavoz — startup summary     ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printProvider("STT", cfg.Providers.STT.Name, cfg.Providers.STT.Model)
	printProvider("LLM", cfg.Providers.LLM.Name, cfg.Providers.LLM.Model)
	if hasStore {
		fmt.Printf("║  Storage         : %-19s ║\n", "postgres")
	} else {
		fmt.Printf("║  Storage         : %-19s ║\n", "(disabled)")
	}
	if cfg.Engine.DisablePOSTagger {
		fmt.Printf("║  POS tagger      : %-19s ║\n", "(disabled)")
	} else {
		fmt.Printf("║  POS tagger      : %-19s ║\n", "prose")
	}
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s ║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printProvider(kind, name, model string) {
	value := name
	if value == "" {
		value = "(not configured)"
	} else if model != "" {
		value = name + " / " + model
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s ║\n", kind, value)
}

// ── Logger ─────────────────────────────────────────────────────────────────────

func newLogger(level config.LogLevel) *slog.Logger {
	var lvl slog.Level
	switch level {
	case config.LogDebug:
		lvl = slog.LevelDebug
	case config.LogWarn:
		lvl = slog.LevelWarn
	case config.LogError:
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
