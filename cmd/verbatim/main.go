// Command verbatim runs the phonological error review server.
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

	"github.com/eeeeman22/verbatim/internal/analysis"
	"github.com/eeeeman22/verbatim/internal/config"
	"github.com/eeeeman22/verbatim/internal/dictionary"
	"github.com/eeeeman22/verbatim/internal/health"
	"github.com/eeeeman22/verbatim/internal/observe"
	"github.com/eeeeman22/verbatim/internal/review"
	"github.com/eeeeman22/verbatim/internal/server"
	"github.com/eeeeman22/verbatim/internal/store"
	"github.com/eeeeman22/verbatim/pkg/asr"
	"github.com/eeeeman22/verbatim/pkg/asr/deepgram"
	asrmock "github.com/eeeeman22/verbatim/pkg/asr/mock"
)

// version is set at build time via -ldflags.
var version = "dev"

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
			fmt.Fprintf(os.Stderr, "verbatim: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "verbatim: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	// The LevelVar lets the config watcher change verbosity at runtime.
	logLevel := new(slog.LevelVar)
	logLevel.Set(cfg.Server.LogLevel.SlogLevel())
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("verbatim starting",
		"version", version,
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    "verbatim",
		ServiceVersion: version,
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Recognition provider ──────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinProviders(reg)

	var provider asr.Provider
	if name := cfg.ASR.Name; name != "" {
		p, err := reg.CreateASR(cfg.ASR)
		if errors.Is(err, config.ErrProviderNotRegistered) {
			slog.Warn("unknown recognition provider — transcripts must be posted over the API", "name", name)
		} else if err != nil {
			slog.Error("failed to create recognition provider", "name", name, "err", err)
			return 1
		} else {
			provider = p
			slog.Info("recognition provider created", "name", name, "model", cfg.ASR.Model)
		}
	}

	// ── Session store ─────────────────────────────────────────────────────────
	sessions, closeStore, err := buildStore(ctx, cfg.Storage)
	if err != nil {
		slog.Error("failed to initialise session store", "err", err)
		return 1
	}
	if closeStore != nil {
		defer closeStore()
	}

	// ── Pronunciation lexicon ─────────────────────────────────────────────────
	dict, err := buildDictionary(cfg.Dictionary)
	if err != nil {
		slog.Error("failed to load pronunciation lexicon", "err", err)
		return 1
	}

	// ── Review manager ────────────────────────────────────────────────────────
	managerOpts := []review.Option{
		review.WithMetrics(metrics),
		review.WithLogger(logger),
	}
	if cfg.Review.FlagThreshold > 0 {
		managerOpts = append(managerOpts, review.WithFlagThreshold(cfg.Review.FlagThreshold))
	}
	if sessions != nil {
		managerOpts = append(managerOpts, review.WithStore(sessions))
	}
	if provider != nil {
		managerOpts = append(managerOpts, review.WithProvider(cfg.ASR.Name, provider, asr.StreamConfig{
			SampleRate: cfg.ASR.SampleRate,
			Channels:   1,
			Language:   cfg.ASR.Language,
		}))
	}
	manager := review.NewManager(analysis.NewAnalyzer(), dict, managerOpts...)

	// ── Health checks ─────────────────────────────────────────────────────────
	var checkers []health.Checker
	if pg, ok := sessions.(*store.PostgresStore); ok {
		checkers = append(checkers, health.Checker{Name: "storage", Check: pg.Ping})
	}
	probes := health.New(checkers...)

	// ── HTTP server ───────────────────────────────────────────────────────────
	serverOpts := []server.Option{
		server.WithDictionary(dict),
		server.WithHealth(probes),
		server.WithMetrics(metrics),
		server.WithLogger(logger),
	}
	if sessions != nil {
		serverOpts = append(serverOpts, server.WithStore(sessions))
	}
	srv := server.New(manager, serverOpts...)

	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ── Config hot reload ─────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(d.NewLogLevel.SlogLevel())
			slog.Info("log level changed", "level", d.NewLogLevel)
		}
		if d.FlagThresholdChanged {
			threshold := d.NewFlagThreshold
			if threshold == 0 {
				threshold = analysis.DefaultFlagThreshold
			}
			manager.SetFlagThreshold(threshold)
			slog.Info("flag threshold changed, applies to new words", "threshold", threshold)
		}
		if d.DictionaryChanged {
			slog.Warn("dictionary config changed — restart to reload the lexicon")
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── Serve ─────────────────────────────────────────────────────────────────
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server ready — press Ctrl+C to shut down", "addr", addr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		slog.Error("server error", "err", err)
		return 1
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Warn("http shutdown error", "err", err)
	}

	// Persist any session still live when the process stops.
	if _, err := manager.Stop(shutdownCtx); err != nil && !errors.Is(err, review.ErrNoSession) {
		slog.Warn("stop session error", "err", err)
	}

	slog.Info("goodbye")
	return 0
}

// registerBuiltinProviders wires the recognition providers that ship
// with Verbatim into reg.
func registerBuiltinProviders(reg *config.Registry) {
	reg.RegisterASR("deepgram", func(entry config.ProviderEntry) (asr.Provider, error) {
		var opts []deepgram.Option
		if entry.Model != "" {
			opts = append(opts, deepgram.WithModel(entry.Model))
		}
		if entry.Language != "" {
			opts = append(opts, deepgram.WithLanguage(entry.Language))
		}
		if entry.SampleRate > 0 {
			opts = append(opts, deepgram.WithSampleRate(entry.SampleRate))
		}
		return deepgram.New(entry.APIKey, opts...)
	})

	// mock yields an idle stream; useful for trying the review workflow
	// without a recognition account.
	reg.RegisterASR("mock", func(entry config.ProviderEntry) (asr.Provider, error) {
		return &asrmock.Provider{}, nil
	})
}

// buildStore creates the configured persistence backend. PostgresDSN
// wins when both backends are configured; with neither, sessions live
// in memory only.
func buildStore(ctx context.Context, cfg config.StorageConfig) (store.Store, func(), error) {
	switch {
	case cfg.PostgresDSN != "":
		pg, err := store.NewPostgresStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("session store ready", "backend", "postgres")
		return pg, func() { _ = pg.Close() }, nil

	case cfg.FilePath != "":
		fs, err := store.NewFileStore(cfg.FilePath)
		if err != nil {
			return nil, nil, err
		}
		slog.Info("session store ready", "backend", "file", "dir", cfg.FilePath)
		return fs, func() { _ = fs.Close() }, nil

	default:
		slog.Warn("no session store configured — sessions are lost on shutdown")
		return nil, nil, nil
	}
}

// buildDictionary loads the pronunciation lexicon when one is
// configured. Returns nil when lookups are disabled.
func buildDictionary(cfg config.DictionaryConfig) (*dictionary.Dictionary, error) {
	if cfg.LexiconPath == "" {
		slog.Warn("no pronunciation lexicon configured — expected phonetics must be entered manually")
		return nil, nil
	}

	var opts []dictionary.Option
	if cfg.SuggestThreshold > 0 {
		opts = append(opts, dictionary.WithSuggestThreshold(cfg.SuggestThreshold))
	}
	dict, err := dictionary.Load(cfg.LexiconPath, opts...)
	if err != nil {
		return nil, err
	}
	slog.Info("pronunciation lexicon loaded", "path", cfg.LexiconPath, "entries", dict.Len())
	return dict, nil
}
