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

	"github.com/Jercik/i2pd-webconsole-exporter/internal/api"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/config"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/exporter"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/exposition"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/extract"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/scraper"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/telemetry"
	"github.com/Jercik/i2pd-webconsole-exporter/internal/version"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "", "path to YAML config file; empty uses defaults and environment only")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Version)
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	cfg.Version = version.Version

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	slog.Info("i2pd-webconsole-exporter starting",
		"version", cfg.Version,
		"config", *configPath,
		"listen_address", cfg.ListenAddress,
		"metrics_path", cfg.MetricsPath,
		"upstream", cfg.Upstream.Redacted(),
		"timeout", cfg.Upstream.Timeout,
	)

	rules := extract.DefaultRules()
	if err := extract.Validate(rules); err != nil {
		slog.Error("invalid extraction rules", "err", err)
		os.Exit(1)
	}

	fetcher, err := scraper.New(cfg.Upstream)
	if err != nil {
		slog.Error("failed to build console client", "err", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Configuration is fixed for the process lifetime; edits are only reported.
	if *configPath != "" {
		go func() {
			if err := config.Watch(ctx, *configPath, func(updated *config.Config) {
				if changed := config.Changes(cfg, updated); len(changed) > 0 {
					slog.Warn("config file changed; restart to apply", "keys", changed)
				}
			}); err != nil {
				slog.Error("config watcher stopped", "err", err)
			}
		}()
	}

	pipeline := exporter.New(fetcher, rules, exposition.Identity{Version: cfg.Version})
	tm := telemetry.New()

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddress,
		Handler:           api.New(pipeline, cfg, tm),
		ReadHeaderTimeout: 10 * time.Second,
	}
	srvErr := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "addr", cfg.ListenAddress)
		srvErr <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-srvErr:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server stopped", "err", err)
			cancel()
			os.Exit(1)
		}
	}
	slog.Info("i2pd-webconsole-exporter shutting down")

	shutdownCtx, done := context.WithTimeout(context.Background(), shutdownTimeout)
	defer done()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown", "err", err)
	}
}
