package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the file at path whenever it is written or replaced and
// passes the result to onChange. It runs until ctx is cancelled.
//
// The parent directory is watched rather than the file so that editors
// saving through a rename keep being observed. The running exporter never
// swaps its configuration; onChange reports what a restart would apply.
// A file that no longer loads is logged and onChange is skipped.
func Watch(ctx context.Context, path string, onChange func(*Config)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("config: watch: %w", err)
	}
	defer watcher.Close()

	target := filepath.Clean(path)
	if err := watcher.Add(filepath.Dir(target)); err != nil {
		return fmt.Errorf("config: watch %s: %w", path, err)
	}

	slog.Info("config: watching for changes", "path", path)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}

			cfg, err := Load(path)
			if err != nil {
				slog.Error("config: reload failed", "path", path, "err", err)
				continue
			}
			onChange(cfg)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

// Changes lists the settings that differ between a running and a reloaded
// configuration, by YAML key.
func Changes(running, reloaded *Config) []string {
	var out []string
	add := func(key string, differs bool) {
		if differs {
			out = append(out, key)
		}
	}
	add("listen_address", running.ListenAddress != reloaded.ListenAddress)
	add("metrics_path", running.MetricsPath != reloaded.MetricsPath)
	add("telemetry_path", running.TelemetryPath != reloaded.TelemetryPath)
	add("log_level", running.LogLevel != reloaded.LogLevel)
	add("upstream.url", running.Upstream.URL != reloaded.Upstream.URL)
	add("upstream.timeout", running.Upstream.Timeout != reloaded.Upstream.Timeout)
	add("upstream.auth", running.Upstream.Auth != reloaded.Upstream.Auth)
	add("upstream.tls", running.Upstream.TLS != reloaded.Upstream.TLS)
	return out
}
