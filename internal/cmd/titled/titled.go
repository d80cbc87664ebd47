// Package titled parses titled command flags and composes the HTTP service.
package titled

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	entrypoint "github.com/louisbranch/pagetitle/internal/platform/cmd"
	server "github.com/louisbranch/pagetitle/internal/services/titled"
	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
)

// Config holds titled command configuration.
type Config struct {
	HTTPAddr    string        `env:"HTTP_ADDR"    envDefault:"localhost:8087"`
	SiteMapPath string        `env:"SITEMAP_PATH"`
	SessionIdle time.Duration `env:"SESSION_IDLE" envDefault:"30m"`
	LogLevel    string        `env:"LOG_LEVEL"    envDefault:"info"`
}

// ParseConfig parses environment and flags into a Config. Flags are bound
// before the environment is read, so their help text shows no env defaults.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	fs.StringVar(&cfg.HTTPAddr, "http-addr", "", "titled HTTP listen address (default from TITLED_HTTP_ADDR)")
	fs.StringVar(&cfg.SiteMapPath, "sitemap", "", "path to a YAML site map; empty serves the embedded default")
	fs.DurationVar(&cfg.SessionIdle, "session-idle", 0, "idle time before a browser's title state is discarded")
	fs.StringVar(&cfg.LogLevel, "log-level", "", "title diagnostics level (debug, info, warn, error)")
	if err := entrypoint.ParseConfigFromArgs(&cfg, fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// NewLogger builds the diagnostics logger for title state.
func NewLogger(level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return nil, fmt.Errorf("parse log level: %w", err)
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})), nil
}

// LoadSiteMap reads the configured site map, falling back to the embedded one.
func LoadSiteMap(path string) (*sitemap.Map, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return sitemap.Default()
	}
	return sitemap.LoadFile(path)
}

// Run builds the titled server and serves until ctx is done.
func Run(ctx context.Context, cfg Config) error {
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceTitled, func(ctx context.Context) error {
		logger, err := NewLogger(cfg.LogLevel)
		if err != nil {
			return err
		}
		siteMap, err := LoadSiteMap(cfg.SiteMapPath)
		if err != nil {
			return fmt.Errorf("load site map: %w", err)
		}
		srv, err := server.NewServer(ctx, server.Config{
			HTTPAddr:    cfg.HTTPAddr,
			SiteMap:     siteMap,
			SessionIdle: cfg.SessionIdle,
			Logger:      logger,
		})
		if err != nil {
			return fmt.Errorf("init titled server: %w", err)
		}
		defer srv.Close()
		if err := srv.ListenAndServe(ctx); err != nil {
			return fmt.Errorf("serve titled: %w", err)
		}
		return nil
	})
}
