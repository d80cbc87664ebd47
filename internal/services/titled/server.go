// Package titled hosts the browser-facing page title service.
package titled

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/pagetitle/internal/platform/timeouts"
	"github.com/louisbranch/pagetitle/internal/services/titled/platform/httpx"
	"github.com/louisbranch/pagetitle/internal/services/titled/platform/observability"
	"github.com/louisbranch/pagetitle/internal/services/titled/session"
	"github.com/louisbranch/pagetitle/internal/services/titled/sitemap"
)

// Config defines startup inputs for the titled service.
type Config struct {
	HTTPAddr string
	// SiteMap is the view tree served; nil serves the embedded default.
	SiteMap *sitemap.Map
	// Sessions holds per-browser title state; nil creates an in-memory store.
	Sessions    *session.Store
	SessionIdle time.Duration
	// Logger receives title diagnostics such as dropped malformed parts.
	Logger *slog.Logger
}

// Server hosts the titled HTTP surface and lifecycle.
type Server struct {
	httpAddr   string
	httpServer *http.Server
	sessions   *session.Store
}

func (cfg Config) withDefaults() (Config, error) {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.SiteMap == nil {
		siteMap, err := sitemap.Default()
		if err != nil {
			return Config{}, fmt.Errorf("load default site map: %w", err)
		}
		cfg.SiteMap = siteMap
	}
	if cfg.SessionIdle <= 0 {
		cfg.SessionIdle = timeouts.SessionIdle
	}
	if cfg.Sessions == nil {
		cfg.Sessions = session.NewStore(cfg.SessionIdle, cfg.Logger)
	}
	return cfg, nil
}

// NewHandler builds the root handler with the shared middleware chain.
func NewHandler(cfg Config) (http.Handler, error) {
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}
	return newHandler(cfg), nil
}

func newHandler(cfg Config) http.Handler {
	h := &handler{
		siteMap:  cfg.SiteMap,
		sessions: cfg.Sessions,
		logger:   cfg.Logger,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", h.health)
	mux.HandleFunc("POST /api/cascade", h.cascade)
	mux.Handle("GET /api/cascade", httpx.MethodNotAllowed(http.MethodPost))
	mux.HandleFunc("GET /api/title", h.currentTitle)
	mux.HandleFunc("DELETE /api/session", h.clearSession)
	mux.HandleFunc("GET /", h.page)
	return httpx.Chain(mux,
		httpx.RecoverPanic(),
		httpx.RequestID(),
		observability.Tracing(),
		observability.RequestLogger(log.Default()),
	)
}

// NewServer validates config and constructs a titled server.
func NewServer(_ context.Context, cfg Config) (*Server, error) {
	httpAddr := strings.TrimSpace(cfg.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, fmt.Errorf("compose titled handler: %w", err)
	}
	return &Server{
		httpAddr: httpAddr,
		sessions: cfg.Sessions,
		httpServer: &http.Server{
			Addr:              httpAddr,
			Handler:           newHandler(cfg),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

// ListenAndServe serves HTTP traffic and sweeps idle sessions until context
// cancellation or server stop.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("titled server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	sweepCtx, stopSweep := context.WithCancel(ctx)
	defer stopSweep()
	go s.sessions.Run(sweepCtx, timeouts.SessionSweep)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("titled listening on %s", s.httpAddr)
		serveErr <- s.httpServer.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown titled http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve titled http: %w", err)
	}
}

// Close closes open server resources.
func (s *Server) Close() {
	if s == nil || s.httpServer == nil {
		return
	}
	_ = s.httpServer.Close()
}
