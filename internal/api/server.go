// Package api serves read-only kinship queries over one loaded tree as a
// JSON REST API plus a websocket query channel.
package api

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"time"

	"github.com/FocuswithJustin/pedigree/core/cas"
	"github.com/FocuswithJustin/pedigree/core/errors"
	"github.com/FocuswithJustin/pedigree/core/gedcom"
	"github.com/FocuswithJustin/pedigree/internal/cache"
	"github.com/FocuswithJustin/pedigree/internal/logging"
)

// Server answers queries against an immutable tree. Handlers never lock the
// graph; only the result memo and the websocket hub carry their own locks.
type Server struct {
	cfg     Config
	tree    *gedcom.Tree
	source  string
	hash    cas.HashResult
	memo    *cache.TTLCache[string, any]
	hub     *Hub
	started time.Time
}

// NewServer wraps a built tree. source and hash describe the input file.
func NewServer(tree *gedcom.Tree, source string, hash cas.HashResult, cfg Config) *Server {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = DefaultConfig().CacheTTL
	}
	if cfg.Version == "" {
		cfg.Version = DefaultConfig().Version
	}
	return &Server{
		cfg:     cfg,
		tree:    tree,
		source:  source,
		hash:    hash,
		memo:    cache.NewBounded[string, any](cfg.CacheTTL, cfg.CacheSize),
		hub:     NewHub(),
		started: time.Now(),
	}
}

// Handler returns the routed handler with the middleware chain applied.
func (s *Server) Handler() http.Handler {
	var handler http.Handler = s.routes()

	if s.cfg.RateLimitRequests > 0 {
		rlc := RateLimiterConfig{
			RequestsPerMinute: s.cfg.RateLimitRequests,
			BurstSize:         s.cfg.RateLimitBurst,
		}
		if rlc.BurstSize == 0 {
			rlc.BurstSize = 10
		}
		handler = NewRateLimiter(rlc).Middleware(handler)
		logging.Info("rate limiting enabled",
			"requests_per_minute", rlc.RequestsPerMinute,
			"burst_size", rlc.BurstSize)
	}

	handler = corsMiddleware(s.cfg.AllowedOrigins, handler)
	return logging.CombinedMiddleware(handler)
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /individuals", s.handleIndividuals)
	mux.HandleFunc("GET /individuals/{xref}", s.handleIndividual)
	mux.HandleFunc("GET /individuals/{xref}/ancestors", s.handleAncestors)
	mux.HandleFunc("GET /kinship/common", s.handleKinship(OpCommon))
	mux.HandleFunc("GET /kinship/path", s.handleKinship(OpPath))
	mux.HandleFunc("GET /kinship/distance", s.handleKinship(OpDistance))
	mux.HandleFunc("GET /kinship/relative", s.handleKinship(OpRelative))
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "Endpoint not found")
	})

	return mux
}

// ListenAndServe runs the server until ctx is canceled, then shuts down
// gracefully and disconnects websocket clients.
func (s *Server) ListenAndServe(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go s.hub.Run(hubCtx)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", s.cfg.Port),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logging.ServerStartup("kinship_api", "http", s.cfg.Port,
		"websocket_protocol", "ws",
		"source", s.source,
		"individuals", len(s.tree.Individuals()))

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logging.Info("server shutting down", "reason", context.Cause(ctx))
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// corsMiddleware allows every origin when origins is empty, otherwise only
// the listed ones.
func corsMiddleware(origins []string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		switch {
		case len(origins) == 0:
			w.Header().Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Add("Vary", "Origin")
		}
		w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
