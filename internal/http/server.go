package http

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"ledger/internal/cache"
	"ledger/internal/engine"
	applog "ledger/internal/log"
	"ledger/internal/middleware/trace"
)

const defaultCacheSize = 256

type Server struct {
	engine     *engine.Engine
	httpServer *http.Server
	logger     *applog.Logger
	limiter    *rateLimiter

	// read-side caches; keys embed the ledger generation, so entries from
	// before a mutation are never served again
	queryCache  *cache.Cache[[]transactionDTO]
	seriesCache *cache.Cache[[]seriesBucketDTO]
}

func NewServer(addr string, eng *engine.Engine, cacheTTL time.Duration, logger *applog.Logger) *Server {
	s := &Server{
		engine:      eng,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		limiter:     newRateLimiter(),
		queryCache:  cache.New[[]transactionDTO](defaultCacheSize, cacheTTL),
		seriesCache: cache.New[[]seriesBucketDTO](defaultCacheSize, cacheTTL),
	}
	s.queryCache.StartJanitor(time.Minute)
	s.seriesCache.StartJanitor(time.Minute)

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)
	mux.HandleFunc("/api/transactions", s.withRateLimit(s.handleTransactions))
	mux.HandleFunc("/api/transactions/", s.withRateLimit(s.handleTransactionByID))
	mux.HandleFunc("/api/budgets", s.withRateLimit(s.handleBudgets))
	mux.HandleFunc("/api/budgets/", s.withRateLimit(s.handleBudgetByName))
	mux.HandleFunc("/api/series", s.withRateLimit(s.handleSeries))
	mux.HandleFunc("/api/breakdown", s.withRateLimit(s.handleBreakdown))
	mux.HandleFunc("/api/alert", s.withRateLimit(s.handleAlert))

	traced := trace.NewMiddleware(extractClientIP, logger)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      traced.Middleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("HTTP server listening", applog.FieldPath, s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.stop()
	s.queryCache.Stop()
	s.seriesCache.Stop()
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) withRateLimit(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(extractClientIP(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next(w, r)
	}
}

func extractClientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if idx := strings.Index(forwarded, ","); idx != -1 {
			return strings.TrimSpace(forwarded[:idx])
		}
		return strings.TrimSpace(forwarded)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
