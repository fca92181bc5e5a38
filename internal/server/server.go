package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"produto-api/internal/config"
	"produto-api/internal/database"
	"produto-api/internal/logging/shipper"
	"produto-api/internal/metrics"
	"produto-api/internal/produto"
	"produto-api/internal/server/ratelimit"
)

const Version = "1.0.0"

// Deps carries everything the HTTP layer needs; all of it is constructed and
// owned by main.
type Deps struct {
	Config         config.AppConfig
	Logger         *zap.Logger
	Metrics        *metrics.Metrics
	DB             *database.Database
	Produto        *produto.Handler
	Shipper        *shipper.Shipper
	RateLimitStore *ratelimit.Store
	RateLimitStats ratelimit.StatsRecorder
}

type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
	deps       Deps
}

func New(deps Deps) *Server {
	s := &Server{logger: deps.Logger, deps: deps}

	r := mux.NewRouter()
	r.Use(RequestLogging(deps.Logger))
	r.Use(HTTPMetrics(deps.Metrics))

	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/ready", s.handleReady).Methods(http.MethodGet)
	r.Handle("/metrics", deps.Metrics.Handler()).Methods(http.MethodGet)
	deps.Produto.Register(r)

	var handler http.Handler = r

	handler = cors.New(cors.Options{
		AllowedOrigins:   deps.Config.CORS.AllowOrigins,
		AllowCredentials: deps.Config.CORS.AllowCredentials,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders: []string{
			"Content-Type", "Authorization", "Accept", "Origin",
			"X-Requested-With", "X-Request-ID",
		},
	}).Handler(handler)

	if deps.Config.RateLimit.Enabled {
		handler = ratelimit.Middleware(ratelimit.Options{
			Store:  deps.RateLimitStore,
			Stats:  deps.RateLimitStats,
			Logger: deps.Logger,
		})(handler)
	}

	s.httpServer = &http.Server{
		Addr:              deps.Config.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       90 * time.Second,
	}

	return s
}

func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "API Produto",
		"version": Version,
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":      "healthy",
		"service":     "produto-api",
		"environment": s.deps.Config.Environment,
		"version":     Version,
	})
}

// handleReady checks the critical dependencies: the database must answer a
// ping; the shipper state is informational only.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]interface{}{}
	status := "ready"
	code := http.StatusOK

	dbOK := true
	if err := s.deps.DB.Ping(ctx); err != nil {
		s.logger.Error("database readiness check failed", zap.Error(err))
		dbOK = false
		status = "not_ready"
		code = http.StatusServiceUnavailable
	}
	checks["database"] = dbOK
	if pool := s.deps.DB.PoolStatus(); pool != nil {
		checks["database_pool"] = pool
		s.deps.Metrics.SetDBConnectionsActive(pool["open"])
	}
	s.deps.Metrics.SetServiceHealth("produto-api", "readiness", dbOK)
	s.deps.Metrics.SetServiceDependency("produto-api", "postgresql", "database", dbOK)

	if s.deps.Shipper != nil {
		stats := s.deps.Shipper.Stats()
		checks["loki_shipper"] = map[string]interface{}{
			"state":       stats.State,
			"sent":        stats.Sent,
			"failed":      stats.Failed,
			"dropped":     stats.Dropped,
			"queue_depth": stats.QueueDepth,
		}
	}

	writeJSON(w, code, map[string]interface{}{
		"status":      status,
		"checks":      checks,
		"service":     "produto-api",
		"environment": s.deps.Config.Environment,
		"version":     Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
