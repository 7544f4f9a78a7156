// Package api exposes the analysis service over HTTP: JSON endpoints for
// daily and per-player analysis, provider lookups, Prometheus metrics and
// a websocket result stream.
package api

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/davorpavlov/props-engine/internal/analysis"
	"github.com/davorpavlov/props-engine/internal/metrics"
	"github.com/davorpavlov/props-engine/internal/nbastats"
)

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:         "0.0.0.0",
		Port:         8080,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute, // daily runs are slow behind a cold cache
		IdleTimeout:  60 * time.Second,
	}
}

// Server is the HTTP API server
type Server struct {
	router   *mux.Router
	server   *http.Server
	service  *analysis.Service
	provider nbastats.Provider
	hub      *Hub
	config   ServerConfig
	logger   *logrus.Logger
}

// NewServer creates the API server and wires its routes
func NewServer(cfg ServerConfig, service *analysis.Service, provider nbastats.Provider, hub *Hub, logger *logrus.Logger) *Server {
	if logger == nil {
		logger = logrus.New()
	}

	s := &Server{
		router:   mux.NewRouter(),
		service:  service,
		provider: provider,
		hub:      hub,
		config:   cfg,
		logger:   logger,
	}
	s.setupRoutes()

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      s.router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
	return s
}

// Router exposes the handler for tests and embedding
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.Use(s.requestIDMiddleware)
	s.router.Use(s.loggingMiddleware)

	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	s.router.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := s.router.PathPrefix("/api").Subrouter()
	api.HandleFunc("/daily-analysis", s.handleDailyAnalysis).Methods(http.MethodGet)
	api.HandleFunc("/player-analysis", s.handlePlayerAnalysis).Methods(http.MethodPost)
	api.HandleFunc("/todays-games", s.handleTodaysGames).Methods(http.MethodGet)
	api.HandleFunc("/player-search", s.handlePlayerSearch).Methods(http.MethodGet)
	api.HandleFunc("/team-search", s.handleTeamSearch).Methods(http.MethodGet)

	if s.hub != nil {
		s.router.HandleFunc("/ws", s.hub.ServeWS)
	}

	s.router.NotFoundHandler = http.HandlerFunc(s.handleNotFound)
}

type contextKey string

const requestIDKey contextKey = "request_id"

// requestIDMiddleware tags each request with a short id
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// loggingMiddleware logs every request with status and duration
func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapper := &responseWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapper, r)

		s.logger.WithFields(logrus.Fields{
			"request_id": r.Context().Value(requestIDKey),
			"method":     r.Method,
			"path":       r.URL.Path,
			"status":     wrapper.statusCode,
			"duration":   time.Since(start),
			"remote":     r.RemoteAddr,
		}).Info("Request handled")
	})
}

// Start blocks serving HTTP until the server is shut down
func (s *Server) Start() error {
	s.logger.WithField("addr", s.server.Addr).Info("Starting API server")
	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully stops the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down API server")
	return s.server.Shutdown(ctx)
}

// responseWrapper captures HTTP status codes for logging
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// Hijack delegates to the underlying writer so the websocket upgrade
// works through the logging middleware.
func (rw *responseWrapper) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := rw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return h.Hijack()
}
