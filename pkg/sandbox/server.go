// Package sandbox serves an in-memory fake of the data API. It generates
// synthetic accounts and transactions per bearer token and evaluates the
// same relation filters the client renders.
package sandbox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"devapi/pkg/logging"
	"devapi/pkg/metrics"
)

// ServerConfig holds configuration for the sandbox server.
type ServerConfig struct {
	// Address to listen on (e.g., ":8080")
	Address string

	// Prefix every API route is mounted under
	Prefix string

	// Token, when set, is the only bearer token accepted.
	// Otherwise any non-empty token is accepted and gets its own ledger.
	Token string

	// ReadTimeout for HTTP requests
	ReadTimeout time.Duration

	// WriteTimeout for HTTP responses
	WriteTimeout time.Duration

	// Registry enables per-route request metrics and serves them at /metrics
	Registry *prometheus.Registry

	// Seed for the record generator; zero picks a random seed
	Seed uint64
}

// DefaultServerConfig returns a default configuration.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Address:      ":8080",
		Prefix:       "/api/data",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// Server is the fake data API.
type Server struct {
	config  ServerConfig
	store   *Store
	gen     *Generator
	metrics metrics.MetricsCollector
	logger  *logging.Logger
	router  *mux.Router
	server  *http.Server

	requests *prometheus.CounterVec
	latency  *prometheus.HistogramVec
}

// NewServer creates a sandbox server. A nil collector disables request
// reporting through the MetricsCollector.
func NewServer(config ServerConfig, collector metrics.MetricsCollector) (*Server, error) {
	if collector == nil {
		collector = metrics.NoOpCollector{}
	}
	config.Prefix = "/" + strings.Trim(config.Prefix, "/")

	s := &Server{
		config:  config,
		store:   NewStore(),
		gen:     NewGenerator(config.Seed),
		metrics: collector,
		logger:  logging.Global().Named("sandbox"),
	}

	r := mux.NewRouter().UseEncodedPath()
	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)

	if config.Registry != nil {
		if err := s.registerMetrics(config.Registry); err != nil {
			return nil, err
		}
		r.Handle("/metrics", promhttp.HandlerFor(config.Registry, promhttp.HandlerOpts{})).Methods(http.MethodGet)
	}

	api := r.NewRoute().Subrouter()
	if config.Prefix != "/" {
		api = r.PathPrefix(config.Prefix).Subrouter()
	}
	api.Use(s.instrument, s.authenticate)

	api.HandleFunc("/accounts/create", s.handleCreateAccounts).Methods(http.MethodPost)
	api.HandleFunc("/accounts", s.handleListAccounts).Methods(http.MethodGet)
	api.HandleFunc("/accounts/{accountId}", s.handleGetAccount).Methods(http.MethodGet)
	api.HandleFunc("/transactions/accounts/{accountId}/create", s.handleCreateTransactions).Methods(http.MethodPost)
	api.HandleFunc("/transactions/accounts/{accountId}/transactions", s.handleListTransactions).Methods(http.MethodGet)
	api.HandleFunc("/transactions/accounts/{accountId}/transactions/{transactionId}", s.handleGetTransaction).Methods(http.MethodGet)

	s.router = r
	s.server = &http.Server{
		Addr:         config.Address,
		Handler:      r,
		ReadTimeout:  config.ReadTimeout,
		WriteTimeout: config.WriteTimeout,
	}

	return s, nil
}

func (s *Server) registerMetrics(reg prometheus.Registerer) error {
	s.requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "devapi",
			Subsystem: "sandbox",
			Name:      "http_requests_total",
			Help:      "Total number of sandbox HTTP requests",
		},
		[]string{"method", "route", "status"},
	)
	s.latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "devapi",
			Subsystem: "sandbox",
			Name:      "http_request_duration_seconds",
			Help:      "Sandbox HTTP request latencies in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	for _, c := range []prometheus.Collector{s.requests, s.latency} {
		if err := reg.Register(c); err != nil {
			return fmt.Errorf("sandbox: register metrics: %w", err)
		}
	}
	return nil
}

// Handler returns the root HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Store returns the backing record store.
func (s *Server) Store() *Store {
	return s.store
}

// ListenAndServe blocks serving on the configured address until Stop.
// It returns nil after a graceful shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("sandbox listening",
		zap.String("address", s.config.Address),
		zap.String("prefix", s.config.Prefix),
	)
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(l net.Listener) error {
	if err := s.server.Serve(l); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().Unix(),
	})
}

type contextKey struct{}

// authenticate rejects requests without an acceptable bearer token and
// stores the caller's developer id in the request context.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" || (s.config.Token != "" && token != s.config.Token) {
			writeError(w, http.StatusUnauthorized, "missing or invalid bearer token")
			return
		}
		ctx := context.WithValue(r.Context(), contextKey{}, developerID(token))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func developerFrom(ctx context.Context) string {
	dev, _ := ctx.Value(contextKey{}).(string)
	return dev
}

// instrument records every API request with the collector and, when a
// registry is configured, the per-route prometheus metrics.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(sw, r)

		duration := time.Since(start)
		s.metrics.RecordRequest("sandbox", r.Method, sw.statusCode, duration)

		route := routeTemplate(r)
		if s.requests != nil {
			s.requests.WithLabelValues(r.Method, route, metrics.StatusClass(sw.statusCode)).Inc()
			s.latency.WithLabelValues(r.Method, route).Observe(duration.Seconds())
		}

		s.logger.Debug("request served",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.String("request_id", r.Header.Get("X-Request-ID")),
			zap.Int("status", sw.statusCode),
			zap.Duration("duration", duration),
		)
	})
}

func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if tpl, err := route.GetPathTemplate(); err == nil {
			return tpl
		}
	}
	return "unknown"
}

// statusResponseWriter captures the status code
type statusResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (w *statusResponseWriter) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}
