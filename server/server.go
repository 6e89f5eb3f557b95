package server

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/bcdannyboy/bsmrisk/analysis"
	"github.com/bcdannyboy/bsmrisk/logger"
	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	analyzer *analysis.Analyzer
	metrics  *Metrics
	registry *prometheus.Registry
	router   *mux.Router
	log      *zap.Logger
}

// New wires the HTTP API around a. Each Server owns its metrics registry.
func New(a *analysis.Analyzer, log *zap.Logger) (*Server, error) {
	s := &Server{
		analyzer: a,
		metrics:  NewMetrics(),
		registry: prometheus.NewRegistry(),
		router:   mux.NewRouter(),
		log:      logger.OrNop(log),
	}
	if err := s.metrics.Register(s.registry); err != nil {
		return nil, errors.Wrap(err, "registering metrics")
	}

	r := s.router
	r.Use(s.instrument)
	r.HandleFunc("/health", s.handleHealth).Methods("GET")
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})).Methods("GET")

	// API routes live on the root router so a wrong method answers 405.
	r.HandleFunc("/api/price", s.handlePrice).Methods("POST")
	r.HandleFunc("/api/greeks", s.handleGreeks).Methods("POST")
	r.HandleFunc("/api/classify", s.handleClassify).Methods("POST")
	r.HandleFunc("/api/scenario", s.handleScenario).Methods("POST")
	r.HandleFunc("/api/surface", s.handleSurface).Methods("POST")
	r.HandleFunc("/api/analyze", s.handleAnalyze).Methods("POST")
	return s, nil
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.log.Info("http server shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if cur := mux.CurrentRoute(r); cur != nil {
			if tmpl, err := cur.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		elapsed := time.Since(start)

		s.metrics.HTTPRequestsTotal.WithLabelValues(route, strconv.Itoa(rec.status)).Inc()
		s.metrics.HTTPRequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		s.log.Debug("http request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed))
	})
}
