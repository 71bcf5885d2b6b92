// Package prometheusmetrics provides a prometheus metrics endpoint on
// its own listener, plus request middleware for the main handler.
package prometheusmetrics

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// PrometheusMetrics serves the metrics endpoint and observes
// request durations and counts of the wrapped handler
type PrometheusMetrics struct {
	http.Server

	Host   string
	Port   int
	Path   string
	Logger *zap.Logger

	registry        *prometheus.Registry
	requestDuration *prometheus.HistogramVec
	requestsTotal   *prometheus.CounterVec
}

func New(options ...Option) *PrometheusMetrics {
	s := &PrometheusMetrics{
		Port:   5000,
		Path:   "/",
		Logger: zap.NewNop(),

		registry: prometheus.NewRegistry(),
	}
	s.requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "satine_request_duration_seconds",
			Help:    "A histogram of latencies for requests",
			Buckets: []float64{.0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "status"},
	)
	s.requestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "satine_requests_total",
			Help: "Total number of requests",
		},
		[]string{"method", "status"},
	)
	s.registry.MustRegister(s.requestDuration, s.requestsTotal)

	for _, option := range options {
		option(s)
	}
	if s.Addr == "" {
		s.Addr = s.Host + ":" + strconv.Itoa(s.Port)
	}

	mux := http.NewServeMux()
	mux.Handle(s.Path, promhttp.HandlerFor(
		s.registry, promhttp.HandlerOpts{}))
	if s.Path != "/" {
		mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, s.Path, http.StatusPermanentRedirect)
		})
	}
	s.Handler = mux
	return s
}

// Handle implements server.Metrics middleware
func (s *PrometheusMetrics) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		status := strconv.Itoa(sw.status)
		s.requestDuration.WithLabelValues(r.Method, status).
			Observe(time.Since(start).Seconds())
		s.requestsTotal.WithLabelValues(r.Method, status).Inc()
	})
}

// Startup implements server.Metrics, serving metrics on its own listener
func (s *PrometheusMetrics) Startup(_ context.Context) error {
	go func() {
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("prometheus listen", zap.Error(err))
		}
	}()
	s.Logger.Info("prometheus listen",
		zap.String("addr", s.Addr), zap.String("path", s.Path))
	return nil
}

// Shutdown implements server.Metrics
func (s *PrometheusMetrics) Shutdown(ctx context.Context) error {
	return s.Server.Shutdown(ctx)
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

type Option func(s *PrometheusMetrics)

// WithAddr sets the full bind address, taking precedence
// over WithHost and WithPort
func WithAddr(addr string) Option {
	return func(s *PrometheusMetrics) {
		if addr != "" {
			s.Addr = addr
		}
	}
}

func WithHost(host string) Option {
	return func(s *PrometheusMetrics) {
		s.Host = host
	}
}

func WithPort(port int) Option {
	return func(s *PrometheusMetrics) {
		s.Port = port
	}
}

func WithPath(path string) Option {
	return func(s *PrometheusMetrics) {
		if path != "" {
			s.Path = path
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *PrometheusMetrics) {
		if logger != nil {
			s.Logger = logger
		}
	}
}
