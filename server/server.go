// Package server provides the HTTP server wrapping the satine handler
// with graceful shutdown, access log, CORS and metrics wiring.
package server

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"reflect"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/pixelop/satine"
	"go.uber.org/zap"
)

// Middleware wraps http.Handler with middleware http.Handler
type Middleware func(http.Handler) http.Handler

// Metrics represents pluggable metrics that observes the handler
// and runs its own listener
type Metrics interface {
	Startup(ctx context.Context) error
	Shutdown(ctx context.Context) error
	Handle(next http.Handler) http.Handler
}

// Server wraps the satine app with an HTTP server
type Server struct {
	http.Server
	App              *satine.Satine
	Address          string
	Port             int
	CertFile         string
	KeyFile          string
	PathPrefix       string
	SentryDsn        string
	StartupTimeout   time.Duration
	ShutdownTimeout  time.Duration
	StripQueryString bool
	AccessLog        bool
	Metrics          Metrics
	Logger           *zap.Logger
	Debug            bool
}

// New creates Server from the satine app and options
func New(app *satine.Satine, options ...Option) *Server {
	s := &Server{}
	s.App = app
	s.Port = 8000
	s.ReadHeaderTimeout = time.Second * 30
	s.MaxHeaderBytes = 1 << 20
	s.StartupTimeout = time.Second * 10
	s.ShutdownTimeout = time.Second * 10
	s.Logger = zap.NewNop()

	s.Handler = pathHandler(http.MethodGet, map[string]http.HandlerFunc{
		"/favicon.ico": handleOk,
		"/healthcheck": handleHealth,
	})(s.App)

	for _, option := range options {
		option(s)
	}
	if s.Addr == "" {
		s.Addr = s.Address + ":" + strconv.Itoa(s.Port)
	}
	if s.SentryDsn != "" {
		s.Logger = loggerWithSentry(s.Logger, s.SentryDsn)
	}
	if s.PathPrefix != "" {
		s.Handler = http.StripPrefix(s.PathPrefix, s.Handler)
	}
	if s.StripQueryString {
		s.Handler = stripQueryStringHandler(s.Handler)
	}
	if !isNil(s.Metrics) {
		s.Handler = s.Metrics.Handle(s.Handler)
	}
	if s.AccessLog {
		s.Handler = s.accessLogHandler(s.Handler)
	}
	s.Handler = s.panicHandler(s.Handler)
	s.ErrorLog = log.New(&serverErrorLogWriter{Logger: s.Logger}, "", 0)
	return s
}

// Run server that terminates on SIGINT and SIGTERM signals
func (s *Server) Run() {
	s.RunContext(context.Background())
}

// RunContext run server that terminates on context cancel
func (s *Server) RunContext(ctx context.Context) {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	s.startup(ctx)

	go func() {
		if err := s.listenAndServe(); err != nil && err != http.ErrServerClosed {
			s.Logger.Fatal("listen", zap.Error(err))
		}
	}()
	s.Logger.Info("listen", zap.String("addr", s.Addr))

	<-ctx.Done()
	s.shutdown(context.Background())
	s.Logger.Info("exit")
}

func (s *Server) startup(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.StartupTimeout)
	defer cancel()
	if err := s.App.Startup(ctx); err != nil {
		s.Logger.Fatal("app startup", zap.Error(err))
	}
	if !isNil(s.Metrics) {
		if err := s.Metrics.Startup(ctx); err != nil {
			s.Logger.Fatal("metrics startup", zap.Error(err))
		}
	}
}

func (s *Server) shutdown(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, s.ShutdownTimeout)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		s.Logger.Error("server shutdown", zap.Error(err))
	}
	if err := s.App.Shutdown(ctx); err != nil {
		s.Logger.Error("app shutdown", zap.Error(err))
	}
	if !isNil(s.Metrics) {
		if err := s.Metrics.Shutdown(ctx); err != nil {
			s.Logger.Error("metrics shutdown", zap.Error(err))
		}
	}
	if s.SentryDsn != "" {
		// flush buffered sentry events before exit
		sentry.Flush(time.Second * 2)
	}
}

func (s *Server) listenAndServe() error {
	if s.CertFile != "" && s.KeyFile != "" {
		return s.ListenAndServeTLS(s.CertFile, s.KeyFile)
	}
	return s.ListenAndServe()
}

type serverErrorLogWriter struct {
	Logger *zap.Logger
}

func (s *serverErrorLogWriter) Write(p []byte) (int, error) {
	msg := strings.TrimSuffix(string(p), "\n")
	if strings.HasPrefix(msg, "http: TLS handshake error") ||
		strings.Contains(msg, "URL query contains semicolon") {
		s.Logger.Debug("server", zap.String("log", msg))
	} else {
		s.Logger.Warn("server", zap.String("log", msg))
	}
	return len(p), nil
}

// isNil checks nil interface or nil pointer behind interface
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}
