package server

import (
	"time"

	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Option func(s *Server)

func WithAddress(address string) Option {
	return func(s *Server) {
		s.Address = address
	}
}

func WithPort(port int) Option {
	return func(s *Server) {
		s.Port = port
	}
}

// WithAddr sets the full listen address, taking precedence
// over WithAddress and WithPort
func WithAddr(addr string) Option {
	return func(s *Server) {
		if addr != "" {
			s.Addr = addr
		}
	}
}

func WithPathPrefix(prefix string) Option {
	return func(s *Server) {
		s.PathPrefix = prefix
	}
}

func WithCertFile(certFile string) Option {
	return func(s *Server) {
		s.CertFile = certFile
	}
}

func WithKeyFile(keyFile string) Option {
	return func(s *Server) {
		s.KeyFile = keyFile
	}
}

func WithCORS(enabled bool) Option {
	return func(s *Server) {
		if enabled {
			s.Handler = cors.Default().Handler(s.Handler)
		}
	}
}

func WithMiddleware(middleware Middleware) Option {
	return func(s *Server) {
		if middleware != nil {
			s.Handler = middleware(s.Handler)
		}
	}
}

func WithAccessLog(enabled bool) Option {
	return func(s *Server) {
		s.AccessLog = enabled
	}
}

func WithStripQueryString(enabled bool) Option {
	return func(s *Server) {
		s.StripQueryString = enabled
	}
}

func WithMetrics(metrics Metrics) Option {
	return func(s *Server) {
		s.Metrics = metrics
	}
}

func WithSentry(dsn string) Option {
	return func(s *Server) {
		s.SentryDsn = dsn
	}
}

func WithStartupTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.StartupTimeout = timeout
		}
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(s *Server) {
		if timeout > 0 {
			s.ShutdownTimeout = timeout
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.Logger = logger
		}
	}
}

func WithDebug(debug bool) Option {
	return func(s *Server) {
		s.Debug = debug
	}
}
