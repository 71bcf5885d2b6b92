package server

import (
	"encoding/json"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/pixelop/satine"
	"go.uber.org/zap"
)

// pathHandler routes exact paths of a method to handlers, else pass through
func pathHandler(method string, handleFuncs map[string]http.HandlerFunc) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			handle, ok := handleFuncs[r.URL.Path]
			if !ok {
				next.ServeHTTP(w, r)
				return
			}
			if r.Method != method {
				w.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			handle(w, r)
		})
	}
}

func handleOk(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	resJSON(w, getHealthStats())
}

// isNoopRequest requests that skip access log and metrics observation
func isNoopRequest(r *http.Request) bool {
	return r.Method == http.MethodGet &&
		(r.URL.Path == "/favicon.ico" || r.URL.Path == "/healthcheck")
}

func (s *Server) panicHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rvr := recover(); rvr != nil {
				s.Logger.Error("panic",
					zap.Any("error", rvr),
					zap.String("stack", string(debug.Stack())),
					zap.String("path", r.URL.RequestURI()),
					zap.String("ip", RealIP(r)))
				if err, ok := rvr.(error); ok {
					writeJSONError(w, satine.WrapError(err))
				} else {
					writeJSONError(w, satine.NewError(
						toString(rvr), http.StatusInternalServerError))
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) accessLogHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isNoopRequest(r) {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		s.Logger.Info("access",
			zap.String("method", r.Method),
			zap.String("path", r.URL.RequestURI()),
			zap.String("ip", RealIP(r)),
			zap.Int("status", sw.status),
			zap.Duration("took", time.Since(start)))
	})
}

func stripQueryStringHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.RawQuery != "" {
			u := *r.URL
			u.RawQuery = ""
			http.Redirect(w, r, u.String(), http.StatusTemporaryRedirect)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

func resJSON(w http.ResponseWriter, v any) {
	buf, _ := json.Marshal(v)
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(buf)
}

func writeJSONError(w http.ResponseWriter, err satine.Error) {
	buf, _ := json.Marshal(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Code)
	_, _ = w.Write(buf)
}

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	buf, _ := json.Marshal(v)
	return string(buf)
}
