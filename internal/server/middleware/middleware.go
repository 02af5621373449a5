// Package middleware wraps the HTTP API with request logging and panic
// recovery.
package middleware

import (
	"log/slog"
	"net/http"
	"time"

	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
	"github.com/SandraS2611/agrimensores-sde/internal/logfields"
)

// quietPaths are probed constantly by monitors; logging every hit buries
// the requests that matter.
var quietPaths = map[string]bool{
	"/healthz": true,
	"/metrics": true,
}

// Chain applies panic recovery innermost and request logging outermost.
func Chain(logger *slog.Logger, adapter *derrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return Logging(logger)(Recovery(logger, adapter)(next))
	}
}

// Logging logs one line per request with method, path, status, size and
// duration. Monitoring endpoints are logged at debug only.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			level := slog.LevelInfo
			if quietPaths[r.URL.Path] {
				level = slog.LevelDebug
			}
			logger.Log(r.Context(), level, "HTTP request",
				logfields.Method(r.Method),
				logfields.Path(r.URL.Path),
				logfields.Status(rec.status),
				slog.Int64("bytes", rec.written),
				logfields.DurationMS(float64(time.Since(start).Microseconds())/1000),
				logfields.RemoteAddr(r.RemoteAddr))
		})
	}
}

// Recovery turns handler panics into classified 500 responses instead of
// dropped connections.
func Recovery(logger *slog.Logger, adapter *derrors.HTTPErrorAdapter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if v := recover(); v != nil {
					logger.Error("HTTP handler panic",
						slog.Any("panic", v),
						logfields.Method(r.Method),
						logfields.Path(r.URL.Path))

					adapter.WriteErrorResponse(w, r, derrors.InternalError("internal server error").
						WithContext("path", r.URL.Path).
						WithContext("method", r.Method).
						Build())
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// statusRecorder captures the status code and body size for the log line.
type statusRecorder struct {
	http.ResponseWriter
	status  int
	written int64
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(p []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(p)
	sr.written += int64(n)
	return n, err
}
