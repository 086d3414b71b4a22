package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kbukum/voicescreen/logger"
)

// RequestLogger logs every request with method, path, status and duration.
// Probe endpoints are skipped.
func RequestLogger(log *logger.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if isProbeEndpoint(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			rec := newRecorder(w)
			next.ServeHTTP(rec, r)
			duration := time.Since(start)

			fields := logger.Fields(
				"method", r.Method,
				"path", r.URL.Path,
				logger.FieldStatus, rec.status,
				logger.FieldDuration, duration.Milliseconds(),
			)
			if r.ContentLength > 0 {
				fields["bytes_in"] = r.ContentLength
			}
			fields["bytes_out"] = rec.written
			if duration > 5*time.Second {
				fields["slow"] = true
			}
			logByStatus(log.WithContext(r.Context()), fields, rec.status)
		})
	}
}

func isProbeEndpoint(path string) bool {
	path = strings.TrimPrefix(path, "/api")
	switch path {
	case "/health", "/live", "/ready", "/version":
		return true
	}
	return false
}

// logByStatus logs request fields at a level derived from the status code.
func logByStatus(log *logger.Logger, fields map[string]interface{}, status int) {
	switch {
	case status >= 500:
		log.Error("request completed", fields)
	case status >= 400:
		log.Warn("request completed", fields)
	default:
		log.Info("request completed", fields)
	}
}
