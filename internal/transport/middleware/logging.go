package middleware

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/middleware"
)

// sensitiveHeaders are header names that must never reach the logs.
var sensitiveHeaders = []string{
	"authorization",
	"cookie",
	"x-api-key",
	"set-cookie",
}

// LoggingMiddleware logs one line per request and one per response. Request
// bodies are never logged: auth payloads carry credentials.
func LoggingMiddleware(logger *slog.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqID := middleware.GetReqID(r.Context())

			logger.Info("incoming request",
				"request_id", reqID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"remote_addr", r.RemoteAddr,
				"user_agent", r.UserAgent(),
				"headers", filterSensitiveHeaders(r.Header),
			)

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			level := slog.LevelInfo
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			logger.Log(r.Context(), level, "response",
				"request_id", reqID,
				"status_code", status,
				"duration_ms", time.Since(start).Milliseconds(),
				"response_size", ww.BytesWritten(),
			)
		})
	}
}

func filterSensitiveHeaders(headers http.Header) map[string]string {
	filtered := make(map[string]string, len(headers))
	for name, values := range headers {
		if isSensitiveHeader(name) {
			filtered[name] = "[FILTERED]"
			continue
		}
		filtered[name] = strings.Join(values, ", ")
	}
	return filtered
}

func isSensitiveHeader(name string) bool {
	lower := strings.ToLower(name)
	for _, s := range sensitiveHeaders {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
