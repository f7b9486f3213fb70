// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"net/http"
	"time"

	"github.com/JonMunkholm/userdash/internal/logging"
)

// Logger is an HTTP middleware that logs request details using structured logging.
//
// method and path are attached to the request context, so every record a
// handler logs with that context (formatter diagnostics included) carries
// them. chi's RequestID must run first for request_id to appear.
//
// Log fields of the request record:
//   - status: HTTP response status code
//   - duration_ms: Request processing time in milliseconds
//   - bytes: Response body size
//   - user_agent: Client user agent string
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ctx := logging.WithAttrs(r.Context(), "method", r.Method, "path", r.URL.Path)
		r = r.WithContext(ctx)

		// Wrap response writer to capture status code
		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(ww, r)

		logger := logging.FromContext(ctx)
		level := logging.LevelForStatus(ww.status)
		logger.Log(ctx, level, "request",
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", ww.bytes,
			"user_agent", r.UserAgent(),
		)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap provides access to the underlying ResponseWriter for
// http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
