// Package logging provides structured logging configuration using log/slog.
//
// The root handler is wrapped by slog-context, so attributes attached to a
// context with WithAttrs (request id, column epoch, user id) are emitted by
// every log call that receives that context.
package logging

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	slogcontext "github.com/veqryn/slog-context"
)

// Setup configures the global slog logger based on level and format.
//
// Level values: "debug", "info", "warn", "error" (default: "info")
// Format values: "text", "json" (default: "text")
func Setup(level, format string) {
	slog.SetDefault(New(os.Stdout, level, format))
}

// New builds a context-aware logger writing to w.
func New(w io.Writer, level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(level),
	}

	var handler slog.Handler
	if strings.ToLower(format) == "json" {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	return slog.New(slogcontext.NewHandler(handler, nil))
}

// parseLevel converts a string log level to slog.Level.
func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithAttrs returns a child context whose log records carry args.
func WithAttrs(ctx context.Context, args ...any) context.Context {
	return slogcontext.Append(ctx, args...)
}

// FromContext returns a logger enriched with request context.
//
// A logger stored with slogcontext.NewCtx takes precedence over the
// default. When the context carries a chi RequestID, request_id is added.
//
//	func handleRequest(w http.ResponseWriter, r *http.Request) {
//	    logger := logging.FromContext(r.Context())
//	    logger.Info("listing users", "page", page)
//	}
func FromContext(ctx context.Context) *slog.Logger {
	logger := slogcontext.FromCtx(ctx)

	if reqID := middleware.GetReqID(ctx); reqID != "" {
		logger = logger.With("request_id", reqID)
	}

	return logger
}

// WithFields returns a logger with additional structured fields.
//
//	reloadLogger := logging.WithFields(ctx, "path", path)
//	reloadLogger.Info("field rules reloaded", "epoch", epoch.ID)
func WithFields(ctx context.Context, args ...any) *slog.Logger {
	return FromContext(ctx).With(args...)
}

// LevelForStatus picks the level of an HTTP request record: server errors
// are errors, client errors are warnings.
func LevelForStatus(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
