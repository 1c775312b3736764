// Package logger provides the structured, levelled logger used across the
// service, built on log/slog.
//
// Handlers get a request-scoped logger that already carries the request id:
//
//	log := logger.WithCtx(c.Request.Context())
//	log.Info("donation created", "donation_id", d.ID)
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
)

// L is the base logger. It is replaced by Setup.
var L = slog.New(slog.NewTextHandler(os.Stdout, nil))

// Setup installs the base logger for env: JSON at info level in production,
// human-readable text at debug level everywhere else.
func Setup(env string) *slog.Logger {
	return SetupWriter(env, os.Stdout)
}

func SetupWriter(env string, w io.Writer) *slog.Logger {
	var handler slog.Handler
	switch env {
	case "production", "prod":
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	L = slog.New(handler)
	slog.SetDefault(L)
	return L
}

type ctxKey struct{}

// WithCtx returns the logger stored in ctx by InjectLogger, or L.
func WithCtx(ctx context.Context) *slog.Logger {
	if ctx == nil {
		return L
	}
	if log, ok := ctx.Value(ctxKey{}).(*slog.Logger); ok && log != nil {
		return log
	}
	return L
}

// InjectLogger stores a request-scoped logger in ctx.
func InjectLogger(ctx context.Context, log *slog.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, log)
}
