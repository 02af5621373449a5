// Package observability provides context-scoped structured logging helpers
// used across the generation pipeline and servers.
package observability

import (
	"context"
	"log/slog"
)

// LogContext holds structured logging context information.
type LogContext struct {
	GenerationID string
	PlanID       string
	Stage        string
}

type logContextKeyType string

const logContextKey logContextKeyType = "log-context"

// WithGenerationID adds a generation ID to the context.
func WithGenerationID(ctx context.Context, id string) context.Context {
	lc := extractLogContext(ctx)
	lc.GenerationID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// WithPlanID adds a plan ID to the context.
func WithPlanID(ctx context.Context, id string) context.Context {
	lc := extractLogContext(ctx)
	lc.PlanID = id
	return context.WithValue(ctx, logContextKey, lc)
}

// WithStage adds a pipeline stage name to the context.
func WithStage(ctx context.Context, stage string) context.Context {
	lc := extractLogContext(ctx)
	lc.Stage = stage
	return context.WithValue(ctx, logContextKey, lc)
}

func extractLogContext(ctx context.Context) LogContext {
	if lc, ok := ctx.Value(logContextKey).(LogContext); ok {
		return lc
	}
	return LogContext{}
}

func getLogAttrs(ctx context.Context) []slog.Attr {
	lc := extractLogContext(ctx)
	attrs := []slog.Attr{}
	if lc.GenerationID != "" {
		attrs = append(attrs, slog.String("generation.id", lc.GenerationID))
	}
	if lc.PlanID != "" {
		attrs = append(attrs, slog.String("plan.id", lc.PlanID))
	}
	if lc.Stage != "" {
		attrs = append(attrs, slog.String("stage", lc.Stage))
	}
	return attrs
}

// InfoContext logs an info message with context information.
func InfoContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelInfo, msg, append(getLogAttrs(ctx), attrs...)...)
}

// WarnContext logs a warning message with context information.
func WarnContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelWarn, msg, append(getLogAttrs(ctx), attrs...)...)
}

// ErrorContext logs an error message with context information.
func ErrorContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelError, msg, append(getLogAttrs(ctx), attrs...)...)
}

// DebugContext logs a debug message with context information.
func DebugContext(ctx context.Context, msg string, attrs ...slog.Attr) {
	slog.LogAttrs(ctx, slog.LevelDebug, msg, append(getLogAttrs(ctx), attrs...)...)
}
