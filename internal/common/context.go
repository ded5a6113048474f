package common

import (
	"context"
	"log/slog"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/receipts-collator/constants"
)

// Context keys for storing values in context
type contextKey string

const (
	ContextKeyRunID contextKey = "run_id"
	ContextKeyStore contextKey = "store"
)

// WithRunID adds a run ID to the context
func WithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, ContextKeyRunID, runID)
}

// NewRun tags ctx with a fresh run ID and returns it alongside.
func NewRun(ctx context.Context) (context.Context, string) {
	id := uuid.NewString()
	return WithRunID(ctx, id), id
}

// RunIDFromContext extracts the run ID from context
func RunIDFromContext(ctx context.Context) string {
	if runID, ok := ctx.Value(ContextKeyRunID).(string); ok {
		return runID
	}
	return ""
}

func WithStore(ctx context.Context, s constants.Store) context.Context {
	return context.WithValue(ctx, ContextKeyStore, s)
}

func StoreFromContext(ctx context.Context) constants.Store {
	if s, ok := ctx.Value(ContextKeyStore).(constants.Store); ok {
		return s
	}
	return ""
}

// LoggerFor returns logger annotated with the run and store carried by ctx.
func LoggerFor(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = slog.Default()
	}
	if id := RunIDFromContext(ctx); id != "" {
		logger = logger.With("run_id", id)
	}
	if s := StoreFromContext(ctx); s != "" {
		logger = logger.With("store", string(s))
	}
	return logger
}
