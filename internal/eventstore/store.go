// Package eventstore persists pipeline stage events for audit and replay.
package eventstore

import (
	"context"
	"time"
)

// Store is an append-only event log keyed by generation run.
type Store interface {
	// Append records one event. Ordering is assigned by the store.
	Append(ctx context.Context, generationID, eventType string, payload []byte, metadata map[string]string) error

	// GetByGenerationID returns the events of one generation run in append order.
	GetByGenerationID(ctx context.Context, generationID string) ([]Event, error)

	// GetRange returns events recorded within [start, end].
	GetRange(ctx context.Context, start, end time.Time) ([]Event, error)

	Close() error
}
