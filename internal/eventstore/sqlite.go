package eventstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS generation_events (
	seq           INTEGER PRIMARY KEY AUTOINCREMENT,
	generation_id TEXT NOT NULL,
	event_type    TEXT NOT NULL,
	recorded_at   INTEGER NOT NULL,
	payload       BLOB NOT NULL,
	metadata      TEXT
);
CREATE INDEX IF NOT EXISTS idx_events_generation ON generation_events(generation_id, seq);
CREATE INDEX IF NOT EXISTS idx_events_recorded ON generation_events(recorded_at);
`

const selectCols = "seq, generation_id, event_type, recorded_at, payload, metadata"

// SQLiteStore is the append-only generation event log. Events are ordered
// by insertion sequence, never by wall clock: recorded_at is informational.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (and creates if needed) the event log at dbPath.
// Use ":memory:" for tests.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}

	// The daemon appends from the pipeline while handlers read; WAL keeps
	// readers off the writer's lock.
	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize event log schema: %w", err)
	}

	return &SQLiteStore{db: db}, nil
}

// Append records one event for a generation run.
func (s *SQLiteStore) Append(ctx context.Context, generationID, eventType string, payload []byte, metadata map[string]string) error {
	var metadataJSON []byte
	if len(metadata) > 0 {
		var err error
		metadataJSON, err = json.Marshal(metadata)
		if err != nil {
			return fmt.Errorf("marshal event metadata: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO generation_events (generation_id, event_type, recorded_at, payload, metadata) VALUES (?, ?, ?, ?, ?)",
		generationID, eventType, time.Now().UTC().UnixMicro(), payload, metadataJSON,
	)
	if err != nil {
		return fmt.Errorf("append event: %w", err)
	}
	return nil
}

// GetByGenerationID returns all events of one generation run in append order.
func (s *SQLiteStore) GetByGenerationID(ctx context.Context, generationID string) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectCols+" FROM generation_events WHERE generation_id = ? ORDER BY seq",
		generationID,
	)
	if err != nil {
		return nil, fmt.Errorf("query generation events: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// GetRange returns events recorded within [start, end], in append order.
func (s *SQLiteStore) GetRange(ctx context.Context, start, end time.Time) ([]Event, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+selectCols+" FROM generation_events WHERE recorded_at BETWEEN ? AND ? ORDER BY seq",
		start.UTC().UnixMicro(), end.UTC().UnixMicro(),
	)
	if err != nil {
		return nil, fmt.Errorf("query event range: %w", err)
	}
	defer rows.Close()

	return collectEvents(rows)
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func collectEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var (
			e            Event
			recordedAt   int64
			metadataJSON []byte
		)
		if err := rows.Scan(&e.Seq, &e.GenerationID, &e.Type, &recordedAt, &e.Payload, &metadataJSON); err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		e.RecordedAt = time.UnixMicro(recordedAt).UTC()
		if len(metadataJSON) > 0 {
			if err := json.Unmarshal(metadataJSON, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshal event metadata: %w", err)
			}
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate events: %w", err)
	}
	return events, nil
}
