package survey

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// PlanStatus tracks a plan through the generation workflow.
type PlanStatus string

const (
	StatusPending    PlanStatus = "pendiente"
	StatusProcessing PlanStatus = "procesando"
	StatusCompleted  PlanStatus = "completado"
	StatusError      PlanStatus = "error"
)

// Plan is a registered survey plan: the record plus workflow state. It
// mirrors what the panel shows per plan (title, status, published memoria).
type Plan struct {
	ID          string     `json:"id"`
	Title       string     `json:"titulo"`
	Description string     `json:"descripcion,omitempty"`
	Status      PlanStatus `json:"estado"`
	Record      *Record    `json:"datos,omitempty"`
	MemoriaID   string     `json:"memoria_id,omitempty"`
	CreatedAt   time.Time  `json:"fecha_carga"`
	UpdatedAt   time.Time  `json:"fecha_actualizacion"`
}

// Store is the SQLite-backed plan registry.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewStore opens (and initializes) the plan registry.
// Use ":memory:" for an in-memory database, or a file path for persistence.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	s := &Store{db: db}
	if err := s.initialize(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS planos (
		id TEXT PRIMARY KEY,
		titulo TEXT NOT NULL,
		descripcion TEXT,
		estado TEXT NOT NULL,
		record TEXT,
		memoria_id TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_planos_created ON planos(created_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Create registers a new plan with status pendiente.
func (s *Store) Create(ctx context.Context, plan *Plan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if plan.ID == "" {
		return fmt.Errorf("plan id required")
	}
	recordJSON, err := json.Marshal(plan.Record)
	if err != nil {
		return fmt.Errorf("marshal record: %w", err)
	}
	now := time.Now().UTC()
	if plan.Status == "" {
		plan.Status = StatusPending
	}
	plan.CreatedAt = now
	plan.UpdatedAt = now

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO planos (id, titulo, descripcion, estado, record, memoria_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		plan.ID, plan.Title, plan.Description, string(plan.Status), string(recordJSON),
		plan.MemoriaID, now.Unix(), now.Unix(),
	)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}
	return nil
}

// Get returns a plan by id, or ErrPlanNotFound.
func (s *Store) Get(ctx context.Context, id string) (*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scanOne(s.db.QueryRowContext(ctx,
		`SELECT id, titulo, descripcion, estado, record, memoria_id, created_at, updated_at
		 FROM planos WHERE id = ?`, id))
}

// List returns all plans, newest first.
func (s *Store) List(ctx context.Context) ([]*Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, titulo, descripcion, estado, record, memoria_id, created_at, updated_at
		 FROM planos ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list plans: %w", err)
	}
	defer rows.Close()

	var plans []*Plan
	for rows.Next() {
		p, err := scanPlan(rows.Scan)
		if err != nil {
			return nil, err
		}
		plans = append(plans, p)
	}
	return plans, rows.Err()
}

// Delete removes a plan. Returns ErrPlanNotFound when the id is unknown.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, `DELETE FROM planos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete plan: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrPlanNotFound{ID: id}
	}
	return nil
}

// SetStatus updates the workflow status.
func (s *Store) SetStatus(ctx context.Context, id string, status PlanStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE planos SET estado = ?, updated_at = ? WHERE id = ?`,
		string(status), time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("update status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrPlanNotFound{ID: id}
	}
	return nil
}

// SetPublished records the published memoria artifact id and marks the plan completado.
func (s *Store) SetPublished(ctx context.Context, id, memoriaID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE planos SET estado = ?, memoria_id = ?, updated_at = ? WHERE id = ?`,
		string(StatusCompleted), memoriaID, time.Now().UTC().Unix(), id)
	if err != nil {
		return fmt.Errorf("update published memoria: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrPlanNotFound{ID: id}
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) scanOne(row *sql.Row) (*Plan, error) {
	p, err := scanPlan(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrPlanNotFound{}
	}
	return p, err
}

func scanPlan(scan func(dest ...any) error) (*Plan, error) {
	var (
		p          Plan
		status     string
		recordJSON sql.NullString
		memoriaID  sql.NullString
		desc       sql.NullString
		created    int64
		updated    int64
	)
	if err := scan(&p.ID, &p.Title, &desc, &status, &recordJSON, &memoriaID, &created, &updated); err != nil {
		return nil, err
	}
	p.Description = desc.String
	p.Status = PlanStatus(status)
	p.MemoriaID = memoriaID.String
	p.CreatedAt = time.Unix(created, 0).UTC()
	p.UpdatedAt = time.Unix(updated, 0).UTC()
	if recordJSON.Valid && recordJSON.String != "" && recordJSON.String != "null" {
		var r Record
		if err := json.Unmarshal([]byte(recordJSON.String), &r); err != nil {
			return nil, fmt.Errorf("unmarshal record: %w", err)
		}
		p.Record = &r
	}
	return &p, nil
}

// ErrPlanNotFound is returned when a plan id is unknown.
type ErrPlanNotFound struct {
	ID string
}

func (e ErrPlanNotFound) Error() string {
	if e.ID == "" {
		return "plan not found"
	}
	return "plan not found: " + e.ID
}

// IsNotFound returns true if the error is ErrPlanNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrPlanNotFound)
	return ok
}
