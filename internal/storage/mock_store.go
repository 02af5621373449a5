package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MockStore is an in-memory implementation of ArtifactStore for testing.
type MockStore struct {
	mu        sync.RWMutex
	artifacts map[string]*Artifact
	calls     MockCalls

	// PutErr, when set, is returned by Put before anything is stored.
	PutErr error
}

// MockCalls tracks method invocations for test verification.
type MockCalls struct {
	Put    int
	Get    int
	Exists int
	Delete int
	List   int
}

// NewMockStore creates a new in-memory artifact store.
func NewMockStore() *MockStore {
	return &MockStore{
		artifacts: make(map[string]*Artifact),
	}
}

// Put stores an artifact and returns its storage id.
func (m *MockStore) Put(ctx context.Context, artifact *Artifact) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Put++

	if m.PutErr != nil {
		return "", m.PutErr
	}

	id := artifact.ID
	if id == "" {
		id = NewArtifactID(artifact.Metadata.PlanID, time.Now())
	}

	meta := artifact.Metadata
	if meta.PublishedAt.IsZero() {
		meta.PublishedAt = time.Now().UTC()
	}
	meta.SHA256 = fmt.Sprintf("%x", sha256.Sum256(artifact.Data))

	data := make([]byte, len(artifact.Data))
	copy(data, artifact.Data)

	m.artifacts[id] = &Artifact{
		ID:       id,
		Size:     int64(len(data)),
		Data:     data,
		Metadata: meta,
	}
	return id, nil
}

// Get retrieves an artifact by its storage id.
func (m *MockStore) Get(ctx context.Context, id string) (*Artifact, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.Get++

	artifact, ok := m.artifacts[id]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}
	return artifact, nil
}

// Exists checks if an artifact with the given id exists.
func (m *MockStore) Exists(ctx context.Context, id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.Exists++

	_, ok := m.artifacts[id]
	return ok, nil
}

// Delete removes an artifact by its storage id.
func (m *MockStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Delete++

	if _, ok := m.artifacts[id]; !ok {
		return ErrNotFound{ID: id}
	}
	delete(m.artifacts, id)
	return nil
}

// List returns the ids of all stored artifacts, most recent first.
func (m *MockStore) List(ctx context.Context, planID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.List++

	prefix := ""
	if planID != "" {
		prefix = fmt.Sprintf("Memoria_%s_", sanitizePlanID(planID))
	}

	var ids []string
	for id := range m.artifacts {
		if prefix != "" && !strings.HasPrefix(id, prefix) {
			continue
		}
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.artifacts[ids[i]], m.artifacts[ids[j]]
		if !a.Metadata.PublishedAt.Equal(b.Metadata.PublishedAt) {
			return a.Metadata.PublishedAt.After(b.Metadata.PublishedAt)
		}
		return ids[i] < ids[j]
	})
	return ids, nil
}

// DeleteOlderThan removes artifacts published before the cutoff.
func (m *MockStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	removed := 0
	for id, artifact := range m.artifacts {
		if artifact.Metadata.PublishedAt.Before(cutoff) {
			delete(m.artifacts, id)
			removed++
		}
	}
	return removed, nil
}

// Close releases resources.
func (m *MockStore) Close() error {
	return nil
}

// Calls returns a snapshot of recorded method invocations.
func (m *MockStore) Calls() MockCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}
