// Package storage persists published memoria artifacts.
package storage

import (
	"context"
	"time"
)

// ArtifactStore persists generated documents. An artifact only becomes
// addressable once Put returns: a failed Put must leave no partial file
// that Get, Exists or List could observe.
type ArtifactStore interface {
	// Put stores an artifact and returns its storage id.
	Put(ctx context.Context, artifact *Artifact) (id string, err error)

	// Get retrieves an artifact by its storage id.
	// Returns ErrNotFound if the artifact doesn't exist.
	Get(ctx context.Context, id string) (*Artifact, error)

	// Exists checks if an artifact with the given id exists.
	Exists(ctx context.Context, id string) (bool, error)

	// Delete removes an artifact by its storage id.
	// Returns ErrNotFound if the artifact doesn't exist.
	Delete(ctx context.Context, id string) error

	// List returns the ids of all stored artifacts, most recent first.
	// If planID is non-empty, only artifacts of that plan are returned.
	List(ctx context.Context, planID string) ([]string, error)

	// DeleteOlderThan removes artifacts published before the cutoff and
	// returns how many were removed.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Artifact is a stored document with its metadata.
type Artifact struct {
	// ID is the storage id, unique per publication.
	ID string

	// Size is the size of the data in bytes.
	Size int64

	// Data is the document content.
	Data []byte

	// Metadata stores publication details.
	Metadata Metadata
}

// Metadata records how an artifact came to be.
type Metadata struct {
	// PlanID is the survey plan the artifact was generated from.
	PlanID string

	// GenerationID is the pipeline run that produced the artifact.
	GenerationID string

	// TemplateVersion identifies the template set used.
	TemplateVersion string

	// SHA256 is the hex digest of the artifact bytes, filled in by Put.
	SHA256 string

	// PublishedAt is when the artifact became addressable.
	PublishedAt time.Time
}

// ErrNotFound is returned when an artifact doesn't exist.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return "artifact not found: " + e.ID
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
