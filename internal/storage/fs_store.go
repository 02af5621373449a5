package storage

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FSStore is a filesystem-based implementation of ArtifactStore.
// Artifacts live flat under the base directory:
//
//	memorias/
//	  Memoria_<planID>_<timestamp>_<uid>.docx
//	  Memoria_<planID>_<timestamp>_<uid>.docx.meta.json
//
// Publication is atomic: data and metadata are written to .tmp files and
// the data file is renamed into place last, so a crash mid-write never
// leaves a readable half-artifact.
type FSStore struct {
	basePath string
	mu       sync.RWMutex
}

var artifactIDPattern = regexp.MustCompile(`^Memoria_[^/\\]+\.docx$`)

// NewFSStore creates a filesystem-based artifact store rooted at basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	if err := os.MkdirAll(basePath, 0750); err != nil {
		return nil, fmt.Errorf("create storage directory %s: %w", basePath, err)
	}
	return &FSStore{basePath: basePath}, nil
}

// NewArtifactID returns a fresh storage id for a plan. Ids embed the
// publication time and a random suffix, so repeated generations of the
// same plan never collide.
func NewArtifactID(planID string, now time.Time) string {
	uid := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("Memoria_%s_%s_%s.docx", sanitizePlanID(planID), now.UTC().Format("20060102T150405"), uid)
}

// Put stores an artifact and returns its storage id.
func (fs *FSStore) Put(ctx context.Context, artifact *Artifact) (string, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	id := artifact.ID
	if id == "" {
		id = NewArtifactID(artifact.Metadata.PlanID, time.Now())
	}
	if err := validateArtifactID(id); err != nil {
		return "", err
	}

	meta := artifact.Metadata
	if meta.PublishedAt.IsZero() {
		meta.PublishedAt = time.Now().UTC()
	}
	meta.SHA256 = fmt.Sprintf("%x", sha256.Sum256(artifact.Data))

	dataPath := fs.artifactPath(id)
	metaPath := fs.metadataPath(id)
	dataTmp := dataPath + ".tmp"
	metaTmp := metaPath + ".tmp"

	if err := os.WriteFile(dataTmp, artifact.Data, 0600); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}

	encoded, err := json.Marshal(meta)
	if err != nil {
		os.Remove(dataTmp)
		return "", fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(metaTmp, encoded, 0600); err != nil {
		os.Remove(dataTmp)
		return "", fmt.Errorf("write metadata: %w", err)
	}

	// Metadata first. The artifact is addressable only through the data
	// file, so an orphaned sidecar is harmless while a dataless sidecar
	// rename order would not be.
	if err := os.Rename(metaTmp, metaPath); err != nil {
		os.Remove(dataTmp)
		os.Remove(metaTmp)
		return "", fmt.Errorf("publish metadata: %w", err)
	}
	if err := os.Rename(dataTmp, dataPath); err != nil {
		os.Remove(dataTmp)
		os.Remove(metaPath)
		return "", fmt.Errorf("publish artifact: %w", err)
	}

	return id, nil
}

// Get retrieves an artifact by its storage id.
func (fs *FSStore) Get(ctx context.Context, id string) (*Artifact, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if err := validateArtifactID(id); err != nil {
		return nil, err
	}

	// #nosec G304 - path is constructed from a validated artifact id
	data, err := os.ReadFile(fs.artifactPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{ID: id}
		}
		return nil, fmt.Errorf("read artifact: %w", err)
	}

	meta, err := fs.readMetadata(id)
	if err != nil {
		// A missing sidecar degrades metadata, not the artifact itself.
		meta = Metadata{}
	}

	return &Artifact{
		ID:       id,
		Size:     int64(len(data)),
		Data:     data,
		Metadata: meta,
	}, nil
}

// Exists checks if an artifact with the given id exists.
func (fs *FSStore) Exists(ctx context.Context, id string) (bool, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	if err := validateArtifactID(id); err != nil {
		return false, err
	}

	_, err := os.Stat(fs.artifactPath(id))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("stat artifact: %w", err)
	}
	return true, nil
}

// Delete removes an artifact by its storage id.
func (fs *FSStore) Delete(ctx context.Context, id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return fs.deleteUnlocked(id)
}

// List returns the ids of all stored artifacts, most recent first.
func (fs *FSStore) List(ctx context.Context, planID string) ([]string, error) {
	fs.mu.RLock()
	defer fs.mu.RUnlock()

	return fs.listUnlocked(planID)
}

// DeleteOlderThan removes artifacts published before the cutoff.
func (fs *FSStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	ids, err := fs.listUnlocked("")
	if err != nil {
		return 0, err
	}

	removed := 0
	for _, id := range ids {
		meta, err := fs.readMetadata(id)
		publishedAt := meta.PublishedAt
		if err != nil || publishedAt.IsZero() {
			// No sidecar to trust, fall back to the file timestamp.
			info, statErr := os.Stat(fs.artifactPath(id))
			if statErr != nil {
				continue
			}
			publishedAt = info.ModTime()
		}
		if publishedAt.Before(cutoff) {
			if err := fs.deleteUnlocked(id); err != nil && !IsNotFound(err) {
				return removed, fmt.Errorf("delete artifact %s: %w", id, err)
			}
			removed++
		}
	}

	return removed, nil
}

// Close releases resources.
func (fs *FSStore) Close() error {
	return nil
}

func (fs *FSStore) listUnlocked(planID string) ([]string, error) {
	entries, err := os.ReadDir(fs.basePath)
	if err != nil {
		return nil, fmt.Errorf("read storage directory: %w", err)
	}

	type dated struct {
		id          string
		publishedAt time.Time
	}
	var found []dated
	prefix := ""
	if planID != "" {
		prefix = "Memoria_" + sanitizePlanID(planID) + "_"
	}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !artifactIDPattern.MatchString(name) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		meta, err := fs.readMetadata(name)
		publishedAt := meta.PublishedAt
		if err != nil || publishedAt.IsZero() {
			if info, statErr := entry.Info(); statErr == nil {
				publishedAt = info.ModTime()
			}
		}
		found = append(found, dated{id: name, publishedAt: publishedAt})
	}

	sort.Slice(found, func(i, j int) bool {
		if !found[i].publishedAt.Equal(found[j].publishedAt) {
			return found[i].publishedAt.After(found[j].publishedAt)
		}
		return found[i].id < found[j].id
	})

	ids := make([]string, len(found))
	for i, f := range found {
		ids[i] = f.id
	}
	return ids, nil
}

func (fs *FSStore) deleteUnlocked(id string) error {
	if err := validateArtifactID(id); err != nil {
		return err
	}
	if err := os.Remove(fs.artifactPath(id)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound{ID: id}
		}
		return fmt.Errorf("delete artifact: %w", err)
	}
	os.Remove(fs.metadataPath(id)) // Best effort
	return nil
}

func (fs *FSStore) artifactPath(id string) string {
	return filepath.Join(fs.basePath, id)
}

func (fs *FSStore) metadataPath(id string) string {
	return fs.artifactPath(id) + ".meta.json"
}

func (fs *FSStore) readMetadata(id string) (Metadata, error) {
	// #nosec G304 - path is constructed from a validated artifact id
	data, err := os.ReadFile(fs.metadataPath(id))
	if err != nil {
		return Metadata{}, fmt.Errorf("read metadata: %w", err)
	}

	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return Metadata{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return meta, nil
}

func validateArtifactID(id string) error {
	if !artifactIDPattern.MatchString(id) {
		return fmt.Errorf("invalid artifact id %q", id)
	}
	return nil
}

// sanitizePlanID keeps plan ids filename-safe inside artifact ids.
func sanitizePlanID(planID string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-':
			return r
		default:
			return '-'
		}
	}, planID)
}
