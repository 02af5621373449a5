package daemon

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/SandraS2611/agrimensores-sde/internal/logfields"
	"github.com/SandraS2611/agrimensores-sde/internal/pipeline"
	"github.com/SandraS2611/agrimensores-sde/internal/survey"
)

// Generator runs the pipeline for an inbox record.
type Generator interface {
	Generate(ctx context.Context, planID string, record *survey.Record) (*pipeline.Result, error)
}

// InboxWatcher monitors a directory for dropped survey record files. A
// *.json file appearing in the inbox registers a plan and generates its
// memoria without touching the HTTP API. Processed files are renamed in
// place: .done on success, .err on failure.
type InboxWatcher struct {
	dir       string
	plans     *survey.Store
	generator Generator
	watcher   *fsnotify.Watcher

	mu       sync.Mutex
	pending  map[string]*time.Timer
	stopChan chan struct{}
	stopOnce sync.Once

	// debounceTime absorbs the write bursts editors and copies produce.
	debounceTime time.Duration
}

// NewInboxWatcher creates a watcher for dir, creating it if needed.
func NewInboxWatcher(dir string, plans *survey.Store, generator Generator) (*InboxWatcher, error) {
	if dir == "" {
		return nil, fmt.Errorf("inbox directory is required")
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inbox directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &InboxWatcher{
		dir:          absDir,
		plans:        plans,
		generator:    generator,
		watcher:      watcher,
		pending:      map[string]*time.Timer{},
		stopChan:     make(chan struct{}),
		debounceTime: 500 * time.Millisecond,
	}, nil
}

// Start begins monitoring the inbox. Files already present are picked up
// on the first scan.
func (iw *InboxWatcher) Start(ctx context.Context) error {
	if err := iw.watcher.Add(iw.dir); err != nil {
		return fmt.Errorf("failed to watch inbox directory %s: %w", iw.dir, err)
	}

	slog.Info("Starting inbox watcher", slog.String("directory", iw.dir))

	go iw.watchLoop(ctx)
	go iw.scanExisting(ctx)

	return nil
}

// Stop stops the watcher and cancels pending debounce timers.
func (iw *InboxWatcher) Stop() error {
	iw.stopOnce.Do(func() { close(iw.stopChan) })

	iw.mu.Lock()
	for path, timer := range iw.pending {
		timer.Stop()
		delete(iw.pending, path)
	}
	iw.mu.Unlock()

	return iw.watcher.Close()
}

// scanExisting processes records dropped before the watcher started.
func (iw *InboxWatcher) scanExisting(ctx context.Context) {
	entries, err := os.ReadDir(iw.dir)
	if err != nil {
		slog.Error("Failed to scan inbox directory", logfields.Error(err))
		return
	}
	for _, entry := range entries {
		if entry.IsDir() || !isRecordFile(entry.Name()) {
			continue
		}
		iw.schedule(ctx, filepath.Join(iw.dir, entry.Name()))
	}
}

func (iw *InboxWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-iw.stopChan:
			return
		case event, ok := <-iw.watcher.Events:
			if !ok {
				return
			}
			if !isRecordFile(filepath.Base(event.Name)) {
				continue
			}
			if event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				iw.schedule(ctx, event.Name)
			}
		case err, ok := <-iw.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("Inbox watcher error", logfields.Error(err))
		}
	}
}

// schedule (re)arms the per-file debounce timer. Only the last event
// within the window triggers processing.
func (iw *InboxWatcher) schedule(ctx context.Context, path string) {
	iw.mu.Lock()
	defer iw.mu.Unlock()

	if timer, ok := iw.pending[path]; ok {
		timer.Stop()
	}
	iw.pending[path] = time.AfterFunc(iw.debounceTime, func() {
		iw.mu.Lock()
		delete(iw.pending, path)
		iw.mu.Unlock()

		select {
		case <-iw.stopChan:
			return
		case <-ctx.Done():
			return
		default:
		}
		iw.process(ctx, path)
	})
}

// process registers the record as a plan and generates its memoria.
func (iw *InboxWatcher) process(ctx context.Context, path string) {
	planID := planIDFromFilename(path)
	log := slog.With(logfields.PlanID(planID), slog.String("file", filepath.Base(path)))

	record, err := survey.LoadRecord(path)
	if err != nil {
		log.Error("Failed to parse inbox record", logfields.Error(err))
		iw.markProcessed(path, ".err")
		return
	}

	plan := &survey.Plan{
		ID:     planID,
		Title:  planTitle(planID, record),
		Record: record,
	}
	if err := iw.plans.Create(ctx, plan); err != nil {
		log.Error("Failed to register inbox plan", logfields.Error(err))
		iw.markProcessed(path, ".err")
		return
	}

	if err := iw.plans.SetStatus(ctx, planID, survey.StatusProcessing); err != nil {
		log.Warn("Failed to mark plan processing", logfields.Error(err))
	}

	result, err := iw.generator.Generate(ctx, planID, record)
	if err != nil {
		log.Error("Inbox generation failed", logfields.Error(err))
		if serr := iw.plans.SetStatus(ctx, planID, survey.StatusError); serr != nil {
			log.Warn("Failed to mark plan errored", logfields.Error(serr))
		}
		iw.markProcessed(path, ".err")
		return
	}

	if err := iw.plans.SetPublished(ctx, planID, result.ArtifactID); err != nil {
		log.Warn("Failed to record published memoria", logfields.Error(err))
	}

	log.Info("Inbox record published",
		logfields.GenerationID(result.GenerationID),
		logfields.ArtifactID(result.ArtifactID))
	iw.markProcessed(path, ".done")
}

// markProcessed renames the file so it is not picked up again.
func (iw *InboxWatcher) markProcessed(path, suffix string) {
	if err := os.Rename(path, path+suffix); err != nil {
		slog.Warn("Failed to rename processed inbox file",
			slog.String("file", path), logfields.Error(err))
	}
}

func isRecordFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasPrefix(name, ".")
}

// planIDFromFilename derives a stable plan id from the dropped file name,
// so re-dropping the same file is a conflict instead of a duplicate plan.
func planIDFromFilename(path string) string {
	return strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
}

func planTitle(planID string, record *survey.Record) string {
	if record.Object != "" {
		return record.Object
	}
	return planID
}
