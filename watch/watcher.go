// Package watch re-validates blueprint files as they change on disk.
package watch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/c360studio/semblueprint/blueprint"
	"github.com/c360studio/semblueprint/validation"
)

// DefaultDebounce is how long changes accumulate before validation.
const DefaultDebounce = 200 * time.Millisecond

// Config configures a Watcher.
type Config struct {
	// Root is the blueprint directory to watch recursively.
	Root string

	// DebounceDelay is how long to wait for more changes before validating.
	DebounceDelay time.Duration

	// Validator runs on every changed file. Nil uses the standard rubric.
	Validator *validation.Validator

	Logger *slog.Logger
}

// Operation is the kind of change observed.
type Operation string

const (
	OpCreate Operation = "create"
	OpModify Operation = "modify"
	OpDelete Operation = "delete"
)

// Event is emitted once per changed blueprint file after debouncing.
type Event struct {
	// Path is relative to the watched root.
	Path      string
	Operation Operation
	// Report is nil for deletions.
	Report *validation.Report
}

// Watcher validates blueprint files on change.
type Watcher struct {
	config    Config
	validator *validation.Validator
	watcher   *fsnotify.Watcher
	logger    *slog.Logger

	pendingMu sync.Mutex
	pending   map[string]fsnotify.Op

	hashMu sync.RWMutex
	hashes map[string]string

	events chan Event
}

// New creates a watcher. Call Start to begin watching.
func New(config Config) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.DebounceDelay <= 0 {
		config.DebounceDelay = DefaultDebounce
	}
	v := config.Validator
	if v == nil {
		v = validation.NewValidator()
	}

	return &Watcher{
		config:    config,
		validator: v,
		watcher:   fsw,
		logger:    config.Logger,
		pending:   make(map[string]fsnotify.Op),
		hashes:    make(map[string]string),
		events:    make(chan Event, 100),
	}, nil
}

// Events returns the event channel. It is closed when the watcher stops.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Start registers watches and begins processing in the background until
// ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	if err := w.addWatchesRecursive(w.config.Root); err != nil {
		return err
	}

	go w.processEvents(ctx)

	w.logger.Info("Blueprint watcher started",
		"root", w.config.Root,
		"debounce", w.config.DebounceDelay)
	return nil
}

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error {
	return w.watcher.Close()
}

// Run starts the watcher and calls fn for every event until ctx is done.
func (w *Watcher) Run(ctx context.Context, fn func(Event)) error {
	if err := w.Start(ctx); err != nil {
		return err
	}
	defer w.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.events:
			if !ok {
				return nil
			}
			fn(ev)
		}
	}
}

// Scan validates every blueprint currently under the root and records
// content hashes so unchanged files are not reported again.
func (w *Watcher) Scan() ([]Event, error) {
	paths, err := blueprint.ResolveFiles([]string{w.config.Root})
	if err != nil {
		return nil, err
	}

	events := make([]Event, 0, len(paths))
	for _, path := range paths {
		ev, ok := w.validate(path, fsnotify.Create)
		if ok {
			events = append(events, ev)
		}
	}
	return events, nil
}

func (w *Watcher) addWatchesRecursive(root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if path != root && skipDir(path) {
			return filepath.SkipDir
		}
		w.addWatch(path)
		return nil
	})
}

func (w *Watcher) addWatch(path string) {
	if err := w.watcher.Add(path); err != nil {
		w.logger.Warn("Failed to watch directory", "path", path, "error", err)
		return
	}
	w.logger.Debug("Watching directory", "path", path)
}

func skipDir(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// processEvents handles fsnotify events with debouncing.
func (w *Watcher) processEvents(ctx context.Context) {
	defer close(w.events)

	ticker := time.NewTicker(w.config.DebounceDelay)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFSEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("Watcher error", "error", err)

		case <-ticker.C:
			w.flushPending(ctx)
		}
	}
}

func (w *Watcher) handleFSEvent(event fsnotify.Event) {
	path := event.Name

	if !strings.HasSuffix(path, blueprint.FileExt) {
		if event.Has(fsnotify.Create) {
			if info, err := os.Stat(path); err == nil && info.IsDir() && !skipDir(path) {
				w.addWatch(path)
			}
		}
		return
	}
	if strings.HasPrefix(filepath.Base(path), ".") {
		return
	}

	w.pendingMu.Lock()
	w.pending[path] |= event.Op
	w.pendingMu.Unlock()

	w.logger.Debug("Blueprint change detected", "path", w.rel(path), "op", event.Op.String())
}

func (w *Watcher) flushPending(ctx context.Context) {
	w.pendingMu.Lock()
	if len(w.pending) == 0 {
		w.pendingMu.Unlock()
		return
	}
	toProcess := w.pending
	w.pending = make(map[string]fsnotify.Op)
	w.pendingMu.Unlock()

	paths := make([]string, 0, len(toProcess))
	for path := range toProcess {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	for _, path := range paths {
		select {
		case <-ctx.Done():
			return
		default:
		}

		if ev, ok := w.validate(path, toProcess[path]); ok {
			w.sendEvent(ev)
		}
	}
}

// validate builds the event for one path. ok is false when the content is
// unchanged since it was last seen.
func (w *Watcher) validate(path string, op fsnotify.Op) (Event, bool) {
	rel := w.rel(path)

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		w.hashMu.Lock()
		_, known := w.hashes[rel]
		delete(w.hashes, rel)
		w.hashMu.Unlock()
		return Event{Path: rel, Operation: OpDelete}, known || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
	}
	if err != nil {
		return Event{Path: rel, Operation: OpModify, Report: validation.LoadFailure(path, err)}, true
	}

	hash := computeHash(data)
	w.hashMu.Lock()
	oldHash, hadHash := w.hashes[rel]
	w.hashes[rel] = hash
	w.hashMu.Unlock()
	if hadHash && oldHash == hash {
		return Event{}, false
	}

	var report *validation.Report
	if bp, perr := blueprint.Parse(data); perr != nil {
		report = validation.LoadFailure(path, perr)
	} else {
		report = w.validator.Validate(bp)
	}

	operation := OpModify
	if !hadHash {
		operation = OpCreate
	}
	return Event{Path: rel, Operation: operation, Report: report}, true
}

func (w *Watcher) sendEvent(event Event) {
	select {
	case w.events <- event:
		w.logger.Debug("Sent watch event", "path", event.Path, "op", event.Operation)
	default:
		w.logger.Warn("Event channel full, dropping event", "path", event.Path)
	}
}

func (w *Watcher) rel(path string) string {
	rel, err := filepath.Rel(w.config.Root, path)
	if err != nil {
		return path
	}
	return rel
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
