// Package watch uploads files dropped into an inbox directory.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/custodia-labs/playground/internal/core/domain"
	"github.com/custodia-labs/playground/internal/logger"
)

// DefaultSettle is how long a file must stay quiet before it is uploaded.
const DefaultSettle = 500 * time.Millisecond

// Uploader stores a new document.
type Uploader interface {
	Upload(ctx context.Context, name string, r io.Reader) (*domain.Document, error)
}

// Result reports the outcome of one upload.
type Result struct {
	Path     string
	Document *domain.Document
	Err      error
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithSettle overrides DefaultSettle.
func WithSettle(d time.Duration) Option {
	return func(w *Watcher) {
		w.settle = d
	}
}

// Watcher uploads regular files created or written in one directory.
// Subdirectories are not watched.
type Watcher struct {
	dir      string
	uploader Uploader
	settle   time.Duration

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New creates a watcher for dir.
func New(dir string, uploader Uploader, opts ...Option) *Watcher {
	w := &Watcher{
		dir:      dir,
		uploader: uploader,
		settle:   DefaultSettle,
		pending:  make(map[string]*time.Timer),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run watches until ctx is cancelled. onResult is called once per upload,
// from a timer goroutine, never concurrently.
func (w *Watcher) Run(ctx context.Context, onResult func(Result)) error {
	info, err := os.Stat(w.dir)
	if err != nil {
		return fmt.Errorf("%w: watch %s: %w", domain.ErrInvalidInput, w.dir, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: watch %s: not a directory", domain.ErrInvalidInput, w.dir)
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(w.dir); err != nil {
		return fmt.Errorf("watch %s: %w", w.dir, err)
	}

	var deliver sync.Mutex
	report := func(r Result) {
		deliver.Lock()
		defer deliver.Unlock()
		if onResult != nil {
			onResult(r)
		}
	}

	defer w.stopPending()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			path, ok := w.handleEvent(event)
			if !ok {
				continue
			}
			w.schedule(ctx, path, report)
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch %s: %v", w.dir, err)
		}
	}
}

// handleEvent returns the path to upload for event, if any.
func (w *Watcher) handleEvent(event fsnotify.Event) (string, bool) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return "", false
	}
	if strings.HasPrefix(filepath.Base(event.Name), ".") {
		return "", false
	}
	info, err := os.Stat(event.Name)
	if err != nil || !info.Mode().IsRegular() {
		return "", false
	}
	return event.Name, true
}

// schedule uploads path once it has been quiet for the settle period.
func (w *Watcher) schedule(ctx context.Context, path string, report func(Result)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		doc, err := w.upload(ctx, path)
		report(Result{Path: path, Document: doc, Err: err})
	})
}

func (w *Watcher) upload(ctx context.Context, path string) (*domain.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	logger.Debug("Uploading %s from inbox", path)
	return w.uploader.Upload(ctx, filepath.Base(path), f)
}

func (w *Watcher) stopPending() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}
