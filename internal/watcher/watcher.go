// Package watcher reports changes to note and record files in the data
// directory, so edits made outside the worker still reach connected shells.
package watcher

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/thebtf/zenplan/internal/storage"
)

// Kind tells which file of a date changed.
type Kind string

const (
	KindNote    Kind = "note"
	KindRecords Kind = "records"
)

// ChangeFunc is called once per debounced change.
type ChangeFunc func(date string, kind Kind)

// Watcher monitors a data directory and calls onChange for note and record files.
type Watcher struct {
	dir      string
	onChange ChangeFunc
	watcher  *fsnotify.Watcher
	ctx      context.Context
	cancel   context.CancelFunc
	mu       sync.Mutex
	running  bool
	debounce time.Duration
	pending  map[string]*time.Timer
}

// New creates a Watcher for dir. The directory must exist when Start is called.
func New(dir string, onChange ChangeFunc) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Watcher{
		dir:      filepath.Clean(dir),
		onChange: onChange,
		watcher:  fsw,
		ctx:      ctx,
		cancel:   cancel,
		debounce: 100 * time.Millisecond,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Start begins watching the directory.
func (w *Watcher) Start() error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return err
	}
	w.running = true
	w.mu.Unlock()

	go w.watchLoop()
	return nil
}

// Stop stops the watcher and drops pending callbacks.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	w.running = false
	w.cancel()
	for name, t := range w.pending {
		t.Stop()
		delete(w.pending, name)
	}
	return w.watcher.Close()
}

// classify maps a file name to its date key and kind.
// Temp files written by storage start with a dot and are ignored.
func classify(name string) (string, Kind, bool) {
	if strings.HasPrefix(name, ".") {
		return "", "", false
	}
	if date, ok := storage.DateKeyFromFilename(name); ok {
		return date, KindRecords, true
	}
	if stem, ok := strings.CutSuffix(name, storage.NoteExt); ok && stem != "" {
		return storage.DecodeDateKey(stem), KindNote, true
	}
	return "", "", false
}

// watchLoop is the main event loop.
func (w *Watcher) watchLoop() {
	const interesting = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

	for {
		select {
		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&interesting == 0 {
				continue
			}
			if filepath.Dir(filepath.Clean(event.Name)) != w.dir {
				continue
			}
			name := filepath.Base(event.Name)
			date, kind, ok := classify(name)
			if !ok {
				continue
			}
			w.schedule(name, date, kind)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Watcher error")
		}
	}
}

// schedule debounces events per file: a save is several fsnotify events.
func (w *Watcher) schedule(name, date string, kind Kind) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if t, ok := w.pending[name]; ok {
		t.Stop()
	}
	w.pending[name] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, name)
		running := w.running
		w.mu.Unlock()

		if !running || w.onChange == nil {
			return
		}
		log.Debug().Str("date", date).Str("kind", string(kind)).Msg("Data file changed")
		w.onChange(date, kind)
	})
}
