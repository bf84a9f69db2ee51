// Package config supplies concrete tcp.Policy implementations: a static,
// build-time-fixed policy and a file-backed one that hot-reloads on
// change via fsnotify, in the spirit of NeoScan's ConfigWatcher (the
// reload-on-write-event, debounce-then-swap pattern this package follows).
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// StaticPolicy is a fixed-at-construction tcp.Policy. Tests and simple
// deployments that never need to flip inline/checksum behavior at runtime
// use this directly.
type StaticPolicy struct {
	Inline    bool
	Checksums bool
	DropOnBad bool
}

func (s StaticPolicy) InlineMode() bool       { return s.Inline }
func (s StaticPolicy) ChecksumsEnabled() bool { return s.Checksums }
func (s StaticPolicy) ChecksumDrops() bool    { return s.DropOnBad }

// Doc is the on-disk JSON shape a FilePolicy reloads.
type Doc struct {
	Inline        bool `json:"inline"`
	Checksums     bool `json:"checksums_enabled"`
	ChecksumDrops bool `json:"checksum_drops"`
}

// FilePolicy is a tcp.Policy backed by a JSON file, refreshed automatically
// whenever the file is written, following the debounce-then-swap pattern
// of NeoScan's ConfigWatcher: a write event schedules a single delayed
// reload instead of reloading on every fsnotify event, which tends to
// fire more than once per save.
type FilePolicy struct {
	path  string
	delay time.Duration

	mu  sync.RWMutex
	doc Doc

	watcher *fsnotify.Watcher
	done    chan struct{}

	lastEvent time.Time
}

// NewFilePolicy loads path once synchronously and starts watching it for
// changes. Call Close to stop watching.
func NewFilePolicy(path string) (*FilePolicy, error) {
	f := &FilePolicy{path: path, delay: 500 * time.Millisecond, done: make(chan struct{})}
	if err := f.reload(); err != nil {
		return nil, err
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config: creating watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config: watching %s: %w", path, err)
	}
	f.watcher = w

	go f.watchLoop()
	return f, nil
}

func (f *FilePolicy) reload() error {
	b, err := os.ReadFile(f.path)
	if err != nil {
		return fmt.Errorf("config: reading %s: %w", f.path, err)
	}
	var doc Doc
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("config: parsing %s: %w", f.path, err)
	}
	f.mu.Lock()
	f.doc = doc
	f.mu.Unlock()
	return nil
}

func (f *FilePolicy) watchLoop() {
	for {
		select {
		case <-f.done:
			return
		case ev, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			now := time.Now()
			if now.Sub(f.lastEvent) < f.delay {
				continue
			}
			f.lastEvent = now
			time.AfterFunc(f.delay, func() {
				if err := f.reload(); err != nil {
					fmt.Fprintf(os.Stderr, "config: reload %s: %v\n", f.path, err)
				}
			})
		case _, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
		}
	}
}

// Close stops the watcher goroutine.
func (f *FilePolicy) Close() error {
	close(f.done)
	if f.watcher != nil {
		return f.watcher.Close()
	}
	return nil
}

func (f *FilePolicy) InlineMode() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.doc.Inline
}

func (f *FilePolicy) ChecksumsEnabled() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.doc.Checksums
}

func (f *FilePolicy) ChecksumDrops() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.doc.ChecksumDrops
}
