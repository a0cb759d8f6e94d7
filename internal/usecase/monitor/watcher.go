package monitor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/johnquangdev/monitor-agent/internal/domain/entities"
)

// Watcher detects completed segments in the capture directory.
// A segment is complete once its size is unchanged across two polls and
// at least minBytes.
type Watcher struct {
	dir      string
	minBytes int64
	logger   *zap.Logger
	now      func() time.Time

	mu       sync.Mutex
	sizes    map[string]int64
	surfaced map[string]struct{}
	dirty    map[string]struct{}
}

// NewWatcher creates a watcher for dir
func NewWatcher(dir string, minBytes int64, logger *zap.Logger) *Watcher {
	return &Watcher{
		dir:      dir,
		minBytes: minBytes,
		logger:   logger,
		now:      time.Now,
		sizes:    make(map[string]int64),
		surfaced: make(map[string]struct{}),
		dirty:    make(map[string]struct{}),
	}
}

// Reset forgets everything seen so far
func (w *Watcher) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.sizes = make(map[string]int64)
	w.surfaced = make(map[string]struct{})
	w.dirty = make(map[string]struct{})
}

// Poll returns the segments that became eligible since the previous poll,
// ordered by capture start
func (w *Watcher) Poll() ([]entities.Segment, error) {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read segment dir: %w", err)
	}

	now := w.now()

	w.mu.Lock()
	defer w.mu.Unlock()

	dirty := w.dirty
	w.dirty = make(map[string]struct{})

	current := make(map[string]int64, len(entries))
	var ready []entities.Segment
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !entities.IsSegmentName(name) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}

		size := info.Size()
		current[name] = size

		if _, done := w.surfaced[name]; done {
			continue
		}
		prev, seen := w.sizes[name]
		if !seen || prev != size || size < w.minBytes {
			continue
		}
		if _, written := dirty[name]; written {
			continue
		}

		start, ok := entities.ParseSegmentTime(name)
		if !ok {
			start = info.ModTime()
		}
		ready = append(ready, entities.Segment{
			Path:         filepath.Join(w.dir, name),
			Name:         name,
			Size:         size,
			CaptureStart: start,
			DiscoveredAt: now,
		})
		w.surfaced[name] = struct{}{}
	}

	for name := range w.surfaced {
		if _, ok := current[name]; !ok {
			delete(w.surfaced, name)
		}
	}
	w.sizes = current

	sort.Slice(ready, func(i, j int) bool {
		if !ready[i].CaptureStart.Equal(ready[j].CaptureStart) {
			return ready[i].CaptureStart.Before(ready[j].CaptureStart)
		}
		return ready[i].Name < ready[j].Name
	})

	if w.logger != nil && len(ready) > 0 {
		w.logger.Debug("Segments ready", zap.Int("count", len(ready)))
	}
	return ready, nil
}

// WatchEvents marks segments that receive filesystem writes as unstable for
// the next poll. It blocks until ctx is done.
func (w *Watcher) WatchEvents(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return fmt.Errorf("create segment dir: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("add watch path: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			name := filepath.Base(event.Name)
			if entities.IsSegmentName(name) {
				w.markDirty(name)
			}

		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			if w.logger != nil {
				w.logger.Warn("Segment watcher error", zap.Error(err))
			}
		}
	}
}

func (w *Watcher) markDirty(name string) {
	w.mu.Lock()
	w.dirty[name] = struct{}{}
	w.mu.Unlock()
}
