package translate

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// PreambleLoader serves the optional operator preamble for the system prompt,
// reloading it when the backing file changes. Safe for concurrent use.
type PreambleLoader struct {
	path     string
	logger   *slog.Logger
	debounce time.Duration

	mu   sync.RWMutex
	text string

	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewPreambleLoader reads the preamble file once. An empty path yields a
// loader that always returns "". A missing file is not an error; the preamble
// appears once the file does.
func NewPreambleLoader(path string, logger *slog.Logger) (*PreambleLoader, error) {
	if logger == nil {
		logger = slog.Default()
	}
	l := &PreambleLoader{
		path:     path,
		logger:   logger.With("component", "preamble"),
		debounce: 250 * time.Millisecond,
	}
	if path != "" {
		if err := l.reload(); err != nil && !os.IsNotExist(err) {
			return nil, err
		}
	}
	return l, nil
}

// Text returns the current preamble.
func (l *PreambleLoader) Text() string {
	if l == nil {
		return ""
	}
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.text
}

// Watch reloads the preamble whenever its file changes, until Close or ctx
// cancellation. Watching the directory rather than the file survives
// editor rename-and-replace saves.
func (l *PreambleLoader) Watch(ctx context.Context) error {
	if l.path == "" {
		return nil
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := watcher.Add(filepath.Dir(l.path)); err != nil {
		watcher.Close()
		return err
	}
	l.watcher = watcher

	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel

	l.wg.Add(1)
	go l.watchLoop(ctx)
	return nil
}

func (l *PreambleLoader) watchLoop(ctx context.Context) {
	defer l.wg.Done()

	var timer *time.Timer
	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-l.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(l.path) {
				continue
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(l.debounce)
			pending = timer.C
		case err, ok := <-l.watcher.Errors:
			if !ok {
				return
			}
			l.logger.Warn("preamble watch error", "error", err)
		case <-pending:
			pending = nil
			if err := l.reload(); err != nil {
				if os.IsNotExist(err) {
					continue
				}
				l.logger.Warn("preamble reload failed", "path", l.path, "error", err)
				continue
			}
			l.logger.Info("preamble reloaded", "path", l.path)
		}
	}
}

func (l *PreambleLoader) reload() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.text = strings.TrimSpace(string(data))
	l.mu.Unlock()
	return nil
}

// Close stops the watcher.
func (l *PreambleLoader) Close() {
	if l == nil {
		return
	}
	if l.cancel != nil {
		l.cancel()
	}
	if l.watcher != nil {
		l.watcher.Close()
	}
	l.wg.Wait()
}
