package recorder

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/polisai/elucidation-go/pkg/domain"
)

// FileURI resolves the base URI from a file kept up to date by an external
// discovery agent. The file is watched and re-read whenever it changes.
type FileURI struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	current string
	watcher *fsnotify.Watcher
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewFileURI starts watching path. A missing or empty file is not an error:
// Resolve fails until the file appears.
func NewFileURI(path string, logger *slog.Logger) (*FileURI, error) {
	if logger == nil {
		logger = slog.Default()
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	f := &FileURI{
		path:    absPath,
		logger:  logger,
		watcher: watcher,
		cancel:  cancel,
		done:    make(chan struct{}),
	}

	if err := f.load(); err != nil {
		logger.Warn("initial base URI load failed", "path", absPath, "error", err)
	}

	// Watch the directory so editors that replace the file are still seen.
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		cancel()
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	go f.watchLoop(ctx)

	return f, nil
}

// Resolve implements URIResolver.
func (f *FileURI) Resolve() (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.current == "" {
		return "", fmt.Errorf("%w: %s has no content", domain.ErrNoBaseURI, f.path)
	}
	return f.current, nil
}

// Close stops watching the file.
func (f *FileURI) Close() error {
	f.cancel()
	err := f.watcher.Close()
	<-f.done
	return err
}

func (f *FileURI) load() error {
	//nolint:gosec // Path is supplied by the operator
	data, err := os.ReadFile(f.path)
	if err != nil {
		f.store("")
		return err
	}
	f.store(strings.TrimSpace(string(data)))
	return nil
}

func (f *FileURI) store(uri string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.current = uri
}

func (f *FileURI) watchLoop(ctx context.Context) {
	defer close(f.done)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-f.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			switch {
			case event.Has(fsnotify.Write), event.Has(fsnotify.Create):
				if err := f.load(); err != nil {
					f.logger.Warn("failed to reload base URI", "path", f.path, "error", err)
					continue
				}
				f.logger.Debug("base URI reloaded", "path", f.path)
			case event.Has(fsnotify.Remove), event.Has(fsnotify.Rename):
				f.store("")
				f.logger.Warn("base URI file removed", "path", f.path)
			}
		case err, ok := <-f.watcher.Errors:
			if !ok {
				return
			}
			f.logger.Error("base URI watcher error", "error", err)
		}
	}
}
