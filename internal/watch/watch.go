// Package watch rebuilds the site when its sources change and runs scheduled
// Drive backups.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultDebounce collapses bursts of editor writes into one rebuild.
const DefaultDebounce = 300 * time.Millisecond

// Watcher calls OnChange after files under Dirs, or any of Files, change.
type Watcher struct {
	Dirs []string
	// Files are watched through their parent directory.
	Files []string
	// Skip lists directories never watched, such as the build output.
	Skip     []string
	Debounce time.Duration
	OnChange func(ctx context.Context, changed []string) error
	Logger   *zap.Logger
}

// Run watches until ctx is done.
func (w *Watcher) Run(ctx context.Context) error {
	logger := w.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	debounce := w.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	skip := make(map[string]bool, len(w.Skip))
	for _, dir := range w.Skip {
		if abs, err := filepath.Abs(dir); err == nil {
			skip[abs] = true
		}
	}

	for _, dir := range w.Dirs {
		if err := addTree(watcher, dir, skip); err != nil {
			return err
		}
	}
	files := make(map[string]bool, len(w.Files))
	for _, f := range w.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		files[abs] = true
		if err := watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watching %s: %w", f, err)
		}
	}

	timer := time.NewTimer(debounce)
	timer.Stop()
	pending := map[string]bool{}

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			abs, _ := filepath.Abs(event.Name)
			if skipped(abs, skip) || !relevant(abs, w.Dirs, files) {
				continue
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(abs); err == nil && info.IsDir() {
					if err := addTree(watcher, abs, skip); err != nil {
						logger.Warn("watching new directory", zap.String("dir", abs), zap.Error(err))
					}
				}
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}
			pending[abs] = true
			timer.Reset(debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", zap.Error(err))

		case <-timer.C:
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			pending = map[string]bool{}
			logger.Info("sources changed", zap.Int("files", len(changed)))
			if err := w.OnChange(ctx, changed); err != nil {
				logger.Error("rebuild failed", zap.Error(err))
			}
		}
	}
}

func addTree(watcher *fsnotify.Watcher, root string, skip map[string]bool) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return err
		}
		if skip[abs] || (path != root && strings.HasPrefix(d.Name(), ".")) {
			return filepath.SkipDir
		}
		if err := watcher.Add(abs); err != nil {
			return fmt.Errorf("watching %s: %w", path, err)
		}
		return nil
	})
}

func skipped(path string, skip map[string]bool) bool {
	for dir := range skip {
		if path == dir || strings.HasPrefix(path, dir+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// relevant reports whether path is inside a watched tree or is a watched file.
// Siblings of watched files share their directory watch and are ignored.
func relevant(path string, dirs []string, files map[string]bool) bool {
	if files[path] {
		return true
	}
	for _, dir := range dirs {
		abs, err := filepath.Abs(dir)
		if err != nil {
			continue
		}
		if path == abs || strings.HasPrefix(path, abs+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
