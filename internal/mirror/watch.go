package mirror

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is how long Watch waits for a burst of events to settle
const DefaultDebounce = 150 * time.Millisecond

// Watch follows changes below the root and applies them to ws until ctx is
// done. Events are debounced and each changed path is applied once.
func (m *Mirror) Watch(ctx context.Context, ws Workspace, debounce time.Duration) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if _, err := m.addRecursive(watcher, m.root); err != nil {
		return err
	}
	slog.InfoContext(ctx, "watching", "path", m.root)

	pending := map[string]struct{}{}
	timer := time.NewTimer(debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			rel, ok := m.Rel(event.Name)
			if !ok || m.Ignored(rel, false) {
				continue
			}

			if event.Has(fsnotify.Create) {
				if info, err := m.fs.Stat(event.Name); err == nil && info.IsDir() {
					files, err := m.addRecursive(watcher, event.Name)
					if err != nil {
						slog.WarnContext(ctx, "failed to watch directory", "path", rel, "err", err)
					}
					for _, f := range files {
						pending[f] = struct{}{}
					}
					timer.Reset(debounce)
					continue
				}
			}

			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				pending[rel] = struct{}{}
				timer.Reset(debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.WarnContext(ctx, "watch error", "err", err)

		case <-timer.C:
			paths := make([]string, 0, len(pending))
			for p := range pending {
				paths = append(paths, p)
			}
			sort.Strings(paths)
			clear(pending)

			for _, p := range paths {
				if err := m.Apply(ws, p); err != nil {
					slog.WarnContext(ctx, "failed to apply change", "path", p, "err", err)
					continue
				}
				slog.DebugContext(ctx, "applied change", "path", p)
			}
		}
	}
}

// addRecursive watches dir and every directory below it that is not
// ignored, returning the workspace paths of the files found
func (m *Mirror) addRecursive(watcher *fsnotify.Watcher, dir string) ([]string, error) {
	var files []string
	err := m.fs.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, inside := m.Rel(p)
		if inside && m.Ignored(rel, d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() {
			if inside {
				files = append(files, rel)
			}
			return nil
		}
		if err := watcher.Add(p); err != nil {
			return fmt.Errorf("failed to watch %s: %w", p, err)
		}
		return nil
	})
	return files, err
}
