package event

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// LaunchWatcher starts the watch producer on every directory under dir.
// Directories created later are added as they appear.
func (s *Source) LaunchWatcher(dir string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify: %w", err)
	}
	if err := addTree(watcher, dir); err != nil {
		return errors.Join(err, watcher.Close())
	}
	s.mu.Lock()
	s.watcher = watcher
	s.mu.Unlock()
	slog.Debug("watcher started", slog.String("path", dir))
	go s.watchLoop(watcher)
	return nil
}

func addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if err := w.Add(path); err != nil {
			return fmt.Errorf("watch %s: %w", path, err)
		}
		return nil
	})
}

func (s *Source) watchLoop(w *fsnotify.Watcher) {
	defer slog.Debug("watcher stopped")
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Create) {
				// Best effort: the path may be a file or already gone.
				if err := addTree(w, ev.Name); err != nil {
					slog.Debug("watch new path", slog.String("path", ev.Name), slog.Any("error", err))
				}
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			if shouldIgnoreWatchPath(ev.Name) {
				continue
			}
			if !s.watchEnabled.Load() {
				slog.Debug("fsnotify event dropped", slog.String("path", ev.Name))
				continue
			}
			slog.Debug("fsnotify event",
				slog.String("op", ev.Op.String()),
				slog.String("path", ev.Name),
			)
			s.send(RepositoryDirty{})
		case err, ok := <-w.Errors:
			if !ok {
				return
			}
			slog.Error("fsnotify error", slog.Any("error", err))
		}
	}
}

func shouldIgnoreWatchPath(name string) bool {
	return strings.ToLower(filepath.Ext(name)) == ".lock"
}
