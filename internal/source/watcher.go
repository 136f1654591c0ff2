package source

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce is the quiet period after the last change before the
// callback runs.
const DefaultDebounce = 200 * time.Millisecond

// Watch observes the source's paths until ctx is cancelled and calls
// onChange once per burst of changes. Directories are watched recursively
// for .md files; files are watched through their parent directory so that
// atomic replace-by-rename is seen.
func Watch(ctx context.Context, src Source, debounce time.Duration, logger *slog.Logger, onChange func()) error {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	var files, dirs []string
	for _, p := range src.Paths() {
		abs, err := filepath.Abs(p)
		if err != nil {
			return err
		}
		info, err := os.Stat(abs)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := addDirsRecursive(w, abs); err != nil {
				return err
			}
			dirs = append(dirs, abs)
			continue
		}
		if err := w.Add(filepath.Dir(abs)); err != nil {
			return err
		}
		files = append(files, abs)
	}

	logger.Info("watcher: started", slog.Int("paths", len(files)+len(dirs)))

	var timer *time.Timer
	var fire <-chan time.Time
	schedule := func() {
		if timer == nil {
			timer = time.NewTimer(debounce)
			fire = timer.C
			return
		}
		timer.Reset(debounce)
	}

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-fire:
			logger.Debug("watcher: change settled")
			onChange()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op == fsnotify.Chmod {
				continue
			}
			if ev.Op&fsnotify.Create != 0 && under(ev.Name, dirs) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := addDirsRecursive(w, ev.Name); err != nil {
						logger.Warn("watcher: add new dir failed",
							slog.String("path", ev.Name),
							slog.String("error", err.Error()))
					}
					schedule()
					continue
				}
			}
			if relevant(ev.Name, files, dirs) {
				logger.Debug("watcher: event", slog.String("path", ev.Name), slog.String("op", ev.Op.String()))
				schedule()
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", err.Error()))
		}
	}
}

// relevant reports whether a change to name affects the watched set. A
// watched file matches itself and siblings sharing its name as a prefix,
// such as SQLite -wal and -journal files.
func relevant(name string, files, dirs []string) bool {
	for _, f := range files {
		if name == f || strings.HasPrefix(name, f+"-") {
			return true
		}
	}
	return strings.HasSuffix(name, ".md") && under(name, dirs)
}

func under(name string, dirs []string) bool {
	for _, d := range dirs {
		if strings.HasPrefix(name, d+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

// addDirsRecursive adds root and all its non-hidden subdirectories.
func addDirsRecursive(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		return w.Add(path)
	})
}
