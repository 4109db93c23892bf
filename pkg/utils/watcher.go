package utils

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// WatchOptions configures WatchInputDir.
type WatchOptions struct {
	// Patterns restricts events to matching file names.
	Patterns []string

	// Debounce coalesces bursts of events for the same file.
	Debounce time.Duration

	// InitialScan emits files already present when watching starts.
	InitialScan bool
}

// WatchInputDir watches dir and sends each created or written file matching
// the patterns on the returned channel once it has been quiet for the
// debounce interval. Both channels close when ctx is done.
func WatchInputDir(ctx context.Context, dir string, opts WatchOptions) (<-chan string, <-chan error, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := w.Add(dir); err != nil {
		w.Close()
		return nil, nil, fmt.Errorf("failed to watch %s: %w", dir, err)
	}

	var initial []string
	if opts.InitialScan {
		initial, err = (&FileManager{InputDir: dir}).DiscoverInputFiles(opts.Patterns)
		if err != nil {
			w.Close()
			return nil, nil, err
		}
	}

	files := make(chan string, 64)
	errs := make(chan error, 1)

	go func() {
		defer close(files)
		defer close(errs)
		defer w.Close()

		for _, f := range initial {
			select {
			case files <- f:
			case <-ctx.Done():
				return
			}
		}

		pending := make(map[string]time.Time)
		ticker := time.NewTicker(tickInterval(opts.Debounce))
		defer ticker.Stop()

		flush := func(now time.Time) bool {
			for path, last := range pending {
				if now.Sub(last) < opts.Debounce {
					continue
				}
				delete(pending, path)
				if info, err := os.Stat(path); err != nil || info.IsDir() {
					continue
				}
				select {
				case files <- path:
				case <-ctx.Done():
					return false
				}
			}
			return true
		}

		for {
			select {
			case <-ctx.Done():
				return

			case e, ok := <-w.Events:
				if !ok {
					return
				}
				if e.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename) == 0 {
					continue
				}
				if !MatchesPatterns(e.Name, opts.Patterns) {
					continue
				}
				pending[filepath.Clean(e.Name)] = time.Now()

			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				select {
				case errs <- err:
				default:
				}

			case now := <-ticker.C:
				if !flush(now) {
					return
				}
			}
		}
	}()

	return files, errs, nil
}

func tickInterval(debounce time.Duration) time.Duration {
	if debounce <= 0 {
		return 50 * time.Millisecond
	}
	if t := debounce / 4; t > 10*time.Millisecond {
		return t
	}
	return 10 * time.Millisecond
}
