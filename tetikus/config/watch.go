package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const debounceInterval = 500 * time.Millisecond

// Watcher emits the settings file's contents after each write, debounced so
// an editor's save burst reads once.
type Watcher struct {
	configs chan Config
	err     error
}

// Configs closes when the watcher stops; Err then explains why.
func (w *Watcher) Configs() <-chan Config {
	return w.configs
}

func (w *Watcher) Err() error {
	return w.err
}

// Watch re-reads the settings file on change, which is how threshold edits
// reach a running session without a restart. The parent directory is watched
// rather than the file itself so atomic save-and-rename writes are seen.
func (s *Store) Watch(ctx context.Context) *Watcher {
	w := &Watcher{configs: make(chan Config)}

	go func() {
		defer close(w.configs)

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			w.err = fmt.Errorf("failed to create file watcher: %v", err)
			return
		}
		defer watcher.Close()

		if err := watcher.Add(filepath.Dir(s.path)); err != nil {
			w.err = fmt.Errorf("failed to watch settings directory: %v", err)
			return
		}

		var debounce <-chan time.Time

		for {
			select {
			case <-ctx.Done():
				w.err = ctx.Err()
				return

			case event, ok := <-watcher.Events:
				if !ok {
					select {
					case err := <-watcher.Errors:
						w.err = err
					default:
					}
					return
				}
				slog.Debug("watcher event", "event", event)
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				if filepath.Clean(event.Name) != filepath.Clean(s.path) {
					continue
				}
				debounce = time.After(debounceInterval)

			case <-debounce:
				debounce = nil
				select {
				case w.configs <- s.Load():
				case <-ctx.Done():
					w.err = ctx.Err()
					return
				}
			}
		}
	}()

	return w
}
