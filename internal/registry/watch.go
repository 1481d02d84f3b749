package registry

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"

	"docuchat/internal/logging"
)

// Watch reports changes to the set of knowledge bases under the root. It
// emits one signal per relevant filesystem event; consumers re-run
// ListAll on each signal. The watcher shuts down when ctx is done.
func (r *Registry) Watch(ctx context.Context) (<-chan struct{}, error) {
	if err := os.MkdirAll(r.root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create registry root: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create registry watcher: %w", err)
	}
	if err := watcher.Add(r.root); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch registry root: %w", err)
	}

	changes := make(chan struct{}, 1)

	go func() {
		defer close(changes)
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				// Staging directories churn during indexing; only
				// published knowledge bases matter to listers.
				if strings.HasPrefix(filepath.Base(event.Name), ".") {
					continue
				}
				if event.Op&(fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
					continue
				}

				// Coalesce: a pending signal already covers this event
				select {
				case changes <- struct{}{}:
				default:
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logging.Error("registry watcher: %v", err)
			}
		}
	}()

	return changes, nil
}
