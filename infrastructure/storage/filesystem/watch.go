package filesystem

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/felixgeelhaar/percept-go/infrastructure/logging"
)

// WatchSpec watches an agent spec file and invokes onChange whenever the
// file is written or recreated. It blocks until ctx is cancelled.
//
// The parent directory is watched rather than the file itself so that
// editors which replace the file on save (rename plus create) are still
// observed.
func WatchSpec(ctx context.Context, path string, onChange func(string)) error {
	if path == "" {
		return fmt.Errorf("spec path is required")
	}
	if onChange == nil {
		return fmt.Errorf("change handler is required")
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolving spec path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watching spec directory: %w", err)
	}

	logging.Debug().Add(logging.Str("path", abs)).Msg("watching spec file")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Name != abs {
				continue
			}
			if event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create) {
				logging.Info().Add(logging.Str("path", abs)).Msg("spec file changed")
				onChange(abs)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Error().Add(logging.ErrorField(err)).Msg("spec watcher error")
		}
	}
}
