package feed

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the manifest must stay quiet before a reload.
const DefaultDebounce = 250 * time.Millisecond

// Watcher appends new manifest entries to a Store whenever the manifest file
// changes. Each reload is one "load more" batch.
type Watcher struct {
	path     string
	store    *Store
	logger   zerolog.Logger
	onAppend func(added int)

	// Debounce coalesces bursts of file events into one reload.
	Debounce time.Duration
}

// NewWatcher returns a watcher for path. onAppend, when non-nil, is called
// after a reload that added at least one item.
func NewWatcher(path string, store *Store, logger zerolog.Logger, onAppend func(added int)) *Watcher {
	return &Watcher{
		path:     path,
		store:    store,
		logger:   logger.With().Str("module", "feed").Str("submodule", "watcher").Logger(),
		onAppend: onAppend,
		Debounce: DefaultDebounce,
	}
}

// Reload reads the manifest and appends unseen videos.
func (w *Watcher) Reload() (int, error) {
	videos, err := LoadManifest(w.path)
	if err != nil {
		return 0, err
	}
	added := w.store.Append(videos)
	if added > 0 {
		w.logger.Info().Int("added", added).Int("len", w.store.Len()).Msg("feed appended")
		if w.onAppend != nil {
			w.onAppend(added)
		}
	}
	return added, nil
}

// Run watches the manifest's directory until ctx is done. The directory is
// watched rather than the file so atomic replaces are seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	abs, err := filepath.Abs(w.path)
	if err != nil {
		return fmt.Errorf("abs path: %w", err)
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}

	return w.watch(ctx, abs, fw.Events, fw.Errors)
}

// watch reloads once events for abs have been quiet for the debounce period.
func (w *Watcher) watch(ctx context.Context, abs string, events <-chan fsnotify.Event, errs <-chan error) error {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != abs {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.Debounce)
		case <-timer.C:
			if _, err := w.Reload(); err != nil {
				// partially written files fail to decode; the next write retries
				w.logger.Warn().Err(err).Msg("manifest reload failed")
			}
		case err, ok := <-errs:
			if !ok {
				return nil
			}
			w.logger.Err(err).Msg("watcher error")
		}
	}
}
