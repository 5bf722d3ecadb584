package policy

import (
	"context"
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/os-ghost/core/internal/ghosterr"
	"github.com/os-ghost/core/internal/logging"
)

// Watch reloads the cached snapshot whenever the policy file changes on
// disk, letting the CLI edit privacy_settings.json directly while the
// orchestrator keeps reading through Load(). It runs until ctx is
// cancelled.
func (p *Policy) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("%w: create watcher: %v", ghosterr.ErrIO, err)
	}
	defer watcher.Close()

	if err := watcher.Add(p.path); err != nil {
		return fmt.Errorf("%w: watch policy file: %v", ghosterr.ErrIO, err)
	}

	logging.Policy("watching %s for external changes", p.path)
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			settings, err := readSettings(p.path)
			if err != nil {
				logging.Get(logging.CategoryPolicy).Warn("reload failed after %s: %v", event.Op, err)
				continue
			}
			p.snapshot.Store(&settings)
			logging.Policy("policy reloaded after external %s", event.Op)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryPolicy).Warn("watcher error: %v", err)
		}
	}
}
