package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceDelay coalesces the burst of events editors produce on save.
const debounceDelay = 100 * time.Millisecond

// WatchFile calls onChange after path is written or recreated, until ctx is
// done. The parent directory is watched so that atomic replaces are seen.
func WatchFile(ctx context.Context, path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return fmt.Errorf("watch directory: %w", err)
	}

	go func() {
		defer watcher.Close()
		var debounce *time.Timer
		defer func() {
			if debounce != nil {
				debounce.Stop()
			}
		}()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(path) {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
					continue
				}
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(debounceDelay, onChange)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Printf("Config: watcher error: %v", err)
			}
		}
	}()
	return nil
}

// Watch reloads the configuration whenever the file changes. Reload failures
// are logged and the previous configuration stays in effect.
func (m *Manager) Watch(ctx context.Context) error {
	return WatchFile(ctx, m.configPath, func() {
		cfg, err := m.read()
		if err != nil {
			log.Printf("Config: reload failed: %v", err)
			return
		}
		if cfg == nil {
			return
		}
		log.Printf("Config: reloaded %s", m.configPath)
		m.Set(m.overridden(cfg))
	})
}
