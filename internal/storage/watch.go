package storage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"timemate/internal/preferences"
)

const settingsDebounce = 100 * time.Millisecond

// SettingsWatcher reloads the settings file whenever it changes on disk.
type SettingsWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	onChange func(preferences.Settings)
	logger   *slog.Logger
	done     chan struct{}
}

// WatchSettings watches the directory holding path so editors that replace
// the file are noticed too. onChange runs on the watcher goroutine.
func WatchSettings(path string, logger *slog.Logger, onChange func(preferences.Settings)) (*SettingsWatcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	path = filepath.Clean(path)

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create config directory: %w", err)
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create settings watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(path)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("watch %s: %w", filepath.Dir(path), err)
	}

	sw := &SettingsWatcher{
		watcher:  watcher,
		path:     path,
		onChange: onChange,
		logger:   logger.With("component", "settings_watcher"),
		done:     make(chan struct{}),
	}
	go sw.run()
	return sw, nil
}

// Close stops watching.
func (sw *SettingsWatcher) Close() error {
	err := sw.watcher.Close()
	<-sw.done
	return err
}

func (sw *SettingsWatcher) run() {
	defer close(sw.done)

	var debounce *time.Timer
	reload := make(chan struct{}, 1)
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != sw.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(settingsDebounce, func() {
				select {
				case reload <- struct{}{}:
				default:
				}
			})
		case <-reload:
			settings, err := LoadSettings(sw.path)
			if err != nil {
				sw.logger.Warn("ignoring unreadable settings", "err", err)
				continue
			}
			sw.logger.Info("settings reloaded", "path", sw.path)
			sw.onChange(settings)
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			sw.logger.Warn("settings watcher error", "err", err)
		}
	}
}
