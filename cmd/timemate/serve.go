package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"github.com/urfave/cli/v2"

	"timemate/internal/api"
	"timemate/internal/core/countdown"
	"timemate/internal/core/model"
	"timemate/internal/core/observer"
	"timemate/internal/core/presets"
	"timemate/internal/platform"
	"timemate/internal/preferences"
	"timemate/internal/storage"
	"timemate/internal/ui/notify"
	"timemate/internal/ui/popup"
	"timemate/internal/ui/tray"
	"timemate/resources"
)

var serveCmd = &cli.Command{
	Name:  "serve",
	Usage: "run the countdown authority",
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:    "settings",
			Usage:   "path of the settings YAML file",
			EnvVars: []string{"TIMEMATE_SETTINGS"},
		},
		&cli.StringFlag{
			Name:    "store",
			Usage:   "storage backend (file, sqlite, pebble, redis, memory)",
			EnvVars: []string{"TIMEMATE_STORE"},
		},
		&cli.StringFlag{
			Name:    "store-path",
			Usage:   "directory or database file for the storage backend",
			EnvVars: []string{"TIMEMATE_STORE_PATH"},
		},
		&cli.StringFlag{
			Name:    "redis-url",
			Usage:   "redis connection URL for the redis backend",
			EnvVars: []string{"TIMEMATE_REDIS_URL", "REDIS_URL"},
		},
		&cli.BoolFlag{
			Name:    "headless",
			Usage:   "run without the system tray",
			EnvVars: []string{"TIMEMATE_HEADLESS"},
		},
		&cli.DurationFlag{
			Name:  "shutdown-timeout",
			Usage: "time allowed for flushing state on exit",
			Value: 5 * time.Second,
		},
	},
	Action: runServe,
}

func runServe(cctx *cli.Context) error {
	logger := configLogger(cctx)

	settingsPath := cctx.String("settings")
	if settingsPath == "" {
		path, err := storage.SettingsPath(appName)
		if err != nil {
			return err
		}
		settingsPath = path
	}
	settings, err := storage.LoadSettings(settingsPath)
	if err != nil {
		return err
	}
	applyFlags(cctx, &settings)

	storePath := settings.StorePath
	if storePath == "" {
		if storePath, err = storage.DefaultStorePath(appName, settings.Backend); err != nil {
			return err
		}
	}
	if settings.Backend == storage.BackendSQLite {
		if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
			return fmt.Errorf("create state directory: %w", err)
		}
	}

	ctx, stop := signal.NotifyContext(cctx.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	listener, err := platform.Listen(settings.ListenAddress)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			logger.Error("another timemate is already serving", "addr", settings.ListenAddress)
		}
		return err
	}

	store, err := storage.Open(ctx, storage.Config{
		Backend:     settings.Backend,
		Path:        storePath,
		RedisURL:    settings.RedisURL,
		RedisPrefix: settings.RedisPrefix,
	}, logger)
	if err != nil {
		listener.Close()
		return err
	}
	logger.Info("storage ready", "backend", store.Backend(), "path", storePath)

	writer := storage.NewWriter(store, cctx.Duration("shutdown-timeout"), logger)
	hub := observer.NewHub()
	presetManager := presets.NewManager(store).WithPublisher(hub)

	var (
		fyneApp     fyne.App
		desktopApp  desktop.App
		trayManager *tray.Manager
	)
	if !cctx.Bool("headless") {
		fyneApp = app.NewWithID("com.timemate.app")
		fyneApp.SetIcon(resources.AppIcon())
		if da, ok := fyneApp.(desktop.App); ok {
			desktopApp = da
		} else {
			logger.Warn("system tray unsupported on this platform, running headless")
			fyneApp = nil
		}
	}

	options := countdown.Options{
		Persister: writer,
		Publisher: hub,
		Logger:    logger,
		Notifier:  notify.NewLog(logger),
	}
	if fyneApp != nil {
		options.Notifier = notify.NewDesktop(fyneApp, logger)
		trayManager = tray.New(desktopApp, tray.Callbacks{})
		options.Indicator = trayManager
	}

	timer := countdown.New(settings.CountdownConfig(), options)
	restored := timer.Restore(ctx, store)
	logger.Info("countdown restored", "remaining", restored.Remaining, "running", restored.Running)

	var (
		popupWindow    *popup.Window
		settingsWindow *preferences.Window
	)
	if fyneApp != nil {
		popupWindow = popup.New(fyneApp, timer, popup.Config{WarnThreshold: settings.WarnThreshold})
		settingsWindow = preferences.NewWindow(fyneApp, settings, func(updated preferences.Settings) {
			if err := storage.SaveSettings(settingsPath, updated); err != nil {
				logger.Error("failed to save settings", "err", err)
			}
		})
	}
	watcher, err := storage.WatchSettings(settingsPath, logger, settingsReloader(timer, popupWindow, settingsWindow, logger))
	if err != nil {
		logger.Warn("settings hot reload disabled", "err", err)
	}

	server := api.NewServer(timer, presetManager, hub, api.Options{Logger: logger})
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Serve(listener)
	}()

	if fyneApp != nil {
		trayManager.SetCallbacks(tray.Callbacks{
			OnShow:     popupWindow.Show,
			OnStart:    func() { timer.Start() },
			OnPause:    func() { timer.Pause() },
			OnReset:    func() { timer.Reset() },
			OnPreset:   applyPreset(ctx, timer, presetManager, logger),
			OnSettings: settingsWindow.Show,
			OnQuit:     stop,
		})
		desktopApp.SetSystemTrayIcon(resources.TrayIcon(timer.Running()))
		fyneApp.Lifecycle().SetOnStarted(trayManager.Start)

		go trayManager.Follow(ctx, hub, timer.Get, func() []model.Preset {
			list, err := presetManager.List(ctx)
			if err != nil {
				logger.Warn("failed to load presets", "err", err)
			}
			return list
		})
		go hub.Watch(ctx, 4, func(notification observer.Notification) {
			if notification.Key == model.StateKey {
				popupWindow.SetSnapshot(timer.Get())
			}
		})
		go func() {
			select {
			case <-ctx.Done():
			case err := <-serveErr:
				serveErr <- err
				stop()
			}
			fyne.Do(fyneApp.Quit)
		}()

		fyneApp.Run()
		stop()
	} else {
		select {
		case <-ctx.Done():
		case err := <-serveErr:
			serveErr <- err
		}
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cctx.Duration("shutdown-timeout"))
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("api shutdown", "err", err)
	}
	if watcher != nil {
		watcher.Close()
	}
	timer.Close()
	hub.Close()
	if err := writer.Close(shutdownCtx); err != nil {
		logger.Warn("failed to flush countdown", "err", err)
	}
	if err := store.Close(); err != nil {
		logger.Warn("failed to close storage", "err", err)
	}

	select {
	case err := <-serveErr:
		return err
	default:
		return nil
	}
}

// settingsReloader applies a reloaded settings file to the running service
// and to the open windows, so a later save does not write stale values back.
// Either window may be nil.
func settingsReloader(timer *countdown.Service, popupWindow *popup.Window, settingsWindow *preferences.Window, logger *slog.Logger) func(preferences.Settings) {
	return func(updated preferences.Settings) {
		timer.UpdateConfig(updated.CountdownConfig())
		if popupWindow != nil {
			popupWindow.UpdateConfig(popup.Config{WarnThreshold: updated.WarnThreshold})
		}
		if settingsWindow != nil {
			fyne.Do(func() {
				settingsWindow.UpdateSettings(updated)
			})
		}
		logger.Info("settings reloaded")
	}
}

func applyFlags(cctx *cli.Context, settings *preferences.Settings) {
	if cctx.IsSet("addr") {
		settings.ListenAddress = cctx.String("addr")
	}
	if cctx.IsSet("store") {
		settings.Backend = cctx.String("store")
	}
	if cctx.IsSet("store-path") {
		settings.StorePath = cctx.String("store-path")
	}
	if cctx.IsSet("redis-url") {
		settings.RedisURL = cctx.String("redis-url")
	}
}

func applyPreset(ctx context.Context, timer *countdown.Service, manager *presets.Manager, logger *slog.Logger) func(string) {
	return func(id string) {
		preset, err := manager.Get(ctx, id)
		if err != nil {
			logger.Warn("failed to apply preset", "id", id, "err", err)
			return
		}
		timer.SetInput(preset.Duration)
	}
}
