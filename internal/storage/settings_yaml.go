package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"timemate/internal/preferences"
)

const settingsFileName = "settings.yaml"

type yamlSettings struct {
	TickIntervalMillis   int    `yaml:"tick_interval_ms"`
	WarnThresholdSeconds *int   `yaml:"warn_threshold_seconds"`
	AlertTitle           string `yaml:"alert_title"`
	AlertBody            string `yaml:"alert_body"`
	VibrateMillis        []int  `yaml:"vibrate_ms"`
	Backend              string `yaml:"backend"`
	StorePath            string `yaml:"store_path"`
	RedisURL             string `yaml:"redis_url"`
	RedisPrefix          string `yaml:"redis_prefix"`
	ListenAddress        string `yaml:"listen_address"`
}

// LoadSettings reads user preferences from YAML at path.
// If the file does not exist, default settings are returned.
func LoadSettings(path string) (preferences.Settings, error) {
	settings := preferences.DefaultSettings()

	rawData, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return settings, nil
		}
		return settings, fmt.Errorf("read settings file: %w", err)
	}

	var fileData yamlSettings
	if err := yaml.Unmarshal(rawData, &fileData); err != nil {
		return settings, fmt.Errorf("parse settings yaml: %w", err)
	}

	applyYamlSettings(&settings, fileData)
	return settings, nil
}

// SaveSettings writes user preferences to YAML at path.
func SaveSettings(path string, settings preferences.Settings) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	vibrate := make([]int, 0, len(settings.Vibrate))
	for _, pulse := range settings.Vibrate {
		vibrate = append(vibrate, int(pulse/time.Millisecond))
	}

	fileData := yamlSettings{
		TickIntervalMillis:   int(settings.TickInterval / time.Millisecond),
		WarnThresholdSeconds: &settings.WarnThreshold,
		AlertTitle:           settings.AlertTitle,
		AlertBody:            settings.AlertBody,
		VibrateMillis:        vibrate,
		Backend:              settings.Backend,
		StorePath:            settings.StorePath,
		RedisURL:             settings.RedisURL,
		RedisPrefix:          settings.RedisPrefix,
		ListenAddress:        settings.ListenAddress,
	}

	serialized, err := yaml.Marshal(fileData)
	if err != nil {
		return fmt.Errorf("marshal settings yaml: %w", err)
	}

	if err := os.WriteFile(path, serialized, 0o644); err != nil {
		return fmt.Errorf("write settings file: %w", err)
	}

	return nil
}

// SettingsPath returns the settings file location inside the user config dir.
func SettingsPath(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, settingsFileName), nil
}

// DataDir returns the directory holding persisted state for appName.
func DataDir(appName string) (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(configDir, appName, "state"), nil
}

// DefaultStorePath returns where backend keeps its data when no path is
// configured: the state directory itself for file and pebble stores, a
// database file inside it for sqlite.
func DefaultStorePath(appName, backend string) (string, error) {
	dir, err := DataDir(appName)
	if err != nil {
		return "", err
	}
	switch backend {
	case BackendSQLite:
		return filepath.Join(dir, "timemate.db"), nil
	case BackendPebble:
		return filepath.Join(dir, "pebble"), nil
	default:
		return dir, nil
	}
}

func applyYamlSettings(settings *preferences.Settings, fileData yamlSettings) {
	if fileData.TickIntervalMillis > 0 {
		settings.TickInterval = time.Duration(fileData.TickIntervalMillis) * time.Millisecond
	}
	if fileData.WarnThresholdSeconds != nil && *fileData.WarnThresholdSeconds >= 0 {
		settings.WarnThreshold = *fileData.WarnThresholdSeconds
	}
	if fileData.AlertTitle != "" {
		settings.AlertTitle = fileData.AlertTitle
	}
	if fileData.AlertBody != "" {
		settings.AlertBody = fileData.AlertBody
	}
	if fileData.VibrateMillis != nil {
		settings.Vibrate = settings.Vibrate[:0:0]
		for _, pulse := range fileData.VibrateMillis {
			if pulse > 0 {
				settings.Vibrate = append(settings.Vibrate, time.Duration(pulse)*time.Millisecond)
			}
		}
	}
	if fileData.Backend != "" {
		settings.Backend = fileData.Backend
	}
	if fileData.StorePath != "" {
		settings.StorePath = fileData.StorePath
	}
	if fileData.RedisURL != "" {
		settings.RedisURL = fileData.RedisURL
	}
	if fileData.RedisPrefix != "" {
		settings.RedisPrefix = fileData.RedisPrefix
	}
	if fileData.ListenAddress != "" {
		settings.ListenAddress = fileData.ListenAddress
	}
}
