// Package storage persists the countdown snapshot, presets and settings.
//
// Snapshot and presets live in a key-value backend (file, sqlite, redis,
// pebble or memory) under the keys in package model. Each backend picks the
// codec that suits it.
package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"timemate/internal/core/model"
)

// ErrUnknownBackend indicates an unsupported Config.Backend value.
var ErrUnknownBackend = errors.New("unknown storage backend")

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendPebble = "pebble"
	BackendMemory = "memory"
)

// Config selects and locates a backend.
type Config struct {
	Backend string

	// Path is a directory for file and pebble, a database file for sqlite.
	Path string

	RedisURL    string
	RedisPrefix string
}

// kv is the byte-level contract every backend implements.
type kv interface {
	get(ctx context.Context, key string) ([]byte, bool, error)
	put(ctx context.Context, key string, value []byte) error
	close() error
}

// Store reads and writes domain records through a backend and codec.
type Store struct {
	backend string
	kv      kv
	codec   codec
	logger  *slog.Logger
}

// Open connects to the backend described by config.
func Open(ctx context.Context, config Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		backend kv
		coding  codec
		err     error
	)
	switch config.Backend {
	case BackendFile, "":
		config.Backend = BackendFile
		backend, err = openFile(config.Path)
		coding = yamlCodec
	case BackendSQLite:
		backend, err = openSQLite(ctx, config.Path)
		coding = jsonCodec
	case BackendRedis:
		backend, err = openRedis(ctx, config.RedisURL, config.RedisPrefix)
		coding = jsonCodec
	case BackendPebble:
		backend, err = openPebble(config.Path)
		coding = cborCodec
	case BackendMemory:
		backend = newMemory()
		coding = jsonCodec
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, config.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", config.Backend, err)
	}

	return &Store{
		backend: config.Backend,
		kv:      backend,
		codec:   coding,
		logger:  logger.With("component", "storage", "backend", config.Backend),
	}, nil
}

// NewMemoryStore returns a Store kept entirely in process memory.
func NewMemoryStore() *Store {
	return &Store{
		backend: BackendMemory,
		kv:      newMemory(),
		codec:   jsonCodec,
		logger:  slog.Default().With("component", "storage", "backend", BackendMemory),
	}
}

// Backend returns the backend name.
func (store *Store) Backend() string {
	return store.backend
}

// LoadSnapshot returns the persisted countdown merged over the defaults.
// Returns nil, nil if nothing was stored yet.
func (store *Store) LoadSnapshot(ctx context.Context) (*model.Snapshot, error) {
	raw, ok, err := store.kv.get(ctx, model.StateKey)
	if err != nil {
		return nil, fmt.Errorf("load countdown: %w", err)
	}
	if !ok {
		return nil, nil
	}

	snapshot := model.DefaultSnapshot()
	if err := store.codec.unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("decode countdown: %w", err)
	}
	return &snapshot, nil
}

// SaveSnapshot overwrites the persisted countdown.
func (store *Store) SaveSnapshot(ctx context.Context, snapshot model.Snapshot) error {
	raw, err := store.codec.marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode countdown: %w", err)
	}
	if err := store.kv.put(ctx, model.StateKey, raw); err != nil {
		return fmt.Errorf("save countdown: %w", err)
	}
	return nil
}

// LoadPresets returns the stored presets. A missing or corrupt list is empty.
func (store *Store) LoadPresets(ctx context.Context) ([]model.Preset, error) {
	raw, ok, err := store.kv.get(ctx, model.PresetsKey)
	if err != nil {
		return nil, fmt.Errorf("load presets: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var presets []model.Preset
	if err := store.codec.unmarshal(raw, &presets); err != nil {
		store.logger.Warn("discarding unreadable presets", "err", err)
		return nil, nil
	}
	return presets, nil
}

// SavePresets overwrites the stored preset list.
func (store *Store) SavePresets(ctx context.Context, presets []model.Preset) error {
	if presets == nil {
		presets = []model.Preset{}
	}
	raw, err := store.codec.marshal(presets)
	if err != nil {
		return fmt.Errorf("encode presets: %w", err)
	}
	if err := store.kv.put(ctx, model.PresetsKey, raw); err != nil {
		return fmt.Errorf("save presets: %w", err)
	}
	return nil
}

// Close releases the backend.
func (store *Store) Close() error {
	return store.kv.close()
}
