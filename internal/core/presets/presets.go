// Package presets manages named durations that can be applied to the
// countdown.
package presets

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/google/uuid"

	"timemate/internal/core/hms"
	"timemate/internal/core/model"
)

var (
	ErrPresetNotFound = errors.New("preset not found")
	ErrInvalidPreset  = errors.New("invalid preset")
)

// Palette lists the colours a preset may use. The first is the default.
var Palette = []string{
	"#f87171", // red
	"#60a5fa", // blue
	"#34d399", // green
	"#fbbf24", // yellow
	"#a78bfa", // purple
	"#f472b6", // pink
}

// Store persists the preset list.
type Store interface {
	LoadPresets(ctx context.Context) ([]model.Preset, error)
	SavePresets(ctx context.Context, presets []model.Preset) error
}

// Publisher announces that the value under a storage key changed.
type Publisher interface {
	Publish(key string)
}

// Manager caches presets in memory and writes every change through.
type Manager struct {
	mu        sync.Mutex
	store     Store
	publisher Publisher
	presets   []model.Preset
	loaded    bool
}

// NewManager creates a Manager over store.
func NewManager(store Store) *Manager {
	return &Manager{store: store}
}

// WithPublisher makes the manager announce PresetsKey after every change.
func (manager *Manager) WithPublisher(publisher Publisher) *Manager {
	manager.publisher = publisher
	return manager
}

// List returns the presets in insertion order.
func (manager *Manager) List(ctx context.Context) ([]model.Preset, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if err := manager.loadLocked(ctx); err != nil {
		return nil, err
	}
	return slices.Clone(manager.presets), nil
}

// Get returns the preset with id.
func (manager *Manager) Get(ctx context.Context, id string) (model.Preset, error) {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if err := manager.loadLocked(ctx); err != nil {
		return model.Preset{}, err
	}
	index := manager.indexLocked(id)
	if index < 0 {
		return model.Preset{}, fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	return manager.presets[index], nil
}

// Add validates and stores a new preset. An empty colour picks the first
// palette entry; the duration is normalised to HH:MM:SS.
func (manager *Manager) Add(ctx context.Context, name, duration, color string) (model.Preset, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Preset{}, fmt.Errorf("%w: name is empty", ErrInvalidPreset)
	}
	if color == "" {
		color = Palette[0]
	}
	if !slices.Contains(Palette, strings.ToLower(color)) {
		return model.Preset{}, fmt.Errorf("%w: color %q is not in the palette", ErrInvalidPreset, color)
	}

	preset := model.Preset{
		ID:       uuid.NewString(),
		Name:     name,
		Color:    strings.ToLower(color),
		Duration: hms.Normalize(duration),
	}

	manager.mu.Lock()
	defer manager.mu.Unlock()
	if err := manager.loadLocked(ctx); err != nil {
		return model.Preset{}, err
	}
	updated := append(slices.Clone(manager.presets), preset)
	if err := manager.store.SavePresets(ctx, updated); err != nil {
		return model.Preset{}, err
	}
	manager.presets = updated
	manager.publish()
	return preset, nil
}

// Remove deletes the preset with id.
func (manager *Manager) Remove(ctx context.Context, id string) error {
	manager.mu.Lock()
	defer manager.mu.Unlock()
	if err := manager.loadLocked(ctx); err != nil {
		return err
	}
	index := manager.indexLocked(id)
	if index < 0 {
		return fmt.Errorf("%w: %s", ErrPresetNotFound, id)
	}
	updated := slices.Delete(slices.Clone(manager.presets), index, index+1)
	if err := manager.store.SavePresets(ctx, updated); err != nil {
		return err
	}
	manager.presets = updated
	manager.publish()
	return nil
}

func (manager *Manager) publish() {
	if manager.publisher != nil {
		manager.publisher.Publish(model.PresetsKey)
	}
}

func (manager *Manager) loadLocked(ctx context.Context) error {
	if manager.loaded {
		return nil
	}
	presets, err := manager.store.LoadPresets(ctx)
	if err != nil {
		return err
	}
	manager.presets = presets
	manager.loaded = true
	return nil
}

func (manager *Manager) indexLocked(id string) int {
	return slices.IndexFunc(manager.presets, func(preset model.Preset) bool {
		return preset.ID == id
	})
}
