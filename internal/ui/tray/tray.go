package tray

import (
	"context"
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/systray"

	"timemate/internal/core/countdown"
	"timemate/internal/core/hms"
	"timemate/internal/core/model"
	"timemate/internal/core/observer"
	"timemate/resources"
)

// Callbacks defines tray action handlers.
type Callbacks struct {
	OnShow     func()
	OnStart    func()
	OnPause    func()
	OnReset    func()
	OnPreset   func(id string)
	OnSettings func()
	OnQuit     func()
}

// Manager handles system tray state.
type Manager struct {
	app         desktop.App
	statusItem  *fyne.MenuItem
	startItem   *fyne.MenuItem
	pauseItem   *fyne.MenuItem
	presetsItem *fyne.MenuItem
	callbacks   Callbacks
	presets     []model.Preset
	snapshot    model.Snapshot
	setTitle    func(string)
	setTooltip  func(string)

	badgeMu sync.Mutex
	badge   countdown.Badge
	ready   bool
}

// New creates a tray manager with the provided callbacks. A nil app gives a
// manager that tracks state without a visible tray.
func New(app desktop.App, callbacks Callbacks) *Manager {
	manager := &Manager{
		app:        app,
		callbacks:  callbacks,
		snapshot:   model.DefaultSnapshot(),
		setTitle:   func(string) {},
		setTooltip: func(string) {},
	}
	if app != nil {
		manager.setTitle = systray.SetTitle
		manager.setTooltip = systray.SetTooltip
	}

	manager.statusItem = fyne.NewMenuItem("", manager.action(func(c Callbacks) func() { return c.OnShow }))
	manager.startItem = fyne.NewMenuItem("Start", manager.action(func(c Callbacks) func() { return c.OnStart }))
	manager.pauseItem = fyne.NewMenuItem("Pause", manager.action(func(c Callbacks) func() { return c.OnPause }))
	manager.presetsItem = fyne.NewMenuItem("Presets", nil)

	manager.refreshStatus()
	manager.refreshPresets()
	manager.refreshMenu()

	return manager
}

// SetCallbacks replaces the action handlers.
func (manager *Manager) SetCallbacks(callbacks Callbacks) {
	manager.callbacks = callbacks
	manager.refreshMenu()
}

// Start marks the native tray as running and shows the pending badge. Call
// it once the fyne app has started.
func (manager *Manager) Start() {
	manager.badgeMu.Lock()
	defer manager.badgeMu.Unlock()
	manager.ready = true
	manager.applyBadgeLocked()
}

// SetSnapshot updates the status item and the start/pause toggles. Call it
// on the fyne goroutine.
func (manager *Manager) SetSnapshot(snapshot model.Snapshot) {
	running := manager.snapshot.Running
	manager.snapshot = snapshot
	manager.refreshStatus()
	manager.refreshMenu()
	if manager.app != nil && running != snapshot.Running {
		manager.app.SetSystemTrayIcon(resources.TrayIcon(snapshot.Running))
	}
}

// SetPresets replaces the presets submenu.
func (manager *Manager) SetPresets(presets []model.Preset) {
	manager.presets = append([]model.Preset(nil), presets...)
	manager.refreshPresets()
	manager.refreshMenu()
}

// SetBadge shows the badge next to the tray icon. An empty badge clears it.
// Badges set before Start are held until then.
func (manager *Manager) SetBadge(badge countdown.Badge) {
	manager.badgeMu.Lock()
	defer manager.badgeMu.Unlock()
	manager.badge = badge
	if manager.ready {
		manager.applyBadgeLocked()
	}
}

func (manager *Manager) applyBadgeLocked() {
	manager.setTitle(manager.badge.Text)
	if manager.badge.Text == "" {
		manager.setTooltip("TimeMate")
		return
	}
	manager.setTooltip("TimeMate " + manager.badge.Text)
}

// Follow re-renders the tray after every change notification until ctx is
// done or the hub closes. presets may be nil.
func (manager *Manager) Follow(ctx context.Context, hub *observer.Hub, snapshots func() model.Snapshot, presets func() []model.Preset) {
	subscription := hub.Subscribe(4)
	defer hub.Unsubscribe(subscription.ID)

	renderSnapshot := func() {
		snapshot := snapshots()
		fyne.Do(func() {
			manager.SetSnapshot(snapshot)
		})
	}
	renderPresets := func() {
		if presets == nil {
			return
		}
		list := presets()
		fyne.Do(func() {
			manager.SetPresets(list)
		})
	}
	renderPresets()
	renderSnapshot()

	for {
		select {
		case <-ctx.Done():
			return
		case notification, ok := <-subscription.C:
			if !ok {
				return
			}
			switch notification.Key {
			case model.StateKey:
				renderSnapshot()
			case model.PresetsKey:
				renderPresets()
			}
		}
	}
}

func (manager *Manager) refreshStatus() {
	state := "paused"
	switch {
	case manager.snapshot.Running:
		state = "running"
	case manager.snapshot.Remaining == 0:
		state = "finished"
	}
	manager.statusItem.Label = fmt.Sprintf("%s (%s)", hms.Format(manager.snapshot.Remaining), state)
	manager.startItem.Disabled = manager.snapshot.Running
	manager.pauseItem.Disabled = !manager.snapshot.Running
}

func (manager *Manager) refreshPresets() {
	if len(manager.presets) == 0 {
		empty := fyne.NewMenuItem("No presets", nil)
		empty.Disabled = true
		manager.presetsItem.ChildMenu = fyne.NewMenu("", empty)
		return
	}

	items := make([]*fyne.MenuItem, 0, len(manager.presets))
	for _, preset := range manager.presets {
		id := preset.ID
		items = append(items, fyne.NewMenuItem(fmt.Sprintf("%s  %s", preset.Name, preset.Duration), func() {
			if manager.callbacks.OnPreset != nil {
				manager.callbacks.OnPreset(id)
			}
		}))
	}
	manager.presetsItem.ChildMenu = fyne.NewMenu("", items...)
}

func (manager *Manager) menu() *fyne.Menu {
	quit := fyne.NewMenuItem("Quit", manager.action(func(c Callbacks) func() { return c.OnQuit }))
	quit.IsQuit = true

	return fyne.NewMenu("TimeMate",
		manager.statusItem,
		fyne.NewMenuItemSeparator(),
		manager.startItem,
		manager.pauseItem,
		fyne.NewMenuItem("Reset", manager.action(func(c Callbacks) func() { return c.OnReset })),
		manager.presetsItem,
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Settings", manager.action(func(c Callbacks) func() { return c.OnSettings })),
		quit,
	)
}

// action resolves the handler when the item is clicked, so SetCallbacks
// applies to existing items.
func (manager *Manager) action(pick func(Callbacks) func()) func() {
	return func() {
		if handler := pick(manager.callbacks); handler != nil {
			handler()
		}
	}
}

func (manager *Manager) refreshMenu() {
	if manager.app != nil {
		manager.app.SetSystemTrayMenu(manager.menu())
	}
}
