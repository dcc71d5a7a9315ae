package tray

import (
	"context"
	"testing"
	"time"

	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"timemate/internal/core/countdown"
	"timemate/internal/core/model"
	"timemate/internal/core/observer"
)

func TestStatusFollowsSnapshot(t *testing.T) {
	manager := New(nil, Callbacks{})
	assert.Equal(t, "00:25:00 (paused)", manager.statusItem.Label)
	assert.False(t, manager.startItem.Disabled)
	assert.True(t, manager.pauseItem.Disabled)

	manager.SetSnapshot(model.Snapshot{Input: "00:25:00", Remaining: 1499, Running: true})
	assert.Equal(t, "00:24:59 (running)", manager.statusItem.Label)
	assert.True(t, manager.startItem.Disabled)
	assert.False(t, manager.pauseItem.Disabled)

	manager.SetSnapshot(model.Snapshot{Input: "00:25:00", Remaining: 0})
	assert.Equal(t, "00:00:00 (finished)", manager.statusItem.Label)
}

func TestPresetsSubmenu(t *testing.T) {
	var applied string
	manager := New(nil, Callbacks{OnPreset: func(id string) { applied = id }})

	items := manager.presetsItem.ChildMenu.Items
	require.Len(t, items, 1)
	assert.True(t, items[0].Disabled)

	manager.SetPresets([]model.Preset{
		{ID: "a", Name: "Tea", Duration: "00:03:00"},
		{ID: "b", Name: "Focus", Duration: "00:50:00"},
	})
	items = manager.presetsItem.ChildMenu.Items
	require.Len(t, items, 2)
	assert.Equal(t, "Focus  00:50:00", items[1].Label)

	items[1].Action()
	assert.Equal(t, "b", applied)
}

func TestMenuLayout(t *testing.T) {
	quit := false
	manager := New(nil, Callbacks{OnQuit: func() { quit = true }})

	menu := manager.menu()
	last := menu.Items[len(menu.Items)-1]
	assert.True(t, last.IsQuit)
	last.Action()
	assert.True(t, quit)
}

func TestBadge(t *testing.T) {
	manager := New(nil, Callbacks{})
	var title, tooltip string
	manager.setTitle = func(s string) { title = s }
	manager.setTooltip = func(s string) { tooltip = s }

	// held until the tray is up
	manager.SetBadge(countdown.Badge{Text: "0:30", Color: countdown.BadgeColorNormal})
	assert.Empty(t, title)
	manager.Start()
	assert.Equal(t, "0:30", title)

	manager.SetBadge(countdown.Badge{Text: "0:09", Color: countdown.BadgeColorWarning})
	assert.Equal(t, "0:09", title)
	assert.Equal(t, "TimeMate 0:09", tooltip)

	manager.SetBadge(countdown.Badge{})
	assert.Empty(t, title)
	assert.Equal(t, "TimeMate", tooltip)
}

func TestSetCallbacksAppliesToExistingItems(t *testing.T) {
	manager := New(nil, Callbacks{})
	started := false
	manager.SetCallbacks(Callbacks{OnStart: func() { started = true }})

	manager.startItem.Action()
	assert.True(t, started)
}

func TestFollowRendersOnChange(t *testing.T) {
	app := test.NewApp()
	t.Cleanup(app.Quit)

	hub := observer.NewHub()
	timer := countdown.New(model.CountdownConfig{TickInterval: time.Hour}, countdown.Options{Publisher: hub})
	t.Cleanup(timer.Close)

	manager := New(nil, Callbacks{})
	fetched := make(chan model.Snapshot, 8)
	source := func() model.Snapshot {
		snapshot := timer.Get()
		fetched <- snapshot
		return snapshot
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		manager.Follow(ctx, hub, source, nil)
		close(done)
	}()

	select {
	case snapshot := <-fetched:
		assert.Equal(t, 1500, snapshot.Remaining)
	case <-time.After(5 * time.Second):
		t.Fatal("no render on follow")
	}

	timer.SetInput("00:00:42")
	select {
	case snapshot := <-fetched:
		assert.Equal(t, 42, snapshot.Remaining)
	case <-time.After(5 * time.Second):
		t.Fatal("no render after change")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("follow did not return")
	}
}
