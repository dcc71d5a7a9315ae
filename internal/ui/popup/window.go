// Package popup is the compact countdown window: the time readout, a
// duration entry and the start/pause/reset controls.
package popup

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"timemate/internal/core/hms"
	"timemate/internal/core/model"
)

// Controller is the subset of the countdown service the window drives.
type Controller interface {
	Get() model.Snapshot
	SetInput(value string) model.Snapshot
	Start() model.Snapshot
	Pause() model.Snapshot
	Reset() model.Snapshot
}

// Config defines popup visuals.
type Config struct {
	WarnThreshold int
}

// Window manages the popup UI.
type Window struct {
	window      fyne.Window
	config      Config
	controller  Controller
	timeText    *canvas.Text
	stateText   *canvas.Text
	input       *widget.Entry
	startButton *widget.Button
	pauseButton *widget.Button
	resetButton *widget.Button
	lastInput   string
}

var (
	colorNormal  = color.NRGBA{R: 0x60, G: 0xa5, B: 0xfa, A: 0xff}
	colorWarning = color.NRGBA{R: 0xf8, G: 0x71, B: 0x71, A: 0xff}
	colorIdle    = color.NRGBA{R: 0xe5, G: 0xe7, B: 0xeb, A: 0xff}
)

// New creates the popup window. It starts hidden.
func New(app fyne.App, controller Controller, config Config) *Window {
	window := app.NewWindow("TimeMate")
	if app.Icon() != nil {
		window.SetIcon(app.Icon())
	}

	timeText := canvas.NewText(hms.Format(0), colorIdle)
	timeText.Alignment = fyne.TextAlignCenter
	timeText.TextStyle = fyne.TextStyle{Bold: true, Monospace: true}
	timeText.TextSize = 36

	stateText := canvas.NewText("", colorIdle)
	stateText.Alignment = fyne.TextAlignCenter
	stateText.TextSize = 12

	input := widget.NewEntry()
	input.SetPlaceHolder("HH:MM:SS")

	popup := &Window{
		window:     window,
		config:     config,
		controller: controller,
		timeText:   timeText,
		stateText:  stateText,
		input:      input,
	}

	input.OnSubmitted = func(text string) {
		popup.setSnapshotUnsafe(popup.controller.SetInput(text))
	}
	popup.startButton = widget.NewButton("Start", func() {
		if popup.input.Text != popup.lastInput {
			popup.controller.SetInput(popup.input.Text)
		}
		popup.setSnapshotUnsafe(popup.controller.Start())
	})
	popup.pauseButton = widget.NewButton("Pause", func() {
		popup.setSnapshotUnsafe(popup.controller.Pause())
	})
	popup.resetButton = widget.NewButton("Reset", func() {
		popup.setSnapshotUnsafe(popup.controller.Reset())
	})

	buttons := container.NewGridWithColumns(3, popup.startButton, popup.pauseButton, popup.resetButton)
	readout := container.New(&readoutLayout{}, timeText, stateText)
	window.SetContent(container.NewVBox(readout, input, buttons))
	window.Resize(fyne.NewSize(280, 200))
	window.SetFixedSize(true)
	window.SetCloseIntercept(func() {
		window.Hide()
	})

	popup.setSnapshotUnsafe(controller.Get())
	return popup
}

// Show displays the window with the current snapshot.
func (popup *Window) Show() {
	popup.setSnapshotUnsafe(popup.controller.Get())
	popup.window.Show()
	popup.window.RequestFocus()
}

// Hide hides the window.
func (popup *Window) Hide() {
	popup.window.Hide()
}

// SetSnapshot renders a snapshot. Safe to call from any goroutine.
func (popup *Window) SetSnapshot(snapshot model.Snapshot) {
	fyne.Do(func() {
		popup.setSnapshotUnsafe(snapshot)
	})
}

// UpdateConfig updates popup visuals.
func (popup *Window) UpdateConfig(config Config) {
	fyne.Do(func() {
		popup.config = config
		popup.setSnapshotUnsafe(popup.controller.Get())
	})
}

func (popup *Window) setSnapshotUnsafe(snapshot model.Snapshot) {
	popup.timeText.Text = hms.Format(snapshot.Remaining)
	popup.timeText.Color = popup.colorFor(snapshot)
	popup.timeText.Refresh()

	switch {
	case snapshot.Running:
		popup.stateText.Text = "running"
	case snapshot.Remaining == 0:
		popup.stateText.Text = "finished"
	default:
		popup.stateText.Text = "paused"
	}
	popup.stateText.Refresh()

	// Leave the entry alone while the user edits it unless the stored input moved.
	if snapshot.Input != popup.lastInput {
		popup.lastInput = snapshot.Input
		popup.input.SetText(snapshot.Input)
	}

	if snapshot.Running {
		popup.startButton.Disable()
		popup.pauseButton.Enable()
	} else {
		popup.startButton.Enable()
		popup.pauseButton.Disable()
	}
}

func (popup *Window) colorFor(snapshot model.Snapshot) color.Color {
	if !snapshot.Running {
		return colorIdle
	}
	if snapshot.Remaining <= popup.config.WarnThreshold {
		return colorWarning
	}
	return colorNormal
}

type readoutLayout struct{}

func (layout *readoutLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	if len(objects) < 2 {
		return
	}
	timer := objects[0]
	state := objects[1]

	timerSize := timer.MinSize()
	stateSize := state.MinSize()
	pad := (size.Height - timerSize.Height - stateSize.Height) / 2
	if pad < 0 {
		pad = 0
	}

	timer.Move(fyne.NewPos(0, pad))
	timer.Resize(fyne.NewSize(size.Width, timerSize.Height))
	state.Move(fyne.NewPos(0, pad+timerSize.Height))
	state.Resize(fyne.NewSize(size.Width, stateSize.Height))
}

func (layout *readoutLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	if len(objects) < 2 {
		return fyne.NewSize(0, 0)
	}
	timerSize := objects[0].MinSize()
	stateSize := objects[1].MinSize()
	width := timerSize.Width
	if stateSize.Width > width {
		width = stateSize.Width
	}
	return fyne.NewSize(width+20, timerSize.Height+stateSize.Height+16)
}
