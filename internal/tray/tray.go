// Package tray provides the system tray interface for Mudra.
package tray

import (
	"fmt"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/bus"
)

// Tray is the system tray application. It shows the last recognized gesture
// and lets the user pause recognition without killing the process.
type Tray struct {
	bus *bus.Bus

	onToggle   func(enabled bool)
	onSettings func()
	onQuit     func()

	mu      sync.RWMutex
	enabled bool
	subID   int

	menuToggle  *systray.MenuItem
	menuGesture *systray.MenuItem
}

// New creates a Tray. The bus may be nil, in which case the last-gesture
// item never updates.
func New(b *bus.Bus) *Tray {
	return &Tray{
		bus:     b,
		enabled: true,
	}
}

// OnToggle registers the callback invoked when recognition is paused or
// resumed from the menu.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnSettings registers the callback invoked when the settings item is
// clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit registers the callback invoked before the tray exits.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the tray and blocks until Quit is selected.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra gesture control")

	t.menuToggle = systray.AddMenuItem("● Recognition on", "Pause or resume gesture recognition")
	systray.AddSeparator()

	t.menuGesture = systray.AddMenuItem("Last: none", "Most recent confirmed gesture")
	t.menuGesture.Disable()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open settings...", "Open the web settings page")
	systray.AddSeparator()
	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	if t.bus != nil {
		t.mu.Lock()
		t.subID = t.bus.Subscribe(t.onGesture, bus.EventGesture)
		t.mu.Unlock()
	}

	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

func (t *Tray) onExit() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.bus != nil && t.subID != 0 {
		t.bus.Unsubscribe(t.subID)
		t.subID = 0
	}
}

// onGesture runs on the bus's publish path.
func (t *Tray) onGesture(evt bus.Event) {
	t.mu.RLock()
	item := t.menuGesture
	t.mu.RUnlock()
	if item != nil {
		item.SetTitle(fmt.Sprintf("Last: %s (%.0f%%)", evt.Gesture, evt.Confidence*100))
	}
}

func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled
	if enabled {
		t.menuToggle.SetTitle("● Recognition on")
	} else {
		t.menuToggle.SetTitle("○ Recognition paused")
	}
	fn := t.onToggle
	t.mu.Unlock()

	if fn != nil {
		fn(enabled)
	}
}

func (t *Tray) handleSettings() {
	t.mu.RLock()
	fn := t.onSettings
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
}

func (t *Tray) handleQuit() {
	t.mu.RLock()
	fn := t.onQuit
	t.mu.RUnlock()
	if fn != nil {
		fn()
	}
	systray.Quit()
}

// IsEnabled reports whether recognition is currently enabled.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}
