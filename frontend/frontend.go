// Package frontend defines how the driver talks to a display, keyboard and
// speaker, and provides a headless implementation.
package frontend

import (
	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/keymap"
)

// Input is the host input sampled once per frame.
type Input struct {
	// Keys holds the level of each keypad key.
	Keys [emu.KeyCount]bool
	// Quit is set when the user asked to end the session.
	Quit bool
}

// Frontend presents frames and collects input. All methods are called from
// the driver's goroutine.
type Frontend interface {
	// Poll returns the current input state.
	Poll() (Input, error)
	// Present shows a frame.
	Present(fb emu.Framebuffer) error
	// SetSound turns the tone on or off. It is called on changes only.
	SetSound(on bool)
	// Close releases the frontend's resources.
	Close() error
}

// Looper is a Frontend that owns the main loop, such as a game engine that
// must run on the main thread. The driver hands it a frame callback instead
// of pacing frames itself. Loop returns when frame reports false or fails.
type Looper interface {
	Frontend
	Loop(frame func() (bool, error)) error
}

// KeyState tracks keypad levels from named host key events.
type KeyState struct {
	layout *keymap.Layout
	input  Input
}

// NewKeyState creates a KeyState using layout, or QWERTY when layout is nil.
func NewKeyState(layout *keymap.Layout) *KeyState {
	if layout == nil {
		layout = keymap.QWERTY()
	}
	return &KeyState{layout: layout}
}

// Layout returns the key layout.
func (k *KeyState) Layout() *keymap.Layout {
	return k.layout
}

// Event records a host key going down or up. Unbound keys are ignored.
func (k *KeyState) Event(name string, down bool) {
	if keymap.IsQuit(name) {
		if down {
			k.input.Quit = true
		}
		return
	}
	if key, ok := k.layout.Lookup(name); ok {
		k.input.Keys[key] = down
	}
}

// Quit records a quit request from outside the keyboard, such as a window
// close.
func (k *KeyState) Quit() {
	k.input.Quit = true
}

// ReleaseAll releases every keypad key.
func (k *KeyState) ReleaseAll() {
	k.input.Keys = [emu.KeyCount]bool{}
}

// Input returns the current state.
func (k *KeyState) Input() Input {
	return k.input
}
