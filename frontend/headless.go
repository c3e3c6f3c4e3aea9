package frontend

import (
	"sync"

	"github.com/chip8vm/chip8/emu"
)

// Headless is a Frontend without any device. Input is injected with Press
// and RequestQuit, and presented frames are kept for inspection.
type Headless struct {
	mu       sync.Mutex
	input    Input
	last     emu.Framebuffer
	presents int
	sound    bool
	toggles  int
	closed   bool
}

// NewHeadless creates a headless frontend.
func NewHeadless() *Headless {
	return &Headless{}
}

// Press sets the level of keypad key index.
func (h *Headless) Press(index uint8, down bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.input.Keys[index&0xF] = down
}

// RequestQuit makes the next Poll report a quit.
func (h *Headless) RequestQuit() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.input.Quit = true
}

// Poll returns the injected input.
func (h *Headless) Poll() (Input, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.input, nil
}

// Present records fb as the last frame.
func (h *Headless) Present(fb emu.Framebuffer) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.last = fb
	h.presents++
	return nil
}

// SetSound records the sound state.
func (h *Headless) SetSound(on bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.sound = on
	h.toggles++
}

// Close marks the frontend closed.
func (h *Headless) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	return nil
}

// Last returns the most recently presented frame.
func (h *Headless) Last() emu.Framebuffer {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.last
}

// Presents returns the number of frames presented.
func (h *Headless) Presents() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.presents
}

// Sound returns the last sound state and how many times it changed.
func (h *Headless) Sound() (on bool, toggles int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sound, h.toggles
}

// Closed reports whether Close was called.
func (h *Headless) Closed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}
