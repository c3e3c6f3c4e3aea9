// Package ebitenfe is a windowed frontend built on Ebitengine.
//
// Ebitengine owns the main loop, so the frontend implements
// frontend.Looper: the driver's frame callback runs inside Update.
package ebitenfe

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.design/x/clipboard"
	"golang.org/x/image/font/basicfont"

	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/keymap"
)

// statusBarHeight is the height of the status line under the display.
const statusBarHeight = 18

// Config holds window parameters.
type Config struct {
	Title  string
	Style  frontend.Style
	Layout *keymap.Layout
	// Fast disables vsync so frames are not held to the display rate.
	Fast bool
	Log  logr.Logger
}

// DefaultConfig returns the default window configuration.
func DefaultConfig() Config {
	return Config{
		Title: "CHIP-8",
		Style: frontend.DefaultStyle(),
	}
}

// boundKey pairs an Ebitengine key with its layout name.
type boundKey struct {
	key  ebiten.Key
	name string
}

// Frontend is an Ebitengine window.
type Frontend struct {
	config Config
	keys   *frontend.KeyState
	bound  []boundKey

	mu      sync.Mutex
	frame   emu.Framebuffer
	pixels  *image.RGBA
	canvas  *ebiten.Image
	sound   bool
	status  bool
	frameFn func() (bool, error)
	err     error

	clipboardOnce sync.Once
	clipboardOK   bool
}

// New creates a window frontend. The window opens when Loop is called.
func New(config Config) *Frontend {
	defaults := DefaultConfig()
	if config.Style.Scale <= 0 {
		config.Style = defaults.Style
	}
	if config.Title == "" {
		config.Title = defaults.Title
	}

	f := &Frontend{
		config: config,
		keys:   frontend.NewKeyState(config.Layout),
		status: true,
	}
	f.bound = bindKeys(f.keys.Layout())
	return f
}

// bindKeys resolves layout names to Ebitengine keys. Single digits name
// the top-row digit keys.
func bindKeys(layout *keymap.Layout) []boundKey {
	byName := make(map[string]ebiten.Key)
	for k := ebiten.Key(0); k <= ebiten.KeyMax; k++ {
		if name := k.String(); name != "" {
			byName[keyName(name)] = k
		}
	}

	var out []boundKey
	for _, b := range layout.Bindings() {
		name := b.Name
		if len(name) == 1 && name[0] >= '0' && name[0] <= '9' {
			name = "Digit" + name
		}
		if k, ok := byName[keyName(name)]; ok {
			out = append(out, boundKey{key: k, name: b.Name})
		}
	}
	return out
}

func keyName(s string) string {
	return strings.ToUpper(s)
}

// Loop opens the window and runs frame once per tick until it reports false,
// fails or the window is closed.
func (f *Frontend) Loop(frame func() (bool, error)) error {
	f.frameFn = frame

	w, h := f.config.Style.Size()
	ebiten.SetWindowSize(w, h+statusBarHeight)
	ebiten.SetWindowTitle(f.config.Title)
	ebiten.SetRunnableOnUnfocused(true)
	ebiten.SetTPS(60)
	ebiten.SetVsyncEnabled(!f.config.Fast)

	if err := ebiten.RunGame(f); err != nil {
		return fmt.Errorf("ebiten: %w", err)
	}
	return f.err
}

// Update implements ebiten.Game.
func (f *Frontend) Update() error {
	if ebiten.IsWindowBeingClosed() {
		f.keys.Quit()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		f.keys.Quit()
	}
	if ebiten.IsFocused() {
		for _, b := range f.bound {
			f.keys.Event(b.name, ebiten.IsKeyPressed(b.key))
		}
	} else {
		f.keys.ReleaseAll()
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyF11) {
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF10) {
		f.mu.Lock()
		f.status = !f.status
		f.mu.Unlock()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF12) {
		f.copyScreenshot()
	}

	if f.frameFn == nil {
		return nil
	}
	more, err := f.frameFn()
	if err != nil {
		f.err = err
		return ebiten.Termination
	}
	if !more {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game.
func (f *Frontend) Draw(screen *ebiten.Image) {
	f.mu.Lock()
	f.pixels = frontend.Render(f.pixels, &f.frame, f.config.Style)
	sound := f.sound
	status := f.status
	f.mu.Unlock()

	if f.canvas == nil {
		w, h := f.config.Style.Size()
		f.canvas = ebiten.NewImage(w, h)
	}
	f.canvas.WritePixels(f.pixels.Pix)
	screen.DrawImage(f.canvas, nil)

	if status {
		f.drawStatusBar(screen, sound)
	}
}

func (f *Frontend) drawStatusBar(screen *ebiten.Image, sound bool) {
	_, h := f.config.Style.Size()
	line := fmt.Sprintf("TPS %.0f  FPS %.0f", ebiten.ActualTPS(), ebiten.ActualFPS())
	text.Draw(screen, line, basicfont.Face7x13, 4, h+13, color.White)

	if sound {
		w, _ := f.config.Style.Size()
		ebitenutil.DebugPrintAt(screen, "BEEP", w-40, h)
	}
}

// Layout implements ebiten.Game.
func (f *Frontend) Layout(_, _ int) (int, int) {
	w, h := f.config.Style.Size()
	return w, h + statusBarHeight
}

// copyScreenshot puts the current display on the clipboard as a PNG.
func (f *Frontend) copyScreenshot() {
	f.clipboardOnce.Do(func() {
		f.clipboardOK = clipboard.Init() == nil
	})
	if !f.clipboardOK {
		f.config.Log.Info("clipboard unavailable")
		return
	}

	f.mu.Lock()
	img := frontend.Render(nil, &f.frame, f.config.Style)
	f.mu.Unlock()

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		f.config.Log.Error(err, "screenshot encode failed")
		return
	}
	clipboard.Write(clipboard.FmtImage, buf.Bytes())
	f.config.Log.Info("screenshot copied to clipboard")
}

// Poll returns the key state sampled by the last Update.
func (f *Frontend) Poll() (frontend.Input, error) {
	return f.keys.Input(), nil
}

// Present stores fb for the next Draw.
func (f *Frontend) Present(fb emu.Framebuffer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.frame = fb
	return nil
}

// SetSound shows the sound state on the status line.
func (f *Frontend) SetSound(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sound = on
}

// Close is a no-op; the window closes when Loop returns.
func (f *Frontend) Close() error {
	return nil
}
