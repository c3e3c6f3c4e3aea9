// Package sdlfe is a windowed frontend built on SDL2, with the tone played
// through a queued SDL audio device.
//
// SDL must be driven from the main OS thread; the caller is expected to
// lock it before calling New.
package sdlfe

import (
	"fmt"
	"math"

	"github.com/go-logr/logr"
	"github.com/veandco/go-sdl2/sdl"

	"github.com/chip8vm/chip8/audio"
	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/keymap"
)

// Config holds window and audio parameters.
type Config struct {
	Title      string
	Style      frontend.Style
	Layout     *keymap.Layout
	SampleRate int
	// NoAudio skips opening the audio device.
	NoAudio bool
	Log     logr.Logger
}

// DefaultConfig returns the default SDL configuration.
func DefaultConfig() Config {
	return Config{
		Title:      "CHIP-8",
		Style:      frontend.DefaultStyle(),
		SampleRate: audio.DefaultSampleRate,
	}
}

// Frontend is an SDL window.
type Frontend struct {
	config   Config
	keys     *frontend.KeyState
	window   *sdl.Window
	renderer *sdl.Renderer
	rects    []sdl.Rect

	audioID  sdl.AudioDeviceID
	audioOK  bool
	osc      *audio.Oscillator
	sound    bool
	samples  []byte
	perFrame int
}

// New opens the window and, unless disabled, the audio device.
func New(config Config) (*Frontend, error) {
	defaults := DefaultConfig()
	if config.SampleRate <= 0 {
		config.SampleRate = defaults.SampleRate
	}
	if config.Style.Scale <= 0 {
		config.Style = defaults.Style
	}
	if config.Title == "" {
		config.Title = defaults.Title
	}

	flags := uint32(sdl.INIT_VIDEO)
	if !config.NoAudio {
		flags |= sdl.INIT_AUDIO
	}
	if err := sdl.Init(flags); err != nil {
		return nil, fmt.Errorf("sdl init: %w", err)
	}

	f := &Frontend{
		config: config,
		keys:   frontend.NewKeyState(config.Layout),
	}

	w, h := config.Style.Size()
	var err error
	f.window, err = sdl.CreateWindow(config.Title,
		int32(sdl.WINDOWPOS_UNDEFINED), int32(sdl.WINDOWPOS_UNDEFINED),
		int32(w), int32(h),
		uint32(sdl.WINDOW_SHOWN))
	if err != nil {
		sdl.Quit()
		return nil, fmt.Errorf("sdl window: %w", err)
	}

	f.renderer, err = sdl.CreateRenderer(f.window, -1, uint32(sdl.RENDERER_ACCELERATED))
	if err != nil {
		_ = f.window.Destroy()
		sdl.Quit()
		return nil, fmt.Errorf("sdl renderer: %w", err)
	}

	if !config.NoAudio {
		if err := f.openAudio(); err != nil {
			config.Log.Error(err, "audio disabled")
		}
	}

	return f, nil
}

func (f *Frontend) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     int32(f.config.SampleRate),
		Format:   sdl.AUDIO_U8,
		Channels: 1,
		Samples:  1024,
	}

	var actual sdl.AudioSpec
	id, err := sdl.OpenAudioDevice("", false, spec, &actual, 0)
	if err != nil {
		return fmt.Errorf("sdl audio: %w", err)
	}

	f.audioID = id
	f.audioOK = true
	f.osc = audio.NewOscillator(int(actual.Freq), audio.DefaultFrequency, audio.DefaultVolume)
	f.perFrame = int(actual.Freq) / 60
	f.samples = make([]byte, f.perFrame)
	sdl.PauseAudioDevice(id, false)
	return nil
}

// Poll drains the SDL event queue.
func (f *Frontend) Poll() (frontend.Input, error) {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			f.keys.Quit()
		case *sdl.KeyboardEvent:
			if ev.Repeat != 0 {
				continue
			}
			f.keys.Event(sdl.GetKeyName(ev.Keysym.Sym), ev.Type == sdl.KEYDOWN)
		}
	}
	return f.keys.Input(), nil
}

// Present draws fb and queues one frame of audio.
func (f *Frontend) Present(fb emu.Framebuffer) error {
	s := f.config.Style
	bg, fg := s.Background, s.Foreground

	if err := f.renderer.SetDrawColor(bg.R, bg.G, bg.B, bg.A); err != nil {
		return err
	}
	if err := f.renderer.Clear(); err != nil {
		return err
	}

	f.rects = f.rects[:0]
	for y := 0; y < emu.DisplayHeight; y++ {
		for x := 0; x < emu.DisplayWidth; x++ {
			if !fb[y][x] {
				continue
			}
			c := s.Cell(x, y)
			f.rects = append(f.rects, sdl.Rect{
				X: int32(c.Min.X), Y: int32(c.Min.Y),
				W: int32(c.Dx()), H: int32(c.Dy()),
			})
		}
	}

	if len(f.rects) > 0 {
		if err := f.renderer.SetDrawColor(fg.R, fg.G, fg.B, fg.A); err != nil {
			return err
		}
		if err := f.renderer.FillRects(f.rects); err != nil {
			return err
		}
	}
	f.renderer.Present()

	return f.queueAudio()
}

// queueAudio keeps roughly two frames of samples queued.
func (f *Frontend) queueAudio() error {
	if !f.audioOK || !f.sound {
		return nil
	}
	if sdl.GetQueuedAudioSize(f.audioID) > uint32(2*f.perFrame) {
		return nil
	}

	for i := range f.samples {
		// Unsigned 8-bit centred on 128.
		f.samples[i] = uint8(128 + math.Round(f.osc.Next()*127))
	}
	return sdl.QueueAudio(f.audioID, f.samples)
}

// SetSound switches the tone. Switching off drops queued samples.
func (f *Frontend) SetSound(on bool) {
	f.sound = on
	if !on && f.audioOK {
		sdl.ClearQueuedAudio(f.audioID)
	}
}

// Close destroys the window and shuts SDL down.
func (f *Frontend) Close() error {
	if f.audioOK {
		sdl.CloseAudioDevice(f.audioID)
	}
	if f.renderer != nil {
		_ = f.renderer.Destroy()
	}
	if f.window != nil {
		_ = f.window.Destroy()
	}
	sdl.Quit()
	return nil
}
