// Package termfe is a frontend that draws the display in a terminal with
// half-block characters and reads keys from raw-mode standard input.
package termfe

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/go-logr/logr"
	"golang.org/x/term"

	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/keymap"
)

// Terminal control sequences.
const (
	seqHome       = "\x1b[H"
	seqClear      = "\x1b[2J"
	seqHideCursor = "\x1b[?25l"
	seqShowCursor = "\x1b[?25h"
	seqBell       = "\a"
)

// ctrlC ends the session like the quit key, since raw mode swallows SIGINT.
const ctrlC = 0x03

// Config holds terminal parameters.
type Config struct {
	In     io.Reader
	Out    io.Writer
	Layout *keymap.Layout
	// HoldFrames is how long a key counts as held after its last repeat.
	// Terminals report presses only. Default: 6.
	HoldFrames int
	Log        logr.Logger
}

// DefaultConfig returns a configuration on standard input and output.
func DefaultConfig() Config {
	return Config{
		In:         os.Stdin,
		Out:        os.Stdout,
		HoldFrames: 6,
	}
}

// Frontend is a terminal frontend.
type Frontend struct {
	config Config
	keys   *frontend.KeyState
	out    *bufio.Writer

	fd       int
	oldState *term.State

	mu     sync.Mutex
	runes  []rune
	closed bool

	// deferred holds presses of keys released in the previous poll.
	deferred []rune

	hold  [emu.KeyCount]int
	names [emu.KeyCount]string
	sound bool
}

// New prepares the terminal. When In is a terminal it is put in raw mode
// until Close.
func New(config Config) (*Frontend, error) {
	defaults := DefaultConfig()
	if config.In == nil {
		config.In = defaults.In
	}
	if config.Out == nil {
		config.Out = defaults.Out
	}
	if config.HoldFrames <= 0 {
		config.HoldFrames = defaults.HoldFrames
	}

	f := &Frontend{
		config: config,
		keys:   frontend.NewKeyState(config.Layout),
		out:    bufio.NewWriter(config.Out),
		fd:     -1,
	}

	if file, ok := config.In.(*os.File); ok && term.IsTerminal(int(file.Fd())) {
		f.fd = int(file.Fd())
		state, err := term.MakeRaw(f.fd)
		if err != nil {
			return nil, fmt.Errorf("raw terminal: %w", err)
		}
		f.oldState = state

		if w, h, err := term.GetSize(f.fd); err == nil && (w < emu.DisplayWidth || h < emu.DisplayHeight/2) {
			config.Log.Info("terminal smaller than display", "columns", w, "rows", h)
		}
	}

	_, _ = f.out.WriteString(seqClear + seqHideCursor)
	_ = f.out.Flush()

	go f.readKeys()

	return f, nil
}

// readKeys collects typed runes until In fails or the frontend closes.
func (f *Frontend) readKeys() {
	r := bufio.NewReader(f.config.In)
	for {
		ch, _, err := r.ReadRune()
		if err != nil {
			return
		}

		f.mu.Lock()
		if f.closed {
			f.mu.Unlock()
			return
		}
		f.runes = append(f.runes, ch)
		f.mu.Unlock()
	}
}

// runeName turns a typed character into a layout key name.
func runeName(ch rune) string {
	if ch == ' ' {
		return keymap.QuitKey
	}
	return strings.ToUpper(string(ch))
}

// Poll applies the characters typed since the last call. A key stays down
// for HoldFrames polls after its last press. A key whose hold runs out is
// reported up for one poll before a new press of it takes effect.
func (f *Frontend) Poll() (frontend.Input, error) {
	f.mu.Lock()
	runes := append(f.deferred, f.runes...)
	f.runes = nil
	f.mu.Unlock()
	f.deferred = nil

	var released [emu.KeyCount]bool
	for i := range f.hold {
		if f.hold[i] > 0 {
			f.hold[i]--
			if f.hold[i] == 0 {
				f.keys.Event(f.names[i], false)
				released[i] = true
			}
		}
	}

	for _, ch := range runes {
		if ch == ctrlC {
			f.keys.Quit()
			continue
		}
		name := runeName(ch)
		key, bound := f.keys.Layout().Lookup(name)
		if bound && released[key] {
			f.deferred = append(f.deferred, ch)
			continue
		}
		f.keys.Event(name, true)
		if bound {
			f.hold[key] = f.config.HoldFrames
			f.names[key] = name
		}
	}

	return f.keys.Input(), nil
}

// Present redraws the display in place.
func (f *Frontend) Present(fb emu.Framebuffer) error {
	if _, err := f.out.WriteString(seqHome); err != nil {
		return err
	}
	if _, err := f.out.WriteString(Render(&fb)); err != nil {
		return err
	}
	return f.out.Flush()
}

// SetSound rings the terminal bell when the tone starts.
func (f *Frontend) SetSound(on bool) {
	if on && !f.sound {
		_, _ = f.out.WriteString(seqBell)
		_ = f.out.Flush()
	}
	f.sound = on
}

// Close restores the terminal.
func (f *Frontend) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()

	_, _ = f.out.WriteString(seqShowCursor + "\r\n")
	err := f.out.Flush()

	if f.oldState != nil {
		if rerr := term.Restore(f.fd, f.oldState); rerr != nil {
			return fmt.Errorf("restore terminal: %w", rerr)
		}
	}
	return err
}

// Render draws fb as 16 lines of 64 characters, two pixel rows per line.
// Lines end in "\r\n" so output is correct in raw mode.
func Render(fb *emu.Framebuffer) string {
	var sb strings.Builder
	sb.Grow(emu.DisplayHeight / 2 * (emu.DisplayWidth*3 + 2))

	for y := 0; y < emu.DisplayHeight; y += 2 {
		for x := 0; x < emu.DisplayWidth; x++ {
			top, bottom := fb[y][x], fb[y+1][x]
			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
