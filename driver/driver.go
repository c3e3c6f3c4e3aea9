// Package driver runs an emulator against a frontend in real time.
//
// Each 60 Hz frame the driver samples input, executes one frame's worth of
// instructions, ticks the timers once, forwards the sound state and
// presents the display. Instruction pacing comes either from a fixed
// instructions-per-second rate or from a latency table's cycle budget.
package driver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-logr/logr"

	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/timing/core"
	"github.com/chip8vm/chip8/timing/latency"
)

// FrameRate is the timer and display rate in Hz.
const FrameRate = 60

// FrameDuration is the wall-clock length of one frame.
const FrameDuration = time.Second / FrameRate

// ErrQuit can be returned by a Hook to end the run without an error.
var ErrQuit = errors.New("quit requested")

// SoundSink receives the sound state once per frame.
type SoundSink interface {
	SoundFrame(on bool) error
}

// Hook is called after every frame's instructions and timer tick, before
// the frame is presented.
type Hook interface {
	OnFrame(e *emu.Emulator, frame uint64) error
}

// KeySource holds keypad keys down independently of the frontend. Its keys
// are ORed into the input polled at the start of every frame.
type KeySource interface {
	HeldKeys() [emu.KeyCount]bool
}

// Config holds driver parameters.
type Config struct {
	// InstructionsPerSecond paces execution when Latency is nil.
	// Default: 700.
	InstructionsPerSecond int

	// Latency, when set, paces execution by machine-cycle budget instead.
	Latency *latency.Table

	// Fast runs instructions without frame pacing. Timers and the display
	// still advance at FrameRate.
	Fast bool

	// FastMultiplier is the number of frame budgets executed per frame in
	// fast mode for frontends that own the loop. Default: 10.
	FastMultiplier int

	// MaxFrames stops the run after that many frames. 0 means no limit.
	MaxFrames uint64

	// Log receives lifecycle messages at V(0) and per-frame detail at V(1).
	Log logr.Logger

	// Sinks receive the sound state every frame.
	Sinks []SoundSink

	// Hooks run every frame.
	Hooks []Hook

	// KeySources add held keys to every frame's input.
	KeySources []KeySource
}

// DefaultConfig returns the default driver configuration.
func DefaultConfig() Config {
	return Config{
		InstructionsPerSecond: 700,
		FastMultiplier:        10,
		Log:                   logr.Discard(),
	}
}

// Stats holds run statistics.
type Stats struct {
	Frames       uint64
	Instructions uint64
	Elapsed      time.Duration
}

// IPS returns the average instructions executed per wall-clock second.
func (s Stats) IPS() float64 {
	if s.Elapsed <= 0 {
		return 0
	}
	return float64(s.Instructions) / s.Elapsed.Seconds()
}

func (s Stats) String() string {
	return fmt.Sprintf("frames=%d instructions=%d elapsed=%s ips=%.0f",
		s.Frames, s.Instructions, s.Elapsed.Round(time.Millisecond), s.IPS())
}

// pacer executes one frame's worth of instructions.
type pacer interface {
	RunFrame() (uint64, error)
}

// Driver runs an emulator against a frontend.
type Driver struct {
	config   Config
	emulator *emu.Emulator
	frontend frontend.Frontend
	pacer    pacer
	log      logr.Logger

	sound bool
	stats Stats
	start time.Time
}

// New creates a driver. Zero config fields take their defaults.
func New(e *emu.Emulator, fe frontend.Frontend, config Config) *Driver {
	defaults := DefaultConfig()
	if config.InstructionsPerSecond <= 0 {
		config.InstructionsPerSecond = defaults.InstructionsPerSecond
	}
	if config.FastMultiplier <= 0 {
		config.FastMultiplier = defaults.FastMultiplier
	}

	d := &Driver{
		config:   config,
		emulator: e,
		frontend: fe,
		log:      config.Log,
	}

	if config.Latency != nil {
		d.pacer = core.NewCore(e, config.Latency)
	} else {
		d.pacer = newRatePacer(e, config.InstructionsPerSecond)
	}

	return d
}

// Stats returns the statistics gathered so far.
func (d *Driver) Stats() Stats {
	s := d.stats
	if !d.start.IsZero() {
		s.Elapsed = time.Since(d.start)
	}
	return s
}

// Run drives the emulator until the user quits, MaxFrames is reached, ctx
// is cancelled or execution fails. A quit, the frame limit and
// cancellation are not errors.
func (d *Driver) Run(ctx context.Context) (Stats, error) {
	d.start = time.Now()
	d.log.Info("run started",
		"profile", d.emulator.Profile().String(),
		"fast", d.config.Fast,
		"cyclePaced", d.config.Latency != nil)

	var err error
	if looper, ok := d.frontend.(frontend.Looper); ok {
		err = d.runLooper(ctx, looper)
	} else if d.config.Fast {
		err = d.runFast(ctx)
	} else {
		err = d.runPaced(ctx)
	}

	stats := d.Stats()
	if errors.Is(err, ErrQuit) || errors.Is(err, context.Canceled) {
		err = nil
	}
	if err != nil {
		d.log.Error(err, "run failed", "frames", stats.Frames, "pc", fmt.Sprintf("0x%03X", d.emulator.RegFile().PC))
		return stats, err
	}

	d.log.Info("run finished", "frames", stats.Frames, "instructions", stats.Instructions)
	return stats, nil
}

// runPaced runs one frame per FrameDuration tick.
func (d *Driver) runPaced(ctx context.Context) error {
	ticker := time.NewTicker(FrameDuration)
	defer ticker.Stop()

	for {
		more, err := d.Frame()
		if err != nil || !more {
			return err
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// runFast executes instructions back to back and completes a frame whenever
// FrameDuration has passed.
func (d *Driver) runFast(ctx context.Context) error {
	next := time.Now().Add(FrameDuration)

	if quit, err := d.sampleInput(); err != nil || quit {
		return err
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := d.execute(); err != nil {
			return err
		}

		if now := time.Now(); now.After(next) {
			next = now.Add(FrameDuration)
			more, err := d.finishFrame()
			if err != nil || !more {
				return err
			}
			if quit, err := d.sampleInput(); err != nil || quit {
				return err
			}
		}
	}
}

// runLooper lets the frontend own the loop.
func (d *Driver) runLooper(ctx context.Context, looper frontend.Looper) error {
	batches := 1
	if d.config.Fast {
		batches = d.config.FastMultiplier
	}

	return looper.Loop(func() (bool, error) {
		if err := ctx.Err(); err != nil {
			return false, err
		}
		if quit, err := d.sampleInput(); err != nil || quit {
			return false, err
		}
		for i := 0; i < batches; i++ {
			if err := d.execute(); err != nil {
				return false, err
			}
		}
		return d.finishFrame()
	})
}

// Frame runs one complete frame: input, instructions, timers, sound, hooks
// and presentation. It reports whether the run should continue.
func (d *Driver) Frame() (bool, error) {
	if d.start.IsZero() {
		d.start = time.Now()
	}
	if quit, err := d.sampleInput(); err != nil || quit {
		return false, err
	}
	if err := d.execute(); err != nil {
		return false, err
	}
	return d.finishFrame()
}

func (d *Driver) sampleInput() (quit bool, err error) {
	in, err := d.frontend.Poll()
	if err != nil {
		return true, fmt.Errorf("poll input: %w", err)
	}
	if in.Quit {
		d.log.Info("quit requested", "frame", d.stats.Frames)
		return true, nil
	}
	keys := in.Keys
	for _, src := range d.config.KeySources {
		held := src.HeldKeys()
		for i := range keys {
			keys[i] = keys[i] || held[i]
		}
	}
	for i, down := range keys {
		d.emulator.SetKey(uint8(i), down)
	}
	return false, nil
}

func (d *Driver) execute() error {
	n, err := d.pacer.RunFrame()
	d.stats.Instructions += n
	if err != nil {
		return fmt.Errorf("frame %d: %w", d.stats.Frames, err)
	}
	return nil
}

func (d *Driver) finishFrame() (bool, error) {
	d.emulator.TickTimers()
	d.stats.Frames++
	frame := d.stats.Frames

	sound := d.emulator.SoundActive()
	if sound != d.sound {
		d.sound = sound
		d.frontend.SetSound(sound)
	}
	for _, sink := range d.config.Sinks {
		if err := sink.SoundFrame(sound); err != nil {
			return false, fmt.Errorf("sound sink: %w", err)
		}
	}

	for _, hook := range d.config.Hooks {
		if err := hook.OnFrame(d.emulator, frame); err != nil {
			return false, err
		}
	}

	if err := d.frontend.Present(d.emulator.Framebuffer()); err != nil {
		return false, fmt.Errorf("present: %w", err)
	}

	d.log.V(1).Info("frame",
		"frame", frame,
		"instructions", d.stats.Instructions,
		"state", d.emulator.State().String())

	if d.config.MaxFrames > 0 && frame >= d.config.MaxFrames {
		d.log.Info("frame limit reached", "frames", frame)
		return false, nil
	}
	return true, nil
}
