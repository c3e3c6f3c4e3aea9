// Package main provides the chip8 command, which runs a CHIP-8 ROM in a
// window, a terminal or headless.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"math/rand/v2"
	"os"
	"os/signal"
	"runtime"

	"github.com/bradleyjkemp/memviz"
	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/chip8vm/chip8/audio"
	"github.com/chip8vm/chip8/driver"
	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/frontend/ebitenfe"
	"github.com/chip8vm/chip8/frontend/sdlfe"
	"github.com/chip8vm/chip8/frontend/termfe"
	"github.com/chip8vm/chip8/insts"
	"github.com/chip8vm/chip8/keymap"
	"github.com/chip8vm/chip8/loader"
	"github.com/chip8vm/chip8/script"
	"github.com/chip8vm/chip8/timing/latency"
)

// Exit codes.
const (
	exitOK      = 0
	exitUsage   = 1
	exitRuntime = 2
)

var (
	profileName  = flag.String("profile", "modern", "Behaviour profile: original or modern")
	fast         = flag.Bool("fast", false, "Run without frame pacing")
	ips          = flag.Int("ips", 700, "Instructions per second when not cycle paced")
	timingPath   = flag.String("timing", "", "Path to cycle-cost JSON file; paces by machine cycles")
	frontendName = flag.String("frontend", "ebiten", "Frontend: ebiten, sdl, term or headless")
	frames       = flag.Uint64("frames", 0, "Stop after N frames (0 runs until quit)")
	scale        = flag.Int("scale", 14, "Window pixels per display pixel")
	keys         = flag.String("keys", "", "Key layout as name=hex pairs, e.g. X=0,1=1 (default QWERTY)")
	mute         = flag.Bool("mute", false, "Disable the beeper")
	wavPath      = flag.String("wav", "", "Record the beeper to a WAV file")
	scriptPath   = flag.String("script", "", "Lua automation script")
	decodeCache  = flag.Bool("decode-cache", false, "Enable the decoded-instruction cache")
	seed         = flag.Uint64("seed", 0, "Random seed for RND (0 seeds from the system)")
	memvizPath   = flag.String("memviz", "", "Write a Graphviz dump of the machine state at exit")
	verbosity    = flag.Int("v", 0, "Log verbosity: 0 info, 1 debug, 2 trace")
)

func init() {
	// Window toolkits require the main OS thread.
	runtime.LockOSThread()
}

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: chip8 [options] <rom.ch8>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(exitUsage)
	}

	log := funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintf(os.Stderr, "%s: %s\n", prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{
		LogTimestamp: true,
		Verbosity:    *verbosity,
	})

	os.Exit(run(flag.Arg(0), log))
}

// run loads romPath and drives it until quit. It returns the exit code.
func run(romPath string, log logr.Logger) int {
	rom, err := loader.Load(romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		return exitUsage
	}
	log.Info("loaded ROM", "name", rom.Name, "size", rom.Size(), "sha1", rom.Checksum())

	emulator, err := newEmulator(log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitUsage
	}
	if err := emulator.Load(rom.Data); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		return exitUsage
	}

	config := driver.DefaultConfig()
	config.InstructionsPerSecond = *ips
	config.Fast = *fast
	config.MaxFrames = *frames
	config.Log = log.WithName("driver")

	if *timingPath != "" {
		timingConfig, err := latency.LoadConfig(*timingPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			return exitUsage
		}
		if err := timingConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
			return exitUsage
		}
		config.Latency = latency.NewTableWithConfig(timingConfig)
	}

	layout := keymap.QWERTY()
	if *keys != "" {
		layout, err = keymap.Parse(*keys)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error parsing key layout: %v\n", err)
			return exitUsage
		}
	}

	fe, sink, err := newFrontend(layout, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening frontend: %v\n", err)
		return exitUsage
	}
	defer func() {
		if err := fe.Close(); err != nil {
			log.Error(err, "close frontend")
		}
	}()
	if sink != nil {
		defer sink.Close()
		config.Sinks = append(config.Sinks, sink)
	}

	if *wavPath != "" {
		recorder, err := audio.CreateRecorder(*wavPath, audio.DefaultSampleRate, driver.FrameRate)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating WAV file: %v\n", err)
			return exitUsage
		}
		defer func() {
			if err := recorder.Close(); err != nil {
				log.Error(err, "close WAV file", "path", *wavPath)
			}
		}()
		config.Sinks = append(config.Sinks, recorder)
	}

	if *scriptPath != "" {
		s, err := script.Load(*scriptPath, log.WithName("script"))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return exitUsage
		}
		defer s.Close()
		config.Hooks = append(config.Hooks, s)
		config.KeySources = append(config.KeySources, s)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	d := driver.New(emulator, fe, config)
	stats, runErr := d.Run(ctx)

	printStats(rom, emulator, stats)

	if *memvizPath != "" {
		if err := dumpState(*memvizPath, emulator); err != nil {
			log.Error(err, "write memviz dump", "path", *memvizPath)
		}
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		var unknown *emu.UnknownOpcodeError
		if errors.As(runErr, &unknown) {
			fmt.Fprintf(os.Stderr, "Unknown opcode 0x%04X at 0x%03X\n", unknown.Opcode, unknown.Addr)
		}
		return exitRuntime
	}
	return exitOK
}

func newEmulator(log logr.Logger) (*emu.Emulator, error) {
	profile, err := emu.ParseProfile(*profileName)
	if err != nil {
		return nil, err
	}

	opts := []emu.EmulatorOption{
		emu.WithProfile(profile),
		emu.WithLogger(log.WithName("emu")),
	}
	if *seed != 0 {
		opts = append(opts, emu.WithRandom(rand.NewPCG(*seed, *seed)))
	}
	if *decodeCache {
		opts = append(opts, emu.WithDecodeCache(insts.DefaultCacheConfig()))
	}

	return emu.NewEmulator(opts...), nil
}

// soundSink is a driver sound sink that owns a device.
type soundSink interface {
	driver.SoundSink
	Close() error
}

// newFrontend opens the selected frontend. The returned sink, when not
// nil, plays the beeper for frontends without their own audio.
func newFrontend(layout *keymap.Layout, log logr.Logger) (frontend.Frontend, soundSink, error) {
	style := frontend.DefaultStyle()
	style.Scale = *scale

	switch *frontendName {
	case "ebiten":
		config := ebitenfe.DefaultConfig()
		config.Style = style
		config.Layout = layout
		config.Fast = *fast
		config.Log = log.WithName("ebiten")
		return ebitenfe.New(config), newBeeper(log), nil

	case "sdl":
		config := sdlfe.DefaultConfig()
		config.Style = style
		config.Layout = layout
		config.NoAudio = *mute
		config.Log = log.WithName("sdl")
		fe, err := sdlfe.New(config)
		return fe, nil, err

	case "term":
		config := termfe.DefaultConfig()
		config.Layout = layout
		config.Log = log.WithName("term")
		fe, err := termfe.New(config)
		if err != nil {
			return nil, nil, err
		}
		return fe, newBeeper(log), nil

	case "headless":
		return frontend.NewHeadless(), nil, nil

	default:
		return nil, nil, fmt.Errorf("unknown frontend %q", *frontendName)
	}
}

// newBeeper opens the host audio device. A missing device only costs the
// sound.
func newBeeper(log logr.Logger) soundSink {
	if *mute {
		return nil
	}
	b, err := audio.NewBeeper(audio.DefaultSampleRate)
	if err != nil {
		log.Info("audio unavailable", "err", err.Error())
		return nil
	}
	return b
}

func printStats(rom *loader.ROM, e *emu.Emulator, stats driver.Stats) {
	fmt.Printf("\nROM: %s\n", rom.Name)
	fmt.Printf("Profile: %s\n", e.Profile())
	fmt.Printf("Frames: %d\n", stats.Frames)
	fmt.Printf("Instructions executed: %d\n", stats.Instructions)
	fmt.Printf("Elapsed: %s\n", stats.Elapsed)
	fmt.Printf("Instructions per second: %.0f\n", stats.IPS())

	if cache := e.DecodeCache(); cache != nil {
		cs := cache.Stats()
		fmt.Printf("Decode cache: %d lookups, %.1f%% hits, %d stale, %d evictions\n",
			cs.Lookups, 100*cs.HitRate(), cs.Stale, cs.Evictions)
	}
}

// machineState is the part of the machine worth graphing.
type machineState struct {
	Profile string
	State   string
	Regs    *emu.RegFile
	Stack   *emu.Stack
}

func dumpState(path string, e *emu.Emulator) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	memviz.Map(f, &machineState{
		Profile: e.Profile().String(),
		State:   e.State().String(),
		Regs:    e.RegFile(),
		Stack:   e.Stack(),
	})

	return f.Close()
}
