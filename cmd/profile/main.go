// Package main provides a profiling wrapper that runs a CHIP-8 ROM without a
// frontend to find emulator hot spots.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"runtime/pprof"
	"time"

	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/insts"
	"github.com/chip8vm/chip8/loader"
	"github.com/chip8vm/chip8/timing/core"
	"github.com/chip8vm/chip8/timing/latency"
)

var (
	timing      = flag.Bool("timing", false, "Pace by machine cycles through the timing core")
	decodeCache = flag.Bool("decode-cache", false, "Enable the decoded-instruction cache")
	profileName = flag.String("profile", "modern", "Behaviour profile: original or modern")
	cpuProfile  = flag.String("cpuprofile", "", "write cpu profile to file")
	memProfile  = flag.String("memprofile", "", "write memory profile to file")
	duration    = flag.Duration("duration", 30*time.Second, "max duration to run (for profiling)")
	instruction = flag.Uint64("max-instr", 10000000, "max instructions to execute (0 = unlimited)")
)

// timerPeriod is the number of instructions per timer tick in functional
// mode, roughly 700 instructions per second.
const timerPeriod = 12

func main() {
	flag.Parse()

	if flag.NArg() < 1 {
		fmt.Fprintf(os.Stderr, "Usage: profile [options] <rom.ch8>\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		os.Exit(1)
	}

	if *cpuProfile != "" {
		f, err := os.Create(*cpuProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error starting CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	rom, err := loader.Load(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	emulator, err := newEmulator()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := emulator.Load(rom.Data); err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Loaded: %s (%d bytes)\n", rom.Name, rom.Size())

	start := time.Now()
	deadline := start.Add(*duration)

	var runErr error
	if *timing {
		runErr = runTimingProfile(emulator, deadline)
	} else {
		runErr = runEmulationProfile(emulator, deadline)
	}

	elapsed := time.Since(start)

	if *memProfile != "" {
		f, err := os.Create(*memProfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating memory profile: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = f.Close() }()

		if err := pprof.WriteHeapProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing memory profile: %v\n", err)
		}
	}

	instrCount := emulator.InstructionCount()

	fmt.Printf("\nProfiling Results:\n")
	switch {
	case runErr == nil, errors.Is(runErr, emu.ErrInstructionLimit):
		fmt.Printf("Stopped: %s\n", stopReason(emulator, runErr))
	default:
		fmt.Printf("Error: %v\n", runErr)
	}
	fmt.Printf("Instructions executed: %d\n", instrCount)
	fmt.Printf("Elapsed time: %v\n", elapsed)
	if instrCount > 0 {
		fmt.Printf("Instructions/second: %.0f\n", float64(instrCount)/elapsed.Seconds())
	}
	if cache := emulator.DecodeCache(); cache != nil {
		fmt.Printf("Decode cache hit rate: %.1f%%\n", 100*cache.Stats().HitRate())
	}
}

func newEmulator() (*emu.Emulator, error) {
	profile, err := emu.ParseProfile(*profileName)
	if err != nil {
		return nil, err
	}

	opts := []emu.EmulatorOption{emu.WithProfile(profile)}
	if *instruction > 0 {
		opts = append(opts, emu.WithMaxInstructions(*instruction))
	}
	if *decodeCache {
		opts = append(opts, emu.WithDecodeCache(insts.DefaultCacheConfig()))
	}
	return emu.NewEmulator(opts...), nil
}

func stopReason(e *emu.Emulator, err error) string {
	switch {
	case err != nil:
		return "instruction limit"
	case e.State() == emu.AwaitingKey:
		return "blocked on key wait"
	default:
		return "duration reached"
	}
}

// runEmulationProfile steps the emulator directly, ticking the timers every
// timerPeriod instructions.
func runEmulationProfile(e *emu.Emulator, deadline time.Time) error {
	for n := uint64(1); ; n++ {
		result := e.Step()
		if result.Err != nil {
			return result.Err
		}
		if result.Waiting {
			return nil
		}
		if n%timerPeriod == 0 {
			e.TickTimers()
			if time.Now().After(deadline) {
				return nil
			}
		}
	}
}

// runTimingProfile runs whole frames through the cycle-budgeted core.
func runTimingProfile(e *emu.Emulator, deadline time.Time) error {
	c := core.NewCore(e, latency.NewTable())

	for time.Now().Before(deadline) {
		if _, err := c.RunFrame(); err != nil {
			return err
		}
		e.TickTimers()
		if e.State() == emu.AwaitingKey {
			break
		}
	}

	stats := c.Stats()
	fmt.Printf("Frames: %d\n", stats.Frames)
	fmt.Printf("Cycles: %d\n", stats.Cycles)
	return nil
}
