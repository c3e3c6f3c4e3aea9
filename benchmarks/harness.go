// Package benchmarks runs CHIP-8 microbenchmarks through the cycle-budgeted
// core and reports cycle, instruction and decode-cache statistics.
package benchmarks

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/insts"
	"github.com/chip8vm/chip8/timing/core"
	"github.com/chip8vm/chip8/timing/latency"
)

// BenchmarkResult holds the results of a single benchmark run.
type BenchmarkResult struct {
	// Name identifies the benchmark
	Name string `json:"name"`

	// Description explains what the benchmark measures
	Description string `json:"description"`

	// Frames is the number of 60 Hz frames run
	Frames uint64 `json:"frames"`

	// Cycles is the total machine cycles spent
	Cycles uint64 `json:"cycles"`

	// Instructions is the number of instructions executed
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// WaitFrames is the number of frames cut short by a key wait
	WaitFrames uint64 `json:"wait_frames"`

	// MemoryOps and BranchOps count memory and control-flow instructions
	MemoryOps uint64 `json:"memory_ops"`
	BranchOps uint64 `json:"branch_ops"`

	// Decode cache statistics (if enabled)
	CacheLookups uint64  `json:"cache_lookups,omitempty"`
	CacheHits    uint64  `json:"cache_hits,omitempty"`
	CacheStale   uint64  `json:"cache_stale,omitempty"`
	CacheHitRate float64 `json:"cache_hit_rate,omitempty"`

	// Error is the execution or check failure, if any
	Error string `json:"error,omitempty"`

	// WallTime is the host time taken by the run
	WallTime time.Duration `json:"wall_time_ns"`
}

// Failed reports whether the run hit an error or failed its check.
func (r BenchmarkResult) Failed() bool {
	return r.Error != ""
}

// Benchmark defines a single benchmark program.
type Benchmark struct {
	// Name identifies the benchmark
	Name string

	// Description explains what the benchmark measures
	Description string

	// Profile is the behaviour profile to run under
	Profile emu.Profile

	// Program is the ROM image, loaded at 0x200
	Program []byte

	// Frames is the number of frames to run. 0 uses HarnessConfig.Frames.
	Frames uint64

	// Check validates the final machine state. Optional.
	Check func(e *emu.Emulator) error
}

// HarnessConfig configures the benchmark harness.
type HarnessConfig struct {
	// DecodeCache enables the decoded-instruction cache
	DecodeCache bool

	// Timing is the cycle-cost table. nil uses the defaults.
	Timing *latency.TimingConfig

	// Frames is the default number of frames per benchmark
	Frames uint64

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns a default harness configuration.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		DecodeCache: true,
		Frames:      60,
		Output:      os.Stdout,
	}
}

// Harness runs benchmarks and reports results.
type Harness struct {
	config     HarnessConfig
	table      *latency.Table
	benchmarks []Benchmark
}

// NewHarness creates a new benchmark harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if config.Frames == 0 {
		config.Frames = DefaultConfig().Frames
	}

	table := latency.NewTable()
	if config.Timing != nil {
		table = latency.NewTableWithConfig(config.Timing)
	}

	return &Harness{
		config: config,
		table:  table,
	}
}

// AddBenchmark adds a benchmark to the harness.
func (h *Harness) AddBenchmark(b Benchmark) {
	h.benchmarks = append(h.benchmarks, b)
}

// AddBenchmarks adds multiple benchmarks to the harness.
func (h *Harness) AddBenchmarks(benchmarks []Benchmark) {
	h.benchmarks = append(h.benchmarks, benchmarks...)
}

// RunAll executes all benchmarks and returns results.
func (h *Harness) RunAll() []BenchmarkResult {
	results := make([]BenchmarkResult, 0, len(h.benchmarks))
	for _, bench := range h.benchmarks {
		results = append(results, h.Run(bench))
	}
	return results
}

// Run executes a single benchmark on a fresh machine.
func (h *Harness) Run(bench Benchmark) BenchmarkResult {
	result := BenchmarkResult{
		Name:        bench.Name,
		Description: bench.Description,
	}

	opts := []emu.EmulatorOption{emu.WithProfile(bench.Profile)}
	if h.config.DecodeCache {
		opts = append(opts, emu.WithDecodeCache(insts.DefaultCacheConfig()))
	}
	e := emu.NewEmulator(opts...)
	if err := e.Load(bench.Program); err != nil {
		result.Error = err.Error()
		return result
	}

	frames := bench.Frames
	if frames == 0 {
		frames = h.config.Frames
	}

	c := core.NewCore(e, h.table)

	start := time.Now()
	var runErr error
	for i := uint64(0); i < frames; i++ {
		if _, runErr = c.RunFrame(); runErr != nil {
			break
		}
		e.TickTimers()
	}
	result.WallTime = time.Since(start)

	stats := c.Stats()
	result.Frames = stats.Frames
	result.Cycles = stats.Cycles
	result.Instructions = stats.Instructions
	result.WaitFrames = stats.WaitFrames
	result.MemoryOps = stats.MemoryOps
	result.BranchOps = stats.BranchOps
	if stats.Instructions > 0 {
		result.CPI = float64(stats.Cycles) / float64(stats.Instructions)
	}

	if cache := e.DecodeCache(); cache != nil {
		cs := cache.Stats()
		result.CacheLookups = cs.Lookups
		result.CacheHits = cs.Hits
		result.CacheStale = cs.Stale
		result.CacheHitRate = cs.HitRate()
	}

	switch {
	case runErr != nil:
		result.Error = runErr.Error()
	case bench.Check != nil:
		if err := bench.Check(e); err != nil {
			result.Error = err.Error()
		}
	}

	return result
}

// PrintResults outputs benchmark results in a human-readable format.
func (h *Harness) PrintResults(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output, "=== CHIP-8 Benchmark Results ===")
	_, _ = fmt.Fprintln(h.config.Output, "")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "Benchmark: %s\n", r.Name)
		_, _ = fmt.Fprintf(h.config.Output, "  Description: %s\n", r.Description)
		_, _ = fmt.Fprintln(h.config.Output, "  --- Timing ---")
		_, _ = fmt.Fprintf(h.config.Output, "  Frames:       %d\n", r.Frames)
		_, _ = fmt.Fprintf(h.config.Output, "  Cycles:       %d\n", r.Cycles)
		_, _ = fmt.Fprintf(h.config.Output, "  Instructions: %d\n", r.Instructions)
		_, _ = fmt.Fprintf(h.config.Output, "  CPI:          %.3f\n", r.CPI)
		_, _ = fmt.Fprintf(h.config.Output, "  Memory Ops:   %d\n", r.MemoryOps)
		_, _ = fmt.Fprintf(h.config.Output, "  Branch Ops:   %d\n", r.BranchOps)
		if r.WaitFrames > 0 {
			_, _ = fmt.Fprintf(h.config.Output, "  Wait Frames:  %d\n", r.WaitFrames)
		}

		if r.CacheLookups > 0 {
			_, _ = fmt.Fprintln(h.config.Output, "  --- Decode Cache ---")
			_, _ = fmt.Fprintf(h.config.Output, "  Lookups:  %d\n", r.CacheLookups)
			_, _ = fmt.Fprintf(h.config.Output, "  Hits:     %d\n", r.CacheHits)
			_, _ = fmt.Fprintf(h.config.Output, "  Stale:    %d\n", r.CacheStale)
			_, _ = fmt.Fprintf(h.config.Output, "  Hit Rate: %.1f%%\n", 100*r.CacheHitRate)
		}

		if r.Failed() {
			_, _ = fmt.Fprintf(h.config.Output, "  FAILED: %s\n", r.Error)
		}

		_, _ = fmt.Fprintf(h.config.Output, "  Wall Time: %v\n", r.WallTime)
		_, _ = fmt.Fprintln(h.config.Output, "")
	}
}

// PrintCSV outputs benchmark results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []BenchmarkResult) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,frames,cycles,instructions,cpi,wait_frames,memory_ops,branch_ops,cache_lookups,cache_hits,cache_stale,error")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%d,%d,%d,%.3f,%d,%d,%d,%d,%d,%d,%q\n",
			r.Name,
			r.Frames,
			r.Cycles,
			r.Instructions,
			r.CPI,
			r.WaitFrames,
			r.MemoryOps,
			r.BranchOps,
			r.CacheLookups,
			r.CacheHits,
			r.CacheStale,
			r.Error,
		)
	}
}

// BenchmarkReport is the complete output format for benchmark results.
type BenchmarkReport struct {
	// Metadata about the benchmark run
	Metadata ReportMetadata `json:"metadata"`

	// Results is the list of individual benchmark results
	Results []BenchmarkResult `json:"results"`

	// Summary contains aggregate statistics
	Summary ReportSummary `json:"summary"`
}

// ReportMetadata contains information about the benchmark run.
type ReportMetadata struct {
	// Timestamp when the benchmark was run
	Timestamp string `json:"timestamp"`

	// DecodeCache reports whether the decode cache was enabled
	DecodeCache bool `json:"decode_cache"`

	// CyclesPerFrame is the frame budget used
	CyclesPerFrame uint64 `json:"cycles_per_frame"`
}

// ReportSummary contains aggregate statistics across all benchmarks.
type ReportSummary struct {
	TotalBenchmarks   int           `json:"total_benchmarks"`
	Failed            int           `json:"failed"`
	TotalCycles       uint64        `json:"total_cycles"`
	TotalInstructions uint64        `json:"total_instructions"`
	AverageCPI        float64       `json:"average_cpi"`
	TotalWallTime     time.Duration `json:"total_wall_time_ns"`
}

// Summarize aggregates results.
func Summarize(results []BenchmarkResult) ReportSummary {
	s := ReportSummary{TotalBenchmarks: len(results)}
	for _, r := range results {
		s.TotalCycles += r.Cycles
		s.TotalInstructions += r.Instructions
		s.TotalWallTime += r.WallTime
		if r.Failed() {
			s.Failed++
		}
	}
	if s.TotalInstructions > 0 {
		s.AverageCPI = float64(s.TotalCycles) / float64(s.TotalInstructions)
	}
	return s
}

// PrintJSON outputs benchmark results in JSON format for automated comparison.
func (h *Harness) PrintJSON(results []BenchmarkResult) error {
	report := BenchmarkReport{
		Metadata: ReportMetadata{
			Timestamp:      time.Now().UTC().Format(time.RFC3339),
			DecodeCache:    h.config.DecodeCache,
			CyclesPerFrame: h.table.Config().CyclesPerFrame,
		},
		Results: results,
		Summary: Summarize(results),
	}

	encoder := json.NewEncoder(h.config.Output)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}
