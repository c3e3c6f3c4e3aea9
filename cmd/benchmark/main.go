// Command benchmark runs the CHIP-8 microbenchmark harness.
//
// Usage:
//
//	go run ./cmd/benchmark [flags]
//
// Flags:
//
//	-csv              Output results in CSV format (default: human-readable)
//	-json             Output results as a JSON report
//	-no-decode-cache  Disable the decoded-instruction cache
//	-timing path      Cycle-cost JSON file
//	-frames N         Frames per benchmark
//	-core             Run only the core subset
//
// Example:
//
//	# Compare cache on and off
//	go run ./cmd/benchmark -csv > cached.csv
//	go run ./cmd/benchmark -csv -no-decode-cache > uncached.csv
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chip8vm/chip8/benchmarks"
	"github.com/chip8vm/chip8/timing/latency"
)

func main() {
	csvOutput := flag.Bool("csv", false, "Output results in CSV format")
	jsonOutput := flag.Bool("json", false, "Output results as JSON")
	noDecodeCache := flag.Bool("no-decode-cache", false, "Disable the decoded-instruction cache")
	timingPath := flag.String("timing", "", "Path to cycle-cost JSON file")
	frames := flag.Uint64("frames", 60, "Frames per benchmark")
	coreOnly := flag.Bool("core", false, "Run only the core benchmarks")
	flag.Parse()

	config := benchmarks.DefaultConfig()
	config.DecodeCache = !*noDecodeCache
	config.Frames = *frames
	config.Output = os.Stdout

	if *timingPath != "" {
		timingConfig, err := latency.LoadConfig(*timingPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading timing config: %v\n", err)
			os.Exit(1)
		}
		if err := timingConfig.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid timing config: %v\n", err)
			os.Exit(1)
		}
		config.Timing = timingConfig
	}

	harness := benchmarks.NewHarness(config)
	if *coreOnly {
		harness.AddBenchmarks(benchmarks.GetCoreBenchmarks())
	} else {
		harness.AddBenchmarks(benchmarks.GetMicrobenchmarks())
	}

	if !*csvOutput && !*jsonOutput {
		fmt.Println("CHIP-8 Benchmark Harness")
		fmt.Println("========================")
		fmt.Printf("Decode cache: %v\n", config.DecodeCache)
		fmt.Printf("Frames: %d\n", config.Frames)
		fmt.Println("")
	}

	results := harness.RunAll()

	switch {
	case *jsonOutput:
		if err := harness.PrintJSON(results); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing JSON: %v\n", err)
			os.Exit(1)
		}
	case *csvOutput:
		harness.PrintCSV(results)
	default:
		harness.PrintResults(results)

		summary := benchmarks.Summarize(results)
		fmt.Println("=== Summary ===")
		fmt.Printf("Benchmarks: %d (%d failed)\n", summary.TotalBenchmarks, summary.Failed)
		fmt.Printf("Average CPI: %.3f\n", summary.AverageCPI)
	}

	if benchmarks.Summarize(results).Failed > 0 {
		os.Exit(1)
	}
}
