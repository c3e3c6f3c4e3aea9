package benchmarks_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/benchmarks"
	"github.com/chip8vm/chip8/timing/latency"
)

var _ = Describe("Harness", func() {
	var (
		out    *bytes.Buffer
		config benchmarks.HarnessConfig
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		config = benchmarks.DefaultConfig()
		config.Output = out
	})

	It("should pass every microbenchmark with the decode cache", func() {
		h := benchmarks.NewHarness(config)
		h.AddBenchmarks(benchmarks.GetMicrobenchmarks())

		for _, r := range h.RunAll() {
			Expect(r.Error).To(BeEmpty(), r.Name)
			Expect(r.Instructions).To(BeNumerically(">", 0), r.Name)
			Expect(r.CacheLookups).To(BeNumerically(">", 0), r.Name)
		}
	})

	It("should pass every microbenchmark without the decode cache", func() {
		config.DecodeCache = false
		h := benchmarks.NewHarness(config)
		h.AddBenchmarks(benchmarks.GetMicrobenchmarks())

		for _, r := range h.RunAll() {
			Expect(r.Error).To(BeEmpty(), r.Name)
			Expect(r.CacheLookups).To(BeZero(), r.Name)
		}
	})

	It("should spend the frame budget", func() {
		h := benchmarks.NewHarness(config)
		r := h.Run(benchmarks.GetCoreBenchmarks()[1])

		budget := latency.DefaultTimingConfig().CyclesPerFrame
		Expect(r.Frames).To(Equal(uint64(60)))
		Expect(r.Cycles).To(BeNumerically(">=", 59*budget))
		Expect(r.CPI).To(BeNumerically("~", float64(r.Cycles)/float64(r.Instructions), 1e-9))
	})

	It("should count memory and control-flow instructions", func() {
		h := benchmarks.NewHarness(config)
		core := benchmarks.GetCoreBenchmarks()

		alu := h.Run(core[0])
		Expect(alu.BranchOps).To(BeNumerically(">", 0))
		Expect(alu.BranchOps).To(BeNumerically("<", alu.Instructions))

		sprite := h.Run(core[1])
		Expect(sprite.MemoryOps).To(BeNumerically(">", 0))
	})

	It("should count wait frames", func() {
		h := benchmarks.NewHarness(config)
		var waits uint64
		for _, b := range benchmarks.GetMicrobenchmarks() {
			if b.Name == "key_wait" {
				r := h.Run(b)
				waits = r.WaitFrames
				Expect(r.Instructions).To(Equal(uint64(2)))
			}
		}
		Expect(waits).To(Equal(uint64(10)))
	})

	It("should see stale decodes in self-modifying code", func() {
		h := benchmarks.NewHarness(config)
		r := h.Run(benchmarks.GetCoreBenchmarks()[2])

		Expect(r.CacheStale).To(BeNumerically(">", 0))
	})

	It("should report a failing check", func() {
		h := benchmarks.NewHarness(config)
		r := h.Run(benchmarks.Benchmark{
			Name:    "unknown",
			Program: benchmarks.BuildProgram(0x5121),
		})

		Expect(r.Failed()).To(BeTrue())
		Expect(r.Error).To(ContainSubstring("0x5121"))
	})

	It("should report an oversized ROM", func() {
		h := benchmarks.NewHarness(config)
		r := h.Run(benchmarks.Benchmark{Name: "huge", Program: make([]byte, 4000)})

		Expect(r.Failed()).To(BeTrue())
		Expect(r.Frames).To(BeZero())
	})

	Describe("output", func() {
		var results []benchmarks.BenchmarkResult

		BeforeEach(func() {
			h := benchmarks.NewHarness(config)
			h.AddBenchmarks(benchmarks.GetCoreBenchmarks())
			results = h.RunAll()
		})

		It("should print readable results", func() {
			benchmarks.NewHarness(config).PrintResults(results)

			Expect(out.String()).To(ContainSubstring("Benchmark: alu_loop"))
			Expect(out.String()).To(ContainSubstring("--- Decode Cache ---"))
			Expect(out.String()).NotTo(ContainSubstring("FAILED"))
		})

		It("should print one CSV row per result", func() {
			benchmarks.NewHarness(config).PrintCSV(results)

			lines := strings.Split(strings.TrimSpace(out.String()), "\n")
			Expect(lines).To(HaveLen(4))
			Expect(lines[0]).To(HavePrefix("name,frames,cycles"))
			Expect(lines[0]).To(ContainSubstring("memory_ops,branch_ops"))
			Expect(lines[1]).To(HavePrefix("alu_loop,60,"))
		})

		It("should print a JSON report", func() {
			Expect(benchmarks.NewHarness(config).PrintJSON(results)).To(Succeed())

			var report benchmarks.BenchmarkReport
			Expect(json.Unmarshal(out.Bytes(), &report)).To(Succeed())
			Expect(report.Results).To(HaveLen(3))
			Expect(report.Summary.TotalBenchmarks).To(Equal(3))
			Expect(report.Summary.Failed).To(BeZero())
			Expect(report.Metadata.DecodeCache).To(BeTrue())
			Expect(report.Metadata.CyclesPerFrame).To(Equal(uint64(3668)))
		})
	})

	It("should summarize results", func() {
		s := benchmarks.Summarize([]benchmarks.BenchmarkResult{
			{Cycles: 300, Instructions: 10},
			{Cycles: 100, Instructions: 10, Error: "x"},
		})

		Expect(s.TotalCycles).To(Equal(uint64(400)))
		Expect(s.AverageCPI).To(BeNumerically("~", 20.0, 1e-9))
		Expect(s.Failed).To(Equal(1))
	})
})
