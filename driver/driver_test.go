package driver_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/driver"
	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/timing/latency"
)

type soundLog struct {
	frames []bool
}

func (s *soundLog) SoundFrame(on bool) error {
	s.frames = append(s.frames, on)
	return nil
}

type heldKeys [emu.KeyCount]bool

func (h *heldKeys) HeldKeys() [emu.KeyCount]bool {
	return *h
}

type hookFunc func(e *emu.Emulator, frame uint64) error

func (f hookFunc) OnFrame(e *emu.Emulator, frame uint64) error {
	return f(e, frame)
}

// loopFrontend owns the loop like a game engine would.
type loopFrontend struct {
	*frontend.Headless
	calls int
}

func (l *loopFrontend) Loop(frame func() (bool, error)) error {
	for {
		l.calls++
		more, err := frame()
		if err != nil || !more {
			return err
		}
	}
}

var _ = Describe("Driver", func() {
	var (
		e      *emu.Emulator
		fe     *frontend.Headless
		config driver.Config
	)

	BeforeEach(func() {
		e = emu.NewEmulator()
		fe = frontend.NewHeadless()
		config = driver.DefaultConfig()
		config.InstructionsPerSecond = 600
	})

	It("should run the configured number of frames", func() {
		Expect(e.Load(rom(0x7001, 0x1200))).To(Succeed())
		config.MaxFrames = 3

		stats, err := driver.New(e, fe, config).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(uint64(3)))
		Expect(stats.Instructions).To(Equal(uint64(30)))
		Expect(stats.Elapsed).To(BeNumerically(">", 0))
		Expect(fe.Presents()).To(Equal(3))
		Expect(e.RegFile().V[0]).To(Equal(uint8(15)))
	})

	It("should tick timers once per frame and forward sound", func() {
		Expect(e.Load(rom(0x6102, 0xF118, 0x1204))).To(Succeed())
		sink := &soundLog{}
		config.Sinks = []driver.SoundSink{sink}
		d := driver.New(e, fe, config)

		for i := 0; i < 3; i++ {
			more, err := d.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeTrue())
		}

		Expect(sink.frames).To(Equal([]bool{true, false, false}))
		on, toggles := fe.Sound()
		Expect(on).To(BeFalse())
		Expect(toggles).To(Equal(2))
	})

	It("should present the display", func() {
		Expect(e.Load(rom(0xA050, 0xD005, 0x1204))).To(Succeed())

		_, err := driver.New(e, fe, config).Frame()

		Expect(err).NotTo(HaveOccurred())
		Expect(fe.Last().Lit()).To(Equal(14))
	})

	It("should deliver key presses to a waiting program", func() {
		Expect(e.Load(rom(0xF00A, 0x1202))).To(Succeed())
		d := driver.New(e, fe, config)

		_, err := d.Frame()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.State()).To(Equal(emu.AwaitingKey))

		fe.Press(0x5, true)
		_, err = d.Frame()

		Expect(err).NotTo(HaveOccurred())
		Expect(e.State()).To(Equal(emu.Running))
		Expect(e.RegFile().V[0]).To(Equal(uint8(0x5)))
	})

	It("should merge key sources into the polled input", func() {
		// LD V0, 5; SKP V0; JP 0x202; LD V1, 1; JP 0x208
		Expect(e.Load(rom(0x6005, 0xE09E, 0x1202, 0x6101, 0x1208))).To(Succeed())
		held := &heldKeys{}
		config.KeySources = []driver.KeySource{held}
		d := driver.New(e, fe, config)

		_, err := d.Frame()
		Expect(err).NotTo(HaveOccurred())
		Expect(e.RegFile().V[1]).To(BeZero())

		held[5] = true
		_, err = d.Frame()

		Expect(err).NotTo(HaveOccurred())
		Expect(e.KeyPressed(5)).To(BeTrue())
		Expect(e.RegFile().V[1]).To(Equal(uint8(1)))
	})

	It("should stop on the first runtime error", func() {
		Expect(e.Load(rom(0x6001, 0x00EE))).To(Succeed())

		stats, err := driver.New(e, fe, config).Run(context.Background())

		Expect(errors.Is(err, emu.ErrStackUnderflow)).To(BeTrue())
		Expect(stats.Instructions).To(Equal(uint64(1)))
		Expect(stats.Frames).To(BeZero())
	})

	It("should end cleanly on quit", func() {
		Expect(e.Load(rom(0x1200))).To(Succeed())
		fe.RequestQuit()

		stats, err := driver.New(e, fe, config).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(BeZero())
	})

	It("should end cleanly when the context is cancelled", func() {
		Expect(e.Load(rom(0x1200))).To(Succeed())
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		stats, err := driver.New(e, fe, config).Run(ctx)

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(uint64(1)))
	})

	It("should let a hook end the run", func() {
		Expect(e.Load(rom(0x1200))).To(Succeed())
		config.Hooks = []driver.Hook{hookFunc(func(_ *emu.Emulator, frame uint64) error {
			if frame == 2 {
				return driver.ErrQuit
			}
			return nil
		})}

		stats, err := driver.New(e, fe, config).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(uint64(2)))
		Expect(fe.Presents()).To(Equal(1))
	})

	It("should pace by cycle budget with a latency table", func() {
		Expect(e.Load(rom(0x1200))).To(Succeed())
		timing := latency.DefaultTimingConfig()
		timing.CyclesPerFrame = 520
		config.Latency = latency.NewTableWithConfig(timing)
		config.MaxFrames = 2

		stats, err := driver.New(e, fe, config).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Instructions).To(Equal(uint64(20)))
	})

	It("should run far ahead of the frame rate in fast mode", func() {
		Expect(e.Load(rom(0x1200))).To(Succeed())
		config.Fast = true
		config.MaxFrames = 2

		stats, err := driver.New(e, fe, config).Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(uint64(2)))
		Expect(stats.Instructions).To(BeNumerically(">", 100))
	})

	Context("with a frontend that owns the loop", func() {
		It("should run frames through the loop", func() {
			Expect(e.Load(rom(0x1200))).To(Succeed())
			lf := &loopFrontend{Headless: fe}
			config.MaxFrames = 4

			stats, err := driver.New(e, lf, config).Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(lf.calls).To(Equal(4))
			Expect(stats.Instructions).To(Equal(uint64(40)))
		})

		It("should multiply the budget in fast mode", func() {
			Expect(e.Load(rom(0x1200))).To(Succeed())
			lf := &loopFrontend{Headless: fe}
			config.MaxFrames = 1
			config.Fast = true
			config.FastMultiplier = 5

			stats, err := driver.New(e, lf, config).Run(context.Background())

			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Instructions).To(Equal(uint64(50)))
		})
	})

	It("should compute instructions per second", func() {
		s := driver.Stats{Instructions: 1400, Elapsed: 2e9}
		Expect(s.IPS()).To(BeNumerically("~", 700, 0.01))
		Expect(driver.Stats{}.IPS()).To(BeZero())
	})
})
