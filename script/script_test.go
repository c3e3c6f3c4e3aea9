package script_test

import (
	"context"
	"os"
	"path/filepath"

	"github.com/go-logr/logr"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/driver"
	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/script"
)

var _ = Describe("Script", func() {
	var e *emu.Emulator

	BeforeEach(func() {
		e = emu.NewEmulator()
		// LD V3, 0x2A; LD I, 0x300; JP 0x204
		Expect(e.Load(program(0x632A, 0xA300, 0x1204))).To(Succeed())
		for i := 0; i < 2; i++ {
			Expect(e.Step().Err).NotTo(HaveOccurred())
		}
	})

	load := func(source string) *script.Script {
		s, err := script.LoadString("test.lua", source, logr.Discard())
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(s.Close)
		return s
	}

	It("should read machine state", func() {
		s := load(`
			function on_frame(frame)
				assert(chip8.reg(3) == 0x2A, "V3")
				assert(chip8.index() == 0x300, "I")
				assert(chip8.pc() == 0x204, "PC")
				assert(chip8.peek(0x200) == 0x63, "memory")
				assert(chip8.state() == "running", "state")
				assert(chip8.instructions() == 2, "count")
				local dt, st = chip8.timers()
				assert(dt == 0 and st == 0, "timers")
				assert(chip8.pixel(0, 0) == false, "pixel")
			end
		`)

		Expect(s.OnFrame(e, 1)).To(Succeed())
	})

	It("should write machine state", func() {
		s := load(`
			function on_frame(frame)
				chip8.set_reg(0xF, frame)
				chip8.set_index(0x123)
				chip8.poke(0x300, 0xAB)
				chip8.press(5)
				chip8.press(6, false)
			end
		`)

		Expect(s.OnFrame(e, 7)).To(Succeed())

		Expect(e.RegFile().ReadV(0xF)).To(Equal(uint8(7)))
		Expect(e.RegFile().I).To(Equal(uint16(0x123)))
		Expect(e.Memory().Read8(0x300)).To(Equal(uint8(0xAB)))
		Expect(e.KeyPressed(5)).To(BeTrue())
		Expect(e.KeyPressed(6)).To(BeFalse())
	})

	It("should quit when asked", func() {
		s := load(`
			function on_frame(frame)
				if frame == 3 then chip8.quit() end
			end
		`)

		Expect(s.OnFrame(e, 1)).To(Succeed())
		Expect(s.OnFrame(e, 2)).To(Succeed())
		Expect(s.OnFrame(e, 3)).To(MatchError(driver.ErrQuit))
	})

	It("should report Lua errors", func() {
		s := load(`function on_frame(frame) error("boom") end`)

		err := s.OnFrame(e, 1)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("boom"))
		Expect(err.Error()).To(ContainSubstring("test.lua"))
	})

	It("should reject out of range arguments", func() {
		s := load(`function on_frame(frame) chip8.set_reg(16, 1) end`)

		Expect(s.OnFrame(e, 1)).To(HaveOccurred())
	})

	It("should run without an on_frame function", func() {
		s := load(`x = 1`)

		Expect(s.OnFrame(e, 1)).To(Succeed())
	})

	It("should fail to load broken source", func() {
		_, err := script.LoadString("bad.lua", "function (", logr.Discard())

		Expect(err).To(HaveOccurred())
	})

	It("should load a file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "auto.lua")
		Expect(os.WriteFile(path, []byte(`function on_frame(f) chip8.quit() end`), 0o644)).To(Succeed())

		s, err := script.Load(path, logr.Discard())
		Expect(err).NotTo(HaveOccurred())
		defer s.Close()

		Expect(s.Name()).To(Equal(path))
		Expect(s.OnFrame(e, 1)).To(MatchError(driver.ErrQuit))
	})

	It("should end a driver run as a hook", func() {
		s := load(`
			function on_frame(frame)
				if frame == 5 then chip8.quit() end
			end
		`)
		fe := frontend.NewHeadless()

		d := driver.New(e, fe, driver.Config{Fast: true, Hooks: []driver.Hook{s}})
		stats, err := d.Run(context.Background())

		Expect(err).NotTo(HaveOccurred())
		Expect(stats.Frames).To(Equal(uint64(5)))
	})

	It("should hold pressed keys across driver frames", func() {
		// LD V0, 5; SKP V0; JP 0x202; LD V1, 1; JP 0x208
		Expect(e.Load(program(0x6005, 0xE09E, 0x1202, 0x6101, 0x1208))).To(Succeed())
		s := load(`
			function on_frame(frame)
				if frame == 1 then chip8.press(5) end
			end
		`)
		fe := frontend.NewHeadless()
		d := driver.New(e, fe, driver.Config{
			Hooks:      []driver.Hook{s},
			KeySources: []driver.KeySource{s},
		})

		for i := 0; i < 10; i++ {
			more, err := d.Frame()
			Expect(err).NotTo(HaveOccurred())
			Expect(more).To(BeTrue())
		}

		Expect(e.KeyPressed(5)).To(BeTrue())
		Expect(e.RegFile().ReadV(1)).To(Equal(uint8(1)))
		Expect(e.RegFile().PC).To(Equal(uint16(0x208)))
	})

	It("should release a held key", func() {
		s := load(`
			function on_frame(frame)
				chip8.press(5, frame == 1)
			end
		`)

		Expect(s.OnFrame(e, 1)).To(Succeed())
		Expect(s.HeldKeys()[5]).To(BeTrue())

		Expect(s.OnFrame(e, 2)).To(Succeed())
		Expect(s.HeldKeys()[5]).To(BeFalse())
		Expect(e.KeyPressed(5)).To(BeFalse())
	})
})
