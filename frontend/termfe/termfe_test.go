package termfe_test

import (
	"bytes"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/emu"
	"github.com/chip8vm/chip8/frontend"
	"github.com/chip8vm/chip8/frontend/termfe"
)

var _ = Describe("Render", func() {
	It("should pack two pixel rows per line", func() {
		var fb emu.Framebuffer
		fb[0][0] = true
		fb[1][0] = true
		fb[0][1] = true
		fb[1][2] = true

		lines := strings.Split(termfe.Render(&fb), "\r\n")

		Expect(lines).To(HaveLen(17))
		Expect(lines[16]).To(BeEmpty())
		Expect([]rune(lines[0])).To(HaveLen(64))
		Expect(string([]rune(lines[0])[:4])).To(Equal("█▀▄ "))
		Expect(strings.TrimSpace(lines[1])).To(BeEmpty())
	})
})

var _ = Describe("Frontend", func() {
	var (
		out *bytes.Buffer
		fe  *termfe.Frontend
	)

	newFrontend := func(input string) {
		var err error
		out = &bytes.Buffer{}
		fe, err = termfe.New(termfe.Config{
			In:         strings.NewReader(input),
			Out:        out,
			HoldFrames: 2,
		})
		Expect(err).NotTo(HaveOccurred())
	}

	pollUntil := func(match func(frontend.Input) bool) frontend.Input {
		var in frontend.Input
		Eventually(func() bool {
			var err error
			in, err = fe.Poll()
			Expect(err).NotTo(HaveOccurred())
			return match(in)
		}).Should(BeTrue())
		return in
	}

	It("should hold a typed key for a few frames", func() {
		newFrontend("w")

		pollUntil(func(in frontend.Input) bool { return in.Keys[0x5] })

		in, _ := fe.Poll()
		Expect(in.Keys[0x5]).To(BeTrue())
		in, _ = fe.Poll()
		Expect(in.Keys[0x5]).To(BeFalse())
	})

	It("should release a key for one poll before a repeat press", func() {
		newFrontend("")
		poll := func() bool {
			in, err := fe.Poll()
			Expect(err).NotTo(HaveOccurred())
			return in.Keys[0x5]
		}

		fe.Type("w")
		Expect(poll()).To(BeTrue())
		Expect(poll()).To(BeTrue())

		fe.Type("w")
		Expect(poll()).To(BeFalse())
		Expect(poll()).To(BeTrue())
		Expect(poll()).To(BeTrue())
		Expect(poll()).To(BeFalse())
	})

	It("should keep a key down when it repeats inside its hold", func() {
		newFrontend("")

		fe.Type("w")
		in, _ := fe.Poll()
		Expect(in.Keys[0x5]).To(BeTrue())

		fe.Type("w")
		in, _ = fe.Poll()
		Expect(in.Keys[0x5]).To(BeTrue())
		in, _ = fe.Poll()
		Expect(in.Keys[0x5]).To(BeTrue())
	})

	It("should quit on space", func() {
		newFrontend(" ")

		pollUntil(func(in frontend.Input) bool { return in.Quit })
	})

	It("should quit on ctrl-c", func() {
		newFrontend("\x03")

		pollUntil(func(in frontend.Input) bool { return in.Quit })
	})

	It("should draw frames and ring the bell once per tone", func() {
		newFrontend("")
		var fb emu.Framebuffer
		fb[0][0] = true

		Expect(fe.Present(fb)).To(Succeed())
		fe.SetSound(true)
		fe.SetSound(true)
		Expect(fe.Close()).To(Succeed())

		Expect(out.String()).To(ContainSubstring("\x1b[H▀"))
		Expect(strings.Count(out.String(), "\a")).To(Equal(1))
		Expect(out.String()).To(HaveSuffix("\x1b[?25h\r\n"))
	})
})
