package emu_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/emu"
)

var _ = Describe("ALU", func() {
	var (
		regFile *emu.RegFile
		alu     *emu.ALU
	)

	BeforeEach(func() {
		regFile = &emu.RegFile{}
		alu = emu.NewALU(regFile, emu.ProfileModern.Quirks())
	})

	Describe("ADDImm", func() {
		It("should wrap without touching VF", func() {
			regFile.V[1] = 0xFF
			regFile.V[emu.VF] = 7

			alu.ADDImm(1, 0x02)

			Expect(regFile.V[1]).To(Equal(uint8(0x01)))
			Expect(regFile.V[emu.VF]).To(Equal(uint8(7)))
		})
	})

	Describe("ADD", func() {
		It("should set VF on carry", func() {
			regFile.V[1] = 0xFF
			regFile.V[2] = 0x01

			alu.ADD(1, 2)

			Expect(regFile.V[1]).To(BeZero())
			Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))
		})

		It("should clear VF without carry", func() {
			regFile.V[1] = 0x10
			regFile.V[2] = 0x20
			regFile.V[emu.VF] = 1

			alu.ADD(1, 2)

			Expect(regFile.V[1]).To(Equal(uint8(0x30)))
			Expect(regFile.V[emu.VF]).To(BeZero())
		})

		It("should let the flag win when the destination is VF", func() {
			regFile.V[emu.VF] = 0xFF
			regFile.V[2] = 0x02

			alu.ADD(emu.VF, 2)

			Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))
		})
	})

	Describe("SUB and SUBN", func() {
		It("should set VF when no borrow occurs", func() {
			regFile.V[1] = 5
			regFile.V[2] = 3

			alu.SUB(1, 2)

			Expect(regFile.V[1]).To(Equal(uint8(2)))
			Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))
		})

		It("should set VF for equal operands", func() {
			regFile.V[1] = 4
			regFile.V[2] = 4

			alu.SUB(1, 2)

			Expect(regFile.V[1]).To(BeZero())
			Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))
		})

		It("should clear VF on borrow", func() {
			regFile.V[1] = 3
			regFile.V[2] = 5

			alu.SUB(1, 2)

			Expect(regFile.V[1]).To(Equal(uint8(0xFE)))
			Expect(regFile.V[emu.VF]).To(BeZero())
		})

		It("should subtract in reverse for SUBN", func() {
			regFile.V[1] = 3
			regFile.V[2] = 5

			alu.SUBN(1, 2)

			Expect(regFile.V[1]).To(Equal(uint8(2)))
			Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))
		})
	})

	Describe("logic", func() {
		It("should compute OR, AND and XOR", func() {
			regFile.V[1] = 0b1100
			regFile.V[2] = 0b1010

			alu.OR(1, 2)
			Expect(regFile.V[1]).To(Equal(uint8(0b1110)))

			alu.AND(1, 2)
			Expect(regFile.V[1]).To(Equal(uint8(0b1010)))

			alu.XOR(1, 2)
			Expect(regFile.V[1]).To(BeZero())
		})

		It("should copy a register", func() {
			regFile.V[4] = 0x99

			alu.LD(3, 4)

			Expect(regFile.V[3]).To(Equal(uint8(0x99)))
		})
	})

	Describe("shifts", func() {
		BeforeEach(func() {
			regFile.V[1] = 0x81
			regFile.V[2] = 0x40
		})

		Context("modern profile", func() {
			It("should shift Vx in place", func() {
				alu.SHR(1, 2)
				Expect(regFile.V[1]).To(Equal(uint8(0x40)))
				Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))

				regFile.V[1] = 0x81
				alu.SHL(1, 2)
				Expect(regFile.V[1]).To(Equal(uint8(0x02)))
				Expect(regFile.V[emu.VF]).To(Equal(uint8(1)))
			})
		})

		Context("original profile", func() {
			BeforeEach(func() {
				alu = emu.NewALU(regFile, emu.ProfileOriginal.Quirks())
			})

			It("should shift Vy into Vx", func() {
				alu.SHR(1, 2)
				Expect(regFile.V[1]).To(Equal(uint8(0x20)))
				Expect(regFile.V[2]).To(Equal(uint8(0x40)))
				Expect(regFile.V[emu.VF]).To(BeZero())

				alu.SHL(1, 2)
				Expect(regFile.V[1]).To(Equal(uint8(0x80)))
				Expect(regFile.V[emu.VF]).To(BeZero())
			})
		})
	})
})
