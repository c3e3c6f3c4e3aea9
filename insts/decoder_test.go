package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/chip8vm/chip8/insts"
)

var _ = Describe("Decoder", func() {
	var decoder *insts.Decoder

	BeforeEach(func() {
		decoder = insts.NewDecoder()
	})

	Describe("operand fields", func() {
		// DRW VA, VB, 5 -> 0xDAB5
		It("should split DXYN into nibbles", func() {
			inst := decoder.Decode(0xDAB5)

			Expect(inst.Op).To(Equal(insts.OpDRW))
			Expect(inst.Format).To(Equal(insts.FormatDraw))
			Expect(inst.Opcode).To(Equal(uint16(0xDAB5)))
			Expect(inst.X).To(Equal(uint8(0xA)))
			Expect(inst.Y).To(Equal(uint8(0xB)))
			Expect(inst.N).To(Equal(uint8(0x5)))
		})

		It("should extract NN and NNN", func() {
			inst := decoder.Decode(0x3C7E)

			Expect(inst.X).To(Equal(uint8(0xC)))
			Expect(inst.NN).To(Equal(uint8(0x7E)))
			Expect(inst.NNN).To(Equal(uint16(0xC7E)))
		})
	})

	DescribeTable("documented instructions",
		func(opcode uint16, op insts.Op, format insts.Format, text string) {
			inst := decoder.Decode(opcode)

			Expect(inst.Op).To(Equal(op))
			Expect(inst.Format).To(Equal(format))
			Expect(inst.String()).To(Equal(text))
		},
		Entry("CLS", uint16(0x00E0), insts.OpCLS, insts.FormatSystem, "CLS"),
		Entry("RET", uint16(0x00EE), insts.OpRET, insts.FormatFlow, "RET"),
		Entry("JP", uint16(0x1234), insts.OpJP, insts.FormatFlow, "JP 0x234"),
		Entry("CALL", uint16(0x2ABC), insts.OpCALL, insts.FormatFlow, "CALL 0xABC"),
		Entry("SE Vx, nn", uint16(0x3A10), insts.OpSEImm, insts.FormatSkip, "SE VA, 0x10"),
		Entry("SNE Vx, nn", uint16(0x4B20), insts.OpSNEImm, insts.FormatSkip, "SNE VB, 0x20"),
		Entry("SE Vx, Vy", uint16(0x5120), insts.OpSEReg, insts.FormatSkip, "SE V1, V2"),
		Entry("LD Vx, nn", uint16(0x6F01), insts.OpLDImm, insts.FormatRegImm, "LD VF, 0x01"),
		Entry("ADD Vx, nn", uint16(0x7305), insts.OpADDImm, insts.FormatRegImm, "ADD V3, 0x05"),
		Entry("LD Vx, Vy", uint16(0x8120), insts.OpLDReg, insts.FormatALU, "LD V1, V2"),
		Entry("OR", uint16(0x8121), insts.OpOR, insts.FormatALU, "OR V1, V2"),
		Entry("AND", uint16(0x8122), insts.OpAND, insts.FormatALU, "AND V1, V2"),
		Entry("XOR", uint16(0x8123), insts.OpXOR, insts.FormatALU, "XOR V1, V2"),
		Entry("ADD Vx, Vy", uint16(0x8124), insts.OpADDReg, insts.FormatALU, "ADD V1, V2"),
		Entry("SUB", uint16(0x8125), insts.OpSUB, insts.FormatALU, "SUB V1, V2"),
		Entry("SHR", uint16(0x8126), insts.OpSHR, insts.FormatALU, "SHR V1, V2"),
		Entry("SUBN", uint16(0x8127), insts.OpSUBN, insts.FormatALU, "SUBN V1, V2"),
		Entry("SHL", uint16(0x812E), insts.OpSHL, insts.FormatALU, "SHL V1, V2"),
		Entry("SNE Vx, Vy", uint16(0x9450), insts.OpSNEReg, insts.FormatSkip, "SNE V4, V5"),
		Entry("LD I", uint16(0xA300), insts.OpLDI, insts.FormatIndex, "LD I, 0x300"),
		Entry("JP V0", uint16(0xB210), insts.OpJPV0, insts.FormatFlow, "JP V0, 0x210"),
		Entry("RND", uint16(0xC70F), insts.OpRND, insts.FormatRegImm, "RND V7, 0x0F"),
		Entry("DRW", uint16(0xD125), insts.OpDRW, insts.FormatDraw, "DRW V1, V2, 5"),
		Entry("SKP", uint16(0xE29E), insts.OpSKP, insts.FormatSkip, "SKP V2"),
		Entry("SKNP", uint16(0xE2A1), insts.OpSKNP, insts.FormatSkip, "SKNP V2"),
		Entry("LD Vx, DT", uint16(0xF307), insts.OpLDVxDT, insts.FormatTimer, "LD V3, DT"),
		Entry("LD Vx, K", uint16(0xF30A), insts.OpLDVxK, insts.FormatKeyWait, "LD V3, K"),
		Entry("LD DT, Vx", uint16(0xF315), insts.OpLDDTVx, insts.FormatTimer, "LD DT, V3"),
		Entry("LD ST, Vx", uint16(0xF318), insts.OpLDSTVx, insts.FormatTimer, "LD ST, V3"),
		Entry("ADD I, Vx", uint16(0xF31E), insts.OpADDI, insts.FormatIndex, "ADD I, V3"),
		Entry("LD F, Vx", uint16(0xF329), insts.OpLDF, insts.FormatIndex, "LD F, V3"),
		Entry("LD B, Vx", uint16(0xF333), insts.OpLDB, insts.FormatMemory, "LD B, V3"),
		Entry("LD [I], Vx", uint16(0xF355), insts.OpLDIVx, insts.FormatMemory, "LD [I], V3"),
		Entry("LD Vx, [I]", uint16(0xF365), insts.OpLDVxI, insts.FormatMemory, "LD V3, [I]"),
	)

	DescribeTable("unassigned bit patterns",
		func(opcode uint16) {
			inst := decoder.Decode(opcode)

			Expect(inst.Op).To(Equal(insts.OpUnknown))
			Expect(inst.Format).To(Equal(insts.FormatUnknown))
			Expect(inst.Opcode).To(Equal(opcode))
		},
		Entry("0NNN without SYS", uint16(0x0123)),
		Entry("zero word", uint16(0x0000)),
		Entry("5XY1", uint16(0x5121)),
		Entry("8XY8", uint16(0x8128)),
		Entry("8XYF", uint16(0x812F)),
		Entry("9XY1", uint16(0x9121)),
		Entry("EX00", uint16(0xE100)),
		Entry("FX00", uint16(0xF100)),
		Entry("FXFF", uint16(0xF1FF)),
	)

	Describe("SYS", func() {
		It("should decode 0NNN as SYS when enabled", func() {
			decoder = insts.NewDecoder(insts.WithSYS())
			inst := decoder.Decode(0x0123)

			Expect(inst.Op).To(Equal(insts.OpSYS))
			Expect(inst.Format).To(Equal(insts.FormatSystem))
			Expect(inst.String()).To(Equal("SYS 0x123"))
		})

		It("should still decode CLS and RET when SYS is enabled", func() {
			decoder = insts.NewDecoder(insts.WithSYS())

			Expect(decoder.Decode(0x00E0).Op).To(Equal(insts.OpCLS))
			Expect(decoder.Decode(0x00EE).Op).To(Equal(insts.OpRET))
		})
	})

	Describe("BNNN", func() {
		It("should name the offset register from the address when enabled", func() {
			decoder = insts.NewDecoder(insts.WithJumpVx())
			inst := decoder.Decode(0xB210)

			Expect(inst.Op).To(Equal(insts.OpJPVx))
			Expect(inst.Format).To(Equal(insts.FormatFlow))
			Expect(inst.String()).To(Equal("JP V2, 0x210"))
			Expect(inst.IsControlFlow()).To(BeTrue())
		})
	})

	Describe("control flow classification", func() {
		It("should flag jumps, skips and key waits", func() {
			Expect(decoder.Decode(0x1200).IsControlFlow()).To(BeTrue())
			Expect(decoder.Decode(0x3000).IsControlFlow()).To(BeTrue())
			Expect(decoder.Decode(0xF00A).IsControlFlow()).To(BeTrue())
		})

		It("should not flag plain instructions", func() {
			Expect(decoder.Decode(0x6000).IsControlFlow()).To(BeFalse())
			Expect(decoder.Decode(0xD001).IsControlFlow()).To(BeFalse())
		})
	})

	It("should render unknown words as data", func() {
		Expect(decoder.Decode(0xFFFF).String()).To(Equal("DW 0xFFFF"))
	})
})
