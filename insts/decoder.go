package insts

import "fmt"

// Op represents a CHIP-8 operation.
type Op uint8

// CHIP-8 operations.
const (
	OpUnknown Op = iota
	OpSYS        // 0NNN
	OpCLS        // 00E0
	OpRET        // 00EE
	OpJP         // 1NNN
	OpCALL       // 2NNN
	OpSEImm      // 3XNN
	OpSNEImm     // 4XNN
	OpSEReg      // 5XY0
	OpLDImm      // 6XNN
	OpADDImm     // 7XNN
	OpLDReg      // 8XY0
	OpOR         // 8XY1
	OpAND        // 8XY2
	OpXOR        // 8XY3
	OpADDReg     // 8XY4
	OpSUB        // 8XY5
	OpSHR        // 8XY6
	OpSUBN       // 8XY7
	OpSHL        // 8XYE
	OpSNEReg     // 9XY0
	OpLDI        // ANNN
	OpJPV0       // BNNN
	OpJPVx       // BXNN, SUPER-CHIP reading of BNNN
	OpRND        // CXNN
	OpDRW        // DXYN
	OpSKP        // EX9E
	OpSKNP       // EXA1
	OpLDVxDT     // FX07
	OpLDVxK      // FX0A
	OpLDDTVx     // FX15
	OpLDSTVx     // FX18
	OpADDI       // FX1E
	OpLDF        // FX29
	OpLDB        // FX33
	OpLDIVx      // FX55
	OpLDVxI      // FX65
)

var opNames = [...]string{
	OpUnknown: "???",
	OpSYS:     "SYS",
	OpCLS:     "CLS",
	OpRET:     "RET",
	OpJP:      "JP",
	OpCALL:    "CALL",
	OpSEImm:   "SE",
	OpSNEImm:  "SNE",
	OpSEReg:   "SE",
	OpLDImm:   "LD",
	OpADDImm:  "ADD",
	OpLDReg:   "LD",
	OpOR:      "OR",
	OpAND:     "AND",
	OpXOR:     "XOR",
	OpADDReg:  "ADD",
	OpSUB:     "SUB",
	OpSHR:     "SHR",
	OpSUBN:    "SUBN",
	OpSHL:     "SHL",
	OpSNEReg:  "SNE",
	OpLDI:     "LD",
	OpJPV0:    "JP",
	OpJPVx:    "JP",
	OpRND:     "RND",
	OpDRW:     "DRW",
	OpSKP:     "SKP",
	OpSKNP:    "SKNP",
	OpLDVxDT:  "LD",
	OpLDVxK:   "LD",
	OpLDDTVx:  "LD",
	OpLDSTVx:  "LD",
	OpADDI:    "ADD",
	OpLDF:     "LD",
	OpLDB:     "LD",
	OpLDIVx:   "LD",
	OpLDVxI:   "LD",
}

// String returns the assembler mnemonic of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return opNames[OpUnknown]
}

// Format represents the execution class of an instruction.
type Format uint8

// Instruction formats.
const (
	FormatUnknown Format = iota
	FormatSystem         // SYS, CLS
	FormatFlow           // JP, CALL, RET, JP V0, JP Vx
	FormatSkip           // SE, SNE, SKP, SKNP
	FormatRegImm         // LD Vx, nn / ADD Vx, nn / RND
	FormatALU            // 8XY_ register arithmetic
	FormatIndex          // LD I, ADD I, LD F
	FormatDraw           // DRW
	FormatTimer          // delay and sound timer access
	FormatKeyWait        // LD Vx, K
	FormatMemory         // LD B, LD [I], LD Vx [I]
)

// Instruction represents a decoded CHIP-8 instruction.
type Instruction struct {
	Op     Op     // Operation
	Format Format // Execution class

	Opcode uint16 // Raw 16-bit instruction word

	X   uint8  // Second nibble, register index
	Y   uint8  // Third nibble, register index
	N   uint8  // Lowest nibble
	NN  uint8  // Low byte
	NNN uint16 // Low 12 bits, address
}

// IsControlFlow reports whether the instruction sets PC itself instead of
// taking the default two-byte advance.
func (i *Instruction) IsControlFlow() bool {
	return i.Format == FormatFlow || i.Format == FormatSkip || i.Format == FormatKeyWait
}

// String renders the instruction in the conventional Cowgod assembler syntax.
func (i *Instruction) String() string {
	switch i.Op {
	case OpSYS, OpJP, OpCALL:
		return fmt.Sprintf("%s 0x%03X", i.Op, i.NNN)
	case OpCLS, OpRET:
		return i.Op.String()
	case OpSEImm, OpSNEImm, OpLDImm, OpADDImm, OpRND:
		return fmt.Sprintf("%s V%X, 0x%02X", i.Op, i.X, i.NN)
	case OpSEReg, OpSNEReg, OpLDReg, OpOR, OpAND, OpXOR, OpADDReg, OpSUB, OpSHR, OpSUBN, OpSHL:
		return fmt.Sprintf("%s V%X, V%X", i.Op, i.X, i.Y)
	case OpLDI:
		return fmt.Sprintf("LD I, 0x%03X", i.NNN)
	case OpJPV0:
		return fmt.Sprintf("JP V0, 0x%03X", i.NNN)
	case OpJPVx:
		return fmt.Sprintf("JP V%X, 0x%X%02X", i.X, i.X, i.NN)
	case OpDRW:
		return fmt.Sprintf("DRW V%X, V%X, %d", i.X, i.Y, i.N)
	case OpSKP, OpSKNP:
		return fmt.Sprintf("%s V%X", i.Op, i.X)
	case OpLDVxDT:
		return fmt.Sprintf("LD V%X, DT", i.X)
	case OpLDVxK:
		return fmt.Sprintf("LD V%X, K", i.X)
	case OpLDDTVx:
		return fmt.Sprintf("LD DT, V%X", i.X)
	case OpLDSTVx:
		return fmt.Sprintf("LD ST, V%X", i.X)
	case OpADDI:
		return fmt.Sprintf("ADD I, V%X", i.X)
	case OpLDF:
		return fmt.Sprintf("LD F, V%X", i.X)
	case OpLDB:
		return fmt.Sprintf("LD B, V%X", i.X)
	case OpLDIVx:
		return fmt.Sprintf("LD [I], V%X", i.X)
	case OpLDVxI:
		return fmt.Sprintf("LD V%X, [I]", i.X)
	default:
		return fmt.Sprintf("DW 0x%04X", i.Opcode)
	}
}

// Decoder decodes CHIP-8 opcodes into instructions.
type Decoder struct {
	// sys enables 0NNN as an assigned (no-op) instruction.
	sys bool
	// jumpVx decodes BNNN as BXNN.
	jumpVx bool
}

// DecoderOption is a functional option for configuring the Decoder.
type DecoderOption func(*Decoder)

// WithSYS makes 0NNN machine-code calls decode as SYS instead of unknown.
func WithSYS() DecoderOption {
	return func(d *Decoder) {
		d.sys = true
	}
}

// WithJumpVx makes BNNN decode as JP Vx, xnn, the SUPER-CHIP reading where
// the high nibble of the address also names the offset register.
func WithJumpVx() DecoderOption {
	return func(d *Decoder) {
		d.jumpVx = true
	}
}

// NewDecoder creates a new CHIP-8 instruction decoder.
func NewDecoder(opts ...DecoderOption) *Decoder {
	d := &Decoder{}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode decodes a 16-bit CHIP-8 opcode. Bit patterns with no assigned
// meaning decode to OpUnknown.
func (d *Decoder) Decode(opcode uint16) *Instruction {
	inst := &Instruction{}
	d.DecodeInto(opcode, inst)
	return inst
}

// DecodeInto decodes opcode into inst, overwriting every field.
func (d *Decoder) DecodeInto(opcode uint16, inst *Instruction) {
	*inst = Instruction{
		Op:     OpUnknown,
		Format: FormatUnknown,
		Opcode: opcode,
		X:      uint8(opcode>>8) & 0xF,
		Y:      uint8(opcode>>4) & 0xF,
		N:      uint8(opcode) & 0xF,
		NN:     uint8(opcode),
		NNN:    opcode & 0x0FFF,
	}

	switch opcode >> 12 {
	case 0x0:
		d.decodeSystem(opcode, inst)
	case 0x1:
		inst.set(OpJP, FormatFlow)
	case 0x2:
		inst.set(OpCALL, FormatFlow)
	case 0x3:
		inst.set(OpSEImm, FormatSkip)
	case 0x4:
		inst.set(OpSNEImm, FormatSkip)
	case 0x5:
		if inst.N == 0 {
			inst.set(OpSEReg, FormatSkip)
		}
	case 0x6:
		inst.set(OpLDImm, FormatRegImm)
	case 0x7:
		inst.set(OpADDImm, FormatRegImm)
	case 0x8:
		d.decodeALU(inst)
	case 0x9:
		if inst.N == 0 {
			inst.set(OpSNEReg, FormatSkip)
		}
	case 0xA:
		inst.set(OpLDI, FormatIndex)
	case 0xB:
		if d.jumpVx {
			inst.set(OpJPVx, FormatFlow)
		} else {
			inst.set(OpJPV0, FormatFlow)
		}
	case 0xC:
		inst.set(OpRND, FormatRegImm)
	case 0xD:
		inst.set(OpDRW, FormatDraw)
	case 0xE:
		switch inst.NN {
		case 0x9E:
			inst.set(OpSKP, FormatSkip)
		case 0xA1:
			inst.set(OpSKNP, FormatSkip)
		}
	case 0xF:
		d.decodeMisc(inst)
	}
}

func (i *Instruction) set(op Op, format Format) {
	i.Op = op
	i.Format = format
}

func (d *Decoder) decodeSystem(opcode uint16, inst *Instruction) {
	switch opcode {
	case 0x00E0:
		inst.set(OpCLS, FormatSystem)
	case 0x00EE:
		inst.set(OpRET, FormatFlow)
	default:
		if d.sys {
			inst.set(OpSYS, FormatSystem)
		}
	}
}

func (d *Decoder) decodeALU(inst *Instruction) {
	switch inst.N {
	case 0x0:
		inst.set(OpLDReg, FormatALU)
	case 0x1:
		inst.set(OpOR, FormatALU)
	case 0x2:
		inst.set(OpAND, FormatALU)
	case 0x3:
		inst.set(OpXOR, FormatALU)
	case 0x4:
		inst.set(OpADDReg, FormatALU)
	case 0x5:
		inst.set(OpSUB, FormatALU)
	case 0x6:
		inst.set(OpSHR, FormatALU)
	case 0x7:
		inst.set(OpSUBN, FormatALU)
	case 0xE:
		inst.set(OpSHL, FormatALU)
	}
}

func (d *Decoder) decodeMisc(inst *Instruction) {
	switch inst.NN {
	case 0x07:
		inst.set(OpLDVxDT, FormatTimer)
	case 0x0A:
		inst.set(OpLDVxK, FormatKeyWait)
	case 0x15:
		inst.set(OpLDDTVx, FormatTimer)
	case 0x18:
		inst.set(OpLDSTVx, FormatTimer)
	case 0x1E:
		inst.set(OpADDI, FormatIndex)
	case 0x29:
		inst.set(OpLDF, FormatIndex)
	case 0x33:
		inst.set(OpLDB, FormatMemory)
	case 0x55:
		inst.set(OpLDIVx, FormatMemory)
	case 0x65:
		inst.set(OpLDVxI, FormatMemory)
	}
}
