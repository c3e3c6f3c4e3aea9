package benchmarks

import (
	"fmt"

	"github.com/chip8vm/chip8/emu"
)

// GetMicrobenchmarks returns the standard set of microbenchmarks. Each one
// stresses a different part of the cost table or the decode cache.
func GetMicrobenchmarks() []Benchmark {
	return []Benchmark{
		aluLoop(),
		callChain(),
		spriteDraw(),
		bcdMemory(),
		selfModifying(),
		timerPoll(),
		keyWait(),
	}
}

// GetCoreBenchmarks returns a minimal set for quick validation.
func GetCoreBenchmarks() []Benchmark {
	return []Benchmark{
		aluLoop(),
		spriteDraw(),
		selfModifying(),
	}
}

// 1. ALU loop - counts V0 through 256 values while summing into V2
func aluLoop() Benchmark {
	return Benchmark{
		Name:        "alu_loop",
		Description: "255-iteration ADD/SE/JP loop - measures ALU and branch cost",
		Program: BuildProgram(
			EncodeLDImm(0, 0),    // 0x200
			EncodeLDImm(1, 1),    // 0x202
			EncodeALU(0, 1, 0x4), // 0x204 ADD V0, V1
			EncodeALU(2, 0, 0x4), // 0x206 ADD V2, V0
			EncodeSEImm(0, 0),    // 0x208
			EncodeJP(0x204),      // 0x20A
			EncodeJP(0x20C),      // 0x20C halt
		),
		Check: func(e *emu.Emulator) error {
			regs := e.RegFile()
			if regs.PC != 0x20C {
				return fmt.Errorf("PC=0x%03X, want 0x20C", regs.PC)
			}
			// 1 + 2 + ... + 255 mod 256
			if regs.V[2] != 0x80 {
				return fmt.Errorf("V2=0x%02X, want 0x80", regs.V[2])
			}
			return nil
		},
	}
}

// 2. Call chain - one CALL/RET pair per iteration
func callChain() Benchmark {
	return Benchmark{
		Name:        "call_chain",
		Description: "CALL/RET per iteration - measures stack cost",
		Program: BuildProgram(
			EncodeADDImm(0, 1), // 0x200
			EncodeCALL(0x206),  // 0x202
			EncodeJP(0x200),    // 0x204
			EncodeADDImm(1, 1), // 0x206
			EncodeRET(),        // 0x208
		),
		Check: func(e *emu.Emulator) error {
			regs := e.RegFile()
			if d := regs.V[0] - regs.V[1]; d > 1 {
				return fmt.Errorf("V0=%d V1=%d drifted", regs.V[0], regs.V[1])
			}
			if depth := e.Stack().Depth(); depth > 1 {
				return fmt.Errorf("stack depth %d", depth)
			}
			return nil
		},
	}
}

// 3. Sprite draw - font glyphs marching across the display
func spriteDraw() Benchmark {
	return Benchmark{
		Name:        "sprite_draw",
		Description: "5-row DRW per iteration - measures display cost",
		Program: BuildProgram(
			EncodeCLS(),         // 0x200
			EncodeLDImm(0, 0),   // 0x202
			EncodeMisc(2, 0x29), // 0x204 LD F, V2
			EncodeDRW(0, 1, 5),  // 0x206
			EncodeADDImm(0, 5),  // 0x208
			EncodeADDImm(2, 1),  // 0x20A
			EncodeJP(0x204),     // 0x20C
		),
	}
}

// 4. BCD memory - decimal conversion and register block transfers
func bcdMemory() Benchmark {
	return Benchmark{
		Name:        "bcd_memory",
		Description: "LD B / LD [I] / LD Vx, [I] per iteration - measures memory cost",
		Program: BuildProgram(
			EncodeLDI(0x300),    // 0x200
			EncodeMisc(5, 0x33), // 0x202 LD B, V5
			EncodeMisc(2, 0x65), // 0x204 LD V2, [I]
			EncodeMisc(2, 0x55), // 0x206 LD [I], V2
			EncodeADDImm(5, 1),  // 0x208
			EncodeJP(0x202),     // 0x20A
		),
		Check: func(e *emu.Emulator) error {
			mem := e.Memory()
			h, t, o := mem.Read8(0x300), mem.Read8(0x301), mem.Read8(0x302)
			if h > 2 || t > 9 || o > 9 {
				return fmt.Errorf("bad BCD digits %d %d %d", h, t, o)
			}
			return nil
		},
	}
}

// 5. Self-modifying - rewrites the immediate of an instruction it executes
func selfModifying() Benchmark {
	return Benchmark{
		Name:        "self_modifying",
		Description: "stores into its own code every iteration - measures stale decodes",
		Program: BuildProgram(
			EncodeLDI(0x209),     // 0x200 low byte of the instruction at 0x208
			EncodeADDImm(0, 1),   // 0x202
			EncodeMisc(0, 0x55),  // 0x204 LD [I], V0
			EncodeALU(3, 3, 0x0), // 0x206 LD V3, V3
			EncodeLDImm(1, 0),    // 0x208 immediate rewritten
			EncodeJP(0x202),      // 0x20A
		),
		Check: func(e *emu.Emulator) error {
			regs := e.RegFile()
			if d := regs.V[0] - regs.V[1]; d > 1 {
				return fmt.Errorf("V1=%d lags V0=%d", regs.V[1], regs.V[0])
			}
			if cache := e.DecodeCache(); cache != nil && cache.Stats().Stale == 0 {
				return fmt.Errorf("no stale decodes detected")
			}
			return nil
		},
	}
}

// 6. Timer poll - spins on the delay timer until it expires
func timerPoll() Benchmark {
	return Benchmark{
		Name:        "timer_poll",
		Description: "busy-waits one second on the delay timer",
		Frames:      70,
		Program: BuildProgram(
			EncodeLDImm(0, 60),  // 0x200
			EncodeMisc(0, 0x15), // 0x202 LD DT, V0
			EncodeMisc(1, 0x07), // 0x204 LD V1, DT
			EncodeSEImm(1, 0),   // 0x206
			EncodeJP(0x204),     // 0x208
			EncodeJP(0x20A),     // 0x20A halt
		),
		Check: func(e *emu.Emulator) error {
			if pc := e.RegFile().PC; pc != 0x20A {
				return fmt.Errorf("PC=0x%03X, want 0x20A", pc)
			}
			return nil
		},
	}
}

// 7. Key wait - blocks on LD Vx, K with no input
func keyWait() Benchmark {
	return Benchmark{
		Name:        "key_wait",
		Description: "blocks on LD V1, K - every frame after the first is a wait frame",
		Frames:      10,
		Program: BuildProgram(
			EncodeLDImm(0, 7),   // 0x200
			EncodeMisc(1, 0x0A), // 0x202 LD V1, K
			EncodeJP(0x204),     // 0x204
		),
		Check: func(e *emu.Emulator) error {
			if e.State() != emu.AwaitingKey {
				return fmt.Errorf("state %s, want %s", e.State(), emu.AwaitingKey)
			}
			return nil
		},
	}
}

// Helper functions for building CHIP-8 programs

// BuildProgram assembles instruction words into a big-endian ROM image.
func BuildProgram(words ...uint16) []byte {
	program := make([]byte, 0, len(words)*2)
	for _, w := range words {
		program = append(program, byte(w>>8), byte(w))
	}
	return program
}

func encodeXNN(op uint16, x, nn uint8) uint16 {
	return op<<12 | uint16(x&0xF)<<8 | uint16(nn)
}

// EncodeCLS encodes 00E0.
func EncodeCLS() uint16 { return 0x00E0 }

// EncodeRET encodes 00EE.
func EncodeRET() uint16 { return 0x00EE }

// EncodeJP encodes 1NNN.
func EncodeJP(nnn uint16) uint16 { return 0x1000 | nnn&0xFFF }

// EncodeCALL encodes 2NNN.
func EncodeCALL(nnn uint16) uint16 { return 0x2000 | nnn&0xFFF }

// EncodeSEImm encodes 3XNN.
func EncodeSEImm(x, nn uint8) uint16 { return encodeXNN(0x3, x, nn) }

// EncodeLDImm encodes 6XNN.
func EncodeLDImm(x, nn uint8) uint16 { return encodeXNN(0x6, x, nn) }

// EncodeADDImm encodes 7XNN.
func EncodeADDImm(x, nn uint8) uint16 { return encodeXNN(0x7, x, nn) }

// EncodeALU encodes 8XYN.
func EncodeALU(x, y, n uint8) uint16 {
	return 0x8000 | uint16(x&0xF)<<8 | uint16(y&0xF)<<4 | uint16(n&0xF)
}

// EncodeLDI encodes ANNN.
func EncodeLDI(nnn uint16) uint16 { return 0xA000 | nnn&0xFFF }

// EncodeDRW encodes DXYN.
func EncodeDRW(x, y, n uint8) uint16 {
	return 0xD000 | uint16(x&0xF)<<8 | uint16(y&0xF)<<4 | uint16(n&0xF)
}

// EncodeMisc encodes FXNN.
func EncodeMisc(x, nn uint8) uint16 { return encodeXNN(0xF, x, nn) }
