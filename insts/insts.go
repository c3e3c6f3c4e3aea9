// Package insts provides CHIP-8 instruction definitions and decoding.
//
// This package turns 16-bit CHIP-8 opcodes into structured instruction
// descriptors. It covers the 35 documented instructions:
//   - System and flow control: SYS, CLS, RET, JP, CALL, JP V0, JP Vx
//   - Conditional skips: SE, SNE, SKP, SKNP
//   - Register arithmetic: LD, ADD, OR, AND, XOR, SUB, SUBN, SHR, SHL
//   - Index, memory, timer and display instructions
//
// Usage:
//
//	decoder := insts.NewDecoder()
//	inst := decoder.Decode(0x6A2F) // LD VA, 0x2F
//	fmt.Printf("Op: %v, X: %d, NN: %#x\n", inst.Op, inst.X, inst.NN)
package insts
