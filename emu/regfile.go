// Package emu provides functional CHIP-8 emulation.
package emu

import "fmt"

// VF is the flag register index.
const VF = 0xF

// RegFile represents the CHIP-8 register file.
// It contains 16 general-purpose 8-bit registers (V0-VF), the index
// register, the program counter and the two countdown timers.
type RegFile struct {
	// V holds general-purpose registers V0-VF.
	// VF doubles as the carry, borrow and collision flag.
	V [16]uint8

	// I is the index register. Only the low 12 bits are ever set.
	I uint16

	// PC is the program counter. Only the low 12 bits are ever set.
	PC uint16

	// DT is the delay timer.
	DT uint8

	// ST is the sound timer.
	ST uint8
}

// ReadV reads register Vx. The index is masked to 4 bits.
func (r *RegFile) ReadV(x uint8) uint8 {
	return r.V[x&0xF]
}

// WriteV writes register Vx. The index is masked to 4 bits.
func (r *RegFile) WriteV(x uint8, value uint8) {
	r.V[x&0xF] = value
}

// SetFlag writes VF as 0 or 1.
func (r *RegFile) SetFlag(set bool) {
	if set {
		r.V[VF] = 1
		return
	}
	r.V[VF] = 0
}

// SetI writes the index register, truncated to the 12-bit address space.
func (r *RegFile) SetI(value uint16) {
	r.I = value & AddressMask
}

// SetPC writes the program counter, truncated to the 12-bit address space.
// A target past MaxPC fails with ErrPCOutOfRange and leaves PC unchanged.
func (r *RegFile) SetPC(value uint16) error {
	value &= AddressMask
	if err := checkPC(value); err != nil {
		return err
	}
	r.PC = value
	return nil
}

// Advance moves the program counter forward by n instruction words.
func (r *RegFile) Advance(n uint16) error {
	return r.SetPC(r.PC + 2*n)
}

func checkPC(addr uint16) error {
	if addr&AddressMask > MaxPC {
		return fmt.Errorf("0x%03X: %w", addr&AddressMask, ErrPCOutOfRange)
	}
	return nil
}

// TickTimers decrements both timers by one, stopping at zero.
func (r *RegFile) TickTimers() {
	if r.DT > 0 {
		r.DT--
	}
	if r.ST > 0 {
		r.ST--
	}
}
