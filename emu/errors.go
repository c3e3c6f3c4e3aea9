package emu

import (
	"errors"
	"fmt"
)

// Load-time errors.
var (
	// ErrROMTooLarge is returned when a ROM does not fit between 0x200 and
	// the end of memory.
	ErrROMTooLarge = errors.New("rom too large")
)

// Runtime errors. All of them are fatal for the current run.
var (
	// ErrStackOverflow is returned when a call would exceed StackDepth
	// return addresses.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is returned when a return finds an empty stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrPCOutOfRange is returned when control would move to 0xFFF, where
	// no whole instruction fits.
	ErrPCOutOfRange = errors.New("program counter out of range")

	// ErrInstructionLimit is returned once the limit configured with
	// WithMaxInstructions is reached.
	ErrInstructionLimit = errors.New("max instructions reached")
)

// UnknownOpcodeError reports an instruction word with no meaning under the
// active profile.
type UnknownOpcodeError struct {
	Addr   uint16
	Opcode uint16
}

func (e *UnknownOpcodeError) Error() string {
	return fmt.Sprintf("unknown opcode 0x%04X at PC=0x%03X", e.Opcode, e.Addr)
}
