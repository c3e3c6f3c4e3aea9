package emu

// BranchUnit implements CHIP-8 control flow: jumps, subroutine calls and
// conditional skips. Every method leaves PC at its final value; the caller
// must not advance it again. A failed method leaves PC and the stack as
// they were.
type BranchUnit struct {
	regFile *RegFile
	stack   *Stack
	quirks  Quirks
}

// NewBranchUnit creates a new BranchUnit connected to the given register
// file and stack.
func NewBranchUnit(regFile *RegFile, stack *Stack, quirks Quirks) *BranchUnit {
	return &BranchUnit{regFile: regFile, stack: stack, quirks: quirks}
}

// JP jumps to nnn.
func (b *BranchUnit) JP(nnn uint16) error {
	return b.regFile.SetPC(nnn)
}

// CALL pushes the address of the next instruction and jumps to nnn.
func (b *BranchUnit) CALL(nnn uint16) error {
	ret := (b.regFile.PC + 2) & AddressMask
	if err := checkPC(nnn); err != nil {
		return err
	}
	if err := checkPC(ret); err != nil {
		return err
	}
	if err := b.stack.Push(ret); err != nil {
		return err
	}
	return b.regFile.SetPC(nnn)
}

// RET pops the return address into PC.
func (b *BranchUnit) RET() error {
	addr, err := b.stack.Pop()
	if err != nil {
		return err
	}
	return b.regFile.SetPC(addr)
}

// JPOffset performs BNNN. The original interpreter jumps to NNN + V0;
// SUPER-CHIP era interpreters read the upper nibble of NNN as a register
// and jump to XNN + VX.
func (b *BranchUnit) JPOffset(x uint8, nnn uint16) error {
	return b.regFile.SetPC(nnn + uint16(b.regFile.ReadV(b.offsetRegister(x))))
}

func (b *BranchUnit) offsetRegister(x uint8) uint8 {
	if b.quirks.JumpUsesVx {
		return x
	}
	return 0
}

// Skip skips the next instruction when cond holds, otherwise advances to it.
func (b *BranchUnit) Skip(cond bool) error {
	if cond {
		return b.regFile.Advance(2)
	}
	return b.regFile.Advance(1)
}
