package emu

// ALU implements CHIP-8 register arithmetic and logic operations.
type ALU struct {
	regFile *RegFile
	quirks  Quirks
}

// NewALU creates a new ALU connected to the given register file.
func NewALU(regFile *RegFile, quirks Quirks) *ALU {
	return &ALU{regFile: regFile, quirks: quirks}
}

// LDImm performs Vx = nn.
func (a *ALU) LDImm(x, nn uint8) {
	a.regFile.WriteV(x, nn)
}

// ADDImm performs Vx += nn, wrapping at 256. VF is not touched.
func (a *ALU) ADDImm(x, nn uint8) {
	a.regFile.WriteV(x, a.regFile.ReadV(x)+nn)
}

// LD performs Vx = Vy.
func (a *ALU) LD(x, y uint8) {
	a.regFile.WriteV(x, a.regFile.ReadV(y))
}

// OR performs Vx |= Vy.
func (a *ALU) OR(x, y uint8) {
	a.regFile.WriteV(x, a.regFile.ReadV(x)|a.regFile.ReadV(y))
}

// AND performs Vx &= Vy.
func (a *ALU) AND(x, y uint8) {
	a.regFile.WriteV(x, a.regFile.ReadV(x)&a.regFile.ReadV(y))
}

// XOR performs Vx ^= Vy.
func (a *ALU) XOR(x, y uint8) {
	a.regFile.WriteV(x, a.regFile.ReadV(x)^a.regFile.ReadV(y))
}

// The flag-setting operations below compute the flag from the operands,
// write the result, then write VF. With x == F the flag is what remains.

// ADD performs Vx += Vy with VF = carry.
func (a *ALU) ADD(x, y uint8) {
	op1 := a.regFile.ReadV(x)
	op2 := a.regFile.ReadV(y)
	sum := uint16(op1) + uint16(op2)

	a.regFile.WriteV(x, uint8(sum))
	a.regFile.SetFlag(sum > 0xFF)
}

// SUB performs Vx -= Vy with VF = 1 when no borrow occurred.
func (a *ALU) SUB(x, y uint8) {
	op1 := a.regFile.ReadV(x)
	op2 := a.regFile.ReadV(y)

	a.regFile.WriteV(x, op1-op2)
	a.regFile.SetFlag(op1 >= op2)
}

// SUBN performs Vx = Vy - Vx with VF = 1 when no borrow occurred.
func (a *ALU) SUBN(x, y uint8) {
	op1 := a.regFile.ReadV(x)
	op2 := a.regFile.ReadV(y)

	a.regFile.WriteV(x, op2-op1)
	a.regFile.SetFlag(op2 >= op1)
}

// shiftSource returns the operand a shift works on for the active profile.
func (a *ALU) shiftSource(x, y uint8) uint8 {
	if a.quirks.ShiftUsesVy {
		return a.regFile.ReadV(y)
	}
	return a.regFile.ReadV(x)
}

// SHR shifts right by one. VF receives the bit shifted out.
func (a *ALU) SHR(x, y uint8) {
	src := a.shiftSource(x, y)

	a.regFile.WriteV(x, src>>1)
	a.regFile.SetFlag(src&0x01 != 0)
}

// SHL shifts left by one. VF receives the bit shifted out.
func (a *ALU) SHL(x, y uint8) {
	src := a.shiftSource(x, y)

	a.regFile.WriteV(x, src<<1)
	a.regFile.SetFlag(src&0x80 != 0)
}
