package emu

// LoadStoreUnit implements the CHIP-8 instructions that move data between
// registers and memory through the index register.
type LoadStoreUnit struct {
	regFile *RegFile
	memory  *Memory
	quirks  Quirks
}

// NewLoadStoreUnit creates a new LoadStoreUnit connected to the given
// register file and memory.
func NewLoadStoreUnit(regFile *RegFile, memory *Memory, quirks Quirks) *LoadStoreUnit {
	return &LoadStoreUnit{
		regFile: regFile,
		memory:  memory,
		quirks:  quirks,
	}
}

// LDI sets I = nnn.
func (lsu *LoadStoreUnit) LDI(nnn uint16) {
	lsu.regFile.SetI(nnn)
}

// ADDI performs I += Vx within the 12-bit address space. VF is not touched.
func (lsu *LoadStoreUnit) ADDI(x uint8) {
	lsu.regFile.SetI(lsu.regFile.I + uint16(lsu.regFile.ReadV(x)))
}

// LDF points I at the font sprite for the low nibble of Vx.
func (lsu *LoadStoreUnit) LDF(x uint8) {
	digit := uint16(lsu.regFile.ReadV(x) & 0xF)
	lsu.regFile.SetI(FontBase + digit*FontGlyphSize)
}

// LDB stores the decimal digits of Vx at I (hundreds), I+1 (tens) and
// I+2 (units).
func (lsu *LoadStoreUnit) LDB(x uint8) {
	v := lsu.regFile.ReadV(x)
	i := lsu.regFile.I

	lsu.memory.Write8(i, v/100)
	lsu.memory.Write8(i+1, (v/10)%10)
	lsu.memory.Write8(i+2, v%10)
}

// Store writes V0..Vx to memory starting at I.
func (lsu *LoadStoreUnit) Store(x uint8) {
	i := lsu.regFile.I
	for r := uint8(0); r <= x&0xF; r++ {
		lsu.memory.Write8(i+uint16(r), lsu.regFile.ReadV(r))
	}
	lsu.bumpIndex(x)
}

// Load reads V0..Vx from memory starting at I.
func (lsu *LoadStoreUnit) Load(x uint8) {
	i := lsu.regFile.I
	for r := uint8(0); r <= x&0xF; r++ {
		lsu.regFile.WriteV(r, lsu.memory.Read8(i+uint16(r)))
	}
	lsu.bumpIndex(x)
}

func (lsu *LoadStoreUnit) bumpIndex(x uint8) {
	if lsu.quirks.LoadStoreIncrementsI {
		lsu.regFile.SetI(lsu.regFile.I + uint16(x&0xF) + 1)
	}
}

// SpriteRows returns n bytes of sprite data starting at I.
func (lsu *LoadStoreUnit) SpriteRows(n uint8, buf []byte) []byte {
	buf = buf[:0]
	i := lsu.regFile.I
	for row := uint8(0); row < n; row++ {
		buf = append(buf, lsu.memory.Read8(i+uint16(row)))
	}
	return buf
}
