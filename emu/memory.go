package emu

// Memory layout constants.
//
//	0x000-0x1FF: interpreter area, font sprites at FontBase
//	0x200-0xFFF: program space
const (
	MemorySize   = 4096
	AddressMask  = MemorySize - 1
	ProgramStart = 0x200
	MaxROMSize   = MemorySize - ProgramStart

	// MaxPC is the highest address a two-byte instruction can start at.
	MaxPC = MemorySize - 2

	// FontBase is where the built-in hexadecimal digit sprites live.
	FontBase = 0x050
	// FontGlyphSize is the height in bytes of one digit sprite.
	FontGlyphSize = 5
)

// Font holds the sprites for hexadecimal digits 0-F, FontGlyphSize bytes each.
var Font = [16 * FontGlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the 4KB CHIP-8 address space. Every address is wrapped to
// 12 bits, so no access is ever out of range.
type Memory struct {
	data [MemorySize]byte
}

// NewMemory creates zeroed memory.
func NewMemory() *Memory {
	return &Memory{}
}

// Read8 reads the byte at addr.
func (m *Memory) Read8(addr uint16) uint8 {
	return m.data[addr&AddressMask]
}

// Write8 writes the byte at addr.
func (m *Memory) Write8(addr uint16, value uint8) {
	m.data[addr&AddressMask] = value
}

// Read16 reads a big-endian word. The second byte wraps independently, so a
// fetch at 0xFFF reads 0xFFF and 0x000.
func (m *Memory) Read16(addr uint16) uint16 {
	return uint16(m.Read8(addr))<<8 | uint16(m.Read8(addr+1))
}

// Write16 writes a big-endian word.
func (m *Memory) Write16(addr uint16, value uint16) {
	m.Write8(addr, uint8(value>>8))
	m.Write8(addr+1, uint8(value))
}

// LoadBlock copies data starting at addr, wrapping at the end of memory.
func (m *Memory) LoadBlock(addr uint16, data []byte) {
	for i, b := range data {
		m.Write8(addr+uint16(i), b)
	}
}

// Clear zeroes all of memory.
func (m *Memory) Clear() {
	m.data = [MemorySize]byte{}
}
