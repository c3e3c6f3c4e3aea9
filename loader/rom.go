// Package loader provides CHIP-8 ROM image loading.
package loader

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chip8vm/chip8/emu"
)

// ROM represents a raw CHIP-8 program image ready for Emulator.Load.
type ROM struct {
	// Name identifies the ROM, normally its file name.
	Name string
	// Data contains the program bytes, loaded at emu.ProgramStart.
	Data []byte
}

// Size returns the image size in bytes.
func (r *ROM) Size() int {
	return len(r.Data)
}

// Checksum returns the hex SHA-1 of the image, the usual key in CHIP-8
// ROM databases.
func (r *ROM) Checksum() string {
	sum := sha1.Sum(r.Data)
	return hex.EncodeToString(sum[:])
}

// Load reads a ROM image from path.
func Load(path string) (*ROM, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ROM: %w", err)
	}
	defer func() { _ = f.Close() }()

	return Read(f, filepath.Base(path))
}

// Read reads a ROM image from r. Images larger than emu.MaxROMSize fail
// with emu.ErrROMTooLarge.
func Read(r io.Reader, name string) (*ROM, error) {
	// Read one byte past the limit to detect oversize images.
	data, err := io.ReadAll(io.LimitReader(r, emu.MaxROMSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read ROM %s: %w", name, err)
	}

	if len(data) > emu.MaxROMSize {
		return nil, fmt.Errorf("ROM %s exceeds %d bytes: %w", name, emu.MaxROMSize, emu.ErrROMTooLarge)
	}

	return &ROM{Name: name, Data: data}, nil
}
