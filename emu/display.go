package emu

// Display dimensions.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Framebuffer is a snapshot of the display, indexed [row][column].
type Framebuffer [DisplayHeight][DisplayWidth]bool

// Pixel reports whether the pixel at column x, row y is lit. Coordinates
// wrap like sprite drawing does.
func (f Framebuffer) Pixel(x, y int) bool {
	return f[wrap(y, DisplayHeight)][wrap(x, DisplayWidth)]
}

// Lit returns the number of lit pixels.
func (f Framebuffer) Lit() int {
	n := 0
	for _, row := range f {
		for _, p := range row {
			if p {
				n++
			}
		}
	}
	return n
}

func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}

// Display is the monochrome 64x32 screen.
type Display struct {
	frame Framebuffer
}

// Clear turns every pixel off.
func (d *Display) Clear() {
	d.frame = Framebuffer{}
}

// DrawSprite XORs sprite rows onto the display with the top-left corner at
// (x, y). Each row is 8 pixels wide, most significant bit leftmost. Pixels
// past the right or bottom edge wrap to the opposite edge. It reports
// whether any lit pixel was turned off.
func (d *Display) DrawSprite(rows []byte, x, y uint8) bool {
	collision := false
	startX := int(x) % DisplayWidth
	startY := int(y) % DisplayHeight

	for n, bits := range rows {
		py := (startY + n) % DisplayHeight
		for bit := 0; bit < 8; bit++ {
			if bits&(0x80>>bit) == 0 {
				continue
			}
			px := (startX + bit) % DisplayWidth
			if d.frame[py][px] {
				collision = true
			}
			d.frame[py][px] = !d.frame[py][px]
		}
	}

	return collision
}

// Snapshot returns a copy of the current frame.
func (d *Display) Snapshot() Framebuffer {
	return d.frame
}
