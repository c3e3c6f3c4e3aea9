package frontend

import (
	"image"
	"image/color"
	"image/draw"

	"github.com/chip8vm/chip8/emu"
)

// Style describes how a framebuffer is drawn: each CHIP-8 pixel becomes a
// Scale x Scale cell with a Border-wide gap of background around it.
type Style struct {
	Scale      int
	Border     int
	Background color.RGBA
	Foreground color.RGBA
}

// DefaultStyle returns 14 pixel cells with a 1 pixel border, grey on blue.
func DefaultStyle() Style {
	return Style{
		Scale:      14,
		Border:     1,
		Background: color.RGBA{R: 0, G: 0, B: 255, A: 255},
		Foreground: color.RGBA{R: 200, G: 200, B: 200, A: 255},
	}
}

// normalized fills in defaults for unusable values.
func (s Style) normalized() Style {
	if s.Scale <= 0 {
		s.Scale = DefaultStyle().Scale
	}
	if s.Border < 0 || 2*s.Border >= s.Scale {
		s.Border = 0
	}
	return s
}

// Size returns the rendered width and height in host pixels.
func (s Style) Size() (int, int) {
	s = s.normalized()
	return emu.DisplayWidth * s.Scale, emu.DisplayHeight * s.Scale
}

// Cell returns the lit area of the cell at column x, row y.
func (s Style) Cell(x, y int) image.Rectangle {
	s = s.normalized()
	return image.Rect(
		x*s.Scale+s.Border,
		y*s.Scale+s.Border,
		(x+1)*s.Scale-s.Border,
		(y+1)*s.Scale-s.Border,
	)
}

// Render draws fb into dst, allocating a new image when dst is nil or the
// wrong size.
func Render(dst *image.RGBA, fb *emu.Framebuffer, s Style) *image.RGBA {
	s = s.normalized()
	w, h := s.Size()
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}

	bg := image.NewUniform(s.Background)
	fg := image.NewUniform(s.Foreground)
	draw.Draw(dst, dst.Bounds(), bg, image.Point{}, draw.Src)

	for y := 0; y < emu.DisplayHeight; y++ {
		for x := 0; x < emu.DisplayWidth; x++ {
			if fb[y][x] {
				draw.Draw(dst, s.Cell(x, y), fg, image.Point{}, draw.Src)
			}
		}
	}
	return dst
}
