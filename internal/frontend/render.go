package frontend

import (
	"fmt"
	"image/color"
	"strconv"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// palette holds the two display colors.
type palette struct {
	foreground color.RGBA
	background color.RGBA
}

// newPalette parses foreground and background RRGGBB hex values.
func newPalette(foreground, background string) (palette, error) {
	fg, err := parseColor(foreground)
	if err != nil {
		return palette{}, fmt.Errorf("parsing foreground color: %w", err)
	}
	bg, err := parseColor(background)
	if err != nil {
		return palette{}, fmt.Errorf("parsing background color: %w", err)
	}
	return palette{foreground: fg, background: bg}, nil
}

// parseColor parses an RRGGBB hex value into an opaque color.
func parseColor(value string) (color.RGBA, error) {
	if len(value) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid color value %q, expected RRGGBB", value)
	}
	parsed, err := strconv.ParseUint(value, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color value %q: %w", value, err)
	}
	return color.RGBA{
		R: byte(parsed >> 16),
		G: byte(parsed >> 8),
		B: byte(parsed),
		A: 0xFF,
	}, nil
}

// frameToPixels converts the one-byte-per-pixel frame buffer into RGBA
// pixel data. dst must hold 4 bytes per frame buffer pixel.
func frameToPixels(frameBuffer, dst []byte, pal palette) {
	for i := 0; i < chip8.DisplaySize && i < len(frameBuffer); i++ {
		c := pal.background
		if frameBuffer[i] != 0 {
			c = pal.foreground
		}
		dst[i*4] = c.R
		dst[i*4+1] = c.G
		dst[i*4+2] = c.B
		dst[i*4+3] = c.A
	}
}
