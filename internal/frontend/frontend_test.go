package frontend

import (
	"image/color"
	"testing"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/retrogolib/assert"
)

func TestKeypadMappingCoversKeypad(t *testing.T) {
	assert.Len(t, keypadMapping, chip8.KeyCount)

	seen := map[byte]bool{}
	for _, pad := range keypadMapping {
		assert.True(t, pad < chip8.KeyCount)
		assert.False(t, seen[pad], "keypad key %X mapped twice", pad)
		seen[pad] = true
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    color.RGBA
		wantErr bool
	}{
		{name: "white", value: "FFFFFF", want: color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}},
		{name: "black", value: "000000", want: color.RGBA{A: 0xFF}},
		{name: "mixed", value: "10A0F0", want: color.RGBA{R: 0x10, G: 0xA0, B: 0xF0, A: 0xFF}},
		{name: "lowercase", value: "a0b0c0", want: color.RGBA{R: 0xA0, G: 0xB0, B: 0xC0, A: 0xFF}},
		{name: "too short", value: "FFF", wantErr: true},
		{name: "not hex", value: "GGGGGG", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseColor(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFrameToPixels(t *testing.T) {
	pal, err := newPalette("FFFFFF", "102030")
	assert.NoError(t, err)

	frameBuffer := make([]byte, chip8.DisplaySize)
	frameBuffer[0] = 1
	frameBuffer[chip8.DisplaySize-1] = 1

	dst := make([]byte, chip8.DisplaySize*4)
	frameToPixels(frameBuffer, dst, pal)

	// set pixels use the foreground color
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, dst[:4])
	assert.Equal(t, []byte{0xFF, 0xFF, 0xFF, 0xFF}, dst[len(dst)-4:])

	// cleared pixels use the background color
	assert.Equal(t, []byte{0x10, 0x20, 0x30, 0xFF}, dst[4:8])
}
