package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestNew(t *testing.T) {
	c := New()

	assert.Equal(t, uint16(ProgramStart), c.ProgramCounter())
	assert.Equal(t, uint16(0), c.IndexRegister())
	assert.Equal(t, byte(0), c.StackPointer())
	assert.Equal(t, byte(0), c.DelayTimer())
	assert.Equal(t, byte(0), c.SoundTimer())
	assert.False(t, c.DrawFlag())
	assert.NoError(t, c.LastError())
}

func TestReset(t *testing.T) {
	c := New()

	assert.NoError(t, c.SetRegister(3, 0xAB))
	assert.NoError(t, c.SetMemory(0x300, 0xCD))
	assert.NoError(t, c.SetStack(0, 0x250))
	assert.NoError(t, c.SetStackPointer(1))
	assert.NoError(t, c.SetProgramCounter(0x400))
	c.SetIndexRegister(0x123)
	c.SetDelayTimer(10)
	c.SetSoundTimer(20)
	c.SetKeyState(5, true)
	assert.NoError(t, c.SetPixel(10, 10, 1))

	c.Reset()

	assert.Equal(t, uint16(ProgramStart), c.ProgramCounter())
	assert.Equal(t, uint16(0), c.IndexRegister())
	assert.Equal(t, byte(0), c.StackPointer())
	assert.Equal(t, byte(0), c.DelayTimer())
	assert.Equal(t, byte(0), c.SoundTimer())
	assert.False(t, c.DrawFlag())
	assert.False(t, c.KeyPressed(5))

	for i := byte(0); i < RegisterCount; i++ {
		value, err := c.Register(i)
		assert.NoError(t, err)
		assert.Equal(t, byte(0), value)
	}
	for _, pixel := range c.FrameBuffer() {
		assert.Equal(t, byte(0), pixel)
	}

	// font table occupies low memory
	for i, want := range fontSet {
		value, err := c.MemoryAt(uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, want, value)
	}
	value, err := c.MemoryAt(uint16(len(fontSet)))
	assert.NoError(t, err)
	assert.Equal(t, byte(0), value)
}

func TestResetIdempotent(t *testing.T) {
	c := New()
	c.Reset()
	c.Reset()

	assert.Equal(t, uint16(ProgramStart), c.ProgramCounter())
	assert.Equal(t, byte(0), c.StackPointer())
}

func TestLoadProgram(t *testing.T) {
	tests := []struct {
		name    string
		rom     []byte
		wantErr bool
	}{
		{name: "single instruction", rom: []byte{0x12, 0x00}, wantErr: false},
		{name: "maximum size", rom: make([]byte, MaxROMSize), wantErr: false},
		{name: "empty", rom: nil, wantErr: true},
		{name: "oversized", rom: make([]byte, MaxROMSize+1), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			err := c.LoadProgram(tt.rom)

			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidROMSize))
				assert.True(t, errors.Is(c.LastError(), ErrInvalidROMSize))
				return
			}
			assert.NoError(t, err)
			assert.NoError(t, c.LastError())

			for i, want := range tt.rom {
				value, err := c.MemoryAt(ProgramStart + uint16(i))
				assert.NoError(t, err)
				assert.Equal(t, want, value)
			}
		})
	}
}

func TestLoadProgramKeepsState(t *testing.T) {
	c := New()
	assert.NoError(t, c.SetRegister(2, 0x42))
	c.SetDelayTimer(30)

	assert.NoError(t, c.LoadProgram([]byte{0x00, 0xE0}))

	value, err := c.Register(2)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x42), value)
	assert.Equal(t, byte(30), c.DelayTimer())
	assert.Equal(t, uint16(ProgramStart), c.ProgramCounter())
}

func TestRegisterRoundTrip(t *testing.T) {
	c := New()

	for i := byte(0); i < RegisterCount; i++ {
		assert.NoError(t, c.SetRegister(i, i*0x11))
		value, err := c.Register(i)
		assert.NoError(t, err)
		assert.Equal(t, i*0x11, value)
	}
}

func TestRegisterOutOfRange(t *testing.T) {
	c := New()
	assert.NoError(t, c.SetRegister(0, 0x42))

	err := c.SetRegister(RegisterCount, 0xFF)
	assert.True(t, errors.Is(err, ErrInvalidRegisterAccess))
	assert.True(t, errors.Is(c.LastError(), ErrInvalidRegisterAccess))

	_, err = c.Register(RegisterCount)
	assert.True(t, errors.Is(err, ErrInvalidRegisterAccess))

	_, err = c.Register(255)
	assert.True(t, errors.Is(err, ErrInvalidRegisterAccess))

	// prior state stays unchanged
	value, err := c.Register(0)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x42), value)
}

func TestMemoryRoundTrip(t *testing.T) {
	c := New()

	addresses := []uint16{0, 0x1FF, ProgramStart, 0x800, MemorySize - 1}
	for _, address := range addresses {
		assert.NoError(t, c.SetMemory(address, 0x5A))
		value, err := c.MemoryAt(address)
		assert.NoError(t, err)
		assert.Equal(t, byte(0x5A), value)
	}
}

func TestMemoryOutOfRange(t *testing.T) {
	c := New()

	err := c.SetMemory(MemorySize, 0xFF)
	assert.True(t, errors.Is(err, ErrInvalidMemoryAccess))

	_, err = c.MemoryAt(MemorySize)
	assert.True(t, errors.Is(err, ErrInvalidMemoryAccess))

	_, err = c.MemoryAt(0xFFFF)
	assert.True(t, errors.Is(err, ErrInvalidMemoryAccess))
}

func TestStackAccess(t *testing.T) {
	c := New()

	assert.NoError(t, c.SetStack(0, 0x200))
	assert.NoError(t, c.SetStack(StackSize-1, 0x300))

	address, err := c.StackAt(StackSize - 1)
	assert.NoError(t, err)
	assert.Equal(t, uint16(0x300), address)

	err = c.SetStack(StackSize, 0x200)
	assert.True(t, errors.Is(err, ErrStackOverflow))

	_, err = c.StackAt(StackSize)
	assert.True(t, errors.Is(err, ErrStackOverflow))
}

func TestStackPointerBounds(t *testing.T) {
	c := New()

	assert.NoError(t, c.SetStackPointer(0))
	assert.NoError(t, c.SetStackPointer(StackSize))

	err := c.SetStackPointer(StackSize + 1)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, byte(StackSize), c.StackPointer())
}

func TestProgramCounterBounds(t *testing.T) {
	c := New()

	assert.NoError(t, c.SetProgramCounter(0))
	assert.NoError(t, c.SetProgramCounter(MemorySize-1))

	err := c.SetProgramCounter(MemorySize)
	assert.True(t, errors.Is(err, ErrInvalidMemoryAccess))
	assert.Equal(t, uint16(MemorySize-1), c.ProgramCounter())
}

func TestPixelAccess(t *testing.T) {
	c := New()

	assert.NoError(t, c.SetPixel(63, 31, 1))
	value, err := c.Pixel(63, 31)
	assert.NoError(t, err)
	assert.Equal(t, byte(1), value)
	assert.Equal(t, byte(1), c.FrameBuffer()[31*DisplayWidth+63])

	err = c.SetPixel(DisplayWidth, 0, 1)
	assert.True(t, errors.Is(err, ErrInvalidMemoryAccess))

	_, err = c.Pixel(0, DisplayHeight)
	assert.True(t, errors.Is(err, ErrInvalidMemoryAccess))
}

func TestClearDrawFlagIdempotent(t *testing.T) {
	c := New()
	assert.NoError(t, c.LoadProgram([]byte{0x00, 0xE0}))
	assert.NoError(t, c.Step())
	assert.True(t, c.DrawFlag())

	c.ClearDrawFlag()
	assert.False(t, c.DrawFlag())
	c.ClearDrawFlag()
	assert.False(t, c.DrawFlag())
}

func TestKeyState(t *testing.T) {
	c := New()

	c.SetKeyState(0, true)
	c.SetKeyState(15, true)
	assert.True(t, c.KeyPressed(0))
	assert.True(t, c.KeyPressed(15))

	c.SetKeyState(0, false)
	assert.False(t, c.KeyPressed(0))

	// out of range keys are ignored without error
	c.SetKeyState(KeyCount, true)
	c.SetKeyState(255, true)
	assert.False(t, c.KeyPressed(KeyCount))
	assert.False(t, c.KeyPressed(255))
	assert.NoError(t, c.LastError())
}

func TestLastErrorClearedOnSuccess(t *testing.T) {
	c := New()

	_, err := c.Register(RegisterCount)
	assert.True(t, errors.Is(err, ErrInvalidRegisterAccess))
	assert.Error(t, c.LastError())

	assert.NoError(t, c.SetRegister(0, 1))
	assert.NoError(t, c.LastError())
}
