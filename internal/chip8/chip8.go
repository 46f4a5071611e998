// Package chip8 implements the CHIP-8 virtual machine core.
//
// CHIP-8 is an interpreted instruction set from the 1970s designed for
// simple games. The virtual machine owns all emulated state: 4KB of memory,
// 16 general-purpose registers, a 16-level call stack, two timers, a 64x32
// monochrome frame buffer and a 16-key hex keypad.
//
// The core is single-threaded and driven from the outside: the presentation
// layer calls Step repeatedly, reads the frame buffer between calls and
// writes key states through SetKeyState. A detected invariant violation
// never panics; it is recorded as the last error and the operation returns
// without performing the unsafe access, so an adversarial ROM cannot crash
// the host process.
package chip8

import (
	"fmt"
	"math/rand/v2"
)

// CHIP-8 machine dimensions. These sizes are part of the CHIP-8
// specification and never change at runtime.
const (
	// MemorySize is the total amount of memory in bytes (4KB).
	MemorySize = 4096

	// RegisterCount is the number of general-purpose registers V0-VF.
	RegisterCount = 16

	// StackSize is the number of call stack slots.
	StackSize = 16

	// DisplayWidth and DisplayHeight are the frame buffer dimensions in pixels.
	DisplayWidth  = 64
	DisplayHeight = 32

	// DisplaySize is the frame buffer length, one byte per pixel.
	DisplaySize = DisplayWidth * DisplayHeight

	// KeyCount is the number of keypad keys 0x0-0xF.
	KeyCount = 16

	// ProgramStart is the memory address where programs begin execution.
	// Addresses below it are reserved for the interpreter and font data.
	ProgramStart = 0x200

	// MaxROMSize is the largest program that fits into memory.
	MaxROMSize = MemorySize - ProgramStart
)

// Chip8 is the CHIP-8 virtual machine state. Create instances with New.
//
// All buffers are statically sized, there is exactly one instance per
// emulation session and no internal locking.
type Chip8 struct {
	memory    [MemorySize]byte
	registers [RegisterCount]byte
	stack     [StackSize]uint16

	indexRegister  uint16
	programCounter uint16
	stackPointer   byte

	delayTimer byte
	soundTimer byte

	frameBuffer [DisplaySize]byte
	keypad      [KeyCount]bool
	drawFlag    bool

	lastError error

	// randByte produces the random byte for the rnd opcode,
	// replaced in tests for deterministic execution.
	randByte func() byte
}

// New returns a virtual machine in its reset state.
func New() *Chip8 {
	c := &Chip8{
		randByte: func() byte {
			return byte(rand.Uint32())
		},
	}
	c.Reset()
	return c
}

// Reset reinitializes the machine state in place: the program counter points
// at ProgramStart, the font table occupies low memory and everything else is
// zeroed. It is idempotent and never fails.
func (c *Chip8) Reset() {
	c.memory = [MemorySize]byte{}
	c.registers = [RegisterCount]byte{}
	c.stack = [StackSize]uint16{}
	c.frameBuffer = [DisplaySize]byte{}
	c.keypad = [KeyCount]bool{}

	copy(c.memory[:], fontSet[:])

	c.programCounter = ProgramStart
	c.indexRegister = 0
	c.stackPointer = 0
	c.delayTimer = 0
	c.soundTimer = 0
	c.drawFlag = false
	c.lastError = nil
}

// LoadProgram copies a program into memory starting at ProgramStart.
// Registers, timers and the program counter are left untouched, callers
// wanting a fresh run should Reset first.
func (c *Chip8) LoadProgram(rom []byte) error {
	if len(rom) == 0 || len(rom) > MaxROMSize {
		return c.fail(fmt.Errorf("%w: %d bytes", ErrInvalidROMSize, len(rom)))
	}
	c.lastError = nil
	copy(c.memory[ProgramStart:], rom)
	return nil
}

// FrameBuffer returns the 64x32 frame buffer, one byte per pixel with
// values 0 or 1, row-major with index y*DisplayWidth+x. The returned slice
// aliases the machine state and must not be modified by the caller.
func (c *Chip8) FrameBuffer() []byte {
	return c.frameBuffer[:]
}

// Pixel returns the frame buffer value at the given display coordinates.
func (c *Chip8) Pixel(x, y uint16) (byte, error) {
	if x >= DisplayWidth || y >= DisplayHeight {
		return 0, c.fail(fmt.Errorf("%w: pixel (%d,%d)", ErrInvalidMemoryAccess, x, y))
	}
	c.lastError = nil
	return c.frameBuffer[y*DisplayWidth+x], nil
}

// SetPixel sets the frame buffer value at the given display coordinates.
func (c *Chip8) SetPixel(x, y uint16, value byte) error {
	if x >= DisplayWidth || y >= DisplayHeight {
		return c.fail(fmt.Errorf("%w: pixel (%d,%d)", ErrInvalidMemoryAccess, x, y))
	}
	c.lastError = nil
	c.frameBuffer[y*DisplayWidth+x] = value
	return nil
}

// DrawFlag reports whether the frame buffer changed since the presentation
// layer last cleared the flag.
func (c *Chip8) DrawFlag() bool {
	return c.drawFlag
}

// ClearDrawFlag clears the draw flag after a frame has been rendered.
func (c *Chip8) ClearDrawFlag() {
	c.drawFlag = false
}

// SetKeyState sets the pressed state of a keypad key. Keys outside the
// 0x0-0xF keypad are ignored without error, physical keyboards send events
// for keys the CHIP-8 does not have.
func (c *Chip8) SetKeyState(key byte, pressed bool) {
	if key >= KeyCount {
		return
	}
	c.keypad[key] = pressed
}

// KeyPressed reports whether a keypad key is currently pressed.
// Keys outside the keypad report false.
func (c *Chip8) KeyPressed(key byte) bool {
	if key >= KeyCount {
		return false
	}
	return c.keypad[key]
}

// Register returns the value of register Vi.
func (c *Chip8) Register(index byte) (byte, error) {
	if index >= RegisterCount {
		return 0, c.fail(fmt.Errorf("%w: V%X", ErrInvalidRegisterAccess, index))
	}
	c.lastError = nil
	return c.registers[index], nil
}

// SetRegister sets the value of register Vi.
func (c *Chip8) SetRegister(index, value byte) error {
	if index >= RegisterCount {
		return c.fail(fmt.Errorf("%w: V%X", ErrInvalidRegisterAccess, index))
	}
	c.lastError = nil
	c.registers[index] = value
	return nil
}

// MemoryAt returns the byte at the given memory address.
func (c *Chip8) MemoryAt(address uint16) (byte, error) {
	if address >= MemorySize {
		return 0, c.fail(fmt.Errorf("%w: address 0x%04X", ErrInvalidMemoryAccess, address))
	}
	c.lastError = nil
	return c.memory[address], nil
}

// SetMemory sets the byte at the given memory address.
func (c *Chip8) SetMemory(address uint16, value byte) error {
	if address >= MemorySize {
		return c.fail(fmt.Errorf("%w: address 0x%04X", ErrInvalidMemoryAccess, address))
	}
	c.lastError = nil
	c.memory[address] = value
	return nil
}

// StackAt returns the return address stored in the given stack slot.
func (c *Chip8) StackAt(slot byte) (uint16, error) {
	if slot >= StackSize {
		return 0, c.fail(fmt.Errorf("%w: stack slot %d", ErrStackOverflow, slot))
	}
	c.lastError = nil
	return c.stack[slot], nil
}

// SetStack stores a return address in the given stack slot.
func (c *Chip8) SetStack(slot byte, address uint16) error {
	if slot >= StackSize {
		return c.fail(fmt.Errorf("%w: stack slot %d", ErrStackOverflow, slot))
	}
	c.lastError = nil
	c.stack[slot] = address
	return nil
}

// StackPointer returns the stack pointer, the index of the next free slot.
func (c *Chip8) StackPointer() byte {
	return c.stackPointer
}

// SetStackPointer sets the stack pointer. StackSize marks a full stack and
// is still a valid value, anything beyond it is rejected.
func (c *Chip8) SetStackPointer(value byte) error {
	if value > StackSize {
		return c.fail(fmt.Errorf("%w: stack pointer %d", ErrStackOverflow, value))
	}
	c.lastError = nil
	c.stackPointer = value
	return nil
}

// ProgramCounter returns the program counter.
func (c *Chip8) ProgramCounter() uint16 {
	return c.programCounter
}

// SetProgramCounter sets the program counter.
func (c *Chip8) SetProgramCounter(address uint16) error {
	if address >= MemorySize {
		return c.fail(fmt.Errorf("%w: address 0x%04X", ErrInvalidMemoryAccess, address))
	}
	c.lastError = nil
	c.programCounter = address
	return nil
}

// IndexRegister returns the index register I.
func (c *Chip8) IndexRegister() uint16 {
	return c.indexRegister
}

// SetIndexRegister sets the index register I. The register itself carries no
// range restriction, memory accesses through it are checked at use.
func (c *Chip8) SetIndexRegister(value uint16) {
	c.lastError = nil
	c.indexRegister = value
}

// DelayTimer returns the delay timer value.
func (c *Chip8) DelayTimer() byte {
	return c.delayTimer
}

// SetDelayTimer sets the delay timer value.
func (c *Chip8) SetDelayTimer(value byte) {
	c.lastError = nil
	c.delayTimer = value
}

// SoundTimer returns the sound timer value.
func (c *Chip8) SoundTimer() byte {
	return c.soundTimer
}

// SetSoundTimer sets the sound timer value.
func (c *Chip8) SetSoundTimer(value byte) {
	c.lastError = nil
	c.soundTimer = value
}

// LastError returns the most recently recorded invariant violation, or nil.
// The driving loop is expected to poll it after each Step and decide whether
// to log, halt or ignore.
func (c *Chip8) LastError() error {
	return c.lastError
}

// fail records err as the last error and returns it.
func (c *Chip8) fail(err error) error {
	c.lastError = err
	return err
}
