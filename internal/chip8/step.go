package chip8

import "fmt"

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Step executes exactly one fetch-decode-execute cycle.
//
// The opcode is fetched as a big-endian 16-bit word at the program counter
// and dispatched on its top nibble. After dispatch both timers decrement by
// one if nonzero, once per Step regardless of whether the opcode completed;
// only a failed fetch leaves the machine untouched.
//
// Faults during execution follow an advance-and-report policy: the error is
// recorded, the program counter still advances by two and the machine stays
// live. Stalling instead would let garbage data lock up the emulation loop.
func (c *Chip8) Step() error {
	if c.programCounter >= MemorySize-1 {
		return c.fail(fmt.Errorf("%w: opcode fetch at 0x%04X",
			ErrInvalidMemoryAccess, c.programCounter))
	}
	c.lastError = nil

	opcode := uint16(c.memory[c.programCounter])<<8 | uint16(c.memory[c.programCounter+1])
	err := c.execute(opcode)
	if err != nil {
		c.lastError = err
	}

	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
	return err
}

// execute decodes and runs a single opcode. Field naming follows the
// conventional opcode layout: nnn is the low 12 bits, nn the low byte,
// n the low nibble, x bits 8-11 and y bits 4-7.
func (c *Chip8) execute(opcode uint16) error {
	x := byte(opcode>>8) & 0x0F
	y := byte(opcode>>4) & 0x0F
	n := byte(opcode) & 0x0F
	nn := byte(opcode)
	nnn := opcode & 0x0FFF

	switch opcode & 0xF000 {
	case 0x0000:
		return c.executeSystem(opcode)

	case 0x1000: // jp nnn
		c.programCounter = nnn

	case 0x2000: // call nnn
		if c.stackPointer == StackSize {
			c.programCounter += opcodeSize
			return fmt.Errorf("%w: call depth exceeds %d", ErrStackOverflow, StackSize)
		}
		c.stack[c.stackPointer] = c.programCounter
		c.stackPointer++
		c.programCounter = nnn

	case 0x3000: // se Vx, nn
		c.skipIf(c.registers[x] == nn)

	case 0x4000: // sne Vx, nn
		c.skipIf(c.registers[x] != nn)

	case 0x5000: // se Vx, Vy
		c.skipIf(c.registers[x] == c.registers[y])

	case 0x6000: // ld Vx, nn
		c.registers[x] = nn
		c.programCounter += opcodeSize

	case 0x7000: // add Vx, nn - no carry flag
		c.registers[x] += nn
		c.programCounter += opcodeSize

	case 0x8000:
		return c.executeALU(opcode, x, y)

	case 0x9000: // sne Vx, Vy
		c.skipIf(c.registers[x] != c.registers[y])

	case 0xA000: // ld I, nnn
		c.indexRegister = nnn
		c.programCounter += opcodeSize

	case 0xB000: // jp V0, nnn
		c.programCounter = uint16(c.registers[0]) + nnn

	case 0xC000: // rnd Vx, nn
		c.registers[x] = c.randByte() & nn
		c.programCounter += opcodeSize

	case 0xD000: // drw Vx, Vy, n
		return c.executeDraw(x, y, n)

	case 0xE000:
		return c.executeKey(opcode, x)

	case 0xF000:
		return c.executeMisc(opcode, x)

	default:
		return c.unknownOpcode(opcode)
	}
	return nil
}

// executeSystem handles the 0x0 opcode family: clear screen and return.
// The historical machine code call 0nnn is not supported.
func (c *Chip8) executeSystem(opcode uint16) error {
	switch opcode & 0x00FF {
	case 0x00E0: // cls
		c.frameBuffer = [DisplaySize]byte{}
		c.drawFlag = true
		c.programCounter += opcodeSize

	case 0x00EE: // ret
		if c.stackPointer == 0 {
			c.programCounter += opcodeSize
			return fmt.Errorf("%w: return with empty call stack", ErrStackUnderflow)
		}
		c.stackPointer--
		c.programCounter = c.stack[c.stackPointer] + opcodeSize

	default:
		return c.unknownOpcode(opcode)
	}
	return nil
}

// executeALU handles the 0x8 opcode family of register-register operations.
// All arithmetic wraps modulo 256, overflow and borrow are signaled only
// through the VF flag register.
func (c *Chip8) executeALU(opcode uint16, x, y byte) error {
	switch opcode & 0x000F {
	case 0x0: // ld Vx, Vy
		c.registers[x] = c.registers[y]

	case 0x1: // or Vx, Vy
		c.registers[x] |= c.registers[y]

	case 0x2: // and Vx, Vy
		c.registers[x] &= c.registers[y]

	case 0x3: // xor Vx, Vy
		c.registers[x] ^= c.registers[y]

	case 0x4: // add Vx, Vy - VF = carry
		if c.registers[y] > 0xFF-c.registers[x] {
			c.registers[0xF] = 1
		} else {
			c.registers[0xF] = 0
		}
		c.registers[x] += c.registers[y]

	case 0x5: // sub Vx, Vy - VF = no borrow
		if c.registers[x] < c.registers[y] {
			c.registers[0xF] = 0
		} else {
			c.registers[0xF] = 1
		}
		c.registers[x] -= c.registers[y]

	case 0x6: // shr Vx - VF = shifted out bit
		c.registers[0xF] = c.registers[x] & 1
		c.registers[x] >>= 1

	case 0x7: // subn Vx, Vy - VF = no borrow
		if c.registers[x] > c.registers[y] {
			c.registers[0xF] = 0
		} else {
			c.registers[0xF] = 1
		}
		c.registers[x] = c.registers[y] - c.registers[x]

	case 0xE: // shl Vx - VF = shifted out bit
		c.registers[0xF] = c.registers[x] >> 7
		c.registers[x] <<= 1

	default:
		return c.unknownOpcode(opcode)
	}
	c.programCounter += opcodeSize
	return nil
}

// executeDraw handles drw Vx, Vy, n: an n-row sprite read from memory at I
// is XORed onto the frame buffer at (Vx,Vy). Coordinates wrap around the
// display edges. VF is set when the XOR turns a previously set pixel off.
func (c *Chip8) executeDraw(x, y, n byte) error {
	height := uint16(n)
	if int(c.indexRegister)+int(height) > MemorySize {
		c.programCounter += opcodeSize
		return fmt.Errorf("%w: sprite read at 0x%04X height %d",
			ErrInvalidMemoryAccess, c.indexRegister, height)
	}

	xPos := uint16(c.registers[x])
	yPos := uint16(c.registers[y])
	c.registers[0xF] = 0

	for row := uint16(0); row < height; row++ {
		sprite := c.memory[c.indexRegister+row]
		for bit := uint16(0); bit < 8; bit++ {
			if sprite&(0x80>>bit) == 0 {
				continue
			}
			index := ((yPos+row)%DisplayHeight)*DisplayWidth + (xPos+bit)%DisplayWidth
			if c.frameBuffer[index] == 1 {
				c.registers[0xF] = 1
			}
			c.frameBuffer[index] ^= 1
		}
	}

	c.drawFlag = true
	c.programCounter += opcodeSize
	return nil
}

// executeKey handles the 0xE opcode family: skip on key state.
func (c *Chip8) executeKey(opcode uint16, x byte) error {
	switch opcode & 0x00FF {
	case 0x9E: // skp Vx
		c.skipIf(c.keyDown(c.registers[x]))

	case 0xA1: // sknp Vx
		c.skipIf(!c.keyDown(c.registers[x]))

	default:
		return c.unknownOpcode(opcode)
	}
	return nil
}

// executeMisc handles the 0xF opcode family: timers, key wait, index
// register arithmetic, font lookup, BCD conversion and register dump/load.
func (c *Chip8) executeMisc(opcode uint16, x byte) error {
	switch opcode & 0x00FF {
	case 0x07: // ld Vx, DT
		c.registers[x] = c.delayTimer
		c.programCounter += opcodeSize

	case 0x0A: // ld Vx, K - cooperative wait for a key press
		for key := byte(0); key < KeyCount; key++ {
			if c.keypad[key] {
				c.registers[x] = key
				c.programCounter += opcodeSize
				return nil
			}
		}
		// No key down: leave the program counter unchanged so the
		// instruction retries on the next cycle. Timers still tick,
		// the wait is on the instruction, not on time.

	case 0x15: // ld DT, Vx
		c.delayTimer = c.registers[x]
		c.programCounter += opcodeSize

	case 0x18: // ld ST, Vx
		c.soundTimer = c.registers[x]
		c.programCounter += opcodeSize

	case 0x1E: // add I, Vx
		c.indexRegister += uint16(c.registers[x])
		c.programCounter += opcodeSize

	case 0x29: // ld F, Vx - font glyph base offset
		c.indexRegister = uint16(c.registers[x]) * FontGlyphSize
		c.programCounter += opcodeSize

	case 0x33: // ld B, Vx - BCD conversion
		if int(c.indexRegister)+2 >= MemorySize {
			c.programCounter += opcodeSize
			return fmt.Errorf("%w: BCD store at 0x%04X",
				ErrInvalidMemoryAccess, c.indexRegister)
		}
		value := c.registers[x]
		c.memory[c.indexRegister] = value / 100
		c.memory[c.indexRegister+1] = (value / 10) % 10
		c.memory[c.indexRegister+2] = value % 10
		c.programCounter += opcodeSize

	case 0x55: // ld [I], Vx - dump V0..Vx to memory
		if int(c.indexRegister)+int(x) >= MemorySize {
			c.programCounter += opcodeSize
			return fmt.Errorf("%w: register dump at 0x%04X",
				ErrInvalidMemoryAccess, c.indexRegister)
		}
		for i := byte(0); i <= x; i++ {
			c.memory[c.indexRegister+uint16(i)] = c.registers[i]
		}
		c.programCounter += opcodeSize

	case 0x65: // ld Vx, [I] - load V0..Vx from memory
		if int(c.indexRegister)+int(x) >= MemorySize {
			c.programCounter += opcodeSize
			return fmt.Errorf("%w: register load at 0x%04X",
				ErrInvalidMemoryAccess, c.indexRegister)
		}
		for i := byte(0); i <= x; i++ {
			c.registers[i] = c.memory[c.indexRegister+uint16(i)]
		}
		c.programCounter += opcodeSize

	default:
		return c.unknownOpcode(opcode)
	}
	return nil
}

// skipIf advances the program counter by two instructions when the
// condition holds, otherwise by one.
func (c *Chip8) skipIf(condition bool) {
	if condition {
		c.programCounter += 2 * opcodeSize
	} else {
		c.programCounter += opcodeSize
	}
}

// keyDown reports whether the keypad key selected by a register value is
// pressed. Only the low nibble selects a key, the keypad has 16 keys.
func (c *Chip8) keyDown(value byte) bool {
	return c.keypad[value&0x0F]
}

// unknownOpcode records an unrecognized opcode. The program counter still
// advances so garbage data cannot stall the machine.
func (c *Chip8) unknownOpcode(opcode uint16) error {
	c.programCounter += opcodeSize
	return fmt.Errorf("%w: 0x%04X", ErrUnknownOpcode, opcode)
}
