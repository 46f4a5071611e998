// Package disasm provides a stateless CHIP-8 opcode disassembler.
//
// Opcodes are identified through the retrogolib CHIP-8 instruction tables
// and formatted with their decoded parameters. The disassembler never
// depends on machine state beyond the memory bytes it is given; the
// emulator core does not use it, it exists for the debug listing surface.
package disasm

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// opcodeSize is the size of CHIP-8 instructions in bytes.
const opcodeSize = 2

// Instruction is one disassembled instruction record.
type Instruction struct {
	Address     uint16 // memory address the opcode was read from
	Opcode      uint16 // raw 16-bit opcode
	Code        string // assembly representation
	Description string // human readable description
	Current     bool   // marks the instruction at the program counter
}

// Disassemble returns the assembly representation of a single opcode.
// Unknown encodings are emitted as raw data words.
func Disassemble(opcode uint16) string {
	ins := lookup(opcode)
	if ins == nil {
		return fmt.Sprintf(".word $%04X", opcode)
	}
	if params := formatParams(ins.Name, opcode); params != "" {
		return fmt.Sprintf("%s %s", ins.Name, params)
	}
	return ins.Name
}

// DisassembleMemory walks a memory region and produces one record per
// 2-byte instruction slot. start is the memory address of the first byte of
// mem, count limits the number of records and pc marks the current
// instruction. The walk stops early when the region runs out of byte pairs.
func DisassembleMemory(mem []byte, start uint16, count int, pc uint16) []Instruction {
	instructions := make([]Instruction, 0, count)

	for i := 0; i < count; i++ {
		offset := i * opcodeSize
		if offset+1 >= len(mem) {
			break
		}

		opcode := uint16(mem[offset])<<8 | uint16(mem[offset+1])
		address := start + uint16(offset)
		instructions = append(instructions, Instruction{
			Address:     address,
			Opcode:      opcode,
			Code:        Disassemble(opcode),
			Description: Describe(opcode),
			Current:     address == pc,
		})
	}
	return instructions
}

// lookup identifies the instruction for an opcode using the retrogolib
// mask/value opcode tables, indexed by the top nibble.
func lookup(opcode uint16) *chip8.Instruction {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// formatParams formats the decoded parameters of an instruction.
// Returns an empty string for parameterless instructions.
func formatParams(name string, opcode uint16) string {
	x := registerX(opcode)
	y := registerY(opcode)
	nnn := opcode & 0x0FFF
	nn := opcode & 0x00FF
	n := opcode & 0x000F

	switch name {
	case chip8.JpName:
		if opcode&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", nnn)
		}
		return fmt.Sprintf("$%03X", nnn)

	case chip8.CallName:
		return fmt.Sprintf("$%03X", nnn)

	case chip8.SeName, chip8.SneName:
		if opcode&0xF000 == 0x3000 || opcode&0xF000 == 0x4000 {
			return fmt.Sprintf("V%X, $%02X", x, nn)
		}
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.LdName:
		return formatLoadParams(opcode, x, y, nn, nnn)

	case chip8.AddName:
		switch opcode & 0xF000 {
		case 0x7000:
			return fmt.Sprintf("V%X, $%02X", x, nn)
		case 0xF000:
			return fmt.Sprintf("I, V%X", x)
		}
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.OrName, chip8.AndName, chip8.XorName, chip8.SubName, chip8.SubnName:
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8.ShrName, chip8.ShlName, chip8.SkpName, chip8.SknpName:
		return fmt.Sprintf("V%X", x)

	case chip8.RndName:
		return fmt.Sprintf("V%X, $%02X", x, nn)

	case chip8.DrwName:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, n)
	}
	return ""
}

// formatLoadParams formats the parameters of the many ld variants.
func formatLoadParams(opcode uint16, x, y, nn, nnn uint16) string {
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, nn)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", nnn)
	}

	switch nn {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// Describe returns a human readable description of an opcode, keyed on the
// opcode family. Used by debug listings alongside the assembly code.
func Describe(opcode uint16) string {
	switch opcode & 0xF000 {
	case 0x0000:
		switch opcode & 0x00FF {
		case 0xE0:
			return "Clear screen"
		case 0xEE:
			return "Return from subroutine"
		}
		return "System call"
	case 0x1000:
		return "Jump to address"
	case 0x2000:
		return "Call subroutine"
	case 0x3000:
		return "Skip if register equals value"
	case 0x4000:
		return "Skip if register not equals value"
	case 0x5000:
		return "Skip if registers equal"
	case 0x6000:
		return "Set register to value"
	case 0x7000:
		return "Add value to register"
	case 0x8000:
		return "Arithmetic operation"
	case 0x9000:
		return "Skip if registers not equal"
	case 0xA000:
		return "Set index register"
	case 0xB000:
		return "Jump to V0 + address"
	case 0xC000:
		return "Random number AND value"
	case 0xD000:
		return "Draw sprite"
	case 0xE000:
		return "Key operation"
	case 0xF000:
		return "Timer/Memory operation"
	}
	return "Unknown instruction"
}

// registerX extracts the X register nibble from an opcode.
func registerX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// registerY extracts the Y register nibble from an opcode.
func registerY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
