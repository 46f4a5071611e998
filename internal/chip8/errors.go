package chip8

import "errors"

// Errors reported by the virtual machine. All of them are non-fatal: the
// triggering operation records the error, skips the unsafe access and
// returns, keeping the machine live. Callers match them with errors.Is.
var (
	// ErrInvalidROMSize is reported for empty or oversized programs.
	ErrInvalidROMSize = errors.New("invalid ROM size")

	// ErrInvalidMemoryAccess is reported for accesses outside the 4KB memory.
	ErrInvalidMemoryAccess = errors.New("invalid memory access")

	// ErrInvalidRegisterAccess is reported for register indices beyond VF.
	ErrInvalidRegisterAccess = errors.New("invalid register access")

	// ErrStackOverflow is reported when a call exceeds the 16 stack slots.
	ErrStackOverflow = errors.New("stack overflow")

	// ErrStackUnderflow is reported for a return with an empty call stack.
	ErrStackUnderflow = errors.New("stack underflow")

	// ErrUnknownOpcode is reported for opcodes outside the 35 instruction set.
	ErrUnknownOpcode = errors.New("unknown opcode")
)
