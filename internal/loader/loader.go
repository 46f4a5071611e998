// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"io"
	"os"

	"github.com/retroenv/chip8emu/internal/chip8"
)

// Load reads a ROM file from disk and validates its size. CHIP-8 ROMs are
// raw big-endian opcode bytes without any header, the file content is
// handed to the core unchanged.
func Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ROM file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := LoadReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading ROM file %s: %w", path, err)
	}
	return rom, nil
}

// LoadReader reads ROM bytes from any source and validates the size against
// the memory available above the program start address.
func LoadReader(reader io.Reader) ([]byte, error) {
	rom, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("reading ROM data: %w", err)
	}

	if len(rom) == 0 || len(rom) > chip8.MaxROMSize {
		return nil, fmt.Errorf("%w: %d bytes, limit is %d",
			chip8.ErrInvalidROMSize, len(rom), chip8.MaxROMSize)
	}
	return rom, nil
}
