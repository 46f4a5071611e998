// Package options contains the program options.
package options

// Default option values.
const (
	// DefaultScale is the integer display upscale factor.
	DefaultScale = 10

	// DefaultClock is the instruction clock in Hz. With the timers ticking
	// once per cycle group at 60Hz this yields 9 cycles per frame.
	DefaultClock = 540

	// DefaultForeground and DefaultBackground are the display colors as
	// RRGGBB hex values.
	DefaultForeground = "FFFFFF"
	DefaultBackground = "000000"
)

// Program options of the emulator.
type Program struct {
	Input string // ROM file to run

	Scale      int    // integer display upscale factor
	Clock      int    // instruction clock in Hz
	Foreground string // pixel color as RRGGBB hex
	Background string // background color as RRGGBB hex

	Disassemble bool // print a disassembly listing instead of running
	Debug       bool // enable debug logging
	Quiet       bool // perform operations quietly
}
