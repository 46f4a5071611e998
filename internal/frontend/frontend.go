// Package frontend implements the graphical presentation layer.
//
// The frontend drives the emulation: it owns the window, maps keyboard
// events onto the CHIP-8 hex keypad, paces the core at the configured
// instruction clock and uploads the frame buffer as an integer-upscaled
// texture once per rendered frame. The core itself stays free of any
// timing or rendering concern.
package frontend

import (
	"context"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/log"
)

// framesPerSecond is the display refresh rate the instruction clock is
// paced against. Timers tick at cycle rate inside the core, so calling
// clock/60 cycles per frame yields the canonical 60Hz timer frequency.
const framesPerSecond = 60

// Frontend runs a virtual machine inside an Ebitengine game loop.
type Frontend struct {
	ctx    context.Context
	vm     *chip8.Chip8
	logger *log.Logger
	rom    []byte

	cyclesPerFrame int
	scale          int
	palette        palette

	display *ebiten.Image
	pixels  []byte

	paused bool
}

// New creates a frontend for a machine with a loaded program. The ROM bytes
// are kept so the reset key can restore a fresh program state.
func New(ctx context.Context, vm *chip8.Chip8, logger *log.Logger,
	opts options.Program, rom []byte) (*Frontend, error) {

	pal, err := newPalette(opts.Foreground, opts.Background)
	if err != nil {
		return nil, err
	}

	cycles := opts.Clock / framesPerSecond
	if cycles < 1 {
		cycles = 1
	}

	return &Frontend{
		ctx:            ctx,
		vm:             vm,
		logger:         logger,
		rom:            rom,
		cyclesPerFrame: cycles,
		scale:          opts.Scale,
		palette:        pal,
		display:        ebiten.NewImage(chip8.DisplayWidth, chip8.DisplayHeight),
		pixels:         make([]byte, chip8.DisplaySize*4),
	}, nil
}

// Run opens the window and blocks inside the game loop until the window is
// closed, ESC is pressed or the context is canceled.
func (f *Frontend) Run(title string) error {
	ebiten.SetWindowSize(chip8.DisplayWidth*f.scale, chip8.DisplayHeight*f.scale)
	ebiten.SetWindowTitle(title)

	if err := ebiten.RunGame(f); err != nil {
		return fmt.Errorf("running game loop: %w", err)
	}
	return nil
}

// Update advances the emulation by one frame worth of cycles.
// It implements ebiten.Game.
func (f *Frontend) Update() error {
	select {
	case <-f.ctx.Done():
		return ebiten.Termination
	default:
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		f.paused = !f.paused
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF5) {
		f.resetMachine()
	}

	f.pollKeypad()

	if f.paused {
		return nil
	}

	for i := 0; i < f.cyclesPerFrame; i++ {
		if err := f.vm.Step(); err != nil {
			f.logger.Debug("Cycle fault", log.Err(err))
		}
	}
	return nil
}

// Draw renders the frame buffer upscaled to the window.
// It implements ebiten.Game.
func (f *Frontend) Draw(screen *ebiten.Image) {
	if f.vm.DrawFlag() {
		frameToPixels(f.vm.FrameBuffer(), f.pixels, f.palette)
		f.display.WritePixels(f.pixels)
		f.vm.ClearDrawFlag()
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(float64(f.scale), float64(f.scale))
	screen.DrawImage(f.display, op)
}

// Layout returns the upscaled logical screen size.
// It implements ebiten.Game.
func (f *Frontend) Layout(_, _ int) (int, int) {
	return chip8.DisplayWidth * f.scale, chip8.DisplayHeight * f.scale
}

// pollKeypad forwards the keyboard state of all mapped keys to the core.
func (f *Frontend) pollKeypad() {
	for key, pad := range keypadMapping {
		f.vm.SetKeyState(pad, ebiten.IsKeyPressed(key))
	}
}

// resetMachine restores a fresh machine state with the program reloaded.
func (f *Frontend) resetMachine() {
	f.vm.Reset()
	if err := f.vm.LoadProgram(f.rom); err != nil {
		f.logger.Error("Reloading program", log.Err(err))
		return
	}
	f.logger.Info("Machine reset")
}
