// Package main implements a CHIP-8 emulator with a graphical frontend
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/retroenv/chip8emu/internal/chip8"
	"github.com/retroenv/chip8emu/internal/cli"
	"github.com/retroenv/chip8emu/internal/config"
	"github.com/retroenv/chip8emu/internal/disasm"
	"github.com/retroenv/chip8emu/internal/frontend"
	"github.com/retroenv/chip8emu/internal/loader"
	"github.com/retroenv/chip8emu/internal/options"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(logger, opts)
			usageErr.ShowUsage()
		} else {
			logger.Fatal(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug, opts.Quiet)
	printBanner(logger, opts)

	if err := run(logger, opts); err != nil {
		logger.Fatal(err.Error())
	}
}

func run(logger *log.Logger, opts options.Program) error {
	rom, err := loader.Load(opts.Input)
	if err != nil {
		return err
	}

	if opts.Disassemble {
		return printDisassembly(os.Stdout, rom)
	}

	vm := chip8.New()
	if err := vm.LoadProgram(rom); err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	logger.Info("Running Chip-8 ROM",
		log.String("file", opts.Input),
		log.Int("bytes", len(rom)),
		log.Int("clock", opts.Clock),
	)

	front, err := frontend.New(app.Context(), vm, logger, opts, rom)
	if err != nil {
		return fmt.Errorf("creating frontend: %w", err)
	}

	title := fmt.Sprintf("chip8emu - %s", filepath.Base(opts.Input))
	return front.Run(title)
}

// printDisassembly writes a listing of the ROM with addresses, raw opcodes,
// assembly code and descriptions.
func printDisassembly(writer io.Writer, rom []byte) error {
	instructions := disasm.DisassembleMemory(rom, chip8.ProgramStart, len(rom)/2, 0)

	for _, ins := range instructions {
		_, err := fmt.Fprintf(writer, "$%04X  %04X  %-16s ; %s\n",
			ins.Address, ins.Opcode, ins.Code, ins.Description)
		if err != nil {
			return fmt.Errorf("writing disassembly: %w", err)
		}
	}
	return nil
}

// printBanner prints application version information
func printBanner(logger *log.Logger, opts options.Program) {
	if opts.Quiet {
		return
	}
	logger.Info("chip8emu", log.String("version", buildinfo.Version(version, commit, date)))
}
