// Package main implements the main entry point for a CHIP-8 emulator
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/cli"
	"github.com/retroenv/retrochip8/internal/config"
	"github.com/retroenv/retrochip8/internal/emulator"
	"github.com/retroenv/retrochip8/internal/loader"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/terminal"
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
	ctx := app.Context()

	opts, emuOptions, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			printBanner(opts)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts)
	printBanner(opts)

	if err := run(ctx, logger, opts, emuOptions); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Emulation cancelled")
			return
		}
		logger.Fatal("Emulation failed", log.Err(err))
	}
}

func printBanner(opts options.Program) {
	if opts.Quiet {
		return
	}
	fmt.Println("[------------------------------]")
	fmt.Println("[ retrochip8 - CHIP-8 emulator ]")
	fmt.Printf("[------------------------------]\n\n")
	fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
}

func run(ctx context.Context, logger *log.Logger, opts options.Program,
	emuOptions options.Emulator) error {

	rom, err := loader.New().Load(opts.ROM)
	if err != nil {
		return fmt.Errorf("loading ROM: %w", err)
	}

	machine := chip8.New()
	if opts.Seed != 0 {
		machine.SeedRandom(opts.Seed)
	}
	if err := machine.Load(rom); err != nil {
		return fmt.Errorf("initializing machine: %w", err)
	}

	logger.Info("Running ROM",
		log.String("file", opts.ROM),
		log.Int("size", len(rom)),
		log.Int("instructions_per_second", emuOptions.InstructionsPerSecond))

	term, err := terminal.Open()
	if err != nil {
		return fmt.Errorf("opening terminal: %w", err)
	}
	defer func() {
		_ = term.Close()
	}()

	emu := emulator.New(logger, machine, term, term, emuOptions)
	return emu.Run(ctx)
}
