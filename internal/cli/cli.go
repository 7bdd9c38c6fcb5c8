// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/retroenv/retrochip8/internal/options"
)

// ParseFlags parses command line flags and returns program and emulator options
func ParseFlags() (options.Program, options.Emulator, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (options.Program, options.Emulator, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(args)
	remaining := flags.Args()
	if err != nil || len(remaining) == 0 {
		return opts, options.Emulator{}, &UsageError{flags: flags}
	}

	if err := validateArgs(remaining); err != nil {
		return opts, options.Emulator{}, err
	}
	opts.ROM = remaining[0]

	if opts.InstructionsPerSecond <= 0 {
		return opts, options.Emulator{}, fmt.Errorf(
			"invalid instructions per second value %d, must be positive",
			opts.InstructionsPerSecond)
	}

	emuOptions := createEmulatorOptions(opts)
	return opts, emuOptions, nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file to run>\n\n")
	e.flags.PrintDefaults()
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// createEmulatorOptions creates emulator options based on program options
func createEmulatorOptions(opts options.Program) options.Emulator {
	emuOptions := options.NewEmulator()
	emuOptions.InstructionsPerSecond = opts.InstructionsPerSecond
	emuOptions.Trace = opts.Trace
	return emuOptions
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.IntVar(&opts.InstructionsPerSecond, "ips", options.DefaultInstructionsPerSecond,
		"instructions to execute per second")
	flags.Int64Var(&opts.Seed, "seed", 0, "random number generator seed, 0 picks a random one")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction, implies -debug")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}
