// Package options contains the program options.
package options

// Defaults for the emulation speed.
const (
	// DefaultInstructionsPerSecond is the default CPU speed. Around 700
	// instructions per second matches the machines CHIP-8 games were
	// written for.
	DefaultInstructionsPerSecond = 700

	// DefaultFrameRate is the display refresh and timer tick rate in Hz.
	DefaultFrameRate = 60
)

// Program options of the emulator.
type Program struct {
	ROM string // path of the ROM file to run

	InstructionsPerSecond int
	Seed                  int64 // random number generator seed, 0 = random

	Debug bool
	Quiet bool
	Trace bool // log every executed instruction, implies Debug
}

// Emulator defines options to control the emulation loop.
type Emulator struct {
	InstructionsPerSecond int
	FrameRate             int

	Trace bool
}

// NewEmulator returns a new options instance with default options.
func NewEmulator() Emulator {
	return Emulator{
		InstructionsPerSecond: DefaultInstructionsPerSecond,
		FrameRate:             DefaultFrameRate,
	}
}

// StepsPerFrame returns the number of instructions to execute per frame
// tick, derived from the configured instructions per second budget divided
// by the tick rate. At least one instruction executes per frame.
func (e Emulator) StepsPerFrame() int {
	steps := e.InstructionsPerSecond / e.FrameRate
	if steps < 1 {
		steps = 1
	}
	return steps
}
