// Package emulator drives one CHIP-8 machine at a steady frame cadence.
package emulator

import (
	"context"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/trace"
	"github.com/retroenv/retrogolib/log"
)

// Renderer presents the machine's display buffer to the user. The renderer
// only reads machine state.
type Renderer interface {
	Present(m *chip8.Machine) error
}

// Input applies pending host input events to the machine: keypad presses
// and releases, pause toggling and quit requests.
type Input interface {
	// Poll applies pending events and returns true when the host requested
	// to quit.
	Poll(m *chip8.Machine) (bool, error)
}

// Emulator runs a machine against a renderer and an input source. Each frame
// tick consists of an input poll, a batch of instruction executions, one
// timer decrement and one presentation of the display.
type Emulator struct {
	logger   *log.Logger
	machine  *chip8.Machine
	renderer Renderer
	input    Input
	opts     options.Emulator

	stepsPerFrame int
}

// New creates a new emulator for the given machine and host surfaces.
func New(logger *log.Logger, machine *chip8.Machine, renderer Renderer,
	input Input, opts options.Emulator) *Emulator {

	return &Emulator{
		logger:        logger,
		machine:       machine,
		renderer:      renderer,
		input:         input,
		opts:          opts,
		stepsPerFrame: opts.StepsPerFrame(),
	}
}

// Run executes frame ticks until the context is canceled, the host requests
// to quit or the machine halts. A machine halting due to a structural error
// returns that error.
func (e *Emulator) Run(ctx context.Context) error {
	e.logger.Debug("Starting emulation",
		log.Int("instructions_per_second", e.opts.InstructionsPerSecond),
		log.Int("frame_rate", e.opts.FrameRate),
		log.Int("steps_per_frame", e.stepsPerFrame))

	ticker := time.NewTicker(time.Second / time.Duration(e.opts.FrameRate))
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-ticker.C:
			quit, err := e.RunFrame()
			if err != nil {
				return err
			}
			if quit {
				return nil
			}
		}
	}
}

// RunFrame executes one frame tick and reports whether emulation finished,
// either by a host quit request or by the machine halting.
func (e *Emulator) RunFrame() (bool, error) {
	quit, err := e.input.Poll(e.machine)
	if err != nil {
		return false, fmt.Errorf("polling input: %w", err)
	}
	if quit {
		return true, nil
	}

	switch e.machine.State() {
	case chip8.Halted:
		return true, nil

	case chip8.Paused:
		// pausing freezes simulated time: no instructions, no timer ticks
		return false, e.present()
	}

	if err := e.runInstructionBatch(); err != nil {
		return false, err
	}

	e.machine.TickTimers()
	return e.machine.State() == chip8.Halted, e.present()
}

// runInstructionBatch executes the per-frame instruction budget, stopping
// early if the machine leaves the Running state.
func (e *Emulator) runInstructionBatch() error {
	for range e.stepsPerFrame {
		if e.opts.Trace {
			e.traceInstruction()
		}

		if err := e.machine.Step(); err != nil {
			e.logger.Error("Machine halted", log.Err(err))
			return fmt.Errorf("executing instruction: %w", err)
		}

		if e.machine.State() != chip8.Running {
			return nil
		}
	}
	return nil
}

// traceInstruction logs the instruction at the program counter before it
// executes.
func (e *Emulator) traceInstruction() {
	pc := e.machine.PC()
	opcode := uint16(e.machine.ReadMemory(pc))<<8 | uint16(e.machine.ReadMemory(pc+1))

	e.logger.Debug("Executing",
		log.Hex("pc", pc),
		log.String("instruction", trace.Disassemble(opcode)))
}

func (e *Emulator) present() error {
	if err := e.renderer.Present(e.machine); err != nil {
		return fmt.Errorf("presenting display: %w", err)
	}
	return nil
}
