// Package chip8 implements the CHIP-8 virtual machine core.
// CHIP-8 is an interpreted programming language from the 1970s designed for
// simple games. The machine has 4KB of memory, 16 general-purpose 8-bit
// registers, a 64x32 monochrome display and two 60 Hz countdown timers.
//
// The package contains no I/O: a host drives the machine once per frame by
// polling input, executing an instruction batch, ticking the timers and
// presenting the display buffer.
package chip8

import (
	"errors"
	"fmt"
	"math/rand"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter and font data (512 bytes)
//	0x200-0xFFF: User program space (3584 bytes)
//
// The display buffer and the subroutine stack are maintained separately from
// the 4KB main memory address space.
const (
	// MemorySize is the total addressable memory of the machine.
	MemorySize = 4096

	// ProgramStart is the memory address where CHIP-8 programs begin execution.
	// Programs are stored starting at offset 0 in ROM files but loaded and
	// executed at address 0x200.
	ProgramStart = 0x200

	// MaxROMSize is the largest program image that fits into memory.
	MaxROMSize = MemorySize - ProgramStart

	// StackDepth is the maximum subroutine nesting level.
	StackDepth = 12

	// RegisterCount is the number of general-purpose registers V0..VF.
	RegisterCount = 16

	// KeyCount is the number of keypad symbols 0x0..0xF.
	KeyCount = 16

	// FontOffset is the memory address of the built-in hexadecimal font.
	FontOffset = 0x000

	// GlyphSize is the number of bytes per font glyph.
	GlyphSize = 5
)

// Load-time and execution-time error conditions.
var (
	// ErrROMTooLarge is returned when a program image does not fit into the
	// memory region above the entry point.
	ErrROMTooLarge = errors.New("ROM image exceeds available program memory")

	// ErrStackOverflow is returned when a subroutine call exceeds the
	// maximum nesting depth. The machine halts.
	ErrStackOverflow = errors.New("subroutine call stack overflow")

	// ErrStackUnderflow is returned when a return executes with an empty
	// call stack. The machine halts.
	ErrStackUnderflow = errors.New("subroutine call stack underflow")
)

// font contains the sprites for the hexadecimal digits 0..F that ROMs expect
// in low memory, 5 bytes per glyph, one bit per pixel. The glyph for F is
// 0xF0 0x80 0xF0 0x80 0x80:
//
//	11110000
//	10000000
//	11110000
//	10000000
//	10000000
var font = [RegisterCount * GlyphSize]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Machine represents one CHIP-8 virtual machine instance. All state is owned
// exclusively by the instance, a single execution context drives it and no
// synchronization is defined. Independent instances share no mutable state.
type Machine struct {
	ram     [MemorySize]byte
	display [DisplayWidth * DisplayHeight]bool
	stack   [StackDepth]uint16
	v       [RegisterCount]byte
	keypad  [KeyCount]bool

	i  uint16 // index register, used as memory cursor
	pc uint16
	sp byte

	delayTimer byte
	soundTimer byte

	inst  instruction
	state RunState

	rng *rand.Rand
}

// New returns a new machine with the font installed and no program loaded.
// The machine is not runnable until Load succeeds.
func New() *Machine {
	m := &Machine{
		rng: rand.New(rand.NewSource(rand.Int63())),
	}
	copy(m.ram[FontOffset:], font[:])
	return m
}

// Load resets the machine and copies the program image into memory at the
// entry point. On success the program counter points at the entry point, the
// stack is empty and the run state is Running. On failure no observable
// machine state changes.
func (m *Machine) Load(rom []byte) error {
	if len(rom) > MaxROMSize {
		return fmt.Errorf("%w: ROM size %d, max size allowed %d",
			ErrROMTooLarge, len(rom), MaxROMSize)
	}

	m.Reset()
	copy(m.ram[ProgramStart:], rom)
	return nil
}

// Reset restores the machine to its initial state: font installed, registers,
// timers, keypad and display cleared, PC at the entry point, run state
// Running. Program memory is cleared as well, a new program has to be loaded
// to execute anything meaningful.
func (m *Machine) Reset() {
	m.ram = [MemorySize]byte{}
	copy(m.ram[FontOffset:], font[:])

	m.display = [DisplayWidth * DisplayHeight]bool{}
	m.stack = [StackDepth]uint16{}
	m.v = [RegisterCount]byte{}
	m.keypad = [KeyCount]bool{}

	m.i = 0
	m.pc = ProgramStart
	m.sp = 0
	m.delayTimer = 0
	m.soundTimer = 0
	m.inst = instruction{}
	m.state = Running
}

// PC returns the current program counter.
func (m *Machine) PC() uint16 {
	return m.pc
}

// I returns the current index register value.
func (m *Machine) I() uint16 {
	return m.i
}

// SP returns the current stack pointer, the number of active subroutine
// nesting levels.
func (m *Machine) SP() byte {
	return m.sp
}

// Register returns the value of general-purpose register Vx.
func (m *Machine) Register(x byte) byte {
	return m.v[x&0xF]
}

// ReadMemory returns the byte at the given memory address.
func (m *Machine) ReadMemory(address uint16) byte {
	return m.ram[address%MemorySize]
}

// SeedRandom reseeds the random number generator, for reproducible runs.
func (m *Machine) SeedRandom(seed int64) {
	m.rng = rand.New(rand.NewSource(seed))
}
