package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestStepArithmetic(t *testing.T) {
	tests := []struct {
		name   string
		vx, vy byte
		opcode uint16
		want   byte
		wantVF byte
	}{
		{"add without carry", 1, 1, 0x8014, 2, 0},
		{"add with carry", 250, 10, 0x8014, 4, 1},
		{"add carry boundary", 255, 1, 0x8014, 0, 1},
		{"add no carry boundary", 254, 1, 0x8014, 255, 0},
		{"sub vx greater", 5, 3, 0x8015, 2, 1},
		{"sub equal values", 5, 5, 0x8015, 0, 1},
		{"sub vx smaller wraps", 3, 5, 0x8015, 254, 0},
		{"subn vy greater", 3, 5, 0x8017, 2, 1},
		{"subn equal values", 5, 5, 0x8017, 0, 0},
		{"subn vy smaller wraps", 5, 3, 0x8017, 254, 0},
		{"or", 0xF0, 0x0F, 0x8011, 0xFF, 0},
		{"and", 0xF0, 0x3C, 0x8012, 0x30, 0},
		{"xor", 0xFF, 0x0F, 0x8013, 0xF0, 0},
		{"copy", 1, 9, 0x8010, 9, 0},
		{"shift right even", 0, 0x04, 0x8016, 0x02, 0},
		{"shift right odd", 0, 0x05, 0x8016, 0x02, 1},
		{"shift left low", 0, 0x41, 0x801E, 0x82, 0},
		{"shift left high bit out", 0, 0x81, 0x801E, 0x02, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadProgram(t, tt.opcode)
			m.v[0] = tt.vx
			m.v[1] = tt.vy

			assert.NoError(t, m.Step())

			assert.Equal(t, tt.want, m.Register(0))
			assert.Equal(t, tt.wantVF, m.Register(0xF))
		})
	}
}

func TestStepSubComparesValuesNotSelectors(t *testing.T) {
	// V0 < V1 but the destination selector 0 is smaller than the source
	// selector 1: the borrow flag must come from the values.
	m := loadProgram(t, 0x8015)
	m.v[0] = 3
	m.v[1] = 5

	assert.NoError(t, m.Step())

	assert.Equal(t, byte(254), m.Register(0))
	assert.Equal(t, byte(0), m.Register(0xF))
}

func TestStepImmediates(t *testing.T) {
	m := loadProgram(t,
		0x63AB, // V3 = 0xAB
		0x7310, // V3 += 0x10
		0x73FF, // V3 += 0xFF, wraps, no carry flag
	)
	m.v[0xF] = 7

	assert.NoError(t, m.Step())
	assert.Equal(t, byte(0xAB), m.Register(3))

	assert.NoError(t, m.Step())
	assert.Equal(t, byte(0xBB), m.Register(3))

	assert.NoError(t, m.Step())
	assert.Equal(t, byte(0xBA), m.Register(3))
	// add-immediate never touches the flag register
	assert.Equal(t, byte(7), m.Register(0xF))
}

func TestStepSkips(t *testing.T) {
	tests := []struct {
		name     string
		opcode   uint16
		v0, v1   byte
		wantSkip bool
	}{
		{"skip eq immediate taken", 0x3042, 0x42, 0, true},
		{"skip eq immediate not taken", 0x3042, 0x41, 0, false},
		{"skip ne immediate taken", 0x4042, 0x41, 0, true},
		{"skip ne immediate not taken", 0x4042, 0x42, 0, false},
		{"skip registers eq taken", 0x5010, 7, 7, true},
		{"skip registers eq not taken", 0x5010, 7, 8, false},
		{"skip registers ne taken", 0x9010, 7, 8, true},
		{"skip registers ne not taken", 0x9010, 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadProgram(t, tt.opcode)
			m.v[0] = tt.v0
			m.v[1] = tt.v1

			assert.NoError(t, m.Step())

			wantPC := uint16(ProgramStart + opcodeSize)
			if tt.wantSkip {
				wantPC += opcodeSize
			}
			assert.Equal(t, wantPC, m.PC())
		})
	}
}

func TestStepJumpsAndCalls(t *testing.T) {
	t.Run("jump", func(t *testing.T) {
		m := loadProgram(t, 0x1400)
		assert.NoError(t, m.Step())
		assert.Equal(t, uint16(0x400), m.PC())
	})

	t.Run("jump with offset", func(t *testing.T) {
		m := loadProgram(t, 0xB400)
		m.v[0] = 0x20
		assert.NoError(t, m.Step())
		assert.Equal(t, uint16(0x420), m.PC())
	})

	t.Run("call and return", func(t *testing.T) {
		m := loadProgram(t, 0x2208) // call 0x208
		assert.NoError(t, m.Step())
		assert.Equal(t, uint16(0x208), m.PC())
		assert.Equal(t, byte(1), m.SP())

		// place a RET at 0x208
		m.ram[0x208] = 0x00
		m.ram[0x209] = 0xEE
		assert.NoError(t, m.Step())
		assert.Equal(t, uint16(ProgramStart+opcodeSize), m.PC())
		assert.Equal(t, byte(0), m.SP())
	})
}

func TestStepStackUnderflow(t *testing.T) {
	m := loadProgram(t, 0x00EE)

	err := m.Step()

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.Equal(t, Halted, m.State())

	// halted is terminal, further steps are no-ops
	assert.NoError(t, m.Step())
	assert.Equal(t, Halted, m.State())
}

func TestStepStackOverflow(t *testing.T) {
	// 0x2200 calls the entry point in a loop, filling the stack
	m := loadProgram(t, 0x2200)

	for level := 0; level < StackDepth; level++ {
		assert.NoError(t, m.Step())
	}
	assert.Equal(t, byte(StackDepth), m.SP())

	err := m.Step()

	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.Equal(t, Halted, m.State())
}

func TestStepUnknownOpcodeIsNoOp(t *testing.T) {
	// no opcodes are defined for 0x0NNN (besides 00E0/00EE), 0x5XY1, 0xE and
	// 0xF patterns outside the known low bytes
	for _, opcode := range []uint16{0x0123, 0x5011, 0x8018, 0xE000, 0xF0FF} {
		m := loadProgram(t, opcode)
		m.v[5] = 99

		assert.NoError(t, m.Step())

		// state untouched besides the PC advance of the fetch
		assert.Equal(t, uint16(ProgramStart+opcodeSize), m.PC())
		assert.Equal(t, byte(99), m.Register(5))
		assert.Equal(t, Running, m.State())
	}
}

func TestStepIndexRegister(t *testing.T) {
	t.Run("set index", func(t *testing.T) {
		m := loadProgram(t, 0xA123)
		assert.NoError(t, m.Step())
		assert.Equal(t, uint16(0x123), m.I())
	})

	t.Run("add to index leaves flag alone", func(t *testing.T) {
		m := loadProgram(t, 0xA300, 0xF21E) // I = 0x300, I += V2
		m.v[2] = 0x42
		m.v[0xF] = 5

		assert.NoError(t, m.Step())
		assert.NoError(t, m.Step())

		assert.Equal(t, uint16(0x342), m.I())
		assert.Equal(t, byte(5), m.Register(0xF))
	})

	t.Run("font address", func(t *testing.T) {
		m := loadProgram(t, 0xF329)
		m.v[3] = 0xA

		assert.NoError(t, m.Step())

		assert.Equal(t, uint16(FontOffset+0xA*GlyphSize), m.I())
		// glyph data for A starts with 0xF0
		assert.Equal(t, byte(0xF0), m.ReadMemory(m.I()))
	})
}

func TestStepBCD(t *testing.T) {
	tests := []struct {
		name  string
		value byte
		want  [3]byte
	}{
		{"three digits", 234, [3]byte{2, 3, 4}},
		{"two digits", 42, [3]byte{0, 4, 2}},
		{"one digit", 7, [3]byte{0, 0, 7}},
		{"zero", 0, [3]byte{0, 0, 0}},
		{"maximum", 255, [3]byte{2, 5, 5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := loadProgram(t, 0xA300, 0xF533) // I = 0x300, BCD of V5
			m.v[5] = tt.value

			assert.NoError(t, m.Step())
			assert.NoError(t, m.Step())

			assert.Equal(t, tt.want[0], m.ReadMemory(0x300))
			assert.Equal(t, tt.want[1], m.ReadMemory(0x301))
			assert.Equal(t, tt.want[2], m.ReadMemory(0x302))
		})
	}
}

func TestStepRegisterDumpAndLoad(t *testing.T) {
	m := loadProgram(t, 0xA300, 0xF355) // I = 0x300, store V0..V3
	for reg := byte(0); reg <= 3; reg++ {
		m.v[reg] = 0x10 + reg
	}
	m.v[4] = 0xEE // must not be stored

	assert.NoError(t, m.Step())
	assert.NoError(t, m.Step())

	for reg := byte(0); reg <= 3; reg++ {
		assert.Equal(t, 0x10+reg, m.ReadMemory(0x300+uint16(reg)))
	}
	assert.Equal(t, byte(0), m.ReadMemory(0x304))
	// I stays unmodified by convention
	assert.Equal(t, uint16(0x300), m.I())

	// load them back into a fresh register file
	m2 := loadProgram(t, 0xA300, 0xF365)
	for reg := byte(0); reg <= 3; reg++ {
		m2.ram[0x300+uint16(reg)] = 0x20 + reg
	}

	assert.NoError(t, m2.Step())
	assert.NoError(t, m2.Step())

	for reg := byte(0); reg <= 3; reg++ {
		assert.Equal(t, 0x20+reg, m2.Register(reg))
	}
	assert.Equal(t, byte(0), m2.Register(4))
	assert.Equal(t, uint16(0x300), m2.I())
}

func TestStepTimerOpcodes(t *testing.T) {
	m := loadProgram(t,
		0x6530, // V5 = 0x30
		0xF515, // delay timer = V5
		0xF518, // sound timer = V5
		0xF607, // V6 = delay timer
	)

	for range 4 {
		assert.NoError(t, m.Step())
	}

	assert.Equal(t, byte(0x30), m.DelayTimer())
	assert.Equal(t, byte(0x30), m.SoundTimer())
	assert.Equal(t, byte(0x30), m.Register(6))
	assert.True(t, m.SoundActive())
}

func TestStepRandomMask(t *testing.T) {
	// a zero mask forces a zero result regardless of the random byte
	m := loadProgram(t, 0x6077, 0xC000)
	assert.NoError(t, m.Step())
	assert.NoError(t, m.Step())
	assert.Equal(t, byte(0), m.Register(0))

	// masked bits outside 0x0F must never be set
	m2 := loadProgram(t, 0xC10F)
	m2.SeedRandom(1)
	assert.NoError(t, m2.Step())
	assert.Equal(t, byte(0), m2.Register(1)&0xF0)
}
