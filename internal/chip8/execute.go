package chip8

import "fmt"

// Step fetches, decodes and executes exactly one instruction. It is a no-op
// unless the machine is Running. Structural errors, a call overflowing or a
// return underflowing the subroutine stack, halt the machine and are
// returned as a diagnostic; well-formed programs never trigger them. Unknown
// opcodes are a silent no-op, matching the permissive behavior of historical
// interpreters, and must never be treated as an error.
func (m *Machine) Step() error {
	if m.state != Running {
		return nil
	}

	m.fetch()
	inst := m.inst

	switch inst.opcode >> 12 {
	case 0x0:
		switch inst.nn {
		case 0xE0: // 00E0: clear the display
			m.clearDisplay()

		case 0xEE: // 00EE: return from a subroutine
			if m.sp == 0 {
				m.state = Halted
				return fmt.Errorf("%w: return at address %03X",
					ErrStackUnderflow, m.pc-opcodeSize)
			}
			m.sp--
			m.pc = m.stack[m.sp]

		default:
			// 0NNN calls a machine code routine on the original COSMAC VIP
			// hardware. Not needed by ROMs, ignored.
		}

	case 0x1: // 1NNN: jump to address NNN
		m.pc = inst.nnn

	case 0x2: // 2NNN: call subroutine at NNN
		if m.sp == StackDepth {
			m.state = Halted
			return fmt.Errorf("%w: call at address %03X exceeds %d levels",
				ErrStackOverflow, m.pc-opcodeSize, StackDepth)
		}
		m.stack[m.sp] = m.pc
		m.sp++
		m.pc = inst.nnn

	case 0x3: // 3XNN: skip next instruction if VX == NN
		if m.v[inst.x] == inst.nn {
			m.pc += opcodeSize
		}

	case 0x4: // 4XNN: skip next instruction if VX != NN
		if m.v[inst.x] != inst.nn {
			m.pc += opcodeSize
		}

	case 0x5: // 5XY0: skip next instruction if VX == VY
		if inst.n == 0 && m.v[inst.x] == m.v[inst.y] {
			m.pc += opcodeSize
		}

	case 0x6: // 6XNN: VX = NN
		m.v[inst.x] = inst.nn

	case 0x7: // 7XNN: VX += NN, carry flag unchanged
		m.v[inst.x] += inst.nn

	case 0x8:
		m.executeALU(inst)

	case 0x9: // 9XY0: skip next instruction if VX != VY
		if inst.n == 0 && m.v[inst.x] != m.v[inst.y] {
			m.pc += opcodeSize
		}

	case 0xA: // ANNN: I = NNN
		m.i = inst.nnn

	case 0xB: // BNNN: jump to address NNN + V0
		m.pc = inst.nnn + uint16(m.v[0])

	case 0xC: // CXNN: VX = random byte AND NN
		m.v[inst.x] = byte(m.rng.Intn(256)) & inst.nn

	case 0xD: // DXYN: draw 8xN sprite from I at (VX, VY), VF = collision
		m.drawSprite(inst.x, inst.y, inst.n)

	case 0xE:
		switch inst.nn {
		case 0x9E: // EX9E: skip next instruction if key VX is pressed
			if m.Key(m.v[inst.x]) {
				m.pc += opcodeSize
			}

		case 0xA1: // EXA1: skip next instruction if key VX is not pressed
			if !m.Key(m.v[inst.x]) {
				m.pc += opcodeSize
			}
		}

	case 0xF:
		m.executeMisc(inst)
	}

	return nil
}

// executeALU handles the 8XYN register operation family. The flag register
// VF is written after the result, so an operation targeting VF itself leaves
// the flag as the final value.
func (m *Machine) executeALU(inst instruction) {
	vx, vy := m.v[inst.x], m.v[inst.y]

	switch inst.n {
	case 0x0: // 8XY0: VX = VY
		m.v[inst.x] = vy

	case 0x1: // 8XY1: VX |= VY
		m.v[inst.x] = vx | vy

	case 0x2: // 8XY2: VX &= VY
		m.v[inst.x] = vx & vy

	case 0x3: // 8XY3: VX ^= VY
		m.v[inst.x] = vx ^ vy

	case 0x4: // 8XY4: VX += VY, VF = 1 on carry out of 8 bits
		sum := uint16(vx) + uint16(vy)
		m.v[inst.x] = byte(sum)
		m.v[0xF] = flag(sum > 0xFF)

	case 0x5: // 8XY5: VX -= VY, VF = 1 if VX >= VY before the subtraction.
		// The register values are compared, not the register selectors.
		m.v[inst.x] = vx - vy
		m.v[0xF] = flag(vx >= vy)

	case 0x6: // 8XY6: VX = VY >> 1, VF = bit shifted out of VY
		m.v[inst.x] = vy >> 1
		m.v[0xF] = vy & 0x01

	case 0x7: // 8XY7: VX = VY - VX, VF = 1 if VY > VX before the subtraction
		m.v[inst.x] = vy - vx
		m.v[0xF] = flag(vy > vx)

	case 0xE: // 8XYE: VX = VY << 1, VF = bit shifted out of VY
		m.v[inst.x] = vy << 1
		m.v[0xF] = (vy & 0x80) >> 7
	}
}

// executeMisc handles the FXNN family: timers, keypad wait, index register
// arithmetic, font addressing, BCD and register block transfers.
func (m *Machine) executeMisc(inst instruction) {
	switch inst.nn {
	case 0x07: // FX07: VX = delay timer
		m.v[inst.x] = m.delayTimer

	case 0x0A: // FX0A: wait for a key press, store the key in VX.
		// Implemented as level-triggered polling: while no key is pressed
		// the PC rewinds so the same instruction is fetched again on the
		// next cycle, yielding control back to the host every tick. With
		// multiple keys held the lowest symbol wins.
		key, pressed := m.firstPressedKey()
		if !pressed {
			m.pc -= opcodeSize
			return
		}
		m.v[inst.x] = key

	case 0x15: // FX15: delay timer = VX
		m.delayTimer = m.v[inst.x]

	case 0x18: // FX18: sound timer = VX
		m.soundTimer = m.v[inst.x]

	case 0x1E: // FX1E: I += VX, VF unchanged
		m.i += uint16(m.v[inst.x])

	case 0x29: // FX29: I = font address of the glyph for the digit in VX
		m.i = FontOffset + uint16(m.v[inst.x]&0x0F)*GlyphSize

	case 0x33: // FX33: store BCD of VX at I, I+1, I+2
		value := m.v[inst.x]
		m.ram[m.i%MemorySize] = value / 100
		m.ram[(m.i+1)%MemorySize] = value / 10 % 10
		m.ram[(m.i+2)%MemorySize] = value % 10

	case 0x55: // FX55: store V0..VX to memory at I, I unchanged
		for reg := byte(0); reg <= inst.x; reg++ {
			m.ram[(m.i+uint16(reg))%MemorySize] = m.v[reg]
		}

	case 0x65: // FX65: load V0..VX from memory at I, I unchanged
		for reg := byte(0); reg <= inst.x; reg++ {
			m.v[reg] = m.ram[(m.i+uint16(reg))%MemorySize]
		}
	}
}

// flag converts a condition to a VF flag value.
func flag(condition bool) byte {
	if condition {
		return 1
	}
	return 0
}
