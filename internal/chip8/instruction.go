package chip8

// opcodeSize is the size of CHIP-8 instructions in bytes. All 35 opcodes are
// two bytes long and stored big-endian.
const opcodeSize = 2

// instruction is one decoded opcode word. All operand fields are extracted
// on every fetch regardless of which ones the opcode uses, so the executor
// never has to check field availability. The record lives for exactly one
// fetch/execute cycle.
type instruction struct {
	opcode uint16

	nnn uint16 // 12 bit address
	nn  byte   // 8 bit constant
	n   byte   // 4 bit constant
	x   byte   // 4 bit register identifier
	y   byte   // 4 bit register identifier
}

// fetch reads the two instruction bytes at the program counter, advances the
// program counter past them and decodes all operand fields. Advancing before
// dispatch keeps jump and call opcodes from being clobbered by the advance.
func (m *Machine) fetch() {
	opcode := uint16(m.ram[m.pc%MemorySize])<<8 | uint16(m.ram[(m.pc+1)%MemorySize])
	m.pc += opcodeSize

	m.inst = instruction{
		opcode: opcode,
		nnn:    opcode & 0x0FFF,
		nn:     byte(opcode & 0x00FF),
		n:      byte(opcode & 0x000F),
		x:      byte(opcode>>8) & 0x0F,
		y:      byte(opcode>>4) & 0x0F,
	}
}

// Opcode returns the most recently executed opcode word, for tracing.
func (m *Machine) Opcode() uint16 {
	return m.inst.opcode
}
