// Package trace formats executed CHIP-8 instructions as assembly mnemonics
// for debug logging.
package trace

import (
	"fmt"

	"github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Disassemble returns the assembly representation of one opcode word, for
// example "JP $228" or "ADD V1, V2". Opcode words that match no instruction
// are rendered as a data word.
func Disassemble(opcode uint16) string {
	firstNibble := (opcode & 0xF000) >> 12

	for _, op := range chip8.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode != op.Info.Value {
			continue
		}
		if op.Instruction == nil {
			break
		}

		name := op.Instruction.Name
		if params := formatInstruction(name, opcode); params != "" {
			return fmt.Sprintf("%s %s", name, params)
		}
		return name
	}

	return fmt.Sprintf(".word $%04X", opcode)
}

// formatInstruction formats a CHIP-8 instruction with its parameters.
// Returns the formatted parameter string for the given instruction.
func formatInstruction(name string, opcode uint16) string {
	switch name {
	case chip8.ClsName, chip8.RetName:
		return "" // No parameters
	case chip8.JpName:
		return formatJumpInstruction(opcode)
	case chip8.CallName:
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	case chip8.SeName, chip8.SneName:
		return formatCompareInstruction(opcode)
	case chip8.LdName:
		return formatLoadInstruction(opcode)
	case chip8.AddName:
		return formatAddInstruction(opcode)
	case chip8.OrName, chip8.AndName, chip8.XorName, chip8.SubName, chip8.SubnName:
		return formatBinaryInstruction(opcode)
	case chip8.ShrName, chip8.ShlName, chip8.SkpName, chip8.SknpName:
		return fmt.Sprintf("V%X", extractRegisterX(opcode))
	case chip8.RndName:
		return fmt.Sprintf("V%X, $%02X", extractRegisterX(opcode), opcode&0x00FF)
	case chip8.DrwName:
		return formatDrawInstruction(opcode)
	}
	return ""
}

// formatJumpInstruction formats jump instructions (JP addr, JP V0+addr).
func formatJumpInstruction(opcode uint16) string {
	if opcode&0xF000 == 0x1000 {
		return fmt.Sprintf("$%03X", opcode&0x0FFF)
	}
	if opcode&0xF000 == 0xB000 {
		return fmt.Sprintf("V0, $%03X", opcode&0x0FFF)
	}
	return ""
}

// formatCompareInstruction formats comparison instructions (SE, SNE).
func formatCompareInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	// SE/SNE instructions:
	// 3XNN: SE Vx, byte
	// 4XNN: SNE Vx, byte
	// 5XY0: SE Vx, Vy
	// 9XY0: SNE Vx, Vy
	switch opcode & 0xF000 {
	case 0x3000, 0x4000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x5000, 0x9000:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	}
	return ""
}

// formatLoadInstruction formats load instructions (LD Vx, byte/Vy/I and the
// FXNN loads).
func formatLoadInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	case 0xA000:
		return fmt.Sprintf("I, $%03X", opcode&0x0FFF)
	case 0xF000:
		return formatMiscLoadInstruction(opcode, x)
	}
	return ""
}

// formatMiscLoadInstruction formats the FXNN load variants.
func formatMiscLoadInstruction(opcode, x uint16) string {
	switch opcode & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}

// formatAddInstruction formats add instructions (ADD Vx, byte/Vy and
// ADD I, Vx).
func formatAddInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	switch opcode & 0xF000 {
	case 0x7000:
		return fmt.Sprintf("V%X, $%02X", x, opcode&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, extractRegisterY(opcode))
	case 0xF000:
		return fmt.Sprintf("I, V%X", x)
	}
	return ""
}

// formatBinaryInstruction formats binary operation instructions
// (OR, AND, XOR, SUB, SUBN).
func formatBinaryInstruction(opcode uint16) string {
	return fmt.Sprintf("V%X, V%X", extractRegisterX(opcode), extractRegisterY(opcode))
}

// formatDrawInstruction formats draw instructions (DRW).
func formatDrawInstruction(opcode uint16) string {
	x := extractRegisterX(opcode)
	y := extractRegisterY(opcode)
	n := opcode & 0x000F
	return fmt.Sprintf("V%X, V%X, $%X", x, y, n)
}

// extractRegisterX extracts the X register nibble from a CHIP-8 opcode.
func extractRegisterX(opcode uint16) uint16 {
	return (opcode & 0x0F00) >> 8
}

// extractRegisterY extracts the Y register nibble from a CHIP-8 opcode.
func extractRegisterY(opcode uint16) uint16 {
	return (opcode & 0x00F0) >> 4
}
