package chip8

// SetKey records a press or release of one hexadecimal keypad symbol
// 0x0..0xF. The host pushes key state before executing instructions, key
// dependent opcodes read it synchronously. Symbols above 0xF are ignored.
func (m *Machine) SetKey(key byte, pressed bool) {
	if key >= KeyCount {
		return
	}
	m.keypad[key] = pressed
}

// Key reports whether the given keypad symbol is currently pressed.
// Symbols above 0xF read as not pressed, the documented fallback for ROMs
// that pass an out of range register value to a key opcode.
func (m *Machine) Key(key byte) bool {
	if key >= KeyCount {
		return false
	}
	return m.keypad[key]
}

// firstPressedKey scans the keypad from symbol 0x0 through 0xF and returns
// the lowest pressed symbol. The scan order is observable when multiple keys
// are held at once.
func (m *Machine) firstPressedKey() (byte, bool) {
	for key := byte(0); key < KeyCount; key++ {
		if m.keypad[key] {
			return key, true
		}
	}
	return 0, false
}
