package chip8

// TickTimers decrements both countdown timers by one, floored at zero. The
// host calls this exactly once per frame at a 60 Hz cadence; the machine only
// guarantees the floor, cadence enforcement is the caller's concern. A halted
// machine ignores ticks.
func (m *Machine) TickTimers() {
	if m.state == Halted {
		return
	}
	if m.delayTimer > 0 {
		m.delayTimer--
	}
	if m.soundTimer > 0 {
		m.soundTimer--
	}
}

// DelayTimer returns the current delay timer value.
func (m *Machine) DelayTimer() byte {
	return m.delayTimer
}

// SoundTimer returns the current sound timer value.
func (m *Machine) SoundTimer() byte {
	return m.soundTimer
}

// SoundActive reports whether the host should emit a tone.
func (m *Machine) SoundActive() bool {
	return m.soundTimer > 0
}
