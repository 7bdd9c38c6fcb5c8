package chip8

// RunState describes whether the machine executes instructions.
type RunState uint8

// Run states of the machine. Halted is terminal: once entered, no further
// instruction cycles or timer ticks occur.
const (
	Running RunState = iota
	Paused
	Halted
)

// String implements fmt.Stringer.
func (s RunState) String() string {
	switch s {
	case Running:
		return "running"
	case Paused:
		return "paused"
	case Halted:
		return "halted"
	default:
		return "unknown"
	}
}

// State returns the current run state.
func (m *Machine) State() RunState {
	return m.state
}

// Pause suspends instruction execution. Pausing freezes simulated time, the
// host skips both the instruction batch and the timer tick while paused.
// Pausing a halted machine has no effect.
func (m *Machine) Pause() {
	if m.state == Running {
		m.state = Paused
	}
}

// Resume continues instruction execution after a pause. Resuming a halted
// machine has no effect.
func (m *Machine) Resume() {
	if m.state == Paused {
		m.state = Running
	}
}

// Halt stops the machine permanently. Only Reset or a new Load makes it
// runnable again.
func (m *Machine) Halt() {
	m.state = Halted
}
