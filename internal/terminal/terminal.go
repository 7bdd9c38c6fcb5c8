// Package terminal implements the host surfaces on an ANSI terminal: a
// renderer that draws the display buffer and a raw mode keyboard input
// source for the hexadecimal keypad.
package terminal

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"golang.org/x/sys/unix"
)

// keyDecayFrames is how many frames a key stays pressed after its byte
// arrived. Terminals deliver no key release events, so presses decay.
const keyDecayFrames = 6

// control bytes handled by the input poller.
const (
	keyEscape = 0x1B
	keySpace  = ' '
)

// keypadMap maps keyboard characters to the 4x4 hexadecimal keypad:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keypadMap = map[byte]byte{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

// Terminal renders the display to an ANSI terminal and polls raw keyboard
// input. It implements the emulator Renderer and Input interfaces.
type Terminal struct {
	in  io.Reader
	out io.Writer

	restoreState *unix.Termios
	keyFrames    [chip8.KeyCount]int
}

// Open puts the controlling terminal into raw non-blocking mode and prepares
// the screen. Close has to be called to restore the terminal state.
func Open() (*Terminal, error) {
	t := &Terminal{
		in:  os.Stdin,
		out: os.Stdout,
	}

	state, err := unix.IoctlGetTermios(int(os.Stdin.Fd()), unix.TCGETS)
	if err != nil {
		return nil, fmt.Errorf("reading terminal state: %w", err)
	}
	t.restoreState = state

	raw := *state
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.INLCR
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8

	// non-blocking reads: polling must never stall the frame loop
	raw.Cc[unix.VMIN] = 0
	raw.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TCSETS, &raw); err != nil {
		return nil, fmt.Errorf("entering raw terminal mode: %w", err)
	}

	// hide the cursor and clear the screen
	_, _ = fmt.Fprint(t.out, "\x1b[?25l\x1b[2J")
	return t, nil
}

// Close restores the terminal state.
func (t *Terminal) Close() error {
	_, _ = fmt.Fprint(t.out, "\x1b[?25h\x1b[2J\x1b[H")

	if t.restoreState == nil {
		return nil
	}
	if err := unix.IoctlSetTermios(int(os.Stdin.Fd()), unix.TCSETS, t.restoreState); err != nil {
		return fmt.Errorf("restoring terminal state: %w", err)
	}
	return nil
}

// Poll reads pending keyboard bytes and applies them to the machine. Escape
// requests to quit, space toggles pause, keypad characters press their
// symbol for a few frames.
func (t *Terminal) Poll(m *chip8.Machine) (bool, error) {
	t.decayKeys(m)

	var buf [32]byte
	n, err := t.in.Read(buf[:])
	if err != nil && !errors.Is(err, io.EOF) {
		return false, fmt.Errorf("reading keyboard input: %w", err)
	}

	for _, b := range buf[:n] {
		if quit := t.handleByte(m, b); quit {
			return true, nil
		}
	}
	return false, nil
}

// handleByte applies one input byte to the machine and reports whether it
// was a quit request.
func (t *Terminal) handleByte(m *chip8.Machine, b byte) bool {
	switch b {
	case keyEscape:
		return true

	case keySpace:
		if m.State() == chip8.Paused {
			m.Resume()
		} else {
			m.Pause()
		}
		return false
	}

	if key, ok := keypadMap[lower(b)]; ok {
		t.keyFrames[key] = keyDecayFrames
		m.SetKey(key, true)
	}
	return false
}

// decayKeys counts pressed keys down one frame and releases expired ones.
func (t *Terminal) decayKeys(m *chip8.Machine) {
	for key := range t.keyFrames {
		if t.keyFrames[key] == 0 {
			continue
		}
		t.keyFrames[key]--
		if t.keyFrames[key] == 0 {
			m.SetKey(byte(key), false)
		}
	}
}

// Present draws the display buffer to the terminal, two characters per
// CHIP-8 pixel, and rings the terminal bell while the sound timer runs.
func (t *Terminal) Present(m *chip8.Machine) error {
	var sb strings.Builder
	sb.Grow(chip8.DisplayWidth*chip8.DisplayHeight*2 + chip8.DisplayHeight*8)

	sb.WriteString("\x1b[H")
	for y := 0; y < chip8.DisplayHeight; y++ {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if m.Pixel(x, y) {
				sb.WriteString("██")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteString("\x1b[K\r\n")
	}

	if m.State() == chip8.Paused {
		sb.WriteString("-- paused --")
	}
	sb.WriteString("\x1b[K")

	if m.SoundActive() {
		sb.WriteByte('\a')
	}

	if _, err := io.WriteString(t.out, sb.String()); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}

// lower converts an ASCII upper case letter to lower case.
func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + 'a' - 'A'
	}
	return b
}
