// Package loader handles ROM file loading operations.
package loader

import (
	"fmt"
	"os"

	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a CHIP-8 ROM file and returns the raw program image. CHIP-8
// ROM files have no header, the whole file is program data that gets copied
// to the entry point. Read failures are returned wrapped, the machine is
// never started from an unreadable ROM.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	cart, err := cartridge.LoadBuffer(file)
	if err != nil {
		return nil, fmt.Errorf("reading ROM file %s: %w", path, err)
	}

	if len(cart.PRG) == 0 {
		return nil, fmt.Errorf("ROM file %s is empty", path)
	}

	return cart.PRG, nil
}
