package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Pixel reports whether the display pixel at the given coordinates is set.
// Coordinates outside the display read as unset.
func (m *Machine) Pixel(x, y int) bool {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return false
	}
	return m.display[y*DisplayWidth+x]
}

// DisplayBuffer returns a copy of the display contents, one bool per pixel in
// row-major order. The copy never aliases machine state.
func (m *Machine) DisplayBuffer() []bool {
	buf := make([]bool, len(m.display))
	copy(buf, m.display[:])
	return buf
}

// clearDisplay turns every pixel off.
func (m *Machine) clearDisplay() {
	m.display = [DisplayWidth * DisplayHeight]bool{}
}

// drawSprite blits an 8 pixel wide, height rows tall sprite read from memory
// at the index register onto the display at the coordinates in Vx/Vy.
//
// The starting position wraps: an X coordinate of 68 is the same as an X of 4
// on the 64 pixel wide display. The sprite body does not wrap: rows and
// columns falling off the bottom or right edge are clipped, not drawn on the
// opposite side. Each sprite byte holds 8 horizontally packed pixels, most
// significant bit first, and is XORed onto the display. VF is set to 1 if
// the draw turned any previously set pixel off, the collision flag ROMs use
// for hit testing, and to 0 otherwise.
func (m *Machine) drawSprite(x, y, height byte) {
	xStart := int(m.v[x]) % DisplayWidth
	yStart := int(m.v[y]) % DisplayHeight

	xEnd := min(xStart+8, DisplayWidth)
	yEnd := min(yStart+int(height), DisplayHeight)

	m.v[0xF] = 0

	for row := yStart; row < yEnd; row++ {
		spriteByte := m.ram[(int(m.i)+row-yStart)%MemorySize]

		for col := xStart; col < xEnd; col++ {
			spriteBit := spriteByte&(0x80>>(col-xStart)) != 0
			if !spriteBit {
				continue
			}

			pixel := &m.display[row*DisplayWidth+col]
			if *pixel {
				m.v[0xF] = 1
			}
			*pixel = !*pixel
		}
	}
}
