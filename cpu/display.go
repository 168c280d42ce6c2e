package cpu

import (
	"strings"
)

const (
	DISPLAY_WIDTH  = 64
	DISPLAY_HEIGHT = 32
	SPRITE_WIDTH   = 8
)

// Display is the monochrome framebuffer.
//
// Dirty is set whenever a clear or a draw changed the framebuffer. The host
// calls ClearDirty after presenting it.
type Display struct {
	Pixels [DISPLAY_HEIGHT][DISPLAY_WIDTH]bool
	Dirty  bool
}

// Clear turns every pixel off.
func (disp *Display) Clear() {
	for y := range disp.Pixels {
		clear(disp.Pixels[y][:])
	}
	disp.Dirty = true
}

// ClearDirty acknowledges that the framebuffer was presented.
func (disp *Display) ClearDirty() {
	disp.Dirty = false
}

// Pixel returns the state of the pixel at (x, y). Coordinates wrap.
func (disp *Display) Pixel(x, y int) bool {
	return disp.Pixels[wrap(y, DISPLAY_HEIGHT)][wrap(x, DISPLAY_WIDTH)]
}

// Blit XORs a sprite onto the framebuffer with its top left corner at
// (x, y). Each byte of sprite is a row, most significant bit leftmost.
// Rows and columns wrap independently at the edges.
//
// Returns true if any pixel that was on got turned off.
func (disp *Display) Blit(x, y int, sprite []byte) (collision bool) {
	x = wrap(x, DISPLAY_WIDTH)
	y = wrap(y, DISPLAY_HEIGHT)

	for row, bits := range sprite {
		py := (y + row) % DISPLAY_HEIGHT
		for col := range SPRITE_WIDTH {
			if bits&(0x80>>col) == 0 {
				continue
			}
			px := (x + col) % DISPLAY_WIDTH
			if disp.Pixels[py][px] {
				collision = true
			}
			disp.Pixels[py][px] = !disp.Pixels[py][px]
			disp.Dirty = true
		}
	}

	return
}

// String renders the framebuffer, one line per row, '#' for on.
func (disp *Display) String() string {
	var sb strings.Builder
	sb.Grow((DISPLAY_WIDTH + 1) * DISPLAY_HEIGHT)

	for y := range disp.Pixels {
		for _, on := range disp.Pixels[y] {
			if on {
				sb.WriteByte('#')
			} else {
				sb.WriteByte('.')
			}
		}
		sb.WriteByte('\n')
	}

	return sb.String()
}

// wrap reduces v into [0, size).
func wrap(v, size int) int {
	v %= size
	if v < 0 {
		v += size
	}
	return v
}
