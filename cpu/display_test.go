package cpu

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
)

// onPixels returns the coordinates of every lit pixel, row major.
func onPixels(disp *Display) (on [][2]int) {
	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			if disp.Pixels[y][x] {
				on = append(on, [2]int{x, y})
			}
		}
	}
	return
}

func TestDisplay_Clear(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Blit(10, 10, []byte{0xff, 0xff})
	disp.ClearDirty()

	disp.Clear()
	assert.True(disp.Dirty)
	for y := range DISPLAY_HEIGHT {
		for x := range DISPLAY_WIDTH {
			assert.False(disp.Pixel(x, y))
		}
	}
}

func TestDisplay_Blit(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	collision := disp.Blit(1, 2, []byte{0b1010_0000, 0b0000_0001})
	assert.False(collision)
	assert.True(disp.Dirty)

	want := [][2]int{{1, 2}, {3, 2}, {8, 3}}
	if diff := cmp.Diff(want, onPixels(disp)); diff != "" {
		t.Errorf("pixels: (-want, +got)\n%s", diff)
	}
}

func TestDisplay_BlitWrap(t *testing.T) {
	table := [](struct {
		name   string
		x, y   int
		sprite []byte
		want   [][2]int
	}){
		{"right edge", 62, 0, []byte{0xf0}, [][2]int{{0, 0}, {1, 0}, {62, 0}, {63, 0}}},
		{"bottom edge", 5, 31, []byte{0x80, 0x80, 0x80}, [][2]int{{5, 0}, {5, 1}, {5, 31}}},
		{"corner", 63, 31, []byte{0xc0, 0xc0}, [][2]int{{0, 0}, {63, 0}, {0, 31}, {63, 31}}},
		{"origin wraps", 64 + 3, 32 + 4, []byte{0x80}, [][2]int{{3, 4}}},
		{"byte origin", 200, 100, []byte{0x80}, [][2]int{{200 % 64, 100 % 32}}},
	}

	for _, entry := range table {
		t.Run(entry.name, func(t *testing.T) {
			disp := &Display{}
			assert.False(t, disp.Blit(entry.x, entry.y, entry.sprite))
			if diff := cmp.Diff(entry.want, onPixels(disp)); diff != "" {
				t.Errorf("pixels: (-want, +got)\n%s", diff)
			}
		})
	}
}

func TestDisplay_RightEdgeStaysOnRow(t *testing.T) {
	assert := assert.New(t)

	// A flat wrap over the whole framebuffer would light (0, 11), not (0, 10).
	disp := &Display{}
	disp.Blit(63, 10, []byte{0xc0})
	assert.True(disp.Pixel(63, 10))
	assert.True(disp.Pixel(0, 10))
	assert.False(disp.Pixel(0, 11))
}

func TestDisplay_BlitTwice(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Blit(0, 0, []byte{0x81})
	before := disp.Pixels

	sprite := []byte{0xf0, 0x90, 0xf0}
	assert.False(disp.Blit(60, 30, sprite))
	assert.True(disp.Blit(60, 30, sprite))
	assert.Equal(before, disp.Pixels)
}

func TestDisplay_BlitEmpty(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	assert.False(disp.Blit(3, 3, nil))
	assert.False(disp.Dirty)
	assert.Nil(onPixels(disp))
}

func TestDisplay_String(t *testing.T) {
	assert := assert.New(t)

	disp := &Display{}
	disp.Blit(0, 0, []byte{0x80})
	text := disp.String()

	assert.Equal((DISPLAY_WIDTH+1)*DISPLAY_HEIGHT, len(text))
	assert.Equal(byte('#'), text[0])
	assert.Equal(byte('.'), text[1])
	assert.Equal(byte('\n'), text[DISPLAY_WIDTH])
}
