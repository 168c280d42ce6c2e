// Package term hosts a CHIP-8 machine on an ANSI terminal.
//
// The framebuffer is drawn with half-block characters, two pixel rows per
// text line. Terminals report key presses but not releases, so a key is
// held for HoldFrames frames after the last byte seen for it; keyboard
// auto-repeat keeps a held key down.
package term

import (
	"errors"
	"io"
	"log"
	"os"
	"strings"

	"github.com/ezrec/chip8/cpu"
)

const (
	HOLD_FRAMES = 6 // Default frames a key stays down after it is typed.
)

// Keymap maps the left hand block of a QWERTY keyboard onto the keypad:
//
//	1 2 3 4      1 2 3 C
//	q w e r  ->  4 5 6 D
//	a s d f      7 8 9 E
//	z x c v      A 0 B F
var Keymap = map[byte]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xc,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xd,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xe,
	'z': 0xa, 'x': 0x0, 'c': 0xb, 'v': 0xf,
}

// Bytes that stop the machine: escape and ^C.
const (
	keyEscape    = 0x1b
	keyInterrupt = 0x03
)

var halfBlock = [4]string{" ", "▀", "▄", "█"}

// Terminal is an emulator.Host on a character terminal.
type Terminal struct {
	Verbose    bool
	In         io.Reader // Key source; reads must not block.
	Out        io.Writer // ANSI output.
	HoldFrames int       // Frames a typed key stays down.

	hold    [cpu.KEY_COUNT]int
	buf     [64]byte
	started bool
	restore func() error
}

// New creates a terminal host on an already configured input.
func New(in io.Reader, out io.Writer) *Terminal {
	return &Terminal{
		In:         in,
		Out:        out,
		HoldFrames: HOLD_FRAMES,
	}
}

// Open creates a terminal host, and switches the input terminal to raw
// mode until Close.
func Open(in *os.File, out io.Writer) (tm *Terminal, err error) {
	restore, err := makeRaw(int(in.Fd()))
	if err != nil {
		return
	}

	tm = New(in, out)
	tm.restore = restore

	return
}

// Close restores the cursor and the terminal mode.
func (tm *Terminal) Close() (err error) {
	if tm.started {
		_, err = io.WriteString(tm.Out, "\x1b[?25h\r\n")
		tm.started = false
	}

	if tm.restore != nil {
		err = errors.Join(err, tm.restore())
		tm.restore = nil
	}

	return
}

// Input releases keys whose hold has expired, then presses every mapped
// key typed since the last call. Escape or ^C returns ErrQuit.
func (tm *Terminal) Input(kp *cpu.Keypad) (err error) {
	for key, frames := range tm.hold {
		if frames == 0 {
			continue
		}
		tm.hold[key]--
		if tm.hold[key] == 0 {
			err = kp.Release(key)
			if err != nil {
				return
			}
		}
	}

	n, err := tm.In.Read(tm.buf[:])
	if errors.Is(err, io.EOF) {
		err = nil
	}
	if err != nil {
		return
	}

	for _, ch := range tm.buf[:n] {
		if ch == keyEscape || ch == keyInterrupt {
			err = ErrQuit
			return
		}

		if ch >= 'A' && ch <= 'Z' {
			ch += 'a' - 'A'
		}

		key, ok := Keymap[ch]
		if !ok {
			continue
		}

		if tm.Verbose && !kp.Down(key) {
			log.Printf("term: key %X down", key)
		}

		err = kp.Press(key)
		if err != nil {
			return
		}
		tm.hold[key] = max(tm.HoldFrames, 1)
	}

	return
}

// Render draws the framebuffer at the top left of the screen.
func (tm *Terminal) Render(disp *cpu.Display) (err error) {
	var sb strings.Builder

	if !tm.started {
		sb.WriteString("\x1b[2J\x1b[?25l")
		tm.started = true
	}
	sb.WriteString("\x1b[H")

	for y := 0; y < cpu.DISPLAY_HEIGHT; y += 2 {
		for x := range cpu.DISPLAY_WIDTH {
			cell := 0
			if disp.Pixels[y][x] {
				cell |= 1
			}
			if disp.Pixels[y+1][x] {
				cell |= 2
			}
			sb.WriteString(halfBlock[cell])
		}
		sb.WriteString("\r\n")
	}

	_, err = io.WriteString(tm.Out, sb.String())

	return
}

// Sound rings the terminal bell when the buzzer turns on.
func (tm *Terminal) Sound(on bool) (err error) {
	if on {
		_, err = io.WriteString(tm.Out, "\a")
	}

	return
}
