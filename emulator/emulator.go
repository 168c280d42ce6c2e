// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"io"
	"iter"
	"log"
	"maps"
	"time"

	"github.com/ezrec/chip8/cpu"
	"github.com/ezrec/chip8/internal"
)

const (
	CYCLES_PER_FRAME = 8  // Default instructions executed per frame.
	FRAME_RATE       = 60 // Default frames per second, and timer rate.
)

var _emulator_defines = map[string]int{
	"CYCLES_PER_FRAME": CYCLES_PER_FRAME,
	"FRAME_RATE":       FRAME_RATE,
}

// Host is the outside world of the machine: the keypad source, the
// framebuffer sink and the buzzer.
type Host interface {
	// Input updates the keypad latch. Returning an error stops Run.
	Input(kp *cpu.Keypad) error
	// Render presents the framebuffer.
	Render(disp *cpu.Display) error
	// Sound turns the buzzer on or off.
	Sound(on bool) error
}

// Emulator state. CPU + program image + frame pacing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Listing of the program, if it was assembled.
	Image    []byte       // Program image loaded on Reset.

	CyclesPerFrame int // Instructions per frame.
	FrameRate      int // Frames per second.

	Frames int // Frames since reset.
}

// NewEmulator creates a new emulator.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:            cpu.NewCpu(),
		Program:        &cpu.Program{},
		CyclesPerFrame: CYCLES_PER_FRAME,
		FrameRate:      FRAME_RATE,
	}

	return
}

// Defines returns an iterator over all of the assembler defines.
func (emu *Emulator) Defines() iter.Seq2[string, int] {
	return internal.IterSeq2Concat(maps.All(_emulator_defines), cpu.Defines())
}

// Assemble parses assembler source into the program listing and image.
func (emu *Emulator) Assemble(source io.Reader) (err error) {
	asm := &cpu.Assembler{Verbose: emu.Verbose}
	for equ, value := range emu.Defines() {
		asm.Predefine(equ, value)
	}

	prog, err := asm.Parse(source)
	if err != nil {
		return
	}

	emu.Program = prog
	emu.Image = prog.Binary()

	return
}

// LoadFrom reads a binary program image. The listing is cleared.
func (emu *Emulator) LoadFrom(r io.Reader) (err error) {
	image, err := io.ReadAll(io.LimitReader(r, cpu.PROGRAM_LIMIT+1))
	if err != nil {
		return
	}

	if len(image) > cpu.PROGRAM_LIMIT {
		err = cpu.ErrProgramSize
		return
	}

	emu.Program = &cpu.Program{}
	emu.Image = image

	return
}

// Reset the machine, and load the program image.
func (emu *Emulator) Reset() (err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Reset()
	emu.Frames = 0

	return emu.Cpu.Load(emu.Image)
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Code returns the instruction word at the program counter, from the
// listing if there is one.
func (emu *Emulator) Code() cpu.Code {
	for addr, code := range emu.Program.Codes() {
		if addr == emu.Cpu.Pc {
			return code
		}
	}

	data, err := emu.Cpu.Memory.Slice(int(emu.Cpu.Pc), 2)
	if err != nil {
		return 0
	}

	return cpu.Code(uint16(data[0])<<8 | uint16(data[1]))
}

// LineNo returns the source line of the instruction at the program counter,
// or 0 if the program was not assembled.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Cpu.Pc)
}

// Tick performs a single instruction of the emulator.
func (emu *Emulator) Tick() (awaiting bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	pc := emu.Cpu.Pc
	lineno := emu.LineNo()
	if emu.Verbose {
		log.Printf("emulator: 0x%03x: %v", pc, emu.Code())
	}
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, LineNo: lineno, Err: err}
		}
	}()

	return emu.Cpu.Tick()
}

// Frame runs one frame: up to CyclesPerFrame instructions, stopping early
// while a key is awaited, then one tick of the timers.
func (emu *Emulator) Frame() (err error) {
	for range emu.CyclesPerFrame {
		var awaiting bool
		awaiting, err = emu.Tick()
		if err != nil {
			return
		}
		if awaiting {
			break
		}
	}

	emu.Cpu.TickTimers()
	emu.Frames++

	return
}

// Run executes frames at FrameRate, exchanging state with the host once
// per frame, until the context is done or an error occurs.
func (emu *Emulator) Run(ctx context.Context, host Host) (err error) {
	rate := emu.FrameRate
	if rate <= 0 {
		rate = FRAME_RATE
	}

	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	if emu.Verbose {
		log.Printf("emulator: %v cycles/frame at %v Hz", emu.CyclesPerFrame, rate)
	}

	beeping := false
	for {
		select {
		case <-ctx.Done():
			err = ctx.Err()
			return
		case <-ticker.C:
		}

		err = host.Input(&emu.Cpu.Keypad)
		if err != nil {
			return
		}

		err = emu.Frame()
		if err != nil {
			return
		}

		if emu.Cpu.Display.Dirty {
			err = host.Render(&emu.Cpu.Display)
			if err != nil {
				return
			}
			emu.Cpu.Display.ClearDirty()
		}

		if on := emu.Cpu.Timers.Beeping(); on != beeping {
			beeping = on
			err = host.Sound(on)
			if err != nil {
				return
			}
		}
	}
}
