package cpu

import (
	"fmt"
	"io"
	"log"
	"math/rand/v2"
)

const (
	REG_COUNT = 16   // v0 through vf
	REG_FLAG  = 0x0f // vf, the carry, borrow and collision flag
)

// Cpu is the simulation context of one CHIP-8 machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory  Memory          // Memory image.
	V       [REG_COUNT]byte // Register bank.
	I       uint16          // Index register.
	Pc      uint16          // Program counter.
	Stack   Stack           // Call stack.
	Display Display         // Framebuffer.
	Timers  Timers          // Delay and sound timers.
	Keypad  Keypad          // Input latch, written by the host.

	Rand *rand.Rand // Source for the rnd instruction.

	Ticks int // Instructions completed since reset. Key-wait polls do not count.

	awaitKey bool // Set while a wait-for-key instruction is pending.
}

// NewCpu creates a reset CPU with a randomly seeded rnd source.
func NewCpu() (cpu *Cpu) {
	cpu = &Cpu{
		Rand: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64())),
	}

	cpu.Reset()

	return
}

// Reset the CPU state.
// - Zeros memory and installs the font.
// - Clears the registers, stack, display, timers and keypad.
// - Sets the program counter to the program load address.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Memory.Reset()
	clear(cpu.V[:])
	cpu.I = 0
	cpu.Pc = PROGRAM_START
	cpu.Stack.Reset()
	cpu.Display.Clear()
	cpu.Timers = Timers{}
	cpu.Keypad.Reset()
	cpu.Ticks = 0
	cpu.awaitKey = false
}

// Load copies a program image into memory at the program load address.
// Memory below the load address is never touched.
func (cpu *Cpu) Load(image []byte) (err error) {
	if len(image) > PROGRAM_LIMIT {
		err = fmt.Errorf("%w: %v > %v", ErrProgramSize, len(image), PROGRAM_LIMIT)
		return
	}

	copy(cpu.Memory[PROGRAM_START:], image)

	if cpu.Verbose {
		log.Printf("cpu: loaded %v bytes at 0x%03x", len(image), PROGRAM_START)
	}

	return
}

// LoadFrom reads a whole program image and loads it.
func (cpu *Cpu) LoadFrom(r io.Reader) (err error) {
	image, err := io.ReadAll(io.LimitReader(r, PROGRAM_LIMIT+1))
	if err != nil {
		return
	}

	return cpu.Load(image)
}

// Awaiting returns true while a wait-for-key instruction is pending.
func (cpu *Cpu) Awaiting() bool {
	return cpu.awaitKey
}

// TickTimers decrements the delay and sound timers.
func (cpu *Cpu) TickTimers() {
	cpu.Timers.Tick()
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("   pc: %03X\n", cpu.Pc)
	text += fmt.Sprintf("    i: %03X\n", cpu.I)
	for n, val := range cpu.V {
		text += fmt.Sprintf("   v%X: %02X\n", n, val)
	}
	if val, ok := cpu.Stack.Peek(); ok {
		text += fmt.Sprintf("stack: %03X (%d)\n", val, cpu.Stack.Sp)
	} else {
		text += "stack: ---\n"
	}
	text += fmt.Sprintf("   dt: %02X\n", cpu.Timers.Delay)
	text += fmt.Sprintf("   st: %02X\n", cpu.Timers.Sound)

	return
}

// FetchCode reads the instruction word at the program counter, and
// advances the program counter past it.
func (cpu *Cpu) FetchCode() (code Code, err error) {
	data, err := cpu.Memory.Slice(int(cpu.Pc), 2)
	if err != nil {
		return
	}

	code = Code(uint16(data[0])<<8 | uint16(data[1]))
	cpu.Pc += 2

	return
}

// Tick executes a single instruction cycle.
//
// While a wait-for-key instruction has not seen a key press, Tick returns
// awaiting as true and leaves the program counter on that instruction, so
// the next Tick retries it.
func (cpu *Cpu) Tick() (awaiting bool, err error) {
	code, err := cpu.FetchCode()
	if err != nil {
		return
	}

	err = cpu.Execute(code)
	if err != nil {
		return
	}

	awaiting = cpu.awaitKey
	if !awaiting {
		cpu.Ticks++
	}

	return
}

// Execute executes a single decoded instruction. The program counter must
// already point past the instruction.
//
// A failing instruction leaves registers, memory and display untouched,
// and the error matches ErrOpcode.
func (cpu *Cpu) Execute(code Code) (err error) {
	at := cpu.Pc - 2

	ins := Decode(code)
	if ins == nil {
		err = ErrOpcode{Word: code, Pc: at}
		return
	}

	err = ins.exec(cpu, code)
	if err != nil {
		err = opcodeError(code, at, err)
	}

	return
}
