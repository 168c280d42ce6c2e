package cpu

import (
	"errors"
	"log"
)

// instructionSet is the dispatch table. Decode selects the family by the
// top nibble, then the entry whose mask and value match the word.
var instructionSet = []Instruction{
	{"cls", nil, 0xffff, 0x00e0, opCls},
	{"ret", nil, 0xffff, 0x00ee, opRet},
	{"jp", []ArgKind{ARG_ADDR}, 0xf000, 0x1000, opJp},
	{"call", []ArgKind{ARG_ADDR}, 0xf000, 0x2000, opCall},
	{"se", []ArgKind{ARG_VX, ARG_BYTE}, 0xf000, 0x3000, opSeByte},
	{"sne", []ArgKind{ARG_VX, ARG_BYTE}, 0xf000, 0x4000, opSneByte},
	{"se", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x5000, opSeReg},
	{"ld", []ArgKind{ARG_VX, ARG_BYTE}, 0xf000, 0x6000, opLdByte},
	{"add", []ArgKind{ARG_VX, ARG_BYTE}, 0xf000, 0x7000, opAddByte},
	{"ld", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8000, opLdReg},
	{"or", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8001, opOr},
	{"and", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8002, opAnd},
	{"xor", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8003, opXor},
	{"add", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8004, opAddReg},
	{"sub", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8005, opSub},
	{"shr", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8006, opShr},
	{"subn", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x8007, opSubn},
	{"shl", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x800e, opShl},
	{"sne", []ArgKind{ARG_VX, ARG_VY}, 0xf00f, 0x9000, opSneReg},
	{"ld", []ArgKind{ARG_I, ARG_ADDR}, 0xf000, 0xa000, opLdI},
	{"jp", []ArgKind{ARG_V0, ARG_ADDR}, 0xf000, 0xb000, opJpV0},
	{"rnd", []ArgKind{ARG_VX, ARG_BYTE}, 0xf000, 0xc000, opRnd},
	{"drw", []ArgKind{ARG_VX, ARG_VY, ARG_NIBBLE}, 0xf000, 0xd000, opDrw},
	{"skp", []ArgKind{ARG_VX}, 0xf0ff, 0xe09e, opSkp},
	{"sknp", []ArgKind{ARG_VX}, 0xf0ff, 0xe0a1, opSknp},
	{"ld", []ArgKind{ARG_VX, ARG_DT}, 0xf0ff, 0xf007, opLdVxDt},
	{"ld", []ArgKind{ARG_VX, ARG_K}, 0xf0ff, 0xf00a, opLdVxK},
	{"ld", []ArgKind{ARG_DT, ARG_VX}, 0xf0ff, 0xf015, opLdDtVx},
	{"ld", []ArgKind{ARG_ST, ARG_VX}, 0xf0ff, 0xf018, opLdStVx},
	{"add", []ArgKind{ARG_I, ARG_VX}, 0xf0ff, 0xf01e, opAddI},
	{"ld", []ArgKind{ARG_F, ARG_VX}, 0xf0ff, 0xf029, opLdF},
	{"ld", []ArgKind{ARG_B, ARG_VX}, 0xf0ff, 0xf033, opLdB},
	{"ld", []ArgKind{ARG_I_IND, ARG_VX}, 0xf0ff, 0xf055, opStore},
	{"ld", []ArgKind{ARG_VX, ARG_I_IND}, 0xf0ff, 0xf065, opLoad},
}

// opcodeError tags an execution failure with the failing word.
func opcodeError(code Code, at uint16, err error) error {
	return errors.Join(ErrOpcode{Word: code, Pc: at}, err)
}

// flag converts a condition to the value stored in vf.
func flag(cond bool) byte {
	if cond {
		return 1
	}
	return 0
}

func (cpu *Cpu) skipIf(cond bool) {
	if cond {
		cpu.Pc += 2
	}
}

// 00E0 - clear the display.
func opCls(cpu *Cpu, code Code) error {
	cpu.Display.Clear()
	return nil
}

// 00EE - return from subroutine.
func opRet(cpu *Cpu, code Code) error {
	pc, ok := cpu.Stack.Pop()
	if !ok {
		return ErrStackEmpty
	}
	cpu.Pc = pc
	return nil
}

// 1nnn - jump.
func opJp(cpu *Cpu, code Code) error {
	cpu.Pc = code.Nnn()
	return nil
}

// 2nnn - call subroutine.
func opCall(cpu *Cpu, code Code) error {
	if !cpu.Stack.Push(cpu.Pc) {
		return ErrStackFull
	}
	cpu.Pc = code.Nnn()
	return nil
}

// 3xkk
func opSeByte(cpu *Cpu, code Code) error {
	cpu.skipIf(cpu.V[code.X()] == code.Kk())
	return nil
}

// 4xkk
func opSneByte(cpu *Cpu, code Code) error {
	cpu.skipIf(cpu.V[code.X()] != code.Kk())
	return nil
}

// 5xy0
func opSeReg(cpu *Cpu, code Code) error {
	cpu.skipIf(cpu.V[code.X()] == cpu.V[code.Y()])
	return nil
}

// 6xkk
func opLdByte(cpu *Cpu, code Code) error {
	cpu.V[code.X()] = code.Kk()
	return nil
}

// 7xkk - add immediate. vf is not affected.
func opAddByte(cpu *Cpu, code Code) error {
	cpu.V[code.X()] += code.Kk()
	return nil
}

// 8xy0
func opLdReg(cpu *Cpu, code Code) error {
	cpu.V[code.X()] = cpu.V[code.Y()]
	return nil
}

// 8xy1
func opOr(cpu *Cpu, code Code) error {
	cpu.V[code.X()] |= cpu.V[code.Y()]
	return nil
}

// 8xy2
func opAnd(cpu *Cpu, code Code) error {
	cpu.V[code.X()] &= cpu.V[code.Y()]
	return nil
}

// 8xy3
func opXor(cpu *Cpu, code Code) error {
	cpu.V[code.X()] ^= cpu.V[code.Y()]
	return nil
}

// The flag is written after the result for all of the arithmetic and shift
// operations below, so vf always ends up holding the flag.

// 8xy4 - vf = carry.
func opAddReg(cpu *Cpu, code Code) error {
	sum := uint16(cpu.V[code.X()]) + uint16(cpu.V[code.Y()])
	cpu.V[code.X()] = byte(sum)
	cpu.V[REG_FLAG] = flag(sum > 0xff)
	return nil
}

// 8xy5 - vf = not borrow.
func opSub(cpu *Cpu, code Code) error {
	a, b := cpu.V[code.X()], cpu.V[code.Y()]
	cpu.V[code.X()] = a - b
	cpu.V[REG_FLAG] = flag(a > b)
	return nil
}

// 8xy6 - vf = bit shifted out.
func opShr(cpu *Cpu, code Code) error {
	a := cpu.V[code.X()]
	cpu.V[code.X()] = a >> 1
	cpu.V[REG_FLAG] = a & 0x01
	return nil
}

// 8xy7 - vx = vy - vx, vf = not borrow.
func opSubn(cpu *Cpu, code Code) error {
	a, b := cpu.V[code.X()], cpu.V[code.Y()]
	cpu.V[code.X()] = b - a
	cpu.V[REG_FLAG] = flag(b > a)
	return nil
}

// 8xyE - vf = bit shifted out.
func opShl(cpu *Cpu, code Code) error {
	a := cpu.V[code.X()]
	cpu.V[code.X()] = a << 1
	cpu.V[REG_FLAG] = a >> 7
	return nil
}

// 9xy0
func opSneReg(cpu *Cpu, code Code) error {
	cpu.skipIf(cpu.V[code.X()] != cpu.V[code.Y()])
	return nil
}

// Annn
func opLdI(cpu *Cpu, code Code) error {
	cpu.I = code.Nnn()
	return nil
}

// Bnnn - a target past the end of memory faults on the next fetch.
func opJpV0(cpu *Cpu, code Code) error {
	cpu.Pc = code.Nnn() + uint16(cpu.V[0])
	return nil
}

// Cxkk
func opRnd(cpu *Cpu, code Code) error {
	cpu.V[code.X()] = byte(cpu.Rand.Uint32()) & code.Kk()
	return nil
}

// Dxyn - draw n rows of sprite data from [i] at (vx, vy), vf = collision.
// With n of 0 nothing is read or drawn.
func opDrw(cpu *Cpu, code Code) error {
	if code.N() == 0 {
		cpu.V[REG_FLAG] = 0
		return nil
	}

	sprite, err := cpu.Memory.Slice(int(cpu.I), int(code.N()))
	if err != nil {
		return err
	}

	x, y := int(cpu.V[code.X()]), int(cpu.V[code.Y()])
	cpu.V[REG_FLAG] = flag(cpu.Display.Blit(x, y, sprite))
	return nil
}

// key validates vx as a keypad index.
func (cpu *Cpu) key(x uint8) (key int, err error) {
	key = int(cpu.V[x])
	if key >= KEY_COUNT {
		err = ErrKeyInvalid
	}
	return
}

// Ex9E
func opSkp(cpu *Cpu, code Code) error {
	key, err := cpu.key(code.X())
	if err != nil {
		return err
	}
	cpu.skipIf(cpu.Keypad.Down(key))
	return nil
}

// ExA1
func opSknp(cpu *Cpu, code Code) error {
	key, err := cpu.key(code.X())
	if err != nil {
		return err
	}
	cpu.skipIf(!cpu.Keypad.Down(key))
	return nil
}

// Fx07
func opLdVxDt(cpu *Cpu, code Code) error {
	cpu.V[code.X()] = cpu.Timers.Delay
	return nil
}

// Fx0A - wait for a key press, store the key in vx.
//
// Only presses made after the wait began count. Until one arrives, the
// program counter is put back on this instruction.
func opLdVxK(cpu *Cpu, code Code) error {
	if !cpu.awaitKey {
		cpu.Keypad.clearPresses()
		cpu.awaitKey = true
		if cpu.Verbose {
			log.Printf("cpu: 0x%03x: awaiting key for v%x", cpu.Pc-2, code.X())
		}
	}

	key, ok := cpu.Keypad.takePress()
	if !ok {
		cpu.Pc -= 2
		return nil
	}

	cpu.awaitKey = false
	cpu.V[code.X()] = key
	return nil
}

// Fx15
func opLdDtVx(cpu *Cpu, code Code) error {
	cpu.Timers.Delay = cpu.V[code.X()]
	return nil
}

// Fx18
func opLdStVx(cpu *Cpu, code Code) error {
	cpu.Timers.Sound = cpu.V[code.X()]
	return nil
}

// Fx1E - vf = 1 if i leaves the address space.
func opAddI(cpu *Cpu, code Code) error {
	sum := uint32(cpu.I) + uint32(cpu.V[code.X()])
	cpu.I = uint16(sum)
	cpu.V[REG_FLAG] = flag(sum > MEMORY_SIZE-1)
	return nil
}

// Fx29 - i = address of the font glyph for vx.
func opLdF(cpu *Cpu, code Code) error {
	cpu.I = FONT_START + uint16(cpu.V[code.X()])*FONT_GLYPH_SIZE
	return nil
}

// Fx33 - decimal digits of vx to [i], [i+1], [i+2].
func opLdB(cpu *Cpu, code Code) error {
	digits, err := cpu.Memory.Slice(int(cpu.I), 3)
	if err != nil {
		return err
	}

	vx := cpu.V[code.X()]
	digits[0] = vx / 100
	digits[1] = (vx / 10) % 10
	digits[2] = vx % 10
	return nil
}

// Fx55 - store v0 through vx, inclusive, at [i].
func opStore(cpu *Cpu, code Code) error {
	count := int(code.X()) + 1
	data, err := cpu.Memory.Slice(int(cpu.I), count)
	if err != nil {
		return err
	}

	copy(data, cpu.V[:count])
	return nil
}

// Fx65 - load v0 through vx, inclusive, from [i].
func opLoad(cpu *Cpu, code Code) error {
	count := int(code.X()) + 1
	data, err := cpu.Memory.Slice(int(cpu.I), count)
	if err != nil {
		return err
	}

	copy(cpu.V[:count], data)
	return nil
}
