package cpu

import (
	"fmt"
	"strings"
)

// Code is a single 16-bit instruction word.
type Code uint16

// Op is the instruction family, bits 12-15.
func (code Code) Op() uint8 {
	return uint8(code >> 12)
}

// Nnn is the 12-bit address or immediate, bits 0-11.
func (code Code) Nnn() uint16 {
	return uint16(code) & 0x0fff
}

// N is the 4-bit immediate, bits 0-3.
func (code Code) N() uint8 {
	return uint8(code) & 0x0f
}

// X is the first register index, bits 8-11.
func (code Code) X() uint8 {
	return uint8(code>>8) & 0x0f
}

// Y is the second register index, bits 4-7.
func (code Code) Y() uint8 {
	return uint8(code>>4) & 0x0f
}

// Kk is the 8-bit immediate, bits 0-7.
func (code Code) Kk() uint8 {
	return uint8(code)
}

// ArgKind is the kind of an instruction operand.
type ArgKind int

const (
	ARG_VX     = ArgKind(0)  // vX
	ARG_VY     = ArgKind(1)  // vY
	ARG_BYTE   = ArgKind(2)  // kk
	ARG_ADDR   = ArgKind(3)  // nnn
	ARG_NIBBLE = ArgKind(4)  // n
	ARG_V0     = ArgKind(5)  // v0
	ARG_I      = ArgKind(6)  // i
	ARG_I_IND  = ArgKind(7)  // [i]
	ARG_DT     = ArgKind(8)  // dt
	ARG_ST     = ArgKind(9)  // st
	ARG_K      = ArgKind(10) // k
	ARG_F      = ArgKind(11) // f
	ARG_B      = ArgKind(12) // b
)

// argKeyword is the fixed operand text for keyword operands.
var argKeyword = map[ArgKind]string{
	ARG_V0:    "v0",
	ARG_I:     "i",
	ARG_I_IND: "[i]",
	ARG_DT:    "dt",
	ARG_ST:    "st",
	ARG_K:     "k",
	ARG_F:     "f",
	ARG_B:     "b",
}

// IsValue returns true if the operand is an encoded immediate.
func (ak ArgKind) IsValue() bool {
	return ak == ARG_BYTE || ak == ARG_ADDR || ak == ARG_NIBBLE
}

// Limit is the largest value an immediate operand can encode.
func (ak ArgKind) Limit() int {
	switch ak {
	case ARG_BYTE:
		return 0xff
	case ARG_ADDR:
		return 0xfff
	case ARG_NIBBLE:
		return 0xf
	}
	return 0
}

// Encode places value into the operand's bit-field of an instruction word.
func (ak ArgKind) Encode(value int) (bits uint16) {
	switch ak {
	case ARG_VX:
		bits = uint16(value&0xf) << 8
	case ARG_VY:
		bits = uint16(value&0xf) << 4
	case ARG_BYTE:
		bits = uint16(value & 0xff)
	case ARG_ADDR:
		bits = uint16(value & 0xfff)
	case ARG_NIBBLE:
		bits = uint16(value & 0xf)
	}
	return
}

// Format renders the operand as it appears in code.
func (ak ArgKind) Format(code Code) string {
	switch ak {
	case ARG_VX:
		return fmt.Sprintf("v%x", code.X())
	case ARG_VY:
		return fmt.Sprintf("v%x", code.Y())
	case ARG_BYTE:
		return fmt.Sprintf("0x%02x", code.Kk())
	case ARG_ADDR:
		return fmt.Sprintf("0x%03x", code.Nnn())
	case ARG_NIBBLE:
		return fmt.Sprintf("%d", code.N())
	}
	return argKeyword[ak]
}

// opFunc performs the state change of a decoded instruction.
type opFunc func(cpu *Cpu, code Code) error

// Instruction describes one operation of the instruction set.
// A word belongs to the instruction when word&Mask == Value.
type Instruction struct {
	Name  string
	Args  []ArgKind
	Mask  uint16
	Value uint16

	exec opFunc
}

// Match returns true if the word encodes this instruction.
func (ins *Instruction) Match(code Code) bool {
	return uint16(code)&ins.Mask == ins.Value
}

// decodeTable holds the instructions of each family, indexed by Op.
var decodeTable [16][]*Instruction

func init() {
	for n := range instructionSet {
		ins := &instructionSet[n]
		op := ins.Value >> 12
		decodeTable[op] = append(decodeTable[op], ins)
	}
}

// Decode finds the instruction for a word, or nil if the word is
// not a defined instruction.
func Decode(code Code) *Instruction {
	for _, ins := range decodeTable[code.Op()] {
		if ins.Match(code) {
			return ins
		}
	}

	return nil
}

// Valid returns true if the word is a defined instruction.
func (code Code) Valid() bool {
	return Decode(code) != nil
}

// String returns the mnemonic form of the instruction word.
func (code Code) String() string {
	ins := Decode(code)
	if ins == nil {
		return fmt.Sprintf(".word 0x%04x", uint16(code))
	}

	if len(ins.Args) == 0 {
		return ins.Name
	}

	args := make([]string, len(ins.Args))
	for n, arg := range ins.Args {
		args[n] = arg.Format(code)
	}

	return ins.Name + " " + strings.Join(args, ", ")
}
