package cpu

import (
	"iter"
)

// Opcode is one assembled source line: an instruction or a data directive.
type Opcode struct {
	LineNo int
	Addr   uint16
	Words  []string
	Data   []byte
	Code   bool // Data holds a single instruction word.
}

type Program struct {
	Opcodes []Opcode
}

// Binary returns the program image, to be loaded at PROGRAM_START.
func (prog *Program) Binary() (image []byte) {
	for _, op := range prog.Opcodes {
		end := int(op.Addr) - PROGRAM_START + len(op.Data)
		if end > len(image) {
			image = append(image, make([]byte, end-len(image))...)
		}
		copy(image[int(op.Addr)-PROGRAM_START:], op.Data)
	}

	return
}

// Codes iterates over the instruction words, and their addresses.
func (prog *Program) Codes() iter.Seq2[uint16, Code] {
	return func(yield func(addr uint16, code Code) bool) {
		for _, op := range prog.Opcodes {
			if !op.Code {
				continue
			}
			code := Code(uint16(op.Data[0])<<8 | uint16(op.Data[1]))
			if !yield(op.Addr, code) {
				return
			}
		}
	}
}

// LineNo returns the source line that produced the byte at addr,
// or 0 if no line did.
func (prog *Program) LineNo(addr uint16) int {
	for _, op := range prog.Opcodes {
		if addr >= op.Addr && int(addr) < int(op.Addr)+len(op.Data) {
			return op.LineNo
		}
	}

	return 0
}
