// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"errors"
	"io"
	"iter"
	"log"
	"maps"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/resolve"
	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/chip8/internal"
)

// Predefined system equates
var sysEquate = map[string]int{
	"MEMORY_SIZE":     MEMORY_SIZE,
	"PROGRAM_START":   PROGRAM_START,
	"FONT_START":      FONT_START,
	"FONT_GLYPH_SIZE": FONT_GLYPH_SIZE,
	"DISPLAY_WIDTH":   DISPLAY_WIDTH,
	"DISPLAY_HEIGHT":  DISPLAY_HEIGHT,
	"KEY_COUNT":       KEY_COUNT,
}

// Defines returns the predefined system equates.
func Defines() iter.Seq2[string, int] {
	return maps.All(sysEquate)
}

// Assembler is a two pass assembler for CHIP-8 programs.
//
// Each line holds an optional 'label:', then an instruction or directive,
// then an optional '; comment'. Instructions use the mnemonics produced by
// Code.String, for example 'drw v1, v2, 5' or 'ld [i], v3'.
//
// Directives:
//
//	.equ NAME expr    ; define a constant
//	.byte expr, ...   ; emit bytes
//	.word expr, ...   ; emit big endian words
//
// Numeric operands are Starlark expressions, evaluated with every label
// and equate in scope, so 'sprite + 5', '0x200' and '$(SIZE * 2)' all work.
type Assembler struct {
	Verbose bool     // If set, verbosely logs the assembler actions.
	Opcode  []Opcode // List of generated opcodes.

	predefine map[string]int // Predefines
	Label     map[string]int // Map of labels to addresses.
	Equate    map[string]int // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate, for all
// subsequent calls to Parse.
func (asm *Assembler) Predefine(equ string, value int) {
	if asm.predefine == nil {
		asm.predefine = map[string]int{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// pending is a source line waiting for the second pass.
type pending struct {
	lineno int
	line   string
	name   string
	args   []string
	addr   int
}

// size returns the number of bytes the line will emit.
func (pd *pending) size() int {
	switch pd.name {
	case ".byte":
		return len(pd.args)
	case ".word":
		return 2 * len(pd.args)
	}
	return 2
}

// splitLine separates the labels, the mnemonic and the operands of a line.
func splitLine(line string) (labels []string, name string, args []string) {
	line = strings.TrimSpace(line)

	for {
		word, _, _ := strings.Cut(line, " ")
		word, _, _ = strings.Cut(word, "\t")
		if !strings.HasSuffix(word, ":") {
			break
		}
		labels = append(labels, word[:len(word)-1])
		line = strings.TrimSpace(line[len(word):])
	}

	if len(line) == 0 {
		return
	}

	name, rest, _ := strings.Cut(strings.ReplaceAll(line, "\t", " "), " ")
	name = strings.ToLower(name)
	rest = strings.TrimSpace(rest)
	if len(rest) == 0 {
		return
	}

	for _, arg := range strings.Split(rest, ",") {
		args = append(args, strings.TrimSpace(arg))
	}

	return
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Opcode = asm.Opcode[:0]
	asm.Label = make(map[string]int, 16)
	asm.Equate = maps.Collect(internal.IterSeq2Concat(Defines(), maps.All(asm.predefine)))

	// First pass: assign addresses to labels, evaluate equates.
	var lines []*pending
	addr := PROGRAM_START
	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)

		labels, name, args := splitLine(line)
		for _, label := range labels {
			_, dup_label := asm.Label[label]
			_, dup_equate := asm.Equate[label]
			if dup_label || dup_equate {
				err = ErrLabelDuplicate
				return
			}
			asm.Label[label] = addr
		}

		if len(name) == 0 {
			continue
		}

		// .equ CONST VALUE
		if name == ".equ" {
			words := strings.Fields(strings.Join(args, ","))
			if len(words) < 2 {
				err = ErrEquateSyntax
				return
			}
			equ := words[0]
			_, dup_label := asm.Label[equ]
			_, dup_equate := asm.Equate[equ]
			if dup_label || dup_equate {
				err = ErrEquateDuplicate
				return
			}
			var value int
			value, err = asm.eval(strings.Join(words[1:], " "))
			if err != nil {
				return
			}
			asm.Equate[equ] = value
			continue
		}

		pd := &pending{lineno: lineno, line: line, name: name, args: args, addr: addr}
		addr += pd.size()
		if addr > MEMORY_SIZE {
			err = ErrProgramSize
			return
		}
		lines = append(lines, pd)
	}

	if err = scanner.Err(); err != nil {
		return
	}

	// Second pass: encode.
	for _, pd := range lines {
		lineno, line = pd.lineno, pd.line

		op := Opcode{
			LineNo: pd.lineno,
			Addr:   uint16(pd.addr),
			Words:  append([]string{pd.name}, pd.args...),
		}

		switch pd.name {
		case ".byte":
			op.Data, err = asm.data(pd.args, 1)
		case ".word":
			op.Data, err = asm.data(pd.args, 2)
		default:
			var word uint16
			word, err = asm.encode(pd.name, pd.args)
			op.Data = []byte{byte(word >> 8), byte(word)}
			op.Code = true
		}
		if err != nil {
			return
		}

		asm.Opcode = append(asm.Opcode, op)
	}

	prog = &Program{
		Opcodes: slices.Clone(asm.Opcode),
	}

	return
}

// data encodes the operands of a .byte or .word directive.
func (asm *Assembler) data(args []string, width int) (data []byte, err error) {
	if len(args) == 0 {
		err = ErrOpcodeMissingArgs
		return
	}

	limit := 1<<(8*width) - 1
	for _, arg := range args {
		var value int
		value, err = asm.eval(arg)
		if err != nil {
			return
		}
		if value < 0 || value > limit {
			err = ErrValueRange
			return
		}
		if width == 2 {
			data = append(data, byte(value>>8))
		}
		data = append(data, byte(value))
	}

	return
}

// encode finds the instruction matching the mnemonic and operands, and
// returns its instruction word.
func (asm *Assembler) encode(name string, args []string) (word uint16, err error) {
	err = ErrOpcodeInvalid

	for n := range instructionSet {
		ins := &instructionSet[n]
		if ins.Name != name {
			continue
		}

		switch {
		case len(args) > len(ins.Args):
			err = ErrOpcodeExtraArgs
			continue
		case len(args) < len(ins.Args):
			err = ErrOpcodeMissingArgs
			continue
		}

		var ok bool
		word, ok, err = asm.encodeArgs(ins, args)
		if err != nil || ok {
			return
		}
		err = ErrInstructionInvalid
	}

	return
}

// encodeArgs encodes the operands for one candidate instruction. Returns
// ok as false if the operands do not have the instruction's shape.
func (asm *Assembler) encodeArgs(ins *Instruction, args []string) (word uint16, ok bool, err error) {
	word = ins.Value

	for n, kind := range ins.Args {
		arg := args[n]
		switch {
		case kind == ARG_VX || kind == ARG_VY:
			reg, is_reg := parseRegister(arg)
			if !is_reg {
				if asm.badRegister(arg) {
					err = ErrRegisterInvalid
				}
				return
			}
			word |= kind.Encode(reg)
		case kind.IsValue():
			if isReserved(arg) {
				return
			}
			if asm.badRegister(arg) {
				err = ErrRegisterInvalid
				return
			}
			var value int
			value, err = asm.eval(arg)
			if err != nil {
				return
			}
			if value < 0 || value > kind.Limit() {
				err = ErrValueRange
				return
			}
			word |= kind.Encode(value)
		default:
			if strings.ToLower(arg) != argKeyword[kind] {
				return
			}
		}
	}

	ok = true
	return
}

// parseRegister parses v0 through vf.
func parseRegister(arg string) (reg int, ok bool) {
	if len(arg) != 2 || (arg[0] != 'v' && arg[0] != 'V') {
		return
	}

	value, err := strconv.ParseUint(arg[1:], 16, 8)
	if err != nil {
		return
	}

	return int(value), true
}

// badRegister returns true for operands shaped like a register, such as
// 'vg', that name no register, label or equate.
func (asm *Assembler) badRegister(arg string) bool {
	if len(arg) != 2 || (arg[0] != 'v' && arg[0] != 'V') {
		return false
	}

	if _, ok := parseRegister(arg); ok {
		return false
	}

	_, is_label := asm.Label[arg]
	_, is_equate := asm.Equate[arg]
	return !is_label && !is_equate
}

// isReserved returns true for operands that are registers or keywords.
func isReserved(arg string) bool {
	if _, ok := parseRegister(arg); ok {
		return true
	}

	lower := strings.ToLower(arg)
	for _, keyword := range argKeyword {
		if lower == keyword {
			return true
		}
	}

	return false
}

// eval does compile-time evaluation of a numeric operand.
func (asm *Assembler) eval(expr string) (value int, err error) {
	if strings.HasPrefix(expr, "$(") && strings.HasSuffix(expr, ")") {
		expr = expr[2 : len(expr)-1]
	}

	if len(strings.TrimSpace(expr)) == 0 {
		err = ErrOpcodeMissingArgs
		return
	}

	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, val := range asm.Equate {
		pred[key] = starlark.MakeInt(val)
	}
	for key, val := range asm.Label {
		pred[key] = starlark.MakeInt(val)
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		if name, ok := undefinedName(err); ok {
			err = errors.Join(ErrLabelMissing(name), ErrParseExpression(expr))
			return
		}
		err = errors.Join(ErrParseExpression(expr), err)
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := st_rc.(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok {
		err = ErrParseExpression(expr)
		return
	}

	value = int(st_int64)
	return
}

// undefinedName returns the first name the expression used but nothing
// defined.
func undefinedName(err error) (name string, ok bool) {
	var list resolve.ErrorList
	if !errors.As(err, &list) {
		return
	}

	for _, re := range list {
		rest, found := strings.CutPrefix(re.Msg, "undefined: ")
		if !found {
			continue
		}
		name, _, _ = strings.Cut(rest, " ")
		ok = true
		return
	}

	return
}
