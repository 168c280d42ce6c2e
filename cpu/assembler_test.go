package cpu

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := asm.Parse(strings.NewReader(""))
	assert.NoError(err)
	assert.Equal(0, len(prog.Opcodes))
	assert.Equal(0, len(prog.Binary()))

	assert.Equal(PROGRAM_START, asm.Equate["PROGRAM_START"])
	assert.Equal(MEMORY_SIZE, asm.Equate["MEMORY_SIZE"])
	assert.Equal(FONT_GLYPH_SIZE, asm.Equate["FONT_GLYPH_SIZE"])
}

func TestAssembler_Program(t *testing.T) {
	assert := assert.New(t)
	require := require.New(t)

	asm := &Assembler{}

	program := []string{
		"; count up",
		"start:  ld v0, 5",
		"        ADD V0, 3      ; no flag",
		"loop:   jp loop",
		"sprite: .byte 0xf0, 0x90",
		"        .word 0x1234",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	require.NoError(err)

	expected := []Opcode{
		{2, 0x200, []string{"ld", "v0", "5"}, []byte{0x60, 0x05}, true},
		{3, 0x202, []string{"add", "V0", "3"}, []byte{0x70, 0x03}, true},
		{4, 0x204, []string{"jp", "loop"}, []byte{0x12, 0x04}, true},
		{5, 0x206, []string{".byte", "0xf0", "0x90"}, []byte{0xf0, 0x90}, false},
		{6, 0x208, []string{".word", "0x1234"}, []byte{0x12, 0x34}, false},
	}
	if diff := cmp.Diff(expected, prog.Opcodes); diff != "" {
		t.Errorf("opcodes (-want +got):\n%s", diff)
	}

	assert.Equal(map[string]int{"start": 0x200, "loop": 0x204, "sprite": 0x206}, asm.Label)
	assert.Equal([]byte{0x60, 0x05, 0x70, 0x03, 0x12, 0x04, 0xf0, 0x90, 0x12, 0x34}, prog.Binary())
}

func TestAssembler_ForwardReference(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	program := []string{
		"call sub",
		"halt: jp halt",
		"sub:",
		"  ret",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	assert.Equal([]byte{0x22, 0x04, 0x12, 0x02, 0x00, 0xee}, prog.Binary())
}

func TestAssembler_Expressions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("SPEED", 4)

	program := []string{
		".equ ROWS 3",
		".equ TWICE ROWS * 2",
		"ld v1, TWICE + SPEED",
		"ld i, $(glyph + FONT_GLYPH_SIZE)",
		"drw v1, v2, ROWS",
		"glyph: .byte 1 << 7, 0x3c",
	}

	prog, err := asm.Parse(strings.NewReader(strings.Join(program, "\n")))
	assert.NoError(err)
	assert.Equal(6, asm.Equate["TWICE"])
	assert.Equal([]byte{
		0x61, 0x0a,
		0xa2, 0x0b,
		0xd1, 0x23,
		0x80, 0x3c,
	}, prog.Binary())
}

func TestAssembler_Errors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program string
		lineno  int
		err     error
	}){
		{"unknown", "foo v1", 1, ErrOpcodeInvalid},
		{"missing", "cls\nld v1", 2, ErrOpcodeMissingArgs},
		{"extra", "cls v1", 1, ErrOpcodeExtraArgs},
		{"byte range", "ld v1, 0x100", 1, ErrValueRange},
		{"nibble range", "drw v1, v2, 16", 1, ErrValueRange},
		{"negative", "jp -2", 1, ErrValueRange},
		{"data range", ".byte 1, 256", 1, ErrValueRange},
		{"data empty", ".word", 1, ErrOpcodeMissingArgs},
		{"shape", "skp k", 1, ErrInstructionInvalid},
		{"keyword value", "ld v1, dt, 3", 1, ErrOpcodeExtraArgs},
		{"label twice", "a: cls\na: cls", 2, ErrLabelDuplicate},
		{"label equate", ".equ a 1\na: cls", 2, ErrLabelDuplicate},
		{"equate twice", ".equ A 1\n.equ A 2", 2, ErrEquateDuplicate},
		{"equate label", "X: cls\n.equ X 3", 2, ErrEquateDuplicate},
		{"equate system", ".equ MEMORY_SIZE 2", 1, ErrEquateDuplicate},
		{"equate syntax", ".equ A", 1, ErrEquateSyntax},
		{"undefined", "jp nowhere", 1, ErrParseExpression("nowhere")},
		{"undefined label", "cls\ncall sub + 2", 2, ErrLabelMissing("sub")},
		{"register value", "ld v1, vg", 1, ErrRegisterInvalid},
		{"register slot", "add vG, 1", 1, ErrRegisterInvalid},
		{"too large", strings.Repeat("cls\n", PROGRAM_LIMIT/2+1), PROGRAM_LIMIT/2 + 1, ErrProgramSize},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := asm.Parse(strings.NewReader(entry.program))
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var se *ErrSyntax
		if assert.ErrorAs(err, &se, entry.name) {
			assert.Equal(entry.lineno, se.LineNo, entry.name)
		}
	}
}

func TestAssembler_Disassembly(t *testing.T) {
	asm := &Assembler{}

	// Every word, valid or not, reassembles from its mnemonic form.
	for word := 0; word <= 0xffff; word += 11 {
		code := Code(word)
		text := code.String()

		prog, err := asm.Parse(strings.NewReader(text))
		if !assert.NoError(t, err, text) {
			return
		}
		if !assert.Equal(t, []byte{byte(word >> 8), byte(word)}, prog.Binary(), text) {
			return
		}
	}
}

func TestAssembler_RegisterShapedSymbol(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	// A label that looks like a register is still a value.
	prog, err := asm.Parse(strings.NewReader("jp vg\nvg: cls"))
	assert.NoError(err)
	assert.Equal([]byte{0x12, 0x02, 0x00, 0xe0}, prog.Binary())
}
