package cpu

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCode_Fields(t *testing.T) {
	assert := assert.New(t)

	code := Code(0xd12f)
	assert.Equal(uint8(0xd), code.Op())
	assert.Equal(uint16(0x12f), code.Nnn())
	assert.Equal(uint8(0xf), code.N())
	assert.Equal(uint8(0x1), code.X())
	assert.Equal(uint8(0x2), code.Y())
	assert.Equal(uint8(0x2f), code.Kk())

	code = Code(0x8ab6)
	assert.Equal(uint8(0x8), code.Op())
	assert.Equal(uint8(0xa), code.X())
	assert.Equal(uint8(0xb), code.Y())
	assert.Equal(uint8(0x6), code.N())
}

func TestCode_String(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		code Code
		text string
	}){
		{0x00e0, "cls"},
		{0x00ee, "ret"},
		{0x1234, "jp 0x234"},
		{0x2abc, "call 0xabc"},
		{0x3a05, "se va, 0x05"},
		{0x4b10, "sne vb, 0x10"},
		{0x5120, "se v1, v2"},
		{0x6f7f, "ld vf, 0x7f"},
		{0x7001, "add v0, 0x01"},
		{0x8120, "ld v1, v2"},
		{0x8121, "or v1, v2"},
		{0x8122, "and v1, v2"},
		{0x8123, "xor v1, v2"},
		{0x8124, "add v1, v2"},
		{0x8125, "sub v1, v2"},
		{0x8126, "shr v1, v2"},
		{0x8127, "subn v1, v2"},
		{0x812e, "shl v1, v2"},
		{0x9120, "sne v1, v2"},
		{0xa123, "ld i, 0x123"},
		{0xb300, "jp v0, 0x300"},
		{0xc3ff, "rnd v3, 0xff"},
		{0xd015, "drw v0, v1, 5"},
		{0xe19e, "skp v1"},
		{0xe2a1, "sknp v2"},
		{0xf307, "ld v3, dt"},
		{0xf40a, "ld v4, k"},
		{0xf515, "ld dt, v5"},
		{0xf618, "ld st, v6"},
		{0xf71e, "add i, v7"},
		{0xf829, "ld f, v8"},
		{0xf933, "ld b, v9"},
		{0xfa55, "ld [i], va"},
		{0xfb65, "ld vb, [i]"},
	}

	for _, entry := range table {
		assert.True(entry.code.Valid(), entry.text)
		assert.Equal(entry.text, entry.code.String())
	}
}

func TestCode_Invalid(t *testing.T) {
	assert := assert.New(t)

	table := []Code{
		0x0000, 0x0123, 0x00e1, 0x01e0, 0x00ef,
		0x5121, 0x800f, 0x8128, 0x812d, 0x9121,
		0xe19f, 0xe1a2, 0xf000, 0xf0ff, 0xf156, 0xf164,
	}

	for _, code := range table {
		assert.False(code.Valid(), "%04x", uint16(code))
		assert.Nil(Decode(code))
		assert.True(strings.HasPrefix(code.String(), ".word "), code.String())
	}
}

func TestDecode_Count(t *testing.T) {
	assert := assert.New(t)

	// Every word decodes to at most one instruction.
	for word := range 0x10000 {
		matches := 0
		for n := range instructionSet {
			if instructionSet[n].Match(Code(word)) {
				matches++
			}
		}
		if matches > 1 {
			assert.Fail("ambiguous", "%04x matches %d instructions", word, matches)
			return
		}
		if !assert.Equal(matches == 1, Code(word).Valid(), "%04x", word) {
			return
		}
	}
}
