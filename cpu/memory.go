package cpu

const (
	MEMORY_SIZE     = 0x1000 // 4KiB address space
	FONT_START      = 0x000  // Address of the hexadecimal font.
	FONT_GLYPH_SIZE = 5      // Bytes per font glyph.
	PROGRAM_START   = 0x200  // Load address of program images.
	PROGRAM_LIMIT   = MEMORY_SIZE - PROGRAM_START
)

// font is the 4x5 sprite for each hexadecimal digit, 0 through F.
var font = [16 * FONT_GLYPH_SIZE]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the machine's byte addressable memory image.
type Memory [MEMORY_SIZE]byte

// Reset zeros memory and installs the font.
func (mem *Memory) Reset() {
	clear(mem[:])
	copy(mem[FONT_START:], font[:])
}

// Slice returns the count bytes starting at addr, backed by memory.
// The whole range is checked before anything is returned.
func (mem *Memory) Slice(addr int, count int) (data []byte, err error) {
	if addr < 0 || addr >= MEMORY_SIZE {
		err = ErrMemory{Addr: addr}
		return
	}
	if count < 0 || addr+count > MEMORY_SIZE {
		err = ErrMemory{Addr: addr + count - 1}
		return
	}

	data = mem[addr : addr+count]
	return
}
