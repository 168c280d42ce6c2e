// Package cpu implements the CHIP-8 virtual machine and its assembler.
//
// The machine has 4KiB of byte addressable memory with the hexadecimal font
// at 0x000 and programs loaded at 0x200, sixteen 8-bit registers (v0-vf)
// where vf doubles as the carry, borrow and collision flag, a 12-bit index
// register, a sixteen entry call stack, a 64x32 monochrome display, the
// delay and sound timers, and a sixteen key hexadecimal keypad.
//
// The host owns the pacing. It calls Cpu.Tick once per instruction,
// Cpu.TickTimers at 60Hz, and updates Cpu.Keypad between ticks. Nothing in
// this package blocks: the wait-for-key instruction reports that it is
// still waiting and is re-executed on the next tick.
//
// The assembler accepts the same mnemonics that Code.String produces,
// with labels, equates and compile-time expressions.
package cpu
