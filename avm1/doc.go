// Package avm1 decodes AVM1 action bytecode, the scripting language embedded
// in DoAction, DoInitAction and clip event tags of SWF movies, into a tree of
// Go values.
//
// The input is the raw byte range of one action stream, as located by the SWF
// tag layer, together with the SWF version of the enclosing movie. The output
// is an ordered []Action in which every branch has been resolved to an action
// index.
//
// # Wire Format
//
// Each action starts with a one-byte opcode. Opcodes below 0x80 have no
// payload; opcodes at or above 0x80 are followed by a little-endian u16
// payload length and that many payload bytes:
//
//	[opcode:u8]                          opcode < 0x80
//	[opcode:u8][length:u16][payload]     opcode >= 0x80
//
// Opcode 0x00 terminates a list. Running out of bytes exactly at an opcode
// boundary terminates it too, which is how nested bodies end.
//
// # Branches
//
// If and Jump carry a signed 16-bit offset relative to the byte after the
// branch action. The decoder records the cumulative byte position of every
// action in a list and maps each offset to the index of the action starting
// at the target byte. A target equal to the list's byte length resolves to
// len(actions). Any other target is an error.
//
// # Nesting
//
// DefineFunction, DefineFunction2, Try and With own nested action lists. Each
// nested list is decoded from its own bounded view of the input and resolves
// its branches independently of the enclosing list.
package avm1
