/* Copyright (c) 2017 Jeffrey Massung
 *
 * This software is provided 'as-is', without any express or implied
 * warranty.  In no event will the authors be held liable for any damages
 * arising from the use of this software.
 *
 * Permission is granted to anyone to use this software for any purpose,
 * including commercial applications, and to alter it and redistribute it
 * freely, subject to the following restrictions:
 *
 * 1. The origin of this software must not be misrepresented; you must not
 *    claim that you wrote the original software. If you use this software
 *    in a product, an acknowledgment in the product documentation would be
 *    appreciated but is not required.
 *
 * 2. Altered source versions must be plainly marked as such, and must not be
 *    misrepresented as being the original software.
 *
 * 3. This notice may not be removed or altered from any source distribution.
 */

package chip8

const (
	/// MemorySize is the number of addressable bytes.
	///
	MemorySize = 0x1000

	/// ProgramStart is where programs are loaded and execution begins.
	/// Everything below it is reserved for the interpreter and font.
	///
	ProgramStart = 0x200

	/// MaxRomSize is the largest program that fits above ProgramStart.
	///
	MaxRomSize = MemorySize - ProgramStart

	/// GlyphSize is the number of bytes (rows) in each font sprite.
	///
	GlyphSize = 5
)

/// font holds the 16 hex digit sprites, 4x5 pixels each, burned into
/// memory at address 0.
///
var font = [16 * GlyphSize]byte{
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

/// Font returns a copy of the hex digit sprites.
///
func Font() [16 * GlyphSize]byte {
	return font
}

/// memory is the flat address space of the machine.
///
type memory [MemorySize]byte

/// burnFont clears all of memory and copies the font to address 0.
///
func (m *memory) burnFont() {
	*m = memory{}
	copy(m[:], font[:])
}

/// span verifies that n bytes starting at addr are all addressable.
///
func (m *memory) span(addr, n int) error {
	if addr < 0 || addr+n > len(m) {
		if addr < len(m) {
			addr = len(m)
		}
		return &AddressError{Address: addr}
	}
	return nil
}

/// word reads the big-endian instruction at addr.
///
func (m *memory) word(addr uint16) (uint16, error) {
	if err := m.span(int(addr), 2); err != nil {
		return 0, err
	}
	return uint16(m[addr])<<8 | uint16(m[addr+1]), nil
}
