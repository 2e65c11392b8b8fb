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

import "fmt"

/// Mnemonic returns the assembly for a single instruction word, or "??"
/// if the word isn't a CHIP-8 instruction.
///
func Mnemonic(inst uint16) string {
	if in := decode(inst); in != nil {
		return in.format(inst)
	}
	return "??"
}

/// Disassemble a CHIP-8 instruction.
///
func (vm *CHIP_8) Disassemble(i uint16) string {
	inst, err := vm.memory.word(i)
	if err != nil {
		return ""
	}

	// end of program memory?
	if inst == 0 {
		return fmt.Sprintf("%04X -", i)
	}

	return fmt.Sprintf("%04X - %s", i, Mnemonic(inst))
}
