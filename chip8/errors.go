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

import (
	"errors"
	"fmt"
)

var (
	/// ErrStackOverflow is returned by CALL when 16 return addresses are
	/// already on the stack.
	///
	ErrStackOverflow = errors.New("stack overflow")

	/// ErrStackUnderflow is returned by RET with an empty stack.
	///
	ErrStackUnderflow = errors.New("stack underflow")

	/// ErrUnimplementedOpcode is returned for words that match no
	/// instruction.
	///
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")

	/// ErrRomTooLarge is returned when a program doesn't fit in memory
	/// above 0x200.
	///
	ErrRomTooLarge = errors.New("rom too large")

	/// ErrInvalidKey is returned for key indices outside 0-F.
	///
	ErrInvalidKey = errors.New("invalid key index")

	/// ErrAddressOutOfRange is returned when an instruction would read or
	/// write past the end of memory.
	///
	ErrAddressOutOfRange = errors.New("address out of range")
)

/// OpcodeError is returned by Step when an instruction faults. PC is
/// the address of the instruction.
///
type OpcodeError struct {
	PC     uint16
	Opcode uint16
	Err    error
}

func (e *OpcodeError) Error() string {
	return fmt.Sprintf("%04X: opcode %04X: %v", e.PC, e.Opcode, e.Err)
}

func (e *OpcodeError) Unwrap() error {
	return e.Err
}

/// AddressError reports the first address outside of memory.
///
type AddressError struct {
	Address int
}

func (e *AddressError) Error() string {
	return fmt.Sprintf("%v: #%04X", ErrAddressOutOfRange, e.Address)
}

func (e *AddressError) Unwrap() error {
	return ErrAddressOutOfRange
}

/// RomSizeError is returned by Load for oversized programs.
///
type RomSizeError struct {
	Size int
	Max  int
}

func (e *RomSizeError) Error() string {
	return fmt.Sprintf("%v: %d bytes, max %d", ErrRomTooLarge, e.Size, e.Max)
}

func (e *RomSizeError) Unwrap() error {
	return ErrRomTooLarge
}

/// KeyError reports an out of range key index.
///
type KeyError struct {
	Key int
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%v: %d", ErrInvalidKey, e.Key)
}

func (e *KeyError) Unwrap() error {
	return ErrInvalidKey
}
