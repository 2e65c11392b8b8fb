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
	"fmt"

	"github.com/retroenv/retrogolib/log"
)

/// operands are the fields every instruction is decoded into.
///
type operands struct {
	/// 12-bit address operand
	a uint16

	/// byte and nibble operands
	b byte
	n byte

	/// x and y register operands
	x uint
	y uint
}

func decodeOperands(inst uint16) operands {
	return operands{
		a: inst & 0xFFF,
		b: byte(inst & 0xFF),
		n: byte(inst & 0xF),
		x: uint(inst >> 8 & 0xF),
		y: uint(inst >> 4 & 0xF),
	}
}

/// instruction is one entry of the decode table. A word is the
/// instruction when inst&mask == value.
///
type instruction struct {
	mask     uint16
	value    uint16
	mnemonic string
	args     func(o operands) string
	exec     func(vm *CHIP_8, o operands) error
}

/// format the instruction and its operands for disassembly.
///
func (in *instruction) format(inst uint16) string {
	args := in.args(decodeOperands(inst))
	if args == "" {
		return in.mnemonic
	}
	return fmt.Sprintf("%-6s %s", in.mnemonic, args)
}

func none(operands) string       { return "" }
func addr(o operands) string     { return fmt.Sprintf("#%04X", o.a) }
func vx(o operands) string       { return fmt.Sprintf("V%X", o.x) }
func vxByte(o operands) string   { return fmt.Sprintf("V%X, #%02X", o.x, o.b) }
func vxvy(o operands) string     { return fmt.Sprintf("V%X, V%X", o.x, o.y) }
func literal(s string) func(operands) string {
	return func(o operands) string {
		return fmt.Sprintf(s, o.x)
	}
}

/// instructions is the complete CHIP-8 instruction set. No word
/// matches more than one entry.
///
var instructions = []instruction{
	{0xFFFF, 0x00E0, "CLS", none, (*CHIP_8).cls},
	{0xFFFF, 0x00EE, "RET", none, (*CHIP_8).ret},
	{0xF000, 0x1000, "JP", addr, (*CHIP_8).jump},
	{0xF000, 0x2000, "CALL", addr, (*CHIP_8).call},
	{0xF000, 0x3000, "SE", vxByte, (*CHIP_8).skipIf},
	{0xF000, 0x4000, "SNE", vxByte, (*CHIP_8).skipIfNot},
	{0xF00F, 0x5000, "SE", vxvy, (*CHIP_8).skipIfXY},
	{0xF000, 0x6000, "LD", vxByte, (*CHIP_8).loadX},
	{0xF000, 0x7000, "ADD", vxByte, (*CHIP_8).addX},
	{0xF00F, 0x8000, "LD", vxvy, (*CHIP_8).loadXY},
	{0xF00F, 0x8001, "OR", vxvy, (*CHIP_8).or},
	{0xF00F, 0x8002, "AND", vxvy, (*CHIP_8).and},
	{0xF00F, 0x8003, "XOR", vxvy, (*CHIP_8).xor},
	{0xF00F, 0x8004, "ADD", vxvy, (*CHIP_8).addXY},
	{0xF00F, 0x8005, "SUB", vxvy, (*CHIP_8).subXY},
	{0xF00F, 0x8006, "SHR", vx, (*CHIP_8).shr},
	{0xF00F, 0x8007, "SUBN", vxvy, (*CHIP_8).subYX},
	{0xF00F, 0x800E, "SHL", vx, (*CHIP_8).shl},
	{0xF00F, 0x9000, "SNE", vxvy, (*CHIP_8).skipIfNotXY},
	{0xF000, 0xA000, "LD", func(o operands) string { return fmt.Sprintf("I, #%04X", o.a) }, (*CHIP_8).loadI},
	{0xF000, 0xB000, "JP", func(o operands) string { return fmt.Sprintf("V0, #%04X", o.a) }, (*CHIP_8).jumpV0},
	{0xF000, 0xC000, "RND", vxByte, (*CHIP_8).rnd},
	{0xF000, 0xD000, "DRW", func(o operands) string { return fmt.Sprintf("V%X, V%X, %d", o.x, o.y, o.n) }, (*CHIP_8).drw},
	{0xF0FF, 0xE09E, "SKP", vx, (*CHIP_8).skipIfPressed},
	{0xF0FF, 0xE0A1, "SKNP", vx, (*CHIP_8).skipIfNotPressed},
	{0xF0FF, 0xF007, "LD", literal("V%X, DT"), (*CHIP_8).loadXDT},
	{0xF0FF, 0xF00A, "LD", literal("V%X, K"), (*CHIP_8).loadXK},
	{0xF0FF, 0xF015, "LD", literal("DT, V%X"), (*CHIP_8).loadDTX},
	{0xF0FF, 0xF018, "LD", literal("ST, V%X"), (*CHIP_8).loadSTX},
	{0xF0FF, 0xF01E, "ADD", literal("I, V%X"), (*CHIP_8).addIX},
	{0xF0FF, 0xF029, "LD", literal("F, V%X"), (*CHIP_8).loadF},
	{0xF0FF, 0xF033, "LD", literal("B, V%X"), (*CHIP_8).loadB},
	{0xF0FF, 0xF055, "LD", literal("[I], V%X"), (*CHIP_8).saveRegs},
	{0xF0FF, 0xF065, "LD", literal("V%X, [I]"), (*CHIP_8).loadRegs},
}

/// decodeGroups indexes the instruction table by the high nibble.
///
var decodeGroups [16][]*instruction

func init() {
	for i := range instructions {
		in := &instructions[i]
		hi := in.value >> 12
		decodeGroups[hi] = append(decodeGroups[hi], in)
	}
}

/// decode finds the instruction for a word, or nil if there is none.
///
func decode(inst uint16) *instruction {
	for _, in := range decodeGroups[inst>>12] {
		if inst&in.mask == in.value {
			return in
		}
	}
	return nil
}

/// Step the CHIP-8 virtual machine a single instruction. If the
/// instruction faults, PC is left at the instruction and nothing else
/// has changed.
///
func (vm *CHIP_8) Step() error {
	pc := vm.pc

	// fetch the next instruction
	inst, err := vm.fetch()
	if err != nil {
		return &OpcodeError{PC: pc, Err: err}
	}

	in := decode(inst)
	if in == nil {
		vm.pc = pc
		return &OpcodeError{PC: pc, Opcode: inst, Err: ErrUnimplementedOpcode}
	}

	if vm.trace != nil {
		vm.trace.Debug("exec",
			log.Hex("pc", pc),
			log.Hex("opcode", inst),
			log.String("inst", in.format(inst)))
	}

	if err := in.exec(vm, decodeOperands(inst)); err != nil {
		vm.pc = pc
		return &OpcodeError{PC: pc, Opcode: inst, Err: err}
	}

	// increment the cycle count
	vm.cycles++

	return nil
}

/// Fetch the next 16-bit instruction to execute.
///
func (vm *CHIP_8) fetch() (uint16, error) {
	inst, err := vm.memory.word(vm.pc)
	if err != nil {
		return 0, err
	}

	// advance the program counter
	vm.pc += 2

	return inst, nil
}

/// Clear the video display memory.
///
func (vm *CHIP_8) cls(operands) error {
	vm.video.clear()
	return nil
}

/// call a subroutine at address.
///
func (vm *CHIP_8) call(o operands) error {
	if int(vm.sp) == len(vm.stack) {
		return ErrStackOverflow
	}

	// push program counter onto stack
	vm.stack[vm.sp] = vm.pc
	vm.sp++

	// jump to address
	vm.pc = o.a

	return nil
}

/// return from subroutine.
///
func (vm *CHIP_8) ret(operands) error {
	if vm.sp == 0 {
		return ErrStackUnderflow
	}

	vm.sp--
	vm.pc = vm.stack[vm.sp]

	return nil
}

/// jump to address.
///
func (vm *CHIP_8) jump(o operands) error {
	vm.pc = o.a
	return nil
}

/// jump to address + v0.
///
func (vm *CHIP_8) jumpV0(o operands) error {
	vm.pc = o.a + uint16(vm.v[0])
	return nil
}

/// skip the next instruction when cond holds.
///
func (vm *CHIP_8) skipWhen(cond bool) error {
	if cond {
		vm.pc += 2
	}
	return nil
}

/// skip next instruction if vx == n.
///
func (vm *CHIP_8) skipIf(o operands) error {
	return vm.skipWhen(vm.v[o.x] == o.b)
}

/// skip next instruction if vx != n.
///
func (vm *CHIP_8) skipIfNot(o operands) error {
	return vm.skipWhen(vm.v[o.x] != o.b)
}

/// skip next instruction if vx == vy.
///
func (vm *CHIP_8) skipIfXY(o operands) error {
	return vm.skipWhen(vm.v[o.x] == vm.v[o.y])
}

/// skip next instruction if vx != vy.
///
func (vm *CHIP_8) skipIfNotXY(o operands) error {
	return vm.skipWhen(vm.v[o.x] != vm.v[o.y])
}

/// key returns the latch for the key number held in vx.
///
func (vm *CHIP_8) key(x uint) (bool, error) {
	k := int(vm.v[x])
	if k >= len(vm.keys) {
		return false, &KeyError{Key: k}
	}
	return vm.keys[k], nil
}

/// skip next instruction if key(vx) is pressed.
///
func (vm *CHIP_8) skipIfPressed(o operands) error {
	down, err := vm.key(o.x)
	if err != nil {
		return err
	}
	return vm.skipWhen(down)
}

/// skip next instruction if key(vx) is not pressed.
///
func (vm *CHIP_8) skipIfNotPressed(o operands) error {
	down, err := vm.key(o.x)
	if err != nil {
		return err
	}
	return vm.skipWhen(!down)
}

/// load n into vx.
///
func (vm *CHIP_8) loadX(o operands) error {
	vm.v[o.x] = o.b
	return nil
}

/// load y into vx.
///
func (vm *CHIP_8) loadXY(o operands) error {
	vm.v[o.x] = vm.v[o.y]
	return nil
}

/// load delay timer into vx.
///
func (vm *CHIP_8) loadXDT(o operands) error {
	vm.v[o.x] = vm.dt
	return nil
}

/// load vx into delay timer.
///
func (vm *CHIP_8) loadDTX(o operands) error {
	vm.dt = vm.v[o.x]
	return nil
}

/// load vx into sound timer.
///
func (vm *CHIP_8) loadSTX(o operands) error {
	vm.setSoundTimer(vm.v[o.x])
	return nil
}

/// load vx with the lowest key pressed. With no key down, rewind to
/// this instruction so the next Step tries again.
///
func (vm *CHIP_8) loadXK(o operands) error {
	for k, down := range vm.keys {
		if down {
			vm.v[o.x] = byte(k)
			vm.state = Running
			return nil
		}
	}

	vm.pc -= 2
	vm.state = WaitingForKey

	return nil
}

/// load address register.
///
func (vm *CHIP_8) loadI(o operands) error {
	vm.i = o.a
	return nil
}

/// load address with BCD of vx.
///
func (vm *CHIP_8) loadB(o operands) error {
	if err := vm.memory.span(int(vm.i), 3); err != nil {
		return err
	}

	n := uint16(vm.v[o.x])
	b := uint16(0)

	// perform 8 shifts
	for i := uint(0); i < 8; i++ {
		if (b>>0)&0xF >= 5 {
			b += 3
		}
		if (b>>4)&0xF >= 5 {
			b += 3 << 4
		}
		if (b>>8)&0xF >= 5 {
			b += 3 << 8
		}

		// apply shift, pull next bit
		b = (b << 1) | (n >> (7 - i) & 1)
	}

	// write to memory
	vm.memory[vm.i+0] = byte(b>>8) & 0xF
	vm.memory[vm.i+1] = byte(b>>4) & 0xF
	vm.memory[vm.i+2] = byte(b>>0) & 0xF

	return nil
}

/// load font sprite for vx into I.
///
func (vm *CHIP_8) loadF(o operands) error {
	vm.i = uint16(vm.v[o.x]&0xF) * GlyphSize
	return nil
}

/// or vx with vy into vx.
///
func (vm *CHIP_8) or(o operands) error {
	vm.v[o.x] |= vm.v[o.y]
	return nil
}

/// and vx with vy into vx.
///
func (vm *CHIP_8) and(o operands) error {
	vm.v[o.x] &= vm.v[o.y]
	return nil
}

/// xor vx with vy into vx.
///
func (vm *CHIP_8) xor(o operands) error {
	vm.v[o.x] ^= vm.v[o.y]
	return nil
}

/// shl vx 1 bit, set carry to MSB of vx before shift.
///
func (vm *CHIP_8) shl(o operands) error {
	msb := vm.v[o.x] >> 7
	vm.v[o.x] <<= 1
	vm.v[0xF] = msb
	return nil
}

/// shr vx 1 bit, set carry to LSB of vx before shift.
///
func (vm *CHIP_8) shr(o operands) error {
	lsb := vm.v[o.x] & 1
	vm.v[o.x] >>= 1
	vm.v[0xF] = lsb
	return nil
}

/// add n to vx.
///
func (vm *CHIP_8) addX(o operands) error {
	vm.v[o.x] += o.b
	return nil
}

/// add vy to vx and set carry.
///
func (vm *CHIP_8) addXY(o operands) error {
	sum := uint(vm.v[o.x]) + uint(vm.v[o.y])

	vm.v[o.x] = byte(sum)
	vm.v[0xF] = flag(sum > 0xFF)

	return nil
}

/// add v to i.
///
func (vm *CHIP_8) addIX(o operands) error {
	vm.i += uint16(vm.v[o.x])
	return nil
}

/// subtract vy from vx, set carry if no borrow.
///
func (vm *CHIP_8) subXY(o operands) error {
	carry := flag(vm.v[o.x] >= vm.v[o.y])

	vm.v[o.x] -= vm.v[o.y]
	vm.v[0xF] = carry

	return nil
}

/// subtract vx from vy and store in vx, set carry if no borrow.
///
func (vm *CHIP_8) subYX(o operands) error {
	carry := flag(vm.v[o.y] >= vm.v[o.x])

	vm.v[o.x] = vm.v[o.y] - vm.v[o.x]
	vm.v[0xF] = carry

	return nil
}

/// load a random number & n into vx.
///
func (vm *CHIP_8) rnd(o operands) error {
	vm.v[o.x] = byte(vm.rng.Uint32()) & o.b
	return nil
}

/// draw a sprite at I to video memory at vx, vy.
///
func (vm *CHIP_8) drw(o operands) error {
	if err := vm.memory.span(int(vm.i), int(o.n)); err != nil {
		return err
	}

	sprite := vm.memory[vm.i : vm.i+uint16(o.n)]

	// set carry flag if any collision occurred
	c := vm.video.xorSprite(int(vm.v[o.x]), int(vm.v[o.y]), sprite)
	vm.v[0xF] = flag(c)

	return nil
}

/// save registers v0..vx to I.
///
func (vm *CHIP_8) saveRegs(o operands) error {
	if err := vm.memory.span(int(vm.i), int(o.x)+1); err != nil {
		return err
	}

	copy(vm.memory[vm.i:], vm.v[:o.x+1])

	return nil
}

/// load registers v0..vx from I.
///
func (vm *CHIP_8) loadRegs(o operands) error {
	if err := vm.memory.span(int(vm.i), int(o.x)+1); err != nil {
		return err
	}

	copy(vm.v[:o.x+1], vm.memory[vm.i:])

	return nil
}

func flag(b bool) byte {
	if b {
		return 1
	}
	return 0
}
