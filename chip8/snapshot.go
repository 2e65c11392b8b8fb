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

/// Snapshot is a complete copy of a machine, taken by Save and put back
/// with Restore.
///
type Snapshot struct {
	Memory [MemorySize]byte
	Video  Framebuffer
	PC     uint16
	SP     uint8
	Stack  [16]uint16
	I      uint16
	V      [16]byte
	DT     byte
	ST     byte
	Keys   [16]bool
	State  State
	Cycles uint64
}

/// Save the current state of the CHIP-8 virtual machine.
///
func (vm *CHIP_8) Save() *Snapshot {
	return &Snapshot{
		Memory: vm.memory,
		Video:  vm.video,
		PC:     vm.pc,
		SP:     vm.sp,
		Stack:  vm.stack,
		I:      vm.i,
		V:      vm.v,
		DT:     vm.dt,
		ST:     vm.st,
		Keys:   vm.keys,
		State:  vm.state,
		Cycles: vm.cycles,
	}
}

/// Restore a state previously returned by Save. The sound hook fires if
/// the tone starts or stops as a result.
///
func (vm *CHIP_8) Restore(s *Snapshot) error {
	if int(s.SP) > len(s.Stack) {
		return ErrStackOverflow
	}

	vm.memory = s.Memory
	vm.video = s.Video
	vm.pc = s.PC
	vm.sp = s.SP
	vm.stack = s.Stack
	vm.i = s.I
	vm.v = s.V
	vm.dt = s.DT
	vm.keys = s.Keys
	vm.state = s.State
	vm.cycles = s.Cycles

	vm.setSoundTimer(s.ST)

	return nil
}
