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
	"math/rand/v2"
	"time"

	"github.com/retroenv/retrogolib/log"
)

/// State of the executor. A machine is Running unless it is parked on
/// an LD VX, K instruction waiting for a key to be pressed.
///
type State int

const (
	Running State = iota
	WaitingForKey
)

func (s State) String() string {
	if s == WaitingForKey {
		return "waiting for key"
	}
	return "running"
}

/// Entropy is the random source used by RND. Both *math/rand.Rand and
/// *math/rand/v2.Rand satisfy it.
///
type Entropy interface {
	Uint32() uint32
}

/// Option configures a new CHIP-8 virtual machine.
///
type Option func(vm *CHIP_8)

/// WithEntropy sets the random source used by RND.
///
func WithEntropy(rng Entropy) Option {
	return func(vm *CHIP_8) {
		vm.rng = rng
	}
}

/// WithSeed makes RND reproducible by seeding a PCG source.
///
func WithSeed(seed uint64) Option {
	return WithEntropy(rand.New(rand.NewPCG(seed, seed^0x5EED)))
}

/// WithSoundHook installs a function called with true when the sound
/// timer starts and false when it runs out (or is cleared).
///
func WithSoundHook(hook func(playing bool)) Option {
	return func(vm *CHIP_8) {
		vm.sound = hook
	}
}

/// WithTrace logs every executed instruction at debug level.
///
func WithTrace(logger *log.Logger) Option {
	return func(vm *CHIP_8) {
		vm.trace = logger
	}
}

/// CHIP_8 virtual machine emulator.
///
type CHIP_8 struct {
	/// Memory addressable by CHIP-8. The first 512 bytes are reserved
	/// for the font sprites.
	///
	memory memory

	/// Video memory for CHIP-8 (64x32 pixels).
	///
	video Framebuffer

	/// pc is the program counter. All programs begin at 0x200.
	///
	pc uint16

	/// sp is the number of return addresses on the stack.
	///
	sp uint8

	/// stack of return addresses. It isn't allowed to be more than 16
	/// cells deep.
	///
	stack [16]uint16

	/// i is the address register.
	///
	i uint16

	/// v are the 16 virtual registers.
	///
	v [16]byte

	/// dt and st are the delay and sound timers, decremented by TickTimer.
	///
	dt, st byte

	/// keys hold the current state for the 16-key pad keys.
	///
	keys [16]bool

	/// state is WaitingForKey while parked on LD VX, K.
	///
	state State

	/// cycles is how many instructions have been executed.
	///
	cycles uint64

	rng   Entropy
	sound func(bool)
	trace *log.Logger
}

/// New creates a CHIP-8 virtual machine with the font burned in and no
/// program loaded.
///
func New(opts ...Option) *CHIP_8 {
	vm := &CHIP_8{}

	for _, opt := range opts {
		opt(vm)
	}

	if vm.rng == nil {
		seed := uint64(time.Now().UnixNano())
		vm.rng = rand.New(rand.NewPCG(seed, seed>>32))
	}

	vm.Reset()

	return vm
}

/// LoadROM creates a new CHIP-8 virtual machine and loads a program.
///
func LoadROM(program []byte, opts ...Option) (*CHIP_8, error) {
	vm := New(opts...)

	if err := vm.Load(program); err != nil {
		return nil, err
	}

	return vm, nil
}

/// Reset every part of the machine back to power on. The font is
/// burned back in and any loaded program is erased.
///
func (vm *CHIP_8) Reset() {
	vm.memory.burnFont()
	vm.video.clear()

	// reset program counter and stack pointer
	vm.pc = ProgramStart
	vm.sp = 0
	vm.stack = [16]uint16{}

	// reset address and virtual registers
	vm.i = 0
	vm.v = [16]byte{}

	// stop the timers
	vm.dt = 0
	vm.setSoundTimer(0)

	vm.keys = [16]bool{}
	vm.state = Running
	vm.cycles = 0
}

/// Load copies a program into memory at 0x200. Program memory beyond
/// the end of the ROM is cleared, PC is set to 0x200 and any pending
/// wait for a key is abandoned.
///
func (vm *CHIP_8) Load(program []byte) error {
	if len(program) > MaxRomSize {
		return &RomSizeError{Size: len(program), Max: MaxRomSize}
	}

	n := copy(vm.memory[ProgramStart:], program)

	// clear what's left of any previous program
	clear(vm.memory[ProgramStart+n:])

	vm.pc = ProgramStart
	vm.state = Running

	return nil
}

/// Keypress sets or clears one of the 16 key latches.
///
func (vm *CHIP_8) Keypress(key int, pressed bool) error {
	if key < 0 || key >= len(vm.keys) {
		return &KeyError{Key: key}
	}

	vm.keys[key] = pressed

	return nil
}

/// TickTimer decrements the delay and sound timers. Call it at 60 Hz.
///
func (vm *CHIP_8) TickTimer() {
	if vm.dt > 0 {
		vm.dt--
	}

	if vm.st > 0 {
		vm.setSoundTimer(vm.st - 1)
	}
}

/// setSoundTimer updates the sound timer and notifies the sound hook
/// when the tone starts or stops.
///
func (vm *CHIP_8) setSoundTimer(n byte) {
	was := vm.st > 0
	vm.st = n

	if vm.sound != nil && was != (n > 0) {
		vm.sound(n > 0)
	}
}

/// Display returns a copy of the video memory.
///
func (vm *CHIP_8) Display() Framebuffer {
	return vm.video
}

/// State returns whether the machine is running or parked waiting for
/// a key.
///
func (vm *CHIP_8) State() State {
	return vm.state
}

/// Waiting is true while LD VX, K is blocked on the keypad.
///
func (vm *CHIP_8) Waiting() bool {
	return vm.state == WaitingForKey
}

/// SoundActive is true while the sound timer is counting down.
///
func (vm *CHIP_8) SoundActive() bool {
	return vm.st > 0
}

/// V returns virtual register x.
///
func (vm *CHIP_8) V(x int) byte {
	return vm.v[x&0xF]
}

/// I returns the address register.
///
func (vm *CHIP_8) I() uint16 {
	return vm.i
}

/// PC returns the program counter.
///
func (vm *CHIP_8) PC() uint16 {
	return vm.pc
}

/// SP returns the number of return addresses on the stack.
///
func (vm *CHIP_8) SP() int {
	return int(vm.sp)
}

/// Stack returns the return addresses on the stack, oldest first.
///
func (vm *CHIP_8) Stack() []uint16 {
	return append([]uint16(nil), vm.stack[:vm.sp]...)
}

/// DelayTimer returns the current delay timer value.
///
func (vm *CHIP_8) DelayTimer() byte {
	return vm.dt
}

/// SoundTimer returns the current sound timer value.
///
func (vm *CHIP_8) SoundTimer() byte {
	return vm.st
}

/// Keys returns the key latches.
///
func (vm *CHIP_8) Keys() [16]bool {
	return vm.keys
}

/// Cycles returns the number of instructions executed since Reset.
///
func (vm *CHIP_8) Cycles() uint64 {
	return vm.cycles
}

/// Peek reads a byte of memory. Addresses past the end read as 0.
///
func (vm *CHIP_8) Peek(addr uint16) byte {
	if int(addr) >= len(vm.memory) {
		return 0
	}
	return vm.memory[addr]
}
