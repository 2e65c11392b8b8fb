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

package runner

import (
	"errors"
	"testing"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

var start = time.Date(2020, 1, 7, 2, 16, 11, 0, time.UTC)

func program(words ...uint16) []byte {
	b := make([]byte, 0, len(words)*2)
	for _, w := range words {
		b = append(b, byte(w>>8), byte(w))
	}
	return b
}

func newTestRunner(t *testing.T, cfg Config, words ...uint16) *Runner {
	t.Helper()
	r := New(log.NewTestLogger(t), cfg)
	r.now = func() time.Time { return start }
	assert.NoError(t, r.Load(program(words...)))
	return r
}

func after(d time.Duration) time.Time {
	return start.Add(d)
}

func cycles(r *Runner) uint64 {
	var n uint64
	r.View(func(vm *chip8.CHIP_8) { n = vm.Cycles() })
	return n
}

func reg(r *Runner, x int) byte {
	var b byte
	r.View(func(vm *chip8.CHIP_8) { b = vm.V(x) })
	return b
}

func TestProcessPacing(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x1200)

	assert.NoError(t, r.Process(after(100*time.Millisecond)))
	assert.Equal(t, uint64(50), cycles(r))

	// nothing new is due
	assert.NoError(t, r.Process(after(101*time.Millisecond)))
	assert.Equal(t, uint64(50), cycles(r))

	assert.NoError(t, r.Process(after(time.Second)))
	assert.Equal(t, uint64(500), cycles(r))
}

func TestProcessTimers(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x603C, 0xF015, 0x1204)

	assert.NoError(t, r.Process(after(500*time.Millisecond)))

	var dt byte
	r.View(func(vm *chip8.CHIP_8) { dt = vm.DelayTimer() })
	assert.Equal(t, byte(30), dt)
}

func TestPause(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x1200)

	r.Pause()
	assert.True(t, r.Paused())
	assert.NoError(t, r.Process(after(time.Second)))
	assert.Equal(t, uint64(0), cycles(r))

	r.Resume()
	assert.False(t, r.Paused())
	assert.NoError(t, r.Process(after(time.Second+10*time.Millisecond)))
	assert.Equal(t, uint64(5), cycles(r))

	r.TogglePause()
	assert.True(t, r.Paused())
}

func TestStep(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500, Paused: true}, 0x6001, 0x6102, 0x1204)

	assert.NoError(t, r.Process(after(100*time.Millisecond)))
	assert.Equal(t, uint64(0), cycles(r))

	assert.NoError(t, r.Step())
	assert.Equal(t, byte(1), reg(r, 0))
	assert.Equal(t, byte(0), reg(r, 1))

	assert.NoError(t, r.Step())
	assert.Equal(t, byte(2), reg(r, 1))
}

func TestBreakpoint(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x6001, 0x6102, 0x6203, 0x1206)

	assert.True(t, r.ToggleBreakpoint(0x204))
	assert.True(t, r.Breakpoint(0x204))
	assert.Equal(t, []uint16{0x204}, r.Breakpoints())

	assert.NoError(t, r.Process(after(100*time.Millisecond)))
	assert.True(t, r.Paused())
	assert.Equal(t, byte(2), reg(r, 1))
	assert.Equal(t, byte(0), reg(r, 2))

	var pc uint16
	r.View(func(vm *chip8.CHIP_8) { pc = vm.PC() })
	assert.Equal(t, uint16(0x204), pc)

	r.Resume()
	assert.NoError(t, r.Process(after(200*time.Millisecond)))
	assert.False(t, r.Paused())
	assert.Equal(t, byte(3), reg(r, 2))

	assert.False(t, r.ToggleBreakpoint(0x204))
	assert.False(t, r.Breakpoint(0x204))
}

func TestHalt(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x6001, 0x0000)

	err := r.Process(after(100 * time.Millisecond))
	assert.True(t, errors.Is(err, chip8.ErrUnimplementedOpcode))
	assert.True(t, errors.Is(r.Halted(), chip8.ErrUnimplementedOpcode))
	assert.True(t, r.Paused())

	// stays halted
	r.Resume()
	assert.True(t, r.Paused())
	assert.True(t, errors.Is(r.Step(), chip8.ErrUnimplementedOpcode))
	assert.NoError(t, r.Process(after(200*time.Millisecond)))

	assert.NoError(t, r.Reboot())
	assert.NoError(t, r.Halted())
	assert.False(t, r.Paused())
	assert.Equal(t, byte(0), reg(r, 0))
}

func TestHaltHint(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x6001, 0x0000)
	assert.True(t, r.Process(after(100*time.Millisecond)) != nil)
	assert.True(t, haltHint(r.Halted()) != "")

	// other faults get no hint
	r = newTestRunner(t, Config{Speed: 500}, 0x00EE)
	assert.True(t, r.Process(after(100*time.Millisecond)) != nil)
	assert.Equal(t, "", haltHint(r.Halted()))
	assert.Equal(t, "", haltHint(nil))
}

func TestWaitForKey(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0xF00A, 0x1202)

	assert.NoError(t, r.Process(after(100*time.Millisecond)))
	assert.Equal(t, uint64(1), cycles(r))

	var waiting bool
	r.View(func(vm *chip8.CHIP_8) { waiting = vm.Waiting() })
	assert.True(t, waiting)

	assert.NoError(t, r.Keypress(5, true))
	assert.NoError(t, r.Process(after(102*time.Millisecond)))
	assert.Equal(t, byte(5), reg(r, 0))

	r.View(func(vm *chip8.CHIP_8) { waiting = vm.Waiting() })
	assert.False(t, waiting)

	assert.True(t, errors.Is(r.Keypress(16, true), chip8.ErrInvalidKey))
}

func TestQuickSave(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x6001, 0x1202)

	assert.True(t, errors.Is(r.QuickLoad(), ErrNoSave))

	assert.NoError(t, r.Process(after(10*time.Millisecond)))
	r.QuickSave()

	assert.NoError(t, r.Reboot())
	assert.Equal(t, byte(0), reg(r, 0))

	assert.NoError(t, r.QuickLoad())
	assert.Equal(t, byte(1), reg(r, 0))
}

func TestSpeed(t *testing.T) {
	r := newTestRunner(t, Config{}, 0x1200)
	assert.Equal(t, DefaultSpeed, r.Speed())

	r.IncSpeed()
	assert.Equal(t, DefaultSpeed+100, r.Speed())
	r.DecSpeed()
	r.DecSpeed()
	assert.Equal(t, DefaultSpeed-100, r.Speed())

	r.SetSpeed(10)
	assert.Equal(t, MinSpeed, r.Speed())
	r.SetSpeed(1 << 20)
	assert.Equal(t, MaxSpeed, r.Speed())
}

func TestLoadTooLarge(t *testing.T) {
	r := newTestRunner(t, Config{}, 0x6001, 0x1202)

	err := r.Load(make([]byte, chip8.MaxRomSize+1))
	assert.True(t, errors.Is(err, chip8.ErrRomTooLarge))

	// the previous program is untouched
	assert.NoError(t, r.Reboot())
	assert.NoError(t, r.Process(after(10*time.Millisecond)))
	assert.Equal(t, byte(1), reg(r, 0))
}

func TestSound(t *testing.T) {
	r := newTestRunner(t, Config{Speed: 500}, 0x6005, 0xF018, 0x1204)

	var calls []bool
	r.OnSound(func(on bool) { calls = append(calls, on) })

	assert.NoError(t, r.Process(after(10*time.Millisecond)))
	assert.True(t, r.Beeping())

	assert.NoError(t, r.Process(after(200*time.Millisecond)))
	assert.False(t, r.Beeping())
	assert.Equal(t, []bool{true, false}, calls)
}
