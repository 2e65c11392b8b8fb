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

// Package runner paces a CHIP-8 virtual machine in real time and adds
// the debugger controls the frontends share: pause, single step,
// breakpoints, speed and a quick save slot.
package runner

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
)

const (
	// DefaultSpeed is about how many instructions per second the
	// original RCA 1802 interpreter managed.
	DefaultSpeed = 500

	MinSpeed = 100
	MaxSpeed = 5000

	// TimerRate is the frequency of the delay and sound timers.
	TimerRate = 60
)

// ErrNoSave is returned by QuickLoad before anything was saved.
var ErrNoSave = errors.New("no saved state")

// Config holds the settings the runner is created with.
type Config struct {
	Speed  int
	Seed   uint64
	Paused bool
	Trace  bool
}

// Runner owns a virtual machine and guards it with a mutex, so the
// frontend's event loop and the emulation loop can run on different
// goroutines.
type Runner struct {
	mu     sync.Mutex
	vm     *chip8.CHIP_8
	logger *log.Logger
	now    func() time.Time

	rom []byte

	// pacing; cycles and ticks count from clock
	speed  int
	clock  time.Time
	cycles int64
	ticks  int64

	paused bool
	halted error

	breakpoints map[uint16]bool
	resume      bool

	saved   *chip8.Snapshot
	beeping bool
	onSound func(bool)
}

// New creates a runner and the machine it drives.
func New(logger *log.Logger, cfg Config) *Runner {
	r := &Runner{
		logger:      logger,
		now:         time.Now,
		speed:       clampSpeed(cfg.Speed),
		paused:      cfg.Paused,
		breakpoints: make(map[uint16]bool),
	}

	opts := []chip8.Option{chip8.WithSoundHook(r.sound)}
	if cfg.Seed != 0 {
		opts = append(opts, chip8.WithSeed(cfg.Seed))
	}
	if cfg.Trace {
		opts = append(opts, chip8.WithTrace(logger))
	}
	r.vm = chip8.New(opts...)

	r.restartClock()
	return r
}

func clampSpeed(hz int) int {
	switch {
	case hz <= 0:
		return DefaultSpeed
	case hz < MinSpeed:
		return MinSpeed
	case hz > MaxSpeed:
		return MaxSpeed
	}
	return hz
}

// restartClock must be called with the lock held.
func (r *Runner) restartClock() {
	r.clock = r.now()
	r.cycles = 0
	r.ticks = 0
}

// sound is the machine's sound hook; called with the lock held.
func (r *Runner) sound(on bool) {
	r.beeping = on
	if r.onSound != nil {
		r.onSound(on)
	}
}

// OnSound registers a function called when the tone starts or stops.
// It runs with the runner locked and must not call back into it.
func (r *Runner) OnSound(f func(on bool)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.onSound = f
}

// Beeping is true while the sound timer is running.
func (r *Runner) Beeping() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.beeping
}

// Load resets the machine and loads a new program. The program is kept
// for Reboot.
func (r *Runner) Load(program []byte) error {
	if len(program) > chip8.MaxRomSize {
		return &chip8.RomSizeError{Size: len(program), Max: chip8.MaxRomSize}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.vm.Reset()
	if err := r.vm.Load(program); err != nil {
		return err
	}

	r.rom = append(r.rom[:0], program...)

	// a halted machine runs again once reloaded
	if r.halted != nil {
		r.paused = false
	}
	r.halted = nil
	r.resume = false
	r.restartClock()

	r.logger.Info("Loaded ROM", log.Int("size", len(program)))
	return nil
}

// Reboot resets the machine and reloads the last program.
func (r *Runner) Reboot() error {
	r.mu.Lock()
	program := append([]byte(nil), r.rom...)
	r.mu.Unlock()

	return r.Load(program)
}

// Process executes every instruction and timer tick that should have
// happened by now. While paused, halted or waiting for a key the clock
// keeps moving so there is no burst of catch up afterwards.
func (r *Runner) Process(now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	elapsed := now.Sub(r.clock)
	if elapsed < 0 {
		return nil
	}

	cpuPeriod := time.Second / time.Duration(r.speed)
	timerPeriod := time.Second / TimerRate

	due := int64(elapsed / cpuPeriod)
	ticks := int64(elapsed / timerPeriod)

	if r.paused || r.halted != nil {
		r.cycles = due
		r.ticks = ticks
		return nil
	}

	for r.cycles < due {
		// timers tick in step with the instructions
		r.tickTo(int64(time.Duration(r.cycles) * cpuPeriod / timerPeriod))

		pc := r.vm.PC()
		if r.breakpoints[pc] && !r.resume {
			r.paused = true
			r.cycles = due
			r.logger.Info("Breakpoint", log.Hex("pc", pc))
			break
		}
		r.resume = false

		if err := r.step(); err != nil {
			r.cycles = due
			r.ticks = ticks
			return err
		}
		r.cycles++

		// if waiting for a key, catch up
		if r.vm.Waiting() {
			r.cycles = due
		}
	}

	r.tickTo(ticks)
	return nil
}

func (r *Runner) tickTo(ticks int64) {
	for r.ticks < ticks {
		r.vm.TickTimer()
		r.ticks++
	}
}

// step executes one instruction and halts the runner on a fault.
func (r *Runner) step() error {
	if err := r.vm.Step(); err != nil {
		r.halted = err
		r.paused = true
		if hint := haltHint(err); hint != "" {
			r.logger.Error("Halted", log.Err(err), log.String("hint", hint))
		} else {
			r.logger.Error("Halted", log.Err(err))
		}
		return err
	}
	return nil
}

// haltHint explains common causes of a fault, or returns "".
func haltHint(err error) string {
	var oe *chip8.OpcodeError
	if errors.As(err, &oe) && oe.Opcode == 0x0000 {
		return "zero word, execution probably ran off the end of the program"
	}
	return ""
}

// Run calls Process every millisecond until the context is done.
func (r *Runner) Run(ctx context.Context) {
	t := time.NewTicker(time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			// faults are logged and halt the runner
			_ = r.Process(now)
		}
	}
}

// Step executes a single instruction while paused.
func (r *Runner) Step() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.paused {
		return nil
	}
	if r.halted != nil {
		return r.halted
	}

	r.resume = false
	return r.step()
}

// Paused reports whether emulation is paused.
func (r *Runner) Paused() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.paused
}

// Pause stops executing instructions.
func (r *Runner) Pause() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paused = true
}

// Resume continues after a pause. A breakpoint at the current PC is
// stepped over. A halted machine stays paused until it's reloaded.
func (r *Runner) Resume() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.halted != nil {
		return
	}
	r.paused = false
	r.resume = true
}

// TogglePause pauses or resumes.
func (r *Runner) TogglePause() {
	if r.Paused() {
		r.Resume()
	} else {
		r.Pause()
	}
}

// Halted returns the fault that stopped the machine, if any.
func (r *Runner) Halted() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.halted
}

// ToggleBreakpoint sets or clears a breakpoint and returns whether it
// is now set.
func (r *Runner) ToggleBreakpoint(addr uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.breakpoints[addr] {
		delete(r.breakpoints, addr)
		return false
	}
	r.breakpoints[addr] = true
	return true
}

// Breakpoint reports whether a breakpoint is set at addr.
func (r *Runner) Breakpoint(addr uint16) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.breakpoints[addr]
}

// Breakpoints returns the set breakpoint addresses in ascending order.
func (r *Runner) Breakpoints() []uint16 {
	r.mu.Lock()
	defer r.mu.Unlock()

	addrs := make([]uint16, 0, len(r.breakpoints))
	for addr := range r.breakpoints {
		addrs = append(addrs, addr)
	}
	slices.Sort(addrs)
	return addrs
}

// Speed returns the instructions executed per second.
func (r *Runner) Speed() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// SetSpeed changes the instructions executed per second, clamped to
// MinSpeed..MaxSpeed.
func (r *Runner) SetSpeed(hz int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.speed = clampSpeed(hz)
	r.restartClock()

	r.logger.Debug("Speed", log.Int("hz", r.speed))
}

// IncSpeed speeds up emulation by 100 instructions per second.
func (r *Runner) IncSpeed() {
	r.SetSpeed(r.Speed() + 100)
}

// DecSpeed slows down emulation by 100 instructions per second.
func (r *Runner) DecSpeed() {
	r.SetSpeed(r.Speed() - 100)
}

// Keypress forwards a key change to the machine.
func (r *Runner) Keypress(key int, pressed bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vm.Keypress(key, pressed)
}

// QuickSave keeps a snapshot of the machine.
func (r *Runner) QuickSave() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.saved = r.vm.Save()
	r.logger.Info("Saved state", log.Hex("pc", r.saved.PC))
}

// QuickLoad restores the snapshot taken by QuickSave.
func (r *Runner) QuickLoad() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.saved == nil {
		return ErrNoSave
	}
	if err := r.vm.Restore(r.saved); err != nil {
		return err
	}

	r.halted = nil
	r.resume = true
	r.logger.Info("Restored state", log.Hex("pc", r.saved.PC))
	return nil
}

// Display returns a copy of the machine's video memory.
func (r *Runner) Display() chip8.Framebuffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.vm.Display()
}

// View calls f with the machine locked. f must only read from it.
func (r *Runner) View(f func(vm *chip8.CHIP_8)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f(r.vm)
}
