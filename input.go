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

package main

import (
	"fmt"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

var (
	/// KeyMap is a mapping of scancodes to CHIP-8 keys.
	///
	KeyMap = map[sdl.Scancode]int{
		sdl.SCANCODE_X: 0x0,
		sdl.SCANCODE_1: 0x1,
		sdl.SCANCODE_2: 0x2,
		sdl.SCANCODE_3: 0x3,
		sdl.SCANCODE_Q: 0x4,
		sdl.SCANCODE_W: 0x5,
		sdl.SCANCODE_E: 0x6,
		sdl.SCANCODE_A: 0x7,
		sdl.SCANCODE_S: 0x8,
		sdl.SCANCODE_D: 0x9,
		sdl.SCANCODE_Z: 0xA,
		sdl.SCANCODE_C: 0xB,
		sdl.SCANCODE_4: 0xC,
		sdl.SCANCODE_R: 0xD,
		sdl.SCANCODE_F: 0xE,
		sdl.SCANCODE_V: 0xF,
	}
)

/// processEvents from SDL and map keys to the CHIP-8 VM. Returns false
/// once the emulator should quit.
///
func (e *emulator) processEvents() bool {
	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		switch ev := ev.(type) {
		case *sdl.QuitEvent:
			return false
		case *sdl.DropEvent:
			if ev.Type == sdl.DROPFILE {
				e.open(ev.File)
			}
		case *sdl.KeyboardEvent:
			if key, ok := KeyMap[ev.Keysym.Scancode]; ok {
				if ev.Repeat == 0 {
					_ = e.run.Keypress(key, ev.Type == sdl.KEYDOWN)
				}
				continue
			}

			if ev.Type == sdl.KEYDOWN && !e.command(ev.Keysym) {
				return false
			}
		}
	}

	return true
}

/// command runs an emulator key. Returns false for quit.
///
func (e *emulator) command(key sdl.Keysym) bool {
	switch key.Scancode {
	case sdl.SCANCODE_ESCAPE:
		return false
	case sdl.SCANCODE_BACKSPACE:
		if err := e.run.Reboot(); err != nil {
			e.logger.Error("Reboot failed", log.Err(err))
			break
		}

		// holding control during reset will reboot paused
		if uint32(key.Mod)&uint32(sdl.KMOD_CTRL) != 0 {
			e.run.Pause()
		}
		e.log.Logln("Rebooted")
	case sdl.SCANCODE_UP, sdl.SCANCODE_PAGEUP:
		e.log.ScrollUp()
	case sdl.SCANCODE_DOWN, sdl.SCANCODE_PAGEDOWN:
		e.log.ScrollDown(logLines)
	case sdl.SCANCODE_HOME:
		e.log.Home()
	case sdl.SCANCODE_END:
		e.log.End()
	case sdl.SCANCODE_F2:
		e.open(e.file)
	case sdl.SCANCODE_F3:
		e.openDialog()
	case sdl.SCANCODE_F4:
		e.run.QuickSave()
		e.log.Log("Saved state")
	case sdl.SCANCODE_F8:
		if err := e.run.QuickLoad(); err != nil {
			e.log.Log("Load state:", err.Error())
		} else {
			e.log.Log("Restored state")
		}
	case sdl.SCANCODE_H:
		e.debugHelp()
	case sdl.SCANCODE_M:
		if e.run.Paused() {
			e.debugMemory()
		}
	case sdl.SCANCODE_LEFTBRACKET:
		e.run.DecSpeed()
		e.log.Log(fmt.Sprintf("Speed %d Hz", e.run.Speed()))
	case sdl.SCANCODE_RIGHTBRACKET:
		e.run.IncSpeed()
		e.log.Log(fmt.Sprintf("Speed %d Hz", e.run.Speed()))
	case sdl.SCANCODE_F5, sdl.SCANCODE_SPACE:
		e.run.TogglePause()
	case sdl.SCANCODE_F6, sdl.SCANCODE_F10:
		if err := e.run.Step(); err != nil {
			e.log.Log("Step:", err.Error())
		}
	case sdl.SCANCODE_F7, sdl.SCANCODE_F11:
		if e.run.Paused() {
			e.run.Resume()
		}
	case sdl.SCANCODE_F9:
		if e.run.Paused() {
			var pc uint16
			e.run.View(func(vm *chip8.CHIP_8) { pc = vm.PC() })

			if e.run.ToggleBreakpoint(pc) {
				e.log.Log(fmt.Sprintf("Breakpoint set at #%04X", pc))
			} else {
				e.log.Log(fmt.Sprintf("Breakpoint cleared at #%04X", pc))
			}
		}
	case sdl.SCANCODE_F12:
		e.screenshot()
	}

	return true
}
