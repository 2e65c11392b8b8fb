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
	"io"
	"os"
	"slices"
	"strings"

	"github.com/massung/chip8vm/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

/// Redirect STDOUT and STDERR to a pipe so their text can be shown in
/// the debugger. The returned function puts them back.
///
func captureOutput() (io.Reader, func(), error) {
	r, w, err := os.Pipe()
	if err != nil {
		return nil, nil, fmt.Errorf("capturing output: %w", err)
	}

	stdout, stderr := os.Stdout, os.Stderr
	os.Stdout, os.Stderr = w, w

	restore := func() {
		os.Stdout, os.Stderr = stdout, stderr
		_ = w.Close()
	}

	return r, restore, nil
}

/// Show the HELP text in the log.
///
func (e *emulator) debugHelp() {
	e.log.Logln("Virtual keys:")
	e.log.Log("  1-2-3-4")
	e.log.Log("  Q-W-E-R")
	e.log.Log("  A-S-D-F")
	e.log.Log("  Z-X-C-V")
	e.log.Log("")
	e.log.Log("Emulation keys:")
	e.log.Log("  ESC      - Quit")
	e.log.Log("  BS       - Reboot (+CTRL paused)")
	e.log.Log("  Pg Up/Dn - Scroll log")
	e.log.Log("  H        - Help")
	e.log.Log("  M        - Dump memory at I")
	e.log.Log("  [ ]      - Speed down/up")
	e.log.Log("  F2       - Reload ROM")
	e.log.Log("  F3       - Open ROM")
	e.log.Log("  F4/F8    - Quick save/load")
	e.log.Log("  F5       - Pause")
	e.log.Log("  F6       - Step")
	e.log.Log("  F7       - Continue past breakpoint")
	e.log.Log("  F9       - Toggle breakpoint")
	e.log.Log("  F12      - Screenshot")
}

/// debugAssembly renders the disassembled instructions around
/// the CHIP-8 program counter.
///
func (e *emulator) debugAssembly(vm *chip8.CHIP_8, paused bool, breakpoints []uint16, x, y int) {
	pc := vm.PC()

	// keep the window still until PC leaves it
	if pc < e.address+2 || pc >= e.address+2*asmLines || (pc^e.address)&1 == 1 {
		e.address = pc - 2
		if pc < 2 {
			e.address = 0
		}
	}

	for i := uint16(0); i < asmLines; i++ {
		addr := e.address + i*2
		line := y + int(i)*lineHeight

		switch {
		case addr == pc:
			if paused {
				e.renderer.SetDrawColor(176, 32, 57, 255)
			} else {
				e.renderer.SetDrawColor(57, 102, 176, 255)
			}

			// highlight the current instruction
			e.renderer.FillRect(&sdl.Rect{
				X: int32(x - 2),
				Y: int32(line),
				W: 240,
				H: lineHeight,
			})
		case slices.Contains(breakpoints, addr):
			e.drawText("*", x-2, line)
		}

		e.drawText(vm.Disassemble(addr), x+6, line)
	}
}

/// Show the current value of all the CHIP-8 registers.
///
func (e *emulator) debugRegisters(vm *chip8.CHIP_8, x, y int) {
	for i := 0; i < 16; i++ {
		e.drawText(fmt.Sprintf("V%X - #%02X", i, vm.V(i)), x, y+i*lineHeight)
	}

	// shift over for the other registers
	x += 98

	e.drawText(fmt.Sprintf("PC - #%04X", vm.PC()), x, y)
	e.drawText(fmt.Sprintf("SP - #%02X", vm.SP()), x, y+lineHeight)
	e.drawText(fmt.Sprintf("I  - #%04X", vm.I()), x, y+3*lineHeight)
	e.drawText(fmt.Sprintf("DT - #%02X", vm.DelayTimer()), x, y+5*lineHeight)
	e.drawText(fmt.Sprintf("ST - #%02X", vm.SoundTimer()), x, y+6*lineHeight)

	// call stack, most recent first
	stack := vm.Stack()
	for i := 0; i < len(stack) && i < 6; i++ {
		e.drawText(fmt.Sprintf("   > #%04X", stack[len(stack)-1-i]), x, y+(8+i)*lineHeight)
	}

	if vm.Waiting() {
		e.drawText("WAIT KEY", x, y+15*lineHeight)
	}
}

/// Show the current log text.
///
func (e *emulator) debugLog(x, y, cols int) {
	for _, s := range e.log.Window(logLines) {
		if len(s) > cols {
			s = s[:cols-3] + "..."
		}

		e.drawText(s, x, y)
		y += lineHeight
	}
}

/// Dump the memory at I to the log.
///
func (e *emulator) debugMemory() {
	e.run.View(func(vm *chip8.CHIP_8) {
		i := vm.I()

		e.log.Logln(fmt.Sprintf("Memory at I (#%04X):", i))

		for row := 0; row < 8; row++ {
			var b strings.Builder

			addr := int(i) + row*8
			if addr >= chip8.MemorySize {
				break
			}

			fmt.Fprintf(&b, "%04X -", addr)
			for col := 0; col < 8 && addr+col < chip8.MemorySize; col++ {
				fmt.Fprintf(&b, " %02X", vm.Peek(uint16(addr+col)))
			}

			e.log.Log(b.String())
		}
	})
}
