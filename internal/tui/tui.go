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

// Package tui is a terminal frontend built on tview.
package tui

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/gdamore/tcell/v2"
	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/render"
	"github.com/massung/chip8vm/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"github.com/rivo/tview"
)

// Terminals only report key presses, so a key counts as held until
// it hasn't repeated for this long.
const keyHold = 150 * time.Millisecond

// KeyMap maps the left side of a QWERTY keyboard onto the hex keypad.
var KeyMap = map[rune]int{
	'1': 0x1, '2': 0x2, '3': 0x3, '4': 0xC,
	'q': 0x4, 'w': 0x5, 'e': 0x6, 'r': 0xD,
	'a': 0x7, 's': 0x8, 'd': 0x9, 'f': 0xE,
	'z': 0xA, 'x': 0x0, 'c': 0xB, 'v': 0xF,
}

var (
	onColor  = tcell.NewRGBColor(int32(render.Foreground.R), int32(render.Foreground.G), int32(render.Foreground.B))
	offColor = tcell.NewRGBColor(int32(render.Background.R), int32(render.Background.G), int32(render.Background.B))
)

// UI is the terminal debugger: display, registers, disassembly and log.
type UI struct {
	run    *runner.Runner
	logger *log.Logger

	app     *tview.Application
	display *tview.Box
	regs    *tview.TextView
	disasm  *tview.TextView
	log     *tview.TextView
	status  *tview.TextView

	keys keys

	// directory screenshots are written to
	ShotDir string
}

// New lays out the terminal UI around a runner.
func New(r *runner.Runner, logger *log.Logger) *UI {
	u := &UI{
		run:     r,
		logger:  logger,
		app:     tview.NewApplication(),
		display: tview.NewBox(),
		regs: tview.NewTextView().
			SetWrap(false),
		disasm: tview.NewTextView().
			SetWrap(false).
			SetDynamicColors(true),
		log: tview.NewTextView().
			SetMaxLines(1000).
			SetDynamicColors(true),
		status: tview.NewTextView().
			SetWrap(false),
		ShotDir: ".",
	}

	u.display.SetBorder(true).SetTitle(" CHIP-8 ")
	u.display.SetDrawFunc(func(screen tcell.Screen, x, y, w, h int) (int, int, int, int) {
		fb := u.run.Display()
		drawDisplay(screen, x+1, y+1, &fb)
		return x, y, w, h
	})

	u.regs.SetBorder(true).SetTitle(" Registers ")
	u.disasm.SetBorder(true).SetTitle(" Code ")
	u.log.SetBorder(true).SetTitle(" Log ")
	u.log.SetChangedFunc(func() { u.app.Draw() })
	u.status.SetBackgroundColor(tcell.ColorDarkBlue)

	top := tview.NewFlex().
		AddItem(u.display, chip8.Width+2, 0, false).
		AddItem(u.regs, 24, 0, false).
		AddItem(u.disasm, 0, 1, false)

	rows := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(top, chip8.Height/2+2, 0, false).
		AddItem(u.log, 0, 1, false).
		AddItem(u.status, 1, 0, false)

	u.app.SetRoot(rows, true)
	u.app.SetInputCapture(u.input)

	return u
}

// Run the terminal UI until ESC is pressed or the context is done.
// Lines read from logs are appended to the log panel.
func (u *UI) Run(ctx context.Context, logs io.Reader) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if logs != nil {
		go func() {
			_, _ = io.Copy(tview.ANSIWriter(u.log), logs)
		}()
	}

	go func() {
		t := time.NewTicker(time.Second / 60)
		defer t.Stop()

		for {
			select {
			case <-ctx.Done():
				u.app.Stop()
				return
			case now := <-t.C:
				for _, k := range u.keys.expire(now) {
					_ = u.run.Keypress(k, false)
				}
				u.app.QueueUpdateDraw(u.refresh)
			}
		}
	}()

	if err := u.app.Run(); err != nil {
		return fmt.Errorf("running terminal ui: %w", err)
	}
	return nil
}

func (u *UI) input(ev *tcell.EventKey) *tcell.EventKey {
	switch ev.Key() {
	case tcell.KeyEscape:
		u.app.Stop()
	case tcell.KeyBackspace, tcell.KeyBackspace2:
		if err := u.run.Reboot(); err != nil {
			u.logger.Error("Reboot failed", log.Err(err))
		}
	case tcell.KeyF5:
		u.run.TogglePause()
	case tcell.KeyF6, tcell.KeyF10:
		_ = u.run.Step()
	case tcell.KeyF12:
		u.screenshot()
	case tcell.KeyRune:
		return u.rune(ev)
	default:
		return ev
	}
	return nil
}

func (u *UI) rune(ev *tcell.EventKey) *tcell.EventKey {
	switch c := unicode.ToLower(ev.Rune()); c {
	case ' ':
		u.run.TogglePause()
	case '[':
		u.run.DecSpeed()
	case ']':
		u.run.IncSpeed()
	default:
		k, ok := KeyMap[c]
		if !ok {
			return ev
		}
		if u.keys.press(k, time.Now()) {
			_ = u.run.Keypress(k, true)
		}
	}
	return nil
}

func (u *UI) screenshot() {
	fb := u.run.Display()

	path, err := render.Screenshot(u.ShotDir, &fb, 4)
	if err != nil {
		u.logger.Error("Screenshot failed", log.Err(err))
		return
	}
	u.logger.Info("Saved screenshot", log.String("path", path))
}

// refresh runs on the tview goroutine.
func (u *UI) refresh() {
	bps := u.run.Breakpoints()

	u.run.View(func(vm *chip8.CHIP_8) {
		u.regs.SetText(registers(vm))
		u.disasm.SetText(assembly(vm, bps))
	})
	u.status.SetText(u.statusLine())
}

func (u *UI) statusLine() string {
	state := "running"
	switch {
	case u.run.Halted() != nil:
		state = "HALT: " + u.run.Halted().Error()
	case u.run.Paused():
		state = "paused"
	}
	return fmt.Sprintf(" %d Hz  %s  [F5 pause, F6 step, [ ] speed, F12 shot, ESC quit]", u.run.Speed(), state)
}

func registers(vm *chip8.CHIP_8) string {
	var b strings.Builder

	for i := 0; i < 16; i++ {
		fmt.Fprintf(&b, "V%X #%02X", i, vm.V(i))

		switch i {
		case 0:
			fmt.Fprintf(&b, "   PC #%04X", vm.PC())
		case 1:
			fmt.Fprintf(&b, "   SP #%02X", vm.SP())
		case 3:
			fmt.Fprintf(&b, "   I  #%04X", vm.I())
		case 5:
			fmt.Fprintf(&b, "   DT #%02X", vm.DelayTimer())
		case 6:
			fmt.Fprintf(&b, "   ST #%02X", vm.SoundTimer())
		case 8:
			if vm.Waiting() {
				b.WriteString("   KEY?")
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// assembly shows the instructions following the one before PC,
// highlighting PC and any breakpoints.
func assembly(vm *chip8.CHIP_8, breakpoints []uint16) string {
	var b strings.Builder

	start := vm.PC() - 2
	if vm.PC() < 2 {
		start = 0
	}

	for i := uint16(0); i < 32; i += 2 {
		addr := start + i
		line := tview.Escape(vm.Disassemble(addr))
		if line == "" {
			break
		}

		switch {
		case addr == vm.PC():
			fmt.Fprintf(&b, "[black:yellow]%s[-:-]\n", line)
		case slices.Contains(breakpoints, addr):
			fmt.Fprintf(&b, "[red]%s[-]\n", line)
		default:
			fmt.Fprintln(&b, line)
		}
	}

	return b.String()
}

// drawDisplay renders the framebuffer with half blocks, two pixel rows
// to each terminal row.
func drawDisplay(screen tcell.Screen, x, y int, fb *chip8.Framebuffer) {
	for row := 0; row < chip8.Height/2; row++ {
		for col := 0; col < chip8.Width; col++ {
			style := tcell.StyleDefault.
				Foreground(pixelColor(fb.At(col, row*2))).
				Background(pixelColor(fb.At(col, row*2+1)))

			screen.SetContent(x+col, y+row, '▀', nil, style)
		}
	}
}

func pixelColor(on bool) tcell.Color {
	if on {
		return onColor
	}
	return offColor
}

// keys tracks keypad keys pressed in the terminal.
type keys struct {
	mu   sync.Mutex
	held [16]time.Time
}

// press returns true if the key wasn't already held.
func (k *keys) press(key int, now time.Time) bool {
	k.mu.Lock()
	defer k.mu.Unlock()

	wasHeld := !k.held[key].IsZero()
	k.held[key] = now
	return !wasHeld
}

// expire returns the keys that have stopped repeating.
func (k *keys) expire(now time.Time) []int {
	k.mu.Lock()
	defer k.mu.Unlock()

	var released []int

	for key, t := range k.held {
		if !t.IsZero() && now.Sub(t) >= keyHold {
			k.held[key] = time.Time{}
			released = append(released, key)
		}
	}

	return released
}
