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
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/render"
	"github.com/massung/chip8vm/internal/rom"
	"github.com/massung/chip8vm/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	windowWidth  = 660
	windowHeight = 420

	// size of a CHIP-8 pixel on screen
	pixelScale = 6

	asmLines = 15
	logLines = 16
)

/// emulator is the SDL frontend with its debugger panels.
///
type emulator struct {
	run     *runner.Runner
	logger  *log.Logger
	file    string
	shotDir string
	log     *Logger

	window   *sdl.Window
	renderer *sdl.Renderer
	screen   *sdl.Texture
	font     *sdl.Texture
	beeper   *beeper

	// first address shown in the disassembly
	address uint16
}

/// runSDL opens the window and runs the emulator until the window is
/// closed or the context is done.
///
func runSDL(ctx context.Context, e *emulator, logs io.Reader) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("initializing sdl: %w", err)
	}
	defer sdl.Quit()

	var err error
	if e.window, e.renderer, err = sdl.CreateWindowAndRenderer(windowWidth, windowHeight, uint32(sdl.WINDOW_OPENGL)); err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer e.window.Destroy()
	defer e.renderer.Destroy()

	e.setTitle()

	if err := e.initScreen(); err != nil {
		return err
	}
	defer e.screen.Destroy()

	if err := e.initFont(); err != nil {
		return err
	}
	defer e.font.Destroy()

	// no audio device only means no sound
	if e.beeper, err = openBeeper(); err != nil {
		e.logger.Error("Opening audio failed", log.Err(err))
	} else {
		defer e.beeper.Close()
		e.run.OnSound(e.beeper.Play)
	}

	if logs != nil {
		go e.log.Capture(logs)
	}
	e.debugHelp()

	// the runner catches up on missed cycles, so the clock only has
	// to tick often enough for smooth timing
	clock := time.NewTicker(time.Millisecond)
	video := time.NewTicker(time.Second / 60)
	defer clock.Stop()
	defer video.Stop()

	// loop until window closed or user quit
	for e.processEvents() {
		select {
		case <-ctx.Done():
			return nil
		case <-video.C:
			if e.beeper != nil && e.run.Beeping() {
				e.beeper.Fill()
			}
			e.refresh()
		case now := <-clock.C:
			_ = e.run.Process(now)
		}
	}

	return nil
}

func (e *emulator) setTitle() {
	e.window.SetTitle("CHIP-8 - " + filepath.Base(e.file))
}

/// Create the render target for the CHIP-8 display.
///
func (e *emulator) initScreen() error {
	var err error

	format := uint32(sdl.PIXELFORMAT_ABGR8888)
	if e.screen, err = e.renderer.CreateTexture(format, sdl.TEXTUREACCESS_STREAMING, chip8.Width, chip8.Height); err != nil {
		return fmt.Errorf("creating screen: %w", err)
	}

	return nil
}

/// Redraw the whole window.
///
func (e *emulator) refresh() {
	e.renderer.SetDrawColor(32, 42, 53, 255)
	e.renderer.Clear()

	// frame various portions of the app
	e.frame(8, 8, chip8.Width*pixelScale+4, chip8.Height*pixelScale+4)
	e.frame(404, 8, 248, chip8.Height*pixelScale+4)
	e.frame(8, 212, 200, 200)
	e.frame(216, 212, 436, 200)

	// update the video screen and copy it
	e.refreshScreen()
	e.copyScreen(10, 10, pixelScale)

	paused := e.run.Paused()
	breakpoints := e.run.Breakpoints()

	e.run.View(func(vm *chip8.CHIP_8) {
		e.debugAssembly(vm, paused, breakpoints, 410, 12)
		e.debugRegisters(vm, 14, 216)
	})
	e.debugLog(222, 216, 60)

	if err := e.run.Halted(); err != nil {
		e.drawText("HALTED", 604, 198)
	} else if paused {
		e.drawText("PAUSED", 604, 198)
	}

	// show the new frame
	e.renderer.Present()
}

/// Draw a beveled frame.
///
func (e *emulator) frame(x, y, w, h int32) {
	e.renderer.SetDrawColor(0, 0, 0, 255)
	e.renderer.DrawLine(x, y, x+w, y)
	e.renderer.DrawLine(x, y, x, y+h)

	// highlight
	e.renderer.SetDrawColor(95, 112, 120, 255)
	e.renderer.DrawLine(x+w, y, x+w, y+h)
	e.renderer.DrawLine(x, y+h, x+w, y+h)
}

/// refreshScreen with the CHIP-8 video memory.
///
func (e *emulator) refreshScreen() {
	fb := e.run.Display()
	m := render.Image(&fb)

	if err := e.screen.Update(nil, m.Pix, m.Stride); err != nil {
		e.logger.Error("Updating screen failed", log.Err(err))
	}
}

/// copyScreen to the renderer, scaled up.
///
func (e *emulator) copyScreen(x, y, scale int32) {
	src := sdl.Rect{W: chip8.Width, H: chip8.Height}
	dst := sdl.Rect{X: x, Y: y, W: chip8.Width * scale, H: chip8.Height * scale}

	e.renderer.Copy(e.screen, &src, &dst)
}

/// screenshot saves the display to a PNG file.
///
func (e *emulator) screenshot() {
	fb := e.run.Display()

	path, err := render.Screenshot(e.shotDir, &fb, pixelScale)
	if err != nil {
		e.logger.Error("Screenshot failed", log.Err(err))
		return
	}
	e.log.Log("Saved", path)
}

/// open loads a new ROM file and makes it the current one.
///
func (e *emulator) open(path string) {
	program, err := rom.Load(path)
	if err != nil {
		e.logger.Error("Loading ROM failed", log.Err(err))
		return
	}
	if err := e.run.Load(program); err != nil {
		e.logger.Error("Loading ROM failed", log.Err(err))
		return
	}

	e.file = path
	e.setTitle()
	e.log.Logln("Loaded", filepath.Base(path))
}

/// openDialog asks for a ROM file to open.
///
func (e *emulator) openDialog() {
	path, err := rom.Pick()
	if err != nil {
		if !errors.Is(err, rom.ErrCancelled) {
			e.logger.Error("Open dialog failed", log.Err(err))
		}
		return
	}
	e.open(path)
}
