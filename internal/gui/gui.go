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

// Package gui is a windowed frontend that needs no C libraries.
package gui

import (
	"context"
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/massung/chip8vm/internal/render"
	"github.com/massung/chip8vm/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/exp/shiny/driver"
	"golang.org/x/exp/shiny/screen"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/lifecycle"
	"golang.org/x/mobile/event/paint"
	"golang.org/x/mobile/event/size"
)

// KeyMap maps physical keys onto the hex keypad.
var KeyMap = map[key.Code]int{
	key.Code1: 0x1, key.Code2: 0x2, key.Code3: 0x3, key.Code4: 0xC,
	key.CodeQ: 0x4, key.CodeW: 0x5, key.CodeE: 0x6, key.CodeR: 0xD,
	key.CodeA: 0x7, key.CodeS: 0x8, key.CodeD: 0x9, key.CodeF: 0xE,
	key.CodeZ: 0xA, key.CodeX: 0x0, key.CodeC: 0xB, key.CodeV: 0xF,
}

// Window shows a runner's display and feeds it keyboard input.
type Window struct {
	run    *runner.Runner
	logger *log.Logger

	// Scale is the initial size of a CHIP-8 pixel.
	Scale int

	// ShotDir is where screenshots are written.
	ShotDir string
}

// New creates a window for a runner.
func New(r *runner.Runner, logger *log.Logger) *Window {
	return &Window{
		run:     r,
		logger:  logger,
		Scale:   10,
		ShotDir: ".",
	}
}

// Run opens the window and processes its events until it is closed,
// ESC is pressed or the context is done. It must be called from the
// main goroutine.
func (g *Window) Run(ctx context.Context) (err error) {
	driver.Main(func(s screen.Screen) {
		err = g.loop(ctx, s)
	})
	return err
}

func (g *Window) loop(ctx context.Context, s screen.Screen) error {
	w, err := s.NewWindow(&screen.NewWindowOptions{
		Title:  "CHIP-8",
		Width:  chip8.Width * g.Scale,
		Height: chip8.Height * g.Scale,
	})
	if err != nil {
		return fmt.Errorf("creating window: %w", err)
	}
	defer w.Release()

	buf, err := s.NewBuffer(image.Pt(chip8.Width, chip8.Height))
	if err != nil {
		return fmt.Errorf("creating buffer: %w", err)
	}
	defer buf.Release()

	tex, err := s.NewTexture(buf.Size())
	if err != nil {
		return fmt.Errorf("creating texture: %w", err)
	}
	defer tex.Release()

	// stopped before the deferred releases above
	stop := tick(ctx, time.Second/60, w.Send)
	defer stop()

	var sz size.Event
	for {
		switch e := w.NextEvent().(type) {
		case lifecycle.Event:
			if e.To == lifecycle.StageDead {
				return nil
			}

		case size.Event:
			sz = e
			if sz.WidthPx+sz.HeightPx == 0 {
				return nil
			}

		case key.Event:
			if g.key(e) {
				return nil
			}

		case paint.Event, update:
			fb := g.run.Display()
			render.Draw(buf.RGBA(), &fb)

			tex.Upload(image.Point{}, buf, buf.Bounds())
			w.Scale(sz.Bounds(), tex, tex.Bounds(), draw.Src, nil)
			w.Publish()

		case error:
			g.logger.Error("Window event", log.Err(e))
		}
	}
}

// update asks the event loop to repaint.
type update struct{}

// tick sends an update every period until stop is called, or a
// StageDead event once the context is done. The returned stop waits
// for the sending goroutine to exit so nothing is sent afterwards.
func tick(ctx context.Context, period time.Duration, send func(any)) (stop func()) {
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		t := time.NewTicker(period)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				send(update{})
			case <-done:
				return
			case <-ctx.Done():
				send(lifecycle.Event{To: lifecycle.StageDead})
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			wg.Wait()
		})
	}
}

// key handles a key event and returns true if the window should close.
func (g *Window) key(e key.Event) bool {
	if k, ok := KeyMap[e.Code]; ok {
		switch e.Direction {
		case key.DirPress:
			_ = g.run.Keypress(k, true)
		case key.DirRelease:
			_ = g.run.Keypress(k, false)
		}
		return false
	}

	if e.Direction != key.DirPress {
		return false
	}

	switch e.Code {
	case key.CodeEscape:
		return true
	case key.CodeDeleteBackspace:
		if err := g.run.Reboot(); err != nil {
			g.logger.Error("Reboot failed", log.Err(err))
		}
	case key.CodeSpacebar, key.CodeF5:
		g.run.TogglePause()
	case key.CodeF6, key.CodeF10:
		_ = g.run.Step()
	case key.CodeLeftSquareBracket:
		g.run.DecSpeed()
	case key.CodeRightSquareBracket:
		g.run.IncSpeed()
	case key.CodeF12:
		fb := g.run.Display()
		path, err := render.Screenshot(g.ShotDir, &fb, g.Scale)
		if err != nil {
			g.logger.Error("Screenshot failed", log.Err(err))
			break
		}
		g.logger.Info("Saved screenshot", log.String("path", path))
	}

	return false
}
