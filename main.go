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

// Command chip8vm runs CHIP-8 programs in an SDL window with a built-in
// debugger, in the terminal, or in a pure-Go window.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"

	"github.com/massung/chip8vm/internal/gui"
	"github.com/massung/chip8vm/internal/rom"
	"github.com/massung/chip8vm/internal/runner"
	"github.com/massung/chip8vm/internal/tui"
	"github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

type optionFlags struct {
	ui    string
	hz    int
	seed  uint64
	shots string

	watch  bool
	paused bool
	debug  bool
	quiet  bool

	file string
}

func init() {
	runtime.LockOSThread()
}

func main() {
	options := readArguments()

	if err := run(app.Context(), options); err != nil {
		fmt.Fprintln(os.Stderr, fmt.Errorf("chip8vm: %w", err))
		os.Exit(1)
	}
}

func readArguments() optionFlags {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	options := optionFlags{}

	flags.StringVar(&options.ui, "ui", "sdl", "user interface to run (sdl/tui/shiny)")
	flags.IntVar(&options.hz, "hz", runner.DefaultSpeed, "instructions executed per second")
	flags.Uint64Var(&options.seed, "seed", 0, "fixed seed for RND, 0 seeds from the clock")
	flags.StringVar(&options.shots, "shots", ".", "directory screenshots are saved to")
	flags.BoolVar(&options.watch, "watch", false, "reload the ROM whenever the file changes")
	flags.BoolVar(&options.paused, "paused", false, "start with emulation paused")
	flags.BoolVar(&options.debug, "debug", false, "enable debug logging and instruction tracing")
	flags.BoolVar(&options.quiet, "q", false, "only log errors")

	err := flags.Parse(os.Args[1:])
	args := flags.Args()

	if err != nil || len(args) > 1 || !validUI(options.ui) {
		printBanner(options)
		fmt.Printf("usage: chip8vm [options] [rom]\n\n")
		flags.PrintDefaults()
		os.Exit(1)
	}
	if len(args) == 1 {
		options.file = args[0]
	}

	return options
}

func validUI(ui string) bool {
	switch ui {
	case "sdl", "tui", "shiny":
		return true
	}
	return false
}

func printBanner(options optionFlags) {
	if !options.quiet {
		fmt.Println("[----------------------------]")
		fmt.Println("[ chip8vm - CHIP-8 emulator  ]")
		fmt.Printf("[----------------------------]\n\n")
		fmt.Printf("version: %s\n\n", buildinfo.Version(version, commit, date))
	}
}

func newLogger(debug, quiet bool) *log.Logger {
	cfg := log.DefaultConfig()
	if debug {
		cfg.Level = log.DebugLevel
	}
	if quiet {
		cfg.Level = log.ErrorLevel
	}
	return log.NewWithConfig(cfg)
}

func run(ctx context.Context, options optionFlags) error {
	if options.ui != "tui" {
		printBanner(options)
	}

	if options.file == "" {
		path, err := rom.Pick()
		if err != nil {
			return err
		}
		options.file = path
	}

	program, err := rom.Load(options.file)
	if err != nil {
		return err
	}

	// the sdl and terminal debuggers show everything written to the
	// console, so it must be captured before the logger exists
	var logs io.Reader
	if options.ui != "shiny" {
		r, restore, err := captureOutput()
		if err != nil {
			return err
		}
		defer restore()
		logs = r
	}

	logger := newLogger(options.debug, options.quiet)

	r := runner.New(logger, runner.Config{
		Speed:  options.hz,
		Seed:   options.seed,
		Paused: options.paused,
		Trace:  options.debug,
	})
	if err := r.Load(program); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	if options.watch {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := rom.Watch(ctx, logger, options.file, func(program []byte) {
				if err := r.Load(program); err != nil {
					logger.Error("Loading ROM failed", log.Err(err))
				}
			})
			if err != nil {
				logger.Error("Watching ROM failed", log.Err(err))
			}
		}()
	}

	// the sdl loop paces the runner itself
	if options.ui != "sdl" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Run(ctx)
		}()
	}

	switch options.ui {
	case "tui":
		u := tui.New(r, logger)
		u.ShotDir = options.shots
		err = u.Run(ctx, logs)
	case "shiny":
		w := gui.New(r, logger)
		w.ShotDir = options.shots
		err = w.Run(ctx)
	default:
		err = runSDL(ctx, &emulator{
			run:     r,
			logger:  logger,
			file:    options.file,
			shotDir: options.shots,
			log:     NewLog(),
		}, logs)
	}

	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
