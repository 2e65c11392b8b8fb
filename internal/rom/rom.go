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

// Package rom reads CHIP-8 program files from disk.
package rom

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/howeyc/fsnotify"
	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/log"
	"github.com/sqweek/dialog"
)

// ErrCancelled is returned by Pick when no file was chosen.
var ErrCancelled = errors.New("no rom selected")

// Extensions are the file types offered by the open dialog.
var Extensions = []string{"ch8", "c8", "rom"}

// Load reads a ROM file, refusing files too large to fit in memory.
func Load(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("reading rom: %s is a directory", path)
	}
	if info.Size() > chip8.MaxRomSize {
		return nil, fmt.Errorf("reading rom '%s': %w", path,
			&chip8.RomSizeError{Size: int(info.Size()), Max: chip8.MaxRomSize})
	}

	program, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rom: %w", err)
	}
	return program, nil
}

// Pick shows the native open file dialog and returns the chosen path.
func Pick() (string, error) {
	path, err := dialog.File().
		Title("Load CHIP-8 ROM").
		Filter("CHIP-8 ROM", Extensions...).
		Filter("All files", "*").
		Load()
	if errors.Is(err, dialog.ErrCancelled) {
		return "", ErrCancelled
	}
	if err != nil {
		return "", fmt.Errorf("open dialog: %w", err)
	}
	return path, nil
}

// settle is how long a file must be quiet before it's reloaded; editors
// and assemblers often write a file in several steps.
const settle = 100 * time.Millisecond

// Watch calls reload with the new contents every time the file at path
// changes, until the context is done.
func Watch(ctx context.Context, logger *log.Logger, path string, reload func(program []byte)) error {
	path = filepath.Clean(path)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer watcher.Close()

	// watch the directory so files replaced by rename are seen
	if err := watcher.Watch(filepath.Dir(path)); err != nil {
		return fmt.Errorf("watching '%s': %w", path, err)
	}

	var changed <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil

		case ev := <-watcher.Event:
			if filepath.Clean(ev.Name) == path && !ev.IsAttrib() && !ev.IsDelete() {
				changed = time.After(settle)
			}

		case <-changed:
			changed = nil

			program, err := Load(path)
			if err != nil {
				logger.Error("Reloading ROM failed", log.Err(err))
				break
			}
			logger.Info("Reloading ROM", log.String("file", filepath.Base(path)))
			reload(program)

		case err := <-watcher.Error:
			logger.Error("Watching ROM failed", log.Err(err))
		}
	}
}
