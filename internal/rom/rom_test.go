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

package rom

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/massung/chip8vm/chip8"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()

	t.Run("ok", func(t *testing.T) {
		path := filepath.Join(dir, "pong.ch8")
		assert.NoError(t, os.WriteFile(path, []byte{0x12, 0x00}, 0o644))

		program, err := Load(path)
		assert.NoError(t, err)
		assert.Equal(t, []byte{0x12, 0x00}, program)
	})

	t.Run("largest", func(t *testing.T) {
		path := filepath.Join(dir, "largest.ch8")
		assert.NoError(t, os.WriteFile(path, make([]byte, chip8.MaxRomSize), 0o644))

		program, err := Load(path)
		assert.NoError(t, err)
		assert.Equal(t, chip8.MaxRomSize, len(program))
	})

	t.Run("too large", func(t *testing.T) {
		path := filepath.Join(dir, "huge.ch8")
		assert.NoError(t, os.WriteFile(path, make([]byte, chip8.MaxRomSize+1), 0o644))

		_, err := Load(path)
		assert.True(t, errors.Is(err, chip8.ErrRomTooLarge))
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Load(filepath.Join(dir, "missing.ch8"))
		assert.True(t, errors.Is(err, os.ErrNotExist))
	})

	t.Run("directory", func(t *testing.T) {
		_, err := Load(dir)
		assert.Error(t, err)
	})
}

func TestWatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "game.ch8")
	assert.NoError(t, os.WriteFile(path, []byte{0x00, 0xE0}, 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan []byte, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, log.NewTestLogger(t), path, func(program []byte) {
			select {
			case reloaded <- program:
			default:
			}
		})
	}()

	// give the watcher time to start before changing the file
	time.Sleep(100 * time.Millisecond)
	assert.NoError(t, os.WriteFile(path, []byte{0x12, 0x00}, 0o644))

	select {
	case program := <-reloaded:
		assert.Equal(t, []byte{0x12, 0x00}, program)
	case <-time.After(5 * time.Second):
		t.Fatal("rom was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Watch did not return")
	}
}
