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

// Package render turns CHIP-8 video memory into images.
package render

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"time"

	"github.com/massung/chip8vm/chip8"
	"golang.org/x/image/draw"
)

var (
	/// Background is the color of pixels that are off.
	///
	Background = color.RGBA{143, 145, 133, 255}

	/// Foreground is the color of pixels that are on.
	///
	Foreground = color.RGBA{17, 29, 43, 255}
)

/// Draw the framebuffer into the top-left 64x32 pixels of dst.
///
func Draw(dst draw.Image, fb *chip8.Framebuffer) {
	origin := dst.Bounds().Min

	for i, on := range fb {
		x := i % chip8.Width
		y := i / chip8.Width

		c := Background
		if on {
			c = Foreground
		}

		dst.Set(origin.X+x, origin.Y+y, c)
	}
}

/// Image returns the framebuffer as a 64x32 image.
///
func Image(fb *chip8.Framebuffer) *image.RGBA {
	m := image.NewRGBA(image.Rect(0, 0, chip8.Width, chip8.Height))
	Draw(m, fb)
	return m
}

/// Scale an image up by an integer factor without smoothing.
///
func Scale(src image.Image, factor int) *image.RGBA {
	if factor < 1 {
		factor = 1
	}

	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx()*factor, b.Dy()*factor))

	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, draw.Src, nil)

	return dst
}

/// Screenshot writes the framebuffer, scaled up, to a timestamped PNG
/// file in dir and returns the file's path.
///
func Screenshot(dir string, fb *chip8.Framebuffer, factor int) (string, error) {
	name := fmt.Sprintf("chip8-%s.png", time.Now().Format("20060102-150405.000"))
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating screenshot: %w", err)
	}

	if err := png.Encode(f, Scale(Image(fb), factor)); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("encoding screenshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing screenshot: %w", err)
	}

	return path, nil
}
