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
	"image"

	"github.com/veandco/go-sdl2/sdl"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const (
	glyphWidth  = 7
	glyphHeight = 13
	lineHeight  = 12

	firstGlyph = ' '
	lastGlyph  = '~'
	glyphCount = lastGlyph - firstGlyph + 1
)

/// fontAtlas renders every printable ASCII character side by side.
///
func fontAtlas() *image.RGBA {
	face := basicfont.Face7x13

	m := image.NewRGBA(image.Rect(0, 0, glyphCount*glyphWidth, glyphHeight))
	d := font.Drawer{
		Dst:  m,
		Src:  image.White,
		Face: face,
	}

	for c := rune(firstGlyph); c <= lastGlyph; c++ {
		d.Dot = fixed.P(int(c-firstGlyph)*glyphWidth, face.Ascent)
		d.DrawString(string(c))
	}

	return m
}

/// initFont uploads the font atlas for drawing debug text.
///
func (e *emulator) initFont() error {
	atlas := fontAtlas()
	format := uint32(sdl.PIXELFORMAT_ABGR8888)

	tex, err := e.renderer.CreateTexture(format, sdl.TEXTUREACCESS_STATIC, int32(atlas.Rect.Dx()), int32(atlas.Rect.Dy()))
	if err != nil {
		return fmt.Errorf("creating font: %w", err)
	}
	if err := tex.Update(nil, atlas.Pix, atlas.Stride); err != nil {
		_ = tex.Destroy()
		return fmt.Errorf("uploading font: %w", err)
	}

	tex.SetBlendMode(sdl.BLENDMODE_BLEND)
	tex.SetColorMod(200, 208, 196)

	e.font = tex
	return nil
}

/// drawText using the loaded font.
///
func (e *emulator) drawText(s string, x, y int) {
	src := sdl.Rect{W: glyphWidth, H: glyphHeight}
	dst := sdl.Rect{
		X: int32(x),
		Y: int32(y),
		W: glyphWidth,
		H: glyphHeight,
	}

	// loop over all the characters in the string
	for _, c := range s {
		if c > firstGlyph && c <= lastGlyph {
			src.X = (c - firstGlyph) * glyphWidth

			// draw the character to the renderer
			e.renderer.Copy(e.font, &src, &dst)
		}

		// advance
		dst.X += glyphWidth
	}
}
