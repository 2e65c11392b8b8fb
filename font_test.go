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
	"image"
	"testing"
)

// lit counts the opaque pixels in a glyph's cell of the atlas.
func lit(m *image.RGBA, c rune) int {
	n := 0
	x0 := int(c-firstGlyph) * glyphWidth

	for y := 0; y < glyphHeight; y++ {
		for x := x0; x < x0+glyphWidth; x++ {
			if m.RGBAAt(x, y).A != 0 {
				n++
			}
		}
	}
	return n
}

func TestFontAtlas(t *testing.T) {
	m := fontAtlas()

	if b := m.Bounds(); b.Dx() != 95*glyphWidth || b.Dy() != glyphHeight {
		t.Fatalf("atlas bounds = %v", b)
	}
	if n := lit(m, ' '); n != 0 {
		t.Errorf("space has %d pixels", n)
	}
	for _, c := range "#0A~" {
		if lit(m, c) == 0 {
			t.Errorf("%q is blank", c)
		}
	}

	// '.' and '#' differ
	if lit(m, '.') >= lit(m, '#') {
		t.Errorf("'.' has more pixels than '#'")
	}
}
