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

package chip8

import "strings"

const (
	/// Width of the display in pixels.
	///
	Width = 64

	/// Height of the display in pixels.
	///
	Height = 32
)

/// Framebuffer is the monochrome display, row-major. Pixel <x,y> is at
/// index x + Width*y. It is returned by value from Display, so holding
/// one never aliases the machine.
///
type Framebuffer [Width * Height]bool

/// At returns the pixel at <x,y>. Coordinates outside the display are
/// off.
///
func (fb Framebuffer) At(x, y int) bool {
	if x < 0 || x >= Width || y < 0 || y >= Height {
		return false
	}
	return fb[x+Width*y]
}

/// Lit counts the pixels that are on.
///
func (fb Framebuffer) Lit() int {
	n := 0
	for _, p := range fb {
		if p {
			n++
		}
	}
	return n
}

/// String renders the framebuffer as 32 lines of '#' and '.'.
///
func (fb Framebuffer) String() string {
	var sb strings.Builder

	sb.Grow((Width + 1) * Height)

	for i, p := range fb {
		if p {
			sb.WriteByte('#')
		} else {
			sb.WriteByte('.')
		}

		// end of scan line
		if i%Width == Width-1 {
			sb.WriteByte('\n')
		}
	}

	return sb.String()
}

/// clear turns every pixel off.
///
func (fb *Framebuffer) clear() {
	*fb = Framebuffer{}
}

/// xorSprite draws rows of 8 pixels (MSB first) at <x,y>, wrapping each
/// pixel around the edges of the display independently. Returns true
/// if any pixel was turned off.
///
func (fb *Framebuffer) xorSprite(x, y int, rows []byte) bool {
	collision := false

	for row, s := range rows {
		py := (y + row) % Height

		for bit := 0; bit < 8; bit++ {
			if s&(0x80>>uint(bit)) == 0 {
				continue
			}

			px := (x + bit) % Width
			i := px + Width*py

			// was a lit pixel turned off?
			collision = collision || fb[i]

			fb[i] = !fb[i]
		}
	}

	return collision
}
