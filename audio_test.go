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

import "testing"

func TestSquareWave(t *testing.T) {
	buf := squareWave(toneBlock, tonePeriod, 24)

	if len(buf) != toneBlock || toneBlock%tonePeriod != 0 {
		t.Fatalf("block of %d samples isn't whole periods of %d", len(buf), tonePeriod)
	}
	if int8(buf[0]) != 24 || int8(buf[tonePeriod/2]) != -24 || int8(buf[tonePeriod]) != 24 {
		t.Errorf("unexpected samples %d %d %d", int8(buf[0]), int8(buf[tonePeriod/2]), int8(buf[tonePeriod]))
	}

	sum := 0
	for _, s := range buf {
		sum += int(int8(s))
	}
	if sum != 0 {
		t.Errorf("wave isn't balanced: %d", sum)
	}
}
