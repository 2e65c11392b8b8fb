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

	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100

	// a 441 Hz square wave, whole periods so queued blocks join cleanly
	tonePeriod = sampleRate / 441
	toneBlock  = tonePeriod * 22
)

/// beeper plays a constant tone while the sound timer is active.
///
type beeper struct {
	dev  sdl.AudioDeviceID
	tone []byte
}

/// Open the default audio device for playing the tone.
///
func openBeeper() (*beeper, error) {
	spec := sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S8,
		Channels: 1,
		Samples:  512,
	}

	dev, err := sdl.OpenAudioDevice("", false, &spec, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("opening audio device: %w", err)
	}

	// start playing immediately, silence until samples are queued
	sdl.PauseAudioDevice(dev, false)

	return &beeper{dev: dev, tone: squareWave(toneBlock, tonePeriod, 24)}, nil
}

/// squareWave returns n signed 8-bit samples.
///
func squareWave(n, period int, volume int8) []byte {
	buf := make([]byte, n)

	for i := range buf {
		if i%period < period/2 {
			buf[i] = byte(volume)
		} else {
			buf[i] = byte(-volume)
		}
	}

	return buf
}

/// Play starts or stops the tone. It's the runner's sound hook.
///
func (b *beeper) Play(on bool) {
	if !on {
		sdl.ClearQueuedAudio(b.dev)
		return
	}
	b.Fill()
}

/// Fill keeps at least one block of the tone queued.
///
func (b *beeper) Fill() {
	if sdl.GetQueuedAudioSize(b.dev) < uint32(len(b.tone)) {
		_ = sdl.QueueAudio(b.dev, b.tone)
	}
}

/// Close the audio device.
///
func (b *beeper) Close() {
	sdl.CloseAudioDevice(b.dev)
}
