// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

// KeySet is the set of keys held down during a tick, indexed by key code
// (0-255).
//
type KeySet [4]uint64

// Keys returns a KeySet with the given keys held.
//
func Keys(codes ...uint32) KeySet {
	var k KeySet
	for _, c := range codes {
		k.Press(c)
	}
	return k
}

// Held returns true if key code is held.
//
func (k KeySet) Held(code uint32) bool {
	if code > 255 {
		return false
	}
	return k[code>>6]&(1<<(code&63)) != 0
}

// Press marks key code as held.
//
func (k *KeySet) Press(code uint32) {
	if code <= 255 {
		k[code>>6] |= 1 << (code & 63)
	}
}

// Release marks key code as released.
//
func (k *KeySet) Release(code uint32) {
	if code <= 255 {
		k[code>>6] &^= 1 << (code & 63)
	}
}

// AudioBuckets is the number of frequency buckets of the audio accumulator.
//
const AudioBuckets = 256

// audioSmoothing is the weight of the latest period in published amplitudes.
const audioSmoothing = 0.5

// Audio accumulates buzzer activity between two publications.
//
type Audio struct {
	acc   [AudioBuckets]float64
	level [AudioBuckets]float64
	ticks int
}

// NewAudio returns an empty accumulator.
//
func NewAudio() *Audio { return &Audio{} }

// Register adds a buzzer playing at frequency bucket freq with the given
// volume (0-15) for the current tick.
//
func (a *Audio) Register(freq, volume int) {
	if freq < 0 || freq >= AudioBuckets {
		return
	}
	if volume < 0 {
		volume = 0
	} else if volume > 15 {
		volume = 15
	}
	a.acc[freq] += float64(volume) / 15
}

func (a *Audio) endTick() { a.ticks++ }

// publish returns the smoothed mean amplitude per bucket since the previous
// call and resets the accumulator.
//
func (a *Audio) publish() []float64 {
	out := make([]float64, AudioBuckets)
	for i := range a.acc {
		target := 0.0
		if a.ticks > 0 {
			target = a.acc[i] / float64(a.ticks)
		}
		a.level[i] += (target - a.level[i]) * audioSmoothing
		out[i] = a.level[i]
		a.acc[i] = 0
	}
	a.ticks = 0
	return out
}

// DisplayBuffer is a copy of the front buffer of a display chip. Pixels are
// stored row by row.
//
type DisplayBuffer struct {
	Kind   Kind
	Pixels [DisplaySize]uint32
}

// At returns the raw pixel at x, y.
//
func (d *DisplayBuffer) At(x, y int) uint32 {
	if x < 0 || x >= DisplayWidth || y < 0 || y >= DisplayHeight {
		return 0
	}
	return d.Pixels[y*DisplayWidth+x]
}

// RGB returns the 4 bit color components of pixel x, y of a DISPLAY-RGB.
//
func (d *DisplayBuffer) RGB(x, y int) (r, g, b uint8) {
	p := d.At(x, y)
	return uint8(p & 0xf), uint8(p >> 4 & 0xf), uint8(p >> 8 & 0xf)
}

// Dot returns true if pixel x, y of a DISPLAY-DOT is lit.
//
func (d *DisplayBuffer) Dot(x, y int) bool { return d.At(x, y)&1 != 0 }
