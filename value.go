// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"strings"

	"github.com/pkg/errors"
)

// MaxWidth is the widest value a pin can carry.
//
const MaxWidth = 64

// Bit is the state of a single signal line.
//
type Bit uint8

// Bit states.
//
const (
	Low Bit = iota
	High
	Disconnected
)

func (b Bit) String() string {
	switch b {
	case Low:
		return "0"
	case High:
		return "1"
	}
	return "Z"
}

// A Value is a packed tri-state bus value of up to 64 bits. Each bit is Low,
// High or Disconnected. Disconnected bits are always stored as Low in the
// value mask.
//
// The zero Value is a 0 bit wide value. Values are immutable, all methods
// return a new Value.
//
type Value struct {
	bits  uint64
	float uint64
	width uint8
}

func clampWidth(width int) int {
	if width < 1 {
		return 1
	}
	if width > MaxWidth {
		return MaxWidth
	}
	return width
}

func mask(width int) uint64 {
	if width >= MaxWidth {
		return ^uint64(0)
	}
	return 1<<uint(width) - 1
}

// MakeValue returns a fully driven value of the given width. Bits of v above
// width are discarded.
//
func MakeValue(width int, v uint64) Value {
	width = clampWidth(width)
	return Value{bits: v & mask(width), width: uint8(width)}
}

// Floating returns a fully disconnected value of the given width.
//
func Floating(width int) Value {
	width = clampWidth(width)
	return Value{float: mask(width), width: uint8(width)}
}

// Bool returns a 1 bit value.
//
func Bool(b bool) Value {
	if b {
		return MakeValue(1, 1)
	}
	return MakeValue(1, 0)
}

// Width returns the bit width of v.
//
func (v Value) Width() int { return int(v.width) }

// Uint64 returns the value mask. Disconnected bits read as 0.
//
func (v Value) Uint64() uint64 { return v.bits }

// FloatMask returns the mask of disconnected bits.
//
func (v Value) FloatMask() uint64 { return v.float }

// IsFloating returns true if all bits of v are disconnected.
//
func (v Value) IsFloating() bool {
	return v.width > 0 && v.float == mask(int(v.width))
}

// IsDriven returns true if no bit of v is disconnected.
//
func (v Value) IsDriven() bool { return v.float == 0 }

// High returns true if bit 0 is driven high. This is how single bit control
// inputs (enable, write, clock...) are read.
//
func (v Value) High() bool { return v.bits&1 != 0 }

// Bit returns the state of bit i. Out of range bits are Disconnected.
//
func (v Value) Bit(i int) Bit {
	if i < 0 || i >= int(v.width) {
		return Disconnected
	}
	m := uint64(1) << uint(i)
	switch {
	case v.float&m != 0:
		return Disconnected
	case v.bits&m != 0:
		return High
	}
	return Low
}

// SetBit returns a copy of v with bit i set to b. Out of range bits are
// ignored.
//
func (v Value) SetBit(i int, b Bit) Value {
	if i < 0 || i >= int(v.width) {
		return v
	}
	m := uint64(1) << uint(i)
	v.bits &^= m
	v.float &^= m
	switch b {
	case High:
		v.bits |= m
	case Disconnected:
		v.float |= m
	}
	return v
}

// Toggle returns a copy of v with bit i inverted. A disconnected bit becomes
// High.
//
func (v Value) Toggle(i int) Value {
	if i < 0 || i >= int(v.width) {
		return v
	}
	m := uint64(1) << uint(i)
	if v.float&m != 0 {
		v.float &^= m
		v.bits |= m
		return v
	}
	v.bits ^= m
	return v
}

// Float returns v with all bits disconnected.
//
func (v Value) Float() Value {
	return Floating(int(v.width))
}

// Resize returns v truncated or zero-extended to width. Extended bits are
// disconnected.
//
func (v Value) Resize(width int) Value {
	width = clampWidth(width)
	if width == int(v.width) {
		return v
	}
	m := mask(width)
	r := Value{bits: v.bits & m, float: v.float & m, width: uint8(width)}
	if width > int(v.width) {
		r.float |= m &^ mask(int(v.width))
	}
	return r
}

// Slice returns the width bits of v starting at bit lo. Bits past the end of
// v are disconnected.
//
func (v Value) Slice(lo, width int) Value {
	width = clampWidth(width)
	if lo < 0 {
		lo = 0
	}
	if lo >= int(v.width) {
		return Floating(width)
	}
	m := mask(width)
	r := Value{bits: (v.bits >> uint(lo)) & m, float: (v.float >> uint(lo)) & m, width: uint8(width)}
	if avail := int(v.width) - lo; avail < width {
		r.float |= m &^ mask(avail)
	}
	return r
}

// Pack concatenates values, parts[0] being the least significant. The result
// is truncated to MaxWidth bits.
//
func Pack(parts ...Value) Value {
	var r Value
	shift := 0
	for _, p := range parts {
		if shift >= MaxWidth {
			break
		}
		m := mask(MaxWidth - shift)
		r.bits |= (p.bits & m) << uint(shift)
		r.float |= (p.float & m) << uint(shift)
		shift += int(p.width)
	}
	if shift > MaxWidth {
		shift = MaxWidth
	}
	r.width = uint8(shift)
	return r
}

// Split cuts v into width bit values, least significant first.
//
func (v Value) Split(width int) []Value {
	width = clampWidth(width)
	n := (int(v.width) + width - 1) / width
	r := make([]Value, n)
	for i := range r {
		r[i] = v.Slice(i*width, width)
	}
	return r
}

// String returns the bits of v, most significant first. Disconnected bits are
// shown as 'Z'.
//
func (v Value) String() string {
	var b strings.Builder
	b.Grow(int(v.width))
	for i := int(v.width) - 1; i >= 0; i-- {
		b.WriteString(v.Bit(i).String())
	}
	return b.String()
}

// ParseValue parses a string of '0', '1' and 'Z' characters, most significant
// bit first. Underscores are ignored.
//
func ParseValue(s string) (Value, error) {
	s = strings.Replace(s, "_", "", -1)
	if len(s) == 0 || len(s) > MaxWidth {
		return Value{}, errors.Errorf("invalid value width in %q", s)
	}
	v := Floating(len(s))
	for i, c := range s {
		bit := len(s) - i - 1
		switch c {
		case '0':
			v = v.SetBit(bit, Low)
		case '1':
			v = v.SetBit(bit, High)
		case 'z', 'Z':
		default:
			return Value{}, errors.Errorf("invalid bit %q in %q", c, s)
		}
	}
	return v, nil
}
