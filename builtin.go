// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"strconv"
)

// Kind is the type of a chip. The zero Kind is Composite, every other kind
// is a builtin chip evaluated by Evaluate.
//
type Kind int

// Chip kinds.
//
const (
	Composite Kind = iota
	Nand
	Clock
	Pulse
	TriState
	Key
	Split4
	Split8
	Split8To4
	Split16To8
	Merge4
	Merge8
	Merge4To8
	Merge8To16
	RAM
	ROM
	DisplayRGB
	DisplayDot
	Buzzer
	Bus1
	Bus4
	Bus8
	kindCount
)

// Display geometry.
//
const (
	DisplayWidth  = 16
	DisplayHeight = 16
	DisplaySize   = DisplayWidth * DisplayHeight
)

// persistent state layouts
const (
	pulseWidth = iota
	pulseRemaining
	pulsePrevIn
	pulseWords
)

const (
	ramWords    = 256
	ramPrevClk  = ramWords
	displayBack = 0
	displayFrnt = DisplaySize
	displayClk  = 2 * DisplaySize
)

type kindSpec struct {
	name  string
	in    []PinDesc
	out   []PinDesc
	state int
	bus   bool
}

// pins builds a pin list from a pin spec like "a, b, data[8]". IDs start at
// first.
//
func pins(first PinID, spec string) []PinDesc {
	ps, err := parseIOspec(spec)
	if err != nil {
		panic(err)
	}
	for i := range ps {
		ps[i].ID = first + PinID(i)
	}
	return ps
}

func newKind(name, in, out string, state int) kindSpec {
	ins := pins(0, in)
	return kindSpec{name: name, in: ins, out: pins(PinID(len(ins)), out), state: state}
}

func bitNames(prefix string, n int) string {
	s := ""
	for i := 0; i < n; i++ {
		if i > 0 {
			s += ", "
		}
		s += prefix + strconv.Itoa(i)
	}
	return s
}

var kinds [kindCount]kindSpec

func init() {
	kinds = [kindCount]kindSpec{
		Composite:  {name: "COMPOSITE"},
		Nand:       newKind("NAND", "a, b", "out", 0),
		Clock:      newKind("CLOCK", "", "clk", 0),
		Pulse:      newKind("PULSE", "in", "out", pulseWords),
		TriState:   newKind("TRISTATE", "data, enable", "out", 0),
		Key:        newKind("KEY", "", "out", 1),
		Split4:     newKind("SPLIT-4", "in[4]", bitNames("b", 4), 0),
		Split8:     newKind("SPLIT-8", "in[8]", bitNames("b", 8), 0),
		Split8To4:  newKind("SPLIT-8-4", "in[8]", "lo[4], hi[4]", 0),
		Split16To8: newKind("SPLIT-16-8", "in[16]", "lo[8], hi[8]", 0),
		Merge4:     newKind("MERGE-4", bitNames("b", 4), "out[4]", 0),
		Merge8:     newKind("MERGE-8", bitNames("b", 8), "out[8]", 0),
		Merge4To8:  newKind("MERGE-4-8", "lo[4], hi[4]", "out[8]", 0),
		Merge8To16: newKind("MERGE-8-16", "lo[8], hi[8]", "out[16]", 0),
		RAM:        newKind("RAM-256x8", "addr[8], data[8], write, reset, clock", "out[8]", ramWords+1),
		ROM:        newKind("ROM-256x16", "addr[8]", "out[16]", ramWords),
		DisplayRGB: newKind("DISPLAY-RGB", "addr[8], r[4], g[4], b[4], write, refresh, clock", "", 2*DisplaySize+1),
		DisplayDot: newKind("DISPLAY-DOT", "addr[8], pixel, write, refresh, clock", "", 2*DisplaySize+1),
		Buzzer:     newKind("BUZZER", "freq[8], volume[4]", "", 0),
		Bus1:       newKind("BUS-1", "in", "out", 0),
		Bus4:       newKind("BUS-4", "in[4]", "out[4]", 0),
		Bus8:       newKind("BUS-8", "in[8]", "out[8]", 0),
	}
	for _, k := range []Kind{Bus1, Bus4, Bus8} {
		kinds[k].bus = true
	}
}

// ParseKind returns the builtin Kind with the given name.
//
func ParseKind(name string) (Kind, bool) {
	for k := Nand; k < kindCount; k++ {
		if kinds[k].name == name {
			return k, true
		}
	}
	return Composite, false
}

// Kinds returns all builtin kinds.
//
func Kinds() []Kind {
	ks := make([]Kind, 0, kindCount-1)
	for k := Nand; k < kindCount; k++ {
		ks = append(ks, k)
	}
	return ks
}

func (k Kind) valid() bool { return k >= Composite && k < kindCount }

func (k Kind) String() string {
	if k.valid() {
		return kinds[k].name
	}
	return "Kind(" + strconv.Itoa(int(k)) + ")"
}

// IsBus returns true for bus relay kinds.
//
func (k Kind) IsBus() bool { return k.valid() && kinds[k].bus }

// StateSize returns the number of persistent state words of a chip of kind k.
//
func (k Kind) StateSize() int {
	if !k.valid() {
		return 0
	}
	return kinds[k].state
}

// Desc returns a chip description for builtin kind k.
//
func (k Kind) Desc() *ChipDesc {
	if !k.valid() || k == Composite {
		return nil
	}
	s := &kinds[k]
	return &ChipDesc{
		Name:    s.name,
		Builtin: s.name,
		Inputs:  append([]PinDesc(nil), s.in...),
		Outputs: append([]PinDesc(nil), s.out...),
	}
}

// Env is the environment shared by all builtin chips during a tick.
//
type Env struct {
	Tick    uint64
	Divisor uint64 // clock half period in ticks
	Keys    KeySet
	Audio   *Audio
}

func risingEdge(state []uint32, prev int, clk Value) bool {
	c := uint32(0)
	if clk.High() {
		c = 1
	}
	rising := c == 1 && state[prev] == 0
	state[prev] = c
	return rising
}

// Evaluate computes the outputs of a builtin chip of kind k from its inputs and
// persistent state. in, out and state must be sized according to the kind's
// pin layout and StateSize. State is updated in place.
//
func Evaluate(k Kind, env *Env, in, out []Value, state []uint32) {
	switch k {
	case Nand:
		out[0] = MakeValue(1, 1^(in[0].Uint64()&in[1].Uint64()))

	case Clock:
		d := env.Divisor
		if d == 0 {
			d = 1
		}
		out[0] = Bool((env.Tick/d)&1 == 1)

	case Pulse:
		rising := in[0].High() && state[pulsePrevIn] == 0
		if in[0].High() {
			state[pulsePrevIn] = 1
		} else {
			state[pulsePrevIn] = 0
		}
		if rising {
			w := state[pulseWidth]
			if w == 0 {
				w = 1
			}
			state[pulseRemaining] = w
		}
		if state[pulseRemaining] > 0 {
			state[pulseRemaining]--
			out[0] = Bool(true)
		} else {
			out[0] = Bool(false)
		}

	case TriState:
		if in[1].High() {
			out[0] = in[0]
		} else {
			out[0] = Floating(1)
		}

	case Key:
		out[0] = Bool(env.Keys.Held(state[0]))

	case Split4, Split8:
		for i := range out {
			out[i] = in[0].Slice(i, 1)
		}

	case Split8To4:
		out[0], out[1] = in[0].Slice(0, 4), in[0].Slice(4, 4)

	case Split16To8:
		out[0], out[1] = in[0].Slice(0, 8), in[0].Slice(8, 8)

	case Merge4, Merge8, Merge4To8, Merge8To16:
		out[0] = Pack(in...).Resize(out[0].Width())

	case RAM:
		addr, data, write, reset, clk := in[0], in[1], in[2], in[3], in[4]
		if risingEdge(state, ramPrevClk, clk) && write.High() {
			state[addr.Uint64()&0xff] = uint32(data.Uint64())
		}
		if reset.High() {
			for i := 0; i < ramWords; i++ {
				state[i] = 0
			}
		}
		out[0] = MakeValue(8, uint64(state[addr.Uint64()&0xff]))

	case ROM:
		out[0] = MakeValue(16, uint64(state[in[0].Uint64()&0xff]))

	case DisplayRGB:
		addr, write, refresh, clk := in[0], in[4], in[5], in[6]
		if risingEdge(state, displayClk, clk) {
			if write.High() {
				state[displayBack+int(addr.Uint64()&0xff)] = uint32(Pack(in[1], in[2], in[3]).Uint64())
			}
			if refresh.High() {
				copy(state[displayFrnt:displayFrnt+DisplaySize], state[displayBack:displayBack+DisplaySize])
			}
		}

	case DisplayDot:
		addr, pixel, write, refresh, clk := in[0], in[1], in[2], in[3], in[4]
		if risingEdge(state, displayClk, clk) {
			if write.High() {
				state[displayBack+int(addr.Uint64()&0xff)] = uint32(pixel.Uint64() & 1)
			}
			if refresh.High() {
				copy(state[displayFrnt:displayFrnt+DisplaySize], state[displayBack:displayBack+DisplaySize])
			}
		}

	case Buzzer:
		if env.Audio != nil && in[0].IsDriven() && in[1].IsDriven() {
			env.Audio.Register(int(in[0].Uint64()), int(in[1].Uint64()))
		}

	case Bus1, Bus4, Bus8:
		out[0] = in[0]

	default:
		for i := range out {
			out[i] = out[i].Float()
		}
	}
}
