// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

// PinInfo is the published state of a pin.
//
type PinInfo struct {
	Name     string
	Width    int
	Output   bool
	Value    Value
	Inputs   int  // number of wires driving the pin
	Floating bool // can be wired but has no source
	Cyclic   bool // read before all of its sources reported during the last tick
}

// ChipInfo is the published structure of a chip.
//
type ChipInfo struct {
	Name     string
	Kind     Kind
	Pins     []PinID
	Children []ChipID
}

type pinKey struct {
	path string
	pin  PinID
}

// A Frame is an immutable snapshot of a circuit taken between two ticks.
// Frames are safe for concurrent use.
//
type Frame struct {
	// Tick is the number of ticks run when the frame was taken.
	Tick uint64

	pins     map[pinKey]PinInfo
	chips    map[string]ChipInfo
	displays map[string]*DisplayBuffer
	outputs  []Value
	audio    []float64
}

// Snapshot captures the state of the circuit. It also publishes the audio
// accumulated since the previous snapshot.
//
func (c *Circuit) Snapshot() *Frame {
	f := &Frame{
		Tick:     c.tick,
		pins:     make(map[pinKey]PinInfo, len(c.pins)-len(c.free)),
		chips:    make(map[string]ChipInfo),
		displays: make(map[string]*DisplayBuffer),
		audio:    c.audio.publish(),
	}
	c.walk(c.root, func(ch *Chip) {
		path := PathString(ch.path)
		ci := ChipInfo{Name: ch.Name, Kind: ch.Kind}
		for _, i := range ch.in {
			ci.Pins = append(ci.Pins, c.pins[i].id)
			f.pins[pinKey{path, c.pins[i].id}] = c.pinInfo(i)
		}
		for _, i := range ch.out {
			ci.Pins = append(ci.Pins, c.pins[i].id)
			f.pins[pinKey{path, c.pins[i].id}] = c.pinInfo(i)
		}
		for _, k := range ch.children {
			ci.Children = append(ci.Children, k.ID)
		}
		f.chips[path] = ci
		if ch.Kind == DisplayRGB || ch.Kind == DisplayDot {
			d := &DisplayBuffer{Kind: ch.Kind}
			copy(d.Pixels[:], ch.state[displayFrnt:displayFrnt+DisplaySize])
			f.displays[path] = d
		}
	})
	for _, i := range c.root.out {
		f.outputs = append(f.outputs, c.pins[i].value)
	}
	return f
}

func (c *Circuit) pinInfo(i int) PinInfo {
	p := &c.pins[i]
	builtinOut := !p.input && p.chip.Kind != Composite
	rootIn := p.input && p.chip == c.root
	return PinInfo{
		Name:     p.name,
		Width:    p.value.Width(),
		Output:   !p.input,
		Value:    p.value,
		Inputs:   len(p.src),
		Floating: len(p.src) == 0 && !builtinOut && !rootIn,
		Cyclic:   p.stale,
	}
}

// Pin returns the state of pin id of the chip at path. ok is false if no such
// pin existed when the frame was taken.
//
func (f *Frame) Pin(path []ChipID, id PinID) (PinInfo, bool) {
	pi, ok := f.pins[pinKey{PathString(path), id}]
	return pi, ok
}

// Chip returns the structure of the chip at path.
//
func (f *Frame) Chip(path []ChipID) (ChipInfo, bool) {
	ci, ok := f.chips[PathString(path)]
	return ci, ok
}

// Display returns the front buffer of the display chip at path.
//
func (f *Frame) Display(path []ChipID) (*DisplayBuffer, bool) {
	d, ok := f.displays[PathString(path)]
	return d, ok
}

// Outputs returns the values of the root chip outputs.
//
func (f *Frame) Outputs() []Value { return f.outputs }

// Audio returns the smoothed amplitude of each of the AudioBuckets frequency
// buckets.
//
func (f *Frame) Audio() []float64 { return f.audio }
