// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"github.com/pkg/errors"
)

// Input is the externally driven state of a circuit for one tick.
//
type Input struct {
	// Values of the root chip inputs, in pin order. Missing values float.
	Values []Value
	// Keys held during the tick.
	Keys KeySet
}

// Inputs returns the descriptions of the root chip inputs, in the order
// expected by Input.Values.
//
func (c *Circuit) Inputs() []PinDesc {
	return c.pinDescs(c.root.in)
}

// OutputPins returns the descriptions of the root chip outputs.
//
func (c *Circuit) OutputPins() []PinDesc {
	return c.pinDescs(c.root.out)
}

func (c *Circuit) pinDescs(idx []int) []PinDesc {
	ps := make([]PinDesc, len(idx))
	for j, i := range idx {
		p := &c.pins[i]
		ps[j] = PinDesc{ID: p.id, Name: p.name, Width: p.value.Width()}
	}
	return ps
}

// Outputs returns the current values of the root chip outputs.
//
func (c *Circuit) Outputs() []Value {
	vs := make([]Value, len(c.root.out))
	for j, i := range c.root.out {
		vs[j] = c.pins[i].value
	}
	return vs
}

// Output returns the value of the named root output.
//
func (c *Circuit) Output(name string) (Value, bool) {
	for _, i := range c.root.out {
		if c.pins[i].name == name {
			return c.pins[i].value, true
		}
	}
	return Value{}, false
}

// InputValues maps named values to the root inputs of c. Values are resized
// to the pin width; unnamed inputs float.
//
func (c *Circuit) InputValues(vals map[string]uint64) ([]Value, error) {
	ins := c.Inputs()
	vs := make([]Value, len(ins))
	used := 0
	for j, p := range ins {
		if v, ok := vals[p.Name]; ok {
			vs[j] = MakeValue(p.Width, v)
			used++
		} else {
			vs[j] = Floating(p.Width)
		}
	}
	if used != len(vals) {
		for n := range vals {
			found := false
			for _, p := range ins {
				found = found || p.Name == n
			}
			if !found {
				return nil, errors.Wrapf(ErrNotFound, "input %s", n)
			}
		}
	}
	return vs, nil
}
