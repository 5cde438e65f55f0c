// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"strconv"

	"github.com/pkg/errors"
)

// an end is one end of a wire: a pin and its width.
type end struct {
	addr  PinAddress
	width int
}

const (
	netInternal = iota
	netInput    // chip input pin
	netOutput   // chip output pin
)

// a net is a named wire in a chip being composed. It connects every driver to
// every sink.
type net struct {
	name    string
	typ     int
	drivers []end
	sinks   []end
}

type wiring struct {
	nets  map[string]*net
	order []*net
}

func newWiring(ins, outs []PinDesc) (*wiring, error) {
	wr := &wiring{nets: make(map[string]*net, len(ins)+len(outs))}
	for _, in := range ins {
		if wr.nets[in.Name] != nil {
			return nil, errors.New("duplicate pin name " + in.Name)
		}
		wr.add(&net{name: in.Name, typ: netInput, drivers: []end{{PinAddress{Self, in.ID}, in.width()}}})
	}
	for _, out := range outs {
		if wr.nets[out.Name] != nil {
			return nil, errors.New("duplicate pin name " + out.Name)
		}
		wr.add(&net{name: out.Name, typ: netOutput, sinks: []end{{PinAddress{Self, out.ID}, out.width()}}})
	}
	return wr, nil
}

func (wr *wiring) add(n *net) *net {
	wr.nets[n.name] = n
	wr.order = append(wr.order, n)
	return n
}

func (wr *wiring) get(name string) *net {
	if n := wr.nets[name]; n != nil {
		return n
	}
	return wr.add(&net{name: name, typ: netInternal})
}

func (wr *wiring) drive(name string, e end) error {
	n := wr.get(name)
	if n.typ == netInput {
		return errors.New("chip input pin used as output")
	}
	n.drivers = append(n.drivers, e)
	return nil
}

func (wr *wiring) sink(name string, e end) error {
	n := wr.get(name)
	n.sinks = append(n.sinks, e)
	return nil
}

// check verifies that every net is properly driven and consumed, and returns
// the resulting wires in a stable order.
func (wr *wiring) check() ([]WireDesc, error) {
	var wires []WireDesc
	for _, n := range wr.order {
		if len(n.drivers) == 0 && len(n.sinks) > 0 && n.typ != netOutput {
			return nil, errors.New("pin " + n.name + " not connected to any output")
		}
		if n.typ == netInternal && len(n.drivers) > 0 && len(n.sinks) == 0 {
			return nil, errors.New("pin " + n.name + " not connected to any input")
		}
		width := -1
		for _, e := range append(append([]end(nil), n.drivers...), n.sinks...) {
			if width < 0 {
				width = e.width
			} else if e.width != width {
				return nil, errors.New("width mismatch on wire " + n.name + ": " +
					strconv.Itoa(width) + " != " + strconv.Itoa(e.width))
			}
		}
		for _, d := range n.drivers {
			for _, s := range n.sinks {
				wires = append(wires, WireDesc{From: d.addr, To: s.addr})
			}
		}
	}
	return wires, nil
}
