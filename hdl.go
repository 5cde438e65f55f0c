// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"github.com/db47h/dlsim/internal/hdl"
	"github.com/pkg/errors"
)

// Conn connects the pin of a part (Pin) to a named wire in its host chip
// (Wire).
//
type Conn struct {
	Pin  string
	Wire string
}

// A Part is a chip used within a composite chip, together with its connections
// to the wires of that chip.
//
type Part struct {
	Chip  string
	Conns []Conn
	State []uint32
}

// Parts is a convenience wrapper for []Part.
//
type Parts []Part

// WithState returns a copy of p with its default persistent state set.
//
func (p Part) WithState(state ...uint32) Part {
	p.State = append([]uint32(nil), state...)
	return p
}

// A NewPartFn is a function that takes a connection configuration and returns a
// new Part. See PartFn for the syntax of the connection configuration string.
//
type NewPartFn func(conns string) Part

// PartFn returns a NewPartFn for the named chip. The returned function panics
// if the connection string is malformed. For example:
//
//	nand := PartFn("NAND")
//	p := nand("a=x, b=y, out=z")
//
func PartFn(chip string) NewPartFn {
	return func(conns string) Part {
		cs, err := hdl.ParseConns(conns)
		if err != nil {
			panic(err)
		}
		p := Part{Chip: chip, Conns: make([]Conn, len(cs))}
		for i, c := range cs {
			p.Conns[i] = Conn(c)
		}
		return p
	}
}

// Chip composes parts found in lib into a new composite chip description. The
// pin names specified as inputs and outputs will be the inputs and outputs of
// the chip. Wires are named freely: a wire that is not one of the chip's pins
// is internal. Several part outputs may drive the same wire (a bus), in which
// case the simulation resolves the conflict.
//
// A Xor gate could be created like this:
//
//	nand := PartFn("NAND")
//	xor, err := Compose(lib, "XOR", "a, b", "out", Parts{
//		nand("a=a, b=b, out=nandAB"),
//		nand("a=a, b=nandAB, out=w0"),
//		nand("a=b, b=nandAB, out=w1"),
//		nand("a=w0, b=w1, out=out"),
//	})
//
// Pin IDs are allocated in declaration order, inputs first. Parts get ChipIDs
// in order, starting at 0.
//
func Compose(lib Library, name string, inputs, outputs string, parts Parts) (*ChipDesc, error) {
	ins, err := parseIOspec(inputs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	outs, err := parseIOspec(outputs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}
	for i := range ins {
		ins[i].ID = PinID(i)
	}
	for i := range outs {
		outs[i].ID = PinID(len(ins) + i)
	}

	wr, err := newWiring(ins, outs)
	if err != nil {
		return nil, errors.Wrap(err, name)
	}

	d := &ChipDesc{
		Name:    name,
		Inputs:  ins,
		Outputs: outs,
		Chips:   make([]SubChipDesc, len(parts)),
	}

	for pnum, p := range parts {
		sp, ok := lib.Lookup(p.Chip)
		if !ok {
			return nil, errors.Errorf("%s: unknown part %s", name, p.Chip)
		}
		d.Chips[pnum] = SubChipDesc{ID: ChipID(pnum), Chip: p.Chip, State: p.State}
		seen := make(map[string]bool, len(p.Conns))
		for _, c := range p.Conns {
			pd, isOut, ok := sp.PinByName(c.Pin)
			if !ok {
				return nil, errors.New("invalid pin name " + c.Pin + " for part " + sp.Name)
			}
			e := end{PinAddress{ChipID(pnum), pd.ID}, pd.width()}
			if isOut {
				err = wr.drive(c.Wire, e)
			} else {
				if seen[c.Pin] {
					return nil, errors.New(sp.Name + " input pin " + c.Pin + " connected to more than one wire")
				}
				seen[c.Pin] = true
				err = wr.sink(c.Wire, e)
			}
			if err != nil {
				return nil, errors.Wrap(err, sp.Name+"."+c.Pin+":"+c.Wire)
			}
		}
	}

	if d.Wires, err = wr.check(); err != nil {
		return nil, errors.Wrap(err, name)
	}
	return d, nil
}
