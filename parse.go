// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"github.com/db47h/dlsim/internal/hdl"
	"github.com/pkg/errors"
)

// parseIOspec parses the pin specification string and returns the pins it
// declares with their width. IDs are left to 0. For example:
//
//	parseIOspec("in[8], sel") // returns []PinDesc{{Name: "in", Width: 8}, {Name: "sel", Width: 1}}
//
func parseIOspec(names string) ([]PinDesc, error) {
	specs, err := hdl.ParsePins(names)
	if err != nil {
		return nil, err
	}
	out := make([]PinDesc, 0, len(specs))
	for _, s := range specs {
		if s.Width < 1 || s.Width > MaxWidth {
			return nil, errors.Errorf("in %q: invalid width %d for pin %s", names, s.Width, s.Name)
		}
		out = append(out, PinDesc{Name: s.Name, Width: s.Width})
	}
	return out, nil
}

// ParsePart parses a part declaration like "NAND(a=x, b=y, out=z)" or
// "KEY[65](out=k)" into a Part.
//
func ParsePart(s string) (Part, error) {
	p, err := hdl.ParsePart(s)
	if err != nil {
		return Part{}, err
	}
	part := Part{Chip: p.Name, Conns: make([]Conn, len(p.Conns))}
	for i, c := range p.Conns {
		part.Conns[i] = Conn(c)
	}
	for _, v := range p.State {
		part.State = append(part.State, uint32(v))
	}
	return part, nil
}
