// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"github.com/pkg/errors"
)

// Errors returned by lookups and wiring. Use errors.Cause to compare.
//
var (
	ErrNotFound    = errors.New("not found")
	ErrInvalidWire = errors.New("invalid wire")
)

// A socket resolves pin addresses in the scope of a composite chip: the
// composite's own pins (Self) and the pins of its direct children.
//
type socket struct {
	c    *Circuit
	chip *Chip
}

func (s socket) lookup(a PinAddress) (idx int, input bool, err error) {
	ch := s.chip
	if a.Chip != Self {
		ch = s.chip.byID[a.Chip]
		if ch == nil {
			return 0, false, errors.Wrapf(ErrNotFound, "chip %d", a.Chip)
		}
	}
	idx, input, ok := s.c.chipPin(ch, a.Pin)
	if !ok {
		return 0, false, errors.Wrapf(ErrNotFound, "pin %s", a)
	}
	return idx, input, nil
}

// source returns the pin that a wire starting at a reads from: an input of the
// enclosing chip or an output of a child.
//
func (s socket) source(a PinAddress) (int, error) {
	i, input, err := s.lookup(a)
	if err != nil {
		return 0, err
	}
	if input != (a.Chip == Self) {
		return 0, errors.Wrapf(ErrInvalidWire, "pin %s cannot be a wire source", a)
	}
	return i, nil
}

// target returns the pin that a wire ending at a drives: an output of the
// enclosing chip or an input of a child.
//
func (s socket) target(a PinAddress) (int, error) {
	i, input, err := s.lookup(a)
	if err != nil {
		return 0, err
	}
	if input == (a.Chip == Self) {
		return 0, errors.Wrapf(ErrInvalidWire, "pin %s cannot be a wire target", a)
	}
	return i, nil
}

func (s socket) wire(w WireDesc) (from, to int, err error) {
	if from, err = s.source(w.From); err != nil {
		return 0, 0, err
	}
	if to, err = s.target(w.To); err != nil {
		return 0, 0, err
	}
	return from, to, nil
}

// connect adds wire w within composite ch.
//
func (c *Circuit) connect(ch *Chip, w WireDesc) error {
	from, to, err := socket{c, ch}.wire(w)
	if err != nil {
		return err
	}
	pf, pt := &c.pins[from], &c.pins[to]
	if wf, wt := pf.value.Width(), pt.value.Width(); wf != wt {
		return errors.Wrapf(ErrInvalidWire, "width mismatch %d -> %d", wf, wt)
	}
	for _, t := range pf.fwd {
		if t == to {
			return errors.Wrap(ErrInvalidWire, "duplicate wire")
		}
	}
	pf.fwd = append(pf.fwd, to)
	pt.src = append(pt.src, from)
	pt.chip.rewire(c)
	c.dirty = true
	return nil
}

// disconnect removes wire w from composite ch. A pin left without sources
// floats.
//
func (c *Circuit) disconnect(ch *Chip, w WireDesc) error {
	from, to, err := socket{c, ch}.wire(w)
	if err != nil {
		return err
	}
	var ok bool
	if c.pins[from].fwd, ok = removeIndex(c.pins[from].fwd, to); !ok {
		return errors.Wrapf(ErrNotFound, "wire %s", w)
	}
	pt := &c.pins[to]
	pt.src, _ = removeIndex(pt.src, from)
	if len(pt.src) == 0 {
		pt.value = pt.value.Float()
	}
	pt.chip.rewire(c)
	c.dirty = true
	return nil
}
