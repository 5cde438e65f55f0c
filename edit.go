// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// EditOp is the type of a structural edit.
//
type EditOp int

// Edit operations.
//
const (
	AddChip EditOp = iota
	RemoveChip
	AddWire
	RemoveWire
	AddPin
	RemovePin
)

var editOps = [...]string{
	AddChip:    "add-chip",
	RemoveChip: "remove-chip",
	AddWire:    "add-wire",
	RemoveWire: "remove-wire",
	AddPin:     "add-pin",
	RemovePin:  "remove-pin",
}

func (op EditOp) String() string {
	if op >= 0 && int(op) < len(editOps) {
		return editOps[op]
	}
	return "invalid-edit"
}

// An Edit is a structural change to a running circuit. Edits are applied
// between ticks, either directly with Circuit.Apply or through a loop.
//
type Edit struct {
	Op   EditOp
	Path []ChipID // composite the edit applies to, relative to the root

	Chip   SubChipDesc // AddChip
	ID     ChipID      // RemoveChip
	Wire   WireDesc    // AddWire, RemoveWire
	Pin    PinDesc     // AddPin; RemovePin uses Pin.ID
	Output bool        // AddPin

	// Result, if not nil, receives the outcome of the edit. It should be
	// buffered.
	Result chan<- error
}

// Apply applies e to the circuit. A failed edit leaves the circuit unchanged.
//
func (c *Circuit) Apply(e Edit) error {
	ch, err := c.Find(e.Path)
	if err != nil {
		return err
	}
	switch e.Op {
	case AddChip:
		_, err = c.AddChild(ch, e.Chip)
	case RemoveChip:
		err = c.RemoveChild(ch, e.ID)
	case AddWire:
		err = c.Connect(ch, e.Wire)
	case RemoveWire:
		err = c.Disconnect(ch, e.Wire)
	case AddPin:
		err = c.AddPin(ch, e.Pin, e.Output)
	case RemovePin:
		err = c.RemovePin(ch, e.Pin.ID)
	default:
		err = errors.Errorf("invalid edit operation %d", e.Op)
	}
	if err != nil {
		return errors.Wrapf(err, "%s in %q", e.Op, PathString(e.Path))
	}
	c.log.WithFields(logrus.Fields{"op": e.Op.String(), "path": PathString(e.Path)}).Debug("edit applied")
	return nil
}

func composite(ch *Chip) error {
	if ch.Kind != Composite {
		return errors.Errorf("chip %s is not a composite", ch)
	}
	return nil
}

// AddChild instantiates the chip described by sd into composite ch.
//
func (c *Circuit) AddChild(ch *Chip, sd SubChipDesc) (*Chip, error) {
	if err := composite(ch); err != nil {
		return nil, err
	}
	if sd.ID == Self || ch.byID[sd.ID] != nil {
		return nil, errors.Errorf("invalid or duplicate chip ID %d", sd.ID)
	}
	d, ok := c.lib.Lookup(sd.Chip)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "chip %s", sd.Chip)
	}
	stack := make(map[string]bool)
	for p := ch; p != nil; p = p.parent {
		if p.Kind == Composite {
			stack[p.Name] = true
		}
	}
	k, err := c.instantiate(d, sd, ch, stack)
	if err != nil {
		return nil, err
	}
	if k == nil {
		return nil, errors.Errorf("chip %s cannot be instantiated here", sd.Chip)
	}
	ch.children = append(ch.children, k)
	ch.byID[k.ID] = k
	c.dirty = true
	return k, nil
}

// RemoveChild removes sub-chip id from composite ch along with all the wires
// connected to it.
//
func (c *Circuit) RemoveChild(ch *Chip, id ChipID) error {
	if err := composite(ch); err != nil {
		return err
	}
	k := ch.byID[id]
	if k == nil {
		return errors.Wrapf(ErrNotFound, "chip %d", id)
	}
	c.freeChip(k)
	delete(ch.byID, id)
	for i, x := range ch.children {
		if x == k {
			ch.children = append(ch.children[:i], ch.children[i+1:]...)
			break
		}
	}
	c.dirty = true
	return nil
}

// Connect adds a wire within composite ch.
//
func (c *Circuit) Connect(ch *Chip, w WireDesc) error {
	if err := composite(ch); err != nil {
		return err
	}
	return c.connect(ch, w)
}

// Disconnect removes a wire from composite ch.
//
func (c *Circuit) Disconnect(ch *Chip, w WireDesc) error {
	if err := composite(ch); err != nil {
		return err
	}
	return c.disconnect(ch, w)
}

// AddPin adds an input or output pin to composite ch.
//
func (c *Circuit) AddPin(ch *Chip, pd PinDesc, output bool) error {
	if err := composite(ch); err != nil {
		return err
	}
	if _, _, ok := c.chipPin(ch, pd.ID); ok {
		return errors.Errorf("duplicate pin ID %d", pd.ID)
	}
	if pd.Width < 0 || pd.Width > MaxWidth {
		return errors.Errorf("invalid pin width %d", pd.Width)
	}
	i := c.allocPin(ch, pd, !output)
	if output {
		ch.out = append(ch.out, i)
	} else {
		ch.in = append(ch.in, i)
	}
	c.dirty = true
	return nil
}

// RemovePin removes pin id from composite ch along with its wires, inside ch
// and in the enclosing chip.
//
func (c *Circuit) RemovePin(ch *Chip, id PinID) error {
	if err := composite(ch); err != nil {
		return err
	}
	i, input, ok := c.chipPin(ch, id)
	if !ok {
		return errors.Wrapf(ErrNotFound, "pin %d", id)
	}
	if input {
		ch.in, _ = removeIndex(ch.in, i)
	} else {
		ch.out, _ = removeIndex(ch.out, i)
	}
	c.freePin(i)
	c.dirty = true
	return nil
}
