// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// A Chip is an instance of a ChipDesc in a Circuit. Composite chips own their
// children; builtin chips own their persistent state.
//
type Chip struct {
	ID   ChipID
	Name string
	Kind Kind

	parent   *Chip
	path     []ChipID
	in, out  []int // pin arena indices
	state    []uint32
	children []*Chip // evaluation order
	byID     map[ChipID]*Chip

	wired      int // input pins with at least one source
	readyStamp uint64
	readyCount int
}

// Parent returns the enclosing chip, nil for the root.
//
func (ch *Chip) Parent() *Chip { return ch.parent }

// Path returns the IDs leading from the root chip to ch.
//
func (ch *Chip) Path() []ChipID { return append([]ChipID(nil), ch.path...) }

// Child returns the sub-chip with the given ID or nil.
//
func (ch *Chip) Child(id ChipID) *Chip { return ch.byID[id] }

// Children returns the sub-chips of ch in their current evaluation order.
//
func (ch *Chip) Children() []*Chip { return append([]*Chip(nil), ch.children...) }

// State returns the persistent state of a builtin chip. The slice is live and
// must only be accessed from the goroutine running the circuit.
//
func (ch *Chip) State() []uint32 { return ch.state }

func (ch *Chip) String() string {
	return ch.Name + "[" + PathString(ch.path) + "]"
}

func (ch *Chip) notifyReady(tick uint64) {
	if ch.readyStamp != tick {
		ch.readyStamp = tick
		ch.readyCount = 0
	}
	ch.readyCount++
}

// ready returns true if all connected inputs of ch have received all of their
// sources during tick.
//
func (ch *Chip) ready(tick uint64) bool {
	return ch.wired == 0 || ch.readyStamp == tick && ch.readyCount >= ch.wired
}

func (ch *Chip) rewire(c *Circuit) {
	n := 0
	for _, i := range ch.in {
		if len(c.pins[i].src) > 0 {
			n++
		}
	}
	ch.wired = n
	// counts from the current tick no longer match
	ch.readyStamp = 0
}

// chipPin returns the arena index of pin id of ch.
//
func (c *Circuit) chipPin(ch *Chip, id PinID) (idx int, input bool, ok bool) {
	for _, i := range ch.in {
		if c.pins[i].id == id {
			return i, true, true
		}
	}
	for _, i := range ch.out {
		if c.pins[i].id == id {
			return i, false, true
		}
	}
	return 0, false, false
}

// PathString formats a chip path like "2/0/5". The root path is "".
//
func PathString(path []ChipID) string {
	var b strings.Builder
	for i, id := range path {
		if i > 0 {
			b.WriteByte('/')
		}
		b.WriteString(strconv.Itoa(int(id)))
	}
	return b.String()
}

// instantiate creates the chip described by d as a child of parent. stack
// holds the names of composites being instantiated. A nil chip with a nil
// error means the chip was skipped.
//
func (c *Circuit) instantiate(d *ChipDesc, sd SubChipDesc, parent *Chip, stack map[string]bool) (*Chip, error) {
	ch := &Chip{ID: sd.ID, Name: d.Name, parent: parent}
	if parent != nil {
		ch.path = append(append([]ChipID(nil), parent.path...), sd.ID)
	}
	log := c.log.WithFields(logrus.Fields{"chip": d.Name, "path": PathString(ch.path)})

	var ins, outs []PinDesc
	if d.Builtin != "" {
		k, ok := ParseKind(d.Builtin)
		if !ok {
			log.WithField("builtin", d.Builtin).Warn("unknown builtin kind, chip skipped")
			return nil, nil
		}
		ch.Kind = k
		ch.state = make([]uint32, k.StateSize())
		copy(ch.state, sd.State)
		ins, outs = kinds[k].in, kinds[k].out
	} else {
		if stack[d.Name] {
			log.Warn("recursive chip definition, chip skipped")
			return nil, nil
		}
		ins, outs = d.Inputs, d.Outputs
	}

	seen := make(map[PinID]bool, len(ins)+len(outs))
	for _, p := range append(append([]PinDesc(nil), ins...), outs...) {
		if seen[p.ID] {
			return nil, errors.Errorf("chip %s: duplicate pin ID %d", d.Name, p.ID)
		}
		seen[p.ID] = true
	}
	for _, p := range ins {
		ch.in = append(ch.in, c.allocPin(ch, p, true))
	}
	for _, p := range outs {
		ch.out = append(ch.out, c.allocPin(ch, p, false))
	}
	if ch.Kind != Composite {
		return ch, nil
	}

	stack[d.Name] = true
	defer delete(stack, d.Name)

	ch.byID = make(map[ChipID]*Chip, len(d.Chips))
	skipped := make(map[ChipID]bool)
	for _, sub := range d.Chips {
		if _, dup := ch.byID[sub.ID]; dup || skipped[sub.ID] || sub.ID == Self {
			c.freeChip(ch)
			return nil, errors.Errorf("chip %s: invalid or duplicate chip ID %d", d.Name, sub.ID)
		}
		sd, ok := c.lib.Lookup(sub.Chip)
		if !ok {
			log.WithFields(logrus.Fields{"part": sub.Chip, "id": sub.ID}).Warn("unknown chip, part skipped")
			skipped[sub.ID] = true
			continue
		}
		k, err := c.instantiate(sd, sub, ch, stack)
		if err != nil {
			c.freeChip(ch)
			return nil, err
		}
		if k == nil {
			skipped[sub.ID] = true
			continue
		}
		ch.children = append(ch.children, k)
		ch.byID[sub.ID] = k
	}
	for _, w := range d.Wires {
		if skipped[w.From.Chip] || skipped[w.To.Chip] {
			log.WithField("wire", w.String()).Debug("wire to skipped part dropped")
			continue
		}
		if err := c.connect(ch, w); err != nil {
			c.freeChip(ch)
			return nil, errors.Wrapf(err, "chip %s: wire %s", d.Name, w)
		}
	}
	return ch, nil
}

// freeChip releases the pins of ch and all its descendants.
//
func (c *Circuit) freeChip(ch *Chip) {
	c.walk(ch, func(k *Chip) {
		for _, i := range k.in {
			c.freePin(i)
		}
		for _, i := range k.out {
			c.freePin(i)
		}
		k.in, k.out = nil, nil
	})
}
