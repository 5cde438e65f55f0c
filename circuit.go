// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"math/rand"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Circuit is a runnable circuit simulation: a tree of chips whose pins live in
// a shared arena.
//
// A Circuit is not safe for concurrent use. Run it from a single goroutine,
// like the one managed by package loop.
//
type Circuit struct {
	pins []pin
	free []int
	root *Chip
	lib  Library
	cfg  Config
	log  logrus.FieldLogger

	rnd      *streams
	conflict *rand.Rand
	sched    *rand.Rand

	tick  uint64
	dirty bool // structure changed since the last discovery pass
	env   Env
	audio *Audio

	// scratch buffers for builtin evaluation
	sIn, sOut []Value
}

// Build instantiates the named composite chip of lib into a new Circuit.
// Unset ClockDivisor, PublishInterval and EditQueue settings take their default
// value.
//
// Sub-chips referencing unknown chips or builtin kinds are logged and skipped
// along with their wires. Invalid wires, duplicate IDs and an unknown root
// chip are reported as errors.
//
func Build(lib Library, name string, cfg Config) (*Circuit, error) {
	d, ok := lib.Lookup(name)
	if !ok {
		return nil, errors.Wrapf(ErrNotFound, "chip %s", name)
	}
	if d.Builtin != "" {
		return nil, errors.Errorf("chip %s: root chip must be a composite", name)
	}
	cfg = cfg.withDefaults()
	if lvl, err := logrus.ParseLevel(cfg.LogLevel); err == nil && cfg.Logger == nil {
		l := logrus.New()
		l.SetLevel(lvl)
		cfg.Logger = l
	}
	c := &Circuit{
		lib:   lib,
		cfg:   cfg,
		log:   cfg.logger(),
		rnd:   newStreams(cfg.Seed, cfg.Rand),
		audio: NewAudio(),
		dirty: true,
	}
	c.conflict = c.rnd.get(StreamConflict)
	c.sched = c.rnd.get(StreamSchedule)
	c.env = Env{Divisor: uint64(cfg.ClockDivisor), Audio: c.audio}

	root, err := c.instantiate(d, SubChipDesc{ID: 0, Chip: name}, nil, map[string]bool{})
	if err != nil {
		return nil, err
	}
	c.root = root
	c.log.WithFields(logrus.Fields{"chip": name, "pins": len(c.pins), "chips": c.Size()}).Debug("circuit built")
	return c, nil
}

// Root returns the top level chip.
//
func (c *Circuit) Root() *Chip { return c.root }

// Ticks returns the number of ticks run so far.
//
func (c *Circuit) Ticks() uint64 { return c.tick }

// Config returns the settings the circuit was built with.
//
func (c *Circuit) Config() Config { return c.cfg }

// SetClockDivisor sets the number of ticks per clock half period.
//
func (c *Circuit) SetClockDivisor(d int) {
	if d < 1 {
		d = 1
	}
	c.cfg.ClockDivisor = d
	c.env.Divisor = uint64(d)
}

// Size returns the number of builtin chips in the circuit.
//
func (c *Circuit) Size() int {
	n := 0
	c.walk(c.root, func(ch *Chip) {
		if ch.Kind != Composite {
			n++
		}
	})
	return n
}

// walk calls fn for ch and all of its descendants, parents first.
//
func (c *Circuit) walk(ch *Chip, fn func(*Chip)) {
	if ch == nil {
		return
	}
	fn(ch)
	for _, k := range ch.children {
		c.walk(k, fn)
	}
}

// Find returns the chip at the given path of IDs from the root. An empty path
// is the root chip.
//
func (c *Circuit) Find(path []ChipID) (*Chip, error) {
	ch := c.root
	for i, id := range path {
		k := ch.byID[id]
		if k == nil {
			return nil, errors.Wrapf(ErrNotFound, "chip %s", PathString(path[:i+1]))
		}
		ch = k
	}
	return ch, nil
}

// Value returns the current value of pin id of the chip at path.
//
func (c *Circuit) Value(path []ChipID, id PinID) (Value, error) {
	ch, err := c.Find(path)
	if err != nil {
		return Value{}, err
	}
	i, _, ok := c.chipPin(ch, id)
	if !ok {
		return Value{}, errors.Wrapf(ErrNotFound, "pin %s.%d", PathString(path), id)
	}
	return c.pins[i].value, nil
}
