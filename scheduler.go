// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

// Tick advances the simulation by one tick: root inputs are driven from in,
// then every chip is evaluated once.
//
// Children of a composite are evaluated in dependency order, discovered at
// runtime: the first child whose inputs are all ready runs next. When none is
// ready (feedback loops), a random child runs with stale inputs. The order
// found is cached and replayed until the structure changes, or until a
// periodic reorder pass shakes it up.
//
func (c *Circuit) Tick(in Input) {
	c.tick++
	discover, swap := c.dirty, false
	if !discover && c.cfg.ReorderInterval > 0 && c.sched.Intn(c.cfg.ReorderInterval) == 0 {
		discover, swap = true, true
	}
	c.dirty = false

	c.env.Tick = c.tick
	c.env.Keys = in.Keys
	for i, p := range c.root.in {
		if i < len(in.Values) {
			c.receive(p, in.Values[i])
		} else {
			c.pins[p].value = c.pins[p].value.Float()
		}
	}
	c.evalComposite(c.root, discover, swap)
	c.audio.endTick()
}

// Run runs n ticks with the same input.
//
func (c *Circuit) Run(n int, in Input) {
	for i := 0; i < n; i++ {
		c.Tick(in)
	}
}

func (c *Circuit) evalComposite(ch *Chip, discover, swap bool) {
	for _, p := range ch.in {
		c.propagate(p)
	}
	kids := ch.children
	if !discover {
		for i := len(kids) - 1; i >= 0; i-- {
			c.evalChip(kids[i], false, false)
		}
		return
	}
	if swap && len(kids) > 1 {
		swapAdjacent(kids, c.sched.Intn(len(kids)-1))
	}
	for n := len(kids); n > 0; n-- {
		i := c.next(kids[:n])
		kids[i], kids[n-1] = kids[n-1], kids[i]
		c.evalChip(kids[n-1], true, swap)
	}
}

// swapAdjacent swaps the first pair of adjacent non-bus children found at or
// after index i, wrapping around. It returns false if there is no such pair.
//
func swapAdjacent(kids []*Chip, i int) bool {
	n := len(kids) - 1
	for j := 0; j < n; j++ {
		k := (i + j) % n
		if !kids[k].Kind.IsBus() && !kids[k+1].Kind.IsBus() {
			kids[k], kids[k+1] = kids[k+1], kids[k]
			return true
		}
	}
	return false
}

// next returns the index of the next child to evaluate among pending.
//
func (c *Circuit) next(pending []*Chip) int {
	nonBus := false
	for i, k := range pending {
		if k.ready(c.tick) {
			c.markStale(k, false)
			return i
		}
		nonBus = nonBus || !k.Kind.IsBus()
	}
	i := c.sched.Intn(len(pending))
	if nonBus {
		for pending[i].Kind.IsBus() {
			i = (i + 1) % len(pending)
		}
	}
	c.markStale(pending[i], true)
	return i
}

// markStale flags the inputs of k that have not received all of their
// sources when k is forced to run.
//
func (c *Circuit) markStale(k *Chip, forced bool) {
	for _, i := range k.in {
		p := &c.pins[i]
		p.stale = forced && !p.ready(c.tick)
	}
}

func (c *Circuit) evalChip(k *Chip, discover, swap bool) {
	if k.Kind == Composite {
		c.evalComposite(k, discover, swap)
	} else {
		c.evalBuiltin(k)
	}
	for _, p := range k.out {
		c.propagate(p)
	}
}

func (c *Circuit) evalBuiltin(k *Chip) {
	in, out := c.sIn[:0], c.sOut[:0]
	for _, i := range k.in {
		in = append(in, c.pins[i].value)
	}
	for _, i := range k.out {
		out = append(out, c.pins[i].value)
	}
	Evaluate(k.Kind, &c.env, in, out, k.state)
	for j, i := range k.out {
		p := &c.pins[i]
		p.value = out[j].Resize(p.value.Width())
	}
	c.sIn, c.sOut = in, out
}
