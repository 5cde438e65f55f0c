// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

// A pin is a slot in the pin arena of a Circuit. Pins reference each other by
// arena index only; the owning chip holds the indices of its own pins.
//
type pin struct {
	chip  *Chip
	id    PinID
	name  string
	input bool // input pin of its chip
	value Value
	src   []int // pins driving this one
	fwd   []int // pins driven by this one
	stamp uint64
	recv  int  // inputs received during tick stamp
	stale bool // last evaluated before all of its sources reported
	live  bool
}

func (p *pin) ready(tick uint64) bool {
	return len(p.src) == 0 || p.stamp == tick && p.recv >= len(p.src)
}

// resolve combines the current value of a pin with a new source. Driven bits
// take precedence over disconnected ones. If driven bits conflict, one of the
// two words wins as a whole: src if flip is true, cur otherwise.
//
func resolve(cur, src Value, flip bool) Value {
	driven := ^cur.float & ^src.float
	if (cur.bits^src.bits)&driven != 0 && flip {
		cur, src = src, cur
	}
	return Value{
		bits:  cur.bits | src.bits&cur.float,
		float: cur.float & src.float,
		width: cur.width,
	}
}

// receive delivers v to pin i. The first value received in a tick replaces the
// pin value, others are combined with it. Once all sources of an input pin
// have reported, its chip is notified.
//
func (c *Circuit) receive(i int, v Value) {
	p := &c.pins[i]
	if w := p.value.Width(); v.Width() != w {
		v = v.Resize(w)
	}
	if p.stamp != c.tick {
		p.stamp = c.tick
		p.recv = 0
	}
	if p.recv == 0 {
		p.value = v
	} else {
		p.value = resolve(p.value, v, c.conflict.Intn(2) == 1)
	}
	p.recv++
	if p.input && p.recv == len(p.src) {
		p.chip.notifyReady(c.tick)
	}
}

// propagate sends the value of pin i to every pin it drives.
//
func (c *Circuit) propagate(i int) {
	v := c.pins[i].value
	for _, t := range c.pins[i].fwd {
		c.receive(t, v)
	}
}

func (c *Circuit) allocPin(owner *Chip, pd PinDesc, input bool) int {
	p := pin{
		chip:  owner,
		id:    pd.ID,
		name:  pd.Name,
		input: input,
		value: Floating(pd.width()),
		live:  true,
	}
	if n := len(c.free); n > 0 {
		i := c.free[n-1]
		c.free = c.free[:n-1]
		c.pins[i] = p
		return i
	}
	c.pins = append(c.pins, p)
	return len(c.pins) - 1
}

func removeIndex(s []int, v int) ([]int, bool) {
	for i, x := range s {
		if x == v {
			return append(s[:i], s[i+1:]...), true
		}
	}
	return s, false
}

// detachPin removes every connection to and from pin i.
//
func (c *Circuit) detachPin(i int) {
	for _, s := range c.pins[i].src {
		c.pins[s].fwd, _ = removeIndex(c.pins[s].fwd, i)
	}
	for _, t := range c.pins[i].fwd {
		tp := &c.pins[t]
		tp.src, _ = removeIndex(tp.src, i)
		if len(tp.src) == 0 {
			tp.value = tp.value.Float()
		}
		tp.chip.rewire(c)
	}
	c.pins[i].src = nil
	c.pins[i].fwd = nil
	c.pins[i].value = c.pins[i].value.Float()
	c.pins[i].chip.rewire(c)
}

func (c *Circuit) freePin(i int) {
	c.detachPin(i)
	c.pins[i] = pin{}
	c.free = append(c.free, i)
}
