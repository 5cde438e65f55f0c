// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package loop runs a dlsim circuit on a dedicated goroutine.
//
// The loop goroutine owns the circuit once started: structural edits are
// queued and applied at tick boundaries, inputs are handed over through atomic
// pointers and the state of the circuit is published as immutable frames.
// Nothing else may touch the circuit until Stop returns.
//
package loop

import (
	"math"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/db47h/dlsim"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Errors returned by Start and Enqueue.
//
var (
	ErrStarted   = errors.New("loop already started")
	ErrQueueFull = errors.New("edit queue full")
)

const (
	pauseSleep    = 10 * time.Millisecond
	measureWindow = 250 * time.Millisecond
)

// A Loop runs a circuit at a target tick rate.
//
type Loop struct {
	c      *dlsim.Circuit
	log    logrus.FieldLogger
	pubInt time.Duration

	edits chan dlsim.Edit
	done  chan struct{}

	started  atomic.Bool
	running  atomic.Bool
	paused   atomic.Bool
	steps    atomic.Int64
	tps      atomic.Int64
	measured atomic.Uint64 // float64 bits

	frame  atomic.Pointer[dlsim.Frame]
	inputs atomic.Pointer[[]dlsim.Value]
	keys   atomic.Pointer[dlsim.KeySet]
}

// New returns a stopped loop for c, set up from the circuit's configuration.
//
func New(c *dlsim.Circuit) *Loop {
	cfg := c.Config()
	l := &Loop{
		c:      c,
		log:    cfg.Logger,
		pubInt: cfg.PublishInterval,
		edits:  make(chan dlsim.Edit, cfg.EditQueue),
		done:   make(chan struct{}),
	}
	if l.log == nil {
		l.log = logrus.StandardLogger()
	}
	l.tps.Store(int64(cfg.TicksPerSecond))
	l.frame.Store(c.Snapshot())
	return l
}

// Start starts the loop goroutine. A loop can only be started once.
//
func (l *Loop) Start() error {
	if !l.started.CompareAndSwap(false, true) {
		return ErrStarted
	}
	l.running.Store(true)
	go l.run()
	return nil
}

// Stop stops the loop and waits for its goroutine to exit. The circuit can be
// used again once Stop returns.
//
func (l *Loop) Stop() {
	if !l.started.Load() {
		return
	}
	l.running.Store(false)
	<-l.done
}

// Pause suspends the simulation.
//
func (l *Loop) Pause() { l.paused.Store(true) }

// Resume resumes a paused simulation.
//
func (l *Loop) Resume() {
	l.steps.Store(0)
	l.paused.Store(false)
}

// Paused returns true if the loop is paused.
//
func (l *Loop) Paused() bool { return l.paused.Load() }

// Step runs a single tick while paused. A frame is published after each step.
//
func (l *Loop) Step() { l.steps.Add(1) }

// SetTicksPerSecond sets the target simulation speed. 0 or less runs as fast as
// possible.
//
func (l *Loop) SetTicksPerSecond(tps int) {
	if tps < 0 {
		tps = 0
	}
	l.tps.Store(int64(tps))
}

// TicksPerSecond returns the measured simulation speed.
//
func (l *Loop) TicksPerSecond() float64 {
	return math.Float64frombits(l.measured.Load())
}

// SetInputs sets the values of the root inputs for the next ticks.
//
func (l *Loop) SetInputs(vs []dlsim.Value) {
	vs = append([]dlsim.Value(nil), vs...)
	l.inputs.Store(&vs)
}

// SetKeys sets the keys held for the next ticks.
//
func (l *Loop) SetKeys(k dlsim.KeySet) {
	l.keys.Store(&k)
}

// Frame returns the latest published frame.
//
func (l *Loop) Frame() *dlsim.Frame { return l.frame.Load() }

// Enqueue queues a structural edit. It will be applied before the next tick.
//
func (l *Loop) Enqueue(e dlsim.Edit) error {
	select {
	case l.edits <- e:
		return nil
	default:
		return ErrQueueFull
	}
}

// Apply queues e and returns a channel that receives the outcome of the edit.
//
func (l *Loop) Apply(e dlsim.Edit) <-chan error {
	r := make(chan error, 1)
	e.Result = r
	if err := l.Enqueue(e); err != nil {
		r <- err
	}
	return r
}

func (l *Loop) run() {
	defer close(l.done)
	l.log.WithField("tps", l.tps.Load()).Info("simulation started")

	var (
		last     = time.Now()
		lastPub  = last
		winStart = last
		winTicks = 0
		idle     = false
	)
	for l.running.Load() {
		if l.paused.Load() {
			if !idle {
				l.publish()
				idle = true
			}
			if l.steps.Load() <= 0 {
				if l.drain() > 0 {
					l.publish()
				} else {
					time.Sleep(pauseSleep)
				}
				continue
			}
			l.steps.Add(-1)
			l.tick()
			l.publish()
			lastPub = time.Now()
			continue
		}

		if tps := l.tps.Load(); tps > 0 {
			d := time.Second / time.Duration(tps)
			for time.Since(last) < d && l.running.Load() && !l.paused.Load() {
				runtime.Gosched()
			}
			if !l.running.Load() || l.paused.Load() {
				continue
			}
		}
		if idle {
			winStart, winTicks = time.Now(), 0
			idle = false
		}
		last = time.Now()
		l.tick()
		winTicks++

		if el := last.Sub(winStart); el >= measureWindow {
			l.measured.Store(math.Float64bits(float64(winTicks) / el.Seconds()))
			winStart, winTicks = last, 0
		}
		if last.Sub(lastPub) >= l.pubInt {
			l.publish()
			lastPub = last
		}
	}
	l.drain()
	l.publish()
	l.log.WithField("ticks", l.c.Ticks()).Info("simulation stopped")
}

func (l *Loop) tick() {
	l.drain()
	var in dlsim.Input
	if vs := l.inputs.Load(); vs != nil {
		in.Values = *vs
	}
	if k := l.keys.Load(); k != nil {
		in.Keys = *k
	}
	l.c.Tick(in)
}

// drain applies all queued edits without blocking and returns how many were
// applied.
//
func (l *Loop) drain() (n int) {
	for ; ; n++ {
		select {
		case e := <-l.edits:
			err := l.c.Apply(e)
			if err != nil {
				l.log.WithError(err).WithField("op", e.Op.String()).Warn("edit failed")
			}
			if e.Result != nil {
				select {
				case e.Result <- err:
				default:
				}
			}
		default:
			return n
		}
	}
}

func (l *Loop) publish() {
	l.frame.Store(l.c.Snapshot())
}
