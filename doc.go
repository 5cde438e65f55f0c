// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package dlsim is a tick based simulator for tri-state digital logic circuits.

A circuit is a tree of chips. Builtin chips (NAND, clock, RAM, displays...)
are evaluated by Evaluate; composite chips are wirings of other chips,
described by a ChipDesc. Every pin carries a Value of up to 64 bits, each bit
being Low, High or Disconnected. Several wires may drive the same pin: driven
bits then win over disconnected ones and conflicts are settled by a coin flip.

Descriptions can be written by hand, loaded from YAML with LoadLibrary, or
built with Compose from a compact HDL-like syntax:

	xor, err := dlsim.Compose(lib, "XOR", "a, b", "out", dlsim.Parts{
		nand("a=a, b=b, out=nab"),
		nand("a=a, b=nab, out=w0"),
		nand("a=nab, b=b, out=w1"),
		nand("a=w0, b=w1, out=out"),
	})

Build instantiates a chip into a Circuit, and Circuit.Tick runs one tick.
Within a tick, each chip is evaluated once, in an order discovered from the
readiness of its inputs. Feedback loops (latches, flip-flops) are broken by
evaluating a random chip with stale inputs, so that cyclic circuits settle
after a few ticks instead of deadlocking.

The structure of a circuit can be changed between ticks with Circuit.Apply.
Package loop runs a circuit on its own goroutine, applies queued edits at tick
boundaries and publishes immutable Frame snapshots for readers.
*/
package dlsim
