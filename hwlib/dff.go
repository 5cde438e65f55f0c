// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/dlsim"

// SRLatch returns a set/reset latch built from two cross-coupled NAND gates.
// Both s and r high is invalid.
//
//	Inputs: s, r
//	Outputs: q, qn
//
var SRLatch = dlsim.PartFn("SR-LATCH")

// DLatch returns a gated D latch, transparent while en is high.
//
//	Inputs: d, en
//	Outputs: q, qn
//
var DLatch = dlsim.PartFn("D-LATCH")

// DFF returns a master/slave data flip flop. q takes the value of d on the
// rising edge of clk.
//
//	Inputs: d, clk
//	Outputs: q
//
var DFF = dlsim.PartFn("DFF")

// Register4 returns a 4 bit register.
//
//	Inputs: in[4], load, clk
//	Outputs: out[4]
//	Function: out(t+1) = load(t) ? in(t) : out(t) on the rising edge of clk.
//
var Register4 = dlsim.PartFn("REGISTER-4")

func latches(b *builder) {
	b.chip("SR-LATCH", "s, r", "q, qn",
		Not("in=s, out=sn"),
		Not("in=r, out=rn"),
		Nand("a=sn, b=qn, out=q"),
		Nand("a=rn, b=q, out=qn"))
	b.chip("D-LATCH", "d, en", "q, qn",
		Nand("a=d, b=en, out=sn"),
		Not("in=d, out=nd"),
		Nand("a=nd, b=en, out=rn"),
		Nand("a=sn, b=qn, out=q"),
		Nand("a=rn, b=q, out=qn"))
	b.chip("DFF", "d, clk", "q",
		Not("in=clk, out=nclk"),
		DLatch("d=d, en=nclk, q=m"),
		DLatch("d=m, en=clk, q=q"))

	parts := dlsim.Parts{
		Split4("in=in, b0=i0, b1=i1, b2=i2, b3=i3"),
		Merge4("b0=q0, b1=q1, b2=q2, b3=q3, out=out"),
	}
	for _, n := range []string{"0", "1", "2", "3"} {
		parts = append(parts,
			Mux("a=q"+n+", b=i"+n+", sel=load, out=d"+n),
			DFF("d=d"+n+", clk=clk, q=q"+n))
	}
	b.chip("REGISTER-4", "in[4], load, clk", "out[4]", parts...)
}
