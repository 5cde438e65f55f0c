// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/dlsim"

// Mux returns a multiplexer.
//
//	Inputs: a, b, sel
//	Outputs: out
//	Function: If sel=0 then out=a else out=b.
//
var Mux = dlsim.PartFn("MUX")

// DMux returns a demultiplexer.
//
//	Inputs: in, sel
//	Outputs: a, b
//	Function: If sel=0 then {a=in, b=0} else {a=0, b=in}
//
var DMux = dlsim.PartFn("DMUX")

func muxes(b *builder) {
	b.chip("MUX", "a, b, sel", pOut,
		Not("in=sel, out=nsel"),
		Nand("a=a, b=nsel, out=x"),
		Nand("a=b, b=sel, out=y"),
		Nand("a=x, b=y, out=out"))
	b.chip("DMUX", "in, sel", "a, b",
		Not("in=sel, out=nsel"),
		And("a=in, b=nsel, out=a"),
		And("a=in, b=sel, out=b"))
}
