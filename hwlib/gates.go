// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/dlsim"

// Gates.
//
//	NOT   in -> out
//	AND   a, b -> out
//	OR    a, b -> out
//	NOR   a, b -> out
//	XOR   a, b -> out
//	XNOR  a, b -> out
//
var (
	Not  = dlsim.PartFn("NOT")
	And  = dlsim.PartFn("AND")
	Or   = dlsim.PartFn("OR")
	Nor  = dlsim.PartFn("NOR")
	Xor  = dlsim.PartFn("XOR")
	Xnor = dlsim.PartFn("XNOR")
)

func gates(b *builder) {
	b.chip("NOT", pIn, pOut,
		Nand("a=in, b=in, out=out"))
	b.chip("AND", "a, b", pOut,
		Nand("a=a, b=b, out=nab"),
		Not("in=nab, out=out"))
	b.chip("OR", "a, b", pOut,
		Not("in=a, out=na"),
		Not("in=b, out=nb"),
		Nand("a=na, b=nb, out=out"))
	b.chip("NOR", "a, b", pOut,
		Or("a=a, b=b, out=o"),
		Not("in=o, out=out"))
	b.chip("XOR", "a, b", pOut,
		Nand("a=a, b=b, out=nab"),
		Nand("a=a, b=nab, out=w0"),
		Nand("a=nab, b=b, out=w1"),
		Nand("a=w0, b=w1, out=out"))
	b.chip("XNOR", "a, b", pOut,
		Xor("a=a, b=b, out=x"),
		Not("in=x, out=out"))
}
