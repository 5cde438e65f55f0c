// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hwlib

import "github.com/db47h/dlsim"

// HalfAdder returns a half adder.
//
//	Inputs: a, b
//	Outputs: s, c
//	Function: s = lsb(a + b)
//	          c = msb(a + b)
//
var HalfAdder = dlsim.PartFn("HALF-ADDER")

// FullAdder returns a 3 bit adder.
//
//	Inputs: a, b, cin
//	Outputs: s, cout
//	Function: s = lsb(a + b + cin)
//	          cout = msb(a + b + cin)
//
var FullAdder = dlsim.PartFn("FULL-ADDER")

// Adder4 returns a 4 bits adder.
//
//	Inputs: a[4], b[4]
//	Outputs: out[4], c
//
var Adder4 = dlsim.PartFn("ADD-4")

func arith(b *builder) {
	b.chip("HALF-ADDER", "a, b", "s, c",
		Xor("a=a, b=b, out=s"),
		And("a=a, b=b, out=c"))
	b.chip("FULL-ADDER", "a, b, cin", "s, cout",
		HalfAdder("a=a, b=b, s=s0, c=c0"),
		HalfAdder("a=s0, b=cin, s=s, c=c1"),
		Or("a=c0, b=c1, out=cout"))
	b.chip("ADD-4", "a[4], b[4]", "out[4], c",
		Split4("in=a, b0=a0, b1=a1, b2=a2, b3=a3"),
		Split4("in=b, b0=b0, b1=b1, b2=b2, b3=b3"),
		HalfAdder("a=a0, b=b0, s=s0, c=c0"),
		FullAdder("a=a1, b=b1, cin=c0, s=s1, cout=c1"),
		FullAdder("a=a2, b=b2, cin=c1, s=s2, cout=c2"),
		FullAdder("a=a3, b=b3, cin=c2, s=s3, cout=c"),
		Merge4("b0=s0, b1=s1, b2=s2, b3=s3, out=out"))
}
