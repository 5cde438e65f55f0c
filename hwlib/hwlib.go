// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwlib provides a library of reusable chips for dlsim, all composed
// from NAND gates and the builtin splitters and mergers.
//
package hwlib

import (
	"github.com/db47h/dlsim"
	"github.com/pkg/errors"
)

// common pin names
const (
	pA   = "a"
	pB   = "b"
	pIn  = "in"
	pSel = "sel"
	pOut = "out"
)

// Part functions for the builtin chips used here.
//
var (
	Nand     = dlsim.PartFn("NAND")
	Split4   = dlsim.PartFn("SPLIT-4")
	Merge4   = dlsim.PartFn("MERGE-4")
	Clock    = dlsim.PartFn("CLOCK")
	Bus1     = dlsim.PartFn("BUS-1")
	TriState = dlsim.PartFn("TRISTATE")
)

type builder struct {
	lib dlsim.Library
	err error
}

func (b *builder) chip(name, inputs, outputs string, parts ...dlsim.Part) {
	if b.err != nil {
		return
	}
	d, err := dlsim.Compose(b.lib, name, inputs, outputs, parts)
	if err != nil {
		b.err = errors.Wrapf(err, "hwlib: %s", name)
		return
	}
	b.lib.Add(d)
}

// Library returns a new library with the chips of this package. The builtin
// chips are always available through Library.Lookup.
//
func Library() (dlsim.Library, error) {
	b := &builder{lib: make(dlsim.Library)}
	gates(b)
	muxes(b)
	latches(b)
	arith(b)
	if b.err != nil {
		return nil, b.err
	}
	return b.lib, nil
}

// Standard is like Library but panics on error.
//
func Standard() dlsim.Library {
	lib, err := Library()
	if err != nil {
		panic(err)
	}
	return lib
}
