// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hwtest provides utility functions for testing circuits.
//
package hwtest

import (
	"fmt"
	"math/rand"
	"strings"
	"testing"
	"time"

	"github.com/db47h/dlsim"
)

// maxExhaustive is the number of input bits up to which ComparePart tries all
// input combinations.
const maxExhaustive = 12

func sameIO(t *testing.T, what string, p1, p2 []dlsim.PinDesc) {
	t.Helper()
	if len(p1) != len(p2) {
		t.Fatalf("%s count mismatch: %d != %d", what, len(p1), len(p2))
	}
	for i := range p1 {
		if p1[i].Name != p2[i].Name || p1[i].Width != p2[i].Width {
			t.Fatalf("%s %d mismatch: %s[%d] != %s[%d]", what, i, p1[i].Name, p1[i].Width, p2[i].Name, p2[i].Width)
		}
	}
}

// ComparePart builds chips name1 and name2 from lib and compares their outputs
// given the same inputs. Both chips must have the same input/output
// interface. Each input vector is held for settle ticks before outputs are
// compared.
//
// All input combinations are tried if the chips have no more than 12 input
// bits, 4096 random vectors otherwise.
//
func ComparePart(t *testing.T, lib dlsim.Library, name1, name2 string, settle int) {
	t.Helper()

	cfg := dlsim.DefaultConfig()
	cfg.Seed = 1
	c1, err := dlsim.Build(lib, name1, cfg)
	if err != nil {
		t.Fatal(err)
	}
	c2, err := dlsim.Build(lib, name2, cfg)
	if err != nil {
		t.Fatal(err)
	}
	ins := c1.Inputs()
	sameIO(t, "input", ins, c2.Inputs())
	sameIO(t, "output", c1.OutputPins(), c2.OutputPins())
	if settle < 1 {
		settle = 1
	}

	bits := 0
	for _, p := range ins {
		bits += p.Width
	}
	iter := 1 << uint(maxExhaustive)
	exhaustive := bits <= maxExhaustive
	if exhaustive {
		iter = 1 << uint(bits)
	}
	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))

	start := time.Now()
	in := dlsim.Input{Values: make([]dlsim.Value, len(ins))}
	for i := 0; i < iter; i++ {
		v := uint64(i)
		if !exhaustive {
			v = rnd.Uint64()
		}
		for j, p := range ins {
			in.Values[j] = dlsim.MakeValue(p.Width, v)
			if p.Width < 64 {
				v >>= uint(p.Width)
			}
		}
		c1.Run(settle, in)
		c2.Run(settle, in)
		o1, o2 := c1.Outputs(), c2.Outputs()
		for o := range o1 {
			if o1[o] != o2[o] {
				t.Fatal(errString(ins, in.Values, c1.OutputPins()[o].Name, o1[o], o2[o]))
			}
		}
	}
	t.Logf("%d components. %d ticks in %v", c1.Size()+c2.Size(), c1.Ticks()+c2.Ticks(), time.Since(start))
}

func errString(ins []dlsim.PinDesc, vals []dlsim.Value, oname string, ex, got dlsim.Value) string {
	var b strings.Builder
	for i, p := range ins {
		if b.Len() > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.Name)
		b.WriteRune('=')
		b.WriteString(vals[i].String())
	}
	return fmt.Sprintf("\nExpected %s => %s=%v\nGot %v", b.String(), oname, ex, got)
}
