// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"hash/fnv"
	"math/rand"
	"time"
)

// Random stream names.
//
const (
	StreamConflict = "conflict" // bus contention coin flips
	StreamSchedule = "schedule" // evaluation order fallbacks and swaps
)

// streams hands out independent random sources derived from a single seed, so
// that drawing from one never shifts the sequence of another.
//
// Not safe for concurrent use.
//
type streams struct {
	seed int64
	rs   map[string]*rand.Rand
	fn   func(string) *rand.Rand
}

func newStreams(seed int64, fn func(string) *rand.Rand) *streams {
	if seed == 0 && fn == nil {
		seed = time.Now().UnixNano()
	}
	return &streams{seed: seed, rs: make(map[string]*rand.Rand), fn: fn}
}

func (s *streams) get(name string) *rand.Rand {
	if r, ok := s.rs[name]; ok {
		return r
	}
	var r *rand.Rand
	if s.fn != nil {
		r = s.fn(name)
	}
	if r == nil {
		h := fnv.New64a()
		h.Write([]byte(name))
		r = rand.New(rand.NewSource(s.seed ^ int64(h.Sum64())))
	}
	s.rs[name] = r
	return r
}
