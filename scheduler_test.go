package dlsim_test

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/db47h/dlsim"
	"github.com/db47h/dlsim/hwlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func wires(t *testing.T, ws ...string) []dlsim.WireDesc {
	t.Helper()
	r := make([]dlsim.WireDesc, len(ws))
	for i, s := range ws {
		w, err := dlsim.ParseWire(s)
		require.NoError(t, err, s)
		r[i] = w
	}
	return r
}

func pins(first dlsim.PinID, widths ...int) []dlsim.PinDesc {
	ps := make([]dlsim.PinDesc, len(widths))
	for i, w := range widths {
		ps[i] = dlsim.PinDesc{ID: first + dlsim.PinID(i), Width: w}
	}
	return ps
}

func testConfig(seed int64) dlsim.Config {
	cfg := dlsim.DefaultConfig()
	cfg.Seed = seed
	return cfg
}

func build(t *testing.T, lib dlsim.Library, name string, seed int64) *dlsim.Circuit {
	t.Helper()
	c, err := dlsim.Build(lib, name, testConfig(seed))
	require.NoError(t, err)
	return c
}

func values(vs ...dlsim.Value) dlsim.Input { return dlsim.Input{Values: vs} }

func TestTick_floatingInput(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{
		Name:    "OPEN",
		Inputs:  pins(0, 8),
		Outputs: pins(1, 8, 1),
		Chips:   []dlsim.SubChipDesc{{ID: 0, Chip: "NAND"}, {ID: 1, Chip: "BUS-8"}},
		// NAND inputs left open, bus input open
		Wires: wires(t, "0.2 -> self.2"),
	})
	c := build(t, lib, "OPEN", 1)
	for i := 0; i < 10; i++ {
		c.Tick(values()) // root input not driven either
		f := c.Snapshot()
		for _, id := range []dlsim.PinID{0, 1} {
			pi, ok := f.Pin([]dlsim.ChipID{0}, id)
			require.True(t, ok)
			assert.True(t, pi.Floating)
			assert.True(t, pi.Value.IsFloating())
			assert.Zero(t, pi.Inputs)
		}
		pi, ok := f.Pin(nil, 0)
		require.True(t, ok)
		assert.True(t, pi.Value.IsFloating(), "undriven root input")
		pi, ok = f.Pin(nil, 1)
		require.True(t, ok)
		assert.True(t, pi.Floating, "unwired root output")
		assert.True(t, pi.Value.IsFloating())
		pi, ok = f.Pin([]dlsim.ChipID{1}, 0)
		require.True(t, ok)
		assert.True(t, pi.Value.IsFloating())
		assert.Equal(t, 8, pi.Width)
		assert.Equal(t, uint64(i+1), f.Tick)
	}
}

func TestTick_conflict(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{
		Name:    "CONFLICT",
		Inputs:  pins(0, 8, 8),
		Outputs: pins(2, 8),
		Wires:   wires(t, "self.0 -> self.2", "self.1 -> self.2"),
	})
	c := build(t, lib, "CONFLICT", 7)
	a, b := dlsim.MakeValue(8, 0x0f), dlsim.MakeValue(8, 0x3c)

	// a single driven source wins over a floating one
	for i := 0; i < 100; i++ {
		c.Tick(values(a, dlsim.Floating(8)))
		require.Equal(t, a, c.Outputs()[0])
	}

	const n = 10000
	na := 0
	for i := 0; i < n; i++ {
		c.Tick(values(a, b))
		switch c.Outputs()[0] {
		case a:
			na++
		case b:
		default:
			t.Fatalf("tick %d: resolved value %v is neither %v nor %v", i, c.Outputs()[0], a, b)
		}
	}
	// 5 sigma
	assert.InDelta(t, n/2, na, 250, "a won %d times out of %d", na, n)
}

func TestTick_conflictRand(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{
		Name:    "CONFLICT",
		Inputs:  pins(0, 1, 1),
		Outputs: pins(2, 1),
		Wires:   wires(t, "self.0 -> self.2", "self.1 -> self.2"),
	})
	var streams []string
	cfg := dlsim.DefaultConfig()
	cfg.Rand = func(name string) *rand.Rand {
		streams = append(streams, name)
		return rand.New(rand.NewSource(1))
	}
	c, err := dlsim.Build(lib, "CONFLICT", cfg)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{dlsim.StreamConflict, dlsim.StreamSchedule}, streams)

	// same seed, same outcomes
	run := func(c *dlsim.Circuit) (r []dlsim.Value) {
		for i := 0; i < 64; i++ {
			c.Tick(values(dlsim.Bool(true), dlsim.Bool(false)))
			r = append(r, c.Outputs()[0])
		}
		return r
	}
	c2, err := dlsim.Build(lib, "CONFLICT", cfg)
	require.NoError(t, err)
	assert.Equal(t, run(c), run(c2))
}

// shuffled returns a copy of chip name with its parts listed in random order.
//
func shuffled(lib dlsim.Library, name, newName string, rnd *rand.Rand) *dlsim.ChipDesc {
	d := *lib[name]
	d.Name = newName
	d.Chips = append([]dlsim.SubChipDesc(nil), d.Chips...)
	rnd.Shuffle(len(d.Chips), func(i, j int) { d.Chips[i], d.Chips[j] = d.Chips[j], d.Chips[i] })
	return &d
}

func TestTick_orderIndependence(t *testing.T) {
	lib := hwlib.Standard()
	rnd := rand.New(rand.NewSource(3))
	names := []string{"ADD-4"}
	for i := 0; i < 8; i++ {
		n := "ADD-4-" + strconv.Itoa(i)
		lib.Add(shuffled(lib, "ADD-4", n, rnd))
		names = append(names, n)
	}
	for a := uint64(0); a < 16; a++ {
		for b := uint64(0); b < 16; b++ {
			in := values(dlsim.MakeValue(4, a), dlsim.MakeValue(4, b))
			for seed, n := range names {
				// fresh circuits: outputs must settle in a single tick
				c := build(t, lib, n, int64(seed+1))
				c.Tick(in)
				out := c.Outputs()
				require.Equal(t, (a+b)&15, out[0].Uint64(), "%s: %d + %d", n, a, b)
				require.Equal(t, (a+b)>>4, out[1].Uint64(), "%s: %d + %d carry", n, a, b)
				require.True(t, out[0].IsDriven() && out[1].IsDriven())
			}
		}
	}
}

func latchLib(t *testing.T) dlsim.Library {
	lib := dlsim.Library{}
	// active low set/reset latch
	lib.Add(&dlsim.ChipDesc{
		Name:    "LATCH",
		Inputs:  []dlsim.PinDesc{{ID: 0, Name: "sn"}, {ID: 1, Name: "rn"}},
		Outputs: []dlsim.PinDesc{{ID: 2, Name: "q"}, {ID: 3, Name: "qn"}},
		Chips:   []dlsim.SubChipDesc{{ID: 0, Chip: "NAND"}, {ID: 1, Chip: "NAND"}},
		Wires: wires(t,
			"self.0 -> 0.0", "1.2 -> 0.1",
			"self.1 -> 1.0", "0.2 -> 1.1",
			"0.2 -> self.2", "1.2 -> self.3"),
	})
	return lib
}

func TestTick_latch(t *testing.T) {
	const settle = 4
	lib := latchLib(t)
	hold := values(dlsim.Bool(true), dlsim.Bool(true))
	set := values(dlsim.Bool(false), dlsim.Bool(true))
	reset := values(dlsim.Bool(true), dlsim.Bool(false))

	for seed := int64(1); seed <= 50; seed++ {
		c := build(t, lib, "LATCH", seed)
		c.Run(settle, hold)
		out := c.Outputs()
		require.True(t, out[0].IsDriven() && out[1].IsDriven(), "seed %d", seed)
		require.NotEqual(t, out[0], out[1], "seed %d: unstable latch after power up", seed)
		// stable
		for i := 0; i < 20; i++ {
			c.Tick(hold)
			require.Equal(t, out, c.Outputs(), "seed %d", seed)
		}

		for _, step := range []struct {
			in     dlsim.Input
			q      bool
			action string
		}{
			{set, true, "set"},
			{hold, true, "hold"},
			{reset, false, "reset"},
			{hold, false, "hold"},
			{set, true, "set"},
		} {
			c.Run(settle, step.in)
			out := c.Outputs()
			require.Equal(t, dlsim.Bool(step.q), out[0], "seed %d %s", seed, step.action)
			require.Equal(t, dlsim.Bool(!step.q), out[1], "seed %d %s", seed, step.action)
		}

		f := c.Snapshot()
		cyclic := 0
		for _, id := range []dlsim.ChipID{0, 1} {
			pi, ok := f.Pin([]dlsim.ChipID{id}, 1)
			require.True(t, ok)
			if pi.Cyclic {
				cyclic++
			}
		}
		assert.Equal(t, 1, cyclic, "seed %d: feedback inputs flagged", seed)
	}
}

func TestTick_clock(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{
		Name:    "OSC",
		Outputs: pins(0, 1),
		Chips:   []dlsim.SubChipDesc{{ID: 0, Chip: "CLOCK"}},
		Wires:   wires(t, "0.0 -> self.0"),
	})
	c := build(t, lib, "OSC", 1)
	c.SetClockDivisor(3)
	var got string
	for i := 0; i < 12; i++ {
		c.Tick(dlsim.Input{})
		got += c.Outputs()[0].String()
	}
	assert.Equal(t, "001110001110", got)
}

func TestTick_ram(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{
		Name:    "MEM",
		Inputs:  pins(0, 8, 8, 1, 1, 1),
		Outputs: pins(5, 8),
		Chips:   []dlsim.SubChipDesc{{ID: 0, Chip: "RAM-256x8", State: []uint32{7}}},
		Wires: wires(t, "self.0 -> 0.0", "self.1 -> 0.1", "self.2 -> 0.2", "self.3 -> 0.3", "self.4 -> 0.4",
			"0.5 -> self.5"),
	})
	c := build(t, lib, "MEM", 1)
	in := func(addr, data uint64, write, reset, clk bool) dlsim.Input {
		return values(dlsim.MakeValue(8, addr), dlsim.MakeValue(8, data), dlsim.Bool(write), dlsim.Bool(reset), dlsim.Bool(clk))
	}
	c.Tick(in(0, 0, false, false, false))
	assert.Equal(t, uint64(7), c.Outputs()[0].Uint64(), "default state")

	c.Tick(in(5, 0xab, true, false, false))
	c.Tick(in(5, 0xab, true, false, true))
	c.Tick(in(5, 0, false, false, false))
	c.Tick(in(0, 0, false, false, true))
	c.Tick(in(5, 0, false, false, false))
	assert.Equal(t, uint64(0xab), c.Outputs()[0].Uint64())

	c.Tick(in(5, 0, false, true, false))
	assert.Equal(t, uint64(0), c.Outputs()[0].Uint64())
	for _, v := range c.Root().Child(0).State()[:256] {
		require.Zero(t, v)
	}
}

func TestTick_audioDisplay(t *testing.T) {
	lib := dlsim.Library{}
	lib.Add(&dlsim.ChipDesc{
		Name:   "AV",
		Inputs: pins(0, 8, 4, 8, 1, 1),
		Chips: []dlsim.SubChipDesc{
			{ID: 0, Chip: "BUZZER"},
			{ID: 1, Chip: "DISPLAY-DOT"},
		},
		Wires: wires(t, "self.0 -> 0.0", "self.1 -> 0.1",
			"self.2 -> 1.0", "self.3 -> 1.1", "self.3 -> 1.2", "self.3 -> 1.3", "self.4 -> 1.4"),
	})
	c := build(t, lib, "AV", 1)
	in := func(clk bool) dlsim.Input {
		return values(dlsim.MakeValue(8, 42), dlsim.MakeValue(4, 15), dlsim.MakeValue(8, 3*dlsim.DisplayWidth+2), dlsim.Bool(true), dlsim.Bool(clk))
	}
	c.Tick(in(false))
	c.Tick(in(true))
	f := c.Snapshot()
	assert.InDelta(t, 0.5, f.Audio()[42], 1e-9)
	assert.Zero(t, f.Audio()[41])
	d, ok := f.Display([]dlsim.ChipID{1})
	require.True(t, ok)
	assert.True(t, d.Dot(2, 3))
	assert.False(t, d.Dot(3, 2))
	_, ok = f.Display([]dlsim.ChipID{0})
	assert.False(t, ok)
}

func wideLib(t *testing.T) dlsim.Library {
	lib := dlsim.Library{}
	ws := []string{"0.2 -> self.2", "6.1 -> self.3", "self.0 -> 6.0"}
	var chips []dlsim.SubChipDesc
	for i := 0; i < 6; i++ {
		chips = append(chips, dlsim.SubChipDesc{ID: dlsim.ChipID(i), Chip: "NAND"})
		ws = append(ws, "self.0 -> "+strconv.Itoa(i)+".0", "self.1 -> "+strconv.Itoa(i)+".1")
	}
	chips = append(chips, dlsim.SubChipDesc{ID: 6, Chip: "BUS-1"})
	lib.Add(&dlsim.ChipDesc{
		Name:    "WIDE",
		Inputs:  pins(0, 1, 1),
		Outputs: pins(2, 1, 1),
		Chips:   chips,
		Wires:   wires(t, ws...),
	})
	return lib
}

func childOrder(c *dlsim.Circuit) string {
	s := ""
	for _, k := range c.Root().Children() {
		s += strconv.Itoa(int(k.ID))
	}
	return s
}

func TestTick_reorder(t *testing.T) {
	lib := wideLib(t)
	in := values(dlsim.Bool(true), dlsim.Bool(true))

	cfg := testConfig(3)
	cfg.ReorderInterval = 1
	c, err := dlsim.Build(lib, "WIDE", cfg)
	require.NoError(t, err)
	seen := map[string]bool{}
	for i := 0; i < 20; i++ {
		c.Tick(in)
		seen[childOrder(c)] = true
		assert.Equal(t, []dlsim.Value{dlsim.Bool(false), dlsim.Bool(true)}, c.Outputs())
	}
	assert.True(t, len(seen) > 1, "order never changed: %v", seen)

	cfg.ReorderInterval = 0
	c, err = dlsim.Build(lib, "WIDE", cfg)
	require.NoError(t, err)
	c.Tick(in)
	first := childOrder(c)
	for i := 0; i < 50; i++ {
		c.Tick(in)
		require.Equal(t, first, childOrder(c), "tick %d", c.Ticks())
	}
	assert.Equal(t, []dlsim.Value{dlsim.Bool(false), dlsim.Bool(true)}, c.Outputs())
}
