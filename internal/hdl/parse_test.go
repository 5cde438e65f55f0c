package hdl_test

import (
	"testing"

	"github.com/db47h/dlsim/internal/hdl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLexer(t *testing.T) {
	l := hdl.NewLexer("SPLIT-4[3](a=b_0) self.12 -> 3.0 @ x")
	var types []hdl.Type
	var vals []interface{}
	for {
		i := l.Lex()
		types = append(types, i.Type)
		vals = append(vals, i.Value)
		if i.Type == hdl.EOF {
			break
		}
	}
	assert.Equal(t, []hdl.Type{
		hdl.Ident, hdl.BracketOpen, hdl.Int, hdl.BracketClose,
		hdl.ParenOpen, hdl.Ident, hdl.Equal, hdl.Ident, hdl.ParenClose,
		hdl.Ident, hdl.Dot, hdl.Int, hdl.Arrow, hdl.Int, hdl.Dot, hdl.Int,
		hdl.Raw, hdl.EOF,
	}, types)
	assert.Equal(t, "SPLIT-4", vals[0])
	assert.Equal(t, 12, vals[11])
	assert.Equal(t, '@', vals[16])
	// sticky EOF
	assert.Equal(t, hdl.EOF, l.Lex().Type)
}

func TestParsePins(t *testing.T) {
	data := []struct {
		in  string
		out []hdl.PinSpec
		err bool
	}{
		{"", nil, false},
		{"a", []hdl.PinSpec{{"a", 1}}, false},
		{" a, b , data[8]", []hdl.PinSpec{{"a", 1}, {"b", 1}, {"data", 8}}, false},
		{"a,", nil, true},
		{"a[", nil, true},
		{"a[x]", nil, true},
		{"a b", nil, true},
		{"4", nil, true},
	}
	for _, d := range data {
		ps, err := hdl.ParsePins(d.in)
		if d.err {
			assert.Error(t, err, d.in)
			continue
		}
		require.NoError(t, err, d.in)
		assert.Equal(t, d.out, ps, d.in)
	}
}

func TestParseConns(t *testing.T) {
	cs, err := hdl.ParseConns("a=x, b = y,out=z-1")
	require.NoError(t, err)
	assert.Equal(t, []hdl.Conn{{"a", "x"}, {"b", "y"}, {"out", "z-1"}}, cs)

	for _, s := range []string{"a", "a=", "a=b,", "=b", "a=b c=d"} {
		_, err := hdl.ParseConns(s)
		assert.Error(t, err, s)
	}
}

func TestParseWire(t *testing.T) {
	from, to, err := hdl.ParseWire("self.0->12.3")
	require.NoError(t, err)
	assert.Equal(t, hdl.Address{Self: true, Pin: 0}, from)
	assert.Equal(t, hdl.Address{Chip: 12, Pin: 3}, to)

	for _, s := range []string{"self.0", "self.0 - 1.2", "me.0 -> 1.2", "1 -> 2", "1.2 -> 3.4 ->"} {
		_, _, err := hdl.ParseWire(s)
		assert.Error(t, err, s)
	}
	_, err = hdl.ParseAddress("self.x")
	assert.EqualError(t, err, `in "self.x" at pos 6: expected pin number, got identifier "x"`)
}

func TestParsePart(t *testing.T) {
	p, err := hdl.ParsePart("KEY[65](out=k)")
	require.NoError(t, err)
	assert.Equal(t, hdl.Part{Name: "KEY", State: []int{65}, Conns: []hdl.Conn{{"out", "k"}}}, p)

	p, err = hdl.ParsePart("CLOCK()")
	require.NoError(t, err)
	assert.Equal(t, "CLOCK", p.Name)
	assert.Empty(t, p.Conns)

	p, err = hdl.ParsePart("PULSE[](in=a, out=b)")
	require.NoError(t, err)
	assert.Empty(t, p.State)

	for _, s := range []string{"NAND", "NAND(a=b", "NAND[x](a=b)", "NAND(a=b) x", "(a=b)"} {
		_, err := hdl.ParsePart(s)
		assert.Error(t, err, s)
	}
}
