// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package hdl

import (
	"github.com/pkg/errors"
)

// PinSpec is a pin declaration: "name" or "name[width]".
//
type PinSpec struct {
	Name  string
	Width int
}

// Conn connects the pin of a part to a named wire in its host chip: "pin=wire".
//
type Conn struct {
	Pin  string
	Wire string
}

// Address is a pin address "chip.pin" where chip is either an integer or
// "self".
//
type Address struct {
	Self bool
	Chip int
	Pin  int
}

// Part is a part declaration: "NAME[state, ...](pin=wire, ...)".
//
type Part struct {
	Name  string
	State []int
	Conns []Conn
}

type parser struct {
	input string
	l     *Lexer
	i     Item
}

func newParser(input string) *parser {
	p := &parser{input: input, l: NewLexer(input)}
	p.next()
	return p
}

func (p *parser) next() Item {
	p.i = p.l.Lex()
	return p.i
}

func (p *parser) errorf(msg string) error {
	return errors.Errorf("in %q at pos %d: %s, got %s", p.input, p.i.Pos+1, msg, p.i)
}

func (p *parser) expect(t Type, what string) (Item, error) {
	i := p.i
	if i.Type != t {
		return i, p.errorf("expected " + what)
	}
	p.next()
	return i, nil
}

func (p *parser) eof() error {
	if p.i.Type != EOF {
		return p.errorf("expected end of input")
	}
	return nil
}

// ParsePins parses a comma separated list of pin declarations. For example:
//
//	ParsePins("a, b, data[8]") // returns {{"a", 1}, {"b", 1}, {"data", 8}}
//
func ParsePins(input string) ([]PinSpec, error) {
	var out []PinSpec
	p := newParser(input)
	if p.i.Type == EOF {
		return nil, nil
	}
	for {
		id, err := p.expect(Ident, "pin name")
		if err != nil {
			return nil, err
		}
		spec := PinSpec{Name: id.Value.(string), Width: 1}
		if p.i.Type == BracketOpen {
			p.next()
			n, err := p.expect(Int, "bus width")
			if err != nil {
				return nil, err
			}
			spec.Width = n.Value.(int)
			if _, err = p.expect(BracketClose, "closing ']'"); err != nil {
				return nil, err
			}
		}
		out = append(out, spec)
		if p.i.Type != Comma {
			break
		}
		p.next()
	}
	if err := p.eof(); err != nil {
		return nil, err
	}
	return out, nil
}

func (p *parser) conns(end Type) ([]Conn, error) {
	var out []Conn
	if p.i.Type == end {
		return nil, nil
	}
	for {
		lhs, err := p.expect(Ident, "pin name")
		if err != nil {
			return nil, err
		}
		if _, err = p.expect(Equal, "'='"); err != nil {
			return nil, err
		}
		rhs, err := p.expect(Ident, "wire name")
		if err != nil {
			return nil, err
		}
		out = append(out, Conn{lhs.Value.(string), rhs.Value.(string)})
		if p.i.Type != Comma {
			return out, nil
		}
		p.next()
	}
}

// ParseConns parses a comma separated list of connections. For example:
//
//	ParseConns("a=x, b=y, out=z")
//
func ParseConns(input string) ([]Conn, error) {
	p := newParser(input)
	cs, err := p.conns(EOF)
	if err != nil {
		return nil, err
	}
	if err = p.eof(); err != nil {
		return nil, err
	}
	return cs, nil
}

func (p *parser) address() (Address, error) {
	var a Address
	switch p.i.Type {
	case Ident:
		if p.i.Value.(string) != "self" {
			return a, p.errorf("expected chip number or self")
		}
		a.Self = true
	case Int:
		a.Chip = p.i.Value.(int)
	default:
		return a, p.errorf("expected chip number or self")
	}
	p.next()
	if _, err := p.expect(Dot, "'.'"); err != nil {
		return a, err
	}
	n, err := p.expect(Int, "pin number")
	if err != nil {
		return a, err
	}
	a.Pin = n.Value.(int)
	return a, nil
}

// ParseAddress parses a pin address like "3.1" or "self.0".
//
func ParseAddress(input string) (Address, error) {
	p := newParser(input)
	a, err := p.address()
	if err != nil {
		return a, err
	}
	return a, p.eof()
}

// ParseWire parses a wire like "self.0 -> 3.1".
//
func ParseWire(input string) (from, to Address, err error) {
	p := newParser(input)
	if from, err = p.address(); err != nil {
		return
	}
	if _, err = p.expect(Arrow, "'->'"); err != nil {
		return
	}
	if to, err = p.address(); err != nil {
		return
	}
	err = p.eof()
	return
}

// ParsePart parses a part declaration. The optional bracketed list sets the
// default state of the part:
//
//	ParsePart("NAND(a=x, b=y, out=z)")
//	ParsePart("KEY[65](out=k)")
//
func ParsePart(input string) (Part, error) {
	var pt Part
	p := newParser(input)
	id, err := p.expect(Ident, "chip name")
	if err != nil {
		return pt, err
	}
	pt.Name = id.Value.(string)
	if p.i.Type == BracketOpen {
		p.next()
		for p.i.Type != BracketClose {
			n, err := p.expect(Int, "state value")
			if err != nil {
				return pt, err
			}
			pt.State = append(pt.State, n.Value.(int))
			if p.i.Type != Comma {
				break
			}
			p.next()
		}
		if _, err = p.expect(BracketClose, "closing ']'"); err != nil {
			return pt, err
		}
	}
	if _, err = p.expect(ParenOpen, "'('"); err != nil {
		return pt, err
	}
	if pt.Conns, err = p.conns(ParenClose); err != nil {
		return pt, err
	}
	if _, err = p.expect(ParenClose, "closing ')'"); err != nil {
		return pt, err
	}
	return pt, p.eof()
}
