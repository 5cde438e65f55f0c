// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package hdl implements the lexer and parsers for the small text notations
// used to describe chips: pin lists, part connections, pin addresses and wires.
//
package hdl

import (
	"strconv"
	"unicode"
	"unicode/utf8"
)

// Type is the type of a lexed item.
//
type Type int

// Tokens
const (
	EOF Type = iota
	Raw
	Ident
	Int
	BracketOpen
	BracketClose
	ParenOpen
	ParenClose
	Comma
	Equal
	Dot
	Arrow
)

var typeNames = [...]string{
	EOF:          "end of input",
	Raw:          "character",
	Ident:        "identifier",
	Int:          "integer",
	BracketOpen:  "'['",
	BracketClose: "']'",
	ParenOpen:    "'('",
	ParenClose:   "')'",
	Comma:        "','",
	Equal:        "'='",
	Dot:          "'.'",
	Arrow:        "'->'",
}

func (t Type) String() string {
	if t >= 0 && int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "token(" + strconv.Itoa(int(t)) + ")"
}

// Item is a lexed token. Value is a string for identifiers, an int for
// integers and a rune for Raw items.
//
type Item struct {
	Type  Type
	Pos   int
	Value interface{}
}

func (i Item) String() string {
	switch i.Type {
	case Ident:
		return "identifier " + strconv.Quote(i.Value.(string))
	case Int:
		return "integer " + strconv.Itoa(i.Value.(int))
	case Raw:
		return "character " + strconv.QuoteRune(i.Value.(rune))
	}
	return i.Type.String()
}

// Lexer splits its input into items.
//
type Lexer struct {
	input string
	pos   int // current position in input
	start int // start of the current item
	cur   rune
	width int
	done  bool
}

// NewLexer returns a new lexer for i/o specs and connection descriptions.
//
func NewLexer(input string) *Lexer {
	return &Lexer{input: input}
}

func (l *Lexer) next() rune {
	if l.pos >= len(l.input) {
		l.width = 0
		l.cur = -1
		return -1
	}
	l.cur, l.width = utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += l.width
	return l.cur
}

func (l *Lexer) backup() {
	l.pos -= l.width
	l.width = 0
}

func (l *Lexer) emit(t Type, v interface{}) Item {
	return Item{Type: t, Pos: l.start, Value: v}
}

// Lex returns the next item. Once the end of input or an invalid character has
// been reached, it only returns EOF items.
//
func (l *Lexer) Lex() Item {
	if l.done {
		return Item{Type: EOF, Pos: len(l.input)}
	}
	for {
		l.start = l.pos
		r := l.next()
		switch {
		case r == -1:
			l.done = true
			return l.emit(EOF, nil)
		case unicode.IsSpace(r):
			continue
		case unicode.IsLetter(r) || r == '_':
			return l.lexIdent()
		case '0' <= r && r <= '9':
			return l.lexNumber()
		case r == '[':
			return l.emit(BracketOpen, "[")
		case r == ']':
			return l.emit(BracketClose, "]")
		case r == '(':
			return l.emit(ParenOpen, "(")
		case r == ')':
			return l.emit(ParenClose, ")")
		case r == ',':
			return l.emit(Comma, ",")
		case r == '=':
			return l.emit(Equal, "=")
		case r == '.':
			return l.emit(Dot, ".")
		case r == '-':
			if l.next() == '>' {
				return l.emit(Arrow, "->")
			}
			l.backup()
		}
		l.done = true
		return l.emit(Raw, r)
	}
}

func (l *Lexer) lexNumber() Item {
	i := int(l.cur - '0')
	r := l.next()
	for '0' <= r && r <= '9' {
		i = i*10 + int(r-'0')
		r = l.next()
	}
	if r != -1 {
		l.backup()
	}
	return l.emit(Int, i)
}

func (l *Lexer) lexIdent() Item {
	r := l.next()
	for unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '-' {
		if r == '-' && l.pos < len(l.input) && l.input[l.pos] == '>' {
			break
		}
		r = l.next()
	}
	if r != -1 {
		l.backup()
	}
	return l.emit(Ident, l.input[l.start:l.pos])
}
