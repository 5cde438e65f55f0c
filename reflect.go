// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"reflect"
	"strings"

	"github.com/pkg/errors"
)

var valueType = reflect.TypeOf(Value{})

type boundField struct {
	index int // struct field index
	pos   int // position in root inputs or outputs
	id    PinID
	width int
}

// A Binding maps the fields of a struct to the root pins of a circuit.
//
type Binding struct {
	v    reflect.Value
	ins  []boundField
	outs []boundField
	inW  []int // root input widths
}

// BindIO binds the fields of the struct pointed to by ptr to the root pins of
// c. Fields are identified by tag.
//
// The field tag must be `hw:"in"` or `hw:"out"` to identify input and output
// pins. By default, the pin name is the field name in lowercase. A specific
// pin name can be forced by adding it in the tag: `hw:"in,pin_name"`.
//
// Fields must be of type bool, any integer type or Value.
//
func BindIO(c *Circuit, ptr interface{}) (*Binding, error) {
	v := reflect.ValueOf(ptr)
	if v.Kind() != reflect.Ptr || v.Elem().Kind() != reflect.Struct {
		return nil, errors.Errorf("BindIO: expected pointer to struct, got %T", ptr)
	}
	v = v.Elem()
	typ := v.Type()
	ins, outs := c.Inputs(), c.OutputPins()
	b := &Binding{v: v}
	for _, p := range ins {
		b.inW = append(b.inW, p.Width)
	}

	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		tag, ok := f.Tag.Lookup("hw")
		if !ok {
			continue
		}
		name := strings.ToLower(f.Name)
		tv := strings.Split(tag, ",")
		if len(tv) > 1 && tv[1] != "" {
			name = tv[1]
		}
		var pins []PinDesc
		switch tv[0] {
		case "in":
			pins = ins
		case "out":
			pins = outs
		default:
			return nil, errors.Errorf("unsupported tag %q for field %q in %q", tag, f.Name, typ.Name())
		}
		if !supported(f.Type) {
			return nil, errors.Errorf("unsupported type %q for field %q in %q", f.Type, f.Name, typ.Name())
		}
		if f.PkgPath != "" {
			return nil, errors.Errorf("unexported field %q in %q", f.Name, typ.Name())
		}
		pos := -1
		for j, p := range pins {
			if p.Name == name {
				pos = j
				break
			}
		}
		if pos < 0 {
			return nil, errors.Wrapf(ErrNotFound, "pin %s for field %q", name, f.Name)
		}
		bf := boundField{index: i, pos: pos, id: pins[pos].ID, width: pins[pos].Width}
		if tv[0] == "in" {
			b.ins = append(b.ins, bf)
		} else {
			b.outs = append(b.outs, bf)
		}
	}
	return b, nil
}

func supported(t reflect.Type) bool {
	if t == valueType {
		return true
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return true
	}
	return false
}

func getField(fv reflect.Value, width int) Value {
	if fv.Type() == valueType {
		return fv.Interface().(Value).Resize(width)
	}
	switch fv.Kind() {
	case reflect.Bool:
		return Bool(fv.Bool()).Resize(width)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return MakeValue(width, uint64(fv.Int()))
	}
	return MakeValue(width, fv.Uint())
}

func setField(fv reflect.Value, v Value) {
	if fv.Type() == valueType {
		fv.Set(reflect.ValueOf(v))
		return
	}
	switch fv.Kind() {
	case reflect.Bool:
		fv.SetBool(v.High())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		fv.SetInt(int64(v.Uint64()))
	default:
		fv.SetUint(v.Uint64())
	}
}

// Inputs returns the root input values read from the bound struct. Unbound
// inputs float.
//
func (b *Binding) Inputs() []Value {
	vs := make([]Value, len(b.inW))
	for i, w := range b.inW {
		vs[i] = Floating(w)
	}
	for _, f := range b.ins {
		vs[f.pos] = getField(b.v.Field(f.index), f.width)
	}
	return vs
}

// Update copies the current root outputs of c to the bound struct.
//
func (b *Binding) Update(c *Circuit) {
	outs := c.Outputs()
	for _, f := range b.outs {
		if f.pos < len(outs) {
			setField(b.v.Field(f.index), outs[f.pos])
		}
	}
}

// UpdateFrame copies the root outputs recorded in f to the bound struct.
// Outputs missing from the frame are left unchanged.
//
func (b *Binding) UpdateFrame(f *Frame) {
	for _, bf := range b.outs {
		if pi, ok := f.Pin(nil, bf.id); ok {
			setField(b.v.Field(bf.index), pi.Value)
		}
	}
}
