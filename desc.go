// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

package dlsim

import (
	"bytes"
	"io"
	"os"
	"sort"
	"strconv"

	"github.com/db47h/dlsim/internal/hdl"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ChipID identifies a sub-chip within its parent.
//
type ChipID int

// PinID identifies a pin within its chip. Input and output pins of a chip
// share the same ID space.
//
type PinID int

// Self is the ChipID used in wires to address the pins of the enclosing chip.
//
const Self ChipID = -1

// A PinAddress names a pin in the scope of a composite chip.
//
type PinAddress struct {
	Chip ChipID
	Pin  PinID
}

func (a PinAddress) String() string {
	if a.Chip == Self {
		return "self." + strconv.Itoa(int(a.Pin))
	}
	return strconv.Itoa(int(a.Chip)) + "." + strconv.Itoa(int(a.Pin))
}

// ParsePinAddress parses a pin address like "3.1" or "self.0".
//
func ParsePinAddress(s string) (PinAddress, error) {
	a, err := hdl.ParseAddress(s)
	if err != nil {
		return PinAddress{}, err
	}
	return fromHDL(a), nil
}

func fromHDL(a hdl.Address) PinAddress {
	if a.Self {
		return PinAddress{Self, PinID(a.Pin)}
	}
	return PinAddress{ChipID(a.Chip), PinID(a.Pin)}
}

// UnmarshalYAML implements yaml.Unmarshaler.
//
func (a *PinAddress) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	p, err := ParsePinAddress(s)
	if err != nil {
		return err
	}
	*a = p
	return nil
}

// MarshalYAML implements yaml.Marshaler.
//
func (a PinAddress) MarshalYAML() (interface{}, error) {
	return a.String(), nil
}

// PinDesc describes a chip pin.
//
type PinDesc struct {
	ID    PinID  `yaml:"id"`
	Name  string `yaml:"name,omitempty"`
	Width int    `yaml:"width,omitempty"` // defaults to 1
}

func (p PinDesc) width() int {
	if p.Width <= 0 {
		return 1
	}
	return clampWidth(p.Width)
}

// SubChipDesc describes a chip instance within a composite.
//
type SubChipDesc struct {
	ID    ChipID   `yaml:"id"`
	Chip  string   `yaml:"chip"`
	State []uint32 `yaml:"state,omitempty"` // default persistent state
}

// WireDesc is a directed connection between two pins.
//
type WireDesc struct {
	From PinAddress
	To   PinAddress
}

func (w WireDesc) String() string {
	return w.From.String() + " -> " + w.To.String()
}

// ParseWire parses a wire description like "self.0 -> 2.1".
//
func ParseWire(s string) (WireDesc, error) {
	from, to, err := hdl.ParseWire(s)
	if err != nil {
		return WireDesc{}, err
	}
	return WireDesc{fromHDL(from), fromHDL(to)}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
//
func (w *WireDesc) UnmarshalYAML(n *yaml.Node) error {
	var s string
	if err := n.Decode(&s); err != nil {
		return err
	}
	wd, err := ParseWire(s)
	if err != nil {
		return err
	}
	*w = wd
	return nil
}

// MarshalYAML implements yaml.Marshaler.
//
func (w WireDesc) MarshalYAML() (interface{}, error) {
	return w.String(), nil
}

// ChipDesc is the blueprint of a chip. Builtin chips have a non empty Builtin
// field naming their Kind and take their pin layout from it; Chips and Wires
// are then ignored.
//
type ChipDesc struct {
	Name    string        `yaml:"name"`
	Builtin string        `yaml:"builtin,omitempty"`
	Inputs  []PinDesc     `yaml:"inputs,omitempty"`
	Outputs []PinDesc     `yaml:"outputs,omitempty"`
	Chips   []SubChipDesc `yaml:"chips,omitempty"`
	Wires   []WireDesc    `yaml:"wires,omitempty"`
}

// Pin returns the description of pin id and whether it is an output.
//
func (d *ChipDesc) Pin(id PinID) (p PinDesc, output bool, ok bool) {
	for _, p := range d.Inputs {
		if p.ID == id {
			return p, false, true
		}
	}
	for _, p := range d.Outputs {
		if p.ID == id {
			return p, true, true
		}
	}
	return PinDesc{}, false, false
}

// PinByName returns the description of the named pin and whether it is an
// output.
//
func (d *ChipDesc) PinByName(name string) (p PinDesc, output bool, ok bool) {
	for _, p := range d.Inputs {
		if p.Name == name {
			return p, false, true
		}
	}
	for _, p := range d.Outputs {
		if p.Name == name {
			return p, true, true
		}
	}
	return PinDesc{}, false, false
}

// A Library maps chip names to their description. Builtin chips need not be
// added: lookups fall back to the builtin kinds.
//
type Library map[string]*ChipDesc

// Add adds d to the library, replacing any chip with the same name.
//
func (l Library) Add(d *ChipDesc) {
	l[d.Name] = d
}

// Lookup returns the description of the named chip.
//
func (l Library) Lookup(name string) (*ChipDesc, bool) {
	if d, ok := l[name]; ok {
		return d, true
	}
	if k, ok := ParseKind(name); ok {
		return k.Desc(), true
	}
	return nil, false
}

// Names returns the sorted names of the chips in l.
//
func (l Library) Names() []string {
	names := make([]string, 0, len(l))
	for n := range l {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Merge returns a new library with the chips of l and o. Chips in o replace
// chips with the same name in l.
//
func (l Library) Merge(o Library) Library {
	r := make(Library, len(l)+len(o))
	for k, v := range l {
		r[k] = v
	}
	for k, v := range o {
		r[k] = v
	}
	return r
}

// libraryFile is the on-disk layout of a chip library.
//
type libraryFile struct {
	Chips []*ChipDesc `yaml:"chips,omitempty"`
	HDL   []hdlChip   `yaml:"hdl,omitempty"`
}

type hdlChip struct {
	Name  string   `yaml:"name"`
	In    string   `yaml:"in"`
	Out   string   `yaml:"out"`
	Parts []string `yaml:"parts"`
}

// ReadLibrary decodes a YAML chip library. Chips listed under "hdl" are
// compiled with Compose in file order and may use any chip defined before them,
// in the file or in base.
//
func ReadLibrary(r io.Reader, base Library) (Library, error) {
	var f libraryFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "parsing chip library")
	}
	lib := make(Library, len(f.Chips)+len(f.HDL))
	for _, d := range f.Chips {
		if d.Name == "" {
			return nil, errors.New("chip with empty name in library")
		}
		lib.Add(d)
	}
	scope := base.Merge(lib)
	for _, h := range f.HDL {
		parts := make(Parts, 0, len(h.Parts))
		for _, ps := range h.Parts {
			p, err := ParsePart(ps)
			if err != nil {
				return nil, errors.Wrapf(err, "chip %s", h.Name)
			}
			parts = append(parts, p)
		}
		d, err := Compose(scope, h.Name, h.In, h.Out, parts)
		if err != nil {
			return nil, err
		}
		lib.Add(d)
		scope.Add(d)
	}
	return lib, nil
}

// LoadLibrary reads a YAML chip library from a file.
//
func LoadLibrary(path string, base Library) (Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading chip library")
	}
	return ReadLibrary(bytes.NewReader(data), base)
}

// WriteLibrary encodes the chips of l in YAML. Builtin chips are omitted.
//
func WriteLibrary(w io.Writer, l Library) error {
	var f libraryFile
	for _, n := range l.Names() {
		if d := l[n]; d.Builtin == "" {
			f.Chips = append(f.Chips, d)
		}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return errors.Wrap(err, "encoding chip library")
	}
	return enc.Close()
}
