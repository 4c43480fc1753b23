// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import (
	"fmt"

	"github.com/bpowers/mii/internal/zero"
)

// validator is implemented by fields with construction-time checks.
type validator interface {
	validate() string
}

// Struct is an immutable, ordered layout of fields.  It decodes to a
// Record and is itself a Field, so structs nest.
type Struct struct {
	name    string
	fields  []Field
	offsets []int // bit offset of each field from the start of the struct
	index   map[string]int
	bits    int
}

var _ Field = (*Struct)(nil)

// NewStruct lays out fields in order.  Anonymous (empty-named) fields
// other than padding are rejected, as are duplicate names, padding that
// would move the cursor backward, byte-level fields starting mid-byte,
// and structs that don't end on a byte boundary.
func NewStruct(name string, fields ...Field) (*Struct, error) {
	s := &Struct{
		name:  name,
		index: make(map[string]int, len(fields)),
	}
	fail := func(field, format string, args ...any) (*Struct, error) {
		return nil, &SchemaError{Struct: name, Field: field, Msg: fmt.Sprintf(format, args...)}
	}

	var c Cursor
	var run BitOrder
	for i, f := range fields {
		if f == nil {
			return fail("", "field %d is nil", i)
		}
		if p, ok := f.(*padding); ok {
			gap := p.to*8 - c.Bits()
			if gap < 0 {
				return fail("", "padding to byte %d but cursor is already at %s", p.to, c)
			}
			if gap == 0 {
				continue
			}
			f = &gapField{bits: gap, order: run}
		} else {
			if f.Name() == "" {
				return fail("", "field %d has no name", i)
			}
			if _, dup := s.index[f.Name()]; dup {
				return fail(f.Name(), "duplicate field name")
			}
			if v, ok := f.(validator); ok {
				if msg := v.validate(); msg != "" {
					return fail(f.Name(), "%s", msg)
				}
			}
			if needsAlignment(f) && !c.Aligned() {
				return fail(f.Name(), "byte-level field starts mid-byte at %s", c)
			}
			if o, ok := bitOrderOf(f); ok {
				if !c.Aligned() && o != run {
					return fail(f.Name(), "bit order changes from %s to %s mid-byte at %s", run, o, c)
				}
				run = o
			}
			s.index[f.Name()] = len(s.fields)
		}
		s.fields = append(s.fields, f)
		s.offsets = append(s.offsets, c.Bits())
		c.Advance(f.Bits())
	}
	if !c.Aligned() {
		return fail("", "ends mid-byte at %s; open bitfield run must fill the byte", c)
	}
	s.bits = c.Bits()
	return s, nil
}

// MustStruct is like NewStruct but panics with a *SchemaError.  It is
// meant for package-level layout definitions.
func MustStruct(name string, fields ...Field) *Struct {
	s, err := NewStruct(name, fields...)
	if err != nil {
		panic(err)
	}
	return s
}

func (*Struct) byteAligned() {}

func (s *Struct) Name() string { return s.name }
func (s *Struct) Bits() int    { return s.bits }

// Size returns the struct's size in bytes.
func (s *Struct) Size() int { return s.bits / 8 }

// Fields returns the named fields in layout order.  Padding is omitted.
func (s *Struct) Fields() []Field {
	out := make([]Field, 0, len(s.index))
	for _, f := range s.fields {
		if _, ok := f.(*gapField); !ok {
			out = append(out, f)
		}
	}
	return out
}

// Field looks up a named field.
func (s *Struct) Field(name string) (Field, bool) {
	i, ok := s.index[name]
	if !ok {
		return nil, false
	}
	return s.fields[i], true
}

// Offset returns the position of a named field relative to the start
// of the struct.
func (s *Struct) Offset(name string) (Cursor, bool) {
	i, ok := s.index[name]
	if !ok {
		return Cursor{}, false
	}
	var c Cursor
	c.Advance(s.offsets[i])
	return c, true
}

func (s *Struct) PackAt(v any, buf []byte, c *Cursor) error {
	rec, ok := asRecord(v)
	if !ok {
		return valueErr(s, v, "expected a Record")
	}
	for _, f := range s.fields {
		if g, ok := f.(*gapField); ok {
			g.fill(buf, c)
			continue
		}
		fv, ok := rec[f.Name()]
		if !ok {
			return &ValueError{Field: s.qualify(f), Msg: "missing from record"}
		}
		if err := f.PackAt(fv, buf, c); err != nil {
			return err
		}
	}
	return nil
}

func (s *Struct) UnpackAt(buf []byte, c *Cursor) (any, error) {
	rec := make(Record, len(s.index))
	for _, f := range s.fields {
		if g, ok := f.(*gapField); ok {
			c.Advance(g.bits)
			continue
		}
		v, err := f.UnpackAt(buf, c)
		if err != nil {
			return nil, err
		}
		rec[f.Name()] = v
	}
	return rec, nil
}

func (s *Struct) qualify(f Field) string {
	if s.name == "" {
		return f.Name()
	}
	return s.name + "." + f.Name()
}

// Pack encodes rec into a new buffer of exactly Size() bytes.
func (s *Struct) Pack(rec Record) ([]byte, error) {
	return Pack(s, rec, nil, nil)
}

// Unpack decodes a record from the start of buf.  buf must hold at
// least Size() bytes.
func (s *Struct) Unpack(buf []byte) (Record, error) {
	v, err := Unpack(s, buf, nil)
	if err != nil {
		return nil, err
	}
	return v.(Record), nil
}

func asRecord(v any) (Record, bool) {
	switch r := v.(type) {
	case Record:
		return r, true
	case map[string]any:
		return Record(r), true
	}
	return nil, false
}

type padding struct {
	to int
}

// Padding advances the cursor to the absolute byte offset to, relative
// to the start of the enclosing struct.  Skipped bits are written as
// zero and ignored on decode.  It is only meaningful inside NewStruct.
func Padding(to int) Field {
	return &padding{to: to}
}

func (p *padding) Name() string { return "" }
func (p *padding) Bits() int    { return 0 }

func (p *padding) PackAt(any, []byte, *Cursor) error {
	return fmt.Errorf("layout: padding to %d used outside a struct", p.to)
}

func (p *padding) UnpackAt([]byte, *Cursor) (any, error) {
	return nil, fmt.Errorf("layout: padding to %d used outside a struct", p.to)
}

// gapField is padding resolved to a concrete width.  order is the bit
// order of the run it closes, if it starts mid-byte.
type gapField struct {
	bits  int
	order BitOrder
}

func (g *gapField) Name() string { return "" }
func (g *gapField) Bits() int    { return g.bits }

func (g *gapField) fill(buf []byte, c *Cursor) {
	remaining := g.bits
	if !c.Aligned() {
		n := min(8-c.Bit, remaining)
		writeBits(buf, c, n, 0, g.order)
		remaining -= n
	}
	whole := remaining / 8
	zero.Bytes(buf[c.Byte : c.Byte+whole])
	c.Advance(whole * 8)
	if rest := remaining % 8; rest > 0 {
		writeBits(buf, c, rest, 0, g.order)
	}
}

func (g *gapField) PackAt(_ any, buf []byte, c *Cursor) error {
	g.fill(buf, c)
	return nil
}

func (g *gapField) UnpackAt(_ []byte, c *Cursor) (any, error) {
	c.Advance(g.bits)
	return nil, nil
}
