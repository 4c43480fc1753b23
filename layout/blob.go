// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import (
	"encoding/binary"
	"fmt"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

type bytesField struct {
	name string
	size int
}

// Bytes is a fixed-size byte blob.  It decodes to a fresh []byte; Pack
// requires a []byte of exactly the declared size.
func Bytes(name string, size int) Field {
	return &bytesField{name: name, size: size}
}

func (*bytesField) byteAligned() {}

func (f *bytesField) Name() string { return f.name }
func (f *bytesField) Bits() int    { return f.size * 8 }

func (f *bytesField) PackAt(v any, buf []byte, c *Cursor) error {
	b, ok := v.([]byte)
	if !ok {
		return valueErr(f, v, "expected []byte")
	}
	if len(b) != f.size {
		return valueErr(f, v, "length %d != %d", len(b), f.size)
	}
	copy(buf[c.Byte:], b)
	c.Advance(f.Bits())
	return nil
}

func (f *bytesField) UnpackAt(buf []byte, c *Cursor) (any, error) {
	out := make([]byte, f.size)
	copy(out, buf[c.Byte:c.Byte+f.size])
	c.Advance(f.Bits())
	return out, nil
}

func (f *bytesField) validate() string {
	if f.size <= 0 {
		return fmt.Sprintf("byte size %d must be positive", f.size)
	}
	return ""
}

// Encoding is the character encoding of a String field.
type Encoding uint8

const (
	Latin1 Encoding = iota
	UTF16LE
	UTF16BE
)

func (e Encoding) String() string {
	switch e {
	case Latin1:
		return "latin1"
	case UTF16LE:
		return "utf-16le"
	case UTF16BE:
		return "utf-16be"
	default:
		return fmt.Sprintf("Encoding(%d)", uint8(e))
	}
}

func (e Encoding) unitSize() int {
	if e == Latin1 {
		return 1
	}
	return 2
}

func (e Encoding) codec() encoding.Encoding {
	switch e {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	default:
		return charmap.ISO8859_1
	}
}

// StringField is a fixed-size text field.  Decoding trims trailing NUL
// and filler characters; encoding truncates to the field size and pads
// with the filler.
type StringField struct {
	name   string
	size   int
	enc    Encoding
	filler rune
}

// String is a fixed-size text field of size bytes.  It decodes to string.
func String(name string, size int, enc Encoding) *StringField {
	return &StringField{name: name, size: size, enc: enc}
}

// WithFiller returns a copy of f that pads with r instead of NUL.
func (f *StringField) WithFiller(r rune) *StringField {
	cp := *f
	cp.filler = r
	return &cp
}

func (*StringField) byteAligned() {}

func (f *StringField) Name() string { return f.name }
func (f *StringField) Bits() int    { return f.size * 8 }

func (f *StringField) PackAt(v any, buf []byte, c *Cursor) error {
	s, ok := v.(string)
	if !ok {
		return valueErr(f, v, "expected a string")
	}
	enc, err := f.encode(s)
	if err != nil {
		return valueErr(f, v, "%s", err)
	}
	copy(buf[c.Byte:c.Byte+f.size], enc)
	c.Advance(f.Bits())
	return nil
}

// encode returns exactly f.size bytes.
func (f *StringField) encode(s string) ([]byte, error) {
	encoder := encoding.ReplaceUnsupported(f.enc.codec().NewEncoder())
	raw, err := encoder.Bytes([]byte(s))
	if err != nil {
		return nil, err
	}

	unit := f.enc.unitSize()
	limit := f.size - f.size%unit
	if len(raw) > limit {
		raw = raw[:limit]
		if unit == 2 && len(raw) >= 2 && isHighSurrogate(f.unitAt(raw, len(raw)-2)) {
			raw = raw[:len(raw)-2]
		}
	}

	out := make([]byte, f.size)
	n := copy(out, raw)
	for ; n+unit <= limit; n += unit {
		switch f.enc {
		case UTF16LE:
			binary.LittleEndian.PutUint16(out[n:], uint16(f.filler))
		case UTF16BE:
			binary.BigEndian.PutUint16(out[n:], uint16(f.filler))
		default:
			out[n] = byte(f.filler)
		}
	}
	return out, nil
}

func (f *StringField) unitAt(b []byte, i int) uint16 {
	if f.enc == UTF16BE {
		return binary.BigEndian.Uint16(b[i:])
	}
	return binary.LittleEndian.Uint16(b[i:])
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xd800 && u < 0xdc00
}

func (f *StringField) UnpackAt(buf []byte, c *Cursor) (any, error) {
	raw := buf[c.Byte : c.Byte+f.size]
	c.Advance(f.Bits())

	raw = raw[:len(raw)-len(raw)%f.enc.unitSize()]
	dec, err := f.enc.codec().NewDecoder().Bytes(raw)
	if err != nil {
		return nil, fmt.Errorf("layout: field %q: %w", f.name, err)
	}
	return strings.TrimRight(string(dec), "\x00"+string(f.filler)), nil
}

func (f *StringField) validate() string {
	if f.size < f.enc.unitSize() {
		return fmt.Sprintf("size %d too small for %s", f.size, f.enc)
	}
	if f.enc == Latin1 && f.filler > 0xff {
		return fmt.Sprintf("filler %q not representable in %s", f.filler, f.enc)
	}
	if f.filler > 0xffff || (f.filler >= 0xd800 && f.filler < 0xe000) {
		return fmt.Sprintf("filler %q is not a single code unit", f.filler)
	}
	return ""
}
