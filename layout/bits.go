// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import "fmt"

// BitOrder selects how bitfields are laid out within bytes.
type BitOrder uint8

const (
	// MSBFirst consumes each byte from bit 7 downward and stores the
	// value's most significant bit first.
	MSBFirst BitOrder = iota
	// LSBFirst consumes each byte from bit 0 upward and stores the
	// value's least significant bit first.  A run of LSBFirst fields
	// reads the same as C bitfields in a little-endian word.
	LSBFirst
)

func (o BitOrder) String() string {
	switch o {
	case MSBFirst:
		return "msb-first"
	case LSBFirst:
		return "lsb-first"
	default:
		return fmt.Sprintf("BitOrder(%d)", uint8(o))
	}
}

// readBits reads n (1-64) bits at c, splicing partial bytes.
func readBits(buf []byte, c *Cursor, n int, order BitOrder) uint64 {
	var v uint64
	for done := 0; done < n; {
		b := uint64(buf[c.Byte])
		avail := 8 - c.Bit
		take := min(avail, n-done)
		var chunk uint64
		if order == MSBFirst {
			chunk = (b >> (avail - take)) & mask(take)
			v = v<<take | chunk
		} else {
			chunk = (b >> c.Bit) & mask(take)
			v |= chunk << done
		}
		done += take
		c.Advance(take)
	}
	return v
}

// writeBits writes the low n bits of v at c, leaving the other bits of
// partially covered bytes untouched.
func writeBits(buf []byte, c *Cursor, n int, v uint64, order BitOrder) {
	for done := 0; done < n; {
		avail := 8 - c.Bit
		take := min(avail, n-done)
		var chunk uint64
		var shift int
		if order == MSBFirst {
			chunk = (v >> (n - done - take)) & mask(take)
			shift = avail - take
		} else {
			chunk = (v >> done) & mask(take)
			shift = c.Bit
		}
		m := byte(mask(take) << shift)
		buf[c.Byte] = buf[c.Byte]&^m | byte(chunk<<shift)
		done += take
		c.Advance(take)
	}
}

type bitField struct {
	name   string
	width  int
	order  BitOrder
	signed bool
}

// UBits is an unsigned bitfield of width 1-64 bits.  It decodes to uint64.
func UBits(name string, width int, order BitOrder) Field {
	return &bitField{name: name, width: width, order: order}
}

// SBits is a two's complement bitfield of width 1-64 bits.  It decodes
// to int64.
func SBits(name string, width int, order BitOrder) Field {
	return &bitField{name: name, width: width, order: order, signed: true}
}

func (f *bitField) Name() string { return f.name }
func (f *bitField) Bits() int    { return f.width }

func (f *bitField) PackAt(v any, buf []byte, c *Cursor) error {
	var raw uint64
	var err error
	if f.signed {
		raw, err = toSigned(f, v, f.width)
	} else {
		raw, err = toUnsigned(f, v, f.width)
	}
	if err != nil {
		return err
	}
	writeBits(buf, c, f.width, raw, f.order)
	return nil
}

func (f *bitField) UnpackAt(buf []byte, c *Cursor) (any, error) {
	raw := readBits(buf, c, f.width, f.order)
	if f.signed {
		return signExtend(raw, f.width), nil
	}
	return raw, nil
}

func (f *bitField) validate() string {
	if f.width < 1 || f.width > 64 {
		return fmt.Sprintf("bit width %d outside 1-64", f.width)
	}
	return ""
}

type boolField struct {
	name  string
	order BitOrder
}

// Bool is a single-bit flag.  It decodes to bool.
func Bool(name string, order BitOrder) Field {
	return &boolField{name: name, order: order}
}

func (f *boolField) Name() string { return f.name }
func (f *boolField) Bits() int    { return 1 }

func (f *boolField) PackAt(v any, buf []byte, c *Cursor) error {
	b, ok := v.(bool)
	if !ok {
		return valueErr(f, v, "expected a bool")
	}
	var raw uint64
	if b {
		raw = 1
	}
	writeBits(buf, c, 1, raw, f.order)
	return nil
}

func (f *boolField) UnpackAt(buf []byte, c *Cursor) (any, error) {
	return readBits(buf, c, 1, f.order) == 1, nil
}
