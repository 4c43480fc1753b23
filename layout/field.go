// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import (
	"bytes"
	"fmt"
	"math"
)

// Field is a single fixed-width slot in a layout.
//
// PackAt and UnpackAt read or write exactly Bits() bits at the cursor
// and advance it by that amount.  They assume the caller has already
// checked that the buffer is long enough; use Pack and Unpack for
// checked access.
type Field interface {
	Name() string
	Bits() int
	PackAt(v any, buf []byte, c *Cursor) error
	UnpackAt(buf []byte, c *Cursor) (any, error)
}

// byteAligned is implemented by fields that can only start on a byte
// boundary.
type byteAligned interface {
	byteAligned()
}

// wrapper is implemented by fields that delegate their layout to
// another field.
type wrapper interface {
	unwrap() Field
}

func innermost(f Field) Field {
	for {
		w, ok := f.(wrapper)
		if !ok {
			return f
		}
		f = w.unwrap()
	}
}

func needsAlignment(f Field) bool {
	_, ok := innermost(f).(byteAligned)
	return ok
}

// bitOrderOf reports the bit order of bit-level fields.
func bitOrderOf(f Field) (BitOrder, bool) {
	switch b := innermost(f).(type) {
	case *bitField:
		return b.order, true
	case *boolField:
		return b.order, true
	}
	return 0, false
}

// Size returns the number of bytes a field occupies, rounding partial
// bytes up.
func Size(f Field) int {
	return bytesFor(f.Bits())
}

func checkBounds(f Field, bufLen int, c *Cursor) error {
	if needsAlignment(f) && !c.Aligned() {
		return &AlignmentError{Field: f.Name(), At: *c}
	}
	if want := bytesFor(c.Bits() + f.Bits()); bufLen < want {
		return &FormatError{Name: f.Name(), Want: want, Got: bufLen}
	}
	return nil
}

// Unpack decodes f from buf at c, advancing c.  A nil cursor starts at
// the beginning of buf.  A buffer too short to hold the field is a
// *FormatError and nothing is read.
func Unpack(f Field, buf []byte, c *Cursor) (any, error) {
	if c == nil {
		c = &Cursor{}
	}
	if err := checkBounds(f, len(buf), c); err != nil {
		return nil, err
	}
	return f.UnpackAt(buf, c)
}

// Pack encodes v as f into buf at c, advancing c, and returns buf.  A
// nil buffer is allocated to fit the field; a nil cursor starts at the
// beginning.  The destination and cursor are only modified if the
// whole value packs successfully.
func Pack(f Field, v any, buf []byte, c *Cursor) ([]byte, error) {
	if c == nil {
		c = &Cursor{}
	}
	end := bytesFor(c.Bits() + f.Bits())
	if buf == nil {
		buf = make([]byte, end)
	}
	if err := checkBounds(f, len(buf), c); err != nil {
		return nil, err
	}

	region := bytes.Clone(buf[c.Byte:end])
	local := Cursor{Bit: c.Bit}
	if err := f.PackAt(v, region, &local); err != nil {
		return nil, err
	}
	if local.Bits() != c.Bit+f.Bits() {
		panic(fmt.Errorf("invariant broken: field %q packed %d bits, declared %d", f.Name(), local.Bits()-c.Bit, f.Bits()))
	}
	copy(buf[c.Byte:end], region)
	c.Advance(f.Bits())
	return buf, nil
}

// integer widens any Go integer to a magnitude and a sign.
func integer(v any) (mag uint64, neg bool, ok bool) {
	switch x := v.(type) {
	case int:
		mag, neg = fromSigned(int64(x))
	case int8:
		mag, neg = fromSigned(int64(x))
	case int16:
		mag, neg = fromSigned(int64(x))
	case int32:
		mag, neg = fromSigned(int64(x))
	case int64:
		mag, neg = fromSigned(x)
	case uint:
		mag = uint64(x)
	case uint8:
		mag = uint64(x)
	case uint16:
		mag = uint64(x)
	case uint32:
		mag = uint64(x)
	case uint64:
		mag = x
	case uintptr:
		mag = uint64(x)
	default:
		return 0, false, false
	}
	return mag, neg, true
}

func fromSigned(x int64) (uint64, bool) {
	if x < 0 {
		// -(x+1)+1 avoids overflowing on math.MinInt64
		return uint64(-(x + 1)) + 1, true
	}
	return uint64(x), false
}

// toUnsigned checks that v is a non-negative integer that fits in
// width bits.
func toUnsigned(f Field, v any, width int) (uint64, error) {
	mag, neg, ok := integer(v)
	if !ok {
		return 0, valueErr(f, v, "expected an integer")
	}
	if neg {
		return 0, valueErr(f, v, "negative value for unsigned field")
	}
	if width < 64 && mag >= 1<<width {
		return 0, valueErr(f, v, "does not fit in %d bits", width)
	}
	return mag, nil
}

// toSigned checks that v is an integer in the two's complement range
// of width bits and returns its raw width-bit encoding.
func toSigned(f Field, v any, width int) (uint64, error) {
	mag, neg, ok := integer(v)
	if !ok {
		return 0, valueErr(f, v, "expected an integer")
	}
	limit := uint64(1) << (width - 1)
	if (neg && mag > limit) || (!neg && mag >= limit) {
		return 0, valueErr(f, v, "does not fit in %d signed bits", width)
	}
	raw := mag
	if neg {
		raw = uint64(-int64(mag))
	}
	return raw & mask(width), nil
}

func mask(width int) uint64 {
	if width >= 64 {
		return math.MaxUint64
	}
	return 1<<width - 1
}

// signExtend interprets the low width bits of raw as two's complement.
func signExtend(raw uint64, width int) int64 {
	shift := 64 - width
	return int64(raw<<shift) >> shift
}
