// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import (
	"encoding/binary"
	"math"
)

type numKind uint8

const (
	kindUint numKind = iota
	kindInt
	kindFloat
)

type numField struct {
	name  string
	size  int // bytes: 1, 2, 4 or 8
	kind  numKind
	order binary.ByteOrder
}

func (*numField) byteAligned() {}

func (f *numField) Name() string { return f.name }
func (f *numField) Bits() int    { return f.size * 8 }

// Uint8 is a single unsigned byte.  It decodes to uint8.
func Uint8(name string) Field {
	return &numField{name: name, size: 1, kind: kindUint, order: binary.LittleEndian}
}

// Int8 is a single signed byte.  It decodes to int8.
func Int8(name string) Field {
	return &numField{name: name, size: 1, kind: kindInt, order: binary.LittleEndian}
}

// Uint16 decodes to uint16.
func Uint16(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 2, kind: kindUint, order: order}
}

// Int16 decodes to int16.
func Int16(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 2, kind: kindInt, order: order}
}

// Uint32 decodes to uint32.
func Uint32(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 4, kind: kindUint, order: order}
}

// Int32 decodes to int32.
func Int32(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 4, kind: kindInt, order: order}
}

// Uint64 decodes to uint64.
func Uint64(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 8, kind: kindUint, order: order}
}

// Int64 decodes to int64.
func Int64(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 8, kind: kindInt, order: order}
}

// Float32 is an IEEE-754 single.  It decodes to float32.
func Float32(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 4, kind: kindFloat, order: order}
}

// Float64 is an IEEE-754 double.  It decodes to float64.
func Float64(name string, order binary.ByteOrder) Field {
	return &numField{name: name, size: 8, kind: kindFloat, order: order}
}

func (f *numField) PackAt(v any, buf []byte, c *Cursor) error {
	var raw uint64
	switch f.kind {
	case kindFloat:
		var x float64
		switch fv := v.(type) {
		case float32:
			x = float64(fv)
		case float64:
			x = fv
		default:
			return valueErr(f, v, "expected a float")
		}
		if f.size == 4 {
			raw = uint64(math.Float32bits(float32(x)))
		} else {
			raw = math.Float64bits(x)
		}
	case kindInt:
		var err error
		if raw, err = toSigned(f, v, f.size*8); err != nil {
			return err
		}
	default:
		var err error
		if raw, err = toUnsigned(f, v, f.size*8); err != nil {
			return err
		}
	}

	b := buf[c.Byte : c.Byte+f.size]
	switch f.size {
	case 1:
		b[0] = byte(raw)
	case 2:
		f.order.PutUint16(b, uint16(raw))
	case 4:
		f.order.PutUint32(b, uint32(raw))
	case 8:
		f.order.PutUint64(b, raw)
	}
	c.Advance(f.Bits())
	return nil
}

func (f *numField) UnpackAt(buf []byte, c *Cursor) (any, error) {
	b := buf[c.Byte : c.Byte+f.size]
	c.Advance(f.Bits())

	switch f.size {
	case 1:
		if f.kind == kindInt {
			return int8(b[0]), nil
		}
		return b[0], nil
	case 2:
		raw := f.order.Uint16(b)
		if f.kind == kindInt {
			return int16(raw), nil
		}
		return raw, nil
	case 4:
		raw := f.order.Uint32(b)
		switch f.kind {
		case kindInt:
			return int32(raw), nil
		case kindFloat:
			return math.Float32frombits(raw), nil
		}
		return raw, nil
	default:
		raw := f.order.Uint64(b)
		switch f.kind {
		case kindInt:
			return int64(raw), nil
		case kindFloat:
			return math.Float64frombits(raw), nil
		}
		return raw, nil
	}
}
