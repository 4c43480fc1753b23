// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	le = binary.LittleEndian
	be = binary.BigEndian
)

func newSample(t *testing.T) *Struct {
	t.Helper()
	point := MustStruct("point", Int16("x", le), Int16("y", le))
	corner := MustStruct("corner", Int16("x", le), Int16("y", le))
	s, err := NewStruct("sample",
		Uint8("version"),
		Bool("flag", LSBFirst),
		UBits("kind", 3, LSBFirst),
		SBits("delta", 4, LSBFirst),
		Uint16("count", be),
		Int32("offset", le),
		Padding(12),
		Float32("scale", le),
		Float64("weight", be),
		Uint64("id", le),
		Int8("bias"),
		Bytes("tag", 3),
		String("label", 8, Latin1),
		String("name", 10, UTF16LE),
		String("alias", 6, UTF16BE),
		point,
		Array(corner, 2),
		Array(Uint8("levels"), 4),
	)
	require.NoError(t, err)
	return s
}

func sampleRecord() Record {
	return Record{
		"version": uint8(3),
		"flag":    true,
		"kind":    uint64(5),
		"delta":   int64(-3),
		"count":   uint16(0xbeef),
		"offset":  int32(-123456),
		"scale":   float32(1.5),
		"weight":  float64(-2.25),
		"id":      uint64(1<<40 + 7),
		"bias":    int8(-8),
		"tag":     []byte{1, 2, 3},
		"label":   "hello",
		"name":    "Mii名",
		"alias":   "abc",
		"point":   Record{"x": int16(-1), "y": int16(2)},
		"corner": []any{
			Record{"x": int16(10), "y": int16(20)},
			Record{"x": int16(-30), "y": int16(40)},
		},
		"levels": []any{uint8(1), uint8(2), uint8(3), uint8(4)},
	}
}

func TestStruct_RoundTrip(t *testing.T) {
	s := newSample(t)
	require.Equal(t, 76, s.Size())

	rec := sampleRecord()
	buf, err := s.Pack(rec)
	require.NoError(t, err)
	require.Len(t, buf, s.Size())

	// spot-check the wire layout
	assert.Equal(t, byte(3), buf[0])
	assert.Equal(t, byte(0xdb), buf[1])
	assert.Equal(t, []byte{0xbe, 0xef}, buf[2:4])
	assert.Equal(t, []byte{0, 0, 0, 0}, buf[8:12])
	assert.Equal(t, []byte{1, 2, 3}, buf[33:36])
	assert.Equal(t, []byte("hello\x00\x00\x00"), buf[36:44])
	assert.Equal(t, []byte{0, 'a', 0, 'b', 0, 'c'}, buf[54:60])

	got, err := s.Unpack(buf)
	require.NoError(t, err)
	require.Equal(t, rec, got)
}

func TestStruct_Offsets(t *testing.T) {
	s := newSample(t)
	for _, tc := range []struct {
		name string
		want Cursor
	}{
		{"version", Cursor{0, 0}},
		{"flag", Cursor{1, 0}},
		{"kind", Cursor{1, 1}},
		{"delta", Cursor{1, 4}},
		{"scale", Cursor{12, 0}},
		{"point", Cursor{60, 0}},
		{"levels", Cursor{72, 0}},
	} {
		off, ok := s.Offset(tc.name)
		require.True(t, ok, tc.name)
		assert.Equal(t, tc.want, off, tc.name)
	}
	_, ok := s.Offset("nope")
	assert.False(t, ok)

	names := make([]string, 0)
	for _, f := range s.Fields() {
		names = append(names, f.Name())
	}
	require.Equal(t, []string{
		"version", "flag", "kind", "delta", "count", "offset", "scale", "weight", "id",
		"bias", "tag", "label", "name", "alias", "point", "corner", "levels",
	}, names)
}

func TestBitfields_BoundaryWidths(t *testing.T) {
	widths := []int{1, 3, 7, 8, 9, 16, 4}
	values := []uint64{1, 5, 0x55, 0xa5, 0x1ab, 0xbeef, 0x9}

	for _, order := range []BitOrder{MSBFirst, LSBFirst} {
		fields := make([]Field, len(widths))
		rec := make(Record)
		for i, w := range widths {
			name := fmt.Sprintf("f%d", i)
			fields[i] = UBits(name, w, order)
			rec[name] = values[i]
		}
		s, err := NewStruct("bits", fields...)
		require.NoError(t, err, order.String())
		require.Equal(t, 6, s.Size())

		buf, err := s.Pack(rec)
		require.NoError(t, err)
		require.Len(t, buf, 6)

		got, err := s.Unpack(buf)
		require.NoError(t, err)
		require.Equal(t, rec, got, order.String())
	}
}

func TestBitfields_PackedWords(t *testing.T) {
	// LSB-first runs read like C bitfields in a little-endian word
	lsb := MustStruct("word",
		UBits("a", 4, LSBFirst),
		UBits("b", 4, LSBFirst),
		UBits("c", 5, LSBFirst),
		UBits("d", 3, LSBFirst),
	)
	buf, err := lsb.Pack(Record{"a": 5, "b": 3, "c": 17, "d": 0})
	require.NoError(t, err)
	require.Equal(t, uint16(5|3<<4|17<<8), binary.LittleEndian.Uint16(buf))

	msb := MustStruct("msb",
		UBits("a", 3, MSBFirst),
		UBits("b", 5, MSBFirst),
		UBits("c", 12, MSBFirst),
		UBits("d", 4, MSBFirst),
	)
	buf, err = msb.Pack(Record{"a": 5, "b": 3, "c": 0xabc, "d": 0xd})
	require.NoError(t, err)
	require.Equal(t, []byte{0xa3, 0xab, 0xcd}, buf)
}

func TestBitfields_Signed(t *testing.T) {
	s := MustStruct("signed", SBits("a", 5, MSBFirst), SBits("b", 3, MSBFirst))
	buf, err := s.Pack(Record{"a": -3, "b": 3})
	require.NoError(t, err)
	require.Equal(t, []byte{0b11101_011}, buf)

	got, err := s.Unpack(buf)
	require.NoError(t, err)
	require.Equal(t, Record{"a": int64(-3), "b": int64(3)}, got)

	_, err = s.Pack(Record{"a": -17, "b": 0})
	var verr *ValueError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "a", verr.Field)
	_, err = s.Pack(Record{"a": 16, "b": 0})
	require.Error(t, err)
}

func TestNumeric_ByteOrder(t *testing.T) {
	buf, err := Pack(Uint32("x", be), uint32(0x01020304), nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{1, 2, 3, 4}, buf)

	buf, err = Pack(Uint32("x", le), 0x01020304, nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{4, 3, 2, 1}, buf)

	v, err := Unpack(Int16("x", be), []byte{0xff, 0xfe}, nil)
	require.NoError(t, err)
	require.Equal(t, int16(-2), v)

	buf, err = Pack(Float32("x", be), float32(1), nil, nil)
	require.NoError(t, err)
	require.Equal(t, []byte{0x3f, 0x80, 0, 0}, buf)
}

func TestPack_ValueErrors(t *testing.T) {
	for _, tc := range []struct {
		name string
		f    Field
		v    any
	}{
		{"overflow", Uint8("x"), 256},
		{"negative unsigned", Uint16("x", le), -1},
		{"not an integer", Int32("x", le), "1"},
		{"not a float", Float64("x", le), 1},
		{"bytes length", Bytes("x", 4), []byte{1, 2}},
		{"not a string", String("x", 4, Latin1), 7},
		{"not a bool", Bool("x", MSBFirst), 1},
		{"array length", Array(Uint8("x"), 3), []any{uint8(1)}},
		{"bitfield overflow", UBits("x", 3, LSBFirst), 8},
	} {
		_, err := Pack(tc.f, tc.v, nil, nil)
		var verr *ValueError
		require.True(t, errors.As(err, &verr), "%s: %v", tc.name, err)
	}

	s := MustStruct("s", Uint8("a"), Uint8("b"))
	_, err := s.Pack(Record{"a": 1})
	var verr *ValueError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "s.b", verr.Field)
}

func TestPack_NoPartialWrites(t *testing.T) {
	s := MustStruct("s", Uint8("a"), Uint8("b"), Uint8("c"))
	buf := []byte{0xaa, 0xaa, 0xaa, 0xaa}
	c := &Cursor{Byte: 1}

	_, err := Pack(s, Record{"a": 1, "b": 2, "c": 300}, buf, c)
	require.Error(t, err)
	require.Equal(t, []byte{0xaa, 0xaa, 0xaa, 0xaa}, buf)
	require.Equal(t, Cursor{Byte: 1}, *c)

	out, err := Pack(s, Record{"a": 1, "b": 2, "c": 3}, buf, c)
	require.NoError(t, err)
	require.Equal(t, []byte{0xaa, 1, 2, 3}, out)
	require.Equal(t, Cursor{Byte: 4}, *c)
}

func TestUnpack_ShortBuffer(t *testing.T) {
	s := newSample(t)
	buf, err := s.Pack(sampleRecord())
	require.NoError(t, err)

	rec, err := s.Unpack(buf[:s.Size()-1])
	require.Nil(t, rec)
	require.ErrorIs(t, err, ErrFormat)
	var ferr *FormatError
	require.True(t, errors.As(err, &ferr))
	require.Equal(t, s.Size(), ferr.Want)
	require.Equal(t, s.Size()-1, ferr.Got)

	_, err = Unpack(Uint32("x", le), []byte{1, 2, 3, 4}, &Cursor{Byte: 1})
	require.ErrorIs(t, err, ErrFormat)
}

func TestUnpack_SharedCursor(t *testing.T) {
	buf := []byte{0x12, 0x34, 0x56, 0xff}
	c := &Cursor{}

	v, err := Unpack(UBits("hi", 4, MSBFirst), buf, c)
	require.NoError(t, err)
	require.Equal(t, uint64(1), v)
	require.Equal(t, Cursor{0, 4}, *c)

	v, err = Unpack(UBits("mid", 12, MSBFirst), buf, c)
	require.NoError(t, err)
	require.Equal(t, uint64(0x234), v)
	require.Equal(t, Cursor{2, 0}, *c)

	v, err = Unpack(Uint16("tail", be), buf, c)
	require.NoError(t, err)
	require.Equal(t, uint16(0x56ff), v)
	require.Equal(t, Cursor{4, 0}, *c)

	// byte-level fields refuse a mid-byte cursor
	_, err = Unpack(Uint8("x"), buf, &Cursor{0, 3})
	require.Error(t, err)
}

func TestNewStruct_SchemaErrors(t *testing.T) {
	for _, tc := range []struct {
		name   string
		fields []Field
	}{
		{"padding behind cursor", []Field{Uint32("a", le), Padding(2)}},
		{"ends mid-byte", []Field{UBits("a", 3, MSBFirst)}},
		{"byte field mid-byte", []Field{UBits("a", 3, MSBFirst), Uint8("b"), UBits("c", 5, MSBFirst)}},
		{"duplicate", []Field{Uint8("a"), Uint8("a")}},
		{"anonymous", []Field{Uint8("")}},
		{"nil", []Field{nil}},
		{"zero width", []Field{UBits("a", 0, MSBFirst)}},
		{"too wide", []Field{UBits("a", 65, MSBFirst), UBits("b", 7, MSBFirst)}},
		{"empty array", []Field{Array(Uint8("a"), 0)}},
		{"mixed bit order", []Field{UBits("a", 4, MSBFirst), UBits("b", 4, LSBFirst)}},
		{"empty bytes", []Field{Bytes("a", 0)}},
		{"tiny utf16", []Field{String("a", 1, UTF16LE)}},
	} {
		_, err := NewStruct("broken", tc.fields...)
		var serr *SchemaError
		require.True(t, errors.As(err, &serr), "%s: %v", tc.name, err)
		require.Equal(t, "broken", serr.Struct)
	}

	require.PanicsWithError(t,
		`layout: struct broken: padding to byte 1 but cursor is already at 2:0`,
		func() { MustStruct("broken", Uint16("a", le), Padding(1)) })
}

func TestPadding(t *testing.T) {
	s := MustStruct("p",
		UBits("a", 3, LSBFirst),
		Padding(2),
		Uint8("b"),
		Padding(3), // no-op: already there
		Uint8("c"),
	)
	require.Equal(t, 4, s.Size())
	require.Len(t, s.Fields(), 3)

	buf := []byte{0xff, 0xff, 0xff, 0xff}
	_, err := Pack(s, Record{"a": 7, "b": 9, "c": 10}, buf, nil)
	require.NoError(t, err)
	// the gap after an LSB-first run clears the high bits only
	require.Equal(t, []byte{0x07, 0x00, 9, 10}, buf)

	got, err := s.Unpack(buf)
	require.NoError(t, err)
	require.Equal(t, Record{"a": uint64(7), "b": uint8(9), "c": uint8(10)}, got)

	_, err = Pack(Padding(4), nil, nil, nil)
	require.Error(t, err)
}

func TestStrings(t *testing.T) {
	for _, tc := range []struct {
		name  string
		f     Field
		in    string
		want  string
		bytes []byte
	}{
		{"latin1", String("s", 6, Latin1), "héllo", "héllo", []byte{'h', 0xe9, 'l', 'l', 'o', 0}},
		{"latin1 truncated", String("s", 3, Latin1), "abcdef", "abc", []byte("abc")},
		{"latin1 unsupported", String("s", 3, Latin1), "a名", "a\x1a", []byte{'a', 0x1a, 0}},
		{"filler", String("s", 5, Latin1).WithFiller(' '), "ab", "ab", []byte("ab   ")},
		{"utf16le truncated", String("s", 6, UTF16LE), "abcd", "abc", []byte{'a', 0, 'b', 0, 'c', 0}},
		{"utf16le surrogate", String("s", 6, UTF16LE), "ab😀", "ab", []byte{'a', 0, 'b', 0, 0, 0}},
		{"utf16be pair", String("s", 6, UTF16BE), "😀", "😀", []byte{0xd8, 0x3d, 0xde, 0x00, 0, 0}},
		{"odd size", String("s", 5, UTF16LE), "abc", "ab", []byte{'a', 0, 'b', 0, 0}},
		{"empty", String("s", 4, UTF16LE), "", "", []byte{0, 0, 0, 0}},
	} {
		buf, err := Pack(tc.f, tc.in, nil, nil)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.bytes, buf, tc.name)

		got, err := Unpack(tc.f, buf, nil)
		require.NoError(t, err, tc.name)
		require.Equal(t, tc.want, got, tc.name)
	}
}

func TestDerive(t *testing.T) {
	colors := []string{"red", "green", "blue"}
	color := Derive(UBits("color", 2, LSBFirst),
		func(v any) (any, error) {
			for i, c := range colors {
				if c == v {
					return uint64(i), nil
				}
			}
			return nil, fmt.Errorf("unknown color %v", v)
		},
		func(v any) (any, error) {
			i := v.(uint64)
			if int(i) >= len(colors) {
				return nil, fmt.Errorf("color index %d out of range", i)
			}
			return colors[i], nil
		},
	)
	s := MustStruct("paint",
		color,
		UBits("rest", 6, LSBFirst),
		Scaled(Int16("gamma", le), 100),
	)
	require.Equal(t, 3, s.Size())

	rec := Record{"color": "blue", "rest": uint64(0), "gamma": 2.2}
	buf, err := s.Pack(rec)
	require.NoError(t, err)
	require.Equal(t, []byte{2, 220, 0}, buf)

	got, err := s.Unpack(buf)
	require.NoError(t, err)
	require.Equal(t, rec, got)

	_, err = s.Pack(Record{"color": "mauve", "rest": 0, "gamma": 1.0})
	var verr *ValueError
	require.True(t, errors.As(err, &verr))
	require.Equal(t, "color", verr.Field)

	_, err = s.Unpack([]byte{3, 0, 0})
	require.Error(t, err)

	// derived byte-level fields keep the base field's alignment rule
	_, err = NewStruct("bad", UBits("a", 4, LSBFirst), Derive(Uint8("b"), nil, nil), UBits("c", 4, LSBFirst))
	require.Error(t, err)
}

func TestCursor_Advance(t *testing.T) {
	var c Cursor
	c.Advance(3)
	require.Equal(t, Cursor{0, 3}, c)
	c.Advance(7)
	require.Equal(t, Cursor{1, 2}, c)
	c.Advance(22)
	require.Equal(t, Cursor{4, 0}, c)
	require.True(t, c.Aligned())
	require.Equal(t, 32, c.Bits())
	require.Panics(t, func() { c.Advance(-1) })
}

func TestPackUnpack_MisalignedCursor(t *testing.T) {
	buf := make([]byte, 4)
	c := Cursor{Byte: 1, Bit: 3}
	_, err := Pack(Uint16("n", binary.LittleEndian), uint16(7), buf, &c)
	var aerr *AlignmentError
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, "n", aerr.Field)
	require.Equal(t, Cursor{Byte: 1, Bit: 3}, aerr.At)
	// nothing moved
	require.Equal(t, Cursor{Byte: 1, Bit: 3}, c)
	require.Equal(t, make([]byte, 4), buf)

	_, err = Unpack(Bytes("b", 2), buf, &c)
	require.ErrorAs(t, err, &aerr)
	require.Equal(t, "b", aerr.Field)

	// bit fields don't care
	_, err = Unpack(UBits("u", 3, MSBFirst), buf, &c)
	require.NoError(t, err)
}

func TestRecord_Accessors(t *testing.T) {
	rec := sampleRecord()
	n, ok := rec.Int("point", "x")
	require.True(t, ok)
	require.Equal(t, int64(-1), n)
	n, ok = rec.Int("id")
	require.True(t, ok)
	require.Equal(t, int64(1<<40+7), n)
	_, ok = rec.Int("label")
	require.False(t, ok)
	_, ok = rec.Int("point", "z")
	require.False(t, ok)
	s, ok := rec.String("label")
	require.True(t, ok)
	require.Equal(t, "hello", s)
	b, ok := rec.Bytes("tag")
	require.True(t, ok)
	require.Equal(t, []byte{1, 2, 3}, b)
	require.Equal(t, Record{"x": int16(-1), "y": int16(2)}, rec.Sub("point"))

	cp := rec.Clone()
	require.Equal(t, rec, cp)
	cp.Sub("point")["x"] = int16(5)
	cp["tag"].([]byte)[0] = 9
	require.Equal(t, int16(-1), rec.Sub("point")["x"])
	require.Equal(t, byte(1), rec["tag"].([]byte)[0])
}

func TestStruct_ConcurrentUse(t *testing.T) {
	s := newSample(t)
	rec := sampleRecord()
	want, err := s.Pack(rec)
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Unpack(want)
			if err != nil {
				errs <- err
				return
			}
			buf, err := s.Pack(got)
			if err != nil {
				errs <- err
				return
			}
			if string(buf) != string(want) {
				errs <- errors.New("round trip mismatch")
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
}
