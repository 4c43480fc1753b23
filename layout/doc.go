// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package layout describes fixed-size binary records and converts
// between raw bytes and structured values.
//
// A layout is built once from an ordered list of fields:
//
//	var header = layout.MustStruct("header",
//		layout.Uint8("version"),
//		layout.Bool("copyable", layout.LSBFirst),
//		layout.UBits("region", 2, layout.LSBFirst),
//		layout.UBits("reserved", 5, layout.LSBFirst),
//		layout.String("name", 20, layout.UTF16LE),
//		layout.Padding(24),
//		layout.Uint16("checksum", binary.BigEndian),
//	)
//
// Every field occupies a fixed number of bits.  Byte-level fields
// (integers, floats, byte blobs, strings and nested structs) must
// start on a byte boundary; bit-level fields may straddle bytes and
// are read in the declared bit order.  Offsets are computed from a
// running Cursor when the struct is constructed, and a struct must
// end on a byte boundary.
//
// Structs are immutable after construction and safe for concurrent
// use: all per-call state lives in the Cursor owned by the caller.
//
// Decoded structs are Records (map[string]any keyed by field name);
// arrays decode to []any.  For every value v that fits a field's
// domain, Unpack(Pack(v)) == v, except that strings longer than their
// field are truncated.
package layout
