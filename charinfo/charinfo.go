// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"encoding/binary"

	"github.com/bpowers/mii/layout"
)

// Record sizes in bytes.
const (
	CharInfoSize  = 0x120
	StudioSize    = 46
	StudioURLSize = StudioSize + 1
	Ver3Size      = 0x60
)

var le = binary.LittleEndian

func group(name string, members ...string) *layout.Struct {
	fields := make([]layout.Field, len(members))
	for i, m := range members {
		fields[i] = layout.Int32(m, le)
	}
	return layout.MustStruct(name, fields...)
}

// CharInfo is the canonical character record: every scalar is a
// little-endian int32 apart from the four personal flag bytes.
var CharInfo = layout.MustStruct("charInfo",
	layout.Int32("miiVersion", le),
	group("faceline", "type", "color", "texture", "make"),
	group("hair", "type", "color", "flip"),
	group("eye", "type", "color", "scale", "aspect", "rotate", "x", "y"),
	group("eyebrow", "type", "color", "scale", "aspect", "rotate", "x", "y"),
	group("nose", "type", "scale", "y"),
	group("mouth", "type", "color", "scale", "aspect", "y"),
	group("beard", "mustache", "type", "color", "scale", "y"),
	group("glass", "type", "color", "scale", "y"),
	group("mole", "type", "scale", "x", "y"),
	group("body", "height", "build"),
	layout.MustStruct("personal",
		layout.String("name", 22, layout.UTF16LE),
		layout.String("creator", 22, layout.UTF16LE),
		layout.Int32("gender", le),
		layout.Int32("birthMonth", le),
		layout.Int32("birthDay", le),
		layout.Int32("favoriteColor", le),
		layout.Uint8("favorite"),
		layout.Uint8("copyable"),
		layout.Uint8("ngWord"),
		layout.Uint8("localOnly"),
		layout.Int32("regionMove", le),
		layout.Int32("fontRegion", le),
		layout.Int32("roomIndex", le),
		layout.Int32("positionInRoom", le),
		layout.Int32("birthPlatform", le),
	),
	layout.Bytes("createID", 10),
	layout.Padding(276),
	layout.Int32("authorType", le),
	layout.Bytes("authorID", 8),
)

// Birth platforms.
const (
	PlatformWii  = 1
	PlatformDS   = 2
	PlatformCTR  = 3
	PlatformWiiU = 4
)

// ParseCharInfo decodes a canonical record.  data must be exactly
// CharInfoSize bytes.
func ParseCharInfo(data []byte) (layout.Record, error) {
	if len(data) != CharInfoSize {
		return nil, sizeError("ParseCharInfo", "charInfo", CharInfoSize, len(data))
	}
	return CharInfo.Unpack(data)
}

// PackCharInfo encodes a canonical record.
func PackCharInfo(rec layout.Record) ([]byte, error) {
	return CharInfo.Pack(rec)
}

// Default returns the engine's stock character with every field
// populated.
func Default() layout.Record {
	return layout.Record{
		"miiVersion": int32(3),
		"faceline":   ints("type", 0, "color", 0, "texture", 0, "make", 0),
		"hair":       ints("type", 33, "color", 1, "flip", 0),
		"eye":        ints("type", 2, "color", 8, "scale", 4, "aspect", 3, "rotate", 4, "x", 2, "y", 12),
		"eyebrow":    ints("type", 6, "color", 1, "scale", 4, "aspect", 3, "rotate", 6, "x", 2, "y", 10),
		"nose":       ints("type", 1, "scale", 4, "y", 9),
		"mouth":      ints("type", 23, "color", 19, "scale", 4, "aspect", 3, "y", 13),
		"beard":      ints("mustache", 0, "type", 0, "color", 8, "scale", 4, "y", 10),
		"glass":      ints("type", 0, "color", 8, "scale", 4, "y", 10),
		"mole":       ints("type", 0, "scale", 4, "x", 2, "y", 20),
		"body":       ints("height", 64, "build", 64),
		"personal": layout.Record{
			"name":           "no name",
			"creator":        "",
			"gender":         int32(0),
			"birthMonth":     int32(0),
			"birthDay":       int32(0),
			"favoriteColor":  int32(0),
			"favorite":       uint8(0),
			"copyable":       uint8(0),
			"ngWord":         uint8(0),
			"localOnly":      uint8(0),
			"regionMove":     int32(0),
			"fontRegion":     int32(0),
			"roomIndex":      int32(0),
			"positionInRoom": int32(0),
			"birthPlatform":  int32(PlatformWiiU),
		},
		"createID":   make([]byte, 10),
		"authorType": int32(0),
		"authorID":   make([]byte, 8),
	}
}

func ints(kv ...any) layout.Record {
	rec := make(layout.Record, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		rec[kv[i].(string)] = int32(kv[i+1].(int))
	}
	return rec
}
