// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"encoding/binary"
	"fmt"

	"github.com/sigurn/crc16"

	"github.com/bpowers/mii/layout"
)

const (
	ver3ChecksumOffset = 0x5e
	lsb                = layout.LSBFirst
)

func ubits(name string, width int) layout.Field {
	return layout.UBits(name, width, lsb)
}

// mole presence is a single bit on the wire but a type elsewhere.
func flagAsType(name string) layout.Field {
	return layout.Derive(layout.Bool(name, lsb),
		func(v any) (any, error) {
			n, ok := asInt(v)
			if !ok || n < 0 || n > 1 {
				return nil, fmt.Errorf("expected 0 or 1, got %v", v)
			}
			return n == 1, nil
		},
		func(v any) (any, error) {
			if v.(bool) {
				return uint64(1), nil
			}
			return uint64(0), nil
		},
	)
}

// Ver3 is the 96-byte store data used by the 3DS and Wii U, and the
// form most often found embedded in other files.  Bitfields are packed
// from the least significant bit of little-endian words.
var Ver3 = layout.MustStruct("ver3StoreData",
	layout.Uint8("version"),
	layout.Bool("copyable", lsb),
	layout.Bool("ngWord", lsb),
	ubits("regionMove", 2),
	ubits("fontRegion", 2),
	ubits("reserved0", 2),
	ubits("roomIndex", 4),
	ubits("positionInRoom", 4),
	ubits("authorType", 4),
	ubits("birthPlatform", 3),
	ubits("reserved1", 1),
	layout.Bytes("authorID", 8),
	layout.Bytes("createID", 10),
	layout.Padding(0x18),

	ubits("gender", 1),
	ubits("birthMonth", 4),
	ubits("birthDay", 5),
	ubits("favoriteColor", 4),
	layout.Bool("favorite", lsb),
	ubits("reserved2", 1),
	layout.String("name", 20, layout.UTF16LE),
	layout.Uint8("height"),
	layout.Uint8("build"),

	layout.Bool("localOnly", lsb),
	ubits("facelineType", 4),
	ubits("facelineColor", 3),
	ubits("facelineTexture", 4),
	ubits("facelineMake", 4),
	layout.Uint8("hairType"),
	ubits("hairColor", 3),
	ubits("hairFlip", 1),
	ubits("reserved3", 4),

	ubits("eyeType", 6),
	ubits("eyeColor", 3),
	ubits("eyeScale", 4),
	ubits("eyeAspect", 3),
	ubits("eyeRotate", 5),
	ubits("eyeX", 4),
	ubits("eyeY", 5),
	ubits("reserved4", 2),

	ubits("eyebrowType", 5),
	ubits("eyebrowColor", 3),
	ubits("eyebrowScale", 4),
	ubits("eyebrowAspect", 3),
	ubits("reserved5", 1),
	ubits("eyebrowRotate", 4),
	ubits("reserved6", 1),
	ubits("eyebrowX", 4),
	ubits("eyebrowY", 5),
	ubits("reserved7", 2),

	ubits("noseType", 5),
	ubits("noseScale", 4),
	ubits("noseY", 5),
	ubits("reserved8", 2),

	ubits("mouthType", 6),
	ubits("mouthColor", 3),
	ubits("mouthScale", 4),
	ubits("mouthAspect", 3),
	ubits("mouthY", 5),
	ubits("mustacheType", 3),
	ubits("reserved9", 8),

	ubits("beardType", 3),
	ubits("beardColor", 3),
	ubits("mustacheScale", 4),
	ubits("mustacheY", 5),
	ubits("reserved10", 1),

	ubits("glassType", 4),
	ubits("glassColor", 3),
	ubits("glassScale", 4),
	ubits("glassY", 5),

	flagAsType("moleType"),
	ubits("moleScale", 4),
	ubits("moleX", 5),
	ubits("moleY", 5),
	ubits("reserved11", 1),

	layout.String("creator", 20, layout.UTF16LE),
	layout.Padding(ver3ChecksumOffset),
	layout.Uint16("checksum", binary.BigEndian),
)

var crcTable = crc16.MakeTable(crc16.CRC16_XMODEM)

// Ver3Checksum computes the CRC16/XMODEM that guards store data.
func Ver3Checksum(data []byte) uint16 {
	return crc16.Checksum(data[:ver3ChecksumOffset], crcTable)
}

// ValidVer3 reports whether data is the right size and carries a
// matching checksum.
func ValidVer3(data []byte) bool {
	if len(data) != Ver3Size {
		return false
	}
	return binary.BigEndian.Uint16(data[ver3ChecksumOffset:]) == Ver3Checksum(data)
}

// ParseVer3 decodes store data after checking its size and checksum.
func ParseVer3(data []byte) (layout.Record, error) {
	if len(data) != Ver3Size {
		return nil, sizeError("ParseVer3", "ver3 store data", Ver3Size, len(data))
	}
	if !ValidVer3(data) {
		return nil, ReasonChecksum.Err()
	}
	return Ver3.Unpack(data)
}

// PackVer3 encodes store data and stamps its checksum.  Any checksum
// in rec is ignored.
func PackVer3(rec layout.Record) ([]byte, error) {
	rec = rec.Clone()
	rec["checksum"] = uint16(0)
	buf, err := Ver3.Pack(rec)
	if err != nil {
		return nil, err
	}
	binary.BigEndian.PutUint16(buf[ver3ChecksumOffset:], Ver3Checksum(buf))
	return buf, nil
}
