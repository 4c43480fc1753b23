// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

// ColorTable maps a feature's legacy color indices, the ones the Wii,
// DS, 3DS and Wii U understood, onto the shared 100-entry palette the
// canonical record stores.  The tables are historical and don't follow
// a formula.
type ColorTable []int32

var (
	HairColors  = ColorTable{8, 1, 2, 3, 4, 5, 6, 7}
	EyeColors   = ColorTable{8, 9, 10, 11, 12, 13}
	GlassColors = ColorTable{8, 14, 15, 16, 17, 18}
	MouthColors = ColorTable{19, 20, 21, 22, 0}
)

// PaletteMax is the highest palette entry.
const PaletteMax = 99

// Palette returns the palette entry for legacy index i.
func (t ColorTable) Palette(i int64) (int32, bool) {
	if i < 0 || i >= int64(len(t)) {
		return 0, false
	}
	return t[i], true
}

// Legacy returns the legacy index of palette entry c.
func (t ColorTable) Legacy(c int64) (int64, bool) {
	for i, p := range t {
		if int64(p) == c {
			return int64(i), true
		}
	}
	return 0, false
}

// fromCompact resolves a compact color.  Values below the table's
// length are legacy indices; the rest name palette entries directly.
func (t ColorTable) fromCompact(v int64) int32 {
	if p, ok := t.Palette(v); ok {
		return p
	}
	return int32(v)
}

// toCompact prefers a palette entry's legacy index.  Entries below the
// table's length with no legacy index have no compact form.
func (t ColorTable) toCompact(field string, c int64) (int64, error) {
	if c < 0 || c > PaletteMax {
		return 0, outOfRange(field, c, 0, PaletteMax)
	}
	if i, ok := t.Legacy(c); ok {
		return i, nil
	}
	if c < int64(len(t)) {
		return 0, &ConversionError{Field: field, Value: c, Msg: "palette color has no compact form"}
	}
	return c, nil
}

type studioMapping struct {
	studio       string
	group, field string
	max          int64
	colors       ColorTable
}

// studioMap relates each compact attribute to its canonical home.
// Ranges are those the web service accepts.
var studioMap = []studioMapping{
	{"beardColor", "beard", "color", PaletteMax, HairColors},
	{"beardType", "beard", "type", 5, nil},
	{"build", "body", "build", 127, nil},
	{"eyeAspect", "eye", "aspect", 6, nil},
	{"eyeColor", "eye", "color", PaletteMax, EyeColors},
	{"eyeRotate", "eye", "rotate", 7, nil},
	{"eyeScale", "eye", "scale", 7, nil},
	{"eyeType", "eye", "type", 59, nil},
	{"eyeX", "eye", "x", 12, nil},
	{"eyeY", "eye", "y", 18, nil},
	{"eyebrowAspect", "eyebrow", "aspect", 6, nil},
	{"eyebrowColor", "eyebrow", "color", PaletteMax, HairColors},
	{"eyebrowRotate", "eyebrow", "rotate", 11, nil},
	{"eyebrowScale", "eyebrow", "scale", 8, nil},
	{"eyebrowType", "eyebrow", "type", 24, nil},
	{"eyebrowX", "eyebrow", "x", 12, nil},
	{"eyebrowY", "eyebrow", "y", 18, nil},
	{"facelineColor", "faceline", "color", 9, nil},
	{"facelineMake", "faceline", "make", 11, nil},
	{"facelineType", "faceline", "type", 11, nil},
	{"facelineWrinkle", "faceline", "texture", 11, nil},
	{"favoriteColor", "personal", "favoriteColor", 11, nil},
	{"gender", "personal", "gender", 1, nil},
	{"glassColor", "glass", "color", PaletteMax, GlassColors},
	{"glassScale", "glass", "scale", 7, nil},
	{"glassType", "glass", "type", 19, nil},
	{"glassY", "glass", "y", 20, nil},
	{"hairColor", "hair", "color", PaletteMax, HairColors},
	{"hairFlip", "hair", "flip", 1, nil},
	{"hairType", "hair", "type", 131, nil},
	{"height", "body", "height", 127, nil},
	{"moleScale", "mole", "scale", 8, nil},
	{"moleType", "mole", "type", 1, nil},
	{"moleX", "mole", "x", 16, nil},
	{"moleY", "mole", "y", 30, nil},
	{"mouthAspect", "mouth", "aspect", 6, nil},
	{"mouthColor", "mouth", "color", PaletteMax, MouthColors},
	{"mouthScale", "mouth", "scale", 8, nil},
	{"mouthType", "mouth", "type", 35, nil},
	{"mouthY", "mouth", "y", 18, nil},
	{"mustacheScale", "beard", "scale", 8, nil},
	{"mustacheType", "beard", "mustache", 5, nil},
	{"mustacheY", "beard", "y", 16, nil},
	{"noseScale", "nose", "scale", 8, nil},
	{"noseType", "nose", "type", 17, nil},
	{"noseY", "nose", "y", 18, nil},
}

type ver3Mapping struct {
	ver3         string
	group, field string
	max          int64
}

// ver3Map relates store data fields to the canonical record.  group is
// empty for top-level fields.  Ranges are what the older consoles
// accept, which is narrower than the canonical record allows.
var ver3Map = []ver3Mapping{
	{"version", "", "miiVersion", 255},
	{"authorType", "", "authorType", 15},
	{"facelineType", "faceline", "type", 11},
	{"facelineColor", "faceline", "color", 5},
	{"facelineTexture", "faceline", "texture", 11},
	{"facelineMake", "faceline", "make", 11},
	{"hairType", "hair", "type", 131},
	{"hairColor", "hair", "color", 7},
	{"hairFlip", "hair", "flip", 1},
	{"eyeType", "eye", "type", 59},
	{"eyeColor", "eye", "color", 5},
	{"eyeScale", "eye", "scale", 7},
	{"eyeAspect", "eye", "aspect", 6},
	{"eyeRotate", "eye", "rotate", 7},
	{"eyeX", "eye", "x", 12},
	{"eyeY", "eye", "y", 18},
	{"eyebrowType", "eyebrow", "type", 23},
	{"eyebrowColor", "eyebrow", "color", 7},
	{"eyebrowScale", "eyebrow", "scale", 8},
	{"eyebrowAspect", "eyebrow", "aspect", 6},
	{"eyebrowRotate", "eyebrow", "rotate", 11},
	{"eyebrowX", "eyebrow", "x", 12},
	{"eyebrowY", "eyebrow", "y", 18},
	{"noseType", "nose", "type", 17},
	{"noseScale", "nose", "scale", 8},
	{"noseY", "nose", "y", 18},
	{"mouthType", "mouth", "type", 35},
	{"mouthColor", "mouth", "color", 4},
	{"mouthScale", "mouth", "scale", 8},
	{"mouthAspect", "mouth", "aspect", 6},
	{"mouthY", "mouth", "y", 18},
	{"mustacheType", "beard", "mustache", 5},
	{"beardType", "beard", "type", 5},
	{"beardColor", "beard", "color", 7},
	{"mustacheScale", "beard", "scale", 8},
	{"mustacheY", "beard", "y", 16},
	{"glassType", "glass", "type", 8},
	{"glassColor", "glass", "color", 5},
	{"glassScale", "glass", "scale", 7},
	{"glassY", "glass", "y", 20},
	{"moleType", "mole", "type", 1},
	{"moleScale", "mole", "scale", 8},
	{"moleX", "mole", "x", 16},
	{"moleY", "mole", "y", 30},
	{"height", "body", "height", 127},
	{"build", "body", "build", 127},
	{"gender", "personal", "gender", 1},
	{"birthMonth", "personal", "birthMonth", 12},
	{"birthDay", "personal", "birthDay", 31},
	{"favoriteColor", "personal", "favoriteColor", 11},
	{"regionMove", "personal", "regionMove", 3},
	{"fontRegion", "personal", "fontRegion", 3},
	{"roomIndex", "personal", "roomIndex", 9},
	{"positionInRoom", "personal", "positionInRoom", 9},
	{"birthPlatform", "personal", "birthPlatform", 7},
}

// ver3Colors are the store data fields holding legacy color indices.
var ver3Colors = map[string]ColorTable{
	"hairColor":    HairColors,
	"eyebrowColor": HairColors,
	"beardColor":   HairColors,
	"eyeColor":     EyeColors,
	"glassColor":   GlassColors,
	"mouthColor":   MouthColors,
}

// ver3Flags are the one-bit personal flags, stored as bytes in the
// canonical record.
var ver3Flags = []string{"favorite", "copyable", "ngWord", "localOnly"}

var ver3Reserved = []string{
	"reserved0", "reserved1", "reserved2", "reserved3", "reserved4", "reserved5",
	"reserved6", "reserved7", "reserved8", "reserved9", "reserved10", "reserved11",
}
