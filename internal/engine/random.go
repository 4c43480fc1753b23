// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package engine

import (
	"fmt"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/layout"
)

// Skin tones and eye colors by race.  Colors here are legacy indices,
// resolved through charinfo's color tables.
var (
	raceFacelineColors = map[charinfo.Race][]int32{
		charinfo.RaceBlack: {3, 4, 5},
		charinfo.RaceWhite: {0, 1},
		charinfo.RaceAsian: {0, 1, 2},
	}
	raceEyeColors = map[charinfo.Race][]int32{
		charinfo.RaceBlack: {0, 1, 2},
		charinfo.RaceWhite: {1, 2, 3, 4, 5},
		charinfo.RaceAsian: {0, 2},
	}
	// legacy hair colors: gray and white for elders
	ageHairColors = map[charinfo.Age][]int32{
		charinfo.AgeChild: {0, 1, 2, 3, 5, 6},
		charinfo.AgeAdult: {0, 1, 2, 3, 5, 6},
		charinfo.AgeElder: {4, 7},
	}
	// faceline textures: smooth for children, wrinkled for elders
	ageTextures = map[charinfo.Age][]int32{
		charinfo.AgeChild: {0},
		charinfo.AgeAdult: {0, 1, 2, 3},
		charinfo.AgeElder: {4, 5, 6, 7, 8, 9, 10, 11},
	}
	ageHeights = map[charinfo.Age][2]int32{
		charinfo.AgeChild: {10, 50},
		charinfo.AgeAdult: {45, 110},
		charinfo.AgeElder: {30, 90},
	}
)

func (e *Engine) intn(lo, hi int32) int32 {
	return lo + e.rng.Int32N(hi-lo+1)
}

func (e *Engine) pick(choices []int32) int32 {
	return choices[e.rng.IntN(len(choices))]
}

// RandomCharInfo returns a packed canonical record.  The All value of
// each filter picks uniformly among the others.
func (e *Engine) RandomCharInfo(gender charinfo.Gender, age charinfo.Age, race charinfo.Race) ([]byte, error) {
	if gender < charinfo.GenderMale || gender > charinfo.GenderAll {
		return nil, fmt.Errorf("engine: invalid gender %d", gender)
	}
	if age < charinfo.AgeChild || age > charinfo.AgeAll {
		return nil, fmt.Errorf("engine: invalid age %d", age)
	}
	if race < charinfo.RaceBlack || race > charinfo.RaceAll {
		return nil, fmt.Errorf("engine: invalid race %d", race)
	}

	e.mu.Lock()
	rec := e.random(gender, age, race)
	e.mu.Unlock()

	return charinfo.PackCharInfo(rec)
}

func (e *Engine) random(gender charinfo.Gender, age charinfo.Age, race charinfo.Race) layout.Record {
	if gender == charinfo.GenderAll {
		gender = charinfo.Gender(e.rng.IntN(2))
	}
	if age == charinfo.AgeAll {
		age = charinfo.Age(e.rng.IntN(3))
	}
	if race == charinfo.RaceAll {
		race = charinfo.Race(e.rng.IntN(3))
	}

	rec := charinfo.Default()
	set := func(group, field string, v int32) {
		rec.Sub(group)[field] = v
	}

	set("faceline", "type", e.intn(0, 11))
	set("faceline", "color", e.pick(raceFacelineColors[race]))
	set("faceline", "texture", e.pick(ageTextures[age]))
	set("faceline", "make", 0)
	if gender == charinfo.GenderFemale && age != charinfo.AgeChild {
		set("faceline", "make", e.intn(0, 11))
	}

	hairColor := charinfo.HairColors[e.pick(ageHairColors[age])]
	set("hair", "type", e.intn(0, 131))
	set("hair", "color", hairColor)
	set("hair", "flip", e.intn(0, 1))

	set("eye", "type", e.intn(0, 59))
	set("eye", "color", charinfo.EyeColors[e.pick(raceEyeColors[race])])
	set("eye", "scale", e.intn(2, 6))
	set("eye", "aspect", e.intn(1, 5))
	set("eye", "rotate", e.intn(2, 6))
	set("eye", "x", e.intn(1, 4))
	set("eye", "y", e.intn(9, 15))

	// the last eyebrow type postdates the older consoles
	set("eyebrow", "type", e.intn(0, 23))
	set("eyebrow", "color", hairColor)
	set("eyebrow", "scale", e.intn(2, 6))
	set("eyebrow", "aspect", e.intn(1, 5))
	set("eyebrow", "rotate", e.intn(3, 9))
	set("eyebrow", "x", e.intn(1, 4))
	set("eyebrow", "y", e.intn(7, 13))

	set("nose", "type", e.intn(0, 17))
	set("nose", "scale", e.intn(2, 6))
	set("nose", "y", e.intn(7, 12))

	set("mouth", "type", e.intn(0, 35))
	set("mouth", "color", charinfo.MouthColors[e.intn(0, 4)])
	set("mouth", "scale", e.intn(2, 6))
	set("mouth", "aspect", e.intn(1, 5))
	set("mouth", "y", e.intn(11, 15))

	set("beard", "mustache", 0)
	set("beard", "type", 0)
	set("beard", "color", hairColor)
	if gender == charinfo.GenderMale && age != charinfo.AgeChild && e.rng.IntN(3) == 0 {
		set("beard", "mustache", e.intn(1, 5))
		set("beard", "type", e.intn(0, 5))
	}
	set("beard", "scale", e.intn(2, 6))
	set("beard", "y", e.intn(8, 12))

	set("glass", "type", 0)
	if age == charinfo.AgeElder || e.rng.IntN(4) == 0 {
		set("glass", "type", e.intn(1, 8))
	}
	set("glass", "color", charinfo.GlassColors[e.intn(0, 5)])
	set("glass", "scale", e.intn(3, 5))
	set("glass", "y", e.intn(8, 12))

	set("mole", "type", 0)
	if e.rng.IntN(8) == 0 {
		set("mole", "type", 1)
	}
	set("mole", "scale", e.intn(2, 6))
	set("mole", "x", e.intn(1, 15))
	set("mole", "y", e.intn(10, 29))

	heights := ageHeights[age]
	set("body", "height", e.intn(heights[0], heights[1]))
	set("body", "build", e.intn(20, 100))

	set("personal", "gender", int32(gender))
	set("personal", "favoriteColor", e.intn(0, 11))

	id := make([]byte, 10)
	for i := range id {
		id[i] = byte(e.rng.Uint32())
	}
	rec["createID"] = id
	return rec
}
