// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"fmt"

	"github.com/bpowers/mii/layout"
)

// Engine is the model engine this package leans on for semantic checks
// and random characters.  Implementations must be safe for concurrent
// use.
type Engine interface {
	// VerifyCharInfo returns a Reason code for a canonical record.
	VerifyCharInfo(data []byte, verifyName bool) int
	// RandomCharInfo returns a canonical record matching the filters.
	RandomCharInfo(gender Gender, age Age, race Race) ([]byte, error)
}

type Gender int

const (
	GenderMale Gender = iota
	GenderFemale
	GenderAll
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	case GenderAll:
		return "all"
	}
	return fmt.Sprintf("Gender(%d)", int(g))
}

type Age int

const (
	AgeChild Age = iota
	AgeAdult
	AgeElder
	AgeAll
)

func (a Age) String() string {
	switch a {
	case AgeChild:
		return "child"
	case AgeAdult:
		return "adult"
	case AgeElder:
		return "elder"
	case AgeAll:
		return "all"
	}
	return fmt.Sprintf("Age(%d)", int(a))
}

type Race int

const (
	RaceBlack Race = iota
	RaceWhite
	RaceAsian
	RaceAll
)

func (r Race) String() string {
	switch r {
	case RaceBlack:
		return "black"
	case RaceWhite:
		return "white"
	case RaceAsian:
		return "asian"
	case RaceAll:
		return "all"
	}
	return fmt.Sprintf("Race(%d)", int(r))
}

// ParseGender accepts the String form of a Gender.
func ParseGender(s string) (Gender, error) {
	for g := GenderMale; g <= GenderAll; g++ {
		if g.String() == s {
			return g, nil
		}
	}
	return 0, fmt.Errorf("charinfo: unknown gender %q", s)
}

func ParseAge(s string) (Age, error) {
	for a := AgeChild; a <= AgeAll; a++ {
		if a.String() == s {
			return a, nil
		}
	}
	return 0, fmt.Errorf("charinfo: unknown age %q", s)
}

func ParseRace(s string) (Race, error) {
	for r := RaceBlack; r <= RaceAll; r++ {
		if r.String() == s {
			return r, nil
		}
	}
	return 0, fmt.Errorf("charinfo: unknown race %q", s)
}

// Verify asks e to check a canonical record.  A non-zero result is
// returned as a *VerificationError naming the reason.
func Verify(e Engine, data []byte, verifyName bool) error {
	if len(data) != CharInfoSize {
		return sizeError("Verify", "charInfo", CharInfoSize, len(data))
	}
	return Reason(e.VerifyCharInfo(data, verifyName)).Err()
}

// Random asks e for a random character and decodes it.
func Random(e Engine, gender Gender, age Age, race Race) (layout.Record, error) {
	data, err := e.RandomCharInfo(gender, age, race)
	if err != nil {
		return nil, fmt.Errorf("charinfo: random: %w", err)
	}
	return ParseCharInfo(data)
}
