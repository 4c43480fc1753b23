// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package engine is a pure-Go model engine: it range checks canonical
// records and generates random ones.  It stands in for the native
// engine wherever one isn't available.
package engine

import (
	"io"
	"log/slog"
	"math/rand/v2"
	"sync"
	"unicode/utf16"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/bitset"
	"github.com/bpowers/mii/layout"
)

type Option func(*Engine)

// WithSeed makes random generation deterministic.
func WithSeed(seed uint64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine implements charinfo.Engine.  It is safe for concurrent use.
type Engine struct {
	mu     sync.Mutex
	rng    *rand.Rand
	logger *slog.Logger
}

var _ charinfo.Engine = (*Engine)(nil)

func New(opts ...Option) *Engine {
	e := &Engine{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return e
}

// disallowed holds the UTF-16 code units that may not appear in names:
// controls, lone surrogates, private use and noncharacters.
var disallowed = func() *bitset.Bitset {
	b := bitset.New(1 << 16)
	b.SetRange(0x0000, 0x001f)
	b.SetRange(0x007f, 0x009f)
	b.SetRange(0xd800, 0xdfff)
	b.SetRange(0xe000, 0xf8ff)
	b.SetRange(0xfff0, 0xffff)
	return b
}()

func validName(s string) bool {
	if s == "" {
		return false
	}
	for _, u := range utf16.Encode([]rune(s)) {
		if disallowed.IsSet(int(u)) {
			return false
		}
	}
	return true
}

// VerifyCharInfo returns the first charinfo.Reason data fails, or zero.
func (e *Engine) VerifyCharInfo(data []byte, verifyName bool) int {
	if len(data) != charinfo.CharInfoSize {
		return int(charinfo.ReasonSize)
	}
	rec, err := charinfo.ParseCharInfo(data)
	if err != nil {
		e.logger.Warn("unreadable record", "error", err)
		return int(charinfo.ReasonSize)
	}
	reason := verify(rec, verifyName)
	if reason != charinfo.ReasonOK {
		e.logger.Debug("verification failed", "reason", reason)
	}
	return int(reason)
}

func verify(rec layout.Record, verifyName bool) charinfo.Reason {
	if v, _ := rec.Int("miiVersion"); v < 0 || v > 3 {
		return charinfo.ReasonMiiVersion
	}
	for _, r := range rules {
		v, ok := rec.Int(r.path...)
		if !ok {
			return r.reason
		}
		if v < r.lo || v > r.hi {
			return r.reason
		}
	}
	if !validBirthday(rec) {
		return charinfo.ReasonBirthday
	}
	if verifyName {
		if name, _ := rec.String("personal", "name"); !validName(name) {
			return charinfo.ReasonName
		}
		// an empty creator is allowed
		if creator, _ := rec.String("personal", "creator"); creator != "" && !validName(creator) {
			return charinfo.ReasonCreatorName
		}
	}
	return charinfo.ReasonOK
}

var daysIn = [13]int64{0, 31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}

// birthdays are either unset or a real calendar day.
func validBirthday(rec layout.Record) bool {
	month, _ := rec.Int("personal", "birthMonth")
	day, _ := rec.Int("personal", "birthDay")
	if month == 0 || day == 0 {
		return month == 0 && day == 0
	}
	return day <= daysIn[month]
}
