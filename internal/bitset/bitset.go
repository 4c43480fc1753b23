// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package bitset

// Bitset is a fixed-size set of small non-negative integers, used to
// hold sets of UTF-16 code units.
type Bitset struct {
	bits   []uint64
	length int
}

func offsets(off int) (word int, bit uint64) {
	return off / 64, uint64(off) % 64
}

// New returns an empty set that can hold 0 through length-1.
func New(length int) *Bitset {
	return &Bitset{
		bits:   make([]uint64, (length+63)/64),
		length: length,
	}
}

// Set adds off to the set.  Out of range values are ignored.
func (b *Bitset) Set(off int) {
	if off < 0 || off >= b.length {
		return
	}
	w, bit := offsets(off)
	b.bits[w] |= 1 << bit
}

// SetRange adds lo through hi inclusive.
func (b *Bitset) SetRange(lo, hi int) {
	for off := lo; off <= hi; off++ {
		b.Set(off)
	}
}

// Clear removes off from the set.
func (b *Bitset) Clear(off int) {
	if off < 0 || off >= b.length {
		return
	}
	w, bit := offsets(off)
	b.bits[w] &^= 1 << bit
}

// IsSet reports whether off is in the set.
func (b *Bitset) IsSet(off int) bool {
	if off < 0 || off >= b.length {
		return false
	}
	w, bit := offsets(off)
	return b.bits[w]&(1<<bit) != 0
}

// Len returns the capacity the set was created with.
func (b *Bitset) Len() int {
	return b.length
}
