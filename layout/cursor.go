// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import "fmt"

// Cursor tracks a position within a buffer as a whole-byte offset plus
// the number of bits already consumed from the current byte.  A Cursor
// belongs to a single Pack or Unpack call chain and is never stored on
// a layout.
type Cursor struct {
	Byte int
	Bit  int // 0-7
}

// Bits returns the absolute position in bits.
func (c *Cursor) Bits() int {
	return c.Byte*8 + c.Bit
}

// Aligned reports whether the cursor sits on a byte boundary.
func (c *Cursor) Aligned() bool {
	return c.Bit == 0
}

// Advance moves the cursor forward by n bits, carrying whole bytes out
// of the bit offset.
func (c *Cursor) Advance(n int) {
	if n < 0 {
		panic("invariant broken: cursor moved backward")
	}
	total := c.Bit + n
	c.Byte += total / 8
	c.Bit = total % 8
}

func (c Cursor) String() string {
	return fmt.Sprintf("%d:%d", c.Byte, c.Bit)
}

// bytesFor returns the number of bytes needed to hold n bits.
func bytesFor(n int) int {
	return (n + 7) / 8
}
