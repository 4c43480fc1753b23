// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package zero clears byte ranges, such as the gaps that padding
// leaves inside a packed record.
package zero

// Bytes sets every byte of b to 0 without changing its length or
// capacity.
func Bytes(b []byte) {
	clear(b)
}
