// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package zero

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	for _, input := range [][]byte{
		{},
		{'a', 'b', 'c'},
		{0xff, 0x00, 0x7f, 0x80},
	} {
		initialLen := len(input)
		initialCap := cap(input)
		expected := make([]byte, len(input))
		Bytes(input)
		require.Equal(t, expected, input)
		// len and cap should be unchanged
		require.Equal(t, initialLen, len(input))
		require.Equal(t, initialCap, cap(input))
	}
}

func TestBytes_Subslice(t *testing.T) {
	buf := []byte{1, 2, 3, 4, 5}
	Bytes(buf[1:4])
	require.Equal(t, []byte{1, 0, 0, 0, 5}, buf)
}
