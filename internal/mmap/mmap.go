// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mmap provides read-only access to the contents of a file
// through a memory mapping where the platform supports one.
package mmap

import (
	"errors"
	"fmt"
	"io"
)

var errClosed = errors.New("mmap: closed")

// ReaderAt reads a file's contents from memory.
type ReaderAt struct {
	data  []byte
	unmap func([]byte) error
}

// Len returns the length of the underlying file.
func (r *ReaderAt) Len() int {
	return len(r.data)
}

// Data returns the mapped bytes.  The slice is only valid until Close
// and must not be written to.
func (r *ReaderAt) Data() []byte {
	return r.data
}

// At returns the byte at index i.
func (r *ReaderAt) At(i int) byte {
	return r.data[i]
}

// ReadAt implements io.ReaderAt.
func (r *ReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if r.data == nil {
		return 0, errClosed
	}
	if off < 0 || int64(len(r.data)) < off {
		return 0, fmt.Errorf("mmap: invalid ReadAt offset %d", off)
	}
	n := copy(p, r.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Close releases the mapping.  It is safe to call more than once.
func (r *ReaderAt) Close() error {
	if r.data == nil {
		return nil
	}
	data := r.data
	r.data = nil
	if r.unmap == nil || len(data) == 0 {
		return nil
	}
	return r.unmap(data)
}
