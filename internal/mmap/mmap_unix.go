// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build unix

package mmap

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// Open memory-maps the named file for reading.
func Open(path string) (*ReaderAt, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	fi, err := f.Stat()
	if err != nil {
		return nil, err
	}
	size := fi.Size()
	if size == 0 {
		// mmap of a zero-length file fails; an empty reader is fine
		return &ReaderAt{data: []byte{}}, nil
	}
	if size < 0 || size != int64(int(size)) {
		return nil, fmt.Errorf("mmap: file %q has bad size %d", path, size)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap: %w", err)
	}
	return &ReaderAt{data: data, unmap: unix.Munmap}, nil
}

// Advise passes an access pattern hint for the mapping to the kernel.
func (r *ReaderAt) Advise(sequential bool) error {
	if len(r.data) == 0 || r.unmap == nil {
		return nil
	}
	advice := unix.MADV_RANDOM
	if sequential {
		advice = unix.MADV_SEQUENTIAL
	}
	return unix.Madvise(r.data, advice)
}
