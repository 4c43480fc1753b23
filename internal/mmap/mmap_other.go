// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

//go:build !unix

package mmap

import "os"

// Open reads the named file into memory.
func Open(path string) (*ReaderAt, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data == nil {
		data = []byte{}
	}
	return &ReaderAt{data: data}, nil
}

// Advise is a no-op without a mapping.
func (r *ReaderAt) Advise(sequential bool) error {
	return nil
}
