// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package archive stores fixed-size character records in a single
// file: a 128-byte header followed by checksummed records that can be
// read back by index.
package archive

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bpowers/mii/internal/mmap"
)

// ErrCorrupt is returned when a record's checksum doesn't match.
var ErrCorrupt = errors.New("archive corrupted")

type Reader struct {
	h    fileHeader
	mmap *mmap.ReaderAt
}

// Open maps the archive at path and validates its header.
func Open(path string) (*Reader, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}

	size := m.Len()
	if size < fileHeaderSize {
		_ = m.Close()
		return nil, fmt.Errorf("archive too short: %d < %d", size, fileHeaderSize)
	}
	if err := m.Advise(false); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("madvise: %w", err)
	}

	var header fileHeader
	if err := header.UnmarshalBytes(m.Data()); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("fileHeader.UnmarshalBytes: %w", err)
	}

	// divide rather than multiply so a forged count can't wrap
	frame := uint64(recordHeaderSize) + uint64(header.recordSize)
	if fits := uint64(size-fileHeaderSize) / frame; header.recordCount > fits {
		_ = m.Close()
		return nil, fmt.Errorf("archive truncated: %d records of %d bytes claimed, %d bytes present",
			header.recordCount, frame, size-fileHeaderSize)
	}

	return &Reader{h: header, mmap: m}, nil
}

func (r *Reader) Len() int {
	return int(r.h.recordCount)
}

func (r *Reader) RecordSize() int {
	return int(r.h.recordSize)
}

func (r *Reader) FileID() uuid.UUID {
	return r.h.fileID
}

func (r *Reader) Created() time.Time {
	return time.Unix(r.h.created, 0)
}

// ReadAt returns record i.  The slice aliases the mapping and is only
// valid until Close.
func (r *Reader) ReadAt(i int) ([]byte, error) {
	if i < 0 || i >= r.Len() {
		return nil, fmt.Errorf("record %d out of range [0, %d)", i, r.Len())
	}
	frame := recordHeaderSize + r.RecordSize()
	off := fileHeaderSize + i*frame

	m := r.mmap.Data()
	expected := le.Uint32(m[off : off+recordHeaderSize])
	record := m[off+recordHeaderSize : off+frame]
	if actual := checksum(record); expected != actual {
		return nil, fmt.Errorf("record %d checksum failed (%d != %d): %w", i, expected, actual, ErrCorrupt)
	}
	return record, nil
}

func (r *Reader) Close() error {
	return r.mmap.Close()
}

// Iter walks the records in order.
func (r *Reader) Iter() *Iter {
	return &Iter{r: r}
}

type Item struct {
	Index int
	Data  []byte
}

type Iter struct {
	r   *Reader
	i   int
	err error
}

// Next returns the next record.  It returns false at the end or on
// the first corrupt record; check Err to tell them apart.
func (it *Iter) Next() (Item, bool) {
	if it.err != nil || it.i >= it.r.Len() {
		return Item{}, false
	}
	data, err := it.r.ReadAt(it.i)
	if err != nil {
		it.err = err
		return Item{}, false
	}
	item := Item{Index: it.i, Data: data}
	it.i++
	return item, true
}

func (it *Iter) Err() error {
	return it.err
}
