// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type safeBuffer struct {
	mu  sync.Mutex
	buf []byte
}

func (s *safeBuffer) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]byte(nil), s.buf...)
}

func (s *safeBuffer) Write(p []byte) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buf = append(s.buf, p...)
	return len(p), nil
}

func (s *safeBuffer) WriteAt(p []byte, off int64) (n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if int(off)+len(p) > len(s.buf) {
		return 0, errors.New("writeAt out of bounds")
	}

	return copy(s.buf[off:int(off)+len(p)], p), nil
}

var _ FileWriter = &safeBuffer{}

type testWriter struct {
	inner            FileWriter
	writeShouldError bool
}

func (c *testWriter) Write(p []byte) (n int, err error) {
	if c.writeShouldError {
		return 0, errors.New("write failed")
	}
	return c.inner.Write(p)
}

func (c *testWriter) WriteAt(p []byte, off int64) (n int, err error) {
	if c.writeShouldError {
		return 0, errors.New("write failed")
	}
	return c.inner.WriteAt(p, off)
}

var _ FileWriter = &testWriter{}

func TestFileHeader_RoundTrip(t *testing.T) {
	origH, err := newFileHeader(288, 1700000000)
	require.NoError(t, err)
	require.Equal(t, uint32(magicArchiveHeader), origH.magic)
	require.Equal(t, uint32(fileFormatVersion), origH.formatVersion)
	require.NotEqual(t, uuid.Nil, origH.fileID)
	origH.recordCount = 3

	// this should be an error
	assert.Error(t, origH.MarshalTo(nil))

	var newH fileHeader
	headerBytes := make([]byte, fileHeaderSize)
	// missing magic number
	assert.Error(t, newH.UnmarshalBytes(headerBytes))

	require.NoError(t, origH.MarshalTo(headerBytes))
	assert.Error(t, newH.UnmarshalBytes(nil))
	require.NoError(t, newH.UnmarshalBytes(headerBytes))
	assert.Equal(t, origH, &newH)
	assert.Equal(t, []byte("AIIM"), headerBytes[:4])

	// unknown versions are rejected
	origH.formatVersion = 666
	require.NoError(t, origH.MarshalTo(headerBytes))
	assert.Error(t, newH.UnmarshalBytes(headerBytes))
}

func TestFileHeader_UpdateRecordCount(t *testing.T) {
	origH, err := newFileHeader(96, 0)
	require.NoError(t, err)

	var buf safeBuffer
	_, err = origH.WriteTo(&buf)
	require.NoError(t, err)
	require.Len(t, buf.Bytes(), fileHeaderSize)

	const newRecordCount = uint64(999)
	require.NoError(t, origH.UpdateRecordCount(newRecordCount, &buf))

	var newH fileHeader
	require.NoError(t, newH.UnmarshalBytes(buf.Bytes()))
	assert.Equal(t, origH, &newH)
	assert.Equal(t, newRecordCount, newH.recordCount)
}

func TestNewWriter_Errors(t *testing.T) {
	var fileBytes safeBuffer
	_, err := NewWriter(&testWriter{inner: &fileBytes, writeShouldError: true}, 96)
	assert.Error(t, err)

	_, err = NewWriter(&fileBytes, 0)
	assert.Error(t, err)
	_, err = NewWriter(&fileBytes, maxRecordSize+1)
	assert.Error(t, err)
}

func TestWriter_Errors(t *testing.T) {
	var fileBytes safeBuffer
	w, err := NewWriter(&fileBytes, 8)
	require.NoError(t, err)

	_, err = w.Write(make([]byte, 7))
	assert.Error(t, err)
	_, err = w.Write(make([]byte, 9))
	assert.Error(t, err)

	require.NoError(t, w.Finish())
	// multiple finishes should be fine
	require.NoError(t, w.Finish())

	_, err = w.Write(make([]byte, 8))
	assert.Error(t, err)

	var h fileHeader
	require.NoError(t, h.UnmarshalBytes(fileBytes.Bytes()))
	assert.Equal(t, uint64(0), h.recordCount)
	assert.Len(t, fileBytes.Bytes(), fileHeaderSize)
}

func record(i, size int) []byte {
	r := make([]byte, size)
	for j := range r {
		r[j] = byte(i + j)
	}
	return r
}

func writeArchive(t *testing.T, n, size int) (string, uuid.UUID) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.miia")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, f.Close()) }()

	w, err := NewWriter(f, size)
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		idx, err := w.Write(record(i, size))
		require.NoError(t, err)
		require.Equal(t, uint64(i), idx)
	}
	require.NoError(t, w.Finish())
	return path, w.FileID()
}

func TestArchive_RoundTrip(t *testing.T) {
	const n, size = 500, 288
	path, id := writeArchive(t, n, size)

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close()) }()

	require.Equal(t, n, r.Len())
	require.Equal(t, size, r.RecordSize())
	require.Equal(t, id, r.FileID())
	require.False(t, r.Created().IsZero())

	got, err := r.ReadAt(123)
	require.NoError(t, err)
	require.Equal(t, record(123, size), got)

	_, err = r.ReadAt(n)
	require.Error(t, err)
	_, err = r.ReadAt(-1)
	require.Error(t, err)

	it := r.Iter()
	count := 0
	for item, ok := it.Next(); ok; item, ok = it.Next() {
		require.Equal(t, count, item.Index)
		require.Equal(t, record(count, size), item.Data)
		count++
	}
	require.NoError(t, it.Err())
	require.Equal(t, n, count)
}

func TestArchive_Corruption(t *testing.T) {
	const size = 96
	path, _ := writeArchive(t, 3, size)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	// flip a byte inside the second record
	data[fileHeaderSize+(recordHeaderSize+size)+recordHeaderSize+10] ^= 0xff
	require.NoError(t, os.WriteFile(path, data, 0o644))

	r, err := Open(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, r.Close()) }()

	_, err = r.ReadAt(0)
	require.NoError(t, err)
	_, err = r.ReadAt(1)
	require.ErrorIs(t, err, ErrCorrupt)

	it := r.Iter()
	_, ok := it.Next()
	require.True(t, ok)
	_, ok = it.Next()
	require.False(t, ok)
	require.ErrorIs(t, it.Err(), ErrCorrupt)
}

func TestArchive_BadRecordCount(t *testing.T) {
	const size = 288
	frame := recordHeaderSize + size
	off, ok := headerLayout.Offset("recordCount")
	require.True(t, ok)

	path, _ := writeArchive(t, 3, size)
	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// drop the last record
	require.NoError(t, os.WriteFile(path, data[:len(data)-frame], 0o644))
	_, err = Open(path)
	require.ErrorContains(t, err, "archive truncated")
	require.ErrorContains(t, err, fmt.Sprintf("%d bytes present", 2*frame))

	// a count whose byte size wraps around uint64 must not pass for a
	// file holding one frame
	forged := append([]byte(nil), data[:fileHeaderSize+frame]...)
	le.PutUint64(forged[off.Byte:], math.MaxUint64/uint64(frame)+1)
	require.NoError(t, os.WriteFile(path, forged, 0o644))
	_, err = Open(path)
	require.ErrorContains(t, err, "archive truncated")

	// too short for a header
	require.NoError(t, os.WriteFile(path, data[:fileHeaderSize-1], 0o644))
	_, err = Open(path)
	require.ErrorContains(t, err, fmt.Sprintf("archive too short: %d < %d", fileHeaderSize-1, fileHeaderSize))
}

func TestOpen_Errors(t *testing.T) {
	dir := t.TempDir()

	short := filepath.Join(dir, "short")
	require.NoError(t, os.WriteFile(short, make([]byte, 10), 0o644))
	_, err := Open(short)
	require.Error(t, err)

	junk := filepath.Join(dir, "junk")
	require.NoError(t, os.WriteFile(junk, make([]byte, fileHeaderSize), 0o644))
	_, err = Open(junk)
	require.Error(t, err)

	path, _ := writeArchive(t, 4, 46)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	truncated := filepath.Join(dir, "truncated")
	require.NoError(t, os.WriteFile(truncated, data[:len(data)-1], 0o644))
	_, err = Open(truncated)
	require.Error(t, err)
}
