// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/google/uuid"
)

const (
	defaultBufferSize = 1024 * 1024
	recordHeaderSize  = 4 // 32-bit checksum of the record
	maxRecordSize     = 1 << 16
)

type nopWriter struct{}

func (nopWriter) Write([]byte) (int, error) {
	return 0, io.EOF
}

// FileWriter is usually an *os.File, but specified as an interface for easier testing.
type FileWriter interface {
	io.Writer
	io.WriterAt
}

// Writer appends fixed-size records to an archive.  Finish must be
// called for the record count to be recorded.
type Writer struct {
	f        FileWriter
	h        *fileHeader
	w        *bufio.Writer
	count    uint64
	finished atomic.Bool
}

func NewWriter(f FileWriter, recordSize int) (*Writer, error) {
	if recordSize <= 0 || recordSize > maxRecordSize {
		return nil, fmt.Errorf("record size %d out of range", recordSize)
	}
	h, err := newFileHeader(recordSize, time.Now().Unix())
	if err != nil {
		return nil, fmt.Errorf("newFileHeader: %w", err)
	}
	w := &Writer{
		f: f,
		h: h,
		w: bufio.NewWriterSize(f, defaultBufferSize),
	}

	if _, err := w.h.WriteTo(w.w); err != nil {
		return nil, fmt.Errorf("fileHeader.WriteTo: %w", err)
	}

	// try to expose errors when writing to the backing file early
	if err := w.w.Flush(); err != nil {
		return nil, fmt.Errorf("flush: %w", err)
	}

	return w, nil
}

// FileID identifies the archive being written.
func (w *Writer) FileID() uuid.UUID {
	return w.h.fileID
}

func checksum(record []byte) uint32 {
	return uint32(farm.Hash64(record))
}

// Write appends one record and returns its index.
func (w *Writer) Write(record []byte) (index uint64, err error) {
	if w.finished.Load() {
		return 0, errors.New("write after Finish")
	}
	if len(record) != int(w.h.recordSize) {
		return 0, fmt.Errorf("record is %d bytes, archive holds %d-byte records", len(record), w.h.recordSize)
	}

	var header [recordHeaderSize]byte
	le.PutUint32(header[:], checksum(record))
	if _, err := w.w.Write(header[:]); err != nil {
		return 0, fmt.Errorf("bufio.Write 1: %w", err)
	}
	if _, err := w.w.Write(record); err != nil {
		return 0, fmt.Errorf("bufio.Write 2: %w", err)
	}

	index = w.count
	w.count++
	return index, nil
}

// Finish flushes buffered records and stamps the header with the
// final count.  Calling it more than once is fine.
func (w *Writer) Finish() error {
	if alreadyFinished := w.finished.Swap(true); alreadyFinished {
		return nil
	}

	defer func() {
		w.w.Reset(nopWriter{})
	}()

	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("bufio.Flush: %w", err)
	}

	return w.h.UpdateRecordCount(w.count, w.f)
}
