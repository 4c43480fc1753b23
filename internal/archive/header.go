// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package archive

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/bpowers/mii/layout"
)

const (
	magicArchiveHeader = 0x4D494941 // "AIIM" on disk
	fileFormatVersion  = 1
	fileHeaderSize     = 128
)

var le = binary.LittleEndian

var headerLayout = layout.MustStruct("archiveHeader",
	layout.Uint32("magic", le),
	layout.Uint32("formatVersion", le),
	layout.Uint64("recordCount", le),
	layout.Uint32("recordSize", le),
	layout.Bytes("fileID", 16),
	layout.Int64("created", le),
	// the header is the minimum cache width we expect to see
	layout.Padding(fileHeaderSize),
)

type fileHeader struct {
	magic         uint32
	formatVersion uint32
	recordCount   uint64
	recordSize    uint32
	fileID        uuid.UUID
	created       int64
}

func newFileHeader(recordSize int, created int64) (*fileHeader, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("uuid.NewRandom: %w", err)
	}
	return &fileHeader{
		magic:         magicArchiveHeader,
		formatVersion: fileFormatVersion,
		recordSize:    uint32(recordSize),
		fileID:        id,
		created:       created,
	}, nil
}

func (h *fileHeader) record() layout.Record {
	return layout.Record{
		"magic":         h.magic,
		"formatVersion": h.formatVersion,
		"recordCount":   h.recordCount,
		"recordSize":    h.recordSize,
		"fileID":        h.fileID[:],
		"created":       h.created,
	}
}

func (h *fileHeader) MarshalTo(buf []byte) error {
	if len(buf) < fileHeaderSize {
		return fmt.Errorf("header buffer too short: %d < %d", len(buf), fileHeaderSize)
	}
	_, err := layout.Pack(headerLayout, h.record(), buf[:fileHeaderSize], nil)
	return err
}

func (h *fileHeader) WriteTo(w io.Writer) (n int64, err error) {
	var buf [fileHeaderSize]byte
	if err = h.MarshalTo(buf[:]); err != nil {
		return 0, fmt.Errorf("MarshalTo: %w", err)
	}
	if _, err = w.Write(buf[:]); err != nil {
		return 0, fmt.Errorf("write: %w", err)
	}
	return int64(len(buf)), nil
}

// UpdateRecordCount rewrites just the count field in place.
func (h *fileHeader) UpdateRecordCount(n uint64, w io.WriterAt) error {
	h.recordCount = n

	off, _ := headerLayout.Offset("recordCount")
	var countBuf [8]byte
	le.PutUint64(countBuf[:], h.recordCount)
	if _, err := w.WriteAt(countBuf[:], int64(off.Byte)); err != nil {
		return fmt.Errorf("f.WriteAt: %w", err)
	}
	return nil
}

func (h *fileHeader) UnmarshalBytes(headerBytes []byte) error {
	rec, err := headerLayout.Unpack(headerBytes)
	if err != nil {
		return err
	}

	h.magic = rec["magic"].(uint32)
	if h.magic != magicArchiveHeader {
		return fmt.Errorf("bad magic number on archive (%x) -- not a mii archive or corrupted", h.magic)
	}
	h.formatVersion = rec["formatVersion"].(uint32)
	if h.formatVersion != fileFormatVersion {
		return fmt.Errorf("this version can only read v%d archives; found v%d", fileFormatVersion, h.formatVersion)
	}
	h.recordCount = rec["recordCount"].(uint64)
	h.recordSize = rec["recordSize"].(uint32)
	if h.recordSize == 0 || h.recordSize > maxRecordSize {
		return fmt.Errorf("bad record size %d", h.recordSize)
	}
	copy(h.fileID[:], rec["fileID"].([]byte))
	h.created = rec["created"].(int64)
	return nil
}
