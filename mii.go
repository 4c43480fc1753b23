// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package mii decodes character records in any of the supported wire
// formats into the canonical record, and encodes canonical records
// back out.  The format of a payload is identified by its size.
package mii

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/dgryski/go-farm"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/layout"
)

// Format identifies a wire format.
type Format int

const (
	FormatUnknown Format = iota
	FormatCharInfo
	FormatStudio
	FormatStudioURL
	FormatVer3
)

var formatNames = []string{"unknown", "charinfo", "studio", "studio-url", "ver3"}

func (f Format) String() string {
	if f < 0 || int(f) >= len(formatNames) {
		return fmt.Sprintf("Format(%d)", int(f))
	}
	return formatNames[f]
}

// ParseFormat is the inverse of Format.String.
func ParseFormat(s string) (Format, error) {
	for i, name := range formatNames[1:] {
		if strings.EqualFold(s, name) {
			return Format(i + 1), nil
		}
	}
	return FormatUnknown, fmt.Errorf("mii: unknown format %q", s)
}

// Size returns the encoded size of f in bytes, or 0.
func (f Format) Size() int {
	switch f {
	case FormatCharInfo:
		return charinfo.CharInfoSize
	case FormatStudio:
		return charinfo.StudioSize
	case FormatStudioURL:
		return charinfo.StudioURLSize
	case FormatVer3:
		return charinfo.Ver3Size
	}
	return 0
}

// DetectFormat identifies data by its length.
func DetectFormat(data []byte) Format {
	switch len(data) {
	case charinfo.CharInfoSize:
		return FormatCharInfo
	case charinfo.StudioSize:
		return FormatStudio
	case charinfo.StudioURLSize:
		return FormatStudioURL
	case charinfo.Ver3Size:
		return FormatVer3
	}
	return FormatUnknown
}

// Option configures a Codec.
type Option func(*Codec)

// WithLogger sets an optional logger.  If not provided, no logging
// output will be produced.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Codec) {
		c.logger = logger
	}
}

// WithEngine makes Decode verify every decoded record with e.
func WithEngine(e charinfo.Engine, verifyName bool) Option {
	return func(c *Codec) {
		c.engine = e
		c.verifyName = verifyName
	}
}

// WithURLSeed sets the first byte of studio URL data produced by
// Encode.
func WithURLSeed(seed byte) Option {
	return func(c *Codec) {
		c.urlSeed = seed
	}
}

// Codec converts between the wire formats and the canonical record.
// It is safe for concurrent use if its engine is.
type Codec struct {
	logger     *slog.Logger
	engine     charinfo.Engine
	verifyName bool
	urlSeed    byte
}

func New(opts ...Option) *Codec {
	c := &Codec{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Decode converts data, in whichever format its size names, into a
// canonical record.
func (c *Codec) Decode(data []byte) (layout.Record, Format, error) {
	f := DetectFormat(data)
	ci, err := c.decodeAs(data, f)
	if err != nil {
		return nil, f, err
	}
	if c.engine != nil {
		buf, err := charinfo.PackCharInfo(ci)
		if err != nil {
			return nil, f, err
		}
		if err := charinfo.Verify(c.engine, buf, c.verifyName); err != nil {
			c.logger.Debug("record rejected", "format", f, "error", err)
			return nil, f, err
		}
	}
	c.logger.Debug("decoded", "format", f, "size", len(data))
	return ci, f, nil
}

func (c *Codec) decodeAs(data []byte, f Format) (layout.Record, error) {
	switch f {
	case FormatCharInfo:
		return charinfo.ParseCharInfo(data)
	case FormatStudio, FormatStudioURL:
		plain, err := charinfo.StudioBytes(data)
		if err != nil {
			return nil, err
		}
		st, err := charinfo.ParseStudio(plain)
		if err != nil {
			return nil, err
		}
		return charinfo.StudioToCharInfo(st)
	case FormatVer3:
		v, err := charinfo.ParseVer3(data)
		if err != nil {
			return nil, err
		}
		return charinfo.Ver3ToCharInfo(v)
	}
	return nil, &charinfo.FormatError{
		Op:  "Decode",
		Err: fmt.Errorf("no format is %d bytes long", len(data)),
	}
}

// DecodeText decodes a hex or Base64 payload and then the record it
// carries.
func (c *Codec) DecodeText(text string) (layout.Record, Format, error) {
	data, err := charinfo.DecodeText(text)
	if err != nil {
		return nil, FormatUnknown, err
	}
	return c.Decode(data)
}

// Encode converts a canonical record into format f.
func (c *Codec) Encode(ci layout.Record, f Format) ([]byte, error) {
	switch f {
	case FormatCharInfo:
		return charinfo.PackCharInfo(ci)
	case FormatStudio, FormatStudioURL:
		st, err := charinfo.CharInfoToStudio(ci)
		if err != nil {
			return nil, err
		}
		buf, err := charinfo.PackStudio(st)
		if err != nil || f == FormatStudio {
			return buf, err
		}
		return charinfo.EncodeStudioURL(buf, c.urlSeed)
	case FormatVer3:
		v, err := charinfo.CharInfoToVer3(ci)
		if err != nil {
			return nil, err
		}
		return charinfo.PackVer3(v)
	}
	return nil, fmt.Errorf("mii: can't encode to %s", f)
}

// Convert decodes data and re-encodes it as format to.
func (c *Codec) Convert(data []byte, to Format) ([]byte, error) {
	ci, from, err := c.Decode(data)
	if err != nil {
		return nil, err
	}
	out, err := c.Encode(ci, to)
	if err != nil {
		return nil, fmt.Errorf("mii: %s to %s: %w", from, to, err)
	}
	return out, nil
}

// Fingerprint identifies a canonical record by the hash of its packed
// bytes.
func Fingerprint(ci layout.Record) (uint64, error) {
	buf, err := charinfo.PackCharInfo(ci)
	if err != nil {
		return 0, err
	}
	return farm.Fingerprint64(buf), nil
}
