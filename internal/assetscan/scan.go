// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package assetscan finds character store data embedded in arbitrary
// files: save games, archives, firmware dumps.  A candidate is any
// 96-byte window that starts with the store data version byte and
// carries a valid checksum.
package assetscan

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/dgryski/go-farm"
	"github.com/gobwas/glob"
	"github.com/h2non/filetype"
	"golang.org/x/sync/errgroup"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/mmap"
)

const ver3Version = 3

// Match is one record found in a file.
type Match struct {
	Path   string
	Offset int64
	// Kind is the detected MIME type of the containing file, if known.
	Kind        string
	Data        []byte
	Fingerprint uint64
}

type Option func(*Scanner)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		s.logger = logger
	}
}

// WithEngine drops candidates the engine rejects after conversion to
// the canonical record.
func WithEngine(e charinfo.Engine) Option {
	return func(s *Scanner) {
		s.engine = e
	}
}

// WithInclude limits directory scans to files whose slash-separated
// path relative to the root matches one of patterns.  ** crosses
// directories.
func WithInclude(patterns ...string) Option {
	return func(s *Scanner) {
		s.patterns = append(s.patterns, patterns...)
	}
}

func WithConcurrency(n int) Option {
	return func(s *Scanner) {
		s.concurrency = n
	}
}

type Scanner struct {
	logger      *slog.Logger
	engine      charinfo.Engine
	patterns    []string
	include     []glob.Glob
	concurrency int
}

func New(opts ...Option) (*Scanner, error) {
	s := &Scanner{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		concurrency: runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.concurrency < 1 {
		s.concurrency = 1
	}
	for _, p := range s.patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("glob.Compile(%q): %w", p, err)
		}
		s.include = append(s.include, g)
	}
	return s, nil
}

// Kind returns the MIME type filetype detects for data, or "".
func Kind(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}

// Scan returns the distinct records embedded in data, in offset order.
// Match data is copied out of data.
func (s *Scanner) Scan(data []byte) []Match {
	return s.scan(data, "", make(map[uint64]bool))
}

func (s *Scanner) scan(data []byte, path string, seen map[uint64]bool) []Match {
	var matches []Match
	kind := ""
	for i := 0; i+charinfo.Ver3Size <= len(data); i++ {
		if data[i] != ver3Version {
			continue
		}
		window := data[i : i+charinfo.Ver3Size]
		if !charinfo.ValidVer3(window) || !s.accept(window) {
			continue
		}
		fp := farm.Fingerprint64(window)
		if !seen[fp] {
			seen[fp] = true
			if kind == "" {
				kind = Kind(data)
			}
			matches = append(matches, Match{
				Path:        path,
				Offset:      int64(i),
				Kind:        kind,
				Data:        bytes.Clone(window),
				Fingerprint: fp,
			})
		}
		// records don't overlap
		i += charinfo.Ver3Size - 1
	}
	return matches
}

// accept converts a checksummed window and, with an engine, verifies
// the result.
func (s *Scanner) accept(window []byte) bool {
	rec, err := charinfo.ParseVer3(window)
	if err != nil {
		return false
	}
	ci, err := charinfo.Ver3ToCharInfo(rec)
	if err != nil {
		return false
	}
	if s.engine == nil {
		return true
	}
	buf, err := charinfo.PackCharInfo(ci)
	if err != nil {
		return false
	}
	if reason := charinfo.Reason(s.engine.VerifyCharInfo(buf, false)); reason != charinfo.ReasonOK {
		s.logger.Debug("candidate rejected", "reason", reason)
		return false
	}
	return true
}

// ScanFile maps path and scans it.
func (s *Scanner) ScanFile(path string) ([]Match, error) {
	return s.scanFile(path, make(map[uint64]bool))
}

func (s *Scanner) scanFile(path string, seen map[uint64]bool) ([]Match, error) {
	m, err := mmap.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mmap.Open(%s): %w", path, err)
	}
	defer func() { _ = m.Close() }()
	if err := m.Advise(true); err != nil {
		s.logger.Warn("madvise failed", "path", path, "error", err)
	}

	matches := s.scan(m.Data(), path, seen)
	s.logger.Debug("scanned", "path", path, "size", m.Len(), "matches", len(matches))
	return matches, nil
}

// Includes reports whether the slash-separated relative path rel
// passes the include patterns.  With no patterns every path does.
func (s *Scanner) Includes(rel string) bool {
	if len(s.include) == 0 {
		return true
	}
	for _, g := range s.include {
		if g.Match(rel) {
			return true
		}
	}
	return false
}

// ScanTree scans every included regular file under root concurrently.
// Records are deduplicated across files; the first file in walk order
// keeps a duplicate.
func (s *Scanner) ScanTree(ctx context.Context, root string) ([]Match, error) {
	var paths []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if s.Includes(filepath.ToSlash(rel)) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	perFile := make([][]Match, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			matches, err := s.scanFile(path, make(map[uint64]bool))
			if err != nil {
				return err
			}
			perFile[i] = matches
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	seen := make(map[uint64]bool)
	var all []Match
	for _, matches := range perFile {
		for _, m := range matches {
			if seen[m.Fingerprint] {
				continue
			}
			seen[m.Fingerprint] = true
			all = append(all, m)
		}
	}
	s.logger.Info("scan complete", "root", root, "files", len(paths), "matches", len(all))
	return all, nil
}
