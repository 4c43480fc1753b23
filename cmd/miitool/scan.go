// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/urfave/cli/v3"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/assetscan"
	"github.com/bpowers/mii/internal/engine"
)

func scanCmd() *cli.Command {
	var (
		include     []string
		concurrency int
		verify      bool
		watch       bool
		archivePath string
	)
	return &cli.Command{
		Name:      "scan",
		Usage:     "Find store data embedded in files",
		ArgsUsage: "PATH...",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{
				Name:        "include",
				Usage:       "only scan files matching these globs, relative to each directory",
				Destination: &include,
			},
			&cli.IntFlag{
				Name:        "concurrency",
				Aliases:     []string{"j"},
				Usage:       "files to scan at once (0 = one per CPU)",
				Destination: &concurrency,
			},
			&cli.BoolFlag{
				Name:        "verify",
				Usage:       "drop records the reference engine rejects",
				Destination: &verify,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Aliases:     []string{"w"},
				Usage:       "keep scanning files as they change",
				Destination: &watch,
			},
			&cli.StringFlag{
				Name:        "archive",
				Usage:       "also append canonical records to this archive",
				Destination: &archivePath,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() == 0 {
				return cli.Exit("error: scan needs at least one path", 1)
			}
			log := loggerFrom(ctx)
			if len(include) == 0 {
				include = cfg.ScanInclude
			}

			opts := []assetscan.Option{
				assetscan.WithLogger(log),
				assetscan.WithInclude(include...),
			}
			if concurrency > 0 {
				opts = append(opts, assetscan.WithConcurrency(concurrency))
			}
			if verify {
				opts = append(opts, assetscan.WithEngine(engine.New(engine.WithLogger(log))))
			}
			s, err := assetscan.New(opts...)
			if err != nil {
				return err
			}

			out := &scanOutput{w: outWriter(cmd), seen: make(map[uint64]bool)}
			if archivePath != "" {
				aw, err := createArchive(archivePath)
				if err != nil {
					return err
				}
				defer func() {
					if err := aw.Close(); err != nil {
						log.Error("closing archive", "path", archivePath, "error", err)
					}
				}()
				out.archive = aw
			}

			for _, root := range cmd.Args().Slice() {
				matches, err := scanPath(ctx, s, root)
				if err != nil {
					return err
				}
				if err := out.emit(matches); err != nil {
					return err
				}
			}
			if !watch {
				return nil
			}
			return watchPaths(ctx, log, s, cmd.Args().Slice(), out)
		},
	}
}

func scanPath(ctx context.Context, s *assetscan.Scanner, path string) ([]assetscan.Match, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if fi.IsDir() {
		return s.ScanTree(ctx, path)
	}
	return s.ScanFile(path)
}

// scanOutput prints each distinct record once, across every scan
// of a run.
type scanOutput struct {
	w       io.Writer
	seen    map[uint64]bool
	archive *archiveWriter
}

func (o *scanOutput) emit(matches []assetscan.Match) error {
	for _, m := range matches {
		if o.seen[m.Fingerprint] {
			continue
		}
		o.seen[m.Fingerprint] = true
		kind := m.Kind
		if kind == "" {
			kind = "-"
		}
		if _, err := fmt.Fprintf(o.w, "%s:%d\t%s\t%016x\t", m.Path, m.Offset, kind, m.Fingerprint); err != nil {
			return err
		}
		if err := writePayload(o.w, m.Data); err != nil {
			return err
		}
		if o.archive != nil {
			if err := o.archive.addVer3(m.Data); err != nil {
				return fmt.Errorf("%s:%d: %w", m.Path, m.Offset, err)
			}
		}
	}
	return nil
}

// watchPaths rescans files under paths as they are written, until ctx
// is done.
func watchPaths(ctx context.Context, log *slog.Logger, s *assetscan.Scanner, paths []string, out *scanOutput) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fsnotify.NewWatcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// roots maps each watched directory to the root its include
	// patterns are relative to.  Files named directly are watched
	// through their directory.
	roots := make(map[string]string)
	files := make(map[string]bool)
	for _, p := range paths {
		fi, err := os.Stat(p)
		if err != nil {
			return err
		}
		if !fi.IsDir() {
			files[filepath.Clean(p)] = true
			if err := watcher.Add(filepath.Dir(p)); err != nil {
				return err
			}
			continue
		}
		err = filepath.WalkDir(p, func(dir string, d fs.DirEntry, err error) error {
			if err != nil || !d.IsDir() {
				return err
			}
			roots[dir] = p
			return watcher.Add(dir)
		})
		if err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}
	log.Info("watching", "dirs", len(roots), "files", len(files))

	for {
		select {
		case <-ctx.Done():
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn("watch error", "error", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !files[filepath.Clean(event.Name)] {
				root, ok := roots[filepath.Dir(event.Name)]
				if !ok {
					continue
				}
				rel, err := filepath.Rel(root, event.Name)
				if err != nil || !s.Includes(filepath.ToSlash(rel)) {
					continue
				}
			}
			fi, err := os.Stat(event.Name)
			if err != nil || !fi.Mode().IsRegular() {
				continue
			}
			matches, err := s.ScanFile(event.Name)
			if err != nil {
				log.Warn("rescan failed", "path", event.Name, "error", err)
				continue
			}
			if err := out.emit(matches); err != nil {
				return err
			}
		}
	}
}

// canonicalFromVer3 converts store data for the archive, which holds
// canonical records.
func canonicalFromVer3(data []byte) ([]byte, error) {
	v, err := charinfo.ParseVer3(data)
	if err != nil {
		return nil, err
	}
	ci, err := charinfo.Ver3ToCharInfo(v)
	if err != nil {
		return nil, err
	}
	return charinfo.PackCharInfo(ci)
}
