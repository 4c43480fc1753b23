// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"

	"github.com/bpowers/mii"
	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/archive"
)

// archiveWriter owns the file behind an archive.Writer.
type archiveWriter struct {
	f *os.File
	w *archive.Writer
}

func createArchive(path string) (*archiveWriter, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	w, err := archive.NewWriter(f, charinfo.CharInfoSize)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("archive.NewWriter: %w", err)
	}
	return &archiveWriter{f: f, w: w}, nil
}

func (a *archiveWriter) add(canonical []byte) error {
	_, err := a.w.Write(canonical)
	return err
}

func (a *archiveWriter) addVer3(data []byte) error {
	canonical, err := canonicalFromVer3(data)
	if err != nil {
		return err
	}
	return a.add(canonical)
}

func (a *archiveWriter) Close() error {
	return errors.Join(a.w.Finish(), a.f.Close())
}

func openArchive(path string) (*archive.Reader, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}
	return archive.Open(path)
}

func archiveCmd() *cli.Command {
	return &cli.Command{
		Name:  "archive",
		Usage: "Build and read archives of canonical records",
		Commands: []*cli.Command{
			archiveCreateCmd(),
			archiveListCmd(),
			archiveExtractCmd(),
		},
	}
}

func archiveCreateCmd() *cli.Command {
	return &cli.Command{
		Name:      "create",
		Usage:     "Write one record per input line (hex or Base64, any format) to an archive",
		ArgsUsage: "OUT [FILE...]",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() < 1 {
				return cli.Exit("error: archive create needs an output path", 1)
			}
			log := loggerFrom(ctx)
			out := cmd.Args().First()
			aw, err := createArchive(out)
			if err != nil {
				return err
			}

			c := mii.New(mii.WithLogger(log))
			count := 0
			addLines := func(name string, r io.Reader) error {
				sc := bufio.NewScanner(r)
				line := 0
				for sc.Scan() {
					line++
					if len(sc.Bytes()) == 0 {
						continue
					}
					ci, _, err := c.DecodeText(sc.Text())
					if err != nil {
						return fmt.Errorf("%s:%d: %w", name, line, err)
					}
					buf, err := charinfo.PackCharInfo(ci)
					if err != nil {
						return fmt.Errorf("%s:%d: %w", name, line, err)
					}
					if err := aw.add(buf); err != nil {
						return err
					}
					count++
				}
				return sc.Err()
			}

			inputs := cmd.Args().Tail()
			if len(inputs) == 0 {
				err = addLines("stdin", inReader(cmd))
			}
			for _, name := range inputs {
				if err != nil {
					break
				}
				var f *os.File
				if f, err = os.Open(name); err != nil {
					break
				}
				err = addLines(name, f)
				_ = f.Close()
			}
			if cerr := aw.Close(); err == nil {
				err = cerr
			}
			if err != nil {
				return err
			}
			log.Info("archive written", "path", out, "records", count, "file_id", aw.w.FileID())
			return nil
		},
	}
}

func archiveListCmd() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Usage:     "Print index, fingerprint and name of every record",
		ArgsUsage: "ARCHIVE",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 1 {
				return cli.Exit("error: archive list needs one archive path", 1)
			}
			r, err := openArchive(cmd.Args().First())
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			w := outWriter(cmd)
			_, _ = fmt.Fprintf(w, "# %s created %s, %d records\n",
				r.FileID(), r.Created().UTC().Format(time.RFC3339), r.Len())
			it := r.Iter()
			for item, ok := it.Next(); ok; item, ok = it.Next() {
				ci, err := charinfo.ParseCharInfo(item.Data)
				if err != nil {
					return fmt.Errorf("record %d: %w", item.Index, err)
				}
				fp, err := mii.Fingerprint(ci)
				if err != nil {
					return err
				}
				name, _ := ci.String("personal", "name")
				if _, err := fmt.Fprintf(w, "%d\t%016x\t%s\n", item.Index, fp, name); err != nil {
					return err
				}
			}
			return it.Err()
		},
	}
}

func archiveExtractCmd() *cli.Command {
	var format string
	return &cli.Command{
		Name:      "extract",
		Usage:     "Print one record in a format",
		ArgsUsage: "ARCHIVE INDEX",
		Flags: []cli.Flag{
			formatFlag("format", "output format", "charinfo", &format),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.NArg() != 2 {
				return cli.Exit("error: archive extract needs an archive path and an index", 1)
			}
			f, err := mii.ParseFormat(format)
			if err != nil {
				return err
			}
			i, err := strconv.Atoi(cmd.Args().Get(1))
			if err != nil {
				return fmt.Errorf("index: %w", err)
			}
			r, err := openArchive(cmd.Args().First())
			if err != nil {
				return err
			}
			defer func() { _ = r.Close() }()

			data, err := r.ReadAt(i)
			if err != nil {
				return err
			}
			out, err := mii.New(mii.WithLogger(loggerFrom(ctx))).Convert(data, f)
			if err != nil {
				return err
			}
			return writePayload(outWriter(cmd), out)
		},
	}
}
