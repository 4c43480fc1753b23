// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/bpowers/mii"
	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/engine"
)

func decodeCmd() *cli.Command {
	var file string
	return &cli.Command{
		Name:      "decode",
		Usage:     "Print a payload as a canonical record in JSON",
		ArgsUsage: "[TEXT]",
		Flags:     []cli.Flag{inputFlag(&file)},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			ci, format, err := mii.New(mii.WithLogger(loggerFrom(ctx))).Decode(data)
			if err != nil {
				return err
			}
			fp, err := mii.Fingerprint(ci)
			if err != nil {
				return err
			}
			return printJSON(outWriter(cmd), map[string]any{
				"format":      format.String(),
				"fingerprint": fmt.Sprintf("%016x", fp),
				"record":      ci,
			})
		},
	}
}

func convertCmd() *cli.Command {
	var (
		file string
		to   string
		seed int64
	)
	return &cli.Command{
		Name:      "convert",
		Usage:     "Convert a payload to another format",
		ArgsUsage: "[TEXT]",
		Flags: []cli.Flag{
			inputFlag(&file),
			formatFlag("to", "target format", "charinfo", &to),
			&cli.Int64Flag{
				Name:        "seed",
				Usage:       "first byte of studio URL output (0-255)",
				Destination: &seed,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			format, err := mii.ParseFormat(to)
			if err != nil {
				return err
			}
			if seed < 0 || seed > 255 {
				return cli.Exit(fmt.Sprintf("error: --seed %d out of range", seed), 1)
			}
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			c := mii.New(mii.WithLogger(loggerFrom(ctx)), mii.WithURLSeed(byte(seed)))
			out, err := c.Convert(data, format)
			if err != nil {
				return err
			}
			return writePayload(outWriter(cmd), out)
		},
	}
}

func encodeCmd() *cli.Command {
	var (
		file   string
		format string
	)
	return &cli.Command{
		Name:      "encode",
		Usage:     "Encode the default record, with JSON overrides, in a format",
		ArgsUsage: "[JSON]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "file",
				Aliases:     []string{"f"},
				Usage:       "read the JSON overrides from a file",
				Destination: &file,
			},
			formatFlag("format", "output format", "charinfo", &format),
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			f, err := mii.ParseFormat(format)
			if err != nil {
				return err
			}
			var overrides []byte
			switch {
			case cmd.Args().First() == "-":
				overrides, err = io.ReadAll(inReader(cmd))
			case cmd.Args().First() != "":
				overrides = []byte(cmd.Args().First())
			case file != "":
				overrides, err = os.ReadFile(file)
			}
			if err != nil {
				return err
			}

			ci := charinfo.Default()
			if len(overrides) > 0 {
				if err := mii.ApplyJSON(ci, overrides); err != nil {
					return err
				}
			}
			out, err := mii.New(mii.WithLogger(loggerFrom(ctx))).Encode(ci, f)
			if err != nil {
				return err
			}
			return writePayload(outWriter(cmd), out)
		},
	}
}

func verifyCmd() *cli.Command {
	var (
		file  string
		names bool
	)
	return &cli.Command{
		Name:      "verify",
		Usage:     "Check a payload with the reference engine",
		ArgsUsage: "[TEXT]",
		Flags: []cli.Flag{
			inputFlag(&file),
			&cli.BoolFlag{
				Name:        "names",
				Usage:       "also check the name and creator strings",
				Value:       true,
				Destination: &names,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cfg.VerifyNames != nil && !cmd.IsSet("names") {
				names = *cfg.VerifyNames
			}
			data, err := readPayload(cmd, file)
			if err != nil {
				return err
			}
			ci, format, err := mii.New(mii.WithLogger(loggerFrom(ctx))).Decode(data)
			if err != nil {
				return err
			}
			buf, err := charinfo.PackCharInfo(ci)
			if err != nil {
				return err
			}
			e := engine.New(engine.WithLogger(loggerFrom(ctx)))
			if err := charinfo.Verify(e, buf, names); err != nil {
				return cli.Exit(err.Error(), 2)
			}
			_, err = fmt.Fprintf(outWriter(cmd), "ok (%s)\n", format)
			return err
		},
	}
}

func randomCmd() *cli.Command {
	var (
		gender, age, race string
		format            string
		count             int
		seed              int64
	)
	return &cli.Command{
		Name:  "random",
		Usage: "Generate random records with the reference engine",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "gender", Usage: "male, female or all", Value: "all", Destination: &gender},
			&cli.StringFlag{Name: "age", Usage: "child, adult, elder or all", Value: "all", Destination: &age},
			&cli.StringFlag{Name: "race", Usage: "black, white, asian or all", Value: "all", Destination: &race},
			formatFlag("format", "output format", "charinfo", &format),
			&cli.IntFlag{Name: "count", Aliases: []string{"n"}, Usage: "records to generate", Value: 1, Destination: &count},
			&cli.Int64Flag{Name: "seed", Usage: "seed for reproducible output", Destination: &seed},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			g, err := charinfo.ParseGender(gender)
			if err != nil {
				return err
			}
			a, err := charinfo.ParseAge(age)
			if err != nil {
				return err
			}
			r, err := charinfo.ParseRace(race)
			if err != nil {
				return err
			}
			f, err := mii.ParseFormat(format)
			if err != nil {
				return err
			}

			opts := []engine.Option{engine.WithLogger(loggerFrom(ctx))}
			if cmd.IsSet("seed") {
				opts = append(opts, engine.WithSeed(uint64(seed)))
			} else if cfg.Seed != nil {
				opts = append(opts, engine.WithSeed(*cfg.Seed))
			}
			e := engine.New(opts...)
			c := mii.New(mii.WithLogger(loggerFrom(ctx)))

			w := outWriter(cmd)
			for range count {
				ci, err := charinfo.Random(e, g, a, r)
				if err != nil {
					return err
				}
				out, err := c.Encode(ci, f)
				if err != nil {
					return err
				}
				if err := writePayload(w, out); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
