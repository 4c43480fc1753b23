// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import "github.com/urfave/cli/v3"

var (
	configFile string
	logLevel   string
	logFormat  string
	encoding   string

	// cfg is the loaded config file, set before any command runs.
	cfg Config
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "config file (.yaml or .toml)",
			Value:       configPath(),
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (auto, text, json)",
			Value:       "auto",
			Destination: &logFormat,
		},
		&cli.StringFlag{
			Name:        "encoding",
			Aliases:     []string{"e"},
			Usage:       "output encoding for payloads (base64, hex, raw)",
			Value:       "base64",
			Destination: &encoding,
		},
	}
}

func inputFlag(dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        "file",
		Aliases:     []string{"f"},
		Usage:       "read the payload from a file, raw or as text",
		Destination: dest,
	}
}

func formatFlag(name, usage, value string, dest *string) cli.Flag {
	return &cli.StringFlag{
		Name:        name,
		Usage:       usage + " (charinfo, studio, studio-url, ver3)",
		Value:       value,
		Destination: dest,
	}
}
