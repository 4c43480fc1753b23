// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/mitchellh/go-homedir"
	"github.com/urfave/cli/v3"

	"github.com/bpowers/mii"
	"github.com/bpowers/mii/charinfo"
)

var errNoInput = errors.New("no payload: pass it as an argument, with --file, or on stdin")

// readPayload returns the bytes of the payload a command was given:
// the first argument as text, else the --file contents, else stdin.
// File and stdin input may be raw bytes of a known format size or
// hex/Base64 text.
func readPayload(cmd *cli.Command, file string) ([]byte, error) {
	if text := cmd.Args().First(); text != "" && text != "-" {
		return charinfo.DecodeText(text)
	}

	var (
		data []byte
		err  error
	)
	if file != "" {
		if file, err = homedir.Expand(file); err != nil {
			return nil, err
		}
		data, err = os.ReadFile(file)
	} else {
		data, err = io.ReadAll(inReader(cmd))
	}
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, errNoInput
	}
	return fromFile(data)
}

// fromFile decodes file contents as text first and falls back to raw
// bytes when the length names a format.
func fromFile(data []byte) ([]byte, error) {
	decoded, err := charinfo.DecodeText(string(data))
	if err == nil {
		return decoded, nil
	}
	if mii.DetectFormat(data) != mii.FormatUnknown {
		return data, nil
	}
	return nil, err
}

// writePayload writes data in the selected output encoding.
func writePayload(w io.Writer, data []byte) error {
	var err error
	switch encoding {
	case "base64":
		_, err = fmt.Fprintln(w, charinfo.EncodeBytes(data))
	case "hex":
		_, err = fmt.Fprintln(w, charinfo.EncodeHex(data))
	case "raw":
		_, err = w.Write(data)
	default:
		err = fmt.Errorf("unknown encoding %q", encoding)
	}
	return err
}

func printJSON(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", b)
	return err
}
