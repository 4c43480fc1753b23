// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"encoding/base64"
	"encoding/hex"
	"errors"
	"strings"
	"unicode"
)

var (
	errEmptyText = errors.New("empty input")
	errNotText   = errors.New("neither hex nor Base64")
)

// base64 alphabets tried in order after hex.
var textEncodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeText returns the payload carried by a hex or Base64 string.
// Whitespace is ignored.  Input made only of hex digits with an even
// length is hex; everything else must be Base64.
func DecodeText(text string) ([]byte, error) {
	s := strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, text)
	if s == "" {
		return nil, &FormatError{Op: "DecodeText", Err: errEmptyText}
	}
	if len(s)%2 == 0 && isHex(s) {
		b, err := hex.DecodeString(s)
		if err != nil {
			return nil, &FormatError{Op: "DecodeText", Err: err}
		}
		return b, nil
	}
	for _, enc := range textEncodings {
		if b, err := enc.DecodeString(s); err == nil {
			return b, nil
		}
	}
	return nil, &FormatError{Op: "DecodeText", Err: errNotText}
}

func isHex(s string) bool {
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case '0' <= c && c <= '9', 'a' <= c && c <= 'f', 'A' <= c && c <= 'F':
		default:
			return false
		}
	}
	return true
}

// EncodeBytes returns the standard padded Base64 form of data.
func EncodeBytes(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}

// EncodeHex returns the lowercase hex form of data.
func EncodeHex(data []byte) string {
	return hex.EncodeToString(data)
}
