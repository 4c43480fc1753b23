// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package mii

import (
	"bytes"
	"fmt"
	"math"

	"github.com/goccy/go-json"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/layout"
)

// ApplyJSON overwrites fields of ci with the values in a JSON object
// shaped like the record, such as {"hair": {"color": 3}}.  Each field
// keeps the Go type ci already holds for it.  Byte fields take hex or
// Base64 text.  On error ci is left as it was.
func ApplyJSON(ci layout.Record, data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var src map[string]any
	if err := dec.Decode(&src); err != nil {
		return fmt.Errorf("mii: %w", err)
	}
	work := ci.Clone()
	if err := merge(work, src, ""); err != nil {
		return fmt.Errorf("mii: %w", err)
	}
	for k, v := range work {
		ci[k] = v
	}
	return nil
}

func merge(dst layout.Record, src map[string]any, prefix string) error {
	for k, v := range src {
		name := prefix + k
		cur, ok := dst[k]
		if !ok {
			return fmt.Errorf("unknown field %q", name)
		}
		switch cur := cur.(type) {
		case layout.Record:
			m, ok := v.(map[string]any)
			if !ok {
				return fmt.Errorf("%s: want an object", name)
			}
			if err := merge(cur, m, name+"."); err != nil {
				return err
			}
		case int32:
			n, err := number(v, name, math.MinInt32, math.MaxInt32)
			if err != nil {
				return err
			}
			dst[k] = int32(n)
		case uint8:
			n, err := number(v, name, 0, math.MaxUint8)
			if err != nil {
				return err
			}
			dst[k] = uint8(n)
		case string:
			str, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s: want a string", name)
			}
			dst[k] = str
		case []byte:
			str, ok := v.(string)
			if !ok {
				return fmt.Errorf("%s: want hex or Base64 text", name)
			}
			b, err := charinfo.DecodeText(str)
			if err != nil {
				return fmt.Errorf("%s: %w", name, err)
			}
			dst[k] = b
		default:
			return fmt.Errorf("%s: can't set a %T field", name, cur)
		}
	}
	return nil
}

func number(v any, name string, lo, hi int64) (int64, error) {
	n, ok := v.(json.Number)
	if !ok {
		return 0, fmt.Errorf("%s: want a number", name)
	}
	i, err := n.Int64()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if i < lo || i > hi {
		return 0, fmt.Errorf("%s: %d outside %d..%d", name, i, lo, hi)
	}
	return i, nil
}
