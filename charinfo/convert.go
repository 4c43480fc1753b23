// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"bytes"
	"math"

	"github.com/bpowers/mii/layout"
)

func asInt(v any) (int64, bool) {
	switch x := v.(type) {
	case int:
		return int64(x), true
	case int8:
		return int64(x), true
	case int16:
		return int64(x), true
	case int32:
		return int64(x), true
	case int64:
		return x, true
	case uint:
		return int64(x), uint64(x) <= math.MaxInt64
	case uint8:
		return int64(x), true
	case uint16:
		return int64(x), true
	case uint32:
		return int64(x), true
	case uint64:
		return int64(x), x <= math.MaxInt64
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func missing(field string) error {
	return &ConversionError{Field: field, Msg: "missing or not an integer"}
}

// target returns the record a mapping writes into.
func target(ci layout.Record, group string) layout.Record {
	if group == "" {
		return ci
	}
	return ci.Sub(group)
}

func path(group, field string) []string {
	if group == "" {
		return []string{field}
	}
	return []string{group, field}
}

// StudioToCharInfo expands a compact record into a canonical one.
// Compact colors below a feature's legacy table length are remapped
// through that table onto the palette; hair color 0 becomes palette
// entry 8.  Attributes the compact record lacks keep the values from
// Default.
func StudioToCharInfo(s layout.Record) (layout.Record, error) {
	ci := Default()
	for _, m := range studioMap {
		n, ok := asInt(s[m.studio])
		if !ok {
			return nil, missing(m.studio)
		}
		if n < 0 || n > m.max {
			return nil, outOfRange(m.studio, n, 0, m.max)
		}
		v := int32(n)
		if m.colors != nil {
			v = m.colors.fromCompact(n)
		}
		target(ci, m.group)[m.field] = v
	}
	return ci, nil
}

// CharInfoToStudio flattens a canonical record into the compact form,
// mapping palette colors back to their legacy index where they have
// one.  Anything the web service can't represent is a
// *ConversionError.
func CharInfoToStudio(ci layout.Record) (layout.Record, error) {
	st := make(layout.Record, len(studioMap))
	for _, m := range studioMap {
		name := m.group + "." + m.field
		n, ok := ci.Int(m.group, m.field)
		if !ok {
			return nil, missing(name)
		}
		if m.colors != nil {
			var err error
			if n, err = m.colors.toCompact(name, n); err != nil {
				return nil, err
			}
		}
		if n < 0 || n > m.max {
			return nil, outOfRange(name, n, 0, m.max)
		}
		st[m.studio] = uint8(n)
	}
	return st, nil
}

// Ver3ToCharInfo splits store data's packed words into the canonical
// record's feature groups, resolving legacy colors to palette entries.
func Ver3ToCharInfo(v layout.Record) (layout.Record, error) {
	ci := Default()
	for _, m := range ver3Map {
		n, ok := asInt(v[m.ver3])
		if !ok {
			return nil, missing(m.ver3)
		}
		if t, ok := ver3Colors[m.ver3]; ok {
			p, ok := t.Palette(n)
			if !ok {
				return nil, outOfRange(m.ver3, n, 0, int64(len(t)-1))
			}
			n = int64(p)
		}
		target(ci, m.group)[m.field] = int32(n)
	}
	personal := ci.Sub("personal")
	for _, name := range ver3Flags {
		n, ok := asInt(v[name])
		if !ok {
			return nil, missing(name)
		}
		personal[name] = uint8(n)
	}
	for _, name := range []string{"name", "creator"} {
		s, ok := v.String(name)
		if !ok {
			return nil, &ConversionError{Field: name, Msg: "missing or not a string"}
		}
		personal[name] = s
	}
	for _, name := range []string{"createID", "authorID"} {
		b, ok := v.Bytes(name)
		if !ok || len(b) != len(ci[name].([]byte)) {
			return nil, &ConversionError{Field: name, Msg: "missing or wrong length"}
		}
		ci[name] = bytes.Clone(b)
	}
	return ci, nil
}

// CharInfoToVer3 narrows a canonical record into store data.  Values
// outside what the older consoles accept, including palette colors
// with no legacy index, are a *ConversionError.  Names longer than ten
// characters are truncated.
func CharInfoToVer3(ci layout.Record) (layout.Record, error) {
	v := make(layout.Record, len(Ver3.Fields()))
	for _, m := range ver3Map {
		name := m.field
		if m.group != "" {
			name = m.group + "." + m.field
		}
		n, ok := ci.Int(path(m.group, m.field)...)
		if !ok {
			return nil, missing(name)
		}
		if t, ok := ver3Colors[m.ver3]; ok {
			i, ok := t.Legacy(n)
			if !ok {
				return nil, &ConversionError{Field: name, Value: n, Msg: "palette color has no legacy index"}
			}
			n = i
		}
		if n < 0 || n > m.max {
			return nil, outOfRange(name, n, 0, m.max)
		}
		v[m.ver3] = uint64(n)
	}
	for _, name := range ver3Flags {
		n, ok := ci.Int("personal", name)
		if !ok {
			return nil, missing("personal." + name)
		}
		v[name] = n != 0
	}
	for _, name := range []string{"name", "creator"} {
		s, ok := ci.String("personal", name)
		if !ok {
			return nil, &ConversionError{Field: "personal." + name, Msg: "missing or not a string"}
		}
		v[name] = s
	}
	for _, name := range []string{"createID", "authorID"} {
		b, ok := ci.Bytes(name)
		if !ok {
			return nil, &ConversionError{Field: name, Msg: "missing or not bytes"}
		}
		v[name] = bytes.Clone(b)
	}
	for _, name := range ver3Reserved {
		v[name] = uint64(0)
	}
	v["checksum"] = uint16(0)
	return v, nil
}
