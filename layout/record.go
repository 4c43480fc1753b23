// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import "bytes"

// Record is the decoded form of a Struct: field name to value.  Nested
// structs are Records and arrays are []any.
type Record map[string]any

// Sub returns the nested record called name, or nil.
func (r Record) Sub(name string) Record {
	sub, _ := asRecord(r[name])
	return sub
}

// Get follows path through nested records.
func (r Record) Get(path ...string) (any, bool) {
	cur := r
	for i, name := range path {
		v, ok := cur[name]
		if !ok {
			return nil, false
		}
		if i == len(path)-1 {
			return v, true
		}
		if cur, ok = asRecord(v); !ok {
			return nil, false
		}
	}
	return nil, false
}

// Int returns the integer at path widened to int64.  ok is false if
// the path is missing, not an integer, or doesn't fit in an int64.
func (r Record) Int(path ...string) (int64, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return 0, false
	}
	mag, neg, ok := integer(v)
	if !ok {
		return 0, false
	}
	if neg {
		return -int64(mag - 1) - 1, true
	}
	if mag > 1<<63-1 {
		return 0, false
	}
	return int64(mag), true
}

// String returns the string at path.
func (r Record) String(path ...string) (string, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Bytes returns the byte blob at path.
func (r Record) Bytes(path ...string) ([]byte, bool) {
	v, ok := r.Get(path...)
	if !ok {
		return nil, false
	}
	b, ok := v.([]byte)
	return b, ok
}

// Clone deep-copies nested records, arrays and byte blobs.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch x := v.(type) {
	case Record:
		return x.Clone()
	case map[string]any:
		return Record(x).Clone()
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = cloneValue(item)
		}
		return out
	case []byte:
		return bytes.Clone(x)
	}
	return v
}
