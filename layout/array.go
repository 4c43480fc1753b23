// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import "fmt"

type array struct {
	elem  Field
	count int
}

// Array repeats elem count times back to back.  It takes elem's name
// and decodes to a []any of length count.  Packing accepts a []any or
// any slice of a Go integer, float, bool or string type.
func Array(elem Field, count int) Field {
	return &array{elem: elem, count: count}
}

func (a *array) Name() string  { return a.elem.Name() }
func (a *array) Bits() int     { return a.elem.Bits() * a.count }
func (a *array) unwrap() Field { return a.elem }

func (a *array) PackAt(v any, buf []byte, c *Cursor) error {
	items, ok := asSlice(v)
	if !ok {
		return valueErr(a, v, "expected a slice")
	}
	if len(items) != a.count {
		return valueErr(a, v, "length %d != %d", len(items), a.count)
	}
	for _, item := range items {
		if err := a.elem.PackAt(item, buf, c); err != nil {
			return err
		}
	}
	return nil
}

func (a *array) UnpackAt(buf []byte, c *Cursor) (any, error) {
	out := make([]any, a.count)
	for i := range out {
		v, err := a.elem.UnpackAt(buf, c)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (a *array) validate() string {
	if a.elem == nil {
		return "array of nil field"
	}
	if _, ok := a.elem.(*padding); ok {
		return "array of padding"
	}
	if a.count <= 0 {
		return fmt.Sprintf("array count %d must be positive", a.count)
	}
	if v, ok := a.elem.(validator); ok {
		return v.validate()
	}
	return ""
}

func asSlice(v any) ([]any, bool) {
	switch s := v.(type) {
	case []any:
		return s, true
	case []Record:
		return convertSlice(s), true
	case []byte:
		return convertSlice(s), true
	case []bool:
		return convertSlice(s), true
	case []string:
		return convertSlice(s), true
	case []int:
		return convertSlice(s), true
	case []int8:
		return convertSlice(s), true
	case []int16:
		return convertSlice(s), true
	case []int32:
		return convertSlice(s), true
	case []int64:
		return convertSlice(s), true
	case []uint:
		return convertSlice(s), true
	case []uint16:
		return convertSlice(s), true
	case []uint32:
		return convertSlice(s), true
	case []uint64:
		return convertSlice(s), true
	case []float32:
		return convertSlice(s), true
	case []float64:
		return convertSlice(s), true
	}
	return nil, false
}

func convertSlice[T any](s []T) []any {
	out := make([]any, len(s))
	for i, v := range s {
		out[i] = v
	}
	return out
}
