// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import "fmt"

type derived struct {
	base   Field
	pack   func(any) (any, error)
	unpack func(any) (any, error)
}

// Derive wraps base with value transforms.  pack maps a caller value
// into base's value domain before writing; unpack maps base's decoded
// value back out.  Name, width and alignment are base's.
func Derive(base Field, pack, unpack func(any) (any, error)) Field {
	return &derived{base: base, pack: pack, unpack: unpack}
}

func (d *derived) Name() string  { return d.base.Name() }
func (d *derived) Bits() int     { return d.base.Bits() }
func (d *derived) unwrap() Field { return d.base }

func (d *derived) PackAt(v any, buf []byte, c *Cursor) error {
	raw, err := d.pack(v)
	if err != nil {
		return &ValueError{Field: d.Name(), Value: v, Msg: err.Error()}
	}
	return d.base.PackAt(raw, buf, c)
}

func (d *derived) UnpackAt(buf []byte, c *Cursor) (any, error) {
	raw, err := d.base.UnpackAt(buf, c)
	if err != nil {
		return nil, err
	}
	v, err := d.unpack(raw)
	if err != nil {
		return nil, fmt.Errorf("layout: field %q: %w", d.Name(), err)
	}
	return v, nil
}

func (d *derived) validate() string {
	if d.base == nil {
		return "derived from nil field"
	}
	if d.pack == nil || d.unpack == nil {
		return "derived field needs both transforms"
	}
	if v, ok := d.base.(validator); ok {
		return v.validate()
	}
	return ""
}

// Scaled derives a fixed-point field: the stored integer is the value
// multiplied by scale.  It decodes to float64 and rounds on encode.
func Scaled(base Field, scale float64) Field {
	return Derive(base,
		func(v any) (any, error) {
			f, ok := v.(float64)
			if !ok {
				return nil, fmt.Errorf("expected float64, got %T", v)
			}
			x := f * scale
			if x < 0 {
				return int64(x - 0.5), nil
			}
			return int64(x + 0.5), nil
		},
		func(v any) (any, error) {
			mag, neg, ok := integer(v)
			if !ok {
				return nil, fmt.Errorf("expected an integer, got %T", v)
			}
			f := float64(mag)
			if neg {
				f = -f
			}
			return f / scale, nil
		},
	)
}
