// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package layout

import (
	"errors"
	"fmt"
)

// ErrFormat is matched by every *FormatError through errors.Is.
var ErrFormat = errors.New("layout: format error")

// SchemaError reports a malformed layout definition.  It is a
// programming error: MustStruct panics with it.
type SchemaError struct {
	Struct string
	Field  string
	Msg    string
}

func (e *SchemaError) Error() string {
	name := e.Struct
	if name == "" {
		name = "<anonymous>"
	}
	if e.Field != "" {
		return fmt.Sprintf("layout: struct %s, field %q: %s", name, e.Field, e.Msg)
	}
	return fmt.Sprintf("layout: struct %s: %s", name, e.Msg)
}

// FormatError reports a byte buffer whose length doesn't fit a layout.
type FormatError struct {
	Name string
	Want int // bytes required from the start of the buffer
	Got  int
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("layout: %s: buffer too short: %d < %d", e.Name, e.Got, e.Want)
}

func (e *FormatError) Is(target error) bool {
	return target == ErrFormat
}

// ValueError reports a value that can't be packed into a field.
type ValueError struct {
	Field string
	Value any
	Msg   string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("layout: field %q: %s (value %v of type %T)", e.Field, e.Msg, e.Value, e.Value)
}

// AlignmentError reports a byte-level field packed or unpacked at a
// cursor that isn't on a byte boundary.
type AlignmentError struct {
	Field string
	At    Cursor
}

func (e *AlignmentError) Error() string {
	return fmt.Sprintf("layout: field %q needs a byte-aligned cursor (at %s)", e.Field, e.At)
}

func valueErr(f Field, v any, format string, args ...any) error {
	return &ValueError{Field: f.Name(), Value: v, Msg: fmt.Sprintf(format, args...)}
}
