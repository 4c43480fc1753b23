// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"fmt"

	"github.com/bpowers/mii/layout"
)

// FormatError reports input that isn't a well-formed payload: text
// that is neither hex nor Base64, or a buffer whose length doesn't
// match the record it should hold.  It matches layout.ErrFormat.
type FormatError struct {
	Op  string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("charinfo: %s: %s", e.Op, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

func (e *FormatError) Is(target error) bool {
	return target == layout.ErrFormat
}

func sizeError(op, what string, want, got int) error {
	return &FormatError{Op: op, Err: fmt.Errorf("%s must be %d bytes, got %d", what, want, got)}
}

// ConversionError reports a field that has no representation in the
// target format.
type ConversionError struct {
	Field string
	Value int64
	Msg   string
}

func (e *ConversionError) Error() string {
	return fmt.Sprintf("charinfo: convert %s=%d: %s", e.Field, e.Value, e.Msg)
}

func outOfRange(field string, v, lo, hi int64) error {
	return &ConversionError{Field: field, Value: v, Msg: fmt.Sprintf("outside %d-%d", lo, hi)}
}

// VerificationError carries the named reason a record failed
// verification.
type VerificationError struct {
	Reason Reason
}

func (e *VerificationError) Error() string {
	return "charinfo: verification failed: " + e.Reason.String()
}
