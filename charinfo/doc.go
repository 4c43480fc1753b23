// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package charinfo defines the binary character formats used by Mii
// tooling and converts between them.
//
// CharInfo is the canonical 288-byte record a model engine consumes.
// Studio is the compact 46-byte record used by the Mii Studio web
// service, optionally obfuscated into a 47-byte URL form.  Ver3 is the
// 96-byte store data written by the 3DS and Wii U.  Payloads usually
// travel as hex or Base64 text; DecodeText accepts either.
//
// Records are layout.Record values keyed by the field names of the
// schemas declared here.  Semantic validation is delegated to an
// Engine.
package charinfo
