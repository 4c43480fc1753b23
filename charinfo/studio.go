// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import (
	"errors"

	"github.com/bpowers/mii/layout"
)

// studioFields is the web service's wire order, which is alphabetical.
var studioFields = []string{
	"beardColor", "beardType", "build",
	"eyeAspect", "eyeColor", "eyeRotate", "eyeScale", "eyeType", "eyeX", "eyeY",
	"eyebrowAspect", "eyebrowColor", "eyebrowRotate", "eyebrowScale", "eyebrowType", "eyebrowX", "eyebrowY",
	"facelineColor", "facelineMake", "facelineType", "facelineWrinkle",
	"favoriteColor", "gender",
	"glassColor", "glassScale", "glassType", "glassY",
	"hairColor", "hairFlip", "hairType", "height",
	"moleScale", "moleType", "moleX", "moleY",
	"mouthAspect", "mouthColor", "mouthScale", "mouthType", "mouthY",
	"mustacheScale", "mustacheType", "mustacheY",
	"noseScale", "noseType", "noseY",
}

// Studio is the compact record used by the Mii Studio web service:
// one unsigned byte per attribute.
var Studio = func() *layout.Struct {
	fields := make([]layout.Field, len(studioFields))
	for i, name := range studioFields {
		fields[i] = layout.Uint8(name)
	}
	return layout.MustStruct("studio", fields...)
}()

// ParseStudio decodes a compact record.  data must be exactly
// StudioSize bytes.
func ParseStudio(data []byte) (layout.Record, error) {
	if len(data) != StudioSize {
		return nil, sizeError("ParseStudio", "studio", StudioSize, len(data))
	}
	return Studio.Unpack(data)
}

// PackStudio encodes a compact record.
func PackStudio(rec layout.Record) ([]byte, error) {
	return Studio.Pack(rec)
}

// DecodeStudioURL reverses the obfuscation the web service applies to
// compact records it embeds in image URLs.  The first byte is a seed;
// every following byte is chained off the one before it.
func DecodeStudioURL(data []byte) ([]byte, error) {
	if len(data) != StudioURLSize {
		return nil, sizeError("DecodeStudioURL", "studio URL data", StudioURLSize, len(data))
	}
	out := make([]byte, StudioSize)
	for i := 1; i < len(data); i++ {
		out[i-1] = (data[i] - 7) ^ data[i-1]
	}
	return out, nil
}

// EncodeStudioURL obfuscates a compact record for use in a web service
// URL, starting the chain at seed.
func EncodeStudioURL(studio []byte, seed byte) ([]byte, error) {
	if len(studio) != StudioSize {
		return nil, sizeError("EncodeStudioURL", "studio", StudioSize, len(studio))
	}
	out := make([]byte, StudioURLSize)
	out[0] = seed
	for i, b := range studio {
		out[i+1] = 7 + (b ^ out[i])
	}
	return out, nil
}

var errNotStudio = errors.New("not studio data")

// StudioBytes accepts either the plain compact record or its URL form
// and returns the plain record.
func StudioBytes(data []byte) ([]byte, error) {
	switch len(data) {
	case StudioSize:
		return data, nil
	case StudioURLSize:
		return DecodeStudioURL(data)
	}
	return nil, &FormatError{Op: "StudioBytes", Err: errNotStudio}
}
