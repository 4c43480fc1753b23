// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package charinfo

import "fmt"

// Reason is the model engine's verification result code.  Zero means
// the record passed.
type Reason int

const (
	ReasonOK Reason = iota
	ReasonFacelineType
	ReasonFacelineColor
	ReasonFacelineTexture
	ReasonFacelineMake
	ReasonHairType
	ReasonHairColor
	ReasonHairFlip
	ReasonEyeType
	ReasonEyeColor
	ReasonEyeScale
	ReasonEyeAspect
	ReasonEyeRotate
	ReasonEyeX
	ReasonEyeY
	ReasonEyebrowType
	ReasonEyebrowColor
	ReasonEyebrowScale
	ReasonEyebrowAspect
	ReasonEyebrowRotate
	ReasonEyebrowX
	ReasonEyebrowY
	ReasonNoseType
	ReasonNoseScale
	ReasonNoseY
	ReasonMouthType
	ReasonMouthColor
	ReasonMouthScale
	ReasonMouthAspect
	ReasonMouthY
	ReasonBeardMustache
	ReasonBeardType
	ReasonBeardColor
	ReasonBeardScale
	ReasonBeardY
	ReasonGlassType
	ReasonGlassColor
	ReasonGlassScale
	ReasonGlassY
	ReasonMoleType
	ReasonMoleScale
	ReasonMoleX
	ReasonMoleY
	ReasonHeight
	ReasonBuild
	ReasonName
	ReasonCreatorName
	ReasonGender
	ReasonBirthday
	ReasonFavoriteColor
	ReasonRegionMove
	ReasonFontRegion
	ReasonRoomIndex
	ReasonPositionInRoom
	ReasonBirthPlatform
	ReasonMiiVersion
	ReasonSize
	ReasonChecksum

	numReasons
)

var reasonNames = [numReasons]string{
	ReasonOK:              "no error",
	ReasonFacelineType:    "faceline type out of range",
	ReasonFacelineColor:   "faceline color out of range",
	ReasonFacelineTexture: "faceline texture out of range",
	ReasonFacelineMake:    "faceline makeup out of range",
	ReasonHairType:        "hair type out of range",
	ReasonHairColor:       "hair color out of range",
	ReasonHairFlip:        "hair flip out of range",
	ReasonEyeType:         "eye type out of range",
	ReasonEyeColor:        "eye color out of range",
	ReasonEyeScale:        "eye scale out of range",
	ReasonEyeAspect:       "eye aspect out of range",
	ReasonEyeRotate:       "eye rotation out of range",
	ReasonEyeX:            "eye x position out of range",
	ReasonEyeY:            "eye y position out of range",
	ReasonEyebrowType:     "eyebrow type out of range",
	ReasonEyebrowColor:    "eyebrow color out of range",
	ReasonEyebrowScale:    "eyebrow scale out of range",
	ReasonEyebrowAspect:   "eyebrow aspect out of range",
	ReasonEyebrowRotate:   "eyebrow rotation out of range",
	ReasonEyebrowX:        "eyebrow x position out of range",
	ReasonEyebrowY:        "eyebrow y position out of range",
	ReasonNoseType:        "nose type out of range",
	ReasonNoseScale:       "nose scale out of range",
	ReasonNoseY:           "nose y position out of range",
	ReasonMouthType:       "mouth type out of range",
	ReasonMouthColor:      "mouth color out of range",
	ReasonMouthScale:      "mouth scale out of range",
	ReasonMouthAspect:     "mouth aspect out of range",
	ReasonMouthY:          "mouth y position out of range",
	ReasonBeardMustache:   "mustache type out of range",
	ReasonBeardType:       "beard type out of range",
	ReasonBeardColor:      "beard color out of range",
	ReasonBeardScale:      "mustache scale out of range",
	ReasonBeardY:          "mustache y position out of range",
	ReasonGlassType:       "glasses type out of range",
	ReasonGlassColor:      "glasses color out of range",
	ReasonGlassScale:      "glasses scale out of range",
	ReasonGlassY:          "glasses y position out of range",
	ReasonMoleType:        "mole type out of range",
	ReasonMoleScale:       "mole scale out of range",
	ReasonMoleX:           "mole x position out of range",
	ReasonMoleY:           "mole y position out of range",
	ReasonHeight:          "height out of range",
	ReasonBuild:           "build out of range",
	ReasonName:            "name contains disallowed characters",
	ReasonCreatorName:     "creator name contains disallowed characters",
	ReasonGender:          "gender out of range",
	ReasonBirthday:        "invalid birthday",
	ReasonFavoriteColor:   "favorite color out of range",
	ReasonRegionMove:      "region move flag out of range",
	ReasonFontRegion:      "font region out of range",
	ReasonRoomIndex:       "room index out of range",
	ReasonPositionInRoom:  "position in room out of range",
	ReasonBirthPlatform:   "birth platform out of range",
	ReasonMiiVersion:      "unsupported record version",
	ReasonSize:            "record has the wrong size",
	ReasonChecksum:        "checksum mismatch",
}

func (r Reason) String() string {
	if r >= 0 && r < numReasons {
		return reasonNames[r]
	}
	return fmt.Sprintf("unknown reason %d", int(r))
}

// Err returns nil for ReasonOK and a *VerificationError otherwise.
func (r Reason) Err() error {
	if r == ReasonOK {
		return nil
	}
	return &VerificationError{Reason: r}
}
