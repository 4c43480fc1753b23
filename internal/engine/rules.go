// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package engine

import "github.com/bpowers/mii/charinfo"

type rule struct {
	path   []string
	lo, hi int64
	reason charinfo.Reason
}

func span(reason charinfo.Reason, lo, hi int64, path ...string) rule {
	return rule{path: path, lo: lo, hi: hi, reason: reason}
}

// color fields hold palette entries.
func color(reason charinfo.Reason, path ...string) rule {
	return span(reason, 0, charinfo.PaletteMax, path...)
}

// rules are checked in order; the first failure wins.
var rules = []rule{
	span(charinfo.ReasonFacelineType, 0, 11, "faceline", "type"),
	span(charinfo.ReasonFacelineColor, 0, 9, "faceline", "color"),
	span(charinfo.ReasonFacelineTexture, 0, 11, "faceline", "texture"),
	span(charinfo.ReasonFacelineMake, 0, 11, "faceline", "make"),
	span(charinfo.ReasonHairType, 0, 131, "hair", "type"),
	color(charinfo.ReasonHairColor, "hair", "color"),
	span(charinfo.ReasonHairFlip, 0, 1, "hair", "flip"),
	span(charinfo.ReasonEyeType, 0, 59, "eye", "type"),
	color(charinfo.ReasonEyeColor, "eye", "color"),
	span(charinfo.ReasonEyeScale, 0, 7, "eye", "scale"),
	span(charinfo.ReasonEyeAspect, 0, 6, "eye", "aspect"),
	span(charinfo.ReasonEyeRotate, 0, 7, "eye", "rotate"),
	span(charinfo.ReasonEyeX, 0, 12, "eye", "x"),
	span(charinfo.ReasonEyeY, 0, 18, "eye", "y"),
	span(charinfo.ReasonEyebrowType, 0, 24, "eyebrow", "type"),
	color(charinfo.ReasonEyebrowColor, "eyebrow", "color"),
	span(charinfo.ReasonEyebrowScale, 0, 8, "eyebrow", "scale"),
	span(charinfo.ReasonEyebrowAspect, 0, 6, "eyebrow", "aspect"),
	span(charinfo.ReasonEyebrowRotate, 0, 11, "eyebrow", "rotate"),
	span(charinfo.ReasonEyebrowX, 0, 12, "eyebrow", "x"),
	span(charinfo.ReasonEyebrowY, 3, 18, "eyebrow", "y"),
	span(charinfo.ReasonNoseType, 0, 17, "nose", "type"),
	span(charinfo.ReasonNoseScale, 0, 8, "nose", "scale"),
	span(charinfo.ReasonNoseY, 0, 18, "nose", "y"),
	span(charinfo.ReasonMouthType, 0, 35, "mouth", "type"),
	color(charinfo.ReasonMouthColor, "mouth", "color"),
	span(charinfo.ReasonMouthScale, 0, 8, "mouth", "scale"),
	span(charinfo.ReasonMouthAspect, 0, 6, "mouth", "aspect"),
	span(charinfo.ReasonMouthY, 0, 18, "mouth", "y"),
	span(charinfo.ReasonBeardMustache, 0, 5, "beard", "mustache"),
	span(charinfo.ReasonBeardType, 0, 5, "beard", "type"),
	color(charinfo.ReasonBeardColor, "beard", "color"),
	span(charinfo.ReasonBeardScale, 0, 8, "beard", "scale"),
	span(charinfo.ReasonBeardY, 0, 16, "beard", "y"),
	span(charinfo.ReasonGlassType, 0, 19, "glass", "type"),
	color(charinfo.ReasonGlassColor, "glass", "color"),
	span(charinfo.ReasonGlassScale, 0, 7, "glass", "scale"),
	span(charinfo.ReasonGlassY, 0, 20, "glass", "y"),
	span(charinfo.ReasonMoleType, 0, 1, "mole", "type"),
	span(charinfo.ReasonMoleScale, 0, 8, "mole", "scale"),
	span(charinfo.ReasonMoleX, 0, 16, "mole", "x"),
	span(charinfo.ReasonMoleY, 0, 30, "mole", "y"),
	span(charinfo.ReasonHeight, 0, 127, "body", "height"),
	span(charinfo.ReasonBuild, 0, 127, "body", "build"),
	span(charinfo.ReasonGender, 0, 1, "personal", "gender"),
	span(charinfo.ReasonBirthday, 0, 12, "personal", "birthMonth"),
	span(charinfo.ReasonBirthday, 0, 31, "personal", "birthDay"),
	span(charinfo.ReasonFavoriteColor, 0, 11, "personal", "favoriteColor"),
	span(charinfo.ReasonRegionMove, 0, 3, "personal", "regionMove"),
	span(charinfo.ReasonFontRegion, 0, 3, "personal", "fontRegion"),
	span(charinfo.ReasonRoomIndex, 0, 9, "personal", "roomIndex"),
	span(charinfo.ReasonPositionInRoom, 0, 9, "personal", "positionInRoom"),
	span(charinfo.ReasonBirthPlatform, 0, 7, "personal", "birthPlatform"),
}
