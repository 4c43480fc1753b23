// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package server

import (
	"fmt"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"

	"github.com/bpowers/mii"
	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/layout"
)

type DecodeRequest struct {
	Data string `json:"data"`
}

type DecodeResponse struct {
	Format      string        `json:"format"`
	Fingerprint string        `json:"fingerprint"`
	Record      layout.Record `json:"record"`
}

type ConvertRequest struct {
	Data     string `json:"data"`
	To       string `json:"to"`
	Encoding string `json:"encoding,omitempty"`
	Seed     *uint8 `json:"seed,omitempty"`
}

type EncodeRequest struct {
	// Record overrides fields of the default record.
	Record   json.RawMessage `json:"record"`
	Format   string          `json:"format"`
	Encoding string          `json:"encoding,omitempty"`
	Seed     *uint8          `json:"seed,omitempty"`
}

type PayloadResponse struct {
	Format string `json:"format"`
	Data   string `json:"data"`
}

type VerifyRequest struct {
	Data       string `json:"data"`
	VerifyName bool   `json:"verify_name"`
}

type VerifyResponse struct {
	OK     bool   `json:"ok"`
	Code   int    `json:"code"`
	Reason string `json:"reason"`
}

type RandomRequest struct {
	Gender   string `json:"gender,omitempty"`
	Age      string `json:"age,omitempty"`
	Race     string `json:"race,omitempty"`
	Format   string `json:"format,omitempty"`
	Encoding string `json:"encoding,omitempty"`
}

type RandomResponse struct {
	PayloadResponse
	Record layout.Record `json:"record"`
}

func encodeText(data []byte, encoding string) (string, error) {
	switch encoding {
	case "", "base64":
		return charinfo.EncodeBytes(data), nil
	case "hex":
		return charinfo.EncodeHex(data), nil
	}
	return "", fmt.Errorf("unknown encoding %q", encoding)
}

func codecFor(seed *uint8) *mii.Codec {
	if seed == nil {
		return mii.New()
	}
	return mii.New(mii.WithURLSeed(*seed))
}

func (s *Server) handleDecode(c *echo.Context) error {
	req, err := decodeJSON[DecodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ci, format, err := mii.New().DecodeText(req.Data)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	fp, err := mii.Fingerprint(ci)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	s.logger.Debug("decoded", "request_id", c.Request().Header.Get(HeaderRequestID), "format", format)
	return c.JSON(http.StatusOK, DecodeResponse{
		Format:      format.String(),
		Fingerprint: fmt.Sprintf("%016x", fp),
		Record:      ci,
	})
}

func (s *Server) handleConvert(c *echo.Context) error {
	req, err := decodeJSON[ConvertRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	to, err := mii.ParseFormat(req.To)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	data, err := charinfo.DecodeText(req.Data)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	out, err := codecFor(req.Seed).Convert(data, to)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	text, err := encodeText(out, req.Encoding)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, PayloadResponse{Format: to.String(), Data: text})
}

func (s *Server) handleEncode(c *echo.Context) error {
	req, err := decodeJSON[EncodeRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	format, err := mii.ParseFormat(req.Format)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ci := charinfo.Default()
	if len(req.Record) > 0 {
		if err := mii.ApplyJSON(ci, req.Record); err != nil {
			return writeBadRequest(c, err.Error())
		}
	}
	out, err := codecFor(req.Seed).Encode(ci, format)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	text, err := encodeText(out, req.Encoding)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, PayloadResponse{Format: format.String(), Data: text})
}

func (s *Server) handleVerify(c *echo.Context) error {
	if s.engine == nil {
		return writeError(c, http.StatusNotImplemented, ResponseError{Type: "server_error", Message: "no engine configured"})
	}
	req, err := decodeJSON[VerifyRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	ci, _, err := mii.New().DecodeText(req.Data)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	buf, err := charinfo.PackCharInfo(ci)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	reason := charinfo.Reason(s.engine.VerifyCharInfo(buf, req.VerifyName))
	return c.JSON(http.StatusOK, VerifyResponse{
		OK:     reason == charinfo.ReasonOK,
		Code:   int(reason),
		Reason: reason.String(),
	})
}

func (s *Server) handleRandom(c *echo.Context) error {
	if s.engine == nil {
		return writeError(c, http.StatusNotImplemented, ResponseError{Type: "server_error", Message: "no engine configured"})
	}
	req, err := decodeJSON[RandomRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	gender, age, race := charinfo.GenderAll, charinfo.AgeAll, charinfo.RaceAll
	if req.Gender != "" {
		if gender, err = charinfo.ParseGender(req.Gender); err != nil {
			return writeBadRequest(c, err.Error())
		}
	}
	if req.Age != "" {
		if age, err = charinfo.ParseAge(req.Age); err != nil {
			return writeBadRequest(c, err.Error())
		}
	}
	if req.Race != "" {
		if race, err = charinfo.ParseRace(req.Race); err != nil {
			return writeBadRequest(c, err.Error())
		}
	}
	format := mii.FormatCharInfo
	if req.Format != "" {
		if format, err = mii.ParseFormat(req.Format); err != nil {
			return writeBadRequest(c, err.Error())
		}
	}

	ci, err := charinfo.Random(s.engine, gender, age, race)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	out, err := mii.New().Encode(ci, format)
	if err != nil {
		return s.writeCodecError(c, err)
	}
	text, err := encodeText(out, req.Encoding)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	return c.JSON(http.StatusOK, RandomResponse{
		PayloadResponse: PayloadResponse{Format: format.String(), Data: text},
		Record:          ci,
	})
}
