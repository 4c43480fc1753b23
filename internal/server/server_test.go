// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

package server

import (
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bpowers/mii"
	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/internal/engine"
	"github.com/bpowers/mii/layout"
)

func newTestEcho(opts ...Option) *echo.Echo {
	e := echo.New()
	e.Use(RequestID())
	New(opts...).Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func canonicalText(t *testing.T, ci layout.Record) string {
	t.Helper()
	buf, err := charinfo.PackCharInfo(ci)
	require.NoError(t, err)
	return charinfo.EncodeBytes(buf)
}

func TestHealth_RequestID(t *testing.T) {
	e := newTestEcho()
	rec := doJSON(t, e, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotEmpty(t, rec.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(HeaderRequestID, "abc")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, "abc", rec.Header().Get(HeaderRequestID))
}

func TestDecode(t *testing.T) {
	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/decode", `{"data":"`+canonicalText(t, charinfo.Default())+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := decodeBody[map[string]any](t, rec)
	assert.Equal(t, "charinfo", body["format"])
	assert.Len(t, body["fingerprint"], 16)
	record := body["record"].(map[string]any)
	personal := record["personal"].(map[string]any)
	assert.Equal(t, "no name", personal["name"])

	rec = doJSON(t, e, http.MethodPost, "/v1/decode", `{"data":"not a payload!"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "format_error", decodeBody[ErrorBody](t, rec).Error.Type)

	rec = doJSON(t, e, http.MethodPost, "/v1/decode", `{"data":"00","extra":1}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "invalid_request_error", decodeBody[ErrorBody](t, rec).Error.Type)
}

func TestConvert(t *testing.T) {
	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/convert",
		`{"data":"`+canonicalText(t, charinfo.Default())+`","to":"ver3","encoding":"hex"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[PayloadResponse](t, rec)
	require.Equal(t, "ver3", body.Format)
	ver3, err := hex.DecodeString(body.Data)
	require.NoError(t, err)
	require.True(t, charinfo.ValidVer3(ver3))

	ci := charinfo.Default()
	ci.Sub("hair")["color"] = int32(40)
	rec = doJSON(t, e, http.MethodPost, "/v1/convert", `{"data":"`+canonicalText(t, ci)+`","to":"ver3"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	errBody := decodeBody[ErrorBody](t, rec)
	require.Equal(t, "conversion_error", errBody.Error.Type)
	require.Equal(t, "hair.color", errBody.Error.Field)

	rec = doJSON(t, e, http.MethodPost, "/v1/convert", `{"data":"00","to":"png"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, e, http.MethodPost, "/v1/convert",
		`{"data":"`+canonicalText(t, charinfo.Default())+`","to":"studio","encoding":"rot13"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEncode(t *testing.T) {
	e := newTestEcho()
	rec := doJSON(t, e, http.MethodPost, "/v1/encode",
		`{"record":{"hair":{"color":3},"personal":{"name":"Alice"},"createID":"00112233445566778899"},"format":"charinfo"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body := decodeBody[PayloadResponse](t, rec)
	buf, err := base64.StdEncoding.DecodeString(body.Data)
	require.NoError(t, err)
	ci, err := charinfo.ParseCharInfo(buf)
	require.NoError(t, err)
	require.Equal(t, int32(3), ci.Sub("hair")["color"])
	require.Equal(t, "Alice", ci.Sub("personal")["name"])
	require.Equal(t, []byte{0, 0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x77, 0x88, 0x99}, ci["createID"])

	rec = doJSON(t, e, http.MethodPost, "/v1/encode", `{"record":{"hair":{"color":3}},"format":"studio-url","seed":7}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	body = decodeBody[PayloadResponse](t, rec)
	buf, err = base64.StdEncoding.DecodeString(body.Data)
	require.NoError(t, err)
	require.Len(t, buf, charinfo.StudioURLSize)
	require.Equal(t, byte(7), buf[0])
	got, format, err := mii.New().Decode(buf)
	require.NoError(t, err)
	require.Equal(t, mii.FormatStudioURL, format)
	require.Equal(t, int32(3), got.Sub("hair")["color"])

	for _, tt := range []struct {
		name, body, errType string
	}{
		{"unknown field", `{"record":{"wings":1},"format":"charinfo"}`, "invalid_request_error"},
		{"wrong type", `{"record":{"hair":"red"},"format":"charinfo"}`, "invalid_request_error"},
		{"overflow", `{"record":{"personal":{"favorite":300}},"format":"charinfo"}`, "invalid_request_error"},
		{"short id", `{"record":{"createID":"0011"},"format":"charinfo"}`, "value_error"},
		{"unknown format", `{"record":{},"format":"gif"}`, "invalid_request_error"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, e, http.MethodPost, "/v1/encode", tt.body)
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			require.Equal(t, tt.errType, decodeBody[ErrorBody](t, rec).Error.Type)
		})
	}
}

func TestVerify(t *testing.T) {
	e := newTestEcho(WithEngine(engine.New()))
	rec := doJSON(t, e, http.MethodPost, "/v1/verify", `{"data":"`+canonicalText(t, charinfo.Default())+`","verify_name":true}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, VerifyResponse{OK: true, Code: 0, Reason: "no error"}, decodeBody[VerifyResponse](t, rec))

	ci := charinfo.Default()
	ci.Sub("eyebrow")["y"] = int32(2)
	rec = doJSON(t, e, http.MethodPost, "/v1/verify", `{"data":"`+canonicalText(t, ci)+`"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, VerifyResponse{
		Code:   int(charinfo.ReasonEyebrowY),
		Reason: charinfo.ReasonEyebrowY.String(),
	}, decodeBody[VerifyResponse](t, rec))

	rec = doJSON(t, newTestEcho(), http.MethodPost, "/v1/verify", `{"data":"00"}`)
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}

func TestVerify_BadChecksum(t *testing.T) {
	e := newTestEcho(WithEngine(engine.New()))
	ver3, err := mii.New().Encode(charinfo.Default(), mii.FormatVer3)
	require.NoError(t, err)
	ver3[0x10] ^= 1
	rec := doJSON(t, e, http.MethodPost, "/v1/verify", `{"data":"`+charinfo.EncodeHex(ver3)+`"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := decodeBody[ErrorBody](t, rec)
	require.Equal(t, "verification_error", body.Error.Type)
	require.Equal(t, charinfo.ReasonChecksum.String(), body.Error.Reason)
}

func TestRandom(t *testing.T) {
	e := newTestEcho(WithEngine(engine.New(engine.WithSeed(3))))
	rec := doJSON(t, e, http.MethodPost, "/v1/random", `{"gender":"female","format":"ver3"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var body struct {
		Format string         `json:"format"`
		Data   string         `json:"data"`
		Record map[string]any `json:"record"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, "ver3", body.Format)
	buf, err := base64.StdEncoding.DecodeString(body.Data)
	require.NoError(t, err)
	require.True(t, charinfo.ValidVer3(buf))
	require.EqualValues(t, 1, body.Record["personal"].(map[string]any)["gender"])

	rec = doJSON(t, e, http.MethodPost, "/v1/random", `{}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "charinfo", decodeBody[PayloadResponse](t, rec).Format)

	rec = doJSON(t, e, http.MethodPost, "/v1/random", `{"gender":"robot"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, newTestEcho(), http.MethodPost, "/v1/random", `{}`)
	require.Equal(t, http.StatusNotImplemented, rec.Code)
}
