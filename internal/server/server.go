// Copyright 2024 The mii Authors. All rights reserved.
// Use of this source code is governed by the MIT License
// that can be found in the LICENSE file.

// Package server exposes the codec over HTTP.  Payloads travel as hex
// or Base64 text inside JSON bodies.
package server

import (
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/bpowers/mii/charinfo"
	"github.com/bpowers/mii/layout"
)

const HeaderRequestID = "X-Request-Id"

type Option func(*Server)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithEngine enables the verify and random endpoints.
func WithEngine(e charinfo.Engine) Option {
	return func(s *Server) {
		s.engine = e
	}
}

type Server struct {
	logger *slog.Logger
	engine charinfo.Engine
}

func New(opts ...Option) *Server {
	s := &Server{
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/healthz", s.handleHealth)
	e.POST("/v1/decode", s.handleDecode)
	e.POST("/v1/convert", s.handleConvert)
	e.POST("/v1/encode", s.handleEncode)
	e.POST("/v1/verify", s.handleVerify)
	e.POST("/v1/random", s.handleRandom)
}

// RequestID echoes the caller's X-Request-Id, or assigns a fresh one,
// on every response.
func RequestID() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			id := c.Request().Header.Get(HeaderRequestID)
			if id == "" {
				id = uuid.NewString()
				c.Request().Header.Set(HeaderRequestID, id)
			}
			c.Response().Header().Set(HeaderRequestID, id)
			return next(c)
		}
	}
}

// ErrorBody is the JSON body of every non-2xx response.
type ErrorBody struct {
	Error ResponseError `json:"error"`
}

type ResponseError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

func writeError(c *echo.Context, status int, e ResponseError) error {
	return c.JSON(status, ErrorBody{Error: e})
}

func writeBadRequest(c *echo.Context, msg string) error {
	return writeError(c, http.StatusBadRequest, ResponseError{Type: "invalid_request_error", Message: msg})
}

// writeCodecError maps the codec's error taxonomy onto HTTP statuses.
func (s *Server) writeCodecError(c *echo.Context, err error) error {
	var (
		ce *charinfo.ConversionError
		ve *charinfo.VerificationError
		lv *layout.ValueError
	)
	switch {
	case errors.As(err, &ve):
		return writeError(c, http.StatusUnprocessableEntity, ResponseError{
			Type:    "verification_error",
			Message: err.Error(),
			Reason:  ve.Reason.String(),
		})
	case errors.As(err, &ce):
		return writeError(c, http.StatusUnprocessableEntity, ResponseError{
			Type:    "conversion_error",
			Message: err.Error(),
			Field:   ce.Field,
		})
	case errors.As(err, &lv):
		return writeError(c, http.StatusBadRequest, ResponseError{
			Type:    "value_error",
			Message: err.Error(),
			Field:   lv.Field,
		})
	case errors.Is(err, layout.ErrFormat):
		return writeError(c, http.StatusBadRequest, ResponseError{Type: "format_error", Message: err.Error()})
	}
	s.logger.Error("request failed", "request_id", c.Request().Header.Get(HeaderRequestID), "error", err)
	return writeError(c, http.StatusInternalServerError, ResponseError{Type: "server_error", Message: err.Error()})
}

func decodeJSON[T any](r io.Reader) (T, error) {
	var out T
	dec := json.NewDecoder(r)
	dec.UseNumber()
	dec.DisallowUnknownFields()
	if err := dec.Decode(&out); err != nil {
		return out, err
	}
	return out, nil
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"engine": s.engine != nil,
	})
}
