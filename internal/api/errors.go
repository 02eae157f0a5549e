// SPDX-License-Identifier: MIT

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/endoverdosing/vyla-api/internal/log"
	"github.com/endoverdosing/vyla-api/internal/telemetry"
	"github.com/endoverdosing/vyla-api/internal/tmdb"
	"go.opentelemetry.io/otel/trace"
)

// Kind classifies an API failure.
type Kind string

const (
	KindValidation Kind = "validation"
	KindNotFound   Kind = "not_found"
	KindUpstream   Kind = "upstream"
	KindInternal   Kind = "internal"
)

// Request echoes the parameters a failing request was made with.
type Request map[string]any

// Error is the single error type handlers return. Status is the HTTP status
// written to the client; Err is the cause and never leaves the process
// outside development mode.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	Request Request
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

func validationError(req Request, format string, args ...any) *Error {
	return &Error{
		Kind:    KindValidation,
		Status:  http.StatusBadRequest,
		Message: fmt.Sprintf(format, args...),
		Request: req,
	}
}

func notFoundError(req Request, message string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Status:  http.StatusNotFound,
		Message: message,
		Request: req,
	}
}

func internalError(req Request, message string, err error) *Error {
	return &Error{
		Kind:    KindInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
		Request: req,
		Err:     err,
	}
}

// fromUpstream maps a provider failure onto the API taxonomy. notFound is
// the message used when the provider confirms absence; failure is used for
// every other upstream problem.
func fromUpstream(err error, req Request, notFound, failure string) *Error {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, tmdb.ErrNotFound):
		e := notFoundError(req, notFound)
		e.Err = err
		return e
	case errors.Is(err, tmdb.ErrCircuitOpen):
		return &Error{Kind: KindUpstream, Status: http.StatusServiceUnavailable, Message: failure, Request: req, Err: err}
	}

	var te *tmdb.Error
	if !errors.As(err, &te) {
		return internalError(req, failure, err)
	}

	status := te.Status
	if status < 400 || status > 599 {
		status = http.StatusInternalServerError
	}
	return &Error{Kind: KindUpstream, Status: status, Message: failure, Request: req, Err: err}
}

type errorBody struct {
	Success   bool       `json:"success"`
	Error     string     `json:"error"`
	Request   Request    `json:"request,omitempty"`
	Timestamp string     `json:"timestamp"`
	Debug     *errorInfo `json:"debug,omitempty"`
}

type errorInfo struct {
	Kind           Kind   `json:"kind"`
	Cause          string `json:"cause,omitempty"`
	UpstreamStatus int    `json:"upstream_status,omitempty"`
	Upstream       string `json:"upstream_message,omitempty"`
	RequestID      string `json:"request_id,omitempty"`
}

// writeJSON writes a JSON response with the given status code
func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err in the public error envelope, counts it and logs
// it. Non-API errors are treated as internal.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		apiErr = internalError(nil, "Internal server error", err)
	}

	s.metrics.RecordError(string(apiErr.Kind))
	span := trace.SpanFromContext(r.Context())
	span.SetAttributes(telemetry.ErrorAttributes(string(apiErr.Kind))...)

	logger := log.WithComponentFromContext(r.Context(), "api")
	ev := logger.Warn()
	switch {
	case apiErr.Status >= 500 && !errors.Is(apiErr.Err, context.Canceled):
		ev = logger.Error()
	case apiErr.Kind == KindValidation || apiErr.Kind == KindNotFound:
		ev = logger.Debug()
	}
	ev.Err(apiErr.Err).
		Str(log.FieldEvent, "request.failed").
		Str("kind", string(apiErr.Kind)).
		Int(log.FieldStatus, apiErr.Status).
		Str(log.FieldPath, r.URL.Path).
		Msg(apiErr.Message)

	body := errorBody{
		Error:     apiErr.Message,
		Request:   apiErr.Request,
		Timestamp: s.shaper.Timestamp(),
	}
	if s.debug {
		info := &errorInfo{
			Kind:           apiErr.Kind,
			UpstreamStatus: tmdb.StatusCode(apiErr.Err),
			Upstream:       tmdb.UpstreamMessage(apiErr.Err),
			RequestID:      log.RequestIDFromContext(r.Context()),
		}
		if apiErr.Err != nil {
			info.Cause = apiErr.Err.Error()
		}
		body.Debug = info
	}
	writeJSON(w, apiErr.Status, body)
}
