// Package httputil holds the JSON envelope helpers shared by every handler.
package httputil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	dErrors "personpatch/pkg/domain-errors"
	"personpatch/pkg/platform/validation"
)

// MaxBodyBytes caps every request body read through this package.
const MaxBodyBytes = 1 << 20

type errorResponse struct {
	Error            string                 `json:"error"`
	ErrorDescription string                 `json:"error_description,omitempty"`
	Violations       []validation.Violation `json:"violations,omitempty"`
}

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteText renders a plain text body with the given status.
func WriteText(w http.ResponseWriter, status int, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, body)
}

// WriteError translates err into a status and JSON error body. Internal and
// not-found errors carry no description; validation errors list every
// violation found in the chain.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := errorResponse{Error: string(code)}
	switch code {
	case dErrors.CodeInternal, dErrors.CodeNotFound:
	default:
		resp.ErrorDescription = dErrors.MessageOf(err)
	}
	var violations validation.Errors
	if errors.As(err, &violations) {
		resp.Violations = violations
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}

// ReadBody reads the full request body, rejecting bodies over MaxBodyBytes.
func ReadBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, dErrors.New(dErrors.CodeBadRequest, fmt.Sprintf("request body exceeds %d bytes", MaxBodyBytes))
		}
		return nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "failed to read request body")
	}
	return body, nil
}

// DecodeJSON decodes the request body into a T. On failure it writes a
// bad_request response, logs the cause, and returns false.
func DecodeJSON[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger, ctx context.Context, requestID string) (*T, bool) {
	body, err := ReadBody(w, r)
	if err != nil {
		logger.WarnContext(ctx, "failed to read request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, err)
		return nil, false
	}
	var req T
	if err := json.Unmarshal(body, &req); err != nil {
		logger.WarnContext(ctx, "failed to decode request body",
			"request_id", requestID,
			"error", err,
		)
		WriteError(w, dErrors.Wrap(err, dErrors.CodeBadRequest, "request body is not valid JSON"))
		return nil, false
	}
	return &req, true
}
