// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package competition

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

var (
	ErrAPIKeyNotConfigured = errors.New("API Key is not configured")
	ErrNoMembers           = errors.New("at least one member username is required")
)

// APIError is a non-success response from the competition API.
// Message, Advice and TraceID come from the JSON body when the server sent one.
type APIError struct {
	Status  int
	Message string
	Advice  string
	TraceID string

	// raw is set when the body was not the expected JSON shape
	raw bool
}

func (e *APIError) Error() string {
	if e.raw {
		return fmt.Sprintf("API Error (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API Error (%d): %s - %s (Trace ID: %s)",
		e.Status,
		orDefault(e.Message, "Unknown error"),
		orDefault(e.Advice, "No advice provided"),
		orDefault(e.TraceID, "N/A"),
	)
}

type errorBody struct {
	Message string `json:"message"`
	Advice  string `json:"advice"`
	TraceID string `json:"trace_id"`
}

// newAPIError builds an APIError from a non-success response.
// It never fails: problems reading or decoding the body end up in Message.
func newAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	text := strings.TrimSpace(string(body))
	if err != nil {
		apiErr.raw = true
		apiErr.Message = fmt.Sprintf("%s (parsing error details failed: %v)", text, err)
		return apiErr
	}

	if !json.Valid(body) {
		apiErr.raw = true
		apiErr.Message = text
		return apiErr
	}

	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		apiErr.raw = true
		apiErr.Message = fmt.Sprintf("%s (parsing error details failed: %v)", text, err)
		return apiErr
	}

	apiErr.Message = eb.Message
	apiErr.Advice = eb.Advice
	apiErr.TraceID = eb.TraceID
	return apiErr
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
