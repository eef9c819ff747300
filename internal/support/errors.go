// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package support

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ClientError represents an error from the support client.
type ClientError struct {
	Type    ErrorType
	Message string

	// StatusCode is the HTTP status for ErrTypeStatus errors
	StatusCode int

	// Body is the raw (size-limited) response body of a failed request
	Body []byte

	// Detail is the decoded "detail" field of the error body, if any
	Detail any

	Cause error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeTimeout
	ErrTypeConnection
	ErrTypeStatus
	ErrTypeInvalidRequest
	ErrTypeInvalidResponse
)

// String returns the name of the error type.
func (t ErrorType) String() string {
	switch t {
	case ErrTypeTimeout:
		return "timeout"
	case ErrTypeConnection:
		return "connection"
	case ErrTypeStatus:
		return "status"
	case ErrTypeInvalidRequest:
		return "invalid_request"
	case ErrTypeInvalidResponse:
		return "invalid_response"
	default:
		return "unknown"
	}
}

// Sentinel errors for easy checking.
var (
	ErrTimeout     = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrUnreachable = &ClientError{Type: ErrTypeConnection, Message: "support service is not reachable"}
)

// IsTimeout checks if an error is a timeout error.
func IsTimeout(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeTimeout
	}
	return false
}

// IsUnreachable checks if an error indicates the service could not be reached.
func IsUnreachable(err error) bool {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.Type == ErrTypeConnection
	}
	return false
}

// StatusCode returns the HTTP status carried by err, or 0.
func StatusCode(err error) int {
	var clientErr *ClientError
	if errors.As(err, &clientErr) {
		return clientErr.StatusCode
	}
	return 0
}

// =============================================================================
// FAILURE REASON
// =============================================================================

// GenericReason is shown when nothing more specific can be said about a failure.
const GenericReason = "The support service could not process the request. Please try again."

// Reason extracts a human-readable failure reason from err.
//
// The first non-empty candidate wins: the structured "detail" field of the
// error body, its "error" field, the whole body when it is JSON, the transport
// error message, and finally GenericReason with the HTTP status when known.
func Reason(err error) string {
	if err == nil {
		return GenericReason
	}

	var clientErr *ClientError
	if !errors.As(err, &clientErr) {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			return msg
		}
		return GenericReason
	}

	if s := stringify(clientErr.Detail); s != "" {
		return s
	}

	body := bytes.TrimSpace(clientErr.Body)
	if len(body) > 0 && json.Valid(body) {
		var fields map[string]any
		if json.Unmarshal(body, &fields) == nil {
			if s := stringify(fields["error"]); s != "" {
				return s
			}
		}

		var compact bytes.Buffer
		if json.Compact(&compact, body) == nil && compact.Len() > 0 && compact.String() != "null" {
			return compact.String()
		}
	}

	if clientErr.Cause != nil {
		if msg := strings.TrimSpace(clientErr.Error()); msg != "" {
			return msg
		}
	}

	if clientErr.StatusCode != 0 {
		return fmt.Sprintf("%s (HTTP %d)", GenericReason, clientErr.StatusCode)
	}
	return GenericReason
}

// stringify renders a decoded JSON value, serializing anything that is not a string.
func stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		data, err := json.Marshal(val)
		if err != nil {
			return ""
		}
		return string(data)
	}
}
