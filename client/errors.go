// Copyright 2025 The YCloud ML SDK Authors
// SPDX-License-Identifier: Apache-2.0

package client

import (
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for transport-level failure classification.
var (
	ErrBadRequest       = errors.New("bad request")
	ErrUnauthenticated  = errors.New("unauthenticated")
	ErrPermissionDenied = errors.New("permission denied")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrServer           = errors.New("server error")
	ErrNetwork          = errors.New("network error")
	ErrDecode           = errors.New("decode error")
)

// APIError is a request that the remote API answered with an error status.
type APIError struct {
	// Service is the logical service the request was addressed to.
	Service string

	// Status is the HTTP status code.
	Status int

	// Code is the service-specific error code, when the body carried one.
	Code string

	// Message is the human-readable error description.
	Message string

	// RequestID is the client request id echoed back, for support tickets.
	RequestID string

	err error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.RequestID != "" {
		return fmt.Sprintf("%s: %s (status=%d, code=%s, request_id=%s)",
			e.Service, e.Message, e.Status, e.Code, e.RequestID)
	}
	return fmt.Sprintf("%s: %s (status=%d, code=%s)", e.Service, e.Message, e.Status, e.Code)
}

// Unwrap returns the sentinel class of this error.
func (e *APIError) Unwrap() error {
	return e.err
}

// classify maps an HTTP status to its sentinel error.
func classify(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthenticated
	case status == http.StatusForbidden:
		return ErrPermissionDenied
	case status == http.StatusNotFound:
		return ErrNotFound
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 500:
		return ErrServer
	default:
		return ErrBadRequest
	}
}

// retryable reports whether a failed attempt is worth repeating.
func retryable(err error) bool {
	if errors.Is(err, ErrRateLimited) || errors.Is(err, ErrServer) || errors.Is(err, ErrNetwork) {
		return true
	}
	return false
}
