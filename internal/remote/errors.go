// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package remote

import (
	"errors"
	"fmt"
)

// Error variables for remote calls.
var (
	// ErrNotConfigured indicates no credential is set. Callers treat this as
	// a state (use the offline reply), not a failure.
	ErrNotConfigured = errors.New("remote credential not configured")

	// ErrRequestFailed wraps every failed completion: transport errors,
	// non-2xx statuses and responses without content.
	ErrRequestFailed = errors.New("remote request failed")

	// ErrInvalidCredential is returned when a credential does not have the
	// expected shape.
	ErrInvalidCredential = errors.New("invalid credential")
)

// APIError is a non-2xx response from the completions endpoint.
// errors.Is(err, ErrRequestFailed) holds for every APIError.
type APIError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("API error (HTTP %d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("API error (HTTP %d)", e.Status)
}

// Is implements errors.Is support.
func (e *APIError) Is(target error) bool {
	return target == ErrRequestFailed
}
