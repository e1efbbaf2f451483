// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package accounts

import (
	"errors"
	"fmt"
)

var (
	ErrUsernameTaken        = errors.New("username already exists")
	ErrInvalidToken         = errors.New("invalid or expired registration token")
	ErrWrongCurrentPassword = errors.New("incorrect current password")
	ErrInvalidUseCount      = errors.New("number of uses must be positive")
	ErrInvalidCredentials   = errors.New("invalid username or password")
	ErrNotFound             = errors.New("not found")

	// ErrPersistence marks storage failures; the transaction was rolled back
	ErrPersistence = errors.New("persistence failure")
)

// ValidationError reports bad input for a single field
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// persistenceError wraps a storage error so callers can match ErrPersistence
// while the driver error stays reachable through errors.As.
type persistenceError struct {
	op  string
	err error
}

func (e *persistenceError) Error() string {
	return fmt.Sprintf("%s: %v", e.op, e.err)
}

func (e *persistenceError) Unwrap() []error {
	return []error{ErrPersistence, e.err}
}

func persistence(op string, err error) error {
	return &persistenceError{op: op, err: err}
}
