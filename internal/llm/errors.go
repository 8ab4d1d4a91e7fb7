// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package llm

import (
	"errors"
	"net/http"
)

// Transient error kinds. Providers wrap their native errors with one of these
// so callers can classify failures with errors.Is.
var (
	ErrServiceUnavailable = errors.New("service unavailable")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// IsTransient reports whether err is expected to resolve itself after a delay.
func IsTransient(err error) bool {
	return errors.Is(err, ErrServiceUnavailable) || errors.Is(err, ErrRateLimited)
}

// StatusKind maps an HTTP status code to a transient error kind, or nil when
// the status is not transient.
func StatusKind(status int) error {
	switch status {
	case http.StatusTooManyRequests:
		return ErrRateLimited
	case http.StatusServiceUnavailable:
		return ErrServiceUnavailable
	default:
		return nil
	}
}
