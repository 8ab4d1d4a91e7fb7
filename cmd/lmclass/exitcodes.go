// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/lmclass/lmclass/internal/batch"
	"github.com/lmclass/lmclass/internal/classify"
)

// Exit codes for the lmclass CLI.
const (
	ExitOK            = 0 // Success.
	ExitInvalidArgs   = 1 // Invalid arguments, config, or input.
	ExitCanceled      = 2 // Declined at the cost prompt or interrupted.
	ExitRemoteFailure = 3 // The completion endpoint failed; no output written.
)

// exitCodeError carries a non-zero exit code through cobra's error handling.
type exitCodeError struct {
	code int
	msg  string
	err  error
}

func (e *exitCodeError) Error() string { return e.msg }

// Unwrap returns the underlying error, if any.
func (e *exitCodeError) Unwrap() error { return e.err }

// ExitCode returns the exit code for this error.
func (e *exitCodeError) ExitCode() int { return e.code }

// exitError creates an exitCodeError. If msg is empty, the error message is
// set to a generic description of the exit code.
func exitError(code int, format string, args ...any) *exitCodeError {
	msg := fmt.Sprintf(format, args...)
	if msg == "" {
		switch code {
		case ExitCanceled:
			msg = "lmclass: canceled"
		case ExitRemoteFailure:
			msg = "lmclass: completion failed"
		default:
			msg = "lmclass: invalid arguments"
		}
	}
	return &exitCodeError{code: code, msg: msg}
}

// classifyExit maps an orchestration error to an exit code.
func classifyExit(err error) *exitCodeError {
	var ece *exitCodeError
	switch {
	case errors.As(err, &ece):
		return ece
	case errors.Is(err, classify.ErrUserCanceled):
		ece = exitError(ExitCanceled, "lmclass: canceled, no requests were sent")
	case errors.Is(err, context.Canceled):
		ece = exitError(ExitCanceled, "lmclass: interrupted: %v", err)
	case errors.Is(err, batch.ErrInvalidArgument):
		ece = exitError(ExitInvalidArgs, "lmclass: %v", err)
	default:
		ece = exitError(ExitRemoteFailure, "lmclass: %v", err)
	}
	ece.err = err
	return ece
}
