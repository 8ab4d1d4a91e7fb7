// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package retry re-invokes a bound operation on transient errors, sleeping a
// fixed interval between attempts.
package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	// DefaultMaxAttempts is the total number of attempts, including the first.
	DefaultMaxAttempts = 5

	// DefaultSleep is the fixed delay between attempts.
	DefaultSleep = 10 * time.Second
)

// State is a step of the retry state machine.
type State int

// Retry states. Succeeded and Exhausted are terminal.
const (
	Attempting State = iota
	Sleeping
	Succeeded
	Exhausted
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case Sleeping:
		return "sleeping"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Sleeper blocks for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// Policy configures Do.
type Policy struct {
	// MaxAttempts is the total attempt ceiling. Values below 1 mean a single attempt.
	MaxAttempts int

	// Sleep is the fixed delay between attempts.
	Sleep time.Duration

	// Transient reports whether err should be retried. A nil Transient retries nothing.
	Transient func(err error) bool

	// Sleeper overrides how delays are performed (useful for tests).
	Sleeper Sleeper

	// Op names the operation in log records.
	Op string
}

// DefaultPolicy returns a policy with the package defaults.
func DefaultPolicy(transient func(error) bool) Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		Sleep:       DefaultSleep,
		Transient:   transient,
	}
}

func (p Policy) attempts() int {
	if p.MaxAttempts <= 0 {
		return 1
	}
	return p.MaxAttempts
}

func (p Policy) transient(err error) bool {
	return p.Transient != nil && p.Transient(err)
}

func (p Policy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleeper != nil {
		return p.Sleeper(ctx, d)
	}
	return SleepContext(ctx, d)
}

// SleepContext blocks for d or until ctx is done, whichever comes first.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Do calls op until it succeeds, fails with a non-transient error, or the
// attempt ceiling is reached. On failure it returns the last error op
// returned, unchanged. If ctx is canceled while sleeping, the returned error
// wraps both the context error and the last error from op.
func Do[T any](ctx context.Context, p Policy, op func(context.Context) (T, error)) (T, error) {
	var (
		result  T
		lastErr error
		attempt int
		state   = Attempting
	)
	maxAttempts := p.attempts()

	for {
		switch state {
		case Attempting:
			attempt++
			v, err := op(ctx)
			switch {
			case err == nil:
				result = v
				state = Succeeded
			case !p.transient(err):
				lastErr = err
				state = Exhausted
			case attempt >= maxAttempts:
				lastErr = err
				slog.Error("max retries exceeded",
					"op", p.Op, "attempts", attempt, "error", err)
				state = Exhausted
			default:
				lastErr = err
				slog.Info("transient error, retrying",
					"op", p.Op, "attempt", attempt, "max_attempts", maxAttempts,
					"sleep", p.Sleep, "error", err)
				state = Sleeping
			}

		case Sleeping:
			if err := p.sleep(ctx, p.Sleep); err != nil {
				lastErr = fmt.Errorf("%w (last error: %w)", err, lastErr)
				state = Exhausted
				continue
			}
			state = Attempting

		case Succeeded:
			return result, nil

		case Exhausted:
			var zero T
			return zero, lastErr
		}
	}
}
