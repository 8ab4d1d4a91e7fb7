// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package batch splits ordered inputs into fixed-size chunks.
package batch

import (
	"errors"
	"fmt"
	"iter"
)

// ErrInvalidArgument is returned when a chunk size is not positive.
var ErrInvalidArgument = errors.New("batch: invalid argument")

// Constant returns a lazy sequence of consecutive chunks of items. Every chunk
// except possibly the last has exactly size items. Chunks share the backing
// array of items and are capped so appending to one never overwrites the next.
func Constant[T any](items []T, size int) (iter.Seq[[]T], error) {
	if size <= 0 {
		return nil, fmt.Errorf("%w: chunk size must be positive, got %d", ErrInvalidArgument, size)
	}
	return func(yield func([]T) bool) {
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			if !yield(items[start:end:end]) {
				return
			}
		}
	}, nil
}

// Count returns the number of chunks Constant yields for n items.
func Count(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}
