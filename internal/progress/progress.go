// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package progress reports how many prompts have been completed. Reporters
// are purely observational; their errors never affect the caller's result.
package progress

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
)

// Reporter receives per-chunk increments toward a known total.
type Reporter interface {
	Add(n int) error
	Finish() error
}

// Factory creates a Reporter for a run of total items.
type Factory func(total int) Reporter

// New returns a terminal progress bar when w is a terminal, otherwise a
// reporter that logs progress at debug level.
func New(w io.Writer, description string) Factory {
	if isTerminal(w) {
		return func(total int) Reporter {
			return NewBar(w, total, description)
		}
	}
	return func(total int) Reporter {
		return NewLog(total, description)
	}
}

// NewBar renders a progress bar on w.
func NewBar(w io.Writer, total int, description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(description),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionThrottle(100*time.Millisecond),
		progressbar.OptionOnCompletion(func() {
			_, _ = io.WriteString(w, "\n")
		}),
	)
}

// Log reports progress as debug log records.
type Log struct {
	total       int
	done        int
	description string
}

// NewLog returns a Reporter that logs each increment.
func NewLog(total int, description string) *Log {
	return &Log{total: total, description: description}
}

// Add records n more completed items.
func (l *Log) Add(n int) error {
	l.done += n
	slog.Debug("progress", "task", l.description, "done", l.done, "total", l.total)
	return nil
}

// Finish logs completion.
func (l *Log) Finish() error {
	slog.Debug("progress finished", "task", l.description, "done", l.done, "total", l.total)
	return nil
}

// Done returns the number of items reported so far.
func (l *Log) Done() int {
	return l.done
}

// Nop discards all progress.
type Nop struct{}

// Add does nothing.
func (Nop) Add(int) error { return nil }

// Finish does nothing.
func (Nop) Finish() error { return nil }

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
