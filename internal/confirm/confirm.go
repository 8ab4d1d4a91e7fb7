// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package confirm asks an operator a yes/no question before money is spent.
package confirm

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Confirmer asks a yes/no question and reports the answer.
type Confirmer interface {
	Confirm(question string) (bool, error)
}

var colorQuestion = color.New(color.FgYellow, color.Bold)

// Prompt asks on Out and reads answers from In. It re-asks until a line is
// exactly "y" or "n"; "Y", "yes" and padded answers are asked again. End of
// input counts as "n".
type Prompt struct {
	In  io.Reader
	Out io.Writer
}

// Compile-time check that Prompt satisfies the Confirmer interface.
var _ Confirmer = (*Prompt)(nil)

// Confirm writes question followed by " (y/n): " and waits for an answer.
func (p *Prompt) Confirm(question string) (bool, error) {
	scanner := bufio.NewScanner(p.In)
	for {
		if _, err := fmt.Fprintf(p.Out, "%s (y/n): ", colorQuestion.Sprint(question)); err != nil {
			return false, fmt.Errorf("confirm: write prompt: %w", err)
		}
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return false, fmt.Errorf("confirm: read answer: %w", err)
			}
			fmt.Fprintln(p.Out) //nolint:errcheck // best-effort newline after EOF
			return false, nil
		}
		switch scanner.Text() {
		case "y":
			return true, nil
		case "n":
			return false, nil
		}
	}
}

// Always answers every question with the same value without asking.
type Always bool

// Confirm returns the fixed answer.
func (a Always) Confirm(string) (bool, error) {
	return bool(a), nil
}

// IsTerminal reports whether r is an interactive terminal.
func IsTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
