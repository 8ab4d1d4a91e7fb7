// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package output defines the Formatter interface for writing completion
// results in various formats.
package output

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/llm"
)

// Results is everything a formatter may render about one run.
type Results struct {
	RunID    string
	Model    string
	Prompts  []string
	Choices  []llm.Choice
	Usage    llm.Usage
	Calls    int
	Estimate *cost.Estimate
}

// PromptFor returns the prompt that produced the i-th choice.
func (r *Results) PromptFor(i int) string {
	if len(r.Prompts) == 0 {
		return ""
	}
	per := 1
	if len(r.Choices) > len(r.Prompts) {
		per = len(r.Choices) / len(r.Prompts)
	}
	if p := i / per; p < len(r.Prompts) {
		return r.Prompts[p]
	}
	return ""
}

// Formatter writes results to the given writer in a specific format.
type Formatter interface {
	// Name returns the format name (e.g., "json", "jsonl", "table").
	Name() string

	// Format writes the results to w.
	Format(r *Results, w io.Writer) error
}

var (
	fmtMu       sync.RWMutex
	fmtRegistry = make(map[string]Formatter)
)

// RegisterFormatter adds a formatter to the global registry.
func RegisterFormatter(f Formatter) {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry[f.Name()] = f
}

// GetFormatter returns the formatter with the given name, or an error if not found.
func GetFormatter(name string) (Formatter, error) {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	f, ok := fmtRegistry[name]
	if !ok {
		return nil, fmt.Errorf("unknown format: %q (available: %s)", name, formatNames())
	}
	return f, nil
}

// Names returns the registered format names, sorted.
func Names() []string {
	fmtMu.RLock()
	defer fmtMu.RUnlock()
	return slices.Sorted(maps.Keys(fmtRegistry))
}

// resetFmtForTesting clears the formatter registry. Only for use in tests.
func resetFmtForTesting() {
	fmtMu.Lock()
	defer fmtMu.Unlock()
	fmtRegistry = make(map[string]Formatter)
}

// formatNames returns a comma-separated sorted list of registered format
// names. The caller must hold fmtMu.
func formatNames() string {
	return strings.Join(slices.Sorted(maps.Keys(fmtRegistry)), ", ")
}
