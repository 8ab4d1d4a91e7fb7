// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/lmclass/lmclass/internal/llm"
)

func init() {
	RegisterFormatter(NewJSONLFormatter())
}

// JSONLRecord is one line of JSONL output: a choice and its prompt.
type JSONLRecord struct {
	Prompt string `json:"prompt"`
	llm.Choice
}

// JSONLFormatter writes one JSON object per choice, one per line.
type JSONLFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*JSONLFormatter)(nil)

// NewJSONLFormatter returns a new JSONLFormatter.
func NewJSONLFormatter() *JSONLFormatter {
	return &JSONLFormatter{}
}

// Name returns the format name.
func (f *JSONLFormatter) Name() string {
	return "jsonl"
}

// Format writes each choice as a single JSON line to w.
func (f *JSONLFormatter) Format(r *Results, w io.Writer) error {
	enc := json.NewEncoder(w)
	for i, ch := range r.Choices {
		if err := enc.Encode(JSONLRecord{Prompt: r.PromptFor(i), Choice: ch}); err != nil {
			return fmt.Errorf("write jsonl record %d: %w", i, err)
		}
	}
	return nil
}
