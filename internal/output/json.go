// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/llm"
)

func init() {
	RegisterFormatter(NewJSONFormatter())
}

// JSONEnvelope wraps choices with metadata for the JSON output format.
type JSONEnvelope struct {
	Choices  []llm.Choice `json:"choices"`
	Usage    llm.Usage    `json:"usage"`
	Metadata JSONMetadata `json:"metadata"`
}

// JSONMetadata describes the run that produced the choices.
type JSONMetadata struct {
	RunID       string        `json:"run_id"`
	Model       string        `json:"model"`
	Prompts     int           `json:"prompts"`
	Calls       int           `json:"calls"`
	GeneratedAt string        `json:"generated_at"`
	Estimate    *EstimateJSON `json:"estimate,omitempty"`
}

// EstimateJSON is the JSON form of a cost estimate. CostUSD is null when
// the model has no known price.
type EstimateJSON struct {
	Model            string   `json:"model"`
	Prompts          int      `json:"prompts"`
	Requests         int      `json:"requests,omitempty"`
	PromptTokens     int      `json:"prompt_tokens"`
	CompletionTokens int      `json:"completion_tokens"`
	TotalTokens      int      `json:"total_tokens"`
	CostUSD          *float64 `json:"cost_usd"`
}

// NewEstimateJSON converts an estimate to its JSON form.
func NewEstimateJSON(e cost.Estimate) EstimateJSON {
	out := EstimateJSON{
		Model:            e.Model,
		Prompts:          e.Prompts,
		PromptTokens:     e.PromptTokens,
		CompletionTokens: e.CompletionTokens,
		TotalTokens:      e.TotalTokens(),
	}
	if e.Known {
		c := e.Cost
		out.CostUSD = &c
	}
	return out
}

// JSONFormatter writes results as a JSON object with a metadata envelope.
type JSONFormatter struct {
	// Compact controls whether output is compact (single line) or pretty-printed.
	// When false (default), output is indented with two spaces unless w is
	// a pipe or regular file.
	Compact bool

	// nowFunc is used for testing to override the current time.
	nowFunc func() time.Time
}

// Compile-time interface check.
var _ Formatter = (*JSONFormatter)(nil)

// NewJSONFormatter returns a new JSONFormatter with default settings.
func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Name returns the format name.
func (f *JSONFormatter) Name() string {
	return "json"
}

// Format writes the results as a single JSON document to w.
func (f *JSONFormatter) Format(r *Results, w io.Writer) error {
	choices := r.Choices
	if choices == nil {
		choices = []llm.Choice{}
	}

	now := time.Now()
	if f.nowFunc != nil {
		now = f.nowFunc()
	}

	envelope := JSONEnvelope{
		Choices: choices,
		Usage:   r.Usage,
		Metadata: JSONMetadata{
			RunID:       r.RunID,
			Model:       r.Model,
			Prompts:     len(r.Prompts),
			Calls:       r.Calls,
			GeneratedAt: now.UTC().Format("2006-01-02T15:04:05Z"),
		},
	}
	if r.Estimate != nil {
		e := NewEstimateJSON(*r.Estimate)
		envelope.Metadata.Estimate = &e
	}

	var (
		data []byte
		err  error
	)
	if f.shouldCompact(w) {
		data, err = json.Marshal(envelope)
	} else {
		data, err = json.MarshalIndent(envelope, "", "  ")
	}
	if err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write json: %w", err)
	}
	if _, err := w.Write([]byte("\n")); err != nil {
		return fmt.Errorf("write json trailing newline: %w", err)
	}
	return nil
}

// shouldCompact determines whether to use compact mode.
// If Compact is set, always compact. Otherwise pretty-print for terminals
// and non-file writers, compact for pipes and files.
func (f *JSONFormatter) shouldCompact(w io.Writer) bool {
	if f.Compact {
		return true
	}
	if file, ok := w.(*os.File); ok {
		fi, err := file.Stat()
		if err != nil {
			return false
		}
		return fi.Mode()&os.ModeCharDevice == 0
	}
	return false
}
