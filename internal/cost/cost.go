// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package cost estimates the token count and dollar cost of a batch of
// completion requests before they are sent.
package cost

import (
	"fmt"
	"maps"
	"math"
	"slices"

	"github.com/dustin/go-humanize"
)

// Table maps a model identifier to its price per 1000 tokens in USD.
// A Table is never mutated after construction; use With to derive a new one.
type Table struct {
	rates map[string]float64
}

// DefaultTable returns the built-in rates for the legacy completion models.
func DefaultTable() Table {
	return NewTable(map[string]float64{
		"text-ada-001":     0.0004,
		"text-babbage-001": 0.0005,
		"text-curie-001":   0.002,
		"text-davinci-003": 0.02,
	})
}

// NewTable copies rates into a new Table.
func NewTable(rates map[string]float64) Table {
	return Table{rates: maps.Clone(rates)}
}

// Rate returns the price per 1000 tokens for model.
func (t Table) Rate(model string) (float64, bool) {
	r, ok := t.rates[model]
	return r, ok
}

// With returns a new Table with overrides layered on top of t.
func (t Table) With(overrides map[string]float64) Table {
	merged := maps.Clone(t.rates)
	if merged == nil {
		merged = make(map[string]float64, len(overrides))
	}
	maps.Copy(merged, overrides)
	return Table{rates: merged}
}

// Models returns the model identifiers in the table, sorted.
func (t Table) Models() []string {
	return slices.Sorted(maps.Keys(t.rates))
}

// Len returns the number of models in the table.
func (t Table) Len() int {
	return len(t.rates)
}

// Estimate is the projected token usage and cost of a batch of requests.
type Estimate struct {
	Model            string
	Prompts          int
	PromptTokens     int
	CompletionTokens int // upper bound: Prompts * max tokens

	// Cost is the estimated USD cost rounded to cents. Valid only when Known.
	Cost  float64
	Known bool
}

// TotalTokens returns prompt plus completion tokens.
func (e Estimate) TotalTokens() int {
	return e.PromptTokens + e.CompletionTokens
}

// CostString renders the cost as "0.12", or "unknown" when no rate is known.
func (e Estimate) CostString() string {
	if !e.Known {
		return "unknown"
	}
	return fmt.Sprintf("%.2f", e.Cost)
}

// String renders the estimate as "$0.12 (1,234 tokens)".
func (e Estimate) String() string {
	return fmt.Sprintf("$%s (%s tokens)", e.CostString(), humanize.Comma(int64(e.TotalTokens())))
}

// Compute estimates the cost of completing texts with model. Completion
// tokens are bounded by len(texts) * maxTokens.
func Compute(tok Tokenizer, table Table, model string, texts []string, maxTokens int) (Estimate, error) {
	ids, err := tok.Encode(texts)
	if err != nil {
		return Estimate{}, fmt.Errorf("cost: tokenize prompts: %w", err)
	}

	est := Estimate{
		Model:            model,
		Prompts:          len(texts),
		CompletionTokens: len(texts) * max(maxTokens, 0),
	}
	for _, seq := range ids {
		est.PromptTokens += len(seq)
	}

	if rate, ok := table.Rate(model); ok {
		est.Known = true
		est.Cost = roundCents(float64(est.TotalTokens()) * rate / 1000)
	}
	return est, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
