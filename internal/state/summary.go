// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package state

import (
	"math"
	"slices"
	"strings"

	"github.com/lmclass/lmclass/internal/cost"
)

// ModelTotals aggregates the runs made with one model.
type ModelTotals struct {
	Model       string `json:"model"`
	Runs        int    `json:"runs"`
	Prompts     int    `json:"prompts"`
	Calls       int    `json:"calls"`
	TotalTokens int    `json:"total_tokens"`

	// Cost is the spend implied by the reported usage, rounded to cents.
	// Valid only when Known.
	Cost  float64 `json:"cost_usd"`
	Known bool    `json:"cost_known"`
}

// Summarize totals h per model, pricing reported usage with table. Results
// are sorted by model name.
func Summarize(h *History, table cost.Table) []ModelTotals {
	if h == nil || len(h.Entries) == 0 {
		return nil
	}

	byModel := make(map[string]*ModelTotals)
	for _, e := range h.Entries {
		t, ok := byModel[e.Model]
		if !ok {
			t = &ModelTotals{Model: e.Model}
			byModel[e.Model] = t
		}
		t.Runs++
		t.Prompts += e.Prompts
		t.Calls += e.Calls
		t.TotalTokens += e.Usage.TotalTokens
	}

	out := make([]ModelTotals, 0, len(byModel))
	for _, t := range byModel {
		if rate, ok := table.Rate(t.Model); ok {
			t.Cost = math.Round(float64(t.TotalTokens)*rate/1000*100) / 100
			t.Known = true
		}
		out = append(out, *t)
	}
	slices.SortFunc(out, func(a, b ModelTotals) int { return strings.Compare(a.Model, b.Model) })
	return out
}

// Last returns the newest n entries, newest first. n <= 0 returns all.
func Last(h *History, n int) []Entry {
	if h == nil {
		return nil
	}
	entries := h.Entries
	if n > 0 && len(entries) > n {
		entries = entries[len(entries)-n:]
	}
	out := slices.Clone(entries)
	slices.Reverse(out)
	return out
}
