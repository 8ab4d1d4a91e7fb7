// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package classify

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/lmclass/lmclass/internal/llm"
)

// alignChoices checks that choices cover every prompt of a chunk and returns
// them ordered by Index with Index rebased to the position in the full result.
// If the indexes are not a permutation of the expected range the endpoint's
// order is kept as-is.
func alignChoices(choices []llm.Choice, prompts, perPrompt, offset int) ([]llm.Choice, error) {
	want := prompts * perPrompt
	if len(choices) != want {
		return nil, fmt.Errorf("%w: got %d choices for %d prompts (%d per prompt)",
			ErrChoiceMismatch, len(choices), prompts, perPrompt)
	}

	out := slices.Clone(choices)
	slices.SortStableFunc(out, func(a, b llm.Choice) int {
		return a.Index - b.Index
	})
	for i, ch := range out {
		if ch.Index != i {
			slog.Debug("choice indexes out of range, keeping response order",
				"position", i, "index", ch.Index)
			out = slices.Clone(choices)
			break
		}
	}

	base := offset * perPrompt
	for i := range out {
		out[i].Index = base + i
	}
	return out, nil
}
