// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmclass/lmclass/internal/llm"
)

func TestAlignChoices_ReordersByIndex(t *testing.T) {
	in := []llm.Choice{
		{Text: "c", Index: 2},
		{Text: "a", Index: 0},
		{Text: "b", Index: 1},
	}
	out, err := alignChoices(in, 3, 1, 20)
	require.NoError(t, err)
	require.Len(t, out, 3)
	assert.Equal(t, "a", out[0].Text)
	assert.Equal(t, "b", out[1].Text)
	assert.Equal(t, "c", out[2].Text)
	assert.Equal(t, []int{20, 21, 22}, []int{out[0].Index, out[1].Index, out[2].Index})

	// Input is not modified.
	assert.Equal(t, "c", in[0].Text)
	assert.Equal(t, 2, in[0].Index)
}

func TestAlignChoices_KeepsOrderWhenIndexesAreUnusable(t *testing.T) {
	in := []llm.Choice{
		{Text: "a", Index: 0},
		{Text: "b", Index: 0},
	}
	out, err := alignChoices(in, 2, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "a", out[0].Text)
	assert.Equal(t, "b", out[1].Text)
	assert.Equal(t, 1, out[1].Index)
}

func TestAlignChoices_CountMismatch(t *testing.T) {
	_, err := alignChoices([]llm.Choice{{}, {}}, 3, 1, 0)
	require.ErrorIs(t, err, ErrChoiceMismatch)

	_, err = alignChoices([]llm.Choice{{}, {}}, 2, 2, 0)
	require.ErrorIs(t, err, ErrChoiceMismatch)
}

func TestAlignChoices_RebasesWithMultipleChoices(t *testing.T) {
	in := []llm.Choice{{Index: 0}, {Index: 1}, {Index: 2}, {Index: 3}}
	out, err := alignChoices(in, 2, 2, 5)
	require.NoError(t, err)
	assert.Equal(t, 10, out[0].Index)
	assert.Equal(t, 13, out[3].Index)
}
