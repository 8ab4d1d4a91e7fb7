// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package progress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_NonTerminalLogs(t *testing.T) {
	factory := New(&bytes.Buffer{}, "Computing probs")
	r := factory(45)

	l, ok := r.(*Log)
	require.True(t, ok, "non-terminal writers should get a log reporter")
	require.NoError(t, l.Add(20))
	require.NoError(t, l.Add(20))
	require.NoError(t, l.Add(5))
	require.NoError(t, l.Finish())
	assert.Equal(t, 45, l.Done())
}

func TestNewBar_Renders(t *testing.T) {
	var buf bytes.Buffer
	bar := NewBar(&buf, 10, "Computing probs")

	var r Reporter = bar
	require.NoError(t, r.Add(5))
	require.NoError(t, r.Add(5))
	require.NoError(t, r.Finish())
	assert.NotEmpty(t, buf.String())
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	assert.NoError(t, r.Add(3))
	assert.NoError(t, r.Finish())
}
