// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package output

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmclass/lmclass/internal/cost"
)

func fixedNow() time.Time {
	return time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC)
}

func TestJSONFormatter_Envelope(t *testing.T) {
	f := &JSONFormatter{nowFunc: fixedNow}
	var buf bytes.Buffer
	require.NoError(t, f.Format(sampleResults(), &buf))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.Len(t, env.Choices, 2)
	assert.Equal(t, " positive", env.Choices[0].Text)
	assert.Equal(t, 16, env.Usage.TotalTokens)
	assert.Equal(t, "run-1", env.Metadata.RunID)
	assert.Equal(t, "gpt-3.5-turbo-instruct", env.Metadata.Model)
	assert.Equal(t, 2, env.Metadata.Prompts)
	assert.Equal(t, 1, env.Metadata.Calls)
	assert.Equal(t, "2026-03-01T12:30:00Z", env.Metadata.GeneratedAt)
	assert.Nil(t, env.Metadata.Estimate)
	assert.NotContains(t, buf.String(), `"estimate"`)
}

func TestJSONFormatter_PrettyByDefault(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(sampleResults(), &buf))
	assert.Contains(t, buf.String(), "\n  \"choices\": [")
	assert.True(t, strings.HasSuffix(buf.String(), "}\n"))
}

func TestJSONFormatter_Compact(t *testing.T) {
	f := &JSONFormatter{Compact: true}
	var buf bytes.Buffer
	require.NoError(t, f.Format(sampleResults(), &buf))
	assert.Equal(t, 1, strings.Count(buf.String(), "\n"))
}

func TestJSONFormatter_CompactForFiles(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.json")
	file, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, NewJSONFormatter().Format(sampleResults(), file))
	require.NoError(t, file.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(data), "\n"))
}

func TestJSONFormatter_EmptyChoices(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(&Results{Model: "m"}, &buf))
	assert.Contains(t, buf.String(), `"choices": []`)
}

func TestJSONFormatter_Estimate(t *testing.T) {
	r := sampleResults()
	r.Estimate = &cost.Estimate{Model: "m", Prompts: 2, PromptTokens: 10, CompletionTokens: 6, Cost: 0.03, Known: true}

	var buf bytes.Buffer
	require.NoError(t, NewJSONFormatter().Format(r, &buf))

	var env JSONEnvelope
	require.NoError(t, json.Unmarshal(buf.Bytes(), &env))
	require.NotNil(t, env.Metadata.Estimate)
	assert.Equal(t, 16, env.Metadata.Estimate.TotalTokens)
	require.NotNil(t, env.Metadata.Estimate.CostUSD)
	assert.InDelta(t, 0.03, *env.Metadata.Estimate.CostUSD, 1e-9)
}

func TestNewEstimateJSON_UnknownCost(t *testing.T) {
	e := NewEstimateJSON(cost.Estimate{Model: "mystery", Prompts: 1, PromptTokens: 3})
	assert.Nil(t, e.CostUSD)
	assert.Equal(t, 3, e.TotalTokens)

	data, err := json.Marshal(e)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"cost_usd":null`)
	assert.NotContains(t, string(data), "requests")
}
