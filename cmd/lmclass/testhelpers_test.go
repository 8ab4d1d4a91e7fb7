// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/lmclass/lmclass/internal/config"
	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/llm"
	"github.com/lmclass/lmclass/internal/testable"
)

func init() {
	color.NoColor = true
}

// newTestCmd resets every flag, redirects the root command's I/O to buffers
// and feeds stdin from the given text.
func newTestCmd(stdin string) (*cobra.Command, *bytes.Buffer, *bytes.Buffer) {
	resetCompleteFlags()
	resetEstimateFlags()
	resetConfigFlags()
	resetHistoryFlags()
	verbose, quiet, noColor = false, false, false
	logFormat = "text"
	envFile = ".env"

	stdout := new(bytes.Buffer)
	stderr := new(bytes.Buffer)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetIn(strings.NewReader(stdin))
	return rootCmd, stdout, stderr
}

// isolate runs the test in an empty working directory with an empty global
// config directory. It returns the working directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	return dir
}

// withCompleter makes the complete command use c and records the settings
// it was built with.
func withCompleter(t *testing.T, c llm.Completer) *config.Settings {
	t.Helper()
	var got config.Settings
	orig := newCompleter
	newCompleter = func(s config.Settings) (llm.Completer, error) {
		got = s
		return c, nil
	}
	t.Cleanup(func() { newCompleter = orig })
	return &got
}

// withWordTokenizer counts one token per whitespace-separated word.
func withWordTokenizer(t *testing.T) {
	t.Helper()
	orig := newTokenizer
	newTokenizer = func() (cost.Tokenizer, error) {
		return cost.TokenizerFunc(func(s string) []int {
			return make([]int, len(strings.Fields(s)))
		}), nil
	}
	t.Cleanup(func() { newTokenizer = orig })
}

// withMockFS swaps cmdFS with the given mock and restores it on test cleanup.
func withMockFS(t *testing.T, mock *testable.MockFileSystem) {
	t.Helper()
	orig := cmdFS
	cmdFS = mock
	t.Cleanup(func() { cmdFS = orig })
}

// requireExitCode asserts err carries the given exit code.
func requireExitCode(t *testing.T, err error, code int) *exitCodeError {
	t.Helper()
	require.Error(t, err)
	var ece *exitCodeError
	require.True(t, errors.As(err, &ece), "expected exitCodeError, got %T: %v", err, err)
	require.Equal(t, code, ece.ExitCode(), "unexpected exit code for %q", ece.Error())
	return ece
}
