// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// inputFlags select where prompts come from.
type inputFlags struct {
	text      []string
	jsonInput bool
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.text, "text", "t", nil, "prompt text (repeatable); replaces the input file")
	cmd.Flags().BoolVar(&f.jsonInput, "json-input", false, "input is a JSON string or array of strings instead of one prompt per line")
}

// promptSource describes prompts and whether they were read from stdin.
type promptSource struct {
	prompts []string
	stdin   bool
}

// readPrompts returns the prompts named by --text, the file argument, or
// stdin when no file (or "-") is given.
func readPrompts(cmd *cobra.Command, args []string, f *inputFlags) (promptSource, error) {
	if len(f.text) > 0 {
		if len(args) > 0 {
			return promptSource{}, exitError(ExitInvalidArgs, "lmclass: --text cannot be combined with an input file")
		}
		return promptSource{prompts: f.text}, nil
	}

	var (
		data []byte
		err  error
		src  promptSource
	)
	if len(args) == 0 || args[0] == "-" {
		src.stdin = true
		data, err = io.ReadAll(cmd.InOrStdin())
	} else {
		data, err = cmdFS.ReadFile(args[0])
	}
	if err != nil {
		return promptSource{}, exitError(ExitInvalidArgs, "lmclass: reading input: %v", err)
	}

	if f.jsonInput {
		src.prompts, err = parseJSONPrompts(data)
		if err != nil {
			return promptSource{}, exitError(ExitInvalidArgs, "lmclass: %v", err)
		}
		return src, nil
	}
	src.prompts = parseLines(data)
	return src, nil
}

// parseJSONPrompts accepts either a JSON array of strings or a single JSON
// string, which becomes one prompt.
func parseJSONPrompts(data []byte) ([]string, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("parsing JSON input: %w", err)
		}
		return []string{one}, nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return nil, fmt.Errorf("parsing JSON input: expected a string or an array of strings: %w", err)
	}
	return many, nil
}

// parseLines splits data into one prompt per non-blank line.
func parseLines(data []byte) []string {
	var out []string
	for line := range strings.Lines(string(data)) {
		line = strings.TrimRight(line, "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		out = append(out, line)
	}
	return out
}
