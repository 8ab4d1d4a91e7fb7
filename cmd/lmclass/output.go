// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lmclass/lmclass/internal/classify"
	"github.com/lmclass/lmclass/internal/output"
)

const defaultFormat = "json"

func validateFormat(format string) error {
	_, err := output.GetFormatter(format)
	return err
}

// renderResult formats res with the named formatter.
func renderResult(format, model string, prompts []string, res *classify.Result) ([]byte, error) {
	f, err := output.GetFormatter(format)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	err = f.Format(&output.Results{
		RunID:    res.RunID,
		Model:    model,
		Prompts:  prompts,
		Choices:  res.Choices,
		Usage:    res.Usage,
		Calls:    res.Calls,
		Estimate: res.Estimate,
	}, &buf)
	if err != nil {
		return nil, fmt.Errorf("formatting %s output: %w", format, err)
	}
	return buf.Bytes(), nil
}

// formatHelp lists the registered output formats for flag usage.
func formatHelp() string {
	return "output format (" + strings.Join(output.Names(), ", ") + ")"
}

// writeOutput writes data to path, or to the command's stdout when path is
// empty.
func writeOutput(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := cmdFS.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("creating output directory: %w", err)
		}
	}
	if err := cmdFS.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}
