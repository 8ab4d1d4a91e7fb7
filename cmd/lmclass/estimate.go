// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lmclass/lmclass/internal/batch"
	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/output"
)

// Estimate-specific flag values.
var (
	estimateRun   runFlags
	estimateInput inputFlags
	estimateJSON  bool
)

// newTokenizer builds the tokenizer used for estimates. Tests replace it.
var newTokenizer = func() (cost.Tokenizer, error) {
	return cost.NewBPETokenizer(cost.GPT2Encoding)
}

// estimateCmd prints the projected cost of a complete run.
var estimateCmd = &cobra.Command{
	Use:   "estimate [file]",
	Short: "Estimate the token count and cost of completing prompts",
	Long: `Estimate the token count and cost of completing prompts without sending
any request. Input is read the same way as for 'lmclass complete'.

Completion tokens are an upper bound: prompts times --max-tokens. The cost is
"unknown" for models without a configured rate (see 'lmclass models').`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	estimateRun.registerEstimate(estimateCmd.Flags())
	estimateInput.register(estimateCmd)
	estimateCmd.Flags().BoolVar(&estimateJSON, "json", false, "machine-readable output")
}

// resetEstimateFlags resets estimate command flags for testing.
func resetEstimateFlags() {
	estimateRun.reset()
	estimateInput = inputFlags{}
	estimateJSON = false
	resetChanged(estimateCmd)
}

func runEstimate(cmd *cobra.Command, args []string) error {
	s, err := resolveSettings(cmd.Flags(), &estimateRun)
	if err != nil {
		return err
	}
	if s.BatchSize <= 0 {
		return exitError(ExitInvalidArgs, "lmclass: %v: batch size must be positive, got %d",
			batch.ErrInvalidArgument, s.BatchSize)
	}

	src, err := readPrompts(cmd, args, &estimateInput)
	if err != nil {
		return err
	}

	tok, err := newTokenizer()
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}
	table := costTable(s)
	est, err := cost.Compute(tok, table, s.Model, src.prompts, s.MaxTokens)
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	out := output.NewEstimateJSON(est)
	out.Requests = batch.Count(len(src.prompts), s.BatchSize)

	w := cmd.OutOrStdout()
	if estimateJSON {
		return writeJSON(cmd, out)
	}

	rate := "unknown"
	if r, ok := table.Rate(s.Model); ok {
		rate = "$" + strconv.FormatFloat(r, 'f', -1, 64)
	}
	rows := [][]string{
		{"Model", s.Model},
		{"Prompts", humanize.Comma(int64(out.Prompts))},
		{"Requests", humanize.Comma(int64(out.Requests))},
		{"Prompt tokens", humanize.Comma(int64(out.PromptTokens))},
		{"Completion tokens (max)", humanize.Comma(int64(out.CompletionTokens))},
		{"Total tokens", humanize.Comma(int64(out.TotalTokens))},
		{"Rate per 1K tokens", rate},
		{"Estimated cost", "$" + est.CostString()},
	}
	_, err = fmt.Fprintln(w, output.RenderTable([]string{"Field", "Value"}, rows, []output.Alignment{output.AlignLeft, output.AlignRight}))
	return err
}
