// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/lmclass/lmclass/internal/config"
	"github.com/lmclass/lmclass/internal/output"
	"github.com/lmclass/lmclass/internal/state"
)

// History-specific flag values.
var (
	historyLimit   int
	historySummary bool
	historyJSON    bool
)

// historyDir is where completed runs are recorded.
var historyDir = config.GlobalConfigDir

// historyCmd lists recorded completion runs.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recorded completion runs",
	Long: `Show the completion runs recorded by 'lmclass complete', newest first.

With --summary, runs are totalled per model and the reported token usage is
priced with the current cost table.`,
	Args: cobra.NoArgs,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "number of runs to show (0 for all)")
	historyCmd.Flags().BoolVar(&historySummary, "summary", false, "total runs per model")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "machine-readable output")
}

// resetHistoryFlags resets history command flags for testing.
func resetHistoryFlags() {
	historyLimit = 20
	historySummary = false
	historyJSON = false
	resetChanged(historyCmd)
}

func runHistory(cmd *cobra.Command, _ []string) error {
	h, err := state.Load(historyDir())
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: loading history: %v", err)
	}

	w := cmd.OutOrStdout()
	if h == nil || len(h.Entries) == 0 {
		if historyJSON {
			_, err := fmt.Fprintln(w, "[]")
			return err
		}
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}

	if historySummary {
		cfg, err := config.LoadLayered(".")
		if err != nil {
			return exitError(ExitInvalidArgs, "lmclass: loading config: %v", err)
		}
		s, err := config.Resolve(cfg)
		if err != nil {
			return exitError(ExitInvalidArgs, "lmclass: %v", err)
		}
		return printHistorySummary(cmd, state.Summarize(h, costTable(s)))
	}

	entries := state.Last(h, historyLimit)
	if historyJSON {
		return writeJSON(cmd, entries)
	}

	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		est := ""
		if e.EstimatedCost != nil {
			est = fmt.Sprintf("$%.2f", *e.EstimatedCost)
		}
		rows = append(rows, []string{
			humanize.Time(e.Timestamp),
			e.RunID,
			e.Model,
			humanize.Comma(int64(e.Prompts)),
			strconv.Itoa(e.Calls),
			humanize.Comma(int64(e.Usage.TotalTokens)),
			est,
		})
	}
	_, err = fmt.Fprintln(w, output.RenderTable(
		[]string{"When", "Run", "Model", "Prompts", "Calls", "Tokens", "Estimate"},
		rows,
		[]output.Alignment{output.AlignLeft, output.AlignLeft, output.AlignLeft,
			output.AlignRight, output.AlignRight, output.AlignRight, output.AlignRight},
	))
	return err
}

func printHistorySummary(cmd *cobra.Command, totals []state.ModelTotals) error {
	if historyJSON {
		return writeJSON(cmd, totals)
	}
	rows := make([][]string, 0, len(totals))
	for _, t := range totals {
		spend := "unknown"
		if t.Known {
			spend = fmt.Sprintf("$%.2f", t.Cost)
		}
		rows = append(rows, []string{
			t.Model,
			strconv.Itoa(t.Runs),
			humanize.Comma(int64(t.Prompts)),
			humanize.Comma(int64(t.TotalTokens)),
			spend,
		})
	}
	_, err := fmt.Fprintln(cmd.OutOrStdout(), output.RenderTable(
		[]string{"Model", "Runs", "Prompts", "Tokens", "Spend"},
		rows,
		[]output.Alignment{output.AlignLeft, output.AlignRight, output.AlignRight, output.AlignRight, output.AlignRight},
	))
	return err
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
