// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lmclass/lmclass/internal/config"
	"github.com/lmclass/lmclass/internal/output"
)

// modelsCmd lists the models with a known price.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List models with a known price",
	Long: `List the models used for cost estimates and their price in USD per 1000
tokens. Built-in prices can be overridden or extended with the costs section
of the config file.`,
	Args: cobra.NoArgs,
	RunE: runModels,
}

func runModels(cmd *cobra.Command, _ []string) error {
	cfg, err := config.LoadLayered(".")
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: loading config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}
	s, err := config.Resolve(cfg)
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	table := costTable(s)
	configured := color.New(color.FgGreen)

	rows := make([][]string, 0, table.Len())
	for _, model := range table.Models() {
		rate, _ := table.Rate(model)
		source := "built-in"
		if _, ok := s.Costs[model]; ok {
			source = configured.Sprint("config")
		}
		name := model
		if model == s.Model {
			name += " (default)"
		}
		rows = append(rows, []string{name, "$" + strconv.FormatFloat(rate, 'f', -1, 64), source})
	}

	_, err = fmt.Fprintln(cmd.OutOrStdout(), output.RenderTable(
		[]string{"Model", "Per 1K tokens", "Source"},
		rows,
		[]output.Alignment{output.AlignLeft, output.AlignRight, output.AlignLeft},
	))
	return err
}
