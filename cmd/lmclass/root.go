// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"io/fs"
	"log/slog"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	lmlog "github.com/lmclass/lmclass/internal/log"
)

// Global flag values.
var (
	verbose   bool
	quiet     bool
	noColor   bool
	logFormat string
	envFile   string
)

// rootCmd is the base command for lmclass.
var rootCmd = &cobra.Command{
	Use:   "lmclass",
	Short: "Classify text by scoring prompts against a completion model",
	Long: `lmclass sends batches of prompts to an OpenAI-compatible completions
endpoint and returns one result per prompt, in order. By default no text is
generated (max tokens 0), which scores the prompts themselves; combine with
--echo and --logprobs to read per-token log probabilities.

Transient failures (rate limits, service unavailable) are retried. With --ask
the estimated cost is shown and must be confirmed before any request is sent.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		if err := lmlog.Setup(verbose, quiet, logFormat); err != nil {
			return exitError(ExitInvalidArgs, "lmclass: %v", err)
		}
		if noColor {
			color.NoColor = true
		}
		return loadEnvFile(envFile)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "disable colored output")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", lmlog.FormatText, "log format (text, json)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file of KEY=value pairs loaded into the environment")

	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(estimateCmd)
	rootCmd.AddCommand(modelsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadEnvFile loads path with godotenv. Variables already set in the
// environment win. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return exitError(ExitInvalidArgs, "lmclass: loading %s: %v", path, err)
	}
	slog.Debug("loaded env file", "path", path)
	return nil
}
