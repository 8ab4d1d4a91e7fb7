// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lmclass/lmclass/internal/config"
	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/redact"
)

// runFlags are the flags shared by commands that read config files.
type runFlags struct {
	model       string
	maxTokens   int
	batchSize   int
	maxAttempts int
	retrySleep  time.Duration
	ask         bool
	baseURL     string
	apiKeyEnv   string
}

// registerEstimate adds the flags that affect cost estimation.
func (f *runFlags) registerEstimate(fs *pflag.FlagSet) {
	fs.StringVarP(&f.model, "model", "m", "", "completion model (default from config, else gpt-3.5-turbo-instruct)")
	fs.IntVar(&f.maxTokens, "max-tokens", 0, "tokens to generate per prompt (0 scores prompts only)")
	fs.IntVar(&f.batchSize, "batch-size", 0, "prompts per request (default 20)")
}

// registerRemote adds the estimate flags plus those that control requests.
func (f *runFlags) registerRemote(fs *pflag.FlagSet) {
	f.registerEstimate(fs)
	fs.IntVar(&f.maxAttempts, "max-attempts", 0, "attempts per request on rate limit or outage (default 5)")
	fs.DurationVar(&f.retrySleep, "retry-sleep", 0, "wait between attempts (default 10s)")
	fs.BoolVar(&f.ask, "ask", false, "show the estimated cost and ask before sending requests")
	fs.StringVar(&f.baseURL, "base-url", "", "OpenAI-compatible API base URL")
	fs.StringVar(&f.apiKeyEnv, "api-key-env", "", "environment variable holding the API key (default OPENAI_API_KEY)")
}

func (f *runFlags) reset() {
	*f = runFlags{}
}

// resetChanged clears the Changed mark on every flag of cmd.
func resetChanged(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
	})
}

// resolveSettings layers defaults, the global config, the config in the
// working directory, and the flags that were set on the command line.
func resolveSettings(fs *pflag.FlagSet, f *runFlags) (config.Settings, error) {
	cfg, err := config.LoadLayered(".")
	if err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "lmclass: loading config: %v", err)
	}
	if err := config.Validate(cfg); err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "lmclass: %v", err)
	}
	s, err := config.Resolve(cfg)
	if err != nil {
		return config.Settings{}, exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	if fs.Changed("model") {
		s.Model = f.model
	}
	if fs.Changed("max-tokens") {
		s.MaxTokens = f.maxTokens
	}
	if fs.Changed("batch-size") {
		s.BatchSize = f.batchSize
	}
	if fs.Changed("max-attempts") {
		s.MaxAttempts = f.maxAttempts
	}
	if fs.Changed("retry-sleep") {
		s.RetrySleep = f.retrySleep
	}
	if fs.Changed("ask") {
		s.AskIfOK = f.ask
	}
	if fs.Changed("base-url") {
		s.BaseURL = f.baseURL
	}
	if fs.Changed("api-key-env") {
		s.APIKeyEnv = f.apiKeyEnv
	}

	switch {
	case s.MaxTokens < 0:
		return config.Settings{}, exitError(ExitInvalidArgs, "lmclass: --max-tokens must be non-negative, got %d", s.MaxTokens)
	case s.MaxAttempts < 1:
		return config.Settings{}, exitError(ExitInvalidArgs, "lmclass: --max-attempts must be at least 1, got %d", s.MaxAttempts)
	case s.RetrySleep < 0:
		return config.Settings{}, exitError(ExitInvalidArgs, "lmclass: --retry-sleep must be non-negative, got %s", s.RetrySleep)
	}

	redact.Register(s.APIKeyEnv)
	return s, nil
}

// costTable returns the built-in rates with the configured overrides.
func costTable(s config.Settings) cost.Table {
	return cost.DefaultTable().With(s.Costs)
}
