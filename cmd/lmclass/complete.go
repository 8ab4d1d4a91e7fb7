// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lmclass/lmclass/internal/classify"
	"github.com/lmclass/lmclass/internal/config"
	"github.com/lmclass/lmclass/internal/confirm"
	"github.com/lmclass/lmclass/internal/llm"
	"github.com/lmclass/lmclass/internal/progress"
	"github.com/lmclass/lmclass/internal/state"
)

// Complete-specific flag values.
var (
	completeRun         runFlags
	completeInput       inputFlags
	completeOutput      string
	completeFormat      string
	completeYes         bool
	completeEcho        bool
	completeLogprobs    int
	completeTemperature float64
	completeTopP        float64
	completeN           int
	completeStop        []string
	completeParams      []string
	completeNoHistory   bool
)

// newCompleter builds the completion client. Tests replace it.
var newCompleter = func(s config.Settings) (llm.Completer, error) {
	return llm.NewOpenAIProvider(
		llm.WithModel(s.Model),
		llm.WithAPIKeyEnv(s.APIKeyEnv),
		llm.WithBaseURL(s.BaseURL),
	)
}

// completeCmd sends prompts to the completion endpoint.
var completeCmd = &cobra.Command{
	Use:   "complete [file]",
	Short: "Send prompts to the completion model",
	Long: `Send prompts to the completion model in batches and print one result
per prompt, in input order.

Prompts are read one per line from the file argument, or from stdin when no
file (or "-") is given. Use --json-input for a JSON array of strings, or
--text for prompts on the command line.

Examples:
  lmclass complete prompts.txt --echo --logprobs 0
  lmclass complete --text "Review: great movie. Sentiment:" --max-tokens 1
  lmclass complete prompts.json --json-input --ask --format table`,
	Args: cobra.MaximumNArgs(1),
	RunE: runComplete,
}

func init() {
	completeRun.registerRemote(completeCmd.Flags())
	completeInput.register(completeCmd)
	completeCmd.Flags().StringVarP(&completeOutput, "output", "o", "", "output file path (default: stdout)")
	completeCmd.Flags().StringVarP(&completeFormat, "format", "f", defaultFormat, formatHelp())
	completeCmd.Flags().BoolVarP(&completeYes, "yes", "y", false, "answer yes to the cost prompt")
	completeCmd.Flags().BoolVar(&completeEcho, "echo", false, "echo the prompt in each completion")
	completeCmd.Flags().IntVar(&completeLogprobs, "logprobs", 0, "return log-probabilities of the top N tokens")
	completeCmd.Flags().Float64Var(&completeTemperature, "temperature", 0, "sampling temperature")
	completeCmd.Flags().Float64Var(&completeTopP, "top-p", 0, "nucleus sampling probability mass")
	completeCmd.Flags().IntVar(&completeN, "n", 1, "completions per prompt")
	completeCmd.Flags().StringArrayVar(&completeStop, "stop", nil, "stop sequence (repeatable)")
	completeCmd.Flags().StringArrayVar(&completeParams, "param", nil, "extra request field as key=value; JSON values are decoded (repeatable)")
	completeCmd.Flags().BoolVar(&completeNoHistory, "no-history", false, "do not record this run in the run history")
}

// resetCompleteFlags resets complete command flags for testing.
func resetCompleteFlags() {
	completeRun.reset()
	completeInput = inputFlags{}
	completeOutput = ""
	completeFormat = defaultFormat
	completeYes = false
	completeEcho = false
	completeLogprobs = 0
	completeTemperature = 0
	completeTopP = 0
	completeN = 1
	completeStop = nil
	completeParams = nil
	completeNoHistory = false
	resetChanged(completeCmd)
}

func runComplete(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()

	s, err := resolveSettings(flags, &completeRun)
	if err != nil {
		return err
	}

	params, err := completeRequestParams(flags)
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	if err := validateFormat(completeFormat); err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	src, err := readPrompts(cmd, args, &completeInput)
	if err != nil {
		return err
	}

	var confirmer confirm.Confirmer = &confirm.Prompt{In: cmd.InOrStdin(), Out: cmd.ErrOrStderr()}
	switch {
	case completeYes:
		confirmer = confirm.Always(true)
	case s.AskIfOK && src.stdin:
		return exitError(ExitInvalidArgs, "lmclass: --ask cannot read an answer while prompts come from stdin; pass a file or --yes")
	}

	completer, err := newCompleter(s)
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	reporter := progress.New(cmd.ErrOrStderr(), "completing")
	if quiet {
		reporter = func(int) progress.Reporter { return progress.Nop{} }
	}

	opts := []classify.Option{
		classify.WithBatchSize(s.BatchSize),
		classify.WithRetry(s.MaxAttempts, s.RetrySleep),
		classify.WithConfirmer(confirmer),
		classify.WithCostTable(costTable(s)),
		classify.WithProgress(reporter),
	}
	if s.AskIfOK {
		tok, err := newTokenizer()
		if err != nil {
			return exitError(ExitInvalidArgs, "lmclass: %v", err)
		}
		opts = append(opts, classify.WithTokenizer(tok))
	}
	client := classify.New(completer, opts...)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	res, err := client.Complete(ctx, src.prompts, classify.Request{
		Model:     s.Model,
		MaxTokens: s.MaxTokens,
		Params:    params,
		AskIfOK:   s.AskIfOK,
	})
	if err != nil {
		return classifyExit(err)
	}

	data, err := renderResult(completeFormat, s.Model, src.prompts, res)
	if err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}
	if err := writeOutput(cmd, completeOutput, data); err != nil {
		return exitError(ExitInvalidArgs, "lmclass: %v", err)
	}

	if !completeNoHistory {
		if err := state.Record(historyDir(), state.BuildEntry(s.Model, len(src.prompts), res)); err != nil {
			slog.Warn("could not record run history", "error", err)
		}
	}

	slog.Debug("wrote results", "run_id", res.RunID, "choices", len(res.Choices), "output", completeOutput)
	return nil
}

// completeRequestParams builds provider parameters from the flags that were
// set. Unset flags are left to the endpoint's defaults.
func completeRequestParams(flags *pflag.FlagSet) (llm.Params, error) {
	p := llm.Params{
		Echo: completeEcho,
		Stop: completeStop,
	}
	if flags.Changed("n") {
		if completeN < 1 {
			return llm.Params{}, fmt.Errorf("--n must be at least 1, got %d", completeN)
		}
		p.N = completeN
	}
	if flags.Changed("logprobs") {
		if completeLogprobs < 0 {
			return llm.Params{}, fmt.Errorf("--logprobs must be non-negative, got %d", completeLogprobs)
		}
		v := completeLogprobs
		p.Logprobs = &v
	}
	if flags.Changed("temperature") {
		v := completeTemperature
		p.Temperature = &v
	}
	if flags.Changed("top-p") {
		v := completeTopP
		p.TopP = &v
	}

	extra, err := parseParams(completeParams)
	if err != nil {
		return llm.Params{}, err
	}
	p.Extra = extra
	return p, nil
}

// parseParams turns key=value pairs into request fields. Values that parse
// as JSON are decoded, others are kept as strings. Fields that chunking
// depends on, such as prompt and n, are rejected.
func parseParams(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("--param %q: expected key=value", pair)
		}
		if err := llm.CheckExtraKey(key); err != nil {
			return nil, fmt.Errorf("--param %q: %w; use the dedicated flag", pair, err)
		}
		var v any
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			v = raw
		}
		out[key] = v
	}
	return out, nil
}
