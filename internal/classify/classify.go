// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package classify scores prompts against a completion endpoint for text
// classification. It batches inputs, retries transient failures, optionally
// asks the operator to approve the estimated cost, and returns one result
// per input in input order.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lmclass/lmclass/internal/batch"
	"github.com/lmclass/lmclass/internal/confirm"
	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/llm"
	"github.com/lmclass/lmclass/internal/progress"
	"github.com/lmclass/lmclass/internal/retry"
)

// DefaultBatchSize is the largest number of prompts the endpoint accepts per call.
const DefaultBatchSize = 20

var (
	// ErrUserCanceled is returned when the operator declines the cost prompt.
	ErrUserCanceled = errors.New("classify: user canceled")

	// ErrChoiceMismatch is returned when a response does not carry the
	// expected number of choices for its chunk.
	ErrChoiceMismatch = errors.New("classify: choice count does not match prompts")
)

// Request describes one classification run.
type Request struct {
	// Model is the completion model identifier.
	Model string

	// MaxTokens is the completion length per prompt. The default of zero
	// scores prompts without generating text.
	MaxTokens int

	// Params carries optional provider parameters such as Echo and Logprobs.
	Params llm.Params

	// AskIfOK estimates the cost and asks for confirmation before any call.
	AskIfOK bool
}

// Result is the outcome of a run.
type Result struct {
	// Choices holds Params.ChoicesPerPrompt() choices per input, in input
	// order. Index is the position in Choices.
	Choices []llm.Choice

	// Usage sums the token usage reported for every chunk.
	Usage llm.Usage

	// Calls is the number of successful remote calls.
	Calls int

	// Estimate is set when the cost gate ran.
	Estimate *cost.Estimate

	RunID string
}

// Client runs classification requests against a Completer.
type Client struct {
	completer llm.Completer
	batchSize int
	retry     retry.Policy
	confirmer confirm.Confirmer
	tokenizer cost.Tokenizer
	costs     cost.Table

	// defaultTok lazily loads the GPT-2 tokenizer when none was given.
	defaultTok func() (*cost.BPETokenizer, error)
	progress  progress.Factory
}

// Option configures a Client.
type Option func(*Client)

// WithBatchSize sets the number of prompts per remote call.
func WithBatchSize(n int) Option {
	return func(c *Client) {
		c.batchSize = n
	}
}

// WithRetry sets the attempt ceiling and the fixed delay between attempts.
func WithRetry(maxAttempts int, sleep time.Duration) Option {
	return func(c *Client) {
		c.retry.MaxAttempts = maxAttempts
		c.retry.Sleep = sleep
	}
}

// WithSleeper overrides how retry sleeps are performed (useful for tests).
func WithSleeper(s retry.Sleeper) Option {
	return func(c *Client) {
		c.retry.Sleeper = s
	}
}

// WithConfirmer sets who approves the cost estimate.
func WithConfirmer(cf confirm.Confirmer) Option {
	return func(c *Client) {
		c.confirmer = cf
	}
}

// WithTokenizer sets the tokenizer used for cost estimates.
func WithTokenizer(t cost.Tokenizer) Option {
	return func(c *Client) {
		c.tokenizer = t
	}
}

// WithCostTable sets the per-model rates used for cost estimates.
func WithCostTable(t cost.Table) Option {
	return func(c *Client) {
		c.costs = t
	}
}

// WithProgress sets the progress reporter factory.
func WithProgress(f progress.Factory) Option {
	return func(c *Client) {
		c.progress = f
	}
}

// New creates a Client. By default it batches 20 prompts per call, makes up
// to 5 attempts 10 seconds apart, asks on stdin/stderr, estimates with the
// GPT-2 tokenizer and the default cost table, and reports no progress.
func New(completer llm.Completer, opts ...Option) *Client {
	c := &Client{
		completer: completer,
		batchSize: DefaultBatchSize,
		retry:     retry.DefaultPolicy(llm.IsTransient),
		confirmer: &confirm.Prompt{In: os.Stdin, Out: os.Stderr},
		costs:     cost.DefaultTable(),
		defaultTok: sync.OnceValues(func() (*cost.BPETokenizer, error) {
			return cost.NewBPETokenizer(cost.GPT2Encoding)
		}),
		progress: func(int) progress.Reporter {
			return progress.Nop{}
		},
	}
	for _, o := range opts {
		o(c)
	}
	c.retry.Transient = llm.IsTransient
	c.retry.Op = "completion"
	return c
}

// CompleteText classifies a single text. It is the same as calling Complete
// with a one-element slice.
func (c *Client) CompleteText(ctx context.Context, text string, req Request) (*Result, error) {
	return c.Complete(ctx, []string{text}, req)
}

// Complete sends texts to the endpoint in chunks and returns the choices in
// input order. Either every chunk succeeds or an error is returned; no
// partial results are produced.
func (c *Client) Complete(ctx context.Context, texts []string, req Request) (*Result, error) {
	res := &Result{RunID: uuid.NewString()}
	log := slog.With("run_id", res.RunID)

	chunks, err := batch.Constant(texts, c.batchSize)
	if err != nil {
		return nil, err
	}
	if err := req.Params.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", batch.ErrInvalidArgument, err)
	}

	if req.AskIfOK {
		est, err := c.Gate(texts, req.Model, req.MaxTokens)
		if err != nil {
			return nil, err
		}
		res.Estimate = &est
	}

	if len(texts) == 0 {
		return res, nil
	}

	perPrompt := req.Params.ChoicesPerPrompt()
	log.Info("completing prompts",
		"prompts", len(texts), "chunks", batch.Count(len(texts), c.batchSize),
		"model", req.Model, "max_tokens", req.MaxTokens)

	bar := c.progress(len(texts))
	defer func() {
		if err := bar.Finish(); err != nil {
			log.Debug("progress finish failed", "error", err)
		}
	}()

	res.Choices = make([]llm.Choice, 0, len(texts)*perPrompt)
	offset := 0
	for chunk := range chunks {
		call := llm.Request{
			Prompts:   chunk,
			Model:     req.Model,
			MaxTokens: req.MaxTokens,
			Params:    req.Params,
		}
		resp, err := retry.Do(ctx, c.retry, func(ctx context.Context) (*llm.Response, error) {
			return c.completer.Complete(ctx, call)
		})
		if err != nil {
			log.Error("chunk failed", "offset", offset, "size", len(chunk), "error", err)
			return nil, err
		}

		choices, err := alignChoices(resp.Choices, len(chunk), perPrompt, offset)
		if err != nil {
			return nil, err
		}
		res.Choices = append(res.Choices, choices...)
		res.Usage.Add(resp.Usage)
		res.Calls++
		offset += len(chunk)

		if err := bar.Add(len(chunk)); err != nil {
			log.Debug("progress update failed", "error", err)
		}
	}

	log.Info("completion finished", "calls", res.Calls, "choices", len(res.Choices),
		"total_tokens", res.Usage.TotalTokens)
	return res, nil
}

// Gate estimates the cost of completing texts and asks the configured
// Confirmer to approve it. It returns ErrUserCanceled if the answer is no.
func (c *Client) Gate(texts []string, model string, maxTokens int) (cost.Estimate, error) {
	est, err := c.Estimate(texts, model, maxTokens)
	if err != nil {
		return cost.Estimate{}, err
	}

	question := fmt.Sprintf("This API call will cost you about %s. Proceed?", est)
	ok, err := c.confirmer.Confirm(question)
	if err != nil {
		return est, fmt.Errorf("classify: confirm cost: %w", err)
	}
	if !ok {
		return est, ErrUserCanceled
	}
	return est, nil
}

// Estimate computes the cost estimate without asking for confirmation.
func (c *Client) Estimate(texts []string, model string, maxTokens int) (cost.Estimate, error) {
	tok := c.tokenizer
	if tok == nil {
		bpe, err := c.defaultTok()
		if err != nil {
			return cost.Estimate{}, err
		}
		tok = bpe
	}
	return cost.Compute(tok, c.costs, model, texts, maxTokens)
}
