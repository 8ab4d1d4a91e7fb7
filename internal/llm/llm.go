// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package llm provides the completion client interface used by lmclass and
// its OpenAI implementation.
//
// Requests default to MaxTokens 0: the endpoint generates nothing and the
// caller reads log-probabilities of the prompt itself (Echo plus Logprobs).
// This is the scoring mode classification relies on. Set MaxTokens to
// generate text.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// DefaultMaxTokens is the number of tokens generated per prompt by default.
const DefaultMaxTokens = 0

// Completer abstracts a batched text-completion endpoint.
type Completer interface {
	// Complete sends every prompt in req in a single call and returns one
	// or more choices per prompt. Implementations must respect context
	// cancellation and deadlines.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// Request describes a single batched completion call.
type Request struct {
	// Prompts is the batch of prompt strings.
	Prompts []string

	// Model overrides the provider's default model. If empty, the provider
	// uses its configured default.
	Model string

	// MaxTokens limits the completion length. Zero is sent as-is.
	MaxTokens int

	// Params carries optional sampling and scoring parameters.
	Params Params
}

// Params holds optional provider parameters. Nil pointers and zero values
// are omitted from the request.
type Params struct {
	Temperature *float64
	TopP        *float64

	// Logprobs requests the log-probabilities of the top N tokens.
	Logprobs *int

	// Echo returns the prompt along with the completion.
	Echo bool

	// N is the number of choices per prompt. Zero means one.
	N int

	Stop []string

	// Extra holds arbitrary provider-specific fields set on the request body.
	// It must not name a reserved field; see CheckExtraKey.
	Extra map[string]any
}

// ErrReservedParam is returned when Extra names a field the client sets
// itself.
var ErrReservedParam = errors.New("reserved request field")

// reservedParams are request fields whose values chunking and result
// alignment depend on.
var reservedParams = map[string]bool{
	"model":      true,
	"prompt":     true,
	"max_tokens": true,
	"n":          true,
	"stream":     true,
}

// CheckExtraKey returns ErrReservedParam if key may not be set through
// Params.Extra.
func CheckExtraKey(key string) error {
	if reservedParams[key] {
		return fmt.Errorf("%w: %q", ErrReservedParam, key)
	}
	return nil
}

// Validate checks that Extra does not override reserved fields.
func (p Params) Validate() error {
	for key := range p.Extra {
		if err := CheckExtraKey(key); err != nil {
			return err
		}
	}
	return nil
}

// ChoicesPerPrompt returns the number of choices the endpoint returns per prompt.
func (p Params) ChoicesPerPrompt() int {
	if p.N <= 0 {
		return 1
	}
	return p.N
}

// Response holds the result of a completion call.
type Response struct {
	// Choices holds the choices for every prompt in the request. Index
	// identifies the prompt (and choice number when N > 1).
	Choices []Choice

	// Model is the model that served the request.
	Model string

	Usage Usage
}

// Choice is the endpoint's result for a single prompt.
type Choice struct {
	Text         string    `json:"text"`
	Index        int       `json:"index"`
	FinishReason string    `json:"finish_reason,omitempty"`
	Logprobs     *Logprobs `json:"logprobs,omitempty"`
}

// Logprobs holds per-token log-probabilities for a choice.
type Logprobs struct {
	Tokens        []string             `json:"tokens"`
	TokenLogprobs []float64            `json:"token_logprobs"`
	TopLogprobs   []map[string]float64 `json:"top_logprobs,omitempty"`
	TextOffset    []int                `json:"text_offset,omitempty"`
}

// Usage tracks token counts reported by the endpoint.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// Add accumulates other into u.
func (u *Usage) Add(other Usage) {
	u.PromptTokens += other.PromptTokens
	u.CompletionTokens += other.CompletionTokens
	u.TotalTokens += other.TotalTokens
}
