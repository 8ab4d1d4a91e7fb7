// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package classify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lmclass/lmclass/internal/batch"
	"github.com/lmclass/lmclass/internal/confirm"
	"github.com/lmclass/lmclass/internal/cost"
	"github.com/lmclass/lmclass/internal/llm"
	"github.com/lmclass/lmclass/internal/progress"
)

// wordTokenizer counts whitespace-separated words as tokens.
var wordTokenizer = cost.TokenizerFunc(func(text string) []int {
	return make([]int, len(strings.Fields(text)))
})

type sleepCounter struct {
	n int
}

func (s *sleepCounter) sleep(context.Context, time.Duration) error {
	s.n++
	return nil
}

// recordingConfirmer answers with a fixed value and records the questions.
type recordingConfirmer struct {
	answer    bool
	err       error
	questions []string
}

func (r *recordingConfirmer) Confirm(q string) (bool, error) {
	r.questions = append(r.questions, q)
	return r.answer, r.err
}

// recordingProgress records Add increments.
type recordingProgress struct {
	total    int
	adds     []int
	finished bool
}

func (r *recordingProgress) Add(n int) error { r.adds = append(r.adds, n); return nil }
func (r *recordingProgress) Finish() error   { r.finished = true; return nil }

func texts(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("text %d", i)
	}
	return out
}

func newTestClient(m llm.Completer, s *sleepCounter, opts ...Option) *Client {
	base := []Option{
		WithSleeper(s.sleep),
		WithTokenizer(wordTokenizer),
		WithConfirmer(confirm.Always(true)),
	}
	return New(m, append(base, opts...)...)
}

func TestComplete_FortyFiveInputs(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})

	in := texts(45)
	res, err := c.Complete(context.Background(), in, Request{Model: "text-ada-001"})
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 3)
	assert.Len(t, calls[0].Prompts, 20)
	assert.Len(t, calls[1].Prompts, 20)
	assert.Len(t, calls[2].Prompts, 5)
	assert.Equal(t, 3, res.Calls)

	require.Len(t, res.Choices, 45)
	for i, ch := range res.Choices {
		assert.Equal(t, in[i]+"#0", ch.Text, "choice %d out of order", i)
		assert.Equal(t, i, ch.Index)
	}
	assert.NotEmpty(t, res.RunID)
	assert.Nil(t, res.Estimate)
}

func TestComplete_CallCountIsCeilNOverBatch(t *testing.T) {
	for _, n := range []int{1, 19, 20, 21, 40, 41, 100} {
		m := llm.NewMockCompleter()
		c := newTestClient(m, &sleepCounter{})

		res, err := c.Complete(context.Background(), texts(n), Request{})
		require.NoError(t, err)
		assert.Len(t, m.Calls(), batch.Count(n, DefaultBatchSize), "n=%d", n)
		assert.Len(t, res.Choices, n)
	}
}

func TestComplete_ForwardsRequestFields(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})
	logprobs := 1

	_, err := c.Complete(context.Background(), texts(3), Request{
		Model:     "text-curie-001",
		MaxTokens: 7,
		Params:    llm.Params{Echo: true, Logprobs: &logprobs},
	})
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "text-curie-001", calls[0].Model)
	assert.Equal(t, 7, calls[0].MaxTokens)
	assert.True(t, calls[0].Params.Echo)
	require.NotNil(t, calls[0].Params.Logprobs)
	assert.Equal(t, 1, *calls[0].Params.Logprobs)
}

func TestComplete_DefaultMaxTokensIsZero(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})

	_, err := c.Complete(context.Background(), texts(1), Request{Model: "text-ada-001"})
	require.NoError(t, err)
	assert.Equal(t, 0, m.Calls()[0].MaxTokens)
}

func TestCompleteText_NotSplitIntoCharacters(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})

	res, err := c.CompleteText(context.Background(), "hello", Request{})
	require.NoError(t, err)

	calls := m.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{"hello"}, calls[0].Prompts)
	require.Len(t, res.Choices, 1)
	assert.Equal(t, "hello#0", res.Choices[0].Text)
}

func TestComplete_EmptyInput(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})

	res, err := c.Complete(context.Background(), nil, Request{})
	require.NoError(t, err)
	assert.Empty(t, res.Choices)
	assert.Zero(t, res.Calls)
	assert.Empty(t, m.Calls())
}

func TestComplete_RetriesTransientChunk(t *testing.T) {
	rateLimited := fmt.Errorf("openai: completion failed: %w", llm.ErrRateLimited)
	m := llm.NewMockCompleter(
		llm.MockResponse{},
		llm.MockResponse{Err: rateLimited},
		llm.MockResponse{Err: rateLimited},
		llm.MockResponse{},
	)
	s := &sleepCounter{}
	c := newTestClient(m, s)

	in := texts(45)
	res, err := c.Complete(context.Background(), in, Request{})
	require.NoError(t, err)

	assert.Equal(t, 2, s.n)
	calls := m.Calls()
	require.Len(t, calls, 5)
	assert.Equal(t, calls[1].Prompts, calls[2].Prompts)
	assert.Equal(t, calls[1].Prompts, calls[3].Prompts)
	assert.Equal(t, 3, res.Calls)
	require.Len(t, res.Choices, 45)
	assert.Equal(t, in[44]+"#0", res.Choices[44].Text)
}

func TestComplete_TransientExhaustionReturnsLastError(t *testing.T) {
	unavailable := fmt.Errorf("openai: completion failed: %w", llm.ErrServiceUnavailable)
	m := llm.NewMockCompleter(llm.MockResponse{Err: unavailable})
	s := &sleepCounter{}
	c := newTestClient(m, s, WithRetry(3, time.Second))

	res, err := c.Complete(context.Background(), texts(45), Request{})
	assert.Nil(t, res, "no partial results on failure")
	assert.Same(t, unavailable, err)
	assert.Len(t, m.Calls(), 3)
	assert.Equal(t, 2, s.n)
}

func TestComplete_PermanentErrorStopsImmediately(t *testing.T) {
	permanent := errors.New("openai: completion failed: invalid model")
	m := llm.NewMockCompleter(llm.MockResponse{}, llm.MockResponse{Err: permanent})
	s := &sleepCounter{}
	c := newTestClient(m, s)

	res, err := c.Complete(context.Background(), texts(45), Request{})
	assert.Nil(t, res)
	assert.Same(t, permanent, err)
	assert.Len(t, m.Calls(), 2, "third chunk must not be sent")
	assert.Zero(t, s.n)
}

func TestComplete_InvalidBatchSize(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{}, WithBatchSize(0))

	_, err := c.Complete(context.Background(), texts(3), Request{})
	require.ErrorIs(t, err, batch.ErrInvalidArgument)
	assert.Empty(t, m.Calls())
}

func TestComplete_ReservedParamRejected(t *testing.T) {
	m := llm.NewMockCompleter()
	rc := &recordingConfirmer{answer: true}
	c := newTestClient(m, &sleepCounter{}, WithConfirmer(rc))

	_, err := c.Complete(context.Background(), texts(3), Request{
		AskIfOK: true,
		Params:  llm.Params{Extra: map[string]any{"n": 3}},
	})
	require.ErrorIs(t, err, batch.ErrInvalidArgument)
	assert.ErrorIs(t, err, llm.ErrReservedParam)
	assert.Empty(t, rc.questions)
	assert.Empty(t, m.Calls())
}

func TestComplete_CustomBatchSize(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{}, WithBatchSize(2))

	res, err := c.Complete(context.Background(), texts(5), Request{})
	require.NoError(t, err)
	assert.Len(t, m.Calls(), 3)
	assert.Len(t, res.Choices, 5)
}

func TestComplete_ChoiceCountMismatch(t *testing.T) {
	m := llm.NewMockCompleter(llm.MockResponse{Choices: []llm.Choice{{Text: "only one"}}})
	c := newTestClient(m, &sleepCounter{})

	res, err := c.Complete(context.Background(), texts(3), Request{})
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrChoiceMismatch)
	assert.Contains(t, err.Error(), "got 1 choices for 3 prompts")
}

func TestComplete_MultipleChoicesPerPrompt(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{}, WithBatchSize(2))

	in := texts(3)
	res, err := c.Complete(context.Background(), in, Request{Params: llm.Params{N: 2}})
	require.NoError(t, err)
	require.Len(t, res.Choices, 6)
	assert.Equal(t, in[0]+"#0", res.Choices[0].Text)
	assert.Equal(t, in[0]+"#1", res.Choices[1].Text)
	assert.Equal(t, in[2]+"#0", res.Choices[4].Text)
	assert.Equal(t, 5, res.Choices[5].Index)
}

func TestComplete_UsageSummed(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})

	res, err := c.Complete(context.Background(), texts(45), Request{})
	require.NoError(t, err)
	assert.Equal(t, 450, res.Usage.PromptTokens)
}

func TestComplete_ProgressIncrements(t *testing.T) {
	m := llm.NewMockCompleter()
	rp := &recordingProgress{}
	c := newTestClient(m, &sleepCounter{}, WithProgress(func(total int) progress.Reporter {
		rp.total = total
		return rp
	}))

	_, err := c.Complete(context.Background(), texts(45), Request{})
	require.NoError(t, err)
	assert.Equal(t, 45, rp.total)
	assert.Equal(t, []int{20, 20, 5}, rp.adds)
	assert.True(t, rp.finished)
}

func TestComplete_ConfirmAccepted(t *testing.T) {
	m := llm.NewMockCompleter()
	rc := &recordingConfirmer{answer: true}
	c := newTestClient(m, &sleepCounter{}, WithConfirmer(rc))

	res, err := c.Complete(context.Background(), []string{"a b", "c"}, Request{
		Model: "text-davinci-003", MaxTokens: 10, AskIfOK: true,
	})
	require.NoError(t, err)
	require.Len(t, rc.questions, 1)
	assert.Equal(t, "This API call will cost you about $0.00 (23 tokens). Proceed?", rc.questions[0])
	require.NotNil(t, res.Estimate)
	assert.Equal(t, 3, res.Estimate.PromptTokens)
	assert.Equal(t, 20, res.Estimate.CompletionTokens)
	assert.Len(t, m.Calls(), 1)
}

func TestComplete_ConfirmDeclinedMakesNoCalls(t *testing.T) {
	m := llm.NewMockCompleter()
	rc := &recordingConfirmer{answer: false}
	c := newTestClient(m, &sleepCounter{}, WithConfirmer(rc))

	res, err := c.Complete(context.Background(), texts(45), Request{Model: "text-ada-001", AskIfOK: true})
	assert.Nil(t, res)
	require.ErrorIs(t, err, ErrUserCanceled)
	assert.Empty(t, m.Calls())
}

func TestComplete_ConfirmError(t *testing.T) {
	m := llm.NewMockCompleter()
	rc := &recordingConfirmer{err: errors.New("stdin closed")}
	c := newTestClient(m, &sleepCounter{}, WithConfirmer(rc))

	_, err := c.Complete(context.Background(), texts(2), Request{AskIfOK: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "stdin closed")
	assert.NotErrorIs(t, err, ErrUserCanceled)
	assert.Empty(t, m.Calls())
}

func TestComplete_UnknownModelCost(t *testing.T) {
	rc := &recordingConfirmer{answer: true}
	c := newTestClient(llm.NewMockCompleter(), &sleepCounter{}, WithConfirmer(rc))

	_, err := c.Complete(context.Background(), []string{"a"}, Request{Model: "mystery", AskIfOK: true})
	require.NoError(t, err)
	assert.Contains(t, rc.questions[0], "$unknown (1 tokens)")
}

func TestComplete_CostTableOverride(t *testing.T) {
	rc := &recordingConfirmer{answer: true}
	table := cost.NewTable(map[string]float64{"custom": 1000})
	c := newTestClient(llm.NewMockCompleter(), &sleepCounter{}, WithConfirmer(rc), WithCostTable(table))

	_, err := c.Complete(context.Background(), []string{"a b c"}, Request{Model: "custom", AskIfOK: true})
	require.NoError(t, err)
	assert.Contains(t, rc.questions[0], "$3.00 (3 tokens)")
}

func TestComplete_CancelledContext(t *testing.T) {
	m := llm.NewMockCompleter()
	c := newTestClient(m, &sleepCounter{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := c.Complete(ctx, texts(3), Request{})
	assert.Nil(t, res)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimate_ConcurrentDefaultTokenizer(t *testing.T) {
	c := New(llm.NewMockCompleter())

	const workers = 4
	totals := make([]int, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			est, err := c.Estimate([]string{"hello world"}, "text-ada-001", 0)
			totals[i], errs[i] = est.TotalTokens(), err
		}()
	}
	wg.Wait()

	for i := range workers {
		require.NoError(t, errs[i])
		assert.Equal(t, 2, totals[i])
	}
	assert.Nil(t, c.tokenizer, "Estimate must not replace the configured tokenizer")
}

func TestEstimate_NoConfirmation(t *testing.T) {
	rc := &recordingConfirmer{answer: false}
	c := newTestClient(llm.NewMockCompleter(), &sleepCounter{}, WithConfirmer(rc))

	est, err := c.Estimate([]string{"one two", "three"}, "text-ada-001", 0)
	require.NoError(t, err)
	assert.Equal(t, 3, est.TotalTokens())
	assert.Empty(t, rc.questions)
}
