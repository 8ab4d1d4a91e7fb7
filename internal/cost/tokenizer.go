// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package cost

import (
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	tiktoken_loader "github.com/pkoukk/tiktoken-go-loader"
)

// Tokenizer converts texts to token-id sequences.
type Tokenizer interface {
	Encode(texts []string) ([][]int, error)
}

// TokenizerFunc adapts a per-text function to Tokenizer.
type TokenizerFunc func(text string) []int

// Encode applies f to every text.
func (f TokenizerFunc) Encode(texts []string) ([][]int, error) {
	out := make([][]int, len(texts))
	for i, t := range texts {
		out[i] = f(t)
	}
	return out, nil
}

// GPT2Encoding is the BPE used by the legacy completion models.
const GPT2Encoding = "r50k_base"

var setLoaderOnce sync.Once

// BPETokenizer encodes text with a tiktoken byte-pair encoding. The BPE
// ranks are embedded in the binary so no network access is needed.
type BPETokenizer struct {
	enc *tiktoken.Tiktoken
}

// NewBPETokenizer loads the named encoding, e.g. GPT2Encoding.
func NewBPETokenizer(encoding string) (*BPETokenizer, error) {
	setLoaderOnce.Do(func() {
		tiktoken.SetBpeLoader(tiktoken_loader.NewOfflineLoader())
	})
	enc, err := tiktoken.GetEncoding(encoding)
	if err != nil {
		return nil, fmt.Errorf("cost: load encoding %q: %w", encoding, err)
	}
	return &BPETokenizer{enc: enc}, nil
}

// Encode returns the token ids of each text. No special tokens are allowed,
// so text such as "<|endoftext|>" is encoded as ordinary characters.
func (b *BPETokenizer) Encode(texts []string) ([][]int, error) {
	out := make([][]int, len(texts))
	for i, t := range texts {
		out[i] = b.enc.Encode(t, nil, nil)
	}
	return out, nil
}
