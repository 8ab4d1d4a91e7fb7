// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"maps"
	"time"

	"github.com/lmclass/lmclass/internal/classify"
	"github.com/lmclass/lmclass/internal/llm"
	"github.com/lmclass/lmclass/internal/retry"
)

// Settings are the effective values for a run after defaults, config files
// and command-line flags have been applied.
type Settings struct {
	Model       string
	BatchSize   int
	MaxAttempts int
	RetrySleep  time.Duration
	MaxTokens   int
	AskIfOK     bool
	BaseURL     string
	APIKeyEnv   string
	Costs       map[string]float64
}

// Defaults returns the built-in settings.
func Defaults() Settings {
	return Settings{
		Model:       llm.DefaultModel,
		BatchSize:   classify.DefaultBatchSize,
		MaxAttempts: retry.DefaultMaxAttempts,
		RetrySleep:  retry.DefaultSleep,
		MaxTokens:   llm.DefaultMaxTokens,
		APIKeyEnv:   llm.DefaultAPIKeyEnv,
	}
}

// Merge layers override on top of base and returns a new Config.
// Only values set in override replace those in base; cost entries are
// merged per model.
func Merge(base, override *Config) *Config {
	merged := *base
	merged.Costs = maps.Clone(base.Costs)

	if override.Model != "" {
		merged.Model = override.Model
	}
	if override.BatchSize != 0 {
		merged.BatchSize = override.BatchSize
	}
	if override.MaxAttempts != 0 {
		merged.MaxAttempts = override.MaxAttempts
	}
	if override.RetrySleep != "" {
		merged.RetrySleep = override.RetrySleep
	}
	if override.MaxTokens != nil {
		merged.MaxTokens = override.MaxTokens
	}
	if override.AskIfOK != nil {
		merged.AskIfOK = override.AskIfOK
	}
	if override.BaseURL != "" {
		merged.BaseURL = override.BaseURL
	}
	if override.APIKeyEnv != "" {
		merged.APIKeyEnv = override.APIKeyEnv
	}
	if len(override.Costs) > 0 {
		if merged.Costs == nil {
			merged.Costs = make(map[string]float64, len(override.Costs))
		}
		maps.Copy(merged.Costs, override.Costs)
	}

	return &merged
}

// Resolve applies cfg on top of Defaults. The config should already have
// passed Validate.
func Resolve(cfg *Config) (Settings, error) {
	s := Defaults()

	if cfg.Model != "" {
		s.Model = cfg.Model
	}
	if cfg.BatchSize != 0 {
		s.BatchSize = cfg.BatchSize
	}
	if cfg.MaxAttempts != 0 {
		s.MaxAttempts = cfg.MaxAttempts
	}
	if cfg.RetrySleep != "" {
		d, err := time.ParseDuration(cfg.RetrySleep)
		if err != nil {
			return Settings{}, fmt.Errorf("retry_sleep: %w", err)
		}
		s.RetrySleep = d
	}
	if cfg.MaxTokens != nil {
		s.MaxTokens = *cfg.MaxTokens
	}
	if cfg.AskIfOK != nil {
		s.AskIfOK = *cfg.AskIfOK
	}
	if cfg.BaseURL != "" {
		s.BaseURL = cfg.BaseURL
	}
	if cfg.APIKeyEnv != "" {
		s.APIKeyEnv = cfg.APIKeyEnv
	}
	s.Costs = maps.Clone(cfg.Costs)

	return s, nil
}
