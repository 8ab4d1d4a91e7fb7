// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package config

import (
	"fmt"
	"maps"
	"net/url"
	"slices"
	"strings"
	"time"
)

// Validate checks all fields in the config and returns all errors at once.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.BatchSize < 0 {
		errs = append(errs, fmt.Sprintf("batch_size: must be positive, got %d", cfg.BatchSize))
	}

	if cfg.MaxAttempts < 0 {
		errs = append(errs, fmt.Sprintf("max_attempts: must be positive, got %d", cfg.MaxAttempts))
	}

	if cfg.RetrySleep != "" {
		d, err := time.ParseDuration(cfg.RetrySleep)
		switch {
		case err != nil:
			errs = append(errs, fmt.Sprintf("retry_sleep: invalid duration %q", cfg.RetrySleep))
		case d < 0:
			errs = append(errs, fmt.Sprintf("retry_sleep: must be non-negative, got %s", d))
		}
	}

	if cfg.MaxTokens != nil && *cfg.MaxTokens < 0 {
		errs = append(errs, fmt.Sprintf("max_tokens: must be non-negative, got %d", *cfg.MaxTokens))
	}

	if cfg.BaseURL != "" {
		u, err := url.Parse(cfg.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			errs = append(errs, fmt.Sprintf("base_url: must be an http(s) URL, got %q", cfg.BaseURL))
		}
	}

	if cfg.APIKeyEnv != "" && strings.ContainsAny(cfg.APIKeyEnv, "= \t\n") {
		errs = append(errs, fmt.Sprintf("api_key_env: invalid environment variable name %q", cfg.APIKeyEnv))
	}

	for _, model := range slices.Sorted(maps.Keys(cfg.Costs)) {
		if rate := cfg.Costs[model]; rate < 0 {
			errs = append(errs, fmt.Sprintf("costs.%s: must be non-negative, got %g", model, rate))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  %s", strings.Join(errs, "\n  "))
	}
	return nil
}
