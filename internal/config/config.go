// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package config handles .lmclass.yaml and .lmclass.toml configuration files.
package config

// Config represents the contents of a config file. Zero values mean "not
// set" so that layered files only override what they name.
type Config struct {
	Model       string `yaml:"model,omitempty" toml:"model,omitempty"`
	BatchSize   int    `yaml:"batch_size,omitempty" toml:"batch_size,omitempty"`
	MaxAttempts int    `yaml:"max_attempts,omitempty" toml:"max_attempts,omitempty"`

	// RetrySleep is a Go duration string such as "10s".
	RetrySleep string `yaml:"retry_sleep,omitempty" toml:"retry_sleep,omitempty"`

	// MaxTokens is a pointer because an explicit 0 must override a
	// non-zero value from a lower layer.
	MaxTokens *int  `yaml:"max_tokens,omitempty" toml:"max_tokens,omitempty"`
	AskIfOK   *bool `yaml:"ask_if_ok,omitempty" toml:"ask_if_ok,omitempty"`

	BaseURL   string `yaml:"base_url,omitempty" toml:"base_url,omitempty"`
	APIKeyEnv string `yaml:"api_key_env,omitempty" toml:"api_key_env,omitempty"`

	// Costs adds or overrides per-model prices in USD per 1000 tokens.
	Costs map[string]float64 `yaml:"costs,omitempty" toml:"costs,omitempty"`
}

// File names looked up in the working directory. YAML wins if both exist.
const (
	FileName     = ".lmclass.yaml"
	TOMLFileName = ".lmclass.toml"
)
