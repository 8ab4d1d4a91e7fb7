// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package redact provides utilities to strip sensitive values from strings
// before they appear in output, logs, or error messages.
package redact

import (
	"os"
	"slices"
	"strings"
	"sync"
)

// sensitiveEnvVars lists environment variable names whose values must never
// appear in output. Register adds the variable named by api_key_env.
var sensitiveEnvVars = []string{
	"OPENAI_API_KEY",
	"OPENAI_ORG_ID",
	"OPENAI_PROJECT_ID",
	"AZURE_OPENAI_API_KEY",
}

var (
	mu            sync.Mutex
	cachedSecrets []string
	cacheOnce     sync.Once
)

func loadSecrets() {
	for _, envVar := range sensitiveEnvVars {
		val := os.Getenv(envVar)
		if val != "" && len(val) >= 4 {
			cachedSecrets = append(cachedSecrets, val)
		}
	}
}

// Register adds environment variable names whose values must be redacted.
// Names already known are ignored.
func Register(names ...string) {
	mu.Lock()
	defer mu.Unlock()
	for _, n := range names {
		if n != "" && !slices.Contains(sensitiveEnvVars, n) {
			sensitiveEnvVars = append(sensitiveEnvVars, n)
		}
	}
	resetCache()
}

// resetCache resets the cached secrets. Used by tests that change env vars
// between calls.
func resetCache() {
	cachedSecrets = nil
	cacheOnce = sync.Once{}
}

// ResetForTest resets the cached secrets so tests in other packages can
// verify redaction behavior after setting env vars with t.Setenv.
func ResetForTest() {
	mu.Lock()
	defer mu.Unlock()
	resetCache()
}

// String replaces any occurrence of a known sensitive environment variable
// value with "[REDACTED]". Returns the original string if no secrets are found.
// Secret values are cached on first call for performance.
func String(s string) string {
	mu.Lock()
	cacheOnce.Do(loadSecrets)
	secrets := cachedSecrets
	mu.Unlock()
	for _, secret := range secrets {
		s = strings.ReplaceAll(s, secret, "[REDACTED]")
	}
	return s
}
