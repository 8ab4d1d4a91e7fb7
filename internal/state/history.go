// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

// Package state persists a history of completion runs so spend can be
// reviewed after the fact.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/lmclass/lmclass/internal/classify"
	"github.com/lmclass/lmclass/internal/llm"
	"github.com/lmclass/lmclass/internal/testable"
)

// historyFile is the filename for run history.
const historyFile = "history.json"

// historySchemaVersion is the current history file schema version.
const historySchemaVersion = "1"

// maxHistoryEntries is the FIFO cap for history entries.
const maxHistoryEntries = 500

// FS is the file system implementation used by this package.
// Override in tests with a testable.MockFileSystem.
var FS testable.FileSystem = testable.DefaultFS

// nowFunc is replaced in tests.
var nowFunc = time.Now

// Entry captures summary metrics from a single completion run.
type Entry struct {
	RunID     string    `json:"run_id"`
	Timestamp time.Time `json:"timestamp"`
	Model     string    `json:"model"`
	Prompts   int       `json:"prompts"`
	Calls     int       `json:"calls"`
	Usage     llm.Usage `json:"usage"`

	// EstimatedCost is the pre-run estimate in USD when the cost gate ran
	// and the model's price was known.
	EstimatedCost *float64 `json:"estimated_cost_usd,omitempty"`
}

// History stores completion runs, oldest first.
type History struct {
	Version string  `json:"version"`
	Entries []Entry `json:"entries"`
}

// Path returns the history file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, historyFile)
}

// Load reads the history file from dir.
// If the file does not exist, it returns (nil, nil).
func Load(dir string) (*History, error) {
	data, err := FS.ReadFile(Path(dir))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var h History
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, fmt.Errorf("parse history file: %w", err)
	}
	return &h, nil
}

// Save writes h to dir, creating the directory if it does not exist.
func Save(dir string, h *History) error {
	if err := FS.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := json.MarshalIndent(h, "", "  ")
	if err != nil {
		return err
	}

	if err := FS.WriteFile(Path(dir), data, 0o600); err != nil {
		return fmt.Errorf("write history file: %w", err)
	}
	return nil
}

// AppendEntry adds an entry to the history and enforces the FIFO cap.
func AppendEntry(h *History, entry Entry) *History {
	if h == nil {
		h = &History{}
	}
	h.Version = historySchemaVersion
	h.Entries = append(h.Entries, entry)
	if len(h.Entries) > maxHistoryEntries {
		h.Entries = h.Entries[len(h.Entries)-maxHistoryEntries:]
	}
	return h
}

// BuildEntry creates an Entry from a completed run.
func BuildEntry(model string, prompts int, res *classify.Result) Entry {
	e := Entry{
		RunID:     res.RunID,
		Timestamp: nowFunc().UTC(),
		Model:     model,
		Prompts:   prompts,
		Calls:     res.Calls,
		Usage:     res.Usage,
	}
	if res.Estimate != nil && res.Estimate.Known {
		c := res.Estimate.Cost
		e.EstimatedCost = &c
	}
	return e
}

// Record appends the run to the history in dir.
func Record(dir string, entry Entry) error {
	h, err := Load(dir)
	if err != nil {
		return err
	}
	return Save(dir, AppendEntry(h, entry))
}
