// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/lmclass/lmclass/internal/llm"
)

func init() {
	RegisterFormatter(NewTableFormatter())
}

// Alignment controls how a column's content is justified.
type Alignment int

const (
	// AlignLeft pads on the right (default).
	AlignLeft Alignment = iota
	// AlignRight pads on the left.
	AlignRight
)

// maxCellWidth wraps long prompts and completions.
const maxCellWidth = 60

// RenderTable renders rows under headers. Missing cells are left blank.
func RenderTable(headers []string, rows [][]string, aligns []Alignment) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := range columns {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	configs := make([]table.ColumnConfig, 0, columns)
	for i := range columns {
		align := text.AlignLeft
		if i < len(aligns) && aligns[i] == AlignRight {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
			WidthMax:    maxCellWidth,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render()
}

// TableFormatter writes results as a human-readable table.
type TableFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*TableFormatter)(nil)

// NewTableFormatter returns a new TableFormatter.
func NewTableFormatter() *TableFormatter {
	return &TableFormatter{}
}

// Name returns the format name.
func (f *TableFormatter) Name() string {
	return "table"
}

// Format writes one row per choice with its prompt, text, finish reason and
// summed log-probability.
func (f *TableFormatter) Format(r *Results, w io.Writer) error {
	rows := make([][]string, 0, len(r.Choices))
	for i, ch := range r.Choices {
		rows = append(rows, []string{
			strconv.Itoa(ch.Index),
			r.PromptFor(i),
			ch.Text,
			ch.FinishReason,
			LogprobSum(ch.Logprobs),
		})
	}
	_, err := fmt.Fprintln(w, RenderTable(
		[]string{"#", "Prompt", "Text", "Finish", "Logprob"},
		rows,
		[]Alignment{AlignRight, AlignLeft, AlignLeft, AlignLeft, AlignRight},
	))
	return err
}

// LogprobSum returns the summed token log-probability of a choice, or "" if
// none were returned.
func LogprobSum(lp *llm.Logprobs) string {
	if lp == nil || len(lp.TokenLogprobs) == 0 {
		return ""
	}
	var sum float64
	for _, v := range lp.TokenLogprobs {
		sum += v
	}
	return strconv.FormatFloat(sum, 'f', 4, 64)
}
