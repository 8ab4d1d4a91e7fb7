// Copyright 2026 The lmclass Authors
// SPDX-License-Identifier: MIT

package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
)

func init() {
	RegisterFormatter(NewMarkdownFormatter())
}

// MarkdownFormatter writes results as a Markdown report.
type MarkdownFormatter struct{}

// Compile-time interface check.
var _ Formatter = (*MarkdownFormatter)(nil)

// NewMarkdownFormatter returns a new MarkdownFormatter.
func NewMarkdownFormatter() *MarkdownFormatter {
	return &MarkdownFormatter{}
}

// Name returns the format name.
func (m *MarkdownFormatter) Name() string {
	return "markdown"
}

// Format writes a heading, a summary line and a table of choices to w.
func (m *MarkdownFormatter) Format(r *Results, w io.Writer) error {
	var b strings.Builder

	b.WriteString("# Completion results\n\n")
	fmt.Fprintf(&b, "- **Model:** %s\n", r.Model)
	fmt.Fprintf(&b, "- **Prompts:** %s in %s requests\n",
		humanize.Comma(int64(len(r.Prompts))), humanize.Comma(int64(r.Calls)))
	fmt.Fprintf(&b, "- **Tokens:** %s\n", humanize.Comma(int64(r.Usage.TotalTokens)))
	if r.Estimate != nil {
		fmt.Fprintf(&b, "- **Estimated cost:** %s\n", r.Estimate)
	}
	if r.RunID != "" {
		fmt.Fprintf(&b, "- **Run:** `%s`\n", r.RunID)
	}

	if len(r.Choices) > 0 {
		b.WriteString("\n| # | Prompt | Text | Finish | Logprob |\n")
		b.WriteString("|---:|---|---|---|---:|\n")
		for i, ch := range r.Choices {
			fmt.Fprintf(&b, "| %d | %s | %s | %s | %s |\n",
				ch.Index, escapeCell(r.PromptFor(i)), escapeCell(ch.Text),
				ch.FinishReason, LogprobSum(ch.Logprobs))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// escapeCell makes text safe inside a Markdown table cell.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\r\n", "<br>")
	return strings.ReplaceAll(s, "\n", "<br>")
}
