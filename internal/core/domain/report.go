package domain

import (
	"fmt"
	"strings"
)

// Report is a bounded, human-readable summary of the attachments a run
// added or changed.
type Report struct {
	// Title is the one-line headline, e.g. "3 new receipts for 2025-06".
	Title string

	// Lines holds at most the configured number of item lines.
	Lines []string

	// Omitted is the number of changes not listed in Lines.
	Omitted int

	// Count is the total number of changes.
	Count int

	// Link optionally points at the period folder.
	Link string
}

// Empty reports whether there is nothing to announce.
func (r Report) Empty() bool {
	return r.Count == 0
}

// PlainText renders the report as plain text, one item per line.
func (r Report) PlainText() string {
	var b strings.Builder
	b.WriteString(r.Title)
	for _, line := range r.Lines {
		b.WriteString("\n• ")
		b.WriteString(line)
	}
	if r.Omitted > 0 {
		fmt.Fprintf(&b, "\n… and %d more", r.Omitted)
	}
	if r.Link != "" {
		b.WriteString("\n")
		b.WriteString(r.Link)
	}
	return b.String()
}
