package memory

import (
	"encoding/json"
	"fmt"
	"strings"
)

// recentPatternWindow bounds how many past judgments feed the context
// bundle. Recency matters: the last 20 of each, never an arbitrary 20.
const recentPatternWindow = 20

// DesignContext renders the textual bundle injected into the generator as
// constraints. Sections whose source is empty are omitted entirely so the
// bundle degrades gracefully on a young memory.
func (d *Document) DesignContext() string {
	var b strings.Builder

	if len(d.Principles) > 0 {
		b.WriteString("## Design Principles\n")
		for i, p := range d.Principles {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, p))
		}
		b.WriteString("\n")
	}

	writeBlobSection(&b, "Component Patterns", d.ComponentPatterns)
	writeBlobSection(&b, "Color Palette", d.ColorPalette)
	writeBlobSection(&b, "Typography", d.Typography)

	if len(d.RejectedPatterns) > 0 {
		b.WriteString("## Recently Rejected (do not repeat)\n")
		start := len(d.RejectedPatterns) - recentPatternWindow
		if start < 0 {
			start = 0
		}
		for _, r := range d.RejectedPatterns[start:] {
			b.WriteString(fmt.Sprintf("- %s (reason: %s)\n", r.Description, r.Reason))
		}
		b.WriteString("\n")
	}

	if len(d.ApprovedPatterns) > 0 {
		b.WriteString("## Recently Approved\n")
		start := len(d.ApprovedPatterns) - recentPatternWindow
		if start < 0 {
			start = 0
		}
		for _, a := range d.ApprovedPatterns[start:] {
			b.WriteString(fmt.Sprintf("- %s [%s]\n", a.Description, a.ChangeType))
		}
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// writeBlobSection serializes an opaque configuration blob. The store does
// not interpret these, it only passes them through to the generator.
func writeBlobSection(b *strings.Builder, title string, blob map[string]any) {
	if len(blob) == 0 {
		return
	}

	data, err := json.MarshalIndent(blob, "", "  ")
	if err != nil {
		// Blobs come from our own document parse, so this only fires on
		// values json cannot represent. Skip the section rather than emit
		// garbage constraints.
		return
	}

	b.WriteString("## " + title + "\n")
	b.Write(data)
	b.WriteString("\n\n")
}
