package memory

import (
	"sort"
	"strings"

	"github.com/fyrsmithlabs/designd/internal/design"
)

// ChangeTypeCount is one entry in the accepted change-type ranking.
type ChangeTypeCount struct {
	ChangeType design.ChangeType `json:"change_type"`
	Count      int               `json:"count"`
}

// FileCount is one entry in the rejected-file ranking.
type FileCount struct {
	File  string `json:"file"`
	Count int    `json:"count"`
}

// MostAcceptedChangeTypes counts change types across approved patterns,
// sorted descending by count. Ties keep encounter order.
func (d *Document) MostAcceptedChangeTypes() []ChangeTypeCount {
	counts := make(map[design.ChangeType]int)
	var order []design.ChangeType

	for _, a := range d.ApprovedPatterns {
		if _, seen := counts[a.ChangeType]; !seen {
			order = append(order, a.ChangeType)
		}
		counts[a.ChangeType]++
	}

	result := make([]ChangeTypeCount, 0, len(order))
	for _, ct := range order {
		result = append(result, ChangeTypeCount{ChangeType: ct, Count: counts[ct]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// MostRejectedFiles counts rejections grouped by file, sorted descending by
// count. Ties keep encounter order.
func (d *Document) MostRejectedFiles() []FileCount {
	counts := make(map[string]int)
	var order []string

	for _, r := range d.RejectedPatterns {
		if _, seen := counts[r.File]; !seen {
			order = append(order, r.File)
		}
		counts[r.File]++
	}

	result := make([]FileCount, 0, len(order))
	for _, file := range order {
		result = append(result, FileCount{File: file, Count: counts[file]})
	}
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

// conflictPrefixLen is how much of a rejected description must appear in a
// candidate for the two to be considered in conflict.
const conflictPrefixLen = 30

// ConflictsWithRejected returns the first rejected pattern whose leading 30
// characters appear, case-insensitively, inside the candidate description.
//
// This is a cheap early-warning filter, intentionally approximate: false
// negatives are expected, and callers rely on the looseness to catch
// near-duplicates. Do not tighten it into exact or fuzzy matching.
func (d *Document) ConflictsWithRejected(description string) *RejectedPattern {
	candidate := strings.ToLower(description)

	for i := range d.RejectedPatterns {
		prefix := strings.ToLower(d.RejectedPatterns[i].Description)
		if len(prefix) > conflictPrefixLen {
			prefix = prefix[:conflictPrefixLen]
		}
		if prefix == "" {
			continue
		}
		if strings.Contains(candidate, prefix) {
			return &d.RejectedPatterns[i]
		}
	}
	return nil
}
