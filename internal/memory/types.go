package memory

import (
	"math"
	"time"

	"github.com/fyrsmithlabs/designd/internal/design"
)

// SchemaVersion is written into newly initialized documents.
const SchemaVersion = "1.0"

// Meta carries document bookkeeping and lifetime counters.
type Meta struct {
	Version        string     `json:"version"`
	Description    string     `json:"description"`
	LastUpdated    *time.Time `json:"last_updated"`
	TotalSessions  int        `json:"total_sessions"`
	TotalProposals int        `json:"total_proposals"`
	AcceptanceRate float64    `json:"acceptance_rate"`
}

// RejectedPattern records one human rejection.
type RejectedPattern struct {
	Date        time.Time `json:"date"`
	File        string    `json:"file"`
	Description string    `json:"description"`
	Reason      string    `json:"reason"`
}

// ApprovedPattern records one human approval.
type ApprovedPattern struct {
	Date        time.Time         `json:"date"`
	File        string            `json:"file"`
	Description string            `json:"description"`
	ChangeType  design.ChangeType `json:"change_type"`
}

// SessionRecord is one entry in the session log.
type SessionRecord struct {
	SessionID         string    `json:"session_id"`
	Date              time.Time `json:"date"`
	Objective         string    `json:"objective"`
	FilesScoped       []string  `json:"files_scoped"`
	ProposalsMade     int       `json:"proposals_made"`
	ProposalsAccepted int       `json:"proposals_accepted"`
	ProposalsRejected int       `json:"proposals_rejected"`
	ProposalsRevised  int       `json:"proposals_revised"`
	Iterations        int       `json:"iterations"`
	Learnings         []string  `json:"learnings"`
}

// Document is the persisted memory schema. The pattern, palette, and
// typography blobs are opaque to the store; they are only serialized into
// the design context.
type Document struct {
	Meta              Meta              `json:"meta"`
	Principles        []string          `json:"principles"`
	ComponentPatterns map[string]any    `json:"component_patterns"`
	ColorPalette      map[string]any    `json:"color_palette"`
	Typography        map[string]any    `json:"typography"`
	RejectedPatterns  []RejectedPattern `json:"rejected_patterns"`
	ApprovedPatterns  []ApprovedPattern `json:"approved_patterns"`
	SessionLog        []SessionRecord   `json:"session_log"`
}

// NewDocument returns an empty document ready for first persistence.
func NewDocument(description string) *Document {
	return &Document{
		Meta: Meta{
			Version:     SchemaVersion,
			Description: description,
		},
		Principles:        []string{},
		ComponentPatterns: map[string]any{},
		ColorPalette:      map[string]any{},
		Typography:        map[string]any{},
		RejectedPatterns:  []RejectedPattern{},
		ApprovedPatterns:  []ApprovedPattern{},
		SessionLog:        []SessionRecord{},
	}
}

// recomputeAcceptanceRate refreshes the derived rate after a decided write.
// Two-decimal precision; zero when nothing has been decided yet.
func (d *Document) recomputeAcceptanceRate() {
	approved := len(d.ApprovedPatterns)
	decided := approved + len(d.RejectedPatterns)
	if decided == 0 {
		d.Meta.AcceptanceRate = 0
		return
	}
	d.Meta.AcceptanceRate = math.Round(float64(approved)/float64(decided)*100) / 100
}

// touch stamps the last-updated marker.
func (d *Document) touch(now time.Time) {
	d.Meta.LastUpdated = &now
}
