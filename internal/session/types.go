package session

import (
	"time"

	"github.com/fyrsmithlabs/designd/internal/design"
)

// Hard limits on the improvement loop. These are deliberately constants, not
// configuration: callers may cap their own budgets below them but can never
// raise them.
const (
	// IterationsBeforeGate is how many iterations may run before the loop
	// must pause for human review.
	IterationsBeforeGate = 3

	// AbsoluteMaxIterations is the cap no override can exceed.
	AbsoluteMaxIterations = 10

	// ConfidenceStopThreshold halts auto-iteration: a proposal scoring at or
	// above it is considered ready for review.
	ConfidenceStopThreshold = 0.85

	// MinProposalConfidence is the floor below which proposals are discarded
	// without being shown.
	MinProposalConfidence = 0.50

	// MaxFilesPerProposal truncates oversized change sets.
	MaxFilesPerProposal = 5

	// MaxStoredProposals bounds per-session history; oldest are evicted.
	MaxStoredProposals = 20
)

// SessionStatus is the lifecycle state of a session.
type SessionStatus string

const (
	StatusPlanning       SessionStatus = "planning"
	StatusProposing      SessionStatus = "proposing"
	StatusAwaitingReview SessionStatus = "awaiting_review"
	StatusRevising       SessionStatus = "revising"
	StatusComplete       SessionStatus = "complete"
	StatusStopped        SessionStatus = "stopped"
)

// Terminal reports whether no further transitions are allowed.
func (s SessionStatus) Terminal() bool {
	return s == StatusComplete || s == StatusStopped
}

// ProposalStatus is the review state of a proposal.
type ProposalStatus string

const (
	ProposalPending     ProposalStatus = "pending"
	ProposalApproved    ProposalStatus = "approved"
	ProposalRejected    ProposalStatus = "rejected"
	ProposalRevision    ProposalStatus = "revision"
	ProposalAutoStopped ProposalStatus = "auto_stopped"
	ProposalApplied     ProposalStatus = "applied"
)

// FileChange is one candidate edit within a proposal.
type FileChange struct {
	File        string            `json:"file"`
	Original    string            `json:"original"`
	Proposed    string            `json:"proposed"`
	DiffSummary string            `json:"diff_summary"`
	ChangeType  design.ChangeType `json:"change_type"`
}

// Proposal is one candidate change set produced within a session.
type Proposal struct {
	ID                string         `json:"id"`
	Iteration         int            `json:"iteration"`
	MaxIterations     int            `json:"max_iterations"`
	Changes           []FileChange   `json:"changes"`
	Reasoning         string         `json:"reasoning"`
	ReviewNotes       string         `json:"review_notes"`
	Confidence        float64        `json:"confidence"`
	PrinciplesApplied []string       `json:"principles_applied"`
	Status            ProposalStatus `json:"status"`
	Feedback          string         `json:"feedback,omitempty"`
	CreatedAt         time.Time      `json:"created_at"`
}

// Session is one bounded improvement attempt.
type Session struct {
	ID               string        `json:"id"`
	Objective        string        `json:"objective"`
	Scope            []string      `json:"scope"`
	Constraints      []string      `json:"constraints"`
	MaxIterations    int           `json:"max_iterations"`
	CurrentIteration int           `json:"current_iteration"`
	Proposals        []*Proposal   `json:"proposals"`
	Status           SessionStatus `json:"status"`
	StartedAt        time.Time     `json:"started_at"`
	EndedAt          *time.Time    `json:"ended_at,omitempty"`
}

// lastProposal returns the most recently added proposal, or nil.
func (s *Session) lastProposal() *Proposal {
	if len(s.Proposals) == 0 {
		return nil
	}
	return s.Proposals[len(s.Proposals)-1]
}

// ContinueDecision is the result of a CanContinue check. When Allowed is
// false, Reason names the guardrail that fired.
type ContinueDecision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// HardLimits is the fixed limit table, exposed for display and telemetry so
// callers never re-derive guardrail state.
type HardLimits struct {
	IterationsBeforeGate    int     `json:"iterations_before_gate"`
	AbsoluteMaxIterations   int     `json:"absolute_max_iterations"`
	ConfidenceStopThreshold float64 `json:"confidence_stop_threshold"`
	MinProposalConfidence   float64 `json:"min_proposal_confidence"`
	MaxFilesPerProposal     int     `json:"max_files_per_proposal"`
	MaxStoredProposals      int     `json:"max_stored_proposals"`
}

// Limits returns the hard limit table.
func Limits() HardLimits {
	return HardLimits{
		IterationsBeforeGate:    IterationsBeforeGate,
		AbsoluteMaxIterations:   AbsoluteMaxIterations,
		ConfidenceStopThreshold: ConfidenceStopThreshold,
		MinProposalConfidence:   MinProposalConfidence,
		MaxFilesPerProposal:     MaxFilesPerProposal,
		MaxStoredProposals:      MaxStoredProposals,
	}
}

// Summary aggregates the outcome of a session for durable recording.
type Summary struct {
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

// ControllerStatus reports guardrail state for display by callers.
type ControllerStatus struct {
	ActiveSessionID string     `json:"active_session_id,omitempty"`
	SessionCount    int        `json:"session_count"`
	Limits          HardLimits `json:"limits"`
}
