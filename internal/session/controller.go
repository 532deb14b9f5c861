package session

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Controller owns the lifecycle of improvement sessions and enforces the
// hard stopping rules. It is safe for concurrent use; concurrent mutation of
// the same session is last-writer-wins, which is acceptable for the
// single-operator workflow this targets.
type Controller struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	activeID string
	logger   *zap.Logger
}

// NewController creates a controller with an empty session table.
// A nil logger disables logging.
func NewController(logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// StartSession creates a new session and makes it the active one.
// maxIterations <= 0 selects the default gate budget; any request is clamped
// to the absolute cap.
func (c *Controller) StartSession(objective string, scope, constraints []string, maxIterations int) *Session {
	if maxIterations <= 0 {
		maxIterations = IterationsBeforeGate
	}
	if maxIterations > AbsoluteMaxIterations {
		maxIterations = AbsoluteMaxIterations
	}

	s := &Session{
		ID:            uuid.New().String(),
		Objective:     objective,
		Scope:         append([]string(nil), scope...),
		Constraints:   append([]string(nil), constraints...),
		MaxIterations: maxIterations,
		Status:        StatusPlanning,
		StartedAt:     time.Now(),
	}

	c.mu.Lock()
	c.sessions[s.ID] = s
	c.activeID = s.ID
	c.mu.Unlock()

	c.logger.Info("session started",
		zap.String("session_id", s.ID),
		zap.String("objective", objective),
		zap.Int("max_iterations", maxIterations),
		zap.Int("scoped_files", len(scope)))

	return cloneSession(s)
}

// CanContinue evaluates whether iteration may proceed, in strict precedence
// order. Each refusal names the guardrail that fired.
func (c *Controller) CanContinue(sessionID string) ContinueDecision {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return ContinueDecision{Allowed: false, Reason: fmt.Sprintf("session %s not found", sessionID)}
	}
	return canContinueLocked(s)
}

// canContinueLocked evaluates the stopping rules for a session the caller
// already holds the lock for.
func canContinueLocked(s *Session) ContinueDecision {
	if s.Status.Terminal() {
		return ContinueDecision{Allowed: false, Reason: fmt.Sprintf("session already %s", s.Status)}
	}

	if s.CurrentIteration >= AbsoluteMaxIterations {
		return ContinueDecision{Allowed: false, Reason: fmt.Sprintf(
			"absolute iteration limit reached (%d of %d)", s.CurrentIteration, AbsoluteMaxIterations)}
	}

	gate := effectiveGate(s)
	if s.CurrentIteration >= gate {
		return ContinueDecision{Allowed: false, Reason: fmt.Sprintf(
			"iteration gate reached (%d of %d), awaiting human review", s.CurrentIteration, gate)}
	}

	if last := s.lastProposal(); last != nil && last.Confidence >= ConfidenceStopThreshold {
		return ContinueDecision{Allowed: false, Reason: fmt.Sprintf(
			"proposal confidence %.2f meets stop threshold %.2f, ready for review",
			last.Confidence, ConfidenceStopThreshold)}
	}

	return ContinueDecision{Allowed: true}
}

// effectiveGate returns the iteration count at which the loop must pause.
// Outside revision the gate is the review gate (or the session's own smaller
// budget); during revision it is the revision budget granted by
// RequestRevision.
func effectiveGate(s *Session) int {
	if s.Status == StatusRevising {
		return s.MaxIterations
	}
	gate := IterationsBeforeGate
	if s.MaxIterations < gate {
		gate = s.MaxIterations
	}
	return gate
}

// AddProposal submits a candidate change set to a session.
//
// Change sets longer than MaxFilesPerProposal are truncated, not rejected.
// Proposals below MinProposalConfidence are discarded: the return is nil,
// the iteration counter does not move, and no error is raised -- the caller
// should generate something better, not retry.
//
// Returns nil for unknown or terminal sessions.
func (c *Controller) AddProposal(sessionID string, changes []FileChange, reasoning, reviewNotes string, confidence float64, principlesApplied []string) *Proposal {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, ok := c.sessions[sessionID]
	if !ok || s.Status.Terminal() {
		return nil
	}

	if s.CurrentIteration >= AbsoluteMaxIterations {
		// The iteration counter may never pass the absolute cap, no matter
		// how many submissions arrive. Surface the halt on the last pending
		// proposal so the review UI shows why the loop stopped.
		if last := s.lastProposal(); last != nil && last.Status == ProposalPending {
			last.Status = ProposalAutoStopped
		}
		c.logger.Warn("proposal refused at absolute iteration limit",
			zap.String("session_id", sessionID),
			zap.Int("iteration", s.CurrentIteration))
		return nil
	}

	if len(changes) > MaxFilesPerProposal {
		c.logger.Warn("truncating oversized change set",
			zap.String("session_id", sessionID),
			zap.Int("files", len(changes)),
			zap.Int("max", MaxFilesPerProposal))
		changes = changes[:MaxFilesPerProposal]
	}

	if confidence < MinProposalConfidence {
		// The generator is still proposing; nothing reaches review.
		if s.Status == StatusPlanning {
			s.Status = StatusProposing
		}
		c.logger.Info("proposal discarded below confidence floor",
			zap.String("session_id", sessionID),
			zap.Float64("confidence", confidence),
			zap.Float64("minimum", MinProposalConfidence))
		return nil
	}

	s.CurrentIteration++

	p := &Proposal{
		ID:                uuid.New().String(),
		Iteration:         s.CurrentIteration,
		MaxIterations:     s.MaxIterations,
		Changes:           append([]FileChange(nil), changes...),
		Reasoning:         reasoning,
		ReviewNotes:       reviewNotes,
		Confidence:        confidence,
		PrinciplesApplied: append([]string(nil), principlesApplied...),
		Status:            ProposalPending,
		CreatedAt:         time.Now(),
	}

	s.Proposals = append(s.Proposals, p)
	if len(s.Proposals) > MaxStoredProposals {
		excess := len(s.Proposals) - MaxStoredProposals
		s.Proposals = s.Proposals[excess:]
	}
	s.Status = StatusAwaitingReview

	c.logger.Info("proposal added",
		zap.String("session_id", sessionID),
		zap.String("proposal_id", p.ID),
		zap.Int("iteration", p.Iteration),
		zap.Float64("confidence", confidence),
		zap.Int("files", len(p.Changes)))

	return cloneProposal(p)
}

// ApproveProposal accepts a proposal and completes the session. Terminal:
// no further proposals may be added afterwards.
// Returns nil when the session or proposal is unknown, or the session has
// already ended.
func (c *Controller) ApproveProposal(sessionID, proposalID string) *Proposal {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, p := c.findLocked(sessionID, proposalID)
	if p == nil {
		return nil
	}

	p.Status = ProposalApproved
	s.Status = StatusComplete
	now := time.Now()
	s.EndedAt = &now

	c.logger.Info("proposal approved",
		zap.String("session_id", sessionID),
		zap.String("proposal_id", proposalID))

	return cloneProposal(p)
}

// RejectProposal rejects a proposal with feedback and stops the session.
// Terminal: rejection grants no implicit revision path -- a revision must be
// requested before rejecting.
func (c *Controller) RejectProposal(sessionID, proposalID, reason string) *Proposal {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, p := c.findLocked(sessionID, proposalID)
	if p == nil {
		return nil
	}

	p.Status = ProposalRejected
	p.Feedback = reason
	s.Status = StatusStopped
	now := time.Now()
	s.EndedAt = &now

	c.logger.Info("proposal rejected",
		zap.String("session_id", sessionID),
		zap.String("proposal_id", proposalID),
		zap.String("reason", reason))

	return cloneProposal(p)
}

// RequestRevision marks a proposal for revision and grants additional
// iteration budget: the session may now run until
// min(current_iteration+3, absolute cap) before the gate fires again.
// Returns the updated proposal and a fresh continuation decision.
func (c *Controller) RequestRevision(sessionID, proposalID, feedback string) (*Proposal, ContinueDecision) {
	c.mu.Lock()
	defer c.mu.Unlock()

	s, p := c.findLocked(sessionID, proposalID)
	if p == nil {
		return nil, ContinueDecision{Allowed: false, Reason: fmt.Sprintf("session %s not found", sessionID)}
	}

	p.Status = ProposalRevision
	p.Feedback = feedback
	s.Status = StatusRevising

	budget := s.CurrentIteration + IterationsBeforeGate
	if budget > AbsoluteMaxIterations {
		budget = AbsoluteMaxIterations
	}
	s.MaxIterations = budget

	decision := canContinueLocked(s)

	c.logger.Info("revision requested",
		zap.String("session_id", sessionID),
		zap.String("proposal_id", proposalID),
		zap.Int("revision_budget", budget),
		zap.Bool("may_continue", decision.Allowed))

	return cloneProposal(p), decision
}

// SessionSummary aggregates a session's outcome for durable recording.
// Learnings carry one line per rejected or revised proposal with feedback,
// in proposal order. Returns nil for unknown sessions.
func (c *Controller) SessionSummary(sessionID string) *Summary {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return nil
	}

	sum := &Summary{
		SessionID:     s.ID,
		Date:          time.Now(),
		Objective:     s.Objective,
		FilesScoped:   append([]string(nil), s.Scope...),
		ProposalsMade: len(s.Proposals),
		Iterations:    s.CurrentIteration,
		Learnings:     make([]string, 0, len(s.Proposals)),
	}

	for _, p := range s.Proposals {
		switch p.Status {
		case ProposalApproved:
			sum.ProposalsAccepted++
		case ProposalRejected:
			sum.ProposalsRejected++
			if p.Feedback != "" {
				sum.Learnings = append(sum.Learnings, "Rejected: "+p.Feedback)
			}
		case ProposalRevision:
			sum.ProposalsRevised++
			if p.Feedback != "" {
				sum.Learnings = append(sum.Learnings, "Revised because: "+p.Feedback)
			}
		}
	}

	return sum
}

// GetSession returns a copy of a session, or nil if unknown.
func (c *Controller) GetSession(sessionID string) *Session {
	c.mu.RLock()
	defer c.mu.RUnlock()

	s, ok := c.sessions[sessionID]
	if !ok {
		return nil
	}
	return cloneSession(s)
}

// Status reports the active session, the number of tracked sessions, and
// the hard limit table.
func (c *Controller) Status() ControllerStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return ControllerStatus{
		ActiveSessionID: c.activeID,
		SessionCount:    len(c.sessions),
		Limits:          Limits(),
	}
}

// findLocked resolves a session and proposal pair. Both nil when the session
// is unknown or terminal, or the proposal is unknown.
func (c *Controller) findLocked(sessionID, proposalID string) (*Session, *Proposal) {
	s, ok := c.sessions[sessionID]
	if !ok || s.Status.Terminal() {
		return nil, nil
	}
	for _, p := range s.Proposals {
		if p.ID == proposalID {
			return s, p
		}
	}
	return nil, nil
}

// cloneSession returns a copy safe for callers to hold outside the lock.
func cloneSession(s *Session) *Session {
	cp := *s
	cp.Scope = append([]string(nil), s.Scope...)
	cp.Constraints = append([]string(nil), s.Constraints...)
	cp.Proposals = make([]*Proposal, len(s.Proposals))
	for i, p := range s.Proposals {
		cp.Proposals[i] = cloneProposal(p)
	}
	if s.EndedAt != nil {
		ended := *s.EndedAt
		cp.EndedAt = &ended
	}
	return &cp
}

func cloneProposal(p *Proposal) *Proposal {
	cp := *p
	cp.Changes = append([]FileChange(nil), p.Changes...)
	cp.PrinciplesApplied = append([]string(nil), p.PrinciplesApplied...)
	return &cp
}
