package http

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/designd/internal/session"
)

// StartSessionRequest is the body for POST /api/v1/sessions.
type StartSessionRequest struct {
	Objective     string   `json:"objective"`
	Scope         []string `json:"scope"`
	Constraints   []string `json:"constraints"`
	MaxIterations int      `json:"max_iterations"`
}

// AddProposalRequest is the body for POST /api/v1/sessions/:id/proposals.
type AddProposalRequest struct {
	Changes           []session.FileChange `json:"changes"`
	Reasoning         string               `json:"reasoning"`
	ReviewNotes       string               `json:"review_notes"`
	Confidence        float64              `json:"confidence"`
	PrinciplesApplied []string             `json:"principles_applied"`
}

// ProposalResponse reports the outcome of a proposal submission. When the
// proposal was discarded rather than accepted, Discarded is set and Reason
// names the guardrail -- the orchestrator should generate something better,
// not retry.
type ProposalResponse struct {
	Proposal  *session.Proposal `json:"proposal,omitempty"`
	Discarded bool              `json:"discarded,omitempty"`
	Reason    string            `json:"reason,omitempty"`
}

// DecisionRequest carries human feedback for reject and revise calls.
type DecisionRequest struct {
	Reason   string `json:"reason,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

// RevisionResponse is the body for a revision request.
type RevisionResponse struct {
	Proposal *session.Proposal        `json:"proposal"`
	Decision session.ContinueDecision `json:"decision"`
}

func (s *Server) handleStatus(c echo.Context) error {
	return c.JSON(http.StatusOK, s.controller.Status())
}

func (s *Server) handleStartSession(c echo.Context) error {
	var req StartSessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Objective == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "objective is required")
	}

	sess := s.controller.StartSession(req.Objective, req.Scope, req.Constraints, req.MaxIterations)
	SessionsStarted.Inc()
	return c.JSON(http.StatusCreated, sess)
}

func (s *Server) handleGetSession(c echo.Context) error {
	sess := s.controller.GetSession(c.Param("id"))
	if sess == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sess)
}

func (s *Server) handleCanContinue(c echo.Context) error {
	// Always 200: the decision itself carries the refusal and its reason.
	return c.JSON(http.StatusOK, s.controller.CanContinue(c.Param("id")))
}

func (s *Server) handleSessionSummary(c echo.Context) error {
	sum := s.controller.SessionSummary(c.Param("id"))
	if sum == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, sum)
}

func (s *Server) handleAddProposal(c echo.Context) error {
	id := c.Param("id")

	var req AddProposalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if s.controller.GetSession(id) == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}

	p := s.controller.AddProposal(id, req.Changes, req.Reasoning, req.ReviewNotes, req.Confidence, req.PrinciplesApplied)
	if p == nil {
		ProposalsTotal.WithLabelValues("discarded").Inc()
		reason := fmt.Sprintf("confidence %.2f below minimum %.2f", req.Confidence, session.MinProposalConfidence)
		if req.Confidence >= session.MinProposalConfidence {
			// Refused by a session guardrail rather than the confidence
			// floor; report the guardrail that fired.
			reason = s.controller.CanContinue(id).Reason
		}
		return c.JSON(http.StatusOK, ProposalResponse{Discarded: true, Reason: reason})
	}

	ProposalsTotal.WithLabelValues("accepted").Inc()
	return c.JSON(http.StatusCreated, ProposalResponse{Proposal: p})
}

func (s *Server) handleApprove(c echo.Context) error {
	p := s.controller.ApproveProposal(c.Param("id"), c.Param("pid"))
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session or proposal not found")
	}
	DecisionsTotal.WithLabelValues("approved").Inc()
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleReject(c echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p := s.controller.RejectProposal(c.Param("id"), c.Param("pid"), req.Reason)
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session or proposal not found")
	}
	DecisionsTotal.WithLabelValues("rejected").Inc()
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleRevise(c echo.Context) error {
	var req DecisionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	p, decision := s.controller.RequestRevision(c.Param("id"), c.Param("pid"), req.Feedback)
	if p == nil {
		return echo.NewHTTPError(http.StatusNotFound, "session or proposal not found")
	}
	DecisionsTotal.WithLabelValues("revision").Inc()

	s.logger.Debug("revision granted",
		zap.String("session_id", c.Param("id")),
		zap.Bool("may_continue", decision.Allowed))

	return c.JSON(http.StatusOK, RevisionResponse{Proposal: p, Decision: decision})
}
