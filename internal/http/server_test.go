package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/designd/internal/memory"
	"github.com/fyrsmithlabs/designd/internal/session"
)

func newTestServer(t *testing.T, initialized bool) *Server {
	t.Helper()

	backend, err := memory.NewFileBackend(filepath.Join(t.TempDir(), "memory.json"))
	require.NoError(t, err)
	store, err := memory.NewStore(backend, zap.NewNop())
	require.NoError(t, err)
	if initialized {
		_, err := store.Init(context.Background(), "test memory", false)
		require.NoError(t, err)
	}

	srv, err := NewServer(session.NewController(zap.NewNop()), store, zap.NewNop(), nil)
	require.NoError(t, err)
	return srv
}

func doJSON(t *testing.T, srv *Server, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	srv.echo.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestNewServer_RequiresDependencies(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	_, err := NewServer(nil, srv.store, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(srv.controller, nil, zap.NewNop(), nil)
	assert.Error(t, err)

	_, err = NewServer(srv.controller, srv.store, nil, nil)
	assert.Error(t, err)
}

func TestHealth(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	rec := doJSON(t, srv, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[HealthResponse](t, rec).Status)
}

func TestStartSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", StartSessionRequest{
		Objective:     "modernize the landing page",
		Scope:         []string{"src/Landing.tsx"},
		MaxIterations: 5,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	sess := decode[session.Session](t, rec)
	assert.NotEmpty(t, sess.ID)
	assert.Equal(t, 5, sess.MaxIterations)
	assert.Equal(t, session.StatusPlanning, sess.Status)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/sessions/"+sess.ID, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestStartSession_RequiresObjective(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions", StartSessionRequest{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSession_NotFound(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/sessions/nope", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddProposal_Accepted(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	sess := srv.controller.StartSession("objective", nil, nil, 5)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/proposals", AddProposalRequest{
		Changes:    []session.FileChange{{File: "src/App.tsx", DiffSummary: "tighten spacing"}},
		Reasoning:  "grid alignment",
		Confidence: 0.7,
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	resp := decode[ProposalResponse](t, rec)
	require.NotNil(t, resp.Proposal)
	assert.False(t, resp.Discarded)
	assert.Equal(t, 1, resp.Proposal.Iteration)
}

func TestAddProposal_LowConfidenceDiscarded(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	sess := srv.controller.StartSession("objective", nil, nil, 5)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/proposals", AddProposalRequest{
		Changes:    []session.FileChange{{File: "src/App.tsx"}},
		Confidence: 0.3,
	})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ProposalResponse](t, rec)
	assert.True(t, resp.Discarded)
	assert.Contains(t, resp.Reason, "below minimum")
}

func TestAddProposal_UnknownSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/nope/proposals", AddProposalRequest{Confidence: 0.7})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApproveProposal_CompletesSession(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	sess := srv.controller.StartSession("objective", nil, nil, 5)
	p := srv.controller.AddProposal(sess.ID, []session.FileChange{{File: "a.tsx"}}, "r", "", 0.7, nil)
	require.NotNil(t, p)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/proposals/"+p.ID+"/approve", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	approved := decode[session.Proposal](t, rec)
	assert.Equal(t, session.ProposalApproved, approved.Status)

	got := srv.controller.GetSession(sess.ID)
	assert.Equal(t, session.StatusComplete, got.Status)
}

func TestRejectProposal_CarriesFeedback(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	sess := srv.controller.StartSession("objective", nil, nil, 5)
	p := srv.controller.AddProposal(sess.ID, []session.FileChange{{File: "a.tsx"}}, "r", "", 0.7, nil)
	require.NotNil(t, p)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/proposals/"+p.ID+"/reject",
		DecisionRequest{Reason: "breaks brand palette"})
	require.Equal(t, http.StatusOK, rec.Code)

	rejected := decode[session.Proposal](t, rec)
	assert.Equal(t, session.ProposalRejected, rejected.Status)
	assert.Equal(t, "breaks brand palette", rejected.Feedback)
}

func TestRevise_ReturnsDecision(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	sess := srv.controller.StartSession("objective", nil, nil, 4)
	p := srv.controller.AddProposal(sess.ID, []session.FileChange{{File: "a.tsx"}}, "r", "", 0.7, nil)
	require.NotNil(t, p)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/sessions/"+sess.ID+"/proposals/"+p.ID+"/revise",
		DecisionRequest{Feedback: "headline too dense"})
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[RevisionResponse](t, rec)
	require.NotNil(t, resp.Proposal)
	assert.Equal(t, session.ProposalRevision, resp.Proposal.Status)
	assert.True(t, resp.Decision.Allowed)
}

func TestCanContinue_AlwaysOK(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)
	rec := doJSON(t, srv, http.MethodGet, "/api/v1/sessions/nope/continue", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	decision := decode[session.ContinueDecision](t, rec)
	assert.False(t, decision.Allowed)
}

func TestMemory_UninitializedConflicts(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, false)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/approvals", RecordApprovalRequest{
		File: "a.tsx", Description: "d", ChangeType: "spacing",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "designd init")
}

func TestRecordApproval_ValidatesChangeType(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/approvals", RecordApprovalRequest{
		File: "a.tsx", Description: "d", ChangeType: "refactor",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMemory_RecordAndStats(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/approvals", RecordApprovalRequest{
			File: "a.tsx", Description: "larger tap targets", ChangeType: "accessibility",
		})
		require.Equal(t, http.StatusNoContent, rec.Code)
	}
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/rejections", RecordRejectionRequest{
		File: "b.tsx", Description: "autoplaying video banner", Reason: "bandwidth",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memory/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	stats := decode[MemoryStatsResponse](t, rec)
	assert.Equal(t, 3, stats.Meta.TotalProposals)
	assert.InDelta(t, 0.67, stats.Meta.AcceptanceRate, 0.001)
	require.Len(t, stats.MostAcceptedChangeTypes, 1)
	assert.Equal(t, 2, stats.MostAcceptedChangeTypes[0].Count)
	require.Len(t, stats.MostRejectedFiles, 1)
	assert.Equal(t, "b.tsx", stats.MostRejectedFiles[0].File)
}

func TestAddPrinciple_ReportsDuplicates(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)

	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/principles", AddPrincipleRequest{Text: "respect the grid"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode[AddPrincipleResponse](t, rec).Added)

	rec = doJSON(t, srv, http.MethodPost, "/api/v1/memory/principles", AddPrincipleRequest{Text: "respect the grid"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decode[AddPrincipleResponse](t, rec).Added)
}

func TestDesignContext_ReturnsText(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/principles", AddPrincipleRequest{Text: "one accent color"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memory/context", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "## Design Principles")
	assert.Contains(t, rec.Body.String(), "1. one accent color")
}

func TestConflicts(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t, true)
	rec := doJSON(t, srv, http.MethodPost, "/api/v1/memory/rejections", RecordRejectionRequest{
		File: "src/Hero.tsx", Description: "full-bleed hero image with overlaid text", Reason: "readability",
	})
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = doJSON(t, srv, http.MethodGet,
		"/api/v1/memory/conflicts?description=add+a+full-bleed+hero+image+with+overlaid+caption", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[ConflictResponse](t, rec)
	require.NotNil(t, resp.Conflict)
	assert.Equal(t, "src/Hero.tsx", resp.Conflict.File)

	rec = doJSON(t, srv, http.MethodGet, "/api/v1/memory/conflicts", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
