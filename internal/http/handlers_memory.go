package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/designd/internal/design"
	"github.com/fyrsmithlabs/designd/internal/memory"
)

// RecordApprovalRequest is the body for POST /api/v1/memory/approvals.
type RecordApprovalRequest struct {
	File        string            `json:"file"`
	Description string            `json:"description"`
	ChangeType  design.ChangeType `json:"change_type"`
}

// RecordRejectionRequest is the body for POST /api/v1/memory/rejections.
type RecordRejectionRequest struct {
	File        string `json:"file"`
	Description string `json:"description"`
	Reason      string `json:"reason"`
}

// AddPrincipleRequest is the body for POST /api/v1/memory/principles.
type AddPrincipleRequest struct {
	Text string `json:"text"`
}

// AddPrincipleResponse reports whether the principle was new.
type AddPrincipleResponse struct {
	Added bool `json:"added"`
}

// MemoryStatsResponse bundles the derived views of the memory document.
type MemoryStatsResponse struct {
	Meta                    memory.Meta              `json:"meta"`
	MostAcceptedChangeTypes []memory.ChangeTypeCount `json:"most_accepted_change_types"`
	MostRejectedFiles       []memory.FileCount       `json:"most_rejected_files"`
}

// ConflictResponse reports the first rejected pattern a candidate
// description collides with, if any.
type ConflictResponse struct {
	Conflict *memory.RejectedPattern `json:"conflict"`
}

// storeError maps store failures onto HTTP status codes. A missing document
// means the deployment skipped initialization; everything else is a
// persistence failure the caller must see.
func (s *Server) storeError(err error) error {
	if errors.Is(err, memory.ErrDocumentMissing) {
		return echo.NewHTTPError(http.StatusConflict, "memory document not initialized, run 'designd init'")
	}
	s.logger.Error("memory store failure", zap.Error(err))
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
}

func (s *Server) handleRecordApproval(c echo.Context) error {
	var req RecordApprovalRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if !req.ChangeType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown change type")
	}

	if err := s.store.RecordApproval(c.Request().Context(), req.File, req.Description, req.ChangeType); err != nil {
		return s.storeError(err)
	}
	MemoryWrites.WithLabelValues("approval").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRecordRejection(c echo.Context) error {
	var req RecordRejectionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	if err := s.store.RecordRejection(c.Request().Context(), req.File, req.Description, req.Reason); err != nil {
		return s.storeError(err)
	}
	MemoryWrites.WithLabelValues("rejection").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleRecordSession(c echo.Context) error {
	var rec memory.SessionRecord
	if err := c.Bind(&rec); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if rec.SessionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "session_id is required")
	}

	if err := s.store.RecordSession(c.Request().Context(), rec); err != nil {
		return s.storeError(err)
	}
	MemoryWrites.WithLabelValues("session").Inc()
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) handleAddPrinciple(c echo.Context) error {
	var req AddPrincipleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Text == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "text is required")
	}

	added, err := s.store.AddPrinciple(c.Request().Context(), req.Text)
	if err != nil {
		return s.storeError(err)
	}
	if added {
		MemoryWrites.WithLabelValues("principle").Inc()
	}
	return c.JSON(http.StatusOK, AddPrincipleResponse{Added: added})
}

func (s *Server) handleDesignContext(c echo.Context) error {
	bundle, err := s.store.BuildDesignContext(c.Request().Context())
	if err != nil {
		return s.storeError(err)
	}
	return c.String(http.StatusOK, bundle)
}

func (s *Server) handleMemoryStats(c echo.Context) error {
	doc, err := s.store.Load(c.Request().Context())
	if err != nil {
		return s.storeError(err)
	}

	return c.JSON(http.StatusOK, MemoryStatsResponse{
		Meta:                    doc.Meta,
		MostAcceptedChangeTypes: doc.MostAcceptedChangeTypes(),
		MostRejectedFiles:       doc.MostRejectedFiles(),
	})
}

func (s *Server) handleConflicts(c echo.Context) error {
	description := c.QueryParam("description")
	if description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "description query parameter is required")
	}

	conflict, err := s.store.ConflictsWithRejected(c.Request().Context(), description)
	if err != nil {
		return s.storeError(err)
	}
	return c.JSON(http.StatusOK, ConflictResponse{Conflict: conflict})
}
