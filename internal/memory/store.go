package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/fyrsmithlabs/designd/internal/design"
	"go.uber.org/zap"
)

// Store is the durable record of design constraints and human feedback.
// Every record operation is a full read-modify-write cycle: the document is
// loaded fresh, mutated, and persisted before the call returns. Write
// failures propagate uncaught; no retry is built in.
type Store struct {
	mu      sync.Mutex
	backend Backend
	logger  *zap.Logger
}

// NewStore creates a store over the given backend.
// A nil logger disables logging.
func NewStore(backend Backend, logger *zap.Logger) (*Store, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{backend: backend, logger: logger}, nil
}

// Load reads and parses the backing document.
//
// A missing document is fatal: the caller must run `designd init` first.
// A parse failure is propagated rather than swallowed; operating on partial
// memory would be worse than stopping.
func (s *Store) Load(ctx context.Context) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

func (s *Store) loadLocked(ctx context.Context) (*Document, error) {
	data, err := s.backend.Load(ctx)
	if err != nil {
		return nil, err
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("memory document is corrupt, refusing to operate on partial data: %w", err)
	}
	return &doc, nil
}

// Init creates the document. It refuses to overwrite an existing one unless
// force is set; initialization must always be a deliberate act.
func (s *Store) Init(ctx context.Context, description string, force bool) (*Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	exists, err := s.backend.Exists(ctx)
	if err != nil {
		return nil, err
	}
	if exists && !force {
		return nil, fmt.Errorf("memory document already exists, use force to reinitialize")
	}

	doc := NewDocument(description)
	if err := s.saveLocked(ctx, doc); err != nil {
		return nil, err
	}

	s.logger.Info("memory document initialized",
		zap.String("description", description),
		zap.Bool("forced", exists))
	return doc, nil
}

func (s *Store) saveLocked(ctx context.Context, doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode memory document: %w", err)
	}
	return s.backend.Save(ctx, data)
}

// RecordApproval appends an approved pattern, advances the lifetime
// counters, recomputes the acceptance rate, and persists before returning.
func (s *Store) RecordApproval(ctx context.Context, file, description string, changeType design.ChangeType) error {
	if !changeType.Valid() {
		return fmt.Errorf("unknown change type %q", changeType)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	doc.ApprovedPatterns = append(doc.ApprovedPatterns, ApprovedPattern{
		Date:        now,
		File:        file,
		Description: description,
		ChangeType:  changeType,
	})
	doc.Meta.TotalProposals++
	doc.recomputeAcceptanceRate()
	doc.touch(now)

	if err := s.saveLocked(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("approval recorded",
		zap.String("file", file),
		zap.String("change_type", string(changeType)),
		zap.Float64("acceptance_rate", doc.Meta.AcceptanceRate))
	return nil
}

// RecordRejection appends a rejected pattern, advances the lifetime
// counters, recomputes the acceptance rate, and persists before returning.
func (s *Store) RecordRejection(ctx context.Context, file, description, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	doc.RejectedPatterns = append(doc.RejectedPatterns, RejectedPattern{
		Date:        now,
		File:        file,
		Description: description,
		Reason:      reason,
	})
	doc.Meta.TotalProposals++
	doc.recomputeAcceptanceRate()
	doc.touch(now)

	if err := s.saveLocked(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("rejection recorded",
		zap.String("file", file),
		zap.String("reason", reason),
		zap.Float64("acceptance_rate", doc.Meta.AcceptanceRate))
	return nil
}

// RecordSession appends a session summary to the log and persists.
func (s *Store) RecordSession(ctx context.Context, rec SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	doc.SessionLog = append(doc.SessionLog, rec)
	doc.Meta.TotalSessions++
	doc.touch(time.Now())

	if err := s.saveLocked(ctx, doc); err != nil {
		return err
	}

	s.logger.Info("session recorded",
		zap.String("session_id", rec.SessionID),
		zap.Int("proposals_made", rec.ProposalsMade),
		zap.Int("learnings", len(rec.Learnings)))
	return nil
}

// AddPrinciple appends a principle unless an exact duplicate exists.
// Persists only when the document actually changed. Returns whether the
// principle was added.
func (s *Store) AddPrinciple(ctx context.Context, text string) (bool, error) {
	if text == "" {
		return false, fmt.Errorf("principle text cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.loadLocked(ctx)
	if err != nil {
		return false, err
	}

	for _, existing := range doc.Principles {
		if existing == text {
			return false, nil
		}
	}

	doc.Principles = append(doc.Principles, text)
	doc.touch(time.Now())

	if err := s.saveLocked(ctx, doc); err != nil {
		return false, err
	}

	s.logger.Info("principle added", zap.Int("principles", len(doc.Principles)))
	return true, nil
}

// BuildDesignContext loads the document and renders the generation context
// bundle from it.
func (s *Store) BuildDesignContext(ctx context.Context) (string, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return doc.DesignContext(), nil
}

// MostAcceptedChangeTypes loads the document and ranks approved change types.
func (s *Store) MostAcceptedChangeTypes(ctx context.Context) ([]ChangeTypeCount, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.MostAcceptedChangeTypes(), nil
}

// MostRejectedFiles loads the document and ranks rejection targets.
func (s *Store) MostRejectedFiles(ctx context.Context) ([]FileCount, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.MostRejectedFiles(), nil
}

// ConflictsWithRejected loads the document and runs the rejected-pattern
// conflict heuristic against a candidate description.
func (s *Store) ConflictsWithRejected(ctx context.Context, description string) (*RejectedPattern, error) {
	doc, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return doc.ConflictsWithRejected(description), nil
}
