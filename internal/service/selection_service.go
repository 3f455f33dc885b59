package service

import (
	"context"
	"errors"
	"hash/fnv"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uniplanner-api/internal/curriculum"
	"github.com/noah-isme/uniplanner-api/internal/models"
	"github.com/noah-isme/uniplanner-api/internal/repository"
	appErrors "github.com/noah-isme/uniplanner-api/pkg/errors"
)

const selectionLockStripes = 64

type selectionStore interface {
	Save(ctx context.Context, session *models.SelectionSession) error
	Get(ctx context.Context, id string) (*models.SelectionSession, error)
	Delete(ctx context.Context, id string) error
}

// SelectionService drives stored selection sessions used before
// registration. Each request restores the session, applies one operation
// and saves it back under a per-session lock.
type SelectionService struct {
	catalog   catalogProvider
	store     selectionStore
	policy    curriculum.Policy
	validator *validator.Validate
	metrics   *MetricsService
	logger    *zap.Logger
	now       func() time.Time

	locks [selectionLockStripes]sync.Mutex
}

func NewSelectionService(catalog catalogProvider, store selectionStore, policy curriculum.Policy, validate *validator.Validate, metrics *MetricsService, logger *zap.Logger) *SelectionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SelectionService{
		catalog:   catalog,
		store:     store,
		policy:    policy.WithDefaults(),
		validator: validate,
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Start opens a session in the approved phase, optionally preselecting the
// semesters before CurrentSemester.
func (s *SelectionService) Start(ctx context.Context, req models.StartSelectionRequest) (*models.SelectionView, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, err
	}
	session := curriculum.NewSession(index, s.policy)
	if req.Preselect && req.CurrentSemester > 1 {
		if _, err := session.Preselect(req.CurrentSemester); err != nil {
			return nil, curriculumError(err, s.logger, s.metrics)
		}
	}

	now := s.now().UTC()
	record := &models.SelectionSession{
		ID:              uuid.NewString(),
		CurrentSemester: req.CurrentSemester,
		Snapshot:        session.Snapshot(),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store selection session")
	}
	s.metrics.RecordSelectionEvent("started")
	view := s.view(record, session, index)
	return &view, nil
}

func (s *SelectionService) Get(ctx context.Context, id string) (*models.SelectionView, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, err
	}
	session, err := curriculum.RestoreSession(index, s.policy, record.Snapshot)
	if err != nil {
		return nil, curriculumError(err, s.logger, s.metrics)
	}
	view := s.view(record, session, index)
	return &view, nil
}

func (s *SelectionService) ToggleApproved(ctx context.Context, id, code string) (*models.ToggleResult, error) {
	return s.toggle(ctx, id, code, (*curriculum.Session).ToggleApproved)
}

func (s *SelectionService) ToggleInProgress(ctx context.Context, id, code string) (*models.ToggleResult, error) {
	return s.toggle(ctx, id, code, (*curriculum.Session).ToggleInProgress)
}

func (s *SelectionService) toggle(ctx context.Context, id, code string, op func(*curriculum.Session, string) (bool, error)) (*models.ToggleResult, error) {
	var selected bool
	view, err := s.mutate(ctx, id, func(session *curriculum.Session, _ *models.SelectionSession) error {
		var err error
		selected, err = op(session, code)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &models.ToggleResult{Code: code, Selected: selected, Session: *view}, nil
}

// Advance moves the session to the in-progress phase.
func (s *SelectionService) Advance(ctx context.Context, id string) (*models.SelectionView, error) {
	return s.mutate(ctx, id, func(session *curriculum.Session, _ *models.SelectionSession) error {
		return session.Advance()
	})
}

// Skip clears the current phase. Skipping the in-progress phase finalizes
// the session and returns its payload.
func (s *SelectionService) Skip(ctx context.Context, id string) (*models.SelectionOutcome, error) {
	var payload *curriculum.SubmissionPayload
	view, err := s.mutate(ctx, id, func(session *curriculum.Session, record *models.SelectionSession) error {
		p, err := session.Skip()
		if err != nil {
			return err
		}
		if p != nil {
			payload = p
			record.Finalized = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSelectionEvent("skipped")
	return &models.SelectionOutcome{Session: *view, Payload: payload}, nil
}

// Finalize closes the session and returns the payload to submit.
func (s *SelectionService) Finalize(ctx context.Context, id string) (*models.SelectionOutcome, error) {
	var payload curriculum.SubmissionPayload
	view, err := s.mutate(ctx, id, func(session *curriculum.Session, record *models.SelectionSession) error {
		p, err := session.Finalize()
		if err != nil {
			return err
		}
		payload = p
		record.Finalized = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.RecordSelectionEvent("finalized")
	return &models.SelectionOutcome{Session: *view, Payload: &payload}, nil
}

// Finalized returns a finalized session for registration.
func (s *SelectionService) Finalized(ctx context.Context, id string) (*models.SelectionSession, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !record.Finalized {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "selection session is not finalized")
	}
	return record, nil
}

// Discard deletes a session once its payload has been stored.
func (s *SelectionService) Discard(ctx context.Context, id string) error {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()
	if err := s.store.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete selection session")
	}
	return nil
}

func (s *SelectionService) mutate(ctx context.Context, id string, fn func(*curriculum.Session, *models.SelectionSession) error) (*models.SelectionView, error) {
	mu := s.lockFor(id)
	mu.Lock()
	defer mu.Unlock()

	record, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.Finalized {
		return nil, appErrors.Clone(appErrors.ErrInvalidPhase, "selection session already finalized")
	}
	index, err := s.catalog.Index(ctx)
	if err != nil {
		return nil, err
	}
	session, err := curriculum.RestoreSession(index, s.policy, record.Snapshot)
	if err != nil {
		return nil, curriculumError(err, s.logger, s.metrics)
	}
	if err := fn(session, record); err != nil {
		return nil, curriculumError(err, s.logger, s.metrics)
	}

	record.Snapshot = session.Snapshot()
	record.UpdatedAt = s.now().UTC()
	if err := s.store.Save(ctx, record); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store selection session")
	}
	view := s.view(record, session, index)
	return &view, nil
}

func (s *SelectionService) load(ctx context.Context, id string) (*models.SelectionSession, error) {
	record, err := s.store.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSelectionSessionNotFound) {
			return nil, appErrors.ErrSessionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load selection session")
	}
	return record, nil
}

func (s *SelectionService) lockFor(id string) *sync.Mutex {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	return &s.locks[h.Sum32()%selectionLockStripes]
}

func (s *SelectionService) view(record *models.SelectionSession, session *curriculum.Session, index *curriculum.Index) models.SelectionView {
	snap := session.Snapshot()
	state := session.State()
	return models.SelectionView{
		ID:                   record.ID,
		Phase:                snap.Phase,
		Finalized:            record.Finalized,
		Approved:             snap.Approved,
		InProgress:           snap.InProgress,
		FreeElectiveCode:     s.policy.FreeElectiveCode,
		FreeElectiveCredits:  snap.FreeElectiveCredits,
		FreeElectiveCap:      s.policy.FreeElectiveCap,
		NextFreeElectiveSlot: session.NextFreeElectiveSlot(),
		Progress:             curriculum.Summarize(state, index),
		Semesters:            curriculum.Overview(state, index),
	}
}
