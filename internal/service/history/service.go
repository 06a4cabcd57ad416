// Package history is the append-only audit trail of actions taken on projects.
package history

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"permit-review/internal/domain"
	"permit-review/internal/repository"
)

// MaxListSize caps how many events a single read returns.
const MaxListSize = 100

type Service interface {
	Record(ctx context.Context, input domain.RecordHistoryInput) (*domain.HistoryEvent, error)
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]domain.HistoryEvent, error)
}

type service struct {
	historyRepo repository.HistoryRepository
	now         func() time.Time
}

func NewService(historyRepo repository.HistoryRepository) Service {
	return &service{
		historyRepo: historyRepo,
		now:         time.Now,
	}
}

func (s *service) Record(ctx context.Context, input domain.RecordHistoryInput) (*domain.HistoryEvent, error) {
	event, err := NewEvent(input, s.now().UTC())
	if err != nil {
		return nil, err
	}

	created, err := s.historyRepo.Create(ctx, event)
	if err != nil {
		return nil, domain.NewDependencyError("database", "record_history", err)
	}
	if !created {
		slog.Debug("history event already recorded",
			"project_id", event.ProjectID,
			"action", event.Action,
			"idempotency_key", event.IdempotencyKey,
		)
	}

	return event, nil
}

// NewEvent validates input and fills its defaults without storing anything.
// Callers that write the event alongside other state use it directly.
func NewEvent(input domain.RecordHistoryInput, now time.Time) (*domain.HistoryEvent, error) {
	if input.ProjectID == uuid.Nil {
		return nil, domain.NewValidationError("projectId", "project id is required")
	}
	if !validAction(input.Action) {
		return nil, domain.NewValidationError("action", fmt.Sprintf("unknown history action %q", input.Action))
	}

	event := &domain.HistoryEvent{
		ID:             uuid.New(),
		ProjectID:      input.ProjectID,
		Action:         input.Action,
		UserID:         input.UserID,
		IdempotencyKey: input.IdempotencyKey,
		Timestamp:      input.Timestamp,
	}
	if event.UserID == "" {
		event.UserID = domain.SystemUser
	}
	if event.IdempotencyKey == "" {
		event.IdempotencyKey = event.ID.String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = now
	}
	if input.Details != "" {
		details := input.Details
		event.Details = &details
	}
	return event, nil
}

func (s *service) ListForProject(ctx context.Context, projectID uuid.UUID) ([]domain.HistoryEvent, error) {
	events, err := s.historyRepo.ListByProject(ctx, projectID, MaxListSize)
	if err != nil {
		return nil, domain.NewDependencyError("database", "list_history", err)
	}
	if events == nil {
		events = []domain.HistoryEvent{}
	}
	return events, nil
}

func validAction(action domain.HistoryAction) bool {
	switch action {
	case domain.ActionCreated, domain.ActionUpdated, domain.ActionStatusChange,
		domain.ActionFileUpload, domain.ActionAnalysisStarted, domain.ActionAnalysisCompleted:
		return true
	}
	return false
}
