package mocks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"permit-review/internal/domain"
	"permit-review/internal/repository"
)

type ProjectRepository struct {
	mock.Mock
}

func (m *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	args := m.Called(ctx, project)
	return args.Error(0)
}

func (m *ProjectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}

func (m *ProjectRepository) List(ctx context.Context, ownerID string, limit int) ([]domain.Project, error) {
	args := m.Called(ctx, ownerID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *ProjectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus, event *domain.HistoryEvent) error {
	args := m.Called(ctx, id, status, event)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateDocuments(ctx context.Context, id uuid.UUID, documents domain.DocumentList) error {
	args := m.Called(ctx, id, documents)
	return args.Error(0)
}

func (m *ProjectRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, update repository.AnalysisUpdate) error {
	args := m.Called(ctx, id, update)
	return args.Error(0)
}

func (m *ProjectRepository) CountByStatus(ctx context.Context, ownerID string) (map[domain.ProjectStatus]int64, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[domain.ProjectStatus]int64), args.Error(1)
}

func (m *ProjectRepository) GetLastActivityAt(ctx context.Context, ownerID string) (*time.Time, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*time.Time), args.Error(1)
}
