package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"permit-review/internal/domain"
	"permit-review/internal/service/dashboard"
	"permit-review/internal/service/project"
)

type ProjectService struct {
	mock.Mock
}

func (m *ProjectService) Create(ctx context.Context, actor domain.Actor, input domain.CreateProjectInput, files []domain.FileUpload) (*domain.Project, error) {
	args := m.Called(ctx, actor, input, files)
	return projectResult(args)
}

func (m *ProjectService) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, id)
	return projectResult(args)
}

func (m *ProjectService) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	args := m.Called(ctx, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Project), args.Error(1)
}

func (m *ProjectService) History(ctx context.Context, id uuid.UUID) ([]domain.HistoryEvent, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEvent), args.Error(1)
}

func (m *ProjectService) TransitionStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ProjectStatus) (*domain.Project, error) {
	args := m.Called(ctx, actor, id, status)
	return projectResult(args)
}

func (m *ProjectService) Reopen(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Project, error) {
	args := m.Called(ctx, actor, id)
	return projectResult(args)
}

func (m *ProjectService) AttachDocuments(ctx context.Context, actor domain.Actor, id uuid.UUID, files []domain.FileUpload) (*domain.Project, error) {
	args := m.Called(ctx, actor, id, files)
	return projectResult(args)
}

func (m *ProjectService) StartAnalysis(ctx context.Context, actor domain.Actor, id uuid.UUID) (*project.StartAnalysisResult, error) {
	args := m.Called(ctx, actor, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*project.StartAnalysisResult), args.Error(1)
}

func (m *ProjectService) RecordAnalysisResult(ctx context.Context, input domain.AnalysisResultInput) (*domain.Project, error) {
	args := m.Called(ctx, input)
	return projectResult(args)
}

func (m *ProjectService) HandleStatusChange(ctx context.Context, change domain.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}

type DashboardService struct {
	mock.Mock
}

func (m *DashboardService) GetStats(ctx context.Context, userID, ownerID string) (*dashboard.Stats, error) {
	args := m.Called(ctx, userID, ownerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dashboard.Stats), args.Error(1)
}

func projectResult(args mock.Arguments) (*domain.Project, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Project), args.Error(1)
}
