package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"permit-review/internal/domain"
	"permit-review/internal/service/email"
	"permit-review/internal/storage"
)

type BlobStore struct {
	mock.Mock
}

func (m *BlobStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) (*storage.Object, error) {
	args := m.Called(ctx, path, r, size, contentType)
	if fn, ok := args.Get(0).(func(context.Context, string, io.Reader, int64, string) *storage.Object); ok {
		return fn(ctx, path, r, size, contentType), args.Error(1)
	}
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.Object), args.Error(1)
}

type AnalysisClient struct {
	mock.Mock
}

func (m *AnalysisClient) Submit(ctx context.Context, projectID uuid.UUID, documentPath string) error {
	args := m.Called(ctx, projectID, documentPath)
	return args.Error(0)
}

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendStatusChangeEmail(ctx context.Context, msg email.StatusChange) error {
	args := m.Called(ctx, msg)
	return args.Error(0)
}

type Deduper struct {
	mock.Mock
}

func (m *Deduper) IsNew(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

type HistoryService struct {
	mock.Mock
}

func (m *HistoryService) Record(ctx context.Context, input domain.RecordHistoryInput) (*domain.HistoryEvent, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.HistoryEvent), args.Error(1)
}

func (m *HistoryService) ListForProject(ctx context.Context, projectID uuid.UUID) ([]domain.HistoryEvent, error) {
	args := m.Called(ctx, projectID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.HistoryEvent), args.Error(1)
}

type StatusChangeHandler struct {
	mock.Mock
}

func (m *StatusChangeHandler) HandleStatusChange(ctx context.Context, change domain.StatusChange) error {
	args := m.Called(ctx, change)
	return args.Error(0)
}
