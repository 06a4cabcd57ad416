package notification_test

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"permit-review/internal/domain"
	"permit-review/internal/mocks"
	"permit-review/internal/pkg/i18n"
	"permit-review/internal/service/email"
	"permit-review/internal/service/notification"
)

type fixture struct {
	notifRepo   *mocks.NotificationRepository
	projectRepo *mocks.ProjectRepository
	emailSvc    *mocks.EmailService
	dedup       *mocks.Deduper
	svc         notification.Service
}

func newFixture(opts notification.Options) *fixture {
	f := &fixture{
		notifRepo:   new(mocks.NotificationRepository),
		projectRepo: new(mocks.ProjectRepository),
		emailSvc:    new(mocks.EmailService),
		dedup:       new(mocks.Deduper),
	}
	f.svc = notification.NewService(f.notifRepo, f.projectRepo, f.emailSvc, f.dedup, i18n.MustDefault(), opts)
	return f
}

func TestService_HandleStatusChange(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()
	changedAt := time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC)

	project := &domain.Project{
		ID:     projectID,
		Status: domain.StatusApproved,
		Metadata: domain.ProjectMetadata{
			Title:        "Carrière du Nord",
			ContactEmail: "owner@example.com",
			CreatedBy:    "user-1",
		},
	}
	change := domain.StatusChange{
		ProjectID: projectID,
		Before:    domain.StatusAnalyzed,
		After:     domain.StatusApproved,
		ChangedAt: changedAt,
	}

	t.Run("Persists notification and sends email", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})

		f.projectRepo.On("GetByID", ctx, projectID).Return(project, nil).Once()
		f.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.ProjectID == projectID &&
				n.UserID == "user-1" &&
				n.Type == domain.NotifStatusChange &&
				n.Message == "Statut changé à APPROVED" &&
				!n.Read
		})).Return(nil).Once()
		f.dedup.On("IsNew", ctx, mock.AnythingOfType("string")).Return(true, nil).Once()
		f.emailSvc.On("SendStatusChangeEmail", ctx, mock.MatchedBy(func(m email.StatusChange) bool {
			return m.To == "owner@example.com" &&
				m.Status == "APPROVED" &&
				m.ProjectTitle == "Carrière du Nord" &&
				m.Message != ""
		})).Return(nil).Once()

		err := f.svc.HandleStatusChange(ctx, change)

		require.NoError(t, err)
		f.notifRepo.AssertExpectations(t)
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("Email failure does not fail the notification", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})

		f.projectRepo.On("GetByID", ctx, projectID).Return(project, nil).Once()
		f.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.dedup.On("IsNew", ctx, mock.Anything).Return(true, nil).Once()
		f.emailSvc.On("SendStatusChangeEmail", ctx, mock.Anything).Return(errors.New("smtp down")).Once()

		err := f.svc.HandleStatusChange(ctx, change)

		assert.NoError(t, err)
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("Duplicate delivery is ignored", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})

		f.dedup.On("IsNew", ctx, "status-change:"+projectID.String()+":ANALYZED:APPROVED:"+strconv.FormatInt(changedAt.UnixNano(), 10)).
			Return(false, nil).Once()

		err := f.svc.HandleStatusChange(ctx, change)

		assert.NoError(t, err)
		f.dedup.AssertExpectations(t)
		f.projectRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		f.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		f.emailSvc.AssertNotCalled(t, "SendStatusChangeEmail", mock.Anything, mock.Anything)
	})

	t.Run("Dedup store failure still handles the change", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})

		f.dedup.On("IsNew", ctx, mock.Anything).Return(false, errors.New("redis down")).Once()
		f.projectRepo.On("GetByID", ctx, projectID).Return(project, nil).Once()
		f.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.emailSvc.On("SendStatusChangeEmail", ctx, mock.Anything).Return(nil).Once()

		require.NoError(t, f.svc.HandleStatusChange(ctx, change))
		f.notifRepo.AssertExpectations(t)
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("Falls back to configured recipient", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "en", FallbackEmail: "ops@example.com"})
		noContact := *project
		noContact.Metadata.ContactEmail = ""

		f.projectRepo.On("GetByID", ctx, projectID).Return(&noContact, nil).Once()
		f.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
		f.dedup.On("IsNew", ctx, mock.Anything).Return(true, nil).Once()
		f.emailSvc.On("SendStatusChangeEmail", ctx, mock.MatchedBy(func(m email.StatusChange) bool {
			return m.To == "ops@example.com"
		})).Return(nil).Once()

		require.NoError(t, f.svc.HandleStatusChange(ctx, change))
		f.emailSvc.AssertExpectations(t)
	})

	t.Run("No recipient skips the email", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})
		f.dedup.On("IsNew", ctx, mock.Anything).Return(true, nil).Once()
		noContact := *project
		noContact.Metadata.ContactEmail = ""
		noContact.Metadata.CreatedBy = ""

		f.projectRepo.On("GetByID", ctx, projectID).Return(&noContact, nil).Once()
		f.notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == domain.SystemUser
		})).Return(nil).Once()

		require.NoError(t, f.svc.HandleStatusChange(ctx, change))
		f.emailSvc.AssertNotCalled(t, "SendStatusChangeEmail", mock.Anything, mock.Anything)
	})

	t.Run("Unchanged status is ignored", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})

		err := f.svc.HandleStatusChange(ctx, domain.StatusChange{ProjectID: projectID, Before: domain.StatusAnalyzed, After: domain.StatusAnalyzed})

		assert.NoError(t, err)
		f.projectRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
		f.notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Missing project", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})
		f.dedup.On("IsNew", ctx, mock.Anything).Return(true, nil).Once()

		f.projectRepo.On("GetByID", ctx, projectID).Return(nil, nil).Once()

		err := f.svc.HandleStatusChange(ctx, change)
		assert.True(t, domain.IsNotFound(err))
	})

	t.Run("Persist failure is returned", func(t *testing.T) {
		f := newFixture(notification.Options{Locale: "fr"})
		f.dedup.On("IsNew", ctx, mock.Anything).Return(true, nil).Once()

		f.projectRepo.On("GetByID", ctx, projectID).Return(project, nil).Once()
		f.notifRepo.On("Create", ctx, mock.Anything).Return(errors.New("db down")).Once()

		err := f.svc.HandleStatusChange(ctx, change)

		var depErr *domain.DependencyError
		assert.ErrorAs(t, err, &depErr)
		f.emailSvc.AssertNotCalled(t, "SendStatusChangeEmail", mock.Anything, mock.Anything)
	})
}

func TestService_StatusMessages(t *testing.T) {
	ctx := context.Background()
	catalog := i18n.MustDefault()

	tests := map[domain.ProjectStatus]string{
		domain.StatusApproved:        catalog.Translate("fr", "status.APPROVED"),
		domain.StatusRejected:        catalog.Translate("fr", "status.REJECTED"),
		domain.StatusAnalyzed:        catalog.Translate("fr", "status.ANALYZED"),
		domain.StatusAnalysisPending: catalog.Translate("fr", "status.default"),
		domain.StatusDraft:           catalog.Translate("fr", "status.default"),
	}

	for status, want := range tests {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture(notification.Options{Locale: "fr"})
			id := uuid.New()
			project := &domain.Project{ID: id, Metadata: domain.ProjectMetadata{Title: "T", ContactEmail: "a@b.c"}}

			f.projectRepo.On("GetByID", ctx, id).Return(project, nil).Once()
			f.notifRepo.On("Create", ctx, mock.Anything).Return(nil).Once()
			f.dedup.On("IsNew", ctx, mock.Anything).Return(true, nil).Once()
			f.emailSvc.On("SendStatusChangeEmail", ctx, mock.MatchedBy(func(m email.StatusChange) bool {
				return m.Message == want
			})).Return(nil).Once()

			before := domain.StatusAnalysisPending
			if status == before {
				before = domain.StatusDraft
			}
			require.NoError(t, f.svc.HandleStatusChange(ctx, domain.StatusChange{ProjectID: id, Before: before, After: status}))
			f.emailSvc.AssertExpectations(t)
		})
	}
}

func TestService_MarkAsRead(t *testing.T) {
	ctx := context.Background()
	id := uuid.New()
	notif := &domain.Notification{ID: id, UserID: "user-1"}

	t.Run("Recipient can mark", func(t *testing.T) {
		f := newFixture(notification.Options{})
		f.notifRepo.On("GetByID", ctx, id).Return(notif, nil).Once()
		f.notifRepo.On("MarkAsRead", ctx, id).Return(nil).Once()

		assert.NoError(t, f.svc.MarkAsRead(ctx, "user-1", id))
		f.notifRepo.AssertExpectations(t)
	})

	t.Run("Other user is forbidden", func(t *testing.T) {
		f := newFixture(notification.Options{})
		f.notifRepo.On("GetByID", ctx, id).Return(notif, nil).Once()

		err := f.svc.MarkAsRead(ctx, "user-2", id)

		var authErr *domain.AuthorizationError
		require.ErrorAs(t, err, &authErr)
		assert.True(t, authErr.Authenticated)
		f.notifRepo.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
	})

	t.Run("Missing notification", func(t *testing.T) {
		f := newFixture(notification.Options{})
		f.notifRepo.On("GetByID", ctx, id).Return(nil, nil).Once()

		assert.True(t, domain.IsNotFound(f.svc.MarkAsRead(ctx, "user-1", id)))
	})
}

func TestService_List(t *testing.T) {
	ctx := context.Background()
	f := newFixture(notification.Options{})
	params := domain.PaginationParams{Page: 1, PageSize: 2}
	items := []domain.Notification{{ID: uuid.New()}, {ID: uuid.New()}}

	f.notifRepo.On("ListByUser", ctx, "user-1", true, params).Return(items, int64(5), nil).Once()

	res, err := f.svc.List(ctx, "user-1", true, params)

	require.NoError(t, err)
	assert.Len(t, res.Data, 2)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
}
