// Package notification reacts to project status changes: it persists an
// in-app notification for the project owner and sends a best-effort email.
package notification

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"permit-review/internal/domain"
	"permit-review/internal/pkg/i18n"
	"permit-review/internal/repository"
	"permit-review/internal/service/email"
)

// Deduper reports whether a key is seen for the first time.
type Deduper interface {
	IsNew(ctx context.Context, key string) (bool, error)
}

type Options struct {
	Locale        string
	FallbackEmail string
}

type Service interface {
	HandleStatusChange(ctx context.Context, change domain.StatusChange) error

	List(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, userID string, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID string) error
	GetUnreadCount(ctx context.Context, userID string) (int64, error)
}

type service struct {
	notifRepo   repository.NotificationRepository
	projectRepo repository.ProjectRepository
	emailSvc    email.Service
	dedup       Deduper
	catalog     *i18n.Catalog
	opts        Options
}

func NewService(
	notifRepo repository.NotificationRepository,
	projectRepo repository.ProjectRepository,
	emailSvc email.Service,
	dedup Deduper,
	catalog *i18n.Catalog,
	opts Options,
) Service {
	return &service{
		notifRepo:   notifRepo,
		projectRepo: projectRepo,
		emailSvc:    emailSvc,
		dedup:       dedup,
		catalog:     catalog,
		opts:        opts,
	}
}

// HandleStatusChange runs once per detected status diff, across every
// instance listening for changes. The notification row is the durable
// effect; email delivery failures are logged and swallowed.
func (s *service) HandleStatusChange(ctx context.Context, change domain.StatusChange) error {
	if !change.Changed() {
		return nil
	}
	if !s.firstDelivery(ctx, change) {
		slog.Debug("status change already handled", "project_id", change.ProjectID, "status", change.After)
		return nil
	}

	project, err := s.projectRepo.GetByID(ctx, change.ProjectID)
	if err != nil {
		return domain.NewDependencyError("database", "get_project", err)
	}
	if project == nil {
		return domain.NewNotFoundError("project", change.ProjectID.String())
	}

	status := string(change.After)
	notif := &domain.Notification{
		ID:        uuid.New(),
		ProjectID: project.ID,
		UserID:    recipientUser(project),
		Type:      domain.NotifStatusChange,
		Message:   s.catalog.Format(s.opts.Locale, "notification.status_changed", map[string]string{"status": status}),
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		return domain.NewDependencyError("database", "create_notification", err)
	}

	s.sendEmail(ctx, project, change)
	return nil
}

func (s *service) sendEmail(ctx context.Context, project *domain.Project, change domain.StatusChange) {
	to := project.Metadata.ContactEmail
	if to == "" {
		to = s.opts.FallbackEmail
	}
	if to == "" || s.emailSvc == nil {
		slog.Info("no email recipient for status change, skipping",
			"project_id", project.ID,
			"status", change.After,
		)
		return
	}

	msg := email.StatusChange{
		To:           to,
		ProjectID:    project.ID.String(),
		ProjectTitle: project.Metadata.Title,
		Status:       string(change.After),
		Message:      s.statusMessage(change.After),
	}
	if err := s.emailSvc.SendStatusChangeEmail(ctx, msg); err != nil {
		slog.Warn("failed to send status email",
			"project_id", project.ID,
			"status", change.After,
			"error", err,
		)
		return
	}

	slog.Info("status email sent", "project_id", project.ID, "status", change.After)
}

// firstDelivery claims the change for this instance. When the dedup store
// is unavailable the change is handled anyway.
func (s *service) firstDelivery(ctx context.Context, change domain.StatusChange) bool {
	if s.dedup == nil {
		return true
	}
	key := fmt.Sprintf("status-change:%s:%s:%s:%d", change.ProjectID, change.Before, change.After, change.ChangedAt.UnixNano())
	isNew, err := s.dedup.IsNew(ctx, key)
	if err != nil {
		slog.Warn("status change dedup check failed, handling anyway", "project_id", change.ProjectID, "error", err)
		return true
	}
	return isNew
}

// statusMessage is the canned text for a new status.
func (s *service) statusMessage(status domain.ProjectStatus) string {
	key := "status." + string(status)
	if !s.catalog.Has(s.opts.Locale, key) {
		key = "status.default"
	}
	return s.catalog.Translate(s.opts.Locale, key)
}

func recipientUser(project *domain.Project) string {
	if project.Metadata.CreatedBy != "" {
		return project.Metadata.CreatedBy
	}
	return domain.SystemUser
}

func (s *service) List(ctx context.Context, userID string, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	params.Validate()
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, domain.NewDependencyError("database", "list_notifications", err)
	}

	return domain.NewPaginatedResponse(notifications, params, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, userID string, id uuid.UUID) error {
	notif, err := s.notifRepo.GetByID(ctx, id)
	if err != nil {
		return domain.NewDependencyError("database", "get_notification", err)
	}
	if notif == nil {
		return domain.NewNotFoundError("notification", id.String())
	}
	if notif.UserID != userID {
		return domain.NewForbiddenError("notification belongs to another user")
	}

	if err := s.notifRepo.MarkAsRead(ctx, id); err != nil {
		return domain.NewDependencyError("database", "mark_notification_read", err)
	}
	return nil
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	if err := s.notifRepo.MarkAllAsRead(ctx, userID); err != nil {
		return domain.NewDependencyError("database", "mark_all_notifications_read", err)
	}
	return nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int64, error) {
	count, err := s.notifRepo.CountUnread(ctx, userID)
	if err != nil {
		return 0, domain.NewDependencyError("database", "count_unread", err)
	}
	return count, nil
}
