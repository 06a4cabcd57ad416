package service

import (
	"github.com/minio/minio-go/v7"
	"github.com/redis/go-redis/v9"

	"permit-review/internal/config"
	"permit-review/internal/dedup"
	"permit-review/internal/pkg/i18n"
	"permit-review/internal/repository"
	"permit-review/internal/service/analysis"
	"permit-review/internal/service/attachment"
	"permit-review/internal/service/auth"
	"permit-review/internal/service/comment"
	"permit-review/internal/service/dashboard"
	"permit-review/internal/service/email"
	"permit-review/internal/service/history"
	"permit-review/internal/service/notification"
	"permit-review/internal/service/project"
	"permit-review/internal/storage"
)

type Services struct {
	Auth         auth.Service
	Project      project.Service
	History      history.Service
	Comment      comment.Service
	Notification notification.Service
	Email        email.Service
	Dashboard    dashboard.Service
}

func NewServices(repos *repository.Repositories, redis *redis.Client, minioClient *minio.Client, catalog *i18n.Catalog, cfg *config.Config) *Services {
	blobs := storage.NewMinIOStore(minioClient, cfg.MinIOBucket, cfg.MinIOPublicEndpoint, cfg.MinIOPublicUseSSL)
	attachmentService := attachment.NewService(blobs, cfg.MaxUploadBytes)
	analyzer := analysis.NewClient(cfg.AIServiceURL, cfg.AIServiceTimeout)

	emailService := email.NewService(cfg, catalog)
	historyService := history.NewService(repos.History)

	projectService := project.NewService(
		repos.Project,
		historyService,
		attachmentService,
		analyzer,
		redis,
		catalog,
		project.Options{Locale: cfg.Locale, CacheTTL: cfg.ProjectCacheTTL},
	)

	notificationService := notification.NewService(
		repos.Notification,
		repos.Project,
		emailService,
		dedup.NewFilter(redis),
		catalog,
		notification.Options{Locale: cfg.Locale, FallbackEmail: cfg.NotifyFallbackEmail},
	)

	return &Services{
		Auth:         auth.NewService(cfg),
		Project:      projectService,
		History:      historyService,
		Comment:      comment.NewService(repos.Comment, repos.Project, redis),
		Notification: notificationService,
		Email:        emailService,
		Dashboard:    dashboard.NewService(repos.Project, repos.Notification, redis),
	}
}
