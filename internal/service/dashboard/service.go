// Package dashboard summarises the project pipeline for the landing page.
package dashboard

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"permit-review/internal/domain"
	"permit-review/internal/repository"
)

const cacheTTL = time.Minute

type Stats struct {
	TotalProjects       int64                          `json:"totalProjects"`
	ByStatus            map[domain.ProjectStatus]int64 `json:"byStatus"`
	AwaitingDecision    int64                          `json:"awaitingDecision"`
	Closed              int64                          `json:"closed"`
	UnreadNotifications int64                          `json:"unreadNotifications"`
	LastActivityAt      *time.Time                     `json:"lastActivityAt"`
}

type Service interface {
	// GetStats covers every project, or only ownerID's when it is set.
	GetStats(ctx context.Context, userID, ownerID string) (*Stats, error)
}

type service struct {
	projectRepo repository.ProjectRepository
	notifRepo   repository.NotificationRepository
	redis       *redis.Client
}

func NewService(projectRepo repository.ProjectRepository, notifRepo repository.NotificationRepository, redis *redis.Client) Service {
	return &service{
		projectRepo: projectRepo,
		notifRepo:   notifRepo,
		redis:       redis,
	}
}

func (s *service) GetStats(ctx context.Context, userID, ownerID string) (*Stats, error) {
	scope := ownerID
	if scope == "" {
		scope = "all"
	}
	cacheKey := "dashboard:stats:" + scope

	var stats *Stats
	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var st Stats
			if json.Unmarshal([]byte(cached), &st) == nil {
				stats = &st
			}
		}
	}

	if stats == nil {
		counts, err := s.projectRepo.CountByStatus(ctx, ownerID)
		if err != nil {
			return nil, domain.NewDependencyError("database", "count_projects", err)
		}

		lastActivity, err := s.projectRepo.GetLastActivityAt(ctx, ownerID)
		if err != nil {
			return nil, domain.NewDependencyError("database", "last_activity", err)
		}

		stats = &Stats{
			ByStatus:       make(map[domain.ProjectStatus]int64),
			LastActivityAt: lastActivity,
		}
		for _, status := range []domain.ProjectStatus{
			domain.StatusDraft, domain.StatusAnalysisPending, domain.StatusAnalyzed,
			domain.StatusApproved, domain.StatusRejected,
		} {
			n := counts[status]
			stats.ByStatus[status] = n
			stats.TotalProjects += n
			if status.IsTerminal() {
				stats.Closed += n
			}
		}
		stats.AwaitingDecision = counts[domain.StatusAnalyzed]

		if s.redis != nil {
			if statsJSON, err := json.Marshal(stats); err == nil {
				_ = s.redis.Set(ctx, cacheKey, statsJSON, cacheTTL).Err()
			}
		}
	}

	// Unread count is per caller and never cached.
	if userID != "" {
		unread, err := s.notifRepo.CountUnread(ctx, userID)
		if err != nil {
			return nil, domain.NewDependencyError("database", "count_unread", err)
		}
		stats.UnreadNotifications = unread
	}

	return stats, nil
}
