package comment

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"permit-review/internal/domain"
	"permit-review/internal/repository"
)

const (
	maxContentLength = 5000
	scanBatch        = 100
)

type Service interface {
	Create(ctx context.Context, projectID uuid.UUID, author domain.Principal, input domain.CreateCommentInput) (*domain.Comment, error)
	Delete(ctx context.Context, userID string, projectID, id uuid.UUID) error
	ListByProject(ctx context.Context, projectID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error)
}

type service struct {
	commentRepo repository.CommentRepository
	projectRepo repository.ProjectRepository
	redis       *redis.Client
}

func NewService(commentRepo repository.CommentRepository, projectRepo repository.ProjectRepository, redis *redis.Client) Service {
	return &service{
		commentRepo: commentRepo,
		projectRepo: projectRepo,
		redis:       redis,
	}
}

func (s *service) Create(ctx context.Context, projectID uuid.UUID, author domain.Principal, input domain.CreateCommentInput) (*domain.Comment, error) {
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, domain.NewValidationError("content", "comment cannot be empty")
	}
	if len(content) > maxContentLength {
		return nil, domain.NewValidationError("content", fmt.Sprintf("comment exceeds %d characters", maxContentLength))
	}
	if author.UserID == "" {
		return nil, domain.NewAuthorizationError("authentication required")
	}

	if err := s.ensureProject(ctx, projectID); err != nil {
		return nil, err
	}

	comment := &domain.Comment{
		ID:        uuid.New(),
		ProjectID: projectID,
		UserID:    author.UserID,
		Content:   content,
	}
	if author.Name != "" {
		name := author.Name
		comment.UserName = &name
	}

	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, domain.NewDependencyError("database", "create_comment", err)
	}

	s.invalidate(ctx, projectID)
	return comment, nil
}

func (s *service) Delete(ctx context.Context, userID string, projectID, id uuid.UUID) error {
	comment, err := s.commentRepo.GetByID(ctx, id)
	if err != nil {
		return domain.NewDependencyError("database", "get_comment", err)
	}
	if comment == nil || comment.ProjectID != projectID {
		return domain.NewNotFoundError("comment", id.String())
	}
	if comment.UserID != userID {
		return domain.NewForbiddenError("only the author can delete this comment")
	}

	if err := s.commentRepo.Delete(ctx, id); err != nil {
		return domain.NewDependencyError("database", "delete_comment", err)
	}

	s.invalidate(ctx, projectID)
	return nil
}

func (s *service) ListByProject(ctx context.Context, projectID uuid.UUID, params domain.PaginationParams) (domain.PaginatedResponse[domain.Comment], error) {
	params.Validate()
	cacheKey := fmt.Sprintf("comments:%s:page:%d:size:%d", projectID, params.Page, params.PageSize)

	if s.redis != nil {
		if cached, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			var result domain.PaginatedResponse[domain.Comment]
			if json.Unmarshal([]byte(cached), &result) == nil {
				return result, nil
			}
		}
	}

	comments, total, err := s.commentRepo.ListByProject(ctx, projectID, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Comment]{}, domain.NewDependencyError("database", "list_comments", err)
	}

	result := domain.NewPaginatedResponse(comments, params, total)

	if s.redis != nil {
		if resultJSON, err := json.Marshal(result); err == nil {
			_ = s.redis.Set(ctx, cacheKey, resultJSON, 5*time.Minute).Err()
		}
	}

	return result, nil
}

func (s *service) ensureProject(ctx context.Context, projectID uuid.UUID) error {
	project, err := s.projectRepo.GetByID(ctx, projectID)
	if err != nil {
		return domain.NewDependencyError("database", "get_project", err)
	}
	if project == nil {
		return domain.NewNotFoundError("project", projectID.String())
	}
	return nil
}

func (s *service) invalidate(ctx context.Context, projectID uuid.UUID) {
	if s.redis == nil {
		return
	}
	var keys []string
	iter := s.redis.Scan(ctx, 0, fmt.Sprintf("comments:%s:*", projectID), scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		slog.Warn("failed to scan comment cache", "project_id", projectID, "error", err)
	}
	if len(keys) > 0 {
		_ = s.redis.Del(ctx, keys...).Err()
	}
}
