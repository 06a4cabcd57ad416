// Package project coordinates the permit project workflow: creation, status
// transitions, document attachment and analysis hand-off. A status change and
// its history event are written in one transaction; every other mutation
// writes its history event strictly after the state write it describes.
package project

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"permit-review/internal/domain"
	"permit-review/internal/pkg/i18n"
	"permit-review/internal/repository"
	"permit-review/internal/service/analysis"
	"permit-review/internal/service/attachment"
	"permit-review/internal/service/history"
)

// ListLimit is how many projects a list read returns, newest first.
const ListLimit = 50

const (
	cacheKeyPrefix  = "project:"
	genKeySuffix    = ":gen"
	defaultCacheTTL = 5 * time.Minute
	genKeyTTL       = 24 * time.Hour
)

type Options struct {
	Locale   string
	CacheTTL time.Duration
}

type StartAnalysisResult struct {
	ProjectID    uuid.UUID            `json:"projectId"`
	DocumentPath string               `json:"documentPath"`
	Status       domain.ProjectStatus `json:"status"`
	Simulated    bool                 `json:"simulated"`
}

type Service interface {
	Create(ctx context.Context, actor domain.Actor, input domain.CreateProjectInput, files []domain.FileUpload) (*domain.Project, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, ownerID string) ([]domain.Project, error)
	History(ctx context.Context, id uuid.UUID) ([]domain.HistoryEvent, error)

	TransitionStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ProjectStatus) (*domain.Project, error)
	Reopen(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Project, error)
	AttachDocuments(ctx context.Context, actor domain.Actor, id uuid.UUID, files []domain.FileUpload) (*domain.Project, error)

	StartAnalysis(ctx context.Context, actor domain.Actor, id uuid.UUID) (*StartAnalysisResult, error)
	RecordAnalysisResult(ctx context.Context, input domain.AnalysisResultInput) (*domain.Project, error)

	// HandleStatusChange drops the cached copy of a project written by
	// anyone, including the analysis service writing the row directly.
	HandleStatusChange(ctx context.Context, change domain.StatusChange) error
}

type service struct {
	projectRepo repository.ProjectRepository
	history     history.Service
	attachments attachment.Service
	analyzer    analysis.Client
	redis       *redis.Client
	catalog     *i18n.Catalog
	opts        Options
	now         func() time.Time
}

func NewService(
	projectRepo repository.ProjectRepository,
	historySvc history.Service,
	attachments attachment.Service,
	analyzer analysis.Client,
	redis *redis.Client,
	catalog *i18n.Catalog,
	opts Options,
) Service {
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	return &service{
		projectRepo: projectRepo,
		history:     historySvc,
		attachments: attachments,
		analyzer:    analyzer,
		redis:       redis,
		catalog:     catalog,
		opts:        opts,
		now:         time.Now,
	}
}

// Create persists a new project in ANALYSIS_PENDING and records its CREATED
// event. Nothing is written when validation fails. If a later step fails the
// already persisted project is returned alongside the error.
func (s *service) Create(ctx context.Context, actor domain.Actor, input domain.CreateProjectInput, files []domain.FileUpload) (*domain.Project, error) {
	meta := input.Metadata
	meta.Title = strings.TrimSpace(meta.Title)
	if meta.Title == "" {
		return nil, domain.NewValidationError("metadata.title", "title is required")
	}
	for _, f := range files {
		if err := s.attachments.CheckSize(f); err != nil {
			return nil, err
		}
	}

	if actor.UserID != "" {
		meta.CreatedBy = actor.UserID
	}
	now := s.now().UTC()
	meta.CreatedAt = now

	project := &domain.Project{
		Status:    domain.StatusAnalysisPending,
		Metadata:  meta,
		Documents: domain.DocumentList{},
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, domain.NewDependencyError("database", "create_project", err)
	}

	createdBy := meta.CreatedBy
	if createdBy == "" {
		createdBy = domain.SystemUser
	}
	if _, err := s.history.Record(ctx, domain.RecordHistoryInput{
		ProjectID:      project.ID,
		Action:         domain.ActionCreated,
		UserID:         createdBy,
		IdempotencyKey: eventKey(actor, project.ID, string(domain.ActionCreated)),
		Timestamp:      now,
	}); err != nil {
		return project, fmt.Errorf("project %s created, history not recorded: %w", project.ID, err)
	}

	slog.Info("project created", "project_id", project.ID, "created_by", createdBy)

	if len(files) == 0 {
		return project, nil
	}
	withDocs, err := s.AttachDocuments(ctx, actor, project.ID, files)
	if err != nil {
		return project, err
	}
	return withDocs, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	if project := s.cached(ctx, id); project != nil {
		return project, nil
	}

	gen := s.generation(ctx, id)
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	s.store(ctx, project, gen)
	return project, nil
}

func (s *service) List(ctx context.Context, ownerID string) ([]domain.Project, error) {
	projects, err := s.projectRepo.List(ctx, ownerID, ListLimit)
	if err != nil {
		return nil, domain.NewDependencyError("database", "list_projects", err)
	}
	if projects == nil {
		projects = []domain.Project{}
	}
	return projects, nil
}

func (s *service) History(ctx context.Context, id uuid.UUID) ([]domain.HistoryEvent, error) {
	if _, err := s.load(ctx, id); err != nil {
		return nil, err
	}
	return s.history.ListForProject(ctx, id)
}

// TransitionStatus moves a project along the transition table. Re-applying
// the current status is accepted and writes nothing.
func (s *service) TransitionStatus(ctx context.Context, actor domain.Actor, id uuid.UUID, status domain.ProjectStatus) (*domain.Project, error) {
	if !status.IsValid() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("unknown status %q", status))
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status == status {
		return project, nil
	}
	if err := domain.ValidateTransition(project.Status, status); err != nil {
		return nil, err
	}

	details := fmt.Sprintf("%s -> %s", project.Status, status)
	return s.writeStatus(ctx, actor, project, status, details)
}

// Reopen sends an approved or rejected project back to ANALYSIS_PENDING.
// Only the owner of record may do this.
func (s *service) Reopen(ctx context.Context, actor domain.Actor, id uuid.UUID) (*domain.Project, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !project.OwnedBy(actor.UserID) {
		return nil, domain.NewForbiddenError("only the project owner can reopen it")
	}
	if !project.Status.IsTerminal() {
		return nil, domain.NewValidationError("status",
			fmt.Sprintf("project is %s, only approved or rejected projects can be reopened", project.Status))
	}

	details := s.catalog.Format(s.opts.Locale, "history.reopened", map[string]string{
		"from": string(project.Status),
		"to":   string(domain.StatusAnalysisPending),
	})
	return s.writeStatus(ctx, actor, project, domain.StatusAnalysisPending, details)
}

func (s *service) writeStatus(ctx context.Context, actor domain.Actor, project *domain.Project, to domain.ProjectStatus, details string) (*domain.Project, error) {
	from := project.Status
	event, err := history.NewEvent(domain.RecordHistoryInput{
		ProjectID:      project.ID,
		Action:         domain.ActionStatusChange,
		UserID:         actor.UserOrSystem(),
		Details:        details,
		IdempotencyKey: eventKey(actor, project.ID, string(domain.ActionStatusChange), string(from), string(to)),
	}, s.now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.UpdateStatus(ctx, project.ID, to, event); err != nil {
		return nil, domain.NewDependencyError("database", "update_status", err)
	}
	s.invalidate(ctx, project.ID)
	project.Status = to

	slog.Info("project status changed", "project_id", project.ID, "from", from, "status", to, "user_id", actor.UserOrSystem())
	return project, nil
}

// AttachDocuments uploads files one at a time in the given order and writes
// the merged document list only once every upload has succeeded. Uploads
// that completed before a failure stay in blob storage; retrying the call
// overwrites them at the same paths.
func (s *service) AttachDocuments(ctx context.Context, actor domain.Actor, id uuid.UUID, files []domain.FileUpload) (*domain.Project, error) {
	if len(files) == 0 {
		return nil, domain.NewValidationError("files", "at least one file is required")
	}
	for _, f := range files {
		if err := s.attachments.CheckSize(f); err != nil {
			return nil, err
		}
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(files))
	checksums := make([]string, 0, len(files))
	var last time.Time
	for i, f := range files {
		docPath := attachment.DocumentPath(project.ID, f.Name)
		stored, err := s.attachments.Store(ctx, docPath, f)
		if err != nil {
			return nil, fmt.Errorf("upload %d of %d (%s): %w", i+1, len(files), f.Name, err)
		}

		uploadedAt := s.now().UTC()
		if uploadedAt.Before(last) {
			uploadedAt = last
		}
		last = uploadedAt

		docs = append(docs, domain.Document{
			Name:       attachment.SafeName(f.Name),
			Path:       docPath,
			URL:        stored.URL,
			Type:       stored.Type,
			Size:       stored.Size,
			UploadedAt: uploadedAt,
		})
		checksums = append(checksums, stored.Checksum)
	}

	merged := project.Documents.Merge(docs...)
	if err := s.projectRepo.UpdateDocuments(ctx, project.ID, merged); err != nil {
		return nil, domain.NewDependencyError("database", "update_documents", err)
	}
	s.invalidate(ctx, project.ID)
	project.Documents = merged

	for i, d := range docs {
		if _, err := s.history.Record(ctx, domain.RecordHistoryInput{
			ProjectID: project.ID,
			Action:    domain.ActionFileUpload,
			UserID:    actor.UserOrSystem(),
			Details:   d.Name,
			// Content-addressed so re-uploading the same bytes converges.
			IdempotencyKey: fmt.Sprintf("%s:%s:%s:%s", project.ID, domain.ActionFileUpload, d.Path, checksums[i]),
			Timestamp:      d.UploadedAt,
		}); err != nil {
			return nil, fmt.Errorf("documents attached to %s, history not recorded: %w", project.ID, err)
		}
	}

	return project, nil
}

// StartAnalysis hands the project's first PDF to the analysis service and
// returns without waiting for the result. When the service cannot be
// reached the project is marked ANALYZED with a simulated completion whose
// history details carry domain.SimulatedAnalysisMarker.
func (s *service) StartAnalysis(ctx context.Context, actor domain.Actor, id uuid.UUID) (*StartAnalysisResult, error) {
	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if project.Status.IsTerminal() {
		return nil, domain.NewValidationError("status", fmt.Sprintf("analysis cannot start on a %s project", project.Status))
	}

	doc, ok := project.FirstPDF()
	if !ok {
		return nil, domain.ErrNoAnalyzableDocument
	}
	docPath := doc.Path
	if docPath == "" {
		docPath = attachment.DocumentPath(project.ID, doc.Name)
	}

	if err := s.analyzer.Submit(ctx, project.ID, docPath); err != nil {
		slog.Warn("analysis service unreachable, recording simulated completion",
			"project_id", project.ID,
			"error", err,
		)
		return s.simulateAnalysis(ctx, actor, project, docPath)
	}

	if _, err := s.history.Record(ctx, domain.RecordHistoryInput{
		ProjectID:      project.ID,
		Action:         domain.ActionAnalysisStarted,
		UserID:         actor.UserOrSystem(),
		Details:        s.catalog.Format(s.opts.Locale, "history.analysis_started", map[string]string{"document": docPath}),
		IdempotencyKey: eventKey(actor, project.ID, string(domain.ActionAnalysisStarted), docPath),
	}); err != nil {
		return nil, fmt.Errorf("analysis of %s submitted, history not recorded: %w", project.ID, err)
	}

	slog.Info("analysis submitted", "project_id", project.ID, "document", docPath)
	return &StartAnalysisResult{
		ProjectID:    project.ID,
		DocumentPath: docPath,
		Status:       project.Status,
	}, nil
}

func (s *service) simulateAnalysis(ctx context.Context, actor domain.Actor, project *domain.Project, docPath string) (*StartAnalysisResult, error) {
	now := s.now().UTC()
	status := domain.StatusAnalyzed
	update := repository.AnalysisUpdate{
		Status:     &status,
		AnalyzedAt: &now,
	}
	if project.Analysis == nil || project.Analysis.Status != domain.AnalysisCompleted {
		update.Analysis = &domain.Analysis{Status: domain.AnalysisCompleted, Simulated: true}
	}

	if err := s.projectRepo.UpdateAnalysis(ctx, project.ID, update); err != nil {
		return nil, domain.NewDependencyError("database", "update_analysis", err)
	}
	s.invalidate(ctx, project.ID)

	details := domain.SimulatedAnalysisMarker + " " + s.catalog.Translate(s.opts.Locale, "history.analysis_simulated")
	if _, err := s.history.Record(ctx, domain.RecordHistoryInput{
		ProjectID:      project.ID,
		Action:         domain.ActionAnalysisCompleted,
		UserID:         actor.UserOrSystem(),
		Details:        details,
		IdempotencyKey: eventKey(actor, project.ID, string(domain.ActionAnalysisCompleted), "simulated"),
		Timestamp:      now,
	}); err != nil {
		return nil, fmt.Errorf("simulated analysis of %s stored, history not recorded: %w", project.ID, err)
	}

	return &StartAnalysisResult{
		ProjectID:    project.ID,
		DocumentPath: docPath,
		Status:       status,
		Simulated:    true,
	}, nil
}

// RecordAnalysisResult stores what the analysis service reports. A
// COMPLETED result also moves the project to ANALYZED when the transition
// table allows it; closed projects keep their status.
func (s *service) RecordAnalysisResult(ctx context.Context, input domain.AnalysisResultInput) (*domain.Project, error) {
	id, err := uuid.Parse(input.ProjectID)
	if err != nil {
		return nil, domain.NewValidationError("projectId", "invalid project id")
	}
	if !input.Analysis.Status.IsValid() {
		return nil, domain.NewValidationError("analysis.status", fmt.Sprintf("unknown analysis status %q", input.Analysis.Status))
	}

	project, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	result := input.Analysis
	result.Simulated = false
	update := repository.AnalysisUpdate{Analysis: &result}

	completed := result.Status == domain.AnalysisCompleted
	var now time.Time
	if completed {
		now = s.now().UTC()
		update.AnalyzedAt = &now
		if domain.CanTransition(project.Status, domain.StatusAnalyzed) {
			status := domain.StatusAnalyzed
			update.Status = &status
		} else {
			slog.Info("analysis completed on a closed project, status unchanged",
				"project_id", project.ID,
				"status", project.Status,
			)
		}
	}

	if err := s.projectRepo.UpdateAnalysis(ctx, project.ID, update); err != nil {
		return nil, domain.NewDependencyError("database", "update_analysis", err)
	}
	s.invalidate(ctx, project.ID)

	project.Analysis = &result
	if update.Status != nil {
		project.Status = *update.Status
	}
	if update.AnalyzedAt != nil {
		project.AnalyzedAt = update.AnalyzedAt
	}

	if !completed {
		if result.Status == domain.AnalysisError {
			slog.Warn("analysis service reported an error", "project_id", project.ID, "error", result.Error)
		}
		return project, nil
	}

	if _, err := s.history.Record(ctx, domain.RecordHistoryInput{
		ProjectID: project.ID,
		Action:    domain.ActionAnalysisCompleted,
		UserID:    domain.AIServiceUser,
		Details: s.catalog.Format(s.opts.Locale, "history.analysis_completed", map[string]string{
			"count": strconv.Itoa(len(result.Locations)),
		}),
		IdempotencyKey: eventKey(domain.Actor{}, project.ID, string(domain.ActionAnalysisCompleted)),
		Timestamp:      now,
	}); err != nil {
		return nil, fmt.Errorf("analysis of %s stored, history not recorded: %w", project.ID, err)
	}

	return project, nil
}

func (s *service) load(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, domain.NewDependencyError("database", "get_project", err)
	}
	if project == nil {
		return nil, domain.NewNotFoundError("project", id.String())
	}
	return project, nil
}

func (s *service) cached(ctx context.Context, id uuid.UUID) *domain.Project {
	if s.redis == nil {
		return nil
	}
	data, err := s.redis.Get(ctx, cacheKeyPrefix+id.String()).Bytes()
	if err != nil {
		return nil
	}
	var project domain.Project
	if json.Unmarshal(data, &project) != nil {
		return nil
	}
	return &project
}

func (s *service) HandleStatusChange(ctx context.Context, change domain.StatusChange) error {
	s.invalidate(ctx, change.ProjectID)
	return nil
}

// generation reads the eviction counter of a project before a load so store
// can tell whether an eviction raced the read.
func (s *service) generation(ctx context.Context, id uuid.UUID) int64 {
	if s.redis == nil {
		return 0
	}
	gen, err := s.redis.Get(ctx, cacheKeyPrefix+id.String()+genKeySuffix).Int64()
	if err != nil {
		return 0
	}
	return gen
}

// store caches project only if no eviction happened since gen was read.
func (s *service) store(ctx context.Context, project *domain.Project, gen int64) {
	if s.redis == nil {
		return
	}
	data, err := json.Marshal(project)
	if err != nil {
		return
	}

	key := cacheKeyPrefix + project.ID.String()
	genKey := key + genKeySuffix
	err = s.redis.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, genKey).Int64()
		if err != nil && err != redis.Nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.opts.CacheTTL)
			return nil
		})
		return err
	}, genKey)
	if err != nil && err != redis.TxFailedErr {
		slog.Debug("project cache store skipped", "project_id", project.ID, "error", err)
	}
}

func (s *service) invalidate(ctx context.Context, id uuid.UUID) {
	if s.redis == nil {
		return
	}
	key := cacheKeyPrefix + id.String()
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, key+genKeySuffix)
		pipe.Expire(ctx, key+genKeySuffix, genKeyTTL)
		pipe.Del(ctx, key)
		return nil
	})
	if err != nil {
		slog.Warn("failed to invalidate project cache", "project_id", id, "error", err)
	}
}

// eventKey derives a history idempotency key from the request key so a
// retried request maps onto the events it already wrote.
func eventKey(actor domain.Actor, projectID uuid.UUID, parts ...string) string {
	base := actor.IdempotencyKey
	if base == "" {
		base = uuid.NewString()
	}
	return strings.Join(append([]string{base, projectID.String()}, parts...), ":")
}
