package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"permit-review/internal/domain"
)

// AnalysisUpdate is a partial write: nil fields are left untouched.
type AnalysisUpdate struct {
	Analysis   *domain.Analysis
	Status     *domain.ProjectStatus
	AnalyzedAt *time.Time
}

type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) error
	// GetByID returns nil, nil when the project does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	List(ctx context.Context, ownerID string, limit int) ([]domain.Project, error)
	// UpdateStatus writes the status and, when event is non-nil, its history
	// event in one transaction. Either both land or neither does.
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus, event *domain.HistoryEvent) error
	UpdateDocuments(ctx context.Context, id uuid.UUID, documents domain.DocumentList) error
	UpdateAnalysis(ctx context.Context, id uuid.UUID, update AnalysisUpdate) error

	CountByStatus(ctx context.Context, ownerID string) (map[domain.ProjectStatus]int64, error)
	GetLastActivityAt(ctx context.Context, ownerID string) (*time.Time, error)
}

type projectRepository struct {
	db *sqlx.DB
}

func NewProjectRepository(db *sqlx.DB) ProjectRepository {
	return &projectRepository{db: db}
}

const projectColumns = `
	id, COALESCE(status, '') AS status, metadata, documents, analysis, analyzed_at,
	created_at, updated_at, metadata->>'status' AS legacy_status`

func (r *projectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (status, metadata, documents)
		VALUES ($1, $2, $3)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowxContext(ctx, query,
		project.Status, project.Metadata, project.Documents,
	).Scan(&project.ID, &project.CreatedAt, &project.UpdatedAt)
}

func (r *projectRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	var project domain.Project
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	project.ResolveStatus()
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, ownerID string, limit int) ([]domain.Project, error) {
	var (
		projects []domain.Project
		err      error
	)

	if ownerID != "" {
		query := `SELECT ` + projectColumns + ` FROM projects
			WHERE metadata->>'createdBy' = $1
			ORDER BY created_at DESC
			LIMIT $2`
		err = r.db.SelectContext(ctx, &projects, query, ownerID, limit)
	} else {
		query := `SELECT ` + projectColumns + ` FROM projects
			ORDER BY created_at DESC
			LIMIT $1`
		err = r.db.SelectContext(ctx, &projects, query, limit)
	}
	if err != nil {
		return nil, err
	}

	for i := range projects {
		projects[i].ResolveStatus()
	}
	return projects, nil
}

func (r *projectRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus, event *domain.HistoryEvent) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	query := `UPDATE projects SET status = $2, updated_at = NOW() WHERE id = $1`
	if err := execOne(ctx, tx, query, id, status); err != nil {
		return err
	}
	if event != nil {
		if _, err := insertHistory(ctx, tx, event); err != nil {
			return fmt.Errorf("insert history: %w", err)
		}
	}

	return tx.Commit()
}

func (r *projectRepository) UpdateDocuments(ctx context.Context, id uuid.UUID, documents domain.DocumentList) error {
	query := `UPDATE projects SET documents = $2, updated_at = NOW() WHERE id = $1`
	return r.execOne(ctx, query, id, documents)
}

func (r *projectRepository) UpdateAnalysis(ctx context.Context, id uuid.UUID, update AnalysisUpdate) error {
	sets := []string{"updated_at = NOW()"}
	args := []interface{}{id}

	if update.Analysis != nil {
		args = append(args, update.Analysis)
		sets = append(sets, fmt.Sprintf("analysis = $%d", len(args)))
	}
	if update.Status != nil {
		args = append(args, *update.Status)
		sets = append(sets, fmt.Sprintf("status = $%d", len(args)))
	}
	if update.AnalyzedAt != nil {
		args = append(args, *update.AnalyzedAt)
		sets = append(sets, fmt.Sprintf("analyzed_at = $%d", len(args)))
	}

	query := `UPDATE projects SET ` + strings.Join(sets, ", ") + ` WHERE id = $1`
	return r.execOne(ctx, query, args...)
}

func (r *projectRepository) execOne(ctx context.Context, query string, args ...interface{}) error {
	return execOne(ctx, r.db, query, args...)
}

// execOne reports sql.ErrNoRows when the statement touched nothing.
func execOne(ctx context.Context, db sqlx.ExecerContext, query string, args ...interface{}) error {
	res, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// CountByStatus groups on the resolved status, so legacy rows are counted
// under their metadata status.
func (r *projectRepository) CountByStatus(ctx context.Context, ownerID string) (map[domain.ProjectStatus]int64, error) {
	var rows []struct {
		Status string `db:"status"`
		Count  int64  `db:"count"`
	}
	query := `
		SELECT COALESCE(NULLIF(status, ''), metadata->>'status', $2) AS status, COUNT(*) AS count
		FROM projects
		WHERE ($1 = '' OR metadata->>'createdBy' = $1)
		GROUP BY 1`
	if err := r.db.SelectContext(ctx, &rows, query, ownerID, domain.StatusAnalysisPending); err != nil {
		return nil, err
	}

	counts := make(map[domain.ProjectStatus]int64, len(rows))
	for _, row := range rows {
		status := domain.ProjectStatus(row.Status)
		if !status.IsValid() {
			status = domain.StatusAnalysisPending
		}
		counts[status] += row.Count
	}
	return counts, nil
}

func (r *projectRepository) GetLastActivityAt(ctx context.Context, ownerID string) (*time.Time, error) {
	var last sql.NullTime
	query := `
		SELECT MAX(updated_at) FROM projects
		WHERE ($1 = '' OR metadata->>'createdBy' = $1)`
	if err := r.db.GetContext(ctx, &last, query, ownerID); err != nil {
		return nil, err
	}
	if !last.Valid {
		return nil, nil
	}
	return &last.Time, nil
}
