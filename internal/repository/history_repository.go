package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"permit-review/internal/domain"
)

// HistoryRepository is append-only: there is no update or delete.
type HistoryRepository interface {
	// Create inserts the event. A second insert with the same idempotency key
	// is a no-op and reports created=false.
	Create(ctx context.Context, event *domain.HistoryEvent) (bool, error)
	ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.HistoryEvent, error)
}

type historyRepository struct {
	db *sqlx.DB
}

func NewHistoryRepository(db *sqlx.DB) HistoryRepository {
	return &historyRepository{db: db}
}

const insertHistoryQuery = `
	INSERT INTO history (id, project_id, action, user_id, details, idempotency_key, timestamp)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (idempotency_key) DO NOTHING`

func (r *historyRepository) Create(ctx context.Context, event *domain.HistoryEvent) (bool, error) {
	return insertHistory(ctx, r.db, event)
}

// insertHistory runs on the pool or inside a transaction.
func insertHistory(ctx context.Context, db sqlx.ExecerContext, event *domain.HistoryEvent) (bool, error) {
	res, err := db.ExecContext(ctx, insertHistoryQuery,
		event.ID, event.ProjectID, event.Action, event.UserID,
		event.Details, event.IdempotencyKey, event.Timestamp,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *historyRepository) ListByProject(ctx context.Context, projectID uuid.UUID, limit int) ([]domain.HistoryEvent, error) {
	query := `
		SELECT id, project_id, action, user_id, details, idempotency_key, timestamp
		FROM history
		WHERE project_id = $1
		ORDER BY timestamp DESC
		LIMIT $2`

	var events []domain.HistoryEvent
	err := r.db.SelectContext(ctx, &events, query, projectID, limit)
	return events, err
}
