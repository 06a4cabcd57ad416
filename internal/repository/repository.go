package repository

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/jmoiron/sqlx"
)

//go:embed schema.sql
var schema string

type Repositories struct {
	Project      ProjectRepository
	History      HistoryRepository
	Notification NotificationRepository
	Comment      CommentRepository
}

func NewRepositories(db *sqlx.DB) *Repositories {
	return &Repositories{
		Project:      NewProjectRepository(db),
		History:      NewHistoryRepository(db),
		Notification: NewNotificationRepository(db),
		Comment:      NewCommentRepository(db),
	}
}

// Migrate applies the embedded schema. Every statement is safe to re-run.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
