package domain

import (
	"time"

	"github.com/google/uuid"
)

// Comment is never edited; only its author may delete it.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	ProjectID uuid.UUID  `json:"projectId" db:"project_id"`
	UserID    string     `json:"userId" db:"user_id"`
	UserName  *string    `json:"userName,omitempty" db:"user_name"`
	Content   string     `json:"content" db:"content"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

type CreateCommentInput struct {
	Content string `json:"content"`
}
