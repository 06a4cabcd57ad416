package domain

import (
	"time"

	"github.com/google/uuid"
)

type HistoryAction string

const (
	ActionCreated           HistoryAction = "CREATED"
	ActionUpdated           HistoryAction = "UPDATED"
	ActionStatusChange      HistoryAction = "STATUS_CHANGE"
	ActionFileUpload        HistoryAction = "FILE_UPLOAD"
	ActionAnalysisStarted   HistoryAction = "ANALYSIS_STARTED"
	ActionAnalysisCompleted HistoryAction = "ANALYSIS_COMPLETED"
)

// SimulatedAnalysisMarker prefixes the details of a completion that was
// recorded without the analysis service.
const SimulatedAnalysisMarker = "[SIMULATED]"

// HistoryEvent is append-only: once written it is never updated or deleted.
type HistoryEvent struct {
	ID             uuid.UUID     `json:"id" db:"id"`
	ProjectID      uuid.UUID     `json:"projectId" db:"project_id"`
	Action         HistoryAction `json:"action" db:"action"`
	UserID         string        `json:"userId" db:"user_id"`
	Details        *string       `json:"details,omitempty" db:"details"`
	IdempotencyKey string        `json:"-" db:"idempotency_key"`
	Timestamp      time.Time     `json:"timestamp" db:"timestamp"`
}

type RecordHistoryInput struct {
	ProjectID      uuid.UUID
	Action         HistoryAction
	UserID         string
	Details        string
	IdempotencyKey string
	Timestamp      time.Time
}
