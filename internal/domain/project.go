package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

type ProjectStatus string

const (
	StatusDraft           ProjectStatus = "DRAFT"
	StatusAnalysisPending ProjectStatus = "ANALYSIS_PENDING"
	StatusAnalyzed        ProjectStatus = "ANALYZED"
	StatusApproved        ProjectStatus = "APPROVED"
	StatusRejected        ProjectStatus = "REJECTED"
)

func (s ProjectStatus) IsValid() bool {
	switch s {
	case StatusDraft, StatusAnalysisPending, StatusAnalyzed, StatusApproved, StatusRejected:
		return true
	}
	return false
}

type AnalysisStatus string

const (
	AnalysisPending    AnalysisStatus = "PENDING"
	AnalysisProcessing AnalysisStatus = "PROCESSING"
	AnalysisCompleted  AnalysisStatus = "COMPLETED"
	AnalysisError      AnalysisStatus = "ERROR"
)

func (s AnalysisStatus) IsValid() bool {
	switch s {
	case AnalysisPending, AnalysisProcessing, AnalysisCompleted, AnalysisError:
		return true
	}
	return false
}

// SystemUser is the identity recorded when no acting user is known.
const SystemUser = "system"

// AIServiceUser is the identity recorded for events reported by the analysis service.
const AIServiceUser = "system-ai"

type Project struct {
	ID         uuid.UUID       `json:"id" db:"id"`
	Status     ProjectStatus   `json:"status" db:"status"`
	Metadata   ProjectMetadata `json:"metadata" db:"metadata"`
	Documents  DocumentList    `json:"documents" db:"documents"`
	Analysis   *Analysis       `json:"analysis,omitempty" db:"analysis"`
	AnalyzedAt *time.Time      `json:"analyzedAt,omitempty" db:"analyzed_at"`
	CreatedAt  time.Time       `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time       `json:"updatedAt" db:"updated_at"`

	// LegacyStatus carries metadata.status from rows written before status
	// moved to the top level. It is read, never written.
	LegacyStatus *string `json:"-" db:"legacy_status"`
}

// ResolveStatus applies the legacy read-fallback: the top-level status wins,
// metadata.status is used only when the top-level value is empty.
func (p *Project) ResolveStatus() {
	if p.Status != "" {
		return
	}
	if p.LegacyStatus != nil && ProjectStatus(*p.LegacyStatus).IsValid() {
		p.Status = ProjectStatus(*p.LegacyStatus)
		return
	}
	p.Status = StatusAnalysisPending
}

// OwnedBy reports whether userID is the owner of record.
func (p *Project) OwnedBy(userID string) bool {
	return userID != "" && p.Metadata.CreatedBy == userID
}

// FirstPDF returns the first document that is a PDF by declared type or by
// file name suffix, in upload order.
func (p *Project) FirstPDF() (*Document, bool) {
	for i := range p.Documents {
		if p.Documents[i].IsPDF() {
			return &p.Documents[i], true
		}
	}
	return nil, false
}

type ProjectMetadata struct {
	Title        string     `json:"title"`
	Sender       string     `json:"sender,omitempty"`
	ReceivedDate *time.Time `json:"receivedDate,omitempty"`
	EmailContent string     `json:"emailContent,omitempty"`
	ContactEmail string     `json:"contactEmail,omitempty"`
	CreatedBy    string     `json:"createdBy"`
	CreatedAt    time.Time  `json:"createdAt"`
}

func (m ProjectMetadata) Value() (driver.Value, error) {
	return json.Marshal(m)
}

func (m *ProjectMetadata) Scan(src interface{}) error {
	return scanJSON(src, m)
}

type Document struct {
	Name       string    `json:"name"`
	Path       string    `json:"path"`
	URL        string    `json:"url"`
	Type       string    `json:"type"`
	Size       int64     `json:"size,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func (d Document) IsPDF() bool {
	if d.Type == "application/pdf" {
		return true
	}
	return strings.EqualFold(path.Ext(d.Name), ".pdf")
}

// DocumentList is stored as a JSON array; insertion order is upload order.
type DocumentList []Document

func (l DocumentList) Value() (driver.Value, error) {
	if l == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Document(l))
}

func (l *DocumentList) Scan(src interface{}) error {
	return scanJSON(src, l)
}

// Merge appends docs in order, replacing an existing entry that has the same
// storage path so that a retried upload converges instead of duplicating.
func (l DocumentList) Merge(docs ...Document) DocumentList {
	out := make(DocumentList, len(l), len(l)+len(docs))
	copy(out, l)

	for _, d := range docs {
		replaced := false
		for i := range out {
			if out[i].Path == d.Path {
				out[i] = d
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, d)
		}
	}
	return out
}

type LocationCoord struct {
	Name             string  `json:"name"`
	Lat              float64 `json:"lat"`
	Lng              float64 `json:"lng"`
	FormattedAddress string  `json:"formatted_address"`
}

type Analysis struct {
	Status         AnalysisStatus  `json:"status"`
	Summary        string          `json:"summary,omitempty"`
	Entities       []string        `json:"entities,omitempty"`
	Locations      []string        `json:"locations,omitempty"`
	LocationCoords []LocationCoord `json:"location_coords,omitempty"`
	Dates          []string        `json:"dates,omitempty"`
	Permits        []string        `json:"permits,omitempty"`
	Impacts        []string        `json:"impacts,omitempty"`
	Error          string          `json:"error,omitempty"`
	FullTextLength int             `json:"fullTextLength,omitempty"`
	Simulated      bool            `json:"simulated,omitempty"`
}

func (a *Analysis) Value() (driver.Value, error) {
	if a == nil {
		return nil, nil
	}
	return json.Marshal(a)
}

func (a *Analysis) Scan(src interface{}) error {
	return scanJSON(src, a)
}

type CreateProjectInput struct {
	Metadata ProjectMetadata `json:"metadata"`
}

type UpdateStatusInput struct {
	Status ProjectStatus `json:"status"`
}

type StartAnalysisInput struct {
	ProjectID string `json:"projectId"`
}

type AnalysisResultInput struct {
	ProjectID string   `json:"projectId"`
	Analysis  Analysis `json:"analysis"`
}

// FileUpload is one file handed to the attachment manager.
type FileUpload struct {
	Name        string
	Size        int64
	ContentType string
	Content     []byte
}

// StatusChange is the before/after pair observed on a project's status.
type StatusChange struct {
	ProjectID uuid.UUID     `json:"projectId"`
	Before    ProjectStatus `json:"before"`
	After     ProjectStatus `json:"after"`
	ChangedAt time.Time     `json:"changedAt"`
}

func (c StatusChange) Changed() bool {
	return c.Before != c.After
}

func scanJSON(src interface{}, dst interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		if len(v) == 0 {
			return nil
		}
		return json.Unmarshal(v, dst)
	case string:
		if v == "" {
			return nil
		}
		return json.Unmarshal([]byte(v), dst)
	default:
		return errors.New("unsupported JSON column type")
	}
}
