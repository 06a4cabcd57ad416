package project_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"permit-review/internal/domain"
	"permit-review/internal/repository"
)

// memProjects is an in-memory ProjectRepository. Status writes carry their
// history event into events atomically, like the SQL transaction.
type memProjects struct {
	mu       sync.Mutex
	projects map[uuid.UUID]domain.Project
	events   *memHistory
	// failStatus fails the next status write before anything is stored.
	failStatus error
}

func newMemProjects(events *memHistory) *memProjects {
	return &memProjects{projects: make(map[uuid.UUID]domain.Project), events: events}
}

func (r *memProjects) Create(_ context.Context, p *domain.Project) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.ID = uuid.New()
	p.CreatedAt = p.Metadata.CreatedAt
	p.UpdatedAt = p.CreatedAt
	r.projects[p.ID] = *p
	return nil
}

func (r *memProjects) GetByID(_ context.Context, id uuid.UUID) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return nil, nil
	}
	p.Documents = append(domain.DocumentList{}, p.Documents...)
	return &p, nil
}

func (r *memProjects) List(_ context.Context, ownerID string, limit int) ([]domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Project
	for _, p := range r.projects {
		if ownerID == "" || p.Metadata.CreatedBy == ownerID {
			out = append(out, p)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memProjects) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ProjectStatus, event *domain.HistoryEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failStatus; err != nil {
		r.failStatus = nil
		return err
	}
	p, ok := r.projects[id]
	if !ok {
		return errNoRows
	}
	if event != nil {
		if _, err := r.events.Create(ctx, event); err != nil {
			return err
		}
	}
	p.Status = status
	r.projects[id] = p
	return nil
}

func (r *memProjects) UpdateDocuments(_ context.Context, id uuid.UUID, docs domain.DocumentList) error {
	return r.update(id, func(p *domain.Project) { p.Documents = docs })
}

func (r *memProjects) UpdateAnalysis(_ context.Context, id uuid.UUID, u repository.AnalysisUpdate) error {
	return r.update(id, func(p *domain.Project) {
		if u.Analysis != nil {
			p.Analysis = u.Analysis
		}
		if u.Status != nil {
			p.Status = *u.Status
		}
		if u.AnalyzedAt != nil {
			p.AnalyzedAt = u.AnalyzedAt
		}
	})
}

func (r *memProjects) update(id uuid.UUID, fn func(p *domain.Project)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.projects[id]
	if !ok {
		return errNoRows
	}
	fn(&p)
	r.projects[id] = p
	return nil
}

func (r *memProjects) CountByStatus(_ context.Context, ownerID string) (map[domain.ProjectStatus]int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := make(map[domain.ProjectStatus]int64)
	for _, p := range r.projects {
		if ownerID == "" || p.Metadata.CreatedBy == ownerID {
			counts[p.Status]++
		}
	}
	return counts, nil
}

func (r *memProjects) GetLastActivityAt(_ context.Context, _ string) (*time.Time, error) {
	return nil, nil
}

// memHistory is an in-memory HistoryRepository honouring idempotency keys.
type memHistory struct {
	mu     sync.Mutex
	events []domain.HistoryEvent
	keys   map[string]bool
}

func newMemHistory() *memHistory {
	return &memHistory{keys: make(map[string]bool)}
}

func (r *memHistory) Create(_ context.Context, e *domain.HistoryEvent) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.keys[e.IdempotencyKey] {
		return false, nil
	}
	r.keys[e.IdempotencyKey] = true
	r.events = append(r.events, *e)
	return true, nil
}

func (r *memHistory) ListByProject(_ context.Context, projectID uuid.UUID, limit int) ([]domain.HistoryEvent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.HistoryEvent
	for _, e := range r.events {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memHistory) snapshot() []domain.HistoryEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.HistoryEvent, len(r.events))
	copy(out, r.events)
	return out
}
