package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to ProjectStatus
		want     bool
	}{
		{StatusDraft, StatusAnalysisPending, true},
		{StatusDraft, StatusApproved, false},
		{StatusAnalysisPending, StatusAnalyzed, true},
		{StatusAnalysisPending, StatusApproved, false},
		{StatusAnalyzed, StatusApproved, true},
		{StatusAnalyzed, StatusRejected, true},
		{StatusAnalyzed, StatusDraft, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusAnalysisPending, false},
		{StatusRejected, StatusAnalyzed, false},
		{StatusApproved, StatusApproved, true},
	}

	for _, tc := range tests {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.want, CanTransition(tc.from, tc.to))
		})
	}
}

func TestValidateTransition(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusAnalyzed, StatusApproved))

	err := ValidateTransition(StatusAnalyzed, ProjectStatus("ARCHIVED"))
	assert.True(t, IsValidation(err))

	err = ValidateTransition(StatusRejected, StatusAnalyzed)
	assert.True(t, IsValidation(err))
	assert.Contains(t, err.Error(), "REJECTED is closed")

	err = ValidateTransition(StatusDraft, StatusApproved)
	assert.Contains(t, err.Error(), "allowed: ANALYSIS_PENDING, ANALYZED, REJECTED")
}

func TestAllowedTransitions_ReturnsCopy(t *testing.T) {
	allowed := AllowedTransitions(StatusAnalyzed)
	require.Len(t, allowed, 3)

	allowed[0] = StatusApproved
	assert.Equal(t, StatusAnalysisPending, AllowedTransitions(StatusAnalyzed)[0])
	assert.Empty(t, AllowedTransitions(StatusApproved))
}

func TestProject_ResolveStatus(t *testing.T) {
	legacy := func(s string) *string { return &s }

	tests := []struct {
		name    string
		project Project
		want    ProjectStatus
	}{
		{"top-level wins", Project{Status: StatusAnalyzed, LegacyStatus: legacy("APPROVED")}, StatusAnalyzed},
		{"legacy fallback", Project{LegacyStatus: legacy("APPROVED")}, StatusApproved},
		{"unknown legacy value", Project{LegacyStatus: legacy("ON_HOLD")}, StatusAnalysisPending},
		{"nothing stored", Project{}, StatusAnalysisPending},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := tc.project
			p.ResolveStatus()
			assert.Equal(t, tc.want, p.Status)
		})
	}
}

func TestProject_FirstPDF(t *testing.T) {
	p := Project{Documents: DocumentList{
		{Name: "plan.png", Path: "projects/1/plan.png", Type: "image/png"},
		{Name: "RAPPORT.PDF", Path: "projects/1/RAPPORT.PDF"},
		{Name: "annexe", Path: "projects/1/annexe", Type: "application/pdf"},
	}}

	doc, ok := p.FirstPDF()
	require.True(t, ok)
	assert.Equal(t, "projects/1/RAPPORT.PDF", doc.Path)

	_, ok = (&Project{Documents: DocumentList{{Name: "notes.txt"}}}).FirstPDF()
	assert.False(t, ok)
}

func TestDocumentList_Merge(t *testing.T) {
	base := DocumentList{
		{Name: "a.pdf", Path: "projects/1/a.pdf", Size: 1},
		{Name: "b.pdf", Path: "projects/1/b.pdf", Size: 2},
	}

	merged := base.Merge(
		Document{Name: "a.pdf", Path: "projects/1/a.pdf", Size: 10},
		Document{Name: "c.pdf", Path: "projects/1/c.pdf", Size: 3},
	)

	require.Len(t, merged, 3)
	assert.Equal(t, int64(10), merged[0].Size)
	assert.Equal(t, "projects/1/b.pdf", merged[1].Path)
	assert.Equal(t, "projects/1/c.pdf", merged[2].Path)
	assert.Equal(t, int64(1), base[0].Size, "receiver must not be mutated")
}

func TestDocumentList_ValueAndScan(t *testing.T) {
	var empty DocumentList
	v, err := empty.Value()
	require.NoError(t, err)
	assert.Equal(t, []byte("[]"), v)

	var docs DocumentList
	require.NoError(t, docs.Scan([]byte(`[{"name":"a.pdf","path":"projects/1/a.pdf"}]`)))
	require.Len(t, docs, 1)
	assert.Equal(t, "a.pdf", docs[0].Name)

	assert.Error(t, docs.Scan(42))
}

func TestAnalysis_NilValue(t *testing.T) {
	var a *Analysis
	v, err := a.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestPagination(t *testing.T) {
	params := PaginationParams{Page: 0, PageSize: 500}
	params.Validate()
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 100, params.PageSize)

	res := NewPaginatedResponse[int](nil, PaginationParams{Page: 2, PageSize: 10}, 25)
	assert.NotNil(t, res.Data)
	assert.Equal(t, 3, res.TotalPages)
	assert.True(t, res.HasNext)
	assert.Equal(t, 10, PaginationParams{Page: 2, PageSize: 10}.Offset())
}

func TestDependencyError(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewDependencyError("analysis_service", "submit", cause)

	assert.Equal(t, "analysis_service.submit", err.Detail())
	assert.ErrorIs(t, err, cause)
}
