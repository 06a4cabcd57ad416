package attachment_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"permit-review/internal/domain"
	"permit-review/internal/mocks"
	"permit-review/internal/service/attachment"
	"permit-review/internal/storage"
)

func TestService_Store(t *testing.T) {
	ctx := context.Background()
	projectID := uuid.New()

	t.Run("Uploads with resolved type", func(t *testing.T) {
		blobs := new(mocks.BlobStore)
		svc := attachment.NewService(blobs, 0)
		path := attachment.DocumentPath(projectID, "plan.pdf")

		blobs.On("Put", ctx, path, mock.Anything, int64(4), "application/pdf").
			Return(&storage.Object{Path: path, URL: "https://cdn/" + path}, nil).Once()

		stored, err := svc.Store(ctx, path, domain.FileUpload{Name: "plan.pdf", Content: []byte("%PDF")})

		require.NoError(t, err)
		assert.Equal(t, path, stored.Path)
		assert.Equal(t, "https://cdn/"+path, stored.URL)
		assert.Equal(t, "application/pdf", stored.Type)
		assert.Equal(t, int64(4), stored.Size)
		assert.Len(t, stored.Checksum, 64)
		blobs.AssertExpectations(t)
	})

	t.Run("Oversized file never reaches the blob store", func(t *testing.T) {
		blobs := new(mocks.BlobStore)
		svc := attachment.NewService(blobs, attachment.DefaultMaxSize)

		file := domain.FileUpload{Name: "huge.zip", Size: attachment.DefaultMaxSize + 1}
		stored, err := svc.Store(ctx, attachment.DocumentPath(projectID, file.Name), file)

		assert.Nil(t, stored)
		var sizeErr *domain.SizeLimitError
		require.ErrorAs(t, err, &sizeErr)
		assert.Equal(t, "huge.zip", sizeErr.FileName)
		assert.Equal(t, attachment.DefaultMaxSize+1, sizeErr.Size)
		assert.Contains(t, err.Error(), "huge.zip")
		blobs.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Exactly at the ceiling is accepted", func(t *testing.T) {
		svc := attachment.NewService(new(mocks.BlobStore), 8)
		assert.NoError(t, svc.CheckSize(domain.FileUpload{Name: "a", Content: make([]byte, 8)}))
		assert.Error(t, svc.CheckSize(domain.FileUpload{Name: "a", Content: make([]byte, 9)}))
	})

	t.Run("Blob store failure is a dependency error", func(t *testing.T) {
		blobs := new(mocks.BlobStore)
		svc := attachment.NewService(blobs, 0)

		blobs.On("Put", ctx, "p", mock.Anything, int64(1), "image/png").
			Return(nil, errors.New("connection refused")).Once()

		_, err := svc.Store(ctx, "p", domain.FileUpload{Name: "map.PNG", Content: []byte{1}})

		var depErr *domain.DependencyError
		require.ErrorAs(t, err, &depErr)
		assert.Equal(t, "blob_store.put", depErr.Detail())
	})
}

func TestResolveType(t *testing.T) {
	tests := map[string]struct {
		name     string
		declared string
		want     string
	}{
		"declared wins":    {"a.pdf", "text/plain", "text/plain"},
		"pdf":              {"a.pdf", "", "application/pdf"},
		"upper case ext":   {"A.PDF", "", "application/pdf"},
		"jpg":              {"a.jpg", "", "image/jpeg"},
		"jpeg":             {"a.jpeg", "", "image/jpeg"},
		"png":              {"a.png", "", "image/png"},
		"zip":              {"a.zip", "  ", "application/zip"},
		"generic declared": {"a.pdf", "application/octet-stream", "application/pdf"},
		"shp":              {"zone.shp", "", "application/x-qgis"},
		"unknown":          {"a.docx", "", "application/octet-stream"},
		"no extension":     {"README", "", "application/octet-stream"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, attachment.ResolveType(tc.name, tc.declared))
		})
	}
}

func TestDocumentPath(t *testing.T) {
	id := uuid.MustParse("6f1c2d9e-8a4b-4c1e-9f2a-0b3c4d5e6f70")

	assert.Equal(t, "projects/"+id.String()+"/plan.pdf", attachment.DocumentPath(id, "plan.pdf"))
	assert.Equal(t, "projects/"+id.String()+"/plan.pdf", attachment.DocumentPath(id, "../../etc/plan.pdf"))
	assert.Equal(t, "projects/"+id.String()+"/plan.pdf", attachment.DocumentPath(id, `C:\Users\me\plan.pdf`))
	assert.Equal(t, "unnamed", attachment.SafeName(".."))
	assert.Equal(t, "unnamed", attachment.SafeName(""))
}
