// Package attachment binds uploaded files to blob storage paths.
package attachment

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"

	"permit-review/internal/domain"
	"permit-review/internal/storage"
)

// DefaultMaxSize is the per-file ceiling: 10 MiB.
const DefaultMaxSize int64 = 10 * 1024 * 1024

// Stored is the durable reference produced for one uploaded file.
type Stored struct {
	Path     string
	URL      string
	Type     string
	Size     int64
	Checksum string
}

type Service interface {
	Store(ctx context.Context, path string, file domain.FileUpload) (*Stored, error)
	CheckSize(file domain.FileUpload) error
	MaxSize() int64
}

type service struct {
	blobs   storage.BlobStore
	maxSize int64
}

func NewService(blobs storage.BlobStore, maxSize int64) Service {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &service{
		blobs:   blobs,
		maxSize: maxSize,
	}
}

func (s *service) MaxSize() int64 {
	return s.maxSize
}

func (s *service) CheckSize(file domain.FileUpload) error {
	size := fileSize(file)
	if size > s.maxSize {
		return &domain.SizeLimitError{FileName: file.Name, Size: size, Limit: s.maxSize}
	}
	return nil
}

// Store uploads the file at path. The size ceiling is enforced before the
// blob store is contacted.
func (s *service) Store(ctx context.Context, path string, file domain.FileUpload) (*Stored, error) {
	if err := s.CheckSize(file); err != nil {
		return nil, err
	}

	contentType := ResolveType(file.Name, file.ContentType)
	sum := sha256.Sum256(file.Content)

	obj, err := s.blobs.Put(ctx, path, bytes.NewReader(file.Content), int64(len(file.Content)), contentType)
	if err != nil {
		return nil, domain.NewDependencyError("blob_store", "put", err)
	}

	return &Stored{
		Path:     obj.Path,
		URL:      obj.URL,
		Type:     contentType,
		Size:     int64(len(file.Content)),
		Checksum: hex.EncodeToString(sum[:]),
	}, nil
}

// DocumentPath is the deterministic storage path of a project's file, so a
// retried upload overwrites rather than duplicates.
func DocumentPath(projectID uuid.UUID, fileName string) string {
	return fmt.Sprintf("projects/%s/%s", projectID, SafeName(fileName))
}

// SafeName strips any directory components a client may have sent.
func SafeName(fileName string) string {
	name := path.Base(strings.ReplaceAll(fileName, "\\", "/"))
	if name == "." || name == "/" || name == ".." {
		return "unnamed"
	}
	return name
}

var extensionTypes = map[string]string{
	"pdf":  "application/pdf",
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"zip":  "application/zip",
	"shp":  "application/x-qgis",
}

// ResolveType prefers a specific declared MIME type and otherwise infers one
// from the file extension. Browsers declare application/octet-stream for
// anything they do not recognise, so it counts as undeclared.
func ResolveType(fileName, declared string) string {
	if declared = strings.TrimSpace(declared); declared != "" && declared != "application/octet-stream" {
		return declared
	}
	ext := strings.ToLower(strings.TrimPrefix(path.Ext(fileName), "."))
	if t, ok := extensionTypes[ext]; ok {
		return t
	}
	return "application/octet-stream"
}

func fileSize(file domain.FileUpload) int64 {
	if n := int64(len(file.Content)); n > file.Size {
		return n
	}
	return file.Size
}
