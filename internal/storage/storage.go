// Package storage holds the blob store the document attachments live in.
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// Object is a stored blob and the URL it can be fetched from.
type Object struct {
	Path string
	URL  string
}

type BlobStore interface {
	Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) (*Object, error)
}

type MinIOStore struct {
	client         *minio.Client
	bucket         string
	publicEndpoint string
	publicUseSSL   bool
}

func NewMinIOStore(client *minio.Client, bucket, publicEndpoint string, publicUseSSL bool) *MinIOStore {
	return &MinIOStore{
		client:         client,
		bucket:         bucket,
		publicEndpoint: publicEndpoint,
		publicUseSSL:   publicUseSSL,
	}
}

// Put writes the object at path, overwriting any previous object there.
func (s *MinIOStore) Put(ctx context.Context, path string, r io.Reader, size int64, contentType string) (*Object, error) {
	if s.client == nil {
		return nil, fmt.Errorf("minio client not configured")
	}

	info, err := s.client.PutObject(ctx, s.bucket, path, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, fmt.Errorf("put %s: %w", path, err)
	}

	return &Object{
		Path: info.Key,
		URL:  s.PublicURL(info.Key),
	}, nil
}

func (s *MinIOStore) PublicURL(path string) string {
	scheme := "http"
	if s.publicUseSSL {
		scheme = "https"
	}
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		segments[i] = url.PathEscape(seg)
	}
	return fmt.Sprintf("%s://%s/%s/%s", scheme, s.publicEndpoint, s.bucket, strings.Join(segments, "/"))
}
