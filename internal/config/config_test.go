package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "AI_SERVICE_URL", "AI_SERVICE_TIMEOUT", "MAX_UPLOAD_BYTES", "LOCALE", "MINIO_PUBLIC_USE_SSL"} {
		t.Setenv(key, "")
	}

	cfg := Load()

	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, "http://localhost:8080", cfg.AIServiceURL)
	assert.Equal(t, 10*time.Second, cfg.AIServiceTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.Equal(t, "fr", cfg.Locale)
	assert.True(t, cfg.MinIOPublicUseSSL)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("AI_SERVICE_TIMEOUT", "3s")
	t.Setenv("MAX_UPLOAD_BYTES", "2048")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("MINIO_ENDPOINT", "minio:9000")
	t.Setenv("MINIO_PUBLIC_ENDPOINT", "")

	cfg := Load()

	assert.Equal(t, 3*time.Second, cfg.AIServiceTimeout)
	assert.Equal(t, int64(2048), cfg.MaxUploadBytes)
	assert.True(t, cfg.MinIOUseSSL)
	assert.Equal(t, "minio:9000", cfg.MinIOPublicEndpoint)
}

func TestLoad_IgnoresMalformedValues(t *testing.T) {
	t.Setenv("AI_SERVICE_TIMEOUT", "soon")
	t.Setenv("MAX_UPLOAD_BYTES", "-5")
	t.Setenv("MINIO_USE_SSL", "maybe")

	cfg := Load()

	assert.Equal(t, 10*time.Second, cfg.AIServiceTimeout)
	assert.Equal(t, int64(10*1024*1024), cfg.MaxUploadBytes)
	assert.False(t, cfg.MinIOUseSSL)
}

func TestReadOnlyPolicy_ScopesToProjects(t *testing.T) {
	policy := readOnlyPolicy("permit-documents")

	assert.Contains(t, policy, `"arn:aws:s3:::permit-documents/projects/*"`)
	assert.Contains(t, policy, `"s3:GetObject"`)
}
