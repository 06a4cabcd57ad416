// Package analysis submits project documents to the external AI analysis
// service. The service later writes its results back through the results
// callback; this client never waits for them.
package analysis

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const DefaultTimeout = 10 * time.Second

type Client interface {
	Submit(ctx context.Context, projectID uuid.UUID, documentPath string) error
}

type submitRequest struct {
	ProjectID    string `json:"projectId"`
	DocumentPath string `json:"documentPath"`
}

type httpClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient returns a client for the analysis service at baseURL. Every
// request is bounded by timeout.
func NewClient(baseURL string, timeout time.Duration) Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &httpClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *httpClient) Submit(ctx context.Context, projectID uuid.UUID, documentPath string) error {
	if c.baseURL == "" {
		return fmt.Errorf("analysis service url is not configured")
	}

	body, err := json.Marshal(submitRequest{
		ProjectID:    projectID.String(),
		DocumentPath: documentPath,
	})
	if err != nil {
		return fmt.Errorf("error marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("analysis service returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}
