// Package drive exports documents as plain text through the Drive API.
package drive

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/meetfetch/meetfetch/internal/googleapi"
)

// maxExportSize bounds how much exported content is read (Drive caps text
// exports at 10MB anyway).
const maxExportSize = 10 * 1024 * 1024

// ClientConfig configures the Drive export client.
type ClientConfig struct {
	// BaseURL is the Drive API endpoint.
	// Default: https://www.googleapis.com
	BaseURL string `koanf:"base_url"`

	// RequestTimeout is the timeout for individual requests.
	// Default: 30 seconds
	RequestTimeout time.Duration `koanf:"request_timeout"`
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://www.googleapis.com",
		RequestTimeout: 30 * time.Second,
	}
}

// ApplyDefaults sets default values for unset fields.
func (c *ClientConfig) ApplyDefaults() {
	defaults := DefaultClientConfig()

	if c.BaseURL == "" {
		c.BaseURL = defaults.BaseURL
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = defaults.RequestTimeout
	}
}

// Validate validates the client configuration.
func (c *ClientConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL is required")
	}
	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must be >= 0, got %s", c.RequestTimeout)
	}
	return nil
}

// Client exports Drive documents with an OAuth-authenticated http.Client.
type Client struct {
	httpClient *http.Client
	config     *ClientConfig
}

// NewClient creates a Drive export client. httpClient must already carry
// OAuth credentials (see internal/auth).
func NewClient(config *ClientConfig, httpClient *http.Client) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	config.ApplyDefaults()
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}

	return &Client{httpClient: httpClient, config: config}, nil
}

// ExportPlainText exports the document as text/plain and returns its
// content. Not-found and permission failures come back as
// *googleapi.Error for the caller to classify.
func (c *Client) ExportPlainText(ctx context.Context, documentID string) (string, error) {
	query := url.Values{"mimeType": {"text/plain"}}
	reqURL := fmt.Sprintf("%s/drive/v3/files/%s/export?%s",
		c.config.BaseURL, url.PathEscape(documentID), query.Encode())

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("drive export request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}

	content, err := io.ReadAll(io.LimitReader(resp.Body, maxExportSize))
	if err != nil {
		return "", fmt.Errorf("failed to read export body: %w", err)
	}
	return string(content), nil
}
