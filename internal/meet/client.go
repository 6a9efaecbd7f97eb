// Package meet is a REST client for the Google Meet API surface meetfetch
// needs: conference records, transcripts, transcript entries, and the
// v2beta smart-notes endpoint that has no generated client.
package meet

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/meetfetch/meetfetch/internal/googleapi"
	"github.com/meetfetch/meetfetch/internal/logging"
)

// ClientConfig configures the Meet API client.
type ClientConfig struct {
	// BaseURL is the Meet API endpoint.
	// Default: https://meet.googleapis.com
	BaseURL string `koanf:"base_url"`

	// RequestTimeout is the timeout for individual requests.
	// Default: 30 seconds
	RequestTimeout time.Duration `koanf:"request_timeout"`

	// RateLimit is the sustained request rate in requests per second.
	// Default: 5
	RateLimit float64 `koanf:"rate_limit"`

	// RateBurst is the rate limiter burst size.
	// Default: 10
	RateBurst int `koanf:"rate_burst"`
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL:        "https://meet.googleapis.com",
		RequestTimeout: 30 * time.Second,
		RateLimit:      5,
		RateBurst:      10,
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
	if c.RateLimit == 0 {
		c.RateLimit = defaults.RateLimit
	}
	if c.RateBurst == 0 {
		c.RateBurst = defaults.RateBurst
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
	if c.RateLimit < 0 {
		return fmt.Errorf("rate limit must be >= 0, got %f", c.RateLimit)
	}
	return nil
}

// Client calls the Meet REST API with an OAuth-authenticated http.Client.
type Client struct {
	httpClient *http.Client
	config     *ClientConfig
	limiter    *rate.Limiter
	logger     *logging.Logger
}

// NewClient creates a Meet API client. httpClient must already carry OAuth
// credentials (see internal/auth).
func NewClient(config *ClientConfig, httpClient *http.Client, logger *logging.Logger) (*Client, error) {
	if config == nil {
		config = DefaultClientConfig()
	}
	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	if httpClient == nil {
		return nil, fmt.Errorf("http client is required")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	return &Client{
		httpClient: httpClient,
		config:     config,
		limiter:    rate.NewLimiter(rate.Limit(config.RateLimit), config.RateBurst),
		logger:     logger,
	}, nil
}

// get performs a rate-limited GET and decodes the JSON response into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.config.BaseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("meet api request failed: %w", err)
	}
	defer resp.Body.Close()

	if err := googleapi.CheckResponse(resp); err != nil {
		return err
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListConferenceRecords returns every conference record matching the filter,
// following pagination to the end. Filter grammar is owned by the API; see
// resolve.MeetingCodeFilter.
func (c *Client) ListConferenceRecords(ctx context.Context, filter string) ([]ConferenceRecord, error) {
	var records []ConferenceRecord
	pageToken := ""

	for {
		query := url.Values{}
		if filter != "" {
			query.Set("filter", filter)
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}

		var page struct {
			ConferenceRecords []ConferenceRecord `json:"conferenceRecords"`
			NextPageToken     string             `json:"nextPageToken"`
		}
		if err := c.get(ctx, "/v2/conferenceRecords", query, &page); err != nil {
			return nil, err
		}

		records = append(records, page.ConferenceRecords...)

		pageToken = page.NextPageToken
		if pageToken == "" {
			return records, nil
		}
	}
}

// ListTranscripts returns the transcript metadata for a conference record.
func (c *Client) ListTranscripts(ctx context.Context, conferenceID string) ([]Artifact, error) {
	var page struct {
		Transcripts []Artifact `json:"transcripts"`
	}
	path := fmt.Sprintf("/v2/conferenceRecords/%s/transcripts", url.PathEscape(conferenceID))
	if err := c.get(ctx, path, nil, &page); err != nil {
		return nil, err
	}
	return page.Transcripts, nil
}

// ListSmartNotes returns the smart-notes metadata for a conference record.
// The endpoint is v2beta; callers distinguish "endpoint not provisioned"
// from "no notes" via googleapi.IsMethodNotFound.
func (c *Client) ListSmartNotes(ctx context.Context, conferenceID string) ([]Artifact, error) {
	var page struct {
		SmartNotes []Artifact `json:"smartNotes"`
	}
	path := fmt.Sprintf("/v2beta/conferenceRecords/%s/smartNotes", url.PathEscape(conferenceID))
	if err := c.get(ctx, path, nil, &page); err != nil {
		return nil, err
	}
	return page.SmartNotes, nil
}

// ListTranscriptEntries fetches one page of raw transcript entries.
// transcriptName is the full resource name from the transcript Artifact.
// It returns the page's entries and the continuation token, empty when the
// sequence is exhausted. Entry order is the API's emission order and is
// preserved.
func (c *Client) ListTranscriptEntries(ctx context.Context, transcriptName, pageToken string) ([]TranscriptEntry, string, error) {
	query := url.Values{}
	if pageToken != "" {
		query.Set("pageToken", pageToken)
	}

	var page struct {
		TranscriptEntries []TranscriptEntry `json:"transcriptEntries"`
		NextPageToken     string            `json:"nextPageToken"`
	}
	if err := c.get(ctx, "/v2/"+transcriptName+"/entries", query, &page); err != nil {
		return nil, "", err
	}
	return page.TranscriptEntries, page.NextPageToken, nil
}
