// Package apiclient provides a client for the draftbox generation API and
// normalizes its response shapes. Older server builds returned a singular
// dataUrl; current builds return a dataUrls array. Callers of this package
// only ever see the array form.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// defaultTimeout covers up to four sequential model calls; image
	// generation can take 10-30s per call.
	defaultTimeout = 150 * time.Second

	generatePath = "/api/generate"
)

// GeneratePayload is the request body for POST /api/generate.
type GeneratePayload struct {
	Prompt  string `json:"prompt"`
	Style   string `json:"style,omitempty"`
	Palette string `json:"palette,omitempty"`
	Format  string `json:"format,omitempty"`
	N       int    `json:"n,omitempty"`
}

// GenerateResponse is the wire response. DataURL is the legacy single-image
// field; Normalize folds it into DataURLs.
type GenerateResponse struct {
	DataURLs []string `json:"dataUrls,omitempty"`
	DataURL  string   `json:"dataUrl,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// Normalize makes DataURLs authoritative: when it is empty and the legacy
// DataURL is present, the single URL is wrapped into a one-element array.
// Applying Normalize to an already-normalized response changes nothing.
func (r *GenerateResponse) Normalize() {
	if len(r.DataURLs) == 0 && r.DataURL != "" {
		r.DataURLs = []string{r.DataURL}
	}
}

// Client calls the draftbox generation API.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient creates a client for the API served at baseURL
// (e.g. "http://localhost:8080").
func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		baseURL: baseURL,
	}
}

// Generate posts a generation request and returns the normalized response.
// Non-2xx statuses become errors carrying the server's message when one was
// decodable, or the status code otherwise.
func (c *Client) Generate(ctx context.Context, payload GeneratePayload) ([]string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}

	log.Debug().
		Str("prompt", truncate(payload.Prompt, 50)).
		Int("n", payload.N).
		Msg("Sending generation request")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+generatePath, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("generate request: %w", err)
	}
	defer resp.Body.Close()

	var decoded GenerateResponse
	// An undecodable body is tolerated: the status code still tells the story.
	if data, readErr := io.ReadAll(resp.Body); readErr == nil {
		_ = json.Unmarshal(data, &decoded)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if decoded.Error != "" {
			return nil, fmt.Errorf("%s", decoded.Error)
		}
		return nil, fmt.Errorf("request failed (%d)", resp.StatusCode)
	}

	decoded.Normalize()

	log.Debug().Int("count", len(decoded.DataURLs)).Msg("Received generation response")

	if len(decoded.DataURLs) == 0 {
		return nil, fmt.Errorf("response carried no images")
	}
	return decoded.DataURLs, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
