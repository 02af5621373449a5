// Package client talks to the memoria daemon's HTTP API.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	derrors "github.com/SandraS2611/agrimensores-sde/internal/errors"
)

// GenerateResult mirrors the generation endpoint response.
type GenerateResult struct {
	Memoria         string `json:"memoria"`
	GenerationID    string `json:"generation_id"`
	ArtifactID      string `json:"artifact_id"`
	TemplateVersion string `json:"template_version"`
	DurationMS      int64  `json:"duration_ms"`
}

// Client calls the generation API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// New creates a client for the daemon at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		http:    &http.Client{Timeout: 3 * time.Minute},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Generate runs the generation pipeline for a plan and returns the preview
// plus handoff details. Any non-2xx answer is a classified network error
// carrying the server's message.
func (c *Client) Generate(ctx context.Context, planID string) (*GenerateResult, error) {
	url := fmt.Sprintf("%s/api/planos/%s/memoria", c.baseURL, planID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryInternal, "build generate request").Build()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryNetwork, "generation request failed").
			WithContext("plan_id", planID).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.errorFromResponse(resp, planID)
	}

	var result GenerateResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, derrors.Wrap(err, derrors.CategoryNetwork, "decode generation response").
			WithContext("plan_id", planID).
			Build()
	}
	return &result, nil
}

// Download streams the published artifact into w and returns the byte count.
func (c *Client) Download(ctx context.Context, planID string, w io.Writer) (int64, error) {
	url := fmt.Sprintf("%s/api/planos/%s/memoria/download", c.baseURL, planID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CategoryInternal, "build download request").Build()
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, derrors.Wrap(err, derrors.CategoryNetwork, "download request failed").
			WithContext("plan_id", planID).
			Build()
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, c.errorFromResponse(resp, planID)
	}

	n, err := io.Copy(w, resp.Body)
	if err != nil {
		return n, derrors.Wrap(err, derrors.CategoryNetwork, "stream artifact").
			WithContext("plan_id", planID).
			Build()
	}
	return n, nil
}

// errorFromResponse turns a non-2xx answer into a classified error,
// preserving the server's error body when it is parseable.
func (c *Client) errorFromResponse(resp *http.Response, planID string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))

	message := fmt.Sprintf("server returned %d", resp.StatusCode)
	var payload struct {
		Error string `json:"error"`
		Code  string `json:"code"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Error != "" {
		message = payload.Error
	}

	return derrors.NetworkError(message).
		WithContext("plan_id", planID).
		WithContext("status_code", resp.StatusCode).
		Build()
}
