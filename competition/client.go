// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package competition

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/danielhkuo/inject-portal/models"
)

// PlaceholderAPIKey means the integration is switched off
const PlaceholderAPIKey = "YOUR_API_KEY_HERE"

// DefaultServer is the public competition API
const DefaultServer = "https://llmailinject.azurewebsites.net"

const maxErrorBody = 64 << 10

// Client talks to the team/job endpoints of the competition API.
// With a placeholder key it answers locally without touching the network.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func NewClient(apiKey, baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultServer
	}
	c := &Client{
		apiKey:     apiKey,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether a real API key was supplied
func (c *Client) Configured() bool {
	return c.apiKey != "" && c.apiKey != PlaceholderAPIKey
}

// CreateJob submits a new job for the team
func (c *Client) CreateJob(ctx context.Context, scenario, subject, body string) (*models.Job, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("cannot create job: %w", ErrAPIKeyNotConfigured)
	}

	var job models.Job
	req := models.CreateJobRequest{Scenario: scenario, Subject: subject, Body: body}
	if _, err := c.do(ctx, http.MethodPost, "/api/teams/mine/jobs", req, &job, false); err != nil {
		return nil, err
	}
	return &job, nil
}

// GetJob fetches one job. A nil job with a nil error means the job is absent:
// either the server answered 404 or no API key is configured.
func (c *Client) GetJob(ctx context.Context, jobID string) (*models.Job, error) {
	if !c.Configured() {
		return nil, nil
	}

	var job models.Job
	found, err := c.do(ctx, http.MethodGet, "/api/teams/mine/jobs/"+url.PathEscape(jobID), nil, &job, true)
	if err != nil || !found {
		return nil, err
	}
	return &job, nil
}

// ListJobs returns the team's jobs in server order.
// Without an API key the list is empty.
func (c *Client) ListJobs(ctx context.Context) ([]models.Job, error) {
	if !c.Configured() {
		return []models.Job{}, nil
	}

	jobs := []models.Job{}
	if _, err := c.do(ctx, http.MethodGet, "/api/teams/mine/jobs", nil, &jobs, false); err != nil {
		return nil, err
	}
	if jobs == nil {
		jobs = []models.Job{}
	}
	return jobs, nil
}

// GetMyTeam fetches the team bound to the API key; nil, nil when absent
func (c *Client) GetMyTeam(ctx context.Context) (*models.Team, error) {
	if !c.Configured() {
		return nil, nil
	}

	var team models.Team
	found, err := c.do(ctx, http.MethodGet, "/api/teams/mine", nil, &team, true)
	if err != nil || !found {
		return nil, err
	}
	return &team, nil
}

// UpdateMyTeam replaces the team's member list
func (c *Client) UpdateMyTeam(ctx context.Context, members []string) (*models.Team, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("cannot update team: %w", ErrAPIKeyNotConfigured)
	}
	if len(members) == 0 {
		return nil, ErrNoMembers
	}

	var team models.Team
	req := models.UpdateTeamRequest{Members: members}
	if _, err := c.do(ctx, http.MethodPatch, "/api/teams/mine", req, &team, false); err != nil {
		return nil, err
	}
	return &team, nil
}

// do sends one request and decodes a 2xx body into out.
// With allowNotFound a 404 returns found=false instead of an error.
func (c *Client) do(ctx context.Context, method, path string, in, out any, allowNotFound bool) (found bool, err error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return false, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json; charset=utf-8")
	if in != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if allowNotFound && resp.StatusCode == http.StatusNotFound {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))
		return false, nil
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return false, newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return false, fmt.Errorf("decode %s %s response: %w", method, path, err)
	}
	return true, nil
}
