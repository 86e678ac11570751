// Package github fetches recent commits of public repositories from the
// GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://api.github.com"
	defaultRawURL  = "https://raw.githubusercontent.com"
	defaultTimeout = 5 * time.Second
	apiVersion     = "2022-11-28"
	maxBodyBytes   = 4 << 20
)

// Config configures a Client. The zero value talks to api.github.com
// anonymously with a 5 second timeout.
type Config struct {
	// BaseURL must use HTTPS.
	BaseURL string
	// RawBaseURL serves file contents; it must use HTTPS too.
	RawBaseURL string
	// Token is optional; anonymous requests are rate limited harder.
	Token      string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client is a minimal GitHub REST client.
type Client struct {
	baseURL    string
	rawURL     string
	token      string
	timeout    time.Duration
	httpClient *http.Client
}

// NewClient validates cfg and returns a client.
func NewClient(cfg Config) (*Client, error) {
	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "https://") {
		return nil, fmt.Errorf("github: API client requires HTTPS (got %q)", baseURL)
	}
	rawURL := strings.TrimRight(cfg.RawBaseURL, "/")
	if rawURL == "" {
		rawURL = defaultRawURL
	}
	if !strings.HasPrefix(rawURL, "https://") {
		return nil, fmt.Errorf("github: raw content requires HTTPS (got %q)", rawURL)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, rawURL: rawURL, token: cfg.Token, timeout: timeout, httpClient: httpClient}, nil
}

// Commit is one entry of a repository's history.
type Commit struct {
	SHA     string
	Author  string
	Message string
	Date    time.Time
}

type commitJSON struct {
	SHA    string `json:"sha"`
	Commit struct {
		Author struct {
			Name string `json:"name"`
		} `json:"author"`
		Committer struct {
			Date time.Time `json:"date"`
		} `json:"committer"`
		Message string `json:"message"`
	} `json:"commit"`
}

// Commits lists the latest commits of owner/repo. An empty branch means
// the default branch.
func (c *Client) Commits(ctx context.Context, owner, repo, branch string) ([]Commit, error) {
	path := fmt.Sprintf("/repos/%s/%s/commits", url.PathEscape(owner), url.PathEscape(repo))
	if branch != "" {
		path += "?sha=" + url.QueryEscape(branch)
	}

	var raw []commitJSON
	if err := c.get(ctx, path, &raw); err != nil {
		return nil, err
	}
	out := make([]Commit, 0, len(raw))
	for _, r := range raw {
		out = append(out, Commit{
			SHA:     r.SHA,
			Author:  r.Commit.Author.Name,
			Message: r.Commit.Message,
			Date:    r.Commit.Committer.Date,
		})
	}
	return out, nil
}

// RawFile returns the contents of path in owner/repo at ref.
func (c *Client) RawFile(ctx context.Context, owner, repo, ref, path string) (string, error) {
	u := fmt.Sprintf("%s/%s/%s/%s/%s", c.rawURL, url.PathEscape(owner), url.PathEscape(repo), url.PathEscape(ref), strings.TrimLeft(path, "/"))
	body, err := c.fetch(ctx, u, "text/plain")
	if err != nil {
		return "", err
	}
	return string(body), nil
}

func (c *Client) get(ctx context.Context, path string, v any) error {
	body, err := c.fetch(ctx, c.baseURL+path, "application/vnd.github+json")
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("github: decoding %s: %w", path, err)
	}
	return nil
}

func (c *Client) fetch(ctx context.Context, u, accept string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("github: building request: %w", err)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("github: GET %s: %w", u, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("github: reading response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var payload struct {
			Message          string `json:"message"`
			DocumentationURL string `json:"documentation_url"`
		}
		if json.Unmarshal(body, &payload) == nil {
			apiErr.Message = payload.Message
			apiErr.DocumentationURL = payload.DocumentationURL
		}
		if apiErr.Message == "" {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return nil, apiErr
	}
	return body, nil
}
