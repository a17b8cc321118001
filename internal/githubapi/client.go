// Package githubapi is a small client for the parts of the GitHub REST API
// the import pipeline needs: repository metadata and the latest commit date.
//
// It intentionally covers only those two endpoints. Failures are translated
// into domain errors: a 404 becomes apperror.ErrNotFound (the repository
// doesn't exist upstream), anything else — bad status, network error,
// timeout — becomes apperror.ErrUpstream so the edge can answer 502 instead
// of hanging or leaking GitHub's response body.
package githubapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/sakif/project-phoenix/internal/apperror"
)

const defaultBaseURL = "https://api.github.com"

// requestTimeout bounds every outbound GitHub call. A slow upstream surfaces
// as an upstream error rather than an indefinitely hanging import.
const requestTimeout = 10 * time.Second

// RepoMetadata is the subset of GitHub's repository object we keep.
// Field names follow GitHub's JSON so the mapping stays obvious.
type RepoMetadata struct {
	GitHubRepoID    int64
	FullName        string
	Name            string
	Description     string
	Language        string
	StarsCount      int
	ForksCount      int
	WatchersCount   int
	OpenIssuesCount int
	SizeKB          int
	DefaultBranch   string
	HomepageURL     string
	Topics          []string
	LicenseName     string
	CreatedAt       *time.Time
	PushedAt        *time.Time
}

// Client calls the GitHub REST API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string // personal access token; empty means unauthenticated (lower rate limits)
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the API base URL. Used in tests to point the client
// at an httptest server.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient overrides the underlying http.Client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// New creates a Client. token may be empty; setting a personal access token
// raises the rate limit from 60 to 5000 requests per hour.
func New(token string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: requestTimeout},
		baseURL:    defaultBaseURL,
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseFullName splits "owner/name" into its two parts.
// Returns a validation error unless the input is exactly two non-empty
// segments — malformed input never reaches the network.
func ParseFullName(fullName string) (owner, name string, err error) {
	parts := strings.Split(strings.TrimSpace(fullName), "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", apperror.ValidationFailed("repoFullName",
			"invalid repository name, format should be: owner/repo")
	}
	return parts[0], parts[1], nil
}

// repoResponse mirrors the GitHub repository object.
type repoResponse struct {
	ID              int64    `json:"id"`
	FullName        string   `json:"full_name"`
	Name            string   `json:"name"`
	Description     string   `json:"description"`
	Language        string   `json:"language"`
	StargazersCount int      `json:"stargazers_count"`
	ForksCount      int      `json:"forks_count"`
	WatchersCount   int      `json:"watchers_count"`
	OpenIssuesCount int      `json:"open_issues_count"`
	Size            int      `json:"size"`
	DefaultBranch   string   `json:"default_branch"`
	Homepage        string   `json:"homepage"`
	Topics          []string `json:"topics"`
	License         *struct {
		Name string `json:"name"`
	} `json:"license"`
	CreatedAt *time.Time `json:"created_at"`
	PushedAt  *time.Time `json:"pushed_at"`
}

// GetRepository fetches descriptive metadata for owner/name.
func (c *Client) GetRepository(ctx context.Context, owner, name string) (*RepoMetadata, error) {
	var body repoResponse
	url := fmt.Sprintf("%s/repos/%s/%s", c.baseURL, owner, name)
	if err := c.getJSON(ctx, url, &body); err != nil {
		return nil, err
	}

	meta := &RepoMetadata{
		GitHubRepoID:    body.ID,
		FullName:        body.FullName,
		Name:            body.Name,
		Description:     body.Description,
		Language:        body.Language,
		StarsCount:      body.StargazersCount,
		ForksCount:      body.ForksCount,
		WatchersCount:   body.WatchersCount,
		OpenIssuesCount: body.OpenIssuesCount,
		SizeKB:          body.Size,
		DefaultBranch:   body.DefaultBranch,
		HomepageURL:     body.Homepage,
		Topics:          body.Topics,
		CreatedAt:       body.CreatedAt,
		PushedAt:        body.PushedAt,
	}
	if body.License != nil {
		meta.LicenseName = body.License.Name
	}
	if meta.Topics == nil {
		meta.Topics = []string{}
	}
	return meta, nil
}

// GetLatestCommitDate returns the author date of the most recent commit on the
// default branch, or nil when none is reachable (empty repository, or the
// commits call failed). This is a cheaper call than listing full history —
// per_page=1 returns only the newest commit.
func (c *Client) GetLatestCommitDate(ctx context.Context, owner, name string) (*time.Time, error) {
	var commits []struct {
		Commit struct {
			Author struct {
				Date *time.Time `json:"date"`
			} `json:"author"`
		} `json:"commit"`
	}

	url := fmt.Sprintf("%s/repos/%s/%s/commits?per_page=1", c.baseURL, owner, name)
	if err := c.getJSON(ctx, url, &commits); err != nil {
		return nil, err
	}
	if len(commits) == 0 {
		return nil, nil
	}
	return commits[0].Commit.Author.Date, nil
}

// getJSON performs an authenticated GET and decodes the JSON response into out.
func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("githubapi: creating request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return apperror.Upstream(fmt.Sprintf("github request failed: %v", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperror.NotFoundMsg("repository not found on GitHub")
	case resp.StatusCode != http.StatusOK:
		return apperror.Upstream(fmt.Sprintf("github returned status %d", resp.StatusCode))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperror.Upstream(fmt.Sprintf("decoding github response: %v", err))
	}
	return nil
}
