// Package githubapi is a minimal read-only wrapper around GitHub's REST API
// v3. It is intentionally light—just the endpoints our services require.
package githubapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/openmatchhq/open-match/server/internal/models"
	"github.com/openmatchhq/open-match/server/internal/notify"
)

const defaultBaseURL = "https://api.github.com"

// sourceExtensions is the allow-list of file extensions the vectorization
// pipeline will index.
var sourceExtensions = map[string]bool{
	".md": true, ".rst": true, ".txt": true,
	".go": true, ".py": true, ".js": true, ".ts": true, ".jsx": true, ".tsx": true,
	".java": true, ".rb": true, ".rs": true, ".c": true, ".h": true, ".cpp": true,
	".cs": true, ".php": true, ".swift": true, ".kt": true, ".scala": true,
	".sh": true, ".yaml": true, ".yml": true, ".toml": true,
}

// Client fetches repository metadata, file listings and issue details.
// It is a pure read-through: it holds no state beyond credentials.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	notif   notify.Notifier
}

// NewClient returns a ready-to-use GitHub API client.
// token may be an empty string, but you will be subject to very low rate-limits.
func NewClient(token string, notif notify.Notifier) *Client {
	return &Client{
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
		baseURL: defaultBaseURL,
		token:   token,
		notif:   notif,
	}
}

// NewClientWithBaseURL is used by tests to point the client at a stub server.
func NewClientWithBaseURL(token, baseURL string, notif notify.Notifier) *Client {
	c := NewClient(token, notif)
	c.baseURL = strings.TrimSuffix(baseURL, "/")
	return c
}

// apiRepo is the slice of GitHub's repository response we consume.
type apiRepo struct {
	Name          string   `json:"name"`
	FullName      string   `json:"full_name"`
	HTMLURL       string   `json:"html_url"`
	Description   string   `json:"description"`
	Stars         int      `json:"stargazers_count"`
	Watchers      int      `json:"watchers_count"`
	Topics        []string `json:"topics"`
	LanguagesURL  string   `json:"languages_url"`
	DefaultBranch string   `json:"default_branch"`
}

// FetchRepo fetches repository attributes and the dependent language
// breakdown. Any non-success status or network failure yields a zero
// Repository and a logged warning, not an error. Callers treat an empty
// result as "skip this operation".
func (c *Client) FetchRepo(ctx context.Context, fullName string) models.Repository {
	var raw apiRepo
	u := fmt.Sprintf("%s/repos/%s", c.baseURL, fullName)
	if err := c.get(ctx, u, &raw); err != nil {
		c.notif.Warning(fmt.Sprintf("failed to fetch repo details (%s): %v", fullName, err))
		return models.Repository{}
	}

	return models.Repository{
		Name:        raw.Name,
		FullName:    raw.FullName,
		HTMLURL:     raw.HTMLURL,
		Description: raw.Description,
		Stars:       raw.Stars,
		Watchers:    raw.Watchers,
		Languages:   c.fetchLanguages(ctx, raw.LanguagesURL),
		Topics:      raw.Topics,
	}
}

// fetchLanguages reads the language map behind the URL embedded in the repo
// response. The call is retried with bounded exponential backoff; after the
// attempts are exhausted it degrades to an empty list.
func (c *Client) fetchLanguages(ctx context.Context, langURL string) []string {
	if langURL == "" {
		return []string{}
	}

	var byBytes map[string]int64
	op := func() error {
		return c.get(ctx, langURL, &byBytes)
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), 3), ctx)
	if err := backoff.Retry(op, policy); err != nil {
		c.notif.Warning(fmt.Sprintf("failed to fetch repo languages: %v", err))
		return []string{}
	}

	languages := make([]string, 0, len(byBytes))
	for lang := range byBytes {
		languages = append(languages, lang)
	}
	return languages
}

// FetchIssue retrieves a single issue's current state by number.
func (c *Client) FetchIssue(ctx context.Context, fullName string, number int) (models.IssueEvent, error) {
	var issue models.IssueEvent
	u := fmt.Sprintf("%s/repos/%s/issues/%d", c.baseURL, fullName, number)
	if err := c.get(ctx, u, &issue); err != nil {
		return models.IssueEvent{}, err
	}
	return issue, nil
}

// treeResponse is GitHub's recursive git tree listing.
type treeResponse struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
	} `json:"tree"`
	Truncated bool `json:"truncated"`
}

// ListSourceFiles enumerates the repository's default-branch blobs whose
// extension is on the source/text allow-list.
func (c *Client) ListSourceFiles(ctx context.Context, fullName string) ([]string, error) {
	var raw apiRepo
	if err := c.get(ctx, fmt.Sprintf("%s/repos/%s", c.baseURL, fullName), &raw); err != nil {
		return nil, fmt.Errorf("resolve default branch for %s: %w", fullName, err)
	}
	branch := raw.DefaultBranch
	if branch == "" {
		branch = "main"
	}

	var tree treeResponse
	u := fmt.Sprintf("%s/repos/%s/git/trees/%s?recursive=1", c.baseURL, fullName, url.PathEscape(branch))
	if err := c.get(ctx, u, &tree); err != nil {
		return nil, fmt.Errorf("list tree for %s: %w", fullName, err)
	}

	var paths []string
	for _, entry := range tree.Tree {
		if entry.Type != "blob" {
			continue
		}
		if IsSourceFile(entry.Path) {
			paths = append(paths, entry.Path)
		}
	}
	return paths, nil
}

// contentResponse is GitHub's file contents response.
type contentResponse struct {
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

// GetFileContent fetches and decodes one file from the repository.
func (c *Client) GetFileContent(ctx context.Context, fullName, path string) (string, error) {
	var resp contentResponse
	u := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, fullName, path)
	if err := c.get(ctx, u, &resp); err != nil {
		return "", fmt.Errorf("fetch content of %s/%s: %w", fullName, path, err)
	}

	if resp.Encoding != "base64" {
		return resp.Content, nil
	}
	// GitHub wraps base64 content at 60 columns.
	decoded, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(resp.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode content of %s/%s: %w", fullName, path, err)
	}
	return string(decoded), nil
}

// IsSourceFile reports whether path carries an allow-listed extension.
func IsSourceFile(path string) bool {
	idx := strings.LastIndex(path, ".")
	if idx < 0 {
		return false
	}
	return sourceExtensions[strings.ToLower(path[idx:])]
}

// get executes a GET request and decodes the JSON response into v.
func (c *Client) get(ctx context.Context, rawURL string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	req.Header.Set("User-Agent", "open-match-api")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("github: unexpected status %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}
