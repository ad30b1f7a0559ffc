package publish

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"
)

// GitHubClient creates a repository and uploads generated files through the
// REST contents API, one request per file.
type GitHubClient struct {
	http    *http.Client
	token   string
	baseURL string
}

func NewGitHubClient(token string) *GitHubClient {
	if token == "" {
		token = os.Getenv("GITHUB_TOKEN")
	}
	baseURL := strings.TrimSpace(os.Getenv("GITHUB_API_URL"))
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &GitHubClient{
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   strings.TrimSpace(token),
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (c *GitHubClient) Available() bool { return c.token != "" }

// PublishRepo creates a repository named after the plan title and uploads
// every file. It returns the repository HTML URL.
func (c *GitHubClient) PublishRepo(ctx context.Context, title, description string, files map[string]string) (string, error) {
	if !c.Available() {
		return "", fmt.Errorf("github: missing configuration: GITHUB_TOKEN")
	}
	name := RepoSlug(title)
	repoURL, owner, err := c.createRepo(ctx, name, description)
	if err != nil {
		return "", err
	}
	for path, content := range files {
		if err := c.uploadFile(ctx, owner, name, path, content); err != nil {
			return "", fmt.Errorf("github: upload %s: %w", path, err)
		}
	}
	return repoURL, nil
}

func (c *GitHubClient) createRepo(ctx context.Context, name, description string) (url, owner string, err error) {
	body, _ := json.Marshal(map[string]any{
		"name":        name,
		"description": description,
		"private":     false,
		"auto_init":   false,
	})
	resp, err := c.do(ctx, http.MethodPost, c.baseURL+"/user/repos", body)
	if err != nil {
		return "", "", err
	}
	var out struct {
		HTMLURL string `json:"html_url"`
		Owner   struct {
			Login string `json:"login"`
		} `json:"owner"`
	}
	if err := json.Unmarshal(resp, &out); err != nil {
		return "", "", fmt.Errorf("github: unparsable create-repo response: %w", err)
	}
	return out.HTMLURL, out.Owner.Login, nil
}

func (c *GitHubClient) uploadFile(ctx context.Context, owner, repo, path, content string) error {
	body, _ := json.Marshal(map[string]any{
		"message": "Add " + path,
		"content": base64.StdEncoding.EncodeToString([]byte(content)),
	})
	url := fmt.Sprintf("%s/repos/%s/%s/contents/%s", c.baseURL, owner, repo, path)
	_, err := c.do(ctx, http.MethodPut, url, body)
	return err
}

func (c *GitHubClient) do(ctx context.Context, method, url string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("github: unexpected status %d: %s", resp.StatusCode, firstLine(data))
	}
	return data, nil
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9-]+`)

// RepoSlug turns a plan title into a valid repository name.
func RepoSlug(title string) string {
	slug := strings.ToLower(strings.TrimSpace(title))
	slug = slugUnsafe.ReplaceAllString(slug, "-")
	slug = strings.Trim(slug, "-")
	if slug == "" {
		slug = "generated-project"
	}
	if len(slug) > 80 {
		slug = strings.Trim(slug[:80], "-")
	}
	return slug
}

func firstLine(data []byte) string {
	s := strings.TrimSpace(string(data))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
