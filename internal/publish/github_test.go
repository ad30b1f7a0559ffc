package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/ahmadnish/lets-vibe/internal/tester"
)

func TestPublishRepo_CreatesRepoAndUploadsEveryFile(t *testing.T) {
	var mu sync.Mutex
	uploaded := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/user/repos":
			var body map[string]any
			_ = json.NewDecoder(r.Body).Decode(&body)
			if body["name"] != "demo-project" {
				t.Errorf("unexpected repo name: %v", body["name"])
			}
			_ = json.NewEncoder(w).Encode(map[string]any{
				"html_url": "https://github.com/octo/demo-project",
				"owner":    map[string]string{"login": "octo"},
			})
		case r.Method == http.MethodPut && strings.HasPrefix(r.URL.Path, "/repos/octo/demo-project/contents/"):
			mu.Lock()
			uploaded[strings.TrimPrefix(r.URL.Path, "/repos/octo/demo-project/contents/")] = true
			mu.Unlock()
			_ = json.NewEncoder(w).Encode(map[string]any{"content": map[string]string{}})
		default:
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()
	t.Setenv("GITHUB_API_URL", srv.URL)

	c := NewGitHubClient("test-token")
	url, err := c.PublishRepo(context.Background(), "Demo Project", "desc", map[string]string{
		"README.md":    "# Demo",
		"docs/PLAN.md": "plan",
	})
	tester.NoErr(t, err)
	tester.Eq(t, url, "https://github.com/octo/demo-project")
	tester.True(t, uploaded["README.md"], "README uploaded")
	tester.True(t, uploaded["docs/PLAN.md"], "nested path uploaded")
}

func TestPublishRepo_CreateFailureSurfaces(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"name already exists"}`, http.StatusUnprocessableEntity)
	}))
	defer srv.Close()
	t.Setenv("GITHUB_API_URL", srv.URL)

	c := NewGitHubClient("test-token")
	_, err := c.PublishRepo(context.Background(), "Demo", "", nil)
	tester.ErrContains(t, err, "unexpected status 422")
}

func TestPublishRepo_WithoutToken(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "")
	c := NewGitHubClient("")
	tester.False(t, c.Available())
	_, err := c.PublishRepo(context.Background(), "Demo", "", nil)
	tester.ErrContains(t, err, "GITHUB_TOKEN")
}

func TestRepoSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Demo Project", "demo-project"},
		{"  AI/ML  Pipeline!! ", "ai-ml-pipeline"},
		{"---", "generated-project"},
		{"", "generated-project"},
		{"Ünïcode Tïtle", "n-code-t-tle"},
	}
	for _, tc := range cases {
		tester.Eq(t, RepoSlug(tc.in), tc.want, tc.in)
	}
	long := strings.Repeat("very-long-", 20)
	slug := RepoSlug(long)
	tester.True(t, len(slug) <= 80, "slug capped at 80")
	tester.False(t, strings.HasSuffix(slug, "-"), "no trailing dash after cap")
}
