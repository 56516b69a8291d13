package githubsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	pkgerrors "github.com/pkg/errors"

	"github.com/acadio/practia/core"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, func()) {
	t.Helper()

	srv := httptest.NewServer(handler)
	return NewClientWithHTTP(srv.URL, srv.Client()), srv.Close
}

func TestListCommitsFollowsPages(t *testing.T) {
	// 150 commits: a full page then a short one
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/app/commits" {
			http.NotFound(w, r)
			return
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("Authorization = %q, want Bearer tok", got)
		}
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))

		n := perPage
		offset := (page - 1) * perPage
		if offset+n > 150 {
			n = 150 - offset
		}
		commits := make([]map[string]interface{}, 0, n)
		for i := 0; i < n; i++ {
			commits = append(commits, map[string]interface{}{
				"sha": fmt.Sprintf("sha-%03d", offset+i),
				"commit": map[string]interface{}{
					"message": "commit",
					"author":  map[string]interface{}{"name": "awa"},
				},
			})
		}
		_ = json.NewEncoder(w).Encode(commits)
	})
	defer closeFn()

	commits, err := client.ListCommits(context.Background(), "acme", "app", "tok")
	if err != nil {
		t.Fatalf("ListCommits() failed, %v", err)
	}
	if len(commits) != 150 {
		t.Errorf("ListCommits() = %d commits, want 150", len(commits))
	}
	if commits[0].SHA != "sha-000" || commits[149].SHA != "sha-149" {
		t.Errorf("ListCommits() order off: first %s, last %s", commits[0].SHA, commits[149].SHA)
	}
}

func TestListIssuesFiltersPullRequests(t *testing.T) {
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("state"); got != "all" {
			t.Errorf("state = %q, want all", got)
		}
		issues := []map[string]interface{}{
			{"number": 1, "title": "real issue", "state": "open", "user": map[string]interface{}{"login": "awa"}},
			{"number": 2, "title": "a pull request", "state": "open", "pull_request": map[string]interface{}{}},
			{"number": 3, "title": "closed issue", "state": "closed", "user": map[string]interface{}{"login": "ngo"}},
		}
		_ = json.NewEncoder(w).Encode(issues)
	})
	defer closeFn()

	issues, err := client.ListIssues(context.Background(), "acme", "app", "")
	if err != nil {
		t.Fatalf("ListIssues() failed, %v", err)
	}
	if len(issues) != 2 {
		t.Fatalf("ListIssues() = %d issues, want 2 (pull requests filtered)", len(issues))
	}
	if issues[0].Number != 1 || issues[1].Number != 3 {
		t.Errorf("ListIssues() numbers = %d, %d, want 1, 3", issues[0].Number, issues[1].Number)
	}
}

func TestListPullRequests(t *testing.T) {
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/app/pulls" {
			http.NotFound(w, r)
			return
		}
		pulls := []map[string]interface{}{
			{"number": 10, "title": "feature", "state": "open", "user": map[string]interface{}{"login": "awa"}},
		}
		_ = json.NewEncoder(w).Encode(pulls)
	})
	defer closeFn()

	pulls, err := client.ListPullRequests(context.Background(), "acme", "app", "")
	if err != nil {
		t.Fatalf("ListPullRequests() failed, %v", err)
	}
	if len(pulls) != 1 || pulls[0].Author != "awa" {
		t.Errorf("ListPullRequests() = %v, want one by awa", pulls)
	}
}

func TestHostErrors(t *testing.T) {
	client, closeFn := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/repos/acme/gone/commits":
			http.NotFound(w, r)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	})
	defer closeFn()

	if _, err := client.ListCommits(context.Background(), "acme", "gone", ""); pkgerrors.Cause(err) != core.ErrNotFound {
		t.Errorf("ListCommits() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	if _, err := client.ListCommits(context.Background(), "acme", "flaky", ""); err == nil {
		t.Error("ListCommits() error = nil, want status error")
	}
}
