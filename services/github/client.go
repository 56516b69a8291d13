// Package githubsvc is a thin client for GitHub's REST API, implementing the
// code-host contract of core/repo. It fetches full lists by following the
// per_page/page query protocol; callers page the results in memory.
package githubsvc

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/repo"
)

const perPage = 100

type Client struct {
	baseURL    string
	httpClient *http.Client
}

var _ repo.Host = (*Client)(nil)

func NewClient(conf *core.Config) *Client {
	return &Client{
		baseURL:    conf.Github.BaseURL,
		httpClient: &http.Client{Timeout: conf.Github.Timeout},
	}
}

// NewClientWithHTTP is meant for tests that inject a stub transport.
func NewClientWithHTTP(baseURL string, httpClient *http.Client) *Client {
	return &Client{baseURL: baseURL, httpClient: httpClient}
}

type ghCommit struct {
	SHA    string `json:"sha"`
	Commit struct {
		Message string `json:"message"`
		Author  struct {
			Name string    `json:"name"`
			Date time.Time `json:"date"`
		} `json:"author"`
	} `json:"commit"`
	URL string `json:"html_url"`
}

type ghIssue struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt   time.Time `json:"created_at"`
	URL         string    `json:"html_url"`
	PullRequest *struct{} `json:"pull_request,omitempty"`
}

type ghPull struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
	State  string `json:"state"`
	User   struct {
		Login string `json:"login"`
	} `json:"user"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"html_url"`
}

func (c *Client) ListCommits(ctx context.Context, owner, name, token string) ([]repo.Commit, error) {
	var all []repo.Commit
	for page := 1; ; page++ {
		var raw []ghCommit
		n, err := c.getPage(ctx, fmt.Sprintf("/repos/%s/%s/commits", owner, name), token, page, &raw)
		if err != nil {
			return nil, err
		}
		for _, gc := range raw {
			all = append(all, repo.Commit{
				SHA:     gc.SHA,
				Message: gc.Commit.Message,
				Author:  gc.Commit.Author.Name,
				Date:    gc.Commit.Author.Date,
				URL:     gc.URL,
			})
		}
		if n < perPage {
			return all, nil
		}
	}
}

func (c *Client) ListIssues(ctx context.Context, owner, name, token string) ([]repo.Issue, error) {
	var all []repo.Issue
	for page := 1; ; page++ {
		var raw []ghIssue
		n, err := c.getPage(ctx, fmt.Sprintf("/repos/%s/%s/issues?state=all", owner, name), token, page, &raw)
		if err != nil {
			return nil, err
		}
		for _, gi := range raw {
			// the issues endpoint also returns pull requests
			if gi.PullRequest != nil {
				continue
			}
			all = append(all, repo.Issue{
				Number:    gi.Number,
				Title:     gi.Title,
				State:     gi.State,
				Author:    gi.User.Login,
				CreatedAt: gi.CreatedAt,
				URL:       gi.URL,
			})
		}
		if n < perPage {
			return all, nil
		}
	}
}

func (c *Client) ListPullRequests(ctx context.Context, owner, name, token string) ([]repo.PullRequest, error) {
	var all []repo.PullRequest
	for page := 1; ; page++ {
		var raw []ghPull
		n, err := c.getPage(ctx, fmt.Sprintf("/repos/%s/%s/pulls?state=all", owner, name), token, page, &raw)
		if err != nil {
			return nil, err
		}
		for _, gp := range raw {
			all = append(all, repo.PullRequest{
				Number:    gp.Number,
				Title:     gp.Title,
				State:     gp.State,
				Author:    gp.User.Login,
				CreatedAt: gp.CreatedAt,
				URL:       gp.URL,
			})
		}
		if n < perPage {
			return all, nil
		}
	}
}

// getPage fetches one page into out and reports the raw item count so the
// caller knows when to stop.
func (c *Client) getPage(ctx context.Context, path, token string, page int, out interface{}) (int, error) {
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	url := fmt.Sprintf("%s%s%spage=%d&per_page=%d", c.baseURL, path, sep, page, perPage)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, errors.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, errors.Wrap(err, "fetching "+path)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return 0, core.ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return 0, errors.Errorf("fetching %s: status %d", path, resp.StatusCode)
	}

	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return 0, errors.Wrap(err, "decoding "+path)
	}
	return countItems(out), nil
}

func countItems(out interface{}) int {
	switch v := out.(type) {
	case *[]ghCommit:
		return len(*v)
	case *[]ghIssue:
		return len(*v)
	case *[]ghPull:
		return len(*v)
	}
	return 0
}
