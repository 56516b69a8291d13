package repo

import (
	"context"
	"fmt"
	"testing"

	"github.com/acadio/practia/core"
)

type fakeStore struct {
	repos map[int]Repo
}

func (f fakeStore) CreateRepo(_ context.Context, r Repo) (Repo, error)       { return r, nil }
func (f fakeStore) QueryAllRepos(_ context.Context) ([]Repo, error)          { return nil, nil }
func (f fakeStore) QueryReposByProject(_ context.Context, _ int) ([]Repo, error) {
	return nil, nil
}
func (f fakeStore) UpdateRepo(_ context.Context, r Repo) (Repo, error) { return r, nil }
func (f fakeStore) DeleteRepoByID(_ context.Context, _ int) error      { return nil }
func (f fakeStore) CreateComment(_ context.Context, c Comment) (Comment, error) {
	return c, nil
}
func (f fakeStore) QueryCommentsByRepo(_ context.Context, _ int) ([]Comment, error) {
	return nil, nil
}
func (f fakeStore) DeleteCommentByID(_ context.Context, _, _ int) error { return nil }

func (f fakeStore) GetRepoByID(_ context.Context, id int) (Repo, error) {
	if r, ok := f.repos[id]; ok {
		return r, nil
	}
	return Repo{}, core.ErrNotFound
}

type fakeHost struct {
	commits int
}

func (f fakeHost) ListCommits(_ context.Context, _, _, _ string) ([]Commit, error) {
	commits := make([]Commit, f.commits)
	for i := range commits {
		commits[i] = Commit{SHA: fmt.Sprintf("sha-%03d", i)}
	}
	return commits, nil
}

func (f fakeHost) ListIssues(_ context.Context, _, _, _ string) ([]Issue, error) {
	return nil, nil
}

func (f fakeHost) ListPullRequests(_ context.Context, _, _, _ string) ([]PullRequest, error) {
	return nil, nil
}

func TestPageCount(t *testing.T) {
	tests := []struct {
		name     string
		total    int
		pageSize int
		want     int
		wantErr  bool
	}{
		{name: "empty", total: 0, pageSize: 10, want: 0},
		{name: "exact fit", total: 20, pageSize: 10, want: 2},
		{name: "partial last page", total: 21, pageSize: 10, want: 3},
		{name: "single short page", total: 3, pageSize: 10, want: 1},
		{name: "zero page size", total: 5, pageSize: 0, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PageCount(tt.total, tt.pageSize)
			if tt.wantErr {
				if err == nil {
					t.Error("PageCount() error = nil, want paging error")
				}
				return
			}
			if err != nil {
				t.Fatalf("PageCount() failed, %v", err)
			}
			if got != tt.want {
				t.Errorf("PageCount() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCommitsPaging(t *testing.T) {
	svc := NewService(
		fakeStore{repos: map[int]Repo{1: {ID: 1, Name: "app", Owner: "acme"}}},
		fakeHost{commits: 25},
	)
	ctx := context.Background()

	commits, err := svc.Commits(ctx, 1, 1, 10)
	if err != nil {
		t.Fatalf("Commits() failed, %v", err)
	}
	if len(commits) != 10 || commits[0].SHA != "sha-000" {
		t.Errorf("Commits() page 1 = %d items starting %s, want 10 starting sha-000", len(commits), commits[0].SHA)
	}

	commits, err = svc.Commits(ctx, 1, 3, 10)
	if err != nil {
		t.Fatalf("Commits() failed, %v", err)
	}
	if len(commits) != 5 || commits[0].SHA != "sha-020" {
		t.Errorf("Commits() page 3 = %d items, want the trailing 5", len(commits))
	}

	// a page past the end is empty, not an error
	commits, err = svc.Commits(ctx, 1, 9, 10)
	if err != nil {
		t.Fatalf("Commits() failed, %v", err)
	}
	if len(commits) != 0 {
		t.Errorf("Commits() past the end = %d items, want 0", len(commits))
	}

	// invalid paging args
	if _, err = svc.Commits(ctx, 1, 0, 10); err == nil {
		t.Error("Commits() error = nil, want paging error")
	}
	// unknown repo
	if _, err = svc.Commits(ctx, 99, 1, 10); err != core.ErrNotFound {
		t.Errorf("Commits() error = %v, wantErr %v", err, core.ErrNotFound)
	}

	count, err := svc.CommitPageCount(ctx, 1, 10)
	if err != nil {
		t.Fatalf("CommitPageCount() failed, %v", err)
	}
	if count != 3 {
		t.Errorf("CommitPageCount() = %d, want 3", count)
	}
}
