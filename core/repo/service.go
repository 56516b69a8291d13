package repo

import (
	"context"
	"errors"
	"time"

	"github.com/acadio/practia/core"
)

var errBadPaging = errors.New("page and page_size must be greater than zero")

type (
	Repository interface {
		// CreateRepo fails with core.ErrNotFound when the project does not
		// exist and with core.ErrAlreadyPresent when the project already has
		// a repository with this name.
		CreateRepo(ctx context.Context, r Repo) (Repo, error)
		QueryAllRepos(ctx context.Context) ([]Repo, error)
		GetRepoByID(ctx context.Context, id int) (Repo, error)
		QueryReposByProject(ctx context.Context, projectID int) ([]Repo, error)
		UpdateRepo(ctx context.Context, r Repo) (Repo, error)
		DeleteRepoByID(ctx context.Context, id int) error

		// CreateComment fails with core.ErrNotFound when the repo or the
		// teacher does not exist.
		CreateComment(ctx context.Context, c Comment) (Comment, error)
		QueryCommentsByRepo(ctx context.Context, repoID int) ([]Comment, error)
		// DeleteCommentByID fails with core.ErrNotFound when the comment
		// does not exist or belongs to another repo.
		DeleteCommentByID(ctx context.Context, repoID, id int) error
	}

	// Host lists activity of an externally hosted repository. The service
	// treats it purely as a data source: no validation, no retries.
	Host interface {
		ListCommits(ctx context.Context, owner, name, token string) ([]Commit, error)
		ListIssues(ctx context.Context, owner, name, token string) ([]Issue, error)
		ListPullRequests(ctx context.Context, owner, name, token string) ([]PullRequest, error)
	}

	Service struct {
		repo Repository
		host Host
	}
)

func NewService(store Repository, host Host) *Service {
	return &Service{repo: store, host: host}
}

func (svc *Service) Create(ctx context.Context, projectID int, nr NewRepo) (Repo, error) {
	now := time.Now().UTC()
	r := Repo{
		ProjectID: projectID,
		Name:      nr.Name,
		Owner:     nr.Owner,
		Token:     nr.Token,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateRepo(ctx, r)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Repo, error) {
	return svc.repo.QueryAllRepos(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Repo, error) {
	return svc.repo.GetRepoByID(ctx, id)
}

func (svc *Service) QueryByProject(ctx context.Context, projectID int) ([]Repo, error) {
	return svc.repo.QueryReposByProject(ctx, projectID)
}

func (svc *Service) Update(ctx context.Context, id int, ur UpdateRepo) (Repo, error) {
	r := Repo{ID: id, Name: ur.Name, Owner: ur.Owner, Token: ur.Token, UpdatedAt: time.Now().UTC()}
	return svc.repo.UpdateRepo(ctx, r)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteRepoByID(ctx, id)
}

func (svc *Service) AddComment(ctx context.Context, repoID, teacherID int, nc NewComment) (Comment, error) {
	c := Comment{
		RepoID:    repoID,
		TeacherID: teacherID,
		Body:      nc.Body,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateComment(ctx, c)
}

func (svc *Service) QueryComments(ctx context.Context, repoID int) ([]Comment, error) {
	return svc.repo.QueryCommentsByRepo(ctx, repoID)
}

func (svc *Service) DeleteComment(ctx context.Context, repoID, id int) error {
	return svc.repo.DeleteCommentByID(ctx, repoID, id)
}

// Derived collections. The host is queried for the full list; paging slices
// it in memory, so page counts and pages are always consistent with the same
// fetch.

func (svc *Service) Commits(ctx context.Context, repoID, page, pageSize int) ([]Commit, error) {
	r, err := svc.repo.GetRepoByID(ctx, repoID)
	if err != nil {
		return nil, err
	}
	commits, err := svc.host.ListCommits(ctx, r.Owner, r.Name, r.Token)
	if err != nil {
		return nil, err
	}
	lo, hi, err := pageBounds(page, pageSize, len(commits))
	if err != nil {
		return nil, err
	}
	return commits[lo:hi], nil
}

func (svc *Service) CommitPageCount(ctx context.Context, repoID, pageSize int) (int, error) {
	r, err := svc.repo.GetRepoByID(ctx, repoID)
	if err != nil {
		return 0, err
	}
	commits, err := svc.host.ListCommits(ctx, r.Owner, r.Name, r.Token)
	if err != nil {
		return 0, err
	}
	return PageCount(len(commits), pageSize)
}

func (svc *Service) Issues(ctx context.Context, repoID, page, pageSize int) ([]Issue, error) {
	r, err := svc.repo.GetRepoByID(ctx, repoID)
	if err != nil {
		return nil, err
	}
	issues, err := svc.host.ListIssues(ctx, r.Owner, r.Name, r.Token)
	if err != nil {
		return nil, err
	}
	lo, hi, err := pageBounds(page, pageSize, len(issues))
	if err != nil {
		return nil, err
	}
	return issues[lo:hi], nil
}

func (svc *Service) IssuePageCount(ctx context.Context, repoID, pageSize int) (int, error) {
	r, err := svc.repo.GetRepoByID(ctx, repoID)
	if err != nil {
		return 0, err
	}
	issues, err := svc.host.ListIssues(ctx, r.Owner, r.Name, r.Token)
	if err != nil {
		return 0, err
	}
	return PageCount(len(issues), pageSize)
}

func (svc *Service) PullRequests(ctx context.Context, repoID, page, pageSize int) ([]PullRequest, error) {
	r, err := svc.repo.GetRepoByID(ctx, repoID)
	if err != nil {
		return nil, err
	}
	pulls, err := svc.host.ListPullRequests(ctx, r.Owner, r.Name, r.Token)
	if err != nil {
		return nil, err
	}
	lo, hi, err := pageBounds(page, pageSize, len(pulls))
	if err != nil {
		return nil, err
	}
	return pulls[lo:hi], nil
}

func (svc *Service) PullRequestPageCount(ctx context.Context, repoID, pageSize int) (int, error) {
	r, err := svc.repo.GetRepoByID(ctx, repoID)
	if err != nil {
		return 0, err
	}
	pulls, err := svc.host.ListPullRequests(ctx, r.Owner, r.Name, r.Token)
	if err != nil {
		return 0, err
	}
	return PageCount(len(pulls), pageSize)
}

// PageCount returns the number of pages of size pageSize needed for total items.
func PageCount(total, pageSize int) (int, error) {
	if pageSize < 1 {
		return 0, core.NewValidationError(errBadPaging)
	}
	if total == 0 {
		return 0, nil
	}
	return (total + pageSize - 1) / pageSize, nil
}

func pageBounds(page, pageSize, total int) (int, int, error) {
	if page < 1 || pageSize < 1 {
		return 0, 0, core.NewValidationError(errBadPaging)
	}
	lo := (page - 1) * pageSize
	if lo > total {
		lo = total
	}
	hi := lo + pageSize
	if hi > total {
		hi = total
	}
	return lo, hi, nil
}
