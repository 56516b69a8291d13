package dummydb

import (
	"context"
	"sort"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
)

type repoRepository struct {
	db *DB
}

var _ repo.Repository = (*repoRepository)(nil)

func NewRepoRepository(db *DB) *repoRepository {
	return &repoRepository{db: db}
}

func (rr *repoRepository) CreateRepo(_ context.Context, r repo.Repo) (repo.Repo, error) {
	rr.db.mu.Lock()
	defer rr.db.mu.Unlock()

	if _, ok := rr.db.projects[r.ProjectID]; !ok {
		return repo.Repo{}, core.ErrNotFound
	}
	for _, existing := range rr.db.repos {
		if existing.ProjectID == r.ProjectID && existing.Name == r.Name {
			return repo.Repo{}, core.ErrAlreadyPresent
		}
	}
	r.ID = rr.db.nextPK()
	rr.db.repos[r.ID] = &r
	return r, nil
}

func (rr *repoRepository) QueryAllRepos(_ context.Context) ([]repo.Repo, error) {
	rr.db.mu.RLock()
	defer rr.db.mu.RUnlock()

	repos := make([]repo.Repo, 0, len(rr.db.repos))
	for _, r := range rr.db.repos {
		repos = append(repos, *r)
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID < repos[j].ID })
	return repos, nil
}

func (rr *repoRepository) GetRepoByID(_ context.Context, id int) (repo.Repo, error) {
	rr.db.mu.RLock()
	defer rr.db.mu.RUnlock()

	if r, ok := rr.db.repos[id]; ok {
		return *r, nil
	}
	return repo.Repo{}, core.ErrNotFound
}

func (rr *repoRepository) QueryReposByProject(_ context.Context, projectID int) ([]repo.Repo, error) {
	rr.db.mu.RLock()
	defer rr.db.mu.RUnlock()

	if _, ok := rr.db.projects[projectID]; !ok {
		return nil, core.ErrNotFound
	}
	repos := make([]repo.Repo, 0)
	for _, r := range rr.db.repos {
		if r.ProjectID == projectID {
			repos = append(repos, *r)
		}
	}
	sort.Slice(repos, func(i, j int) bool { return repos[i].ID < repos[j].ID })
	return repos, nil
}

func (rr *repoRepository) UpdateRepo(_ context.Context, r repo.Repo) (repo.Repo, error) {
	rr.db.mu.Lock()
	defer rr.db.mu.Unlock()

	orig, ok := rr.db.repos[r.ID]
	if !ok {
		return repo.Repo{}, core.ErrNotFound
	}
	if r.Name != "" && r.Name != orig.Name {
		for _, existing := range rr.db.repos {
			if existing.ID != orig.ID && existing.ProjectID == orig.ProjectID && existing.Name == r.Name {
				return repo.Repo{}, core.ErrAlreadyPresent
			}
		}
		orig.Name = r.Name
	}
	if r.Owner != "" {
		orig.Owner = r.Owner
	}
	if r.Token != "" {
		orig.Token = r.Token
	}
	if !r.UpdatedAt.IsZero() {
		orig.UpdatedAt = r.UpdatedAt
	}
	return *orig, nil
}

func (rr *repoRepository) DeleteRepoByID(_ context.Context, id int) error {
	rr.db.mu.Lock()
	defer rr.db.mu.Unlock()

	if _, ok := rr.db.repos[id]; !ok {
		return core.ErrNotFound
	}
	for cid, c := range rr.db.comments {
		if c.RepoID == id {
			delete(rr.db.comments, cid)
		}
	}
	delete(rr.db.repos, id)
	return nil
}

// Comments

func (rr *repoRepository) CreateComment(_ context.Context, c repo.Comment) (repo.Comment, error) {
	rr.db.mu.Lock()
	defer rr.db.mu.Unlock()

	if _, ok := rr.db.repos[c.RepoID]; !ok {
		return repo.Comment{}, core.ErrNotFound
	}
	usr, ok := rr.db.users[c.TeacherID]
	if !ok || usr.Role != user.RoleTeacher {
		return repo.Comment{}, core.ErrNotFound
	}
	c.ID = rr.db.nextPK()
	rr.db.comments[c.ID] = &c
	return c, nil
}

func (rr *repoRepository) QueryCommentsByRepo(_ context.Context, repoID int) ([]repo.Comment, error) {
	rr.db.mu.RLock()
	defer rr.db.mu.RUnlock()

	if _, ok := rr.db.repos[repoID]; !ok {
		return nil, core.ErrNotFound
	}
	comments := make([]repo.Comment, 0)
	for _, c := range rr.db.comments {
		if c.RepoID == repoID {
			comments = append(comments, *c)
		}
	}
	sort.Slice(comments, func(i, j int) bool { return comments[i].ID < comments[j].ID })
	return comments, nil
}

func (rr *repoRepository) DeleteCommentByID(_ context.Context, repoID, id int) error {
	rr.db.mu.Lock()
	defer rr.db.mu.Unlock()

	c, ok := rr.db.comments[id]
	if !ok || c.RepoID != repoID {
		return core.ErrNotFound
	}
	delete(rr.db.comments, id)
	return nil
}
