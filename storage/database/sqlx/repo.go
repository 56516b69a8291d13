package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
)

type repoRow struct {
	ID        int       `db:"id"`
	ProjectID int       `db:"project_id"`
	Name      string    `db:"name"`
	Owner     string    `db:"owner"`
	Token     string    `db:"token"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (row repoRow) toRepo() repo.Repo {
	return repo.Repo{
		ID:        row.ID,
		ProjectID: row.ProjectID,
		Name:      row.Name,
		Owner:     row.Owner,
		Token:     row.Token,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func toRepos(rows []repoRow) []repo.Repo {
	repos := make([]repo.Repo, len(rows))
	for i, row := range rows {
		repos[i] = row.toRepo()
	}
	return repos
}

type commentRow struct {
	ID        int       `db:"id"`
	RepoID    int       `db:"repo_id"`
	TeacherID int       `db:"teacher_id"`
	Body      string    `db:"body"`
	CreatedAt null.Time `db:"created_at"`
}

func (row commentRow) toComment() repo.Comment {
	return repo.Comment{
		ID:        row.ID,
		RepoID:    row.RepoID,
		TeacherID: row.TeacherID,
		Body:      row.Body,
		CreatedAt: row.CreatedAt.Time,
	}
}

type repoRepository struct {
	db *sqlx.DB
}

var _ repo.Repository = (*repoRepository)(nil)

func NewRepoRepository(db *sqlx.DB) *repoRepository {
	return &repoRepository{db: db}
}

func (rr *repoRepository) CreateRepo(ctx context.Context, r repo.Repo) (repo.Repo, error) {
	query := `
		INSERT INTO repos (project_id, name, owner, token, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := rr.db.QueryRowContext(ctx, query, r.ProjectID, r.Name, r.Owner, r.Token, r.CreatedAt, r.UpdatedAt).Scan(&r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.Repo{}, core.ErrAlreadyPresent
		}
		if isForeignKeyViolation(err) {
			return repo.Repo{}, core.ErrNotFound
		}
		return repo.Repo{}, errors.Wrap(err, "creating repo")
	}
	return r, nil
}

func (rr *repoRepository) QueryAllRepos(ctx context.Context) ([]repo.Repo, error) {
	var rows []repoRow
	if err := rr.db.SelectContext(ctx, &rows, `SELECT * FROM repos ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying repos")
	}
	return toRepos(rows), nil
}

func (rr *repoRepository) GetRepoByID(ctx context.Context, id int) (repo.Repo, error) {
	var row repoRow
	if err := rr.db.GetContext(ctx, &row, `SELECT * FROM repos WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return repo.Repo{}, core.ErrNotFound
		}
		return repo.Repo{}, errors.Wrap(err, "getting repo")
	}
	return row.toRepo(), nil
}

func (rr *repoRepository) QueryReposByProject(ctx context.Context, projectID int) ([]repo.Repo, error) {
	var exists bool
	if err := rr.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID); err != nil {
		return nil, errors.Wrap(err, "checking project")
	}
	if !exists {
		return nil, core.ErrNotFound
	}
	var rows []repoRow
	if err := rr.db.SelectContext(ctx, &rows, `SELECT * FROM repos WHERE project_id = $1 ORDER BY id`, projectID); err != nil {
		return nil, errors.Wrap(err, "querying project repos")
	}
	return toRepos(rows), nil
}

func (rr *repoRepository) UpdateRepo(ctx context.Context, r repo.Repo) (repo.Repo, error) {
	query := `
		UPDATE repos SET
			name = COALESCE(NULLIF($1, ''), name),
			owner = COALESCE(NULLIF($2, ''), owner),
			token = COALESCE(NULLIF($3, ''), token),
			updated_at = $4
		WHERE id = $5`
	res, err := rr.db.ExecContext(ctx, query, r.Name, r.Owner, r.Token, r.UpdatedAt, r.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return repo.Repo{}, core.ErrAlreadyPresent
		}
		return repo.Repo{}, errors.Wrap(err, "updating repo")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return repo.Repo{}, core.ErrNotFound
	}
	return rr.GetRepoByID(ctx, r.ID)
}

func (rr *repoRepository) DeleteRepoByID(ctx context.Context, id int) error {
	return runInTx(ctx, rr.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM comments WHERE repo_id = $1`, id); err != nil {
			return errors.Wrap(err, "deleting repo comments")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM repos WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "deleting repo")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

func (rr *repoRepository) CreateComment(ctx context.Context, c repo.Comment) (repo.Comment, error) {
	err := runInTx(ctx, rr.db, func(tx *sqlx.Tx) error {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM repos WHERE id = $1)`, c.RepoID); err != nil {
			return errors.Wrap(err, "checking repo")
		}
		if !exists {
			return core.ErrNotFound
		}
		if err := userHasRole(ctx, tx, c.TeacherID, user.RoleTeacher); err != nil {
			return err
		}
		query := `INSERT INTO comments (repo_id, teacher_id, body, created_at) VALUES ($1, $2, $3, $4) RETURNING id`
		if err := tx.QueryRowContext(ctx, query, c.RepoID, c.TeacherID, c.Body, c.CreatedAt).Scan(&c.ID); err != nil {
			return errors.Wrap(err, "creating comment")
		}
		return nil
	})
	if err != nil {
		return repo.Comment{}, err
	}
	return c, nil
}

func (rr *repoRepository) QueryCommentsByRepo(ctx context.Context, repoID int) ([]repo.Comment, error) {
	var exists bool
	if err := rr.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM repos WHERE id = $1)`, repoID); err != nil {
		return nil, errors.Wrap(err, "checking repo")
	}
	if !exists {
		return nil, core.ErrNotFound
	}
	var rows []commentRow
	if err := rr.db.SelectContext(ctx, &rows, `SELECT * FROM comments WHERE repo_id = $1 ORDER BY id`, repoID); err != nil {
		return nil, errors.Wrap(err, "querying comments")
	}
	comments := make([]repo.Comment, len(rows))
	for i, row := range rows {
		comments[i] = row.toComment()
	}
	return comments, nil
}

func (rr *repoRepository) DeleteCommentByID(ctx context.Context, repoID, id int) error {
	res, err := rr.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1 AND repo_id = $2`, id, repoID)
	if err != nil {
		return errors.Wrap(err, "deleting comment")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
