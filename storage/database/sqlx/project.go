package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/user"
)

type projectRow struct {
	ID             int       `db:"id"`
	Name           string    `db:"name"`
	OwnerStudentID null.Int  `db:"owner_student_id"`
	OwnerGroupID   null.Int  `db:"owner_group_id"`
	CreatedAt      null.Time `db:"created_at"`
	UpdatedAt      null.Time `db:"updated_at"`
}

func (row projectRow) toProject() project.Project {
	prj := project.Project{
		ID:        row.ID,
		Name:      row.Name,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.OwnerStudentID.Valid {
		id := row.OwnerStudentID.Int
		prj.OwnerStudentID = &id
	}
	if row.OwnerGroupID.Valid {
		id := row.OwnerGroupID.Int
		prj.OwnerGroupID = &id
	}
	return prj
}

func toProjects(rows []projectRow) []project.Project {
	projects := make([]project.Project, len(rows))
	for i, row := range rows {
		projects[i] = row.toProject()
	}
	return projects
}

type deployRow struct {
	ID          int       `db:"id"`
	ProjectID   int       `db:"project_id"`
	Name        string    `db:"name"`
	URL         string    `db:"url"`
	InstanceKey string    `db:"instance_key"`
	CreatedAt   null.Time `db:"created_at"`
}

func (row deployRow) toDeployInstance() project.DeployInstance {
	return project.DeployInstance{
		ID:          row.ID,
		ProjectID:   row.ProjectID,
		Name:        row.Name,
		URL:         row.URL,
		InstanceKey: row.InstanceKey,
		CreatedAt:   row.CreatedAt.Time,
	}
}

type projectRepository struct {
	db *sqlx.DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	query := `INSERT INTO projects (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`
	if err := repo.db.QueryRowContext(ctx, query, prj.Name, prj.CreatedAt, prj.UpdatedAt).Scan(&prj.ID); err != nil {
		return project.Project{}, errors.Wrap(err, "creating project")
	}
	return prj, nil
}

func (repo *projectRepository) QueryAllProjects(ctx context.Context) ([]project.Project, error) {
	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM projects ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	return toProjects(rows), nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id int) (project.Project, error) {
	var row projectRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM projects WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, core.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return row.toProject(), nil
}

func (repo *projectRepository) QueryProjectsByStudent(ctx context.Context, studentID int) ([]project.Project, error) {
	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM projects WHERE owner_student_id = $1 ORDER BY id`, studentID); err != nil {
		return nil, errors.Wrap(err, "querying student projects")
	}
	return toProjects(rows), nil
}

func (repo *projectRepository) QueryProjectsByGroup(ctx context.Context, groupID int) ([]project.Project, error) {
	var rows []projectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM projects WHERE owner_group_id = $1 ORDER BY id`, groupID); err != nil {
		return nil, errors.Wrap(err, "querying group projects")
	}
	return toProjects(rows), nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE projects SET name = $1, updated_at = $2 WHERE id = $3`, prj.Name, prj.UpdatedAt, prj.ID)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return project.Project{}, core.ErrNotFound
	}
	return repo.GetProjectByID(ctx, prj.ID)
}

func (repo *projectRepository) DeleteProjectByID(ctx context.Context, id int) error {
	return runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var row projectRow
		if err := tx.GetContext(ctx, &row, `SELECT * FROM projects WHERE id = $1 FOR UPDATE`, id); err != nil {
			if err == sql.ErrNoRows {
				return core.ErrNotFound
			}
			return errors.Wrap(err, "getting project")
		}
		if row.OwnerStudentID.Valid || row.OwnerGroupID.Valid {
			return core.ErrInUse
		}
		var hasRepos bool
		if err := tx.GetContext(ctx, &hasRepos, `SELECT EXISTS (SELECT 1 FROM repos WHERE project_id = $1)`, id); err != nil {
			return errors.Wrap(err, "checking project repos")
		}
		if hasRepos {
			return core.ErrInUse
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM deploy_instances WHERE project_id = $1`, id); err != nil {
			return errors.Wrap(err, "deleting deploy instances")
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = $1`, id); err != nil {
			return errors.Wrap(err, "deleting project")
		}
		return nil
	})
}

func (repo *projectRepository) AssignProjectToStudent(ctx context.Context, studentID, projectID int) (project.Project, error) {
	var prj project.Project
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := userHasRole(ctx, tx, studentID, user.RoleStudent); err != nil {
			return err
		}
		var row projectRow
		if err := tx.GetContext(ctx, &row, `SELECT * FROM projects WHERE id = $1 FOR UPDATE`, projectID); err != nil {
			if err == sql.ErrNoRows {
				return core.ErrNotFound
			}
			return errors.Wrap(err, "getting project")
		}
		if row.OwnerStudentID.Valid && row.OwnerStudentID.Int == studentID {
			return core.ErrAlreadyPresent
		}
		if row.OwnerStudentID.Valid || row.OwnerGroupID.Valid {
			return core.ErrAlreadyOwned
		}
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET owner_student_id = $1, updated_at = NOW() WHERE id = $2`, studentID, projectID); err != nil {
			return errors.Wrap(err, "assigning project")
		}
		var err error
		prj, err = getProject(ctx, tx, projectID)
		return err
	})
	return prj, err
}

func (repo *projectRepository) UnassignProjectFromStudent(ctx context.Context, studentID, projectID int) (project.Project, error) {
	var prj project.Project
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := userHasRole(ctx, tx, studentID, user.RoleStudent); err != nil {
			return err
		}
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID); err != nil {
			return errors.Wrap(err, "checking project")
		}
		if !exists {
			return core.ErrNotFound
		}
		res, err := tx.ExecContext(ctx, `UPDATE projects SET owner_student_id = NULL, updated_at = NOW() WHERE id = $1 AND owner_student_id = $2`, projectID, studentID)
		if err != nil {
			return errors.Wrap(err, "unassigning project")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotLinked
		}
		prj, err = getProject(ctx, tx, projectID)
		return err
	})
	return prj, err
}

func getProject(ctx context.Context, q sqlx.QueryerContext, id int) (project.Project, error) {
	var row projectRow
	if err := sqlx.GetContext(ctx, q, &row, `SELECT * FROM projects WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return project.Project{}, core.ErrNotFound
		}
		return project.Project{}, errors.Wrap(err, "getting project")
	}
	return row.toProject(), nil
}

func (repo *projectRepository) CreateDeployInstance(ctx context.Context, di project.DeployInstance) (project.DeployInstance, error) {
	query := `
		INSERT INTO deploy_instances (project_id, name, url, instance_key, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, di.ProjectID, di.Name, di.URL, di.InstanceKey, di.CreatedAt).Scan(&di.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return project.DeployInstance{}, core.ErrNotFound
		}
		return project.DeployInstance{}, errors.Wrap(err, "creating deploy instance")
	}
	return di, nil
}

func (repo *projectRepository) QueryDeployInstancesByProject(ctx context.Context, projectID int) ([]project.DeployInstance, error) {
	if _, err := getProject(ctx, repo.db, projectID); err != nil {
		return nil, err
	}
	var rows []deployRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM deploy_instances WHERE project_id = $1 ORDER BY id`, projectID); err != nil {
		return nil, errors.Wrap(err, "querying deploy instances")
	}
	instances := make([]project.DeployInstance, len(rows))
	for i, row := range rows {
		instances[i] = row.toDeployInstance()
	}
	return instances, nil
}

func (repo *projectRepository) DeleteDeployInstanceByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM deploy_instances WHERE id = $1`, id)
	if err != nil {
		return errors.Wrap(err, "deleting deploy instance")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
