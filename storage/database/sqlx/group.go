package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/user"
)

type groupRow struct {
	ID        int           `db:"id"`
	Name      string        `db:"name"`
	CreatedAt null.Time     `db:"created_at"`
	UpdatedAt null.Time     `db:"updated_at"`
	Members   pq.Int64Array `db:"member_ids"`
	Projects  pq.Int64Array `db:"project_ids"`
}

func (row groupRow) toGroup() group.Group {
	return group.Group{
		ID:         row.ID,
		Name:       row.Name,
		MemberIDs:  int64sToInts(row.Members),
		ProjectIDs: int64sToInts(row.Projects),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

const groupQuery = `
	SELECT g.id, g.name, g.created_at, g.updated_at,
	       COALESCE((SELECT array_agg(gm.student_id) FROM group_members gm WHERE gm.group_id = g.id), '{}') AS member_ids,
	       COALESCE((SELECT array_agg(p.id) FROM projects p WHERE p.owner_group_id = g.id), '{}') AS project_ids
	FROM groups g`

type groupRepository struct {
	db *sqlx.DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *sqlx.DB) *groupRepository {
	return &groupRepository{db: db}
}

func getGroup(ctx context.Context, q sqlx.QueryerContext, id int) (group.Group, error) {
	var row groupRow
	if err := sqlx.GetContext(ctx, q, &row, groupQuery+` WHERE g.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return group.Group{}, core.ErrNotFound
		}
		return group.Group{}, errors.Wrap(err, "getting group")
	}
	return row.toGroup(), nil
}

func (repo *groupRepository) CreateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// every initial member must resolve to a student
		query, args, err := sqlx.In(`SELECT COUNT(*) FROM users WHERE id IN (?) AND role = ?`, grp.MemberIDs, user.RoleStudent)
		if err != nil {
			return errors.Wrap(err, "creating group")
		}
		var students int
		if err = tx.GetContext(ctx, &students, tx.Rebind(query), args...); err != nil {
			return errors.Wrap(err, "checking group members")
		}
		if students != len(grp.MemberIDs) {
			return core.ErrNotFound
		}

		insert := `INSERT INTO groups (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id`
		if err = tx.QueryRowContext(ctx, insert, grp.Name, grp.CreatedAt, grp.UpdatedAt).Scan(&grp.ID); err != nil {
			return errors.Wrap(err, "creating group")
		}
		for _, memberID := range grp.MemberIDs {
			if _, err = tx.ExecContext(ctx, `INSERT INTO group_members (group_id, student_id) VALUES ($1, $2)`, grp.ID, memberID); err != nil {
				return errors.Wrap(err, "adding group member")
			}
		}
		return nil
	})
	if err != nil {
		return group.Group{}, err
	}
	grp.ProjectIDs = []int{}
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(ctx context.Context) ([]group.Group, error) {
	var rows []groupRow
	if err := repo.db.SelectContext(ctx, &rows, groupQuery+` ORDER BY g.id`); err != nil {
		return nil, errors.Wrap(err, "querying groups")
	}
	groups := make([]group.Group, len(rows))
	for i, row := range rows {
		groups[i] = row.toGroup()
	}
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(ctx context.Context, id int) (group.Group, error) {
	return getGroup(ctx, repo.db, id)
}

func (repo *groupRepository) UpdateGroup(ctx context.Context, grp group.Group) (group.Group, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE groups SET name = $1, updated_at = $2 WHERE id = $3`, grp.Name, grp.UpdatedAt, grp.ID)
	if err != nil {
		return group.Group{}, errors.Wrap(err, "updating group")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return group.Group{}, core.ErrNotFound
	}
	return getGroup(ctx, repo.db, grp.ID)
}

func (repo *groupRepository) DeleteGroupByID(ctx context.Context, id int) error {
	return runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		var inUse bool
		query := `
			SELECT EXISTS (SELECT 1 FROM commission_groups WHERE group_id = $1)
			    OR EXISTS (SELECT 1 FROM projects WHERE owner_group_id = $1)`
		if err := tx.GetContext(ctx, &inUse, query, id); err != nil {
			return errors.Wrap(err, "checking group usage")
		}
		if inUse {
			return core.ErrInUse
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM groups WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "deleting group")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

func lockGroup(ctx context.Context, tx *sqlx.Tx, id int) error {
	var locked int
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM groups WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "locking group")
	}
	return nil
}

func (repo *groupRepository) AddGroupMember(ctx context.Context, groupID, studentID int) (group.Group, error) {
	var grp group.Group
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockGroup(ctx, tx, groupID); err != nil {
			return err
		}
		if err := userHasRole(ctx, tx, studentID, user.RoleStudent); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO group_members (group_id, student_id) VALUES ($1, $2)`, groupID, studentID); err != nil {
			if isUniqueViolation(err) {
				return core.ErrAlreadyPresent
			}
			return errors.Wrap(err, "adding group member")
		}
		var err error
		grp, err = getGroup(ctx, tx, groupID)
		return err
	})
	return grp, err
}

func (repo *groupRepository) RemoveGroupMember(ctx context.Context, groupID, studentID int) (group.Group, error) {
	var grp group.Group
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockGroup(ctx, tx, groupID); err != nil {
			return err
		}
		if err := userHasRole(ctx, tx, studentID, user.RoleStudent); err != nil {
			return err
		}
		var present bool
		query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND student_id = $2)`
		if err := tx.GetContext(ctx, &present, query, groupID, studentID); err != nil {
			return errors.Wrap(err, "checking group member")
		}
		if !present {
			return core.ErrNotLinked
		}
		var members int
		if err := tx.GetContext(ctx, &members, `SELECT COUNT(*) FROM group_members WHERE group_id = $1`, groupID); err != nil {
			return errors.Wrap(err, "counting group members")
		}
		if members <= 1 {
			return core.ErrLastMember
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM group_members WHERE group_id = $1 AND student_id = $2`, groupID, studentID); err != nil {
			return errors.Wrap(err, "removing group member")
		}
		var err error
		grp, err = getGroup(ctx, tx, groupID)
		return err
	})
	return grp, err
}

func (repo *groupRepository) AddGroupProject(ctx context.Context, groupID, projectID int) (group.Group, error) {
	var grp group.Group
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockGroup(ctx, tx, groupID); err != nil {
			return err
		}
		var prj struct {
			OwnerStudentID null.Int `db:"owner_student_id"`
			OwnerGroupID   null.Int `db:"owner_group_id"`
		}
		query := `SELECT owner_student_id, owner_group_id FROM projects WHERE id = $1 FOR UPDATE`
		if err := tx.GetContext(ctx, &prj, query, projectID); err != nil {
			if err == sql.ErrNoRows {
				return core.ErrNotFound
			}
			return errors.Wrap(err, "getting project")
		}
		if prj.OwnerGroupID.Valid && int(prj.OwnerGroupID.Int) == groupID {
			return core.ErrAlreadyPresent
		}
		if prj.OwnerStudentID.Valid || prj.OwnerGroupID.Valid {
			return core.ErrAlreadyOwned
		}
		if _, err := tx.ExecContext(ctx, `UPDATE projects SET owner_group_id = $1, updated_at = NOW() WHERE id = $2`, groupID, projectID); err != nil {
			return errors.Wrap(err, "assigning project to group")
		}
		var err error
		grp, err = getGroup(ctx, tx, groupID)
		return err
	})
	return grp, err
}

func (repo *groupRepository) RemoveGroupProject(ctx context.Context, groupID, projectID int) (group.Group, error) {
	var grp group.Group
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockGroup(ctx, tx, groupID); err != nil {
			return err
		}
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM projects WHERE id = $1)`, projectID); err != nil {
			return errors.Wrap(err, "checking project")
		}
		if !exists {
			return core.ErrNotFound
		}
		res, err := tx.ExecContext(ctx, `UPDATE projects SET owner_group_id = NULL, updated_at = NOW() WHERE id = $1 AND owner_group_id = $2`, projectID, groupID)
		if err != nil {
			return errors.Wrap(err, "unassigning project from group")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotLinked
		}
		grp, err = getGroup(ctx, tx, groupID)
		return err
	})
	return grp, err
}

func (repo *groupRepository) IsGroupMember(ctx context.Context, groupID, studentID int) (bool, error) {
	if _, err := getGroup(ctx, repo.db, groupID); err != nil {
		return false, err
	}
	var present bool
	query := `SELECT EXISTS (SELECT 1 FROM group_members WHERE group_id = $1 AND student_id = $2)`
	if err := repo.db.GetContext(ctx, &present, query, groupID, studentID); err != nil {
		return false, errors.Wrap(err, "checking group member")
	}
	return present, nil
}
