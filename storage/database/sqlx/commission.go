package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/user"
)

type commissionRow struct {
	ID        int           `db:"id"`
	Year      int           `db:"year"`
	Period    int           `db:"period"`
	MatterID  int           `db:"matter_id"`
	CreatedAt null.Time     `db:"created_at"`
	UpdatedAt null.Time     `db:"updated_at"`
	Students  pq.Int64Array `db:"student_ids"`
	Teachers  pq.Int64Array `db:"teacher_ids"`
	Groups    pq.Int64Array `db:"group_ids"`
}

func (row commissionRow) toCommission() commission.Commission {
	return commission.Commission{
		ID:         row.ID,
		Year:       row.Year,
		Period:     row.Period,
		MatterID:   row.MatterID,
		StudentIDs: int64sToInts(row.Students),
		TeacherIDs: int64sToInts(row.Teachers),
		GroupIDs:   int64sToInts(row.Groups),
		CreatedAt:  row.CreatedAt.Time,
		UpdatedAt:  row.UpdatedAt.Time,
	}
}

func int64sToInts(in []int64) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}

// commissionQuery aggregates the join tables into arrays so a commission
// loads in one round trip.
const commissionQuery = `
	SELECT c.id, c.year, c.period, c.matter_id, c.created_at, c.updated_at,
	       COALESCE((SELECT array_agg(cs.student_id) FROM commission_students cs WHERE cs.commission_id = c.id), '{}') AS student_ids,
	       COALESCE((SELECT array_agg(ct.teacher_id) FROM commission_teachers ct WHERE ct.commission_id = c.id), '{}') AS teacher_ids,
	       COALESCE((SELECT array_agg(cg.group_id) FROM commission_groups cg WHERE cg.commission_id = c.id), '{}') AS group_ids
	FROM commissions c`

type commissionRepository struct {
	db *sqlx.DB
}

var _ commission.Repository = (*commissionRepository)(nil)

func NewCommissionRepository(db *sqlx.DB) *commissionRepository {
	return &commissionRepository{db: db}
}

func getCommission(ctx context.Context, q sqlx.QueryerContext, id int) (commission.Commission, error) {
	var row commissionRow
	if err := sqlx.GetContext(ctx, q, &row, commissionQuery+` WHERE c.id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return commission.Commission{}, core.ErrNotFound
		}
		return commission.Commission{}, errors.Wrap(err, "getting commission")
	}
	return row.toCommission(), nil
}

func (repo *commissionRepository) CreateCommission(ctx context.Context, com commission.Commission) (commission.Commission, error) {
	query := `
		INSERT INTO commissions (year, period, matter_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	err := repo.db.QueryRowContext(ctx, query, com.Year, com.Period, com.MatterID, com.CreatedAt, com.UpdatedAt).Scan(&com.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return commission.Commission{}, core.ErrNotFound
		}
		return commission.Commission{}, errors.Wrap(err, "creating commission")
	}
	com.StudentIDs, com.TeacherIDs, com.GroupIDs = []int{}, []int{}, []int{}
	return com, nil
}

func (repo *commissionRepository) QueryAllCommissions(ctx context.Context) ([]commission.Commission, error) {
	var rows []commissionRow
	if err := repo.db.SelectContext(ctx, &rows, commissionQuery+` ORDER BY c.id`); err != nil {
		return nil, errors.Wrap(err, "querying commissions")
	}
	commissions := make([]commission.Commission, len(rows))
	for i, row := range rows {
		commissions[i] = row.toCommission()
	}
	return commissions, nil
}

func (repo *commissionRepository) GetCommissionByID(ctx context.Context, id int) (commission.Commission, error) {
	return getCommission(ctx, repo.db, id)
}

func (repo *commissionRepository) UpdateCommission(ctx context.Context, com commission.Commission) (commission.Commission, error) {
	query := `
		UPDATE commissions SET
			year = COALESCE(NULLIF($1, 0), year),
			period = COALESCE(NULLIF($2, 0), period),
			updated_at = $3
		WHERE id = $4`
	res, err := repo.db.ExecContext(ctx, query, com.Year, com.Period, com.UpdatedAt, com.ID)
	if err != nil {
		return commission.Commission{}, errors.Wrap(err, "updating commission")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return commission.Commission{}, core.ErrNotFound
	}
	return getCommission(ctx, repo.db, com.ID)
}

// DeleteCommissionByID detaches enrolled students, teachers and groups, then
// removes the commission. The matter survives.
func (repo *commissionRepository) DeleteCommissionByID(ctx context.Context, id int) error {
	return runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM commissions WHERE id = $1`, id)
		if err != nil {
			return errors.Wrap(err, "deleting commission")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotFound
		}
		return nil
	})
}

// lockCommission takes a row lock so concurrent link ops on the same
// commission serialize.
func lockCommission(ctx context.Context, tx *sqlx.Tx, id int) error {
	var locked int
	if err := tx.GetContext(ctx, &locked, `SELECT id FROM commissions WHERE id = $1 FOR UPDATE`, id); err != nil {
		if err == sql.ErrNoRows {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "locking commission")
	}
	return nil
}

func userHasRole(ctx context.Context, tx *sqlx.Tx, id int, role string) error {
	var found int
	if err := tx.GetContext(ctx, &found, `SELECT id FROM users WHERE id = $1 AND role = $2`, id, role); err != nil {
		if err == sql.ErrNoRows {
			return core.ErrNotFound
		}
		return errors.Wrap(err, "checking user role")
	}
	return nil
}

func (repo *commissionRepository) addMember(ctx context.Context, commissionID, userID int, role, table, column string) (commission.Commission, error) {
	var com commission.Commission
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockCommission(ctx, tx, commissionID); err != nil {
			return err
		}
		if err := userHasRole(ctx, tx, userID, role); err != nil {
			return err
		}
		query := `INSERT INTO ` + table + ` (commission_id, ` + column + `) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, commissionID, userID); err != nil {
			if isUniqueViolation(err) {
				return core.ErrAlreadyPresent
			}
			return errors.Wrap(err, "adding commission member")
		}
		var err error
		com, err = getCommission(ctx, tx, commissionID)
		return err
	})
	return com, err
}

func (repo *commissionRepository) removeMember(ctx context.Context, commissionID, userID int, role, table, column string) (commission.Commission, error) {
	var com commission.Commission
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockCommission(ctx, tx, commissionID); err != nil {
			return err
		}
		if err := userHasRole(ctx, tx, userID, role); err != nil {
			return err
		}
		query := `DELETE FROM ` + table + ` WHERE commission_id = $1 AND ` + column + ` = $2`
		res, err := tx.ExecContext(ctx, query, commissionID, userID)
		if err != nil {
			return errors.Wrap(err, "removing commission member")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotLinked
		}
		com, err = getCommission(ctx, tx, commissionID)
		return err
	})
	return com, err
}

func (repo *commissionRepository) AddCommissionStudent(ctx context.Context, commissionID, studentID int) (commission.Commission, error) {
	return repo.addMember(ctx, commissionID, studentID, user.RoleStudent, "commission_students", "student_id")
}

func (repo *commissionRepository) RemoveCommissionStudent(ctx context.Context, commissionID, studentID int) (commission.Commission, error) {
	return repo.removeMember(ctx, commissionID, studentID, user.RoleStudent, "commission_students", "student_id")
}

func (repo *commissionRepository) AddCommissionTeacher(ctx context.Context, commissionID, teacherID int) (commission.Commission, error) {
	return repo.addMember(ctx, commissionID, teacherID, user.RoleTeacher, "commission_teachers", "teacher_id")
}

func (repo *commissionRepository) RemoveCommissionTeacher(ctx context.Context, commissionID, teacherID int) (commission.Commission, error) {
	return repo.removeMember(ctx, commissionID, teacherID, user.RoleTeacher, "commission_teachers", "teacher_id")
}

func (repo *commissionRepository) AddCommissionGroup(ctx context.Context, commissionID, groupID int) (commission.Commission, error) {
	var com commission.Commission
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockCommission(ctx, tx, commissionID); err != nil {
			return err
		}
		var found int
		if err := tx.GetContext(ctx, &found, `SELECT id FROM groups WHERE id = $1`, groupID); err != nil {
			if err == sql.ErrNoRows {
				return core.ErrNotFound
			}
			return errors.Wrap(err, "checking group")
		}
		var present bool
		query := `SELECT EXISTS (SELECT 1 FROM commission_groups WHERE commission_id = $1 AND group_id = $2)`
		if err := tx.GetContext(ctx, &present, query, commissionID, groupID); err != nil {
			return errors.Wrap(err, "checking group link")
		}
		if present {
			return core.ErrAlreadyPresent
		}

		// every member of the group must be enrolled in the commission
		var strays int
		query = `
			SELECT COUNT(*) FROM group_members gm
			WHERE gm.group_id = $1
			  AND NOT EXISTS (SELECT 1 FROM commission_students cs WHERE cs.commission_id = $2 AND cs.student_id = gm.student_id)`
		if err := tx.GetContext(ctx, &strays, query, groupID, commissionID); err != nil {
			return errors.Wrap(err, "checking group enrollment")
		}
		if strays > 0 {
			return core.ErrMembersNotEnrolled
		}

		query = `INSERT INTO commission_groups (commission_id, group_id) VALUES ($1, $2)`
		if _, err := tx.ExecContext(ctx, query, commissionID, groupID); err != nil {
			if isUniqueViolation(err) {
				return core.ErrAlreadyPresent
			}
			return errors.Wrap(err, "adding commission group")
		}
		var err error
		com, err = getCommission(ctx, tx, commissionID)
		return err
	})
	return com, err
}

func (repo *commissionRepository) RemoveCommissionGroup(ctx context.Context, commissionID, groupID int) (commission.Commission, error) {
	var com commission.Commission
	err := runInTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := lockCommission(ctx, tx, commissionID); err != nil {
			return err
		}
		var found int
		if err := tx.GetContext(ctx, &found, `SELECT id FROM groups WHERE id = $1`, groupID); err != nil {
			if err == sql.ErrNoRows {
				return core.ErrNotFound
			}
			return errors.Wrap(err, "checking group")
		}
		res, err := tx.ExecContext(ctx, `DELETE FROM commission_groups WHERE commission_id = $1 AND group_id = $2`, commissionID, groupID)
		if err != nil {
			return errors.Wrap(err, "removing commission group")
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return core.ErrNotLinked
		}
		com, err = getCommission(ctx, tx, commissionID)
		return err
	})
	return com, err
}

func (repo *commissionRepository) IsCommissionStudent(ctx context.Context, commissionID, studentID int) (bool, error) {
	if _, err := getCommission(ctx, repo.db, commissionID); err != nil {
		return false, err
	}
	var present bool
	query := `SELECT EXISTS (SELECT 1 FROM commission_students WHERE commission_id = $1 AND student_id = $2)`
	if err := repo.db.GetContext(ctx, &present, query, commissionID, studentID); err != nil {
		return false, errors.Wrap(err, "checking commission student")
	}
	return present, nil
}

func (repo *commissionRepository) IsCommissionTeacher(ctx context.Context, commissionID, teacherID int) (bool, error) {
	if _, err := getCommission(ctx, repo.db, commissionID); err != nil {
		return false, err
	}
	var present bool
	query := `SELECT EXISTS (SELECT 1 FROM commission_teachers WHERE commission_id = $1 AND teacher_id = $2)`
	if err := repo.db.GetContext(ctx, &present, query, commissionID, teacherID); err != nil {
		return false, errors.Wrap(err, "checking commission teacher")
	}
	return present, nil
}

func (repo *commissionRepository) GetCommissionOwningGroup(ctx context.Context, groupID int) (commission.Commission, error) {
	var commissionID int
	query := `SELECT commission_id FROM commission_groups WHERE group_id = $1`
	if err := repo.db.GetContext(ctx, &commissionID, query, groupID); err != nil {
		if err == sql.ErrNoRows {
			return commission.Commission{}, core.ErrNotFound
		}
		return commission.Commission{}, errors.Wrap(err, "resolving owning commission")
	}
	return getCommission(ctx, repo.db, commissionID)
}
