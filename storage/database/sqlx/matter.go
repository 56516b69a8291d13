package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/matter"
)

type matterRow struct {
	ID   int    `db:"id"`
	Name string `db:"name"`
}

type matterRepository struct {
	db *sqlx.DB
}

var _ matter.Repository = (*matterRepository)(nil)

func NewMatterRepository(db *sqlx.DB) *matterRepository {
	return &matterRepository{db: db}
}

func (repo *matterRepository) CheckNameUniqueness(ctx context.Context, name string, excludedMatters ...matter.Matter) error {
	query := `SELECT COUNT(*) FROM matters WHERE LOWER(name) = LOWER($1)`
	args := []interface{}{name}
	if len(excludedMatters) > 0 {
		ids := make([]string, len(excludedMatters))
		for i, mat := range excludedMatters {
			ids[i] = fmt.Sprintf("$%d", i+2)
			args = append(args, mat.ID)
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking matter name uniqueness")
	}
	if count > 0 {
		return core.ErrAlreadyPresent
	}
	return nil
}

func (repo *matterRepository) CreateMatter(ctx context.Context, mat matter.Matter) (matter.Matter, error) {
	err := repo.db.QueryRowContext(ctx, `INSERT INTO matters (name) VALUES ($1) RETURNING id`, mat.Name).Scan(&mat.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return matter.Matter{}, core.ErrAlreadyPresent
		}
		return matter.Matter{}, errors.Wrap(err, "creating matter")
	}
	return mat, nil
}

func (repo *matterRepository) QueryAllMatters(ctx context.Context) ([]matter.Matter, error) {
	var rows []matterRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM matters ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying matters")
	}
	matters := make([]matter.Matter, len(rows))
	for i, row := range rows {
		matters[i] = matter.Matter{ID: row.ID, Name: row.Name}
	}
	return matters, nil
}

func (repo *matterRepository) GetMatterByID(ctx context.Context, id int) (matter.Matter, error) {
	var row matterRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM matters WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return matter.Matter{}, core.ErrNotFound
		}
		return matter.Matter{}, errors.Wrap(err, "getting matter")
	}
	return matter.Matter{ID: row.ID, Name: row.Name}, nil
}

func (repo *matterRepository) GetMatterByName(ctx context.Context, name string) (matter.Matter, error) {
	var row matterRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM matters WHERE LOWER(name) = LOWER($1)`, name); err != nil {
		if err == sql.ErrNoRows {
			return matter.Matter{}, core.ErrNotFound
		}
		return matter.Matter{}, errors.Wrap(err, "getting matter by name")
	}
	return matter.Matter{ID: row.ID, Name: row.Name}, nil
}

func (repo *matterRepository) UpdateMatter(ctx context.Context, mat matter.Matter) (matter.Matter, error) {
	res, err := repo.db.ExecContext(ctx, `UPDATE matters SET name = $1 WHERE id = $2`, mat.Name, mat.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return matter.Matter{}, core.ErrAlreadyPresent
		}
		return matter.Matter{}, errors.Wrap(err, "updating matter")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return matter.Matter{}, core.ErrNotFound
	}
	return mat, nil
}

func (repo *matterRepository) DeleteMatterByID(ctx context.Context, id int) error {
	res, err := repo.db.ExecContext(ctx, `DELETE FROM matters WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			return core.ErrInUse
		}
		return errors.Wrap(err, "deleting matter")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return core.ErrNotFound
	}
	return nil
}
