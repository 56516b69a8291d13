package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/user"
)

type userRow struct {
	ID           int         `db:"id"`
	FirstName    string      `db:"first_name"`
	LastName     string      `db:"last_name"`
	Email        string      `db:"email"`
	Role         string      `db:"role"`
	IsActive     bool        `db:"is_active"`
	PasswordHash []byte      `db:"password_hash"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
	LastLogin    null.Time   `db:"last_login"`
	GithubUser   null.String `db:"github_user"`
	GithubToken  null.String `db:"github_token"`
}

func (row userRow) toUser() user.User {
	active := row.IsActive
	return user.User{
		ID:           row.ID,
		FirstName:    row.FirstName,
		LastName:     row.LastName,
		Email:        row.Email,
		Role:         row.Role,
		IsActive:     &active,
		PasswordHash: row.PasswordHash,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
		GithubUser:   row.GithubUser.String,
		GithubToken:  row.GithubToken.String,
	}
}

func toUsers(rows []userRow) []user.User {
	users := make([]user.User, len(rows))
	for i, row := range rows {
		users[i] = row.toUser()
	}
	return users
}

type userRepository struct {
	db *sqlx.DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{db: db}
}

func (repo *userRepository) CheckEmailUniqueness(ctx context.Context, email, role string, excludedUsers ...user.User) error {
	query := `SELECT COUNT(*) FROM users WHERE LOWER(email) = LOWER($1) AND role = $2`
	args := []interface{}{email, role}
	if len(excludedUsers) > 0 {
		ids := make([]string, len(excludedUsers))
		for i, usr := range excludedUsers {
			ids[i] = fmt.Sprintf("$%d", i+3)
			args = append(args, usr.ID)
		}
		query += fmt.Sprintf(" AND id NOT IN (%s)", strings.Join(ids, ","))
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking email uniqueness")
	}
	if count > 0 {
		return core.ErrEmailTaken
	}
	return nil
}

func (repo *userRepository) CreateUser(ctx context.Context, usr user.User) (user.User, error) {
	query := `
		INSERT INTO users (first_name, last_name, email, role, is_active, password_hash, created_at, updated_at, github_user, github_token)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`
	active := true
	if usr.IsActive != nil {
		active = *usr.IsActive
	}
	err := repo.db.QueryRowContext(
		ctx, query,
		usr.FirstName, usr.LastName, usr.Email, usr.Role, active, usr.PasswordHash,
		usr.CreatedAt, usr.UpdatedAt, null.NewString(usr.GithubUser, usr.GithubUser != ""), null.NewString(usr.GithubToken, usr.GithubToken != ""),
	).Scan(&usr.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, core.ErrEmailTaken
		}
		return user.User{}, errors.Wrap(err, "creating user")
	}
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(ctx context.Context) ([]user.User, error) {
	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT * FROM users ORDER BY id`); err != nil {
		return nil, errors.Wrap(err, "querying users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) GetUserByID(ctx context.Context, id int) (user.User, error) {
	var row userRow
	if err := repo.db.GetContext(ctx, &row, `SELECT * FROM users WHERE id = $1`, id); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, core.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user")
	}
	return row.toUser(), nil
}

func (repo *userRepository) GetUserByEmail(ctx context.Context, email string) (user.User, error) {
	for _, role := range user.AllRoles {
		usr, err := repo.GetUserByEmailAndRole(ctx, email, role)
		if err == nil {
			return usr, nil
		}
		if errors.Cause(err) != core.ErrNotFound {
			return user.User{}, err
		}
	}
	return user.User{}, core.ErrNotFound
}

func (repo *userRepository) GetUserByEmailAndRole(ctx context.Context, email, role string) (user.User, error) {
	var row userRow
	query := `SELECT * FROM users WHERE LOWER(email) = LOWER($1) AND role = $2`
	if err := repo.db.GetContext(ctx, &row, query, email, role); err != nil {
		if err == sql.ErrNoRows {
			return user.User{}, core.ErrNotFound
		}
		return user.User{}, errors.Wrap(err, "getting user by email")
	}
	return row.toUser(), nil
}

func (repo *userRepository) FilterUsers(ctx context.Context, filter user.QueryFilter) ([]user.User, error) {
	query := `SELECT * FROM users WHERE 1=1`
	var args []interface{}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		query += fmt.Sprintf(" AND (first_name ILIKE %[1]s OR last_name ILIKE %[1]s OR email ILIKE %[1]s)", p)
	}
	if filter.Role != "" {
		query += fmt.Sprintf(" AND role = %s", arg(filter.Role))
	}
	if filter.IsActive != nil {
		query += fmt.Sprintf(" AND is_active = %s", arg(*filter.IsActive))
	}
	if !filter.CreatedFrom.IsZero() {
		query += fmt.Sprintf(" AND created_at >= %s", arg(filter.CreatedFrom))
	}
	if !filter.CreatedTo.IsZero() {
		query += fmt.Sprintf(" AND created_at <= %s", arg(filter.CreatedTo))
	}
	query += " ORDER BY id"

	var rows []userRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "filtering users")
	}
	return toUsers(rows), nil
}

func (repo *userRepository) UpdateUser(ctx context.Context, usr user.User, isActive *bool) (user.User, error) {
	query := `UPDATE users SET updated_at = $1`
	args := []interface{}{usr.UpdatedAt}
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if usr.FirstName != "" {
		query += fmt.Sprintf(", first_name = %s", arg(usr.FirstName))
	}
	if usr.LastName != "" {
		query += fmt.Sprintf(", last_name = %s", arg(usr.LastName))
	}
	if usr.Email != "" {
		query += fmt.Sprintf(", email = %s", arg(usr.Email))
	}
	if usr.PasswordHash != nil {
		query += fmt.Sprintf(", password_hash = %s", arg(usr.PasswordHash))
	}
	if !usr.LastLogin.IsZero() {
		query += fmt.Sprintf(", last_login = %s", arg(usr.LastLogin))
	}
	if usr.GithubUser != "" {
		query += fmt.Sprintf(", github_user = %s", arg(usr.GithubUser))
	}
	if usr.GithubToken != "" {
		query += fmt.Sprintf(", github_token = %s", arg(usr.GithubToken))
	}
	if isActive != nil {
		query += fmt.Sprintf(", is_active = %s", arg(*isActive))
	}
	query += fmt.Sprintf(" WHERE id = %s", arg(usr.ID))

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return user.User{}, core.ErrEmailTaken
		}
		return user.User{}, errors.Wrap(err, "updating user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return user.User{}, core.ErrNotFound
	}
	return repo.GetUserByID(ctx, usr.ID)
}

func (repo *userRepository) DeleteUsersByID(ctx context.Context, ids ...int) error {
	if len(ids) == 0 {
		return nil
	}
	query, args, err := sqlx.In(`DELETE FROM users WHERE id IN (?)`, ids)
	if err != nil {
		return errors.Wrap(err, "deleting users")
	}
	if _, err = repo.db.ExecContext(ctx, repo.db.Rebind(query), args...); err != nil {
		if isForeignKeyViolation(err) {
			return core.ErrInUse
		}
		return errors.Wrap(err, "deleting users")
	}
	return nil
}
