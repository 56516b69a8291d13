package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/user"
)

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db}
}

// lookupOrder matches authentication: student, then teacher, then admin.
var lookupOrder = []string{user.RoleStudent, user.RoleTeacher, user.RoleAdmin}

func (repo *userRepository) query() []user.User {
	users := make([]user.User, 0, len(repo.db.users))
	for _, u := range repo.db.users {
		users = append(users, *u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (repo *userRepository) CheckEmailUniqueness(_ context.Context, email, role string, excludedUsers ...user.User) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.checkEmailUniqueness(email, role, excludedUsers...)
}

// checkEmailUniqueness must be called with the lock held.
func (repo *userRepository) checkEmailUniqueness(email, role string, excludedUsers ...user.User) error {
	for _, usr := range repo.db.users {
		if usr.Email == email && usr.Role == role && !isExcluded(*usr, excludedUsers) {
			return core.ErrEmailTaken
		}
	}
	return nil
}

func isExcluded(usr user.User, excluded []user.User) bool {
	for _, ex := range excluded {
		if ex.ID == usr.ID {
			return true
		}
	}
	return false
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkEmailUniqueness(usr.Email, usr.Role); err != nil {
		return user.User{}, err
	}
	usr.ID = repo.db.nextPK()
	repo.db.users[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryAllUsers(_ context.Context) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.query(), nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id int) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if usr, ok := repo.db.users[id]; ok {
		return *usr, nil
	}
	return user.User{}, core.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, role := range lookupOrder {
		for _, usr := range repo.db.users {
			if usr.Email == email && usr.Role == role {
				return *usr, nil
			}
		}
	}
	return user.User{}, core.ErrNotFound
}

func (repo *userRepository) GetUserByEmailAndRole(_ context.Context, email, role string) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, usr := range repo.db.users {
		if usr.Email == email && usr.Role == role {
			return *usr, nil
		}
	}
	return user.User{}, core.ErrNotFound
}

func (repo *userRepository) FilterUsers(_ context.Context, filter user.QueryFilter) ([]user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0)
	for _, usr := range repo.query() {
		if filter.Search != "" && !matchesSearch(usr, filter.Search) {
			continue
		}
		if filter.Role != "" && usr.Role != filter.Role {
			continue
		}
		if filter.IsActive != nil && (usr.IsActive == nil || *usr.IsActive != *filter.IsActive) {
			continue
		}
		if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
			continue
		}
		if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
			continue
		}
		users = append(users, usr)
	}
	return users, nil
}

func matchesSearch(usr user.User, search string) bool {
	s := strings.ToLower(search)
	return strings.Contains(strings.ToLower(usr.FirstName), s) ||
		strings.Contains(strings.ToLower(usr.LastName), s) ||
		strings.Contains(strings.ToLower(usr.Email), s)
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, isActive *bool) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	// only save set fields
	orig, ok := repo.db.users[usr.ID]
	if !ok {
		return user.User{}, core.ErrNotFound
	}
	if usr.FirstName != "" {
		orig.FirstName = usr.FirstName
	}
	if usr.LastName != "" {
		orig.LastName = usr.LastName
	}
	if usr.Email != "" && usr.Email != orig.Email {
		if err := repo.checkEmailUniqueness(usr.Email, orig.Role, *orig); err != nil {
			return user.User{}, err
		}
		orig.Email = usr.Email
	}
	if usr.PasswordHash != nil {
		orig.PasswordHash = usr.PasswordHash
	}
	if usr.GithubUser != "" {
		orig.GithubUser = usr.GithubUser
	}
	if usr.GithubToken != "" {
		orig.GithubToken = usr.GithubToken
	}
	if isActive != nil {
		orig.IsActive = isActive
	}
	if !usr.LastLogin.IsZero() {
		orig.LastLogin = usr.LastLogin
	}
	if !usr.UpdatedAt.IsZero() {
		orig.UpdatedAt = usr.UpdatedAt
	}
	return *orig, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, id := range ids {
		if _, ok := repo.db.users[id]; !ok {
			return core.ErrNotFound
		}
		for _, com := range repo.db.commissions {
			if intsContain(com.StudentIDs, id) || intsContain(com.TeacherIDs, id) {
				return core.ErrInUse
			}
		}
		for _, grp := range repo.db.groups {
			if intsContain(grp.MemberIDs, id) {
				return core.ErrInUse
			}
		}
		for _, prj := range repo.db.projects {
			if prj.OwnedByStudent(id) {
				return core.ErrInUse
			}
		}
	}
	for _, id := range ids {
		delete(repo.db.users, id)
	}
	return nil
}
