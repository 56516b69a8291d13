package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/user"
)

type groupRepository struct {
	db *DB
}

var _ group.Repository = (*groupRepository)(nil)

func NewGroupRepository(db *DB) *groupRepository {
	return &groupRepository{db: db}
}

func (repo *groupRepository) CreateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, memberID := range grp.MemberIDs {
		usr, ok := repo.db.users[memberID]
		if !ok || !usr.IsStudent() {
			return group.Group{}, core.ErrNotFound
		}
	}
	grp.ID = repo.db.nextPK()
	repo.db.groups[grp.ID] = &grp
	return grp, nil
}

func (repo *groupRepository) QueryAllGroups(_ context.Context) ([]group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	groups := make([]group.Group, 0, len(repo.db.groups))
	for _, grp := range repo.db.groups {
		groups = append(groups, *grp)
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].ID < groups[j].ID })
	return groups, nil
}

func (repo *groupRepository) GetGroupByID(_ context.Context, id int) (group.Group, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if grp, ok := repo.db.groups[id]; ok {
		return *grp, nil
	}
	return group.Group{}, core.ErrNotFound
}

func (repo *groupRepository) UpdateGroup(_ context.Context, grp group.Group) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.groups[grp.ID]
	if !ok {
		return group.Group{}, core.ErrNotFound
	}
	if grp.Name != "" {
		orig.Name = grp.Name
	}
	if !grp.UpdatedAt.IsZero() {
		orig.UpdatedAt = grp.UpdatedAt
	}
	return *orig, nil
}

func (repo *groupRepository) DeleteGroupByID(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grp, ok := repo.db.groups[id]
	if !ok {
		return core.ErrNotFound
	}
	for _, com := range repo.db.commissions {
		if intsContain(com.GroupIDs, id) {
			return core.ErrInUse
		}
	}
	if len(grp.ProjectIDs) > 0 {
		return core.ErrInUse
	}
	delete(repo.db.groups, id)
	return nil
}

// Link operations. The write lock spans the existence check, the membership
// check and the write.

func (repo *groupRepository) AddGroupMember(_ context.Context, groupID, studentID int) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grp, err := repo.getWithStudent(groupID, studentID)
	if err != nil {
		return group.Group{}, err
	}
	if grp.HasMember(studentID) {
		return group.Group{}, core.ErrAlreadyPresent
	}
	grp.MemberIDs = append(grp.MemberIDs, studentID)
	grp.UpdatedAt = time.Now().UTC()
	return *grp, nil
}

func (repo *groupRepository) RemoveGroupMember(_ context.Context, groupID, studentID int) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grp, err := repo.getWithStudent(groupID, studentID)
	if err != nil {
		return group.Group{}, err
	}
	if !grp.HasMember(studentID) {
		return group.Group{}, core.ErrNotLinked
	}
	if len(grp.MemberIDs) == 1 {
		return group.Group{}, core.ErrLastMember
	}
	grp.MemberIDs = intsRemove(grp.MemberIDs, studentID)
	grp.UpdatedAt = time.Now().UTC()
	return *grp, nil
}

func (repo *groupRepository) AddGroupProject(_ context.Context, groupID, projectID int) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grp, ok := repo.db.groups[groupID]
	if !ok {
		return group.Group{}, core.ErrNotFound
	}
	prj, ok := repo.db.projects[projectID]
	if !ok {
		return group.Group{}, core.ErrNotFound
	}
	if grp.HasProject(projectID) {
		return group.Group{}, core.ErrAlreadyPresent
	}
	// ownership exclusivity: one owning collection at a time
	if prj.Owned() {
		return group.Group{}, core.ErrAlreadyOwned
	}
	grp.ProjectIDs = append(grp.ProjectIDs, projectID)
	prj.OwnerGroupID = &grp.ID
	grp.UpdatedAt = time.Now().UTC()
	return *grp, nil
}

func (repo *groupRepository) RemoveGroupProject(_ context.Context, groupID, projectID int) (group.Group, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	grp, ok := repo.db.groups[groupID]
	if !ok {
		return group.Group{}, core.ErrNotFound
	}
	prj, ok := repo.db.projects[projectID]
	if !ok {
		return group.Group{}, core.ErrNotFound
	}
	if !grp.HasProject(projectID) {
		return group.Group{}, core.ErrNotLinked
	}
	grp.ProjectIDs = intsRemove(grp.ProjectIDs, projectID)
	prj.OwnerGroupID = nil
	grp.UpdatedAt = time.Now().UTC()
	return *grp, nil
}

func (repo *groupRepository) IsGroupMember(_ context.Context, groupID, studentID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	grp, ok := repo.db.groups[groupID]
	if !ok {
		return false, core.ErrNotFound
	}
	return grp.HasMember(studentID), nil
}

// getWithStudent must be called with the lock held.
func (repo *groupRepository) getWithStudent(groupID, studentID int) (*group.Group, error) {
	grp, ok := repo.db.groups[groupID]
	if !ok {
		return nil, core.ErrNotFound
	}
	usr, ok := repo.db.users[studentID]
	if !ok || usr.Role != user.RoleStudent {
		return nil, core.ErrNotFound
	}
	return grp, nil
}
