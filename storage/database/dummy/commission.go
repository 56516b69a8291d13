package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/user"
)

type commissionRepository struct {
	db *DB
}

var _ commission.Repository = (*commissionRepository)(nil)

func NewCommissionRepository(db *DB) *commissionRepository {
	return &commissionRepository{db: db}
}

func (repo *commissionRepository) CreateCommission(_ context.Context, com commission.Commission) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.matters[com.MatterID]; !ok {
		return commission.Commission{}, core.ErrNotFound
	}
	com.ID = repo.db.nextPK()
	repo.db.commissions[com.ID] = &com
	return com, nil
}

func (repo *commissionRepository) QueryAllCommissions(_ context.Context) ([]commission.Commission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	coms := make([]commission.Commission, 0, len(repo.db.commissions))
	for _, com := range repo.db.commissions {
		coms = append(coms, *com)
	}
	sort.Slice(coms, func(i, j int) bool { return coms[i].ID < coms[j].ID })
	return coms, nil
}

func (repo *commissionRepository) GetCommissionByID(_ context.Context, id int) (commission.Commission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if com, ok := repo.db.commissions[id]; ok {
		return *com, nil
	}
	return commission.Commission{}, core.ErrNotFound
}

func (repo *commissionRepository) UpdateCommission(_ context.Context, com commission.Commission) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.commissions[com.ID]
	if !ok {
		return commission.Commission{}, core.ErrNotFound
	}
	if com.Year != 0 {
		orig.Year = com.Year
	}
	if com.Period != 0 {
		orig.Period = com.Period
	}
	if !com.UpdatedAt.IsZero() {
		orig.UpdatedAt = com.UpdatedAt
	}
	return *orig, nil
}

func (repo *commissionRepository) DeleteCommissionByID(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.commissions[id]; !ok {
		return core.ErrNotFound
	}
	// deleting a commission only detaches its membership sets
	delete(repo.db.commissions, id)
	return nil
}

// Link operations. The write lock spans the existence check, the membership
// check and the write, so error precedence is deterministic and concurrent
// duplicate adds cannot both succeed.

func (repo *commissionRepository) AddCommissionStudent(_ context.Context, commissionID, studentID int) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	com, err := repo.getWithMember(commissionID, studentID, user.RoleStudent)
	if err != nil {
		return commission.Commission{}, err
	}
	if com.HasStudent(studentID) {
		return commission.Commission{}, core.ErrAlreadyPresent
	}
	com.StudentIDs = append(com.StudentIDs, studentID)
	com.UpdatedAt = time.Now().UTC()
	return *com, nil
}

func (repo *commissionRepository) RemoveCommissionStudent(_ context.Context, commissionID, studentID int) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	com, err := repo.getWithMember(commissionID, studentID, user.RoleStudent)
	if err != nil {
		return commission.Commission{}, err
	}
	if !com.HasStudent(studentID) {
		return commission.Commission{}, core.ErrNotLinked
	}
	com.StudentIDs = intsRemove(com.StudentIDs, studentID)
	com.UpdatedAt = time.Now().UTC()
	return *com, nil
}

func (repo *commissionRepository) AddCommissionTeacher(_ context.Context, commissionID, teacherID int) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	com, err := repo.getWithMember(commissionID, teacherID, user.RoleTeacher)
	if err != nil {
		return commission.Commission{}, err
	}
	if com.HasTeacher(teacherID) {
		return commission.Commission{}, core.ErrAlreadyPresent
	}
	com.TeacherIDs = append(com.TeacherIDs, teacherID)
	com.UpdatedAt = time.Now().UTC()
	return *com, nil
}

func (repo *commissionRepository) RemoveCommissionTeacher(_ context.Context, commissionID, teacherID int) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	com, err := repo.getWithMember(commissionID, teacherID, user.RoleTeacher)
	if err != nil {
		return commission.Commission{}, err
	}
	if !com.HasTeacher(teacherID) {
		return commission.Commission{}, core.ErrNotLinked
	}
	com.TeacherIDs = intsRemove(com.TeacherIDs, teacherID)
	com.UpdatedAt = time.Now().UTC()
	return *com, nil
}

func (repo *commissionRepository) AddCommissionGroup(_ context.Context, commissionID, groupID int) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	com, ok := repo.db.commissions[commissionID]
	if !ok {
		return commission.Commission{}, core.ErrNotFound
	}
	grp, ok := repo.db.groups[groupID]
	if !ok {
		return commission.Commission{}, core.ErrNotFound
	}
	if com.HasGroup(groupID) {
		return commission.Commission{}, core.ErrAlreadyPresent
	}
	// every member of the group must already be an enrolled student
	for _, memberID := range grp.MemberIDs {
		if !com.HasStudent(memberID) {
			return commission.Commission{}, core.ErrMembersNotEnrolled
		}
	}
	com.GroupIDs = append(com.GroupIDs, groupID)
	com.UpdatedAt = time.Now().UTC()
	return *com, nil
}

func (repo *commissionRepository) RemoveCommissionGroup(_ context.Context, commissionID, groupID int) (commission.Commission, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	com, ok := repo.db.commissions[commissionID]
	if !ok {
		return commission.Commission{}, core.ErrNotFound
	}
	if _, ok := repo.db.groups[groupID]; !ok {
		return commission.Commission{}, core.ErrNotFound
	}
	if !com.HasGroup(groupID) {
		return commission.Commission{}, core.ErrNotLinked
	}
	com.GroupIDs = intsRemove(com.GroupIDs, groupID)
	com.UpdatedAt = time.Now().UTC()
	return *com, nil
}

func (repo *commissionRepository) IsCommissionStudent(_ context.Context, commissionID, studentID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	com, ok := repo.db.commissions[commissionID]
	if !ok {
		return false, core.ErrNotFound
	}
	return com.HasStudent(studentID), nil
}

func (repo *commissionRepository) IsCommissionTeacher(_ context.Context, commissionID, teacherID int) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	com, ok := repo.db.commissions[commissionID]
	if !ok {
		return false, core.ErrNotFound
	}
	return com.HasTeacher(teacherID), nil
}

func (repo *commissionRepository) GetCommissionOwningGroup(_ context.Context, groupID int) (commission.Commission, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, com := range repo.db.commissions {
		if com.HasGroup(groupID) {
			return *com, nil
		}
	}
	return commission.Commission{}, core.ErrNotFound
}

// getWithMember must be called with the lock held. It resolves the commission
// and checks that the user exists with the expected role; missing entities
// win over any membership error.
func (repo *commissionRepository) getWithMember(commissionID, userID int, role string) (*commission.Commission, error) {
	com, ok := repo.db.commissions[commissionID]
	if !ok {
		return nil, core.ErrNotFound
	}
	usr, ok := repo.db.users[userID]
	if !ok || usr.Role != role {
		return nil, core.ErrNotFound
	}
	return com, nil
}
