package commission

import (
	"context"
	"time"
)

type (
	// Repository holds the commission link operations. Each add/remove runs
	// its existence check, membership check and write in a single transaction;
	// error precedence is: core.ErrNotFound, then core.ErrAlreadyPresent /
	// core.ErrNotLinked, then the domain invariant
	// (core.ErrMembersNotEnrolled for group adds).
	Repository interface {
		// CreateCommission fails with core.ErrNotFound when the owning matter
		// does not exist.
		CreateCommission(ctx context.Context, com Commission) (Commission, error)
		QueryAllCommissions(ctx context.Context) ([]Commission, error)
		GetCommissionByID(ctx context.Context, id int) (Commission, error)
		UpdateCommission(ctx context.Context, com Commission) (Commission, error)
		DeleteCommissionByID(ctx context.Context, id int) error

		AddCommissionStudent(ctx context.Context, commissionID, studentID int) (Commission, error)
		RemoveCommissionStudent(ctx context.Context, commissionID, studentID int) (Commission, error)
		AddCommissionTeacher(ctx context.Context, commissionID, teacherID int) (Commission, error)
		RemoveCommissionTeacher(ctx context.Context, commissionID, teacherID int) (Commission, error)
		// AddCommissionGroup additionally fails with core.ErrMembersNotEnrolled
		// when any member of the group is not an enrolled student of the commission.
		AddCommissionGroup(ctx context.Context, commissionID, groupID int) (Commission, error)
		RemoveCommissionGroup(ctx context.Context, commissionID, groupID int) (Commission, error)

		IsCommissionStudent(ctx context.Context, commissionID, studentID int) (bool, error)
		IsCommissionTeacher(ctx context.Context, commissionID, teacherID int) (bool, error)
		// GetCommissionOwningGroup resolves the commission a group was added to,
		// or core.ErrNotFound when the group is in no commission.
		GetCommissionOwningGroup(ctx context.Context, groupID int) (Commission, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, nc NewCommission) (Commission, error) {
	now := time.Now().UTC()
	com := Commission{
		Year:      nc.Year,
		Period:    nc.Period,
		MatterID:  nc.MatterID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateCommission(ctx, com)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Commission, error) {
	return svc.repo.QueryAllCommissions(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Commission, error) {
	return svc.repo.GetCommissionByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, uc UpdateCommission) (Commission, error) {
	com := Commission{ID: id, Year: uc.Year, Period: uc.Period, UpdatedAt: time.Now().UTC()}
	return svc.repo.UpdateCommission(ctx, com)
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteCommissionByID(ctx, id)
}

func (svc *Service) AddStudent(ctx context.Context, commissionID, studentID int) (Commission, error) {
	return svc.repo.AddCommissionStudent(ctx, commissionID, studentID)
}

func (svc *Service) RemoveStudent(ctx context.Context, commissionID, studentID int) (Commission, error) {
	return svc.repo.RemoveCommissionStudent(ctx, commissionID, studentID)
}

func (svc *Service) AddTeacher(ctx context.Context, commissionID, teacherID int) (Commission, error) {
	return svc.repo.AddCommissionTeacher(ctx, commissionID, teacherID)
}

func (svc *Service) RemoveTeacher(ctx context.Context, commissionID, teacherID int) (Commission, error) {
	return svc.repo.RemoveCommissionTeacher(ctx, commissionID, teacherID)
}

func (svc *Service) AddGroup(ctx context.Context, commissionID, groupID int) (Commission, error) {
	return svc.repo.AddCommissionGroup(ctx, commissionID, groupID)
}

func (svc *Service) RemoveGroup(ctx context.Context, commissionID, groupID int) (Commission, error) {
	return svc.repo.RemoveCommissionGroup(ctx, commissionID, groupID)
}

func (svc *Service) IsStudent(ctx context.Context, commissionID, studentID int) (bool, error) {
	return svc.repo.IsCommissionStudent(ctx, commissionID, studentID)
}

func (svc *Service) IsTeacher(ctx context.Context, commissionID, teacherID int) (bool, error) {
	return svc.repo.IsCommissionTeacher(ctx, commissionID, teacherID)
}

func (svc *Service) GetOwningGroup(ctx context.Context, groupID int) (Commission, error) {
	return svc.repo.GetCommissionOwningGroup(ctx, groupID)
}
