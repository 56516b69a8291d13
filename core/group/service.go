package group

import (
	"context"
	"time"
)

type (
	// Repository holds the group link operations. Each add/remove runs its
	// existence check, membership check and write in a single transaction so
	// concurrent callers for the same pair cannot both succeed; error
	// precedence is: core.ErrNotFound, then core.ErrAlreadyPresent /
	// core.ErrNotLinked, then the domain invariant (core.ErrLastMember,
	// core.ErrAlreadyOwned).
	Repository interface {
		// CreateGroup fails with core.ErrNotFound when any initial member id
		// does not resolve to a student.
		CreateGroup(ctx context.Context, grp Group) (Group, error)
		QueryAllGroups(ctx context.Context) ([]Group, error)
		GetGroupByID(ctx context.Context, id int) (Group, error)
		UpdateGroup(ctx context.Context, grp Group) (Group, error)
		DeleteGroupByID(ctx context.Context, id int) error

		AddGroupMember(ctx context.Context, groupID, studentID int) (Group, error)
		RemoveGroupMember(ctx context.Context, groupID, studentID int) (Group, error)
		AddGroupProject(ctx context.Context, groupID, projectID int) (Group, error)
		RemoveGroupProject(ctx context.Context, groupID, projectID int) (Group, error)

		IsGroupMember(ctx context.Context, groupID, studentID int) (bool, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, ng NewGroup) (Group, error) {
	now := time.Now().UTC()
	grp := Group{
		Name:      ng.Name,
		MemberIDs: ng.MemberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateGroup(ctx, grp)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Group, error) {
	return svc.repo.QueryAllGroups(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Group, error) {
	return svc.repo.GetGroupByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, id int, ug UpdateGroup) (Group, error) {
	return svc.repo.UpdateGroup(ctx, Group{ID: id, Name: ug.Name, UpdatedAt: time.Now().UTC()})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteGroupByID(ctx, id)
}

func (svc *Service) AddMember(ctx context.Context, groupID, studentID int) (Group, error) {
	return svc.repo.AddGroupMember(ctx, groupID, studentID)
}

func (svc *Service) RemoveMember(ctx context.Context, groupID, studentID int) (Group, error) {
	return svc.repo.RemoveGroupMember(ctx, groupID, studentID)
}

func (svc *Service) AddProject(ctx context.Context, groupID, projectID int) (Group, error) {
	return svc.repo.AddGroupProject(ctx, groupID, projectID)
}

func (svc *Service) RemoveProject(ctx context.Context, groupID, projectID int) (Group, error) {
	return svc.repo.RemoveGroupProject(ctx, groupID, projectID)
}

func (svc *Service) IsMember(ctx context.Context, groupID, studentID int) (bool, error) {
	return svc.repo.IsGroupMember(ctx, groupID, studentID)
}
