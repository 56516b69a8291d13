// Package policy decides, per mutating operation, whether the acting identity
// may perform it. The evaluator is pure decision logic: it reads relationships
// through the injected reader and never mutates anything; callers perform the
// effect only after an allow result. Any relationship-query error is a deny.
package policy

import "context"

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionLink   Action = "link"
	ActionUnlink Action = "unlink"
)

type ResourceType string

const (
	ResourceUser       ResourceType = "user"
	ResourceMatter     ResourceType = "matter"
	ResourceCommission ResourceType = "commission"
	ResourceGroup      ResourceType = "group"
	ResourceProject    ResourceType = "project"
	ResourceRepo       ResourceType = "repo"
)

// Identity is the verified claim set of the acting user.
type Identity struct {
	Subject   int
	IsAdmin   bool
	IsTeacher bool
	IsStudent bool
}

// Resource supplies the specific ids involved in the attempted action.
// Only the fields relevant to the resource type need to be set.
type Resource struct {
	Type         ResourceType
	CommissionID int
	GroupID      int
	ProjectID    int
	RepoID       int

	// TargetUserID is the user being linked or unlinked, when applicable.
	TargetUserID int
	// NewGroupMemberIDs are the initial members on group creation.
	NewGroupMemberIDs []int
}

// RelationshipReader is the read side of the relationship engine the
// evaluator consults. Implementations join against persisted state.
type RelationshipReader interface {
	TeacherInCommission(ctx context.Context, teacherID, commissionID int) (bool, error)
	StudentInGroup(ctx context.Context, studentID, groupID int) (bool, error)
	StudentOwnsProject(ctx context.Context, studentID, projectID int) (bool, error)
	// CommissionOfGroup resolves the commission the group was added to;
	// returns 0 when the group is in no commission.
	CommissionOfGroup(ctx context.Context, groupID int) (int, error)
	// GroupOwningProject resolves the group owning the project; 0 when none.
	GroupOwningProject(ctx context.Context, projectID int) (int, error)
	// ProjectOfRepo resolves the project a repository is attached to.
	ProjectOfRepo(ctx context.Context, repoID int) (int, error)
}

type Evaluator struct {
	rel RelationshipReader
}

func NewEvaluator(rel RelationshipReader) *Evaluator {
	return &Evaluator{rel: rel}
}

// Allow evaluates the rules first-match. No matching rule denies.
func (e *Evaluator) Allow(ctx context.Context, id Identity, act Action, res Resource) bool {
	// Admins are allowed everything, with no relationship check.
	if id.IsAdmin {
		return true
	}
	if id.IsTeacher {
		return e.allowTeacher(ctx, id, act, res)
	}
	if id.IsStudent {
		return e.allowStudent(ctx, id, act, res)
	}
	return false
}

// allowTeacher allows actions scoped to a commission the teacher is linked
// to. A teacher may never act on their own teacher-membership link: admitting
// or removing themselves is an admin operation.
func (e *Evaluator) allowTeacher(ctx context.Context, id Identity, act Action, res Resource) bool {
	if (act == ActionLink || act == ActionUnlink) && res.TargetUserID == id.Subject {
		return false
	}

	commissionID, err := e.owningCommission(ctx, res)
	if err != nil || commissionID == 0 {
		return false
	}
	ok, err := e.rel.TeacherInCommission(ctx, id.Subject, commissionID)
	if err != nil {
		return false
	}
	return ok
}

// allowStudent allows actions scoped to a group the student belongs to, or a
// project the student owns (directly or through a member group). A student
// creating a group must list themselves among the initial members.
func (e *Evaluator) allowStudent(ctx context.Context, id Identity, act Action, res Resource) bool {
	if res.Type == ResourceGroup && act == ActionCreate {
		for _, mid := range res.NewGroupMemberIDs {
			if mid == id.Subject {
				return true
			}
		}
		return false
	}

	switch res.Type {
	case ResourceGroup:
		ok, err := e.rel.StudentInGroup(ctx, id.Subject, res.GroupID)
		return err == nil && ok
	case ResourceProject:
		return e.studentControlsProject(ctx, id.Subject, res.ProjectID)
	case ResourceRepo:
		projectID, err := e.rel.ProjectOfRepo(ctx, res.RepoID)
		if err != nil {
			return false
		}
		return e.studentControlsProject(ctx, id.Subject, projectID)
	}
	return false
}

func (e *Evaluator) studentControlsProject(ctx context.Context, studentID, projectID int) bool {
	if ok, err := e.rel.StudentOwnsProject(ctx, studentID, projectID); err == nil && ok {
		return true
	}
	groupID, err := e.rel.GroupOwningProject(ctx, projectID)
	if err != nil || groupID == 0 {
		return false
	}
	ok, err := e.rel.StudentInGroup(ctx, studentID, groupID)
	return err == nil && ok
}

// owningCommission resolves the commission that scopes the resource.
func (e *Evaluator) owningCommission(ctx context.Context, res Resource) (int, error) {
	switch res.Type {
	case ResourceCommission:
		return res.CommissionID, nil
	case ResourceGroup:
		if res.CommissionID != 0 {
			return res.CommissionID, nil
		}
		return e.rel.CommissionOfGroup(ctx, res.GroupID)
	case ResourceProject:
		return e.commissionOfProject(ctx, res.ProjectID)
	case ResourceRepo:
		projectID, err := e.rel.ProjectOfRepo(ctx, res.RepoID)
		if err != nil {
			return 0, err
		}
		return e.commissionOfProject(ctx, projectID)
	}
	return 0, nil
}

func (e *Evaluator) commissionOfProject(ctx context.Context, projectID int) (int, error) {
	groupID, err := e.rel.GroupOwningProject(ctx, projectID)
	if err != nil || groupID == 0 {
		return 0, err
	}
	return e.rel.CommissionOfGroup(ctx, groupID)
}
