package policy

import (
	"context"
	"errors"
	"testing"
)

// fakeRel wires a tiny relationship graph:
//
//	teacher 10 -> commission 1
//	student 20 -> group 2 (in commission 1)
//	student 20 owns project 3; group 2 owns project 4; project 5 is unowned
//	repo 6 -> project 4
type fakeRel struct {
	failing bool
}

var errBoom = errors.New("boom")

func (f fakeRel) TeacherInCommission(_ context.Context, teacherID, commissionID int) (bool, error) {
	if f.failing {
		return false, errBoom
	}
	return teacherID == 10 && commissionID == 1, nil
}

func (f fakeRel) StudentInGroup(_ context.Context, studentID, groupID int) (bool, error) {
	if f.failing {
		return false, errBoom
	}
	return studentID == 20 && groupID == 2, nil
}

func (f fakeRel) StudentOwnsProject(_ context.Context, studentID, projectID int) (bool, error) {
	if f.failing {
		return false, errBoom
	}
	return studentID == 20 && projectID == 3, nil
}

func (f fakeRel) CommissionOfGroup(_ context.Context, groupID int) (int, error) {
	if f.failing {
		return 0, errBoom
	}
	if groupID == 2 {
		return 1, nil
	}
	return 0, nil
}

func (f fakeRel) GroupOwningProject(_ context.Context, projectID int) (int, error) {
	if f.failing {
		return 0, errBoom
	}
	if projectID == 4 {
		return 2, nil
	}
	return 0, nil
}

func (f fakeRel) ProjectOfRepo(_ context.Context, repoID int) (int, error) {
	if f.failing {
		return 0, errBoom
	}
	if repoID == 6 {
		return 4, nil
	}
	return 0, nil
}

var (
	admin     = Identity{Subject: 1, IsAdmin: true}
	teacher   = Identity{Subject: 10, IsTeacher: true}
	outsider  = Identity{Subject: 11, IsTeacher: true}
	student   = Identity{Subject: 20, IsStudent: true}
	stranger  = Identity{Subject: 21, IsStudent: true}
	anonymous = Identity{Subject: 99}
)

func TestEvaluatorAllow(t *testing.T) {
	eval := NewEvaluator(fakeRel{})
	ctx := context.Background()

	tests := []struct {
		name string
		id   Identity
		act  Action
		res  Resource
		want bool
	}{
		{name: "admin always allowed", id: admin, act: ActionDelete, res: Resource{Type: ResourceCommission, CommissionID: 77}, want: true},
		{name: "no role always denied", id: anonymous, act: ActionRead, res: Resource{Type: ResourceMatter}, want: false},

		// teacher scope follows the owning commission
		{name: "teacher updates own commission", id: teacher, act: ActionUpdate, res: Resource{Type: ResourceCommission, CommissionID: 1}, want: true},
		{name: "teacher denied foreign commission", id: outsider, act: ActionUpdate, res: Resource{Type: ResourceCommission, CommissionID: 1}, want: false},
		{name: "teacher links student in own commission", id: teacher, act: ActionLink, res: Resource{Type: ResourceCommission, CommissionID: 1, TargetUserID: 20}, want: true},
		{name: "teacher denied self link", id: teacher, act: ActionLink, res: Resource{Type: ResourceCommission, CommissionID: 1, TargetUserID: 10}, want: false},
		{name: "teacher denied self unlink", id: teacher, act: ActionUnlink, res: Resource{Type: ResourceCommission, CommissionID: 1, TargetUserID: 10}, want: false},
		{name: "teacher reaches group via commission", id: teacher, act: ActionUpdate, res: Resource{Type: ResourceGroup, GroupID: 2}, want: true},
		{name: "teacher reaches project via group chain", id: teacher, act: ActionUpdate, res: Resource{Type: ResourceProject, ProjectID: 4}, want: true},
		{name: "teacher reaches repo via project chain", id: teacher, act: ActionUpdate, res: Resource{Type: ResourceRepo, RepoID: 6}, want: true},
		{name: "teacher denied unscoped project", id: teacher, act: ActionUpdate, res: Resource{Type: ResourceProject, ProjectID: 5}, want: false},

		// student scope: own groups and controlled projects
		{name: "student creates group with self", id: student, act: ActionCreate, res: Resource{Type: ResourceGroup, NewGroupMemberIDs: []int{20, 21}}, want: true},
		{name: "student denied group without self", id: student, act: ActionCreate, res: Resource{Type: ResourceGroup, NewGroupMemberIDs: []int{21, 22}}, want: false},
		{name: "student acts on own group", id: student, act: ActionLink, res: Resource{Type: ResourceGroup, GroupID: 2, TargetUserID: 21}, want: true},
		{name: "student denied foreign group", id: stranger, act: ActionLink, res: Resource{Type: ResourceGroup, GroupID: 2, TargetUserID: 21}, want: false},
		{name: "student updates directly owned project", id: student, act: ActionUpdate, res: Resource{Type: ResourceProject, ProjectID: 3}, want: true},
		{name: "student controls project via group", id: student, act: ActionUpdate, res: Resource{Type: ResourceProject, ProjectID: 4}, want: true},
		{name: "student denied unowned project", id: student, act: ActionUpdate, res: Resource{Type: ResourceProject, ProjectID: 5}, want: false},
		{name: "student reaches repo via controlled project", id: student, act: ActionUpdate, res: Resource{Type: ResourceRepo, RepoID: 6}, want: true},
		{name: "stranger denied repo", id: stranger, act: ActionUpdate, res: Resource{Type: ResourceRepo, RepoID: 6}, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := eval.Allow(ctx, tt.id, tt.act, tt.res); got != tt.want {
				t.Errorf("Allow() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEvaluatorDeniesOnReaderError(t *testing.T) {
	eval := NewEvaluator(fakeRel{failing: true})
	ctx := context.Background()

	if eval.Allow(ctx, teacher, ActionUpdate, Resource{Type: ResourceCommission, CommissionID: 1}) {
		t.Error("Allow() = true on reader error, want deny")
	}
	if eval.Allow(ctx, student, ActionUpdate, Resource{Type: ResourceProject, ProjectID: 3}) {
		t.Error("Allow() = true on reader error, want deny")
	}
	// admins do not consult the reader
	if !eval.Allow(ctx, admin, ActionUpdate, Resource{Type: ResourceProject, ProjectID: 3}) {
		t.Error("Allow() = false for admin, want allow")
	}
}
