package dummydb

import (
	"context"
	"testing"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/user"
	testutil "github.com/acadio/practia/tests"
)

func TestCreateGroupMembersMustBeStudents(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	grpRepo := NewGroupRepository(db)

	std := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)
	tch := testutil.CreateUser(t, usrRepo, "Ada", "Obi", "obi@test.cd", user.RoleTeacher, "pwd", true)

	if _, err := grpRepo.CreateGroup(ctx, group.Group{Name: "g", MemberIDs: []int{std.ID, 999}}); err != core.ErrNotFound {
		t.Errorf("CreateGroup() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	if _, err := grpRepo.CreateGroup(ctx, group.Group{Name: "g", MemberIDs: []int{std.ID, tch.ID}}); err != core.ErrNotFound {
		t.Errorf("CreateGroup() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	if _, err := grpRepo.CreateGroup(ctx, group.Group{Name: "g", MemberIDs: []int{std.ID}}); err != nil {
		t.Errorf("CreateGroup() error = %v, want nil", err)
	}
}

func TestGroupMemberLinks(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	grpRepo := NewGroupRepository(db)

	std1 := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)
	std2 := testutil.CreateUser(t, usrRepo, "Ngo", "Zola", "zola@test.cd", user.RoleStudent, "pwd", true)
	grp := testutil.CreateGroup(t, grpRepo, "team-a", std1.ID)

	if _, err := grpRepo.AddGroupMember(ctx, 999, std2.ID); err != core.ErrNotFound {
		t.Errorf("AddGroupMember() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	got, err := grpRepo.AddGroupMember(ctx, grp.ID, std2.ID)
	if err != nil {
		t.Fatalf("AddGroupMember() failed, %v", err)
	}
	if !got.HasMember(std2.ID) {
		t.Error("expected member to be added")
	}
	if _, err = grpRepo.AddGroupMember(ctx, grp.ID, std2.ID); err != core.ErrAlreadyPresent {
		t.Errorf("AddGroupMember() error = %v, wantErr %v", err, core.ErrAlreadyPresent)
	}

	if _, err = grpRepo.RemoveGroupMember(ctx, grp.ID, std2.ID); err != nil {
		t.Fatalf("RemoveGroupMember() failed, %v", err)
	}
	if _, err = grpRepo.RemoveGroupMember(ctx, grp.ID, std2.ID); err != core.ErrNotLinked {
		t.Errorf("RemoveGroupMember() error = %v, wantErr %v", err, core.ErrNotLinked)
	}
	// the last member can never be removed
	if _, err = grpRepo.RemoveGroupMember(ctx, grp.ID, std1.ID); err != core.ErrLastMember {
		t.Errorf("RemoveGroupMember() error = %v, wantErr %v", err, core.ErrLastMember)
	}
}

func TestGroupProjectLinks(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	grpRepo := NewGroupRepository(db)
	prjRepo := NewProjectRepository(db)

	std1 := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)
	std2 := testutil.CreateUser(t, usrRepo, "Ngo", "Zola", "zola@test.cd", user.RoleStudent, "pwd", true)
	grpA := testutil.CreateGroup(t, grpRepo, "team-a", std1.ID)
	grpB := testutil.CreateGroup(t, grpRepo, "team-b", std2.ID)
	prj := testutil.CreateProject(t, prjRepo, "inventory-api")

	got, err := grpRepo.AddGroupProject(ctx, grpA.ID, prj.ID)
	if err != nil {
		t.Fatalf("AddGroupProject() failed, %v", err)
	}
	if !got.HasProject(prj.ID) {
		t.Error("expected project to be linked")
	}

	// same group again is a duplicate; another group is an ownership conflict
	if _, err = grpRepo.AddGroupProject(ctx, grpA.ID, prj.ID); err != core.ErrAlreadyPresent {
		t.Errorf("AddGroupProject() error = %v, wantErr %v", err, core.ErrAlreadyPresent)
	}
	if _, err = grpRepo.AddGroupProject(ctx, grpB.ID, prj.ID); err != core.ErrAlreadyOwned {
		t.Errorf("AddGroupProject() error = %v, wantErr %v", err, core.ErrAlreadyOwned)
	}

	// an owned project blocks deletion of both sides
	if err = grpRepo.DeleteGroupByID(ctx, grpA.ID); err != core.ErrInUse {
		t.Errorf("DeleteGroupByID() error = %v, wantErr %v", err, core.ErrInUse)
	}
	if err = prjRepo.DeleteProjectByID(ctx, prj.ID); err != core.ErrInUse {
		t.Errorf("DeleteProjectByID() error = %v, wantErr %v", err, core.ErrInUse)
	}

	if _, err = grpRepo.RemoveGroupProject(ctx, grpB.ID, prj.ID); err != core.ErrNotLinked {
		t.Errorf("RemoveGroupProject() error = %v, wantErr %v", err, core.ErrNotLinked)
	}
	if _, err = grpRepo.RemoveGroupProject(ctx, grpA.ID, prj.ID); err != nil {
		t.Fatalf("RemoveGroupProject() failed, %v", err)
	}

	refreshed, err := prjRepo.GetProjectByID(ctx, prj.ID)
	if err != nil {
		t.Fatalf("GetProjectByID() failed, %v", err)
	}
	if refreshed.Owned() {
		t.Error("expected project to be unowned after unlink")
	}
}
