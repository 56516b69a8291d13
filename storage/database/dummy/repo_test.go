package dummydb

import (
	"context"
	"testing"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
	testutil "github.com/acadio/practia/tests"
)

func TestRepoNameUniquePerProject(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	prjRepo := NewProjectRepository(db)
	repRepo := NewRepoRepository(db)

	prj1 := testutil.CreateProject(t, prjRepo, "frontend")
	prj2 := testutil.CreateProject(t, prjRepo, "backend")

	if _, err := repRepo.CreateRepo(ctx, repo.Repo{ProjectID: 999, Name: "app"}); err != core.ErrNotFound {
		t.Errorf("CreateRepo() error = %v, wantErr %v", err, core.ErrNotFound)
	}

	testutil.CreateRepo(t, repRepo, prj1.ID, "app", "acme")

	if _, err := repRepo.CreateRepo(ctx, repo.Repo{ProjectID: prj1.ID, Name: "app", Owner: "acme"}); err != core.ErrAlreadyPresent {
		t.Errorf("CreateRepo() error = %v, wantErr %v", err, core.ErrAlreadyPresent)
	}
	// same name under another project is fine
	if _, err := repRepo.CreateRepo(ctx, repo.Repo{ProjectID: prj2.ID, Name: "app", Owner: "acme"}); err != nil {
		t.Errorf("CreateRepo() error = %v, want nil", err)
	}

	// an attached repo blocks project deletion
	if err := prjRepo.DeleteProjectByID(ctx, prj1.ID); err != core.ErrInUse {
		t.Errorf("DeleteProjectByID() error = %v, wantErr %v", err, core.ErrInUse)
	}
}

func TestRepoComments(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	prjRepo := NewProjectRepository(db)
	repRepo := NewRepoRepository(db)

	std := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)
	tch := testutil.CreateUser(t, usrRepo, "Ada", "Obi", "obi@test.cd", user.RoleTeacher, "pwd", true)
	prj := testutil.CreateProject(t, prjRepo, "graded-work")
	rep := testutil.CreateRepo(t, repRepo, prj.ID, "app", "acme")

	if _, err := repRepo.CreateComment(ctx, repo.Comment{RepoID: 999, TeacherID: tch.ID, Body: "lgtm"}); err != core.ErrNotFound {
		t.Errorf("CreateComment() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	// only teachers annotate repositories
	if _, err := repRepo.CreateComment(ctx, repo.Comment{RepoID: rep.ID, TeacherID: std.ID, Body: "hi"}); err != core.ErrNotFound {
		t.Errorf("CreateComment() error = %v, wantErr %v", err, core.ErrNotFound)
	}

	cmt, err := repRepo.CreateComment(ctx, repo.Comment{RepoID: rep.ID, TeacherID: tch.ID, Body: "needs tests"})
	if err != nil {
		t.Fatalf("CreateComment() failed, %v", err)
	}

	comments, err := repRepo.QueryCommentsByRepo(ctx, rep.ID)
	if err != nil {
		t.Fatalf("QueryCommentsByRepo() failed, %v", err)
	}
	if len(comments) != 1 || comments[0].ID != cmt.ID {
		t.Errorf("QueryCommentsByRepo() = %v, want [%d]", comments, cmt.ID)
	}

	// deletion is scoped to the owning repo
	if err = repRepo.DeleteCommentByID(ctx, 999, cmt.ID); err != core.ErrNotFound {
		t.Errorf("DeleteCommentByID() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	dup, err := repRepo.CreateComment(ctx, repo.Comment{RepoID: rep.ID, TeacherID: tch.ID, Body: "follow up"})
	if err != nil {
		t.Fatalf("CreateComment() failed, %v", err)
	}
	if err = repRepo.DeleteCommentByID(ctx, rep.ID, dup.ID); err != nil {
		t.Fatalf("DeleteCommentByID() failed, %v", err)
	}

	// comments vanish with their repo
	if err = repRepo.DeleteRepoByID(ctx, rep.ID); err != nil {
		t.Fatalf("DeleteRepoByID() failed, %v", err)
	}
	if _, err = repRepo.QueryCommentsByRepo(ctx, rep.ID); err != core.ErrNotFound {
		t.Errorf("QueryCommentsByRepo() error = %v, wantErr %v", err, core.ErrNotFound)
	}
}

func TestUserEmailUniquePerRole(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)

	if err := usrRepo.CheckEmailUniqueness(ctx, "awe@test.cd", user.RoleStudent); err != core.ErrEmailTaken {
		t.Errorf("CheckEmailUniqueness() error = %v, wantErr %v", err, core.ErrEmailTaken)
	}
	// the same address may exist under another role
	if err := usrRepo.CheckEmailUniqueness(ctx, "awe@test.cd", user.RoleTeacher); err != nil {
		t.Errorf("CheckEmailUniqueness() error = %v, want nil", err)
	}

	testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleTeacher, "pwd", true)

	usr, err := usrRepo.GetUserByEmail(ctx, "awe@test.cd")
	if err != nil {
		t.Fatalf("GetUserByEmail() failed, %v", err)
	}
	// lookup resolves the student account first
	if usr.Role != user.RoleStudent {
		t.Errorf("GetUserByEmail() role = %s, want %s", usr.Role, user.RoleStudent)
	}
}
