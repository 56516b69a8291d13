package dummydb

import (
	"context"
	"sync"
	"testing"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/user"
	testutil "github.com/acadio/practia/tests"
)

func TestCommissionStudentLinks(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	matRepo := NewMatterRepository(db)
	comRepo := NewCommissionRepository(db)

	mat := testutil.CreateMatter(t, matRepo, "Databases")
	com := testutil.CreateCommission(t, comRepo, mat.ID, 2026, 1)
	std := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)
	tch := testutil.CreateUser(t, usrRepo, "Ada", "Obi", "obi@test.cd", user.RoleTeacher, "pwd", true)

	// missing commission wins over everything
	if _, err := comRepo.AddCommissionStudent(ctx, 999, std.ID); err != core.ErrNotFound {
		t.Errorf("AddCommissionStudent() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	// a teacher is not a student
	if _, err := comRepo.AddCommissionStudent(ctx, com.ID, tch.ID); err != core.ErrNotFound {
		t.Errorf("AddCommissionStudent() error = %v, wantErr %v", err, core.ErrNotFound)
	}

	got, err := comRepo.AddCommissionStudent(ctx, com.ID, std.ID)
	if err != nil {
		t.Fatalf("AddCommissionStudent() failed, %v", err)
	}
	if !got.HasStudent(std.ID) {
		t.Error("expected student to be enrolled")
	}

	// duplicate add is an error, not a no-op
	if _, err = comRepo.AddCommissionStudent(ctx, com.ID, std.ID); err != core.ErrAlreadyPresent {
		t.Errorf("AddCommissionStudent() error = %v, wantErr %v", err, core.ErrAlreadyPresent)
	}

	got, err = comRepo.RemoveCommissionStudent(ctx, com.ID, std.ID)
	if err != nil {
		t.Fatalf("RemoveCommissionStudent() failed, %v", err)
	}
	if got.HasStudent(std.ID) {
		t.Error("expected student to be removed")
	}
	if _, err = comRepo.RemoveCommissionStudent(ctx, com.ID, std.ID); err != core.ErrNotLinked {
		t.Errorf("RemoveCommissionStudent() error = %v, wantErr %v", err, core.ErrNotLinked)
	}
}

func TestCommissionTeacherLinks(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	matRepo := NewMatterRepository(db)
	comRepo := NewCommissionRepository(db)

	mat := testutil.CreateMatter(t, matRepo, "Networks")
	com := testutil.CreateCommission(t, comRepo, mat.ID, 2026, 2)
	tch := testutil.CreateUser(t, usrRepo, "Ada", "Obi", "obi@test.cd", user.RoleTeacher, "pwd", true)

	if _, err := comRepo.AddCommissionTeacher(ctx, com.ID, 999); err != core.ErrNotFound {
		t.Errorf("AddCommissionTeacher() error = %v, wantErr %v", err, core.ErrNotFound)
	}
	if _, err := comRepo.AddCommissionTeacher(ctx, com.ID, tch.ID); err != nil {
		t.Fatalf("AddCommissionTeacher() failed, %v", err)
	}
	if _, err := comRepo.AddCommissionTeacher(ctx, com.ID, tch.ID); err != core.ErrAlreadyPresent {
		t.Errorf("AddCommissionTeacher() error = %v, wantErr %v", err, core.ErrAlreadyPresent)
	}

	linked, err := comRepo.IsCommissionTeacher(ctx, com.ID, tch.ID)
	if err != nil || !linked {
		t.Errorf("IsCommissionTeacher() = (%v, %v), want (true, nil)", linked, err)
	}

	if _, err = comRepo.RemoveCommissionTeacher(ctx, com.ID, tch.ID); err != nil {
		t.Fatalf("RemoveCommissionTeacher() failed, %v", err)
	}
	if _, err = comRepo.RemoveCommissionTeacher(ctx, com.ID, tch.ID); err != core.ErrNotLinked {
		t.Errorf("RemoveCommissionTeacher() error = %v, wantErr %v", err, core.ErrNotLinked)
	}
}

func TestCommissionGroupLinks(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	matRepo := NewMatterRepository(db)
	comRepo := NewCommissionRepository(db)
	grpRepo := NewGroupRepository(db)

	mat := testutil.CreateMatter(t, matRepo, "Compilers")
	com := testutil.CreateCommission(t, comRepo, mat.ID, 2026, 3)
	std1 := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)
	std2 := testutil.CreateUser(t, usrRepo, "Ngo", "Zola", "zola@test.cd", user.RoleStudent, "pwd", true)
	grp := testutil.CreateGroup(t, grpRepo, "team-rocket", std1.ID, std2.ID)

	if _, err := comRepo.AddCommissionGroup(ctx, com.ID, 999); err != core.ErrNotFound {
		t.Errorf("AddCommissionGroup() error = %v, wantErr %v", err, core.ErrNotFound)
	}

	// members must already be enrolled students of the commission
	if _, err := comRepo.AddCommissionGroup(ctx, com.ID, grp.ID); err != core.ErrMembersNotEnrolled {
		t.Errorf("AddCommissionGroup() error = %v, wantErr %v", err, core.ErrMembersNotEnrolled)
	}
	if _, err := comRepo.AddCommissionStudent(ctx, com.ID, std1.ID); err != nil {
		t.Fatalf("AddCommissionStudent() failed, %v", err)
	}
	// one enrolled member is not enough
	if _, err := comRepo.AddCommissionGroup(ctx, com.ID, grp.ID); err != core.ErrMembersNotEnrolled {
		t.Errorf("AddCommissionGroup() error = %v, wantErr %v", err, core.ErrMembersNotEnrolled)
	}
	if _, err := comRepo.AddCommissionStudent(ctx, com.ID, std2.ID); err != nil {
		t.Fatalf("AddCommissionStudent() failed, %v", err)
	}

	got, err := comRepo.AddCommissionGroup(ctx, com.ID, grp.ID)
	if err != nil {
		t.Fatalf("AddCommissionGroup() failed, %v", err)
	}
	if !got.HasGroup(grp.ID) {
		t.Error("expected group to be linked")
	}
	if _, err = comRepo.AddCommissionGroup(ctx, com.ID, grp.ID); err != core.ErrAlreadyPresent {
		t.Errorf("AddCommissionGroup() error = %v, wantErr %v", err, core.ErrAlreadyPresent)
	}

	owning, err := comRepo.GetCommissionOwningGroup(ctx, grp.ID)
	if err != nil {
		t.Fatalf("GetCommissionOwningGroup() failed, %v", err)
	}
	if owning.ID != com.ID {
		t.Errorf("GetCommissionOwningGroup() = %d, want %d", owning.ID, com.ID)
	}

	// a linked group blocks group deletion
	if err = grpRepo.DeleteGroupByID(ctx, grp.ID); err != core.ErrInUse {
		t.Errorf("DeleteGroupByID() error = %v, wantErr %v", err, core.ErrInUse)
	}

	if _, err = comRepo.RemoveCommissionGroup(ctx, com.ID, grp.ID); err != nil {
		t.Fatalf("RemoveCommissionGroup() failed, %v", err)
	}
	if _, err = comRepo.RemoveCommissionGroup(ctx, com.ID, grp.ID); err != core.ErrNotLinked {
		t.Errorf("RemoveCommissionGroup() error = %v, wantErr %v", err, core.ErrNotLinked)
	}
	if _, err = comRepo.GetCommissionOwningGroup(ctx, grp.ID); err != core.ErrNotFound {
		t.Errorf("GetCommissionOwningGroup() error = %v, wantErr %v", err, core.ErrNotFound)
	}
}

func TestUpdateCommissionKeepsOmittedFields(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	matRepo := NewMatterRepository(db)
	comRepo := NewCommissionRepository(db)

	mat := testutil.CreateMatter(t, matRepo, "Operating Systems")
	com := testutil.CreateCommission(t, comRepo, mat.ID, 2026, 2)

	// zero year means "unchanged"
	got, err := comRepo.UpdateCommission(ctx, commission.Commission{ID: com.ID, Period: 3})
	if err != nil {
		t.Fatalf("UpdateCommission() failed, %v", err)
	}
	if got.Year != 2026 || got.Period != 3 {
		t.Errorf("UpdateCommission() = (%d, %d), want (2026, 3)", got.Year, got.Period)
	}

	got, err = comRepo.UpdateCommission(ctx, commission.Commission{ID: com.ID, Year: 2027})
	if err != nil {
		t.Fatalf("UpdateCommission() failed, %v", err)
	}
	if got.Year != 2027 || got.Period != 3 {
		t.Errorf("UpdateCommission() = (%d, %d), want (2027, 3)", got.Year, got.Period)
	}

	if _, err = comRepo.UpdateCommission(ctx, commission.Commission{ID: 999, Year: 2027}); err != core.ErrNotFound {
		t.Errorf("UpdateCommission() error = %v, wantErr %v", err, core.ErrNotFound)
	}
}

func TestCommissionConcurrentDuplicateAdd(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	usrRepo := NewUserRepository(db)
	matRepo := NewMatterRepository(db)
	comRepo := NewCommissionRepository(db)

	mat := testutil.CreateMatter(t, matRepo, "Algorithms")
	com := testutil.CreateCommission(t, comRepo, mat.ID, 2026, 1)
	std := testutil.CreateUser(t, usrRepo, "Awa", "Eze", "awe@test.cd", user.RoleStudent, "pwd", true)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = comRepo.AddCommissionStudent(ctx, com.ID, std.ID)
		}(i)
	}
	wg.Wait()

	var okCount, dupCount int
	for _, err := range errs {
		switch err {
		case nil:
			okCount++
		case core.ErrAlreadyPresent:
			dupCount++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if okCount != 1 || dupCount != 1 {
		t.Errorf("concurrent adds: ok=%d dup=%d, want exactly one of each", okCount, dupCount)
	}
}

func TestDeleteMatterInUse(t *testing.T) {
	db, _ := Open()
	ctx := context.Background()

	matRepo := NewMatterRepository(db)
	comRepo := NewCommissionRepository(db)

	mat := testutil.CreateMatter(t, matRepo, "Security")
	com := testutil.CreateCommission(t, comRepo, mat.ID, 2026, 2)

	if err := matRepo.DeleteMatterByID(ctx, mat.ID); err != core.ErrInUse {
		t.Errorf("DeleteMatterByID() error = %v, wantErr %v", err, core.ErrInUse)
	}
	if err := comRepo.DeleteCommissionByID(ctx, com.ID); err != nil {
		t.Fatalf("DeleteCommissionByID() failed, %v", err)
	}
	if err := matRepo.DeleteMatterByID(ctx, mat.ID); err != nil {
		t.Errorf("DeleteMatterByID() error = %v, want nil", err)
	}
}
