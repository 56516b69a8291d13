package testutil

import (
	"context"
	"net/mail"
	"testing"
	"time"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/commission"
	"github.com/acadio/practia/core/group"
	"github.com/acadio/practia/core/matter"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/repo"
	"github.com/acadio/practia/core/user"
)

// NewConfig returns a self-contained configuration for tests. No environment
// is consulted.
func NewConfig() *core.Config {
	return &core.Config{
		Env:                       "TEST",
		TestMode:                  true,
		AppName:                   "Practia",
		Build:                     "test",
		SecretKey:                 "s3cr3t-t3st-k3y",
		FrontendBaseURL:           "http://localhost:3000",
		DefaultFromEmail:          mail.Address{Address: "noreply@test.practia.cd"},
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: core.ServerConfig{
			Host:                      "localhost",
			Port:                      "8080",
			ShutdownTimeout:           5 * time.Second,
			JWTExpirationDelta:        7 * 24 * time.Hour,
			JWTRefreshExpirationDelta: 4 * time.Hour,
		},
	}
}

func CreateUser(
	t *testing.T,
	repo user.Repository,
	firstName, lastName, email, role, pwd string,
	isActive bool,
	createdAt ...time.Time,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	usr := user.User{
		FirstName: firstName,
		LastName:  lastName,
		Email:     email,
		Role:      role,
		IsActive:  &isActive,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateMatter(t *testing.T, repo matter.Repository, name string) matter.Matter {
	t.Helper()

	mtr, err := repo.CreateMatter(context.Background(), matter.Matter{Name: name})
	if err != nil {
		t.Fatalf("CreateMatter() failed: %v", err)
	}
	return mtr
}

func CreateCommission(t *testing.T, repo commission.Repository, matterID, year, period int) commission.Commission {
	t.Helper()

	now := time.Now().UTC()
	com, err := repo.CreateCommission(context.Background(), commission.Commission{
		MatterID:  matterID,
		Year:      year,
		Period:    period,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateCommission() failed: %v", err)
	}
	return com
}

func CreateGroup(t *testing.T, repo group.Repository, name string, memberIDs ...int) group.Group {
	t.Helper()

	now := time.Now().UTC()
	grp, err := repo.CreateGroup(context.Background(), group.Group{
		Name:      name,
		MemberIDs: memberIDs,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateGroup() failed: %v", err)
	}
	return grp
}

func CreateProject(t *testing.T, repo project.Repository, name string) project.Project {
	t.Helper()

	now := time.Now().UTC()
	prj, err := repo.CreateProject(context.Background(), project.Project{
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return prj
}

func CreateRepo(t *testing.T, store repo.Repository, projectID int, name, owner string) repo.Repo {
	t.Helper()

	now := time.Now().UTC()
	rep, err := store.CreateRepo(context.Background(), repo.Repo{
		ProjectID: projectID,
		Name:      name,
		Owner:     owner,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateRepo() failed: %v", err)
	}
	return rep
}
