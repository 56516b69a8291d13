package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/project"
	"github.com/acadio/practia/core/user"
)

type projectRepository struct {
	db *DB
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db *DB) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CreateProject(_ context.Context, prj project.Project) (project.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	prj.ID = repo.db.nextPK()
	repo.db.projects[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) QueryAllProjects(_ context.Context) ([]project.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	projects := make([]project.Project, 0, len(repo.db.projects))
	for _, prj := range repo.db.projects {
		projects = append(projects, *prj)
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (repo *projectRepository) GetProjectByID(_ context.Context, id int) (project.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if prj, ok := repo.db.projects[id]; ok {
		return *prj, nil
	}
	return project.Project{}, core.ErrNotFound
}

func (repo *projectRepository) QueryProjectsByStudent(_ context.Context, studentID int) ([]project.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	projects := make([]project.Project, 0)
	for _, prj := range repo.db.projects {
		if prj.OwnedByStudent(studentID) {
			projects = append(projects, *prj)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (repo *projectRepository) QueryProjectsByGroup(_ context.Context, groupID int) ([]project.Project, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	projects := make([]project.Project, 0)
	for _, prj := range repo.db.projects {
		if prj.OwnerGroupID != nil && *prj.OwnerGroupID == groupID {
			projects = append(projects, *prj)
		}
	}
	sort.Slice(projects, func(i, j int) bool { return projects[i].ID < projects[j].ID })
	return projects, nil
}

func (repo *projectRepository) UpdateProject(_ context.Context, prj project.Project) (project.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.projects[prj.ID]
	if !ok {
		return project.Project{}, core.ErrNotFound
	}
	if prj.Name != "" {
		orig.Name = prj.Name
	}
	if !prj.UpdatedAt.IsZero() {
		orig.UpdatedAt = prj.UpdatedAt
	}
	return *orig, nil
}

func (repo *projectRepository) DeleteProjectByID(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	prj, ok := repo.db.projects[id]
	if !ok {
		return core.ErrNotFound
	}
	if prj.Owned() {
		return core.ErrInUse
	}
	for _, r := range repo.db.repos {
		if r.ProjectID == id {
			return core.ErrInUse
		}
	}
	for did, di := range repo.db.deploys {
		if di.ProjectID == id {
			delete(repo.db.deploys, did)
		}
	}
	delete(repo.db.projects, id)
	return nil
}

// Ownership operations. The write lock spans the existence check, the
// ownership check and the write.

func (repo *projectRepository) AssignProjectToStudent(_ context.Context, studentID, projectID int) (project.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr, ok := repo.db.users[studentID]
	if !ok || usr.Role != user.RoleStudent {
		return project.Project{}, core.ErrNotFound
	}
	prj, ok := repo.db.projects[projectID]
	if !ok {
		return project.Project{}, core.ErrNotFound
	}
	if prj.OwnedByStudent(studentID) {
		return project.Project{}, core.ErrAlreadyPresent
	}
	if prj.Owned() {
		return project.Project{}, core.ErrAlreadyOwned
	}
	prj.OwnerStudentID = &usr.ID
	prj.UpdatedAt = time.Now().UTC()
	return *prj, nil
}

func (repo *projectRepository) UnassignProjectFromStudent(_ context.Context, studentID, projectID int) (project.Project, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr, ok := repo.db.users[studentID]
	if !ok || usr.Role != user.RoleStudent {
		return project.Project{}, core.ErrNotFound
	}
	prj, ok := repo.db.projects[projectID]
	if !ok {
		return project.Project{}, core.ErrNotFound
	}
	if !prj.OwnedByStudent(studentID) {
		return project.Project{}, core.ErrNotLinked
	}
	prj.OwnerStudentID = nil
	prj.UpdatedAt = time.Now().UTC()
	return *prj, nil
}

// Deploy instances

func (repo *projectRepository) CreateDeployInstance(_ context.Context, di project.DeployInstance) (project.DeployInstance, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.projects[di.ProjectID]; !ok {
		return project.DeployInstance{}, core.ErrNotFound
	}
	di.ID = repo.db.nextPK()
	repo.db.deploys[di.ID] = &di
	return di, nil
}

func (repo *projectRepository) QueryDeployInstancesByProject(_ context.Context, projectID int) ([]project.DeployInstance, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if _, ok := repo.db.projects[projectID]; !ok {
		return nil, core.ErrNotFound
	}
	instances := make([]project.DeployInstance, 0)
	for _, di := range repo.db.deploys {
		if di.ProjectID == projectID {
			instances = append(instances, *di)
		}
	}
	sort.Slice(instances, func(i, j int) bool { return instances[i].ID < instances[j].ID })
	return instances, nil
}

func (repo *projectRepository) DeleteDeployInstanceByID(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.deploys[id]; !ok {
		return core.ErrNotFound
	}
	delete(repo.db.deploys, id)
	return nil
}
