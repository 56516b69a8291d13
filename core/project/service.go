package project

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type (
	// Repository holds the project ownership operations. Assign/unassign run
	// their existence check, ownership check and write in a single
	// transaction; error precedence is: core.ErrNotFound, then
	// core.ErrAlreadyPresent / core.ErrNotLinked, then core.ErrAlreadyOwned.
	Repository interface {
		CreateProject(ctx context.Context, prj Project) (Project, error)
		QueryAllProjects(ctx context.Context) ([]Project, error)
		GetProjectByID(ctx context.Context, id int) (Project, error)
		QueryProjectsByStudent(ctx context.Context, studentID int) ([]Project, error)
		QueryProjectsByGroup(ctx context.Context, groupID int) ([]Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)
		// DeleteProjectByID fails with core.ErrInUse while the project still
		// belongs to a student or a group.
		DeleteProjectByID(ctx context.Context, id int) error

		// AssignProjectToStudent makes the student the project's sole owner.
		// Fails with core.ErrAlreadyPresent when the student already owns it,
		// with core.ErrAlreadyOwned when it belongs to a different owner.
		AssignProjectToStudent(ctx context.Context, studentID, projectID int) (Project, error)
		UnassignProjectFromStudent(ctx context.Context, studentID, projectID int) (Project, error)

		CreateDeployInstance(ctx context.Context, di DeployInstance) (DeployInstance, error)
		QueryDeployInstancesByProject(ctx context.Context, projectID int) ([]DeployInstance, error)
		DeleteDeployInstanceByID(ctx context.Context, id int) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) Create(ctx context.Context, np NewProject) (Project, error) {
	now := time.Now().UTC()
	return svc.repo.CreateProject(ctx, Project{Name: np.Name, CreatedAt: now, UpdatedAt: now})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Project, error) {
	return svc.repo.QueryAllProjects(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Project, error) {
	return svc.repo.GetProjectByID(ctx, id)
}

func (svc *Service) QueryByStudent(ctx context.Context, studentID int) ([]Project, error) {
	return svc.repo.QueryProjectsByStudent(ctx, studentID)
}

func (svc *Service) QueryByGroup(ctx context.Context, groupID int) ([]Project, error) {
	return svc.repo.QueryProjectsByGroup(ctx, groupID)
}

func (svc *Service) Update(ctx context.Context, id int, up UpdateProject) (Project, error) {
	return svc.repo.UpdateProject(ctx, Project{ID: id, Name: up.Name, UpdatedAt: time.Now().UTC()})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteProjectByID(ctx, id)
}

func (svc *Service) AssignToStudent(ctx context.Context, studentID, projectID int) (Project, error) {
	return svc.repo.AssignProjectToStudent(ctx, studentID, projectID)
}

func (svc *Service) UnassignFromStudent(ctx context.Context, studentID, projectID int) (Project, error) {
	return svc.repo.UnassignProjectFromStudent(ctx, studentID, projectID)
}

func (svc *Service) CreateDeployInstance(ctx context.Context, projectID int, nd NewDeployInstance) (DeployInstance, error) {
	di := DeployInstance{
		ProjectID:   projectID,
		Name:        nd.Name,
		URL:         nd.URL,
		InstanceKey: uuid.New().String(),
		CreatedAt:   time.Now().UTC(),
	}
	return svc.repo.CreateDeployInstance(ctx, di)
}

func (svc *Service) QueryDeployInstances(ctx context.Context, projectID int) ([]DeployInstance, error) {
	return svc.repo.QueryDeployInstancesByProject(ctx, projectID)
}

func (svc *Service) DeleteDeployInstance(ctx context.Context, id int) error {
	return svc.repo.DeleteDeployInstanceByID(ctx, id)
}
