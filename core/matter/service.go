package matter

import (
	"context"
	"errors"

	pkgerrors "github.com/pkg/errors"

	"github.com/acadio/practia/core"
)

var errNameExists = errors.New("a matter with this name already exists")

type (
	Repository interface {
		// CheckNameUniqueness fails with core.ErrAlreadyPresent when the name
		// is already taken by a matter other than the excluded ones.
		CheckNameUniqueness(ctx context.Context, name string, excludedMatters ...Matter) error
		CreateMatter(ctx context.Context, mat Matter) (Matter, error)
		QueryAllMatters(ctx context.Context) ([]Matter, error)
		GetMatterByID(ctx context.Context, id int) (Matter, error)
		GetMatterByName(ctx context.Context, name string) (Matter, error)
		UpdateMatter(ctx context.Context, mat Matter) (Matter, error)
		// DeleteMatterByID fails with core.ErrInUse while any commission still
		// references the matter. Deletion never cascades.
		DeleteMatterByID(ctx context.Context, id int) error
	}

	Checker interface {
		CheckUniqueness(name string, excludedMatters ...Matter) error
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckUniqueness(name string, exclMatters ...Matter) error {
	if err := svc.repo.CheckNameUniqueness(context.Background(), name, exclMatters...); err != nil {
		if pkgerrors.Cause(err) == core.ErrAlreadyPresent {
			return core.NewValidationError(errNameExists, core.FieldError{Field: "name", Error: errNameExists.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nm NewMatter) (Matter, error) {
	return svc.repo.CreateMatter(ctx, Matter{Name: nm.Name})
}

func (svc *Service) QueryAll(ctx context.Context) ([]Matter, error) {
	return svc.repo.QueryAllMatters(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Matter, error) {
	return svc.repo.GetMatterByID(ctx, id)
}

func (svc *Service) GetByName(ctx context.Context, name string) (Matter, error) {
	return svc.repo.GetMatterByName(ctx, core.CleanString(name))
}

func (svc *Service) Update(ctx context.Context, id int, um UpdateMatter) (Matter, error) {
	return svc.repo.UpdateMatter(ctx, Matter{ID: id, Name: um.Name})
}

func (svc *Service) Delete(ctx context.Context, id int) error {
	return svc.repo.DeleteMatterByID(ctx, id)
}
