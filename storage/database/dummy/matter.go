package dummydb

import (
	"context"
	"sort"

	"github.com/acadio/practia/core"
	"github.com/acadio/practia/core/matter"
)

type matterRepository struct {
	db *DB
}

var _ matter.Repository = (*matterRepository)(nil)

func NewMatterRepository(db *DB) *matterRepository {
	return &matterRepository{db: db}
}

func (repo *matterRepository) CheckNameUniqueness(_ context.Context, name string, excludedMatters ...matter.Matter) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()
	return repo.checkNameUniqueness(name, excludedMatters...)
}

// checkNameUniqueness must be called with the lock held.
func (repo *matterRepository) checkNameUniqueness(name string, excludedMatters ...matter.Matter) error {
	for _, mat := range repo.db.matters {
		if mat.Name != name {
			continue
		}
		excluded := false
		for _, ex := range excludedMatters {
			if ex.ID == mat.ID {
				excluded = true
				break
			}
		}
		if !excluded {
			return core.ErrAlreadyPresent
		}
	}
	return nil
}

func (repo *matterRepository) CreateMatter(_ context.Context, mat matter.Matter) (matter.Matter, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.checkNameUniqueness(mat.Name); err != nil {
		return matter.Matter{}, err
	}
	mat.ID = repo.db.nextPK()
	repo.db.matters[mat.ID] = &mat
	return mat, nil
}

func (repo *matterRepository) QueryAllMatters(_ context.Context) ([]matter.Matter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	matters := make([]matter.Matter, 0, len(repo.db.matters))
	for _, mat := range repo.db.matters {
		matters = append(matters, *mat)
	}
	sort.Slice(matters, func(i, j int) bool { return matters[i].ID < matters[j].ID })
	return matters, nil
}

func (repo *matterRepository) GetMatterByID(_ context.Context, id int) (matter.Matter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if mat, ok := repo.db.matters[id]; ok {
		return *mat, nil
	}
	return matter.Matter{}, core.ErrNotFound
}

func (repo *matterRepository) GetMatterByName(_ context.Context, name string) (matter.Matter, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, mat := range repo.db.matters {
		if mat.Name == name {
			return *mat, nil
		}
	}
	return matter.Matter{}, core.ErrNotFound
}

func (repo *matterRepository) UpdateMatter(_ context.Context, mat matter.Matter) (matter.Matter, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	orig, ok := repo.db.matters[mat.ID]
	if !ok {
		return matter.Matter{}, core.ErrNotFound
	}
	if mat.Name != "" && mat.Name != orig.Name {
		if err := repo.checkNameUniqueness(mat.Name, *orig); err != nil {
			return matter.Matter{}, err
		}
		orig.Name = mat.Name
	}
	return *orig, nil
}

func (repo *matterRepository) DeleteMatterByID(_ context.Context, id int) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.matters[id]; !ok {
		return core.ErrNotFound
	}
	for _, com := range repo.db.commissions {
		if com.MatterID == id {
			return core.ErrInUse
		}
	}
	delete(repo.db.matters, id)
	return nil
}
