package matter

import (
	"github.com/acadio/practia/core"
)

// Matter is a course subject in the catalog.
type Matter struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NewMatter contains information needed to create a new Matter.
type NewMatter struct {
	Name string `json:"name" validate:"required,alpha_accents"`
}

func (nm *NewMatter) Validate(svc Checker) error {
	nm.Name = core.CleanString(nm.Name)

	if err := core.Validate.Struct(nm); err != nil {
		return core.TranslateValidationErrors(err)
	}
	return svc.CheckUniqueness(nm.Name)
}

// UpdateMatter defines what information may be provided to modify an existing Matter.
type UpdateMatter struct {
	Name string `json:"name" validate:"required,alpha_accents"`
}

func (um *UpdateMatter) Validate(orig Matter, svc Checker) error {
	um.Name = core.CleanString(um.Name)

	if err := core.Validate.Struct(um); err != nil {
		return core.TranslateValidationErrors(err)
	}
	if um.Name != orig.Name {
		return svc.CheckUniqueness(um.Name, orig)
	}
	return nil
}
