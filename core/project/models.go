package project

import (
	"time"

	"github.com/acadio/practia/core"
)

// Project is a unit of student or group work. It belongs to at most one
// owning collection at a time: a student's set or a group's set, never both.
// The owner fields are back-pointers maintained by the link operations.
type Project struct {
	ID             int       `json:"id"`
	Name           string    `json:"name"`
	OwnerStudentID *int      `json:"owner_student_id,omitempty"`
	OwnerGroupID   *int      `json:"owner_group_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"` // UTC
	UpdatedAt      time.Time `json:"updated_at"` // UTC
}

// Owned reports whether the project currently belongs to any collection.
func (p *Project) Owned() bool {
	return p.OwnerStudentID != nil || p.OwnerGroupID != nil
}

// OwnedByStudent reports whether the student is the project's sole owner.
func (p *Project) OwnedByStudent(studentID int) bool {
	return p.OwnerStudentID != nil && *p.OwnerStudentID == studentID
}

// DeployInstance is a deployed environment of a Project.
type DeployInstance struct {
	ID          int       `json:"id"`
	ProjectID   int       `json:"project_id"`
	Name        string    `json:"name"`
	URL         string    `json:"url"`
	InstanceKey string    `json:"instance_key"` // uuid assigned at creation
	CreatedAt   time.Time `json:"created_at"`   // UTC
}

// NewProject contains information needed to create a new Project.
type NewProject struct {
	Name string `json:"name" validate:"required,name_chars"`
}

func (np *NewProject) Validate() error {
	np.Name = core.CleanString(np.Name)
	return core.TranslateValidationErrors(core.Validate.Struct(np))
}

// UpdateProject defines what information may be provided to modify an
// existing Project. Ownership changes only through the link operations.
type UpdateProject struct {
	Name string `json:"name" validate:"required,name_chars"`
}

func (up *UpdateProject) Validate() error {
	up.Name = core.CleanString(up.Name)
	return core.TranslateValidationErrors(core.Validate.Struct(up))
}

// NewDeployInstance contains information needed to register a deployment.
type NewDeployInstance struct {
	Name string `json:"name" validate:"required,name_chars"`
	URL  string `json:"url" validate:"required,url"`
}

func (nd *NewDeployInstance) Validate() error {
	nd.Name = core.CleanString(nd.Name)
	nd.URL = core.CleanString(nd.URL)
	return core.TranslateValidationErrors(core.Validate.Struct(nd))
}
