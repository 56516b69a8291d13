package group

import (
	"time"

	"github.com/acadio/practia/core"
)

// Group is a team of students sharing ownership of projects.
// A group is never without members: creation requires at least one and
// removal of the last member is rejected.
type Group struct {
	ID         int       `json:"id"`
	Name       string    `json:"name"`
	MemberIDs  []int     `json:"member_ids"`
	ProjectIDs []int     `json:"project_ids"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

// HasMember reports whether the student is currently a member.
func (g *Group) HasMember(studentID int) bool {
	for _, id := range g.MemberIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// HasProject reports whether the project is currently in the group's collection.
func (g *Group) HasProject(projectID int) bool {
	for _, id := range g.ProjectIDs {
		if id == projectID {
			return true
		}
	}
	return false
}

// NewGroup contains information needed to create a new Group.
type NewGroup struct {
	Name      string `json:"name" validate:"required,name_chars"`
	MemberIDs []int  `json:"member_ids" validate:"required,min=1,unique"`
}

func (ng *NewGroup) Validate() error {
	ng.Name = core.CleanString(ng.Name)
	return core.TranslateValidationErrors(core.Validate.Struct(ng))
}

// HasMember reports whether the student is listed among the initial members.
func (ng *NewGroup) HasMember(studentID int) bool {
	for _, id := range ng.MemberIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// UpdateGroup defines what information may be provided to modify an existing Group.
// Membership and projects are changed only through the add/remove operations.
type UpdateGroup struct {
	Name string `json:"name" validate:"required,name_chars"`
}

func (ug *UpdateGroup) Validate() error {
	ug.Name = core.CleanString(ug.Name)
	return core.TranslateValidationErrors(core.Validate.Struct(ug))
}
