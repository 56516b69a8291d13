package commission

import (
	"errors"
	"time"

	"github.com/acadio/practia/core"
)

const minYear = 2000

var errYearTooSmall = errors.New("Year should be greater than or equal to 2000")

// Commission is a term offering of a Matter: a class instance for a given
// year and four-month period, with enrolled students, teachers and groups.
type Commission struct {
	ID         int       `json:"id"`
	Year       int       `json:"year"`
	Period     int       `json:"period"` // four-month term marker: 1, 2 or 3
	MatterID   int       `json:"matter_id"`
	StudentIDs []int     `json:"student_ids"`
	TeacherIDs []int     `json:"teacher_ids"`
	GroupIDs   []int     `json:"group_ids"`
	CreatedAt  time.Time `json:"created_at"` // UTC
	UpdatedAt  time.Time `json:"updated_at"` // UTC
}

func (c *Commission) HasStudent(studentID int) bool { return contains(c.StudentIDs, studentID) }
func (c *Commission) HasTeacher(teacherID int) bool { return contains(c.TeacherIDs, teacherID) }
func (c *Commission) HasGroup(groupID int) bool     { return contains(c.GroupIDs, groupID) }

func contains(ids []int, id int) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// NewCommission contains information needed to create a new Commission.
type NewCommission struct {
	Year     int `json:"year" validate:"required"`
	Period   int `json:"period" validate:"required,oneof=1 2 3"`
	MatterID int `json:"matter_id" validate:"required"`
}

func (nc *NewCommission) Validate() error {
	if err := core.Validate.Struct(nc); err != nil {
		return core.TranslateValidationErrors(err)
	}
	if nc.Year < minYear {
		return core.NewValidationError(errYearTooSmall, core.FieldError{Field: "year", Error: errYearTooSmall.Error()})
	}
	return nil
}

// UpdateCommission defines what information may be provided to modify an
// existing Commission. Membership sets are changed only through the
// add/remove operations.
type UpdateCommission struct {
	Year   int `json:"year" validate:"omitempty"`
	Period int `json:"period" validate:"omitempty,oneof=1 2 3"`
}

func (uc *UpdateCommission) Validate() error {
	if err := core.Validate.Struct(uc); err != nil {
		return core.TranslateValidationErrors(err)
	}
	if uc.Year != 0 && uc.Year < minYear {
		return core.NewValidationError(errYearTooSmall, core.FieldError{Field: "year", Error: errYearTooSmall.Error()})
	}
	return nil
}
