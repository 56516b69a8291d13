package repo

import (
	"time"

	"github.com/acadio/practia/core"
)

// Repo references an externally hosted code repository attached to a project.
// Commits, issues and pull requests are fetched from the code host on demand
// and never persisted.
type Repo struct {
	ID        int       `json:"id"`
	ProjectID int       `json:"project_id"`
	Name      string    `json:"name"`
	Owner     string    `json:"owner"` // code-host account handle
	Token     string    `json:"-"`     // code-host access token
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Comment is a teacher's note on a repository.
type Comment struct {
	ID        int       `json:"id"`
	RepoID    int       `json:"repo_id"`
	TeacherID int       `json:"teacher_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

// NewRepo contains information needed to attach a repository to a project.
type NewRepo struct {
	Name  string `json:"name" validate:"required,repo_name"`
	Owner string `json:"owner" validate:"required,repo_name"`
	Token string `json:"token"`
}

func (nr *NewRepo) Validate() error {
	nr.Name = core.CleanString(nr.Name)
	nr.Owner = core.CleanString(nr.Owner)
	return core.TranslateValidationErrors(core.Validate.Struct(nr))
}

// UpdateRepo defines what information may be provided to modify an existing Repo.
type UpdateRepo struct {
	Name  string `json:"name" validate:"omitempty,repo_name"`
	Owner string `json:"owner" validate:"omitempty,repo_name"`
	Token string `json:"token"`
}

func (ur *UpdateRepo) Validate() error {
	ur.Name = core.CleanString(ur.Name)
	ur.Owner = core.CleanString(ur.Owner)
	return core.TranslateValidationErrors(core.Validate.Struct(ur))
}

// NewComment contains information needed to comment on a repository.
type NewComment struct {
	Body string `json:"body" validate:"required"`
}

func (nc *NewComment) Validate() error {
	nc.Body = core.CleanString(nc.Body)
	return core.TranslateValidationErrors(core.Validate.Struct(nc))
}

// Code-host derived read-only records, passed through largely unmodified.

type Commit struct {
	SHA     string    `json:"sha"`
	Message string    `json:"message"`
	Author  string    `json:"author"`
	Date    time.Time `json:"date"`
	URL     string    `json:"url"`
}

type Issue struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}

type PullRequest struct {
	Number    int       `json:"number"`
	Title     string    `json:"title"`
	State     string    `json:"state"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	URL       string    `json:"url"`
}
