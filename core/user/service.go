package user

import (
	"context"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/acadio/practia/core"
)

type (
	Repository interface {
		// CheckEmailUniqueness fails with core.ErrEmailTaken when the email is
		// already registered for the given role. Uniqueness is scoped per role:
		// the same address may exist as e.g. both a student and a teacher.
		CheckEmailUniqueness(ctx context.Context, email, role string, excludedUsers ...User) error
		CreateUser(ctx context.Context, usr User) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		GetUserByID(ctx context.Context, id int) (User, error)
		// GetUserByEmail tries the student, teacher and admin collections in
		// that order and returns the first match.
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByEmailAndRole(ctx context.Context, email, role string) (User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of the names or the email.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User, isActive *bool) (User, error)
		DeleteUsersByID(ctx context.Context, ids ...int) error
	}

	// Checker is the uniqueness contract consumed by NewUser/UpdateUser validation.
	Checker interface {
		CheckUniqueness(email, role string, excludedUsers ...User) error
	}

	Service struct {
		conf *core.Config
		repo Repository
		mail core.EmailService
	}
)

func NewService(conf *core.Config, repo Repository, mailSvc core.EmailService) *Service {
	return &Service{conf: conf, repo: repo, mail: mailSvc}
}

func (svc *Service) CheckUniqueness(email, role string, exclUsers ...User) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, role, exclUsers...); err != nil {
		if errors.Cause(err) == core.ErrEmailTaken {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, nu NewUser) (User, error) {
	now := time.Now().UTC()
	active := true
	usr := User{
		FirstName:   nu.FirstName,
		LastName:    nu.LastName,
		Email:       nu.Email,
		Role:        nu.Role,
		IsActive:    &active,
		GithubUser:  nu.GithubUser,
		GithubToken: nu.GithubToken,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "setting password")
	}
	usr, err := svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendWelcomeEmail(usr)
	return usr, nil
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	filter.Clean()
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) Update(ctx context.Context, id int, uu UpdateUser) (User, error) {
	usr := User{
		ID:          id,
		FirstName:   uu.FirstName,
		LastName:    uu.LastName,
		Email:       uu.Email,
		GithubUser:  uu.GithubUser,
		GithubToken: uu.GithubToken,
		UpdatedAt:   time.Now().UTC(),
	}
	if uu.Password != "" {
		if err := usr.SetPassword(uu.Password); err != nil {
			return User{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateUser(ctx, usr, uu.IsActive)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	usr.LastLogin = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, User{ID: usr.ID, LastLogin: usr.LastLogin}, nil)
}

func (svc *Service) Delete(ctx context.Context, ids ...int) error {
	return svc.repo.DeleteUsersByID(ctx, ids...)
}

// RequestPasswordReset emails a one-time reset token to the account owner.
// An unknown email is reported to the caller as core.ErrNotFound; the HTTP
// layer decides whether to surface or swallow that.
func (svc *Service) RequestPasswordReset(ctx context.Context, email string) error {
	usr, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	token, err := MakeToken(svc.conf, usr)
	if err != nil {
		return errors.Wrap(err, "making reset token")
	}
	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject:      "Password reset",
		TemplateName: "password-reset",
		TemplateData: struct {
			User  User
			UID   string
			Token string
			core.ContextData
		}{
			User:        usr,
			UID:         EncodeUID(usr),
			Token:       token,
			ContextData: svc.contextData(),
		},
	})
	return nil
}

// ResetPassword sets a new password after verifying the emailed token.
func (svc *Service) ResetPassword(ctx context.Context, rp ResetUserPassword) error {
	uid, err := DecodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	usr, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == core.ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return err
	}
	if err := verifyToken(svc.conf, usr, rp.Token); err != nil {
		return core.NewValidationError(err)
	}
	if err := usr.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	usr.UpdatedAt = time.Now().UTC()
	_, err = svc.repo.UpdateUser(ctx, usr, nil)
	return err
}

func (svc *Service) sendWelcomeEmail(usr User) {
	svc.mail.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.Name(), Address: usr.Email}},
		Subject:      "Welcome to " + svc.conf.AppName,
		TemplateName: "welcome",
		TemplateData: struct {
			User User
			core.ContextData
		}{
			User:        usr,
			ContextData: svc.contextData(),
		},
	})
}

func (svc *Service) contextData() core.ContextData {
	return core.ContextData{
		AppName:         svc.conf.AppName,
		FrontendBaseURL: svc.conf.FrontendBaseURL,
	}
}
