package user

import (
	"testing"

	"github.com/acadio/practia/core"
)

type noopChecker struct{}

func (noopChecker) CheckUniqueness(string, string, ...User) error { return nil }

func TestNewUserValidate(t *testing.T) {
	valid := func() NewUser {
		return NewUser{
			FirstName:       "Awa",
			LastName:        "Eze",
			Email:           "awe@test.cd",
			Role:            RoleStudent,
			Password:        "G00d-pass",
			PasswordConfirm: "G00d-pass",
		}
	}

	tests := []struct {
		name      string
		mutate    func(*NewUser)
		wantField string
	}{
		{name: "valid", mutate: func(nu *NewUser) {}},
		{name: "bad role", mutate: func(nu *NewUser) { nu.Role = "dean" }, wantField: "role"},
		{name: "digits in name", mutate: func(nu *NewUser) { nu.FirstName = "Awa3" }, wantField: "first_name"},
		{name: "password mismatch", mutate: func(nu *NewUser) { nu.PasswordConfirm = "other" }, wantField: "password_confirm"},
		{name: "password too short", mutate: func(nu *NewUser) { nu.Password = "aB1!"; nu.PasswordConfirm = "aB1!" }, wantField: "password"},
		{name: "password all numeric", mutate: func(nu *NewUser) { nu.Password = "12345678"; nu.PasswordConfirm = "12345678" }, wantField: "password"},
		{name: "password no complexity", mutate: func(nu *NewUser) { nu.Password = "alllowercase"; nu.PasswordConfirm = "alllowercase" }, wantField: "password"},
		{name: "password similar to email", mutate: func(nu *NewUser) { nu.Password = "awe@test.cd"; nu.PasswordConfirm = "awe@test.cd" }, wantField: "password"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			nu := valid()
			tt.mutate(&nu)

			err := nu.Validate(noopChecker{})
			if tt.wantField == "" {
				if err != nil {
					t.Errorf("Validate() error = %v, want nil", err)
				}
				return
			}
			vErr, ok := err.(*core.ValidationError)
			if !ok {
				t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
			}
			found := false
			for _, fe := range vErr.Fields {
				if fe.Field == tt.wantField {
					found = true
				}
			}
			if !found {
				t.Errorf("Validate() fields = %v, want error on %q", vErr.Fields, tt.wantField)
			}
		})
	}
}

func TestNewUserValidateEmailTaken(t *testing.T) {
	nu := NewUser{
		FirstName:       "Awa",
		LastName:        "Eze",
		Email:           "TAKEN@test.cd",
		Role:            RoleStudent,
		Password:        "G00d-pass",
		PasswordConfirm: "G00d-pass",
	}

	err := nu.Validate(takenChecker{})
	vErr, ok := err.(*core.ValidationError)
	if !ok {
		t.Fatalf("Validate() error = %v, want *core.ValidationError", err)
	}
	if len(vErr.Fields) != 1 || vErr.Fields[0].Field != "email" {
		t.Errorf("Validate() fields = %v, want error on email", vErr.Fields)
	}
	// email is lower-cased before the uniqueness check
	if nu.Email != "taken@test.cd" {
		t.Errorf("Email = %s, want taken@test.cd", nu.Email)
	}
}

type takenChecker struct{}

func (takenChecker) CheckUniqueness(email, role string, _ ...User) error {
	return core.NewValidationError(core.ErrEmailTaken, core.FieldError{Field: "email", Error: core.ErrEmailTaken.Error()})
}

func TestUpdateUserValidateSkipsEmptyPassword(t *testing.T) {
	orig := User{ID: 1, Email: "awe@test.cd", Role: RoleStudent}

	uu := UpdateUser{FirstName: "Ngo"}
	if err := uu.Validate(orig, noopChecker{}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	// uniqueness only consulted when the email actually changes
	uu = UpdateUser{Email: "awe@test.cd"}
	if err := uu.Validate(orig, takenChecker{}); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}
	uu = UpdateUser{Email: "new@test.cd"}
	if err := uu.Validate(orig, takenChecker{}); err == nil {
		t.Error("Validate() error = nil, want email taken error")
	}
}
