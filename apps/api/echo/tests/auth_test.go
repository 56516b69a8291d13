package tests

import (
	"encoding/json"
	"net/http"
	"net/mail"
	"strings"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/acadio/practia/apps/api/echo"
	"github.com/acadio/practia/core/user"
	emailsvc "github.com/acadio/practia/services/email"
	testutil "github.com/acadio/practia/tests"
)

func Test_userApi_login(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "Kabeya", "hero@test.cd", user.RoleStudent, "LeTsG0oo!", true)
	naughty := testutil.CreateUser(t, usrRepo, "Naughty", "Dog", "ndog@test.cd", user.RoleStudent, "LeTsG0oo!", false)
	_ = naughty

	tests := []httpTest{
		{
			name: "required fields", body: marshallObj(t, echoapi.LoginRequest{}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "this field is required", "password": "this field is required"}),
		},
		{
			name: "invalid email", body: marshallObj(t, echoapi.LoginRequest{Email: "lol", Password: "LeTsG0oo!"}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", body: marshallObj(t, echoapi.LoginRequest{Email: "unknown@test.cd", Password: "LeTsG0oo!"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "invalid credentials"}),
		},
		{
			name: "wrong password", body: marshallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "nope"}),
			wantCode: http.StatusBadRequest, wantData: marshallObj(t, httpErr{Error: "password incorrect"}),
		},
		{
			name: "inactive account", body: marshallObj(t, echoapi.LoginRequest{Email: "ndog@test.cd", Password: "LeTsG0oo!"}),
			wantCode: http.StatusForbidden, wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "email is case-insensitive", body: marshallObj(t, echoapi.LoginRequest{Email: "HERO@test.cd", Password: "LeTsG0oo!"}),
			wantCode: http.StatusOK,
		},
		{
			name: "login successful", body: marshallObj(t, echoapi.LoginRequest{Email: student.Email, Password: "LeTsG0oo!"}),
			wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/login", tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess the token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v (body %s)", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_tokenRefresh(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "Kabeya", "hero@test.cd", user.RoleStudent, "LeTsG0oo!", true)
	naughty := testutil.CreateUser(t, usrRepo, "Naughty", "Dog", "ndog@test.cd", user.RoleStudent, "LeTsG0oo!", false)

	// a token issued before the refresh window opened cannot be refreshed
	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    conf.AppName,
			ExpiresAt: now.Add(conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * conf.Server.JWTRefreshExpirationDelta).Unix(),
		UserID:       student.ID,
		Email:        student.Email,
		Role:         student.Role,
		IsStudent:    true,
	}
	unrefreshableToken, err := echoapi.GenerateToken(conf, unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marshallObj(t, errMissingToken)},
		{
			name: "Inactive user not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden,
			wantData: marshallObj(t, httpErr{Error: "refresh has expired"}),
		},
		{name: "Token refreshed", token: getToken(t, student), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodPost, "/v1/users/token-refresh", tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v (body %s)", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_resetPassword(t *testing.T) {
	db.Reset()

	student := testutil.CreateUser(t, usrRepo, "Hero", "Kabeya", "hero@test.cd", user.RoleStudent, "LeTsG0oo!", true)
	successData := marshallObj(t, echoapi.SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	extras := make(map[string]extraTest)
	extras["unknown email"] = extraTest{}
	extras["known email"] = extraTest{emailSent: true, to: mail.Address{Name: student.Name(), Address: student.Email}}

	tests := []httpTest{
		{
			name: "required fields", body: marshallObj(t, echoapi.PasswordResetRequest{}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "this field is required"}),
		},
		{
			name: "invalid email", body: marshallObj(t, echoapi.PasswordResetRequest{Email: "lol"}), wantCode: http.StatusBadRequest,
			wantData: marshallObj(t, map[string]string{"email": "email must be a valid email address"}),
		},
		{
			name: "unknown email", body: marshallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.cd"}),
			wantCode: http.StatusOK, wantData: successData,
		},
		{
			name: "known email", body: marshallObj(t, echoapi.PasswordResetRequest{Email: student.Email}),
			wantCode: http.StatusOK, wantData: successData,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(http.MethodPost, "/v1/users/password-reset", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			extra, ok := extras[tt.name]
			if !ok {
				return
			}
			if !extra.emailSent {
				if len(emailsvc.SentMessages) != 0 {
					t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
				}
				return
			}
			if len(emailsvc.SentMessages) != 1 {
				t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
			}
			msg := emailsvc.SentMessages[0]
			if msg.To[0] != extra.to {
				t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
			}
			if !strings.Contains(msg.Subject, "Password reset") {
				t.Errorf("failed! Subject = %q", msg.Subject)
			}
		})
	}
}
