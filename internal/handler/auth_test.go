package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/handler"
	"github.com/pkordes/travel-guide/internal/middleware"
	"github.com/pkordes/travel-guide/internal/ui"
)

func TestPostLogin_200ReturnsState(t *testing.T) {
	f := newFixture()
	f.auth.signIn = func(_ context.Context, email, password string) error {
		assert.Equal(t, "ana@x.io", email)
		assert.Equal(t, "secret1", password)
		f.state.Update(func(s *ui.State) {
			s.SignedIn = true
			s.UserName = "Ana"
		})
		return nil
	}

	rec := f.do(t, http.MethodPost, "/auth/login", handler.LoginRequest{Email: "ana@x.io", Password: "secret1"})

	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeState(t, rec)
	assert.True(t, st.SignedIn)
	assert.Equal(t, "Ana", st.UserName)
}

func TestPostLogin_ValidationUsesAlertText(t *testing.T) {
	f := newFixture()
	f.auth.signIn = func(context.Context, string, string) error {
		f.state.Update(func(s *ui.State) {
			s.Alerts = append(s.Alerts, domain.Alert{ID: "a1", Message: "Please enter your email and password.", Severity: domain.SeverityWarning, Visible: true})
		})
		return fmt.Errorf("auth.Controller.SignIn: %w: Key: 'credentials.Email'", domain.ErrValidation)
	}

	rec := f.do(t, http.MethodPost, "/auth/login", handler.LoginRequest{})

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "validation_error", resp.Error.Code)
	assert.Equal(t, "Please enter your email and password.", resp.Error.Message)
	require.NotNil(t, resp.State)
	assert.Len(t, resp.State.Alerts, 1)
}

func TestPostLogin_AuthErrors(t *testing.T) {
	tests := []struct {
		kind   domain.AuthErrorKind
		status int
		code   string
	}{
		{domain.AuthUserNotFound, http.StatusUnauthorized, "auth_user_not_found"},
		{domain.AuthWrongCredential, http.StatusUnauthorized, "auth_wrong_credential"},
		{domain.AuthUserDisabled, http.StatusForbidden, "auth_user_disabled"},
		{domain.AuthNetwork, http.StatusServiceUnavailable, "auth_network"},
		{domain.AuthUnknown, http.StatusBadGateway, "auth_unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.kind.String(), func(t *testing.T) {
			f := newFixture()
			f.auth.signIn = func(context.Context, string, string) error {
				return fmt.Errorf("auth.Controller.SignIn: %w", &domain.AuthError{Kind: tc.kind, Message: "provider says no"})
			}

			rec := f.do(t, http.MethodPost, "/auth/login", handler.LoginRequest{Email: "a@b.c", Password: "x"})

			assert.Equal(t, tc.status, rec.Code)
			resp := decodeError(t, rec)
			assert.Equal(t, tc.code, resp.Error.Code)
			assert.Equal(t, "provider says no", resp.Error.Message)
		})
	}
}

func TestPostLogin_MalformedBody(t *testing.T) {
	f := newFixture()
	f.auth.signIn = func(context.Context, string, string) error {
		t.Fatal("controller must not be called")
		return nil
	}

	rec := f.do(t, http.MethodPost, "/auth/login", map[string]any{"email": 42})

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestPostLogin_StreamedBodyOverLimit(t *testing.T) {
	f := newFixture()
	f.auth.signIn = func(context.Context, string, string) error {
		t.Fatal("controller must not be called")
		return nil
	}
	h := middleware.NewMaxBodySizeHandler(64)(f.handler())

	b, err := json.Marshal(handler.LoginRequest{Email: "ana@x.io", Password: strings.Repeat("x", 256)})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	req.ContentLength = -1 // chunked: no declared length for the middleware to check
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	resp := decodeError(t, rec)
	assert.Equal(t, "payload_too_large", resp.Error.Code)
	assert.Equal(t, "request body exceeds 64 bytes", resp.Error.Message)
}

func TestPostSignup(t *testing.T) {
	f := newFixture()
	var got [3]string
	f.auth.signUp = func(_ context.Context, name, email, password string) error {
		got = [3]string{name, email, password}
		return nil
	}

	rec := f.do(t, http.MethodPost, "/auth/signup", handler.SignupRequest{Name: "Ana", Email: "ana@x.io", Password: "secret1"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, [3]string{"Ana", "ana@x.io", "secret1"}, got)
}

func TestPostSignup_TransientStoreFailure(t *testing.T) {
	f := newFixture()
	f.auth.signUp = func(context.Context, string, string, string) error {
		return fmt.Errorf("auth.Controller.SignUp: %w", domain.ErrUnavailable)
	}

	rec := f.do(t, http.MethodPost, "/auth/signup", handler.SignupRequest{Name: "Ana", Email: "ana@x.io", Password: "secret1"})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "unavailable", decodeError(t, rec).Error.Code)
}

func TestPostGoogle_PopupClosed(t *testing.T) {
	f := newFixture()
	f.auth.signInGoogle = func(context.Context) error {
		return &domain.AuthError{Kind: domain.AuthPopupClosed}
	}

	rec := f.do(t, http.MethodPost, "/auth/google", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "auth_popup_closed", decodeError(t, rec).Error.Code)
}

func TestPostLogout(t *testing.T) {
	f := newFixture()
	called := false
	f.auth.signOut = func(context.Context) error {
		called = true
		return nil
	}

	rec := f.do(t, http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, called)
}

func TestPostPasswordReset(t *testing.T) {
	f := newFixture()
	f.auth.passwordReset = func(_ context.Context, email string) error {
		if email == "" {
			return errors.New("unexpected empty email")
		}
		return nil
	}

	rec := f.do(t, http.MethodPost, "/auth/password-reset", handler.PasswordResetRequest{Email: "ana@x.io"})

	assert.Equal(t, http.StatusOK, rec.Code)
}
