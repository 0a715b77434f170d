package identity_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-guide/internal/auth"
	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/identity"
)

var _ auth.Provider = (*identity.Client)(nil)

// recordingPublisher captures published sessions.
type recordingPublisher struct {
	mu  sync.Mutex
	got []*domain.Session
}

func (p *recordingPublisher) Publish(next *domain.Session) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.got = append(p.got, next)
}

func (p *recordingPublisher) last(t *testing.T) *domain.Session {
	t.Helper()
	p.mu.Lock()
	defer p.mu.Unlock()
	require.NotEmpty(t, p.got)
	return p.got[len(p.got)-1]
}

type fakeConsent struct {
	token string
	err   error
}

func (f fakeConsent) Authorize(context.Context) (string, error) { return f.token, f.err }

// fakeIdentity is a scripted identity toolkit server.
type fakeIdentity struct {
	t        *testing.T
	handlers map[string]func(body map[string]any) (int, any)
	calls    []string
}

func (f *fakeIdentity) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	assert.Equal(f.t, "test-key", r.URL.Query().Get("key"))
	method := r.URL.Path[len("/v1/"):]
	f.calls = append(f.calls, method)

	body := map[string]any{}
	if r.Header.Get("Content-Type") == "application/json" {
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
	} else {
		assert.NoError(f.t, r.ParseForm())
		for k := range r.PostForm {
			body[k] = r.PostForm.Get(k)
		}
	}
	h, ok := f.handlers[method]
	if !ok {
		f.t.Errorf("unexpected call %s", method)
		w.WriteHeader(http.StatusNotFound)
		return
	}
	status, resp := h(body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

func apiError(msg string) any {
	return map[string]any{"error": map[string]any{"code": 400, "message": msg}}
}

func tokens(localID, email string) map[string]any {
	return map[string]any{
		"localId":      localID,
		"email":        email,
		"idToken":      "id-" + localID,
		"refreshToken": "refresh-" + localID,
		"expiresIn":    "3600",
	}
}

type env struct {
	client *identity.Client
	server *fakeIdentity
	pub    *recordingPublisher
	creds  *identity.FileStore
}

func newEnv(t *testing.T, opts ...identity.Option) *env {
	t.Helper()
	fake := &fakeIdentity{t: t, handlers: map[string]func(map[string]any) (int, any){}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	pub := &recordingPublisher{}
	creds := identity.NewFileStore(filepath.Join(t.TempDir(), "creds", "credentials.json"))
	cfg := identity.Config{APIKey: "test-key", AuthBaseURL: srv.URL + "/v1", TokenBaseURL: srv.URL + "/v1"}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &env{
		client: identity.NewClient(cfg, pub, creds, log, opts...),
		server: fake,
		pub:    pub,
		creds:  creds,
	}
}

func authKind(t *testing.T, err error) domain.AuthErrorKind {
	t.Helper()
	var ae *domain.AuthError
	require.ErrorAs(t, err, &ae)
	return ae.Kind
}

func TestSignIn_PublishesAndPersists(t *testing.T) {
	e := newEnv(t)
	e.server.handlers["accounts:signInWithPassword"] = func(body map[string]any) (int, any) {
		assert.Equal(t, "a@x.com", body["email"])
		assert.Equal(t, "secret1", body["password"])
		assert.Equal(t, true, body["returnSecureToken"])
		resp := tokens("u1", "a@x.com")
		resp["displayName"] = "Ana"
		return http.StatusOK, resp
	}

	sess, err := e.client.SignIn(context.Background(), "a@x.com", "secret1")

	require.NoError(t, err)
	assert.Equal(t, domain.Session{ID: "u1", DisplayName: "Ana", Email: "a@x.com"}, sess)
	assert.Equal(t, &sess, e.pub.last(t))

	cred, err := e.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, identity.Credential{UserID: "u1", RefreshToken: "refresh-u1"}, cred)
}

func TestSignIn_ErrorKinds(t *testing.T) {
	tests := []struct {
		message string
		kind    domain.AuthErrorKind
	}{
		{"EMAIL_NOT_FOUND", domain.AuthUserNotFound},
		{"INVALID_PASSWORD", domain.AuthWrongCredential},
		{"INVALID_LOGIN_CREDENTIALS", domain.AuthWrongCredential},
		{"USER_DISABLED : The user account has been disabled by an administrator.", domain.AuthUserDisabled},
		{"TOO_MANY_ATTEMPTS_TRY_LATER", domain.AuthUnknown},
	}
	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			e := newEnv(t)
			e.server.handlers["accounts:signInWithPassword"] = func(map[string]any) (int, any) {
				return http.StatusBadRequest, apiError(tc.message)
			}

			_, err := e.client.SignIn(context.Background(), "a@x.com", "pw")

			assert.Equal(t, tc.kind, authKind(t, err))
			var ae *domain.AuthError
			require.ErrorAs(t, err, &ae)
			assert.Equal(t, tc.message, ae.Message)
			assert.Empty(t, e.pub.got, "failed sign-in publishes nothing")
		})
	}
}

func TestSignUp_ErrorKinds(t *testing.T) {
	e := newEnv(t)
	e.server.handlers["accounts:signUp"] = func(body map[string]any) (int, any) {
		if body["email"] == "taken@x.com" {
			return http.StatusBadRequest, apiError("EMAIL_EXISTS")
		}
		return http.StatusBadRequest, apiError("WEAK_PASSWORD : Password should be at least 6 characters")
	}
	ctx := context.Background()

	_, err := e.client.SignUp(ctx, "taken@x.com", "secret1")
	assert.Equal(t, domain.AuthEmailInUse, authKind(t, err))

	_, err = e.client.SignUp(ctx, "a@x.com", "123")
	assert.Equal(t, domain.AuthWeakPassword, authKind(t, err))
}

func TestTransportErrorIsNetworkKind(t *testing.T) {
	pub := &recordingPublisher{}
	c := identity.NewClient(identity.Config{APIKey: "k", AuthBaseURL: "http://127.0.0.1:1/v1"}, pub, nil,
		slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := c.SignIn(context.Background(), "a@x.com", "pw")

	assert.Equal(t, domain.AuthNetwork, authKind(t, err))
}

func TestSignUpThenUpdateDisplayName(t *testing.T) {
	e := newEnv(t)
	e.server.handlers["accounts:signUp"] = func(map[string]any) (int, any) {
		return http.StatusOK, tokens("u1", "a@x.com")
	}
	e.server.handlers["accounts:update"] = func(body map[string]any) (int, any) {
		assert.Equal(t, "id-u1", body["idToken"])
		assert.Equal(t, "Ana", body["displayName"])
		return http.StatusOK, map[string]any{"localId": "u1", "displayName": "Ana"}
	}
	ctx := context.Background()

	_, err := e.client.SignUp(ctx, "a@x.com", "secret1")
	require.NoError(t, err)
	require.NoError(t, e.client.UpdateDisplayName(ctx, "Ana"))

	last := e.pub.last(t)
	require.NotNil(t, last)
	assert.Equal(t, "u1", last.ID)
	assert.Equal(t, "Ana", last.DisplayName)
}

func TestUpdateDisplayName_WithoutSession(t *testing.T) {
	e := newEnv(t)

	err := e.client.UpdateDisplayName(context.Background(), "Ana")

	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestSendPasswordReset(t *testing.T) {
	e := newEnv(t)
	e.server.handlers["accounts:sendOobCode"] = func(body map[string]any) (int, any) {
		assert.Equal(t, "PASSWORD_RESET", body["requestType"])
		if body["email"] == "nobody@x.com" {
			return http.StatusBadRequest, apiError("EMAIL_NOT_FOUND")
		}
		return http.StatusOK, map[string]any{"email": body["email"]}
	}
	ctx := context.Background()

	require.NoError(t, e.client.SendPasswordReset(ctx, "a@x.com"))
	err := e.client.SendPasswordReset(ctx, "nobody@x.com")
	assert.Equal(t, domain.AuthUserNotFound, authKind(t, err))
}

func TestSignInWithProvider(t *testing.T) {
	e := newEnv(t, identity.WithConsent(fakeConsent{token: "google-id-token"}))
	e.server.handlers["accounts:signInWithIdp"] = func(body map[string]any) (int, any) {
		post, err := url.ParseQuery(body["postBody"].(string))
		assert.NoError(t, err)
		assert.Equal(t, "google-id-token", post.Get("id_token"))
		assert.Equal(t, "google.com", post.Get("providerId"))
		resp := tokens("g1", "ana@gmail.com")
		resp["displayName"] = "Ana G"
		resp["photoUrl"] = "https://lh3.example/photo.jpg"
		resp["isNewUser"] = true
		return http.StatusOK, resp
	}

	got, err := e.client.SignInWithProvider(context.Background())

	require.NoError(t, err)
	assert.True(t, got.IsNewUser)
	assert.Equal(t, "g1", got.Session.ID)
	assert.Equal(t, "https://lh3.example/photo.jpg", got.Session.PhotoURL)
	assert.Equal(t, "g1", e.pub.last(t).ID)
}

func TestSignInWithProvider_NeedsConfirmation(t *testing.T) {
	e := newEnv(t, identity.WithConsent(fakeConsent{token: "tok"}))
	e.server.handlers["accounts:signInWithIdp"] = func(map[string]any) (int, any) {
		return http.StatusOK, map[string]any{"needConfirmation": true, "email": "a@x.com"}
	}

	_, err := e.client.SignInWithProvider(context.Background())

	assert.Equal(t, domain.AuthAccountConflict, authKind(t, err))
}

func TestSignInWithProvider_ConsentErrorPassesThrough(t *testing.T) {
	e := newEnv(t, identity.WithConsent(fakeConsent{err: &domain.AuthError{Kind: domain.AuthPopupBlocked}}))

	_, err := e.client.SignInWithProvider(context.Background())

	assert.Equal(t, domain.AuthPopupBlocked, authKind(t, err))
	assert.Empty(t, e.server.calls)
}

func TestSignInWithProvider_NotConfigured(t *testing.T) {
	e := newEnv(t)

	_, err := e.client.SignInWithProvider(context.Background())

	assert.Equal(t, domain.AuthProviderDisabled, authKind(t, err))
}

func TestSignOut_ClearsCredential(t *testing.T) {
	e := newEnv(t)
	e.server.handlers["accounts:signInWithPassword"] = func(map[string]any) (int, any) {
		return http.StatusOK, tokens("u1", "a@x.com")
	}
	ctx := context.Background()
	_, err := e.client.SignIn(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, e.client.SignOut(ctx))

	assert.Nil(t, e.pub.last(t))
	_, err = e.creds.Load()
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = e.client.IDToken(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}

func TestRestore_FromStoredCredential(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.creds.Save(identity.Credential{UserID: "u1", RefreshToken: "old-refresh"}))
	e.server.handlers["token"] = func(body map[string]any) (int, any) {
		assert.Equal(t, "refresh_token", body["grant_type"])
		assert.Equal(t, "old-refresh", body["refresh_token"])
		return http.StatusOK, map[string]any{
			"id_token": "fresh-id", "refresh_token": "new-refresh", "user_id": "u1", "expires_in": "3600",
		}
	}
	e.server.handlers["accounts:lookup"] = func(body map[string]any) (int, any) {
		assert.Equal(t, "fresh-id", body["idToken"])
		return http.StatusOK, map[string]any{"users": []map[string]any{
			{"localId": "u1", "email": "a@x.com", "displayName": "Ana"},
		}}
	}

	require.NoError(t, e.client.Restore(context.Background()))

	require.Len(t, e.pub.got, 1)
	assert.Equal(t, &domain.Session{ID: "u1", DisplayName: "Ana", Email: "a@x.com"}, e.pub.got[0])
	cred, err := e.creds.Load()
	require.NoError(t, err)
	assert.Equal(t, "new-refresh", cred.RefreshToken)
}

func TestRestore_NothingStored(t *testing.T) {
	e := newEnv(t)

	require.NoError(t, e.client.Restore(context.Background()))

	require.Len(t, e.pub.got, 1)
	assert.Nil(t, e.pub.got[0])
}

func TestRestore_RevokedCredentialIsDeleted(t *testing.T) {
	e := newEnv(t)
	require.NoError(t, e.creds.Save(identity.Credential{UserID: "u1", RefreshToken: "revoked"}))
	e.server.handlers["token"] = func(map[string]any) (int, any) {
		return http.StatusBadRequest, apiError("TOKEN_EXPIRED")
	}

	err := e.client.Restore(context.Background())

	require.Error(t, err)
	require.Len(t, e.pub.got, 1)
	assert.Nil(t, e.pub.got[0])
	_, err = e.creds.Load()
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// stuckCredentials cannot remove the stored credential.
type stuckCredentials struct{}

func (stuckCredentials) Load() (identity.Credential, error) { return identity.Credential{}, domain.ErrNotFound }
func (stuckCredentials) Save(identity.Credential) error     { return nil }
func (stuckCredentials) Delete() error                      { return errors.New("read-only file system") }

func TestSignOut_CredentialDeleteFailureStillEndsSession(t *testing.T) {
	fake := &fakeIdentity{t: t, handlers: map[string]func(map[string]any) (int, any){}}
	fake.handlers["accounts:signInWithPassword"] = func(map[string]any) (int, any) {
		return http.StatusOK, tokens("u1", "a@x.com")
	}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	pub := &recordingPublisher{}
	cfg := identity.Config{APIKey: "test-key", AuthBaseURL: srv.URL + "/v1", TokenBaseURL: srv.URL + "/v1"}
	client := identity.NewClient(cfg, pub, stuckCredentials{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	_, err := client.SignIn(ctx, "a@x.com", "pw")
	require.NoError(t, err)

	require.NoError(t, client.SignOut(ctx))

	assert.Nil(t, pub.last(t))
	_, err = client.IDToken(ctx)
	assert.ErrorIs(t, err, domain.ErrNoSession)
}
