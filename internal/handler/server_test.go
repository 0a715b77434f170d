package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/handler"
	"github.com/pkordes/travel-guide/internal/ui"
)

// ---- mocks -----------------------------------------------------------------
// Set only the method fields a test needs; calling an unset one panics.

type mockAuth struct {
	signIn        func(ctx context.Context, email, password string) error
	signUp        func(ctx context.Context, name, email, password string) error
	signInGoogle  func(ctx context.Context) error
	signOut       func(ctx context.Context) error
	passwordReset func(ctx context.Context, email string) error
}

func (m *mockAuth) SignIn(ctx context.Context, email, password string) error {
	return m.signIn(ctx, email, password)
}
func (m *mockAuth) SignUp(ctx context.Context, name, email, password string) error {
	return m.signUp(ctx, name, email, password)
}
func (m *mockAuth) SignInWithProvider(ctx context.Context) error { return m.signInGoogle(ctx) }
func (m *mockAuth) SignOut(ctx context.Context) error            { return m.signOut(ctx) }
func (m *mockAuth) RequestPasswordReset(ctx context.Context, email string) error {
	return m.passwordReset(ctx, email)
}

type mockNav struct {
	openAuthModal   func(tab ui.Tab)
	closeAuthModal  func()
	selectTab       func(tab ui.Tab)
	closeGuideModal func()
	toggleDropdown  func()
	pointerDown     func(inside bool)
}

func (m *mockNav) OpenAuthModal(tab ui.Tab)        { m.openAuthModal(tab) }
func (m *mockNav) CloseAuthModal()                 { m.closeAuthModal() }
func (m *mockNav) SelectTab(tab ui.Tab)            { m.selectTab(tab) }
func (m *mockNav) CloseGuideModal()                { m.closeGuideModal() }
func (m *mockNav) ToggleDropdown()                 { m.toggleDropdown() }
func (m *mockNav) PointerDown(insideUserMenu bool) { m.pointerDown(insideUserMenu) }

type mockExplorer struct {
	search        func(ctx context.Context, location, placeType string) error
	addToRoute    func(ctx context.Context, place domain.Place) error
	addResult     func(ctx context.Context, index int) error
	clearRoute    func()
	translateDesc func(ctx context.Context, lang string) error
}

func (m *mockExplorer) Search(ctx context.Context, location, placeType string) error {
	return m.search(ctx, location, placeType)
}
func (m *mockExplorer) AddToRoute(ctx context.Context, place domain.Place) error {
	return m.addToRoute(ctx, place)
}
func (m *mockExplorer) AddResultToRoute(ctx context.Context, index int) error {
	return m.addResult(ctx, index)
}
func (m *mockExplorer) ClearRoute() { m.clearRoute() }
func (m *mockExplorer) TranslateDescriptions(ctx context.Context, lang string) error {
	return m.translateDesc(ctx, lang)
}

type mockGuide struct {
	open   func() error
	submit func(ctx context.Context, req domain.GuideRequest) error
}

func (m *mockGuide) Open() error { return m.open() }
func (m *mockGuide) Submit(ctx context.Context, req domain.GuideRequest) error {
	return m.submit(ctx, req)
}

type mockDismisser struct {
	dismiss func(id string)
}

func (m *mockDismisser) Dismiss(id string) { m.dismiss(id) }

var (
	_ handler.Authenticator  = (*mockAuth)(nil)
	_ handler.Navigator      = (*mockNav)(nil)
	_ handler.Explorer       = (*mockExplorer)(nil)
	_ handler.GuideFlow      = (*mockGuide)(nil)
	_ handler.AlertDismisser = (*mockDismisser)(nil)
	_ handler.StateSource    = (*ui.Container)(nil)
)

// ---- helpers ---------------------------------------------------------------

// fixture bundles a Server with its mocks and a real state container.
type fixture struct {
	auth    *mockAuth
	nav     *mockNav
	places  *mockExplorer
	guide   *mockGuide
	dismiss *mockDismisser
	state   *ui.Container
}

func newFixture() *fixture {
	return &fixture{
		auth:    &mockAuth{},
		nav:     &mockNav{},
		places:  &mockExplorer{},
		guide:   &mockGuide{},
		dismiss: &mockDismisser{},
		state:   ui.NewContainer(),
	}
}

func (f *fixture) handler() http.Handler {
	return handler.NewServer(handler.Deps{
		Auth:   f.auth,
		Nav:    f.nav,
		Places: f.places,
		Guide:  f.guide,
		Alerts: f.dismiss,
		State:  f.state,
		Log:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}).Routes()
}

func (f *fixture) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	return do(t, f.handler(), method, path, body)
}

// do sends body, JSON-encoded unless nil, to h.
func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) ui.State {
	t.Helper()
	var st ui.State
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&st))
	return st
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorResponse {
	t.Helper()
	var resp handler.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}
