// Package handler exposes the client core over HTTP so a thin front end can
// drive it. Every action responds with the full state snapshot the front end
// should render; GET /events streams the same snapshots as they change.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

// Authenticator is the sign-in surface behind /auth.
type Authenticator interface {
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, name, email, password string) error
	SignInWithProvider(ctx context.Context) error
	SignOut(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
}

// Navigator drives modal, tab and dropdown visibility behind /ui.
type Navigator interface {
	OpenAuthModal(tab ui.Tab)
	CloseAuthModal()
	SelectTab(tab ui.Tab)
	CloseGuideModal()
	ToggleDropdown()
	PointerDown(insideUserMenu bool)
}

// Explorer runs search, translation and route selection behind /places and
// /route.
type Explorer interface {
	Search(ctx context.Context, location, placeType string) error
	AddToRoute(ctx context.Context, place domain.Place) error
	AddResultToRoute(ctx context.Context, index int) error
	ClearRoute()
	TranslateDescriptions(ctx context.Context, lang string) error
}

// GuideFlow opens and submits the travel guide form behind /guide.
type GuideFlow interface {
	Open() error
	Submit(ctx context.Context, req domain.GuideRequest) error
}

// AlertDismisser closes a visible alert early.
type AlertDismisser interface {
	Dismiss(id string)
}

// StateSource is the observable client state.
type StateSource interface {
	Read() ui.State
	Subscribe(fn func(ui.State)) (unsubscribe func())
}

// Deps holds everything the Server needs. All fields are required.
type Deps struct {
	Auth   Authenticator
	Nav    Navigator
	Places Explorer
	Guide  GuideFlow
	Alerts AlertDismisser
	State  StateSource
	Log    *slog.Logger
}

// Server holds the HTTP handlers. Methods are split into area-specific
// files (auth.go, ui.go, places.go, guide.go, state.go).
type Server struct {
	auth   Authenticator
	nav    Navigator
	places Explorer
	guide  GuideFlow
	alerts AlertDismisser
	state  StateSource
	log    *slog.Logger
}

// NewServer constructs the Server.
func NewServer(d Deps) *Server {
	return &Server{
		auth:   d.Auth,
		nav:    d.Nav,
		places: d.Places,
		guide:  d.Guide,
		alerts: d.Alerts,
		state:  d.State,
		log:    d.Log,
	}
}

// Routes returns a chi router with every endpoint registered. Middleware is
// left to the caller.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", s.getHealth)
	r.Get("/openapi.yaml", s.getOpenAPI)

	r.Get("/state", s.getState)
	r.Get("/events", s.streamEvents)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/login", s.postLogin)
		r.Post("/signup", s.postSignup)
		r.Post("/google", s.postGoogle)
		r.Post("/logout", s.postLogout)
		r.Post("/password-reset", s.postPasswordReset)
	})

	r.Route("/ui", func(r chi.Router) {
		r.Post("/auth-modal", s.openAuthModal)
		r.Delete("/auth-modal", s.closeAuthModal)
		r.Post("/auth-tab/{tab}", s.selectTab)
		r.Post("/avatar", s.toggleDropdown)
		r.Post("/pointer", s.pointerDown)
		r.Delete("/guide-modal", s.closeGuideModal)
		r.Delete("/alerts/{id}", s.dismissAlert)
	})

	r.Post("/places/search", s.searchPlaces)
	r.Post("/places/translate", s.translateDescriptions)
	r.Post("/route/places", s.addToRoute)
	r.Delete("/route", s.clearRoute)

	r.Post("/guide/open", s.openGuide)
	r.Post("/guide", s.submitGuide)

	return r
}

// respond writes the current snapshot, or an error body carrying it when
// err is non-nil.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error) {
	snap := s.state.Read()
	if err == nil {
		writeJSON(w, http.StatusOK, snap)
		return
	}
	status, body := errorResponse(err)
	body.State = &snap
	// local validation always raises a warning; it reads better than the
	// validator's field dump
	if body.Error.Code == "validation_error" && len(snap.Alerts) > 0 {
		body.Error.Message = snap.Alerts[len(snap.Alerts)-1].Message
	}
	if status >= http.StatusInternalServerError {
		s.log.ErrorContext(r.Context(), "action failed", "path", r.URL.Path, "error", err)
	} else {
		s.log.DebugContext(r.Context(), "action rejected", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, body)
}
