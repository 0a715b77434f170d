package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pkordes/travel-guide/internal/ui"
)

// AuthModalRequest is the optional body of POST /ui/auth-modal.
type AuthModalRequest struct {
	Tab ui.Tab `json:"tab"`
}

// PointerRequest is the body of POST /ui/pointer.
type PointerRequest struct {
	InsideUserMenu bool `json:"inside_user_menu"`
}

// openAuthModal handles POST /ui/auth-modal. The login tab opens when no
// tab is given.
func (s *Server) openAuthModal(w http.ResponseWriter, r *http.Request) {
	req := AuthModalRequest{Tab: ui.TabLogin}
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.nav.OpenAuthModal(req.Tab)
	s.respond(w, r, nil)
}

// closeAuthModal handles DELETE /ui/auth-modal.
func (s *Server) closeAuthModal(w http.ResponseWriter, r *http.Request) {
	s.nav.CloseAuthModal()
	s.respond(w, r, nil)
}

// selectTab handles POST /ui/auth-tab/{tab}.
func (s *Server) selectTab(w http.ResponseWriter, r *http.Request) {
	tab := ui.Tab(chi.URLParam(r, "tab"))
	if !tab.Valid() {
		writeJSON(w, http.StatusUnprocessableEntity, requestError("unknown tab "+string(tab)))
		return
	}
	s.nav.SelectTab(tab)
	s.respond(w, r, nil)
}

// toggleDropdown handles POST /ui/avatar.
func (s *Server) toggleDropdown(w http.ResponseWriter, r *http.Request) {
	s.nav.ToggleDropdown()
	s.respond(w, r, nil)
}

// pointerDown handles POST /ui/pointer.
func (s *Server) pointerDown(w http.ResponseWriter, r *http.Request) {
	var req PointerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.nav.PointerDown(req.InsideUserMenu)
	s.respond(w, r, nil)
}

// closeGuideModal handles DELETE /ui/guide-modal.
func (s *Server) closeGuideModal(w http.ResponseWriter, r *http.Request) {
	s.nav.CloseGuideModal()
	s.respond(w, r, nil)
}

// dismissAlert handles DELETE /ui/alerts/{id}. Unknown IDs are ignored.
func (s *Server) dismissAlert(w http.ResponseWriter, r *http.Request) {
	s.alerts.Dismiss(chi.URLParam(r, "id"))
	s.respond(w, r, nil)
}
