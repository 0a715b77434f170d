package handler

import (
	"net/http"

	"github.com/pkordes/travel-guide/internal/domain"
)

// openGuide handles POST /guide/open.
func (s *Server) openGuide(w http.ResponseWriter, r *http.Request) {
	s.respond(w, r, s.guide.Open())
}

// submitGuide handles POST /guide. Dates use the YYYY-MM-DD form.
func (s *Server) submitGuide(w http.ResponseWriter, r *http.Request) {
	var req domain.GuideRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.respond(w, r, s.guide.Submit(r.Context(), req))
}
