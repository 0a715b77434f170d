package handler

import (
	"net/http"

	"github.com/pkordes/travel-guide/internal/domain"
)

// SearchRequest is the body of POST /places/search.
type SearchRequest struct {
	Location string `json:"location"`
	Type     string `json:"type"`
}

// TranslateRequest is the optional body of POST /places/translate.
type TranslateRequest struct {
	Lang string `json:"lang"`
}

// AddToRouteRequest is the body of POST /route/places. Exactly one of Index
// (0-based position in the result list) or Place is set.
type AddToRouteRequest struct {
	Index *int          `json:"index,omitempty"`
	Place *domain.Place `json:"place,omitempty"`
}

// searchPlaces handles POST /places/search.
func (s *Server) searchPlaces(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.respond(w, r, s.places.Search(r.Context(), req.Location, req.Type))
}

// translateDescriptions handles POST /places/translate.
func (s *Server) translateDescriptions(w http.ResponseWriter, r *http.Request) {
	var req TranslateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	s.respond(w, r, s.places.TranslateDescriptions(r.Context(), req.Lang))
}

// addToRoute handles POST /route/places.
func (s *Server) addToRoute(w http.ResponseWriter, r *http.Request) {
	var req AddToRouteRequest
	if err := decodeJSON(r, &req); err != nil {
		writeDecodeError(w, err)
		return
	}
	switch {
	case req.Index != nil && req.Place == nil:
		s.respond(w, r, s.places.AddResultToRoute(r.Context(), *req.Index))
	case req.Place != nil && req.Index == nil:
		s.respond(w, r, s.places.AddToRoute(r.Context(), *req.Place))
	default:
		writeJSON(w, http.StatusUnprocessableEntity, requestError("exactly one of index or place is required"))
	}
}

// clearRoute handles DELETE /route.
func (s *Server) clearRoute(w http.ResponseWriter, r *http.Request) {
	s.places.ClearRoute()
	s.respond(w, r, nil)
}
