// Package ui holds the single client state container. Every controller reads
// and writes UI state through a Container; renderers subscribe to snapshots.
package ui

import "github.com/pkordes/travel-guide/internal/domain"

// Tab identifies one of the two tabs of the auth modal.
type Tab string

const (
	TabLogin  Tab = "login"
	TabSignup Tab = "signup"
)

// Valid reports whether t names a known tab.
func (t Tab) Valid() bool {
	return t == TabLogin || t == TabSignup
}

// Initial map viewport, before any search recentres it.
const (
	DefaultZoom = 2
	ResultZoom  = 13
)

// Marker is a numbered pin on the map.
type Marker struct {
	Label    string        `json:"label"`
	Title    string        `json:"title"`
	Position domain.LatLng `json:"position"`
}

// ResultRow is one entry of the rendered results list. Description is the
// text currently displayed, which may be a translation of Place.Description.
type ResultRow struct {
	Place       domain.Place `json:"place"`
	Description string       `json:"description"`
}

// GuideDraft holds the guide form fields that are pre-filled on open.
type GuideDraft struct {
	Destination string `json:"destination"`
	Email       string `json:"email"`
}

// State is a full snapshot of what the client shows.
type State struct {
	// Session-driven header. SignedIn true shows the user menu and hides the
	// auth entry buttons.
	SignedIn  bool   `json:"signed_in"`
	UserName  string `json:"user_name,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`

	AuthModalOpen bool `json:"auth_modal_open"`
	ActiveTab     Tab  `json:"active_tab"`
	DropdownOpen  bool `json:"dropdown_open"`

	GuideModalOpen bool       `json:"guide_modal_open"`
	GuideDraft     GuideDraft `json:"guide_draft"`

	Alerts []domain.Alert `json:"alerts"`

	SearchLocation string         `json:"search_location"`
	PlaceType      string         `json:"place_type"`
	Loading        bool           `json:"loading"`
	Results        []ResultRow    `json:"results"`
	Markers        []Marker       `json:"markers"`
	Center         domain.LatLng  `json:"center"`
	Zoom           int            `json:"zoom"`
	Selection      []domain.Place `json:"selection"`
	Route          *domain.Route  `json:"route,omitempty"`
}

// VisibleForm returns the form shown in the auth modal. It always matches
// the active tab.
func (s State) VisibleForm() Tab {
	return s.ActiveTab
}

// clone returns a copy of s that shares no slices with it.
func (s State) clone() State {
	out := s
	out.Alerts = append([]domain.Alert(nil), s.Alerts...)
	out.Results = append([]ResultRow(nil), s.Results...)
	out.Markers = append([]Marker(nil), s.Markers...)
	out.Selection = append([]domain.Place(nil), s.Selection...)
	if s.Route != nil {
		r := *s.Route
		out.Route = &r
	}
	return out
}
