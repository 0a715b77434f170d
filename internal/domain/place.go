package domain

// LatLng is a geographic coordinate in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a single search result. Values are never modified after they
// are received from the search endpoint.
type Place struct {
	Name        string   `json:"name"`
	Address     string   `json:"address"`
	Location    LatLng   `json:"location"`
	Rating      *float64 `json:"rating,omitempty"`
	Description string   `json:"description,omitempty"`
	PlaceID     string   `json:"place_id,omitempty"`
	Types       []string `json:"types,omitempty"`
	Photo       string   `json:"photo,omitempty"`
}
