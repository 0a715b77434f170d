package domain

import "time"

// TravelMode selects how a route is travelled.
type TravelMode string

// TravelModeWalking is the only mode the route builder requests.
const TravelModeWalking TravelMode = "walking"

// RouteStatus is the status code returned by the directions service.
type RouteStatus string

const (
	RouteOK          RouteStatus = "OK"
	RouteZeroResults RouteStatus = "ZERO_RESULTS"
	RouteError       RouteStatus = "ERROR"
)

// Waypoint is an intermediate point of a route.
// Stopover marks it as a mandatory stop rather than a pass-through point.
type Waypoint struct {
	Location LatLng `json:"location"`
	Stopover bool   `json:"stopover"`
}

// RouteRequest is what the route builder asks the directions service for.
type RouteRequest struct {
	Origin            LatLng     `json:"origin"`
	Destination       LatLng     `json:"destination"`
	Waypoints         []Waypoint `json:"waypoints"`
	Mode              TravelMode `json:"mode"`
	OptimizeWaypoints bool       `json:"optimize_waypoints"`
}

// RouteLeg is one leg between two consecutive stops.
type RouteLeg struct {
	DistanceMeters int           `json:"distance_meters"`
	DistanceText   string        `json:"distance_text"`
	Duration       time.Duration `json:"duration"`
}

// Route is a computed route as returned by the directions service.
type Route struct {
	Status        RouteStatus `json:"status"`
	Polyline      string      `json:"polyline"`
	Legs          []RouteLeg  `json:"legs"`
	WaypointOrder []int       `json:"waypoint_order,omitempty"`
}
