// Package maps adapts the Google Directions API to the route builder.
package maps

import (
	"context"
	"fmt"
	"strconv"

	"googlemaps.github.io/maps"

	"github.com/pkordes/travel-guide/internal/domain"
)

// Directions computes routes with the Google Directions API.
type Directions struct {
	client *maps.Client
}

// NewDirections constructs a Directions client. Extra options (base URL,
// HTTP client, rate limit) are passed through to the maps client.
func NewDirections(apiKey string, opts ...maps.ClientOption) (*Directions, error) {
	c, err := maps.NewClient(append([]maps.ClientOption{maps.WithAPIKey(apiKey)}, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("maps.NewDirections: %w", err)
	}
	return &Directions{client: c}, nil
}

// Route requests the first route for req. A request with no route found
// yields a ZERO_RESULTS status rather than an error.
func (d *Directions) Route(ctx context.Context, req domain.RouteRequest) (domain.Route, error) {
	routes, _, err := d.client.Directions(ctx, toDirectionsRequest(req))
	if err != nil {
		return domain.Route{Status: domain.RouteError}, fmt.Errorf("maps.Directions.Route: %w", err)
	}
	if len(routes) == 0 {
		return domain.Route{Status: domain.RouteZeroResults}, nil
	}

	r := routes[0]
	out := domain.Route{
		Status:        domain.RouteOK,
		Polyline:      r.OverviewPolyline.Points,
		Legs:          make([]domain.RouteLeg, 0, len(r.Legs)),
		WaypointOrder: r.WaypointOrder,
	}
	for _, leg := range r.Legs {
		if leg == nil {
			continue
		}
		out.Legs = append(out.Legs, domain.RouteLeg{
			DistanceMeters: leg.Distance.Meters,
			DistanceText:   leg.Distance.HumanReadable,
			Duration:       leg.Duration,
		})
	}
	return out, nil
}

func toDirectionsRequest(req domain.RouteRequest) *maps.DirectionsRequest {
	dr := &maps.DirectionsRequest{
		Origin:      formatLatLng(req.Origin),
		Destination: formatLatLng(req.Destination),
		Mode:        maps.Mode(req.Mode),
		Optimize:    req.OptimizeWaypoints,
	}
	for _, wp := range req.Waypoints {
		loc := formatLatLng(wp.Location)
		if !wp.Stopover {
			loc = "via:" + loc
		}
		dr.Waypoints = append(dr.Waypoints, loc)
	}
	return dr
}

func formatLatLng(p domain.LatLng) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}
