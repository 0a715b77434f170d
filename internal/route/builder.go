// Package route turns the selection list into a walking route.
package route

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

// ErrTooFewPlaces is returned when fewer than two places are selected.
var ErrTooFewPlaces = errors.New("route needs at least two places")

// Directions is the maps directions service.
type Directions interface {
	Route(ctx context.Context, req domain.RouteRequest) (domain.Route, error)
}

// Builder requests routes and stores the rendered one in the UI container.
type Builder struct {
	directions Directions
	state      *ui.Container
	log        *slog.Logger
}

// NewBuilder constructs a Builder.
func NewBuilder(directions Directions, state *ui.Container, log *slog.Logger) *Builder {
	return &Builder{directions: directions, state: state, log: log}
}

// NewRequest builds the directions request for places: the first place is
// the origin, the last is the destination and every place in between is a
// mandatory stop, in selection order.
func NewRequest(places []domain.Place) (domain.RouteRequest, error) {
	if len(places) < 2 {
		return domain.RouteRequest{}, ErrTooFewPlaces
	}
	req := domain.RouteRequest{
		Origin:            places[0].Location,
		Destination:       places[len(places)-1].Location,
		Waypoints:         make([]domain.Waypoint, 0, len(places)-2),
		Mode:              domain.TravelModeWalking,
		OptimizeWaypoints: true,
	}
	for _, p := range places[1 : len(places)-1] {
		req.Waypoints = append(req.Waypoints, domain.Waypoint{Location: p.Location, Stopover: true})
	}
	return req, nil
}

// Build computes the route through places and renders it. On any failure
// the previously rendered route is left untouched.
func (b *Builder) Build(ctx context.Context, places []domain.Place) error {
	req, err := NewRequest(places)
	if err != nil {
		return fmt.Errorf("route.Builder.Build: %w", err)
	}

	r, err := b.directions.Route(ctx, req)
	if err != nil {
		b.log.Error("directions request failed", "error", err)
		return fmt.Errorf("route.Builder.Build: %w", err)
	}
	if r.Status != domain.RouteOK {
		b.log.Error("directions request failed", "status", string(r.Status))
		return fmt.Errorf("route.Builder.Build: directions status %s", r.Status)
	}

	b.state.Update(func(s *ui.State) { s.Route = &r })
	return nil
}

// Clear removes the rendered route.
func (b *Builder) Clear() {
	b.state.Update(func(s *ui.State) { s.Route = nil })
}
