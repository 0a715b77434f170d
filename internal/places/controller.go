// Package places runs place search, the result list and its map markers,
// and the selection list that feeds the route builder.
package places

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

// DefaultLanguage is the target language of TranslateDescriptions when none
// is given.
const DefaultLanguage = "en"

const (
	msgMissingLocation = "Please enter a location to search."
	msgSearchFailed    = "Could not load places. Please try again."
)

// Searcher finds places near a location.
type Searcher interface {
	SearchPlaces(ctx context.Context, location, placeType string) ([]domain.Place, error)
}

// Translator translates free text.
type Translator interface {
	Translate(ctx context.Context, text, targetLang string) (string, error)
}

// RouteBuilder computes and clears the rendered route.
type RouteBuilder interface {
	Build(ctx context.Context, places []domain.Place) error
	Clear()
}

// Alerts surfaces search problems to the user.
type Alerts interface {
	Warning(message string) string
}

// Controller owns the search results and the selection list.
type Controller struct {
	search     Searcher
	translator Translator
	routes     RouteBuilder
	state      *ui.Container
	alerts     Alerts
	log        *slog.Logger
}

// NewController constructs a Controller.
func NewController(search Searcher, translator Translator, routes RouteBuilder, state *ui.Container, alerts Alerts, log *slog.Logger) *Controller {
	return &Controller{
		search:     search,
		translator: translator,
		routes:     routes,
		state:      state,
		alerts:     alerts,
		log:        log,
	}
}

// Search replaces the results with places matching location and placeType.
// The loading flag is cleared on every path.
func (c *Controller) Search(ctx context.Context, location, placeType string) error {
	location = strings.TrimSpace(location)
	c.state.Update(func(s *ui.State) {
		s.SearchLocation = location
		s.PlaceType = placeType
	})
	if location == "" {
		c.alerts.Warning(msgMissingLocation)
		return fmt.Errorf("places.Controller.Search: %w: location is required", domain.ErrValidation)
	}

	c.state.Update(func(s *ui.State) { s.Loading = true })
	defer c.state.Update(func(s *ui.State) { s.Loading = false })

	found, err := c.search.SearchPlaces(ctx, location, placeType)
	if err != nil {
		c.log.Error("search places", "location", location, "type", placeType, "error", err)
		c.alerts.Warning(msgSearchFailed)
		return fmt.Errorf("places.Controller.Search: %w", err)
	}

	c.state.Update(func(s *ui.State) { showResults(s, found) })
	return nil
}

// showResults clears the previous markers and draws one per result,
// labelled by its 1-based position.
func showResults(s *ui.State, found []domain.Place) {
	s.Results = make([]ui.ResultRow, len(found))
	s.Markers = make([]ui.Marker, len(found))
	for i, p := range found {
		s.Results[i] = ui.ResultRow{Place: p, Description: p.Description}
		s.Markers[i] = ui.Marker{
			Label:    strconv.Itoa(i + 1),
			Title:    p.Name,
			Position: p.Location,
		}
	}
	if len(found) > 0 {
		s.Center = found[0].Location
		s.Zoom = ui.ResultZoom
	}
}

// AddToRoute appends place to the selection list. Once the list holds two
// or more places the route is recomputed.
func (c *Controller) AddToRoute(ctx context.Context, place domain.Place) error {
	var selection []domain.Place
	c.state.Update(func(s *ui.State) {
		s.Selection = append(s.Selection, place)
		selection = append([]domain.Place(nil), s.Selection...)
	})
	if len(selection) < 2 {
		return nil
	}
	if err := c.routes.Build(ctx, selection); err != nil {
		return fmt.Errorf("places.Controller.AddToRoute: %w", err)
	}
	return nil
}

// AddResultToRoute adds the result at index (0-based) to the selection list.
func (c *Controller) AddResultToRoute(ctx context.Context, index int) error {
	results := c.state.Read().Results
	if index < 0 || index >= len(results) {
		return fmt.Errorf("places.Controller.AddResultToRoute: result %d: %w", index, domain.ErrNotFound)
	}
	return c.AddToRoute(ctx, results[index].Place)
}

// ClearRoute empties the selection list and removes the rendered route.
func (c *Controller) ClearRoute() {
	c.state.Update(func(s *ui.State) { s.Selection = nil })
	c.routes.Clear()
}

// TranslateDescriptions translates the displayed description of every
// result into lang, one at a time. A failed or empty translation keeps the
// current text.
func (c *Controller) TranslateDescriptions(ctx context.Context, lang string) error {
	if lang == "" {
		lang = DefaultLanguage
	}
	rows := c.state.Read().Results
	for i, row := range rows {
		if row.Description == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("places.Controller.TranslateDescriptions: %w", err)
		}
		translated, err := c.translator.Translate(ctx, row.Description, lang)
		if err != nil {
			c.log.Warn("translate description", "place", row.Place.Name, "error", err)
			continue
		}
		if translated == "" {
			continue
		}
		c.state.Update(func(s *ui.State) {
			// the result set may have been replaced by a newer search
			if i < len(s.Results) && s.Results[i].Place.Name == row.Place.Name {
				s.Results[i].Description = translated
			}
		})
	}
	return nil
}
