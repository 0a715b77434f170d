package domain

import (
	"math"

	openapi_types "github.com/oapi-codegen/runtime/types"
)

// GuideRequest is the payload sent to the remote guide generator.
// It is built fresh for every submission and never stored locally.
type GuideRequest struct {
	Destination     string             `json:"destination" validate:"required"`
	StartDate       openapi_types.Date `json:"start_date" validate:"required"`
	EndDate         openapi_types.Date `json:"end_date" validate:"required"`
	Travelers       int                `json:"travelers" validate:"gt=0"`
	Budget          string             `json:"budget" validate:"required"`
	Interests       string             `json:"interests"`
	SpecialRequests string             `json:"special_requests"`
	Email           string             `json:"email" validate:"required,email"`
}

// TripDays returns ceil((end - start) / 1 day).
// A value below 1 means the date range is invalid.
func (g GuideRequest) TripDays() int {
	d := g.EndDate.Time.Sub(g.StartDate.Time)
	return int(math.Ceil(d.Hours() / 24))
}
