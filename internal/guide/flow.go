// Package guide runs the personalised travel guide request: the signed-in
// precondition, local form checks and the submission to the remote
// generator.
package guide

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

const (
	MsgLoginRequired = "Please log in to request a personalized travel guide."
	MsgInvalidDates  = "End date must be after start date"
	MsgGenerated     = "Your personalized travel guide has been generated and sent to your email!"
	msgFailedPrefix  = "Failed to generate travel guide: "
	msgGenericDetail = "Failed to generate travel guide"

	msgMissingFields = "Please fill in all required fields."
	msgTravelers     = "Number of travelers must be at least 1."
	msgInvalidEmail  = "Please enter a valid email address."
)

// ErrInvalidDates is returned when the end date is not after the start date.
var ErrInvalidDates = errors.New("end date must be after start date")

// Sessions exposes the signed-in identity.
type Sessions interface {
	Current() *domain.Session
}

// Modals opens and closes the dialogs the flow hosts.
type Modals interface {
	OpenAuthModal(tab ui.Tab)
	OpenGuideModal(draft ui.GuideDraft)
	CloseGuideModal()
}

// Generator is the remote guide-generation endpoint.
type Generator interface {
	GenerateGuide(ctx context.Context, req domain.GuideRequest) error
}

// Alerts surfaces outcomes to the user.
type Alerts interface {
	Success(message string) string
	Warning(message string) string
	Danger(message string) string
}

// Flow runs the guide request dialog.
type Flow struct {
	sessions  Sessions
	modals    Modals
	generator Generator
	state     *ui.Container
	alerts    Alerts
	log       *slog.Logger
	validate  *validator.Validate
}

// NewFlow constructs a Flow.
func NewFlow(sessions Sessions, modals Modals, generator Generator, state *ui.Container, alerts Alerts, log *slog.Logger) *Flow {
	return &Flow{
		sessions:  sessions,
		modals:    modals,
		generator: generator,
		state:     state,
		alerts:    alerts,
		log:       log,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
}

// Open shows the guide dialog, pre-filled with the user's email and the
// current search location. Without a session the login dialog opens instead.
func (f *Flow) Open() error {
	sess := f.sessions.Current()
	if sess == nil {
		f.alerts.Warning(MsgLoginRequired)
		f.modals.OpenAuthModal(ui.TabLogin)
		return fmt.Errorf("guide.Flow.Open: %w", domain.ErrNoSession)
	}
	f.modals.OpenGuideModal(ui.GuideDraft{
		Destination: f.state.Read().SearchLocation,
		Email:       sess.Email,
	})
	return nil
}

// Submit checks req locally and sends it to the generator. Nothing is sent
// unless the trip lasts at least one day.
func (f *Flow) Submit(ctx context.Context, req domain.GuideRequest) error {
	if f.sessions.Current() == nil {
		f.alerts.Warning(MsgLoginRequired)
		f.modals.CloseGuideModal()
		f.modals.OpenAuthModal(ui.TabLogin)
		return fmt.Errorf("guide.Flow.Submit: %w", domain.ErrNoSession)
	}

	if err := f.validate.Struct(req); err != nil {
		f.alerts.Warning(validationMessage(err))
		return fmt.Errorf("guide.Flow.Submit: %w: %v", domain.ErrValidation, err)
	}
	if req.TripDays() < 1 {
		f.alerts.Warning(MsgInvalidDates)
		return fmt.Errorf("guide.Flow.Submit: %w: %w", domain.ErrValidation, ErrInvalidDates)
	}

	f.log.Info("requesting travel guide", "destination", req.Destination, "days", req.TripDays())
	if err := f.generator.GenerateGuide(ctx, req); err != nil {
		f.log.Error("generate travel guide", "destination", req.Destination, "error", err)
		f.alerts.Danger(msgFailedPrefix + failureDetail(err))
		return fmt.Errorf("guide.Flow.Submit: %w", err)
	}

	f.modals.CloseGuideModal()
	f.alerts.Success(MsgGenerated)
	return nil
}

// failureDetail returns the server's message when the generator supplied
// one.
func failureDetail(err error) string {
	var pm interface{ PublicMessage() string }
	if errors.As(err, &pm) && pm.PublicMessage() != "" {
		return pm.PublicMessage()
	}
	return msgGenericDetail
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return msgMissingFields
	}
	fe := verrs[0]
	switch {
	case fe.Field() == "Travelers":
		return msgTravelers
	case fe.Field() == "Email" && fe.Tag() == "email":
		return msgInvalidEmail
	default:
		return msgMissingFields
	}
}
