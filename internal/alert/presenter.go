// Package alert shows transient, auto-dismissing notifications.
package alert

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

// Display timings used in production.
const (
	DisplayDuration = 5 * time.Second
	FadeDuration    = 150 * time.Millisecond
)

// Presenter adds alerts to the UI container and removes them after a fixed
// display time plus a short fade.
type Presenter struct {
	state   *ui.Container
	log     *slog.Logger
	display time.Duration
	fade    time.Duration
	newID   func() string
}

// Option customises a Presenter.
type Option func(*Presenter)

// WithTimings overrides the display and fade durations.
func WithTimings(display, fade time.Duration) Option {
	return func(p *Presenter) {
		p.display = display
		p.fade = fade
	}
}

// NewPresenter constructs a Presenter writing to state.
func NewPresenter(state *ui.Container, log *slog.Logger, opts ...Option) *Presenter {
	p := &Presenter{
		state:   state,
		log:     log,
		display: DisplayDuration,
		fade:    FadeDuration,
		newID:   func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Show displays message with the given severity and returns the alert ID.
func (p *Presenter) Show(message string, severity domain.Severity) string {
	a := domain.Alert{
		ID:       p.newID(),
		Message:  message,
		Severity: severity,
		Visible:  true,
	}
	p.state.Update(func(s *ui.State) {
		s.Alerts = append(s.Alerts, a)
	})
	p.log.Info("alert shown", "severity", string(severity), "message", message)

	time.AfterFunc(p.display, func() { p.Dismiss(a.ID) })
	return a.ID
}

func (p *Presenter) Success(message string) string { return p.Show(message, domain.SeveritySuccess) }
func (p *Presenter) Warning(message string) string { return p.Show(message, domain.SeverityWarning) }
func (p *Presenter) Danger(message string) string  { return p.Show(message, domain.SeverityDanger) }
func (p *Presenter) Info(message string) string    { return p.Show(message, domain.SeverityInfo) }

// Dismiss starts the fade-out of an alert and removes it once the fade has
// finished. Dismissing an alert that is already fading or gone is a no-op.
func (p *Presenter) Dismiss(id string) {
	fading := false
	p.state.Update(func(s *ui.State) {
		for i := range s.Alerts {
			if s.Alerts[i].ID == id && s.Alerts[i].Visible {
				s.Alerts[i].Visible = false
				fading = true
			}
		}
	})
	if !fading {
		return
	}
	time.AfterFunc(p.fade, func() { p.remove(id) })
}

func (p *Presenter) remove(id string) {
	p.state.Update(func(s *ui.State) {
		kept := s.Alerts[:0]
		for _, a := range s.Alerts {
			if a.ID != id {
				kept = append(kept, a)
			}
		}
		s.Alerts = kept
	})
}
