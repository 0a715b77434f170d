package alert_test

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/travel-guide/internal/alert"
	"github.com/pkordes/travel-guide/internal/domain"
	"github.com/pkordes/travel-guide/internal/ui"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestPresenter_Show_addsVisibleAlert(t *testing.T) {
	state := ui.NewContainer()
	p := alert.NewPresenter(state, discardLogger())

	id := p.Warning("Incorrect password. Please try again.")

	alerts := state.Read().Alerts
	require.Len(t, alerts, 1)
	assert.Equal(t, id, alerts[0].ID)
	assert.Equal(t, domain.SeverityWarning, alerts[0].Severity)
	assert.Equal(t, "Incorrect password. Please try again.", alerts[0].Message)
	assert.True(t, alerts[0].Visible)
}

func TestPresenter_autoDismissesAfterDisplayAndFade(t *testing.T) {
	state := ui.NewContainer()
	p := alert.NewPresenter(state, discardLogger(), alert.WithTimings(20*time.Millisecond, 20*time.Millisecond))

	p.Success("Logged in successfully!")

	require.Eventually(t, func() bool {
		a := state.Read().Alerts
		return len(a) == 1 && !a[0].Visible
	}, time.Second, time.Millisecond, "alert should start fading")

	require.Eventually(t, func() bool {
		return len(state.Read().Alerts) == 0
	}, time.Second, time.Millisecond, "alert should be removed after fading")
}

func TestPresenter_Dismiss_isIdempotent(t *testing.T) {
	state := ui.NewContainer()
	p := alert.NewPresenter(state, discardLogger(), alert.WithTimings(time.Hour, 10*time.Millisecond))

	id := p.Info("Password reset email sent. Check your inbox.")
	p.Dismiss(id)
	p.Dismiss(id)
	p.Dismiss("unknown")

	require.Eventually(t, func() bool {
		return len(state.Read().Alerts) == 0
	}, time.Second, time.Millisecond)
}

func TestPresenter_keepsOtherAlerts(t *testing.T) {
	state := ui.NewContainer()
	p := alert.NewPresenter(state, discardLogger(), alert.WithTimings(time.Hour, time.Millisecond))

	first := p.Danger("first")
	p.Info("second")
	p.Dismiss(first)

	require.Eventually(t, func() bool {
		a := state.Read().Alerts
		return len(a) == 1 && a[0].Message == "second"
	}, time.Second, time.Millisecond)
}

func TestDefaultTimings(t *testing.T) {
	assert.Equal(t, 5*time.Second, alert.DisplayDuration)
	assert.Equal(t, 150*time.Millisecond, alert.FadeDuration)
}
