package domain

// Severity is the visual weight of an alert.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityDanger  Severity = "danger"
	SeverityInfo    Severity = "info"
)

// Alert is a transient user-facing notification.
// Visible turns false when the alert starts fading out; the alert is
// removed shortly after.
type Alert struct {
	ID       string   `json:"id"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
	Visible  bool     `json:"visible"`
}
