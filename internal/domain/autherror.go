package domain

import "fmt"

// AuthErrorKind classifies failures reported by the identity provider.
// The identity adapter is the only place that turns provider error codes
// into kinds; everything downstream switches on the kind.
type AuthErrorKind int

const (
	AuthUnknown AuthErrorKind = iota
	AuthUserNotFound
	AuthWrongCredential
	AuthEmailInUse
	AuthWeakPassword
	AuthPopupCancelled
	AuthPopupBlocked
	AuthPopupClosed
	AuthAccountConflict
	AuthNetwork
	AuthUserDisabled
	AuthProviderDisabled
)

var authKindNames = map[AuthErrorKind]string{
	AuthUnknown:          "unknown",
	AuthUserNotFound:     "user-not-found",
	AuthWrongCredential:  "wrong-credential",
	AuthEmailInUse:       "email-in-use",
	AuthWeakPassword:     "weak-password",
	AuthPopupCancelled:   "popup-cancelled",
	AuthPopupBlocked:     "popup-blocked",
	AuthPopupClosed:      "popup-closed",
	AuthAccountConflict:  "account-conflict",
	AuthNetwork:          "network",
	AuthUserDisabled:     "user-disabled",
	AuthProviderDisabled: "provider-disabled",
}

func (k AuthErrorKind) String() string {
	if s, ok := authKindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("AuthErrorKind(%d)", int(k))
}

// AuthError is a failure reported by the identity provider.
// Message carries the provider's raw text for display in fallback alerts.
type AuthError struct {
	Kind    AuthErrorKind
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Kind.String()
}

func (e *AuthError) Unwrap() error { return e.Err }
