package auth

import "github.com/pkordes/travel-guide/internal/domain"

// User-facing alert texts. Kept together so handler tests and renderers can
// refer to the exact wording.
const (
	msgMissingCredentials = "Please enter your email and password."
	msgMissingName        = "Please enter your name."
	msgInvalidEmail       = "Please enter a valid email address."
	msgResetMissingEmail  = "Please enter your email address first."

	MsgLoggedIn      = "Logged in successfully!"
	MsgUserNotFound  = "No account found with this email. Please sign up."
	MsgWrongPassword = "Incorrect password. Please try again."
	msgLoginFailed   = "Login failed: "

	MsgAccountCreated = "Account created successfully!"
	MsgEmailInUse     = "This email is already registered. Please try logging in."
	MsgWeakPassword   = "Please choose a stronger password (at least 6 characters)."
	msgSignupFailed   = "Signup failed: "

	MsgGoogleLoggedIn = "Logged in with Google successfully!"
	MsgGoogleFailed   = "Failed to sign in with Google. Please try again."

	MsgLoggedOut     = "Logged out successfully!"
	msgLogoutFailed  = "Logout failed: "
	MsgResetSent     = "Password reset email sent. Check your inbox."
	MsgResetNotFound = "No account found with this email."
	msgResetFailed   = "Password reset failed: "
)

// federatedAlert returns the alert for a failed provider sign-in. Popup
// interaction problems are the user's to fix and get a warning.
func federatedAlert(kind domain.AuthErrorKind) (string, domain.Severity) {
	switch kind {
	case domain.AuthPopupCancelled:
		return "Sign-in was cancelled. Please try again and keep the popup window open.", domain.SeverityWarning
	case domain.AuthPopupBlocked:
		return "Sign-in popup was blocked by your browser. Please allow popups for this site and try again.", domain.SeverityWarning
	case domain.AuthPopupClosed:
		return "Sign-in was cancelled. Please keep the popup window open until sign-in is complete.", domain.SeverityWarning
	case domain.AuthAccountConflict:
		return "An account already exists with the same email address but different sign-in credentials. Try signing in using the original method.", domain.SeverityDanger
	case domain.AuthNetwork:
		return "Network error occurred. Please check your internet connection and try again.", domain.SeverityDanger
	case domain.AuthUserDisabled:
		return "This account has been disabled. Please contact support for assistance.", domain.SeverityDanger
	case domain.AuthProviderDisabled:
		return "Google sign-in is not enabled for this application. Please contact support.", domain.SeverityDanger
	default:
		return MsgGoogleFailed, domain.SeverityDanger
	}
}
