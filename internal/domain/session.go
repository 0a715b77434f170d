// Package domain contains the core data types for the travel guide client.
// This package has almost no external dependencies and is imported by every
// other internal package.
package domain

// Session is the locally held representation of the signed-in identity.
// A nil *Session means nobody is signed in.
type Session struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	PhotoURL    string `json:"photo_url,omitempty"`
	Email       string `json:"email"`
}

// FederatedSignIn is the outcome of a successful provider (Google) sign-in.
// IsNewUser is true the first time this identity ever signs in.
type FederatedSignIn struct {
	Session   Session
	IsNewUser bool
}
