package domain

import "time"

// AccountActive is the status written for every newly created profile.
const AccountActive = "active"

// UserProfile is the persisted per-identity record.
// There is exactly one profile per identity ID.
// LastLogout is nil until the user signs out for the first time.
type UserProfile struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	Email         string     `json:"email"`
	CreatedAt     time.Time  `json:"created_at"`
	LastLogin     time.Time  `json:"last_login"`
	LastLogout    *time.Time `json:"last_logout,omitempty"`
	Preferences   []string   `json:"preferences"`
	AccountStatus string     `json:"account_status"`
}

// NewUserProfile returns the initial profile written at sign-up.
// Timestamps are left zero; the store assigns them.
func NewUserProfile(id, name, email string) UserProfile {
	return UserProfile{
		ID:            id,
		Name:          name,
		Email:         email,
		Preferences:   []string{},
		AccountStatus: AccountActive,
	}
}
