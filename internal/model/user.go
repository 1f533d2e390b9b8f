// Package model defines the data structures used throughout the application.
package model

import "time"

// User is a registered account.
//
// PasswordHash holds a bcrypt hash and is tagged `json:"-"` so it can never be
// serialized into a response by accident. Accounts created through GitHub
// sign-in have an empty PasswordHash and a non-nil GitHubID.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	GitHubID     *int64    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// PublicUser is the projection of a User that clients are allowed to see.
type PublicUser struct {
	UserID   string `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email,omitempty"`
}

// Public returns the client-facing projection of u.
func (u *User) Public() PublicUser {
	return PublicUser{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
