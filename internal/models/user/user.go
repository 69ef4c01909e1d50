package user

import "time"

// User is a local account for the password login flow.
type User struct {
	ID           int64
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// ExternalUser is an identity known from the external identity provider.
// Tasks reference these ids as plain strings.
type ExternalUser struct {
	ID        string
	Name      string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
