package domain

import "time"

// User is a registered account as persisted in the users table.
type User struct {
	ID       int64
	Username string
	// Password holds the stored form produced by the configured hasher.
	Password  string
	Email     string
	CreatedAt time.Time
}

// NewUser is the input accepted for registration. Empty fields count as absent.
type NewUser struct {
	Username string
	Password string
	Email    string
}
