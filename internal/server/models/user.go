package models

import "time"

// User is an identity server account.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	DisplayName  string
	Disabled     bool
	CreatedAt    time.Time
}
