package models

import "time"

// PasswordReset is a pending reset issued by RequestPasswordReset.
type PasswordReset struct {
	UserID  string
	Token   string
	Expires time.Time
}
