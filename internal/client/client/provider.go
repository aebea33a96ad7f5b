package client

import "context"

// Account is the provider's view of a signed-in user.
type Account struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Provider is an identity service used as a black box.
//
// CurrentAccount restores the provider's persisted session: it returns
// (nil, nil) when nobody is signed in or the session can no longer be
// renewed.
type Provider interface {
	SignUp(ctx context.Context, email, password, displayName string) (*Account, error)
	SignIn(ctx context.Context, email, password string) (*Account, error)
	SignOut(ctx context.Context) error
	SendPasswordReset(ctx context.Context, email string) error
	CurrentAccount(ctx context.Context) (*Account, error)
	Close() error
}
