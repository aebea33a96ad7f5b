// Package refreshtokens stores the refresh tokens issued at sign-in.
package refreshtokens

import (
	"context"

	"github.com/dmitrijs2005/easydrink/internal/server/models"
)

// Repository defines operations for issuing, rotating and revoking refresh tokens.
type Repository interface {
	Create(ctx context.Context, token *models.RefreshToken) error

	// Consume deletes the token and returns the row it held, so a token can be
	// redeemed at most once. It returns common.ErrorNotFound when absent.
	Consume(ctx context.Context, token string) (*models.RefreshToken, error)

	// Delete removes a token. Deleting a non-existent token is not an error.
	Delete(ctx context.Context, token string) error
}
