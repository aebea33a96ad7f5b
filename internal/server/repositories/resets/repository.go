// Package resets stores password reset tokens.
package resets

import (
	"context"

	"github.com/dmitrijs2005/easydrink/internal/server/models"
)

type Repository interface {
	// Create replaces any pending reset for the same user.
	Create(ctx context.Context, reset *models.PasswordReset) error
}
