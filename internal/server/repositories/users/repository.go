// Package users stores identity server accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/easydrink/internal/server/models"
)

type Repository interface {
	// Create inserts user, whose ID the caller assigns, and fills CreatedAt. A taken email
	// yields common.ErrorAlreadyExists.
	Create(ctx context.Context, user *models.User) (*models.User, error)
	// GetByEmail and GetByID return common.ErrorNotFound when absent.
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByID(ctx context.Context, id string) (*models.User, error)
}
