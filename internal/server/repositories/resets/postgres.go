package resets

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/easydrink/internal/dbx"
	"github.com/dmitrijs2005/easydrink/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, reset *models.PasswordReset) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM password_resets WHERE user_id = $1`, reset.UserID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	query := `
		INSERT INTO password_resets (token, user_id, expires_at)
		VALUES ($1, $2, $3)
	`
	if _, err := r.db.ExecContext(ctx, query, reset.Token, reset.UserID, reset.Expires); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
