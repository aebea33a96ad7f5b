// Package repomanager hands out repositories bound to a database handle, so
// services can use the same repository types on *sql.DB and inside dbx.WithTx.
package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/easydrink/internal/dbx"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/resets"
	"github.com/dmitrijs2005/easydrink/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	RefreshTokens(db dbx.DBTX) refreshtokens.Repository
	PasswordResets(db dbx.DBTX) resets.Repository
}
