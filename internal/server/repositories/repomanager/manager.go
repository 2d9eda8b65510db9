// Package repomanager vends repository implementations for the configured
// storage dialect and runs its schema migrations.
package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/repositories/ceremonies"
	"github.com/budda-star9/reelforge/internal/server/repositories/credentials"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Ceremonies(db dbx.DBTX) ceremonies.Repository
	Credentials(db dbx.DBTX) credentials.Repository
}

// New returns the manager for a storage driver name (see dbx.Driver*).
func New(driver string) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverPostgres:
		return NewPostgresRepositoryManager(), nil
	case dbx.DriverSQLite:
		return NewSQLiteRepositoryManager(), nil
	default:
		return nil, fmt.Errorf("unsupported storage driver %q", driver)
	}
}
