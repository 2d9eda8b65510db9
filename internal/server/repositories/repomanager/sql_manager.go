package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/migrations"
	"github.com/budda-star9/reelforge/internal/server/repositories/ceremonies"
	"github.com/budda-star9/reelforge/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
)

// SQLRepositoryManager vends SQL-backed repositories. The repositories
// share one statement set; only the goose dialect and the migrations
// directory differ between Postgres and SQLite.
type SQLRepositoryManager struct {
	dialect string
	dir     string
}

// NewPostgresRepositoryManager returns a manager for pgx-backed Postgres.
func NewPostgresRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: "pgx", dir: migrations.PostgresDir}
}

// NewSQLiteRepositoryManager returns a manager for the embedded SQLite driver.
func NewSQLiteRepositoryManager() *SQLRepositoryManager {
	return &SQLRepositoryManager{dialect: "sqlite3", dir: migrations.SQLiteDir}
}

func (m *SQLRepositoryManager) Ceremonies(db dbx.DBTX) ceremonies.Repository {
	return ceremonies.NewSQLRepository(db)
}

func (m *SQLRepositoryManager) Credentials(db dbx.DBTX) credentials.Repository {
	return credentials.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations applies the embedded migrations for the manager's dialect.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(m.dialect); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, m.dir); err != nil {
		return err
	}
	return nil
}
