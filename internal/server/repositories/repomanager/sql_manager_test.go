package repomanager

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/migrations"
	"github.com/budda-star9/reelforge/internal/server/repositories/ceremonies"
	"github.com/budda-star9/reelforge/internal/server/repositories/credentials"
	"github.com/pressly/goose/v3"
)

func newDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

func TestNew_Drivers(t *testing.T) {
	for _, driver := range []string{dbx.DriverPostgres, dbx.DriverSQLite} {
		m, err := New(driver)
		if err != nil {
			t.Fatalf("New(%q) error: %v", driver, err)
		}
		var _ RepositoryManager = m
	}

	if _, err := New("mysql"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestFactories_ReturnConcreteRepos(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := NewPostgresRepositoryManager()

	if _, ok := m.Ceremonies(db).(*ceremonies.SQLRepository); !ok {
		t.Fatal("Ceremonies() is not the SQL repository")
	}
	if _, ok := m.Credentials(db).(*credentials.SQLRepository); !ok {
		t.Fatal("Credentials() is not the SQL repository")
	}
}

func TestRunMigrations_DialectDirectory(t *testing.T) {
	tests := []struct {
		name    string
		m       *SQLRepositoryManager
		wantDir string
	}{
		{"postgres", NewPostgresRepositoryManager(), migrations.PostgresDir},
		{"sqlite", NewSQLiteRepositoryManager(), migrations.SQLiteDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _ := newDB(t)
			defer db.Close()

			orig := gooseUpContext
			gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
				if dir != tt.wantDir {
					return errors.New("unexpected dir " + dir)
				}
				if len(opts) != 0 {
					return errors.New("unexpected opts")
				}
				return nil
			}
			defer func() { gooseUpContext = orig }()

			if err := tt.m.RunMigrations(context.Background(), db); err != nil {
				t.Fatalf("RunMigrations error: %v", err)
			}
		})
	}
}

func TestRunMigrations_Error(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	orig := gooseUpContext
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return errors.New("boom")
	}
	defer func() { gooseUpContext = orig }()

	m := NewPostgresRepositoryManager()
	if err := m.RunMigrations(context.Background(), db); err == nil || err.Error() != "boom" {
		t.Fatalf("expected boom, got %v", err)
	}
}

func TestRunMigrations_BadDialect(t *testing.T) {
	db, _ := newDB(t)
	defer db.Close()

	m := &SQLRepositoryManager{dialect: "nosuchdb", dir: "x"}
	if err := m.RunMigrations(context.Background(), db); err == nil {
		t.Fatal("expected dialect error")
	}
}
