package repomanager

import (
	"context"
	"database/sql"

	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/repositories/ceremonies"
	"github.com/budda-star9/reelforge/internal/server/repositories/credentials"
)

// MemoryRepositoryManager hands out the same in-process repositories
// regardless of the DBTX it is given. Used by service tests.
type MemoryRepositoryManager struct {
	ceremonies  *ceremonies.MemoryRepository
	credentials *credentials.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		ceremonies:  ceremonies.NewMemoryRepository(),
		credentials: credentials.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) RunMigrations(context.Context, *sql.DB) error {
	return nil
}

func (m *MemoryRepositoryManager) Ceremonies(dbx.DBTX) ceremonies.Repository {
	return m.ceremonies
}

func (m *MemoryRepositoryManager) Credentials(dbx.DBTX) credentials.Repository {
	return m.credentials
}

// CeremonyStore exposes the concrete ceremony store for inspection.
func (m *MemoryRepositoryManager) CeremonyStore() *ceremonies.MemoryRepository {
	return m.ceremonies
}
