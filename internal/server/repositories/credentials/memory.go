package credentials

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps credentials in process, grouped by user.
type MemoryRepository struct {
	mu     sync.RWMutex
	byUser map[uuid.UUID][]models.Credential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byUser: make(map[uuid.UUID][]models.Credential)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Credential) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byUser[c.UserID] {
		if bytes.Equal(existing.CredentialID, c.CredentialID) {
			return fmt.Errorf("db error: %w: credential for user %s", common.ErrAlreadyExists, c.UserID)
		}
	}
	row := *c
	row.CredentialID = bytes.Clone(c.CredentialID)
	row.PublicKey = bytes.Clone(c.PublicKey)
	r.byUser[c.UserID] = append(r.byUser[c.UserID], row)
	return nil
}

func (r *MemoryRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Credential, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows := r.byUser[userID]
	result := make([]*models.Credential, 0, len(rows))
	for i := range rows {
		c := rows[i]
		result = append(result, &c)
	}
	// Same order as the SQL store: created_at at millisecond precision, then id.
	sort.Slice(result, func(i, j int) bool {
		ti, tj := result[i].CreatedAt.UnixMilli(), result[j].CreatedAt.UnixMilli()
		if ti != tj {
			return ti < tj
		}
		return bytes.Compare(result[i].ID[:], result[j].ID[:]) < 0
	})
	return result, nil
}
