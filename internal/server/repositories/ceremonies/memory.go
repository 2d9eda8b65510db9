package ceremonies

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository is an in-process Repository for tests and local runs.
// The mutex makes the lookup, expiry check and delete in Take one step.
type MemoryRepository struct {
	mu   sync.Mutex
	rows map[uuid.UUID]models.Ceremony
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{rows: make(map[uuid.UUID]models.Ceremony)}
}

func (r *MemoryRepository) Create(ctx context.Context, c *models.Ceremony) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[c.ID]; ok {
		return fmt.Errorf("db error: %w: ceremony %s", common.ErrAlreadyExists, c.ID)
	}
	row := *c
	row.State = bytes.Clone(c.State)
	r.rows[c.ID] = row
	return nil
}

func (r *MemoryRepository) Take(ctx context.Context, id uuid.UUID, now time.Time) (*models.Ceremony, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	row, ok := r.rows[id]
	if !ok || row.Expired(now) {
		return nil, common.ErrorNotFound
	}
	delete(r.rows, id)
	return &row, nil
}

func (r *MemoryRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, row := range r.rows {
		if row.Expired(now) {
			delete(r.rows, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored ceremonies, expired ones included.
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rows)
}
