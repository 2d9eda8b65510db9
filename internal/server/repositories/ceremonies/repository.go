// Package ceremonies declares the store for in-flight registration
// ceremonies and its SQL and in-memory implementations.
package ceremonies

import (
	"context"
	"time"

	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/google/uuid"
)

// Repository persists ceremonies with expiry enforced at read time.
type Repository interface {
	// Create inserts a new ceremony. An existing ID is an error, never an
	// overwrite.
	Create(ctx context.Context, c *models.Ceremony) error

	// Take atomically deletes and returns the ceremony if it expires after
	// now. Absent, expired and already-taken ceremonies all yield
	// common.ErrorNotFound; concurrent takers of one ID see exactly one
	// success.
	Take(ctx context.Context, id uuid.UUID, now time.Time) (*models.Ceremony, error)

	// DeleteExpired removes ceremonies that expired at or before now and
	// reports how many were removed. Correctness never depends on it.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
