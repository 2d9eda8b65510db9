// Package credentials declares the store for verified passkey credentials.
package credentials

import (
	"context"

	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/google/uuid"
)

// Repository defines operations over registered credentials. Records are
// immutable once written.
type Repository interface {
	// Create stores a verified credential. A second record with the same
	// (UserID, CredentialID) yields common.ErrAlreadyExists.
	Create(ctx context.Context, c *models.Credential) error

	// ListByUser returns the user's credentials oldest first. An unknown
	// user yields an empty slice.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Credential, error)
}
