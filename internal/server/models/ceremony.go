// Package models defines server-side data models persisted in the database.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Ceremony is one in-flight passkey registration. It is created by Begin,
// consumed exactly once by Complete, and dead once ExpiresAt has passed.
type Ceremony struct {
	// ID is the opaque ceremony identifier handed to the client.
	ID uuid.UUID
	// UserID is the user the resulting credential will belong to.
	UserID uuid.UUID
	// State is the verification library's protocol state, never introspected.
	State []byte
	// ExpiresAt is creation time plus the ceremony TTL.
	ExpiresAt time.Time
}

// Expired reports whether the ceremony can no longer be taken at now.
func (c *Ceremony) Expired(now time.Time) bool {
	return !c.ExpiresAt.After(now)
}
