package models

import (
	"time"

	"github.com/google/uuid"
)

// Credential is a finalized passkey. Immutable once written.
type Credential struct {
	ID     uuid.UUID
	UserID uuid.UUID
	// CredentialID is the authenticator-issued credential identifier.
	CredentialID []byte
	// PublicKey is the serialized verified credential (public key, sign
	// counter, flags, attestation) as produced by the passkey package.
	PublicKey []byte
	CreatedAt time.Time
}
