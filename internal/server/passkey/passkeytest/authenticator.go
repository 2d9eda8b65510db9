// Package passkeytest provides a software authenticator for exercising
// registration ceremonies in tests.
package passkeytest

import (
	"encoding/json"
	"fmt"

	"github.com/descope/virtualwebauthn"
	"github.com/go-webauthn/webauthn/protocol"
)

// Relying party values used across tests.
const (
	RPID          = "localhost"
	RPDisplayName = "ReelForge"
	RPOrigin      = "http://localhost:3000"
)

// Authenticator signs attestations for a single EC2 credential.
type Authenticator struct {
	rp         virtualwebauthn.RelyingParty
	auth       virtualwebauthn.Authenticator
	credential virtualwebauthn.Credential
}

// NewAuthenticator returns an authenticator bound to the test relying party.
func NewAuthenticator() *Authenticator {
	return &Authenticator{
		rp:         virtualwebauthn.RelyingParty{Name: RPDisplayName, ID: RPID, Origin: RPOrigin},
		auth:       virtualwebauthn.NewAuthenticator(),
		credential: virtualwebauthn.NewCredential(virtualwebauthn.KeyTypeEC2),
	}
}

// NewUnverifiedAuthenticator returns an authenticator that reports user
// presence but not user verification.
func NewUnverifiedAuthenticator() *Authenticator {
	a := NewAuthenticator()
	a.auth = virtualwebauthn.NewAuthenticatorWithOptions(virtualwebauthn.AuthenticatorOptions{UserNotVerified: true})
	return a
}

// CredentialID is the id the authenticator reports for its credential.
func (a *Authenticator) CredentialID() []byte {
	return a.credential.ID
}

// Attest answers creation options with a JSON attestation response, the
// body a browser would post back.
func (a *Authenticator) Attest(creation *protocol.CredentialCreation) ([]byte, error) {
	optionsJSON, err := json.Marshal(creation.Response)
	if err != nil {
		return nil, fmt.Errorf("encode options: %w", err)
	}
	options, err := virtualwebauthn.ParseAttestationOptions(string(optionsJSON))
	if err != nil {
		return nil, fmt.Errorf("parse options: %w", err)
	}
	return []byte(virtualwebauthn.CreateAttestationResponse(a.rp, a.auth, a.credential, *options)), nil
}
