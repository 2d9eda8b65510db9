// Package passkey adapts go-webauthn to the registration ceremony: it
// issues creation options, carries the relying party's per-ceremony state
// as an opaque binary blob, and verifies the authenticator's attestation.
package passkey

import (
	"encoding"
	"errors"
	"fmt"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/google/uuid"
)

// userName is the account name shown by authenticators. Users are
// anonymous until a profile layer exists.
const userName = "creator"

// State is the relying party's state for one ceremony. Callers persist
// its binary form and hand it back through Provider.DecodeState.
type State interface {
	encoding.BinaryMarshaler
}

// Verified is a credential that passed attestation verification.
type Verified interface {
	encoding.BinaryMarshaler
	CredentialID() []byte
}

// Provider is the verification primitive used by the registration service.
type Provider interface {
	GenerateChallenge(userID uuid.UUID, displayName string) (*protocol.CredentialCreation, State, error)
	DecodeState(raw []byte) (State, error)
	VerifyResponse(userID uuid.UUID, state State, response []byte) (Verified, error)
}

// Config describes the relying party.
type Config struct {
	RPID          string
	RPDisplayName string
	RPOrigins     []string
	// Timeout is advertised to the client and enforced on verification.
	Timeout time.Duration
}

var (
	errMissingRPID    = errors.New("relying party id is required")
	errMissingOrigins = errors.New("at least one relying party origin is required")
)

var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error
	if encMode, err = (cbor.EncOptions{Time: cbor.TimeRFC3339Nano}).EncMode(); err != nil {
		panic(err)
	}
	if decMode, err = (cbor.DecOptions{}).DecMode(); err != nil {
		panic(err)
	}
}

// WebAuthn is the go-webauthn backed Provider.
type WebAuthn struct {
	wa *webauthn.WebAuthn
}

var _ Provider = (*WebAuthn)(nil)

// New validates cfg and builds the provider. Registrations discourage
// resident keys and require user verification.
func New(cfg Config) (*WebAuthn, error) {
	if cfg.RPID == "" {
		return nil, fmt.Errorf("webauthn config: %w", errMissingRPID)
	}
	if len(cfg.RPOrigins) == 0 {
		return nil, fmt.Errorf("webauthn config: %w", errMissingOrigins)
	}

	waCfg := &webauthn.Config{
		RPID:          cfg.RPID,
		RPDisplayName: cfg.RPDisplayName,
		RPOrigins:     cfg.RPOrigins,
		AuthenticatorSelection: protocol.AuthenticatorSelection{
			RequireResidentKey: protocol.ResidentKeyNotRequired(),
			ResidentKey:        protocol.ResidentKeyRequirementDiscouraged,
			UserVerification:   protocol.VerificationRequired,
		},
	}
	if cfg.Timeout > 0 {
		waCfg.Timeouts = webauthn.TimeoutsConfig{
			Registration: webauthn.TimeoutConfig{
				Enforce:    true,
				Timeout:    cfg.Timeout,
				TimeoutUVD: cfg.Timeout,
			},
		}
	}

	wa, err := webauthn.New(waCfg)
	if err != nil {
		return nil, fmt.Errorf("webauthn config: %w", err)
	}
	return &WebAuthn{wa: wa}, nil
}

func (w *WebAuthn) GenerateChallenge(userID uuid.UUID, displayName string) (*protocol.CredentialCreation, State, error) {
	user := &passkeyUser{id: userID, displayName: displayName}

	creation, session, err := w.wa.BeginRegistration(user)
	if err != nil {
		return nil, nil, describe(err)
	}
	return creation, &SessionState{data: *session}, nil
}

func (w *WebAuthn) DecodeState(raw []byte) (State, error) {
	var data webauthn.SessionData
	if err := decMode.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	if data.Challenge == "" {
		return nil, errors.New("decode session: missing challenge")
	}
	return &SessionState{data: data}, nil
}

func (w *WebAuthn) VerifyResponse(userID uuid.UUID, state State, response []byte) (Verified, error) {
	s, ok := state.(*SessionState)
	if !ok {
		return nil, fmt.Errorf("unexpected state type %T", state)
	}

	parsed, err := protocol.ParseCredentialCreationResponseBytes(response)
	if err != nil {
		return nil, fmt.Errorf("parse response: %w", describe(err))
	}

	cred, err := w.wa.CreateCredential(&passkeyUser{id: userID}, s.data, parsed)
	if err != nil {
		return nil, fmt.Errorf("verify attestation: %w", describe(err))
	}
	return &VerifiedCredential{cred: cred}, nil
}

// SessionState is the go-webauthn session data of one ceremony.
type SessionState struct {
	data webauthn.SessionData
}

func (s *SessionState) MarshalBinary() ([]byte, error) {
	return encMode.Marshal(s.data)
}

// Challenge returns the base64url challenge issued to the client.
func (s *SessionState) Challenge() string {
	return s.data.Challenge
}

type VerifiedCredential struct {
	cred *webauthn.Credential
}

func (v *VerifiedCredential) CredentialID() []byte {
	return v.cred.ID
}

func (v *VerifiedCredential) Credential() *webauthn.Credential {
	return v.cred
}

func (v *VerifiedCredential) MarshalBinary() ([]byte, error) {
	return encMode.Marshal(v.cred)
}

// DecodeCredential restores a credential stored from
// VerifiedCredential.MarshalBinary.
func DecodeCredential(raw []byte) (*webauthn.Credential, error) {
	var cred webauthn.Credential
	if err := decMode.Unmarshal(raw, &cred); err != nil {
		return nil, fmt.Errorf("decode credential: %w", err)
	}
	return &cred, nil
}

type passkeyUser struct {
	id          uuid.UUID
	displayName string
}

func (u *passkeyUser) WebAuthnID() []byte {
	id := u.id
	return id[:]
}

func (u *passkeyUser) WebAuthnName() string {
	return userName
}

func (u *passkeyUser) WebAuthnDisplayName() string {
	return u.displayName
}

func (u *passkeyUser) WebAuthnCredentials() []webauthn.Credential {
	return nil
}

// describe appends go-webauthn's developer detail, which Error() omits.
func describe(err error) error {
	var perr *protocol.Error
	if errors.As(err, &perr) && perr.DevInfo != "" {
		return fmt.Errorf("%w (%s)", err, perr.DevInfo)
	}
	return err
}
