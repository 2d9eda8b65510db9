// Package services contains server-side business logic. This file
// implements RegistrationService, which runs passkey registration
// ceremonies: begin issues a challenge and parks the relying party state,
// complete consumes that state exactly once and stores the credential.
package services

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/config"
	"github.com/budda-star9/reelforge/internal/server/metrics"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/budda-star9/reelforge/internal/server/passkey"
	"github.com/budda-star9/reelforge/internal/server/repositories/repomanager"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
)

// BeginResult is what the client receives from Begin. The user id and the
// protocol state stay on the server.
type BeginResult struct {
	CeremonyID uuid.UUID
	Challenge  *protocol.CredentialCreation
}

// CompleteResult identifies the newly registered credential.
type CompleteResult struct {
	CredentialID []byte
	// Encoded is CredentialID in unpadded base64url.
	Encoded string
}

type RegistrationService struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
	provider    passkey.Provider
	ttl         time.Duration
	metrics     *metrics.Recorder
	now         func() time.Time
}

// NewRegistrationService wires the service to its store handle and
// verification primitive. rec may be nil.
func NewRegistrationService(db dbx.DBTX, m repomanager.RepositoryManager, p passkey.Provider, cfg *config.Config, rec *metrics.Recorder) *RegistrationService {
	ttl := cfg.CeremonyTTL
	if ttl <= 0 {
		ttl = common.DefaultCeremonyTTL
	}
	return &RegistrationService{
		db:          db,
		repomanager: m,
		provider:    p,
		ttl:         ttl,
		metrics:     rec,
		now:         time.Now,
	}
}

// Begin starts a ceremony for userID, minting a new user id when userID is
// uuid.Nil.
func (s *RegistrationService) Begin(ctx context.Context, userID uuid.UUID, displayName string) (*BeginResult, error) {
	res, outcome, err := s.begin(ctx, userID, displayName)
	s.metrics.CeremonyStarted(outcome)
	return res, err
}

func (s *RegistrationService) begin(ctx context.Context, userID uuid.UUID, displayName string) (*BeginResult, string, error) {
	if displayName == "" {
		return nil, metrics.OutcomeMalformed, fmt.Errorf("%w: empty display name", common.ErrMalformedInput)
	}
	if userID == uuid.Nil {
		userID = uuid.New()
	}

	challenge, state, err := s.provider.GenerateChallenge(userID, displayName)
	if err != nil {
		return nil, metrics.OutcomeChallengeFailed, fmt.Errorf("%w: %v", common.ErrChallengeGenerationFailed, err)
	}

	raw, err := state.MarshalBinary()
	if err != nil {
		return nil, metrics.OutcomeSerializationFailed, fmt.Errorf("%w: %v", common.ErrSerializationFailed, err)
	}

	ceremony := &models.Ceremony{
		ID:        uuid.New(),
		UserID:    userID,
		State:     raw,
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.repomanager.Ceremonies(s.db).Create(ctx, ceremony); err != nil {
		return nil, metrics.OutcomePersistenceFailed, fmt.Errorf("%w: %v", common.ErrPersistenceFailed, err)
	}

	return &BeginResult{CeremonyID: ceremony.ID, Challenge: challenge}, metrics.OutcomeOK, nil
}

// Complete consumes the ceremony and, if the response verifies, stores
// the credential. The ceremony is gone after any call that reaches the
// store, whatever the outcome.
func (s *RegistrationService) Complete(ctx context.Context, ceremonyID string, response []byte) (*CompleteResult, error) {
	res, outcome, err := s.complete(ctx, ceremonyID, response)
	s.metrics.CeremonyCompleted(outcome)
	return res, err
}

func (s *RegistrationService) complete(ctx context.Context, ceremonyID string, response []byte) (*CompleteResult, string, error) {
	id, err := uuid.Parse(ceremonyID)
	if err != nil {
		return nil, metrics.OutcomeMalformed, fmt.Errorf("%w: ceremony id: %v", common.ErrMalformedInput, err)
	}
	if len(response) == 0 {
		return nil, metrics.OutcomeMalformed, fmt.Errorf("%w: empty response", common.ErrMalformedInput)
	}

	ceremony, err := s.repomanager.Ceremonies(s.db).Take(ctx, id, s.now())
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, metrics.OutcomeNotFound, common.ErrCeremonyNotFound
		}
		return nil, metrics.OutcomePersistenceFailed, fmt.Errorf("%w: %v", common.ErrPersistenceFailed, err)
	}

	state, err := s.provider.DecodeState(ceremony.State)
	if err != nil {
		return nil, metrics.OutcomeStateCorrupted, fmt.Errorf("%w: %v", common.ErrStateCorrupted, err)
	}

	verified, err := s.provider.VerifyResponse(ceremony.UserID, state, response)
	if err != nil {
		return nil, metrics.OutcomeVerificationFailed, fmt.Errorf("%w: %v", common.ErrVerificationFailed, err)
	}

	publicKey, err := verified.MarshalBinary()
	if err != nil {
		return nil, metrics.OutcomeSerializationFailed, fmt.Errorf("%w: %v", common.ErrSerializationFailed, err)
	}

	credential := &models.Credential{
		ID:           uuid.New(),
		UserID:       ceremony.UserID,
		CredentialID: verified.CredentialID(),
		PublicKey:    publicKey,
		CreatedAt:    s.now(),
	}
	if err := s.repomanager.Credentials(s.db).Create(ctx, credential); err != nil {
		return nil, metrics.OutcomePersistenceFailed, fmt.Errorf("%w: %v", common.ErrPersistenceFailed, err)
	}

	return &CompleteResult{
		CredentialID: credential.CredentialID,
		Encoded:      base64.RawURLEncoding.EncodeToString(credential.CredentialID),
	}, metrics.OutcomeOK, nil
}

// ReapExpired deletes ceremonies whose expiry has passed. Expiry is already
// enforced on every read; this only reclaims storage.
func (s *RegistrationService) ReapExpired(ctx context.Context) (int64, error) {
	n, err := s.repomanager.Ceremonies(s.db).DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", common.ErrPersistenceFailed, err)
	}
	s.metrics.CeremoniesReaped(n)
	return n, nil
}
