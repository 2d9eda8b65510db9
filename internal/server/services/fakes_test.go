package services

import (
	"context"
	"database/sql"
	"errors"
	"sync/atomic"
	"time"

	"github.com/budda-star9/reelforge/internal/dbx"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/budda-star9/reelforge/internal/server/passkey"
	"github.com/budda-star9/reelforge/internal/server/repositories/ceremonies"
	"github.com/budda-star9/reelforge/internal/server/repositories/credentials"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/google/uuid"
)

// --- provider ---

type fakeState struct {
	raw []byte
	err error
}

func (s fakeState) MarshalBinary() ([]byte, error) { return s.raw, s.err }

type fakeVerified struct {
	id  []byte
	err error
}

func (v fakeVerified) CredentialID() []byte           { return v.id }
func (v fakeVerified) MarshalBinary() ([]byte, error) { return []byte("pk"), v.err }

type fakeProvider struct {
	genErr    error
	stateErr  error
	decodeErr error
	verifyErr error
	marshErr  error

	gotUser uuid.UUID
}

func (p *fakeProvider) GenerateChallenge(userID uuid.UUID, _ string) (*protocol.CredentialCreation, passkey.State, error) {
	p.gotUser = userID
	if p.genErr != nil {
		return nil, nil, p.genErr
	}
	return &protocol.CredentialCreation{}, fakeState{raw: []byte("state"), err: p.stateErr}, nil
}

func (p *fakeProvider) DecodeState(raw []byte) (passkey.State, error) {
	if p.decodeErr != nil {
		return nil, p.decodeErr
	}
	return fakeState{raw: raw}, nil
}

func (p *fakeProvider) VerifyResponse(userID uuid.UUID, _ passkey.State, _ []byte) (passkey.Verified, error) {
	p.gotUser = userID
	if p.verifyErr != nil {
		return nil, p.verifyErr
	}
	return fakeVerified{id: []byte{0xca, 0xfe}, err: p.marshErr}, nil
}

// --- repositories ---

type countingCeremonies struct {
	ceremonies.Repository
	calls     atomic.Int32
	createErr error
	takeErr   error
	reapErr   error
}

func (c *countingCeremonies) Create(ctx context.Context, cer *models.Ceremony) error {
	c.calls.Add(1)
	if c.createErr != nil {
		return c.createErr
	}
	return c.Repository.Create(ctx, cer)
}

func (c *countingCeremonies) Take(ctx context.Context, id uuid.UUID, now time.Time) (*models.Ceremony, error) {
	c.calls.Add(1)
	if c.takeErr != nil {
		return nil, c.takeErr
	}
	return c.Repository.Take(ctx, id, now)
}

func (c *countingCeremonies) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	c.calls.Add(1)
	if c.reapErr != nil {
		return 0, c.reapErr
	}
	return c.Repository.DeleteExpired(ctx, now)
}

type failingCredentials struct {
	credentials.Repository
	err error
}

func (f *failingCredentials) Create(ctx context.Context, c *models.Credential) error {
	if f.err != nil {
		return f.err
	}
	return f.Repository.Create(ctx, c)
}

// fakeRepoManager serves fixed repositories regardless of the DBTX.
type fakeRepoManager struct {
	cer  *countingCeremonies
	cred *failingCredentials
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		cer:  &countingCeremonies{Repository: ceremonies.NewMemoryRepository()},
		cred: &failingCredentials{Repository: credentials.NewMemoryRepository()},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Ceremonies(dbx.DBTX) ceremonies.Repository    { return m.cer }
func (m *fakeRepoManager) Credentials(dbx.DBTX) credentials.Repository  { return m.cred }

var errBoom = errors.New("boom")
