package ceremonies

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/budda-star9/reelforge/internal/common"
	"github.com/budda-star9/reelforge/internal/server/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCeremony(expiresAt time.Time) *models.Ceremony {
	return &models.Ceremony{ID: uuid.New(), UserID: uuid.New(), State: []byte("s"), ExpiresAt: expiresAt}
}

func TestMemory_TakeOnce(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	c := newCeremony(now.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, c))

	got, err := repo.Take(ctx, c.ID, now)
	require.NoError(t, err)
	assert.Equal(t, c.UserID, got.UserID)
	assert.Equal(t, []byte("s"), got.State)

	_, err = repo.Take(ctx, c.ID, now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestMemory_CreateDoesNotOverwrite(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	c := newCeremony(time.Now().Add(time.Minute))
	require.NoError(t, repo.Create(ctx, c))

	dup := *c
	dup.UserID = uuid.New()
	assert.ErrorIs(t, repo.Create(ctx, &dup), common.ErrAlreadyExists)

	got, err := repo.Take(ctx, c.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, c.UserID, got.UserID)
}

func TestMemory_ExpiredIsNotFoundAndStays(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	c := newCeremony(now)
	require.NoError(t, repo.Create(ctx, c))

	_, err := repo.Take(ctx, c.ID, now)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, 1, repo.Len(), "expiry is enforced at read, not by deletion")

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Zero(t, repo.Len())
}

func TestMemory_DeleteExpiredKeepsLive(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	require.NoError(t, repo.Create(ctx, newCeremony(now.Add(-time.Second))))
	live := newCeremony(now.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, live))

	n, err := repo.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = repo.Take(ctx, live.ID, now)
	assert.NoError(t, err)
}

func TestMemory_ConcurrentTakeSingleWinner(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()
	now := time.Now()

	c := newCeremony(now.Add(time.Minute))
	require.NoError(t, repo.Create(ctx, c))

	var wins, misses atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.Take(ctx, c.ID, now); err == nil {
				wins.Add(1)
			} else if assert.ErrorIs(t, err, common.ErrorNotFound) {
				misses.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 1, wins.Load())
	assert.EqualValues(t, 31, misses.Load())
}

func TestMemory_StoredStateIsCopied(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	c := newCeremony(time.Now().Add(time.Minute))
	require.NoError(t, repo.Create(ctx, c))
	c.State[0] = 'X'

	got, err := repo.Take(ctx, c.ID, time.Now())
	require.NoError(t, err)
	assert.Equal(t, []byte("s"), got.State)
}

func TestMemory_CanceledContext(t *testing.T) {
	repo := NewMemoryRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, repo.Create(ctx, newCeremony(time.Now())), context.Canceled)
	_, err := repo.Take(ctx, uuid.New(), time.Now())
	assert.ErrorIs(t, err, context.Canceled)
}
