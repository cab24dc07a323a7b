package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kurologin/internal/domain/login"
)

func newTestSession(phone string) *login.Session {
	return &login.Session{
		PhoneNumber: phone,
		DeviceID:    "device-" + phone,
		SecCode:     "sec-" + phone,
		Receipt: &login.DispatchReceipt{
			PhoneNumber: phone,
			DeviceID:    "device-" + phone,
			SecCode:     "sec-" + phone,
		},
	}
}

func TestCreateAndGet(t *testing.T) {
	store := NewMemorySessionStore(DefaultSessionTTL)
	ctx := context.Background()

	id, err := store.Create(ctx, newTestSession("13800000000"))
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "13800000000", got.PhoneNumber)
	assert.False(t, got.CreatedAt.IsZero())

	// lookup is read-only
	_, err = store.Get(ctx, id)
	assert.NoError(t, err)
}

func TestGetUnknownID(t *testing.T) {
	store := NewMemorySessionStore(DefaultSessionTTL)

	_, err := store.Get(context.Background(), "not-a-session")
	assert.ErrorIs(t, err, login.ErrSessionNotFound)
}

func TestDeleteRemovesSession(t *testing.T) {
	store := NewMemorySessionStore(DefaultSessionTTL)
	ctx := context.Background()

	id, err := store.Create(ctx, newTestSession("13800000000"))
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, id))

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, login.ErrSessionNotFound)

	// second delete reports not-found instead of corrupting state
	assert.ErrorIs(t, store.Delete(ctx, id), login.ErrSessionNotFound)
}

func TestSessionsFromSamePhoneAreIsolated(t *testing.T) {
	store := NewMemorySessionStore(DefaultSessionTTL)
	ctx := context.Background()

	first, err := store.Create(ctx, newTestSession("13800000000"))
	require.NoError(t, err)
	second, err := store.Create(ctx, newTestSession("13800000000"))
	require.NoError(t, err)

	assert.NotEqual(t, first, second)

	require.NoError(t, store.Delete(ctx, first))

	// deleting one never affects the other
	got, err := store.Get(ctx, second)
	require.NoError(t, err)
	assert.Equal(t, second, got.ID)
}

func TestExpiredSessionUnreachable(t *testing.T) {
	store := NewMemorySessionStore(5 * time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	id, err := store.Create(ctx, newTestSession("13800000000"))
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(6 * time.Minute) }

	_, err = store.Get(ctx, id)
	assert.ErrorIs(t, err, login.ErrSessionNotFound)
	assert.ErrorIs(t, store.Delete(ctx, id), login.ErrSessionNotFound)
}

func TestDeleteExpiredSweepsOnlyStale(t *testing.T) {
	store := NewMemorySessionStore(5 * time.Minute)
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	_, err := store.Create(ctx, newTestSession("13800000001"))
	require.NoError(t, err)
	_, err = store.Create(ctx, newTestSession("13800000002"))
	require.NoError(t, err)

	store.now = func() time.Time { return base.Add(6 * time.Minute) }
	fresh, err := store.Create(ctx, newTestSession("13800000003"))
	require.NoError(t, err)

	deleted, err := store.DeleteExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, fresh)
	assert.NoError(t, err)
}

func TestConcurrentDeleteHasSingleWinner(t *testing.T) {
	store := NewMemorySessionStore(DefaultSessionTTL)
	ctx := context.Background()

	id, err := store.Create(ctx, newTestSession("13800000000"))
	require.NoError(t, err)

	const callers = 16
	var wg sync.WaitGroup
	results := make(chan error, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- store.Delete(ctx, id)
		}()
	}
	wg.Wait()
	close(results)

	wins := 0
	for err := range results {
		if err == nil {
			wins++
		} else {
			assert.ErrorIs(t, err, login.ErrSessionNotFound)
		}
	}
	assert.Equal(t, 1, wins)
}

func TestConcurrentCreateAndGet(t *testing.T) {
	store := NewMemorySessionStore(DefaultSessionTTL)
	ctx := context.Background()

	const callers = 32
	var wg sync.WaitGroup
	ids := make(chan string, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := store.Create(ctx, newTestSession("13800000000"))
			if err == nil {
				ids <- id
			}
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool)
	for id := range ids {
		assert.False(t, seen[id], "duplicate session id %s", id)
		seen[id] = true

		_, err := store.Get(ctx, id)
		assert.NoError(t, err)
	}
	assert.Len(t, seen, callers)
}
