package repository

import (
	"context"
	"ctchen222/tic-tac-toe-history/internal/game"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
)

func sampleState(t *testing.T) *game.State {
	t.Helper()
	s := game.New()
	for _, i := range []int{4, 0, 8} {
		require.NoError(t, s.PlaceMark(i))
	}
	require.NoError(t, s.JumpTo(2))
	s.ToggleSort()
	return s
}

// exerciseRepository runs the behavior every SessionRepository must share.
func exerciseRepository(t *testing.T, repo SessionRepository) {
	ctx := context.Background()

	_, err := repo.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	want := sampleState(t)
	require.NoError(t, repo.Save(ctx, "s1", want.Snapshot()))

	got, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, want.View(), got.View())
	assert.Equal(t, want.History(), got.History())

	require.NoError(t, want.PlaceMark(1))
	require.NoError(t, repo.Save(ctx, "s1", want.Snapshot()))
	got, err = repo.FindByID(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 4, got.Len(), "save overwrites the branch")

	require.NoError(t, repo.Delete(ctx, "s1"))
	_, err = repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepository(t *testing.T) {
	exerciseRepository(t, NewMemorySessionRepository(time.Minute))
}

func TestMemorySessionRepositoryExpires(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	repo := newMemorySessionRepository(time.Minute, func() time.Time { return now })

	require.NoError(t, repo.Save(ctx, "s1", game.New().Snapshot()))

	now = now.Add(59 * time.Second)
	_, err := repo.FindByID(ctx, "s1")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = repo.FindByID(ctx, "s1")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestMemorySessionRepositoryRejectsCorruptData(t *testing.T) {
	repo := newMemorySessionRepository(time.Minute, time.Now)
	repo.entries["bad"] = memoryEntry{data: []byte(`{"moves":[],"step":0}`), expiresAt: time.Now().Add(time.Minute)}

	_, err := repo.FindByID(context.Background(), "bad")
	assert.ErrorIs(t, err, game.ErrCorruptSnapshot)
}

func TestRedisSessionRepository(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	ctx := context.Background()

	container, err := tcredis.Run(ctx, "redis:7-alpine")
	if err != nil {
		t.Skipf("redis container unavailable: %v", err)
	}
	t.Cleanup(func() {
		if err := testcontainers.TerminateContainer(container); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	uri, err := container.ConnectionString(ctx)
	require.NoError(t, err)
	opts, err := redis.ParseURL(uri)
	require.NoError(t, err)
	rdb := redis.NewClient(opts)
	t.Cleanup(func() { rdb.Close() })

	exerciseRepository(t, NewSessionRepository(rdb, time.Minute))

	t.Run("expiry is set", func(t *testing.T) {
		repo := NewSessionRepository(rdb, time.Minute)
		require.NoError(t, repo.Save(ctx, "ttl", game.New().Snapshot()))

		ttl, err := rdb.TTL(ctx, sessionKey("ttl")).Result()
		require.NoError(t, err)
		assert.Greater(t, ttl, time.Duration(0))
		assert.LessOrEqual(t, ttl, time.Minute)
	})

	t.Run("corrupt snapshot", func(t *testing.T) {
		require.NoError(t, rdb.HSet(ctx, sessionKey("bad"), fieldSnapshot, `{"moves":[]}`).Err())
		_, err := NewSessionRepository(rdb, time.Minute).FindByID(ctx, "bad")
		assert.ErrorIs(t, err, game.ErrCorruptSnapshot)
	})
}
