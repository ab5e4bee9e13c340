package session

import (
	"context"
	"io"
	"testing"
	"time"

	"projexa/internal/domain"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return mr, NewRedisStore(client, logger)
}

func TestRedisStore_SaveGetDelete(t *testing.T) {
	_, store := setupRedis(t)
	ctx := context.Background()

	sess := New(42, domain.RoleAdmin, time.Hour)
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, sess.Token)
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, domain.RoleAdmin, got.Role)

	require.NoError(t, store.Delete(ctx, sess.Token))
	_, err = store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_Expires(t *testing.T) {
	mr, store := setupRedis(t)
	ctx := context.Background()

	sess := New(1, domain.RoleUser, time.Minute)
	require.NoError(t, store.Save(ctx, sess))
	assert.True(t, mr.Exists(sessionKey(sess.Token)))

	mr.FastForward(2 * time.Minute)

	_, err := store.Get(ctx, sess.Token)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisStore_CorruptEntry(t *testing.T) {
	mr, store := setupRedis(t)
	require.NoError(t, mr.Set(sessionKey("bad"), "{not json"))

	_, err := store.Get(context.Background(), "bad")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, mr.Exists(sessionKey("bad")))
}

func TestRedisStore_RejectsExpiredSession(t *testing.T) {
	_, store := setupRedis(t)
	sess := &domain.Session{Token: "t", UserID: 1, ExpiresAt: time.Now().Add(-time.Second)}
	assert.Error(t, store.Save(context.Background(), sess))
}

func TestMemoryStore_Expiry(t *testing.T) {
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sess := &domain.Session{Token: "abc", UserID: 7, Role: domain.RoleUser, ExpiresAt: now.Add(time.Minute)}
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.UserID)

	store.now = func() time.Time { return now.Add(time.Minute) }
	_, err = store.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = store.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}
