package redisession_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/redisession"
	"github.com/dmitrymomot/redisession/cookie"
)

func testConfig() redisession.Config {
	return redisession.Config{
		KeyPrefix:  "SESS:",
		TTL:        30 * time.Minute,
		CookieName: "test-sid",
	}
}

func setupHandler(t *testing.T) (*redisession.Handler, *redisession.MemoryStore) {
	t.Helper()

	store := redisession.NewMemoryStore(0)
	t.Cleanup(func() { _ = store.Close() })

	handler := redisession.New(testConfig(), redisession.WithStore(store))
	return handler, store
}

func TestHandler_WriteRead(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip is byte exact", func(t *testing.T) {
		handler, _ := setupHandler(t)
		id := uuid.NewString()
		payload := []byte("user|s:5:\"admin\";count|i:42;")

		require.NoError(t, handler.Write(ctx, id, payload))

		got, err := handler.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, payload, got)
	})

	t.Run("write is a full overwrite", func(t *testing.T) {
		handler, _ := setupHandler(t)
		id := uuid.NewString()

		require.NoError(t, handler.Write(ctx, id, []byte("first")))
		require.NoError(t, handler.Write(ctx, id, []byte("second")))

		got, err := handler.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("second"), got)
	})

	t.Run("write stamps the configured ttl", func(t *testing.T) {
		handler, store := setupHandler(t)
		id := uuid.NewString()

		require.NoError(t, handler.Write(ctx, id, []byte("x=1")))

		ttl, ok := store.TTL("SESS:" + id)
		require.True(t, ok)
		assert.InDelta(t, 30*time.Minute, ttl, float64(2*time.Second))
	})
}

func TestHandler_Read(t *testing.T) {
	ctx := context.Background()

	t.Run("first read synthesizes an empty record", func(t *testing.T) {
		handler, store := setupHandler(t)
		id := uuid.NewString()

		got, err := handler.Read(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got)

		// The key must exist afterwards with the configured TTL so that
		// subsequent writes have a record to extend.
		_, found, err := store.Get(ctx, "SESS:"+id)
		require.NoError(t, err)
		assert.True(t, found)

		ttl, ok := store.TTL("SESS:" + id)
		require.True(t, ok)
		assert.InDelta(t, 30*time.Minute, ttl, float64(2*time.Second))
	})

	t.Run("read refreshes the ttl", func(t *testing.T) {
		handler, store := setupHandler(t)
		id := uuid.NewString()
		key := "SESS:" + id

		require.NoError(t, handler.Write(ctx, id, []byte("x=1")))
		require.NoError(t, store.Expire(ctx, key, time.Minute))

		got, err := handler.Read(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, []byte("x=1"), got)

		ttl, ok := store.TTL(key)
		require.True(t, ok)
		assert.InDelta(t, 30*time.Minute, ttl, float64(2*time.Second))
	})

	t.Run("repair loop is capped at two attempts", func(t *testing.T) {
		store := &lossyStore{}
		handler := redisession.New(testConfig(), redisession.WithStore(store))

		got, err := handler.Read(context.Background(), "lost")
		require.NoError(t, err)
		assert.Empty(t, got)

		// Initial fetch plus one re-fetch per repair attempt.
		assert.Equal(t, 3, store.gets)
		assert.Equal(t, 2, store.sets)
	})

	t.Run("store failures degrade to a miss", func(t *testing.T) {
		handler := redisession.New(testConfig(),
			redisession.WithStore(&failingStore{}))

		got, err := handler.Read(context.Background(), "broken")
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestHandler_Destroy(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the record", func(t *testing.T) {
		handler, store := setupHandler(t)
		id := uuid.NewString()

		require.NoError(t, handler.Write(ctx, id, []byte("x=1")))
		require.NoError(t, handler.Destroy(ctx, nil, id))

		_, found, err := store.Get(ctx, "SESS:"+id)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("clears the client cookie", func(t *testing.T) {
		store := redisession.NewMemoryStore(0)
		t.Cleanup(func() { _ = store.Close() })

		handler := redisession.New(testConfig(),
			redisession.WithStore(store),
			redisession.WithCookieManager(cookie.New()),
		)
		id := uuid.NewString()
		require.NoError(t, handler.Write(ctx, id, []byte("x=1")))

		w := httptest.NewRecorder()
		require.NoError(t, handler.Destroy(ctx, w, id))

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "test-sid", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Equal(t, -1, cookies[0].MaxAge)
		assert.True(t, cookies[0].Expires.Before(time.Now()))
	})

	t.Run("surfaces store failures", func(t *testing.T) {
		handler := redisession.New(testConfig(),
			redisession.WithStore(&failingStore{}))

		err := handler.Destroy(ctx, nil, "any")
		assert.ErrorIs(t, err, redisession.ErrStoreFailed)
	})
}

func TestHandler_Write_Errors(t *testing.T) {
	handler := redisession.New(testConfig(),
		redisession.WithStore(&failingStore{}))

	err := handler.Write(context.Background(), "any", []byte("x=1"))
	assert.ErrorIs(t, err, redisession.ErrStoreFailed)
}

func TestHandler_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("open is idempotent", func(t *testing.T) {
		connects := 0
		handler := redisession.New(testConfig(),
			redisession.WithConnectFunc(func(ctx context.Context, cfg redisession.Config) (redisession.Store, error) {
				connects++
				return redisession.NewMemoryStore(0), nil
			}),
		)

		require.NoError(t, handler.Open(ctx))
		require.NoError(t, handler.Open(ctx))
		assert.Equal(t, 1, connects)
	})

	t.Run("close is safe to repeat and to call unopened", func(t *testing.T) {
		handler := redisession.New(testConfig())

		require.NoError(t, handler.Close())

		handler, _ = setupHandler(t)
		require.NoError(t, handler.Close())
		require.NoError(t, handler.Close())
	})

	t.Run("operations before open fail loudly", func(t *testing.T) {
		handler := redisession.New(testConfig(),
			redisession.WithConnectFunc(func(ctx context.Context, cfg redisession.Config) (redisession.Store, error) {
				return redisession.NewMemoryStore(0), nil
			}),
		)

		_, err := handler.Read(ctx, "any")
		assert.ErrorIs(t, err, redisession.ErrNotConnected)
		assert.ErrorIs(t, handler.Write(ctx, "any", nil), redisession.ErrNotConnected)
		assert.ErrorIs(t, handler.Destroy(ctx, nil, "any"), redisession.ErrNotConnected)
	})

	t.Run("connect failures wrap ErrConnectionFailed", func(t *testing.T) {
		handler := redisession.New(testConfig(),
			redisession.WithConnectFunc(func(ctx context.Context, cfg redisession.Config) (redisession.Store, error) {
				return nil, errors.New("connection refused")
			}),
		)

		err := handler.Open(ctx)
		assert.ErrorIs(t, err, redisession.ErrConnectionFailed)
	})

	t.Run("reopen after close reconnects", func(t *testing.T) {
		connects := 0
		handler := redisession.New(testConfig(),
			redisession.WithConnectFunc(func(ctx context.Context, cfg redisession.Config) (redisession.Store, error) {
				connects++
				return redisession.NewMemoryStore(0), nil
			}),
		)

		require.NoError(t, handler.Open(ctx))
		require.NoError(t, handler.Close())
		require.NoError(t, handler.Open(ctx))
		assert.Equal(t, 2, connects)
	})
}

func TestHandler_GC(t *testing.T) {
	ctx := context.Background()
	handler, store := setupHandler(t)
	id := uuid.NewString()

	require.NoError(t, handler.Write(ctx, id, []byte("x=1")))

	// GC must never enumerate or delete keys; expiry is the store's job.
	handler.GC(time.Nanosecond)

	_, found, err := store.Get(ctx, "SESS:"+id)
	require.NoError(t, err)
	assert.True(t, found)
}

// lossyStore accepts writes but never returns data, driving the read-repair
// loop to its attempt budget.
type lossyStore struct {
	gets int
	sets int
}

func (s *lossyStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.gets++
	return nil, false, nil
}

func (s *lossyStore) Set(ctx context.Context, key string, value []byte) error {
	s.sets++
	return nil
}

func (s *lossyStore) Delete(ctx context.Context, key string) error { return nil }

func (s *lossyStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return nil
}

func (s *lossyStore) Ping(ctx context.Context) error { return nil }
func (s *lossyStore) Close() error                   { return nil }

// failingStore fails every command, simulating connectivity loss after the
// connection was established.
type failingStore struct{}

var errConnLost = errors.New("connection lost")

func (s *failingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return nil, false, errConnLost
}

func (s *failingStore) Set(ctx context.Context, key string, value []byte) error {
	return errConnLost
}

func (s *failingStore) Delete(ctx context.Context, key string) error { return errConnLost }

func (s *failingStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return errConnLost
}

func (s *failingStore) Ping(ctx context.Context) error { return errConnLost }
func (s *failingStore) Close() error                   { return errConnLost }
