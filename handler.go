package redisession

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/dmitrymomot/redisession/cookie"
)

// readRepairAttempts caps how many times Read synthesizes an empty record
// and re-fetches after a miss. There is no backoff between attempts; under
// sustained store unavailability every miss costs up to two extra writes,
// so high-traffic deployments may want to rate-limit misses upstream.
const readRepairAttempts = 2

// ConnectFunc establishes the store connection used by Open. The default
// connects to Redis per the handler config.
type ConnectFunc func(ctx context.Context, cfg Config) (Store, error)

// Handler implements the host-facing session-handler contract
// (open/read/write/destroy/gc) on top of a TTL-capable key-value store.
//
// One Handler is meant to serve one session-handling context; the store
// handle is the only shared mutable field and is set once by Open and
// cleared once by Close. Two workers racing to first-read the same fresh
// session ID may both run the read-repair path; that race is tolerated
// rather than eliminated, since closing it would require a distributed
// lock.
type Handler struct {
	mu      sync.Mutex
	cfg     Config
	store   Store
	connect ConnectFunc
	logger  *slog.Logger
	cookies *cookie.Manager
}

// New creates a session handler. The configuration is resolved once here;
// zero-valued fields receive the documented defaults.
func New(cfg Config, opts ...Option) *Handler {
	h := &Handler{
		cfg:    cfg.applyDefaults(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.connect == nil {
		h.connect = func(ctx context.Context, cfg Config) (Store, error) {
			return Connect(ctx, cfg)
		}
	}

	return h
}

// Open establishes the store connection. It is idempotent: when a handle
// already exists it succeeds immediately without reconnecting. A failure to
// connect, authenticate or select the logical database is fatal for the
// current request's session handling; the host must not proceed with a
// missing store.
func (h *Handler) Open(ctx context.Context) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store != nil {
		return nil
	}

	store, err := h.connect(ctx, h.cfg)
	if err != nil {
		return errors.Join(ErrConnectionFailed, err)
	}

	h.store = store
	return nil
}

// Close releases the store handle. It always succeeds and is safe to call
// multiple times or without a prior Open.
func (h *Handler) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil
	}

	if err := h.store.Close(); err != nil {
		h.logger.Warn("closing session store failed", slog.Any("error", err))
	}
	h.store = nil
	return nil
}

// Read returns the serialized payload for the session, or an empty payload
// when none exists; a miss is never an error.
//
// When the fetched value is empty or absent, Read repairs the record by
// writing an empty payload and re-fetching, up to readRepairAttempts times.
// In a multi-worker deployment several workers can race to first-read a
// brand-new session ID before any writer stored it; synthesizing the record
// gives subsequent writes something to extend the TTL of instead of turning
// every first read into a hard error. The final value may still be empty,
// e.g. when the client presented a cookie no record ever matched.
//
// Every successful read counts as keep-alive activity: once a record is
// known to exist its TTL is refreshed to the configured value.
//
// The only error Read returns is ErrNotConnected, for the programming error
// of calling it before Open; store-level failures are logged and treated as
// a miss.
func (h *Handler) Read(ctx context.Context, sessionID string) ([]byte, error) {
	store, err := h.currentStore()
	if err != nil {
		return nil, err
	}

	key := DeriveKey(sessionID, h.cfg.KeyPrefix)

	value, found := h.fetch(ctx, store, key)

	for attempt := 0; attempt < readRepairAttempts && len(value) == 0; attempt++ {
		if err := h.Write(ctx, sessionID, nil); err != nil {
			h.logger.ErrorContext(ctx, "session repair write failed",
				slog.String("key", key), slog.Any("error", err))
		}
		value, found = h.fetch(ctx, store, key)
	}

	if found {
		if err := store.Expire(ctx, key, h.cfg.TTL); err != nil {
			h.logger.ErrorContext(ctx, "session ttl refresh failed",
				slog.String("key", key), slog.Any("error", err))
		}
	}

	return value, nil
}

// fetch wraps Store.Get, degrading store failures to a miss.
func (h *Handler) fetch(ctx context.Context, store Store, key string) ([]byte, bool) {
	value, found, err := store.Get(ctx, key)
	if err != nil {
		h.logger.ErrorContext(ctx, "session read failed",
			slog.String("key", key), slog.Any("error", err))
		return nil, false
	}
	return value, found
}

// Write stores the payload under the session key as a full overwrite and
// stamps the configured TTL. Both steps are attempted even if the first
// fails; failures are surfaced wrapped in ErrStoreFailed and are not
// retried here.
func (h *Handler) Write(ctx context.Context, sessionID string, payload []byte) error {
	store, err := h.currentStore()
	if err != nil {
		return err
	}

	key := DeriveKey(sessionID, h.cfg.KeyPrefix)

	setErr := store.Set(ctx, key, payload)
	expireErr := store.Expire(ctx, key, h.cfg.TTL)

	if err := errors.Join(setErr, expireErr); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}
	return nil
}

// Destroy deletes the session record and, when a cookie manager is
// configured and w is non-nil, invalidates the client-held session cookie.
// Without the cookie invalidation a stale cookie would be presented again
// and revive the session through the read-repair path.
func (h *Handler) Destroy(ctx context.Context, w http.ResponseWriter, sessionID string) error {
	store, err := h.currentStore()
	if err != nil {
		return err
	}

	key := DeriveKey(sessionID, h.cfg.KeyPrefix)

	if err := store.Delete(ctx, key); err != nil {
		return errors.Join(ErrStoreFailed, err)
	}

	if h.cookies != nil && w != nil {
		h.cookies.Delete(w, h.cfg.CookieName)
	}

	return nil
}

// GC satisfies the host's garbage-collection hook and does nothing:
// expiration is delegated entirely to the store's native TTL, stamped on
// every read and write. Enumerating or deleting keys here would duplicate
// the store's own expiration and risk double-deletion races.
func (h *Handler) GC(maxLifetime time.Duration) {}

func (h *Handler) currentStore() (Store, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.store == nil {
		return nil, ErrNotConnected
	}
	return h.store, nil
}
