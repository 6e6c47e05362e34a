package redisession

import (
	"log/slog"

	"github.com/dmitrymomot/redisession/cookie"
)

// Option is a functional option for configuring the Handler.
type Option func(*Handler)

// WithStore injects an already connected store. Open then finds an existing
// handle and returns immediately.
func WithStore(store Store) Option {
	return func(h *Handler) {
		h.store = store
	}
}

// WithConnectFunc overrides how Open establishes the store connection.
func WithConnectFunc(fn ConnectFunc) Option {
	return func(h *Handler) {
		h.connect = fn
	}
}

// WithLogger sets the logger for store failures degraded to misses on the
// read path. Defaults to a discard handler.
func WithLogger(logger *slog.Logger) Option {
	return func(h *Handler) {
		h.logger = logger
	}
}

// WithCookieManager enables session-cookie invalidation on Destroy. The
// cookie name comes from the handler config.
func WithCookieManager(mgr *cookie.Manager) Option {
	return func(h *Handler) {
		h.cookies = mgr
	}
}
