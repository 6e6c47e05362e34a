// Package redisession stores opaque, serialized session payloads in a
// TTL-capable key-value store, so session data survives across multiple
// application processes sharing one store. It implements the classic
// open/read/write/destroy/gc session-handler contract on top of Redis,
// replacing filesystem- or database-backed session storage.
//
// The handler encodes three behavioral contracts:
//
//   - Key derivation: session keys are the configured prefix concatenated
//     with the host-owned session identifier, nothing more.
//   - TTL policy: every write stamps the configured TTL and every
//     successful read refreshes it, so the TTL behaves as an idle timeout
//     and expiry is handled entirely by the store. GC is a true no-op.
//   - Read-repair: a read that finds no record writes an empty placeholder
//     and re-fetches, up to twice, so workers racing to first-read a fresh
//     session ID converge on an existing key instead of erroring.
//
// # Usage
//
// Resolve configuration, create the handler and open the connection:
//
//	cfg, err := redisession.LoadConfig()
//	if err != nil {
//	    // handle error
//	}
//
//	h := redisession.New(cfg)
//	if err := h.Open(ctx); err != nil {
//	    // fatal: do not proceed with a missing session store
//	}
//	defer h.Close()
//
//	if err := h.Write(ctx, sessionID, payload); err != nil {
//	    // handle error
//	}
//	payload, _ = h.Read(ctx, sessionID)
//
// To clear the client's cookie when a session is destroyed, configure a
// cookie manager:
//
//	h := redisession.New(cfg, redisession.WithCookieManager(cookie.New()))
//	err := h.Destroy(ctx, w, sessionID)
//
// # Errors
//
// Open fails with ErrConnectionFailed, write/destroy failures wrap
// ErrStoreFailed, and operations invoked before Open return
// ErrNotConnected. A missing record is never an error; Read reports it as
// an empty payload.
package redisession
