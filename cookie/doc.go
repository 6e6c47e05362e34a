// Package cookie provides a small cookie manager used by the session
// backend to invalidate the client-held session cookie when a session is
// destroyed. Deleting server-side state without clearing the client's
// reference would let the stale cookie revive the session through the
// read-repair path, so Delete issues an empty value with a past expiration.
//
// The manager carries no signing or encryption: session identifiers are
// opaque values owned by the host application, which secures its own
// transport.
package cookie
