package redisession

import "errors"

var (
	// ErrNotConnected is returned when a session operation runs before Open
	// established a store handle.
	ErrNotConnected = errors.New("session store is not connected, call Open first")

	// ErrConnectionFailed wraps failures to establish, authenticate, or select
	// the logical database on the store connection.
	ErrConnectionFailed = errors.New("failed to connect to the session store")

	// ErrStoreNotReady is returned when the store did not become reachable
	// within the configured retry budget.
	ErrStoreNotReady = errors.New("session store did not become ready within the given time period")

	// ErrStoreFailed wraps individual set/delete/expire failures on an
	// established connection.
	ErrStoreFailed = errors.New("session store operation failed")

	// ErrIDGeneration indicates session identifier generation failed.
	ErrIDGeneration = errors.New("failed to generate session identifier")

	// ErrParsingConfig is returned when environment variables cannot be parsed
	// into the config struct.
	ErrParsingConfig = errors.New("failed to parse environment variables into config")

	// ErrHealthcheckFailed wraps a failed store liveness probe.
	ErrHealthcheckFailed = errors.New("session store healthcheck failed")
)
