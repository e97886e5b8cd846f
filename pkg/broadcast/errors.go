package broadcast

import "errors"

var (
	// ErrNotConfigured is returned when broadcasting is used without
	// configuring a broadcaster on the app.
	ErrNotConfigured = errors.New("broadcast: not configured")

	// ErrChannelForbidden is returned when the authorizer rejects a
	// private or presence channel subscription.
	ErrChannelForbidden = errors.New("broadcast: channel forbidden")

	// ErrNoAuthorizer is returned when a private or presence channel is
	// requested but no authorizer was configured.
	ErrNoAuthorizer = errors.New("broadcast: no authorizer configured")

	// ErrInvalidChannel is returned for empty or malformed channel names.
	ErrInvalidChannel = errors.New("broadcast: invalid channel name")

	// ErrAlreadyStarted is returned when starting a running broadcaster.
	ErrAlreadyStarted = errors.New("broadcast: already started")

	// ErrNotStarted is returned when stopping a broadcaster that is not
	// running.
	ErrNotStarted = errors.New("broadcast: not started")

	// ErrHealthcheckFailed wraps failures of the broadcaster healthcheck.
	ErrHealthcheckFailed = errors.New("broadcast: healthcheck failed")
)
