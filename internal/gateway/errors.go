package gateway

import "errors"

var (
	// ErrAuth indicates the gateway rejected the credential, or no
	// credential was configured at all.
	ErrAuth = errors.New("gateway authentication failed")

	// ErrRateLimited indicates the gateway throttled the request.
	ErrRateLimited = errors.New("gateway rate limit exceeded")

	// ErrMalformed indicates the gateway response could not be
	// decoded, or contained no generated text.
	ErrMalformed = errors.New("malformed gateway response")

	// ErrUnavailable indicates the gateway could not be reached.
	ErrUnavailable = errors.New("gateway unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("gateway request timed out")
)
