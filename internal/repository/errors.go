package repository

import "errors"

var (
	// ErrBrowserUnavailable means no browser execution context could be established.
	ErrBrowserUnavailable = errors.New("browser execution context unavailable")
	ErrNavigationTimeout  = errors.New("navigation timed out")
	ErrReadyTimeout       = errors.New("timed out waiting for page ready signal")
	ErrNavigationFailed   = errors.New("navigation failed")
	ErrHTTPStatus         = errors.New("unexpected http status")
	ErrNotFound           = errors.New("not found")
	// ErrMalformedSeed accompanies the decodable entries of a drain that also
	// popped payloads it could not decode.
	ErrMalformedSeed = errors.New("malformed queued seed")
)
