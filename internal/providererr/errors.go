// Package providererr enumerates the provider error kinds as sentinel
// errors checked with errors.Is. Each provider client wraps the concrete
// cause with one of these so callers above the guard boundary can branch
// on kind without caring which provider or endpoint failed.
package providererr

import "errors"

var (
	// ErrTransient covers network faults and 5xx responses.
	ErrTransient = errors.New("provider: transient error")
	// ErrRateLimited covers 429-equivalent responses.
	ErrRateLimited = errors.New("provider: rate limited")
	// ErrSchema covers a response that parsed as JSON but didn't match the
	// expected shape.
	ErrSchema = errors.New("provider: schema mismatch")
	// ErrDisabled covers a provider deliberately disabled by configuration
	// (e.g. missing API key).
	ErrDisabled = errors.New("provider: disabled")
	// ErrCircuitOpen covers a request rejected by an open circuit breaker.
	ErrCircuitOpen = errors.New("provider: circuit open")
)
