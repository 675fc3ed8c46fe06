package rtp

import errors "golang.org/x/xerrors"

// Sentinel error kinds recognized by the router: recovered locally,
// surfaced only via diagnostic counters.
var (
	// ErrMalformedHeader is returned when a datagram is too short, or its
	// version field is not 2.
	ErrMalformedHeader = errors.New("rtp: malformed header")

	// ErrShortBuffer is returned when a header claims more CSRCs or
	// extension data than the datagram actually contains.
	ErrShortBuffer = errors.New("rtp: short buffer")
)
