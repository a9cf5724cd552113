package topology

import "errors"

var (
	// ErrUnknownKind is returned for host names without a recognised kind prefix.
	ErrUnknownKind = errors.New("unrecognized host kind prefix")
	// ErrAlreadyPlaced is returned when placing a node twice.
	ErrAlreadyPlaced = errors.New("node already placed")
	// ErrInvalidCoordinate is returned for negative coordinates.
	ErrInvalidCoordinate = errors.New("coordinate must not be negative")
	// ErrSelfLoop is returned for a link whose endpoints are equal.
	ErrSelfLoop = errors.New("link origin equals destination")
	// ErrDuplicateLink is returned when a topology links the same pair twice.
	ErrDuplicateLink = errors.New("duplicate link")
	// ErrUnknownEndpoint is returned when a link references a missing endpoint.
	ErrUnknownEndpoint = errors.New("unknown link endpoint")
	// ErrDuplicateName is returned when two endpoints share a name.
	ErrDuplicateName = errors.New("duplicate endpoint name")
	// ErrPlacementExhausted is returned when no free coordinate was found
	// within the retry bound. Duplicate coordinates break the emulator.
	ErrPlacementExhausted = errors.New("placement retries exhausted")
)
