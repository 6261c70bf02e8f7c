// Package pools owns the durable ResourcePool and Topic records that the
// waitlist and reservation allocators mutate. The sentinel errors below are
// shared across the allocation packages so handlers can translate each
// failure into a distinct user-facing message instead of one generic error.
package pools

import "errors"

// ErrPoolNotFound is returned when the referenced pool does not exist.
var ErrPoolNotFound = errors.New("pool not found")

// ErrTopicNotFound is returned when the referenced topic does not exist.
var ErrTopicNotFound = errors.New("topic not found")

// ErrWrongKind is returned when an operation targets a pool of the wrong
// kind, such as joining a reservation-set pool as if it were a waitlist.
var ErrWrongKind = errors.New("operation not valid for this pool kind")

// ErrInvalidPool is returned when a provisioning request is internally
// inconsistent (e.g. a reservation set without a per-topic capacity).
var ErrInvalidPool = errors.New("invalid pool configuration")

// ErrUnavailable is the storage/transport failure tier: the caller may
// retry, nothing about the request itself was wrong.
var ErrUnavailable = errors.New("storage unavailable")
