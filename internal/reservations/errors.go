// Package reservations implements claim/confirm slot allocation for
// reservation-set pools. A participant first claims a seat on a topic,
// then a second party confirms it; only confirmed reservations count
// against the pool's per-topic cap.
package reservations

import "errors"

var (
	// ErrAlreadyReserved is returned when the participant already holds a
	// reservation (claimed or confirmed) on the topic.
	ErrAlreadyReserved = errors.New("participant already has a reservation for this topic")

	// ErrTopicFull is returned when the topic's confirmed count has reached
	// the pool's per-topic cap.
	ErrTopicFull = errors.New("topic has no remaining capacity")

	// ErrReservationNotFound is returned when no matching unconfirmed
	// reservation exists for Confirm, or no reservation at all for Release.
	ErrReservationNotFound = errors.New("reservation not found")
)
