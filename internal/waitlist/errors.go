package waitlist

import "errors"

// ErrAlreadyMember is returned when a participant who already holds a slot
// tries to join the same waitlist again. The pool is left untouched.
var ErrAlreadyMember = errors.New("participant already on waitlist")

// ErrNotMember is returned when a leave targets a participant who holds no
// slot in the pool.
var ErrNotMember = errors.New("participant not on waitlist")

// ErrFull is returned when a bounded waitlist is at capacity.
var ErrFull = errors.New("waitlist is full")
