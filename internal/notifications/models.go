package notifications

import (
	"time"

	"github.com/google/uuid"
)

// AllocationEventType enumerates the events the bot layer turns into chat
// messages. Delivery itself happens downstream; this service only emits.
type AllocationEventType string

const (
	EventSlotJoined           AllocationEventType = "slot.joined"
	EventSlotLeft             AllocationEventType = "slot.left"
	EventReservationClaimed   AllocationEventType = "reservation.claimed"
	EventReservationConfirmed AllocationEventType = "reservation.confirmed"
	EventReservationReleased  AllocationEventType = "reservation.released"
	EventPoolDeleted          AllocationEventType = "pool.deleted"
	EventTopicDeleted         AllocationEventType = "topic.deleted"
)

// AllocationEvent is the wire payload published to Kafka. Messages are
// keyed by pool ID so all events of one pool land on the same partition
// in order.
type AllocationEvent struct {
	ID            uuid.UUID           `json:"id"`
	Type          AllocationEventType `json:"type"`
	PoolID        uuid.UUID           `json:"pool_id"`
	TopicID       *uuid.UUID          `json:"topic_id,omitempty"`
	ParticipantID *int64              `json:"participant_id,omitempty"`
	ConfirmedBy   *int64              `json:"confirmed_by,omitempty"`
	Position      *int                `json:"position,omitempty"`
	OccurredAt    time.Time           `json:"occurred_at"`
}

// NewAllocationEvent builds an event with a fresh ID and timestamp
func NewAllocationEvent(eventType AllocationEventType, poolID uuid.UUID) *AllocationEvent {
	return &AllocationEvent{
		ID:         uuid.New(),
		Type:       eventType,
		PoolID:     poolID,
		OccurredAt: time.Now().UTC(),
	}
}

// WithTopic attaches the topic the event refers to
func (e *AllocationEvent) WithTopic(topicID uuid.UUID) *AllocationEvent {
	e.TopicID = &topicID
	return e
}

// WithParticipant attaches the participant the event refers to
func (e *AllocationEvent) WithParticipant(participantID int64) *AllocationEvent {
	e.ParticipantID = &participantID
	return e
}

// WithConfirmer attaches who confirmed the reservation
func (e *AllocationEvent) WithConfirmer(confirmerID int64) *AllocationEvent {
	e.ConfirmedBy = &confirmerID
	return e
}

// WithPosition attaches the assigned waitlist position
func (e *AllocationEvent) WithPosition(position int) *AllocationEvent {
	e.Position = &position
	return e
}
