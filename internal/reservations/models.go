package reservations

import (
	"time"

	"github.com/google/uuid"
)

// Reservation records one participant's claim on a topic. PoolID is
// denormalized from the topic so pool-wide queries and teardown skip a join.
type Reservation struct {
	ID            uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TopicID       uuid.UUID  `json:"topic_id" gorm:"type:uuid;not null;uniqueIndex:idx_reservations_topic_participant;index:idx_reservations_topic"`
	PoolID        uuid.UUID  `json:"pool_id" gorm:"type:uuid;not null;index:idx_reservations_pool"`
	ParticipantID int64      `json:"participant_id" gorm:"not null;uniqueIndex:idx_reservations_topic_participant"`
	Confirmed     bool       `json:"confirmed" gorm:"not null;default:false"`
	ConfirmedBy   *int64     `json:"confirmed_by,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

func (Reservation) TableName() string {
	return "reservations"
}

// Request/Response DTOs

type ClaimRequest struct {
	ParticipantID int64 `json:"participant_id" validate:"required,gt=0"`
}

type ConfirmRequest struct {
	ConfirmerID int64 `json:"confirmer_id" validate:"required,gt=0"`
}

type ReservationResponse struct {
	ID            uuid.UUID  `json:"id"`
	TopicID       uuid.UUID  `json:"topic_id"`
	PoolID        uuid.UUID  `json:"pool_id"`
	ParticipantID int64      `json:"participant_id"`
	Confirmed     bool       `json:"confirmed"`
	ConfirmedBy   *int64     `json:"confirmed_by,omitempty"`
	ConfirmedAt   *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TopicReservationsResponse lists a topic's reservations together with
// how many confirmed seats remain under the pool's per-topic cap.
type TopicReservationsResponse struct {
	TopicID      uuid.UUID             `json:"topic_id"`
	PoolID       uuid.UUID             `json:"pool_id"`
	MaxPerTopic  int                   `json:"max_per_topic"`
	Confirmed    int                   `json:"confirmed"`
	Remaining    int                   `json:"remaining"`
	Reservations []ReservationResponse `json:"reservations"`
}

// TopicSummary is one row of the pool-wide availability overview.
type TopicSummary struct {
	TopicID   uuid.UUID `json:"topic_id"`
	Title     string    `json:"title"`
	Confirmed int       `json:"confirmed"`
	Claimed   int       `json:"claimed"`
	Remaining int       `json:"remaining"`
}

type PoolReservationsResponse struct {
	PoolID      uuid.UUID      `json:"pool_id"`
	MaxPerTopic int            `json:"max_per_topic"`
	Topics      []TopicSummary `json:"topics"`
}

func toReservationResponse(r *Reservation) ReservationResponse {
	return ReservationResponse{
		ID:            r.ID,
		TopicID:       r.TopicID,
		PoolID:        r.PoolID,
		ParticipantID: r.ParticipantID,
		Confirmed:     r.Confirmed,
		ConfirmedBy:   r.ConfirmedBy,
		ConfirmedAt:   r.ConfirmedAt,
		CreatedAt:     r.CreatedAt,
	}
}

// Cache key helpers

func GetTopicKey(topicID uuid.UUID) string {
	return "slotly:reservations:topic:" + topicID.String()
}

func GetPoolKey(poolID uuid.UUID) string {
	return "slotly:reservations:pool:" + poolID.String()
}
