package pools

import (
	"time"

	"github.com/google/uuid"
)

// PoolKind distinguishes ordered waitlists from per-topic reservation sets.
type PoolKind string

const (
	KindWaitlist       PoolKind = "WAITLIST"
	KindReservationSet PoolKind = "RESERVATION_SET"
)

// IsValid checks if the pool kind is a known value
func (k PoolKind) IsValid() bool {
	switch k {
	case KindWaitlist, KindReservationSet:
		return true
	default:
		return false
	}
}

// ResourcePool is the durable record of a capacity-bounded collection.
// Capacity is immutable after creation; nil means unbounded and is only
// meaningful for waitlists. MaxPerUnit is the per-topic capacity and is
// only meaningful for reservation sets.
type ResourcePool struct {
	ID           uuid.UUID `json:"id" gorm:"type:uuid;primaryKey" db:"id"`
	Kind         PoolKind  `json:"kind" gorm:"type:varchar(20);not null;index" db:"kind"`
	Capacity     *int      `json:"capacity,omitempty" db:"capacity"`
	MaxPerUnit   int       `json:"max_per_unit,omitempty" gorm:"not null;default:0" db:"max_per_unit"`
	OwnerEventID uuid.UUID `json:"owner_event_id" gorm:"type:uuid;not null;index" db:"owner_event_id"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime" db:"updated_at"`
}

// TableName is pinned because other repositories reference this table in raw SQL
func (ResourcePool) TableName() string {
	return "resource_pools"
}

// Topic is a sub-resource of a RESERVATION_SET pool; participants claim
// reservations against a topic, never against the pool directly.
type Topic struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey" db:"id"`
	PoolID      uuid.UUID `json:"pool_id" gorm:"type:uuid;not null;index" db:"pool_id"`
	Title       string    `json:"title" gorm:"type:varchar(255);not null" db:"title"`
	Description *string   `json:"description,omitempty" gorm:"type:varchar(1000)" db:"description"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime" db:"created_at"`
}

func (Topic) TableName() string {
	return "topics"
}

// IsBounded returns true when the pool has a capacity limit
func (p *ResourcePool) IsBounded() bool {
	return p.Capacity != nil
}

// Request/Response Models

// CreatePoolRequest provisions a pool for an event's booking mode
type CreatePoolRequest struct {
	Kind         PoolKind  `json:"kind" validate:"required"`
	Capacity     *int      `json:"capacity,omitempty" validate:"omitempty,min=1"`
	MaxPerUnit   int       `json:"max_per_unit,omitempty" validate:"omitempty,min=1"`
	OwnerEventID uuid.UUID `json:"owner_event_id" validate:"required"`
}

// AddTopicRequest adds a topic to a reservation-set pool
type AddTopicRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=255"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
}

// PoolResponse is the external view of a pool
type PoolResponse struct {
	ID           uuid.UUID `json:"id"`
	Kind         PoolKind  `json:"kind"`
	Capacity     *int      `json:"capacity,omitempty"`
	MaxPerUnit   int       `json:"max_per_unit,omitempty"`
	OwnerEventID uuid.UUID `json:"owner_event_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TopicResponse is the external view of a topic
type TopicResponse struct {
	ID          uuid.UUID `json:"id"`
	PoolID      uuid.UUID `json:"pool_id"`
	Title       string    `json:"title"`
	Description *string   `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func toPoolResponse(p *ResourcePool) *PoolResponse {
	return &PoolResponse{
		ID:           p.ID,
		Kind:         p.Kind,
		Capacity:     p.Capacity,
		MaxPerUnit:   p.MaxPerUnit,
		OwnerEventID: p.OwnerEventID,
		CreatedAt:    p.CreatedAt,
	}
}

func toTopicResponse(t *Topic) *TopicResponse {
	return &TopicResponse{
		ID:          t.ID,
		PoolID:      t.PoolID,
		Title:       t.Title,
		Description: t.Description,
		CreatedAt:   t.CreatedAt,
	}
}
