package waitlist

import (
	"time"

	"github.com/google/uuid"
)

// WaitlistEntry represents one participant's slot in a pool. Positions are
// 1-based and dense: the positions of a pool with N entries are exactly
// 1..N at every observable instant.
type WaitlistEntry struct {
	ID            uuid.UUID `json:"id" gorm:"type:uuid;primaryKey" db:"id"`
	PoolID        uuid.UUID `json:"pool_id" gorm:"type:uuid;not null;uniqueIndex:idx_waitlist_pool_participant;index:idx_waitlist_pool_position" db:"pool_id"`
	ParticipantID int64     `json:"participant_id" gorm:"not null;uniqueIndex:idx_waitlist_pool_participant" db:"participant_id"`
	Position      int       `json:"position" gorm:"not null;index:idx_waitlist_pool_position" db:"position"`
	JoinedAt      time.Time `json:"joined_at" gorm:"not null" db:"joined_at"`
	CreatedAt     time.Time `json:"created_at" gorm:"autoCreateTime" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" gorm:"autoUpdateTime" db:"updated_at"`
}

func (WaitlistEntry) TableName() string {
	return "waitlist_entries"
}

// Request/Response Models

// JoinRequest carries the participant joining a waitlist. The participant
// ID is an opaque identifier already authenticated by the bot layer.
type JoinRequest struct {
	ParticipantID int64 `json:"participant_id" validate:"required,gt=0"`
}

// JoinResponse reports the assigned slot
type JoinResponse struct {
	PoolID        uuid.UUID `json:"pool_id"`
	ParticipantID int64     `json:"participant_id"`
	Position      int       `json:"position"`
	Total         int       `json:"total"`
	JoinedAt      time.Time `json:"joined_at"`
}

// Slot is one (position, participant) pair of the ordered view
type Slot struct {
	Position      int   `json:"position"`
	ParticipantID int64 `json:"participant_id"`
}

// ViewResponse is the ordered read view of a waitlist
type ViewResponse struct {
	PoolID uuid.UUID `json:"pool_id"`
	Count  int       `json:"count"`
	Slots  []Slot    `json:"slots"`
}

// StatsResponse summarizes occupancy for presentation upstream
type StatsResponse struct {
	PoolID      uuid.UUID `json:"pool_id"`
	MemberCount int       `json:"member_count"`
	Capacity    *int      `json:"capacity,omitempty"`
	Remaining   *int      `json:"remaining,omitempty"`
}

// Redis Key Helpers

// GetViewKey returns the cache key for a pool's ordered view
func GetViewKey(poolID uuid.UUID) string {
	return "waitlist:view:" + poolID.String()
}

// GetStatsKey returns the cache key for a pool's stats
func GetStatsKey(poolID uuid.UUID) string {
	return "waitlist:stats:" + poolID.String()
}
