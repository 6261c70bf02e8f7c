package waitlist

import (
	"context"
	"errors"
	"fmt"
	"time"

	"slotly/internal/pools"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface defines the contract for waitlist data operations.
// Join and Leave are transactional: they lock the pool row for the duration
// of the read-check-write sequence so the database backs up the gateway's
// in-process serialization.
type Repository interface {
	Join(ctx context.Context, poolID uuid.UUID, participantID int64) (*WaitlistEntry, int, error)
	Leave(ctx context.Context, poolID uuid.UUID, participantID int64) error
	List(ctx context.Context, poolID uuid.UUID) ([]WaitlistEntry, error)
	Count(ctx context.Context, poolID uuid.UUID) (int, error)
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new waitlist repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Join inserts the participant at position count+1, enforcing kind,
// membership and capacity inside one transaction. Returns the new entry
// and the resulting member count.
func (r *repository) Join(ctx context.Context, poolID uuid.UUID, participantID int64) (*WaitlistEntry, int, error) {
	var entry *WaitlistEntry
	var total int

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool pools.ResourcePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pool, "id = ?", poolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pools.ErrPoolNotFound
			}
			return err
		}
		if pool.Kind != pools.KindWaitlist {
			return pools.ErrWrongKind
		}

		var existing int64
		if err := tx.Model(&WaitlistEntry{}).
			Where("pool_id = ? AND participant_id = ?", poolID, participantID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		var count int64
		if err := tx.Model(&WaitlistEntry{}).
			Where("pool_id = ?", poolID).
			Count(&count).Error; err != nil {
			return err
		}
		if pool.Capacity != nil && count >= int64(*pool.Capacity) {
			return ErrFull
		}

		entry = &WaitlistEntry{
			ID:            uuid.New(),
			PoolID:        poolID,
			ParticipantID: participantID,
			Position:      int(count) + 1,
			JoinedAt:      time.Now().UTC(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return err
		}
		total = int(count) + 1
		return nil
	})

	if err != nil {
		if isExpected(err) {
			return nil, 0, err
		}
		return nil, 0, fmt.Errorf("%w: join waitlist: %v", pools.ErrUnavailable, err)
	}
	return entry, total, nil
}

// Leave removes the participant's entry and compacts the remaining
// positions with a single bulk decrement, all in one transaction. No
// reader outside the transaction ever observes a gap.
func (r *repository) Leave(ctx context.Context, poolID uuid.UUID, participantID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool pools.ResourcePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pool, "id = ?", poolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pools.ErrPoolNotFound
			}
			return err
		}
		if pool.Kind != pools.KindWaitlist {
			return pools.ErrWrongKind
		}

		var entry WaitlistEntry
		if err := tx.Where("pool_id = ? AND participant_id = ?", poolID, participantID).
			First(&entry).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotMember
			}
			return err
		}

		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}

		return tx.Model(&WaitlistEntry{}).
			Where("pool_id = ? AND position > ?", poolID, entry.Position).
			UpdateColumn("position", gorm.Expr("position - 1")).Error
	})

	if err != nil {
		if isExpected(err) {
			return err
		}
		return fmt.Errorf("%w: leave waitlist: %v", pools.ErrUnavailable, err)
	}
	return nil
}

// List returns a pool's entries ordered by position
func (r *repository) List(ctx context.Context, poolID uuid.UUID) ([]WaitlistEntry, error) {
	var entries []WaitlistEntry
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list waitlist: %v", pools.ErrUnavailable, err)
	}
	return entries, nil
}

// Count returns the current member count of a pool
func (r *repository) Count(ctx context.Context, poolID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&WaitlistEntry{}).
		Where("pool_id = ?", poolID).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count waitlist: %v", pools.ErrUnavailable, err)
	}
	return int(count), nil
}

func isExpected(err error) bool {
	return errors.Is(err, ErrAlreadyMember) ||
		errors.Is(err, ErrNotMember) ||
		errors.Is(err, ErrFull) ||
		errors.Is(err, pools.ErrPoolNotFound) ||
		errors.Is(err, pools.ErrWrongKind)
}
