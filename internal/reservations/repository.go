package reservations

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

// Repository interface defines the contract for reservation data operations.
// Each mutation runs as one transaction holding the owning pool's row lock,
// so capacity checks and writes are atomic per pool.
type Repository interface {
	Claim(ctx context.Context, topicID uuid.UUID, participantID int64) (*Reservation, error)
	Confirm(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*Reservation, error)
	Release(ctx context.Context, topicID uuid.UUID, participantID int64) error

	ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*Reservation, error)
	ListByPool(ctx context.Context, poolID uuid.UUID) ([]*Reservation, error)
	CountConfirmed(ctx context.Context, topicID uuid.UUID) (int, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository creates a new reservation repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// Claim inserts an unconfirmed reservation. Only confirmed reservations
// count against the per-topic cap, so a claim succeeds as long as confirmed
// occupancy leaves room and the participant holds no reservation yet.
func (r *repository) Claim(ctx context.Context, topicID uuid.UUID, participantID int64) (*Reservation, error) {
	var reservation *Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		topic, pool, err := lockTopicPool(tx, topicID)
		if err != nil {
			return err
		}

		var existing int64
		if err := tx.Model(&Reservation{}).
			Where("topic_id = ? AND participant_id = ?", topicID, participantID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrAlreadyReserved
		}

		var confirmed int64
		if err := tx.Model(&Reservation{}).
			Where("topic_id = ? AND confirmed = ?", topicID, true).
			Count(&confirmed).Error; err != nil {
			return err
		}
		if int(confirmed) >= pool.MaxPerUnit {
			return ErrTopicFull
		}

		reservation = &Reservation{
			ID:            uuid.New(),
			TopicID:       topicID,
			PoolID:        topic.PoolID,
			ParticipantID: participantID,
		}
		return tx.Create(reservation).Error
	})
	if err != nil {
		if isExpected(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: claim reservation: %v", pools.ErrUnavailable, err)
	}
	return reservation, nil
}

// Confirm flips an unconfirmed reservation to confirmed, re-checking the
// cap first: other confirmations may have landed since the claim.
func (r *repository) Confirm(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*Reservation, error) {
	var reservation *Reservation
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, pool, err := lockTopicPool(tx, topicID)
		if err != nil {
			return err
		}

		var target Reservation
		err = tx.Where("topic_id = ? AND participant_id = ? AND confirmed = ?",
			topicID, participantID, false).
			First(&target).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrReservationNotFound
			}
			return err
		}

		var confirmed int64
		if err := tx.Model(&Reservation{}).
			Where("topic_id = ? AND confirmed = ?", topicID, true).
			Count(&confirmed).Error; err != nil {
			return err
		}
		if int(confirmed) >= pool.MaxPerUnit {
			return ErrTopicFull
		}

		now := time.Now().UTC()
		target.Confirmed = true
		target.ConfirmedBy = &confirmerID
		target.ConfirmedAt = &now
		if err := tx.Model(&target).Updates(map[string]interface{}{
			"confirmed":    true,
			"confirmed_by": confirmerID,
			"confirmed_at": now,
		}).Error; err != nil {
			return err
		}
		reservation = &target
		return nil
	})
	if err != nil {
		if isExpected(err) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: confirm reservation: %v", pools.ErrUnavailable, err)
	}
	return reservation, nil
}

// Release drops a reservation regardless of its confirmation state
func (r *repository) Release(ctx context.Context, topicID uuid.UUID, participantID int64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, _, err := lockTopicPool(tx, topicID); err != nil {
			return err
		}

		result := tx.Where("topic_id = ? AND participant_id = ?", topicID, participantID).
			Delete(&Reservation{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrReservationNotFound
		}
		return nil
	})
	if err != nil {
		if isExpected(err) {
			return err
		}
		return fmt.Errorf("%w: release reservation: %v", pools.ErrUnavailable, err)
	}
	return nil
}

// ListByTopic lists a topic's reservations in claim order
func (r *repository) ListByTopic(ctx context.Context, topicID uuid.UUID) ([]*Reservation, error) {
	var reservations []*Reservation
	err := r.db.WithContext(ctx).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list reservations by topic: %v", pools.ErrUnavailable, err)
	}
	return reservations, nil
}

// ListByPool lists every reservation in a pool across all its topics
func (r *repository) ListByPool(ctx context.Context, poolID uuid.UUID) ([]*Reservation, error) {
	var reservations []*Reservation
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("created_at ASC").
		Find(&reservations).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list reservations by pool: %v", pools.ErrUnavailable, err)
	}
	return reservations, nil
}

// CountConfirmed counts a topic's confirmed reservations
func (r *repository) CountConfirmed(ctx context.Context, topicID uuid.UUID) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Reservation{}).
		Where("topic_id = ? AND confirmed = ?", topicID, true).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("%w: count confirmed: %v", pools.ErrUnavailable, err)
	}
	return int(count), nil
}

// lockTopicPool resolves the topic, then takes the owning pool's row lock.
// Everything a reservation mutation reads afterwards is stable until commit.
func lockTopicPool(tx *gorm.DB, topicID uuid.UUID) (*pools.Topic, *pools.ResourcePool, error) {
	var topic pools.Topic
	if err := tx.First(&topic, "id = ?", topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pools.ErrTopicNotFound
		}
		return nil, nil, err
	}

	var pool pools.ResourcePool
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&pool, "id = ?", topic.PoolID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, pools.ErrPoolNotFound
		}
		return nil, nil, err
	}
	if pool.Kind != pools.KindReservationSet {
		return nil, nil, pools.ErrWrongKind
	}
	return &topic, &pool, nil
}

func isExpected(err error) bool {
	return errors.Is(err, ErrAlreadyReserved) ||
		errors.Is(err, ErrTopicFull) ||
		errors.Is(err, ErrReservationNotFound) ||
		errors.Is(err, pools.ErrTopicNotFound) ||
		errors.Is(err, pools.ErrPoolNotFound) ||
		errors.Is(err, pools.ErrWrongKind)
}
