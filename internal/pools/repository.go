package pools

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository interface defines the contract for pool data operations
type Repository interface {
	CreatePool(ctx context.Context, pool *ResourcePool) error
	GetPool(ctx context.Context, id uuid.UUID) (*ResourcePool, error)
	DeletePool(ctx context.Context, id uuid.UUID) error

	AddTopic(ctx context.Context, topic *Topic) error
	GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error)
	ListTopics(ctx context.Context, poolID uuid.UUID) ([]Topic, error)
	DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error

	ResolveTopicPool(ctx context.Context, topicID uuid.UUID) (uuid.UUID, error)
}

// repository implements the Repository interface
type repository struct {
	db *gorm.DB
}

// NewRepository creates a new pool repository
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// CreatePool persists a new pool record
func (r *repository) CreatePool(ctx context.Context, pool *ResourcePool) error {
	if err := r.db.WithContext(ctx).Create(pool).Error; err != nil {
		return fmt.Errorf("%w: create pool: %v", ErrUnavailable, err)
	}
	return nil
}

// GetPool gets a pool by ID
func (r *repository) GetPool(ctx context.Context, id uuid.UUID) (*ResourcePool, error) {
	var pool ResourcePool
	err := r.db.WithContext(ctx).First(&pool, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPoolNotFound
		}
		return nil, fmt.Errorf("%w: get pool: %v", ErrUnavailable, err)
	}
	return &pool, nil
}

// DeletePool removes a pool together with every entry, reservation and
// topic it owns, as a single transaction. The pool row is locked first so
// no allocation can slip in between the cascading deletes.
func (r *repository) DeletePool(ctx context.Context, id uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool ResourcePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pool, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPoolNotFound
			}
			return err
		}

		// Raw table names: the entry/reservation models live in the
		// allocator packages, which import this one.
		if err := tx.Exec(`DELETE FROM waitlist_entries WHERE pool_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM reservations WHERE pool_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Where("pool_id = ?", id).Delete(&Topic{}).Error; err != nil {
			return err
		}
		return tx.Delete(&pool).Error
	})
	if err != nil {
		if errors.Is(err, ErrPoolNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete pool: %v", ErrUnavailable, err)
	}
	return nil
}

// AddTopic persists a new topic under its pool
func (r *repository) AddTopic(ctx context.Context, topic *Topic) error {
	if err := r.db.WithContext(ctx).Create(topic).Error; err != nil {
		return fmt.Errorf("%w: add topic: %v", ErrUnavailable, err)
	}
	return nil
}

// GetTopic gets a topic by ID
func (r *repository) GetTopic(ctx context.Context, id uuid.UUID) (*Topic, error) {
	var topic Topic
	err := r.db.WithContext(ctx).First(&topic, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTopicNotFound
		}
		return nil, fmt.Errorf("%w: get topic: %v", ErrUnavailable, err)
	}
	return &topic, nil
}

// ListTopics lists a pool's topics in creation order
func (r *repository) ListTopics(ctx context.Context, poolID uuid.UUID) ([]Topic, error) {
	var topics []Topic
	err := r.db.WithContext(ctx).
		Where("pool_id = ?", poolID).
		Order("created_at ASC").
		Find(&topics).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list topics: %v", ErrUnavailable, err)
	}
	return topics, nil
}

// DeleteTopic removes a topic and its reservations as a unit
func (r *repository) DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pool ResourcePool
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&pool, "id = ?", poolID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrPoolNotFound
			}
			return err
		}

		result := tx.Where("id = ? AND pool_id = ?", topicID, poolID).Delete(&Topic{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ErrTopicNotFound
		}
		return tx.Exec(`DELETE FROM reservations WHERE topic_id = ?`, topicID).Error
	})
	if err != nil {
		if errors.Is(err, ErrPoolNotFound) || errors.Is(err, ErrTopicNotFound) {
			return err
		}
		return fmt.Errorf("%w: delete topic: %v", ErrUnavailable, err)
	}
	return nil
}

// ResolveTopicPool maps a topic ID onto its owning pool ID
func (r *repository) ResolveTopicPool(ctx context.Context, topicID uuid.UUID) (uuid.UUID, error) {
	topic, err := r.GetTopic(ctx, topicID)
	if err != nil {
		return uuid.Nil, err
	}
	return topic.PoolID, nil
}
