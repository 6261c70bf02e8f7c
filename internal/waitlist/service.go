package waitlist

import (
	"context"
	"time"

	"slotly/internal/notifications"
	"slotly/internal/pools"
	"slotly/pkg/cache"
	"slotly/pkg/logger"

	"github.com/google/uuid"
)

// PoolStore provides pool lookups (the pools package owns the records)
type PoolStore interface {
	GetPool(ctx context.Context, id uuid.UUID) (*pools.ResourcePool, error)
}

// Service interface defines the contract for slot allocation on ordered
// waitlists. Mutations must be invoked through the allocation gateway.
type Service interface {
	Join(ctx context.Context, poolID uuid.UUID, participantID int64) (*JoinResponse, error)
	Leave(ctx context.Context, poolID uuid.UUID, participantID int64) error
	View(ctx context.Context, poolID uuid.UUID) (*ViewResponse, error)
	Stats(ctx context.Context, poolID uuid.UUID) (*StatsResponse, error)
}

// ServiceConfig contains configuration for the waitlist service
type ServiceConfig struct {
	ViewCacheTTL time.Duration
}

// DefaultServiceConfig returns default service configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		ViewCacheTTL: 30 * time.Second,
	}
}

// service implements the Service interface
type service struct {
	repo      Repository
	poolStore PoolStore
	cache     cache.Service
	producer  notifications.Producer
	config    *ServiceConfig
	log       *logger.Logger
}

// NewService creates a new waitlist service. Cache and producer may be nil
// to disable view caching and event publishing respectively.
func NewService(repo Repository, poolStore PoolStore, cacheService cache.Service,
	producer notifications.Producer, config *ServiceConfig, log *logger.Logger) Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:      repo,
		poolStore: poolStore,
		cache:     cacheService,
		producer:  producer,
		config:    config,
		log:       log,
	}
}

// Join assigns the next free position to the participant. Strict FIFO: the
// Nth successful joiner always receives position N.
func (s *service) Join(ctx context.Context, poolID uuid.UUID, participantID int64) (*JoinResponse, error) {
	entry, total, err := s.repo.Join(ctx, poolID, participantID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, poolID)
	s.log.LogSlotJoined(ctx, poolID.String(), participantID, entry.Position)

	event := notifications.NewAllocationEvent(notifications.EventSlotJoined, poolID).
		WithParticipant(participantID).
		WithPosition(entry.Position)
	s.publish(ctx, event)

	return &JoinResponse{
		PoolID:        poolID,
		ParticipantID: participantID,
		Position:      entry.Position,
		Total:         total,
		JoinedAt:      entry.JoinedAt,
	}, nil
}

// Leave removes the participant and compacts positions behind them
func (s *service) Leave(ctx context.Context, poolID uuid.UUID, participantID int64) error {
	if err := s.repo.Leave(ctx, poolID, participantID); err != nil {
		return err
	}

	s.invalidate(ctx, poolID)
	s.log.LogSlotLeft(ctx, poolID.String(), participantID)

	event := notifications.NewAllocationEvent(notifications.EventSlotLeft, poolID).
		WithParticipant(participantID)
	s.publish(ctx, event)

	return nil
}

// View returns the ordered (position, participant) pairs of a pool. Views
// may be served from cache and observe either the pre- or post-mutation
// state of an in-flight operation, never a half-compacted list.
func (s *service) View(ctx context.Context, poolID uuid.UUID) (*ViewResponse, error) {
	fetch := func() (interface{}, error) {
		return s.buildView(ctx, poolID)
	}

	if s.cache != nil {
		var view ViewResponse
		if err := s.cache.GetOrSet(ctx, GetViewKey(poolID), s.config.ViewCacheTTL, fetch, &view); err == nil {
			return &view, nil
		}
		// Cache trouble falls through to the database
	}

	return s.buildView(ctx, poolID)
}

func (s *service) buildView(ctx context.Context, poolID uuid.UUID) (*ViewResponse, error) {
	pool, err := s.poolStore.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Kind != pools.KindWaitlist {
		return nil, pools.ErrWrongKind
	}

	entries, err := s.repo.List(ctx, poolID)
	if err != nil {
		return nil, err
	}

	slots := make([]Slot, 0, len(entries))
	for _, entry := range entries {
		slots = append(slots, Slot{
			Position:      entry.Position,
			ParticipantID: entry.ParticipantID,
		})
	}

	return &ViewResponse{
		PoolID: poolID,
		Count:  len(slots),
		Slots:  slots,
	}, nil
}

// Stats summarizes occupancy for presentation upstream
func (s *service) Stats(ctx context.Context, poolID uuid.UUID) (*StatsResponse, error) {
	pool, err := s.poolStore.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Kind != pools.KindWaitlist {
		return nil, pools.ErrWrongKind
	}

	count, err := s.repo.Count(ctx, poolID)
	if err != nil {
		return nil, err
	}

	stats := &StatsResponse{
		PoolID:      poolID,
		MemberCount: count,
		Capacity:    pool.Capacity,
	}
	if pool.Capacity != nil {
		remaining := *pool.Capacity - count
		if remaining < 0 {
			remaining = 0
		}
		stats.Remaining = &remaining
	}
	return stats, nil
}

func (s *service) invalidate(ctx context.Context, poolID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, GetViewKey(poolID), GetStatsKey(poolID)); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to invalidate waitlist cache", err, map[string]interface{}{
			"pool_id": poolID.String(),
		})
	}
}

func (s *service) publish(ctx context.Context, event *notifications.AllocationEvent) {
	if s.producer == nil {
		return
	}
	if err := s.producer.Publish(ctx, event); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to publish allocation event", err, map[string]interface{}{
			"event_type": string(event.Type),
			"pool_id":    event.PoolID.String(),
		})
	}
}
