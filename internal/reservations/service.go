package reservations

import (
	"context"
	"time"

	"slotly/internal/notifications"
	"slotly/internal/pools"
	"slotly/pkg/cache"
	"slotly/pkg/logger"

	"github.com/google/uuid"
)

// Catalog provides pool and topic lookups (the pools package owns the records)
type Catalog interface {
	GetPool(ctx context.Context, id uuid.UUID) (*pools.ResourcePool, error)
	GetTopic(ctx context.Context, id uuid.UUID) (*pools.Topic, error)
	ListTopics(ctx context.Context, poolID uuid.UUID) ([]pools.Topic, error)
}

// Service interface defines the contract for claim/confirm reservations.
// Mutations must be invoked through the allocation gateway.
type Service interface {
	Claim(ctx context.Context, topicID uuid.UUID, participantID int64) (*ReservationResponse, error)
	Confirm(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*ReservationResponse, error)
	Release(ctx context.Context, topicID uuid.UUID, participantID int64) error
	ListByTopic(ctx context.Context, topicID uuid.UUID) (*TopicReservationsResponse, error)
	ListByPool(ctx context.Context, poolID uuid.UUID) (*PoolReservationsResponse, error)
}

// ServiceConfig contains configuration for the reservation service
type ServiceConfig struct {
	ViewCacheTTL time.Duration
}

// DefaultServiceConfig returns default service configuration
func DefaultServiceConfig() *ServiceConfig {
	return &ServiceConfig{
		ViewCacheTTL: 30 * time.Second,
	}
}

type service struct {
	repo     Repository
	catalog  Catalog
	cache    cache.Service
	producer notifications.Producer
	config   *ServiceConfig
	log      *logger.Logger
}

// NewService creates a new reservation service. Cache and producer may be
// nil to disable view caching and event publishing respectively.
func NewService(repo Repository, catalog Catalog, cacheService cache.Service,
	producer notifications.Producer, config *ServiceConfig, log *logger.Logger) Service {
	if config == nil {
		config = DefaultServiceConfig()
	}
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:     repo,
		catalog:  catalog,
		cache:    cacheService,
		producer: producer,
		config:   config,
		log:      log,
	}
}

// Claim registers an unconfirmed reservation on a topic
func (s *service) Claim(ctx context.Context, topicID uuid.UUID, participantID int64) (*ReservationResponse, error) {
	reservation, err := s.repo.Claim(ctx, topicID, participantID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, reservation.PoolID, topicID)
	s.log.LogReservationClaimed(ctx, topicID.String(), participantID)

	event := notifications.NewAllocationEvent(notifications.EventReservationClaimed, reservation.PoolID).
		WithTopic(topicID).
		WithParticipant(participantID)
	s.publish(ctx, event)

	resp := toReservationResponse(reservation)
	return &resp, nil
}

// Confirm turns a claim into a confirmed reservation, re-checking capacity
func (s *service) Confirm(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*ReservationResponse, error) {
	reservation, err := s.repo.Confirm(ctx, topicID, participantID, confirmerID)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx, reservation.PoolID, topicID)
	s.log.LogReservationConfirmed(ctx, topicID.String(), participantID, confirmerID)

	event := notifications.NewAllocationEvent(notifications.EventReservationConfirmed, reservation.PoolID).
		WithTopic(topicID).
		WithParticipant(participantID).
		WithConfirmer(confirmerID)
	s.publish(ctx, event)

	resp := toReservationResponse(reservation)
	return &resp, nil
}

// Release drops a reservation, confirmed or not
func (s *service) Release(ctx context.Context, topicID uuid.UUID, participantID int64) error {
	// Resolve the pool before the delete so the event and cache keys
	// survive the reservation row going away.
	topic, err := s.catalog.GetTopic(ctx, topicID)
	if err != nil {
		return err
	}

	if err := s.repo.Release(ctx, topicID, participantID); err != nil {
		return err
	}

	s.invalidate(ctx, topic.PoolID, topicID)

	event := notifications.NewAllocationEvent(notifications.EventReservationReleased, topic.PoolID).
		WithTopic(topicID).
		WithParticipant(participantID)
	s.publish(ctx, event)

	return nil
}

// ListByTopic returns a topic's reservations with remaining capacity
func (s *service) ListByTopic(ctx context.Context, topicID uuid.UUID) (*TopicReservationsResponse, error) {
	fetch := func() (interface{}, error) {
		return s.buildTopicView(ctx, topicID)
	}

	if s.cache != nil {
		var view TopicReservationsResponse
		if err := s.cache.GetOrSet(ctx, GetTopicKey(topicID), s.config.ViewCacheTTL, fetch, &view); err == nil {
			return &view, nil
		}
	}

	return s.buildTopicView(ctx, topicID)
}

func (s *service) buildTopicView(ctx context.Context, topicID uuid.UUID) (*TopicReservationsResponse, error) {
	topic, err := s.catalog.GetTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}
	pool, err := s.catalog.GetPool(ctx, topic.PoolID)
	if err != nil {
		return nil, err
	}
	if pool.Kind != pools.KindReservationSet {
		return nil, pools.ErrWrongKind
	}

	reservations, err := s.repo.ListByTopic(ctx, topicID)
	if err != nil {
		return nil, err
	}

	confirmed := 0
	responses := make([]ReservationResponse, 0, len(reservations))
	for _, r := range reservations {
		if r.Confirmed {
			confirmed++
		}
		responses = append(responses, toReservationResponse(r))
	}

	remaining := pool.MaxPerUnit - confirmed
	if remaining < 0 {
		remaining = 0
	}

	return &TopicReservationsResponse{
		TopicID:      topicID,
		PoolID:       topic.PoolID,
		MaxPerTopic:  pool.MaxPerUnit,
		Confirmed:    confirmed,
		Remaining:    remaining,
		Reservations: responses,
	}, nil
}

// ListByPool returns the availability overview of every topic in a pool
func (s *service) ListByPool(ctx context.Context, poolID uuid.UUID) (*PoolReservationsResponse, error) {
	fetch := func() (interface{}, error) {
		return s.buildPoolView(ctx, poolID)
	}

	if s.cache != nil {
		var view PoolReservationsResponse
		if err := s.cache.GetOrSet(ctx, GetPoolKey(poolID), s.config.ViewCacheTTL, fetch, &view); err == nil {
			return &view, nil
		}
	}

	return s.buildPoolView(ctx, poolID)
}

func (s *service) buildPoolView(ctx context.Context, poolID uuid.UUID) (*PoolReservationsResponse, error) {
	pool, err := s.catalog.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Kind != pools.KindReservationSet {
		return nil, pools.ErrWrongKind
	}

	topics, err := s.catalog.ListTopics(ctx, poolID)
	if err != nil {
		return nil, err
	}
	reservations, err := s.repo.ListByPool(ctx, poolID)
	if err != nil {
		return nil, err
	}

	claimed := make(map[uuid.UUID]int)
	confirmed := make(map[uuid.UUID]int)
	for _, r := range reservations {
		claimed[r.TopicID]++
		if r.Confirmed {
			confirmed[r.TopicID]++
		}
	}

	summaries := make([]TopicSummary, 0, len(topics))
	for _, topic := range topics {
		remaining := pool.MaxPerUnit - confirmed[topic.ID]
		if remaining < 0 {
			remaining = 0
		}
		summaries = append(summaries, TopicSummary{
			TopicID:   topic.ID,
			Title:     topic.Title,
			Confirmed: confirmed[topic.ID],
			Claimed:   claimed[topic.ID],
			Remaining: remaining,
		})
	}

	return &PoolReservationsResponse{
		PoolID:      poolID,
		MaxPerTopic: pool.MaxPerUnit,
		Topics:      summaries,
	}, nil
}

func (s *service) invalidate(ctx context.Context, poolID, topicID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, GetTopicKey(topicID), GetPoolKey(poolID)); err != nil {
		s.log.ErrorWithContext(ctx, "Failed to invalidate reservation cache", err, map[string]interface{}{
			"pool_id":  poolID.String(),
			"topic_id": topicID.String(),
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
