package pools

import (
	"context"
	"fmt"

	"slotly/internal/notifications"
	"slotly/pkg/logger"

	"github.com/google/uuid"
)

// Service interface defines the contract for pool provisioning and teardown.
// Teardown is mutating and must be invoked through the allocation gateway so
// it serializes with in-flight joins and claims on the same pool.
type Service interface {
	CreatePool(ctx context.Context, request *CreatePoolRequest) (*PoolResponse, error)
	GetPool(ctx context.Context, id uuid.UUID) (*PoolResponse, error)
	DeletePool(ctx context.Context, id uuid.UUID) error

	AddTopic(ctx context.Context, poolID uuid.UUID, request *AddTopicRequest) (*TopicResponse, error)
	ListTopics(ctx context.Context, poolID uuid.UUID) ([]TopicResponse, error)
	DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error

	ResolveTopicPool(ctx context.Context, topicID uuid.UUID) (uuid.UUID, error)
}

// service implements the Service interface
type service struct {
	repo     Repository
	producer notifications.Producer
	log      *logger.Logger
}

// NewService creates a new pool service. The producer may be nil when event
// publishing is disabled.
func NewService(repo Repository, producer notifications.Producer, log *logger.Logger) Service {
	if log == nil {
		log = logger.GetDefault()
	}
	return &service{
		repo:     repo,
		producer: producer,
		log:      log,
	}
}

// CreatePool provisions a pool for an event's booking configuration
func (s *service) CreatePool(ctx context.Context, request *CreatePoolRequest) (*PoolResponse, error) {
	if err := validateCreateRequest(request); err != nil {
		return nil, err
	}

	pool := &ResourcePool{
		ID:           uuid.New(),
		Kind:         request.Kind,
		Capacity:     request.Capacity,
		MaxPerUnit:   request.MaxPerUnit,
		OwnerEventID: request.OwnerEventID,
	}

	if err := s.repo.CreatePool(ctx, pool); err != nil {
		return nil, err
	}

	s.log.InfoWithContext(ctx, "Pool Created", map[string]interface{}{
		"pool_id": pool.ID.String(),
		"kind":    string(pool.Kind),
		"event":   pool.OwnerEventID.String(),
	})

	return toPoolResponse(pool), nil
}

func validateCreateRequest(request *CreatePoolRequest) error {
	if !request.Kind.IsValid() {
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidPool, request.Kind)
	}
	switch request.Kind {
	case KindWaitlist:
		if request.MaxPerUnit != 0 {
			return fmt.Errorf("%w: waitlists have no per-topic capacity", ErrInvalidPool)
		}
		if request.Capacity != nil && *request.Capacity < 1 {
			return fmt.Errorf("%w: capacity must be positive", ErrInvalidPool)
		}
	case KindReservationSet:
		if request.MaxPerUnit < 1 {
			return fmt.Errorf("%w: reservation sets need a positive per-topic capacity", ErrInvalidPool)
		}
		if request.Capacity != nil {
			return fmt.Errorf("%w: reservation sets are bounded per topic, not per pool", ErrInvalidPool)
		}
	}
	return nil
}

// GetPool gets a pool by ID
func (s *service) GetPool(ctx context.Context, id uuid.UUID) (*PoolResponse, error) {
	pool, err := s.repo.GetPool(ctx, id)
	if err != nil {
		return nil, err
	}
	return toPoolResponse(pool), nil
}

// DeletePool tears down a pool and everything it owns as a unit
func (s *service) DeletePool(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePool(ctx, id); err != nil {
		return err
	}

	s.log.LogPoolTeardown(ctx, id.String())
	s.publish(ctx, notifications.NewAllocationEvent(notifications.EventPoolDeleted, id))
	return nil
}

// AddTopic adds a topic under a reservation-set pool
func (s *service) AddTopic(ctx context.Context, poolID uuid.UUID, request *AddTopicRequest) (*TopicResponse, error) {
	pool, err := s.repo.GetPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	if pool.Kind != KindReservationSet {
		return nil, ErrWrongKind
	}

	topic := &Topic{
		ID:          uuid.New(),
		PoolID:      poolID,
		Title:       request.Title,
		Description: request.Description,
	}

	if err := s.repo.AddTopic(ctx, topic); err != nil {
		return nil, err
	}

	return toTopicResponse(topic), nil
}

// ListTopics lists the topics of a pool
func (s *service) ListTopics(ctx context.Context, poolID uuid.UUID) ([]TopicResponse, error) {
	if _, err := s.repo.GetPool(ctx, poolID); err != nil {
		return nil, err
	}

	topics, err := s.repo.ListTopics(ctx, poolID)
	if err != nil {
		return nil, err
	}

	responses := make([]TopicResponse, 0, len(topics))
	for i := range topics {
		responses = append(responses, *toTopicResponse(&topics[i]))
	}
	return responses, nil
}

// DeleteTopic removes a topic and its reservations as a unit
func (s *service) DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error {
	if err := s.repo.DeleteTopic(ctx, poolID, topicID); err != nil {
		return err
	}

	event := notifications.NewAllocationEvent(notifications.EventTopicDeleted, poolID).WithTopic(topicID)
	s.publish(ctx, event)
	return nil
}

// ResolveTopicPool maps a topic onto its owning pool
func (s *service) ResolveTopicPool(ctx context.Context, topicID uuid.UUID) (uuid.UUID, error) {
	return s.repo.ResolveTopicPool(ctx, topicID)
}

// publish is best-effort: a broker outage must not fail the mutation that
// already committed.
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
