package gateway

import (
	"context"

	"slotly/internal/pools"
	"slotly/internal/reservations"
	"slotly/internal/waitlist"

	"github.com/google/uuid"
)

// Gateway serializes every mutation of a pool behind that pool's lock.
// Reads pass straight through. Controllers depend on the slices of this
// surface they need.
type Gateway struct {
	pools        pools.Service
	waitlists    waitlist.Service
	reservations reservations.Service
	locks        *LockStore
}

// New creates a gateway over the three allocation services
func New(poolsSvc pools.Service, waitlistSvc waitlist.Service,
	reservationsSvc reservations.Service, locks *LockStore) *Gateway {
	if locks == nil {
		locks = NewLockStore()
	}
	return &Gateway{
		pools:        poolsSvc,
		waitlists:    waitlistSvc,
		reservations: reservationsSvc,
		locks:        locks,
	}
}

// Close releases the lock store's janitor
func (g *Gateway) Close() {
	g.locks.Close()
}

// withPoolLock runs fn while holding the pool's lock. Once the lock is
// held the operation runs to completion even if the caller goes away:
// a half-applied join or compaction must never be abandoned mid-flight.
func withPoolLock[T any](g *Gateway, ctx context.Context, poolID uuid.UUID, fn func(ctx context.Context) (T, error)) (T, error) {
	unlock := g.locks.Lock(poolID.String())
	defer unlock()
	return fn(context.WithoutCancel(ctx))
}

// Waitlist operations

func (g *Gateway) JoinWaitlist(ctx context.Context, poolID uuid.UUID, participantID int64) (*waitlist.JoinResponse, error) {
	return withPoolLock(g, ctx, poolID, func(ctx context.Context) (*waitlist.JoinResponse, error) {
		return g.waitlists.Join(ctx, poolID, participantID)
	})
}

func (g *Gateway) LeaveWaitlist(ctx context.Context, poolID uuid.UUID, participantID int64) error {
	_, err := withPoolLock(g, ctx, poolID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.waitlists.Leave(ctx, poolID, participantID)
	})
	return err
}

func (g *Gateway) ViewWaitlist(ctx context.Context, poolID uuid.UUID) (*waitlist.ViewResponse, error) {
	return g.waitlists.View(ctx, poolID)
}

func (g *Gateway) WaitlistStats(ctx context.Context, poolID uuid.UUID) (*waitlist.StatsResponse, error) {
	return g.waitlists.Stats(ctx, poolID)
}

// Reservation operations. The topic is resolved to its owning pool before
// locking, so claims on sibling topics of one pool serialize with each other.

func (g *Gateway) ClaimReservation(ctx context.Context, topicID uuid.UUID, participantID int64) (*reservations.ReservationResponse, error) {
	poolID, err := g.pools.ResolveTopicPool(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return withPoolLock(g, ctx, poolID, func(ctx context.Context) (*reservations.ReservationResponse, error) {
		return g.reservations.Claim(ctx, topicID, participantID)
	})
}

func (g *Gateway) ConfirmReservation(ctx context.Context, topicID uuid.UUID, participantID, confirmerID int64) (*reservations.ReservationResponse, error) {
	poolID, err := g.pools.ResolveTopicPool(ctx, topicID)
	if err != nil {
		return nil, err
	}
	return withPoolLock(g, ctx, poolID, func(ctx context.Context) (*reservations.ReservationResponse, error) {
		return g.reservations.Confirm(ctx, topicID, participantID, confirmerID)
	})
}

func (g *Gateway) ReleaseReservation(ctx context.Context, topicID uuid.UUID, participantID int64) error {
	poolID, err := g.pools.ResolveTopicPool(ctx, topicID)
	if err != nil {
		return err
	}
	_, err = withPoolLock(g, ctx, poolID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.reservations.Release(ctx, topicID, participantID)
	})
	return err
}

func (g *Gateway) ListTopicReservations(ctx context.Context, topicID uuid.UUID) (*reservations.TopicReservationsResponse, error) {
	return g.reservations.ListByTopic(ctx, topicID)
}

func (g *Gateway) ListPoolReservations(ctx context.Context, poolID uuid.UUID) (*reservations.PoolReservationsResponse, error) {
	return g.reservations.ListByPool(ctx, poolID)
}

// Pool lifecycle. Teardown mutates allocation state, so it takes the
// pool's lock like any join or claim.

func (g *Gateway) CreatePool(ctx context.Context, request *pools.CreatePoolRequest) (*pools.PoolResponse, error) {
	return g.pools.CreatePool(ctx, request)
}

func (g *Gateway) GetPool(ctx context.Context, id uuid.UUID) (*pools.PoolResponse, error) {
	return g.pools.GetPool(ctx, id)
}

func (g *Gateway) DeletePool(ctx context.Context, id uuid.UUID) error {
	_, err := withPoolLock(g, ctx, id, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.pools.DeletePool(ctx, id)
	})
	return err
}

func (g *Gateway) AddTopic(ctx context.Context, poolID uuid.UUID, request *pools.AddTopicRequest) (*pools.TopicResponse, error) {
	return g.pools.AddTopic(ctx, poolID, request)
}

func (g *Gateway) ListTopics(ctx context.Context, poolID uuid.UUID) ([]pools.TopicResponse, error) {
	return g.pools.ListTopics(ctx, poolID)
}

func (g *Gateway) DeleteTopic(ctx context.Context, poolID, topicID uuid.UUID) error {
	_, err := withPoolLock(g, ctx, poolID, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, g.pools.DeleteTopic(ctx, poolID, topicID)
	})
	return err
}
